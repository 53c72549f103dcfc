package stbtool

import "golang.org/x/text/encoding"

// Option describes a function used to configure a conversion.
type Option func(*config)

type config struct {
	encoding  encoding.Encoding
	scanLimit int
	textExt   string
}

func newConfig(opts []Option) *config {
	cfg := &config{textExt: DefaultTextExtension}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithEncoding overrides the text encoding used for string literals in
// both directions. The default is Shift-JIS.
func WithEncoding(enc encoding.Encoding) Option {
	return func(cfg *config) {
		cfg.encoding = enc
	}
}

// WithStringScanLimit overrides the decoder's bounded NUL scan.
func WithStringScanLimit(limit int) Option {
	return func(cfg *config) {
		cfg.scanLimit = limit
	}
}

// WithTextExtension overrides the extension appended to decoded output
// files and stripped to find a text input's companion container.
func WithTextExtension(ext string) Option {
	return func(cfg *config) {
		cfg.textExt = ext
	}
}
