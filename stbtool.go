// Package stbtool converts storyboard containers (.stb) into an editable
// text instruction form and injects edited text back into the container.
//
// Decoding a container writes a sibling text file:
//
//	out, err := stbtool.DecodeFile("scene.stb")
//	// out == "scene.stb.txt"
//
// Encoding reads a text file, rebuilds the script segment's bytecode and
// string pool, and patches the sibling container in place:
//
//	out, err := stbtool.EncodeFile("scene.stb.txt")
//	// out == "scene.stb"
//
// ConvertPath dispatches on extension and handles directories; one file's
// failure never aborts the rest of a batch.
package stbtool

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yumesaki/stbtool/container"
	"github.com/yumesaki/stbtool/decoder"
	"github.com/yumesaki/stbtool/encoder"
	"github.com/yumesaki/stbtool/errz"
)

const (
	// ContainerExtension is the storyboard container file extension.
	ContainerExtension = ".stb"

	// DefaultTextExtension is appended to a container's path to name its
	// decoded text form.
	DefaultTextExtension = ".txt"
)

// DecodeFile decodes the script segment of the container at path and
// writes the instruction lines to a sibling text file, whose path is
// returned.
func DecodeFile(path string, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	lines, err := decodeContainer(path, cfg)
	if err != nil {
		return "", err
	}
	out := path + cfg.textExt
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(out, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// Decode decodes the script segment of the container at path and returns
// the instruction lines without writing anything.
func Decode(path string, opts ...Option) ([]string, error) {
	return decodeContainer(path, newConfig(opts))
}

func decodeContainer(path string, cfg *config) ([]string, error) {
	c, err := container.Load(path)
	if err != nil {
		return nil, err
	}
	idx, err := c.SegmentIndex(c.ScriptStart)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(c.Bytes())
	start := int64(c.Entries[idx].Offset) + container.SubHeaderSize
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	var dopts []decoder.Option
	if cfg.encoding != nil {
		dopts = append(dopts, decoder.WithEncoding(cfg.encoding))
	}
	if cfg.scanLimit > 0 {
		dopts = append(dopts, decoder.WithStringScanLimit(cfg.scanLimit))
	}
	return decoder.Decode(r, dopts...)
}

// EncodeFile encodes the text instruction file at path and injects the
// result into its sibling container, which must already exist. The
// container's path is returned.
func EncodeFile(path string, opts ...Option) (string, error) {
	cfg := newConfig(opts)

	companion := strings.TrimSuffix(path, cfg.textExt)
	if companion == path {
		return "", fmt.Errorf("input %s does not carry the %s extension", path, cfg.textExt)
	}
	if _, err := os.Stat(companion); err != nil {
		return "", errz.New(errz.ErrCompanionMissing, "no container %s for %s", companion, path)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := splitLines(string(text))

	c, err := container.Load(companion)
	if err != nil {
		return "", err
	}
	idx, err := c.SegmentIndex(c.ScriptStart)
	if err != nil {
		return "", err
	}

	var eopts []encoder.Option
	if cfg.encoding != nil {
		eopts = append(eopts, encoder.WithEncoding(cfg.encoding))
	}
	origin := c.Entries[idx].Offset + container.SubHeaderSize
	buf, err := encoder.New(eopts...).Encode(lines, origin)
	if err != nil {
		return "", err
	}
	if err := c.Inject(buf); err != nil {
		return "", err
	}
	if err := c.WriteFile(companion); err != nil {
		return "", err
	}
	return companion, nil
}

// splitLines splits decoded (and possibly hand-edited) text into
// instruction lines, tolerating CRLF endings and trailing newlines.
func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// BatchResult reports the outcome of a ConvertPath call.
type BatchResult struct {
	// Converted maps each successfully converted input to its output.
	Converted map[string]string
	// Failed lists inputs whose conversion failed.
	Failed []string
}

// ConvertPath converts the file at path, or every convertible file in it
// if path is a directory. Directory iteration is non-recursive and a
// failing file does not abort the batch; all failures are returned
// together after the walk.
func ConvertPath(path string, opts ...Option) (*BatchResult, error) {
	cfg := newConfig(opts)
	result := &BatchResult{Converted: map[string]string{}}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		out, err := convertFile(path, cfg, opts)
		if err != nil {
			result.Failed = append(result.Failed, path)
			return result, err
		}
		result.Converted[path] = out
		return result, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var errs *multierror.Error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(path, entry.Name())
		if !convertible(entry.Name(), cfg) {
			continue
		}
		out, err := convertFile(name, cfg, opts)
		if err != nil {
			result.Failed = append(result.Failed, name)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		result.Converted[name] = out
	}
	return result, errs.ErrorOrNil()
}

func convertible(name string, cfg *config) bool {
	return strings.HasSuffix(name, ContainerExtension) || strings.HasSuffix(name, cfg.textExt)
}

func convertFile(path string, cfg *config, opts []Option) (string, error) {
	switch {
	case strings.HasSuffix(path, cfg.textExt):
		return EncodeFile(path, opts...)
	case strings.HasSuffix(path, ContainerExtension):
		return DecodeFile(path, opts...)
	default:
		return "", fmt.Errorf("no conversion for %s", path)
	}
}
