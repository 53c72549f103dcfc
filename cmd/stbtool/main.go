package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yumesaki/stbtool"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "stbtool [paths...]",
	Short: "Convert storyboard containers to editable text and back",
	Long: `stbtool decodes .stb storyboard containers into a textual
instruction form and injects edited text back into the container.

A .stb input decodes to a sibling .stb.txt; a .txt input is encoded and
injected into its sibling .stb, which must exist. Directories are
converted file by file; one file's failure never aborts the batch.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := conversionOptions()
		if err != nil {
			return err
		}
		failures := 0
		for _, path := range args {
			start := time.Now()
			result, err := stbtool.ConvertPath(path, opts...)
			if err != nil {
				failures++
				log.Error().Err(err).Str("path", path).Msg("conversion failed")
			}
			if result == nil {
				continue
			}
			for in, out := range result.Converted {
				log.Info().
					Str("input", in).
					Str("output", out).
					Dur("elapsed", time.Since(start)).
					Msg("converted")
				fmt.Printf("%s %s -> %s\n", green("ok"), in, out)
			}
			for _, in := range result.Failed {
				fmt.Printf("%s %s\n", red("failed"), in)
			}
		}
		if failures > 0 {
			return fmt.Errorf("%d path(s) failed", failures)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("encoding", "shift-jis", "Text encoding of string literals")
	flags.String("text-ext", stbtool.DefaultTextExtension, "Extension of decoded text files")
	flags.Int("scan-limit", 0, "Override the string scan limit in bytes")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	viper.BindPFlags(flags)
}

func initConfig() {
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".stbtool")
		viper.SetConfigType("yaml")
		_ = viper.ReadInConfig()
	}
	viper.SetEnvPrefix("STBTOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: !colorEnabled(),
	}).Level(level).With().Timestamp().Logger()
}

// conversionOptions translates CLI configuration into library options.
func conversionOptions() ([]stbtool.Option, error) {
	var opts []stbtool.Option
	if name := viper.GetString("encoding"); name != "" {
		enc, err := encodingByName(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stbtool.WithEncoding(enc))
	}
	if ext := viper.GetString("text-ext"); ext != "" && ext != stbtool.DefaultTextExtension {
		opts = append(opts, stbtool.WithTextExtension(ext))
	}
	if limit := viper.GetInt("scan-limit"); limit > 0 {
		opts = append(opts, stbtool.WithStringScanLimit(limit))
	}
	return opts, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal(err)
	}
}
