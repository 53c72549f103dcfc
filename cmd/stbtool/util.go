package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func colorEnabled() bool {
	if viper.GetBool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func red(s string) string {
	if !colorEnabled() {
		return s
	}
	return color.New(color.FgRed).Sprint(s)
}

func green(s string) string {
	if !colorEnabled() {
		return s
	}
	return color.New(color.FgGreen).Sprint(s)
}

func formatJSON(value any) (string, error) {
	if colorEnabled() {
		out, err := prettyjson.Marshal(value)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodingByName resolves the --encoding flag. Shift-JIS is the format's
// native encoding; the others exist for modified game data.
func encodingByName(name string) (encoding.Encoding, error) {
	switch name {
	case "shift-jis", "sjis", "cp932":
		return japanese.ShiftJIS, nil
	case "euc-jp":
		return japanese.EUCJP, nil
	case "iso-2022-jp":
		return japanese.ISO2022JP, nil
	case "utf-8":
		return unicode.UTF8, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
}
