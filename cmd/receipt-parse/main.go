package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/receipt-ocr/internal/parsing"
)

// receipt-parse reads a saved OCR response (file argument or stdin) and
// prints the structured receipt as JSON.
func main() {
	fs := ff.NewFlagSet("receipt-parse")
	var (
		localePath = fs.StringLong("locale", "", "JSON locale file with keywords and currencies (optional)")
		currency   = fs.StringLong("currency", "", "Default currency code, overrides the locale file")
		noRows     = fs.BoolLong("no-rows", "Omit the raw rows from the output")
		compact    = fs.BoolLong("compact", "Print JSON on a single line")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(fs.GetArgs(), *localePath, *currency, *noRows, *compact, os.Stdin, os.Stdout); err != nil {
		slog.Error("Failed to parse receipt", "error", err)
		os.Exit(1)
	}
}

func run(args []string, localePath, currency string, noRows, compact bool, stdin io.Reader, stdout io.Writer) error {
	cfg := parsing.DefaultConfig()
	if localePath != "" {
		var err error
		cfg, err = parsing.LoadConfig(localePath)
		if err != nil {
			return err
		}
	}
	if currency != "" {
		cfg.DefaultCurrency = strings.ToUpper(currency)
	}
	parser, err := parsing.NewParser(cfg)
	if err != nil {
		return err
	}

	in := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening OCR response: %w", err)
		}
		defer f.Close()
		in = f
	}

	var ocr parsing.OCRResult
	if err := json.NewDecoder(in).Decode(&ocr); err != nil {
		return fmt.Errorf("decoding OCR response: %w", err)
	}

	receipt := parser.Parse(ocr)
	if noRows {
		receipt.Raw.Rows = []parsing.Row{}
	}

	enc := json.NewEncoder(stdout)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(receipt)
}
