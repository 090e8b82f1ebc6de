// Package parsing reconstructs structured receipts from raw OCR fragments.
//
// The pipeline is pure and synchronous: fragments are filtered by confidence,
// reduced to tokens, clustered into physical rows by their vertical centers,
// labelled by keyword, and then split between the totals block and the item
// list. Every row index is owned by at most one consumer, tracked in a
// per-parse ledger. Fields that cannot be read unambiguously are left nil.
//
// A Parser is immutable after construction and safe for concurrent use.
package parsing

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Parser runs the OCR-to-receipt pipeline for one locale configuration
type Parser struct {
	cfg          Config
	classifier   *Classifier
	currency     *CurrencyDetector
	itemsTotalRx *regexp.Regexp
}

// NewParser validates cfg and compiles its patterns
func NewParser(cfg Config) (*Parser, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	itemsTotalRx, err := regexp.Compile(cfg.ItemsTotalPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling items total pattern: %w", err)
	}

	currency, err := NewCurrencyDetector(cfg.Currencies, cfg.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("creating currency detector: %w", err)
	}

	return &Parser{
		cfg:          cfg,
		classifier:   NewClassifier(cfg.Keywords),
		currency:     currency,
		itemsTotalRx: itemsTotalRx,
	}, nil
}

// Config returns the configuration the parser was built with
func (p *Parser) Config() Config {
	return p.cfg
}

// Parse reconstructs a receipt. It never fails; anything it cannot read is left empty.
func (p *Parser) Parse(ocr OCRResult) Receipt {
	receipt, _ := p.run(ocr)
	return receipt
}

func (p *Parser) run(ocr OCRResult) (Receipt, ledger) {
	tokens := TokensFromFragments(ocr.Lines, p.cfg.MinConfidence)
	rows := GroupRows(tokens, p.cfg.Geometry)

	currency := p.currency.Detect(rows)

	labels := make([]RowLabels, len(rows))
	for i, r := range rows {
		labels[i] = p.classifier.Classify(r)
	}

	l := newLedger(len(rows))
	totals := extractTotals(rows, labels, p.itemsTotalRx, l)

	a := &assembler{
		rows:     rows,
		labels:   labels,
		ledger:   l,
		geo:      p.cfg.Geometry,
		currency: p.currency,
	}
	items := a.assemble()
	totals.ItemsTotal = itemsTotal(items)

	slog.Debug("Parsed receipt",
		"fragments", len(ocr.Lines),
		"tokens", len(tokens),
		"rows", len(rows),
		"items", len(items),
		"currency", currency,
	)

	return Receipt{
		Currency: currency,
		Items:    items,
		Totals:   totals,
		Raw:      Raw{Rows: rows},
	}, l
}

// ParseReceipt parses with the default locale configuration and the given default currency
func ParseReceipt(ocr OCRResult, defaultCurrency string) Receipt {
	cfg := DefaultConfig()
	if defaultCurrency != "" {
		cfg.DefaultCurrency = defaultCurrency
	}
	p, err := NewParser(cfg)
	if err != nil {
		// DefaultConfig always compiles
		panic(err)
	}
	return p.Parse(ocr)
}

// itemsTotal sums the item prices, or returns nil when there are none
func itemsTotal(items []Item) *float64 {
	if len(items) == 0 {
		return nil
	}
	var sum float64
	for _, it := range items {
		sum += it.Price
	}
	sum = round2(sum)
	return &sum
}
