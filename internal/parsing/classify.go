package parsing

import "strings"

// RowLabels is the set of keyword groups a row matched
type RowLabels uint8

const (
	LabelTotal RowLabels = 1 << iota
	LabelSubtotal
	LabelTax
	LabelPaid
	LabelChange
	LabelNoise
)

// Has reports whether every label in l2 is set
func (l RowLabels) Has(l2 RowLabels) bool {
	return l&l2 == l2
}

// TotalsRelated reports whether the row states a totals value or administrative noise
func (l RowLabels) TotalsRelated() bool {
	return l != 0
}

type keywordGroup struct {
	label RowLabels
	words []string
}

// Classifier labels rows by keyword containment on normalized text
type Classifier struct {
	groups []keywordGroup
}

// NewClassifier normalizes the keyword lists once
func NewClassifier(kw Keywords) *Classifier {
	return &Classifier{groups: []keywordGroup{
		{LabelTotal, normalizeAll(kw.Total)},
		{LabelSubtotal, normalizeAll(kw.Subtotal)},
		{LabelTax, normalizeAll(kw.Tax)},
		{LabelPaid, normalizeAll(kw.Paid)},
		{LabelChange, normalizeAll(kw.Change)},
		{LabelNoise, normalizeAll(kw.Noise)},
	}}
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = NormalizeForMatch(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Classify returns every keyword group the row text matches
func (c *Classifier) Classify(r Row) RowLabels {
	return c.ClassifyText(r.Text)
}

// ClassifyText is Classify for a bare string
func (c *Classifier) ClassifyText(s string) RowLabels {
	text := NormalizeForMatch(s)
	var labels RowLabels
	for _, g := range c.groups {
		for _, w := range g.words {
			if strings.Contains(text, w) {
				labels |= g.label
				break
			}
		}
	}
	return labels
}
