package parsing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// CurrencyDetector finds the first configured currency marker in a receipt
type CurrencyDetector struct {
	rx       *regexp.Regexp
	codes    map[string]string
	fallback string
}

// NewCurrencyDetector compiles the alias lists into a single word-bounded pattern
func NewCurrencyDetector(markers []CurrencyMarker, fallback string) (*CurrencyDetector, error) {
	codes := make(map[string]string)
	var alts []string
	for _, m := range markers {
		code := strings.ToUpper(strings.TrimSpace(m.Code))
		if code == "" {
			return nil, fmt.Errorf("currency marker without code")
		}
		for _, a := range append([]string{m.Code}, m.Aliases...) {
			a = NormalizeForMatch(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, dup := codes[a]; !dup {
				alts = append(alts, a)
			}
			codes[a] = code
		}
	}

	d := &CurrencyDetector{codes: codes, fallback: fallback}
	if len(alts) == 0 {
		return d, nil
	}

	// longest first so "dhs" wins over "dh"
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	quoted := make([]string, len(alts))
	for i, a := range alts {
		quoted[i] = regexp.QuoteMeta(a)
	}
	pattern := `(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}])`
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling currency pattern: %w", err)
	}
	d.rx = rx
	return d, nil
}

// Detect returns the canonical code of the first marker found, scanning rows
// top to bottom, or the fallback currency
func (d *CurrencyDetector) Detect(rows []Row) string {
	if d.rx == nil {
		return d.fallback
	}
	for _, r := range rows {
		if m := d.rx.FindStringSubmatch(NormalizeForMatch(r.Text)); m != nil {
			return d.codes[m[1]]
		}
	}
	return d.fallback
}

// strip removes currency markers from s
func (d *CurrencyDetector) strip(s string) string {
	if d.rx == nil {
		return s
	}
	// markers are matched on normalized text, so strip token by token
	words := strings.Fields(s)
	out := words[:0]
	for _, w := range words {
		if _, ok := d.codes[strings.Trim(NormalizeForMatch(w), ".:")]; ok {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
