package parsing

import (
	"math"
	"sort"
	"strings"
)

// TokensFromFragments keeps fragments scoring at least minConfidence and
// reduces each to its left edge, vertical center and extent
func TokensFromFragments(frags []Fragment, minConfidence float64) []Token {
	tokens := make([]Token, 0, len(frags))
	for _, f := range frags {
		if f.Score < minConfidence {
			continue
		}
		tokens = append(tokens, tokenFromFragment(f))
	}
	return tokens
}

func tokenFromFragment(f Fragment) Token {
	t := Token{Text: f.Text, Score: f.Score}
	if len(f.Box) == 0 {
		return t
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range f.Box {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	t.X = minX
	t.Y = (minY + maxY) / 2
	t.W = maxX - minX
	t.H = maxY - minY
	return t
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return (s[m-1] + s[m]) / 2
}

// GroupRows clusters tokens into physical rows, top to bottom. A token joins
// the open row while its center stays within the threshold of the row's
// running mean center.
func GroupRows(tokens []Token, g Geometry) []Row {
	if len(tokens) == 0 {
		return []Row{}
	}

	toks := append([]Token(nil), tokens...)
	sort.Slice(toks, func(i, j int) bool {
		a, b := toks[i], toks[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Text != b.Text {
			return a.Text < b.Text
		}
		return a.Score < b.Score
	})

	heights := make([]float64, len(toks))
	for i, t := range toks {
		heights[i] = t.H
	}
	medianH := median(heights)
	if medianH == 0 {
		medianH = g.FallbackHeight
	}
	threshold := math.Max(g.MinRowThreshold, medianH*g.RowThresholdFactor)

	var (
		rows   []Row
		bucket []Token
		sumY   float64
		cy     float64
	)
	for _, t := range toks {
		if len(bucket) == 0 || math.Abs(t.Y-cy) <= threshold {
			bucket = append(bucket, t)
			sumY += t.Y
			cy = sumY / float64(len(bucket))
			continue
		}
		rows = append(rows, newRow(cy, bucket))
		bucket = []Token{t}
		sumY = t.Y
		cy = t.Y
	}
	if len(bucket) > 0 {
		rows = append(rows, newRow(cy, bucket))
	}
	return rows
}

func newRow(y float64, bucket []Token) Row {
	ts := append([]Token(nil), bucket...)
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].X < ts[j].X })
	texts := make([]string, len(ts))
	for i, t := range ts {
		texts[i] = t.Text
	}
	return Row{Y: y, Tokens: ts, Text: strings.Join(texts, " ")}
}

// rowHeight is the median token height of a row, substituting fallback for flat tokens
func rowHeight(r Row, fallback float64) float64 {
	hs := make([]float64, len(r.Tokens))
	for i, t := range r.Tokens {
		hs[i] = t.H
		if hs[i] == 0 {
			hs[i] = fallback
		}
	}
	if h := median(hs); h != 0 {
		return h
	}
	return fallback
}

// priceHit is the rightmost money-bearing token of a row
type priceHit struct {
	value float64
	token int
}

// rightmostPrice finds the money token with the largest X; on equal X the later token wins
func rightmostPrice(r Row) (priceHit, bool) {
	best := priceHit{token: -1}
	bestX := math.Inf(-1)
	for i, t := range r.Tokens {
		v, ok := ExtractMoney(t.Text)
		if !ok {
			continue
		}
		if t.X >= bestX {
			best = priceHit{value: v, token: i}
			bestX = t.X
		}
	}
	return best, best.token >= 0
}
