package parsing

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// assembler turns the rows left over by the totals pass into items
type assembler struct {
	rows     []Row
	labels   []RowLabels
	ledger   ledger
	geo      Geometry
	currency *CurrencyDetector
}

func (a *assembler) clusterThreshold() float64 {
	hs := make([]float64, len(a.rows))
	for i, r := range a.rows {
		hs[i] = rowHeight(r, a.geo.FallbackHeight)
	}
	h := median(hs)
	if h == 0 {
		h = a.geo.FallbackHeight
	}
	return math.Max(a.geo.MinClusterThreshold, h*a.geo.ClusterThresholdFactor)
}

// assemble anchors items on rows that carry a price or a quantity expression.
// Name-only rows are skipped here and picked up by the next anchor nearby.
func (a *assembler) assemble() []Item {
	maxDY := a.clusterThreshold()
	var items []Item

	for i, r := range a.rows {
		if !a.ledger.free(i) {
			continue
		}
		if a.labels[i].TotalsRelated() {
			a.ledger.claimTotals(i, BucketNone)
			continue
		}

		_, hasPrice := rightmostPrice(r)
		if !hasPrice && !hasQtyTimesUnit(r.Text) {
			continue
		}

		cluster := a.cluster(i, maxDY)
		anchor, hit, ok := a.pickAnchor(i, cluster)
		if !ok {
			continue
		}

		item, used, ok := a.build(i, cluster, anchor, hit)
		if !ok {
			continue
		}

		idx := len(items)
		items = append(items, item)
		for _, j := range used {
			a.ledger.claimItem(j, idx)
		}
	}

	out, remap := dedupeItems(items)
	a.ledger.remapItems(remap)
	return out
}

// cluster returns i followed by the rows within the window whose center is within maxDY
func (a *assembler) cluster(i int, maxDY float64) []int {
	out := []int{i}
	w := a.geo.ClusterWindow
	for j := i - w; j <= i+w; j++ {
		if j == i || j < 0 || j >= len(a.rows) {
			continue
		}
		if math.Abs(a.rows[j].Y-a.rows[i].Y) <= maxDY {
			out = append(out, j)
		}
	}
	return out
}

// available reports whether row j may still contribute to the item anchored around i
func (a *assembler) available(i, j int) bool {
	return j == i || a.ledger.free(j)
}

// pickAnchor selects the row with the largest rightmost price. The largest
// value in a cluster is usually the line total.
func (a *assembler) pickAnchor(i int, cluster []int) (int, priceHit, bool) {
	anchor := -1
	var best priceHit
	bestVal := -1.0
	for _, j := range cluster {
		if !a.available(i, j) || a.labels[j].TotalsRelated() {
			continue
		}
		hit, ok := rightmostPrice(a.rows[j])
		if !ok {
			continue
		}
		if hit.value > bestVal {
			anchor, best, bestVal = j, hit, hit.value
		}
	}
	return anchor, best, anchor >= 0
}

func (a *assembler) build(i int, cluster []int, anchor int, hit priceHit) (Item, []int, bool) {
	linePrice := hit.value
	quantity := 1
	var unitPrice *float64
	qtyIdx := -1

	for _, j := range append([]int{anchor}, cluster...) {
		if !a.available(i, j) {
			continue
		}
		if qp, ok := ExtractQtyTimesUnit(a.rows[j].Text); ok {
			quantity = qp.Quantity
			unitPrice = qp.UnitPrice
			qtyIdx = j
			break
		}
	}

	switch {
	case unitPrice == nil && quantity > 1 && linePrice > 0:
		u := round2(linePrice / float64(quantity))
		unitPrice = &u
	case unitPrice != nil && quantity > 1 && math.Abs(linePrice-*unitPrice) < 0.005:
		// only the "4 x 3,50" expression was printed, no separate line total
		linePrice = round2(float64(quantity) * *unitPrice)
	}

	leftText := a.leftover(a.rows[anchor])
	seen := make(map[string]bool)
	var parts []string
	addPart := func(s string) {
		key := NormalizeForMatch(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		parts = append(parts, s)
	}
	if ContainsLetters(leftText) {
		addPart(leftText)
	}

	var nameRows []int
	for _, j := range cluster {
		if j == anchor || !a.ledger.free(j) {
			continue
		}
		rj := a.rows[j]
		if a.labels[j].TotalsRelated() {
			continue
		}
		if _, ok := rightmostPrice(rj); ok {
			continue
		}
		if !ContainsLetters(rj.Text) || hasQtyTimesUnit(rj.Text) {
			continue
		}
		nameRows = append(nameRows, j)
	}
	sort.SliceStable(nameRows, func(x, y int) bool { return a.rows[nameRows[x]].Y < a.rows[nameRows[y]].Y })
	for _, j := range nameRows {
		addPart(a.cleanFragment(a.rows[j].Text))
	}

	rawName := collapseSpaces(strings.Join(parts, " "))
	if rawName == "" {
		return Item{}, nil, false
	}

	var unit *string
	if u, ok := ExtractUnitMeasure(leftText); ok {
		unit = &u
	} else if u, ok := ExtractUnitMeasure(rawName); ok {
		unit = &u
	}

	name := NormalizeDigits(rawName)
	name = packSizeRx.ReplaceAllString(name, " ")
	name = strings.ToLower(collapseSpaces(unitMeasure.ReplaceAllString(name, " ")))
	if name == "" || !ContainsLetters(name) {
		return Item{}, nil, false
	}

	used := []int{anchor}
	if qtyIdx >= 0 && qtyIdx != anchor {
		used = append(used, qtyIdx)
	}
	used = append(used, nameRows...)

	return Item{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Price:     linePrice,
		Unit:      unit,
	}, used, true
}

// leftover is the anchor row's text with prices, quantity expressions and
// currency markers removed, one fragment per distinct token
func (a *assembler) leftover(r Row) string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range r.Tokens {
		s := a.cleanFragment(t.Text)
		key := NormalizeForMatch(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return strings.Join(out, " ")
}

func (a *assembler) cleanFragment(s string) string {
	s = NormalizeDigits(s)
	s = stripQtyTimes(s)
	s = moneyRx.ReplaceAllString(s, " ")
	s = a.currency.strip(s)
	return collapseSpaces(s)
}

// dedupeItems drops repeated detections of the same line, keeping the first.
// remap[k] is the output index that item k was folded into.
func dedupeItems(items []Item) ([]Item, []int) {
	seen := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))
	remap := make([]int, len(items))
	for k, it := range items {
		key := fmt.Sprintf("%s|%d|%.2f", NormalizeForMatch(it.Name), it.Quantity, it.Price)
		if idx, ok := seen[key]; ok {
			remap[k] = idx
			continue
		}
		seen[key] = len(out)
		remap[k] = len(out)
		out = append(out, it)
	}
	return out, remap
}
