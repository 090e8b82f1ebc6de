package parsing

import (
	"math"
	"regexp"
)

// extractTotals walks the rows once, fills the totals buckets from the rightmost
// money value of each labelled row, and claims every totals-related row in the ledger
func extractTotals(rows []Row, labels []RowLabels, itemsTotalRx *regexp.Regexp, l ledger) Totals {
	var t Totals
	for i, r := range rows {
		lb := labels[i]
		if !lb.TotalsRelated() {
			continue
		}

		hit, ok := rightmostPrice(r)
		if !ok {
			l.claimTotals(i, BucketNone)
			continue
		}
		v := hit.value

		switch {
		case lb.Has(LabelChange):
			t.Change = &v
			l.claimTotals(i, BucketChange)
		case lb.Has(LabelPaid):
			t.Paid = &v
			l.claimTotals(i, BucketPaid)
		case lb.Has(LabelTax):
			// tax lines are sometimes printed twice at different granularity
			if t.Tax != nil {
				v = math.Max(*t.Tax, v)
			}
			t.Tax = &v
			l.claimTotals(i, BucketTax)
		case lb.Has(LabelSubtotal):
			t.Subtotal = &v
			l.claimTotals(i, BucketSubtotal)
		case lb.Has(LabelTotal) && !itemsTotalRx.MatchString(NormalizeForMatch(r.Text)):
			t.Total = &v
			l.claimTotals(i, BucketTotal)
		default:
			l.claimTotals(i, BucketNone)
		}
	}
	return t
}
