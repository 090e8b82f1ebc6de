package parsing

// Bucket names the totals field a row was assigned to
type Bucket int

const (
	// BucketNone marks a totals-related row that carried no usable value
	BucketNone Bucket = iota
	BucketSubtotal
	BucketTax
	BucketTotal
	BucketPaid
	BucketChange
)

type claimKind int

const (
	unclaimed claimKind = iota
	claimedByItem
	claimedByTotals
)

type claim struct {
	kind   claimKind
	item   int
	bucket Bucket
}

// ledger records which component owns each row index. A row moves out of
// unclaimed at most once.
type ledger []claim

func newLedger(n int) ledger {
	return make(ledger, n)
}

func (l ledger) free(i int) bool {
	return l[i].kind == unclaimed
}

func (l ledger) claimTotals(i int, b Bucket) {
	if l.free(i) {
		l[i] = claim{kind: claimedByTotals, bucket: b}
	}
}

func (l ledger) claimItem(i, item int) {
	if l.free(i) {
		l[i] = claim{kind: claimedByItem, item: item}
	}
}

// claimedBy returns the item that owns row i
func (l ledger) claimedBy(i int) (int, bool) {
	if l[i].kind != claimedByItem {
		return 0, false
	}
	return l[i].item, true
}

// remapItems rewrites item claims after items were merged or reordered
func (l ledger) remapItems(remap []int) {
	for i, c := range l {
		if c.kind == claimedByItem && c.item < len(remap) {
			l[i].item = remap[c.item]
		}
	}
}

// totalsRows returns the indices claimed by a totals bucket other than BucketNone
func (l ledger) totalsRows() []int {
	var out []int
	for i, c := range l {
		if c.kind == claimedByTotals && c.bucket != BucketNone {
			out = append(out, i)
		}
	}
	return out
}

// itemRows returns the indices claimed by any item
func (l ledger) itemRows() []int {
	var out []int
	for i, c := range l {
		if c.kind == claimedByItem {
			out = append(out, i)
		}
	}
	return out
}
