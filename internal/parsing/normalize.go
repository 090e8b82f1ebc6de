package parsing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	moneyRx      = regexp.MustCompile(`\d{1,5}[.,]\d{2}`)
	qtyTimesRx   = regexp.MustCompile(`(?i)(\d+)\s*[x×]\s*([0-9]+(?:[.,][0-9]{1,2})?)`)
	unitMeasure  = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|g|mg|l|ml|cl|lb|oz)\b`)
	packSizeRx   = regexp.MustCompile(`(?i)\b\d+\s*[x×]\s*\d+(?:[.,]\d+)?\s*(?:kg|g|mg|l|ml|cl|lb|oz)\b`)
	multiSpaceRx = regexp.MustCompile(`\s+`)
)

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// combiningDiacritics is the Combining Diacritical Marks block (U+0300–U+036F)
var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// NormalizeDigits maps Arabic-Indic and Extended Arabic-Indic digits to ASCII
func NormalizeDigits(s string) string {
	return digitReplacer.Replace(s)
}

// stripDiacritics decomposes s and drops combining marks
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeForMatch prepares text for keyword and currency matching.
// Never use the result for display.
func NormalizeForMatch(s string) string {
	return strings.ToLower(stripDiacritics(NormalizeDigits(s)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ExtractMoney returns the first amount with exactly two fraction digits found in s
func ExtractMoney(s string) (float64, bool) {
	m := moneyRx.FindString(NormalizeDigits(s))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return round2(v), true
}

// QtyPrice is a "<quantity> x <unit price>" expression
type QtyPrice struct {
	Quantity  int
	UnitPrice *float64
}

// qtyTimesMatches returns the submatch indices of quantity expressions in s,
// leaving out pack sizes such as "6 X 33CL" which belong to the article name
func qtyTimesMatches(s string) [][]int {
	packs := packSizeRx.FindAllStringIndex(s, -1)
	var out [][]int
	for _, m := range qtyTimesRx.FindAllStringSubmatchIndex(s, -1) {
		inPack := false
		for _, p := range packs {
			if m[0] >= p[0] && m[0] < p[1] {
				inPack = true
				break
			}
		}
		if !inPack {
			out = append(out, m)
		}
	}
	return out
}

// ExtractQtyTimesUnit matches "4 x 3,50" style expressions. The unit price is
// only set when it parses as money; the quantity is always at least 1.
func ExtractQtyTimesUnit(s string) (QtyPrice, bool) {
	s = NormalizeDigits(s)
	ms := qtyTimesMatches(s)
	if len(ms) == 0 {
		return QtyPrice{}, false
	}
	m := ms[0]
	qty, err := strconv.Atoi(s[m[2]:m[3]])
	if err != nil || qty < 1 {
		return QtyPrice{}, false
	}
	qp := QtyPrice{Quantity: qty}
	if u, ok := ExtractMoney(s[m[4]:m[5]]); ok {
		qp.UnitPrice = &u
	}
	return qp, true
}

// stripQtyTimes blanks out quantity expressions, keeping pack sizes
func stripQtyTimes(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range qtyTimesMatches(s) {
		b.WriteString(s[last:m[0]])
		b.WriteString(" ")
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// hasQtyTimesUnit reports whether s carries a quantity expression
func hasQtyTimesUnit(s string) bool {
	_, ok := ExtractQtyTimesUnit(s)
	return ok
}

// ExtractUnitMeasure returns the lower-cased unit of a "1.5 L" style size marker
func ExtractUnitMeasure(s string) (string, bool) {
	m := unitMeasure.FindStringSubmatch(NormalizeDigits(s))
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[2]), true
}

// ContainsLetters reports whether s holds any Latin or Arabic letter
func ContainsLetters(s string) bool {
	for _, r := range stripDiacritics(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return true
		case r >= 0x0600 && r <= 0x06ff && unicode.IsLetter(r):
			return true
		}
	}
	return false
}

// collapseSpaces trims s and folds whitespace runs into single spaces
func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRx.ReplaceAllString(s, " "))
}
