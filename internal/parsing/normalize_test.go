package parsing

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NormalizeDigits", func() {
	DescribeTable("maps digits to ASCII",
		func(in, want string) {
			Expect(NormalizeDigits(in)).To(Equal(want))
		},
		Entry("Arabic-Indic", "٣,٥٠", "3,50"),
		Entry("Extended Arabic-Indic", "۱۲.۰۰", "12.00"),
		Entry("mixed with Latin", "TOTAL ٤٥,٠٠ DH", "TOTAL 45,00 DH"),
		Entry("ASCII untouched", "PAIN 5,00", "PAIN 5,00"),
		Entry("Arabic letters untouched", "حليب", "حليب"),
	)

	It("should be idempotent", func() {
		for _, s := range []string{"", "٠١٢٣٤٥٦٧٨٩", "۰۱۲۳۴۵۶۷۸۹", "abc 12,00", "حليب ١ لتر"} {
			once := NormalizeDigits(s)
			Expect(NormalizeDigits(once)).To(Equal(once))
		}
	})
})

var _ = Describe("NormalizeForMatch", func() {
	DescribeTable("strips accents and lower-cases",
		func(in, want string) {
			Expect(NormalizeForMatch(in)).To(Equal(want))
		},
		Entry("accented", "ESPÈCES", "especes"),
		Entry("hyphenated", "Sous-Total", "sous-total"),
		Entry("digits", "TOTAL ٤٥", "total 45"),
		Entry("cedilla", "Reçu", "recu"),
	)
})

var _ = Describe("ExtractMoney", func() {
	DescribeTable("finds the first two-decimal amount",
		func(in string, want float64, found bool) {
			v, ok := ExtractMoney(in)
			Expect(ok).To(Equal(found))
			if found {
				Expect(v).To(Equal(want))
			}
		},
		Entry("comma decimal", "7,50", 7.5, true),
		Entry("dot decimal with label", "TOTAL 14.00 DH", 14.0, true),
		Entry("Arabic digits", "١٢,٠٠", 12.0, true),
		Entry("first of several", "2,50 5,00", 2.5, true),
		Entry("size marker only", "1.5L", 0.0, false),
		Entry("integer only", "45", 0.0, false),
		Entry("no digits", "PAIN", 0.0, false),
	)

	It("should round trip comma formatted amounts", func() {
		for _, cents := range []int{0, 1, 9, 10, 99, 750, 1400, 4500, 12345, 100000, 9999999} {
			want := float64(cents) / 100
			s := fmt.Sprintf("%d,%02d", cents/100, cents%100)
			v, ok := ExtractMoney(s)
			Expect(ok).To(BeTrue(), s)
			Expect(v).To(Equal(want), s)
		}
	})
})

var _ = Describe("ExtractQtyTimesUnit", func() {
	When("the expression has a money unit price", func() {
		It("should return quantity and unit price", func() {
			qp, ok := ExtractQtyTimesUnit("4 x 3,50 DH")
			Expect(ok).To(BeTrue())
			Expect(qp.Quantity).To(Equal(4))
			Expect(qp.UnitPrice).NotTo(BeNil())
			Expect(*qp.UnitPrice).To(Equal(3.5))
		})

		It("should accept the multiplication sign", func() {
			qp, ok := ExtractQtyTimesUnit("2×1.25")
			Expect(ok).To(BeTrue())
			Expect(qp.Quantity).To(Equal(2))
			Expect(*qp.UnitPrice).To(Equal(1.25))
		})

		It("should accept an upper-case X", func() {
			qp, ok := ExtractQtyTimesUnit("3 X 2,00")
			Expect(ok).To(BeTrue())
			Expect(qp.Quantity).To(Equal(3))
		})
	})

	When("the unit price is not a two-decimal amount", func() {
		It("should return the quantity without unit price", func() {
			qp, ok := ExtractQtyTimesUnit("3 x 2")
			Expect(ok).To(BeTrue())
			Expect(qp.Quantity).To(Equal(3))
			Expect(qp.UnitPrice).To(BeNil())
		})
	})

	When("the quantity is zero", func() {
		It("should not match", func() {
			_, ok := ExtractQtyTimesUnit("0 x 3,50")
			Expect(ok).To(BeFalse())
		})
	})

	When("there is no expression", func() {
		It("should not match", func() {
			_, ok := ExtractQtyTimesUnit("EAU MINERALE")
			Expect(ok).To(BeFalse())
		})
	})

	When("the expression is a pack size", func() {
		It("should not read it as a quantity", func() {
			_, ok := ExtractQtyTimesUnit("COCA COLA 6 X 33CL")
			Expect(ok).To(BeFalse())
		})

		It("should still find a quantity printed next to it", func() {
			qp, ok := ExtractQtyTimesUnit("EAU 6 X 1.5L 2 x 12,00")
			Expect(ok).To(BeTrue())
			Expect(qp.Quantity).To(Equal(2))
			Expect(qp.UnitPrice).To(HaveValue(Equal(12.0)))
		})
	})
})

var _ = Describe("stripQtyTimes", func() {
	It("should blank quantity expressions and keep pack sizes", func() {
		Expect(collapseSpaces(stripQtyTimes("EAU 6 X 1.5L 2 x 12,00"))).To(Equal("EAU 6 X 1.5L"))
	})
})

var _ = Describe("ExtractUnitMeasure", func() {
	DescribeTable("detects size markers",
		func(in, want string, found bool) {
			u, ok := ExtractUnitMeasure(in)
			Expect(ok).To(Equal(found))
			Expect(u).To(Equal(want))
		},
		Entry("litres attached", "COCA COLA 1.5L", "l", true),
		Entry("millilitres spaced", "JUS 500 ML", "ml", true),
		Entry("grams", "BISCUIT 110G", "g", true),
		Entry("kilograms with comma", "POMMES 1,5 Kg", "kg", true),
		Entry("pounds", "2 lb", "lb", true),
		Entry("centilitres", "33cl", "cl", true),
		Entry("no marker", "PAIN", "", false),
		Entry("letters after unit", "12 LOTS", "", false),
	)
})

var _ = Describe("ContainsLetters", func() {
	DescribeTable("detects Latin and Arabic letters",
		func(in string, want bool) {
			Expect(ContainsLetters(in)).To(Equal(want))
		},
		Entry("Latin", "EAU", true),
		Entry("accented", "É", true),
		Entry("Arabic", "حليب", true),
		Entry("amount", "12,00", false),
		Entry("Arabic digits", "٣٤", false),
		Entry("punctuation", "-- * --", false),
	)
})
