package parsing

import (
	"encoding/json"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// supermarketReceipt is a typical Moroccan till receipt
func supermarketReceipt() OCRResult {
	return ocrOf(
		[]Fragment{frag("MARJANE", 10, 10, 200, 30)},
		line("COCA COLA 1.5L", "12,00", 60),
		[]Fragment{frag("EAU MINERALE", 10, 90, 200, 110)},
		line("4 x 3,50 DH", "14,00", 125),
		line("PAIN", "5,00", 180),
		line("TOTAL", "31,00", 240),
		line("ESPECES", "50,00", 280),
		line("RENDU", "19,00", 320),
	)
}

var _ = Describe("Parser", func() {
	var p *Parser

	BeforeEach(func() {
		p = mustParser(DefaultConfig())
	})

	Describe("NewParser", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*Config)) {
				cfg := DefaultConfig()
				mutate(&cfg)
				_, err := NewParser(cfg)
				Expect(err).To(HaveOccurred())
			},
			Entry("confidence above one", func(c *Config) { c.MinConfidence = 1.5 }),
			Entry("negative confidence", func(c *Config) { c.MinConfidence = -0.1 }),
			Entry("no default currency", func(c *Config) { c.DefaultCurrency = "" }),
			Entry("negative window", func(c *Config) { c.Geometry.ClusterWindow = -1 }),
			Entry("bad items total pattern", func(c *Config) { c.ItemsTotalPattern = "(" }),
			Entry("currency without code", func(c *Config) {
				c.Currencies = append(c.Currencies, CurrencyMarker{Aliases: []string{"$"}})
			}),
		)

		It("should expose its configuration", func() {
			Expect(p.Config().DefaultCurrency).To(Equal("MAD"))
		})
	})

	Describe("Parse", func() {
		When("given a full receipt", func() {
			var receipt Receipt

			BeforeEach(func() {
				receipt = p.Parse(supermarketReceipt())
			})

			It("should extract every item", func() {
				unit := "l"
				unitPrice := 3.5
				Expect(receipt.Items).To(Equal([]Item{
					{Name: "coca cola", Quantity: 1, Price: 12, Unit: &unit},
					{Name: "eau minerale", Quantity: 4, UnitPrice: &unitPrice, Price: 14},
					{Name: "pain", Quantity: 1, Price: 5},
				}))
			})

			It("should extract the totals block", func() {
				Expect(receipt.Totals.Total).To(HaveValue(Equal(31.0)))
				Expect(receipt.Totals.Paid).To(HaveValue(Equal(50.0)))
				Expect(receipt.Totals.Change).To(HaveValue(Equal(19.0)))
				Expect(receipt.Totals.ItemsTotal).To(HaveValue(Equal(31.0)))
				Expect(receipt.Totals.Subtotal).To(BeNil())
				Expect(receipt.Totals.Tax).To(BeNil())
			})

			It("should detect the currency", func() {
				Expect(receipt.Currency).To(Equal("MAD"))
			})

			It("should expose the rows it read", func() {
				Expect(receipt.Raw.Rows).To(HaveLen(8))
				Expect(receipt.Raw.Rows[0].Text).To(Equal("MARJANE"))
				Expect(receipt.Raw.Rows[7].Text).To(Equal("RENDU 19,00"))
			})
		})

		When("the receipt only has a total", func() {
			It("should not turn the total into an item", func() {
				receipt := p.Parse(ocrOf(line("TOTAL", "45,00", 100)))

				Expect(receipt.Items).To(BeEmpty())
				Expect(receipt.Totals.Total).To(HaveValue(Equal(45.0)))
				Expect(receipt.Totals.ItemsTotal).To(BeNil())
			})
		})

		When("a totals row sits right under an item", func() {
			It("should keep the two apart", func() {
				receipt := p.Parse(ocrOf(
					line("PAIN", "5,00", 100),
					line("TOTAL", "5,00", 124),
				))

				Expect(receipt.Items).To(HaveLen(1))
				Expect(receipt.Items[0].Name).To(Equal("pain"))
				Expect(receipt.Totals.Total).To(HaveValue(Equal(5.0)))
			})
		})

		When("a fragment has low confidence", func() {
			It("should leave it out entirely", func() {
				smudge := frag("CHEWING GUM 9,99", 10, 200, 300, 220)
				smudge.Score = 0.3

				receipt := p.Parse(ocrOf(line("PAIN", "5,00", 100), []Fragment{smudge}))

				Expect(receipt.Raw.Rows).To(HaveLen(1))
				Expect(receipt.Items).To(HaveLen(1))
				for _, r := range receipt.Raw.Rows {
					Expect(r.Text).NotTo(ContainSubstring("CHEWING"))
				}
			})
		})

		It("should never assign a row to both an item and a totals bucket", func() {
			_, l := p.run(supermarketReceipt())

			Expect(l.itemRows()).NotTo(BeEmpty())
			Expect(l.totalsRows()).NotTo(BeEmpty())
			for _, i := range l.itemRows() {
				Expect(l.totalsRows()).NotTo(ContainElement(i))
			}
		})

		It("should point every item row at an emitted item after duplicates are merged", func() {
			receipt, l := p.run(ocrOf(
				line("PAIN", "5,00", 100),
				line("LAIT", "7,50", 200),
				line("PAIN", "5,00", 300),
			))

			Expect(receipt.Items).To(HaveLen(2))
			Expect(l.itemRows()).To(Equal([]int{0, 1, 2}))
			for _, i := range l.itemRows() {
				idx, ok := l.claimedBy(i)
				Expect(ok).To(BeTrue())
				Expect(idx).To(BeNumerically("<", len(receipt.Items)))
			}
			idx, _ := l.claimedBy(2)
			Expect(receipt.Items[idx].Name).To(Equal("pain"))
			idx, _ = l.claimedBy(1)
			Expect(receipt.Items[idx].Name).To(Equal("lait"))
		})

		It("should give the same result for any fragment order", func() {
			ocr := supermarketReceipt()
			want := p.Parse(ocr)

			r := rand.New(rand.NewSource(7))
			for n := 0; n < 10; n++ {
				shuffled := OCRResult{Lines: append([]Fragment(nil), ocr.Lines...)}
				r.Shuffle(len(shuffled.Lines), func(i, j int) {
					shuffled.Lines[i], shuffled.Lines[j] = shuffled.Lines[j], shuffled.Lines[i]
				})
				Expect(p.Parse(shuffled)).To(Equal(want))
			}
		})

		It("should be safe for concurrent use", func() {
			want := p.Parse(supermarketReceipt())
			done := make(chan Receipt, 8)
			for n := 0; n < 8; n++ {
				go func() {
					defer GinkgoRecover()
					done <- p.Parse(supermarketReceipt())
				}()
			}
			for n := 0; n < 8; n++ {
				Expect(<-done).To(Equal(want))
			}
		})
	})
})

var _ = Describe("ParseReceipt", func() {
	When("the input is empty", func() {
		It("should return an empty receipt in the default currency", func() {
			receipt := ParseReceipt(OCRResult{}, "EUR")

			Expect(receipt.Currency).To(Equal("EUR"))
			Expect(receipt.Items).NotTo(BeNil())
			Expect(receipt.Items).To(BeEmpty())
			Expect(receipt.Raw.Rows).To(BeEmpty())
			Expect(receipt.Totals).To(Equal(Totals{}))
		})

		It("should serialize empty lists and null totals", func() {
			data, err := json.Marshal(ParseReceipt(OCRResult{}, "EUR"))

			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{
				"currency": "EUR",
				"items": [],
				"totals": {
					"itemsTotal": null,
					"subtotal": null,
					"tax": null,
					"total": null,
					"paid": null,
					"change": null
				},
				"raw": {"rows": []}
			}`))
		})
	})

	It("should use the built-in currency when none is given", func() {
		Expect(ParseReceipt(OCRResult{}, "").Currency).To(Equal("MAD"))
	})

	It("should read the OCR service response format", func() {
		var ocr OCRResult
		err := json.Unmarshal([]byte(`{
			"lang": "fr",
			"score": 0.91,
			"lines": [
				{"text": "PAIN", "score": 0.98, "box": [[10, 90], [200, 90], [200, 110], [10, 110]]},
				{"text": "5,00", "score": 0.97, "box": [[300, 90], [360, 90], [360, 110], [300, 110]]}
			]
		}`), &ocr)
		Expect(err).NotTo(HaveOccurred())

		receipt := ParseReceipt(ocr, "")

		Expect(receipt.Items).To(HaveLen(1))
		Expect(receipt.Items[0].Name).To(Equal("pain"))
		Expect(receipt.Totals.ItemsTotal).To(HaveValue(Equal(5.0)))
	})
})
