package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CurrencyDetector", func() {
	var (
		markers []CurrencyMarker
		d       *CurrencyDetector
		err     error
	)

	BeforeEach(func() {
		markers = []CurrencyMarker{
			{Code: "MAD", Aliases: []string{"mad", "dh", "dhs", "درهم"}},
			{Code: "eur", Aliases: []string{"€", "euro"}},
		}
	})

	JustBeforeEach(func() {
		d, err = NewCurrencyDetector(markers, "XXX")
	})

	It("should find a marker and return the canonical code", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Detect([]Row{rowOf(10, "TOTAL", "45,00", "DHS")})).To(Equal("MAD"))
		Expect(d.Detect([]Row{rowOf(10, "Total", "12,00", "€")})).To(Equal("EUR"))
		Expect(d.Detect([]Row{rowOf(10, "المجموع", "45,00", "درهم")})).To(Equal("MAD"))
	})

	It("should return the first marker scanning top to bottom", func() {
		rows := []Row{rowOf(10, "PRIX", "EN", "EURO"), rowOf(40, "5,00", "DH")}
		Expect(d.Detect(rows)).To(Equal("EUR"))
	})

	It("should not match aliases inside words", func() {
		rows := []Row{rowOf(10, "MADE", "IN", "FRANCE"), rowOf(40, "ADHESIF")}
		Expect(d.Detect(rows)).To(Equal("XXX"))
	})

	It("should fall back when there are no rows", func() {
		Expect(d.Detect(nil)).To(Equal("XXX"))
	})

	It("should strip markers from text", func() {
		Expect(d.strip("3,50 DH")).To(Equal("3,50"))
		Expect(d.strip("LAIT dhs.")).To(Equal("LAIT"))
		Expect(d.strip("ADHESIF")).To(Equal("ADHESIF"))
	})

	When("no markers are configured", func() {
		BeforeEach(func() {
			markers = nil
		})

		It("should always return the fallback", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Detect([]Row{rowOf(10, "5,00", "DH")})).To(Equal("XXX"))
			Expect(d.strip("5,00 DH")).To(Equal("5,00 DH"))
		})
	})

	When("a marker has no code", func() {
		BeforeEach(func() {
			markers = []CurrencyMarker{{Aliases: []string{"$"}}}
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
