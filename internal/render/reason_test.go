package render

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitReason", func() {
	It("splits the main reason from the breakdown", func() {
		main, body, ok := SplitReason("Feb (R675 Sadia R675 Fatima)")
		Expect(ok).To(BeTrue())
		Expect(main).To(Equal("Feb"))
		Expect(body).To(Equal("R675 Sadia R675 Fatima"))
	})

	It("uses the last parenthesized group", func() {
		main, body, ok := SplitReason("Gala (adults) (R100 Mo)")
		Expect(ok).To(BeTrue())
		Expect(main).To(Equal("Gala (adults)"))
		Expect(body).To(Equal("R100 Mo"))
	})

	It("reports no breakdown without parentheses", func() {
		_, _, ok := SplitReason("February swimming fees")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("BreakdownItems", func() {
	It("extracts each item in order", func() {
		Expect(BreakdownItems("R675 Sadia R675 Fatima")).To(Equal([]string{"R675 Sadia", "R675 Fatima"}))
	})

	It("handles multi-word items", func() {
		Expect(BreakdownItems("R675 sadia aqua R675 Faatima R675 Mo")).To(Equal([]string{
			"R675 sadia aqua",
			"R675 Faatima",
			"R675 Mo",
		}))
	})

	It("prepends the missing R on a single item", func() {
		Expect(BreakdownItems("675 Sadia")).To(Equal([]string{"R675 Sadia"}))
	})

	It("does not split on names that start with R", func() {
		Expect(BreakdownItems("R500 Rashid R250 Ruqayya")).To(Equal([]string{"R500 Rashid", "R250 Ruqayya"}))
	})

	It("skips a marker with no text after it", func() {
		Expect(BreakdownItems("R675 R600 Mo")).To(Equal([]string{"R600 Mo"}))
	})

	It("returns nothing for an empty body", func() {
		Expect(BreakdownItems("")).To(BeEmpty())
	})
})

var _ = Describe("Wrap", func() {
	var reason string

	BeforeEach(func() {
		reason = "Swimming lessons for the whole of February including the   gala entry fee and\tcap and goggles"
	})

	It("keeps every line within the width", func() {
		for _, line := range Wrap(reason, 45) {
			Expect(len([]rune(line))).To(BeNumerically("<=", 45))
		}
	})

	It("reconstructs the normalized text when no word exceeds the width", func() {
		lines := Wrap(reason, 45)
		Expect(len(lines)).To(BeNumerically(">", 1))
		Expect(strings.Join(lines, " ")).To(Equal(strings.Join(strings.Fields(reason), " ")))
	})

	It("cuts a word longer than the width after filling the line", func() {
		lines := Wrap("fee "+strings.Repeat("a", 60), 45)
		Expect(lines).To(Equal([]string{
			"fee " + strings.Repeat("a", 41),
			strings.Repeat("a", 19),
		}))
	})

	It("keeps every piece of a long word within the width", func() {
		lines := Wrap(strings.Repeat("b", 100)+" paid", 45)
		Expect(lines).To(Equal([]string{
			strings.Repeat("b", 45),
			strings.Repeat("b", 45),
			strings.Repeat("b", 10) + " paid",
		}))
	})

	It("moves a word that doesn't fit to the next line", func() {
		Expect(Wrap(strings.Repeat("c", 40)+" lessons", 45)).To(Equal([]string{
			strings.Repeat("c", 40),
			"lessons",
		}))
	})

	It("returns nothing for blank text", func() {
		Expect(Wrap("   ", 45)).To(BeEmpty())
	})
})
