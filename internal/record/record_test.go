package record

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PaymentRecord", func() {
	Describe("New", func() {
		It("dates the record and defaults to EFT", func() {
			rec := New(time.Date(2024, 12, 1, 23, 59, 0, 0, time.UTC))
			Expect(rec.Date).To(Equal("2024-12-01"))
			Expect(rec.PaymentType).To(Equal(EFT))
			Expect(rec.ReceiptNumber).To(BeEmpty())
			Expect(rec.PayerName).To(BeEmpty())
		})
	})

	DescribeTable("PaymentType.IsCash",
		func(t PaymentType, expected bool) {
			Expect(t.IsCash()).To(Equal(expected))
		},
		Entry("CASH", CASH, true),
		Entry("lowercase cash", PaymentType("cash"), true),
		Entry("padded mixed case", PaymentType("  Cash "), true),
		Entry("cash inside a longer value", PaymentType("petty cash"), true),
		Entry("EFT", EFT, false),
		Entry("empty", PaymentType(""), false),
		Entry("unrecognized", PaymentType("card"), false),
	)

	Describe("Validate", func() {
		It("requires a receipt number", func() {
			Expect(PaymentRecord{ReceiptNumber: "  "}.Validate()).To(MatchError(ErrMissingReceiptNumber))
		})

		It("accepts a record with a receipt number", func() {
			Expect(PaymentRecord{ReceiptNumber: "1001"}.Validate()).To(Succeed())
		})
	})

	Describe("Filename", func() {
		It("joins the receipt number and underscored name", func() {
			rec := PaymentRecord{ReceiptNumber: "1001", PayerName: "Fatima Patel"}
			Expect(rec.Filename("jpg")).To(Equal("Receipt_1001_Fatima_Patel.jpg"))
		})

		It("accepts an extension with a leading dot", func() {
			rec := PaymentRecord{ReceiptNumber: "7", PayerName: "Mo"}
			Expect(rec.Filename(".png")).To(Equal("Receipt_7_Mo.png"))
		})
	})
})
