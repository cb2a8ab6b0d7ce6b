package record

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the layout every PaymentRecord date is stored in
const DateFormat = "2006-01-02"

// ErrMissingReceiptNumber is returned when a record has no receipt number
var ErrMissingReceiptNumber = errors.New("receipt number is required")

// PaymentType is how a payment was made
type PaymentType string

const (
	EFT  PaymentType = "EFT"
	CASH PaymentType = "CASH"
)

// IsCash reports whether the type names a cash payment. Any other value,
// including empty or unrecognized ones, is treated as EFT.
func (t PaymentType) IsCash() bool {
	return strings.Contains(strings.ToUpper(strings.TrimSpace(string(t))), string(CASH))
}

// PaymentRecord is one receipt's worth of data
type PaymentRecord struct {
	ReceiptNumber string      `json:"rn"`
	Date          string      `json:"date"` // YYYY-MM-DD
	PayerName     string      `json:"name"`
	Amount        string      `json:"amount"` // kept verbatim, e.g. "R675"
	Reason        string      `json:"reason"`
	PaymentType   PaymentType `json:"type"`
}

// New returns an empty record dated now with the default payment type
func New(now time.Time) PaymentRecord {
	return PaymentRecord{
		Date:        now.Format(DateFormat),
		PaymentType: EFT,
	}
}

// Validate checks the fields required before a record can be rendered in bulk
func (r PaymentRecord) Validate() error {
	if strings.TrimSpace(r.ReceiptNumber) == "" {
		return ErrMissingReceiptNumber
	}
	return nil
}

// Filename builds the download name for the rendered receipt,
// e.g. Receipt_1001_Fatima_Patel.jpg
func (r PaymentRecord) Filename(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("Receipt_%s_%s.%s", r.ReceiptNumber, strings.ReplaceAll(r.PayerName, " ", "_"), ext)
}
