package receipt

import (
	"time"

	"github.com/zombor/receipt-maker/internal/record"
)

// Session holds one user's working state: the uploaded template and the
// editable list of parsed records
type Session struct {
	ID         string                 `json:"id"`
	TemplateID string                 `json:"template_id,omitempty"`
	Records    []record.PaymentRecord `json:"records"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Template describes a stored receipt template image
type Template struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`     // path in storage
	ContentType string    `json:"content_type"` // always image/png once stored
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}
