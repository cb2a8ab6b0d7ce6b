package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/zombor/receipt-maker/internal/record"
)

// Checkbox mark and field anchors, in template pixels
var (
	cashMark        = image.Pt(97, 172)
	eftMark         = image.Pt(197, 172)
	receiptNumberAt = image.Pt(400, 185)
	payerNameAt     = image.Pt(260, 225)
	amountAt        = image.Pt(260, 290)
	dateAt          = image.Pt(400, 443)
	reasonAt        = image.Pt(260, 355)
)

const (
	breakdownIndent  = 10
	reasonLineHeight = 20
	checkboxMark     = "X"
)

// FaceKind selects which font face a placement is drawn with
type FaceKind int

const (
	BodyFace FaceKind = iota
	MarkFace
)

// Placement is one piece of text anchored at its top-left corner
type Placement struct {
	Text string
	At   image.Point
	Face FaceKind
}

// Renderer draws payment records onto a receipt template
type Renderer struct {
	faces Faces
	// opentype faces cache glyphs and are not safe for concurrent use
	mu sync.Mutex
}

// NewRenderer creates a Renderer with the given faces
func NewRenderer(faces Faces) *Renderer {
	if faces.Body == nil || faces.Mark == nil {
		faces = DefaultFaces()
	}
	return &Renderer{faces: faces}
}

// Layout returns every string drawn for rec and where it goes
func (r *Renderer) Layout(rec record.PaymentRecord) []Placement {
	mark := eftMark
	if rec.PaymentType.IsCash() {
		mark = cashMark
	}

	placements := []Placement{
		{Text: checkboxMark, At: mark, Face: MarkFace},
		{Text: rec.ReceiptNumber, At: receiptNumberAt},
		{Text: rec.PayerName, At: payerNameAt},
		{Text: rec.Amount, At: amountAt},
		{Text: rec.Date, At: dateAt},
	}

	return append(placements, reasonLayout(rec.Reason)...)
}

func reasonLayout(reason string) []Placement {
	var placements []Placement

	main, body, ok := SplitReason(reason)
	if !ok {
		for i, line := range Wrap(reason, wrapWidth) {
			placements = append(placements, Placement{
				Text: line,
				At:   reasonAt.Add(image.Pt(0, i*reasonLineHeight)),
			})
		}
		return placements
	}

	placements = append(placements, Placement{Text: main, At: reasonAt})
	cursor := reasonAt.Add(image.Pt(breakdownIndent, reasonLineHeight))
	for _, item := range BreakdownItems(body) {
		placements = append(placements, Placement{Text: "- " + item, At: cursor})
		cursor.Y += reasonLineHeight
	}
	return placements
}

// Render draws rec onto a copy of tmpl. tmpl itself is never modified.
func (r *Renderer) Render(rec record.PaymentRecord, tmpl image.Image) *image.RGBA {
	bounds := tmpl.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, tmpl, bounds.Min, draw.Src)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.Layout(rec) {
		if p.Text == "" {
			continue
		}
		face := r.faces.Body
		if p.Face == MarkFace {
			face = r.faces.Mark
		}
		drawText(canvas, face, bounds.Min.Add(p.At), p.Text)
	}
	return canvas
}

// drawText draws s with its top-left corner at pt
func drawText(dst draw.Image, face font.Face, pt image.Point, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y).Add(fixed.Point26_6{Y: face.Metrics().Ascent}),
	}
	d.DrawString(s)
}
