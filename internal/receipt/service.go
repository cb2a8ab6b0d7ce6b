package receipt

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-maker/internal/imaging"
	"github.com/zombor/receipt-maker/internal/record"
	"github.com/zombor/receipt-maker/internal/render"
	"github.com/zombor/receipt-maker/internal/scanning"
)

// ArchiveFilename is the download name of a bulk receipt archive
const ArchiveFilename = "Splashin_Receipts.zip"

const receiptExt = "jpg"

var (
	// ErrNoTemplate is returned when there is no template to render onto
	ErrNoTemplate = errors.New("no receipt template uploaded")
	// ErrScannerDisabled is returned by ScanList when no scanner is configured
	ErrScannerDisabled = errors.New("list scanning is not configured")
	// ErrNoRecords is returned when a bulk render has nothing to render
	ErrNoRecords = errors.New("no records to render")
)

// IDGenerator generates unique IDs for sessions and templates
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Progress is called after each receipt in a bulk render
type Progress func(done, total int)

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles sessions, templates, and receipt rendering
type Service struct {
	db              DB
	scanner         scanning.Scanner
	storage         Storage
	renderer        *render.Renderer
	parser          *record.Parser
	idGenerator     IDGenerator
	timeSource      TimeSource
	defaultTemplate image.Image
	jpegQuality     int
}

// NewService creates a new Service with default ID generator and time source.
// scanner may be nil, which disables ScanList.
func NewService(db DB, scanner scanning.Scanner, storage Storage, renderer *render.Renderer) *Service {
	return NewServiceWithDeps(db, scanner, storage, renderer, uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, renderer *render.Renderer, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		renderer:    renderer,
		parser:      record.NewParserWithClock(timeSrc),
		idGenerator: idGen,
		timeSource:  timeSrc,
		jpegQuality: imaging.DefaultJPEGQuality,
	}
}

// SetDefaultTemplate sets the template used by sessions that haven't uploaded one
func (s *Service) SetDefaultTemplate(img image.Image) {
	s.defaultTemplate = img
}

// SetJPEGQuality sets the quality rendered receipts are encoded at
func (s *Service) SetJPEGQuality(quality int) {
	s.jpegQuality = quality
}

// NewSession starts an empty session
func (s *Service) NewSession() (*Session, error) {
	now := s.timeSource.Now()
	session := &Session{
		ID:        s.idGenerator.Generate(),
		Records:   []record.PaymentRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by ID
func (s *Service) GetSession(id string) (*Session, error) {
	session, err := s.db.GetSession(id)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

func (s *Service) saveRecords(session *Session, records []record.PaymentRecord) error {
	if records == nil {
		records = []record.PaymentRecord{}
	}
	session.Records = records
	session.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveSession(session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ParseList parses a pasted payment list and replaces the session's records with it
func (s *Service) ParseList(sessionID, text string) ([]record.PaymentRecord, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	records := s.parser.Parse(text)
	if err := s.saveRecords(session, records); err != nil {
		return nil, err
	}

	slog.Info("Parsed payment list", "session", sessionID, "records", len(records))
	return session.Records, nil
}

// ScanList transcribes a screenshot of a payment list and parses it like ParseList
func (s *Service) ScanList(sessionID string, imageData []byte, contentType string) ([]record.PaymentRecord, error) {
	if s.scanner == nil {
		return nil, ErrScannerDisabled
	}

	text, err := s.scanner.ScanList(imageData, contentType)
	if err != nil {
		slog.Error("Failed to scan payment list",
			"content_type", contentType,
			"file_size", len(imageData),
			"error", err,
		)
		return nil, fmt.Errorf("scanning list: %w", err)
	}

	return s.ParseList(sessionID, text)
}

// Records returns the session's current records
func (s *Service) Records(sessionID string) ([]record.PaymentRecord, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Records == nil {
		return []record.PaymentRecord{}, nil
	}
	return session.Records, nil
}

// UpdateRecords replaces the session's records with an edited list
func (s *Service) UpdateRecords(sessionID string, records []record.PaymentRecord) error {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}
	return s.saveRecords(session, records)
}

// ClearRecords empties the session's list
func (s *Service) ClearRecords(sessionID string) error {
	return s.UpdateRecords(sessionID, nil)
}

// UploadTemplate decodes an uploaded template, stores it as PNG, and
// attaches it to the session
func (s *Service) UploadTemplate(sessionID, filename string, data []byte, contentType string) (*Template, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	img, err := imaging.DecodeTemplate(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("decoding template %s: %w", filename, err)
	}
	pngData, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	id := s.idGenerator.Generate()
	savedPath, err := s.storage.Save(id+".png", pngData)
	if err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}

	bounds := img.Bounds()
	template := &Template{
		ID:          id,
		Filename:    savedPath,
		ContentType: "image/png",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveTemplate(template); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving template to database: %w", err)
	}

	session.TemplateID = id
	session.UpdatedAt = template.CreatedAt
	if err := s.db.SaveSession(session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	slog.Info("Template uploaded", "session", sessionID, "template", id, "width", template.Width, "height", template.Height)
	return template, nil
}

// TemplateImage returns the session's template, falling back to the default
func (s *Service) TemplateImage(sessionID string) (image.Image, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.TemplateID == "" {
		if s.defaultTemplate == nil {
			return nil, ErrNoTemplate
		}
		return s.defaultTemplate, nil
	}

	data, err := s.templateData(session.TemplateID)
	if err != nil {
		return nil, err
	}
	img, err := imaging.DecodeTemplate(data, "image/png")
	if err != nil {
		return nil, fmt.Errorf("decoding stored template: %w", err)
	}
	return img, nil
}

// TemplatePNG returns the session's template as PNG bytes
func (s *Service) TemplatePNG(sessionID string) ([]byte, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.TemplateID != "" {
		return s.templateData(session.TemplateID)
	}
	if s.defaultTemplate == nil {
		return nil, ErrNoTemplate
	}
	return imaging.EncodePNG(s.defaultTemplate)
}

func (s *Service) templateData(id string) ([]byte, error) {
	template, err := s.db.GetTemplate(id)
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	data, err := s.storage.Get(template.Filename)
	if err != nil {
		return nil, fmt.Errorf("getting template file: %w", err)
	}
	return data, nil
}

// RenderSingle renders one receipt and returns the JPEG and its download name
func (s *Service) RenderSingle(sessionID string, rec record.PaymentRecord) ([]byte, string, error) {
	tmpl, err := s.TemplateImage(sessionID)
	if err != nil {
		return nil, "", err
	}

	data, err := imaging.EncodeJPEG(s.renderer.Render(rec, tmpl), s.jpegQuality)
	if err != nil {
		return nil, "", fmt.Errorf("encoding receipt: %w", err)
	}
	return data, entryName(rec), nil
}

// RenderBulk renders every record into a ZIP archive of JPEGs. If records is
// nil the session's records are used. Every record must have a receipt
// number; nothing is rendered otherwise.
func (s *Service) RenderBulk(sessionID string, records []record.PaymentRecord, progress Progress) ([]byte, error) {
	if records == nil {
		var err error
		records, err = s.Records(sessionID)
		if err != nil {
			return nil, err
		}
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	tmpl, err := s.TemplateImage(sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, rec := range records {
		data, err := imaging.EncodeJPEG(s.renderer.Render(rec, tmpl), s.jpegQuality)
		if err != nil {
			return nil, fmt.Errorf("encoding receipt %s: %w", rec.ReceiptNumber, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entryName(rec),
			Method:   zip.Deflate,
			Modified: s.timeSource.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", entryName(rec), err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("writing %s to archive: %w", entryName(rec), err)
		}

		if progress != nil {
			progress(i+1, len(records))
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	slog.Info("Rendered receipts", "session", sessionID, "count", len(records), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// entryName is the record's download name with path separators removed
func entryName(rec record.PaymentRecord) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(rec.Filename(receiptExt))
}
