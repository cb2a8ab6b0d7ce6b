package scanning

// Scanner transcribes a screenshot of a payment list into plain text,
// one payment per line, ready for the record parser
type Scanner interface {
	// ScanList reads the payment lines out of an image or PDF
	ScanList(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
