package record

import (
	"regexp"
	"strings"
	"time"
)

// fallbackNameLength is how much of an unparseable line is kept as the payer name
const fallbackNameLength = 20

// linePattern matches "Name R<digits> Reason". The name is optional and
// non-greedy so the first amount token on the line wins. Something must
// follow the amount.
var linePattern = regexp.MustCompile(`^(?:(.*?)\s+)?(R\d+)\s+(.*)$`)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Parser turns pasted payment lists into records
type Parser struct {
	timeSource TimeSource
}

// NewParser creates a Parser that dates records with the current time
func NewParser() *Parser {
	return &Parser{timeSource: defaultTimeSource{}}
}

// NewParserWithClock creates a Parser with a custom time source for testing
func NewParserWithClock(timeSource TimeSource) *Parser {
	return &Parser{timeSource: timeSource}
}

// Parse returns one record per non-blank line of text, in input order.
// It never fails: lines that don't fit the "Name R<amount> Reason"
// convention become fallback records the user can fix by hand.
func (p *Parser) Parse(text string) []PaymentRecord {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	records := make([]PaymentRecord, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, _ := p.ParseLine(line)
		records = append(records, rec)
	}
	return records
}

// ParseLine parses a single line. The bool reports whether the line matched
// the structured pattern or produced a fallback record.
func (p *Parser) ParseLine(line string) (PaymentRecord, bool) {
	rec := New(p.timeSource.Now())

	m := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		rec.PayerName = truncate(line, fallbackNameLength) + "..."
		rec.Reason = line
		return rec, false
	}

	rec.PayerName = strings.TrimSpace(m[1])
	rec.Amount = strings.TrimSpace(m[2])
	rec.Reason = strings.TrimSpace(m[3])
	return rec, true
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
