package render

import (
	"regexp"
	"strings"
	"unicode"
)

// wrapWidth is the number of characters per line for a plain reason
const wrapWidth = 45

var (
	// breakdownPattern splits "Feb (R675 Sadia R675 Fatima)" into the main
	// reason and the body of the last parenthesized group.
	breakdownPattern = regexp.MustCompile(`(.*)\((.*)\)`)

	amountMarker = regexp.MustCompile(`R\d+`)
)

// SplitReason separates a reason into its main text and breakdown body.
// ok is false when the reason has no parenthesized group.
func SplitReason(reason string) (main, breakdown string, ok bool) {
	m := breakdownPattern.FindStringSubmatch(reason)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// BreakdownItems extracts "R<digits> <text>" items from a breakdown body.
// Each item runs up to the next R<digits> marker or the end of the body.
// A body that doesn't start with R gets one prepended, which recovers
// single-item breakdowns written as "(675 Sadia)".
func BreakdownItems(body string) []string {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "R") {
		body = "R" + body
	}

	markers := amountMarker.FindAllStringIndex(body, -1)
	items := make([]string, 0, len(markers))
	for i, m := range markers {
		end := len(body)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		rest := body[m[1]:end]
		if rest == "" || !unicode.IsSpace(rune(rest[0])) || strings.TrimSpace(rest) == "" {
			continue
		}
		items = append(items, strings.TrimSpace(body[m[0]:end]))
	}
	return items
}

// Wrap breaks text into lines of at most width characters on whitespace.
// A word longer than width is cut, filling the current line first.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var (
		lines   []string
		current []rune
	)
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > 0 {
			space := width
			if len(current) > 0 {
				space = width - len(current) - 1
			}

			if len(w) <= space {
				if len(current) > 0 {
					current = append(current, ' ')
				}
				current = append(current, w...)
				break
			}

			if len(w) > width && space > 0 {
				if len(current) > 0 {
					current = append(current, ' ')
				}
				current = append(current, w[:space]...)
				w = w[space:]
			}
			lines = append(lines, string(current))
			current = nil
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
