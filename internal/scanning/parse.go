package scanning

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zombor/receipt-maker/internal/imaging"
)

// listScanPrompt is the shared prompt used by all LLM providers for reading payment lists
const listScanPrompt = `You are reading a screenshot of a chat message that lists payments, one payment per line. Each payment usually looks like:

Name R<amount> Reason

for example "Ebrahims R2025 Feb (R675 Sadia R675 Faatima R675 Mo)".

Transcribe every payment line exactly as written:
- One payment per output line, in the order they appear
- Keep the "R" in front of every amount and keep any text in brackets
- Do not add, merge, total, or correct anything
- Skip timestamps, sender names, and message metadata
- Do not include any text before or after the list
- Do not use markdown code blocks`

// parseListText cleans up a model response into plain list lines
func parseListText(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		line = strings.TrimLeft(line, "-*• ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "", fmt.Errorf("no payment lines found in response")
	}
	return strings.Join(lines, "\n"), nil
}

// prepareImageData converts whatever was uploaded into PNG for the model
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	if strings.EqualFold(strings.TrimSpace(contentType), "image/png") && bytes.HasPrefix(imageData, []byte("\x89PNG")) {
		return imageData, nil
	}
	img, err := imaging.DecodeTemplate(imageData, contentType)
	if err != nil {
		return nil, fmt.Errorf("converting image to PNG: %w", err)
	}
	return imaging.EncodePNG(img)
}
