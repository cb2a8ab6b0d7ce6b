package render

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

const (
	bodyFontSize = 18
	markFontSize = 22
)

// Faces holds the two font faces a receipt is drawn with
type Faces struct {
	Body font.Face
	Mark font.Face
}

// DefaultFaces returns the built-in bitmap font for both faces
func DefaultFaces() Faces {
	return Faces{Body: basicfont.Face7x13, Mark: basicfont.Face7x13}
}

// LoadFaces loads a TrueType/OpenType font from path. If the font can't be
// loaded the built-in bitmap font is used instead.
func LoadFaces(path string) Faces {
	if path == "" {
		return DefaultFaces()
	}

	faces, err := loadFaces(path)
	if err != nil {
		slog.Warn("Falling back to built-in font", "path", path, "error", err)
		return DefaultFaces()
	}
	return faces
}

func loadFaces(path string) (Faces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Faces{}, fmt.Errorf("reading font: %w", err)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return Faces{}, fmt.Errorf("parsing font: %w", err)
	}

	body, err := opentype.NewFace(f, &opentype.FaceOptions{Size: bodyFontSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return Faces{}, fmt.Errorf("creating body face: %w", err)
	}
	mark, err := opentype.NewFace(f, &opentype.FaceOptions{Size: markFontSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return Faces{}, fmt.Errorf("creating checkbox face: %w", err)
	}

	return Faces{Body: body, Mark: mark}, nil
}
