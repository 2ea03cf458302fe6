package certificate

import (
	"embed"
	"fmt"
	"sync"
	"unicode"

	"golang.org/x/image/font/sfnt"
)

const fontFamily = "DejaVu"

//go:embed fonts/*.ttf
var fontFiles embed.FS

// fpdf keys its styles this way; "BI" is bold italic.
var fontStyles = map[string]string{
	"":   "fonts/DejaVuSansCondensed.ttf",
	"B":  "fonts/DejaVuSansCondensed-Bold.ttf",
	"I":  "fonts/DejaVuSansCondensed-Oblique.ttf",
	"BI": "fonts/DejaVuSansCondensed-BoldOblique.ttf",
}

type fontFace struct {
	data  []byte
	glyph *sfnt.Font
}

type fontSet map[string]fontFace

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	set := make(fontSet, len(fontStyles))
	for style, name := range fontStyles {
		data, err := fontFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set[style] = fontFace{data: data, glyph: f}
	}
	return set, nil
})

// missingRune returns the first rune of s that the face of style cannot draw.
// Runes outside the basic multilingual plane are never drawable.
func (fs fontSet) missingRune(style, s string) (rune, bool) {
	face, ok := fs[style]
	if !ok {
		return 0, false
	}
	var buf sfnt.Buffer
	for _, r := range s {
		if r == ' ' {
			continue
		}
		if r > 0xFFFF || unicode.IsControl(r) {
			return r, true
		}
		idx, err := face.glyph.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return r, true
		}
	}
	return 0, false
}
