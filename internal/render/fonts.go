package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// The card layouts assume the Inter family at four weights, sized relative to
// the card edge the way the original share cards were tuned.
var fontFiles = map[string]string{
	"regular": "Inter-Regular.ttf",
	"bold":    "Inter-Bold.ttf",
	"light":   "Inter-Light.ttf",
	"black":   "Inter-Black.ttf",
}

type faceSet struct {
	regular    font.Face
	nameBold   font.Face
	small      font.Face
	smallLight font.Face
	big        font.Face
	statBig    font.Face
	hours      font.Face
	cta        font.Face
}

func loadFonts(dir string) (map[string]*truetype.Font, error) {
	fonts := make(map[string]*truetype.Font, len(fontFiles))
	for name, file := range fontFiles {
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", file, err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", file, err)
		}
		fonts[name] = parsed
	}
	return fonts, nil
}

func (r *Renderer) face(name string, px float64) font.Face {
	return truetype.NewFace(r.fonts[name], &truetype.Options{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (r *Renderer) faces(size int) *faceSet {
	s := float64(size)
	return &faceSet{
		regular:    r.face("regular", s*0.055),
		nameBold:   r.face("bold", s*0.055),
		small:      r.face("regular", s*0.042),
		smallLight: r.face("light", s*0.042),
		big:        r.face("black", s*0.23),
		statBig:    r.face("black", s*0.28),
		hours:      r.face("black", s*0.18),
		cta:        r.face("light", s*0.045),
	}
}
