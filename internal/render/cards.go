package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/schoolwrapped/recap-backend/internal/recap"
)

type cardStyle struct {
	background color.Color
	foreground color.Color
	accent     color.Color
}

var (
	slateStyle = cardStyle{
		background: color.RGBA{R: 15, G: 23, B: 42, A: 255},
		foreground: color.RGBA{R: 226, G: 232, B: 240, A: 255},
		accent:     color.RGBA{R: 34, G: 211, B: 238, A: 255},
	}
	navyStyle = cardStyle{
		background: color.RGBA{R: 12, G: 23, B: 40, A: 255},
		foreground: color.RGBA{R: 226, G: 232, B: 240, A: 255},
		accent:     color.RGBA{R: 34, G: 211, B: 238, A: 255},
	}
	deepNavyStyle = cardStyle{
		background: color.RGBA{R: 10, G: 22, B: 37, A: 255},
		foreground: color.RGBA{R: 226, G: 232, B: 240, A: 255},
		accent:     color.RGBA{R: 34, G: 211, B: 238, A: 255},
	}
	procrastStyle = cardStyle{
		background: color.RGBA{R: 239, G: 68, B: 68, A: 255},
		foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		accent:     color.RGBA{R: 253, G: 224, B: 71, A: 255},
	}
	procrastTileStyle = cardStyle{
		background: color.RGBA{R: 237, G: 110, B: 102, A: 255},
		foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		accent:     color.RGBA{R: 253, G: 224, B: 71, A: 255},
	}
	monthStyle = cardStyle{
		background: color.RGBA{R: 250, G: 214, B: 115, A: 255},
		foreground: color.RGBA{R: 124, G: 45, B: 18, A: 255},
		accent:     color.RGBA{R: 234, G: 88, B: 12, A: 255},
	}
	classmatesStyle = cardStyle{
		background: color.RGBA{R: 26, G: 26, B: 46, A: 255},
		foreground: color.RGBA{R: 234, G: 234, B: 234, A: 255},
		accent:     color.RGBA{R: 14, G: 165, B: 233, A: 255},
	}
	classmatesTileStyle = cardStyle{
		background: color.RGBA{R: 20, G: 21, B: 35, A: 255},
		foreground: color.RGBA{R: 230, G: 234, B: 240, A: 255},
		accent:     color.RGBA{R: 14, G: 165, B: 233, A: 255},
	}
)

func newCard(size int, background color.Color) *gg.Context {
	dc := gg.NewContext(size, size)
	dc.SetColor(background)
	dc.Clear()
	return dc
}

// drawTop draws text anchored at its top-left corner, matching the layout
// coordinates the cards were tuned with, and returns the line height.
func drawTop(dc *gg.Context, face font.Face, col color.Color, text string, x, y float64) float64 {
	dc.SetFontFace(face)
	dc.SetColor(col)
	_, h := dc.MeasureString(text)
	dc.DrawString(text, x, y+h)
	return h
}

// drawMultiline handles explicit newlines in header copy.
func drawMultiline(dc *gg.Context, face font.Face, col color.Color, text string, x, y, spacing float64) {
	for _, line := range strings.Split(text, "\n") {
		h := drawTop(dc, face, col, line, x, y)
		y += h + spacing
	}
}

func drawCTA(dc *gg.Context, faces *faceSet, accent color.Color, cta string, size int) {
	if cta == "" {
		return
	}
	s := float64(size)
	dc.SetFontFace(faces.cta)
	_, h := dc.MeasureString(cta)
	drawTop(dc, faces.cta, accent, cta, s*0.08, s-h-s*0.08)
}

type statOffsets [4]float64

var defaultOffsets = statOffsets{0.15, 0.30, 0.10, 0.08}

func (o statOffsets) at(i int) float64 {
	if o[i] == 0 {
		return defaultOffsets[i]
	}
	return o[i]
}

// statCard is the generic layout behind most slides: header, oversized stat,
// then up to two lines of detail.
func (r *Renderer) statCard(size int, value, header, detail, small string, style cardStyle, offsets statOffsets, cta string) image.Image {
	dc := newCard(size, style.background)
	faces := r.faces(size)
	s := float64(size)

	left := s * 0.08
	y := s * 0.10
	maxWidth := s * 0.84

	drawMultiline(dc, faces.regular, style.foreground, header, left, y, s*0.02)
	y += s * offsets.at(0)

	drawTop(dc, faces.statBig, style.accent, value, left, y)
	y += s * offsets.at(1)

	if detail != "" {
		drawTop(dc, faces.regular, style.foreground, ellipsize(dc, faces.regular, detail, maxWidth), left, y)
		y += s * offsets.at(2)
	}
	if small != "" {
		drawTop(dc, faces.small, style.foreground, ellipsize(dc, faces.small, small, maxWidth), left, y)
	}

	drawCTA(dc, faces, style.accent, cta, size)
	return dc.Image()
}

// procrastCard is the one special-format stat: the big number carries a unit
// line instead of detail copy.
func (r *Renderer) procrastCard(size int, hours float64, style cardStyle, cta string) image.Image {
	dc := newCard(size, style.background)
	faces := r.faces(size)
	s := float64(size)

	left := s * 0.08
	y := s * 0.10

	drawMultiline(dc, faces.regular, style.foreground, "I submitted my\nassignments", left, y, s*0.02)
	y += s * 0.14

	drawTop(dc, faces.big, style.accent, fmt.Sprintf("%.1f", hours), left, y)
	y += s * 0.24

	drawTop(dc, faces.hours, style.accent, "hours", left, y)
	y += s * 0.22

	drawTop(dc, faces.regular, style.foreground, "before the deadline", left, y)
	y += s * 0.07

	drawTop(dc, faces.small, style.foreground, "on average", left, y)

	drawCTA(dc, faces, style.accent, cta, size)
	return dc.Image()
}

func (r *Renderer) busiestMonthCard(size int, monthName, detail string, cta string) image.Image {
	style := monthStyle
	dc := newCard(size, style.background)
	faces := r.faces(size)
	s := float64(size)

	left := s * 0.08
	y := s * 0.10

	drawTop(dc, faces.regular, style.foreground, "My busiest month was", left, y)
	y += s * 0.08

	drawTop(dc, faces.hours, style.accent, monthName, left, y)
	y += s * 0.24

	if detail != "" {
		drawTop(dc, faces.regular, style.foreground, detail, left, y)
	}

	drawCTA(dc, faces, style.accent, cta, size)
	return dc.Image()
}

func (r *Renderer) classmatesCard(size int, classmates []recap.ClassmateField, style cardStyle, cta string) image.Image {
	dc := newCard(size, style.background)
	faces := r.faces(size)
	s := float64(size)

	left := s * 0.08
	maxWidth := s * 0.84
	y := s * 0.10

	drawTop(dc, faces.nameBold, style.foreground, "My top classmates", left, y)
	y += s * 0.12

	nameFace := r.face("bold", s*0.05)
	detailFace := r.face("light", s*0.038)

	measureWith := func(face font.Face) func(string) float64 {
		return func(t string) float64 {
			dc.SetFontFace(face)
			w, _ := dc.MeasureString(t)
			return w
		}
	}
	nameMeasure := measureWith(nameFace)
	detailMeasure := measureWith(detailFace)

	dc.SetFontFace(nameFace)
	_, nameHeight := dc.MeasureString("Ag")
	dc.SetFontFace(detailFace)
	_, detailHeight := dc.MeasureString("Ag")

	rowGap := s * 0.04

	shown := classmates
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, cls := range shown {
		name := fmt.Sprintf("%s: %d shared classes", cls.Name, cls.SharedSections)
		detail := "Shared classes"
		if len(cls.Sections) > 0 {
			sections := cls.Sections
			if len(sections) > 4 {
				sections = sections[:4]
			}
			detail = strings.Join(sections, ", ")
		}

		for _, line := range wrapWithEllipsis(name, maxWidth, 2, nameMeasure) {
			drawTop(dc, nameFace, style.accent, line, left, y)
			y += nameHeight + s*0.008
		}
		for _, line := range wrapWithEllipsis(detail, maxWidth, 2, detailMeasure) {
			drawTop(dc, detailFace, style.foreground, line, left, y)
			y += detailHeight + s*0.004
		}
		y += rowGap
	}

	drawCTA(dc, faces, style.accent, cta, size)
	return dc.Image()
}

func ellipsize(dc *gg.Context, face font.Face, text string, maxWidth float64) string {
	lines := wrapWithEllipsis(text, maxWidth, 1, func(t string) float64 {
		dc.SetFontFace(face)
		w, _ := dc.MeasureString(t)
		return w
	})
	if len(lines) == 0 {
		return text
	}
	return lines[0]
}

// groupInt formats an integer with thousands separators the way the cards
// print big stats.
func groupInt(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
