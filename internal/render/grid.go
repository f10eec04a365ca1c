package render

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/schoolwrapped/recap-backend/internal/recap"
)

const gridTileSize = 600

// staticTile loads a pre-rendered PNG tile; a missing or unreadable file
// degrades to a labeled placeholder instead of failing the whole grid.
func (r *Renderer) staticTile(path string, size int, label string) image.Image {
	img, err := gg.LoadImage(path)
	if err != nil {
		r.log.Warn("Static tile unavailable, using placeholder", "path", path, "error", err)
		return r.placeholderTile(size, label)
	}
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func (r *Renderer) placeholderTile(size int, label string) image.Image {
	dc := newCard(size, color.RGBA{R: 24, G: 24, B: 32, A: 255})
	faces := r.faces(size)
	s := float64(size)
	fg := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	drawMultiline(dc, faces.small, fg, label+"\nmissing", s*0.08, s*0.45, s*0.02)
	return dc.Image()
}

// renderGrid composes the 3x3 summary image:
//
//	row 1: assignments, late night, busiest month
//	row 2: weekday submissions, title tile, top classmates
//	row 3: weekend submissions, avg hours before deadline, CTA tile
func (r *Renderer) renderGrid(f recap.Fields) image.Image {
	tile := gridTileSize
	gap := tile / 20
	edge := tile*3 + gap*4

	dc := gg.NewContext(edge, edge)
	dc.SetColor(color.Black)
	dc.Clear()

	avgHours := 0.0
	if f.AvgProcrastinationHours != nil {
		avgHours = *f.AvgProcrastinationHours
	}

	tiles := []image.Image{
		r.statCard(tile, groupInt(f.TotalAssignments), "I had", "assignments in Schoology",
			fmt.Sprintf("across %d courses", f.CourseCount),
			slateStyle, statOffsets{0.12, 0.30, 0.10, 0.08}, ""),
		r.statCard(tile, groupInt(f.NightOwlSubmissions), "I submitted", "assignments to Schoology",
			"past 10pm",
			navyStyle, statOffsets{0.12, 0.30, 0.10, 0.08}, ""),
		r.busiestMonthCard(tile, f.BusiestMonth,
			fmt.Sprintf("With %d assignments", f.BusiestMonthAssignments), ""),
		r.statCard(tile, groupInt(f.WeekdaySubmissions), "I submitted", "assignments to Schoology",
			"on weekdays",
			navyStyle, statOffsets{0.10, 0.32, 0.09, 0.08}, ""),
		r.staticTile(filepath.Join(r.staticDir, "Slide_center-title.png"), tile, "Title"),
		r.classmatesCard(tile, f.TopClassmates, classmatesTileStyle, ""),
		r.statCard(tile, groupInt(f.WeekendSubmissions), "I submitted", "assignments to Schoology",
			"on weekends",
			deepNavyStyle, statOffsets{0.12, 0.30, 0.10, 0.08}, ""),
		r.procrastCard(tile, avgHours, procrastTileStyle, ""),
		r.staticTile(filepath.Join(r.staticDir, "Slide_CTA.png"), tile, "CTA"),
	}

	for i, t := range tiles {
		row := i / 3
		col := i % 3
		x := gap + col*(tile+gap)
		y := gap + row*(tile+gap)
		dc.DrawImage(t, x, y)
	}

	return dc.Image()
}
