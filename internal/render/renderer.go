package render

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/recap"
	"github.com/schoolwrapped/recap-backend/internal/utils"
)

const shareCardSize = 1080

// Renderer produces the shareable PNG set for a recap. One instance is safe
// for sequential reuse across jobs; font parsing happens once at startup.
type Renderer struct {
	log       *logger.Logger
	mediaDir  string
	staticDir string
	ctaText   string
	fonts     map[string]*truetype.Font
}

func New(baseLog *logger.Logger) (*Renderer, error) {
	log := baseLog.With("component", "Renderer")

	staticDir := utils.GetEnv("RENDER_STATIC_DIR", "./static", baseLog)
	fonts, err := loadFonts(staticDir)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	return &Renderer{
		log:       log,
		mediaDir:  utils.GetEnv("MEDIA_DIR", "/data/media", baseLog),
		staticDir: staticDir,
		ctaText:   utils.GetEnv("SHARE_CTA_TEXT", "", baseLog),
		fonts:     fonts,
	}, nil
}

// MediaDir is the filesystem root the HTTP layer serves under /media.
func (r *Renderer) MediaDir() string { return r.mediaDir }

// RenderAll writes every share image for a recap and returns slide id to URL
// path. Card set and filenames are stable; re-rendering overwrites in place.
func (r *Renderer) RenderAll(recapID string, f recap.Fields) (map[string]string, error) {
	dir := filepath.Join(r.mediaDir, "recap", recapID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	cards := map[string]image.Image{
		"total_assignments": r.statCard(shareCardSize, groupInt(f.TotalAssignments),
			"I had", "assignments in Schoology",
			fmt.Sprintf("across %d courses", f.CourseCount),
			slateStyle, statOffsets{}, r.ctaText),
		"weekday": r.statCard(shareCardSize, groupInt(f.WeekdaySubmissions),
			"I submitted", "assignments to Schoology", "on weekdays",
			navyStyle, statOffsets{}, r.ctaText),
		"weekend": r.statCard(shareCardSize, groupInt(f.WeekendSubmissions),
			"I submitted", "assignments to Schoology", "on weekends",
			deepNavyStyle, statOffsets{}, r.ctaText),
		"night_owl": r.statCard(shareCardSize, groupInt(f.NightOwlSubmissions),
			"I submitted", "assignments to Schoology", "past 10pm",
			navyStyle, statOffsets{}, r.ctaText),
		"busiest_month": r.busiestMonthCard(shareCardSize, f.BusiestMonth,
			fmt.Sprintf("With %d assignments", f.BusiestMonthAssignments), r.ctaText),
		"early_bird": r.statCard(shareCardSize, groupInt(f.EarlyBirdCount),
			"I submitted", "assignments 48+ hours early",
			fmt.Sprintf("%.1f%% of my submissions", f.EarlyBirdPct),
			slateStyle, statOffsets{}, r.ctaText),
		"late": r.statCard(shareCardSize, groupInt(f.LateCount),
			"I turned in", "assignments late", "at least they got there",
			procrastStyle, statOffsets{}, r.ctaText),
		"missing": r.statCard(shareCardSize, groupInt(f.MissingCount),
			"I never turned in", "assignments", "",
			procrastStyle, statOffsets{}, r.ctaText),
		"classmates": r.classmatesCard(shareCardSize, f.TopClassmates, classmatesStyle, r.ctaText),
		"grid":       r.renderGrid(f),
	}

	if f.AvgProcrastinationHours != nil {
		cards["procrastination"] = r.procrastCard(shareCardSize, *f.AvgProcrastinationHours, procrastStyle, r.ctaText)
	} else {
		cards["procrastination"] = r.statCard(shareCardSize, recap.NoData,
			"I submitted my\nassignments", "no dated submissions found", "",
			procrastStyle, statOffsets{}, r.ctaText)
	}
	if f.MostMissingCourse != recap.NoData {
		cards["most_missing"] = r.statCard(shareCardSize, groupInt(f.MostMissingCount),
			"I went missing in", f.MostMissingCourse,
			fmt.Sprintf("%.1f%% of its assignments", f.MostMissingPct),
			procrastStyle, statOffsets{}, r.ctaText)
	}

	images := make(map[string]string, len(cards))
	for slide, img := range cards {
		path := filepath.Join(dir, slide+".png")
		if err := gg.SavePNG(path, img); err != nil {
			return nil, fmt.Errorf("save %s card: %w", slide, err)
		}
		images[slide] = fmt.Sprintf("/media/recap/%s/%s.png", recapID, slide)
	}

	r.log.Info("Rendered share images", "recap_id", recapID, "count", len(images))
	return images, nil
}
