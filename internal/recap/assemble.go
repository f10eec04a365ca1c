package recap

import (
	"fmt"
	"time"
)

// RecapVersion tags the assembled field set. Consumers rely on the field map
// being stable across versions; evolution is additive-only.
const RecapVersion = 1

// NoData is the sentinel shown where an upstream value was entirely absent.
const NoData = "—"

type ClassmateField struct {
	Name           string   `json:"name"`
	SharedSections int      `json:"shared_sections"`
	Sections       []string `json:"sections"`
}

// Fields is the flat, stable field set consumed by the JSON API and the
// share-image renderer.
type Fields struct {
	RecapVersion int    `json:"recap_version"`
	UserName     string `json:"user_name"`

	TotalAssignments int `json:"total_assignments"`
	CourseCount      int `json:"course_count"`

	BusiestMonth            string `json:"busiest_month"`
	BusiestMonthAssignments int    `json:"busiest_month_assignments"`

	TopAssignmentCourse string `json:"top_assignment_course"`
	TopAssignmentCount  int    `json:"top_assignment_count"`

	ClassSizeCourse     string `json:"class_size_course"`
	ClassSizeClassmates int    `json:"class_size_classmates"`

	WeekendSubmissions  int     `json:"weekend_submissions"`
	WeekdaySubmissions  int     `json:"weekday_submissions"`
	NightOwlSubmissions int     `json:"night_owl_submissions"`
	NightOwlPct         float64 `json:"night_owl_pct"`

	AvgProcrastinationHours *float64 `json:"avg_procrastination_hours"`
	AvgProcrastinationText  string   `json:"avg_procrastination_text"`

	EarlyBirdCount int     `json:"early_bird_count"`
	EarlyBirdPct   float64 `json:"early_bird_pct"`

	LateCount    int `json:"late_count"`
	OnTimeCount  int `json:"on_time_count"`
	MissingCount int `json:"missing_count"`

	MostMissingCourse string  `json:"most_missing_course"`
	MostMissingCount  int     `json:"most_missing_count"`
	MostMissingPct    float64 `json:"most_missing_pct"`

	BestOnTimeStreak int `json:"best_on_time_streak"`

	PeakWeek            string `json:"peak_week"`
	PeakWeekAssignments int    `json:"peak_week_assignments"`
	DroughtWeek         string `json:"drought_week"`
	DroughtWeekCount    int    `json:"drought_week_assignments"`

	TotalAttachments   int   `json:"total_attachments"`
	MaxAttachmentBytes int64 `json:"max_attachment_bytes"`

	TopClassmates []ClassmateField `json:"top_classmates"`
}

type GridCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Slide struct {
	Title  string           `json:"title"`
	Big    string           `json:"big"`
	Bottom string           `json:"bottom"`
	List   []ClassmateField `json:"list,omitempty"`
	Grid   []GridCard       `json:"grid,omitempty"`
	Layout string           `json:"layout,omitempty"`
}

type Assembled struct {
	Fields Fields  `json:"fields"`
	Slides []Slide `json:"slides"`
}

// Assemble packages aggregator output into the presentation contract. It
// performs no computation of its own; absent upstream data becomes the
// documented sentinels instead of an error.
func Assemble(user User, m *Metrics) *Assembled {
	f := Fields{
		RecapVersion:            RecapVersion,
		UserName:                user.DisplayName,
		TotalAssignments:        m.TotalAssignments,
		CourseCount:             m.CourseCount,
		BusiestMonth:            NoData,
		BusiestMonthAssignments: m.BusiestMonthCount,
		TopAssignmentCourse:     NoData,
		TopAssignmentCount:      m.TopAssignmentCount,
		ClassSizeCourse:         NoData,
		ClassSizeClassmates:     m.ClassSizeCount,
		WeekendSubmissions:      m.WeekendCount,
		WeekdaySubmissions:      m.WeekdayCount,
		NightOwlSubmissions:     m.NightOwlCount,
		NightOwlPct:             m.NightOwlPct,
		AvgProcrastinationText:  NoData,
		EarlyBirdCount:          m.EarlyBirdCount,
		EarlyBirdPct:            m.EarlyBirdPct,
		LateCount:               m.LateCount,
		OnTimeCount:             m.OnTimeCount,
		MissingCount:            m.MissingCount,
		MostMissingCourse:       NoData,
		MostMissingCount:        m.MostMissingCount,
		MostMissingPct:          m.MostMissingPct,
		BestOnTimeStreak:        m.BestOnTimeStreak,
		PeakWeek:                NoData,
		DroughtWeek:             NoData,
		TotalAttachments:        m.AttachmentCount,
		MaxAttachmentBytes:      m.MaxAttachmentBytes,
		TopClassmates:           []ClassmateField{},
	}

	if m.BusiestMonthCount > 0 {
		f.BusiestMonth = m.BusiestMonth
	}
	if m.TopAssignmentSection != nil {
		f.TopAssignmentCourse = courseName(*m.TopAssignmentSection)
	}
	if m.ClassSizeSection != nil {
		f.ClassSizeCourse = courseName(*m.ClassSizeSection)
	}
	if m.MostMissingSection != nil {
		f.MostMissingCourse = courseName(*m.MostMissingSection)
	}
	if m.AvgProcrastination != nil {
		hours := m.AvgProcrastination.Hours()
		f.AvgProcrastinationHours = &hours
		f.AvgProcrastinationText = FormatDelta(*m.AvgProcrastination)
	}
	if m.PeakWeek != nil {
		f.PeakWeek = m.PeakWeek.Start.Format("2006-01-02")
		f.PeakWeekAssignments = m.PeakWeek.Count
	}
	if m.DroughtWeek != nil {
		f.DroughtWeek = m.DroughtWeek.Start.Format("2006-01-02")
		f.DroughtWeekCount = m.DroughtWeek.Count
	}
	for _, c := range m.TopClassmates {
		sections := c.SectionNames
		if sections == nil {
			sections = []string{}
		}
		f.TopClassmates = append(f.TopClassmates, ClassmateField{
			Name:           c.Name,
			SharedSections: c.SharedCount,
			Sections:       sections,
		})
	}

	return &Assembled{
		Fields: f,
		Slides: buildSlides(f),
	}
}

func buildSlides(f Fields) []Slide {
	slides := make([]Slide, 0, 14)
	add := func(title, big, bottom string) {
		slides = append(slides, Slide{Title: title, Big: big, Bottom: bottom})
	}

	if f.BusiestMonth != NoData {
		add("Busiest Month", f.BusiestMonth,
			fmt.Sprintf("You had %d assignments due in %s!", f.BusiestMonthAssignments, f.BusiestMonth))
	} else {
		add("Busiest Month", NoData, "No assignments found.")
	}

	if f.TopAssignmentCourse != NoData {
		add("Course with Most Assignments", f.TopAssignmentCourse,
			fmt.Sprintf("%d assignments this year", f.TopAssignmentCount))
	} else {
		add("Course with Most Assignments", NoData, "No data.")
	}

	if f.ClassSizeCourse != NoData {
		add("Class Size Champion", f.ClassSizeCourse,
			fmt.Sprintf("You shared this class with %d classmates", f.ClassSizeClassmates))
	} else {
		add("Class Size Champion", NoData, "No enrollments found.")
	}

	add("Weekend Warrior", fmt.Sprintf("%d", f.WeekendSubmissions), "assignments submitted on weekends")
	add("Weekday Grinder", fmt.Sprintf("%d", f.WeekdaySubmissions), "assignments submitted on weekdays")
	add("Night Owl Score", fmt.Sprintf("%d", f.NightOwlSubmissions),
		fmt.Sprintf("assignments submitted late at night... that's %.1f%% of assignments!", f.NightOwlPct))

	if f.AvgProcrastinationHours != nil {
		hours := *f.AvgProcrastinationHours
		var bottom string
		switch {
		case hours < 1:
			bottom = fmt.Sprintf("%s... wow, you're really cutting it close!", f.AvgProcrastinationText)
		case hours > 48:
			bottom = fmt.Sprintf("%s... wow, you're really organized!", f.AvgProcrastinationText)
		default:
			bottom = fmt.Sprintf("%s before the deadline (pretty good!)", f.AvgProcrastinationText)
		}
		add("Average Procrastination", f.AvgProcrastinationText, bottom)
	} else {
		add("Average Procrastination", NoData, "No submissions with due dates.")
	}

	add("Early Bird", fmt.Sprintf("%d", f.EarlyBirdCount),
		fmt.Sprintf("assignments submitted more than 48 hours early... that's %.1f%% of assignments!", f.EarlyBirdPct))
	add("Late Ledger", fmt.Sprintf("%d", f.LateCount),
		"late submissions (at least you turned them in eventually?)")
	add("Missing Watch", fmt.Sprintf("%d", f.MissingCount),
		"missing assignments (and you didn't turn these ones in...)")

	if f.MostMissingCourse != NoData {
		add("Most Missing Course", f.MostMissingCourse,
			fmt.Sprintf("%d missing assignments... that's %.1f%% of assignments!", f.MostMissingCount, f.MostMissingPct))
	} else {
		add("Most Missing Course", NoData, "No missing assignments!")
	}

	slides = append(slides, Slide{
		Title:  "Your Classroom Constants",
		Bottom: "You shared a lot of classes with these classmates!",
		List:   f.TopClassmates,
	})

	procrastValue := NoData
	if f.AvgProcrastinationHours != nil {
		procrastValue = f.AvgProcrastinationText
	}
	slides = append(slides, Slide{
		Title:  "Recap Highlights",
		Layout: "grid",
		Grid: []GridCard{
			{Label: "Busiest Month", Value: f.BusiestMonth},
			{Label: "Most Assignments", Value: f.TopAssignmentCourse},
			{Label: "Class Size", Value: f.ClassSizeCourse},
			{Label: "Weekend Warrior", Value: fmt.Sprintf("%d", f.WeekendSubmissions)},
			{Label: "Night Owl", Value: fmt.Sprintf("%d (%.1f%%)", f.NightOwlSubmissions, f.NightOwlPct)},
			{Label: "Avg Procrastination", Value: procrastValue},
			{Label: "Late Ledger", Value: fmt.Sprintf("%d", f.LateCount)},
			{Label: "Missing Watch", Value: fmt.Sprintf("%d", f.MissingCount)},
		},
	})

	return slides
}

func courseName(s Section) string {
	if s.CourseTitle != "" {
		return s.CourseTitle
	}
	if s.SectionTitle != "" {
		return s.SectionTitle
	}
	return NoData
}

// FormatDelta renders a duration the way the slides speak about it: days past
// 48 hours, whole hours past one hour, minutes below that.
func FormatDelta(d time.Duration) string {
	hours := d.Hours()
	switch {
	case hours >= 48:
		return fmt.Sprintf("%.1f days", hours/24)
	case hours >= 1:
		return fmt.Sprintf("%.0f hours", hours)
	default:
		return fmt.Sprintf("%.0f minutes", hours*60)
	}
}
