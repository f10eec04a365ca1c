package recap

import (
	"math"
	"sort"
	"time"
)

const (
	earlyBirdThreshold = 48 * time.Hour
	nightOwlStartHour  = 22
	nightOwlEndHour    = 6

	maxTopClassmates     = 5
	maxClassmateSections = 5
)

type ClassmateStat struct {
	UserID       string
	Name         string
	SharedCount  int
	SectionNames []string
}

type WeekStat struct {
	Start time.Time
	Count int
}

// Metrics is the aggregator output. Pointer fields are nil when there was no
// data to rank (empty dataset); counters are plain zeroes.
type Metrics struct {
	TotalAssignments int
	CourseCount      int

	BusiestMonth      string
	BusiestMonthCount int

	TopAssignmentSection *Section
	TopAssignmentCount   int

	ClassSizeSection *Section
	ClassSizeCount   int

	WeekendCount  int
	WeekdayCount  int
	NightOwlCount int
	NightOwlPct   float64

	LateCount   int
	OnTimeCount int

	MissingCount       int
	MostMissingSection *Section
	MostMissingCount   int
	MostMissingPct     float64

	// AvgProcrastination is the mean lead time before the deadline over
	// submissions with a known due date; late submissions contribute a zero
	// delta rather than being excluded. Nil when nothing qualified.
	AvgProcrastination *time.Duration

	EarlyBirdCount int
	EarlyBirdPct   float64

	BestOnTimeStreak int

	PeakWeek    *WeekStat
	DroughtWeek *WeekStat

	AttachmentCount    int
	MaxAttachmentBytes int64

	TopClassmates []ClassmateStat
}

type classified struct {
	sub       *Submission
	due       Instant
	late      bool
	effective Instant
}

// Aggregate derives every recap metric from a collected dataset. It is a pure
// function: identical input yields identical output, and it touches nothing
// outside the dataset. Iteration always follows fetched section/assignment
// order, never map order, so the output is deterministic.
func Aggregate(ds *Dataset) *Metrics {
	m := &Metrics{CourseCount: len(ds.Sections)}

	monthCounts := map[time.Month]int{}
	weekCounts := map[time.Time]int{}
	missingBySection := map[string]int{}
	assignmentsBySection := map[string]int{}

	var submissions []classified

	for _, section := range ds.Sections {
		assignments := ds.AssignmentsBySection[section.ID]
		assignmentsBySection[section.ID] = len(assignments)
		m.TotalAssignments += len(assignments)

		for _, a := range assignments {
			if a.Due.Known() {
				monthCounts[a.Due.Time().Month()]++
				weekCounts[weekStart(a.Due.Time())]++
			}

			sub := ds.LatestSubmissionByAssignment[a.ID]
			if sub == nil {
				// Only assignments that accept submissions can be missing;
				// a disabled dropbox is never counted against the user.
				if a.AllowsSubmission {
					m.MissingCount++
					missingBySection[section.ID]++
				}
				continue
			}

			late := isLate(sub, a.Due)
			submissions = append(submissions, classified{
				sub:       sub,
				due:       a.Due,
				late:      late,
				effective: sub.Effective(),
			})
			if late {
				m.LateCount++
			} else {
				m.OnTimeCount++
			}
		}
	}

	// Busiest month: calendar order makes the tie-break deterministic.
	for month := time.January; month <= time.December; month++ {
		if count := monthCounts[month]; count > m.BusiestMonthCount {
			m.BusiestMonth = month.String()
			m.BusiestMonthCount = count
		}
	}

	// Section champions, first maximal in fetched order on ties.
	for i := range ds.Sections {
		section := ds.Sections[i]
		if count := assignmentsBySection[section.ID]; m.TopAssignmentSection == nil || count > m.TopAssignmentCount {
			s := section
			m.TopAssignmentSection = &s
			m.TopAssignmentCount = count
		}
		classmates := 0
		for _, e := range ds.EnrollmentsBySection[section.ID] {
			if e.UserID != ds.User.ID {
				classmates++
			}
		}
		if m.ClassSizeSection == nil || classmates > m.ClassSizeCount {
			s := section
			m.ClassSizeSection = &s
			m.ClassSizeCount = classmates
		}
		if count := missingBySection[section.ID]; count > m.MostMissingCount {
			s := section
			m.MostMissingSection = &s
			m.MostMissingCount = count
		}
	}
	if m.MostMissingSection != nil {
		m.MostMissingPct = percent(m.MostMissingCount, assignmentsBySection[m.MostMissingSection.ID])
	}

	// Submission-time buckets. Unknown instants fall out of every bucket.
	for _, c := range submissions {
		if !c.effective.Known() {
			continue
		}
		switch c.effective.Time().Weekday() {
		case time.Saturday, time.Sunday:
			m.WeekendCount++
		default:
			m.WeekdayCount++
		}
		hour := c.effective.Time().Hour()
		if hour >= nightOwlStartHour || hour < nightOwlEndHour {
			m.NightOwlCount++
		}
	}
	m.NightOwlPct = percent(m.NightOwlCount, m.WeekendCount+m.WeekdayCount)

	// Lead-time metrics over submissions with a known due date.
	var (
		deltaSum   time.Duration
		deltaCount int
	)
	for _, c := range submissions {
		if !c.due.Known() {
			continue
		}
		if c.late {
			deltaCount++
			continue
		}
		if !c.effective.Known() {
			continue
		}
		delta := c.due.Sub(c.effective)
		deltaSum += delta
		deltaCount++
		if delta >= earlyBirdThreshold {
			m.EarlyBirdCount++
		}
	}
	if deltaCount > 0 {
		avg := deltaSum / time.Duration(deltaCount)
		m.AvgProcrastination = &avg
	}
	m.EarlyBirdPct = percent(m.EarlyBirdCount, len(submissions))

	m.BestOnTimeStreak = bestOnTimeStreak(submissions)

	// Workload peaks by due-date week.
	weeks := make([]time.Time, 0, len(weekCounts))
	for week := range weekCounts {
		weeks = append(weeks, week)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	for _, week := range weeks {
		count := weekCounts[week]
		if m.PeakWeek == nil || count > m.PeakWeek.Count {
			m.PeakWeek = &WeekStat{Start: week, Count: count}
		}
		if m.DroughtWeek == nil || count < m.DroughtWeek.Count {
			m.DroughtWeek = &WeekStat{Start: week, Count: count}
		}
	}

	// Attachment stats across latest submissions only.
	for _, c := range submissions {
		for _, att := range c.sub.Attachments {
			m.AttachmentCount++
			if att.Filesize > m.MaxAttachmentBytes {
				m.MaxAttachmentBytes = att.Filesize
			}
		}
	}

	m.TopClassmates = topClassmates(ds)

	return m
}

// isLate classifies a submission: the explicit flag wins, then a dated
// comparison when both instants are known. An unknown due date falls back to
// the flag alone.
func isLate(sub *Submission, due Instant) bool {
	if sub.Late {
		return true
	}
	if !due.Known() {
		return false
	}
	effective := sub.Effective()
	if !effective.Known() {
		return false
	}
	return effective.After(due)
}

func bestOnTimeStreak(submissions []classified) int {
	// Chronological by effective instant; undated submissions cannot anchor
	// a streak and are skipped.
	ordered := make([]classified, 0, len(submissions))
	for _, c := range submissions {
		if c.effective.Known() {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].effective.Time().Before(ordered[j].effective.Time())
	})
	best, run := 0, 0
	for _, c := range ordered {
		if c.late {
			run = 0
			continue
		}
		run++
		if run > best {
			best = run
		}
	}
	return best
}

func topClassmates(ds *Dataset) []ClassmateStat {
	type entry struct {
		stat     *ClassmateStat
		hasLabel map[string]bool
	}
	byID := map[string]*entry{}
	var order []string

	for _, section := range ds.Sections {
		label := section.Label()
		for _, e := range ds.EnrollmentsBySection[section.ID] {
			if e.UserID == "" || e.UserID == ds.User.ID {
				continue
			}
			ent, ok := byID[e.UserID]
			if !ok {
				name := e.DisplayName
				if name == "" {
					name = "User " + e.UserID
				}
				ent = &entry{
					stat:     &ClassmateStat{UserID: e.UserID, Name: name},
					hasLabel: map[string]bool{},
				}
				byID[e.UserID] = ent
				order = append(order, e.UserID)
			}
			ent.stat.SharedCount++
			if label != "" && !ent.hasLabel[label] && len(ent.stat.SectionNames) < maxClassmateSections {
				ent.hasLabel[label] = true
				ent.stat.SectionNames = append(ent.stat.SectionNames, label)
			}
		}
	}

	stats := make([]ClassmateStat, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byID[id].stat)
	}
	// Stable sort keeps encounter order on equal shared counts.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].SharedCount > stats[j].SharedCount
	})
	if len(stats) > maxTopClassmates {
		stats = stats[:maxTopClassmates]
	}
	return stats
}

// weekStart normalizes a due date to the Monday of its week, date precision.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// percent rounds n/d to one decimal place; the denominator is floored at 1 so
// empty datasets never divide by zero.
func percent(n, d int) float64 {
	if d < 1 {
		d = 1
	}
	return math.Round(float64(n)/float64(d)*1000) / 10
}
