package recap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/schoology"
)

// ProgressFunc receives coarse progress while a dataset is collected. done
// and total describe the current stage; delivery must never block collection.
type ProgressFunc func(stage string, done, total int)

// Collector fetches the full dataset for one user: sections, per-section
// enrollments and assignments, and the latest submission per assignment. All
// fetches are sequential; one job bounds the system's network concurrency.
type Collector struct {
	src Source
	log *logger.Logger
}

func NewCollector(src Source, baseLog *logger.Logger) *Collector {
	return &Collector{
		src: src,
		log: baseLog.With("component", "Collector"),
	}
}

// Collect builds the dataset. Identity resolution failure is the only fatal
// path; any single collection failure degrades to an empty collection so a
// partial recap still comes out the other side.
func (c *Collector) Collect(ctx context.Context, progress ProgressFunc) (*Dataset, error) {
	if progress == nil {
		progress = func(string, int, int) {}
	}

	me, err := c.src.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	ds := &Dataset{
		User: User{
			ID:          me.UserID(),
			DisplayName: me.NameDisplay,
			Email:       me.PrimaryEmail,
			AvatarURI:   me.PictureURL,
		},
		EnrollmentsBySection:         map[string][]Enrollment{},
		AssignmentsBySection:         map[string][]Assignment{},
		LatestSubmissionByAssignment: map[string]*Submission{},
	}
	progress("profile", 1, 1)

	sectionsRaw, err := c.src.FetchCollection(ctx, fmt.Sprintf("users/%s/sections", ds.User.ID), "section")
	if err != nil {
		c.log.Warn("Section listing failed; recap will be empty", "error", err)
		sectionsRaw = nil
	}
	for _, raw := range sectionsRaw {
		var s schoology.RawSection
		if err := json.Unmarshal(raw, &s); err != nil || s.ID == "" {
			continue
		}
		ds.Sections = append(ds.Sections, Section{
			ID:           s.ID.String(),
			CourseTitle:  s.CourseTitle,
			SectionTitle: s.SectionTitle,
		})
	}
	progress("sections", len(ds.Sections), len(ds.Sections))

	for i, section := range ds.Sections {
		ds.EnrollmentsBySection[section.ID] = c.fetchEnrollments(ctx, section.ID)
		progress("enrollments", i+1, len(ds.Sections))
	}

	resolver := NewResolver(c.src, c.log)
	for i, section := range ds.Sections {
		assignments := c.fetchAssignments(ctx, section.ID)
		ds.AssignmentsBySection[section.ID] = assignments
		for _, a := range assignments {
			if sub := resolver.LatestSubmissionFor(ctx, section.ID, a.ID, ds.User.ID); sub != nil {
				ds.LatestSubmissionByAssignment[a.ID] = sub
			}
		}
		progress("assignments", i+1, len(ds.Sections))
	}

	return ds, nil
}

func (c *Collector) fetchEnrollments(ctx context.Context, sectionID string) []Enrollment {
	raws, err := c.src.FetchCollection(ctx, fmt.Sprintf("sections/%s/enrollments", sectionID), "enrollment")
	if err != nil {
		c.log.Warn("Enrollment fetch failed for section", "section_id", sectionID, "error", err)
		return nil
	}
	var out []Enrollment
	for _, raw := range raws {
		var e schoology.RawEnrollment
		if err := json.Unmarshal(raw, &e); err != nil || e.UID == "" {
			continue
		}
		out = append(out, Enrollment{
			UserID:      e.UID.String(),
			DisplayName: e.NameDisplay,
		})
	}
	return out
}

func (c *Collector) fetchAssignments(ctx context.Context, sectionID string) []Assignment {
	raws, err := c.src.FetchCollection(ctx, fmt.Sprintf("sections/%s/assignments", sectionID), "assignment")
	if err != nil {
		c.log.Warn("Assignment fetch failed for section", "section_id", sectionID, "error", err)
		return nil
	}
	var out []Assignment
	for _, raw := range raws {
		var a schoology.RawAssignment
		if err := json.Unmarshal(raw, &a); err != nil || a.ID == "" {
			continue
		}
		out = append(out, Assignment{
			ID:               a.ID.String(),
			SectionID:        sectionID,
			Due:              ParseInstant(a.Due),
			AllowsSubmission: a.AllowsSubmission(),
		})
	}
	return out
}
