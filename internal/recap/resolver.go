package recap

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/schoology"
)

// Source is the slice of the Schoology client the engine consumes.
type Source interface {
	GetMe(ctx context.Context) (*schoology.RawUser, error)
	FetchCollection(ctx context.Context, path, key string) ([]json.RawMessage, error)
}

// Resolver determines the single most-recent submission revision for a
// (section, assignment, user) triple. It is invoked exactly once per
// assignment and caches nothing.
type Resolver struct {
	src Source
	log *logger.Logger
}

func NewResolver(src Source, baseLog *logger.Logger) *Resolver {
	return &Resolver{
		src: src,
		log: baseLog.With("component", "SubmissionResolver"),
	}
}

// LatestSubmissionFor returns the latest revision belonging to userID, or nil
// when the user never submitted — the normal case, not an error. Transport
// failures in either strategy degrade to "no result from this strategy".
func (r *Resolver) LatestSubmissionFor(ctx context.Context, sectionID, assignmentID, userID string) *Submission {
	// Strategy A: list every revision for the assignment and filter to the
	// subject user client-side.
	path := fmt.Sprintf("sections/%s/submissions/%s?all_revisions=1", sectionID, assignmentID)
	revisions, err := r.src.FetchCollection(ctx, path, "revision")
	if err != nil {
		r.log.Debug("all-revisions fetch failed, falling through", "section_id", sectionID, "assignment_id", assignmentID, "error", err)
		revisions = nil
	}
	if sub := r.pickLatest(revisions, sectionID, assignmentID, userID, true); sub != nil {
		return sub
	}

	// Strategy B: the per-user revision sub-resource.
	path = fmt.Sprintf("sections/%s/submissions/%s/%s", sectionID, assignmentID, userID)
	revisions, err = r.src.FetchCollection(ctx, path, "revision")
	if err != nil {
		r.log.Debug("per-user revision fetch failed", "section_id", sectionID, "assignment_id", assignmentID, "error", err)
		return nil
	}
	return r.pickLatest(revisions, sectionID, assignmentID, userID, false)
}

// pickLatest selects the revision with the greatest (submitted or created)
// instant. Unparseable timestamps sort as the minimum possible instant, so a
// dated revision always wins the tie-break against an undated one.
func (r *Resolver) pickLatest(revisions []json.RawMessage, sectionID, assignmentID, userID string, filterUser bool) *Submission {
	var (
		best    *Submission
		bestKey Instant
		haveAny bool
	)
	for _, raw := range revisions {
		var rev schoology.RawSubmission
		if err := json.Unmarshal(raw, &rev); err != nil {
			continue
		}
		if filterUser && rev.UID.String() != userID {
			continue
		}
		sub := submissionFromRaw(&rev, sectionID, assignmentID)
		key := sub.Effective()
		if !haveAny || key.After(bestKey) {
			best = sub
			bestKey = key
			haveAny = true
		}
	}
	return best
}

func submissionFromRaw(rev *schoology.RawSubmission, sectionID, assignmentID string) *Submission {
	sub := &Submission{
		AssignmentID: assignmentID,
		SectionID:    sectionID,
		Submitted:    ParseInstant(rev.Submitted),
		Created:      ParseInstant(rev.Created),
		Late:         bool(rev.Late),
	}
	if rev.Attachments != nil && rev.Attachments.Files != nil {
		for _, f := range rev.Attachments.Files.File {
			size := int64(f.Filesize)
			if size < 0 {
				size = 0
			}
			sub.Attachments = append(sub.Attachments, Attachment{Filesize: size})
		}
	}
	return sub
}
