package recap

// Engine-facing entities, decoupled from the raw API shapes. The engine owns
// no persistent state: a Dataset in, assembled recap fields out.

type User struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURI   string
}

type Section struct {
	ID           string
	CourseTitle  string
	SectionTitle string
}

// Label is the human-readable section name used on classmate cards.
func (s Section) Label() string {
	switch {
	case s.CourseTitle != "" && s.SectionTitle != "":
		return s.CourseTitle + ": " + s.SectionTitle
	case s.CourseTitle != "":
		return s.CourseTitle
	default:
		return s.SectionTitle
	}
}

type Enrollment struct {
	UserID      string
	DisplayName string
}

type Assignment struct {
	ID               string
	SectionID        string
	Due              Instant
	AllowsSubmission bool
}

type Attachment struct {
	Filesize int64
}

// Submission is the single most-recent revision for a (user, assignment)
// pair. The resolver guarantees at most one per pair; revisions are never
// double-counted downstream.
type Submission struct {
	AssignmentID string
	SectionID    string
	Submitted    Instant
	Created      Instant
	Late         bool
	Attachments  []Attachment
}

// Effective is the instant submissions are bucketed by: submitted when
// known, otherwise created.
func (s *Submission) Effective() Instant {
	return s.Submitted.Or(s.Created)
}

type Dataset struct {
	User                         User
	Sections                     []Section
	EnrollmentsBySection         map[string][]Enrollment
	AssignmentsBySection         map[string][]Assignment
	LatestSubmissionByAssignment map[string]*Submission
}
