package schoology

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// The API is loosely typed: ids arrive as strings or numbers depending on the
// endpoint, booleans as 0/1, timestamps as strings or epoch seconds. Each raw
// record is a strict struct whose scalar fields decode the union of observed
// shapes and default to a documented zero on anything else.

// FlexID decodes a JSON string or number into its canonical string form.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = ""
			return nil
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		*f = ""
		return nil
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// FlexInt decodes a JSON number or numeric string; anything else is 0.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = 0
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = FlexInt(i)
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int64(fl))
	}
	return nil
}

// FlexBool decodes a JSON bool, 0/1 number, or their string forms; anything
// else is false.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = false
	if len(b) == 0 {
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	}
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		*f = true
	}
	return nil
}

type RawUser struct {
	UID          FlexID `json:"uid"`
	ID           FlexID `json:"id"`
	NameDisplay  string `json:"name_display"`
	PrimaryEmail string `json:"primary_email"`
	PictureURL   string `json:"picture_url"`
}

// UserID prefers uid (the users/me shape) and falls back to id.
func (u *RawUser) UserID() string {
	if u.UID != "" {
		return u.UID.String()
	}
	return u.ID.String()
}

type RawSection struct {
	ID           FlexID `json:"id"`
	CourseTitle  string `json:"course_title"`
	SectionTitle string `json:"section_title"`
}

type RawEnrollment struct {
	UID         FlexID `json:"uid"`
	NameDisplay string `json:"name_display"`
}

type RawAssignment struct {
	ID           FlexID    `json:"id"`
	Due          any       `json:"due"`
	AllowDropbox *FlexBool `json:"allow_dropbox"`
}

// AllowsSubmission defaults to true when the field is absent; only an
// explicit 0/false disables the dropbox.
func (a *RawAssignment) AllowsSubmission() bool {
	if a.AllowDropbox == nil {
		return true
	}
	return bool(*a.AllowDropbox)
}

type RawSubmission struct {
	UID         FlexID          `json:"uid"`
	Created     any             `json:"created"`
	Submitted   any             `json:"submitted"`
	Late        FlexBool        `json:"late"`
	Draft       FlexBool        `json:"draft"`
	Attachments *RawAttachments `json:"attachments"`
}

type RawAttachments struct {
	Files *RawFiles `json:"files"`
}

type RawFiles struct {
	File RawFileList `json:"file"`
}

type RawFile struct {
	Filesize FlexInt `json:"filesize"`
}

// RawFileList accepts both a single attachment object and an array of them,
// which the API emits interchangeably.
type RawFileList []RawFile

func (l *RawFileList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*l = nil
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '[' {
		var files []RawFile
		if err := json.Unmarshal(b, &files); err != nil {
			return nil
		}
		*l = files
		return nil
	}
	var single RawFile
	if err := json.Unmarshal(b, &single); err != nil {
		return nil
	}
	*l = RawFileList{single}
	return nil
}
