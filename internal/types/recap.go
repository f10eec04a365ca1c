package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Recap is the permanent record of one user's derived statistics. One row per
// email; a newer computation replaces the prior one wholesale (replace-on-write,
// never a partial merge). Fields is the stable contract consumed by the JSON
// API and the share-image renderer; its evolution is additive-only.
type Recap struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       uuid.UUID      `gorm:"type:uuid;column:job_id;index" json:"job_id"`
	Email       string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Fields      datatypes.JSON `gorm:"column:fields;type:json" json:"fields"`
	Slides      datatypes.JSON `gorm:"column:slides;type:json" json:"slides"`
	ShareImages datatypes.JSON `gorm:"column:share_images;type:json" json:"share_images,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Recap) TableName() string { return "recap" }
