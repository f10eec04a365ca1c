package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusError   = "error"
)

// Job is one "compute a recap for this user" unit of work. It is transient:
// once a terminal state is reached the row is deleted (done rows immediately,
// error rows after a retention window so pollers can still see the failure).
type Job struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Status            string         `gorm:"column:status;not null;index" json:"status"`
	Email             string         `gorm:"column:email;index" json:"email,omitempty"`
	AccessToken       string         `gorm:"column:access_token" json:"-"`
	AccessTokenSecret string         `gorm:"column:access_token_secret" json:"-"`
	Stage             string         `gorm:"column:stage" json:"stage,omitempty"`
	Progress          int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Error             string         `gorm:"column:error" json:"error,omitempty"`
	Result            datatypes.JSON `gorm:"column:result;type:json" json:"result,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (Job) TableName() string { return "job" }
