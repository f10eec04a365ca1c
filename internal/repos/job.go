package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

type JobRepo interface {
	Create(ctx context.Context, job *types.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Job, error)
	ClaimNextQueued(ctx context.Context) (*types.Job, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteErroredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{
		db:  db,
		log: baseLog.With("repo", "JobRepo"),
	}
}

func (r *jobRepo) Create(ctx context.Context, job *types.Job) error {
	if job == nil {
		return nil
	}
	now := time.Now()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = types.JobStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Job, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var job types.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ClaimNextQueued moves the oldest queued job to running. The conditional
// update only succeeds while the row is still queued, so two workers racing
// on the same row leave exactly one holding it.
func (r *jobRepo) ClaimNextQueued(ctx context.Context) (*types.Job, error) {
	var claimed *types.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job types.Job
		qErr := tx.Where("status = ?", types.JobStatusQueued).
			Order("created_at ASC").
			First(&job).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		res := tx.Model(&types.Job{}).
			Where("id = ? AND status = ?", job.ID, types.JobStatusQueued).
			Updates(map[string]interface{}{
				"status":     types.JobStatusRunning,
				"stage":      "claimed",
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			// Lost the race; the next tick will try again.
			return nil
		}
		job.Status = types.JobStatusRunning
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRepo) UpdateProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error {
	if id == uuid.Nil {
		return nil
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	// A terminal row never regresses back to a progress update.
	return r.db.WithContext(ctx).Model(&types.Job{}).
		Where("id = ? AND status = ?", id, types.JobStatusRunning).
		Updates(map[string]interface{}{
			"stage":      stage,
			"progress":   progress,
			"updated_at": time.Now(),
		}).Error
}

func (r *jobRepo) MarkError(ctx context.Context, id uuid.UUID, message string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&types.Job{}).
		Where("id = ? AND status NOT IN ?", id, []string{types.JobStatusDone, types.JobStatusError}).
		Updates(map[string]interface{}{
			"status":     types.JobStatusError,
			"error":      message,
			"updated_at": time.Now(),
		}).Error
}

func (r *jobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&types.Job{}).Error
}

// DeleteErroredBefore sweeps error rows past the retention window. Done rows
// are deleted inline by the worker once the recap is persisted.
func (r *jobRepo) DeleteErroredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", types.JobStatusError, cutoff).
		Delete(&types.Job{})
	return res.RowsAffected, res.Error
}
