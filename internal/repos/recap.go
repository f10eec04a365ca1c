package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

type RecapRepo interface {
	UpsertByEmail(ctx context.Context, recap *types.Recap) (*types.Recap, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Recap, error)
	GetByEmail(ctx context.Context, email string) (*types.Recap, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*types.Recap, error)
	UpdateShareImages(ctx context.Context, id uuid.UUID, shareImages []byte) error
}

type recapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecapRepo(db *gorm.DB, baseLog *logger.Logger) RecapRepo {
	return &recapRepo{
		db:  db,
		log: baseLog.With("repo", "RecapRepo"),
	}
}

// UpsertByEmail replaces the prior recap for the email wholesale. Fields are
// never merged; the latest computation wins.
func (r *recapRepo) UpsertByEmail(ctx context.Context, recap *types.Recap) (*types.Recap, error) {
	if recap == nil || recap.Email == "" {
		return nil, errors.New("recap email required")
	}
	now := time.Now()
	if recap.ID == uuid.Nil {
		recap.ID = uuid.New()
	}
	if recap.CreatedAt.IsZero() {
		recap.CreatedAt = now
	}
	recap.UpdatedAt = now
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"job_id", "fields", "slides", "share_images", "updated_at",
		}),
	}).Create(recap).Error
	if err != nil {
		return nil, err
	}
	return r.GetByEmail(ctx, recap.Email)
}

func (r *recapRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Recap, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var recap types.Recap
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&recap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recap, nil
}

func (r *recapRepo) GetByEmail(ctx context.Context, email string) (*types.Recap, error) {
	if email == "" {
		return nil, nil
	}
	var recap types.Recap
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&recap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recap, nil
}

func (r *recapRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) (*types.Recap, error) {
	if jobID == uuid.Nil {
		return nil, nil
	}
	var recap types.Recap
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).First(&recap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recap, nil
}

func (r *recapRepo) UpdateShareImages(ctx context.Context, id uuid.UUID, shareImages []byte) error {
	if id == uuid.Nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&types.Recap{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"share_images": shareImages,
			"updated_at":   time.Now(),
		}).Error
}
