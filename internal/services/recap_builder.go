package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/recap"
	"github.com/schoolwrapped/recap-backend/internal/render"
	"github.com/schoolwrapped/recap-backend/internal/repos"
	"github.com/schoolwrapped/recap-backend/internal/schoology"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

// BuildProgress receives coarse percentage updates while a recap is built.
type BuildProgress func(stage string, progress int)

// RecapBuilder runs the full pipeline for one job: fetch the dataset with the
// job's tokens, derive metrics, persist the recap, render share images.
type RecapBuilder interface {
	Build(ctx context.Context, job *types.Job, progress BuildProgress) (*types.Recap, error)
}

type recapBuilder struct {
	log       *logger.Logger
	cfg       schoology.Config
	recapRepo repos.RecapRepo
	renderer  *render.Renderer
}

// NewRecapBuilder wires the pipeline. A nil renderer is allowed; recaps are
// then stored without share images instead of failing the job.
func NewRecapBuilder(cfg schoology.Config, recapRepo repos.RecapRepo, renderer *render.Renderer, baseLog *logger.Logger) RecapBuilder {
	return &recapBuilder{
		log:       baseLog.With("service", "RecapBuilder"),
		cfg:       cfg,
		recapRepo: recapRepo,
		renderer:  renderer,
	}
}

func (b *recapBuilder) Build(ctx context.Context, job *types.Job, progress BuildProgress) (*types.Recap, error) {
	if progress == nil {
		progress = func(string, int) {}
	}

	client := schoology.NewClient(b.cfg, job.AccessToken, job.AccessTokenSecret, b.log)
	collector := recap.NewCollector(client, b.log)

	ds, err := collector.Collect(ctx, collectionProgress(progress))
	if err != nil {
		return nil, fmt.Errorf("collect dataset: %w", err)
	}

	progress("aggregate", 80)
	metrics := recap.Aggregate(ds)
	assembled := recap.Assemble(ds.User, metrics)

	email := ds.User.Email
	if email == "" {
		email = job.Email
	}
	if email == "" {
		return nil, errors.New("profile has no email to key the recap on")
	}

	fieldsJSON, err := json.Marshal(assembled.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	slidesJSON, err := json.Marshal(assembled.Slides)
	if err != nil {
		return nil, fmt.Errorf("marshal slides: %w", err)
	}

	saved, err := b.recapRepo.UpsertByEmail(ctx, &types.Recap{
		JobID:  job.ID,
		Email:  email,
		Fields: fieldsJSON,
		Slides: slidesJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("persist recap: %w", err)
	}

	progress("render", 90)
	if b.renderer != nil {
		images, renderErr := b.renderer.RenderAll(saved.ID.String(), assembled.Fields)
		if renderErr != nil {
			// Share images are an enhancement; the recap itself already
			// persisted and stays usable without them.
			b.log.Warn("Share image rendering failed", "recap_id", saved.ID, "error", renderErr)
		} else {
			imagesJSON, mErr := json.Marshal(images)
			if mErr == nil {
				if uErr := b.recapRepo.UpdateShareImages(ctx, saved.ID, imagesJSON); uErr != nil {
					b.log.Warn("Could not save share image paths", "recap_id", saved.ID, "error", uErr)
				} else {
					saved.ShareImages = imagesJSON
				}
			}
		}
	}

	progress("save", 99)
	return saved, nil
}

// collectionProgress maps collector stages onto the 0..75 slice of the job
// progress bar; aggregation, rendering and persistence own the rest.
func collectionProgress(progress BuildProgress) recap.ProgressFunc {
	return func(stage string, done, total int) {
		if total < 1 {
			total = 1
		}
		switch stage {
		case "profile":
			progress("profile", 5)
		case "sections":
			progress("sections", 10)
		case "enrollments":
			progress("enrollments", 10+20*done/total)
		case "assignments":
			progress("assignments", 30+45*done/total)
		}
	}
}
