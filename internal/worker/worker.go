package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/repos"
	"github.com/schoolwrapped/recap-backend/internal/services"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

const (
	pollInterval = 1 * time.Second
	sweepEvery   = 10 * time.Minute

	// Error rows stay visible this long so a poller that missed the live
	// stream can still read the failure, then they are swept.
	errorRetention = 1 * time.Hour
)

// Worker drains the job queue one job at a time. A single claimed job bounds
// upstream API concurrency; scaling out means more worker processes racing on
// the same conditional claim.
type Worker struct {
	log     *logger.Logger
	jobRepo repos.JobRepo
	builder services.RecapBuilder
	notify  services.JobNotifier
}

func NewWorker(jobRepo repos.JobRepo, builder services.RecapBuilder, notify services.JobNotifier, baseLog *logger.Logger) *Worker {
	return &Worker{
		jobRepo: jobRepo,
		builder: builder,
		notify:  notify,
		log:     baseLog.With("component", "JobWorker"),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		sweep := time.NewTicker(sweepEvery)
		defer sweep.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sweep.C:
				n, err := w.jobRepo.DeleteErroredBefore(ctx, time.Now().Add(-errorRetention))
				if err != nil {
					w.log.Warn("Error-row sweep failed", "error", err)
				} else if n > 0 {
					w.log.Info("Swept errored jobs", "count", n)
				}
			case <-ticker.C:
				job, err := w.jobRepo.ClaimNextQueued(ctx)
				if err != nil {
					w.log.Warn("ClaimNextQueued failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				w.run(ctx, job)
			}
		}
	}()
}

func (w *Worker) run(ctx context.Context, job *types.Job) {
	w.log.Info("Job claimed", "job_id", job.ID, "email", job.Email)

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Job panic", "job_id", job.ID, "panic", r)
			w.fail(ctx, job.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	reporter := newProgressReporter(func(stage string, pct int) {
		if err := w.jobRepo.UpdateProgress(ctx, job.ID, stage, pct); err != nil {
			w.log.Warn("Progress update failed", "job_id", job.ID, "error", err)
		}
		w.notify.Progress(job.ID, stage, pct)
	}, 0)

	recapRow, err := w.builder.Build(ctx, job, reporter.Update)
	if err != nil {
		w.log.Warn("Job failed", "job_id", job.ID, "error", err)
		w.fail(ctx, job.ID, err.Error())
		return
	}

	// The recap row is persisted; the job row has served its purpose and is
	// removed so the queue table only ever holds live work.
	if err := w.jobRepo.Delete(ctx, job.ID); err != nil {
		w.log.Warn("Could not delete finished job", "job_id", job.ID, "error", err)
	}
	w.notify.Done(job.ID, recapRow.ID)
	w.log.Info("Job finished", "job_id", job.ID, "recap_id", recapRow.ID)
}

func (w *Worker) fail(ctx context.Context, jobID uuid.UUID, message string) {
	if err := w.jobRepo.MarkError(ctx, jobID, message); err != nil {
		w.log.Warn("MarkError failed", "job_id", jobID, "error", err)
	}
	w.notify.Failed(jobID, message)
}

// progressReporter throttles writes: progress never regresses and repeats
// inside the minimum interval are dropped, so a chatty collection loop does
// not hammer the jobs table.
type progressReporter struct {
	mu          sync.Mutex
	report      func(stage string, pct int)
	minInterval time.Duration
	lastPct     int
	lastStage   string
	lastAt      time.Time
}

func newProgressReporter(report func(stage string, pct int), base int) *progressReporter {
	if base < 0 {
		base = 0
	}
	return &progressReporter{
		report:      report,
		minInterval: 500 * time.Millisecond,
		lastPct:     base,
	}
}

func (p *progressReporter) Update(stage string, pct int) {
	if p == nil || p.report == nil {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 99 {
		pct = 99
	}
	now := time.Now()
	p.mu.Lock()
	if pct < p.lastPct {
		pct = p.lastPct
	}
	if pct == p.lastPct && stage == p.lastStage && !p.lastAt.IsZero() && now.Sub(p.lastAt) < p.minInterval {
		p.mu.Unlock()
		return
	}
	p.lastPct = pct
	p.lastStage = stage
	p.lastAt = now
	p.mu.Unlock()
	p.report(stage, pct)
}
