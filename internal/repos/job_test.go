package repos

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Job{}, &types.Recap{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestJobRepo_CreateAndClaim(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(testDB(t), testLog(t))

	job := &types.Job{Email: "pat@example.com", AccessToken: "tok", AccessTokenSecret: "sec"}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.ID == uuid.Nil {
		t.Fatalf("create must assign an id")
	}
	if job.Status != types.JobStatusQueued {
		t.Fatalf("status = %q, want queued", job.Status)
	}

	claimed, err := repo.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != job.ID {
		t.Fatalf("claimed = %+v, want the queued job", claimed)
	}
	if claimed.Status != types.JobStatusRunning {
		t.Fatalf("claimed status = %q, want running", claimed.Status)
	}

	// Nothing left to claim.
	again, err := repo.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if again != nil {
		t.Fatalf("second claim = %+v, want nil", again)
	}
}

func TestJobRepo_ClaimOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(testDB(t), testLog(t))

	older := &types.Job{Email: "a@example.com", CreatedAt: time.Now().Add(-time.Minute)}
	newer := &types.Job{Email: "b@example.com"}
	if err := repo.Create(ctx, older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := repo.Create(ctx, newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	claimed, err := repo.ClaimNextQueued(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != older.ID {
		t.Fatalf("claimed %+v, want the older job first", claimed)
	}
}

func TestJobRepo_ProgressOnlyWhileRunning(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(testDB(t), testLog(t))

	job := &types.Job{Email: "pat@example.com"}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Still queued: progress update is a no-op.
	if err := repo.UpdateProgress(ctx, job.ID, "sections", 10); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Progress != 0 || got.Stage != "" {
		t.Fatalf("queued job must not take progress updates: %+v", got)
	}

	if _, err := repo.ClaimNextQueued(ctx); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := repo.UpdateProgress(ctx, job.ID, "assignments", 55); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	got, err = repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Progress != 55 || got.Stage != "assignments" {
		t.Fatalf("running job progress not recorded: %+v", got)
	}
}

func TestJobRepo_MarkErrorAndSweep(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(testDB(t), testLog(t))

	job := &types.Job{Email: "pat@example.com"}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.MarkError(ctx, job.ID, "upstream 403"); err != nil {
		t.Fatalf("mark error: %v", err)
	}

	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.JobStatusError || got.Error != "upstream 403" {
		t.Fatalf("error not recorded: %+v", got)
	}

	// Errored rows survive a sweep with an older cutoff.
	n, err := repo.DeleteErroredBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh error row must survive the sweep, deleted %d", n)
	}

	// A future cutoff removes it.
	n, err = repo.DeleteErroredBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("sweep deleted %d rows, want 1", n)
	}
	got, err = repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("swept job still present: %+v", got)
	}
}

func TestJobRepo_DeleteFinished(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepo(testDB(t), testLog(t))

	job := &types.Job{Email: "pat@example.com"}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("deleted job still present")
	}
}

func TestRecapRepo_UpsertReplacesByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRecapRepo(testDB(t), testLog(t))

	first, err := repo.UpsertByEmail(ctx, &types.Recap{
		JobID:  uuid.New(),
		Email:  "pat@example.com",
		Fields: []byte(`{"total_assignments":1}`),
		Slides: []byte(`[]`),
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	secondJob := uuid.New()
	second, err := repo.UpsertByEmail(ctx, &types.Recap{
		JobID:  secondJob,
		Email:  "pat@example.com",
		Fields: []byte(`{"total_assignments":2}`),
		Slides: []byte(`[]`),
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("upsert must keep one row per email (ids %s vs %s)", first.ID, second.ID)
	}
	if second.JobID != secondJob {
		t.Fatalf("job id not replaced: %+v", second)
	}
	if string(second.Fields) != `{"total_assignments":2}` {
		t.Fatalf("fields not replaced: %s", second.Fields)
	}

	byJob, err := repo.GetByJobID(ctx, secondJob)
	if err != nil {
		t.Fatalf("get by job: %v", err)
	}
	if byJob == nil || byJob.ID != first.ID {
		t.Fatalf("lookup by job id failed: %+v", byJob)
	}
}

func TestRecapRepo_MissingRowsAreNilNotError(t *testing.T) {
	ctx := context.Background()
	repo := NewRecapRepo(testDB(t), testLog(t))

	if got, err := repo.GetByID(ctx, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID on empty table = %+v, %v", got, err)
	}
	if got, err := repo.GetByEmail(ctx, "nobody@example.com"); err != nil || got != nil {
		t.Fatalf("GetByEmail on empty table = %+v, %v", got, err)
	}
}

func TestRecapRepo_UpdateShareImages(t *testing.T) {
	ctx := context.Background()
	repo := NewRecapRepo(testDB(t), testLog(t))

	row, err := repo.UpsertByEmail(ctx, &types.Recap{
		JobID:  uuid.New(),
		Email:  "pat@example.com",
		Fields: []byte(`{}`),
		Slides: []byte(`[]`),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	images := []byte(`{"grid":"/media/recap/x/grid.png"}`)
	if err := repo.UpdateShareImages(ctx, row.ID, images); err != nil {
		t.Fatalf("update images: %v", err)
	}
	got, err := repo.GetByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.ShareImages) != string(images) {
		t.Fatalf("share images = %s", got.ShareImages)
	}
}
