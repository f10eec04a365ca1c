package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/types"
	"github.com/schoolwrapped/recap-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the job/recap store. DB_DRIVER=sqlite keeps the original's
// single-file deployment working; anything else connects to Postgres.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "/data/jobs.db", log)
		serviceLog.Info("Opening sqlite database", "path", path)
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "recap", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to open database", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to open database (%s): %w", driver, err)
	}

	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := s.db.AutoMigrate(
		&types.Job{},
		&types.Recap{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
