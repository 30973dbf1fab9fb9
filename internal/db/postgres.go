package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/types"
	"github.com/nadavbr/lessonforge-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	dsn := utils.GetEnv("DATABASE_URL", "", log)
	if dsn == "" {
		postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "lessonforge", log)
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)
	}

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Category{},
		&types.SubCategory{},
		&types.Lesson{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// SeedCatalog upserts the baseline category tree. Safe to run on every boot.
func (s *PostgresService) SeedCatalog() error {
	web := types.Category{Name: "Web Development"}
	if err := s.db.Where(types.Category{Name: web.Name}).FirstOrCreate(&web).Error; err != nil {
		return fmt.Errorf("seed category %q: %w", web.Name, err)
	}
	for _, name := range []string{"HTML Basics", "CSS Fundamentals"} {
		sub := types.SubCategory{Name: name, CategoryID: web.ID}
		if err := s.db.Where(types.SubCategory{Name: name, CategoryID: web.ID}).FirstOrCreate(&sub).Error; err != nil {
			return fmt.Errorf("seed sub-category %q: %w", name, err)
		}
	}
	s.log.Info("Catalog seed completed")
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
