package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/repos"
	"github.com/nadavbr/lessonforge-backend/internal/types"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]*types.Category, error)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	catalogRepo repos.CatalogRepo
}

func NewCatalogService(db *gorm.DB, log *logger.Logger, catalogRepo repos.CatalogRepo) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{db: db, log: serviceLog, catalogRepo: catalogRepo}
}

func (cs *catalogService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	categories, err := cs.catalogRepo.ListCategories(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return categories, nil
}
