package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/types"
)

type CatalogRepo interface {
	ListCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)
	CategoryExists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	SubCategoryExists(ctx context.Context, tx *gorm.DB, categoryID, subCategoryID uint) (bool, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) CatalogRepo {
	repoLog := baseLog.With("repo", "CatalogRepo")
	return &catalogRepo{db: db, log: repoLog}
}

func (cr *catalogRepo) ListCategories(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Category
	if err := transaction.WithContext(ctx).
		Preload("SubCategories").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *catalogRepo) CategoryExists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Category{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *catalogRepo) SubCategoryExists(ctx context.Context, tx *gorm.DB, categoryID, subCategoryID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.SubCategory{}).
		Where("id = ? AND category_id = ?", subCategoryID, categoryID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
