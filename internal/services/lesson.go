package services

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/apierr"
	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/repos"
	"github.com/nadavbr/lessonforge-backend/internal/types"
)

type CreateLessonInput struct {
	CategoryID    uint
	SubCategoryID uint
	Prompt        string
	UserID        *uint
	Format        string
}

type LessonService interface {
	Create(ctx context.Context, in CreateLessonInput) (*types.Lesson, error)
	List(ctx context.Context) ([]*types.Lesson, error)
	GetByID(ctx context.Context, id uint) (*types.Lesson, error)
	ListForUser(ctx context.Context, userID uint) ([]*types.Lesson, error)
}

type lessonService struct {
	db          *gorm.DB
	log         *logger.Logger
	lessonRepo  repos.LessonRepo
	catalogRepo repos.CatalogRepo
	userRepo    repos.UserRepo
	completion  CompletionClient
}

func NewLessonService(db *gorm.DB, log *logger.Logger, lessonRepo repos.LessonRepo, catalogRepo repos.CatalogRepo, userRepo repos.UserRepo, completion CompletionClient) LessonService {
	serviceLog := log.With("service", "LessonService")
	return &lessonService{
		db:          db,
		log:         serviceLog,
		lessonRepo:  lessonRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		completion:  completion,
	}
}

// Create generates content for the prompt and persists the lesson. The row
// is written only after the fetch succeeds; a failed fetch leaves no trace.
func (ls *lessonService) Create(ctx context.Context, in CreateLessonInput) (*types.Lesson, error) {
	catOK, err := ls.catalogRepo.CategoryExists(ctx, nil, in.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("error checking category: %w", err)
	}
	if !catOK {
		return nil, apierr.New(http.StatusNotFound, "category_not_found", fmt.Errorf("Category not found"))
	}

	subOK, err := ls.catalogRepo.SubCategoryExists(ctx, nil, in.CategoryID, in.SubCategoryID)
	if err != nil {
		return nil, fmt.Errorf("error checking sub-category: %w", err)
	}
	if !subOK {
		return nil, apierr.New(http.StatusNotFound, "sub_category_not_found", fmt.Errorf("Sub-category not found in category"))
	}

	if in.UserID != nil {
		user, err := ls.userRepo.GetByID(ctx, nil, *in.UserID)
		if err != nil {
			return nil, fmt.Errorf("error fetching user: %w", err)
		}
		if user == nil {
			return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("User not found"))
		}
	}

	format := in.Format
	if format == "" {
		format = types.LessonFormatMarkdown
	}

	var content string
	switch format {
	case types.LessonFormatJSON:
		content, err = ls.completion.GenerateLessonJSON(ctx, in.Prompt)
	default:
		content, err = ls.completion.GenerateLessonContent(ctx, in.Prompt)
	}
	if err != nil {
		ls.log.Error("Lesson content generation failed", "error", err)
		return nil, fmt.Errorf("generate lesson content: %w", err)
	}

	lesson := &types.Lesson{
		Title:         "Lesson: " + in.Prompt,
		Content:       content,
		Format:        format,
		CategoryID:    in.CategoryID,
		SubCategoryID: in.SubCategoryID,
		UserID:        in.UserID,
	}
	if err := ls.lessonRepo.Create(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("error creating lesson: %w", err)
	}
	ls.log.Info("Lesson created", "lesson_id", lesson.ID, "category_id", lesson.CategoryID)

	return ls.GetByID(ctx, lesson.ID)
}

func (ls *lessonService) List(ctx context.Context) ([]*types.Lesson, error) {
	lessons, err := ls.lessonRepo.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}
	return lessons, nil
}

func (ls *lessonService) GetByID(ctx context.Context, id uint) (*types.Lesson, error) {
	lesson, err := ls.lessonRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching lesson: %w", err)
	}
	if lesson == nil {
		return nil, apierr.New(http.StatusNotFound, "lesson_not_found", fmt.Errorf("Lesson not found"))
	}
	return lesson, nil
}

// ListForUser reports the missing user before any lesson query runs.
func (ls *lessonService) ListForUser(ctx context.Context, userID uint) ([]*types.Lesson, error) {
	user, err := ls.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if user == nil {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("User not found"))
	}

	lessons, err := ls.lessonRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing lessons for user: %w", err)
	}
	return lessons, nil
}
