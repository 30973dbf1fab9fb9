package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/nadavbr/lessonforge-backend/internal/apierr"
	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/repos"
	"github.com/nadavbr/lessonforge-backend/internal/types"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// NormalizePhone strips all whitespace so "054 123 4567" and "0541234567"
// compare as the same identity.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

type UpdateUserInput struct {
	Name  *string
	Phone *string
}

type UserListResult struct {
	Items    []*types.User
	Page     int
	PageSize int
	Total    int64
	Pages    int
}

type UserService interface {
	// CheckByPhone returns (nil, nil) when no user matches; absence is a
	// branch for the client, not an error.
	CheckByPhone(ctx context.Context, phone string) (*types.User, error)
	Register(ctx context.Context, name, phone string) (*types.User, error)
	Create(ctx context.Context, name, phone string) (*types.User, error)
	List(ctx context.Context, page, pageSize int) (*UserListResult, error)
	GetByID(ctx context.Context, id uint) (*types.User, error)
	Update(ctx context.Context, id uint, in UpdateUserInput) (*types.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{db: db, log: serviceLog, userRepo: userRepo}
}

func (us *userService) CheckByPhone(ctx context.Context, phone string) (*types.User, error) {
	normalized := NormalizePhone(phone)
	user, err := us.userRepo.GetByPhone(ctx, nil, normalized)
	if err != nil {
		return nil, fmt.Errorf("error fetching user by phone: %w", err)
	}
	return user, nil
}

func (us *userService) Register(ctx context.Context, name, phone string) (*types.User, error) {
	return us.createUser(ctx, name, phone, "User already exists")
}

func (us *userService) Create(ctx context.Context, name, phone string) (*types.User, error) {
	return us.createUser(ctx, name, phone, "Phone already exists")
}

func (us *userService) createUser(ctx context.Context, name, phone, conflictMsg string) (*types.User, error) {
	normalized := NormalizePhone(phone)

	exists, err := us.userRepo.PhoneExists(ctx, nil, normalized, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking phone existence: %w", err)
	}
	if exists {
		return nil, apierr.New(http.StatusConflict, "phone_exists", fmt.Errorf("%s", conflictMsg))
	}

	user := &types.User{
		Name:  strings.TrimSpace(name),
		Phone: normalized,
	}
	if err := us.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	us.log.Info("User created", "user_id", user.ID, "phone", user.Phone)
	return user, nil
}

func (us *userService) List(ctx context.Context, page, pageSize int) (*UserListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, err := us.userRepo.List(ctx, nil, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	total, err := us.userRepo.Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &UserListResult{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Pages:    pages,
	}, nil
}

func (us *userService) GetByID(ctx context.Context, id uint) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if user == nil {
		return nil, apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("User not found"))
	}
	return user, nil
}

func (us *userService) Update(ctx context.Context, id uint, in UpdateUserInput) (*types.User, error) {
	if in.Name == nil && in.Phone == nil {
		return nil, apierr.New(http.StatusBadRequest, "empty_update", fmt.Errorf("No fields to update"))
	}

	if _, err := us.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		normalized := NormalizePhone(*in.Phone)
		taken, err := us.userRepo.PhoneExists(ctx, nil, normalized, id)
		if err != nil {
			return nil, fmt.Errorf("error checking phone existence: %w", err)
		}
		if taken {
			return nil, apierr.New(http.StatusConflict, "phone_exists", fmt.Errorf("Phone already exists"))
		}
		fields["phone"] = normalized
	}

	if _, err := us.userRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return us.GetByID(ctx, id)
}

func (us *userService) Delete(ctx context.Context, id uint) error {
	rows, err := us.userRepo.Delete(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if rows == 0 {
		return apierr.New(http.StatusNotFound, "user_not_found", fmt.Errorf("User not found"))
	}
	us.log.Info("User deleted", "user_id", id)
	return nil
}
