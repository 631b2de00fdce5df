package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

const defaultUserPageSize = 20

// UserService manages profiles and, for admins, any account.
type UserService interface {
	Profile(ctx context.Context, actor Actor) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor Actor, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor Actor, payload dto.PasswordChangeRequest) error
	List(ctx context.Context, filter dto.UserListFilter) ([]dto.UserResponse, dto.PaginationMeta, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	AdminUpdate(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest) (dto.UserResponse, error)
	ResetPassword(ctx context.Context, id uint, payload dto.PasswordResetRequest) error
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	hashCost  int
}

// NewUserService constructs the account management service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Profile(ctx context.Context, actor Actor) (dto.UserResponse, error) {
	return s.Get(ctx, actor.ID)
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Name != nil {
		user.Name = sanitizePlain(*payload.Name)
	}
	if payload.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
	}
	if payload.DateOfBirth != nil {
		if strings.TrimSpace(*payload.DateOfBirth) == "" {
			user.DateOfBirth = nil
		} else {
			dob, err := time.Parse("2006-01-02", *payload.DateOfBirth)
			if err != nil {
				return dto.UserResponse{}, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrInvalidInput)
			}
			user.DateOfBirth = &dob
		}
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, actor Actor, payload dto.PasswordChangeRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.load(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !passwordMatches(user.PasswordHash, payload.CurrentPassword) {
		return ErrInvalidCredentials
	}

	if err := s.setPassword(ctx, &user, payload.NewPassword); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *userService) List(ctx context.Context, filter dto.UserListFilter) ([]dto.UserResponse, dto.PaginationMeta, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultUserPageSize
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:       models.NormalizeRole(filter.Role),
		Search:     filter.Search,
		Pagination: repository.Pagination{Page: page, PageSize: pageSize},
	})
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	return dto.NewUserResponseSlice(users), dto.NewPaginationMeta(page, pageSize, total), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) AdminUpdate(ctx context.Context, id uint, payload dto.AdminUserUpdateRequest) (dto.UserResponse, error) {
	if payload.Email != nil {
		email := models.NormalizeEmail(*payload.Email)
		payload.Email = &email
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Email != nil && *payload.Email != user.Email {
		taken, err := s.users.EmailTaken(ctx, *payload.Email, user.ID)
		if err != nil {
			return dto.UserResponse{}, err
		}
		if taken {
			return dto.UserResponse{}, ErrEmailTaken
		}
		user.Email = *payload.Email
	}
	if payload.Name != nil {
		user.Name = sanitizePlain(*payload.Name)
	}
	if payload.Role != nil {
		user.Role = models.NormalizeRole(*payload.Role)
	}
	if payload.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account updated by admin")
	return dto.NewUserResponse(user), nil
}

func (s *userService) ResetPassword(ctx context.Context, id uint, payload dto.PasswordResetRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.setPassword(ctx, &user, payload.Password); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password reset by admin")
	return nil
}

func (s *userService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func (s *userService) load(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
