package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

// ErrSelfModeration indicates an admin tried to change their own role
// or ban state.
var ErrSelfModeration = errors.New("cannot moderate your own account")

// AdminUserService exposes the admin user directory and moderation
// operations.
type AdminUserService interface {
	List(ctx context.Context, query dto.UserQuery) (dto.UserPage, error)
	SetRole(ctx context.Context, actorID, userID string, req dto.UserRoleRequest) (dto.UserResponse, error)
	SetBanned(ctx context.Context, actorID, userID string, req dto.UserBanRequest) (dto.UserResponse, error)
}

type adminUserService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminUserService constructs the admin user service.
func NewAdminUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
	}
}

func (s *adminUserService) List(ctx context.Context, query dto.UserQuery) (dto.UserPage, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.UserPage{}, err
	}

	filter := repository.UserFilter{
		Search:   strings.TrimSpace(query.Search),
		Role:     query.Role,
		Page:     query.Page,
		PageSize: query.PageSize,
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserPage{}, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return dto.UserPage{
		Items:    dto.NewUserResponseSlice(users),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *adminUserService) SetRole(ctx context.Context, actorID, userID string, req dto.UserRoleRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if actorID == userID {
		return dto.UserResponse{}, ErrSelfModeration
	}

	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, ErrUserNotFound
	}
	if err != nil {
		return dto.UserResponse{}, err
	}

	if err := s.users.SetRole(ctx, user.ID, req.Role); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().
		Str("actor_id", actorID).
		Str("user_id", user.ID).
		Str("role", req.Role).
		Msg("user role changed")

	user.Role = req.Role
	return dto.NewUserResponse(user), nil
}

func (s *adminUserService) SetBanned(ctx context.Context, actorID, userID string, req dto.UserBanRequest) (dto.UserResponse, error) {
	if actorID == userID {
		return dto.UserResponse{}, ErrSelfModeration
	}

	user, err := s.users.ByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, ErrUserNotFound
	}
	if err != nil {
		return dto.UserResponse{}, err
	}

	if err := s.users.SetBanned(ctx, user.ID, req.Banned); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().
		Str("actor_id", actorID).
		Str("user_id", user.ID).
		Bool("banned", req.Banned).
		Msg("user ban state changed")

	user.Banned = req.Banned
	return dto.NewUserResponse(user), nil
}
