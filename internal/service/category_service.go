package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

// ErrCategoryExists indicates another category already carries the name.
var ErrCategoryExists = errors.New("category name already in use")

const categoryListLimit = 100

// CategoryService manages the admin-curated category taxonomy.
type CategoryService interface {
	Create(ctx context.Context, req dto.CategoryMutationRequest) (dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Rename(ctx context.Context, id string, req dto.CategoryMutationRequest) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	categories repository.CategoryRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(categories repository.CategoryRepository, validate *validator.Validate, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categories: categories,
		validator:  validate,
		logger:     logger.With().Str("component", "category_service").Logger(),
	}
}

func (s *categoryService) Create(ctx context.Context, req dto.CategoryMutationRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.Category{Name: name}
	if err := s.categories.Create(ctx, &category); err != nil {
		return dto.CategoryResponse{}, err
	}

	s.logger.Info().Str("category_id", category.ID).Str("name", name).Msg("category created")
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categories.List(ctx, categoryListLimit)
	if err != nil {
		return nil, err
	}
	return dto.NewCategoryResponseSlice(categories), nil
}

func (s *categoryService) Rename(ctx context.Context, id string, req dto.CategoryMutationRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CategoryResponse{}, err
	}

	category, err := s.categories.ByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CategoryResponse{}, ErrCategoryNotFound
	}
	if err != nil {
		return dto.CategoryResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, category.ID); err != nil {
		return dto.CategoryResponse{}, err
	}

	if err := s.categories.Rename(ctx, category.ID, name); err != nil {
		return dto.CategoryResponse{}, err
	}

	category.Name = name
	return dto.NewCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	category, err := s.categories.ByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return err
	}

	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return err
	}

	s.logger.Info().Str("category_id", category.ID).Msg("category removed")
	return nil
}

// ensureNameFree enforces case-insensitive name uniqueness at the
// service layer. excludeID skips the category being renamed.
func (s *categoryService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	existing, err := s.categories.ByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != excludeID {
		return ErrCategoryExists
	}
	return nil
}
