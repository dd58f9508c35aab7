package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

func newCategoryServiceForTest(t *testing.T) CategoryService {
	t.Helper()
	db := setupServiceTestDB(t, &models.Category{})
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewCategoryService(repository.NewCategoryRepository(db), validate, zerolog.Nop())
}

func TestCategoryServiceEnforcesSoftUniqueness(t *testing.T) {
	svc := newCategoryServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CategoryMutationRequest{Name: "Electronics"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// Same name, different case: rejected at the service layer.
	_, err = svc.Create(ctx, dto.CategoryMutationRequest{Name: "electronics"})
	require.ErrorIs(t, err, ErrCategoryExists)

	other, err := svc.Create(ctx, dto.CategoryMutationRequest{Name: "Furniture"})
	require.NoError(t, err)

	// Renaming onto an existing name is rejected; renaming onto your own
	// name is a no-op.
	_, err = svc.Rename(ctx, other.ID, dto.CategoryMutationRequest{Name: "ELECTRONICS"})
	require.ErrorIs(t, err, ErrCategoryExists)

	renamed, err := svc.Rename(ctx, other.ID, dto.CategoryMutationRequest{Name: "Furniture"})
	require.NoError(t, err)
	require.Equal(t, "Furniture", renamed.Name)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	require.NoError(t, svc.Delete(ctx, other.ID))
	require.ErrorIs(t, svc.Delete(ctx, other.ID), ErrCategoryNotFound)
}
