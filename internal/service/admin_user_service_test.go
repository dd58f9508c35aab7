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

func newAdminUserServiceForTest(t *testing.T) (AdminUserService, repository.UserRepository) {
	t.Helper()

	db := setupServiceTestDB(t, &models.User{})
	users := repository.NewUserRepository(db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAdminUserService(users, validate, zerolog.Nop()), users
}

func TestAdminUserServiceModeration(t *testing.T) {
	svc, users := newAdminUserServiceForTest(t)
	ctx := context.Background()

	admin := models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	target := models.User{Email: "target@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, &admin))
	require.NoError(t, users.Create(ctx, &target))

	promoted, err := svc.SetRole(ctx, admin.ID, target.ID, dto.UserRoleRequest{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, promoted.Role)

	banned, err := svc.SetBanned(ctx, admin.ID, target.ID, dto.UserBanRequest{Banned: true})
	require.NoError(t, err)
	require.True(t, banned.Banned)

	stored, err := users.ByID(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, stored.Role)
	require.True(t, stored.Banned)

	// Admins cannot moderate themselves.
	_, err = svc.SetRole(ctx, admin.ID, admin.ID, dto.UserRoleRequest{Role: models.RoleUser})
	require.ErrorIs(t, err, ErrSelfModeration)
	_, err = svc.SetBanned(ctx, admin.ID, admin.ID, dto.UserBanRequest{Banned: true})
	require.ErrorIs(t, err, ErrSelfModeration)

	_, err = svc.SetRole(ctx, admin.ID, "missing", dto.UserRoleRequest{Role: models.RoleUser})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminUserServiceList(t *testing.T) {
	svc, users := newAdminUserServiceForTest(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := models.User{Email: email, PasswordHash: "x", Role: models.RoleUser}
		require.NoError(t, users.Create(ctx, &user))
	}

	page, err := svc.List(ctx, dto.UserQuery{PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 2, page.PageSize)

	page, err = svc.List(ctx, dto.UserQuery{Search: "b@example"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	require.Equal(t, "b@example.com", page.Items[0].Email)
}
