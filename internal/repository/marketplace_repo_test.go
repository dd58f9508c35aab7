package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

func TestListingRepositoryListFiltersAndPaginates(t *testing.T) {
	db := setupTestDB(t, &models.Listing{})
	repo := NewListingRepository(db)
	ctx := context.Background()

	bike := models.Listing{Title: "Mountain Bike", Description: "Barely used", Price: 120, CategoryID: "cat-sports", OwnerID: "u1"}
	sofa := models.Listing{Title: "Leather Sofa", Description: "Three seater", Price: 340, CategoryID: "cat-home", OwnerID: "u2"}
	lamp := models.Listing{Title: "Desk Lamp", Description: "bike light included", Price: 15, CategoryID: "cat-home", OwnerID: "u2"}
	require.NoError(t, repo.Create(ctx, &bike))
	require.NoError(t, repo.Create(ctx, &sofa))
	require.NoError(t, repo.Create(ctx, &lamp))

	items, total, err := repo.List(ctx, ListingFilter{CategoryID: "cat-home"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	// Search matches title and description, case-insensitively.
	items, total, err = repo.List(ctx, ListingFilter{Search: "BIKE"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	items, total, err = repo.List(ctx, ListingFilter{OwnerID: "u2", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 1)
}

func TestListingRepositoryListByIDs(t *testing.T) {
	db := setupTestDB(t, &models.Listing{})
	repo := NewListingRepository(db)
	ctx := context.Background()

	first := models.Listing{Title: "First Item", Price: 10, OwnerID: "u1"}
	second := models.Listing{Title: "Second Item", Price: 20, OwnerID: "u1"}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))

	listings, err := repo.ListByIDs(ctx, []string{first.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.Equal(t, first.ID, listings[0].ID)

	listings, err = repo.ListByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestCategoryRepositoryByNameIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t, &models.Category{})
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	category := models.Category{Name: "Electronics"}
	require.NoError(t, repo.Create(ctx, &category))

	found, err := repo.ByName(ctx, "electronics")
	require.NoError(t, err)
	require.Equal(t, category.ID, found.ID)

	_, err = repo.ByName(ctx, "Furniture")
	require.Error(t, err)
}

func TestWishlistRepositoryDeduplicatesAndDeletesPairs(t *testing.T) {
	db := setupTestDB(t, &models.WishlistEntry{})
	repo := NewWishlistRepository(db)
	ctx := context.Background()

	// Duplicate rows for the same pair can appear from racing toggles.
	for i := 0; i < 2; i++ {
		entry := models.WishlistEntry{UserID: "u1", ListingID: "l1"}
		require.NoError(t, repo.Create(ctx, &entry))
	}
	single := models.WishlistEntry{UserID: "u1", ListingID: "l2"}
	require.NoError(t, repo.Create(ctx, &single))

	ids, err := repo.ListingIDs(ctx, "u1", 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"l1", "l2"}, ids)

	pairs, err := repo.Find(ctx, "u1", "l1")
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	require.NoError(t, repo.DeletePair(ctx, "u1", "l1"))

	ids, err = repo.ListingIDs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"l2"}, ids)
}

func TestUserRepositoryListFiltersByRoleAndSearch(t *testing.T) {
	db := setupTestDB(t, &models.User{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	admin := models.User{Email: "admin@example.com", Name: "Priya Admin", PasswordHash: "x", Role: models.RoleAdmin}
	alice := models.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x", Role: models.RoleUser}
	bob := models.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, &admin))
	require.NoError(t, repo.Create(ctx, &alice))
	require.NoError(t, repo.Create(ctx, &bob))

	users, total, err := repo.List(ctx, UserFilter{Role: models.RoleUser})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, users, 2)

	users, total, err = repo.List(ctx, UserFilter{Search: "alice"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "alice@example.com", users[0].Email)
}
