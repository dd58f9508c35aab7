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

func newWishlistServiceForTest(t *testing.T) (WishlistService, repository.ListingRepository) {
	t.Helper()

	db := setupServiceTestDB(t, &models.WishlistEntry{}, &models.Listing{})
	wishlist := repository.NewWishlistRepository(db)
	listings := repository.NewListingRepository(db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewWishlistService(wishlist, listings, nil, validate, zerolog.Nop()), listings
}

func TestWishlistServiceToggle(t *testing.T) {
	svc, listings := newWishlistServiceForTest(t)
	ctx := context.Background()

	listing := models.Listing{Title: "Guitar", Price: 3000, OwnerID: "seller"}
	require.NoError(t, listings.Create(ctx, &listing))

	favorited, err := svc.Toggle(ctx, "u1", dto.WishlistToggleRequest{ListingID: listing.ID})
	require.NoError(t, err)
	require.True(t, favorited)

	wishlist, err := svc.IDs(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{listing.ID}, wishlist.ListingIDs)

	// Second toggle removes it.
	favorited, err = svc.Toggle(ctx, "u1", dto.WishlistToggleRequest{ListingID: listing.ID})
	require.NoError(t, err)
	require.False(t, favorited)

	wishlist, err = svc.IDs(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, wishlist.ListingIDs)

	_, err = svc.Toggle(ctx, "u1", dto.WishlistToggleRequest{ListingID: "missing"})
	require.ErrorIs(t, err, ErrListingNotFound)
}

func TestWishlistServiceReplace(t *testing.T) {
	svc, listings := newWishlistServiceForTest(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"One", "Two", "Three"} {
		listing := models.Listing{Title: title, Price: 10, OwnerID: "seller"}
		require.NoError(t, listings.Create(ctx, &listing))
		ids = append(ids, listing.ID)
	}

	wishlist, err := svc.Replace(ctx, "u1", dto.WishlistReplaceRequest{ListingIDs: []string{ids[0], ids[1]}})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{ids[0], ids[1]}, wishlist.ListingIDs)

	// Replacing swaps out removed ids and adds new ones.
	wishlist, err = svc.Replace(ctx, "u1", dto.WishlistReplaceRequest{ListingIDs: []string{ids[1], ids[2]}})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{ids[1], ids[2]}, wishlist.ListingIDs)

	wishlist, err = svc.Replace(ctx, "u1", dto.WishlistReplaceRequest{ListingIDs: nil})
	require.NoError(t, err)
	require.Empty(t, wishlist.ListingIDs)
}

func TestWishlistServiceListingsSkipsDeleted(t *testing.T) {
	svc, listings := newWishlistServiceForTest(t)
	ctx := context.Background()

	keep := models.Listing{Title: "Keep", Price: 10, OwnerID: "seller"}
	gone := models.Listing{Title: "Gone", Price: 10, OwnerID: "seller"}
	require.NoError(t, listings.Create(ctx, &keep))
	require.NoError(t, listings.Create(ctx, &gone))

	_, err := svc.Toggle(ctx, "u1", dto.WishlistToggleRequest{ListingID: keep.ID})
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, "u1", dto.WishlistToggleRequest{ListingID: gone.ID})
	require.NoError(t, err)

	require.NoError(t, listings.Delete(ctx, gone.ID))

	resolved, err := svc.Listings(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, keep.ID, resolved[0].ID)
}
