package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// WishlistHandler exposes the caller's favorite listings.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

// NewWishlistHandler constructs a wishlist handler.
func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("component", "wishlist_handler").Logger(),
	}
}

// Register wires the wishlist routes. The router must already require a
// valid session.
func (h *WishlistHandler) Register(router fiber.Router) {
	router.Get("", h.ids)
	router.Get("/listings", h.listings)
	router.Post("/toggle", h.toggle)
	router.Put("", h.replace)
}

func (h *WishlistHandler) ids(c *fiber.Ctx) error {
	wishlist, err := h.service.IDs(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load wishlist")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load wishlist")
	}
	return utils.SendSuccess(c, "wishlist loaded", wishlist)
}

func (h *WishlistHandler) listings(c *fiber.Ctx) error {
	listings, err := h.service.Listings(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load wishlist listings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load wishlist")
	}
	return utils.SendSuccess(c, "wishlist loaded", listings)
}

func (h *WishlistHandler) toggle(c *fiber.Ctx) error {
	var payload dto.WishlistToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	favorited, err := h.service.Toggle(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrListingNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to toggle wishlist entry")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update wishlist")
		}
	}

	return utils.SendSuccess(c, "wishlist updated", fiber.Map{"favorited": favorited})
}

func (h *WishlistHandler) replace(c *fiber.Ctx) error {
	var payload dto.WishlistReplaceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	wishlist, err := h.service.Replace(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to replace wishlist")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update wishlist")
	}

	return utils.SendSuccess(c, "wishlist updated", wishlist)
}
