package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// ListingHandler exposes the classifieds feed.
type ListingHandler struct {
	service service.ListingService
	logger  zerolog.Logger
}

// NewListingHandler constructs a listing handler.
func NewListingHandler(service service.ListingService, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		logger:  logger.With().Str("component", "listing_handler").Logger(),
	}
}

// Register wires the listing routes. The router must already require a
// valid session.
func (h *ListingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/mine", h.mine)
	router.Get("/:id", h.byID)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *ListingHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	query := dto.ListingQuery{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	feed, err := h.service.List(c.Context(), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list listings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list listings")
	}

	return utils.SendSuccess(c, "listings loaded", feed)
}

func (h *ListingHandler) create(c *fiber.Ctx) error {
	var payload dto.ListingCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	listing, err := h.service.Create(c.Context(), userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusBadRequest, "category not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to publish listing")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to publish listing")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "listing published", listing)
}

func (h *ListingHandler) mine(c *fiber.Ctx) error {
	listings, err := h.service.ListByOwner(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list own listings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list listings")
	}
	return utils.SendSuccess(c, "listings loaded", listings)
}

func (h *ListingHandler) byID(c *fiber.Ctx) error {
	listing, err := h.service.ByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load listing")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load listing")
	}
	return utils.SendSuccess(c, "listing loaded", listing)
}

func (h *ListingHandler) update(c *fiber.Ctx) error {
	var payload dto.ListingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	listing, err := h.service.Update(c.Context(), c.Params("id"), userIDFromContext(c), userRoleFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrListingNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		case errors.Is(err, service.ErrListingForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to modify this listing")
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusBadRequest, "category not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update listing")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update listing")
		}
	}

	return utils.SendSuccess(c, "listing updated", listing)
}

func (h *ListingHandler) remove(c *fiber.Ctx) error {
	err := h.service.Delete(c.Context(), c.Params("id"), userIDFromContext(c), userRoleFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListingNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "listing not found")
		case errors.Is(err, service.ErrListingForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to modify this listing")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove listing")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove listing")
		}
	}

	return utils.SendSuccess(c, "listing removed", nil)
}
