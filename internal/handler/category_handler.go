package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// CategoryHandler exposes the category taxonomy. Reads are open to any
// authenticated user; mutations are registered separately under the
// admin group.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "category_handler").Logger(),
	}
}

// Register wires the read-only category routes.
func (h *CategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterAdmin wires the mutating category routes. The router must
// already require the admin role.
func (h *CategoryHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
	router.Patch("/:id", h.rename)
	router.Delete("/:id", h.remove)
}

func (h *CategoryHandler) list(c *fiber.Ctx) error {
	categories, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list categories")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}
	return utils.SendSuccess(c, "categories loaded", categories)
}

func (h *CategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryMutationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	category, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrCategoryExists):
			return utils.SendError(c, fiber.StatusConflict, "category name already in use")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create category")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", category)
}

func (h *CategoryHandler) rename(c *fiber.Ctx) error {
	var payload dto.CategoryMutationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	category, err := h.service.Rename(c.Context(), c.Params("id"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		case errors.Is(err, service.ErrCategoryExists):
			return utils.SendError(c, fiber.StatusConflict, "category name already in use")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to rename category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to rename category")
		}
	}

	return utils.SendSuccess(c, "category renamed", category)
}

func (h *CategoryHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to remove category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to remove category")
	}
	return utils.SendSuccess(c, "category removed", nil)
}
