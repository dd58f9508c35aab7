package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// AdminUserHandler exposes the admin user directory and moderation
// endpoints.
type AdminUserHandler struct {
	service service.AdminUserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs an admin user handler.
func NewAdminUserHandler(service service.AdminUserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register wires the admin user routes. The router must already require
// the admin role.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/role", h.setRole)
	router.Patch("/:id/ban", h.setBanned)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	query := dto.UserQuery{
		Search:   c.Query("search"),
		Role:     strings.TrimSpace(c.Query("role")),
		Page:     page,
		PageSize: pageSize,
	}

	users, err := h.service.List(c.Context(), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users loaded", users)
}

func (h *AdminUserHandler) setRole(c *fiber.Ctx) error {
	var payload dto.UserRoleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.SetRole(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrSelfModeration):
			return utils.SendError(c, fiber.StatusBadRequest, "cannot moderate your own account")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to change role")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change role")
		}
	}

	return utils.SendSuccess(c, "role updated", user)
}

func (h *AdminUserHandler) setBanned(c *fiber.Ctx) error {
	var payload dto.UserBanRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.SetBanned(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfModeration):
			return utils.SendError(c, fiber.StatusBadRequest, "cannot moderate your own account")
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to change ban state")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to change ban state")
		}
	}

	return utils.SendSuccess(c, "ban state updated", user)
}
