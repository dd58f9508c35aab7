package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// UploadHandler handles listing image uploads.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires the upload routes. The router must already require a
// valid session.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
	router.Get("/:publicID", h.byPublicID)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is unreadable")
	}
	defer reader.Close()

	result, err := h.service.Upload(c.Context(), userIDFromContext(c), file.Filename, reader)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadUnsupportedType), errors.Is(err, service.ErrUploadEmpty):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "upload failed")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload successful", result)
}

func (h *UploadHandler) byPublicID(c *fiber.Ctx) error {
	result, err := h.service.ByPublicID(c.Context(), c.Params("publicID"))
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "upload not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load upload")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load upload")
	}
	return utils.SendSuccess(c, "upload loaded", result)
}
