package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/service"
	"github.com/trolukyanrl/jorhatx/internal/utils"
)

// ChatHandler exposes buyer/seller conversations: thread discovery,
// message exchange, typing status and read receipts. Clients poll these
// endpoints; there is no push channel.
type ChatHandler struct {
	service service.ChatService
	logger  zerolog.Logger
}

// NewChatHandler constructs a chat handler.
func NewChatHandler(service service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register wires the chat routes. The router must already require a
// valid session.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/threads", h.ensureThread)
	router.Get("/threads", h.listThreads)
	router.Get("/threads/:key", h.threadByKey)
	router.Get("/threads/:key/messages", h.listMessages)
	router.Post("/threads/:key/messages", h.sendMessage)
	router.Get("/threads/:key/last-message", h.lastMessage)
	router.Put("/threads/:key/typing", h.setTyping)
	router.Get("/threads/:key/typing", h.typingStatus)
	router.Post("/threads/:key/read", h.markRead)
	router.Post("/threads/:key/delivered", h.markDelivered)
}

func (h *ChatHandler) ensureThread(c *fiber.Ctx) error {
	var payload dto.ThreadEnsureRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	thread, err := h.service.EnsureThread(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		case errors.Is(err, service.ErrSelfConversation):
			return utils.SendError(c, fiber.StatusBadRequest, "cannot start a conversation with yourself")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to open thread")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to open thread")
		}
	}

	return utils.SendSuccess(c, "thread ready", thread)
}

func (h *ChatHandler) listThreads(c *fiber.Ctx) error {
	threads, err := h.service.ThreadsForUser(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list threads")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list threads")
	}
	return utils.SendSuccess(c, "threads loaded", threads)
}

func (h *ChatHandler) threadByKey(c *fiber.Ctx) error {
	thread, err := h.service.ThreadByKey(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to load thread")
	}
	return utils.SendSuccess(c, "thread loaded", thread)
}

func (h *ChatHandler) listMessages(c *fiber.Ctx) error {
	messages, err := h.service.Messages(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to list messages")
	}
	return utils.SendSuccess(c, "messages loaded", messages)
}

func (h *ChatHandler) sendMessage(c *fiber.Ctx) error {
	var payload dto.MessageSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	message, err := h.service.SendMessage(c.Context(), userIDFromContext(c), c.Params("key"), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrEmptyMessage):
			return utils.SendError(c, fiber.StatusBadRequest, "message body is required")
		default:
			return h.threadError(c, err, "failed to send message")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *ChatHandler) lastMessage(c *fiber.Ctx) error {
	message, err := h.service.LastMessage(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to load last message")
	}
	return utils.SendSuccess(c, "last message loaded", message)
}

func (h *ChatHandler) setTyping(c *fiber.Ctx) error {
	var payload dto.TypingUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	status, err := h.service.SetTyping(c.Context(), userIDFromContext(c), c.Params("key"), payload)
	if err != nil {
		return h.threadError(c, err, "failed to update typing status")
	}
	return utils.SendSuccess(c, "typing status updated", status)
}

func (h *ChatHandler) typingStatus(c *fiber.Ctx) error {
	status, err := h.service.TypingStatus(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to load typing status")
	}
	return utils.SendSuccess(c, "typing status loaded", status)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	receipt, err := h.service.MarkRead(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to mark messages read")
	}
	return utils.SendSuccess(c, "messages marked read", receipt)
}

func (h *ChatHandler) markDelivered(c *fiber.Ctx) error {
	updated, err := h.service.MarkDelivered(c.Context(), userIDFromContext(c), c.Params("key"))
	if err != nil {
		return h.threadError(c, err, "failed to mark messages delivered")
	}
	return utils.SendSuccess(c, "messages marked delivered", fiber.Map{"updated": updated})
}

func (h *ChatHandler) threadError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrThreadNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "thread not found")
	case errors.Is(err, service.ErrThreadForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "not a participant in this thread")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
