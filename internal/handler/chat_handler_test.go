package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/handler"
	"github.com/trolukyanrl/jorhatx/internal/service"
)

type mockChatService struct {
	service.ChatService

	lastUserID string
	lastKey    string
	sendErr    error
	message    dto.MessageResponse
	thread     dto.ThreadResponse
}

func (m *mockChatService) EnsureThread(_ context.Context, userID string, req dto.ThreadEnsureRequest) (dto.ThreadResponse, error) {
	m.lastUserID = userID
	return m.thread, nil
}

func (m *mockChatService) SendMessage(_ context.Context, userID, threadKey string, req dto.MessageSendRequest) (dto.MessageResponse, error) {
	m.lastUserID = userID
	m.lastKey = threadKey
	if m.sendErr != nil {
		return dto.MessageResponse{}, m.sendErr
	}
	return m.message, nil
}

func newChatTestApp(svc service.ChatService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/chat", func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		c.Locals("user_role", "user")
		return c.Next()
	})
	handler.NewChatHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func TestChatHandler_SendMessage(t *testing.T) {
	svc := &mockChatService{message: dto.MessageResponse{ID: 7, ThreadKey: "p1::u1::u2", SenderID: "u1", Body: "hello"}}
	app := newChatTestApp(svc)

	body, err := json.Marshal(dto.MessageSendRequest{Body: "hello"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/threads/p1::u1::u2/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.MessageResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(7), response.Data.ID)
	require.Equal(t, "u1", svc.lastUserID)
	require.Equal(t, "p1::u1::u2", svc.lastKey)
}

func TestChatHandler_SendMessageErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty body", service.ErrEmptyMessage, fiber.StatusBadRequest},
		{"unknown thread", service.ErrThreadNotFound, fiber.StatusNotFound},
		{"outsider", service.ErrThreadForbidden, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockChatService{sendErr: tc.err}
			app := newChatTestApp(svc)

			body, err := json.Marshal(dto.MessageSendRequest{Body: "hello"})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/threads/k/messages", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestChatHandler_EnsureThreadPassesCaller(t *testing.T) {
	svc := &mockChatService{thread: dto.ThreadResponse{ID: 3, ThreadKey: "p1::u1::u2"}}
	app := newChatTestApp(svc)

	body, err := json.Marshal(dto.ThreadEnsureRequest{ListingID: "p1", OtherUserID: "u2"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/threads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "u1", svc.lastUserID)
}
