package dto

import (
	"time"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// ThreadEnsureRequest resolves or creates the conversation between the
// caller and another user about a listing.
type ThreadEnsureRequest struct {
	ListingID   string `json:"listing_id" validate:"required,max=64"`
	OtherUserID string `json:"other_user_id" validate:"required,max=64"`
}

// MessageSendRequest is the payload to append a message to a thread.
type MessageSendRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// TypingUpdateRequest toggles the caller's typing indicator.
type TypingUpdateRequest struct {
	IsTyping bool `json:"is_typing"`
}

// ThreadResponse is the normalized conversation view.
type ThreadResponse struct {
	ID            uint       `json:"id"`
	ThreadKey     string     `json:"thread_key"`
	ListingID     string     `json:"listing_id,omitempty"`
	Participants  []string   `json:"participants"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	LastSenderID  string     `json:"last_sender_id,omitempty"`
	UnreadCount   int64      `json:"unread_count"`
}

// NewThreadResponse converts a model into a DTO.
func NewThreadResponse(thread models.Thread, unread int64) ThreadResponse {
	return ThreadResponse{
		ID:            thread.ID,
		ThreadKey:     thread.ThreadKey,
		ListingID:     thread.ListingID,
		Participants:  thread.Participants(),
		LastMessage:   thread.LastMessage,
		LastMessageAt: thread.LastMessageAt,
		LastSenderID:  thread.LastSenderID,
		UnreadCount:   unread,
	}
}

// MessageResponse is the serialized representation of a chat message.
type MessageResponse struct {
	ID         uint      `json:"id"`
	ThreadKey  string    `json:"thread_key"`
	ListingID  string    `json:"listing_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Body       string    `json:"body"`
	Status     string    `json:"status"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:         message.ID,
		ThreadKey:  message.ThreadKey,
		ListingID:  message.ListingID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Body:       message.Body,
		Status:     message.Status,
		IsRead:     message.IsRead,
		CreatedAt:  message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// TypingStatusResponse reports the recency-windowed typing indicator.
type TypingStatusResponse struct {
	IsTyping     bool       `json:"is_typing"`
	TypingUserID string     `json:"typing_user_id,omitempty"`
	TypingAt     *time.Time `json:"typing_at,omitempty"`
}

// NewTypingStatusResponse converts a typing state into a DTO.
func NewTypingStatusResponse(state models.TypingState) TypingStatusResponse {
	return TypingStatusResponse{
		IsTyping:     state.Active,
		TypingUserID: state.UserID,
		TypingAt:     state.At,
	}
}

// ReadReceiptResponse reports a bulk read-receipt application.
type ReadReceiptResponse struct {
	Updated  int64             `json:"updated"`
	Messages []MessageResponse `json:"messages"`
}
