package models

import "time"

// Message delivery statuses. Transitions are monotonic:
// sent -> delivered -> read, never backward.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Thread is a conversation scoped to one listing and exactly two
// participants. ThreadKey is the deterministic order-independent
// identifier; uniqueness is enforced by querying on it, not by a
// database constraint. The typing columns hold the transient
// last-writer-wins typing indicator.
type Thread struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ThreadKey        string     `gorm:"size:255;index;not null" json:"thread_key"`
	ListingID        string     `gorm:"size:64;index" json:"listing_id"`
	ParticipantOneID string     `gorm:"size:64;index" json:"participant_one_id"`
	ParticipantTwoID string     `gorm:"size:64;index" json:"participant_two_id"`
	LastMessage      string     `gorm:"type:text" json:"last_message"`
	LastMessageAt    *time.Time `json:"last_message_at"`
	LastSenderID     string     `gorm:"size:64" json:"last_sender_id"`
	TypingUserID     string     `gorm:"size:64" json:"typing_user_id"`
	TypingAt         *time.Time `json:"typing_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Participants returns the canonical participant pair, dropping empties.
func (t Thread) Participants() []string {
	out := make([]string, 0, 2)
	if t.ParticipantOneID != "" {
		out = append(out, t.ParticipantOneID)
	}
	if t.ParticipantTwoID != "" {
		out = append(out, t.ParticipantTwoID)
	}
	return out
}

// OtherParticipant resolves "the participant that is not userID".
func (t Thread) OtherParticipant(userID string) string {
	if t.ParticipantOneID == userID {
		return t.ParticipantTwoID
	}
	if t.ParticipantTwoID == userID {
		return t.ParticipantOneID
	}
	return ""
}

// HasParticipant reports whether userID belongs to the thread.
func (t Thread) HasParticipant(userID string) bool {
	return userID != "" && (t.ParticipantOneID == userID || t.ParticipantTwoID == userID)
}

// Message is a single chat message belonging to a thread. Rows are
// immutable after creation except for the status/read transitions.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ThreadKey  string    `gorm:"size:255;index;not null" json:"thread_key"`
	ListingID  string    `gorm:"size:64;index" json:"listing_id"`
	SenderID   string    `gorm:"size:64;index;not null" json:"sender_id"`
	ReceiverID string    `gorm:"size:64;index" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	Status     string    `gorm:"size:16;not null;default:sent" json:"status"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TypingState is the validated view of a thread's typing indicator.
// A stored flag only counts as active while its timestamp falls inside
// the recency window; stale flags read as inactive without being
// cleared from storage.
type TypingState struct {
	Active bool       `json:"active"`
	UserID string     `json:"user_id,omitempty"`
	At     *time.Time `json:"at,omitempty"`
}
