package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/chatkey"
	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/observability"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

var (
	// ErrThreadNotFound indicates no thread exists for the given key.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrThreadForbidden indicates the caller is not a participant of the thread.
	ErrThreadForbidden = errors.New("caller is not a thread participant")
	// ErrEmptyMessage indicates the message body was empty after trimming.
	ErrEmptyMessage = errors.New("message body is empty")
	// ErrSelfConversation indicates both participants resolve to the same user.
	ErrSelfConversation = errors.New("cannot open a conversation with yourself")
)

// ChatService implements the conversation core: deterministic thread
// identity, message send/list, the recency-windowed typing indicator and
// bulk read receipts. Clients poll; nothing here pushes.
type ChatService interface {
	EnsureThread(ctx context.Context, userID string, req dto.ThreadEnsureRequest) (dto.ThreadResponse, error)
	ThreadByKey(ctx context.Context, userID, threadKey string) (dto.ThreadResponse, error)
	ThreadsForUser(ctx context.Context, userID string) ([]dto.ThreadResponse, error)
	SendMessage(ctx context.Context, userID, threadKey string, req dto.MessageSendRequest) (dto.MessageResponse, error)
	Messages(ctx context.Context, userID, threadKey string) ([]dto.MessageResponse, error)
	LastMessage(ctx context.Context, userID, threadKey string) (dto.MessageResponse, error)
	SetTyping(ctx context.Context, userID, threadKey string, req dto.TypingUpdateRequest) (dto.TypingStatusResponse, error)
	TypingStatus(ctx context.Context, userID, threadKey string) (dto.TypingStatusResponse, error)
	MarkRead(ctx context.Context, userID, threadKey string) (dto.ReadReceiptResponse, error)
	MarkDelivered(ctx context.Context, userID, threadKey string) (int64, error)
}

type chatService struct {
	threads      repository.ThreadRepository
	messages     repository.MessageRepository
	redis        *redis.Client
	cachePrefix  string
	cacheTTL     time.Duration
	pageSize     int
	typingWindow time.Duration
	validator    *validator.Validate
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	now          func() time.Time
}

// ChatOptions tunes the chat service.
type ChatOptions struct {
	PageSize     int
	TypingWindow time.Duration
	CacheTTL     time.Duration
	CachePrefix  string
}

// NewChatService constructs the chat service. redisClient may be nil; the
// last-message cache is then skipped.
func NewChatService(threads repository.ThreadRepository, messages repository.MessageRepository, redisClient *redis.Client, opts ChatOptions, validate *validator.Validate, logger zerolog.Logger) ChatService {
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	if opts.TypingWindow <= 0 {
		opts.TypingWindow = 3 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.CachePrefix == "" {
		opts.CachePrefix = "jorhatx:chat:last"
	}

	return &chatService{
		threads:      threads,
		messages:     messages,
		redis:        redisClient,
		cachePrefix:  opts.CachePrefix,
		cacheTTL:     opts.CacheTTL,
		pageSize:     opts.PageSize,
		typingWindow: opts.TypingWindow,
		validator:    validate,
		logger:       logger.With().Str("component", "chat_service").Logger(),
		tracer:       otel.Tracer("github.com/trolukyanrl/jorhatx/internal/service/chat"),
		sanitizer:    bluemonday.StrictPolicy(),
		now:          time.Now,
	}
}

func (s *chatService) EnsureThread(ctx context.Context, userID string, req dto.ThreadEnsureRequest) (dto.ThreadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ThreadResponse{}, err
	}

	otherID := strings.TrimSpace(req.OtherUserID)
	if otherID == userID {
		return dto.ThreadResponse{}, ErrSelfConversation
	}

	key := chatkey.Derive(req.ListingID, userID, otherID)
	one, two := chatkey.Pair(userID, otherID)

	thread, err := s.threads.ByKey(ctx, key)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		thread = models.Thread{
			ThreadKey:        key,
			ListingID:        strings.TrimSpace(req.ListingID),
			ParticipantOneID: one,
			ParticipantTwoID: two,
		}
		if err := s.threads.Create(ctx, &thread); err != nil {
			return dto.ThreadResponse{}, err
		}
	case err != nil:
		return dto.ThreadResponse{}, err
	default:
		// Repeated calls only refresh identity fields; no duplicate rows.
		if err := s.threads.PatchIdentity(ctx, thread.ID, strings.TrimSpace(req.ListingID), one, two); err != nil {
			return dto.ThreadResponse{}, err
		}
		thread, err = s.threads.ByKey(ctx, key)
		if err != nil {
			return dto.ThreadResponse{}, err
		}
	}

	unread, err := s.messages.CountUnread(ctx, key, userID)
	if err != nil {
		return dto.ThreadResponse{}, err
	}

	return dto.NewThreadResponse(thread, unread), nil
}

func (s *chatService) ThreadByKey(ctx context.Context, userID, threadKey string) (dto.ThreadResponse, error) {
	thread, err := s.authorisedThread(ctx, userID, threadKey)
	if err != nil {
		return dto.ThreadResponse{}, err
	}

	unread, err := s.messages.CountUnread(ctx, threadKey, userID)
	if err != nil {
		return dto.ThreadResponse{}, err
	}

	return dto.NewThreadResponse(thread, unread), nil
}

func (s *chatService) ThreadsForUser(ctx context.Context, userID string) ([]dto.ThreadResponse, error) {
	threads, err := s.threads.ListForUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ThreadResponse, 0, len(threads))
	for _, thread := range threads {
		unread, err := s.messages.CountUnread(ctx, thread.ThreadKey, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.NewThreadResponse(thread, unread))
	}
	return out, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID, threadKey string, req dto.MessageSendRequest) (dto.MessageResponse, error) {
	// Empty bodies are rejected before any store round trip.
	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Body))
	if clean == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.MessageResponse{}, err
	}

	thread, err := s.authorisedThread(ctx, userID, threadKey)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	receiverID := thread.OtherParticipant(userID)

	ctx, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(
		attribute.String("chat.thread_key", threadKey),
		attribute.String("chat.sender_id", userID),
	))
	defer span.End()

	message := models.Message{
		ThreadKey:  thread.ThreadKey,
		ListingID:  thread.ListingID,
		SenderID:   userID,
		ReceiverID: receiverID,
		Body:       clean,
		Status:     models.MessageStatusSent,
		IsRead:     false,
	}

	if err := s.messages.CreateAndStampThread(ctx, &message, thread.ID); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(message)
	s.cacheLastMessage(ctx, response)

	listingPresent := "no"
	if thread.ListingID != "" {
		listingPresent = "yes"
	}
	observability.ChatMessagesSent().WithLabelValues(listingPresent).Inc()

	return response, nil
}

func (s *chatService) Messages(ctx context.Context, userID, threadKey string) ([]dto.MessageResponse, error) {
	if _, err := s.authorisedThread(ctx, userID, threadKey); err != nil {
		return nil, err
	}

	messages, err := s.messages.ListByThread(ctx, threadKey, s.pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

// LastMessage serves the cached most-recent message for cheap polling.
// On a cache miss it falls back to the thread's denormalized summary.
func (s *chatService) LastMessage(ctx context.Context, userID, threadKey string) (dto.MessageResponse, error) {
	thread, err := s.authorisedThread(ctx, userID, threadKey)
	if err != nil {
		return dto.MessageResponse{}, err
	}

	if cached := s.fetchLastMessage(ctx, threadKey); cached != nil {
		return *cached, nil
	}

	response := dto.MessageResponse{
		ThreadKey: thread.ThreadKey,
		ListingID: thread.ListingID,
		SenderID:  thread.LastSenderID,
		Body:      thread.LastMessage,
	}
	if thread.LastMessageAt != nil {
		response.CreatedAt = *thread.LastMessageAt
	}
	return response, nil
}

func (s *chatService) SetTyping(ctx context.Context, userID, threadKey string, req dto.TypingUpdateRequest) (dto.TypingStatusResponse, error) {
	thread, err := s.authorisedThread(ctx, userID, threadKey)
	if err != nil {
		return dto.TypingStatusResponse{}, err
	}

	now := s.now().UTC()
	if req.IsTyping {
		// Last writer wins; simultaneous typers overwrite each other,
		// which is acceptable for an ephemeral indicator.
		if err := s.threads.SetTyping(ctx, thread.ThreadKey, userID, now); err != nil {
			return dto.TypingStatusResponse{}, err
		}
		observability.ChatTypingUpdates().WithLabelValues("set").Inc()
		return dto.TypingStatusResponse{IsTyping: true, TypingUserID: userID, TypingAt: &now}, nil
	}

	if err := s.threads.ClearTyping(ctx, thread.ThreadKey); err != nil {
		return dto.TypingStatusResponse{}, err
	}
	observability.ChatTypingUpdates().WithLabelValues("clear").Inc()
	return dto.TypingStatusResponse{IsTyping: false}, nil
}

func (s *chatService) TypingStatus(ctx context.Context, userID, threadKey string) (dto.TypingStatusResponse, error) {
	thread, err := s.authorisedThread(ctx, userID, threadKey)
	if err != nil {
		return dto.TypingStatusResponse{}, err
	}

	return dto.NewTypingStatusResponse(s.typingState(thread)), nil
}

// typingState applies the recency window. Stale flags read as inactive
// but stay in storage; cleanup is lazy.
func (s *chatService) typingState(thread models.Thread) models.TypingState {
	if thread.TypingUserID == "" || thread.TypingAt == nil {
		return models.TypingState{}
	}
	if s.now().Sub(*thread.TypingAt) > s.typingWindow {
		return models.TypingState{}
	}
	return models.TypingState{Active: true, UserID: thread.TypingUserID, At: thread.TypingAt}
}

func (s *chatService) MarkRead(ctx context.Context, userID, threadKey string) (dto.ReadReceiptResponse, error) {
	if _, err := s.authorisedThread(ctx, userID, threadKey); err != nil {
		return dto.ReadReceiptResponse{}, err
	}

	updated, err := s.messages.MarkRead(ctx, threadKey, userID)
	if err != nil {
		return dto.ReadReceiptResponse{}, err
	}
	if updated > 0 {
		observability.ChatReadReceipts().Add(float64(updated))
	}

	messages, err := s.messages.ListByThread(ctx, threadKey, s.pageSize)
	if err != nil {
		return dto.ReadReceiptResponse{}, err
	}

	return dto.ReadReceiptResponse{
		Updated:  updated,
		Messages: dto.NewMessageResponseSlice(messages),
	}, nil
}

func (s *chatService) MarkDelivered(ctx context.Context, userID, threadKey string) (int64, error) {
	if _, err := s.authorisedThread(ctx, userID, threadKey); err != nil {
		return 0, err
	}
	return s.messages.MarkDelivered(ctx, threadKey, userID)
}

// authorisedThread resolves the thread and checks the caller belongs to it.
func (s *chatService) authorisedThread(ctx context.Context, userID, threadKey string) (models.Thread, error) {
	threadKey = strings.TrimSpace(threadKey)
	if threadKey == "" {
		return models.Thread{}, ErrThreadNotFound
	}

	thread, err := s.threads.ByKey(ctx, threadKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Thread{}, ErrThreadNotFound
	}
	if err != nil {
		return models.Thread{}, err
	}

	if !thread.HasParticipant(userID) {
		return models.Thread{}, ErrThreadForbidden
	}
	return thread, nil
}

func (s *chatService) cacheLastMessage(ctx context.Context, message dto.MessageResponse) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal chat message for cache")
		return
	}

	key := fmt.Sprintf("%s:%s", s.cachePrefix, message.ThreadKey)
	if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache chat message")
	}
}

func (s *chatService) fetchLastMessage(ctx context.Context, threadKey string) *dto.MessageResponse {
	if s.redis == nil {
		return nil
	}

	key := fmt.Sprintf("%s:%s", s.cachePrefix, threadKey)
	result, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}

	var message dto.MessageResponse
	if err := json.Unmarshal([]byte(result), &message); err != nil {
		s.logger.Warn().Err(err).Msg("failed to unmarshal cached chat message")
		return nil
	}
	return &message
}
