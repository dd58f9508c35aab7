package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

func TestThreadRepositoryCreateAndByKey(t *testing.T) {
	db := setupTestDB(t, &models.Thread{})
	repo := NewThreadRepository(db)
	ctx := context.Background()

	thread := models.Thread{
		ThreadKey:        "p1::u1::u2",
		ListingID:        "p1",
		ParticipantOneID: "u1",
		ParticipantTwoID: "u2",
	}
	require.NoError(t, repo.Create(ctx, &thread))
	require.NotZero(t, thread.ID)

	found, err := repo.ByKey(ctx, "p1::u1::u2")
	require.NoError(t, err)
	require.Equal(t, thread.ID, found.ID)
	require.Equal(t, "u1", found.ParticipantOneID)
	require.Equal(t, "u2", found.ParticipantTwoID)

	_, err = repo.ByKey(ctx, "p1::u1::u3")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestThreadRepositoryPatchIdentityIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Thread{})
	repo := NewThreadRepository(db)
	ctx := context.Background()

	thread := models.Thread{ThreadKey: "post::u1::u2"}
	require.NoError(t, repo.Create(ctx, &thread))

	require.NoError(t, repo.PatchIdentity(ctx, thread.ID, "p9", "u1", "u2"))
	require.NoError(t, repo.PatchIdentity(ctx, thread.ID, "p9", "u1", "u2"))

	found, err := repo.ByKey(ctx, "post::u1::u2")
	require.NoError(t, err)
	require.Equal(t, "p9", found.ListingID)
	require.Equal(t, "u1", found.ParticipantOneID)
	require.Equal(t, "u2", found.ParticipantTwoID)

	var count int64
	require.NoError(t, db.Model(&models.Thread{}).Where("thread_key = ?", "post::u1::u2").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestThreadRepositoryListForUserOrdersByActivity(t *testing.T) {
	db := setupTestDB(t, &models.Thread{})
	repo := NewThreadRepository(db)
	ctx := context.Background()

	older := time.Now().Add(-2 * time.Hour).UTC()
	newer := time.Now().Add(-time.Minute).UTC()

	quiet := models.Thread{ThreadKey: "p1::u1::u2", ParticipantOneID: "u1", ParticipantTwoID: "u2", LastMessageAt: &older}
	busy := models.Thread{ThreadKey: "p2::u1::u3", ParticipantOneID: "u1", ParticipantTwoID: "u3", LastMessageAt: &newer}
	other := models.Thread{ThreadKey: "p3::u4::u5", ParticipantOneID: "u4", ParticipantTwoID: "u5", LastMessageAt: &newer}
	require.NoError(t, repo.Create(ctx, &quiet))
	require.NoError(t, repo.Create(ctx, &busy))
	require.NoError(t, repo.Create(ctx, &other))

	threads, err := repo.ListForUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	require.Equal(t, "p2::u1::u3", threads[0].ThreadKey)
	require.Equal(t, "p1::u1::u2", threads[1].ThreadKey)
}

func TestThreadRepositoryTypingFlag(t *testing.T) {
	db := setupTestDB(t, &models.Thread{})
	repo := NewThreadRepository(db)
	ctx := context.Background()

	thread := models.Thread{ThreadKey: "p1::u1::u2", ParticipantOneID: "u1", ParticipantTwoID: "u2"}
	require.NoError(t, repo.Create(ctx, &thread))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.SetTyping(ctx, thread.ThreadKey, "u1", at))

	found, err := repo.ByKey(ctx, thread.ThreadKey)
	require.NoError(t, err)
	require.Equal(t, "u1", found.TypingUserID)
	require.NotNil(t, found.TypingAt)

	require.NoError(t, repo.ClearTyping(ctx, thread.ThreadKey))

	found, err = repo.ByKey(ctx, thread.ThreadKey)
	require.NoError(t, err)
	require.Empty(t, found.TypingUserID)
	require.Nil(t, found.TypingAt)
}

func TestMessageRepositorySendStampsThread(t *testing.T) {
	db := setupTestDB(t, &models.Thread{}, &models.Message{})
	threads := NewThreadRepository(db)
	messages := NewMessageRepository(db)
	ctx := context.Background()

	thread := models.Thread{ThreadKey: "p1::u1::u2", ParticipantOneID: "u1", ParticipantTwoID: "u2"}
	require.NoError(t, threads.Create(ctx, &thread))

	message := models.Message{
		ThreadKey:  thread.ThreadKey,
		SenderID:   "u1",
		ReceiverID: "u2",
		Body:       "hello there",
		Status:     models.MessageStatusSent,
	}
	require.NoError(t, messages.CreateAndStampThread(ctx, &message, thread.ID))
	require.NotZero(t, message.ID)

	stamped, err := threads.ByKey(ctx, thread.ThreadKey)
	require.NoError(t, err)
	require.Equal(t, "hello there", stamped.LastMessage)
	require.Equal(t, "u1", stamped.LastSenderID)
	require.NotNil(t, stamped.LastMessageAt)
}

func TestMessageRepositoryListOrdersAscending(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC()
	for i := 0; i < 3; i++ {
		msg := models.Message{
			ThreadKey:  "p1::u1::u2",
			SenderID:   "u1",
			ReceiverID: "u2",
			Body:       fmt.Sprintf("message %d", i),
			Status:     models.MessageStatusSent,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	listed, err := repo.ListByThread(ctx, "p1::u1::u2", 0)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "message 0", listed[0].Body)
	require.Equal(t, "message 2", listed[2].Body)
}

func TestMessageRepositoryMarkReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		msg := models.Message{
			ThreadKey:  "p1::u1::u2",
			SenderID:   "u1",
			ReceiverID: "u2",
			Body:       fmt.Sprintf("unread %d", i),
			Status:     models.MessageStatusSent,
		}
		require.NoError(t, db.Create(&msg).Error)
	}
	outbound := models.Message{
		ThreadKey:  "p1::u1::u2",
		SenderID:   "u2",
		ReceiverID: "u1",
		Body:       "from the other side",
		Status:     models.MessageStatusSent,
	}
	require.NoError(t, db.Create(&outbound).Error)

	updated, err := repo.MarkRead(ctx, "p1::u1::u2", "u2")
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)

	// Second receipt matches nothing.
	updated, err = repo.MarkRead(ctx, "p1::u1::u2", "u2")
	require.NoError(t, err)
	require.Zero(t, updated)

	unread, err := repo.CountUnread(ctx, "p1::u1::u2", "u2")
	require.NoError(t, err)
	require.Zero(t, unread)

	// The sender's own outbound message is untouched.
	unread, err = repo.CountUnread(ctx, "p1::u1::u2", "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}

func TestMessageRepositoryMarkDeliveredKeepsReadMessages(t *testing.T) {
	db := setupTestDB(t, &models.Message{})
	repo := NewMessageRepository(db)
	ctx := context.Background()

	sent := models.Message{ThreadKey: "k", SenderID: "u1", ReceiverID: "u2", Body: "a", Status: models.MessageStatusSent}
	read := models.Message{ThreadKey: "k", SenderID: "u1", ReceiverID: "u2", Body: "b", Status: models.MessageStatusRead, IsRead: true}
	require.NoError(t, db.Create(&sent).Error)
	require.NoError(t, db.Create(&read).Error)

	updated, err := repo.MarkDelivered(ctx, "k", "u2")
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	var stored models.Message
	require.NoError(t, db.First(&stored, read.ID).Error)
	require.Equal(t, models.MessageStatusRead, stored.Status)

	stored = models.Message{}
	require.NoError(t, db.First(&stored, sent.ID).Error)
	require.Equal(t, models.MessageStatusDelivered, stored.Status)
}
