package messaging

import (
	"context"
	"time"

	"github.com/ricabook/lovestayteste/models"
	"github.com/ricabook/lovestayteste/realtime"

	"gorm.io/gorm"
)

// Store is the persistence side of a conversation: ordered history reads and
// appends that return the authoritative inserted row.
type Store interface {
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	InsertMessage(ctx context.Context, conversationID, senderID uint, body string) (models.Message, error)
}

// GormStore persists messages and publishes every insert to the change feed,
// so subscribers on other connections (or other server instances, with the
// Redis feed) see it immediately.
type GormStore struct {
	db   *gorm.DB
	feed realtime.Feed
}

func NewGormStore(db *gorm.DB, feed realtime.Feed) *GormStore {
	return &GormStore{db: db, feed: feed}
}

func (s *GormStore) ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *GormStore) InsertMessage(ctx context.Context, conversationID, senderID uint, body string) (models.Message, error) {
	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return models.Message{}, err
	}

	s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", time.Now())

	if s.feed != nil {
		// best-effort: the row is durable, subscribers catch up on reload
		_ = s.feed.Publish(ctx, msg)
	}
	return msg, nil
}
