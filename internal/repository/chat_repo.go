package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/matcha-app/matcha-core/internal/db"
)

// ChatRepository stores the append-only message log between connected pairs.
// Authorization (connection + block gates) lives in the chat service; this
// layer only reads and appends.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// ListBetween returns every message exchanged between the unordered pair,
// ascending by send time.
func (r *ChatRepository) ListBetween(ctx context.Context, userA, userB uint64) ([]db.ChatMessage, error) {
	var messages []db.ChatMessage
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// Append persists one message. The body is stored verbatim.
func (r *ChatRepository) Append(ctx context.Context, msg *db.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}
