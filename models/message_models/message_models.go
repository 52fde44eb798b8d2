package message_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

// Conversation pairs two users. The (user_a, user_b) pair is stored with the
// smaller UUID first so the same pair always maps to one row.
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	UserA         uuid.UUID `json:"user_a"`
	UserB         uuid.UUID `json:"user_b"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is one entry in a conversation; AttachmentKey/AttachmentURL point
// into object storage when the message carries a file.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	Content        string    `json:"content"`
	AttachmentKey  *string   `json:"attachment_key,omitempty"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

// GetOrCreateConversation returns the conversation between two users,
// creating it on first contact.
func GetOrCreateConversation(ctx context.Context, db *pgxpool.Pool, first, second uuid.UUID) (*Conversation, error) {
	userA, userB := orderPair(first, second)

	conv := &Conversation{}
	err := db.QueryRow(ctx, `
		SELECT id, user_a, user_b, last_message_at, created_at
		FROM conversations WHERE user_a = $1 AND user_b = $2`,
		userA, userB,
	).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.LastMessageAt, &conv.CreatedAt)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.ErrorLogger.Errorf("Failed to fetch conversation %s/%s: %v", userA, userB, err)
		return nil, apperrors.Internal("database error fetching conversation", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for conversation: %w", err)
	}
	now := time.Now().UTC()
	conv = &Conversation{ID: id, UserA: userA, UserB: userB, LastMessageAt: now, CreatedAt: now}

	// A concurrent first message can race the insert; fall back to the row
	// that won.
	_, err = db.Exec(ctx, `
		INSERT INTO conversations (id, user_a, user_b, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_a, user_b) DO NOTHING`,
		conv.ID, conv.UserA, conv.UserB, conv.LastMessageAt, conv.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert conversation %s/%s: %v", userA, userB, err)
		return nil, apperrors.Internal("failed to create conversation", err)
	}

	err = db.QueryRow(ctx, `
		SELECT id, user_a, user_b, last_message_at, created_at
		FROM conversations WHERE user_a = $1 AND user_b = $2`,
		userA, userB,
	).Scan(&conv.ID, &conv.UserA, &conv.UserB, &conv.LastMessageAt, &conv.CreatedAt)
	if err != nil {
		return nil, apperrors.Internal("failed to re-read conversation", err)
	}
	return conv, nil
}

// CreateMessage writes a message and bumps the conversation's last activity.
func CreateMessage(ctx context.Context, db *pgxpool.Pool, msg *Message) (*Message, error) {
	if msg.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID for message: %w", err)
		}
		msg.ID = id
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("[TX_BEGIN_FAIL] CreateMessage %s: %v", msg.ID, err)
		return nil, apperrors.Internal("failed to start transaction", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, attachment_key, attachment_url, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content,
		msg.AttachmentKey, msg.AttachmentURL, msg.IsRead, msg.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert message %s: %v", msg.ID, err)
		return nil, apperrors.Internal("failed to send message", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE conversations SET last_message_at = $2 WHERE id = $1`,
		msg.ConversationID, msg.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to bump conversation %s: %v", msg.ConversationID, err)
		return nil, apperrors.Internal("failed to update conversation", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.ErrorLogger.Errorf("[TX_COMMIT_FAIL] CreateMessage %s: %v", msg.ID, err)
		return nil, apperrors.Internal("failed to commit message", err)
	}
	return msg, nil
}

// ListMessages returns a conversation's messages, newest first.
func ListMessages(ctx context.Context, db *pgxpool.Pool, conversationID uuid.UUID, limit, offset int) ([]Message, error) {
	rows, err := db.Query(ctx, `
		SELECT id, conversation_id, sender_id, receiver_id, content, attachment_key, attachment_url, is_read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		conversationID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list messages for conversation %s: %v", conversationID, err)
		return nil, apperrors.Internal("failed to list messages", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Content,
			&m.AttachmentKey, &m.AttachmentURL, &m.IsRead, &m.CreatedAt)
		if err != nil {
			return nil, apperrors.Internal("failed to scan message", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkConversationRead flips is_read on every message addressed to the reader.
func MarkConversationRead(ctx context.Context, db *pgxpool.Pool, conversationID, readerID uuid.UUID) (int64, error) {
	cmdTag, err := db.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND receiver_id = $2 AND NOT is_read`,
		conversationID, readerID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark conversation %s read: %v", conversationID, err)
		return 0, apperrors.Internal("failed to mark messages read", err)
	}
	return cmdTag.RowsAffected(), nil
}

// CountUnread returns the number of unread messages addressed to a user.
func CountUnread(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`, userID).Scan(&count)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to count unread messages for %s: %v", userID, err)
		return 0, apperrors.Internal("database error counting unread", err)
	}
	return count, nil
}

// ListConversations returns a user's conversations by recency.
func ListConversations(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, limit, offset int) ([]Conversation, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_a, user_b, last_message_at, created_at
		FROM conversations
		WHERE user_a = $1 OR user_b = $1
		ORDER BY last_message_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list conversations for %s: %v", userID, err)
		return nil, apperrors.Internal("failed to list conversations", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserA, &c.UserB, &c.LastMessageAt, &c.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan conversation", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}
