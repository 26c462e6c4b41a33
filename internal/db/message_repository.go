package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhand/fieldhand/internal/models"
)

// MessageRepository handles message persistence. Timestamps are assigned
// here, never by callers: within a conversation they are strictly
// monotonic so (created_at, id) is a total order.
type MessageRepository struct {
	db  *DB
	now func() time.Time
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Insert creates a message in a conversation and returns the stored row.
// Returns ErrConversationNotFound if the conversation does not exist.
func (r *MessageRepository) Insert(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	message := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := message.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	err := r.db.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check conversation: %w", err)
		}
		if exists == 0 {
			return ErrConversationNotFound
		}

		createdAt := r.now()

		// Clamp forward past the newest row so timestamps stay strictly
		// monotonic per conversation even when the clock stands still.
		var last string
		err = tx.QueryRowContext(ctx, `
			SELECT created_at FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		`, conversationID).Scan(&last)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read latest message: %w", err)
		}
		if last != "" {
			lastAt, perr := parseTimestamp(last)
			if perr != nil {
				return fmt.Errorf("invalid message timestamp: %w", perr)
			}
			if !createdAt.After(lastAt) {
				createdAt = lastAt.Add(time.Microsecond)
			}
		}
		message.CreatedAt = createdAt

		_, err = tx.ExecContext(ctx, `
			INSERT INTO messages (id, conversation_id, sender_id, content, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, message.ID, message.ConversationID, message.SenderID, message.Content,
			formatTimestamp(message.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// Page fetches one page of a conversation's history, newest first,
// skipping offset rows. A short page means no older messages remain.
func (r *MessageRepository) Page(ctx context.Context, conversationID string, offset, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("page limit must be positive")
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, conversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("invalid message timestamp: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}
