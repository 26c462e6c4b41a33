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

// Conversation repository errors.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository handles conversation persistence. A pair of
// users has at most one conversation; creation is get-or-create.
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetOrCreate returns the conversation between two users, creating it if
// none exists. The second return value reports whether a row was created.
func (r *ConversationRepository) GetOrCreate(ctx context.Context, userA, userB string) (*models.Conversation, bool, error) {
	first, second := models.ParticipantPair(userA, userB)

	conv := &models.Conversation{
		ID:           uuid.New().String(),
		ParticipantA: first,
		ParticipantB: second,
		CreatedAt:    time.Now().UTC(),
	}
	if err := conv.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid conversation: %w", err)
	}

	if existing, err := r.getByPair(ctx, first, second); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrConversationNotFound) {
		return nil, false, err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, created_at)
		VALUES (?, ?, ?, ?)
	`, conv.ID, conv.ParticipantA, conv.ParticipantB, formatTimestamp(conv.CreatedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			// Race: the pair was inserted after our existence check.
			existing, err2 := r.getByPair(ctx, first, second)
			if err2 == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to insert conversation: %w", err)
	}

	return conv, true, nil
}

// Get fetches a conversation by ID.
// Returns ErrConversationNotFound if no row exists.
func (r *ConversationRepository) Get(ctx context.Context, id string) (*models.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations
		WHERE id = ?
	`, id)
	return scanConversation(row)
}

func (r *ConversationRepository) getByPair(ctx context.Context, first, second string) (*models.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations
		WHERE participant_a = ? AND participant_b = ?
	`, first, second)
	return scanConversation(row)
}

// Delete removes a conversation and, via cascade, its messages.
// Returns ErrConversationNotFound if no row exists.
func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// ListForViewer returns conversation summaries for a viewer, most recent
// activity first. The counterpart's current profile and the latest
// message preview are resolved in the query.
func (r *ConversationRepository) ListForViewer(ctx context.Context, viewerID string) ([]models.ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			c.id,
			CASE WHEN c.participant_a = ? THEN c.participant_b ELSE c.participant_a END AS counterpart_id,
			COALESCE(p.display_name, ''),
			COALESCE(p.avatar_url, ''),
			COALESCE(m.content, ''),
			COALESCE(m.created_at, ''),
			c.created_at
		FROM conversations c
		LEFT JOIN profiles p
			ON p.user_id = CASE WHEN c.participant_a = ? THEN c.participant_b ELSE c.participant_a END
		LEFT JOIN messages m ON m.id = (
			SELECT id FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		WHERE c.participant_a = ? OR c.participant_b = ?
		ORDER BY COALESCE(m.created_at, c.created_at) DESC
	`, viewerID, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []models.ConversationSummary
	for rows.Next() {
		var s models.ConversationSummary
		var lastMessageAt, createdAt string
		if err := rows.Scan(
			&s.ConversationID,
			&s.CounterpartID,
			&s.CounterpartName,
			&s.CounterpartAvatar,
			&s.LastMessage,
			&lastMessageAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}

		if lastMessageAt != "" {
			if s.LastMessageAt, err = parseTimestamp(lastMessageAt); err != nil {
				return nil, fmt.Errorf("invalid message timestamp: %w", err)
			}
		}
		if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("invalid conversation timestamp: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return summaries, nil
}

func scanConversation(row *sql.Row) (*models.Conversation, error) {
	var conv models.Conversation
	var createdAt string
	err := row.Scan(&conv.ID, &conv.ParticipantA, &conv.ParticipantB, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	conv.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation timestamp: %w", err)
	}
	return &conv, nil
}
