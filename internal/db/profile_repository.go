package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldhand/fieldhand/internal/models"
)

// Profile repository errors.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository handles user display-identity persistence.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates or replaces a profile row.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	now := time.Now().UTC()
	profile.UpdatedAt = now

	// UPDATE then INSERT, same shape as the message path: no reliance on
	// newer SQLite upsert syntax.
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET display_name = ?, avatar_url = ?, updated_at = ?
		WHERE user_id = ?
	`, profile.DisplayName, profile.AvatarURL, formatTimestamp(now), profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, avatar_url, updated_at)
		VALUES (?, ?, ?, ?)
	`, profile.UserID, profile.DisplayName, profile.AvatarURL, formatTimestamp(now))
	if err != nil {
		if isUniqueConstraintError(err) {
			// Race: row appeared after our UPDATE check; retry UPDATE.
			_, err2 := r.db.ExecContext(ctx, `
				UPDATE profiles
				SET display_name = ?, avatar_url = ?, updated_at = ?
				WHERE user_id = ?
			`, profile.DisplayName, profile.AvatarURL, formatTimestamp(now), profile.UserID)
			if err2 == nil {
				return nil
			}
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// Get fetches a profile by user ID.
// Returns ErrProfileNotFound if no row exists.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, avatar_url, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID)

	var profile models.Profile
	var updatedAt string
	err := row.Scan(&profile.UserID, &profile.DisplayName, &profile.AvatarURL, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	profile.UpdatedAt, err = parseTimestamp(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid profile timestamp: %w", err)
	}
	return &profile, nil
}
