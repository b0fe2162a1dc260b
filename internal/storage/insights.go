package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/raseed-app/raseed/internal/common"
)

// SaveInsight caches a computed insight payload for a user and type,
// replacing any previous one.
func (s *SQLiteStorage) SaveInsight(ctx context.Context, userID, insightType string, payload []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(insightType, "insightType"); err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload", ErrEmptySlice)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO insights (user_id, insight_type, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, insight_type) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, userID, insightType, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}

	return nil
}

// GetInsight returns the cached payload and its update time, or
// common.ErrNotFound when nothing is cached.
func (s *SQLiteStorage) GetInsight(ctx context.Context, userID, insightType string) ([]byte, time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, time.Time{}, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, time.Time{}, err
	}
	if err := validateString(insightType, "insightType"); err != nil {
		return nil, time.Time{}, err
	}

	var payload string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, updated_at FROM insights
		WHERE user_id = ? AND insight_type = ?
	`, userID, insightType).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("insight %s/%s: %w", userID, insightType, common.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get insight: %w", err)
	}

	return []byte(payload), updatedAt, nil
}
