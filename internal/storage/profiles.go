package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/raseed-app/raseed/internal/common"
	"github.com/raseed-app/raseed/internal/model"
)

// GetProfile returns a user's profile, or common.ErrNotFound.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, budget_monthly, savings_pct, price_sensitivity, health_score, updated_at
		FROM profiles WHERE user_id = ?
	`, userID).Scan(
		&profile.UserID,
		&profile.BudgetMonthly,
		&profile.SavingsPct,
		&profile.PriceSensitivity,
		&profile.HealthScore,
		&profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile upserts a user profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, budget_monthly, savings_pct, price_sensitivity, health_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			budget_monthly = excluded.budget_monthly,
			savings_pct = excluded.savings_pct,
			price_sensitivity = excluded.price_sensitivity,
			health_score = excluded.health_score,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.BudgetMonthly, profile.SavingsPct, profile.PriceSensitivity, profile.HealthScore, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

// UpdateHealthScore persists a new health score only when it differs
// from the stored one by at least one point, and reports whether a
// write happened. A missing profile row is created on first write.
func (s *SQLiteStorage) UpdateHealthScore(ctx context.Context, userID string, score int) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return false, err
	}
	if score < 0 || score > 100 {
		return false, fmt.Errorf("%w: health score must be between 0 and 100", ErrInvalidProfile)
	}

	profile, err := s.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		profile = &model.UserProfile{UserID: userID, PriceSensitivity: 0.5}
	case err != nil:
		return false, err
	default:
		delta := profile.HealthScore - score
		if delta < 0 {
			delta = -delta
		}
		if delta < 1 {
			return false, nil
		}
	}

	profile.HealthScore = score
	if err := s.SaveProfile(ctx, profile); err != nil {
		return false, err
	}

	return true, nil
}
