// Package storage provides the data persistence layer for the raseed
// application: raw receipt documents, user profiles and cached insight
// payloads, all backed by a single SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raseed-app/raseed/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidProfile   = errors.New("invalid profile")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateProfile validates a user profile before persistence.
func validateProfile(profile *model.UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if strings.TrimSpace(profile.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidProfile)
	}
	if profile.PriceSensitivity < 0 || profile.PriceSensitivity > 1 {
		return fmt.Errorf("%w: price sensitivity must be between 0 and 1", ErrInvalidProfile)
	}
	if profile.HealthScore < 0 || profile.HealthScore > 100 {
		return fmt.Errorf("%w: health score must be between 0 and 100", ErrInvalidProfile)
	}
	return nil
}
