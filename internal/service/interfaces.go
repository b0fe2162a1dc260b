// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/raseed-app/raseed/internal/model"
)

// RawRecord is one receipt document as it arrives from the store: an
// untyped key-value shape with potentially inconsistent field names.
// Only the normalize package interprets it.
type RawRecord map[string]any

// ReceiptSource provides raw receipt documents for analysis. The engine
// treats it as an external collaborator: it must tolerate empty results
// and include records whose timestamp could not be resolved.
type ReceiptSource interface {
	FetchReceipts(ctx context.Context, userID string, start, end time.Time) ([]RawRecord, error)
}

// ReceiptStore extends ReceiptSource with ingestion, used by the import
// command. Analysis code depends only on ReceiptSource.
type ReceiptStore interface {
	ReceiptSource
	SaveReceipts(ctx context.Context, userID string, records []RawRecord) error
}

// ProfileStore provides user profile settings and owns the persisted
// health score.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveProfile(ctx context.Context, profile *model.UserProfile) error
	// UpdateHealthScore persists a new score only when it differs from
	// the stored one by at least one point, and reports whether a write
	// happened.
	UpdateHealthScore(ctx context.Context, userID string, score int) (bool, error)
}

// InsightStore caches computed insight payloads per user and type.
type InsightStore interface {
	SaveInsight(ctx context.Context, userID, insightType string, payload []byte) error
	GetInsight(ctx context.Context, userID, insightType string) ([]byte, time.Time, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
