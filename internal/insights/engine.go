package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raseed-app/raseed/internal/advisory"
	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/common"
	"github.com/raseed-app/raseed/internal/model"
	"github.com/raseed-app/raseed/internal/normalize"
	"github.com/raseed-app/raseed/internal/service"
)

// Default lookback windows per detector, in days.
const (
	DefaultRecurrenceDays = 180
	DefaultRedundancyDays = 120
	DefaultImpulseDays    = 60
	DefaultWasteDays      = 90
	DefaultNeedWantDays   = 180
	DefaultHealthDays     = 180
)

// Engine runs the detectors against a receipt source. It holds no
// per-user state; every analysis call is a pure function of the fetched
// receipt set and the profile, so concurrent calls are independent.
type Engine struct {
	source   service.ReceiptSource
	profiles service.ProfileStore
	advisor  advisory.Generator
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine builds an engine. The advisor may be nil, in which case
// advisory text degrades to static fallbacks.
func NewEngine(source service.ReceiptSource, profiles service.ProfileStore, advisor advisory.Generator, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		profiles: profiles,
		advisor:  advisor,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetch retrieves and normalizes one lookback window of receipts.
func (e *Engine) fetch(ctx context.Context, userID string, days int) ([]model.Receipt, aggregate.Window, error) {
	w := aggregate.NewWindow(e.now(), days)

	records, err := e.source.FetchReceipts(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, w, fmt.Errorf("failed to fetch receipts for %s: %w", userID, err)
	}

	receipts, stats := normalize.Batch(records)
	common.LogDebug("receipts normalized", common.Fields{
		"user_id":        userID,
		"lookback_days":  days,
		"total":          stats.Total,
		"usable":         stats.Usable,
		"missing_time":   stats.MissingTime,
		"missing_vendor": stats.MissingVendor,
		"problems":       stats.Problems,
	})

	return receipts, w, nil
}

// advise requests advisory text, returning the static fallbacks when the
// generator is absent or fails. Advisory failure is never an error.
func (e *Engine) advise(ctx context.Context, prompt string, contextData any, fallback []string) []string {
	if e.advisor == nil {
		return fallback
	}
	text, err := e.advisor.Generate(ctx, prompt, contextData)
	if err != nil {
		common.LogDebug("advisory generation failed, using fallback", common.Fields{
			"error": err.Error(),
		})
		return fallback
	}
	return []string{text}
}

func lookback(days, def int) int {
	if days <= 0 {
		return def
	}
	return days
}

// AnalyzeRecurrence runs the recurrence detector.
func (e *Engine) AnalyzeRecurrence(ctx context.Context, userID string, lookbackDays int) (*RecurrencePayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultRecurrenceDays))
	if err != nil {
		return nil, err
	}
	return analyzeRecurrence(userID, receipts, w), nil
}

// AnalyzeRedundancy runs the redundancy detector.
func (e *Engine) AnalyzeRedundancy(ctx context.Context, userID string, lookbackDays int) (*RedundancyPayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultRedundancyDays))
	if err != nil {
		return nil, err
	}
	return analyzeRedundancy(userID, receipts, w, e.now()), nil
}

// AnalyzeImpulse runs the impulse detector.
func (e *Engine) AnalyzeImpulse(ctx context.Context, userID string, lookbackDays int) (*ImpulsePayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultImpulseDays))
	if err != nil {
		return nil, err
	}
	return analyzeImpulse(userID, receipts, w), nil
}

// AnalyzeWaste runs the waste-risk estimator.
func (e *Engine) AnalyzeWaste(ctx context.Context, userID string, lookbackDays int) (*WastePayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultWasteDays))
	if err != nil {
		return nil, err
	}
	return analyzeWaste(userID, receipts, w, e.now()), nil
}

// AnalyzeNeedWant runs the need-vs-want analyzer. When an advisor is
// configured, one generated insight is appended to the static ones.
func (e *Engine) AnalyzeNeedWant(ctx context.Context, userID string, lookbackDays int) (*NeedWantPayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultNeedWantDays))
	if err != nil {
		return nil, err
	}
	payload := analyzeNeedWant(userID, receipts, w)

	if e.advisor != nil && payload.EssentialSpending+payload.DiscretionarySpending > 0 {
		generated := e.advise(ctx,
			"Analyze spending patterns and provide actionable advice:",
			payload.Summary, nil)
		payload.Insights = append(payload.Insights, generated...)
	}

	return payload, nil
}

// AnalyzeHealth computes the composite health score. A missing profile
// is not an error: defaults apply (no budget, neutral price
// sensitivity). The stored score is not written here; callers persist
// it through the profile store when they want the hysteresis-gated
// update.
func (e *Engine) AnalyzeHealth(ctx context.Context, userID string, lookbackDays int) (*HealthPayload, error) {
	receipts, w, err := e.fetch(ctx, userID, lookback(lookbackDays, DefaultHealthDays))
	if err != nil {
		return nil, err
	}

	profile := model.UserProfile{UserID: userID, PriceSensitivity: 0.5}
	if e.profiles != nil {
		stored, err := e.profiles.GetProfile(ctx, userID)
		switch {
		case err == nil:
			profile = *stored
		case errors.Is(err, common.ErrNotFound):
			common.LogDebug("no profile found, scoring with defaults", common.Fields{
				"user_id": userID,
			})
		default:
			return nil, fmt.Errorf("failed to load profile for %s: %w", userID, err)
		}
	}

	payload := analyzeHealth(userID, receipts, profile, w)

	prompt := fmt.Sprintf("Generate 2-3 specific financial tips for a user with health score %d/100 (%s). Provide actionable, specific recommendations as bullet points.",
		payload.Score, payload.Category)
	payload.Suggestions = e.advise(ctx, prompt, payload.Breakdown, fallbackSuggestions)

	return payload, nil
}

// Analyze dispatches one detector by its payload type name.
func (e *Engine) Analyze(ctx context.Context, userID, detector string, lookbackDays int) (any, error) {
	switch detector {
	case TypeRecurrence:
		return e.AnalyzeRecurrence(ctx, userID, lookbackDays)
	case TypeRedundancy:
		return e.AnalyzeRedundancy(ctx, userID, lookbackDays)
	case TypeImpulse:
		return e.AnalyzeImpulse(ctx, userID, lookbackDays)
	case TypeWaste:
		return e.AnalyzeWaste(ctx, userID, lookbackDays)
	case TypeNeedWant:
		return e.AnalyzeNeedWant(ctx, userID, lookbackDays)
	case TypeHealthScore:
		return e.AnalyzeHealth(ctx, userID, lookbackDays)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownDetector, detector)
	}
}

// Detectors lists the payload type names Analyze accepts, in report order.
func Detectors() []string {
	return []string{TypeRecurrence, TypeRedundancy, TypeImpulse, TypeWaste, TypeNeedWant, TypeHealthScore}
}

// AnalyzeAll runs every detector and collects results under their type
// names. A failing or panicking detector contributes an error entry
// while its siblings still complete; AnalyzeAll itself never fails.
func (e *Engine) AnalyzeAll(ctx context.Context, userID string) map[string]any {
	results := make(map[string]any, 6)
	for _, detector := range Detectors() {
		results[detector] = e.runIsolated(ctx, userID, detector)
	}
	return results
}

// runIsolated runs one detector, converting both errors and panics into
// an {"error": message} entry.
func (e *Engine) runIsolated(ctx context.Context, userID, detector string) (result any) {
	defer func() {
		if r := recover(); r != nil {
			common.LogError(fmt.Errorf("panic: %v", r), "detector panicked", common.Fields{
				"user_id":  userID,
				"detector": detector,
			})
			result = map[string]string{"error": fmt.Sprintf("internal error: %v", r)}
		}
	}()

	payload, err := e.Analyze(ctx, userID, detector, 0)
	if err != nil {
		common.LogError(err, "detector failed", common.Fields{
			"user_id":  userID,
			"detector": detector,
		})
		return map[string]string{"error": err.Error()}
	}
	return payload
}
