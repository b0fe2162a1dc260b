package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

func monthlySpend(category string, amount float64, months int, now time.Time) []model.Receipt {
	receipts := make([]model.Receipt, 0, months)
	for i := 1; i <= months; i++ {
		receipts = append(receipts, model.Receipt{
			Category:    category,
			Vendor:      "Vendor " + category,
			TotalAmount: amount,
			Timestamp:   now.AddDate(0, -i, 0),
		})
	}
	return receipts
}

func TestScoreBreakdown_BudgetAdherence(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	tests := []struct {
		name       string
		budget     float64
		avgMonthly float64
		wantScore  int
	}{
		{name: "no budget scores the midpoint", budget: 0, avgMonthly: 500, wantScore: 10},
		{name: "under budget scores full", budget: 1000, avgMonthly: 800, wantScore: 20},
		{name: "twenty percent over", budget: 1000, avgMonthly: 1200, wantScore: 16},
		{name: "double the budget scores zero", budget: 1000, avgMonthly: 2000, wantScore: 0},
		{name: "overrun capped at one hundred percent", budget: 1000, avgMonthly: 5000, wantScore: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipts := monthlySpend("grocery", tt.avgMonthly, 4, now)
			patterns := collectPatterns(receipts, w)
			profile := model.UserProfile{UserID: "user001", BudgetMonthly: tt.budget}
			assert.Equal(t, tt.wantScore, scoreBreakdown(patterns, profile).BudgetAdherence)
		})
	}
}

func TestScoreBreakdown_CeilingsAndSum(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	profiles := []model.UserProfile{
		{UserID: "a"},
		{UserID: "b", SavingsPct: 50, BudgetMonthly: 100, PriceSensitivity: 1},
		{UserID: "c", SavingsPct: 12, BudgetMonthly: 2000, PriceSensitivity: 0.3},
	}
	receiptSets := [][]model.Receipt{
		nil,
		monthlySpend("grocery", 900, 4, now),
		append(monthlySpend("grocery", 500, 4, now), monthlySpend("entertainment", 480, 4, now)...),
	}

	for _, profile := range profiles {
		for _, receipts := range receiptSets {
			patterns := collectPatterns(receipts, w)
			b := scoreBreakdown(patterns, profile)

			assert.GreaterOrEqual(t, b.Savings, 0)
			assert.LessOrEqual(t, b.Savings, weightSavings)
			assert.GreaterOrEqual(t, b.Essentials, 0)
			assert.LessOrEqual(t, b.Essentials, weightEssentials)
			assert.GreaterOrEqual(t, b.PriceSensitivity, 0)
			assert.LessOrEqual(t, b.PriceSensitivity, weightPriceSensitivity)
			assert.GreaterOrEqual(t, b.BudgetAdherence, 0)
			assert.LessOrEqual(t, b.BudgetAdherence, weightBudgetAdherence)
			assert.GreaterOrEqual(t, b.CategoryBalance, 0)
			assert.LessOrEqual(t, b.CategoryBalance, weightCategoryBalance)

			payload := analyzeHealth("user001", receipts, profile, w)
			sum := b.Savings + b.Essentials + b.PriceSensitivity + b.BudgetAdherence + b.CategoryBalance
			assert.Equal(t, sum, payload.Score, "total must be the exact sum of sub-scores")
		}
	}
}

func TestScoreBreakdown_Defaults(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	t.Run("no tracked spend uses neutral essential ratio", func(t *testing.T) {
		b := scoreBreakdown(collectPatterns(nil, w), model.UserProfile{UserID: "u"})
		assert.Equal(t, 10, b.Essentials) // round(0.5 * 20)
	})

	t.Run("single category uses midpoint balance", func(t *testing.T) {
		receipts := monthlySpend("grocery", 100, 3, now)
		b := scoreBreakdown(collectPatterns(receipts, w), model.UserProfile{UserID: "u"})
		assert.Equal(t, 8, b.CategoryBalance) // round(0.5 * 15)
	})

	t.Run("savings clamped to ceiling", func(t *testing.T) {
		b := scoreBreakdown(collectPatterns(nil, w), model.UserProfile{UserID: "u", SavingsPct: 95})
		assert.Equal(t, weightSavings, b.Savings)
	})

	t.Run("negative savings clamped to zero", func(t *testing.T) {
		b := scoreBreakdown(collectPatterns(nil, w), model.UserProfile{UserID: "u", SavingsPct: -10})
		assert.Zero(t, b.Savings)
	})

	t.Run("price sensitivity inverts", func(t *testing.T) {
		low := scoreBreakdown(collectPatterns(nil, w), model.UserProfile{UserID: "u", PriceSensitivity: 0})
		high := scoreBreakdown(collectPatterns(nil, w), model.UserProfile{UserID: "u", PriceSensitivity: 1})
		assert.Equal(t, weightPriceSensitivity, low.PriceSensitivity)
		assert.Zero(t, high.PriceSensitivity)
	})
}

func TestScoreCategory_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 85, want: "Excellent"},
		{score: 80, want: "Excellent"},
		{score: 75, want: "Good"},
		{score: 65, want: "Fair"},
		{score: 50, want: "Poor"},
		{score: 39, want: "Critical"},
		{score: 0, want: "Critical"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, scoreCategory(tt.score), "score %d", tt.score)
	}
}

func TestAnalyzeHealth_Payload(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	receipts := monthlySpend("grocery", 500, 4, now)
	receipts[0].Overspent = true
	profile := model.UserProfile{UserID: "user001", BudgetMonthly: 1000, SavingsPct: 15, PriceSensitivity: 0.5}

	payload := analyzeHealth("user001", receipts, profile, w)

	assert.Equal(t, TypeHealthScore, payload.Type)
	assert.Equal(t, "user001", payload.UserID)
	assert.Equal(t, payload.Score, payload.FHSScore)
	assert.InDelta(t, 2000.0, payload.TotalSpending, 0.001)
	assert.InDelta(t, 100.0, payload.EssentialRatio, 0.1)
	assert.InDelta(t, 500.0, payload.AvgTransaction, 0.001)
	assert.NotEmpty(t, payload.HealthIndicators)
	assert.Contains(t, payload.InsightSummary, "Financial Health Score")

	// 1 of 4 receipts overspent: 25% sits in the warning band.
	var overspendIndicator HealthIndicator
	for _, indicator := range payload.HealthIndicators {
		if indicator.Message == "⚠️ Moderate overspending frequency" {
			overspendIndicator = indicator
		}
	}
	require.Equal(t, "warning", overspendIndicator.Status)
}

func TestAnalyzeHealth_Idempotent(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	receipts := append(monthlySpend("grocery", 500, 4, now), monthlySpend("dining", 200, 4, now)...)
	profile := model.UserProfile{UserID: "user001", BudgetMonthly: 1000, SavingsPct: 20, PriceSensitivity: 0.4}

	first := analyzeHealth("user001", receipts, profile, w)
	second := analyzeHealth("user001", receipts, profile, w)
	assert.Equal(t, first, second)
}
