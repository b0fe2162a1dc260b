package insights

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// monthlyCharges builds n receipts for a vendor, intervalDays apart,
// ending just before now.
func monthlyCharges(vendor string, amount float64, n, intervalDays int, now time.Time) []model.Receipt {
	receipts := make([]model.Receipt, 0, n)
	for i := 0; i < n; i++ {
		receipts = append(receipts, model.Receipt{
			Vendor:      vendor,
			Category:    "entertainment",
			TotalAmount: amount,
			Timestamp:   now.AddDate(0, 0, -intervalDays*(n-i)),
		})
	}
	return receipts
}

func TestClassifyCadence(t *testing.T) {
	tests := []struct {
		name           string
		varianceCoeff  float64
		avgInterval    float64
		intervalStdev  float64
		count          int
		wantFrequency  Frequency
		wantConfidence Confidence
		wantMatch      bool
	}{
		{
			name:          "steady monthly",
			varianceCoeff: 0.0, avgInterval: 30, intervalStdev: 1, count: 4,
			wantFrequency: FrequencyMonthly, wantConfidence: ConfidenceHigh, wantMatch: true,
		},
		{
			name:          "steady weekly",
			varianceCoeff: 0.05, avgInterval: 7, intervalStdev: 0.5, count: 8,
			wantFrequency: FrequencyWeekly, wantConfidence: ConfidenceHigh, wantMatch: true,
		},
		{
			name:          "bi-weekly",
			varianceCoeff: 0.1, avgInterval: 14, intervalStdev: 2, count: 6,
			wantFrequency: FrequencyBiWeekly, wantConfidence: ConfidenceMedium, wantMatch: true,
		},
		{
			name:          "quarterly",
			varianceCoeff: 0.1, avgInterval: 90, intervalStdev: 4, count: 3,
			wantFrequency: FrequencyQuarterly, wantConfidence: ConfidenceMedium, wantMatch: true,
		},
		{
			name:          "low variance but odd interval",
			varianceCoeff: 0.1, avgInterval: 50, intervalStdev: 1, count: 5,
			wantMatch: false,
		},
		{
			name:          "loose monthly via second rule",
			varianceCoeff: 0.25, avgInterval: 33, intervalStdev: 6, count: 4,
			wantFrequency: FrequencyMonthly, wantConfidence: ConfidenceMedium, wantMatch: true,
		},
		{
			name:          "loose rule needs three purchases",
			varianceCoeff: 0.25, avgInterval: 33, intervalStdev: 6, count: 2,
			wantMatch: false,
		},
		{
			name:          "too much variance",
			varianceCoeff: 0.5, avgInterval: 30, intervalStdev: 2, count: 6,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frequency, confidence, ok := classifyCadence(tt.varianceCoeff, tt.avgInterval, tt.intervalStdev, tt.count)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				assert.Equal(t, tt.wantFrequency, frequency)
				assert.Equal(t, tt.wantConfidence, confidence)
			}
		})
	}
}

func TestDetectSubscriptions_NetflixMonthly(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)
	receipts := monthlyCharges("Netflix", 15.99, 4, 30, now)

	candidates := detectSubscriptions(aggregate.BuildVendorSeries(receipts, w))
	require.Len(t, candidates, 1)

	candidate := candidates[0]
	assert.Equal(t, "netflix", candidate.Vendor)
	assert.Equal(t, FrequencyMonthly, candidate.Frequency)
	assert.Equal(t, ConfidenceHigh, candidate.Confidence)
	assert.Equal(t, 4, candidate.PurchaseCount)
	assert.InDelta(t, 15.99, candidate.AvgAmount, 0.001)
	assert.InDelta(t, 15.99*(365.0/30.0), candidate.AnnualCost, 0.5)
}

func TestDetectSubscriptions_OrderIndependent(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)
	receipts := monthlyCharges("Spotify", 9.99, 5, 30, now)

	baseline := detectSubscriptions(aggregate.BuildVendorSeries(receipts, w))
	require.Len(t, baseline, 1)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.Receipt, len(receipts))
		copy(shuffled, receipts)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		candidates := detectSubscriptions(aggregate.BuildVendorSeries(shuffled, w))
		require.Len(t, candidates, 1)
		assert.Equal(t, baseline[0], candidates[0])
	}
}

func TestDetectSubscriptions_SingleChargeSkipped(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)
	receipts := []model.Receipt{
		{Vendor: "One Off", TotalAmount: 99.99, Timestamp: now.AddDate(0, 0, -10)},
	}

	candidates := detectSubscriptions(aggregate.BuildVendorSeries(receipts, w))
	assert.Empty(t, candidates)
}

func TestAnalyzeRecurrence(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	receipts := monthlyCharges("Netflix", 15.99, 4, 30, now)
	receipts = append(receipts, monthlyCharges("Corner Cafe", 6.50, 5, 7, now)...)

	payload := analyzeRecurrence("user001", receipts, w)

	assert.Equal(t, TypeRecurrence, payload.Type)
	assert.Equal(t, "user001", payload.UserID)
	assert.NotEmpty(t, payload.SubscriptionCandidates)
	assert.NotEmpty(t, payload.RecurringVendors)
	assert.NotEmpty(t, payload.MonthlySpendingTrend)
	assert.NotEmpty(t, payload.Insights)

	// Vendors with three or more visits only.
	for _, v := range payload.RecurringVendors {
		assert.GreaterOrEqual(t, v.PurchaseCount, 3)
	}
}

func TestAnalyzeRecurrence_Empty(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	payload := analyzeRecurrence("user001", nil, aggregate.NewWindow(now, 180))

	assert.Equal(t, TypeRecurrence, payload.Type)
	assert.Empty(t, payload.SubscriptionCandidates)
	assert.Empty(t, payload.RecurringVendors)
	assert.NotEmpty(t, payload.Insights)
}

func TestAnalyzeRecurrence_NonPositiveExcluded(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 180)

	receipts := monthlyCharges("Refunds R Us", -15.99, 4, 30, now)
	receipts = append(receipts, monthlyCharges("Freebie", 0, 4, 30, now)...)

	payload := analyzeRecurrence("user001", receipts, w)
	assert.Empty(t, payload.SubscriptionCandidates)
	assert.Empty(t, payload.RecurringVendors)
	assert.Empty(t, payload.MonthlySpendingTrend)
}
