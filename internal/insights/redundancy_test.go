package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

func TestMatchServiceCategory(t *testing.T) {
	tests := []struct {
		name     string
		vendor   string
		wantName string
		wantOK   bool
	}{
		{name: "netflix is streaming", vendor: "netflix", wantName: "streaming", wantOK: true},
		{name: "substring match", vendor: "netflix subscription", wantName: "streaming", wantOK: true},
		{name: "planet fitness", vendor: "planet fitness downtown", wantName: "fitness", wantOK: true},
		{name: "first match wins", vendor: "amazon prime", wantName: "streaming", wantOK: true},
		{name: "unknown vendor", vendor: "bobs hardware", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := matchServiceCategory(tt.vendor)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, sc.Name)
			}
		})
	}
}

func TestAnalyzeRedundancy_StreamingOverlap(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 120)

	// Netflix and Hulu both bill exactly once per "month" of the window,
	// so monthly cost equals the subscription price.
	var receipts []model.Receipt
	receipts = append(receipts, monthlyCharges("Netflix", 15.99, 4, 30, now)...)
	receipts = append(receipts, monthlyCharges("Hulu", 12.99, 4, 30, now)...)

	payload := analyzeRedundancy("user001", receipts, w, now)

	require.Len(t, payload.OverlappingServices, 1)
	overlap := payload.OverlappingServices[0]
	assert.Equal(t, "Streaming", overlap.Category)
	require.Len(t, overlap.Services, 2)

	// Consolidating onto the cheapest service saves everything else:
	// total (28.98) minus the cheapest monthly cost (12.99).
	assert.InDelta(t, 15.99, overlap.PotentialSavings, 0.25)
	assert.Equal(t, "medium", overlap.OverlapSeverity)
	assert.Contains(t, overlap.Recommendation, "hulu")
}

func TestAnalyzeRedundancy_SeverityHighAtThreeVendors(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 120)

	var receipts []model.Receipt
	receipts = append(receipts, monthlyCharges("Netflix", 15.99, 4, 30, now)...)
	receipts = append(receipts, monthlyCharges("Hulu", 12.99, 4, 30, now)...)
	receipts = append(receipts, monthlyCharges("Disney+", 10.99, 4, 30, now)...)

	payload := analyzeRedundancy("user001", receipts, w, now)
	require.Len(t, payload.OverlappingServices, 1)
	assert.Equal(t, "high", payload.OverlappingServices[0].OverlapSeverity)
}

func TestCategoryOverlaps(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mk := func(vendor string, amount float64, daysAgo int) model.Receipt {
		return model.Receipt{
			Vendor:      vendor,
			Category:    "dining",
			TotalAmount: amount,
			Timestamp:   now.AddDate(0, 0, -daysAgo),
		}
	}

	t.Run("fifteen percent heuristic", func(t *testing.T) {
		receipts := []model.Receipt{
			mk("Bistro A", 40, 1), mk("Bistro A", 40, 5), mk("Bistro A", 40, 9),
			mk("Bistro B", 40, 2), mk("Bistro B", 40, 6),
		}
		overlaps := categoryOverlaps(receipts)
		require.Len(t, overlaps, 1)
		assert.Equal(t, "Dining", overlaps[0].Category)
		assert.Equal(t, 2, overlaps[0].VendorCount)
		assert.InDelta(t, 200*0.15, overlaps[0].PotentialSavings, 0.001)
	})

	t.Run("needs five transactions", func(t *testing.T) {
		receipts := []model.Receipt{
			mk("Bistro A", 40, 1), mk("Bistro A", 40, 5),
			mk("Bistro B", 40, 2), mk("Bistro B", 40, 6),
		}
		assert.Empty(t, categoryOverlaps(receipts))
	})

	t.Run("needs two vendors", func(t *testing.T) {
		receipts := []model.Receipt{
			mk("Bistro A", 40, 1), mk("Bistro A", 40, 2), mk("Bistro A", 40, 3),
			mk("Bistro A", 40, 4), mk("Bistro A", 40, 5),
		}
		assert.Empty(t, categoryOverlaps(receipts))
	})
}

func TestAnalyzeRedundancy_SavingsAreAdditive(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := aggregate.NewWindow(now, 120)

	var receipts []model.Receipt
	receipts = append(receipts, monthlyCharges("Netflix", 15.99, 4, 30, now)...)
	receipts = append(receipts, monthlyCharges("Hulu", 12.99, 4, 30, now)...)
	for i := 0; i < 3; i++ {
		receipts = append(receipts, model.Receipt{
			Vendor: "Bistro A", Category: "dining", TotalAmount: 40,
			Timestamp: now.AddDate(0, 0, -(i*3 + 1)),
		})
	}
	for i := 0; i < 2; i++ {
		receipts = append(receipts, model.Receipt{
			Vendor: "Bistro B", Category: "dining", TotalAmount: 40,
			Timestamp: now.AddDate(0, 0, -(i*3 + 2)),
		})
	}

	payload := analyzeRedundancy("user001", receipts, w, now)

	var expected float64
	for _, s := range payload.OverlappingServices {
		expected += s.PotentialSavings
	}
	for _, c := range payload.CategoryOverlaps {
		expected += c.PotentialSavings
	}
	assert.InDelta(t, expected, payload.TotalPotentialSavings, 0.01)
	assert.Positive(t, payload.TotalPotentialSavings)
}

func TestAnalyzeRedundancy_Empty(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	payload := analyzeRedundancy("user001", nil, aggregate.NewWindow(now, 120), now)

	assert.Equal(t, TypeRedundancy, payload.Type)
	assert.Empty(t, payload.OverlappingServices)
	assert.Empty(t, payload.CategoryOverlaps)
	assert.Zero(t, payload.TotalPotentialSavings)
	assert.Equal(t, "Insufficient data for overlap analysis", payload.InsightSummary)
	assert.NotEmpty(t, payload.Insights)
}
