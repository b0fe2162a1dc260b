package insights

import (
	"fmt"
	"math"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// Health score component ceilings. They sum to 100.
const (
	weightSavings          = 30
	weightEssentials       = 20
	weightPriceSensitivity = 15
	weightBudgetAdherence  = 20
	weightCategoryBalance  = 15
)

// spendingPatterns is the aggregated input to the score math.
type spendingPatterns struct {
	monthlyTotals    map[string]float64
	categoryTotals   map[string]float64
	essential        float64
	nonEssential     float64
	totalReceipts    int
	overspendCount   int
	totalItems       int
	aboveMarketItems int
}

// collectPatterns aggregates one window of receipts. Time-bucketed and
// category views only see timestamped, positive-amount receipts; the
// receipt and overspend counters see everything in the window.
func collectPatterns(receipts []model.Receipt, w aggregate.Window) spendingPatterns {
	p := spendingPatterns{
		monthlyTotals:  make(map[string]float64),
		categoryTotals: make(map[string]float64),
	}

	for _, r := range aggregate.InWindow(receipts, w) {
		p.totalReceipts++
		if r.Overspent {
			p.overspendCount++
		}
		for _, item := range r.Items {
			p.totalItems++
			if item.AboveMarketPrice {
				p.aboveMarketItems++
			}
		}

		if !r.HasTimestamp() || !r.Countable() {
			continue
		}
		p.monthlyTotals[r.MonthKey()] += r.TotalAmount

		cat := r.Category
		if cat == "" {
			cat = "other"
		}
		p.categoryTotals[cat] += r.TotalAmount

		if isEssential(r.Category) {
			p.essential += r.TotalAmount
		} else {
			p.nonEssential += r.TotalAmount
		}
	}

	return p
}

// scoreBreakdown computes the five weighted sub-scores. Each sub-score
// is an integer within [0, its ceiling] so the total is an exact sum.
func scoreBreakdown(p spendingPatterns, profile model.UserProfile) ScoreBreakdown {
	var b ScoreBreakdown

	b.Savings = int(math.Round(math.Min(math.Max(0, profile.SavingsPct), weightSavings)))

	tracked := p.essential + p.nonEssential
	essentialRatio := 0.5
	if tracked > 0 {
		essentialRatio = p.essential / tracked
	}
	b.Essentials = int(math.Round(essentialRatio * weightEssentials))

	sensitivity := math.Max(0, math.Min(1, profile.PriceSensitivity))
	b.PriceSensitivity = int(math.Round((1 - sensitivity) * weightPriceSensitivity))

	var avgMonthly float64
	if len(p.monthlyTotals) > 0 {
		for _, v := range p.monthlyTotals {
			avgMonthly += v
		}
		avgMonthly /= float64(len(p.monthlyTotals))
	}
	switch {
	case profile.BudgetMonthly <= 0:
		b.BudgetAdherence = int(math.Round(0.5 * weightBudgetAdherence))
	case avgMonthly <= profile.BudgetMonthly:
		b.BudgetAdherence = weightBudgetAdherence
	default:
		overPct := math.Min((avgMonthly-profile.BudgetMonthly)/profile.BudgetMonthly, 1)
		b.BudgetAdherence = int(math.Round(weightBudgetAdherence * (1 - overPct)))
	}

	values := make([]float64, 0, len(p.categoryTotals))
	for _, v := range p.categoryTotals {
		if v > 0 {
			values = append(values, v)
		}
	}
	if len(values) <= 1 {
		b.CategoryBalance = int(math.Round(0.5 * weightCategoryBalance))
	} else {
		mean := aggregate.Mean(values)
		if mean <= 0 {
			b.CategoryBalance = int(math.Round(0.5 * weightCategoryBalance))
		} else {
			imbalance := math.Min(aggregate.Stdev(values)/mean, 1)
			b.CategoryBalance = int(math.Round(weightCategoryBalance * (1 - imbalance)))
		}
	}

	return b
}

func (b ScoreBreakdown) total() int {
	sum := b.Savings + b.Essentials + b.PriceSensitivity + b.BudgetAdherence + b.CategoryBalance
	return max(0, min(100, sum))
}

// scoreCategory bands a score for display.
func scoreCategory(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 40:
		return "Poor"
	default:
		return "Critical"
	}
}

// analyzeHealth computes the composite health score for one window.
// The scorer itself never writes anything; the caller decides whether
// the profile's stored score needs updating.
func analyzeHealth(userID string, receipts []model.Receipt, profile model.UserProfile, w aggregate.Window) *HealthPayload {
	patterns := collectPatterns(receipts, w)
	breakdown := scoreBreakdown(patterns, profile)
	score := breakdown.total()

	var totalSpending float64
	for _, v := range patterns.categoryTotals {
		totalSpending += v
	}

	var essentialRatio, avgTransaction, overspendRate float64
	if totalSpending > 0 {
		essentialRatio = patterns.essential / totalSpending * 100
	}
	if patterns.totalReceipts > 0 {
		avgTransaction = totalSpending / float64(patterns.totalReceipts)
		overspendRate = float64(patterns.overspendCount) / float64(patterns.totalReceipts) * 100
	}

	payload := &HealthPayload{
		Type:             TypeHealthScore,
		UserID:           userID,
		Score:            score,
		FHSScore:         score,
		Category:         scoreCategory(score),
		Breakdown:        breakdown,
		TotalSpending:    aggregate.Round2(totalSpending),
		EssentialRatio:   aggregate.Round1(essentialRatio),
		AvgTransaction:   aggregate.Round2(avgTransaction),
		HealthIndicators: healthIndicators(patterns, essentialRatio, overspendRate, avgTransaction),
		Suggestions:      make([]string, 0),
		InsightSummary: fmt.Sprintf("Your Financial Health Score is %d/100 (%s), based on analysis of %d transactions with %.1f%% overspending rate.",
			score, scoreCategory(score), patterns.totalReceipts, overspendRate),
	}

	return payload
}

func healthIndicators(p spendingPatterns, essentialRatio, overspendRate, avgTransaction float64) []HealthIndicator {
	indicators := make([]HealthIndicator, 0, 4)

	switch {
	case essentialRatio >= 70:
		indicators = append(indicators, HealthIndicator{Status: "good", Message: "✅ Good focus on essential spending"})
	case essentialRatio >= 50:
		indicators = append(indicators, HealthIndicator{Status: "warning", Message: "⚠️ Moderate essential spending ratio"})
	default:
		indicators = append(indicators, HealthIndicator{Status: "error", Message: "❌ Low essential spending ratio"})
	}

	switch {
	case overspendRate <= 10:
		indicators = append(indicators, HealthIndicator{Status: "good", Message: "✅ Low overspending frequency"})
	case overspendRate <= 25:
		indicators = append(indicators, HealthIndicator{Status: "warning", Message: "⚠️ Moderate overspending frequency"})
	default:
		indicators = append(indicators, HealthIndicator{Status: "error", Message: "❌ High overspending frequency"})
	}

	if p.totalReceipts >= 10 {
		indicators = append(indicators, HealthIndicator{Status: "good", Message: "✅ Sufficient transaction data"})
	} else {
		indicators = append(indicators, HealthIndicator{Status: "warning", Message: "⚠️ Limited transaction data"})
	}

	if avgTransaction <= 1000 {
		indicators = append(indicators, HealthIndicator{Status: "good", Message: "✅ Reasonable transaction amounts"})
	} else {
		indicators = append(indicators, HealthIndicator{Status: "warning", Message: "⚠️ High average transaction amount"})
	}

	return indicators
}

// fallbackSuggestions cover advisory generation failure or absence.
var fallbackSuggestions = []string{
	"Focus on reducing non-essential spending",
	"Compare prices before purchasing",
	"Set monthly category budgets",
}
