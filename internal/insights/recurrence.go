package insights

import (
	"fmt"
	"sort"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// classifyCadence applies the recurrence rules in order and returns the
// first match. Rules are evaluated strictly in this order; the first
// hit decides both frequency and confidence.
func classifyCadence(varianceCoefficient, avgInterval, intervalStdev float64, count int) (Frequency, Confidence, bool) {
	if varianceCoefficient < 0.15 {
		switch {
		case avgInterval >= 28 && avgInterval <= 32 && intervalStdev < 5:
			return FrequencyMonthly, ConfidenceHigh, true
		case avgInterval >= 6 && avgInterval <= 8 && intervalStdev < 2:
			return FrequencyWeekly, ConfidenceHigh, true
		case avgInterval >= 13 && avgInterval <= 15 && intervalStdev < 3:
			return FrequencyBiWeekly, ConfidenceMedium, true
		case avgInterval >= 85 && avgInterval <= 95:
			return FrequencyQuarterly, ConfidenceMedium, true
		}
		return FrequencyIrregular, ConfidenceLow, false
	}

	if varianceCoefficient < 0.30 && count >= 3 && avgInterval >= 20 && avgInterval <= 40 {
		return FrequencyMonthly, ConfidenceMedium, true
	}

	return FrequencyIrregular, ConfidenceLow, false
}

// detectSubscriptions finds subscription-like vendors in the series.
// Vendors need at least two qualifying transactions and one usable
// interval. Output is sorted by annual cost descending.
func detectSubscriptions(series aggregate.VendorSeries) []SubscriptionCandidate {
	candidates := make([]SubscriptionCandidate, 0)

	for _, vendor := range aggregate.SortedKeys(series) {
		txns := series[vendor]
		if len(txns) < 2 {
			continue
		}

		amounts := make([]float64, len(txns))
		for i, t := range txns {
			amounts[i] = t.TotalAmount
		}

		intervals := make([]float64, 0, len(txns)-1)
		for i := 1; i < len(txns); i++ {
			intervals = append(intervals, txns[i].Timestamp.Sub(txns[i-1].Timestamp).Hours()/24)
		}
		if len(intervals) == 0 {
			continue
		}

		avgAmount := aggregate.Mean(amounts)
		amountStdev := aggregate.Stdev(amounts)
		varianceCoefficient := 1.0
		if avgAmount > 0 {
			varianceCoefficient = amountStdev / avgAmount
		}

		avgInterval := aggregate.Mean(intervals)
		intervalStdev := aggregate.Stdev(intervals)

		frequency, confidence, ok := classifyCadence(varianceCoefficient, avgInterval, intervalStdev, len(txns))
		if !ok {
			continue
		}

		first := txns[0].Timestamp
		last := txns[len(txns)-1].Timestamp

		candidates = append(candidates, SubscriptionCandidate{
			Vendor:           vendor,
			AvgAmount:        aggregate.Round2(avgAmount),
			Frequency:        frequency,
			Confidence:       confidence,
			PurchaseCount:    len(txns),
			LastCharge:       last.Format("2006-01-02"),
			AmountVariance:   aggregate.Round2(amountStdev),
			AnnualCost:       aggregate.Round2(avgAmount * (365 / avgInterval)),
			MonthsActive:     aggregate.Round1(last.Sub(first).Hours() / 24 / 30.44),
			AvgIntervalDays:  aggregate.Round1(avgInterval),
			ConsistencyScore: aggregate.Round1((1 - varianceCoefficient) * 100),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AnnualCost > candidates[j].AnnualCost
	})

	return candidates
}

// analyzeRecurrence runs the full recurrence analysis over one window.
func analyzeRecurrence(userID string, receipts []model.Receipt, w aggregate.Window) *RecurrencePayload {
	payload := &RecurrencePayload{
		Type:                   TypeRecurrence,
		UserID:                 userID,
		RecurringVendors:       make([]RecurringVendor, 0),
		RecurringItems:         make([]RecurringItem, 0),
		SubscriptionCandidates: make([]SubscriptionCandidate, 0),
		MonthlySpendingTrend:   make(map[string]float64),
		Insights:               make([]string, 0),
	}

	series := aggregate.BuildVendorSeries(receipts, w)
	windowed := aggregate.InWindow(receipts, w)
	payload.MonthlySpendingTrend = aggregate.ByMonth(windowed)
	payload.SubscriptionCandidates = detectSubscriptions(series)

	// Repeat vendors, three or more visits.
	for _, vendor := range aggregate.SortedKeys(series) {
		txns := series[vendor]
		if len(txns) < 3 {
			continue
		}
		var total float64
		for _, t := range txns {
			total += t.TotalAmount
		}
		var avgInterval float64
		for i := 1; i < len(txns); i++ {
			avgInterval += txns[i].Timestamp.Sub(txns[i-1].Timestamp).Hours() / 24
		}
		avgInterval /= float64(len(txns) - 1)

		payload.RecurringVendors = append(payload.RecurringVendors, RecurringVendor{
			Vendor:          vendor,
			PurchaseCount:   len(txns),
			AvgIntervalDays: aggregate.Round1(avgInterval),
			TotalSpent:      aggregate.Round2(total),
			AvgAmount:       aggregate.Round2(total / float64(len(txns))),
		})
	}
	sort.SliceStable(payload.RecurringVendors, func(i, j int) bool {
		return payload.RecurringVendors[i].TotalSpent > payload.RecurringVendors[j].TotalSpent
	})
	if len(payload.RecurringVendors) > 10 {
		payload.RecurringVendors = payload.RecurringVendors[:10]
	}

	payload.RecurringItems = recurringItems(windowed)

	payload.Insights = recurrenceInsights(payload)

	return payload
}

// recurringItems finds line items bought four or more times.
func recurringItems(receipts []model.Receipt) []RecurringItem {
	type itemStats struct {
		count      int
		totalQty   float64
		totalSpent float64
		priceSum   float64
		priceCount int
	}
	stats := make(map[string]*itemStats)

	for _, r := range receipts {
		if !r.Countable() {
			continue
		}
		for _, item := range r.Items {
			if item.Name == "" {
				continue
			}
			s := stats[item.Name]
			if s == nil {
				s = &itemStats{}
				stats[item.Name] = s
			}
			s.count++
			s.totalQty += item.Quantity
			s.totalSpent += item.UnitPrice * item.Quantity
			if item.UnitPrice > 0 {
				s.priceSum += item.UnitPrice
				s.priceCount++
			}
		}
	}

	items := make([]RecurringItem, 0)
	for _, name := range aggregate.SortedKeys(stats) {
		s := stats[name]
		if s.count < 4 {
			continue
		}
		avgPrice := 0.0
		if s.priceCount > 0 {
			avgPrice = aggregate.Round2(s.priceSum / float64(s.priceCount))
		}
		items = append(items, RecurringItem{
			Item:          name,
			PurchaseCount: s.count,
			TotalQuantity: aggregate.Round1(s.totalQty),
			AvgPrice:      avgPrice,
			TotalSpent:    aggregate.Round2(s.totalSpent),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalSpent > items[j].TotalSpent
	})
	if len(items) > 15 {
		items = items[:15]
	}
	return items
}

func recurrenceInsights(p *RecurrencePayload) []string {
	insights := make([]string, 0)

	if len(p.SubscriptionCandidates) > 0 {
		var monthlyCost float64
		for _, s := range p.SubscriptionCandidates {
			monthlyCost += s.AvgAmount
		}
		insights = append(insights, fmt.Sprintf("💳 %d potential subscriptions detected ($%.2f/month)",
			len(p.SubscriptionCandidates), monthlyCost))
	}

	if len(p.RecurringVendors) > 0 {
		top := p.RecurringVendors[0]
		insights = append(insights, fmt.Sprintf("🏪 Most frequent: %s - $%.2f over %d visits",
			top.Vendor, top.TotalSpent, top.PurchaseCount))
	}

	if trend := monthlyTrendInsight(p.MonthlySpendingTrend); trend != "" {
		insights = append(insights, trend)
	}

	if len(insights) == 0 {
		insights = append(insights, "No recurring purchase patterns detected yet")
	}

	return insights
}

// monthlyTrendInsight compares the most recent three months against the
// older average and reports shifts beyond 10%.
func monthlyTrendInsight(monthly map[string]float64) string {
	if len(monthly) < 3 {
		return ""
	}

	months := aggregate.SortedKeys(monthly)
	recent := months[len(months)-3:]
	older := months[:len(months)-3]

	var recentSum float64
	for _, m := range recent {
		recentSum += monthly[m]
	}
	recentAvg := recentSum / 3

	var olderSum float64
	for _, m := range older {
		olderSum += monthly[m]
	}
	olderAvg := olderSum / float64(max(1, len(older)))
	if olderAvg <= 0 {
		return ""
	}

	switch {
	case recentAvg > olderAvg*1.1:
		return fmt.Sprintf("📈 Spending increased: $%.2f/month (up %.1f%%)", recentAvg, (recentAvg/olderAvg-1)*100)
	case recentAvg < olderAvg*0.9:
		return fmt.Sprintf("📉 Spending decreased: $%.2f/month (down %.1f%%)", recentAvg, (1-recentAvg/olderAvg)*100)
	}
	return ""
}
