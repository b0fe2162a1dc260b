package insights

import (
	"sort"
	"time"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// isEssential classifies a receipt's category as a need or a want.
func isEssential(category string) bool {
	return essentialCategories[category]
}

// analyzeNeedWant splits spending into essential and discretionary over
// one window. The overall summary covers every countable receipt;
// the monthly breakdown only those with a usable timestamp.
func analyzeNeedWant(userID string, receipts []model.Receipt, w aggregate.Window) *NeedWantPayload {
	payload := &NeedWantPayload{
		Type:             TypeNeedWant,
		UserID:           userID,
		MonthlyBreakdown: make([]MonthlyNeedWant, 0),
		Insights:         make([]string, 0),
	}

	type monthAgg struct {
		essential    float64
		nonEssential float64
		total        float64
		count        int
		categories   map[string]float64
	}
	months := make(map[string]*monthAgg)

	var totalEssential, totalNonEssential float64

	for _, r := range aggregate.InWindow(receipts, w) {
		if !r.Countable() {
			continue
		}
		essential := isEssential(r.Category)
		if essential {
			totalEssential += r.TotalAmount
		} else {
			totalNonEssential += r.TotalAmount
		}

		key := r.MonthKey()
		if key == "" {
			continue
		}
		m := months[key]
		if m == nil {
			m = &monthAgg{categories: make(map[string]float64)}
			months[key] = m
		}
		if essential {
			m.essential += r.TotalAmount
		} else {
			m.nonEssential += r.TotalAmount
		}
		m.total += r.TotalAmount
		m.count++
		cat := r.Category
		if cat == "" {
			cat = "other"
		}
		m.categories[cat] += r.TotalAmount
	}

	for _, key := range aggregate.SortedKeys(months) {
		m := months[key]
		if m.total <= 0 {
			continue
		}
		when, err := time.Parse("2006-01", key)
		if err != nil {
			continue
		}
		payload.MonthlyBreakdown = append(payload.MonthlyBreakdown, MonthlyNeedWant{
			Month:               when.Format("January 2006"),
			EssentialAmount:     aggregate.Round2(m.essential),
			NonEssentialAmount:  aggregate.Round2(m.nonEssential),
			TotalAmount:         aggregate.Round2(m.total),
			EssentialPercentage: aggregate.Round1(m.essential / m.total * 100),
			ReceiptCount:        m.count,
			TopCategories:       topCategories(m.categories, 3),
		})
	}

	totalSpend := totalEssential + totalNonEssential
	payload.EssentialSpending = aggregate.Round2(totalEssential)
	payload.DiscretionarySpending = aggregate.Round2(totalNonEssential)
	payload.Summary = NeedWantSummary{
		TotalEssential:    aggregate.Round2(totalEssential),
		TotalNonEssential: aggregate.Round2(totalNonEssential),
	}
	if totalSpend > 0 {
		payload.Summary.EssentialPercentage = aggregate.Round1(totalEssential / totalSpend * 100)
		payload.Breakdown = NeedWantBreakdown{
			Essential:     aggregate.Round1(totalEssential / totalSpend * 100),
			Discretionary: aggregate.Round1(totalNonEssential / totalSpend * 100),
		}
	}

	payload.Insights = needWantInsights(totalSpend, payload.Summary.EssentialPercentage)

	return payload
}

// topCategories returns the n highest-spend categories, largest first.
func topCategories(categories map[string]float64, n int) []string {
	names := aggregate.SortedKeys(categories)
	sort.SliceStable(names, func(i, j int) bool {
		return categories[names[i]] > categories[names[j]]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func needWantInsights(totalSpend, essentialPct float64) []string {
	if totalSpend <= 0 {
		return []string{"No spending data available for need vs want analysis"}
	}
	switch {
	case essentialPct > 80:
		return []string{"✅ Excellent focus on essential spending"}
	case essentialPct > 60:
		return []string{"👍 Good balance between needs and wants"}
	case essentialPct > 40:
		return []string{"⚠️ Consider reducing non-essential purchases"}
	default:
		return []string{"🚨 High non-essential spending detected"}
	}
}
