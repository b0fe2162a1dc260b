package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// matchServiceCategory returns the first service category whose keyword
// list matches the normalized vendor key. A vendor contributes to at
// most one category.
func matchServiceCategory(vendorKey string) (ServiceCategory, bool) {
	for _, sc := range serviceCategories {
		for _, kw := range sc.Keywords {
			if strings.Contains(vendorKey, kw) {
				return sc, true
			}
		}
	}
	return ServiceCategory{}, false
}

// analyzeRedundancy runs overlap detection over one window. The two
// savings estimates (service-group consolidation and the flat 15%
// category heuristic) are computed independently and summed; they may
// double count and that is the documented contract.
func analyzeRedundancy(userID string, receipts []model.Receipt, w aggregate.Window, now time.Time) *RedundancyPayload {
	payload := &RedundancyPayload{
		Type:                   TypeRedundancy,
		UserID:                 userID,
		SubscriptionCandidates: make([]SubscriptionCandidate, 0),
		OverlappingServices:    make([]ServiceOverlap, 0),
		CategoryOverlaps:       make([]CategoryOverlap, 0),
		Insights:               make([]string, 0),
	}

	series := aggregate.BuildVendorSeries(receipts, w)
	windowed := aggregate.InWindow(receipts, w)

	payload.Metadata = RedundancyMetadata{
		ReceiptsAnalyzed:   len(receipts),
		UniqueVendors:      len(series),
		AnalysisPeriodDays: w.Days,
		GeneratedAt:        now.Format(time.RFC3339),
	}

	if len(receipts) == 0 {
		payload.Insights = append(payload.Insights, "No transaction data available for overlap analysis")
		payload.InsightSummary = "Insufficient data for overlap analysis"
		return payload
	}

	payload.SubscriptionCandidates = detectSubscriptions(series)
	payload.OverlappingServices = serviceOverlaps(series, w)
	payload.CategoryOverlaps = categoryOverlaps(windowed)

	var total float64
	for _, s := range payload.OverlappingServices {
		total += s.PotentialSavings
	}
	for _, c := range payload.CategoryOverlaps {
		total += c.PotentialSavings
	}
	payload.TotalPotentialSavings = aggregate.Round2(total)

	payload.Insights = redundancyInsights(payload)
	payload.InsightSummary = redundancySummary(payload, len(series))

	return payload
}

// serviceOverlaps finds semantic service groups with two or more active
// vendors and estimates consolidation savings against the cheapest one.
func serviceOverlaps(series aggregate.VendorSeries, w aggregate.Window) []ServiceOverlap {
	groups := make(map[string][]string)
	for _, vendor := range aggregate.SortedKeys(series) {
		if sc, ok := matchServiceCategory(vendor); ok {
			groups[sc.Name] = append(groups[sc.Name], vendor)
		}
	}

	overlaps := make([]ServiceOverlap, 0)
	months := w.Months()

	for _, sc := range serviceCategories {
		vendors := groups[sc.Name]
		if len(vendors) < 2 {
			continue
		}

		services := make([]ServiceVendorCost, 0, len(vendors))
		var totalMonthly float64
		for _, vendor := range vendors {
			txns := series[vendor]
			var sum float64
			for _, t := range txns {
				sum += t.TotalAmount
			}
			avgAmount := sum / float64(len(txns))
			monthlyFrequency := float64(len(txns)) / months
			monthlyCost := avgAmount * monthlyFrequency

			services = append(services, ServiceVendorCost{
				Vendor:            vendor,
				AvgAmount:         aggregate.Round2(avgAmount),
				MonthlyCost:       aggregate.Round2(monthlyCost),
				TransactionCount:  len(txns),
				FrequencyPerMonth: aggregate.Round1(monthlyFrequency),
			})
			totalMonthly += monthlyCost
		}

		sort.SliceStable(services, func(i, j int) bool {
			return services[i].MonthlyCost < services[j].MonthlyCost
		})

		savings := totalMonthly - services[0].MonthlyCost
		if savings < 0 {
			savings = 0
		}

		severity := "medium"
		if len(vendors) >= 3 {
			severity = "high"
		}

		overlaps = append(overlaps, ServiceOverlap{
			Category:         sc.Label,
			Services:         services,
			TotalMonthlyCost: aggregate.Round2(totalMonthly),
			PotentialSavings: aggregate.Round2(savings),
			Recommendation:   serviceRecommendation(sc.Name, services[0].Vendor, savings),
			OverlapSeverity:  severity,
		})
	}

	sort.SliceStable(overlaps, func(i, j int) bool {
		return overlaps[i].PotentialSavings > overlaps[j].PotentialSavings
	})

	return overlaps
}

func serviceRecommendation(serviceType, cheapest string, savings float64) string {
	switch serviceType {
	case "streaming":
		return fmt.Sprintf("Consider keeping only %s and canceling other streaming services", cheapest)
	case "fitness":
		return fmt.Sprintf("Consolidate to one gym membership. %s appears most cost-effective", cheapest)
	case "coffee":
		return fmt.Sprintf("Reduce coffee shop visits or stick to %s for better value", cheapest)
	case "food_delivery":
		return fmt.Sprintf("Limit to one delivery service or cook more at home to save $%.2f/month", savings)
	default:
		return fmt.Sprintf("Consolidate %s services to reduce redundancy", strings.ReplaceAll(serviceType, "_", " "))
	}
}

// categoryOverlaps applies the flat 15% heuristic to plain categories
// with at least two distinct vendors and five transactions. This is a
// fixed assumption, deliberately separate from the service-group math.
func categoryOverlaps(receipts []model.Receipt) []CategoryOverlap {
	type vendorAgg struct {
		spent float64
		count int
	}
	byCategory := make(map[string]map[string]*vendorAgg)
	categoryCounts := make(map[string]int)

	for _, r := range receipts {
		if !r.Countable() {
			continue
		}
		key := aggregate.VendorKey(r.Vendor)
		if key == "" {
			continue
		}
		cat := r.Category
		if cat == "" {
			cat = "other"
		}
		if byCategory[cat] == nil {
			byCategory[cat] = make(map[string]*vendorAgg)
		}
		agg := byCategory[cat][key]
		if agg == nil {
			agg = &vendorAgg{}
			byCategory[cat][key] = agg
		}
		agg.spent += r.TotalAmount
		agg.count++
		categoryCounts[cat]++
	}

	overlaps := make([]CategoryOverlap, 0)
	for _, cat := range aggregate.SortedKeys(byCategory) {
		vendors := byCategory[cat]
		if categoryCounts[cat] < 5 || len(vendors) < 2 {
			continue
		}

		var total float64
		for _, agg := range vendors {
			total += agg.spent
		}

		shares := make([]CategoryVendorShare, 0, len(vendors))
		for _, vendor := range aggregate.SortedKeys(vendors) {
			agg := vendors[vendor]
			shares = append(shares, CategoryVendorShare{
				Vendor:     vendor,
				TotalSpent: aggregate.Round2(agg.spent),
				Frequency:  agg.count,
				Percentage: aggregate.Round1(agg.spent / total * 100),
			})
		}
		sort.SliceStable(shares, func(i, j int) bool {
			return shares[i].TotalSpent > shares[j].TotalSpent
		})
		if len(shares) > 5 {
			shares = shares[:5]
		}

		overlaps = append(overlaps, CategoryOverlap{
			Category:         titleCase(cat),
			VendorCount:      len(vendors),
			TotalSpending:    aggregate.Round2(total),
			Vendors:          shares,
			PotentialSavings: aggregate.Round2(total * 0.15),
			Recommendation:   fmt.Sprintf("Focus %s spending on top 1-2 vendors for better deals and loyalty benefits", cat),
		})
	}

	sort.SliceStable(overlaps, func(i, j int) bool {
		return overlaps[i].TotalSpending > overlaps[j].TotalSpending
	})

	return overlaps
}

// titleCase upper-cases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func redundancyInsights(p *RedundancyPayload) []string {
	insights := make([]string, 0)

	if len(p.SubscriptionCandidates) > 0 {
		var highConfidence int
		var annualCost float64
		for _, s := range p.SubscriptionCandidates {
			if s.Confidence == ConfidenceHigh {
				highConfidence++
			}
			annualCost += s.AnnualCost
		}
		insights = append(insights, fmt.Sprintf("💳 %d subscriptions detected ($%.0f/year)", len(p.SubscriptionCandidates), annualCost))
		if highConfidence > 0 {
			insights = append(insights, fmt.Sprintf("🎯 %d high-confidence recurring payments identified", highConfidence))
		}
	}

	if len(p.OverlappingServices) > 0 {
		insights = append(insights, fmt.Sprintf("⚠️ %d overlapping service categories found", len(p.OverlappingServices)))
		top := p.OverlappingServices[0]
		insights = append(insights, fmt.Sprintf("🏆 Biggest opportunity: %s ($%.2f/month savings)", top.Category, top.PotentialSavings))
	}

	if len(p.CategoryOverlaps) > 0 {
		mostFragmented := p.CategoryOverlaps[0]
		for _, c := range p.CategoryOverlaps[1:] {
			if c.VendorCount > mostFragmented.VendorCount {
				mostFragmented = c
			}
		}
		insights = append(insights, fmt.Sprintf("🛍️ Most fragmented spending: %s across %d vendors",
			mostFragmented.Category, mostFragmented.VendorCount))
	}

	if p.TotalPotentialSavings > 0 {
		insights = append(insights, fmt.Sprintf("💰 Total potential savings: $%.2f/month ($%.2f/year)",
			p.TotalPotentialSavings, p.TotalPotentialSavings*12))
	}

	if len(insights) == 0 {
		insights = append(insights, "No overlapping spending detected")
	}

	return insights
}

func redundancySummary(p *RedundancyPayload, uniqueVendors int) string {
	if p.TotalPotentialSavings > 0 {
		return fmt.Sprintf("Found $%.2f/month in potential savings from %d overlapping services and %d subscriptions. Consolidating services could save $%.0f annually.",
			p.TotalPotentialSavings, len(p.OverlappingServices), len(p.SubscriptionCandidates), p.TotalPotentialSavings*12)
	}
	return fmt.Sprintf("Analyzed %d vendors across %d transactions. No significant overlaps detected, but found %d subscription patterns.",
		uniqueVendors, p.Metadata.ReceiptsAnalyzed, len(p.SubscriptionCandidates))
}
