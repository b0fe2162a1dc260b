package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// foodCategory resolves an item to a food category: explicit category
// first, then name keywords, else "other".
func foodCategory(item model.ReceiptItem) string {
	if _, ok := shelfLives[item.Category]; ok {
		return item.Category
	}
	for _, fk := range foodKeywords {
		for _, kw := range fk.keywords {
			if strings.Contains(item.Name, kw) {
				return fk.category
			}
		}
	}
	return "other"
}

// isGroceryVendor reports whether the vendor name looks like a grocery
// store.
func isGroceryVendor(vendor string) bool {
	key := aggregate.VendorKey(vendor)
	for _, indicator := range groceryIndicators {
		if strings.Contains(key, indicator) {
			return true
		}
	}
	return false
}

// foodPurchase is one food line item with its purchase time.
type foodPurchase struct {
	when     time.Time
	item     string
	category string
	price    float64
	quantity float64
}

// analyzeWaste estimates perishable waste risk over one window. Risk
// is banded by elapsed share of the category shelf life; items bought
// more than twice in the window are forced to high risk regardless
// (overstocking, not spoilage).
func analyzeWaste(userID string, receipts []model.Receipt, w aggregate.Window, now time.Time) *WastePayload {
	payload := &WastePayload{
		Type:              TypeWaste,
		UserID:            userID,
		WasteRiskItems:    make([]WasteRiskItem, 0),
		FrequentPurchases: make([]FrequentPurchase, 0),
		WasteByCategory:   make([]CategoryWaste, 0),
		Recommendations:   make([]string, 0),
	}

	// First pass: collect food purchases and per-item totals so the
	// overstocking override sees final counts independent of input order.
	purchases := make([]foodPurchase, 0)
	type inventory struct {
		category   string
		totalSpent float64
		count      int
	}
	pantry := make(map[string]*inventory)

	for _, r := range aggregate.InWindow(receipts, w) {
		grocery := isGroceryVendor(r.Vendor)
		for _, item := range r.Items {
			if item.Name == "" {
				continue
			}
			price := item.UnitPrice * item.Quantity
			if price <= 0 {
				continue
			}
			category := foodCategory(item)
			if !grocery && category == "other" {
				continue
			}

			purchases = append(purchases, foodPurchase{
				when:     r.Timestamp,
				item:     item.Name,
				category: category,
				price:    price,
				quantity: item.Quantity,
			})

			inv := pantry[item.Name]
			if inv == nil {
				inv = &inventory{category: category}
				pantry[item.Name] = inv
			}
			inv.totalSpent += price
			inv.count++
		}
	}

	sort.SliceStable(purchases, func(i, j int) bool {
		if !purchases[i].when.Equal(purchases[j].when) {
			return purchases[i].when.Before(purchases[j].when)
		}
		return purchases[i].item < purchases[j].item
	})

	// Second pass: band each purchase.
	wasteByCategory := make(map[string]*CategoryWaste)
	var highRiskSpend float64

	for _, p := range purchases {
		shelfLife, ok := shelfLives[p.category]
		if !ok {
			shelfLife = defaultShelfLife
		}
		daysSince := int(now.Sub(p.when).Hours() / 24)

		risk := RiskLow
		switch {
		case float64(daysSince) > float64(shelfLife)*0.8:
			risk = RiskHigh
		case float64(daysSince) > float64(shelfLife)*0.5:
			risk = RiskMedium
		}
		if pantry[p.item].count > 2 {
			risk = RiskHigh
		}

		if risk == RiskLow {
			continue
		}

		payload.WasteRiskItems = append(payload.WasteRiskItems, WasteRiskItem{
			Item:              p.item,
			Category:          p.category,
			WasteRisk:         risk,
			DaysSincePurchase: daysSince,
			ShelfLifeDays:     shelfLife,
			AmountSpent:       aggregate.Round2(p.price),
			TotalSpent:        aggregate.Round2(pantry[p.item].totalSpent),
			PurchaseFrequency: pantry[p.item].count,
		})

		if risk == RiskHigh {
			highRiskSpend += p.price
			cw := wasteByCategory[p.category]
			if cw == nil {
				cw = &CategoryWaste{Category: p.category}
				wasteByCategory[p.category] = cw
			}
			cw.Items++
			cw.Value += p.price
		}
	}

	sort.SliceStable(payload.WasteRiskItems, func(i, j int) bool {
		iHigh, jHigh := payload.WasteRiskItems[i].WasteRisk == RiskHigh, payload.WasteRiskItems[j].WasteRisk == RiskHigh
		if iHigh != jHigh {
			return iHigh
		}
		return payload.WasteRiskItems[i].TotalSpent > payload.WasteRiskItems[j].TotalSpent
	})
	if len(payload.WasteRiskItems) > 10 {
		payload.WasteRiskItems = payload.WasteRiskItems[:10]
	}

	for _, cat := range aggregate.SortedKeys(wasteByCategory) {
		cw := wasteByCategory[cat]
		cw.Value = aggregate.Round2(cw.Value)
		payload.WasteByCategory = append(payload.WasteByCategory, *cw)
	}

	// Extrapolate the window's high-risk spend to a monthly figure.
	payload.EstimatedMonthlyWaste = aggregate.Round2(highRiskSpend * 30 / float64(w.Days))

	var totalFood float64
	for _, item := range aggregate.SortedKeys(pantry) {
		inv := pantry[item]
		totalFood += inv.totalSpent
		if inv.count >= 3 {
			payload.FrequentPurchases = append(payload.FrequentPurchases, FrequentPurchase{
				Item:                item,
				Category:            inv.category,
				PurchaseCount:       inv.count,
				TotalSpent:          aggregate.Round2(inv.totalSpent),
				AvgPurchaseInterval: aggregate.Round1(float64(w.Days) / float64(inv.count)),
			})
		}
	}
	sort.SliceStable(payload.FrequentPurchases, func(i, j int) bool {
		return payload.FrequentPurchases[i].PurchaseCount > payload.FrequentPurchases[j].PurchaseCount
	})
	if len(payload.FrequentPurchases) > 10 {
		payload.FrequentPurchases = payload.FrequentPurchases[:10]
	}
	payload.TotalFoodSpending = aggregate.Round2(totalFood)

	payload.Recommendations = wasteRecommendations(payload, highRiskSpend)

	return payload
}

func wasteRecommendations(p *WastePayload, highRiskSpend float64) []string {
	recommendations := make([]string, 0)

	if highRiskSpend > 20 {
		recommendations = append(recommendations, fmt.Sprintf("💰 Reduce food waste to save $%.2f/month", p.EstimatedMonthlyWaste))
	}

	if len(p.WasteByCategory) > 0 {
		top := p.WasteByCategory[0]
		for _, cw := range p.WasteByCategory[1:] {
			if cw.Value > top.Value {
				top = cw
			}
		}
		recommendations = append(recommendations, fmt.Sprintf("🥗 Focus on %s - highest waste category", top.Category))
	}

	if len(p.FrequentPurchases) > 0 {
		recommendations = append(recommendations, fmt.Sprintf("📦 Consider buying %s less frequently", p.FrequentPurchases[0].Item))
	}

	if len(p.WasteRiskItems) > 5 {
		recommendations = append(recommendations, "📋 Consider meal planning to reduce food waste")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "No food waste risk detected in this period")
	}

	return recommendations
}
