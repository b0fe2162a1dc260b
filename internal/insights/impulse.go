package insights

import (
	"fmt"
	"sort"

	"github.com/raseed-app/raseed/internal/aggregate"
	"github.com/raseed-app/raseed/internal/model"
)

// Impulse trigger thresholds, in currency units and wall-clock hours.
const (
	fewItemsMaxCount    = 3
	fewItemsMinAmount   = 20.0
	lateNightStartHour  = 22
	lateNightEndHour    = 6
	rapidGapMaxHours    = 2.0
	rapidPairMinAmount  = 50.0
	triggerVendorVisits = 3
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// weekdayIndex maps time.Weekday to a Monday-based index.
func weekdayIndex(r model.Receipt) int {
	return (int(r.Timestamp.Weekday()) + 6) % 7
}

// analyzeImpulse flags micro-moment purchases over one window. The two
// per-transaction trigger rules are independent and may both fire on
// the same receipt.
func analyzeImpulse(userID string, receipts []model.Receipt, w aggregate.Window) *ImpulsePayload {
	payload := &ImpulsePayload{
		Type:                     TypeImpulse,
		UserID:                   userID,
		ImpulseIndicators:        make([]ImpulseIndicator, 0),
		PeakSpendingTimes:        make([]PeakTimeSlot, 0),
		FrequentTriggerVendors:   make([]TriggerVendor, 0),
		QuickSuccessionPurchases: make([]RapidSequence, 0),
		Insights:                 make([]string, 0),
	}

	qualifying := make([]model.Receipt, 0, len(receipts))
	for _, r := range aggregate.InWindow(receipts, w) {
		if r.Countable() {
			qualifying = append(qualifying, r)
		}
	}
	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Timestamp.Before(qualifying[j].Timestamp)
	})

	timeSlots := make(map[string]*slotStats)
	vendorVisits := make(map[string]int)

	var totalImpulse float64
	for _, r := range qualifying {
		hour := r.Timestamp.Hour()
		slotKey := fmt.Sprintf("%d_%02d", weekdayIndex(r), hour)
		slot := timeSlots[slotKey]
		if slot == nil {
			slot = &slotStats{}
			timeSlots[slotKey] = slot
		}
		slot.total += r.TotalAmount
		slot.count++

		store := aggregate.VendorKey(r.Vendor)
		if store != "" {
			vendorVisits[store]++
		}

		when := r.Timestamp.Format("2006-01-02 15:04")

		if len(r.Items) <= fewItemsMaxCount && r.TotalAmount > fewItemsMinAmount {
			payload.ImpulseIndicators = append(payload.ImpulseIndicators, ImpulseIndicator{
				Amount:     r.TotalAmount,
				ItemsCount: len(r.Items),
				Store:      store,
				Time:       when,
				Trigger:    TriggerFewItemsHighValue,
			})
			totalImpulse += r.TotalAmount
		}

		if hour >= lateNightStartHour || hour <= lateNightEndHour {
			payload.ImpulseIndicators = append(payload.ImpulseIndicators, ImpulseIndicator{
				Amount:  r.TotalAmount,
				Store:   store,
				Time:    when,
				Trigger: TriggerLateNight,
			})
			totalImpulse += r.TotalAmount
		}
	}
	payload.TotalImpulseSpending = aggregate.Round2(totalImpulse)

	payload.PeakSpendingTimes = peakSpendingTimes(timeSlots)
	payload.FrequentTriggerVendors = triggerVendors(vendorVisits)
	payload.QuickSuccessionPurchases = rapidSequences(qualifying)
	payload.Insights = impulseInsights(payload)

	return payload
}

// slotStats accumulates one day-of-week/hour bucket.
type slotStats struct {
	total float64
	count int
}

// peakSpendingTimes ranks day-of-week/hour buckets with at least two
// observations by frequency times average amount.
func peakSpendingTimes(slots map[string]*slotStats) []PeakTimeSlot {
	peaks := make([]PeakTimeSlot, 0)
	for _, key := range aggregate.SortedKeys(slots) {
		slot := slots[key]
		if slot.count < 2 {
			continue
		}
		var day, hour int
		if _, err := fmt.Sscanf(key, "%d_%d", &day, &hour); err != nil {
			continue
		}
		peaks = append(peaks, PeakTimeSlot{
			DayOfWeek: day,
			Hour:      hour,
			AvgAmount: aggregate.Round2(slot.total / float64(slot.count)),
			Frequency: slot.count,
			DayName:   dayNames[day],
		})
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		return float64(peaks[i].Frequency)*peaks[i].AvgAmount > float64(peaks[j].Frequency)*peaks[j].AvgAmount
	})
	if len(peaks) > 10 {
		peaks = peaks[:10]
	}
	return peaks
}

func triggerVendors(visits map[string]int) []TriggerVendor {
	vendors := make([]TriggerVendor, 0)
	for _, vendor := range aggregate.SortedKeys(visits) {
		if visits[vendor] >= triggerVendorVisits {
			vendors = append(vendors, TriggerVendor{Vendor: vendor, VisitCount: visits[vendor]})
		}
	}
	sort.SliceStable(vendors, func(i, j int) bool {
		return vendors[i].VisitCount > vendors[j].VisitCount
	})
	if len(vendors) > 5 {
		vendors = vendors[:5]
	}
	return vendors
}

// rapidSequences scans chronologically adjacent pairs only, not all
// pairs: each receipt is compared with its immediate predecessor.
func rapidSequences(sorted []model.Receipt) []RapidSequence {
	sequences := make([]RapidSequence, 0)
	for i := 1; i < len(sorted); i++ {
		previous, current := sorted[i-1], sorted[i]
		gapHours := current.Timestamp.Sub(previous.Timestamp).Hours()
		combined := previous.TotalAmount + current.TotalAmount
		if gapHours <= rapidGapMaxHours && combined > rapidPairMinAmount {
			sequences = append(sequences, RapidSequence{
				FirstAmount:  previous.TotalAmount,
				SecondAmount: current.TotalAmount,
				Total:        aggregate.Round2(combined),
				TimeGapHours: aggregate.Round1(gapHours),
				Stores:       []string{aggregate.VendorKey(previous.Vendor), aggregate.VendorKey(current.Vendor)},
			})
		}
	}
	return sequences
}

func impulseInsights(p *ImpulsePayload) []string {
	insights := make([]string, 0)

	if len(p.ImpulseIndicators) > 0 {
		insights = append(insights, fmt.Sprintf("⚡ %d potential impulse purchases detected ($%.2f)",
			len(p.ImpulseIndicators), p.TotalImpulseSpending))
	}

	if len(p.PeakSpendingTimes) > 0 {
		top := p.PeakSpendingTimes[0]
		insights = append(insights, fmt.Sprintf("⏰ Peak spending: %ss at %02d:00 ($%.2f avg)",
			top.DayName, top.Hour, top.AvgAmount))
	}

	if len(p.FrequentTriggerVendors) > 0 {
		top := p.FrequentTriggerVendors[0]
		insights = append(insights, fmt.Sprintf("🎯 Trigger location: %s (%d visits)", top.Vendor, top.VisitCount))
	}

	if len(p.QuickSuccessionPurchases) > 0 {
		var total float64
		for _, s := range p.QuickSuccessionPurchases {
			total += s.Total
		}
		insights = append(insights, fmt.Sprintf("🔄 %d rapid purchase sequences ($%.2f total)",
			len(p.QuickSuccessionPurchases), total))
	}

	if len(insights) == 0 {
		insights = append(insights, "No impulse spending patterns detected")
	}

	return insights
}
