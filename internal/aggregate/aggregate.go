package aggregate

import (
	"sort"
	"strings"

	"github.com/raseed-app/raseed/internal/model"
)

// VendorKey normalizes a vendor name for grouping: lower-cased,
// apostrophes removed, hyphens and underscores folded to spaces.
func VendorKey(vendor string) string {
	key := strings.ToLower(strings.TrimSpace(vendor))
	key = strings.ReplaceAll(key, "'", "")
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.ReplaceAll(key, "_", " ")
	return strings.Join(strings.Fields(key), " ")
}

// VendorSeries maps a normalized vendor key to its transactions in
// chronological order.
type VendorSeries map[string][]model.Receipt

// BuildVendorSeries groups the qualifying receipts (positive total,
// usable timestamp, inside the window) by vendor key and sorts each
// series chronologically. Order of the input slice does not matter.
func BuildVendorSeries(receipts []model.Receipt, w Window) VendorSeries {
	series := make(VendorSeries)
	for _, r := range receipts {
		if !r.Countable() || !r.HasTimestamp() || !w.Contains(r.Timestamp) {
			continue
		}
		key := VendorKey(r.Vendor)
		if key == "" {
			continue
		}
		series[key] = append(series[key], r)
	}
	for key := range series {
		s := series[key]
		sort.Slice(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
		series[key] = s
	}
	return series
}

// CategoryTotal holds the aggregate for one category.
type CategoryTotal struct {
	Total float64
	Count int
}

// ByCategory sums countable receipts per category. Receipts without a
// timestamp are included: category totals are unconditioned views.
// Empty categories bucket under "other".
func ByCategory(receipts []model.Receipt) map[string]CategoryTotal {
	totals := make(map[string]CategoryTotal)
	for _, r := range receipts {
		if !r.Countable() {
			continue
		}
		cat := r.Category
		if cat == "" {
			cat = "other"
		}
		t := totals[cat]
		t.Total += r.TotalAmount
		t.Count++
		totals[cat] = t
	}
	return totals
}

// ByMonth sums countable receipts per YYYY-MM bucket. Receipts without
// a resolvable timestamp are silently excluded.
func ByMonth(receipts []model.Receipt) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range receipts {
		if !r.Countable() || !r.HasTimestamp() {
			continue
		}
		totals[r.MonthKey()] += r.TotalAmount
	}
	return totals
}

// InWindow filters receipts down to those with a timestamp inside w.
func InWindow(receipts []model.Receipt, w Window) []model.Receipt {
	var out []model.Receipt
	for _, r := range receipts {
		if r.HasTimestamp() && w.Contains(r.Timestamp) {
			out = append(out, r)
		}
	}
	return out
}

// SortedKeys returns map keys in lexical order, for deterministic output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
