// Package normalize resolves raw receipt documents into the canonical
// model.Receipt shape. Source documents suffer from schema drift: the
// same logical field arrives under different names and types depending
// on which extractor produced it. The ordered fallback lists below are
// the single place that drift is handled; downstream detectors never
// see raw documents.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raseed-app/raseed/internal/model"
	"github.com/raseed-app/raseed/internal/service"
)

// Ordered field-name fallbacks, most canonical name first.
var (
	idFields        = []string{"id", "receipt_id"}
	userFields      = []string{"user_id", "uid"}
	timestampFields = []string{"timestamp", "date"}
	vendorFields    = []string{"vendor", "store", "store_name"}
	categoryFields  = []string{"category"}
	amountFields    = []string{"total_amount", "amount"}
	itemNameFields  = []string{"name", "item_name"}
)

// Outcome is the per-record normalization result. Normalization never
// fails outright: malformed fields are defaulted and reported as
// problems so callers can observe data quality instead of silently
// absorbing it.
type Outcome struct {
	Receipt  model.Receipt
	Problems []string
}

// Stats aggregates outcomes over a batch.
type Stats struct {
	Total         int
	Usable        int // positive total amount
	MissingTime   int
	MissingVendor int
	Problems      int
}

// Record normalizes a single raw document.
func Record(raw service.RawRecord) Outcome {
	var out Outcome
	if raw == nil {
		out.Problems = append(out.Problems, "nil record")
		return out
	}

	out.Receipt.ID = firstString(raw, idFields)
	out.Receipt.UserID = firstString(raw, userFields)
	out.Receipt.Category = strings.ToLower(strings.TrimSpace(firstString(raw, categoryFields)))

	vendor := strings.TrimSpace(firstString(raw, vendorFields))
	if vendor == "" {
		out.Problems = append(out.Problems, "no vendor field")
	}
	out.Receipt.Vendor = vendor

	if v, ok := firstValue(raw, timestampFields); ok {
		ts := ParseTimestamp(v)
		if ts.IsZero() {
			out.Problems = append(out.Problems, fmt.Sprintf("unparseable timestamp %q", v))
		}
		out.Receipt.Timestamp = ts
	} else {
		out.Problems = append(out.Problems, "no timestamp field")
	}

	if v, ok := firstValue(raw, amountFields); ok {
		amount, err := toFloat(v)
		if err != nil {
			out.Problems = append(out.Problems, fmt.Sprintf("non-numeric amount %q", v))
		}
		out.Receipt.TotalAmount = amount
	}

	out.Receipt.Overspent = safeBool(raw["overspent"])
	out.Receipt.Items = normalizeItems(raw["items"], &out)

	return out
}

// Batch normalizes a slice of raw documents and aggregates stats.
func Batch(records []service.RawRecord) ([]model.Receipt, Stats) {
	receipts := make([]model.Receipt, 0, len(records))
	var stats Stats

	for _, raw := range records {
		out := Record(raw)
		stats.Total++
		if len(out.Problems) > 0 {
			stats.Problems++
		}
		if out.Receipt.Countable() {
			stats.Usable++
		}
		if !out.Receipt.HasTimestamp() {
			stats.MissingTime++
		}
		if out.Receipt.Vendor == "" {
			stats.MissingVendor++
		}
		receipts = append(receipts, out.Receipt)
	}

	return receipts, stats
}

// ParseTimestamp parses the timestamp formats seen in the wild: RFC 3339
// with or without a Z suffix, a space-separated variant, and a bare
// date. Anything else yields the zero time.
func ParseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case nil:
		return time.Time{}
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return time.Time{}
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}

	// Last resort: a date prefix on a longer malformed string.
	if len(s) > 10 {
		if ts, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return ts
		}
	}

	return time.Time{}
}

// SafeFloat converts a loosely-typed numeric value, falling back to def.
func SafeFloat(v any, def float64) float64 {
	f, err := toFloat(v)
	if err != nil {
		return def
	}
	return f
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("parse float: %w", err)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("nil value")
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func normalizeItems(v any, out *Outcome) []model.ReceiptItem {
	rawItems, ok := v.([]any)
	if !ok || len(rawItems) == 0 {
		return nil
	}

	items := make([]model.ReceiptItem, 0, len(rawItems))
	for _, ri := range rawItems {
		m, ok := ri.(map[string]any)
		if !ok {
			out.Problems = append(out.Problems, "non-object line item")
			continue
		}
		item := model.ReceiptItem{
			Name:             strings.ToLower(strings.TrimSpace(firstString(service.RawRecord(m), itemNameFields))),
			Category:         strings.ToLower(strings.TrimSpace(firstString(service.RawRecord(m), categoryFields))),
			Quantity:         SafeFloat(m["quantity"], 1),
			UnitPrice:        SafeFloat(m["unit_price"], 0),
			AboveMarketPrice: safeBool(m["above_market_price"]),
		}
		items = append(items, item)
	}
	return items
}

func safeBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func firstValue(raw service.RawRecord, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstString(raw service.RawRecord, keys []string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
