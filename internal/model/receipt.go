// Package model defines the core domain types shared across the application.
package model

import "time"

// Receipt is the canonical, normalized form of one purchase record.
// Raw documents arrive with inconsistent field names and types; the
// normalize package resolves them into this shape exactly once.
type Receipt struct {
	Timestamp   time.Time // zero when the source timestamp was absent or unparseable
	ID          string
	UserID      string
	Vendor      string // raw vendor text as ingested
	Category    string
	TotalAmount float64
	Overspent   bool // budget-overrun flag set by the ingesting extractor
	Items       []ReceiptItem
}

// ReceiptItem is a single line item on a receipt.
type ReceiptItem struct {
	Name             string
	Category         string
	Quantity         float64
	UnitPrice        float64
	AboveMarketPrice bool
}

// HasTimestamp reports whether the receipt carries a usable timestamp.
// Receipts without one are excluded from time-bucketed analyses but may
// still count toward raw totals.
func (r *Receipt) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// Countable reports whether the receipt participates in monetary
// aggregates. Zero and negative totals are parse-failure defaults.
func (r *Receipt) Countable() bool {
	return r.TotalAmount > 0
}

// MonthKey returns the YYYY-MM bucket for the receipt, or "" when no
// timestamp is available.
func (r *Receipt) MonthKey() string {
	if !r.HasTimestamp() {
		return ""
	}
	return r.Timestamp.Format("2006-01")
}
