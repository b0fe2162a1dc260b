package model

import "time"

// UserProfile holds the per-user settings and the persisted health score.
type UserProfile struct {
	UpdatedAt        time.Time
	UserID           string
	BudgetMonthly    float64 // 0 means no budget configured
	SavingsPct       float64 // percentage of income saved, 0-100
	PriceSensitivity float64 // 0 (insensitive) to 1 (highly sensitive)
	HealthScore      int     // last persisted composite score, 0-100
}
