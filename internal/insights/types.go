// Package insights implements the receipt analytics detectors: recurrence,
// redundancy, impulse, waste-risk, need/want split and the composite
// financial health score. Every detector is a pure function of a receipt
// slice, a lookback window and the static reference tables; the Engine
// wires them to a receipt source and an optional advisory generator.
package insights

// Payload type discriminators. Every detector result carries one so
// callers can treat payloads polymorphically.
const (
	TypeRecurrence  = "recurring_patterns"
	TypeRedundancy  = "overlap_analysis"
	TypeImpulse     = "micro_moment_analysis"
	TypeWaste       = "pantry_analysis"
	TypeNeedWant    = "need_vs_want_analysis"
	TypeHealthScore = "fhs_analysis"
)

// Frequency labels a recurrence cadence.
type Frequency string

// Recognized purchase cadences.
const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiWeekly  Frequency = "bi-weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyIrregular Frequency = "irregular"
)

// Confidence grades how strongly a pattern matches.
type Confidence string

// Confidence levels, derived from the classification rules rather than
// asserted.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SubscriptionCandidate is a vendor whose purchase history resembles a
// subscription or regular purchase.
type SubscriptionCandidate struct {
	Vendor           string     `json:"vendor"`
	Frequency        Frequency  `json:"frequency"`
	Confidence       Confidence `json:"confidence"`
	LastCharge       string     `json:"last_charge"`
	AvgAmount        float64    `json:"avg_amount"`
	AmountVariance   float64    `json:"amount_variance"`
	AnnualCost       float64    `json:"annual_cost"`
	MonthsActive     float64    `json:"months_active"`
	AvgIntervalDays  float64    `json:"avg_interval_days"`
	ConsistencyScore float64    `json:"consistency_score"`
	PurchaseCount    int        `json:"purchase_count"`
}

// RecurringVendor summarizes repeat business with one vendor.
type RecurringVendor struct {
	Vendor          string  `json:"vendor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
	TotalSpent      float64 `json:"total_spent"`
	AvgAmount       float64 `json:"avg_amount"`
	PurchaseCount   int     `json:"purchase_count"`
}

// RecurringItem summarizes a frequently repurchased line item.
type RecurringItem struct {
	Item          string  `json:"item"`
	TotalQuantity float64 `json:"total_quantity"`
	AvgPrice      float64 `json:"avg_price"`
	TotalSpent    float64 `json:"total_spent"`
	PurchaseCount int     `json:"purchase_count"`
}

// RecurrencePayload is the recurrence detector result.
type RecurrencePayload struct {
	Type                   string                  `json:"type"`
	UserID                 string                  `json:"user_id"`
	RecurringVendors       []RecurringVendor       `json:"recurring_vendors"`
	RecurringItems         []RecurringItem         `json:"recurring_items"`
	SubscriptionCandidates []SubscriptionCandidate `json:"subscription_candidates"`
	MonthlySpendingTrend   map[string]float64      `json:"monthly_spending_trend"`
	Insights               []string                `json:"insights"`
}

// ServiceVendorCost is one vendor's share of an overlapping service group.
type ServiceVendorCost struct {
	Vendor            string  `json:"vendor"`
	AvgAmount         float64 `json:"avg_amount"`
	MonthlyCost       float64 `json:"monthly_cost"`
	FrequencyPerMonth float64 `json:"frequency_per_month"`
	TransactionCount  int     `json:"transaction_count"`
}

// ServiceOverlap is a semantic service group with redundant vendors.
type ServiceOverlap struct {
	Category         string              `json:"category"`
	Recommendation   string              `json:"recommendation"`
	OverlapSeverity  string              `json:"overlap_severity"`
	Services         []ServiceVendorCost `json:"services"`
	TotalMonthlyCost float64             `json:"total_monthly_cost"`
	PotentialSavings float64             `json:"potential_savings"`
}

// CategoryVendorShare is one vendor's share of a plain category overlap.
type CategoryVendorShare struct {
	Vendor     string  `json:"vendor"`
	TotalSpent float64 `json:"total_spent"`
	Percentage float64 `json:"percentage"`
	Frequency  int     `json:"frequency"`
}

// CategoryOverlap is a plain-category overlap with its flat savings
// heuristic, independent of the service-group estimate.
type CategoryOverlap struct {
	Category         string                `json:"category"`
	Recommendation   string                `json:"recommendation"`
	Vendors          []CategoryVendorShare `json:"vendors"`
	TotalSpending    float64               `json:"total_spending"`
	PotentialSavings float64               `json:"potential_savings"`
	VendorCount      int                   `json:"vendor_count"`
}

// RedundancyMetadata describes the analyzed dataset.
type RedundancyMetadata struct {
	GeneratedAt        string `json:"generated_at"`
	ReceiptsAnalyzed   int    `json:"receipts_analyzed"`
	UniqueVendors      int    `json:"unique_vendors"`
	AnalysisPeriodDays int    `json:"analysis_period_days"`
}

// RedundancyPayload is the redundancy detector result. The two savings
// estimates are independent and additive; they are reported separately
// and never reconciled against each other.
type RedundancyPayload struct {
	Type                   string                  `json:"type"`
	UserID                 string                  `json:"user_id"`
	InsightSummary         string                  `json:"insight_summary"`
	SubscriptionCandidates []SubscriptionCandidate `json:"subscription_candidates"`
	OverlappingServices    []ServiceOverlap        `json:"overlapping_services"`
	CategoryOverlaps       []CategoryOverlap       `json:"category_overlaps"`
	Insights               []string                `json:"insights"`
	TotalPotentialSavings  float64                 `json:"total_potential_savings"`
	Metadata               RedundancyMetadata      `json:"analysis_metadata"`
}

// ImpulseIndicator is a single transaction flagged by a trigger rule.
// Both rules may flag the same transaction independently.
type ImpulseIndicator struct {
	Store      string  `json:"store"`
	Time       string  `json:"time"`
	Trigger    string  `json:"trigger"`
	Amount     float64 `json:"amount"`
	ItemsCount int     `json:"items_count,omitempty"`
}

// Impulse trigger rule names.
const (
	TriggerFewItemsHighValue = "few_items_high_value"
	TriggerLateNight         = "late_night_purchase"
)

// PeakTimeSlot is a day-of-week and hour bucket with repeated spending.
type PeakTimeSlot struct {
	DayName   string  `json:"day_name"`
	AvgAmount float64 `json:"avg_amount"`
	DayOfWeek int     `json:"day_of_week"`
	Hour      int     `json:"hour"`
	Frequency int     `json:"frequency"`
}

// TriggerVendor is a vendor visited often enough to act as a spending
// trigger.
type TriggerVendor struct {
	Vendor     string `json:"vendor"`
	VisitCount int    `json:"visit_count"`
}

// RapidSequence is a pair of chronologically adjacent purchases within
// two hours totaling a significant amount.
type RapidSequence struct {
	Stores       []string `json:"stores"`
	FirstAmount  float64  `json:"first_amount"`
	SecondAmount float64  `json:"second_amount"`
	Total        float64  `json:"total"`
	TimeGapHours float64  `json:"time_gap_hours"`
}

// ImpulsePayload is the impulse detector result.
type ImpulsePayload struct {
	Type                     string             `json:"type"`
	UserID                   string             `json:"user_id"`
	ImpulseIndicators        []ImpulseIndicator `json:"impulse_indicators"`
	PeakSpendingTimes        []PeakTimeSlot     `json:"peak_spending_times"`
	FrequentTriggerVendors   []TriggerVendor    `json:"frequent_trigger_vendors"`
	QuickSuccessionPurchases []RapidSequence    `json:"quick_succession_purchases"`
	Insights                 []string           `json:"insights"`
	TotalImpulseSpending     float64            `json:"total_impulse_spending"`
}

// WasteRiskItem is a food purchase at risk of going to waste.
type WasteRiskItem struct {
	Item              string  `json:"item"`
	Category          string  `json:"category"`
	WasteRisk         string  `json:"waste_risk"`
	AmountSpent       float64 `json:"amount_spent"`
	TotalSpent        float64 `json:"total_spent"`
	DaysSincePurchase int     `json:"days_since_purchase"`
	ShelfLifeDays     int     `json:"shelf_life"`
	PurchaseFrequency int     `json:"purchase_frequency"`
}

// Waste risk bands.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// FrequentPurchase is an item bought often enough to suggest overstocking.
type FrequentPurchase struct {
	Item                string  `json:"item"`
	Category            string  `json:"category"`
	TotalSpent          float64 `json:"total_spent"`
	AvgPurchaseInterval float64 `json:"avg_purchase_interval"`
	PurchaseCount       int     `json:"purchase_count"`
}

// CategoryWaste rolls high-risk spend up by food category.
type CategoryWaste struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Items    int     `json:"items"`
}

// WastePayload is the waste-risk estimator result.
type WastePayload struct {
	Type                  string             `json:"type"`
	UserID                string             `json:"user_id"`
	WasteRiskItems        []WasteRiskItem    `json:"waste_risk_items"`
	FrequentPurchases     []FrequentPurchase `json:"frequent_purchases"`
	WasteByCategory       []CategoryWaste    `json:"waste_by_category"`
	Recommendations       []string           `json:"recommendations"`
	EstimatedMonthlyWaste float64            `json:"estimated_monthly_waste"`
	TotalFoodSpending     float64            `json:"total_food_spending"`
}

// MonthlyNeedWant is one month's essential/non-essential split.
type MonthlyNeedWant struct {
	Month               string   `json:"month"`
	TopCategories       []string `json:"top_categories"`
	EssentialAmount     float64  `json:"essential_amount"`
	NonEssentialAmount  float64  `json:"non_essential_amount"`
	TotalAmount         float64  `json:"total_amount"`
	EssentialPercentage float64  `json:"essential_percentage"`
	ReceiptCount        int      `json:"receipt_count"`
}

// NeedWantSummary totals the split over the whole window.
type NeedWantSummary struct {
	TotalEssential      float64 `json:"total_essential"`
	TotalNonEssential   float64 `json:"total_non_essential"`
	EssentialPercentage float64 `json:"essential_percentage"`
}

// NeedWantBreakdown expresses the split as percentages.
type NeedWantBreakdown struct {
	Essential     float64 `json:"essential"`
	Discretionary float64 `json:"discretionary"`
}

// NeedWantPayload is the need-vs-want analyzer result.
type NeedWantPayload struct {
	Type                  string            `json:"type"`
	UserID                string            `json:"user_id"`
	Summary               NeedWantSummary   `json:"summary"`
	Breakdown             NeedWantBreakdown `json:"breakdown"`
	MonthlyBreakdown      []MonthlyNeedWant `json:"monthly_breakdown"`
	Insights              []string          `json:"insights"`
	EssentialSpending     float64           `json:"essential_spending"`
	DiscretionarySpending float64           `json:"discretionary_spending"`
}

// ScoreBreakdown holds the five weighted sub-scores. Each lies in
// [0, its weight ceiling] and they sum to the reported total.
type ScoreBreakdown struct {
	Savings          int `json:"savings"`
	Essentials       int `json:"essentials"`
	PriceSensitivity int `json:"price_sensitivity"`
	BudgetAdherence  int `json:"budget_adherence"`
	CategoryBalance  int `json:"category_balance"`
}

// HealthIndicator is a labeled status line for the score display.
type HealthIndicator struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthPayload is the health scorer result.
type HealthPayload struct {
	Type             string            `json:"type"`
	UserID           string            `json:"user_id"`
	Category         string            `json:"category"`
	InsightSummary   string            `json:"insight_summary"`
	Breakdown        ScoreBreakdown    `json:"breakdown"`
	HealthIndicators []HealthIndicator `json:"health_indicators"`
	Suggestions      []string          `json:"suggestions"`
	Score            int               `json:"score"`
	FHSScore         int               `json:"fhs_score"`
	TotalSpending    float64           `json:"total_spending"`
	EssentialRatio   float64           `json:"essential_ratio"`
	AvgTransaction   float64           `json:"avg_transaction"`
}
