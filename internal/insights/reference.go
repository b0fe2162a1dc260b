package insights

// ServiceCategory groups vendors offering substitutable services.
// Matching is substring-based on the normalized vendor key; a vendor
// belongs to at most one category, first match wins, so the table order
// is significant.
type ServiceCategory struct {
	Name     string
	Label    string
	Category string
	Keywords []string
	MinCost  float64
	MaxCost  float64
}

var serviceCategories = []ServiceCategory{
	{
		Name:     "streaming",
		Label:    "Streaming",
		Category: "entertainment",
		Keywords: []string{
			"netflix", "hulu", "disney", "disney+", "prime video", "amazon prime",
			"spotify", "apple music", "youtube", "peacock", "paramount", "hbo", "max",
		},
		MinCost: 5.99,
		MaxCost: 19.99,
	},
	{
		Name:     "fitness",
		Label:    "Fitness",
		Category: "fitness",
		Keywords: []string{
			"gym", "fitness", "planet fitness", "la fitness", "anytime fitness",
			"peloton", "yoga", "pilates", "crossfit", "lifetime",
		},
		MinCost: 9.99,
		MaxCost: 89.99,
	},
	{
		Name:     "food_delivery",
		Label:    "Food Delivery",
		Category: "food",
		Keywords: []string{
			"doordash", "uber eats", "grubhub", "postmates", "instacart",
			"food delivery", "delivery",
		},
		MinCost: 15.00,
		MaxCost: 50.00,
	},
	{
		Name:     "cloud_storage",
		Label:    "Cloud Storage",
		Category: "utilities",
		Keywords: []string{"dropbox", "google drive", "icloud", "onedrive", "box", "storage"},
		MinCost:  0.99,
		MaxCost:  19.99,
	},
	{
		Name:     "retail",
		Label:    "Retail",
		Category: "shopping",
		Keywords: []string{"amazon", "walmart", "target", "costco", "best buy", "home depot"},
		MinCost:  20.00,
		MaxCost:  200.00,
	},
	{
		Name:     "coffee",
		Label:    "Coffee",
		Category: "food",
		Keywords: []string{"starbucks", "dunkin", "coffee", "cafe", "espresso"},
		MinCost:  3.00,
		MaxCost:  8.00,
	},
}

// shelfLives maps a food category to its assumed shelf life in days.
var shelfLives = map[string]int{
	"dairy": 7, "milk": 7, "cheese": 14,
	"meat": 3, "chicken": 2, "beef": 3, "fish": 2,
	"vegetables": 7, "fruits": 5, "berries": 3,
	"bread": 5, "bakery": 3,
	"pantry": 365, "canned": 730, "dry goods": 365,
	"frozen": 90, "ice cream": 60,
	"snacks": 180, "chips": 60,
}

// defaultShelfLife is assumed for food items with no category match.
const defaultShelfLife = 30

// foodKeyword maps a food category to item-name keywords, used when the
// item carries no explicit category. Order matters: first match wins.
type foodKeyword struct {
	category string
	keywords []string
}

var foodKeywords = []foodKeyword{
	{"dairy", []string{"milk", "cheese", "yogurt", "butter", "cream"}},
	{"meat", []string{"chicken", "beef", "pork", "fish", "salmon", "turkey"}},
	{"vegetables", []string{"carrot", "broccoli", "spinach", "lettuce", "tomato", "onion"}},
	{"fruits", []string{"apple", "banana", "orange", "berries", "grapes"}},
	{"bread", []string{"bread", "bagel", "muffin", "rolls"}},
	{"snacks", []string{"chips", "crackers", "cookies", "candy"}},
}

// groceryIndicators identify grocery stores by vendor name.
var groceryIndicators = []string{
	"market", "grocery", "food", "fresh", "super", "whole foods", "trader joe",
}

// essentialCategories mark spend that counts as a need rather than a want.
var essentialCategories = map[string]bool{
	"grocery":   true,
	"utilities": true,
	"health":    true,
	"gas":       true,
	"transport": true,
}
