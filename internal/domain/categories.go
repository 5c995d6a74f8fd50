package domain

// Essential categories cover spending a household cannot realistically cut.
// The partition is supplied as fixed configuration, not learned from data.
var EssentialCategories = map[string]bool{
	"HOUSING":        true,
	"UTILITIES":      true,
	"GROCERIES":      true,
	"HEALTHCARE":     true,
	"INSURANCE":      true,
	"TRANSPORTATION": true,
	"EDUCATION":      true,
	"CHILDCARE":      true,
}

// Discretionary categories are compressible spending.
var DiscretionaryCategories = map[string]bool{
	"DINING":        true,
	"ENTERTAINMENT": true,
	"SHOPPING":      true,
	"TRAVEL":        true,
	"SUBSCRIPTIONS": true,
	"FITNESS":       true,
	"PERSONAL_CARE": true,
	"GIFTS":         true,
	"HOBBIES":       true,
}

// Beneficial sinks are valid reallocation targets even though they are not
// spending categories: moving money into them is always allowed.
var BeneficialSinks = map[string]bool{
	"SAVINGS":      true,
	"DEBT_PAYMENT": true,
	"INVESTMENT":   true,
	"OTHER":        true,
}

// IsEssential reports whether a category belongs to the essential partition
func IsEssential(category string) bool {
	return EssentialCategories[category]
}

// IsBeneficialSink reports whether a category is a valid reallocation sink
func IsBeneficialSink(category string) bool {
	return BeneficialSinks[category]
}
