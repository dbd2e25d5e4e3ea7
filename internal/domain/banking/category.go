package banking

import "strings"

// CategoryOthers is assigned when no categorization rule matches.
const CategoryOthers = "Others"

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is evaluated in order; the first matching rule wins.
// Overlapping keywords (a description with both "rent" and "shopping")
// resolve to the earlier rule, and tests pin this order.
var categoryRules = []categoryRule{
	{"Food & Dining", []string{"grocery", "food", "restaurant"}},
	{"Transportation", []string{"fuel", "petrol", "gas"}},
	{"Healthcare", []string{"medical", "pharmacy", "hospital"}},
	{"Income", []string{"salary", "pay"}},
	{"Bills & Utilities", []string{"rent", "emi", "loan"}},
	{"Shopping", []string{"shopping", "amazon", "flipkart", "myntra"}},
	{"Entertainment", []string{"entertainment", "movie", "netflix", "spotify", "hotstar"}},
}

// Categorize assigns a spending category from the transaction description.
// Best-effort keyword heuristic, case-insensitive, falling back to Others.
func Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return CategoryOthers
}
