// internal/interpreter/config.go
package interpreter

// Vocabulary is the fixed reference data both interpreter paths share:
// the gazetteer fed to the language model and scanned by the fallback
// parser, the recognized property types, and the budget-keyword price
// defaults. Passed in rather than hard-coded so tests can swap it out.
type Vocabulary struct {
	Gazetteer        []string
	PropertyTypes    []string
	BudgetMaxDefault int
	LuxuryMinDefault int
}

// DefaultVocabulary returns the production vocabulary: the rental
// markets the catalog actually covers, NPR budget thresholds. House
// listings are reachable through the structured type filter only, so
// the interpreter does not extract that type from free text.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Gazetteer: []string{
			"kathmandu", "lalitpur", "patan", "bhaktapur", "boudha",
			"baneshwor", "koteshwor", "kirtipur", "budhanilkantha",
			"pokhara", "biratnagar", "birgunj", "butwal", "dharan",
			"hetauda", "itahari", "nepalgunj", "chitwan", "dhangadhi",
		},
		PropertyTypes:    []string{"room", "flat", "apartment"},
		BudgetMaxDefault: 15000,
		LuxuryMinDefault: 20000,
	}
}
