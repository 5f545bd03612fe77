// internal/interpreter/fallback.go
package interpreter

import (
	"regexp"
	"strconv"
	"strings"

	"basobaas-search/internal/models"
)

// Regex families for the three price phrasings the fallback parser
// understands. A trailing "k" multiplies by a thousand, as does a bare
// value below 100 ("under 15" means 15000, not NPR 15).
var (
	rangePriceRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k?)\s*(?:to|and|-)\s*(\d+(?:\.\d+)?)\s*(k?)`)
	underPriceRe = regexp.MustCompile(`(?:under|below|less\s+than)\s+(?:rs\.?\s*|npr\s*)?(\d+(?:\.\d+)?)\s*(k?)`)
	overPriceRe  = regexp.MustCompile(`(?:over|above|more\s+than)\s+(?:rs\.?\s*|npr\s*)?(\d+(?:\.\d+)?)\s*(k?)`)
)

var budgetCheapWords = []string{"cheap", "affordable", "budget"}
var budgetLuxuryWords = []string{"luxury", "premium", "expensive"}

// FallbackParse is the deterministic rule-based interpreter path. It is
// pure: the same input always yields the same ParsedQuery, and it never
// fails; a query it cannot read degrades to all-nil fields.
func FallbackParse(query string, vocab Vocabulary) models.ParsedQuery {
	q := strings.ToLower(strings.TrimSpace(query))

	parsed := models.ParsedQuery{Keywords: []string{}}
	if q == "" {
		return parsed
	}

	// Gazetteer scan, first match wins.
	for _, city := range vocab.Gazetteer {
		if strings.Contains(q, city) {
			c := city
			parsed.Location = &c
			break
		}
	}

	// Type by substring, in vocabulary order. "rooms" contains "room",
	// so plurals come free.
	for _, t := range vocab.PropertyTypes {
		if strings.Contains(q, t) {
			pt := t
			parsed.Type = &pt
			break
		}
	}

	// Price phrases. The two-number range form is checked first so that
	// "10k to 20k" is not half-consumed by the single-bound families.
	if m := rangePriceRe.FindStringSubmatch(q); m != nil {
		lo := normalizePrice(m[1], m[2])
		hi := normalizePrice(m[3], m[4])
		if lo > hi {
			lo, hi = hi, lo
		}
		parsed.MinPrice = &lo
		parsed.MaxPrice = &hi
	} else {
		if m := underPriceRe.FindStringSubmatch(q); m != nil {
			v := normalizePrice(m[1], m[2])
			parsed.MaxPrice = &v
		}
		if m := overPriceRe.FindStringSubmatch(q); m != nil {
			v := normalizePrice(m[1], m[2])
			parsed.MinPrice = &v
		}
	}

	// Budget keywords fill in a bound only when the query gave none.
	for _, w := range budgetCheapWords {
		if strings.Contains(q, w) {
			parsed.Keywords = append(parsed.Keywords, w)
			if parsed.MaxPrice == nil {
				v := vocab.BudgetMaxDefault
				parsed.MaxPrice = &v
			}
		}
	}
	for _, w := range budgetLuxuryWords {
		if strings.Contains(q, w) {
			parsed.Keywords = append(parsed.Keywords, w)
			if parsed.MinPrice == nil {
				v := vocab.LuxuryMinDefault
				parsed.MinPrice = &v
			}
		}
	}

	return parsed
}

// normalizePrice converts a matched number and optional k-suffix into a
// whole NPR amount.
func normalizePrice(num, suffix string) int {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if suffix == "k" || v < 100 {
		v *= 1000
	}
	return int(v)
}
