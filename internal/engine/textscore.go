// internal/engine/textscore.go
package engine

import (
	"regexp"
	"sort"
	"strings"

	"basobaas-search/internal/models"
)

// Text-relevance points. Full-phrase hits dominate, individual word
// hits refine the order among them.
const (
	phraseTitlePoints       = 50
	phraseLocationPoints    = 40
	phraseDescriptionPoints = 30

	wordTitlePoints       = 10
	wordLocationPoints    = 8
	wordDescriptionPoints = 5

	textFeaturedPoints = 5
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases the query, strips non-alphanumeric characters
// from each word and keeps the words longer than two characters.
func Tokenize(query string) []string {
	words := []string{}
	for _, f := range strings.Fields(strings.ToLower(query)) {
		w := nonAlnumRe.ReplaceAllString(f, "")
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// TextRelevance scores how well a candidate's text fields match the
// original query. This is the search-path ranking and is independent of
// the composite scorer.
func TextRelevance(p models.PropertyRecord, originalQuery string, words []string) int {
	query := strings.ToLower(strings.TrimSpace(originalQuery))
	title := strings.ToLower(p.Title)
	location := strings.ToLower(p.Location)
	description := strings.ToLower(p.Description)

	score := 0
	if query != "" {
		if strings.Contains(title, query) {
			score += phraseTitlePoints
		}
		if strings.Contains(location, query) {
			score += phraseLocationPoints
		}
		if strings.Contains(description, query) {
			score += phraseDescriptionPoints
		}
	}

	for _, w := range words {
		if strings.Contains(title, w) {
			score += wordTitlePoints
		}
		if strings.Contains(location, w) {
			score += wordLocationPoints
		}
		if strings.Contains(description, w) {
			score += wordDescriptionPoints
		}
	}

	if p.Featured {
		score += textFeaturedPoints
	}

	return score
}

func sortByScoreDesc(candidates []models.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
