// internal/interpreter/interpreter.go
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
	"basobaas-search/internal/models"
)

// Interpreter turns a free-text rental query into structured search
// parameters. The language model is the primary path; the rule-based
// parser answers whenever the model is unavailable, times out, or
// returns something unusable. Interpret never fails.
type Interpreter struct {
	completer Completer
	vocab     Vocabulary
	logger    logger.Logger
}

func New(completer Completer, vocab Vocabulary, log logger.Logger) *Interpreter {
	return &Interpreter{
		completer: completer,
		vocab:     vocab,
		logger:    log,
	}
}

// Interpret parses query into a ParsedQuery. The same query always
// yields the same fallback result, so repeated calls are stable even
// when the model path is down.
func (i *Interpreter) Interpret(ctx context.Context, query string) models.ParsedQuery {
	if i.completer == nil {
		metrics.InterpreterFallbacks.WithLabelValues("unconfigured").Inc()
		return FallbackParse(query, i.vocab)
	}

	raw, err := i.completer.Complete(ctx, i.systemPrompt(), query)
	if err != nil {
		reason := "request_failed"
		if errors.Is(err, ErrLLMTimeout) {
			reason = "timeout"
		}
		metrics.InterpreterFallbacks.WithLabelValues(reason).Inc()
		i.logger.Warn("language model unavailable, using rule-based parser", map[string]interface{}{
			"reason": reason,
			"error":  err.Error(),
		})
		return FallbackParse(query, i.vocab)
	}

	parsed, err := decodeModelOutput(raw, i.vocab)
	if err != nil {
		metrics.InterpreterFallbacks.WithLabelValues("parse_failed").Inc()
		i.logger.Warn("unusable model output, using rule-based parser", map[string]interface{}{
			"error": err.Error(),
		})
		return FallbackParse(query, i.vocab)
	}

	return parsed
}

func (i *Interpreter) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You extract rental search parameters from a user query about properties in Nepal.\n")
	b.WriteString("Respond with ONLY a JSON object, no prose, with these keys:\n")
	b.WriteString(`  "location": string or null (a known place name)` + "\n")
	fmt.Fprintf(&b, "  %q: one of %s, or null\n", "type", quotedList(i.vocab.PropertyTypes))
	b.WriteString(`  "minPrice": integer NPR per month or null` + "\n")
	b.WriteString(`  "maxPrice": integer NPR per month or null` + "\n")
	b.WriteString(`  "keywords": array of remaining descriptive words (may be empty)` + "\n\n")

	b.WriteString("Known locations: ")
	b.WriteString(strings.Join(i.vocab.Gazetteer, ", "))
	b.WriteString("\n")
	b.WriteString("Prices like \"15k\" mean 15000. Bare numbers under 100 are thousands.\n")
	fmt.Fprintf(&b, "Words like cheap or budget imply maxPrice %d; luxury or premium imply minPrice %d.\n\n",
		i.vocab.BudgetMaxDefault, i.vocab.LuxuryMinDefault)

	b.WriteString("Examples:\n")
	b.WriteString(`  "rooms under 15k" -> {"location":null,"type":"room","minPrice":null,"maxPrice":15000,"keywords":[]}` + "\n")
	b.WriteString(`  "flat in baneshwor 10k to 20k" -> {"location":"baneshwor","type":"flat","minPrice":10000,"maxPrice":20000,"keywords":[]}` + "\n")
	b.WriteString(`  "sunny apartment near patan" -> {"location":"patan","type":"apartment","minPrice":null,"maxPrice":null,"keywords":["sunny"]}` + "\n")

	return b.String()
}

// modelOutput mirrors the JSON shape the prompt asks for.
type modelOutput struct {
	Location *string  `json:"location"`
	Type     *string  `json:"type"`
	MinPrice *int     `json:"minPrice"`
	MaxPrice *int     `json:"maxPrice"`
	Keywords []string `json:"keywords"`
}

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// decodeModelOutput tolerates markdown fences and surrounding prose
// around the JSON object.
func decodeModelOutput(raw string, vocab Vocabulary) (models.ParsedQuery, error) {
	text := strings.TrimSpace(raw)
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return models.ParsedQuery{}, fmt.Errorf("invalid JSON from model: %w", err)
	}

	parsed := models.ParsedQuery{
		Location: normalizeString(out.Location),
		Type:     normalizeType(out.Type, vocab),
		MinPrice: out.MinPrice,
		MaxPrice: out.MaxPrice,
		Keywords: out.Keywords,
	}
	if parsed.Keywords == nil {
		parsed.Keywords = []string{}
	}
	if parsed.MinPrice != nil && parsed.MaxPrice != nil && *parsed.MinPrice > *parsed.MaxPrice {
		parsed.MinPrice, parsed.MaxPrice = parsed.MaxPrice, parsed.MinPrice
	}
	return parsed, nil
}

func normalizeString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	if v == "" || v == "null" {
		return nil
	}
	return &v
}

func normalizeType(s *string, vocab Vocabulary) *string {
	v := normalizeString(s)
	if v == nil {
		return nil
	}
	for _, t := range vocab.PropertyTypes {
		if *v == t {
			return v
		}
	}
	return nil
}

// quotedList renders a slice as `"a", "b", "c"` for the prompt.
func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = strconv.Quote(it)
	}
	return strings.Join(quoted, ", ")
}
