// internal/interpreter/interpreter_test.go
package interpreter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/models"
)

// ==========================================
// Helpers
// ==========================================

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

type fakeCompleter struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	f.calls++
	f.lastPrompt = systemPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// ==========================================
// Rule-Based Parser Tests
// ==========================================

func TestFallbackParse(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name  string
		query string
		want  models.ParsedQuery
	}{
		{
			name:  "rooms with k-suffix upper bound",
			query: "rooms under 15k",
			want: models.ParsedQuery{
				Type:     strPtr("room"),
				MaxPrice: intPtr(15000),
				Keywords: []string{},
			},
		},
		{
			name:  "bare small number means thousands",
			query: "flat under 20",
			want: models.ParsedQuery{
				Type:     strPtr("flat"),
				MaxPrice: intPtr(20000),
				Keywords: []string{},
			},
		},
		{
			name:  "full amount kept as is",
			query: "apartment below 25000",
			want: models.ParsedQuery{
				Type:     strPtr("apartment"),
				MaxPrice: intPtr(25000),
				Keywords: []string{},
			},
		},
		{
			name:  "lower bound phrasing",
			query: "flats over 30k in lalitpur",
			want: models.ParsedQuery{
				Location: strPtr("lalitpur"),
				Type:     strPtr("flat"),
				MinPrice: intPtr(30000),
				Keywords: []string{},
			},
		},
		{
			name:  "range with both suffixes",
			query: "room in baneshwor 10k to 20k",
			want: models.ParsedQuery{
				Location: strPtr("baneshwor"),
				Type:     strPtr("room"),
				MinPrice: intPtr(10000),
				MaxPrice: intPtr(20000),
				Keywords: []string{},
			},
		},
		{
			name:  "reversed range is swapped",
			query: "flat 25k to 12k",
			want: models.ParsedQuery{
				Type:     strPtr("flat"),
				MinPrice: intPtr(12000),
				MaxPrice: intPtr(25000),
				Keywords: []string{},
			},
		},
		{
			name:  "range wins over single-bound words",
			query: "apartment between under 10k and 18k",
			want: models.ParsedQuery{
				Type:     strPtr("apartment"),
				MinPrice: intPtr(10000),
				MaxPrice: intPtr(18000),
				Keywords: []string{},
			},
		},
		{
			name:  "rs prefix accepted",
			query: "room under rs. 9000",
			want: models.ParsedQuery{
				Type:     strPtr("room"),
				MaxPrice: intPtr(9000),
				Keywords: []string{},
			},
		},
		{
			name:  "decimal k amount",
			query: "flat under 12.5k",
			want: models.ParsedQuery{
				Type:     strPtr("flat"),
				MaxPrice: intPtr(12500),
				Keywords: []string{},
			},
		},
		{
			name:  "budget word sets default max and keyword",
			query: "cheap rooms in kirtipur",
			want: models.ParsedQuery{
				Location: strPtr("kirtipur"),
				Type:     strPtr("room"),
				MaxPrice: intPtr(15000),
				Keywords: []string{"cheap"},
			},
		},
		{
			name:  "explicit price beats budget default",
			query: "cheap rooms under 8k",
			want: models.ParsedQuery{
				Type:     strPtr("room"),
				MaxPrice: intPtr(8000),
				Keywords: []string{"cheap"},
			},
		},
		{
			name:  "luxury word sets default min",
			query: "luxury apartment in budhanilkantha",
			want: models.ParsedQuery{
				Location: strPtr("budhanilkantha"),
				Type:     strPtr("apartment"),
				MinPrice: intPtr(20000),
				Keywords: []string{"luxury"},
			},
		},
		{
			name:  "first gazetteer hit wins",
			query: "kathmandu or pokhara flat",
			want: models.ParsedQuery{
				Location: strPtr("kathmandu"),
				Type:     strPtr("flat"),
				Keywords: []string{},
			},
		},
		{
			name:  "room beats apartment when both present",
			query: "room in an apartment building",
			want: models.ParsedQuery{
				Type:     strPtr("room"),
				Keywords: []string{},
			},
		},
		{
			name:  "unreadable query degrades to all nil",
			query: "something pleasant please",
			want: models.ParsedQuery{
				Keywords: []string{},
			},
		},
		{
			name:  "empty query",
			query: "   ",
			want: models.ParsedQuery{
				Keywords: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackParse(tt.query, vocab)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackParseUsesVocabularyTypes(t *testing.T) {
	vocab := DefaultVocabulary()
	vocab.PropertyTypes = []string{"hostel", "room"}

	got := FallbackParse("hostel rooms in patan", vocab)

	require.NotNil(t, got.Type)
	assert.Equal(t, "hostel", *got.Type)
}

func TestFallbackParseIsDeterministic(t *testing.T) {
	vocab := DefaultVocabulary()
	query := "cheap flats in patan 10k to 20k"

	first := FallbackParse(query, vocab)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, FallbackParse(query, vocab))
	}
}

func TestNormalizePrice(t *testing.T) {
	assert.Equal(t, 15000, normalizePrice("15", "k"))
	assert.Equal(t, 15000, normalizePrice("15", ""))
	assert.Equal(t, 15000, normalizePrice("15000", ""))
	assert.Equal(t, 12500, normalizePrice("12.5", "k"))
	assert.Equal(t, 100, normalizePrice("100", ""))
	assert.Equal(t, 99000, normalizePrice("99", ""))
	assert.Equal(t, 0, normalizePrice("not-a-number", ""))
}

// ==========================================
// Model Output Decoding Tests
// ==========================================

func TestDecodeModelOutput(t *testing.T) {
	t.Run("plain JSON object", func(t *testing.T) {
		got, err := decodeModelOutput(`{"location":"patan","type":"flat","minPrice":10000,"maxPrice":20000,"keywords":["sunny"]}`, DefaultVocabulary())
		require.NoError(t, err)
		assert.Equal(t, "patan", *got.Location)
		assert.Equal(t, "flat", *got.Type)
		assert.Equal(t, 10000, *got.MinPrice)
		assert.Equal(t, 20000, *got.MaxPrice)
		assert.Equal(t, []string{"sunny"}, got.Keywords)
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		raw := "```json\n{\"location\":null,\"type\":\"room\",\"minPrice\":null,\"maxPrice\":15000,\"keywords\":[]}\n```"
		got, err := decodeModelOutput(raw, DefaultVocabulary())
		require.NoError(t, err)
		assert.Nil(t, got.Location)
		assert.Equal(t, "room", *got.Type)
		assert.Equal(t, 15000, *got.MaxPrice)
		assert.Empty(t, got.Keywords)
	})

	t.Run("JSON buried in prose", func(t *testing.T) {
		raw := `Here are the parameters: {"location":"boudha","type":null,"minPrice":null,"maxPrice":null,"keywords":[]} hope that helps`
		got, err := decodeModelOutput(raw, DefaultVocabulary())
		require.NoError(t, err)
		assert.Equal(t, "boudha", *got.Location)
		assert.Nil(t, got.Type)
	})

	t.Run("unknown type is dropped", func(t *testing.T) {
		got, err := decodeModelOutput(`{"type":"castle","keywords":[]}`, DefaultVocabulary())
		require.NoError(t, err)
		assert.Nil(t, got.Type)
	})

	t.Run("type validated against the vocabulary", func(t *testing.T) {
		vocab := DefaultVocabulary()
		vocab.PropertyTypes = []string{"hostel"}
		got, err := decodeModelOutput(`{"type":"hostel","keywords":[]}`, vocab)
		require.NoError(t, err)
		require.NotNil(t, got.Type)
		assert.Equal(t, "hostel", *got.Type)
	})

	t.Run("type is lowercased", func(t *testing.T) {
		got, err := decodeModelOutput(`{"type":"Flat","keywords":[]}`, DefaultVocabulary())
		require.NoError(t, err)
		assert.Equal(t, "flat", *got.Type)
	})

	t.Run("inverted bounds are swapped", func(t *testing.T) {
		got, err := decodeModelOutput(`{"minPrice":30000,"maxPrice":10000}`, DefaultVocabulary())
		require.NoError(t, err)
		assert.Equal(t, 10000, *got.MinPrice)
		assert.Equal(t, 30000, *got.MaxPrice)
	})

	t.Run("missing keywords becomes empty slice", func(t *testing.T) {
		got, err := decodeModelOutput(`{"location":"patan"}`, DefaultVocabulary())
		require.NoError(t, err)
		assert.NotNil(t, got.Keywords)
		assert.Empty(t, got.Keywords)
	})

	t.Run("non-JSON output errors", func(t *testing.T) {
		_, err := decodeModelOutput("I could not parse that query, sorry.", DefaultVocabulary())
		assert.Error(t, err)
	})
}

// ==========================================
// Interpreter Orchestration Tests
// ==========================================

func TestInterpretUsesModelWhenHealthy(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"location":"patan","type":"flat","minPrice":null,"maxPrice":20000,"keywords":[]}`,
	}
	interp := New(completer, DefaultVocabulary(), logger.NewTestLogger(t))

	got := interp.Interpret(context.Background(), "flat in patan under 20k")

	assert.Equal(t, 1, completer.calls)
	assert.Equal(t, "patan", *got.Location)
	assert.Equal(t, "flat", *got.Type)
	assert.Equal(t, 20000, *got.MaxPrice)
}

func TestInterpretPromptCarriesVocabulary(t *testing.T) {
	completer := &fakeCompleter{response: `{"keywords":[]}`}
	vocab := DefaultVocabulary()
	vocab.PropertyTypes = []string{"hostel"}
	interp := New(completer, vocab, logger.NewTestLogger(t))

	interp.Interpret(context.Background(), "anything")

	assert.Contains(t, completer.lastPrompt, `"hostel"`)
	assert.Contains(t, completer.lastPrompt, "kathmandu")
}

func TestInterpretFallsBackOnModelError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	interp := New(completer, DefaultVocabulary(), logger.NewTestLogger(t))

	got := interp.Interpret(context.Background(), "rooms under 15k")

	require.NotNil(t, got.Type)
	assert.Equal(t, "room", *got.Type)
	assert.Equal(t, 15000, *got.MaxPrice)
	assert.Nil(t, got.Location)
	assert.Nil(t, got.MinPrice)
	assert.Empty(t, got.Keywords)
}

func TestInterpretFallsBackOnTimeout(t *testing.T) {
	completer := &fakeCompleter{err: ErrLLMTimeout}
	interp := New(completer, DefaultVocabulary(), logger.NewTestLogger(t))

	got := interp.Interpret(context.Background(), "flat in lalitpur")

	assert.Equal(t, "lalitpur", *got.Location)
	assert.Equal(t, "flat", *got.Type)
}

func TestInterpretFallsBackOnGarbageOutput(t *testing.T) {
	completer := &fakeCompleter{response: "certainly! searching now..."}
	interp := New(completer, DefaultVocabulary(), logger.NewTestLogger(t))

	got := interp.Interpret(context.Background(), "cheap rooms in kirtipur")

	assert.Equal(t, "kirtipur", *got.Location)
	assert.Equal(t, "room", *got.Type)
	assert.Equal(t, 15000, *got.MaxPrice)
}

func TestInterpretWithoutCompleter(t *testing.T) {
	interp := New(nil, DefaultVocabulary(), logger.NewTestLogger(t))

	got := interp.Interpret(context.Background(), "apartments over 30k in boudha")

	assert.Equal(t, "boudha", *got.Location)
	assert.Equal(t, "apartment", *got.Type)
	assert.Equal(t, 30000, *got.MinPrice)
}
