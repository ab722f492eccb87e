package brave_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alan-mat/brave"
)

func TestWebSearchRequestValidate(t *testing.T) {
	valid := []brave.WebSearchRequest{
		{Query: "golang"},
		{Query: "golang", Count: brave.Int(20), Offset: brave.Int(9)},
		{Query: "golang", SafeSearch: brave.SafeSearchStrict, Units: brave.UnitsMetric},
		{Query: "golang", Freshness: brave.FreshnessWeek},
		{Query: "golang", Freshness: "2024-01-01to2024-06-30", Country: "DE"},
	}
	for _, r := range valid {
		if err := r.Validate(); err != nil {
			t.Errorf("expected %+v to be valid, got %v", r, err)
		}
	}

	invalid := map[string]brave.WebSearchRequest{
		"q":          {Query: ""},
		"count":      {Query: "golang", Count: brave.Int(21)},
		"offset":     {Query: "golang", Offset: brave.Int(10)},
		"safesearch": {Query: "golang", SafeSearch: "maximum"},
		"units":      {Query: "golang", Units: "parsecs"},
		"freshness":  {Query: "golang", Freshness: "yesterday"},
		"country":    {Query: "golang", Country: "USA"},
	}
	for field, r := range invalid {
		err := r.Validate()
		var vErr *brave.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected validation error for '%s', got %v", field, err)
			continue
		}
		if vErr.Field != field {
			t.Errorf("expected field '%s', got '%s'", field, vErr.Field)
		}
	}
}

func TestWebSearchRequestQueryLimits(t *testing.T) {
	long := brave.WebSearchRequest{Query: strings.Repeat("a", brave.QueryMaxLength+1)}
	if err := long.Validate(); err == nil {
		t.Error("expected error for overlong query")
	}

	wordy := brave.WebSearchRequest{Query: strings.Repeat("go ", brave.QueryMaxWords+1)}
	if err := wordy.Validate(); err == nil {
		t.Error("expected error for query with too many words")
	}
}

func TestSummarizerSearchRequestValidate(t *testing.T) {
	if err := (brave.SummarizerSearchRequest{Key: "abc"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (brave.SummarizerSearchRequest{}).Validate(); err == nil {
		t.Error("expected error for empty key")
	}
}
