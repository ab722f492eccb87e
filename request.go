package brave

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	QueryMaxLength = 400
	QueryMaxWords  = 50
	CountMax       = 20
	OffsetMax      = 9
)

// Request is a typed request value for one endpoint. Fields are mapped to wire
// parameters through `query` and `default` struct tags.
type Request interface {
	Validate() error
}

type SafeSearch string

const (
	SafeSearchOff      SafeSearch = "off"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchStrict   SafeSearch = "strict"
)

type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Freshness shorthands; a custom range is written as YYYY-MM-DDtoYYYY-MM-DD.
const (
	FreshnessDay   = "pd"
	FreshnessWeek  = "pw"
	FreshnessMonth = "pm"
	FreshnessYear  = "py"
)

var freshnessRange = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}to\d{4}-\d{2}-\d{2}$`)

// WebSearchRequest holds the parameters of the web search endpoint
// (res/v1/web/search). Only Query is required.
type WebSearchRequest struct {
	Query string `query:"q" json:"q"`

	Country    string `query:"country" default:"US" json:"country,omitempty"`
	SearchLang string `query:"search_lang" default:"en" json:"search_lang,omitempty"`
	UILang     string `query:"ui_lang" default:"en-US" json:"ui_lang,omitempty"`

	Count  *int `query:"count" default:"20" json:"count,omitempty"`
	Offset *int `query:"offset" default:"0" json:"offset,omitempty"`

	SafeSearch   SafeSearch `query:"safesearch" default:"moderate" json:"safesearch,omitempty"`
	Freshness    string     `query:"freshness" json:"freshness,omitempty"`
	ResultFilter string     `query:"result_filter" json:"result_filter,omitempty"`
	Goggles      []string   `query:"goggles" json:"goggles,omitempty"`
	Units        Units      `query:"units" json:"units,omitempty"`

	TextDecorations *bool `query:"text_decorations" default:"true" json:"text_decorations,omitempty"`
	Spellcheck      *bool `query:"spellcheck" default:"true" json:"spellcheck,omitempty"`
	ExtraSnippets   *bool `query:"extra_snippets" default:"false" json:"extra_snippets,omitempty"`
	Summary         *bool `query:"summary" json:"summary,omitempty"`
}

func (r WebSearchRequest) Validate() error {
	q := strings.TrimSpace(r.Query)
	if q == "" {
		return &ValidationError{Field: "q", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(r.Query) > QueryMaxLength {
		return &ValidationError{Field: "q", Reason: fmt.Sprintf("exceeds %d characters", QueryMaxLength)}
	}
	if len(strings.Fields(q)) > QueryMaxWords {
		return &ValidationError{Field: "q", Reason: fmt.Sprintf("exceeds %d words", QueryMaxWords)}
	}

	if r.Count != nil && (*r.Count < 1 || *r.Count > CountMax) {
		return &ValidationError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", CountMax)}
	}
	if r.Offset != nil && (*r.Offset < 0 || *r.Offset > OffsetMax) {
		return &ValidationError{Field: "offset", Reason: fmt.Sprintf("must be between 0 and %d", OffsetMax)}
	}

	switch r.SafeSearch {
	case "", SafeSearchOff, SafeSearchModerate, SafeSearchStrict:
	default:
		return &ValidationError{Field: "safesearch", Reason: fmt.Sprintf("unknown value '%s'", r.SafeSearch)}
	}

	switch r.Units {
	case "", UnitsMetric, UnitsImperial:
	default:
		return &ValidationError{Field: "units", Reason: fmt.Sprintf("unknown value '%s'", r.Units)}
	}

	switch r.Freshness {
	case "", FreshnessDay, FreshnessWeek, FreshnessMonth, FreshnessYear:
	default:
		if !freshnessRange.MatchString(r.Freshness) {
			return &ValidationError{Field: "freshness", Reason: fmt.Sprintf("invalid value '%s'", r.Freshness)}
		}
	}

	if r.Country != "" && len(r.Country) != 2 {
		return &ValidationError{Field: "country", Reason: "must be a 2 character country code"}
	}

	return nil
}

// SummarizerSearchRequest fetches the summary referenced by the key of a
// previous web search made with Summary enabled.
type SummarizerSearchRequest struct {
	Key string `query:"key" json:"key"`

	EntityInfo       *bool `query:"entity_info" default:"false" json:"entity_info,omitempty"`
	InlineReferences *bool `query:"inline_references" default:"false" json:"inline_references,omitempty"`
}

func (r SummarizerSearchRequest) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return &ValidationError{Field: "key", Reason: "must not be empty"}
	}
	return nil
}

// Bool returns a pointer to b, for optional request fields.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i, for optional request fields.
func Int(i int) *int {
	return &i
}
