package brave

import "encoding/json"

// WebSearchApiResponse is the top level result of a web search. Sub-trees are
// nil unless the server included them.
type WebSearchApiResponse struct {
	Type string `json:"type"`

	Query       *Query            `json:"query,omitempty"`
	Web         *Search           `json:"web,omitempty"`
	News        *News             `json:"news,omitempty"`
	Videos      *Videos           `json:"videos,omitempty"`
	Discussions *Discussions      `json:"discussions,omitempty"`
	FAQ         *FAQ              `json:"faq,omitempty"`
	Infobox     *GraphInfobox     `json:"infobox,omitempty"`
	Locations   *Locations        `json:"locations,omitempty"`
	Mixed       *MixedResponse    `json:"mixed,omitempty"`
	Summarizer  *Summarizer       `json:"summarizer,omitempty"`
	Rich        *RichCallbackInfo `json:"rich,omitempty"`
}

type Query struct {
	Original             string `json:"original"`
	Altered              string `json:"altered,omitempty"`
	ShowStrictWarning    *bool  `json:"show_strict_warning,omitempty"`
	Safesearch           *bool  `json:"safesearch,omitempty"`
	IsNavigational       *bool  `json:"is_navigational,omitempty"`
	IsGeolocal           *bool  `json:"is_geolocal,omitempty"`
	LocalDecision        string `json:"local_decision,omitempty"`
	LocalLocationsIdx    *int   `json:"local_locations_idx,omitempty"`
	IsTrending           *bool  `json:"is_trending,omitempty"`
	IsNewsBreaking       *bool  `json:"is_news_breaking,omitempty"`
	AskForLocation       *bool  `json:"ask_for_location,omitempty"`
	SpellcheckOff        *bool  `json:"spellcheck_off,omitempty"`
	Country              string `json:"country,omitempty"`
	BadResults           *bool  `json:"bad_results,omitempty"`
	ShouldFallback       *bool  `json:"should_fallback,omitempty"`
	PostalCode           string `json:"postal_code,omitempty"`
	City                 string `json:"city,omitempty"`
	State                string `json:"state,omitempty"`
	HeaderCountry        string `json:"header_country,omitempty"`
	MoreResultsAvailable *bool  `json:"more_results_available,omitempty"`
	CustomLocationLabel  string `json:"custom_location_label,omitempty"`
	RedditCluster        string `json:"reddit_cluster,omitempty"`
}

type Search struct {
	Type           string         `json:"type"`
	Results        []SearchResult `json:"results"`
	FamilyFriendly bool           `json:"family_friendly"`
}

type SearchResult struct {
	Type           string            `json:"type"`
	Subtype        string            `json:"subtype,omitempty"`
	Title          string            `json:"title"`
	URL            string            `json:"url"`
	Description    string            `json:"description,omitempty"`
	Age            string            `json:"age,omitempty"`
	PageAge        string            `json:"page_age,omitempty"`
	Language       string            `json:"language,omitempty"`
	IsLive         bool              `json:"is_live"`
	FamilyFriendly bool              `json:"family_friendly"`
	ExtraSnippets  []string          `json:"extra_snippets,omitempty"`
	MetaURL        *MetaURL          `json:"meta_url,omitempty"`
	Thumbnail      *Thumbnail        `json:"thumbnail,omitempty"`
	DeepResults    *DeepResult       `json:"deep_results,omitempty"`
	Schemas        []json.RawMessage `json:"schemas,omitempty"`
}

type MetaURL struct {
	Scheme   string `json:"scheme,omitempty"`
	Netloc   string `json:"netloc,omitempty"`
	Hostname string `json:"hostname,omitempty"`
	Favicon  string `json:"favicon,omitempty"`
	Path     string `json:"path,omitempty"`
}

type Thumbnail struct {
	Src      string `json:"src"`
	Original string `json:"original,omitempty"`
}

type DeepResult struct {
	Buttons []Button `json:"buttons,omitempty"`
}

type Button struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type News struct {
	Type             string       `json:"type"`
	Results          []NewsResult `json:"results"`
	MutatedByGoggles *bool        `json:"mutated_by_goggles,omitempty"`
}

type NewsResult struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Age         string     `json:"age,omitempty"`
	Breaking    bool       `json:"breaking,omitempty"`
	MetaURL     *MetaURL   `json:"meta_url,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
}

type Videos struct {
	Type             string        `json:"type"`
	Results          []VideoResult `json:"results"`
	MutatedByGoggles *bool         `json:"mutated_by_goggles,omitempty"`
}

type VideoResult struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description,omitempty"`
	Age         string     `json:"age,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	MetaURL     *MetaURL   `json:"meta_url,omitempty"`
}

type Discussions struct {
	Type             string             `json:"type"`
	Results          []DiscussionResult `json:"results"`
	MutatedByGoggles bool               `json:"mutated_by_goggles"`
}

type DiscussionResult struct {
	Type     string     `json:"type"`
	Subtype  string     `json:"subtype,omitempty"`
	Title    string     `json:"title,omitempty"`
	URL      string     `json:"url,omitempty"`
	IsLive   bool       `json:"is_live"`
	Language string     `json:"language,omitempty"`
	Data     *ForumData `json:"data,omitempty"`
}

type ForumData struct {
	ForumName  string `json:"forum_name"`
	NumAnswers *int   `json:"num_answers,omitempty"`
	Score      string `json:"score,omitempty"`
	Title      string `json:"title,omitempty"`
	Question   string `json:"question,omitempty"`
	TopComment string `json:"top_comment,omitempty"`
}

type FAQ struct {
	Type    string `json:"type"`
	Results []QA   `json:"results"`
}

type QA struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Title    string   `json:"title,omitempty"`
	URL      string   `json:"url,omitempty"`
	MetaURL  *MetaURL `json:"meta_url,omitempty"`
}

// GraphInfobox is kept partially typed, the raw results are preserved.
type GraphInfobox struct {
	Type    string            `json:"type"`
	Results []json.RawMessage `json:"results,omitempty"`
}

type Locations struct {
	Type    string           `json:"type"`
	Results []LocationResult `json:"results"`
}

type LocationResult struct {
	Type        string    `json:"type,omitempty"`
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
}

type MixedResponse struct {
	Type string            `json:"type"`
	Main []ResultReference `json:"main,omitempty"`
	Top  []ResultReference `json:"top,omitempty"`
	Side []ResultReference `json:"side,omitempty"`
}

type ResultReference struct {
	Type  string `json:"type"`
	Index *int   `json:"index,omitempty"`
	All   bool   `json:"all"`
}

// Summarizer references a summary that can be fetched through the summarizer
// endpoint.
type Summarizer struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type RichCallbackInfo struct {
	Type string            `json:"type"`
	Hint *RichCallbackHint `json:"hint,omitempty"`
}

type RichCallbackHint struct {
	Vertical    string `json:"vertical"`
	CallbackKey string `json:"callback_key"`
}

// SummarizerSearchApiResponse is the result of the summarizer endpoint.
type SummarizerSearchApiResponse struct {
	Type         string                     `json:"type"`
	Status       string                     `json:"status,omitempty"`
	Title        string                     `json:"title,omitempty"`
	Summary      []SummaryMessage           `json:"summary,omitempty"`
	Enrichments  *SummaryEnrichments        `json:"enrichments,omitempty"`
	Followups    []string                   `json:"followups,omitempty"`
	EntitiesInfo map[string]json.RawMessage `json:"entities_infos,omitempty"`
}

type SummaryMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Text returns the message data when it is a plain token.
func (m SummaryMessage) Text() string {
	var s string
	if err := json.Unmarshal(m.Data, &s); err != nil {
		return ""
	}
	return s
}

type SummaryEnrichments struct {
	Raw     string           `json:"raw,omitempty"`
	Context []SummaryContext `json:"context,omitempty"`
}

type SummaryContext struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	MetaURL *MetaURL `json:"meta_url,omitempty"`
}

// Text joins the token messages of the summary.
func (r *SummarizerSearchApiResponse) Text() string {
	var b []byte
	for _, m := range r.Summary {
		if m.Type != "token" {
			continue
		}
		b = append(b, m.Text()...)
	}
	return string(b)
}
