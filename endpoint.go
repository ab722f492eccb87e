package brave

const (
	DefaultApiHost = "https://api.search.brave.com"
	ApiKeyEnv      = "BRAVE_API_KEY"

	headerSubscriptionToken = "X-Subscription-Token"
	headerApiVersion        = "Api-Version"
)

// Endpoint describes one remote operation of the search API.
type Endpoint struct {
	Name       string
	Path       string
	APIVersion string

	// ResponseType is the discriminant a successful response must carry.
	ResponseType string
}

var (
	EndpointWebSearch = Endpoint{
		Name:         "web",
		Path:         "res/v1/web/search",
		APIVersion:   "2023-10-11",
		ResponseType: "search",
	}

	EndpointSummarizerSearch = Endpoint{
		Name:         "summarizer",
		Path:         "res/v1/summarizer/search",
		APIVersion:   "2024-04-23",
		ResponseType: "summarizer",
	}
)
