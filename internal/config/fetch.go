package config

import "time"

// Fetch pacing constants
const (
	// APIRequestTimeout bounds each HTTP request to the Torn API
	APIRequestTimeout = 30 * time.Second

	// AttackPagePause is the cooperative pause between successive attack log
	// pages, a courtesy to the API's informal rate limits
	AttackPagePause = 1 * time.Second

	// FetchWindowPaddingSeconds widens the fetch window on both sides of the
	// war start/end to tolerate clock skew between the war report and the
	// attack log timestamps
	FetchWindowPaddingSeconds = 330
)

// FetchConfig defines pacing for the paginated attack log fetch
type FetchConfig struct {
	PagePause      time.Duration
	WindowPadding  int64
	RequestTimeout time.Duration
}

// DefaultFetchConfig provides sensible defaults
var DefaultFetchConfig = FetchConfig{
	PagePause:      AttackPagePause,
	WindowPadding:  FetchWindowPaddingSeconds,
	RequestTimeout: APIRequestTimeout,
}
