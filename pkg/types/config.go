package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "PubTatorPMIDFetcher/2.0").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectConfig holds settings for the PMID collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// ChunkSize is the number of PMIDs requested per esearch page (default 10000).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// PageDelay is the mandatory delay between consecutive pagination
	// requests, imposed regardless of response latency (default 340ms).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// FilterConfig holds settings for the concept filter stage.
type FilterConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageSize is the maximum number of PMIDs per annotation export
	// request (default 1000).
	PageSize int `json:"page_size" yaml:"page_size"`

	// BatchDelay is the mandatory delay between consecutive export
	// requests (default 500ms).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`
}

// Defaults for the two stages. The esearch endpoint answers quickly, so
// its timeout is shorter than the bulk annotation export's.
const (
	DefaultChunkSize     = 10000
	DefaultPageSize      = 1000
	DefaultPageDelay     = 340 * time.Millisecond
	DefaultBatchDelay    = 500 * time.Millisecond
	DefaultSearchTimeout = 60 * time.Second
	DefaultExportTimeout = 120 * time.Second
	DefaultUserAgent     = "PubTatorPMIDFetcher/2.0"
)
