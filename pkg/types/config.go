package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the arXiv fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Query is the arXiv search_query expression (e.g. "cat:cs.CL").
	Query string `json:"query" yaml:"query"`

	// MaxResults is the maximum number of papers to fetch (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Timezone is the IANA zone name publication timestamps are
	// normalized to (default "UTC").
	Timezone string `json:"timezone" yaml:"timezone"`
}

// AIConfig holds settings for the recommendation model call.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RecommendConfig holds settings for the recommendation stage.
type RecommendConfig struct {
	AIConfig `yaml:",inline"`

	// ResearchInterests lists the user's interests as free text, in the
	// order they should appear in the prompt.
	ResearchInterests []string `json:"research_interests" yaml:"research_interests"`
}

// StoreConfig holds settings for the processed-ID store.
type StoreConfig struct {
	// Path is the SQLite database file (default "state/digest.db").
	Path string `json:"path" yaml:"path"`
}

// OutputConfig holds settings for rendered artifacts.
type OutputConfig struct {
	// Dir is the directory digest files are written to (default "output").
	Dir string `json:"dir" yaml:"dir"`
}

// SMTPConfig holds settings for digest delivery.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string `json:"host" yaml:"host"`

	// Port is the SMTP server port (default 587).
	Port int `json:"port" yaml:"port"`

	// Username authenticates against the server; the password comes
	// from the secrets directory, never from config.
	Username string `json:"username" yaml:"username"`

	// From is the sender address.
	From string `json:"from" yaml:"from"`

	// To lists the recipient addresses.
	To []string `json:"to" yaml:"to"`
}

// PipelineConfig groups all stage configurations for one digest run.
type PipelineConfig struct {
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
	Recommend RecommendConfig `json:"recommend" yaml:"recommend"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	SMTP      SMTPConfig      `json:"smtp" yaml:"smtp"`
}
