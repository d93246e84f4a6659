package config

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
type Config struct {
	Logging   LoggingConfig   `json:"logging"`
	Storage   StorageConfig   `json:"storage,omitempty"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Publisher PublisherConfig `json:"publisher"`
	Profile   ProviderConfig  `json:"profile"`
	Trends    ProviderConfig  `json:"trends"`
	Pipeline  PipelineConfig  `json:"pipeline"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`

	// Console is a pointer so "omitted" defaults to true.
	Console *bool      `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

type StorageConfig struct {
	// Driver: "memory" (default), "file", or "sqlite" (build tag).
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type SchedulerConfig struct {
	Workers        int    `json:"workers,omitempty"`
	QueueSize      int    `json:"queue_size,omitempty"`
	DefaultTimeout string `json:"default_timeout,omitempty"`
	HistorySize    int    `json:"history_size,omitempty"`
	Timezone       string `json:"timezone,omitempty"` // IANA TZ
}

type PublisherConfig struct {
	BaseURL    string `json:"base_url"`
	Token      string `json:"token,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	MaxPostLen int    `json:"max_post_len,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Timeout string `json:"timeout,omitempty"`
}

type PipelineConfig struct {
	Token    string `json:"token,omitempty"` // profile provider access token
	Industry string `json:"industry,omitempty"`

	// Duration is the number of posts to plan (business days), 1..30.
	Duration int `json:"duration"`

	// Seed fixes the calendar shuffle; 0 means time-based.
	Seed int64 `json:"seed,omitempty"`

	TrackerTime    string `json:"tracker_time,omitempty"` // "HH:MM"
	TrackingWindow string `json:"tracking_window,omitempty"`
}

func (c *LoggingConfig) ConsoleEnabled() bool {
	if c.Console == nil {
		return true
	}
	return *c.Console
}
