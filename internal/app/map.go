package app

import (
	"fmt"
	"strings"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/pipeline"
	"postpilot/internal/providers"
	"postpilot/internal/publish"
	"postpilot/internal/scheduler"
	"postpilot/internal/storage"
	"postpilot/internal/track"
)

// Mapping between on-disk config and component configs lives here so the
// validator and NewApp share one source of truth.

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	busy, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		return storage.Config{}, err
	}
	sc := storage.Config{
		Driver:      strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)),
		Path:        strings.TrimSpace(cfg.Storage.Path),
		BusyTimeout: busy,
	}
	switch sc.Driver {
	case "", "memory":
	case "file", "sqlite", "sqlite3":
		if sc.Path == "" {
			return storage.Config{}, fmt.Errorf("storage.path required for driver %q", sc.Driver)
		}
	default:
		return storage.Config{}, fmt.Errorf("storage.driver: unknown %q", sc.Driver)
	}
	return sc, nil
}

func mapSchedulerConfig(cfg *config.Config) (scheduler.Config, error) {
	if cfg.Scheduler.Workers < 0 {
		return scheduler.Config{}, fmt.Errorf("scheduler.workers must be >= 0")
	}
	if cfg.Scheduler.QueueSize < 0 {
		return scheduler.Config{}, fmt.Errorf("scheduler.queue_size must be >= 0")
	}
	if cfg.Scheduler.HistorySize < 0 {
		return scheduler.Config{}, fmt.Errorf("scheduler.history_size must be >= 0")
	}
	timeout, err := config.ParseDurationOrDefault("scheduler.default_timeout", cfg.Scheduler.DefaultTimeout, 0)
	if err != nil {
		return scheduler.Config{}, err
	}
	if tz := strings.TrimSpace(cfg.Scheduler.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return scheduler.Config{}, fmt.Errorf("scheduler.timezone: invalid %q: %w", tz, err)
		}
	}
	return scheduler.Config{
		Workers:        cfg.Scheduler.Workers,
		QueueSize:      cfg.Scheduler.QueueSize,
		DefaultTimeout: timeout,
		HistorySize:    cfg.Scheduler.HistorySize,
		Timezone:       cfg.Scheduler.Timezone,
	}, nil
}

func mapPublisherConfig(cfg *config.Config) (publish.HTTPConfig, publish.Dispatcher, error) {
	if strings.TrimSpace(cfg.Publisher.BaseURL) == "" {
		return publish.HTTPConfig{}, publish.Dispatcher{}, fmt.Errorf("publisher.base_url required")
	}
	timeout, err := config.ParseDurationOrDefault("publisher.timeout", cfg.Publisher.Timeout, 0)
	if err != nil {
		return publish.HTTPConfig{}, publish.Dispatcher{}, err
	}
	if cfg.Publisher.RatePerSec < 0 {
		return publish.HTTPConfig{}, publish.Dispatcher{}, fmt.Errorf("publisher.rate_per_sec must be >= 0")
	}
	if cfg.Publisher.MaxPostLen < 0 {
		return publish.HTTPConfig{}, publish.Dispatcher{}, fmt.Errorf("publisher.max_post_len must be >= 0")
	}
	hc := publish.HTTPConfig{
		BaseURL:    cfg.Publisher.BaseURL,
		Token:      cfg.Publisher.Token,
		Timeout:    timeout,
		RatePerSec: cfg.Publisher.RatePerSec,
	}
	d := publish.Dispatcher{
		Visibility: cfg.Publisher.Visibility,
		MaxPostLen: cfg.Publisher.MaxPostLen,
		Timeout:    timeout,
	}
	return hc, d, nil
}

func mapProviderConfig(path string, pc config.ProviderConfig) (providers.HTTPConfig, error) {
	timeout, err := config.ParseDurationOrDefault(path+".timeout", pc.Timeout, 0)
	if err != nil {
		return providers.HTTPConfig{}, err
	}
	if strings.TrimSpace(pc.BaseURL) == "" {
		return providers.HTTPConfig{}, fmt.Errorf("%s.base_url required", path)
	}
	return providers.HTTPConfig{BaseURL: pc.BaseURL, Timeout: timeout}, nil
}

func mapPipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	window, err := config.ParseDurationOrDefault("pipeline.tracking_window", cfg.Pipeline.TrackingWindow, track.DefaultWindow)
	if err != nil {
		return pipeline.Config{}, err
	}
	at, err := config.ParseClockField("pipeline.tracker_time", cfg.Pipeline.TrackerTime, "08:00")
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		Token:          cfg.Pipeline.Token,
		Industry:       cfg.Pipeline.Industry,
		Duration:       cfg.Pipeline.Duration,
		Seed:           cfg.Pipeline.Seed,
		TrackerTime:    at,
		TrackingWindow: window,
	}, nil
}
