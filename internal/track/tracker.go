// Package track is the engagement feedback loop: a recurring job that pulls
// provider metrics for recently delivered posts and updates their scores.
package track

import (
	"context"
	"fmt"
	"time"

	"postpilot/internal/eventbus"
	"postpilot/internal/publish"
	"postpilot/internal/storage"
	logx "postpilot/pkg/logx"
)

// DefaultWindow is how long a delivered post keeps being tracked.
const DefaultWindow = 7 * 24 * time.Hour

// MetricsFetcher is the slice of the delivery side the tracker needs.
// publish.Dispatcher satisfies it.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, deliveryID string) (publish.Metrics, error)
}

// TrackingError marks a metrics fetch failure for one record. The tracker
// logs it and moves on; it never aborts the run over remaining records.
type TrackingError struct {
	JobID string
	Cause error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("tracking %s: %v", e.JobID, e.Cause)
}

func (e *TrackingError) Unwrap() error { return e.Cause }

// Tracker updates engagement metrics for posts inside the trailing window.
type Tracker struct {
	Store   storage.Store
	Fetcher MetricsFetcher
	Window  time.Duration
	Bus     eventbus.Bus
	Log     logx.Logger
}

// Run performs one tracking pass. A failure for one record is skipped, the
// rest still get updated; only a store-level listing failure is returned.
func (t Tracker) Run(ctx context.Context) error {
	log := t.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	window := t.Window
	if window <= 0 {
		window = DefaultWindow
	}

	since := time.Now().Add(-window)
	records, err := t.Store.ListPostsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	updated, skipped := 0, 0
	for _, rec := range records {
		if rec.DeliveryID == "" {
			continue
		}
		m, err := t.Fetcher.FetchMetrics(ctx, rec.DeliveryID)
		if err != nil {
			skipped++
			terr := &TrackingError{JobID: rec.JobID, Cause: err}
			log.Warn("metrics fetch failed; record skipped", logx.String("job", rec.JobID), logx.Err(terr))
			continue
		}

		rec.Metrics = storage.Metrics{
			Likes:    m.Likes,
			Comments: m.Comments,
			Shares:   m.Shares,
			Reach:    m.Reach,
		}
		rec.Metrics.EngagementScore = rec.Metrics.Score()
		rec.MetricsUpdatedAt = time.Now()

		if err := t.Store.SavePostRecord(ctx, rec); err != nil {
			skipped++
			log.Warn("metrics persist failed; record skipped", logx.String("job", rec.JobID), logx.Err(err))
			continue
		}
		updated++
	}

	log.Debug("tracking pass done",
		logx.Int("eligible", len(records)), logx.Int("updated", updated), logx.Int("skipped", skipped))
	if t.Bus != nil && updated > 0 {
		t.Bus.Publish(eventbus.Event{Type: "tracker.updated", Data: map[string]int{
			"eligible": len(records), "updated": updated, "skipped": skipped,
		}})
	}
	return nil
}
