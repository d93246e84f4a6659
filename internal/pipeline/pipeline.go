// Package pipeline composes the planning stages: profile and trend retrieval,
// strategy synthesis, calendar building, job compilation and registration.
//
// Each stage is a pure function of the previous stage's output; the pipeline
// owns the composition and the persistence boundaries, never shared mutable
// state threaded through stages.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/eventbus"
	"postpilot/internal/providers"
	"postpilot/internal/scheduler"
	"postpilot/internal/storage"
	"postpilot/internal/strategy"
	"postpilot/internal/track"
	logx "postpilot/pkg/logx"
)

// ValidationError aborts a whole run before any job is scheduled.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Config are the per-run inputs.
type Config struct {
	Token    string // profile provider access token
	Industry string
	Duration int // number of posts (business days), 1..30

	// Seed drives the calendar's weighted shuffle; 0 means time-based.
	Seed int64

	TrackerTime    string // "HH:MM", default "08:00"
	TrackingWindow time.Duration
}

// Pipeline wires the stages to their collaborators.
type Pipeline struct {
	Profile providers.ProfileProvider
	Trends  providers.TrendProvider
	Store   storage.Store
	Sched   *scheduler.Service
	Fetcher track.MetricsFetcher
	Bus     eventbus.Bus
	Log     logx.Logger

	// Now is a test hook; nil means time.Now.
	Now func() time.Time
}

// Run executes one full planning run and returns its summary.
//
// Pipeline-level failures (bad inputs, profile retrieval, calendar build)
// abort the run; per-entry scheduling failures are recorded on the entry and
// the run continues.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Summary, error) {
	log := p.Log
	if log.IsZero() {
		log = logx.Nop()
	}

	if cfg.Duration < calendar.MinDuration || cfg.Duration > calendar.MaxDuration {
		return nil, &ValidationError{
			Field:  "duration",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", calendar.MinDuration, calendar.MaxDuration, cfg.Duration),
		}
	}

	profile, err := p.Profile.DetailedProfile(ctx, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("profile retrieval: %w", err)
	}
	if strings.TrimSpace(profile.UserID) == "" {
		return nil, &ValidationError{Field: "profile.user_id", Reason: "missing"}
	}

	industry := strings.TrimSpace(cfg.Industry)
	if industry == "" {
		industry = profile.Industry
	}

	// Trend failures degrade to the fixed fallback set, never abort the run.
	trends, err := p.Trends.ResearchTrends(ctx, industry, profile.Themes)
	if err != nil {
		log.Warn("trend research failed; using fallback trends", logx.String("industry", industry), logx.Err(err))
		trends = providers.FallbackTrends(industry)
	}

	strat := strategy.Synthesize(profile, trends)
	if len(strat.ContentThemes) == 0 {
		return nil, &ValidationError{Field: "content_themes", Reason: "empty theme set"}
	}

	runID := uuid.NewString()
	loc := p.Sched.Location()

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = now().UnixNano()
	}
	builder := calendar.Builder{Strategy: strat, Rand: rand.New(rand.NewSource(seed))}
	// The calendar starts today. A same-day slot whose posting time has
	// already passed is rejected by the compiler below on a per-entry basis;
	// the rest of the run is unaffected.
	start := now().In(loc)
	entries, err := builder.Build(start, cfg.Duration)
	if err != nil {
		return nil, &ValidationError{Field: "calendar", Reason: err.Error()}
	}

	if err := p.Store.SaveStrategy(ctx, runID, strat); err != nil {
		return nil, fmt.Errorf("persist strategy: %w", err)
	}
	if err := p.Store.SaveEntries(ctx, runID, entries); err != nil {
		return nil, fmt.Errorf("persist entries: %w", err)
	}

	compiler := compile.Compiler{
		UserID:     profile.UserID,
		RunID:      runID,
		BrandVoice: strat.BrandVoice,
		Loc:        loc,
		Now:        p.Now,
	}

	scheduled, failed := 0, 0
	for _, entry := range entries {
		job, err := compiler.Compile(entry)
		if err == nil {
			err = p.Sched.Register(ctx, job)
		}
		if err != nil {
			failed++
			log.Warn("entry not scheduled", logx.Int("day", entry.Day), logx.Err(err))
			p.recordEntryFailure(ctx, compiler, entry, err)
			continue
		}
		scheduled++
	}

	p.registerTracker(cfg)

	log.Info("planning run complete",
		logx.String("run", runID), logx.String("user", profile.UserID),
		logx.Int("entries", len(entries)), logx.Int("scheduled", scheduled), logx.Int("failed", failed),
		logx.Bool("fallback_trends", trends.Fallback))

	return p.Summary(ctx, runID)
}

// recordEntryFailure persists a terminal failed job for an entry that never
// made it into the timer registry, so the run summary can show its error.
func (p *Pipeline) recordEntryFailure(ctx context.Context, c compile.Compiler, entry calendar.Entry, cause error) {
	entry.Status = calendar.StatusFailed
	job := compile.Job{
		ID:         compile.JobID(c.UserID, entry.Day),
		RunID:      c.RunID,
		UserID:     c.UserID,
		Entry:      entry,
		BrandVoice: c.BrandVoice,
		State:      calendar.StatusFailed,
		LastError:  cause.Error(),
		FailedAt:   time.Now(),
	}
	if err := p.Store.UpsertJob(ctx, job); err != nil {
		p.Log.Error("failed job persist failed", logx.String("job", job.ID), logx.Err(err))
	}
}

func (p *Pipeline) registerTracker(cfg Config) {
	at := strings.TrimSpace(cfg.TrackerTime)
	if at == "" {
		at = "08:00"
	}
	trk := track.Tracker{
		Store:   p.Store,
		Fetcher: p.Fetcher,
		Window:  cfg.TrackingWindow,
		Bus:     p.Bus,
		Log:     p.Log,
	}
	if _, err := p.Sched.AddDaily("engagement:track", at, time.Minute, trk.Run); err != nil {
		p.Log.Error("engagement tracker registration failed", logx.String("at", at), logx.Err(err))
	}
}
