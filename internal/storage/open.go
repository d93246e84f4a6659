package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/strategy"
	logx "postpilot/pkg/logx"
)

// Store is the persistence API shared by the pipeline, the scheduler runtime
// and the engagement tracker. Writes to a given job id are serialized by the
// implementations (single mutex or single-writer sqlite).
type Store interface {
	SaveStrategy(ctx context.Context, runID string, s strategy.Strategy) error
	SaveEntries(ctx context.Context, runID string, entries []calendar.Entry) error

	UpsertJob(ctx context.Context, job compile.Job) error
	GetJob(ctx context.Context, id string) (compile.Job, bool, error)
	ListJobs(ctx context.Context, runID string) ([]compile.Job, error)

	SavePostRecord(ctx context.Context, rec PostRecord) error
	GetPostRecord(ctx context.Context, jobID string) (PostRecord, bool, error)
	ListPostsSince(ctx context.Context, since time.Time) ([]PostRecord, error)

	Close() error
}

// Open initializes the configured store.
//
// Unlike classic opt-in audit storage, the job set must live somewhere for
// the runtime to work at all, so an empty driver falls back to the in-memory
// store instead of disabling persistence outright.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		if driver == "" {
			log.Debug("storage driver not set; using in-memory store")
		}
		return NewMemory(), nil
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
