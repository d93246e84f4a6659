//go:build sqlite
// +build sqlite

package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/strategy"
	logx "postpilot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	// Basic pragmas.
	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) SaveStrategy(ctx context.Context, runID string, st strategy.Strategy) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO strategies(run_id, payload) VALUES(?,?)
		 ON CONFLICT(run_id) DO UPDATE SET payload=excluded.payload`,
		runID, string(b),
	)
	return err
}

func (s *sqliteStore) SaveEntries(ctx context.Context, runID string, entries []calendar.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries(run_id, day, payload) VALUES(?,?,?)
			 ON CONFLICT(run_id, day) DO UPDATE SET payload=excluded.payload`,
			runID, e.Day, string(b),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) UpsertJob(ctx context.Context, job compile.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs(id, run_id, day, state, trigger_at, payload) VALUES(?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   run_id=excluded.run_id, day=excluded.day, state=excluded.state,
		   trigger_at=excluded.trigger_at, payload=excluded.payload`,
		job.ID, job.RunID, job.Entry.Day, string(job.State), job.TriggerAt.Format(time.RFC3339Nano), string(b),
	)
	return err
}

func (s *sqliteStore) GetJob(ctx context.Context, id string) (compile.Job, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM jobs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return compile.Job{}, false, nil
	}
	if err != nil {
		return compile.Job{}, false, err
	}
	var j compile.Job
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		return compile.Job{}, false, err
	}
	return j, true, nil
}

func (s *sqliteStore) ListJobs(ctx context.Context, runID string) ([]compile.Job, error) {
	q := `SELECT payload FROM jobs ORDER BY day`
	args := []any{}
	if runID != "" {
		q = `SELECT payload FROM jobs WHERE run_id = ? ORDER BY day`
		args = append(args, runID)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []compile.Job
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var j compile.Job
		if err := json.Unmarshal([]byte(payload), &j); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SavePostRecord(ctx context.Context, rec PostRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO post_records(job_id, run_id, posted_at, payload) VALUES(?,?,?,?)
		 ON CONFLICT(job_id) DO UPDATE SET
		   run_id=excluded.run_id, posted_at=excluded.posted_at, payload=excluded.payload`,
		rec.JobID, rec.RunID, rec.PostedAt.UnixMilli(), string(b),
	)
	return err
}

func (s *sqliteStore) GetPostRecord(ctx context.Context, jobID string) (PostRecord, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM post_records WHERE job_id = ?`, jobID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return PostRecord{}, false, nil
	}
	if err != nil {
		return PostRecord{}, false, err
	}
	var r PostRecord
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return PostRecord{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) ListPostsSince(ctx context.Context, since time.Time) ([]PostRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM post_records WHERE posted_at >= ? ORDER BY posted_at`,
		since.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PostRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r PostRecord
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
