package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/strategy"
	logx "postpilot/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON snapshot file,
// rewritten atomically (tmp + rename) on every mutation. Plan/job sets are
// small (tens of rows per run), so full-snapshot writes stay cheap.
type fileStore struct {
	log  logx.Logger
	path string

	mu    sync.Mutex
	state fileState
}

type fileState struct {
	Strategies map[string]strategy.Strategy `json:"strategies"`
	Entries    map[string][]calendar.Entry  `json:"entries"`
	Jobs       map[string]compile.Job       `json:"jobs"`
	Records    map[string]PostRecord        `json:"records"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	st := &fileStore{log: log, path: path, state: emptyFileState()}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func emptyFileState() fileState {
	return fileState{
		Strategies: map[string]strategy.Strategy{},
		Entries:    map[string][]calendar.Entry{},
		Jobs:       map[string]compile.Job{},
		Records:    map[string]PostRecord{},
	}
}

func (s *fileStore) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var st fileState
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		// A corrupt snapshot should not brick startup; start fresh and keep
		// the bad file around for inspection.
		s.log.Warn("storage snapshot unreadable; starting empty", logx.String("path", s.path), logx.Err(err))
		_ = os.Rename(s.path, s.path+".bad")
		return nil
	}
	if st.Strategies == nil {
		st.Strategies = map[string]strategy.Strategy{}
	}
	if st.Entries == nil {
		st.Entries = map[string][]calendar.Entry{}
	}
	if st.Jobs == nil {
		st.Jobs = map[string]compile.Job{}
	}
	if st.Records == nil {
		st.Records = map[string]PostRecord{}
	}
	s.state = st
	return nil
}

// persistLocked writes the snapshot atomically. Call with s.mu held.
func (s *fileStore) persistLocked() error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.state); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *fileStore) SaveStrategy(ctx context.Context, runID string, st strategy.Strategy) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Strategies[runID] = st
	return s.persistLocked()
}

func (s *fileStore) SaveEntries(ctx context.Context, runID string, entries []calendar.Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Entries[runID] = append([]calendar.Entry(nil), entries...)
	return s.persistLocked()
}

func (s *fileStore) UpsertJob(ctx context.Context, job compile.Job) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Jobs[job.ID] = job
	return s.persistLocked()
}

func (s *fileStore) GetJob(ctx context.Context, id string) (compile.Job, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.state.Jobs[id]
	return j, ok, nil
}

func (s *fileStore) ListJobs(ctx context.Context, runID string) ([]compile.Job, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []compile.Job
	for _, j := range s.state.Jobs {
		if runID == "" || j.RunID == runID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Entry.Day < out[k].Entry.Day })
	return out, nil
}

func (s *fileStore) SavePostRecord(ctx context.Context, rec PostRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Records[rec.JobID] = rec
	return s.persistLocked()
}

func (s *fileStore) GetPostRecord(ctx context.Context, jobID string) (PostRecord, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.Records[jobID]
	return r, ok, nil
}

func (s *fileStore) ListPostsSince(ctx context.Context, since time.Time) ([]PostRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PostRecord
	for _, r := range s.state.Records {
		if !r.PostedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].PostedAt.Before(out[k].PostedAt) })
	return out, nil
}

func (s *fileStore) Close() error { return nil }
