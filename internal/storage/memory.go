package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/strategy"
)

// memoryStore keeps everything in process. It backs tests and the default
// no-config deployment.
type memoryStore struct {
	mu sync.Mutex

	strategies map[string]strategy.Strategy
	entries    map[string][]calendar.Entry
	jobs       map[string]compile.Job
	records    map[string]PostRecord
}

func NewMemory() Store {
	return &memoryStore{
		strategies: map[string]strategy.Strategy{},
		entries:    map[string][]calendar.Entry{},
		jobs:       map[string]compile.Job{},
		records:    map[string]PostRecord{},
	}
}

func (s *memoryStore) SaveStrategy(ctx context.Context, runID string, st strategy.Strategy) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies[runID] = st
	return nil
}

func (s *memoryStore) SaveEntries(ctx context.Context, runID string, entries []calendar.Entry) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[runID] = append([]calendar.Entry(nil), entries...)
	return nil
}

func (s *memoryStore) UpsertJob(ctx context.Context, job compile.Job) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *memoryStore) GetJob(ctx context.Context, id string) (compile.Job, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok, nil
}

func (s *memoryStore) ListJobs(ctx context.Context, runID string) ([]compile.Job, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []compile.Job
	for _, j := range s.jobs {
		if runID == "" || j.RunID == runID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Entry.Day < out[k].Entry.Day })
	return out, nil
}

func (s *memoryStore) SavePostRecord(ctx context.Context, rec PostRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.JobID] = rec
	return nil
}

func (s *memoryStore) GetPostRecord(ctx context.Context, jobID string) (PostRecord, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[jobID]
	return r, ok, nil
}

func (s *memoryStore) ListPostsSince(ctx context.Context, since time.Time) ([]PostRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PostRecord
	for _, r := range s.records {
		if !r.PostedAt.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].PostedAt.Before(out[k].PostedAt) })
	return out, nil
}

func (s *memoryStore) Close() error { return nil }
