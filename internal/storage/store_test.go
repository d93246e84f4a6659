package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/content"
	"postpilot/internal/strategy"
	logx "postpilot/pkg/logx"
)

func testJob(id string, runID string, day int) compile.Job {
	return compile.Job{
		ID:     id,
		RunID:  runID,
		UserID: "u-1",
		Entry: calendar.Entry{
			Day:         day,
			Date:        time.Date(2026, time.January, 5+day, 0, 0, 0, 0, time.UTC),
			ContentType: content.TypeEducational,
			Theme:       "testing",
			OptimalTime: "09:00",
			Status:      calendar.StatusPlanned,
		},
		TriggerAt: time.Date(2026, time.January, 5+day, 9, 0, 0, 0, time.UTC),
		State:     calendar.StatusScheduled,
	}
}

func TestOpenDriverSelection(t *testing.T) {
	if _, err := Open(Config{}, logx.Nop()); err != nil {
		t.Fatalf("empty driver should open memory store: %v", err)
	}
	if _, err := Open(Config{Driver: "bolt"}, logx.Nop()); err == nil {
		t.Fatalf("unknown driver should fail")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatalf("file driver without path should fail")
	}
}

func TestMemoryJobOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	for _, j := range []compile.Job{
		testJob("u-1:3", "r-1", 3),
		testJob("u-1:1", "r-1", 1),
		testJob("u-1:2", "r-2", 2),
	} {
		if err := st.UpsertJob(ctx, j); err != nil {
			t.Fatalf("UpsertJob: %v", err)
		}
	}

	jobs, err := st.ListJobs(ctx, "r-1")
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].Entry.Day != 1 || jobs[1].Entry.Day != 3 {
		t.Fatalf("filtered jobs wrong: %+v", jobs)
	}

	all, err := st.ListJobs(ctx, "")
	if err != nil {
		t.Fatalf("ListJobs all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(all))
	}

	// upsert replaces
	j := testJob("u-1:1", "r-1", 1)
	j.State = calendar.StatusPosted
	if err := st.UpsertJob(ctx, j); err != nil {
		t.Fatalf("UpsertJob: %v", err)
	}
	got, ok, err := st.GetJob(ctx, "u-1:1")
	if err != nil || !ok {
		t.Fatalf("GetJob: ok=%v err=%v", ok, err)
	}
	if got.State != calendar.StatusPosted {
		t.Fatalf("state = %q", got.State)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "postpilot.json")

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	strat := strategy.Strategy{BrandVoice: "direct", ContentThemes: []string{"go"}}
	if err := st.SaveStrategy(ctx, "r-1", strat); err != nil {
		t.Fatalf("SaveStrategy: %v", err)
	}
	if err := st.SaveEntries(ctx, "r-1", []calendar.Entry{{Day: 1, Theme: "go"}}); err != nil {
		t.Fatalf("SaveEntries: %v", err)
	}
	if err := st.UpsertJob(ctx, testJob("u-1:1", "r-1", 1)); err != nil {
		t.Fatalf("UpsertJob: %v", err)
	}
	rec := PostRecord{
		JobID:    "u-1:1",
		RunID:    "r-1",
		UserID:   "u-1",
		Text:     "hello",
		PostedAt: time.Date(2026, time.January, 6, 9, 0, 0, 0, time.UTC),
	}
	if err := st.SavePostRecord(ctx, rec); err != nil {
		t.Fatalf("SavePostRecord: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// reopen and verify everything survived
	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	job, ok, err := st2.GetJob(ctx, "u-1:1")
	if err != nil || !ok {
		t.Fatalf("GetJob after reopen: ok=%v err=%v", ok, err)
	}
	if job.State != calendar.StatusScheduled {
		t.Fatalf("job state = %q", job.State)
	}
	got, ok, err := st2.GetPostRecord(ctx, "u-1:1")
	if err != nil || !ok {
		t.Fatalf("GetPostRecord: ok=%v err=%v", ok, err)
	}
	if got.Text != "hello" {
		t.Fatalf("record text = %q", got.Text)
	}
}

func TestFileStoreCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open should survive a corrupt snapshot: %v", err)
	}
	jobs, err := st.ListJobs(context.Background(), "")
	if err != nil || len(jobs) != 0 {
		t.Fatalf("expected empty store, got %d jobs, err=%v", len(jobs), err)
	}
	if _, err := os.Stat(path + ".bad"); err != nil {
		t.Fatalf("corrupt snapshot not preserved: %v", err)
	}
}

func TestListPostsSince(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := PostRecord{
			JobID:    compile.JobID("u-1", i+1),
			RunID:    "r-1",
			PostedAt: base.AddDate(0, 0, i),
		}
		if err := st.SavePostRecord(ctx, rec); err != nil {
			t.Fatalf("SavePostRecord: %v", err)
		}
	}

	recs, err := st.ListPostsSince(ctx, base.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("ListPostsSince: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].PostedAt.Before(recs[i-1].PostedAt) {
			t.Fatalf("records not sorted by posted_at")
		}
	}
}

func TestMetricsScore(t *testing.T) {
	m := Metrics{Likes: 10, Comments: 5, Shares: 2, Reach: 100}
	if got := m.Score(); got != 0.26 {
		t.Fatalf("score = %v, want 0.26", got)
	}
	// zero reach must not divide by zero
	m = Metrics{Likes: 3, Reach: 0}
	if got := m.Score(); got != 3 {
		t.Fatalf("score with zero reach = %v, want 3", got)
	}
}
