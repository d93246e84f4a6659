package scheduler

import (
	"context"
	"sort"
	"time"
)

// Snapshot returns the operator-visible view of the runtime: every known job
// with its lifecycle state and error text, the recurring schedules, and the
// recent execution history.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	s.mu.Lock()
	tz := s.cfg.Timezone
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	defs := make([]cronDef, len(s.defs))
	copy(defs, s.defs)
	c := s.c
	loc := s.loc
	queue := s.queue
	store := s.store
	s.mu.Unlock()

	if loc == nil {
		loc = time.Local
	}
	if tz == "" {
		tz = loc.String()
	}

	crons := make([]CronInfo, 0, len(defs))
	for _, d := range defs {
		it := CronInfo{ID: d.id, Name: d.name, Spec: d.spec}
		if c != nil && d.entryID != 0 {
			e := c.Entry(d.entryID)
			it.Next = e.Next
			it.Prev = e.Prev
		}
		crons = append(crons, it)
	}

	s.tmu.Lock()
	active := make(map[string]bool, len(s.timers))
	for id := range s.timers {
		active[id] = true
	}
	s.tmu.Unlock()

	var jobs []JobInfo
	if store != nil {
		list, err := store.ListJobs(ctx, "")
		if err == nil {
			for _, j := range list {
				jobs = append(jobs, JobInfo{
					ID:        j.ID,
					RunID:     j.RunID,
					Day:       j.Entry.Day,
					State:     string(j.State),
					TriggerAt: j.TriggerAt,
					Active:    active[j.ID],
					LastError: j.LastError,
				})
			}
		}
	} else {
		// No store: fall back to the in-memory pending set.
		s.tmu.Lock()
		for id, j := range s.pending {
			jobs = append(jobs, JobInfo{
				ID:        id,
				RunID:     j.RunID,
				Day:       j.Entry.Day,
				State:     string(j.State),
				TriggerAt: j.TriggerAt,
				Active:    active[id],
			})
		}
		s.tmu.Unlock()
		sort.Slice(jobs, func(i, k int) bool { return jobs[i].Day < jobs[k].Day })
	}

	s.hmu.Lock()
	hist := append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()

	ql := 0
	if queue != nil {
		ql = len(queue)
	}

	return Snapshot{
		Timezone: tz,
		Workers:  workers,
		QueueLen: ql,
		Jobs:     jobs,
		Crons:    crons,
		History:  hist,
	}
}

// ActiveTimers reports how many live one-shot timers exist, and whether one
// exists for id when id is non-empty.
func (s *Service) ActiveTimers(id string) (total int, exists bool) {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	if id != "" {
		_, exists = s.timers[id]
	}
	return len(s.timers), exists
}
