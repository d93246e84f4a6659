package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	logx "postpilot/pkg/logx"
)

// Register moves a compiled job to scheduled: persists the transition and
// registers a one-shot timer keyed by the job's deterministic id.
//
// Registration is idempotent: re-registering an id replaces the existing
// timer instead of duplicating it, so at most one timer exists per id and a
// job can never be concurrently firing from two registrations.
func (s *Service) Register(ctx context.Context, job compile.Job) error {
	if strings.TrimSpace(job.ID) == "" {
		return &compile.SchedulingError{JobID: job.ID, Reason: "empty job id"}
	}

	job.State = calendar.StatusScheduled
	job.Entry.Status = calendar.StatusScheduled
	if s.store != nil {
		if err := s.store.UpsertJob(ctx, job); err != nil {
			return &compile.SchedulingError{JobID: job.ID, Reason: "persist: " + err.Error()}
		}
	}

	s.tmu.Lock()
	s.registerTimerLocked(job)
	s.tmu.Unlock()

	s.log.Debug("job scheduled",
		logx.String("job", job.ID), logx.Time("at", job.TriggerAt),
		logx.String("type", job.Entry.ContentType.String()), logx.String("theme", job.Entry.Theme))
	s.publish("job.scheduled", JobEvent{JobID: job.ID, RunID: job.RunID, Day: job.Entry.Day, State: string(job.State)})
	return nil
}

// registerTimerLocked upserts the timer for job. Call with s.tmu held.
func (s *Service) registerTimerLocked(job compile.Job) {
	id := job.ID

	// upsert: stop existing timer with the same id
	if t, ok := s.timers[id]; ok {
		_ = t.Stop()
		delete(s.timers, id)
	}
	// bump version so stale callbacks from replaced timers are ignored
	ver := s.vers[id] + 1
	s.vers[id] = ver
	s.pending[id] = job

	delay := time.Until(job.TriggerAt)
	if delay < 0 {
		delay = 0
	}
	localVer := ver
	timer := time.AfterFunc(delay, func() {
		s.tmu.Lock()
		curVer := s.vers[id]
		jobNow, ok := s.pending[id]
		if curVer != localVer || !ok {
			s.tmu.Unlock()
			return
		}
		// cleanup the definition first (prevents double-fire on restart)
		delete(s.timers, id)
		delete(s.pending, id)
		delete(s.vers, id)
		s.tmu.Unlock()

		accepted := s.enqueue(task{
			id:      id,
			name:    "post:" + id,
			timeout: s.resolveTimeout(0),
			run: func(ctx context.Context) error {
				return s.fireJob(ctx, jobNow)
			},
		})
		if accepted {
			return
		}
		// The fire never reached the pool. If the runtime stopped, keep the
		// definition so the next Start() re-registers it; a saturated queue
		// marks the job failed so it is never stranded in scheduled.
		s.mu.Lock()
		stopped := s.queue == nil
		s.mu.Unlock()
		if stopped {
			s.tmu.Lock()
			if _, exists := s.pending[id]; !exists {
				s.pending[id] = jobNow
				s.vers[id] = localVer
			}
			s.tmu.Unlock()
			return
		}
		_ = s.failJob(context.Background(), jobNow, errors.New("scheduler queue full"))
	})
	s.timers[id] = timer
}

// Pause cancels the job's own timer registration without disturbing others.
// The pending definition is kept, so Resume() can re-register it.
func (s *Service) Pause(id string) bool {
	s.tmu.Lock()
	t, ok := s.timers[id]
	if ok {
		_ = t.Stop()
		delete(s.timers, id)
		s.vers[id]++
	}
	job, hasDef := s.pending[id]
	s.tmu.Unlock()

	if !ok {
		return false
	}
	s.log.Debug("job paused", logx.String("job", id))
	if hasDef {
		s.publish("job.paused", JobEvent{JobID: id, RunID: job.RunID, Day: job.Entry.Day, State: string(job.State)})
	}
	return true
}

// Resume re-registers a paused job's timer.
func (s *Service) Resume(id string) error {
	s.tmu.Lock()
	job, ok := s.pending[id]
	if !ok {
		s.tmu.Unlock()
		return &compile.SchedulingError{JobID: id, Reason: "no pending definition to resume"}
	}
	s.registerTimerLocked(job)
	s.tmu.Unlock()
	s.log.Debug("job resumed", logx.String("job", id), logx.Time("at", job.TriggerAt))
	return nil
}

// StopAll cancels every active job timer owned by runID ("" means all runs).
// Safe to call concurrently with in-flight fires: a fire that already left
// the timer map completes normally.
func (s *Service) StopAll(runID string) int {
	s.tmu.Lock()
	n := 0
	for id, job := range s.pending {
		if runID != "" && job.RunID != runID {
			continue
		}
		if t, ok := s.timers[id]; ok {
			_ = t.Stop()
			delete(s.timers, id)
		}
		s.vers[id]++
		delete(s.pending, id)
		delete(s.vers, id)
		n++
	}
	s.tmu.Unlock()
	if n > 0 {
		s.log.Info("job timers cancelled", logx.String("run", runID), logx.Int("count", n))
	}
	return n
}

// rebuildTimersLocked recreates runtime timers from the pending job
// definitions. Call with s.mu held.
func (s *Service) rebuildTimersLocked() {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	// stop any existing timers (should already be empty after Stop())
	for _, t := range s.timers {
		_ = t.Stop()
	}
	s.timers = map[string]*time.Timer{}

	for _, job := range s.pending {
		s.registerTimerLocked(job)
	}
}

// AddDaily registers a recurring task at HH:MM (scheduler timezone) under a
// unique name. Re-adding the same name replaces the previous schedule.
func (s *Service) AddDaily(name, atHHMM string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	h, m, err := compile.ParseHHMM(atHHMM)
	if err != nil {
		return "", err
	}
	spec := fmt.Sprintf("%d %d * * *", m, h)
	return s.addCron(name, spec, timeout, job)
}

func (s *Service) addCron(name, spec string, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name required")
	}
	// Upsert by name to prevent duplicates across re-registrations.
	s.removeCronLocked(name)
	id := fmt.Sprintf("cron:%d", time.Now().UnixNano())
	d := cronDef{id: id, name: name, spec: spec, timeout: s.resolveTimeout(timeout), job: job}
	s.defs = append(s.defs, d)
	if s.c != nil {
		if err := s.addCronLocked(&s.defs[len(s.defs)-1]); err != nil {
			s.log.Error("cron register failed", logx.String("name", name), logx.String("spec", spec), logx.Err(err))
			return id, err
		}
	}
	s.log.Debug("cron registered", logx.String("name", name), logx.String("spec", spec))
	// Not started yet: the definition is kept and registered when Start() runs.
	return id, nil
}

func (s *Service) addCronLocked(d *cronDef) error {
	localName := d.name
	localTimeout := d.timeout
	localJob := d.job
	localID := d.id
	eid, err := s.c.AddFunc(d.spec, func() {
		s.enqueue(task{id: localID, name: localName, timeout: localTimeout, run: localJob})
	})
	if err == nil {
		d.entryID = eid
	}
	return err
}

// removeCronLocked removes all defs matching name. Call with s.mu held.
func (s *Service) removeCronLocked(name string) {
	if s.c != nil {
		for i := range s.defs {
			if s.defs[i].name == name && s.defs[i].entryID != 0 {
				s.c.Remove(s.defs[i].entryID)
				s.defs[i].entryID = 0
			}
		}
	}
	n := 0
	for _, d := range s.defs {
		if d.name == name {
			continue
		}
		s.defs[n] = d
		n++
	}
	s.defs = s.defs[:n]
}
