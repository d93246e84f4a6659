package scheduler

import (
	"context"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/compile"
	"postpilot/internal/content"
	"postpilot/internal/storage"
	logx "postpilot/pkg/logx"
)

// enqueue hands t to the worker pool and reports whether it was accepted.
// A stopped runtime and a saturated queue both refuse.
func (s *Service) enqueue(t task) bool {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("scheduler not running; dropping task", logx.String("task", t.name))
		return false
	}
	select {
	case q <- t:
		return true
	default:
		s.log.Warn("scheduler queue full; dropping task",
			logx.String("task", t.name), logx.Int("queue_len", len(q)), logx.Int("queue_cap", cap(q)))
		return false
	}
}

func (s *Service) worker(ctx context.Context, stopCh <-chan struct{}, queue <-chan task) {
	for {
		// Fast-exit check so a closed stopCh wins over queued work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case t := <-queue:
			s.execOne(ctx, t)
		}
	}
}

// execOne runs a single task. One fire is one attempt: there is no retry
// loop here, a failed posting job stays failed for that occurrence.
func (s *Service) execOne(ctx context.Context, t task) {
	start := time.Now()

	runCtx := ctx
	var cancel func()
	if t.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
	}
	err := t.run(runCtx)
	if cancel != nil {
		cancel()
	}

	item := HistoryItem{
		ID:       t.id,
		Name:     t.name,
		Started:  start,
		Duration: time.Since(start),
	}
	if err != nil {
		item.Error = err.Error()
		s.log.Warn("task failed", logx.String("task", t.name), logx.Err(err), logx.Duration("dur", item.Duration))
	} else {
		s.log.Debug("task completed", logx.String("task", t.name), logx.Duration("dur", item.Duration))
	}

	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.history = append(s.history, item)
	historySize := s.cfg.HistorySize
	if historySize <= 0 {
		historySize = 200
	}
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

// fireJob executes one posting job: synthesis strictly precedes dispatch,
// which strictly precedes record persistence. Any failure marks this job
// failed and leaves every other registration untouched.
func (s *Service) fireJob(ctx context.Context, job compile.Job) error {
	text, err := content.Compose(job.Entry.ContentType, job.Entry.Theme, job.BrandVoice, job.Entry.Hashtags)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	deliveryID, err := s.deliver.Deliver(ctx, text)
	if err != nil {
		return s.failJob(ctx, job, err)
	}

	now := time.Now()
	job.State = calendar.StatusPosted
	job.Entry.Status = calendar.StatusPosted
	job.DeliveryID = deliveryID
	job.LastError = ""

	if s.store != nil {
		rec := storage.PostRecord{
			JobID:       job.ID,
			RunID:       job.RunID,
			UserID:      job.UserID,
			Text:        text,
			Hashtags:    job.Entry.Hashtags,
			ContentType: job.Entry.ContentType,
			PostedAt:    now,
			DeliveryID:  deliveryID,
		}
		if err := s.store.SavePostRecord(ctx, rec); err != nil {
			s.log.Error("post record persist failed", logx.String("job", job.ID), logx.Err(err))
		}
		if err := s.store.UpsertJob(ctx, job); err != nil {
			s.log.Error("job persist failed", logx.String("job", job.ID), logx.Err(err))
		}
	}

	s.log.Info("post delivered",
		logx.String("job", job.ID), logx.String("delivery", deliveryID),
		logx.String("type", job.Entry.ContentType.String()))
	s.publish("job.posted", JobEvent{
		JobID: job.ID, RunID: job.RunID, Day: job.Entry.Day,
		State: string(job.State), DeliveryID: deliveryID,
	})
	return nil
}

// failJob records a terminal failure for this occurrence. No PostRecord is
// created and no retry is attempted.
func (s *Service) failJob(ctx context.Context, job compile.Job, cause error) error {
	job.State = calendar.StatusFailed
	job.Entry.Status = calendar.StatusFailed
	job.LastError = cause.Error()
	job.FailedAt = time.Now()

	if s.store != nil {
		if err := s.store.UpsertJob(ctx, job); err != nil {
			s.log.Error("job persist failed", logx.String("job", job.ID), logx.Err(err))
		}
	}

	s.publish("job.failed", JobEvent{
		JobID: job.ID, RunID: job.RunID, Day: job.Entry.Day,
		State: string(job.State), Error: job.LastError,
	})
	return cause
}
