// Package compile turns calendar entries into schedulable job descriptors.
package compile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"postpilot/internal/calendar"
)

// Job is the schedulable unit derived from one calendar entry.
//
// The ID is deterministic ("{userID}:{dayIndex}") so recompiling the same
// calendar after a restart targets the same timer registrations instead of
// duplicating them.
type Job struct {
	ID     string `json:"id"`
	RunID  string `json:"run_id"`
	UserID string `json:"user_id"`

	Entry calendar.Entry `json:"entry"`

	// BrandVoice is carried from the strategy so fire-time composition does
	// not need to load the strategy back.
	BrandVoice string `json:"brand_voice"`

	// TriggerAt is Entry.Date + Entry.OptimalTime in the owner's location.
	TriggerAt time.Time `json:"trigger_at"`

	State      calendar.Status `json:"state"`
	LastError  string          `json:"last_error,omitempty"`
	FailedAt   time.Time       `json:"failed_at,omitzero"`
	DeliveryID string          `json:"delivery_id,omitempty"`
}

// SchedulingError marks a single entry that could not be scheduled.
// It fails that entry only; the run continues for the others.
type SchedulingError struct {
	JobID  string
	Reason string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling %s: %s", e.JobID, e.Reason)
}

// Compiler computes job descriptors for one pipeline run.
type Compiler struct {
	UserID     string
	RunID      string
	BrandVoice string
	Loc        *time.Location

	// Now is a test hook; nil means time.Now.
	Now func() time.Time
}

// JobID returns the deterministic id for a business-day index.
func JobID(userID string, day int) string {
	return userID + ":" + strconv.Itoa(day)
}

// Compile maps entry to a Job. Entries whose trigger time is already in the
// past are rejected with a SchedulingError rather than silently skipped.
func (c Compiler) Compile(entry calendar.Entry) (Job, error) {
	id := JobID(c.UserID, entry.Day)

	h, m, err := ParseHHMM(entry.OptimalTime)
	if err != nil {
		return Job{}, &SchedulingError{JobID: id, Reason: err.Error()}
	}

	loc := c.Loc
	if loc == nil {
		loc = time.Local
	}
	d := entry.Date.In(loc)
	triggerAt := time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if !triggerAt.After(now()) {
		return Job{}, &SchedulingError{
			JobID:  id,
			Reason: fmt.Sprintf("trigger time %s is in the past", triggerAt.Format(time.RFC3339)),
		}
	}

	return Job{
		ID:         id,
		RunID:      c.RunID,
		UserID:     c.UserID,
		Entry:      entry,
		BrandVoice: c.BrandVoice,
		TriggerAt:  triggerAt,
		State:      calendar.StatusPlanned,
	}, nil
}

// ParseHHMM parses a "HH:MM" clock string.
func ParseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
