package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postpilot/internal/calendar"
	"postpilot/internal/content"
)

// Summary is the operator-facing result of a run: every entry with its final
// status, with per-entry error text where scheduling or delivery failed.
type Summary struct {
	RunID       string
	UserID      string
	GeneratedAt time.Time
	Entries     []EntrySummary
}

type EntrySummary struct {
	Day         int
	Date        time.Time
	Weekday     string
	ContentType content.Type
	Theme       string
	Time        string
	Status      calendar.Status
	Error       string
}

// Summary rebuilds the run summary from the persisted job set, so it reflects
// status transitions that happened after the planning run returned.
func (p *Pipeline) Summary(ctx context.Context, runID string) (*Summary, error) {
	jobs, err := p.Store.ListJobs(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	s := &Summary{RunID: runID, GeneratedAt: time.Now()}
	for _, j := range jobs {
		if s.UserID == "" {
			s.UserID = j.UserID
		}
		s.Entries = append(s.Entries, EntrySummary{
			Day:         j.Entry.Day,
			Date:        j.Entry.Date,
			Weekday:     j.Entry.Weekday,
			ContentType: j.Entry.ContentType,
			Theme:       j.Entry.Theme,
			Time:        j.Entry.OptimalTime,
			Status:      j.State,
			Error:       j.LastError,
		})
	}
	return s, nil
}

// String renders a compact per-entry table for logs and CLI output.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%d entries)\n", s.RunID, len(s.Entries))
	for _, e := range s.Entries {
		fmt.Fprintf(&b, "  day %2d  %s %s %s  %-16s %-24s %s",
			e.Day, e.Date.Format("2006-01-02"), e.Time, e.Weekday, e.ContentType, e.Theme, e.Status)
		if e.Error != "" {
			fmt.Fprintf(&b, "  (%s)", e.Error)
		}
		b.WriteString("\n")
	}
	return b.String()
}
