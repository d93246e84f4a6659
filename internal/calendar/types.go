package calendar

import (
	"time"

	"postpilot/internal/content"
)

// Status tracks an entry through the posting lifecycle. Entries start as
// planned; only the scheduler runtime moves them forward.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusScheduled Status = "scheduled"
	StatusPosted    Status = "posted"
	StatusFailed    Status = "failed"
)

// Entry is one planned posting slot: a business day bound to a content
// directive and an optimal time.
type Entry struct {
	// Day is the 1-based business-day index within the run. Weekends are
	// skipped, so Day counts posts, not calendar days.
	Day int `json:"day"`

	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`

	ContentType content.Type `json:"content_type"`
	Theme       string       `json:"theme"`
	Hashtags    []string     `json:"hashtags"`

	// OptimalTime is "HH:MM" in the scheduler's timezone.
	OptimalTime string `json:"optimal_time"`

	Status Status `json:"status"`
}
