package storage

import (
	"errors"
	"time"

	"postpilot/internal/content"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "memory": in-process map store (default; state dies with the process)
//   - "file":   dependency-free single-file JSON backend
//   - "sqlite": SQLite database file (optional build tag)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// PostRecord is the persisted result of a successfully executed job.
// It exists iff the job reached the posted state, and the engagement tracker
// keeps updating its metrics until the tracking window elapses.
type PostRecord struct {
	JobID  string `json:"job_id"`
	RunID  string `json:"run_id"`
	UserID string `json:"user_id"`

	Text        string       `json:"text"`
	Hashtags    []string     `json:"hashtags"`
	ContentType content.Type `json:"content_type"`

	PostedAt   time.Time `json:"posted_at"`
	DeliveryID string    `json:"delivery_id"`

	Metrics          Metrics   `json:"metrics"`
	MetricsUpdatedAt time.Time `json:"metrics_updated_at,omitzero"`
}

// Metrics holds provider engagement numbers plus the derived score.
type Metrics struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Reach    int `json:"reach"`

	EngagementScore float64 `json:"engagement_score"`
}

// Score computes the engagement score: likes weighted 1, comments 2,
// shares 3, normalized by reach (floored at 1 to avoid division by zero).
func (m Metrics) Score() float64 {
	reach := m.Reach
	if reach < 1 {
		reach = 1
	}
	return float64(m.Likes+2*m.Comments+3*m.Shares) / float64(reach)
}
