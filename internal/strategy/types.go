package strategy

import (
	"time"

	"postpilot/internal/content"
	"postpilot/internal/providers"
)

// Strategy is the immutable output of a synthesis run. It is owned by the
// pipeline run that produced it and is never mutated afterwards.
type Strategy struct {
	BrandVoice     string
	TargetAudience providers.Audience

	// ContentThemes is ordered; the calendar rotates through it by day index.
	ContentThemes []string

	// ContentMix maps content type to an integer percentage. The values are
	// treated as relative weights, so a sum that drifts off 100 still works.
	ContentMix map[content.Type]int

	Hashtags HashtagStrategy
	Schedule PostingSchedule

	// EngagementTargets are advisory per-post goals, not enforced anywhere.
	EngagementTargets EngagementTargets
}

type HashtagStrategy struct {
	Primary   string
	Secondary []string
	Trending  []string
	General   []string
}

type PostingSchedule struct {
	OptimalDays  []time.Weekday
	OptimalTimes []string // "HH:MM"
}

type EngagementTargets struct {
	LikesPerPost    int
	CommentsPerPost int
	SharesPerPost   int
}
