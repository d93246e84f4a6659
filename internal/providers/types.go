package providers

import (
	"time"

	"postpilot/internal/content"
)

// ProfileData is what the Identity & Profile Provider knows about the account
// we are planning for. It seeds the strategy defaults.
type ProfileData struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Industry string `json:"industry"`

	BrandVoice string   `json:"brand_voice"`
	Themes     []string `json:"themes"`
	Hashtags   []string `json:"hashtags"`

	// BaseMix is the profile's preferred content-type distribution in percent.
	BaseMix map[content.Type]int `json:"base_mix"`

	Audience     Audience       `json:"audience"`
	OptimalDays  []time.Weekday `json:"optimal_days"`
	OptimalTimes []string       `json:"optimal_times"` // "HH:MM"
}

type Audience struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Tertiary  string `json:"tertiary"`
}

// TrendInsights is the Trend Provider's view of what is moving in an industry.
type TrendInsights struct {
	Industry string   `json:"industry"`
	Topics   []Topic  `json:"topics"`
	Hashtags []string `json:"hashtags"`

	// Fallback marks insights synthesized locally after a provider failure.
	Fallback bool `json:"fallback,omitempty"`
}

type Topic struct {
	Keyword   string  `json:"keyword"`
	Volume    int     `json:"volume"`
	GrowthPct float64 `json:"growth_pct"`
}

// Empty reports whether the insights carry no usable signal.
func (t TrendInsights) Empty() bool {
	return len(t.Topics) == 0 && len(t.Hashtags) == 0
}
