package strategy

import (
	"sort"
	"strings"
	"time"

	"postpilot/internal/content"
	"postpilot/internal/providers"
)

// topTrendKeywords caps how many trend topics feed the theme list.
const topTrendKeywords = 5

// Synthesize merges profile-derived defaults with trend-derived adjustments
// into a Strategy. It is deterministic: identical inputs always produce an
// identical Strategy (no clock, no randomness), which keeps reproducibility
// testing independent of the calendar's seeded shuffle.
func Synthesize(profile providers.ProfileData, trends providers.TrendInsights) Strategy {
	s := Strategy{
		BrandVoice:     strings.TrimSpace(profile.BrandVoice),
		TargetAudience: profile.Audience,
		ContentThemes:  mergeThemes(profile.Themes, trends),
		ContentMix:     adjustMix(profile.BaseMix, trends),
		Hashtags:       mergeHashtags(profile.Hashtags, trends),
		Schedule:       schedule(profile),
		EngagementTargets: EngagementTargets{
			LikesPerPost:    50,
			CommentsPerPost: 10,
			SharesPerPost:   5,
		},
	}
	if s.BrandVoice == "" {
		s.BrandVoice = "professional"
	}
	return s
}

func mergeThemes(profileThemes []string, trends providers.TrendInsights) []string {
	seen := map[string]bool{}
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		key := strings.ToLower(t)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, t := range profileThemes {
		add(t)
	}

	// Top-N trend topics by volume, stable on keyword for equal volumes.
	topics := append([]providers.Topic(nil), trends.Topics...)
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Volume != topics[j].Volume {
			return topics[i].Volume > topics[j].Volume
		}
		return topics[i].Keyword < topics[j].Keyword
	})
	for i, t := range topics {
		if i >= topTrendKeywords {
			break
		}
		add(t.Keyword)
	}
	return out
}

// adjustMix applies a bounded trend adjustment to the profile's base mix:
// +10 industryInsights, -5 educational, each clamped to [0,100]. Without
// trend signal the base mix passes through untouched.
func adjustMix(base map[content.Type]int, trends providers.TrendInsights) map[content.Type]int {
	mix := make(map[content.Type]int, len(base))
	for k, v := range base {
		if v < 0 {
			v = 0
		}
		mix[k] = v
	}
	if trends.Empty() {
		return mix
	}
	mix[content.TypeIndustryInsights] = clamp(mix[content.TypeIndustryInsights]+10, 0, 100)
	if v, ok := mix[content.TypeEducational]; ok {
		mix[content.TypeEducational] = clamp(v-5, 0, 100)
	}
	return mix
}

func mergeHashtags(suggested []string, trends providers.TrendInsights) HashtagStrategy {
	hs := HashtagStrategy{
		Primary: "#ProfessionalGrowth",
		General: []string{"#Networking", "#CareerAdvice", "#Success"},
	}
	if len(suggested) > 0 {
		hs.Primary = strings.TrimSpace(suggested[0])
		for _, h := range suggested[1:] {
			h = strings.TrimSpace(h)
			if h != "" {
				hs.Secondary = append(hs.Secondary, h)
			}
		}
	}
	for _, h := range trends.Hashtags {
		h = strings.TrimSpace(h)
		if h != "" {
			hs.Trending = append(hs.Trending, h)
		}
	}
	return hs
}

func schedule(profile providers.ProfileData) PostingSchedule {
	ps := PostingSchedule{
		OptimalDays:  append([]time.Weekday(nil), profile.OptimalDays...),
		OptimalTimes: append([]string(nil), profile.OptimalTimes...),
	}
	if len(ps.OptimalDays) == 0 {
		ps.OptimalDays = []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}
	}
	if len(ps.OptimalTimes) == 0 {
		ps.OptimalTimes = []string{"09:00", "12:30", "17:00"}
	}
	return ps
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
