package calendar

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"postpilot/internal/content"
	"postpilot/internal/strategy"
)

const (
	// MinDuration and MaxDuration bound the number of posts per run.
	MinDuration = 1
	MaxDuration = 30

	// poolScale expands mix percentages into a weighted selection pool:
	// a type at 100% contributes poolScale slots.
	poolScale = 20

	defaultTheme = "industry insights"
	defaultTime  = "12:00"
)

// maxHashtags caps the hashtag list per entry.
const maxHashtags = 5

// Builder derives a posting calendar from a strategy.
//
// Rand drives the weighted content-type shuffle. Pass a seeded source in
// tests to get reproducible calendars; a nil Rand gets a time-based seed.
type Builder struct {
	Strategy strategy.Strategy
	Rand     *rand.Rand
}

// Build emits duration entries starting from start, skipping weekends.
// Duration counts posts: the calendar-day span grows as needed, the loop
// is bounded only by accepted entries.
func (b Builder) Build(start time.Time, duration int) ([]Entry, error) {
	if duration < MinDuration || duration > MaxDuration {
		return nil, fmt.Errorf("duration must be between %d and %d, got %d", MinDuration, MaxDuration, duration)
	}

	rng := b.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	pool := b.typePool(rng)

	entries := make([]Entry, 0, duration)
	date := start
	for day := 1; day <= duration; {
		wd := date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			date = date.AddDate(0, 0, 1)
			continue
		}
		entries = append(entries, Entry{
			Day:         day,
			Date:        date,
			Weekday:     wd.String(),
			ContentType: pickType(pool, day),
			Theme:       b.theme(day),
			Hashtags:    b.hashtags(day),
			OptimalTime: b.optimalTime(date),
			Status:      StatusPlanned,
		})
		day++
		date = date.AddDate(0, 0, 1)
	}
	return entries, nil
}

// typePool expands the content mix into a weighted pool and shuffles it once
// per run. A type at p% gets p*poolScale/100 slots (at least one while p>0),
// so relative weighting survives a mix that doesn't sum to exactly 100.
func (b Builder) typePool(rng *rand.Rand) []content.Type {
	var pool []content.Type
	for _, t := range content.All() {
		pct := b.Strategy.ContentMix[t]
		if pct <= 0 {
			continue
		}
		n := pct * poolScale / 100
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			pool = append(pool, t)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool
}

func pickType(pool []content.Type, day int) content.Type {
	if len(pool) == 0 {
		return content.TypeGeneric
	}
	return pool[day%len(pool)]
}

func (b Builder) theme(day int) string {
	themes := b.Strategy.ContentThemes
	if len(themes) == 0 {
		return defaultTheme
	}
	return themes[day%len(themes)]
}

// hashtags assembles the entry's tag list: the primary tag, one rotating
// secondary, one rotating trending, and up to two general tags, truncated to
// maxHashtags with duplicates dropped.
func (b Builder) hashtags(day int) []string {
	hs := b.Strategy.Hashtags

	var raw []string
	if strings.TrimSpace(hs.Primary) != "" {
		raw = append(raw, hs.Primary)
	}
	if len(hs.Secondary) > 0 {
		raw = append(raw, hs.Secondary[day%len(hs.Secondary)])
	}
	if len(hs.Trending) > 0 {
		raw = append(raw, hs.Trending[day%len(hs.Trending)])
	}
	for i, h := range hs.General {
		if i >= 2 {
			break
		}
		raw = append(raw, h)
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
		if len(out) == maxHashtags {
			break
		}
	}
	return out
}

func (b Builder) optimalTime(date time.Time) string {
	sched := b.Strategy.Schedule
	for _, d := range sched.OptimalDays {
		if d == date.Weekday() {
			if len(sched.OptimalTimes) == 0 {
				return defaultTime
			}
			return sched.OptimalTimes[date.Day()%len(sched.OptimalTimes)]
		}
	}
	return defaultTime
}
