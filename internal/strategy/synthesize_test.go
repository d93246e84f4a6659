package strategy

import (
	"reflect"
	"testing"
	"time"

	"postpilot/internal/content"
	"postpilot/internal/providers"
)

func sampleProfile() providers.ProfileData {
	return providers.ProfileData{
		UserID:     "u-1",
		Industry:   "software",
		BrandVoice: " thoughtful ",
		Themes:     []string{"platform engineering", "AI tooling"},
		Hashtags:   []string{"#Platform", "#DevEx", "#SRE"},
		BaseMix: map[content.Type]int{
			content.TypeEducational:      40,
			content.TypeIndustryInsights: 30,
			content.TypePersonalStories:  20,
			content.TypeEngagement:       10,
		},
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	t.Parallel()
	profile := sampleProfile()
	trends := providers.FallbackTrends("software")

	a := Synthesize(profile, trends)
	b := Synthesize(profile, trends)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("synthesis not deterministic:\n%#v\n%#v", a, b)
	}
	if a.BrandVoice != "thoughtful" {
		t.Fatalf("brand voice not trimmed: %q", a.BrandVoice)
	}
}

func TestSynthesizeThemeMerge(t *testing.T) {
	t.Parallel()
	profile := sampleProfile()
	trends := providers.TrendInsights{
		Industry: "software",
		Topics: []providers.Topic{
			{Keyword: "ai tooling", Volume: 900}, // duplicate of a profile theme, case-insensitive
			{Keyword: "wasm", Volume: 500},
			{Keyword: "observability", Volume: 700},
		},
	}

	s := Synthesize(profile, trends)
	want := []string{"platform engineering", "AI tooling", "observability", "wasm"}
	if !reflect.DeepEqual(s.ContentThemes, want) {
		t.Fatalf("themes = %v, want %v", s.ContentThemes, want)
	}
}

func TestSynthesizeMixAdjustment(t *testing.T) {
	t.Parallel()
	profile := sampleProfile()

	// no trend signal: base mix passes through
	s := Synthesize(profile, providers.TrendInsights{})
	if s.ContentMix[content.TypeEducational] != 40 || s.ContentMix[content.TypeIndustryInsights] != 30 {
		t.Fatalf("mix changed without trends: %v", s.ContentMix)
	}

	// with trends: +10 insights, -5 educational
	s = Synthesize(profile, providers.FallbackTrends("software"))
	if got := s.ContentMix[content.TypeIndustryInsights]; got != 40 {
		t.Fatalf("industryInsights = %d, want 40", got)
	}
	if got := s.ContentMix[content.TypeEducational]; got != 35 {
		t.Fatalf("educational = %d, want 35", got)
	}
}

func TestSynthesizeMixClamps(t *testing.T) {
	t.Parallel()
	profile := sampleProfile()
	profile.BaseMix = map[content.Type]int{
		content.TypeIndustryInsights: 95,
		content.TypeEducational:      2,
	}
	s := Synthesize(profile, providers.FallbackTrends("software"))
	if got := s.ContentMix[content.TypeIndustryInsights]; got != 100 {
		t.Fatalf("industryInsights = %d, want clamp at 100", got)
	}
	if got := s.ContentMix[content.TypeEducational]; got != 0 {
		t.Fatalf("educational = %d, want clamp at 0", got)
	}
}

func TestSynthesizeHashtags(t *testing.T) {
	t.Parallel()
	s := Synthesize(sampleProfile(), providers.FallbackTrends("software"))
	if s.Hashtags.Primary != "#Platform" {
		t.Fatalf("primary = %q", s.Hashtags.Primary)
	}
	if !reflect.DeepEqual(s.Hashtags.Secondary, []string{"#DevEx", "#SRE"}) {
		t.Fatalf("secondary = %v", s.Hashtags.Secondary)
	}
	if len(s.Hashtags.Trending) == 0 {
		t.Fatalf("expected trending tags from fallback set")
	}

	// no suggestions: defaults kick in
	profile := sampleProfile()
	profile.Hashtags = nil
	s = Synthesize(profile, providers.TrendInsights{})
	if s.Hashtags.Primary != "#ProfessionalGrowth" {
		t.Fatalf("default primary = %q", s.Hashtags.Primary)
	}
	if len(s.Hashtags.General) != 3 {
		t.Fatalf("default general = %v", s.Hashtags.General)
	}
}

func TestSynthesizeScheduleDefaults(t *testing.T) {
	t.Parallel()
	profile := sampleProfile()
	s := Synthesize(profile, providers.TrendInsights{})
	wantDays := []time.Weekday{time.Tuesday, time.Wednesday, time.Thursday}
	if !reflect.DeepEqual(s.Schedule.OptimalDays, wantDays) {
		t.Fatalf("days = %v", s.Schedule.OptimalDays)
	}
	if !reflect.DeepEqual(s.Schedule.OptimalTimes, []string{"09:00", "12:30", "17:00"}) {
		t.Fatalf("times = %v", s.Schedule.OptimalTimes)
	}

	profile.OptimalDays = []time.Weekday{time.Monday}
	profile.OptimalTimes = []string{"08:15"}
	s = Synthesize(profile, providers.TrendInsights{})
	if !reflect.DeepEqual(s.Schedule.OptimalDays, []time.Weekday{time.Monday}) {
		t.Fatalf("profile days ignored: %v", s.Schedule.OptimalDays)
	}
}
