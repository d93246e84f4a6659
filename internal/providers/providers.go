package providers

import "context"

// ProfileProvider retrieves profile data for the account being planned.
// Token exchange and OAuth live on the provider side; we only carry the token.
type ProfileProvider interface {
	DetailedProfile(ctx context.Context, token string) (ProfileData, error)
}

// TrendProvider retrieves industry trend insights.
//
// Callers should treat failures as degradable: FallbackTrends() gives a usable
// substitute so a flaky trend source never aborts a planning run.
type TrendProvider interface {
	ResearchTrends(ctx context.Context, industry string, keywords []string) (TrendInsights, error)
}

// FallbackTrends returns a fixed, locally synthesized trend set for industry.
// Used when the Trend Provider is unreachable or errors.
func FallbackTrends(industry string) TrendInsights {
	return TrendInsights{
		Industry: industry,
		Topics: []Topic{
			{Keyword: industry + " trends", Volume: 1000, GrowthPct: 5},
			{Keyword: "digital transformation", Volume: 800, GrowthPct: 8},
			{Keyword: "professional development", Volume: 600, GrowthPct: 4},
		},
		Hashtags: []string{"#Innovation", "#Leadership", "#Growth"},
		Fallback: true,
	}
}
