package content

import "strings"

// Type enumerates the post content types the planner can schedule.
//
// The set is closed: every Type carries its own template (see template()),
// and anything unknown degrades to TypeGeneric rather than failing.
type Type string

const (
	TypeEducational      Type = "educational"
	TypeIndustryInsights Type = "industryInsights"
	TypePersonalStories  Type = "personalStories"
	TypeEngagement       Type = "engagement"
	TypeGeneric          Type = "generic"
)

// All returns the closed set of content types, generic last.
func All() []Type {
	return []Type{TypeEducational, TypeIndustryInsights, TypePersonalStories, TypeEngagement, TypeGeneric}
}

// Parse normalizes a raw string to a known Type.
// Unknown values map to TypeGeneric.
func Parse(raw string) Type {
	switch Type(strings.TrimSpace(raw)) {
	case TypeEducational:
		return TypeEducational
	case TypeIndustryInsights:
		return TypeIndustryInsights
	case TypePersonalStories:
		return TypePersonalStories
	case TypeEngagement:
		return TypeEngagement
	default:
		return TypeGeneric
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeEducational, TypeIndustryInsights, TypePersonalStories, TypeEngagement, TypeGeneric:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }
