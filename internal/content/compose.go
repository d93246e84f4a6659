package content

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTheme is returned by Compose when the entry has no theme to write about.
// The scheduler treats it as a job-level failure, not a pipeline abort.
var ErrMissingTheme = errors.New("content: missing theme")

// template returns the body builder for the type.
//
// The switch is exhaustive over the closed Type set; Parse() guarantees
// callers never hand us anything outside it.
func (t Type) template() func(theme, voice string) string {
	switch t {
	case TypeEducational:
		return func(theme, voice string) string {
			return fmt.Sprintf(
				"3 things worth knowing about %s:\n\n"+
					"1. The fundamentals matter more than the trends.\n"+
					"2. Small consistent improvements compound.\n"+
					"3. The best practitioners never stop being students.\n\n"+
					"What would you add? (Speaking from a %s perspective.)",
				theme, voice)
		}
	case TypeIndustryInsights:
		return func(theme, voice string) string {
			return fmt.Sprintf(
				"The landscape around %s is shifting faster than most teams realize.\n\n"+
					"Here's my %s take: the organizations that win are the ones treating this "+
					"as a capability to build, not a box to tick.\n\n"+
					"Curious how others are approaching it.",
				theme, voice)
		}
	case TypePersonalStories:
		return func(theme, voice string) string {
			return fmt.Sprintf(
				"A few years ago, %s was the thing I understood least about my own work.\n\n"+
					"What changed? I stopped reading about it and started doing it badly until "+
					"it got better. That lesson shaped the %s way I work today.",
				theme, voice)
		}
	case TypeEngagement:
		return func(theme, voice string) string {
			return fmt.Sprintf(
				"Quick question for my network:\n\n"+
					"What's the single biggest challenge you're facing with %s right now?\n\n"+
					"I'll share a %s summary of the answers next week.",
				theme, voice)
		}
	default: // TypeGeneric
		return func(theme, voice string) string {
			return fmt.Sprintf("Some thoughts on %s, in a %s voice: it deserves more attention than it gets.", theme, voice)
		}
	}
}

// Compose renders the final post text for a planned slot: the type's template
// interpolated with theme and brand voice, then hashtags space-joined on a
// trailing line. Output length is not capped here; the dispatcher enforces the
// provider limit.
func Compose(t Type, theme, voice string, hashtags []string) (string, error) {
	if strings.TrimSpace(theme) == "" {
		return "", ErrMissingTheme
	}
	if strings.TrimSpace(voice) == "" {
		voice = "professional"
	}
	if !t.Valid() {
		t = TypeGeneric
	}

	body := t.template()(theme, voice)

	tags := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		tags = append(tags, h)
	}
	if len(tags) == 0 {
		return body, nil
	}
	return body + "\n\n" + strings.Join(tags, " "), nil
}
