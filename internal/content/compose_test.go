package content

import (
	"strings"
	"testing"
)

func TestParseKnownTypes(t *testing.T) {
	t.Parallel()
	for _, typ := range All() {
		if got := Parse(string(typ)); got != typ {
			t.Fatalf("Parse(%q) = %q", typ, got)
		}
	}
	if got := Parse("somethingElse"); got != TypeGeneric {
		t.Fatalf("unknown type should map to generic, got %q", got)
	}
	if got := Parse("  educational "); got != TypeEducational {
		t.Fatalf("Parse should trim whitespace, got %q", got)
	}
}

func TestComposeInterpolatesThemeAndVoice(t *testing.T) {
	t.Parallel()
	for _, typ := range All() {
		text, err := Compose(typ, "cloud cost control", "direct", nil)
		if err != nil {
			t.Fatalf("Compose(%q): %v", typ, err)
		}
		if !strings.Contains(text, "cloud cost control") {
			t.Fatalf("%q body missing theme: %q", typ, text)
		}
		if !strings.Contains(text, "direct") {
			t.Fatalf("%q body missing voice: %q", typ, text)
		}
	}
}

func TestComposeAppendsHashtags(t *testing.T) {
	t.Parallel()
	text, err := Compose(TypeEngagement, "hiring", "casual", []string{"#Hiring", " ", "#Teams"})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.HasSuffix(text, "\n\n#Hiring #Teams") {
		t.Fatalf("hashtag line malformed: %q", text)
	}
}

func TestComposeDefaults(t *testing.T) {
	t.Parallel()
	if _, err := Compose(TypeGeneric, "   ", "x", nil); err != ErrMissingTheme {
		t.Fatalf("expected ErrMissingTheme, got %v", err)
	}

	// empty voice falls back to professional; invalid type to generic
	text, err := Compose(Type("bogus"), "ai", "", nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(text, "professional") {
		t.Fatalf("expected default voice in body: %q", text)
	}
}
