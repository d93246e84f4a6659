package publish

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

type fakeProvider struct {
	lastText       string
	lastVisibility string
	id             string
	metrics        Metrics
	err            error
}

func (f *fakeProvider) Publish(ctx context.Context, text, visibility string) (string, error) {
	f.lastText = text
	f.lastVisibility = visibility
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

func (f *fakeProvider) Metrics(ctx context.Context, deliveryID string) (Metrics, error) {
	if f.err != nil {
		return Metrics{}, f.err
	}
	return f.metrics, nil
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short passes through", in: "hello", max: 10, want: "hello"},
		{name: "exact length untouched", in: "hello", max: 5, want: "hello"},
		{name: "cut gets marker", in: "hello world", max: 7, want: "hello …"},
		{name: "zero max disables", in: "hello", max: 0, want: "hello"},
		{name: "tiny max drops marker", in: "hello", max: 2, want: "he"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("%s: Truncate(%q, %d) = %q, want %q", tc.name, tc.in, tc.max, got, tc.want)
		}
	}
}

func TestTruncateRuneSafe(t *testing.T) {
	in := strings.Repeat("héllo wörld ", 20)
	got := Truncate(in, 50)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 50 {
		t.Fatalf("rune count = %d, want 50", n)
	}
}

func TestDispatcherDefaults(t *testing.T) {
	fp := &fakeProvider{id: "post-1"}
	d := Dispatcher{Provider: fp}

	id, err := d.Deliver(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if id != "post-1" {
		t.Fatalf("id = %q", id)
	}
	if fp.lastVisibility != "PUBLIC" {
		t.Fatalf("visibility = %q, want default PUBLIC", fp.lastVisibility)
	}
}

func TestDispatcherEnforcesLimit(t *testing.T) {
	fp := &fakeProvider{id: "post-2"}
	d := Dispatcher{Provider: fp, MaxPostLen: 10, Visibility: "CONNECTIONS"}

	if _, err := d.Deliver(context.Background(), strings.Repeat("a", 50)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if n := utf8.RuneCountInString(fp.lastText); n != 10 {
		t.Fatalf("delivered %d runes, want 10", n)
	}
	if fp.lastVisibility != "CONNECTIONS" {
		t.Fatalf("visibility = %q", fp.lastVisibility)
	}
}

func TestDispatcherFetchMetrics(t *testing.T) {
	fp := &fakeProvider{metrics: Metrics{Likes: 7, Reach: 100}}
	d := Dispatcher{Provider: fp}

	m, err := d.FetchMetrics(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("FetchMetrics: %v", err)
	}
	if m.Likes != 7 || m.Reach != 100 {
		t.Fatalf("metrics = %+v", m)
	}
}
