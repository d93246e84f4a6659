package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProfileProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/profile/detailed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("auth = %q", got)
		}
		_ = json.NewEncoder(w).Encode(ProfileData{
			UserID:   "u-1",
			Industry: "software",
			Themes:   []string{"go"},
		})
	}))
	defer srv.Close()

	p := NewHTTPProfileProvider(HTTPConfig{BaseURL: srv.URL + "/"})
	got, err := p.DetailedProfile(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("DetailedProfile: %v", err)
	}
	if got.UserID != "u-1" || got.Industry != "software" {
		t.Fatalf("profile = %+v", got)
	}
}

func TestHTTPProfileProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"expired token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewHTTPProfileProvider(HTTPConfig{BaseURL: srv.URL})
	if _, err := p.DetailedProfile(context.Background(), "tok"); err == nil {
		t.Fatalf("expected error for 401")
	}
}

func TestHTTPTrendProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("industry"); got != "software" {
			t.Errorf("industry = %q", got)
		}
		if got := r.URL.Query().Get("keywords"); got != "go,testing" {
			t.Errorf("keywords = %q", got)
		}
		_ = json.NewEncoder(w).Encode(TrendInsights{
			Topics: []Topic{{Keyword: "wasm", Volume: 500}},
		})
	}))
	defer srv.Close()

	p := NewHTTPTrendProvider(HTTPConfig{BaseURL: srv.URL})
	got, err := p.ResearchTrends(context.Background(), "software", []string{"go", "testing"})
	if err != nil {
		t.Fatalf("ResearchTrends: %v", err)
	}
	if len(got.Topics) != 1 || got.Topics[0].Keyword != "wasm" {
		t.Fatalf("trends = %+v", got)
	}
	// industry is backfilled when the response omits it
	if got.Industry != "software" {
		t.Fatalf("industry = %q", got.Industry)
	}
}

func TestFallbackTrends(t *testing.T) {
	tr := FallbackTrends("finance")
	if !tr.Fallback {
		t.Fatalf("fallback flag not set")
	}
	if tr.Empty() {
		t.Fatalf("fallback set should not be empty")
	}
	if tr.Industry != "finance" || len(tr.Topics) != 3 || len(tr.Hashtags) != 3 {
		t.Fatalf("fallback = %+v", tr)
	}
}
