package publish

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProviderPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/posts" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req publishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "hello" || req.Visibility != "PUBLIC" {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(publishResponse{DeliveryID: "d-42"})
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, Token: "t", RatePerSec: 100})
	id, err := p.Publish(context.Background(), "hello", "PUBLIC")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if id != "d-42" {
		t.Fatalf("id = %q", id)
	}
}

func TestHTTPProviderPublishErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"duplicate"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, RatePerSec: 100})
	_, err := p.Publish(context.Background(), "hello", "PUBLIC")
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if derr.Op != "publish" || derr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("err = %+v", derr)
	}
}

func TestHTTPProviderPublishMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(publishResponse{})
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, RatePerSec: 100})
	if _, err := p.Publish(context.Background(), "hello", "PUBLIC"); err == nil {
		t.Fatalf("missing delivery_id should fail")
	}
}

func TestHTTPProviderMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/posts/d-42/metrics" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Metrics{Likes: 12, Comments: 3, Shares: 1, Reach: 400})
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, RatePerSec: 100})
	m, err := p.Metrics(context.Background(), "d-42")
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.Likes != 12 || m.Reach != 400 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestHTTPProviderRateLimitCancel(t *testing.T) {
	p := NewHTTPProvider(HTTPConfig{BaseURL: "http://unreachable.invalid", RatePerSec: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Publish(ctx, "x", "PUBLIC")
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DeliveryError on cancelled wait, got %v", err)
	}
}
