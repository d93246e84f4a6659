package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig configures the HTTP provider adapter.
type HTTPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// RatePerSec throttles outbound calls (publish and metrics share one
	// limiter). Zero means 2/s.
	RatePerSec int
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 2
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	return c
}

// HTTPProvider is the REST adapter for the Publishing Provider.
type HTTPProvider struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	cfg = cfg.withDefaults()
	return &HTTPProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

type publishRequest struct {
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
}

type publishResponse struct {
	DeliveryID string `json:"delivery_id"`
}

func (p *HTTPProvider) Publish(ctx context.Context, text, visibility string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", &DeliveryError{Op: "publish", Reason: err.Error()}
	}

	body, err := json.Marshal(publishRequest{Text: text, Visibility: visibility})
	if err != nil {
		return "", &DeliveryError{Op: "publish", Reason: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/posts", bytes.NewReader(body))
	if err != nil {
		return "", &DeliveryError{Op: "publish", Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &DeliveryError{Op: "publish", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &DeliveryError{Op: "publish", Status: resp.StatusCode, Reason: readErrorBody(resp.Body)}
	}

	var out publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &DeliveryError{Op: "publish", Reason: "bad response: " + err.Error()}
	}
	if out.DeliveryID == "" {
		return "", &DeliveryError{Op: "publish", Reason: "response missing delivery_id"}
	}
	return out.DeliveryID, nil
}

func (p *HTTPProvider) Metrics(ctx context.Context, deliveryID string) (Metrics, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Metrics{}, &DeliveryError{Op: "metrics", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/v1/posts/"+deliveryID+"/metrics", nil)
	if err != nil {
		return Metrics{}, &DeliveryError{Op: "metrics", Reason: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)

	resp, err := p.client.Do(req)
	if err != nil {
		return Metrics{}, &DeliveryError{Op: "metrics", Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metrics{}, &DeliveryError{Op: "metrics", Status: resp.StatusCode, Reason: readErrorBody(resp.Body)}
	}

	var out Metrics
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Metrics{}, &DeliveryError{Op: "metrics", Reason: "bad response: " + err.Error()}
	}
	return out, nil
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	s := strings.TrimSpace(string(b))
	if s == "" {
		return "no body"
	}
	return s
}
