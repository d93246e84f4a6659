package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP-backed provider adapters.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	return c
}

// HTTPProfileProvider talks to the Identity & Profile Provider's REST surface.
type HTTPProfileProvider struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPProfileProvider(cfg HTTPConfig) *HTTPProfileProvider {
	cfg = cfg.withDefaults()
	return &HTTPProfileProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (p *HTTPProfileProvider) DetailedProfile(ctx context.Context, token string) (ProfileData, error) {
	var out ProfileData
	err := getJSON(ctx, p.client, p.cfg.BaseURL+"/v1/profile/detailed", token, nil, &out)
	if err != nil {
		return ProfileData{}, fmt.Errorf("profile provider: %w", err)
	}
	return out, nil
}

// HTTPTrendProvider talks to the Trend Provider's REST surface.
type HTTPTrendProvider struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPTrendProvider(cfg HTTPConfig) *HTTPTrendProvider {
	cfg = cfg.withDefaults()
	return &HTTPTrendProvider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (p *HTTPTrendProvider) ResearchTrends(ctx context.Context, industry string, keywords []string) (TrendInsights, error) {
	q := url.Values{}
	q.Set("industry", industry)
	if len(keywords) > 0 {
		q.Set("keywords", strings.Join(keywords, ","))
	}
	var out TrendInsights
	err := getJSON(ctx, p.client, p.cfg.BaseURL+"/v1/trends", "", q, &out)
	if err != nil {
		return TrendInsights{}, fmt.Errorf("trend provider: %w", err)
	}
	if out.Industry == "" {
		out.Industry = industry
	}
	return out, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL, token string, q url.Values, out any) error {
	u := rawURL
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a short prefix for diagnostics; bodies here are small JSON errors.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
