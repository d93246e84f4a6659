package publish

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultMaxPostLen mirrors the publishing provider's post size limit.
	DefaultMaxPostLen = 3000

	// truncationMarker replaces the tail of an over-long post so readers can
	// tell the text was cut.
	truncationMarker = " …"

	defaultVisibility = "PUBLIC"
)

// Dispatcher is the thin adapter between synthesized content and the
// Publishing Provider: it enforces the provider size limit and carries the
// configured visibility and call timeout.
type Dispatcher struct {
	Provider   Provider
	Visibility string
	MaxPostLen int

	// Timeout bounds each provider call. Zero means 15s.
	Timeout time.Duration
}

// Deliver publishes text and returns the provider delivery id.
func (d Dispatcher) Deliver(ctx context.Context, text string) (string, error) {
	visibility := d.Visibility
	if strings.TrimSpace(visibility) == "" {
		visibility = defaultVisibility
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return d.Provider.Publish(ctx, Truncate(text, d.maxLen()), visibility)
}

// FetchMetrics reads engagement numbers for a delivery, with the same bounded
// timeout as Deliver.
func (d Dispatcher) FetchMetrics(ctx context.Context, deliveryID string) (Metrics, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return d.Provider.Metrics(ctx, deliveryID)
}

func (d Dispatcher) maxLen() int {
	if d.MaxPostLen > 0 {
		return d.MaxPostLen
	}
	return DefaultMaxPostLen
}

// Truncate cuts text to max runes, replacing the tail with a marker.
// Rune-based so multi-byte text never gets cut mid-character.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	marker := []rune(truncationMarker)
	if max <= len(marker) {
		return string(runes[:max])
	}
	return string(runes[:max-len(marker)]) + truncationMarker
}
