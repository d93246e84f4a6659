// Package publish hands finished content to the external Publishing Provider
// and reads engagement metrics back.
package publish

import (
	"context"
	"fmt"
)

// Metrics are the raw engagement numbers the provider reports for a delivery.
type Metrics struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Reach    int `json:"reach"`
}

// Provider is the external publishing surface.
type Provider interface {
	// Publish delivers text and returns the provider's delivery id.
	Publish(ctx context.Context, text, visibility string) (string, error)
	// Metrics fetches engagement numbers for a previous delivery.
	Metrics(ctx context.Context, deliveryID string) (Metrics, error)
}

// DeliveryError is a typed provider failure. It is terminal for the job
// occurrence that triggered the delivery.
type DeliveryError struct {
	Op     string // "publish" or "metrics"
	Status int    // HTTP status when available, 0 for transport failures
	Reason string
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("delivery %s failed: status %d: %s", e.Op, e.Status, e.Reason)
	}
	return fmt.Sprintf("delivery %s failed: %s", e.Op, e.Reason)
}
