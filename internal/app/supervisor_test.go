package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	logx "postpilot/pkg/logx"
)

func TestSupervisorFirstErrorCancelsGroup(t *testing.T) {
	sup := NewSupervisor(context.Background(), logx.Nop())

	boom := errors.New("boom")
	sup.Go("failing", func(ctx context.Context) error { return boom })
	sup.Go("waiting", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err() // clean exit, must not overwrite the first error
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sup.Wait(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("Wait = %v, want the first error", err)
	}
	select {
	case <-sup.Context().Done():
	default:
		t.Fatalf("group context not cancelled after error")
	}
}

func TestSupervisorRecoversPanic(t *testing.T) {
	sup := NewSupervisor(context.Background(), logx.Nop())
	sup.Go("exploding", func(ctx context.Context) error { panic("kaboom") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := sup.Wait(ctx)
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Fatalf("Wait = %v, want recovered panic error", err)
	}
}

func TestSupervisorCleanShutdown(t *testing.T) {
	sup := NewSupervisor(context.Background(), logx.Nop())
	sup.Go("loop", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	sup.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Wait(ctx); err != nil {
		t.Fatalf("Wait after clean cancel = %v", err)
	}
}
