package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"render-service/internal/config"
	"render-service/internal/renderer"
)

// brokenEngine refuses every launch, as a crashed Chrome install would.
type brokenEngine struct {
	launches int
}

func (e *brokenEngine) Launch(ctx context.Context, cfg renderer.LaunchConfig) (renderer.Session, error) {
	e.launches++
	return nil, errors.New("exec: no such file or directory")
}

func TestRenderServiceBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	engine := &brokenEngine{}
	svc := NewRenderService(&config.Config{}, engine, nil, slog.Default())

	raw := renderer.RawRequest{URL: "http://localhost:3000/d/abc"}

	for i := 0; i < 5; i++ {
		if _, err := svc.Render(context.Background(), raw); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i)
		}
	}
	if engine.launches != 5 {
		t.Fatalf("engine saw %d launches before the breaker opened, want 5", engine.launches)
	}

	_, err := svc.Render(context.Background(), raw)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable while open, got %v", err)
	}
	if engine.launches != 5 {
		t.Fatalf("open breaker still reached the engine, launches=%d", engine.launches)
	}
}

func TestRenderServiceClientErrorsBypassBreaker(t *testing.T) {
	engine := &brokenEngine{}
	svc := NewRenderService(&config.Config{}, engine, nil, slog.Default())

	bad := renderer.RawRequest{URL: "http://localhost/", Encoding: "gif"}

	// Malformed requests fail fast with their own classification and never
	// count against the engine.
	for i := 0; i < 10; i++ {
		_, err := svc.Render(context.Background(), bad)
		if !errors.Is(err, renderer.ErrBadRequest) {
			t.Fatalf("expected ErrBadRequest, got %v", err)
		}
	}
	if engine.launches != 0 {
		t.Fatalf("validation failures reached the engine, launches=%d", engine.launches)
	}

	_, err := svc.Render(context.Background(), renderer.RawRequest{URL: "http://localhost/"})
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("breaker tripped on client errors")
	}
}
