package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"render-service/internal/config"
	"render-service/internal/renderer"
	"render-service/internal/telemetry"

	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the engine circuit breaker is open.
var ErrUnavailable = errors.New("render engine unavailable")

// RenderService wraps the orchestrator with caller-side policy: a circuit
// breaker that trips when Chrome fails repeatedly, and render outcome
// metrics. The orchestrator itself never retries and never pools sessions.
type RenderService struct {
	renderer *renderer.Renderer
	breaker  *gobreaker.CircuitBreaker
	metrics  *telemetry.Metrics
	log      *slog.Logger
}

func NewRenderService(cfg *config.Config, engine renderer.Engine, metrics *telemetry.Metrics, log *slog.Logger) *RenderService {
	var phases renderer.Phases
	if metrics != nil {
		phases = renderer.NewTimedPhases(metrics)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chrome-engine",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &RenderService{
		renderer: renderer.New(cfg, engine, phases, log),
		breaker:  breaker,
		metrics:  metrics,
		log:      log,
	}
}

// Render runs one render call through the breaker.
func (s *RenderService) Render(ctx context.Context, raw renderer.RawRequest) (*renderer.Result, error) {
	// Client errors are the caller's fault and must not trip the breaker.
	if _, err := renderer.ValidateOptions(raw); err != nil {
		s.recordRender(ctx, "bad_request")
		return nil, err
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.renderer.Render(ctx, raw)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			s.recordRender(ctx, "rejected")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		case errors.Is(err, renderer.ErrTimeout):
			s.recordRender(ctx, "timeout")
		default:
			s.recordRender(ctx, "error")
		}
		return nil, err
	}

	s.recordRender(ctx, "success")
	return res.(*renderer.Result), nil
}

func (s *RenderService) recordRender(ctx context.Context, status string) {
	if s.metrics != nil {
		s.metrics.RecordRender(ctx, status)
	}
}
