package renderer

import (
	"context"
	"time"

	"render-service/internal/telemetry"
)

// PhaseFunc is one step of the browser lifecycle. Phase artifacts (session,
// page, captured file) are carried through closure captures; the wrapper only
// sees the error.
type PhaseFunc func(ctx context.Context) error

// Phases is the instrumentation seam around the render lifecycle. Every
// implementation must be transparent: it returns exactly what the wrapped
// action returns and may only add side-effecting observation.
type Phases interface {
	AcquireEngine(ctx context.Context, fn PhaseFunc) error
	OpenPage(ctx context.Context, fn PhaseFunc) error
	Navigate(ctx context.Context, fn PhaseFunc) error
	WaitForRenderComplete(ctx context.Context, fn PhaseFunc) error
	CaptureImage(ctx context.Context, fn PhaseFunc) error
	CapturePDF(ctx context.Context, fn PhaseFunc) error
}

// NoopPhases is the default pass-through implementation.
type NoopPhases struct{}

func (NoopPhases) AcquireEngine(ctx context.Context, fn PhaseFunc) error         { return fn(ctx) }
func (NoopPhases) OpenPage(ctx context.Context, fn PhaseFunc) error              { return fn(ctx) }
func (NoopPhases) Navigate(ctx context.Context, fn PhaseFunc) error              { return fn(ctx) }
func (NoopPhases) WaitForRenderComplete(ctx context.Context, fn PhaseFunc) error { return fn(ctx) }
func (NoopPhases) CaptureImage(ctx context.Context, fn PhaseFunc) error          { return fn(ctx) }
func (NoopPhases) CapturePDF(ctx context.Context, fn PhaseFunc) error            { return fn(ctx) }

// TimedPhases records per-phase durations as OpenTelemetry metrics without
// touching orchestration logic.
type TimedPhases struct {
	metrics *telemetry.Metrics
}

func NewTimedPhases(m *telemetry.Metrics) *TimedPhases {
	return &TimedPhases{metrics: m}
}

func (p *TimedPhases) observe(ctx context.Context, phase string, fn PhaseFunc) error {
	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordPhase(ctx, phase, time.Since(start).Seconds(), err == nil)
	return err
}

func (p *TimedPhases) AcquireEngine(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "acquireEngine", fn)
}

func (p *TimedPhases) OpenPage(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "openPage", fn)
}

func (p *TimedPhases) Navigate(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "navigate", fn)
}

func (p *TimedPhases) WaitForRenderComplete(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "waitForRenderComplete", fn)
}

func (p *TimedPhases) CaptureImage(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "captureImage", fn)
}

func (p *TimedPhases) CapturePDF(ctx context.Context, fn PhaseFunc) error {
	return p.observe(ctx, "capturePdf", fn)
}
