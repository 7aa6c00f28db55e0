package renderer

import (
	"context"
	"errors"
	"testing"
)

// The default instrumentation must be transparent: identical results and
// identical propagated failures compared to calling the action directly.
func TestNoopPhasesTransparency(t *testing.T) {
	phases := NoopPhases{}
	ctx := context.Background()

	wrap := map[string]func(context.Context, PhaseFunc) error{
		"acquireEngine":         phases.AcquireEngine,
		"openPage":              phases.OpenPage,
		"navigate":              phases.Navigate,
		"waitForRenderComplete": phases.WaitForRenderComplete,
		"captureImage":          phases.CaptureImage,
		"capturePdf":            phases.CapturePDF,
	}

	sentinel := errors.New("phase boom")

	for name, fn := range wrap {
		t.Run(name, func(t *testing.T) {
			var artifact string
			err := fn(ctx, func(ctx context.Context) error {
				artifact = "produced"
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if artifact != "produced" {
				t.Fatalf("wrapped action did not run")
			}

			err = fn(ctx, func(ctx context.Context) error {
				return sentinel
			})
			if !errors.Is(err, sentinel) {
				t.Fatalf("failure not propagated unchanged: %v", err)
			}
		})
	}
}
