package renderer

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestDiagnosticsSubscriptionSet(t *testing.T) {
	page := newFakePage()
	d := AttachDiagnostics(page, slog.Default(), false)
	if page.attaches != 4 {
		t.Fatalf("non-verbose attach count = %d, want 4", page.attaches)
	}
	d.Detach()
	if page.detaches != 4 || len(page.subs) != 0 {
		t.Fatalf("detach not symmetric: detaches=%d remaining=%d", page.detaches, len(page.subs))
	}

	page = newFakePage()
	d = AttachDiagnostics(page, slog.Default(), true)
	if page.attaches != 7 {
		t.Fatalf("verbose attach count = %d, want 7", page.attaches)
	}
	d.Detach()
	if page.detaches != 7 || len(page.subs) != 0 {
		t.Fatalf("verbose detach not symmetric: detaches=%d remaining=%d", page.detaches, len(page.subs))
	}

	// Detach is idempotent; a second call must not over-release.
	d.Detach()
	if page.detaches != 7 {
		t.Fatalf("second detach released handlers again: %d", page.detaches)
	}
}

func TestDiagnosticsConsoleSeverityGating(t *testing.T) {
	page := newFakePage()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	AttachDiagnostics(page, log, false)

	// Console handler is registered even when not verbose, so that
	// error-severity messages always reach the sink.
	found := false
	for _, event := range page.subs {
		if event == EventConsole {
			found = true
		}
	}
	if !found {
		t.Fatalf("console handler missing in non-verbose mode")
	}
	for _, event := range page.subs {
		if event == EventRequestStarted || event == EventRequestFinished || event == EventClose {
			t.Fatalf("verbose-only handler %q attached in non-verbose mode", event)
		}
	}
}
