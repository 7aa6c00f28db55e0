package browser

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"render-service/internal/renderer"
)

func chromePath(t *testing.T) string {
	t.Helper()
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skipf("no Chrome binary found; set CHROME_BIN to run this test")
	return ""
}

// End-to-end smoke test against a real browser. Skipped when no Chrome
// binary is available on the host.
func TestChromeRendersStaticPage(t *testing.T) {
	bin := chromePath(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	engine := New()
	session, err := engine.Launch(ctx, renderer.LaunchConfig{
		Env:       []string{"TZ=UTC"},
		NoSandbox: true,
		Headless:  true,
		ExecPath:  bin,
	})
	if err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	defer session.Close()

	page, err := session.NewPage(ctx)
	if err != nil {
		t.Fatalf("new page failed: %v", err)
	}
	defer page.Close()

	if err := page.SetViewport(ctx, 800, 600); err != nil {
		t.Fatalf("set viewport failed: %v", err)
	}

	html := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(html, []byte(`<html><body><div class="panel">ok</div><script>window.panelsRendered=1;</script></body></html>`), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := page.Navigate(ctx, "file://"+html); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if err := page.WaitForRenderComplete(ctx, 10*time.Second); err != nil {
		t.Fatalf("render wait failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.png")
	if err := page.Screenshot(ctx, out, "png"); err != nil {
		t.Fatalf("screenshot failed: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("screenshot file is empty")
	}
}
