package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"render-service/internal/config"
	"render-service/utils"
)

// Renderer drives one render call end to end: validation, engine launch, page
// setup, navigation, render-completion wait, capture and guaranteed teardown.
// It is safe for concurrent use; each call owns its own session and page and
// no state is shared between calls beyond read-only configuration.
type Renderer struct {
	cfg    *config.Config
	engine Engine
	phases Phases
	log    *slog.Logger
}

func New(cfg *config.Config, engine Engine, phases Phases, log *slog.Logger) *Renderer {
	if phases == nil {
		phases = NoopPhases{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{cfg: cfg, engine: engine, phases: phases, log: log}
}

// Render converts a URL into an image or PDF artifact and returns the path it
// was written to. Sessions are never pooled or reused; every call pays full
// engine startup so unrelated requests stay isolated from each other.
func (r *Renderer) Render(ctx context.Context, raw RawRequest) (*Result, error) {
	req, err := ValidateOptions(raw)
	if err != nil {
		return nil, err
	}

	launch := BuildLaunchConfig(r.cfg, req)

	var session Session
	if err := r.phases.AcquireEngine(ctx, func(ctx context.Context) error {
		var err error
		session, err = r.engine.Launch(ctx, launch)
		return err
	}); err != nil {
		return nil, fmt.Errorf("acquire engine: %w", err)
	}

	var page Page
	var diag *Diagnostics

	// Teardown runs exactly once on every exit path. Failures here are
	// logged, never returned, so they cannot mask the error that brought
	// us down.
	defer func() {
		if diag != nil {
			diag.Detach()
		}
		if page != nil {
			if cerr := page.Close(); cerr != nil {
				r.log.Error("failed to close page", "error", cerr)
			}
		}
		if cerr := session.Close(); cerr != nil {
			r.log.Error("failed to close engine session", "error", cerr)
		}
	}()

	if err := r.phases.OpenPage(ctx, func(ctx context.Context) error {
		var err error
		page, err = session.NewPage(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	diag = AttachDiagnostics(page, r.log, r.cfg.VerboseLogging)

	if err := r.preparePage(ctx, page, req); err != nil {
		return nil, err
	}

	target := buildTargetURL(req.URL, req.Overrides.ExtraURLParams)
	if err := r.phases.Navigate(ctx, func(ctx context.Context) error {
		return page.Navigate(ctx, target)
	}); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", target, err)
	}

	for _, tag := range req.Overrides.ScriptTags {
		if err := page.AddScriptTag(ctx, tag); err != nil {
			return nil, fmt.Errorf("add script tag: %w", err)
		}
	}
	for _, tag := range req.Overrides.StyleTags {
		if err := page.AddStyleTag(ctx, tag); err != nil {
			return nil, fmt.Errorf("add style tag: %w", err)
		}
	}

	if err := r.phases.WaitForRenderComplete(ctx, func(ctx context.Context) error {
		return page.WaitForRenderComplete(ctx, time.Duration(req.Timeout)*time.Second)
	}); err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("wait for render: %w", err)
	}

	if cond := req.Overrides.WaitFor; cond != "" {
		if err := page.WaitFor(ctx, cond); err != nil {
			return nil, fmt.Errorf("waitFor %q: %w", cond, err)
		}
	}

	dest := req.FilePath
	if dest == "" {
		dest = utils.TempFilePath(req.Encoding)
	}

	if req.Encoding == EncodingPDF {
		err = r.phases.CapturePDF(ctx, func(ctx context.Context) error {
			return page.PDF(ctx, dest, req.Overrides.PDF)
		})
	} else {
		err = r.phases.CaptureImage(ctx, func(ctx context.Context) error {
			return page.Screenshot(ctx, dest, req.Encoding)
		})
	}
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	return &Result{FilePath: dest}, nil
}

// preparePage applies viewport, media emulation, navigation timeout and the
// renderKey authentication cookie before navigation.
func (r *Renderer) preparePage(ctx context.Context, page Page, req *Request) error {
	width, height := req.Width, req.Height
	if vp := req.Overrides.Viewport; vp != nil {
		if vp.Width > 0 {
			width = vp.Width
		}
		if vp.Height > 0 {
			height = vp.Height
		}
	}
	if err := page.SetViewport(ctx, width, height); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if media := req.Overrides.EmulateMedia; media != "" {
		if err := page.EmulateMedia(ctx, media); err != nil {
			return fmt.Errorf("emulate media: %w", err)
		}
	}

	if ms := req.Overrides.DefaultNavigationTimeout; ms > 0 {
		page.SetDefaultNavigationTimeout(time.Duration(ms) * time.Millisecond)
	}

	if err := page.SetCookie(ctx, "renderKey", req.RenderKey, req.Domain); err != nil {
		return fmt.Errorf("set render key cookie: %w", err)
	}

	return nil
}

func buildTargetURL(base string, params map[string]string) string {
	if len(params) == 0 {
		return base
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	sep := "?"
	if u, err := url.Parse(base); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return base + sep + values.Encode()
}
