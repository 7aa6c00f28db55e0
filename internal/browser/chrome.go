package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"render-service/internal/renderer"
)

// networkIdleAfter is how long the page must be free of network activity
// before navigation is considered settled.
const networkIdleAfter = 500 * time.Millisecond

// renderCompleteExpr is polled until truthy: the page increments
// window.panelsRendered as panels finish painting.
const renderCompleteExpr = `(window.panelsRendered || 0) >= document.querySelectorAll('.panel').length`

// Chrome drives headless Chrome over CDP via chromedp.
type Chrome struct{}

func New() *Chrome {
	return &Chrome{}
}

// Launch builds an exec allocator from the launch configuration. Chrome
// itself starts lazily with the first page.
func (Chrome) Launch(ctx context.Context, cfg renderer.LaunchConfig) (renderer.Session, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.IgnoreHTTPSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	for _, kv := range cfg.Env {
		opts = append(opts, chromedp.Env(kv))
	}
	for _, arg := range cfg.ExtraArgs {
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if value == "" {
			opts = append(opts, chromedp.Flag(name, true))
		} else {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &session{ctx: allocCtx, cancel: cancel}, nil
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session) NewPage(ctx context.Context) (renderer.Page, error) {
	pageCtx, cancel := chromedp.NewContext(s.ctx)
	p := &page{
		ctx:      pageCtx,
		cancel:   cancel,
		handlers: make(map[renderer.Subscription]handler),
		nextSub:  1,
	}
	chromedp.ListenTarget(pageCtx, p.dispatch)

	// Force the browser to start now so launch failures surface here
	// rather than on the first page operation.
	if err := chromedp.Run(pageCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return p, nil
}

func (s *session) Close() error {
	s.cancel()
	return nil
}

type handler struct {
	event renderer.PageEvent
	fn    func(renderer.Diagnostic)
}

type page struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration

	mu       sync.Mutex
	nextSub  renderer.Subscription
	handlers map[renderer.Subscription]handler
}

func (p *page) Subscribe(event renderer.PageEvent, fn func(renderer.Diagnostic)) renderer.Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.handlers[id] = handler{event: event, fn: fn}
	return id
}

func (p *page) Unsubscribe(sub renderer.Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handlers, sub)
}

func (p *page) emit(event renderer.PageEvent, d renderer.Diagnostic) {
	p.mu.Lock()
	var fns []func(renderer.Diagnostic)
	for _, h := range p.handlers {
		if h.event == event {
			fns = append(fns, h.fn)
		}
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(d)
	}
}

// dispatch maps raw CDP events onto the page event kinds.
func (p *page) dispatch(v interface{}) {
	switch ev := v.(type) {
	case *inspector.EventTargetCrashed:
		p.emit(renderer.EventCrash, renderer.Diagnostic{Level: "error", Message: "render target crashed"})
	case *inspector.EventDetached:
		p.emit(renderer.EventClose, renderer.Diagnostic{Message: ev.Reason.String()})
	case *cdpruntime.EventExceptionThrown:
		p.emit(renderer.EventPageError, renderer.Diagnostic{Level: "error", Message: ev.ExceptionDetails.Error()})
	case *cdpruntime.EventConsoleAPICalled:
		level := ""
		if ev.Type == cdpruntime.APITypeError {
			level = "error"
		}
		p.emit(renderer.EventConsole, renderer.Diagnostic{Level: level, Message: consoleText(ev.Args)})
	case *network.EventRequestWillBeSent:
		p.emit(renderer.EventRequestStarted, renderer.Diagnostic{URL: ev.Request.URL})
	case *network.EventLoadingFailed:
		p.emit(renderer.EventRequestFailed, renderer.Diagnostic{Level: "error", Message: ev.ErrorText})
	case *network.EventLoadingFinished:
		p.emit(renderer.EventRequestFinished, renderer.Diagnostic{})
	}
}

func consoleText(args []*cdpruntime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg.Value != nil:
			parts = append(parts, string(arg.Value))
		case arg.Description != "":
			parts = append(parts, arg.Description)
		}
	}
	return strings.Join(parts, " ")
}

// run executes actions on the page's CDP context. The caller context only
// contributes cancellation, it does not carry the chromedp target.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.ctx
	if ctx.Done() != nil {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithCancel(p.ctx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *page) SetViewport(ctx context.Context, width, height int) error {
	return p.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (p *page) EmulateMedia(ctx context.Context, media string) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetEmulatedMedia().WithMedia(media).Do(ctx)
	}))
}

func (p *page) SetDefaultNavigationTimeout(d time.Duration) {
	p.navTimeout = d
}

func (p *page) SetCookie(ctx context.Context, name, value, domain string) error {
	return p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie(name, value).WithDomain(domain).WithPath("/").Do(ctx)
	}))
}

func (p *page) Navigate(ctx context.Context, urlStr string) error {
	if p.navTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.navTimeout)
		defer cancel()
	}
	return p.run(ctx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body", chromedp.ByQuery),
		waitForNetworkIdle(networkIdleAfter),
	)
}

// waitForNetworkIdle resolves once no resource activity has been observed for
// the given duration, tracked in the page with a PerformanceObserver.
func waitForNetworkIdle(d time.Duration) chromedp.ActionFunc {
	js := `(function(waitMs){
      return new Promise((resolve)=>{
        if (!('PerformanceObserver' in window)) {
          setTimeout(resolve, waitMs);
          return;
        }
        let last = Date.now();
        const obs = new PerformanceObserver(()=>{ last = Date.now(); });
        try { obs.observe({entryTypes:['resource','navigation']}); } catch(e) {}
        const tick = () => {
          if (Date.now()-last >= waitMs) { try { obs.disconnect(); } catch(e){} resolve(); return; }
          setTimeout(tick, 100);
        };
        tick();
      });
    })(%d);`
	return func(ctx context.Context) error {
		return chromedp.Evaluate(fmt.Sprintf(js, int(d.Milliseconds())), nil, awaitPromise).Do(ctx)
	}
}

func awaitPromise(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

const addScriptTagJS = `(function(url, content){
      return new Promise((resolve, reject)=>{
        const el = document.createElement('script');
        if (url) {
          el.src = url;
          el.onload = () => resolve(true);
          el.onerror = () => reject(new Error('failed to load script ' + url));
          document.head.appendChild(el);
        } else {
          el.textContent = content;
          document.head.appendChild(el);
          resolve(true);
        }
      });
    })(%s, %s);`

const addStyleTagJS = `(function(url, content){
      return new Promise((resolve, reject)=>{
        if (url) {
          const el = document.createElement('link');
          el.rel = 'stylesheet';
          el.href = url;
          el.onload = () => resolve(true);
          el.onerror = () => reject(new Error('failed to load stylesheet ' + url));
          document.head.appendChild(el);
        } else {
          const el = document.createElement('style');
          el.textContent = content;
          document.head.appendChild(el);
          resolve(true);
        }
      });
    })(%s, %s);`

func (p *page) AddScriptTag(ctx context.Context, tag renderer.Tag) error {
	expr := fmt.Sprintf(addScriptTagJS, strconv.Quote(tag.URL), strconv.Quote(tag.Content))
	return p.run(ctx, chromedp.Evaluate(expr, nil, awaitPromise))
}

func (p *page) AddStyleTag(ctx context.Context, tag renderer.Tag) error {
	expr := fmt.Sprintf(addStyleTagJS, strconv.Quote(tag.URL), strconv.Quote(tag.Content))
	return p.run(ctx, chromedp.Evaluate(expr, nil, awaitPromise))
}

func (p *page) WaitForRenderComplete(ctx context.Context, timeout time.Duration) error {
	err := p.run(ctx, chromedp.Poll(renderCompleteExpr, nil,
		chromedp.WithPollingInterval(100*time.Millisecond),
		chromedp.WithPollingTimeout(timeout),
	))
	if errors.Is(err, chromedp.ErrPollingTimeout) {
		return renderer.ErrTimeout
	}
	return err
}

func (p *page) WaitFor(ctx context.Context, condition string) error {
	if ms, err := strconv.Atoi(strings.TrimSpace(condition)); err == nil && ms >= 0 {
		return p.run(ctx, chromedp.Sleep(time.Duration(ms)*time.Millisecond))
	}
	return p.run(ctx, chromedp.WaitVisible(condition, chromedp.ByQuery))
}

func (p *page) Screenshot(ctx context.Context, path, format string) error {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = cdppage.CaptureScreenshot().
			WithFormat(cdppage.CaptureScreenshotFormat(format)).
			Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (p *page) PDF(ctx context.Context, path string, opts *renderer.PDFOptions) error {
	var buf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := cdppage.PrintToPDF()
		if opts != nil {
			if opts.Landscape != nil {
				params = params.WithLandscape(*opts.Landscape)
			}
			if opts.PrintBackground != nil {
				params = params.WithPrintBackground(*opts.PrintBackground)
			}
			if opts.PaperWidth != nil {
				params = params.WithPaperWidth(*opts.PaperWidth)
			}
			if opts.PaperHeight != nil {
				params = params.WithPaperHeight(*opts.PaperHeight)
			}
			if opts.Scale != nil {
				params = params.WithScale(*opts.Scale)
			}
		}
		var err error
		buf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (p *page) Close() error {
	// Graceful CDP shutdown; falls back to killing the process on error.
	if err := chromedp.Cancel(p.ctx); err != nil {
		p.cancel()
		return err
	}
	return nil
}
