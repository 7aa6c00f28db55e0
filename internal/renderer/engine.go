package renderer

import (
	"context"
	"time"
)

// Engine abstracts the headless browser. The production implementation lives
// in internal/browser and drives Chrome over CDP; tests substitute fakes.
type Engine interface {
	Launch(ctx context.Context, cfg LaunchConfig) (Session, error)
}

// Session is an exclusively-owned handle to one running engine instance.
// It is created once per render call and closed exactly once, after its page.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// PageEvent identifies a class of page-level diagnostic events.
type PageEvent string

const (
	EventCrash           PageEvent = "crash"
	EventPageError       PageEvent = "pageError"
	EventConsole         PageEvent = "console"
	EventRequestFailed   PageEvent = "requestFailed"
	EventRequestStarted  PageEvent = "requestStarted"
	EventRequestFinished PageEvent = "requestFinished"
	EventClose           PageEvent = "close"
)

// Diagnostic is the payload delivered to page event handlers.
type Diagnostic struct {
	Level   string // "error" for error-severity events, empty otherwise
	Message string
	URL     string
}

// Subscription is an opaque handle returned by Page.Subscribe. Unsubscribing
// by handle rather than by handler value avoids function-identity mismatches
// between attach and detach.
type Subscription uint64

// Page is a single document context within a session, created once per render
// call and closed exactly once, before the session.
type Page interface {
	Subscribe(event PageEvent, fn func(Diagnostic)) Subscription
	Unsubscribe(sub Subscription)

	SetViewport(ctx context.Context, width, height int) error
	EmulateMedia(ctx context.Context, media string) error
	SetDefaultNavigationTimeout(d time.Duration)
	SetCookie(ctx context.Context, name, value, domain string) error

	// Navigate loads the URL and returns once network activity is idle.
	Navigate(ctx context.Context, url string) error
	AddScriptTag(ctx context.Context, tag Tag) error
	AddStyleTag(ctx context.Context, tag Tag) error

	// WaitForRenderComplete blocks until the page-exposed rendered-element
	// counter reaches the number of panel elements, or returns ErrTimeout.
	WaitForRenderComplete(ctx context.Context, timeout time.Duration) error

	// WaitFor applies an explicit caller-requested wait condition: an integer
	// is a sleep in milliseconds, anything else a CSS selector to wait for.
	WaitFor(ctx context.Context, condition string) error

	Screenshot(ctx context.Context, path, format string) error
	PDF(ctx context.Context, path string, opts *PDFOptions) error

	Close() error
}
