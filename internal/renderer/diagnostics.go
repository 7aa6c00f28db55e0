package renderer

import "log/slog"

// Diagnostics routes page-level events to the logging sink. Attachment and
// detachment are symmetric: Detach releases exactly the subscription handles
// Attach received, so no handler leaks across renders on a long-lived host.
type Diagnostics struct {
	page Page
	subs []Subscription
}

// AttachDiagnostics subscribes the diagnostic handlers on a freshly created
// page. Crash, uncaught exception and failed-request events always log at
// error level; console messages below error level, request start/finish and
// page close only log when verbose logging is enabled.
func AttachDiagnostics(page Page, log *slog.Logger, verbose bool) *Diagnostics {
	d := &Diagnostics{page: page}

	d.subs = append(d.subs,
		page.Subscribe(EventCrash, func(ev Diagnostic) {
			log.Error("page crashed", "error", ev.Message)
		}),
		page.Subscribe(EventPageError, func(ev Diagnostic) {
			log.Error("uncaught page exception", "error", ev.Message)
		}),
		page.Subscribe(EventRequestFailed, func(ev Diagnostic) {
			log.Error("page request failed", "url", ev.URL, "error", ev.Message)
		}),
		page.Subscribe(EventConsole, func(ev Diagnostic) {
			if ev.Level == "error" {
				log.Error("page console error", "message", ev.Message)
			} else if verbose {
				log.Debug("page console", "message", ev.Message)
			}
		}),
	)

	if verbose {
		d.subs = append(d.subs,
			page.Subscribe(EventRequestStarted, func(ev Diagnostic) {
				log.Debug("page request started", "url", ev.URL)
			}),
			page.Subscribe(EventRequestFinished, func(ev Diagnostic) {
				log.Debug("page request finished", "url", ev.URL)
			}),
			page.Subscribe(EventClose, func(ev Diagnostic) {
				log.Debug("page closed", "reason", ev.Message)
			}),
		)
	}

	return d
}

// Detach unsubscribes everything Attach subscribed.
func (d *Diagnostics) Detach() {
	for _, sub := range d.subs {
		d.page.Unsubscribe(sub)
	}
	d.subs = nil
}
