// Package acquire fetches rendered listing pages. Every backend reports
// failures as a Result value instead of an error so the caller can pick a
// fallback without unwinding.
package acquire

import (
	"context"
	"fmt"
	"time"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeBrowserUnavailable
	OutcomeNavigationFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeBrowserUnavailable:
		return "browser_unavailable"
	case OutcomeNavigationFailed:
		return "navigation_failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the outcome of one acquisition. HTML and Title are set only when
// Outcome is OutcomeOK; Err is set otherwise.
type Result struct {
	Outcome    Outcome
	URL        string
	HTML       string
	Title      string
	StatusCode int
	Err        error
	Elapsed    time.Duration
}

func (r Result) OK() bool { return r.Outcome == OutcomeOK }

func Success(url, html, title string, status int) Result {
	return Result{Outcome: OutcomeOK, URL: url, HTML: html, Title: title, StatusCode: status}
}

func BrowserUnavailable(url string, err error) Result {
	return Result{Outcome: OutcomeBrowserUnavailable, URL: url, Err: err}
}

func NavigationFailed(url string, err error) Result {
	return Result{Outcome: OutcomeNavigationFailed, URL: url, Err: err}
}

// Acquirer fetches one page. Implementations start an isolated browser per
// call and release it on every path.
type Acquirer interface {
	Acquire(ctx context.Context, url string) Result
}

// Options are shared by all backends.
type Options struct {
	NavTimeout  time.Duration
	SettleDelay time.Duration
	Profile     HeaderProfile
}

func (o Options) withDefaults() Options {
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.Profile.UserAgent == "" {
		o.Profile = DefaultProfile()
	}
	return o
}

// New returns the backend named by kind: playwright, chromedp or static.
func New(kind string, opts Options) (Acquirer, error) {
	switch kind {
	case "", "playwright":
		return NewPlaywrightAcquirer(opts), nil
	case "chromedp":
		return NewChromedpAcquirer(opts), nil
	case "static":
		return NewStaticAcquirer(opts), nil
	}
	return nil, fmt.Errorf("unknown acquirer backend %q", kind)
}

// Func adapts a plain function to Acquirer.
type Func func(ctx context.Context, url string) Result

func (f Func) Acquire(ctx context.Context, url string) Result { return f(ctx, url) }
