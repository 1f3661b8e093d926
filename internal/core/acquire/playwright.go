package acquire

import (
	"context"
	"fmt"
	"time"

	"emlak-scraper/internal/logger"

	"github.com/playwright-community/playwright-go"
)

// containerFlags let Chromium start inside containers without a usable
// /dev/shm or user namespaces. Both browser backends pass exactly these.
var containerFlags = []string{"no-sandbox", "disable-setuid-sandbox", "disable-dev-shm-usage"}

func chromiumArgs() []string {
	args := make([]string, len(containerFlags))
	for i, f := range containerFlags {
		args[i] = "--" + f
	}
	return args
}

// PlaywrightAcquirer drives a fresh headless Chromium per call.
type PlaywrightAcquirer struct {
	opts Options
	log  *logger.Logger
}

func NewPlaywrightAcquirer(opts Options) *PlaywrightAcquirer {
	return &PlaywrightAcquirer{opts: opts.withDefaults(), log: logger.New("PlaywrightAcquirer")}
}

func (a *PlaywrightAcquirer) Acquire(ctx context.Context, url string) Result {
	start := time.Now()
	res := a.acquire(ctx, url)
	res.Elapsed = time.Since(start)
	if res.OK() {
		a.log.Info().Str("url", url).Int("status", res.StatusCode).Dur("elapsed", res.Elapsed).Msg("page acquired")
	} else {
		a.log.Warn().Str("url", url).Str("outcome", res.Outcome.String()).Err(res.Err).Msg("page acquisition failed")
	}
	return res
}

func (a *PlaywrightAcquirer) acquire(ctx context.Context, url string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = NavigationFailed(url, fmt.Errorf("playwright panic: %v", r))
		}
	}()
	if err := ctx.Err(); err != nil {
		return NavigationFailed(url, err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return BrowserUnavailable(url, fmt.Errorf("playwright run: %w", err))
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     chromiumArgs(),
	})
	if err != nil {
		return BrowserUnavailable(url, fmt.Errorf("launch: %w", err))
	}
	defer browser.Close()

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:        playwright.String(a.opts.Profile.UserAgent),
		Locale:           playwright.String("tr-TR"),
		ExtraHttpHeaders: a.opts.Profile.Headers(),
	})
	if err != nil {
		return BrowserUnavailable(url, fmt.Errorf("new context: %w", err))
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return BrowserUnavailable(url, fmt.Errorf("new page: %w", err))
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(a.opts.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return NavigationFailed(url, fmt.Errorf("goto: %w", err))
	}
	if a.opts.SettleDelay > 0 {
		page.WaitForTimeout(float64(a.opts.SettleDelay.Milliseconds()))
	}

	content, err := page.Content()
	if err != nil {
		return NavigationFailed(url, fmt.Errorf("content: %w", err))
	}
	title, _ := page.Title()

	status := 200
	if resp != nil {
		status = resp.Status()
	}
	return Success(url, content, title, status)
}
