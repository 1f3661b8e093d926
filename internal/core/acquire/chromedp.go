package acquire

import (
	"context"
	"fmt"
	"time"

	"emlak-scraper/internal/logger"

	"github.com/chromedp/chromedp"
)

// ChromedpAcquirer talks to Chrome over the DevTools protocol. Each call gets
// its own allocator, so no browser process outlives the call.
type ChromedpAcquirer struct {
	opts Options
	log  *logger.Logger
}

func NewChromedpAcquirer(opts Options) *ChromedpAcquirer {
	return &ChromedpAcquirer{opts: opts.withDefaults(), log: logger.New("ChromedpAcquirer")}
}

func (a *ChromedpAcquirer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "tr-TR"),
		chromedp.Flag("accept-lang", a.opts.Profile.AcceptLanguage),
		chromedp.UserAgent(a.opts.Profile.UserAgent),
	)
	for _, f := range containerFlags {
		opts = append(opts, chromedp.Flag(f, true))
	}
	return opts
}

func (a *ChromedpAcquirer) Acquire(ctx context.Context, url string) Result {
	start := time.Now()
	res := a.acquire(ctx, url)
	res.Elapsed = time.Since(start)
	if !res.OK() {
		a.log.Warn().Str("url", url).Str("outcome", res.Outcome.String()).Err(res.Err).Msg("page acquisition failed")
	}
	return res
}

func (a *ChromedpAcquirer) acquire(ctx context.Context, url string) Result {
	if err := ctx.Err(); err != nil {
		return NavigationFailed(url, err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, a.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		return BrowserUnavailable(url, fmt.Errorf("start chrome: %w", err))
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, a.opts.NavTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	cancelNav()
	if err != nil {
		return NavigationFailed(url, fmt.Errorf("navigate: %w", err))
	}

	var html, title string
	if err := chromedp.Run(browserCtx,
		chromedp.Sleep(a.opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Title(&title),
	); err != nil {
		return NavigationFailed(url, fmt.Errorf("read content: %w", err))
	}
	return Success(url, html, title, 200)
}
