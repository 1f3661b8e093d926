package acquire

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emlak-scraper/internal/logger"

	"github.com/gocolly/colly"
)

// StaticAcquirer fetches raw HTML without executing scripts. It never
// reports OutcomeBrowserUnavailable.
type StaticAcquirer struct {
	opts Options
	log  *logger.Logger
}

func NewStaticAcquirer(opts Options) *StaticAcquirer {
	return &StaticAcquirer{opts: opts.withDefaults(), log: logger.New("StaticAcquirer")}
}

func (a *StaticAcquirer) Acquire(ctx context.Context, url string) Result {
	start := time.Now()
	res := a.acquire(ctx, url)
	res.Elapsed = time.Since(start)
	if !res.OK() {
		a.log.Warn().Str("url", url).Err(res.Err).Msg("static fetch failed")
	}
	return res
}

func (a *StaticAcquirer) acquire(ctx context.Context, url string) Result {
	if err := ctx.Err(); err != nil {
		return NavigationFailed(url, err)
	}

	c := colly.NewCollector(
		colly.UserAgent(a.opts.Profile.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(a.opts.NavTimeout)

	headers := a.opts.Profile.Headers()
	c.OnRequest(func(r *colly.Request) {
		for k, v := range headers {
			r.Headers.Set(k, v)
		}
	})

	var (
		body     []byte
		status   int
		title    string
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})
	c.OnHTML("head > title", func(e *colly.HTMLElement) {
		if title == "" {
			title = strings.TrimSpace(e.Text)
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		fetchErr = err
	})

	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return NavigationFailed(url, fmt.Errorf("fetch: %w", fetchErr))
	}
	if len(body) == 0 {
		return NavigationFailed(url, fmt.Errorf("fetch: empty body"))
	}
	return Success(url, string(body), title, status)
}
