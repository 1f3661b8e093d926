// Package locate turns an acquired page into listing candidates, falling back
// to synthesized demonstration candidates when the page yields none.
package locate

import (
	"strings"

	"emlak-scraper/internal/core/acquire"
	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/logger"
	"emlak-scraper/internal/utils/markdown"

	"github.com/PuerkitoBio/goquery"
)

type Source string

const (
	SourcePage      Source = "page"
	SourceSynthetic Source = "synthetic"
)

// Candidate is a listing shell awaiting extraction. Known holds attribute
// values that are already certain; its ID and ProcessedDate are unset.
type Candidate struct {
	Source  Source
	RawHTML string
	Known   job.Listing
}

// DefaultSelectors match listing rows on common portals, most specific first.
var DefaultSelectors = []string{
	"tr.searchResultsItem",
	"[data-listing-id]",
	".listing-item",
	"article.listing",
}

// dateSelectors locate an in-row publication date, when the portal shows one.
var dateSelectors = []string{".searchResultsDateValue", ".listing-date", "time"}

type Options struct {
	Selectors     []string
	MaxCandidates int
	MaxRawBytes   int
}

type Locator struct {
	opts Options
	log  *logger.Logger
}

func New(opts Options) *Locator {
	if len(opts.Selectors) == 0 {
		opts.Selectors = DefaultSelectors
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 50
	}
	if opts.MaxRawBytes <= 0 {
		opts.MaxRawBytes = job.MaxRawContent
	}
	return &Locator{opts: opts, log: logger.New("Locator")}
}

// Locate never returns an empty slice.
func (l *Locator) Locate(res acquire.Result, month, year int) []Candidate {
	if res.OK() {
		if cands := l.Derive(res.HTML); len(cands) > 0 {
			l.log.LogInfof("derived %d candidates from %s", len(cands), res.URL)
			return cands
		}
		l.log.LogInfof("no listing rows found on %s, using synthesized candidates", res.URL)
	} else {
		l.log.LogWarnf("acquisition %s for %s, using synthesized candidates", res.Outcome, res.URL)
	}
	return Synthesize(month, year)
}

// Derive extracts candidate shells using the first selector that matches.
func (l *Locator) Derive(html string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var rows *goquery.Selection
	for _, sel := range l.opts.Selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			rows = found
			break
		}
	}
	if rows == nil {
		return nil
	}

	var out []Candidate
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		outer, err := goquery.OuterHtml(row)
		if err != nil || strings.TrimSpace(row.Text()) == "" {
			return true
		}
		c := Candidate{Source: SourcePage, RawHTML: markdown.TruncateBytes(outer, l.opts.MaxRawBytes)}
		c.Known.ListingDate = rowDate(row)
		out = append(out, c)
		return len(out) < l.opts.MaxCandidates
	})
	return out
}

func rowDate(row *goquery.Selection) string {
	for _, sel := range dateSelectors {
		if d := strings.Join(strings.Fields(row.Find(sel).First().Text()), " "); d != "" {
			return d
		}
	}
	return ""
}
