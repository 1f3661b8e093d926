package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var (
	blankRuns  = regexp.MustCompile(`\n{3,}`)
	spaceRuns  = regexp.MustCompile(`[ \t\f\v]+`)
	imageOnly  = regexp.MustCompile(`^!\[[^\]]*\]\([^\)]+\)$`)
	controlChr = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

const noiseSelector = "script, style, noscript, iframe, svg, button, input, form"

// ConvertHTMLToMarkdown renders the main content of a page as markdown.
func ConvertHTMLToMarkdown(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	sel := doc.Find("body")
	for _, tag := range []string{"main", `[role="main"]`, "#content", "#main"} {
		if found := doc.Find(tag); found.Length() > 0 {
			sel = found.First()
			break
		}
	}
	sel.Find(noiseSelector).Remove()
	sel.Find(`nav, aside, [role="navigation"], [aria-modal]`).Remove()

	body, err := sel.Html()
	if err != nil || strings.TrimSpace(body) == "" {
		return ""
	}
	out, err := md.NewConverter("", true, nil).ConvertString(body)
	if err != nil {
		return ""
	}

	lines := strings.Split(out, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if imageOnly.MatchString(l) {
			continue
		}
		kept = append(kept, l)
	}
	out = blankRuns.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	return StripInvisible(strings.TrimSpace(out))
}

// PlainText returns the visible text of an HTML fragment with whitespace collapsed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	var lines []string
	for _, l := range strings.Split(doc.Text(), "\n") {
		l = strings.TrimSpace(spaceRuns.ReplaceAllString(l, " "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return StripInvisible(strings.Join(lines, "\n"))
}

// PromptText prefers markdown (it keeps label/value tables readable) and
// falls back to plain text, then bounds the result to limit runes.
func PromptText(html string, limit int) string {
	text := ConvertHTMLToMarkdown(html)
	if text == "" {
		text = PlainText(html)
	}
	return Truncate(text, limit)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// TruncateBytes cuts s to at most n bytes without splitting a rune.
func TruncateBytes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// StripInvisible drops control and zero-width characters that confuse JSON prompts.
func StripInvisible(text string) string {
	text = controlChr.ReplaceAllString(text, "")
	for _, ch := range []string{"\u200B", "\u200C", "\u200D", "\u200E", "\u200F", "\u2028", "\u2029", "\uFEFF", "\uFFFD"} {
		text = strings.ReplaceAll(text, ch, "")
	}
	return text
}
