// Package extract fills the ten listing attributes for each candidate, using
// the language model when one is configured and placeholders otherwise.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/core/locate"
	"emlak-scraper/internal/logger"
	"emlak-scraper/internal/utils/markdown"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

type Outcome int

const (
	OutcomePrefilled Outcome = iota
	OutcomeAI
	OutcomeHeuristic
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomePrefilled:
		return "prefilled"
	case OutcomeAI:
		return "ai"
	case OutcomeHeuristic:
		return "heuristic"
	case OutcomeFatal:
		return "fatal"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Placeholder values written when an attribute could not be determined.
const (
	Undetected        = "Tespit Edilemedi"
	OwnerNeedsParsing = "HTML Parse Gerekli"
	ContactOnDetail   = "Detay Sayfasında"
	Unspecified       = "Belirtilmemiş"
	OwnerFailed       = "İşlem Hatası"
	PriceFailed       = "Alınamadı"
)

// Generator is the slice of the language model service the extractor needs.
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, messages []*schema.Message) (string, error)
}

type Extractor struct {
	llm      Generator
	template prompt.ChatTemplate
	log      *logger.Logger
}

// New returns an extractor. A nil or disabled generator skips the model entirely.
func New(llm Generator) *Extractor {
	return &Extractor{
		llm:      llm,
		template: newListingTemplate(),
		log:      logger.New("Extractor"),
	}
}

// Extract never fails: every path yields a listing with a fresh id and
// processing time, and the outcome reports which path produced it.
func (e *Extractor) Extract(ctx context.Context, c locate.Candidate) (l job.Listing, out Outcome) {
	l = job.NewListing()
	defer func() {
		if r := recover(); r != nil {
			e.log.LogErrorf("extraction panicked: %v", r)
			l = fatalListing(c, l)
			out = OutcomeFatal
		}
	}()

	known := c.Known
	known.ID, known.ProcessedDate = l.ID, l.ProcessedDate
	known.RawHTML = markdown.TruncateBytes(c.RawHTML, job.MaxRawContent)

	if known.OwnerName != "" && known.Price != "" {
		return known, OutcomePrefilled
	}

	if e.llm != nil && e.llm.Enabled() {
		filled, err := e.fromModel(ctx, c, known)
		if err == nil {
			return filled, OutcomeAI
		}
		e.log.LogWarnf("model extraction failed, using placeholders: %v", err)
	}

	return fillPlaceholders(known), OutcomeHeuristic
}

func (e *Extractor) fromModel(ctx context.Context, c locate.Candidate, base job.Listing) (job.Listing, error) {
	messages, err := e.template.Format(ctx, map[string]any{
		"content":         markdown.PromptText(c.RawHTML, PromptTextLimit),
		"output_template": outputTemplate,
	})
	if err != nil {
		return base, fmt.Errorf("format prompt: %w", err)
	}

	reply, err := e.llm.Generate(ctx, messages)
	if err != nil {
		return base, err
	}

	values, err := parseReply(reply)
	if err != nil {
		return base, err
	}

	for _, name := range job.AttributeNames {
		field := base.Attr(name)
		if v := values[name]; v != "" {
			*field = v
		} else if *field == "" {
			*field = Undetected
		}
	}
	return base, nil
}

var errNoJSON = errors.New("no JSON object in model reply")

// parseReply decodes the span from the first '{' to the last '}' and renders
// every value as text.
func parseReply(reply string) (map[string]string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, errNoJSON
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("JSON parsing failed: %w", err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = strings.TrimSpace(asText(v))
	}
	return out, nil
}

func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Evet"
		}
		return "Hayır"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func fillPlaceholders(l job.Listing) job.Listing {
	for _, name := range job.AttributeNames {
		field := l.Attr(name)
		if *field != "" {
			continue
		}
		switch name {
		case job.FieldOwnerName:
			*field = OwnerNeedsParsing
		case job.FieldContactNumber:
			*field = ContactOnDetail
		default:
			*field = Unspecified
		}
	}
	return l
}

// fatalListing keeps whatever the candidate already knew and marks only the
// owner and price as failed.
func fatalListing(c locate.Candidate, stamp job.Listing) job.Listing {
	l := c.Known
	l.ID, l.ProcessedDate = stamp.ID, stamp.ProcessedDate
	l.RawHTML = markdown.TruncateBytes(c.RawHTML, job.MaxRawContent)
	l.OwnerName = OwnerFailed
	l.Price = PriceFailed
	return l
}
