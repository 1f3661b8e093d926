package extract

import (
	"context"
	"strings"

	"emlak-scraper/internal/logger"

	"github.com/cloudwego/eino/schema"
	"github.com/gofiber/fiber/v2"
)

type ProbeStatus string

const (
	ProbeSuccess     ProbeStatus = "success"
	ProbeAPIDisabled ProbeStatus = "api_disabled"
	ProbeError       ProbeStatus = "error"
)

type ProbeResult struct {
	Status   ProbeStatus `json:"status"`
	Message  string      `json:"message"`
	Response string      `json:"response,omitempty"`
	Fallback string      `json:"fallback,omitempty"`
}

// Probe sends one short message to the model and classifies the outcome.
func Probe(ctx context.Context, llm Generator) ProbeResult {
	if llm == nil || !llm.Enabled() {
		return ProbeResult{Status: ProbeError, Message: "Gemini API key not configured"}
	}

	reply, err := llm.Generate(ctx, []*schema.Message{schema.UserMessage(ProbePrompt)})
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "SERVICE_DISABLED") || strings.Contains(msg, "PERMISSION_DENIED") {
			return ProbeResult{
				Status:   ProbeAPIDisabled,
				Message:  "Google Gemini API etkinleştirilmesi gerekiyor. Sistem HTML parsing ile çalışacak.",
				Fallback: "HTML parsing aktif",
			}
		}
		return ProbeResult{Status: ProbeError, Message: msg}
	}
	return ProbeResult{Status: ProbeSuccess, Message: "Gemini API çalışıyor", Response: reply}
}

type Handler struct {
	llm Generator
	log *logger.Logger
}

func NewHandler(llm Generator) *Handler {
	return &Handler{llm: llm, log: logger.New("ProbeHandler")}
}

// HandleProbe handles POST /api/test-gemini. It always answers 200; the
// status field carries the outcome.
func (h *Handler) HandleProbe(c *fiber.Ctx) error {
	res := Probe(c.UserContext(), h.llm)
	if res.Status != ProbeSuccess {
		h.log.LogWarnf("model probe: %s: %s", res.Status, res.Message)
	}
	return c.JSON(res)
}
