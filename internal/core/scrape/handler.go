package scrape

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const (
	// StreamPollInterval re-reads the record when no notification arrives. A
	// tick that finds nothing new writes a keepalive comment instead, so a
	// vanished client is noticed within one interval.
	StreamPollInterval = 2 * time.Second
	// StreamMaxLifetime closes a stream whose job never reaches a terminal state.
	StreamMaxLifetime = 30 * time.Minute
)

type Handler struct {
	service      *Service
	jobs         *job.JobService
	log          *logger.Logger
	pollInterval time.Duration
	maxLifetime  time.Duration
}

func NewHandler(service *Service, jobs *job.JobService) *Handler {
	return &Handler{
		service:      service,
		jobs:         jobs,
		log:          logger.New("ScrapeHandler"),
		pollInterval: StreamPollInterval,
		maxLifetime:  StreamMaxLifetime,
	}
}

func (h *Handler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Sahibinden Emlak Veri Çıkarıcı API"})
}

// HandleSubmit handles POST /api/scrape.
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "invalid body"})
	}
	rec, err := h.service.Enqueue(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
		}
		h.log.LogErrorf("submit failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(rec)
}

// HandleGetResult handles GET /api/results/:id.
func (h *Handler) HandleGetResult(c *fiber.Ctx) error {
	rec, err := h.jobs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	return c.JSON(rec)
}

// HandleListResults handles GET /api/results.
func (h *Handler) HandleListResults(c *fiber.Ctx) error {
	recs, err := h.jobs.ListRecent(c.UserContext())
	if err != nil {
		h.log.LogErrorf("list results: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(recs)
}

// HandleStreamResult handles GET /api/results/:id/stream. It writes the record
// as a server-sent event after every change and closes once it is terminal,
// when the client goes away, or after the maximum stream lifetime.
func (h *Handler) HandleStreamResult(c *fiber.Ctx) error {
	rec, err := h.jobs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	id := rec.ID

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), h.maxLifetime)
		defer cancel()
		log := h.log.WithJob(id)

		updates, unsubscribe, err := h.jobs.Subscribe(ctx, id)
		if err != nil {
			if !errors.Is(err, job.ErrStreamUnsupported) {
				log.LogWarnf("subscribe failed, polling: %v", err)
			}
			updates = nil
		} else {
			defer unsubscribe()
		}

		ticker := time.NewTicker(h.pollInterval)
		defer ticker.Stop()

		var last []byte
		idle := false
		for {
			cur, err := h.jobs.Get(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					log.LogInfo("stream lifetime exceeded")
					return
				}
				writeEvent(w, "error", []byte(fmt.Sprintf("%q", err.Error())))
				return
			}
			body, _ := json.Marshal(cur)
			switch {
			case string(body) != string(last):
				if err := writeEvent(w, "update", body); err != nil {
					log.LogDebugf("stream client gone: %v", err)
					return
				}
				last = body
			case idle:
				if err := writeKeepalive(w); err != nil {
					log.LogDebugf("stream client gone: %v", err)
					return
				}
			}
			if cur.Status.IsTerminal() {
				return
			}

			idle = false
			select {
			case _, ok := <-updates:
				if !ok {
					updates = nil
				}
			case <-ticker.C:
				idle = true
			case <-ctx.Done():
				log.LogInfo("stream lifetime exceeded")
				return
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, data []byte) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepalive(w *bufio.Writer) error {
	if _, err := w.WriteString(": ping\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (h *Handler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, job.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Result not found"})
	}
	h.log.LogErrorf("get result %s: %v", c.Params("id"), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
}
