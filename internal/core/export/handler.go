package export

import (
	"errors"
	"fmt"

	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/logger"
	"emlak-scraper/internal/platform/storage"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	jobs    *job.JobService
	archive storage.Archiver
	log     *logger.Logger
}

// NewHandler serves exports. archive may be nil, which disables archiving.
func NewHandler(jobs *job.JobService, archive storage.Archiver) *Handler {
	return &Handler{jobs: jobs, archive: archive, log: logger.New("ExportHandler")}
}

// HandleTable handles GET /api/export/excel/:id.
func (h *Handler) HandleTable(c *fiber.Ctx) error {
	return h.serve(c, Table, TableFilename, TableContentType)
}

// HandleDocument handles GET /api/export/pdf/:id.
func (h *Handler) HandleDocument(c *fiber.Ctx) error {
	return h.serve(c, Document, DocumentFilename, DocumentContentType)
}

func (h *Handler) serve(c *fiber.Ctx, render func(*job.Record) ([]byte, error), filename func(string) string, contentType string) error {
	rec, err := h.jobs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Result not found"})
		}
		h.log.LogErrorf("export %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	data, err := render(rec)
	if err != nil {
		h.log.LogErrorf("export %s: %v", rec.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	name := filename(rec.ID)
	if h.archive != nil {
		if objectPath, err := h.archive.Archive(c.UserContext(), name, contentType, data); err != nil {
			h.log.LogWarnf("archive %s failed: %v", name, err)
		} else {
			c.Set("X-Export-Archive", objectPath)
		}
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", name))
	return c.Send(data)
}
