// Package scrape drives a scrape job from submission to a terminal status:
// acquire the page, locate candidates, extract each one, persisting progress
// after every step.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"emlak-scraper/internal/core/acquire"
	"emlak-scraper/internal/core/extract"
	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/core/locate"
	"emlak-scraper/internal/logger"
	"emlak-scraper/internal/platform/tasks"

	"github.com/hibiken/asynq"
)

// DefaultYear applies when a request omits the year.
const DefaultYear = 2025

var ErrInvalidRequest = errors.New("invalid scrape request")

type Request struct {
	URL   string `json:"url"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

// Normalize trims the url, applies the default year and validates the rest.
func (r Request) Normalize() (Request, error) {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return r, fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	if r.Month < 1 || r.Month > 12 {
		return r, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidRequest)
	}
	if r.Year == 0 {
		r.Year = DefaultYear
	}
	return r, nil
}

// TaskPayload is the asynq payload for TaskTypeScrape.
type TaskPayload struct {
	JobID string `json:"job_id"`
	URL   string `json:"url"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
}

// Enqueuer hands tasks to the worker pool.
type Enqueuer interface {
	Enqueue(task *asynq.Task, queue string, maxRetries int) error
}

// Runtime carries every collaborator a job needs.
type Runtime struct {
	Jobs       *job.JobService
	Acquirer   acquire.Acquirer
	Locator    *locate.Locator
	Extractor  *extract.Extractor
	Tasks      Enqueuer
	MaxRetries int
	Log        *logger.Logger
}

type Service struct {
	rt  Runtime
	log *logger.Logger
}

func NewService(rt Runtime) *Service {
	log := rt.Log
	if log == nil {
		log = logger.New("ScrapeService")
	}
	return &Service{rt: rt, log: log}
}

// Enqueue stores a new processing record and schedules its run. The record is
// retrievable before this returns.
func (s *Service) Enqueue(ctx context.Context, req Request) (*job.Record, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	rec := job.NewRecord(req.URL, req.Month, req.Year)
	if err := s.rt.Jobs.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	payload, _ := json.Marshal(TaskPayload{JobID: rec.ID, URL: req.URL, Month: req.Month, Year: req.Year})
	task := asynq.NewTask(tasks.TaskTypeScrape, payload)
	if err := s.rt.Tasks.Enqueue(task, tasks.QueueDefault, s.rt.MaxRetries); err != nil {
		msg := fmt.Sprintf("enqueue failed: %v", err)
		if uerr := s.rt.Jobs.Update(ctx, rec.ID, job.Fields{Status: job.StatusPtr(job.StatusError), ErrorMessage: job.StringPtr(msg)}); uerr != nil {
			s.log.WithJob(rec.ID).LogError("could not record enqueue failure", uerr)
		}
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.log.LogInfof("enqueued scrape job %s for %s (%02d/%d)", rec.ID, req.URL, req.Month, req.Year)
	return rec, nil
}

// HandleScrapeTask is the asynq handler for TaskTypeScrape.
func (s *Service) HandleScrapeTask(ctx context.Context, task *asynq.Task) error {
	var p TaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode scrape payload: %v: %w", err, asynq.SkipRetry)
	}
	return s.Run(ctx, p.JobID, Request{URL: p.URL, Month: p.Month, Year: p.Year})
}

// Run executes one job. Failures inside the pipeline end as status error on
// the record; Run itself only returns an error when that cannot be recorded.
func (s *Service) Run(ctx context.Context, jobID string, req Request) error {
	log := s.log.WithJob(jobID)

	rec, err := s.rt.Jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if rec.Status.IsTerminal() {
		log.LogInfof("job already %s, skipping", rec.Status)
		return nil
	}

	p := &progress{id: jobID, status: rec.Status, jobs: s.rt.Jobs}
	if rec.Status != job.StatusProcessing {
		return s.fail(ctx, p, fmt.Sprintf("job interrupted while %s", rec.Status))
	}

	start := time.Now()
	if err := s.execute(ctx, p, req); err != nil {
		log.LogErrorf("job failed while %s: %v", p.status, err)
		return s.fail(ctx, p, err.Error())
	}
	log.LogSuccessf("job completed in %v", time.Since(start))
	return nil
}

func (s *Service) execute(ctx context.Context, p *progress, req Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	log := s.log.WithJob(p.id)

	if err := p.advance(ctx, job.StatusScraping, job.Fields{}); err != nil {
		return err
	}

	res := s.rt.Acquirer.Acquire(ctx, req.URL)
	if res.OK() {
		log.LogInfof("acquired %s (%d bytes) in %v", req.URL, len(res.HTML), res.Elapsed)
	} else {
		log.LogWarnf("acquisition %s: %v", res.Outcome, res.Err)
	}

	cands := s.rt.Locator.Locate(res, req.Month, req.Year)
	if err := p.advance(ctx, job.StatusProcessingAI, job.Fields{TotalListings: job.IntPtr(len(cands))}); err != nil {
		return err
	}

	listings := make([]job.Listing, 0, len(cands))
	for i, c := range cands {
		l, out := s.rt.Extractor.Extract(ctx, c)
		log.LogDebugf("listing %d/%d extracted via %s", i+1, len(cands), out)
		listings = append(listings, l)
		if err := p.save(ctx, job.Fields{ProcessedListings: job.IntPtr(i + 1)}); err != nil {
			return err
		}
	}

	return p.advance(ctx, job.StatusCompleted, job.Fields{Listings: listings})
}

// fail moves the job to error. Only a store failure is returned.
func (s *Service) fail(ctx context.Context, p *progress, msg string) error {
	s.log.WithJob(p.id).LogWarnf("marking job as error: %s", msg)
	if err := p.advance(ctx, job.StatusError, job.Fields{ErrorMessage: job.StringPtr(msg)}); err != nil {
		return fmt.Errorf("record failure for job %s: %w", p.id, err)
	}
	return nil
}

// progress tracks the job's current status so transitions are checked locally
// before anything is written.
type progress struct {
	id     string
	status job.Status
	jobs   *job.JobService
}

func (p *progress) advance(ctx context.Context, to job.Status, f job.Fields) error {
	if err := job.CheckTransition(p.id, p.status, to); err != nil {
		return err
	}
	f.Status = job.StatusPtr(to)
	if err := p.save(ctx, f); err != nil {
		return err
	}
	p.status = to
	return nil
}

func (p *progress) save(ctx context.Context, f job.Fields) error {
	if err := p.jobs.Update(ctx, p.id, f); err != nil {
		return fmt.Errorf("persist job: %w", err)
	}
	return nil
}
