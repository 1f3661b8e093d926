package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"emlak-scraper/internal/core/acquire"
	"emlak-scraper/internal/core/extract"
	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/core/locate"
	"emlak-scraper/internal/core/scrape"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

// inlineQueue runs each task as soon as it is enqueued.
type inlineQueue struct{ svc *scrape.Service }

func (q *inlineQueue) Enqueue(task *asynq.Task, _ string, _ int) error {
	return q.svc.HandleScrapeTask(context.Background(), task)
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	jobs := job.NewJobService(job.NewMemoryStore())
	q := &inlineQueue{}
	svc := scrape.NewService(scrape.Runtime{
		Jobs: jobs,
		Acquirer: acquire.Func(func(_ context.Context, url string) acquire.Result {
			return acquire.NavigationFailed(url, context.DeadlineExceeded)
		}),
		Locator:   locate.New(locate.Options{}),
		Extractor: extract.New(nil),
		Tasks:     q,
	})
	q.svc = svc

	app := fiber.New()
	h := RegisterRoutes(app, Dependencies{Jobs: jobs, Scrape: svc})
	h.SetReady()
	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) (*httpResult, error) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return &httpResult{code: resp.StatusCode, body: b, header: resp.Header.Get}, nil
}

type httpResult struct {
	code   int
	body   []byte
	header func(string) string
}

func TestEndToEnd(t *testing.T) {
	app := newTestServer(t)

	res, err := request(t, app, "POST", "/api/scrape", `{"url":"https://example.com/listings","month":7,"year":2025}`)
	if err != nil {
		t.Fatal(err)
	}
	if res.code != 200 {
		t.Fatalf("submit: %d %s", res.code, res.body)
	}
	var submitted job.Record
	if err := json.Unmarshal(res.body, &submitted); err != nil {
		t.Fatal(err)
	}
	if submitted.Status != job.StatusProcessing || submitted.TotalListings != 0 {
		t.Errorf("submitted: %+v", submitted)
	}

	res, _ = request(t, app, "GET", "/api/results/"+submitted.ID, "")
	var done job.Record
	if err := json.Unmarshal(res.body, &done); err != nil {
		t.Fatal(err)
	}
	if done.Status != job.StatusCompleted || done.TotalListings != len(done.Listings) || done.ProcessedListings != done.TotalListings {
		t.Fatalf("record: %+v", done)
	}
	for _, l := range done.Listings {
		if !strings.Contains(l.ListingDate, "Temmuz") {
			t.Errorf("listing date %q", l.ListingDate)
		}
	}

	res, _ = request(t, app, "GET", "/api/results", "")
	var list []job.Record
	if err := json.Unmarshal(res.body, &list); err != nil || len(list) != 1 {
		t.Errorf("list: %v %s", err, res.body)
	}

	res, _ = request(t, app, "GET", "/api/export/excel/"+submitted.ID, "")
	if res.code != 200 || !strings.HasPrefix(res.header("Content-Type"), "application/vnd.openxmlformats") {
		t.Errorf("excel export: %d %s", res.code, res.header("Content-Type"))
	}
	res, _ = request(t, app, "GET", "/api/export/pdf/"+submitted.ID, "")
	if res.code != 200 || res.header("Content-Type") != "application/pdf" {
		t.Errorf("pdf export: %d %s", res.code, res.header("Content-Type"))
	}
}

func TestUnknownJob(t *testing.T) {
	app := newTestServer(t)
	for _, path := range []string{"/api/results/never", "/api/export/excel/never", "/api/export/pdf/never"} {
		res, err := request(t, app, "GET", path, "")
		if err != nil {
			t.Fatal(err)
		}
		if res.code != fiber.StatusNotFound {
			t.Errorf("%s: %d", path, res.code)
		}
	}
}

func TestProbeWithoutKey(t *testing.T) {
	app := newTestServer(t)
	res, err := request(t, app, "POST", "/api/test-gemini", "")
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	if err := json.Unmarshal(res.body, &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "error" || body["message"] != "Gemini API key not configured" {
		t.Errorf("probe: %v", body)
	}
}

func TestRootHealthAndCORS(t *testing.T) {
	app := newTestServer(t)

	res, _ := request(t, app, "GET", "/api/", "")
	if res.code != 200 || !strings.Contains(string(res.body), "Sahibinden Emlak Veri Çıkarıcı API") {
		t.Errorf("root: %d %s", res.code, res.body)
	}

	res, _ = request(t, app, "GET", "/api/health", "")
	if res.code != 200 || !strings.Contains(string(res.body), `"not_configured"`) {
		t.Errorf("health: %d %s", res.code, res.body)
	}

	req := httptest.NewRequest("OPTIONS", "/api/scrape", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin %q", got)
	}
}
