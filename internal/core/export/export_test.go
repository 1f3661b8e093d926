package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"emlak-scraper/internal/core/job"

	"github.com/gofiber/fiber/v2"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

func sampleRecord(n int) *job.Record {
	rec := job.NewRecord("https://example.com", 7, 2025)
	rec.Status = job.StatusCompleted
	rec.CreatedDate = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		l := job.NewListing()
		l.OwnerName = "Abdurrahman Karaoglu"
		l.ContactNumber = "0532 111 22 33"
		l.RoomCount = "3+1"
		l.NetArea = "120 m²"
		l.IsInComplex = "Evet"
		l.ComplexName = "Bahçeşehir Konakları"
		l.HeatingType = "Yerden Isıtma Sistemi"
		l.ParkingType = "Kapalı"
		l.CreditSuitable = "Evet"
		l.Price = "12.750.000 TL (pazarlık payı var)"
		rec.Listings = append(rec.Listings, l)
	}
	rec.TotalListings, rec.ProcessedListings = n, n
	return rec
}

func TestTable(t *testing.T) {
	rec := sampleRecord(2)
	data, err := Table(rec)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets: %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}
	for i, h := range Headers {
		if rows[0][i] != h {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][0] != "Abdurrahman Karaoglu" || rows[1][9] != "12.750.000 TL (pazarlık payı var)" {
		t.Errorf("values must not be truncated: %v", rows[1])
	}
	if rows[2][5] != "Bahçeşehir Konakları" {
		t.Errorf("complex name: %q", rows[2][5])
	}
}

func TestTableZeroListings(t *testing.T) {
	data, err := Table(sampleRecord(0))
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 || len(rows[0]) != len(Headers) {
		t.Errorf("want header row only, got %v", rows)
	}
}

func pdfText(t *testing.T, data []byte) (string, int) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		t.Fatal(err)
	}
	return string(b), r.NumPage()
}

func TestDocument(t *testing.T) {
	data, err := Document(sampleRecord(2))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("not a PDF")
	}

	text, pages := pdfText(t, data)
	if pages != 1 {
		t.Errorf("pages: %d", pages)
	}
	for _, want := range []string{"Emlak Ilan Listesi", "Telefon", "Fiyat", "Abdurrahman Kar", "12.750.000 TL ("} {
		if !strings.Contains(text, want) {
			t.Errorf("document text lacks %q", want)
		}
	}
	if strings.Contains(text, "Karaoglu") || strings.Contains(text, "pazarl") {
		t.Error("long values should be truncated for display")
	}
}

func TestDocumentZeroListings(t *testing.T) {
	data, err := Document(sampleRecord(0))
	if err != nil {
		t.Fatal(err)
	}
	text, _ := pdfText(t, data)
	if !strings.Contains(text, "Krediye Uygun") || strings.Contains(text, "Abdurrahman") {
		t.Errorf("want header only, got %q", text)
	}
}

func TestDocumentPaginates(t *testing.T) {
	data, err := Document(sampleRecord(80))
	if err != nil {
		t.Fatal(err)
	}
	if _, pages := pdfText(t, data); pages < 2 {
		t.Errorf("80 rows should span several pages, got %d", pages)
	}
}

type fakeArchive struct {
	names []string
	err   error
}

func (a *fakeArchive) Archive(_ context.Context, name, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.names = append(a.names, name)
	return "exports/" + name, nil
}

func newApp(t *testing.T, archive *fakeArchive) (*fiber.App, *job.Record) {
	t.Helper()
	store := job.NewMemoryStore()
	rec := sampleRecord(1)
	if err := store.Insert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	var h *Handler
	if archive != nil {
		h = NewHandler(job.NewJobService(store), archive)
	} else {
		h = NewHandler(job.NewJobService(store), nil)
	}
	app := fiber.New()
	app.Get("/api/export/excel/:id", h.HandleTable)
	app.Get("/api/export/pdf/:id", h.HandleDocument)
	return app, rec
}

func TestHandlers(t *testing.T) {
	archive := &fakeArchive{}
	app, rec := newApp(t, archive)

	tests := []struct {
		path        string
		contentType string
		filename    string
	}{
		{"/api/export/excel/" + rec.ID, TableContentType, TableFilename(rec.ID)},
		{"/api/export/pdf/" + rec.ID, DocumentContentType, DocumentFilename(rec.ID)},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("%s: status %d", tt.path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
			t.Errorf("%s: content type %q", tt.path, ct)
		}
		if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename="+tt.filename {
			t.Errorf("%s: disposition %q", tt.path, cd)
		}
		if got := resp.Header.Get("X-Export-Archive"); got != "exports/"+tt.filename {
			t.Errorf("%s: archive header %q", tt.path, got)
		}
		body, _ := io.ReadAll(resp.Body)
		if len(body) == 0 {
			t.Errorf("%s: empty body", tt.path)
		}
	}
	if len(archive.names) != 2 {
		t.Errorf("archived: %v", archive.names)
	}
}

func TestHandlersArchiveFailureStillServes(t *testing.T) {
	app, rec := newApp(t, &fakeArchive{err: errors.New("bucket missing")})
	resp, err := app.Test(httptest.NewRequest("GET", "/api/export/pdf/"+rec.ID, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 || resp.Header.Get("X-Export-Archive") != "" {
		t.Errorf("status %d, archive header %q", resp.StatusCode, resp.Header.Get("X-Export-Archive"))
	}
}

func TestHandlersNotFound(t *testing.T) {
	app, _ := newApp(t, nil)
	for _, path := range []string{"/api/export/excel/missing", "/api/export/pdf/missing"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != fiber.StatusNotFound || !strings.Contains(string(body), "Result not found") {
			t.Errorf("%s: %d %s", path, resp.StatusCode, body)
		}
	}
}
