package export

import (
	"bytes"
	"fmt"
	"strings"

	"emlak-scraper/internal/core/job"
	"emlak-scraper/internal/utils/markdown"

	"github.com/go-pdf/fpdf"
)

const DocumentTitle = "Emlak İlan Listesi"

// displayLimits caps the rune length of long columns in the document.
var displayLimits = map[string]int{
	job.FieldOwnerName:     15,
	job.FieldContactNumber: 15,
	job.FieldComplexName:   10,
	job.FieldHeatingType:   10,
	job.FieldPrice:         15,
}

// Column widths in mm; they sum to the A4 portrait content width.
var columnWidths = []float64{26, 24, 14, 14, 14, 20, 20, 16, 16, 26}

const (
	margin    = 10.0
	rowHeight = 7.0
)

// The core PDF fonts cover cp1252 only; these Turkish letters fall outside it.
var turkishFold = strings.NewReplacer(
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ş", "s", "Ş", "S",
)

// Document renders an A4 table with the same columns as Table. Long values
// are cut to their display limits.
func Document(rec *job.Record) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(DocumentTitle, true)
	pdf.SetCreationDate(rec.CreatedDate)

	toCP := pdf.UnicodeTranslatorFromDescriptor("cp1252")
	text := func(s string) string { return toCP(turkishFold.Replace(s)) }

	pdf.AddPage()
	_, pageH := pdf.GetPageSize()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 12, text(DocumentTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 7.5)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		pdf.SetDrawColor(0, 0, 0)
		for i, h := range Headers {
			pdf.CellFormat(columnWidths[i], rowHeight, text(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
	}
	drawHeader()

	for _, l := range rec.Listings {
		if pdf.GetY()+rowHeight > pageH-margin {
			pdf.AddPage()
			drawHeader()
		}
		for i, name := range job.AttributeNames {
			v := *l.Attr(name)
			if n, ok := displayLimits[name]; ok {
				v = markdown.Truncate(v, n)
			}
			pdf.CellFormat(columnWidths[i], rowHeight, text(v), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
