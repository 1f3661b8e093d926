// Package export renders a job's listings as a spreadsheet or a PDF table.
package export

import (
	"fmt"

	"emlak-scraper/internal/core/job"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Emlak Listesi"

	TableContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DocumentContentType = "application/pdf"
)

// Headers label the ten attribute columns, in job.AttributeNames order.
var Headers = []string{
	"İlan Sahibi", "Telefon", "Oda Sayısı", "Net m²", "Site İçi",
	"Site Adı", "Isıtma", "Otopark", "Krediye Uygun", "Fiyat",
}

func TableFilename(id string) string    { return fmt.Sprintf("emlak_listesi_%s.xlsx", id) }
func DocumentFilename(id string) string { return fmt.Sprintf("emlak_listesi_%s.pdf", id) }

// Table renders one header row plus one row per listing. Values are written
// in full.
func Table(rec *job.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetList()[0], SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, l := range rec.Listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		attrs := l.Attributes()
		row := make([]interface{}, len(attrs))
		for j, v := range attrs {
			row[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#F5F5F5"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#808080"}},
	})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 18); err != nil {
		return nil, err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
