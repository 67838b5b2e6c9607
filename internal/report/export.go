package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const sheet = "Sales"

// XLSX renders r as a single sheet workbook.
func XLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	rows := [][]any{
		{"Report date", r.Date.Format(dateLayout)},
		{"Period", r.From.Format(dateLayout) + " - " + r.To.Format(dateLayout)},
		{},
		{"Product", "Quantity sold", "Total revenue"},
	}
	for _, p := range r.Products {
		revenue, _ := p.TotalRevenue.Round(2).Float64()
		rows = append(rows, []any{p.Name, p.QuantitySold, revenue})
	}
	total, _ := r.TotalRevenue.Round(2).Float64()
	rows = append(rows, []any{}, []any{"Total", "", total})

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}
	if err := f.SetColStyle(sheet, "C", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "C", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PDF renders r as an A4 table.
func PDF(r *Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Product Sales Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Report date: "+r.Date.Format(dateLayout), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s to %s", r.From.Format(dateLayout), r.To.Format(dateLayout)), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(100, 10, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 10, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 10, "Revenue", "1", 1, "C", false, 0, "")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	for _, p := range r.Products {
		pdf.CellFormat(100, 10, tr(p.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 10, fmt.Sprintf("%d", p.QuantitySold), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 10, p.TotalRevenue.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 10, r.TotalRevenue.StringFixed(2), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
