package electricityhttp

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"electricity-dashboard/internal/electricity/domain/electricity"
	"electricity-dashboard/internal/observability/metrics"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatPDF  = "pdf"
)

var exportContentTypes = map[string]string{
	formatCSV:  "text/csv; charset=utf-8",
	formatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	formatPDF:  "application/pdf",
}

var exportHeader = []string{"date", "totalProduction", "totalConsumption", "avgPrice", "longestNegativeStreak"}

// Export handles GET /api/daily-stats/export?format=csv|xlsx|pdf. It accepts
// the daily stats filters and sort; page and limit are ignored.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = formatCSV
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		metrics.IncExport("unsupported", metrics.ResultError)
		writeError(w, http.StatusBadRequest, msgUnsupportedFmt)
		return
	}

	query, err := ParseDailyStatsQuery(r.URL.Query(), h.limits)
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		h.writeFailure(w, r, err)
		return
	}
	rows, err := h.service.ExportDailyStats(r.Context(), query, h.exportMaxRows)
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		h.writeFailure(w, r, err)
		return
	}

	var body []byte
	switch format {
	case formatXLSX:
		body, err = BuildDailyStatsXLSX(rows)
	case formatPDF:
		body, err = BuildDailyStatsPDF(rows)
	default:
		body, err = BuildDailyStatsCSV(rows)
	}
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		h.writeFailure(w, r, fmt.Errorf("render %s export: %w", format, err))
		return
	}

	metrics.IncExport(format, metrics.ResultSuccess)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "daily-stats."+format))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func exportRecord(row electricity.DailyAggregate) []string {
	return []string{
		row.Date.Format(electricity.DayLayout),
		row.TotalProduction.String(),
		row.TotalConsumption.String(),
		nullDecimalText(row.AvgPrice),
		strconv.Itoa(row.LongestNegativeStreak),
	}
}

func nullDecimalText(value decimal.NullDecimal) string {
	if !value.Valid {
		return ""
	}
	return value.Decimal.String()
}

// BuildDailyStatsCSV renders rows as CSV with a header line.
func BuildDailyStatsCSV(rows []electricity.DailyAggregate) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(exportRecord(row)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyStatsXLSX renders rows into a single "daily-stats" sheet.
// Quantities are written as numbers; a missing average leaves its cell empty.
func BuildDailyStatsXLSX(rows []electricity.DailyAggregate) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "daily-stats"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		line := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", line), row.Date.Format(electricity.DayLayout))
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", line), row.TotalProduction.InexactFloat64())
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", line), row.TotalConsumption.InexactFloat64())
		if row.AvgPrice.Valid {
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", line), row.AvgPrice.Decimal.InexactFloat64())
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", line), row.LongestNegativeStreak)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDailyStatsPDF renders rows as a simple landscape table.
func BuildDailyStatsPDF(rows []electricity.DailyAggregate) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Electricity Statistics")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Days: %d", len(rows)))
	pdf.Ln(8)

	widths := []float64{40, 55, 55, 45, 55}
	titles := []string{"Date", "Production", "Consumption", "Avg Price", "Negative Streak (h)"}
	pdf.SetFont("Arial", "B", 10)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 6, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		record := exportRecord(row)
		for i, value := range record {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
