package electricityhttp

import (
	"bytes"
	"encoding/csv"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

func fetch(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestExport_CSVFollowsSortAndIgnoresPagination(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := fetch(t, server.URL+"/api/daily-stats/export?format=csv&orderBy=date&order=asc&page=9&limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="daily-stats.csv"`, resp.Header.Get("Content-Disposition"))

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{"2024-01-10", "6", "14", "0", "2"}, records[1])
	assert.Equal(t, []string{"2024-01-11", "100", "50", "", "0"}, records[2])
}

func TestExport_DefaultsToCSV(t *testing.T) {
	server := newTestServer(t, nil)

	resp, _ := fetch(t, server.URL+"/api/daily-stats/export")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestExport_XLSX(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := fetch(t, server.URL+"/api/daily-stats/export?format=XLSX&minNegativeStreak=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("daily-stats")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, "2024-01-10", rows[1][0])
	assert.Equal(t, "6", rows[1][1])
}

func TestExport_PDF(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := fetch(t, server.URL+"/api/daily-stats/export?format=pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestExport_UnsupportedFormat(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := fetch(t, server.URL+"/api/daily-stats/export?format=docx")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unsupported export format."}`, string(body))
}

func TestExport_InvalidFilter(t *testing.T) {
	server := newTestServer(t, nil)

	resp, body := fetch(t, server.URL+"/api/daily-stats/export?maxPrice=cheap")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Invalid number format."}`, string(body))
}

func TestExport_RespectsMaxRows(t *testing.T) {
	server := newTestServer(t, nil, WithExportMaxRows(1))

	_, body := fetch(t, server.URL+"/api/daily-stats/export?format=csv")
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestBuildDailyStatsCSV_Empty(t *testing.T) {
	body, err := BuildDailyStatsCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "date,totalProduction,totalConsumption,avgPrice,longestNegativeStreak\n", string(body))
}

func TestExportRecord_NullAverage(t *testing.T) {
	record := exportRecord(electricity.DailyAggregate{
		Date:            firstDay,
		TotalProduction: decimal.RequireFromString("12.50000"),
	})
	assert.Equal(t, []string{"2024-01-10", "12.5", "0", "", "0"}, record)
}
