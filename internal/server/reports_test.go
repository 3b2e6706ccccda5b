package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	reportdomain "github.com/datalysis-io/datalysis/internal/report/domain"
)

func TestListReports(t *testing.T) {
	reports := &fakeReportService{summaries: []reportdomain.Summary{
		{Filename: "latest.csv", Domain: "business"},
		{Filename: "older.csv", Domain: "finance"},
	}}
	engine := newTestServer(t, &fakeIngestService{}, reports, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reports []reportdomain.Summary `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "latest.csv", resp.Reports[0].Filename)
}

func TestListReportsInvalidLimit(t *testing.T) {
	engine := newTestServer(t, &fakeIngestService{}, &fakeReportService{}, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?limit=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid limit parameter", decodeDetail(t, rec))
}

func TestGetReportNotFound(t *testing.T) {
	engine := newTestServer(t, &fakeIngestService{}, &fakeReportService{}, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/12345", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Report not found", decodeDetail(t, rec))
}

func TestGetReportFound(t *testing.T) {
	reports := &fakeReportService{summaries: []reportdomain.Summary{
		{Filename: "found.csv", Domain: "business", TotalOrders: 10},
	}}
	engine := newTestServer(t, &fakeIngestService{}, reports, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got reportdomain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "found.csv", got.Filename)
	assert.Equal(t, 10, got.TotalOrders)
}
