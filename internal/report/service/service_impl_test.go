package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datalysis-io/datalysis/internal/analytics"
	"github.com/datalysis-io/datalysis/internal/clock"
	"github.com/datalysis-io/datalysis/internal/config"
	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
	"github.com/datalysis-io/datalysis/internal/report/domain"
	"github.com/datalysis-io/datalysis/internal/report/repository"
)

func newTestService(t *testing.T, history int) (*Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Summary{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.DefaultAnalysisConfig()
	cfg.Limits.ReportHistory = history

	fc := clock.NewFakeClock(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC))
	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.NewStaticAnalysisConfigHolder(cfg),
		Clock: fc,
		Repo:  repository.Provide(),
	}), node, fc
}

func sampleReport(id snowflake.ID, filename string) ingestdomain.Report {
	return ingestdomain.Report{
		ID:               id,
		Filename:         filename,
		Domain:           "business",
		DataQualityScore: 0.95,
		Kpis: analytics.KpiSet{
			TotalSales:     6650.25,
			TotalOrders:    10,
			AvgOrderValue:  665.025,
			TotalCustomers: 3,
			TopCategory:    "Electronics",
		},
	}
}

func TestRecordAndGetByID(t *testing.T) {
	svc, node, _ := newTestService(t, 100)
	id := node.Generate()

	require.NoError(t, svc.Record(context.Background(), sampleReport(id, "orders.csv")))

	got, err := svc.GetByID(context.Background(), domain.GetReportRequest{ID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", got.Filename)
	assert.Equal(t, "business", got.Domain)
	assert.InDelta(t, 6650.25, got.TotalSales, 1e-9)
	assert.Equal(t, "Electronics", got.TopCategory)
}

func TestGetByIDErrors(t *testing.T) {
	svc, _, _ := newTestService(t, 100)

	_, err := svc.GetByID(context.Background(), domain.GetReportRequest{ID: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(context.Background(), domain.GetReportRequest{ID: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(context.Background(), domain.GetReportRequest{ID: "12345"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	svc, node, fc := newTestService(t, 100)
	for i := 0; i < 3; i++ {
		report := sampleReport(node.Generate(), fmt.Sprintf("file-%d.csv", i))
		require.NoError(t, svc.Record(context.Background(), report))
		fc.Advance(time.Minute)
	}

	got, err := svc.List(context.Background(), domain.ListReportsRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "file-2.csv", got[0].Filename)
	assert.Equal(t, "file-0.csv", got[2].Filename)
}

func TestListDefaultAndCappedLimit(t *testing.T) {
	svc, node, fc := newTestService(t, 2)
	for i := 0; i < 5; i++ {
		report := sampleReport(node.Generate(), fmt.Sprintf("file-%d.csv", i))
		require.NoError(t, svc.Record(context.Background(), report))
		fc.Advance(time.Minute)
	}

	// Retention pruning keeps only the newest two.
	got, err := svc.List(context.Background(), domain.ListReportsRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "file-4.csv", got[0].Filename)
}
