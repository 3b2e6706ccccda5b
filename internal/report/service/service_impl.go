package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/datalysis-io/datalysis/internal/clock"
	"github.com/datalysis-io/datalysis/internal/config"
	ingestdomain "github.com/datalysis-io/datalysis/internal/ingest/domain"
	"github.com/datalysis-io/datalysis/internal/report/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   *config.AnalysisConfigHolder
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   *config.AnalysisConfigHolder
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		cfg:   p.Cfg,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Record stores the summary of a completed analysis and prunes history
// beyond the configured retention count. Satisfies the ingest
// HistoryRecorder contract.
func (s *Service) Record(ctx context.Context, report ingestdomain.Report) error {
	summary := domain.Summary{
		ID:               report.ID,
		Filename:         report.Filename,
		Domain:           report.Domain,
		DataQualityScore: report.DataQualityScore,
		TotalSales:       report.Kpis.TotalSales,
		TotalOrders:      report.Kpis.TotalOrders,
		AvgOrderValue:    report.Kpis.AvgOrderValue,
		TotalCustomers:   report.Kpis.TotalCustomers,
		TopCategory:      report.Kpis.TopCategory,
		CreatedAt:        s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &summary); err != nil {
		return err
	}

	keep := s.cfg.Get().Limits.ReportHistory
	if keep > 0 {
		if err := s.repo.Prune(ctx, s.db, keep); err != nil {
			s.log.Warn("report history prune failed", zap.Error(err))
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListReportsRequest) ([]domain.Summary, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if max := s.cfg.Get().Limits.ReportHistory; max > 0 && limit > max {
		limit = max
	}
	return s.repo.List(ctx, s.db, limit)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetReportRequest) (domain.Summary, error) {
	raw := strings.TrimSpace(req.ID)
	if raw == "" {
		return domain.Summary{}, domain.ErrInvalidID
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.Summary{}, domain.ErrInvalidID
	}

	summary, err := s.repo.FindByID(ctx, s.db, snowflake.ParseInt64(parsed))
	if err != nil {
		return domain.Summary{}, err
	}
	if summary == nil {
		return domain.Summary{}, domain.ErrNotFound
	}
	return *summary, nil
}
