package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"runtime"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/datalysis-io/datalysis/internal/analytics"
	"github.com/datalysis-io/datalysis/internal/config"
	"github.com/datalysis-io/datalysis/internal/ingest/domain"
	"github.com/datalysis-io/datalysis/internal/insight"
	"github.com/datalysis-io/datalysis/internal/normalize"
	"github.com/datalysis-io/datalysis/internal/observability/metrics"
	"github.com/datalysis-io/datalysis/internal/schema"
	"github.com/datalysis-io/datalysis/internal/segment"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Cfg     *config.AnalysisConfigHolder
	Metrics *metrics.Metrics       `optional:"true"`
	History domain.HistoryRecorder `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	cfg     *config.AnalysisConfigHolder
	metrics *metrics.Metrics
	history domain.HistoryRecorder
	workers *semaphore.Weighted
}

func New(p Params) domain.Service {
	maxWorkers := p.Cfg.Get().Limits.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Service{
		log:     p.Log.Named("ingest.service"),
		genID:   p.GenID,
		cfg:     p.Cfg,
		metrics: p.Metrics,
		history: p.History,
		workers: semaphore.NewWeighted(int64(maxWorkers)),
	}
}

// Analyze runs the full pipeline for one uploaded CSV. Concurrency is
// bounded by the worker semaphore; each run gets its own processing
// deadline so one slow upload cannot hold a worker forever.
func (s *Service) Analyze(ctx context.Context, req domain.AnalyzeRequest) (domain.Report, error) {
	cfg := s.cfg.Get()
	start := time.Now()
	id := s.genID.Generate()
	log := s.log.With(zap.Int64("report_id", id.Int64()), zap.String("filename", req.Filename))

	if err := s.workers.Acquire(ctx, 1); err != nil {
		return s.fail(ctx, log, domain.StageReceived, domain.ErrTimeout)
	}
	defer s.workers.Release(1)

	ctx, cancel := context.WithTimeout(ctx, cfg.Limits.ProcessTimeout)
	defer cancel()

	log.Info("upload received", zap.String("stage", string(domain.StageReceived)), zap.Int("bytes", len(req.Data)))

	if int64(len(req.Data)) > cfg.Limits.MaxUploadBytes {
		return s.fail(ctx, log, domain.StageReceived, domain.ErrFileTooLarge)
	}

	headers, records, err := parseCSV(req.Data, cfg.Limits.MaxRows)
	if err != nil {
		return s.fail(ctx, log, domain.StageReceived, err)
	}
	log.Info("upload parsed", zap.String("stage", string(domain.StageParsed)),
		zap.Int("columns", len(headers)), zap.Int("rows", len(records)))

	assignment, err := schema.Infer(headers, records, schema.Options{
		SampleSize:                  cfg.Schema.SampleSize,
		TypeMatchRatio:              cfg.Schema.TypeMatchRatio,
		CategoryMaxCardinalityRatio: cfg.Schema.CategoryMaxCardinalityRatio,
	})
	if err != nil {
		return s.fail(ctx, log, domain.StageParsed, err)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, log, domain.StageParsed, domain.ErrTimeout)
	}

	dataset := normalize.Normalize(records, assignment)
	log.Info("upload normalized", zap.String("stage", string(domain.StageNormalized)),
		zap.Float64("quality_score", dataset.QualityScore()))
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, log, domain.StageNormalized, domain.ErrTimeout)
	}

	valid := dataset.Valid()
	result := analytics.Aggregate(valid)

	thresholds := segment.Thresholds{
		Enterprise: cfg.Segments.EnterpriseMinLTV,
		MidMarket:  cfg.Segments.MidMarketMinLTV,
		SMB:        cfg.Segments.SMBMinLTV,
	}
	segments, customers := segment.Build(valid, thresholds, cfg.Segments.TopCustomers, cfg.Segments.ActiveWindowDays)

	insights := insight.Generate(result, segments, insight.Config{
		NoiseThreshold:         cfg.Insights.NoiseThreshold,
		ConcentrationThreshold: cfg.Insights.ConcentrationThreshold,
		HighOrderValue:         cfg.Insights.HighOrderValue,
		MaxInsights:            cfg.Insights.MaxInsights,
	})
	log.Info("upload aggregated", zap.String("stage", string(domain.StageAggregated)),
		zap.Int("trend_points", len(result.Trends)), zap.Int("insights", len(insights)))
	if err := ctx.Err(); err != nil {
		return s.fail(ctx, log, domain.StageAggregated, domain.ErrTimeout)
	}

	report := domain.Report{
		ID:               id,
		Filename:         req.Filename,
		Domain:           assignment.Domain.Wire(),
		DataQualityScore: dataset.QualityScore(),
		Kpis:             result.Kpis,
		Trends:           result.Trends,
		Insights:         insights,
		Segments:         segments,
		Customers:        customers,
	}

	if s.history != nil {
		if err := s.history.Record(ctx, report); err != nil {
			// History is derived data; a failed write never fails the upload.
			log.Warn("report history write failed", zap.Error(err))
		}
	}

	s.metrics.RecordUpload(ctx, report.Domain)
	s.metrics.RecordRowsProcessed(ctx, report.Domain, dataset.Total)
	s.metrics.RecordUploadDuration(ctx, report.Domain, time.Since(start))

	log.Info("upload responded", zap.String("stage", string(domain.StageResponded)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return report, nil
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, from domain.Stage, err error) (domain.Report, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = domain.ErrTimeout
	}
	s.metrics.RecordUploadFailure(context.WithoutCancel(ctx), err.Error())
	log.Warn("upload errored",
		zap.String("stage", string(domain.StageErrored)),
		zap.String("from", string(from)),
		zap.Error(err),
	)
	return domain.Report{}, err
}

// parseCSV reads the header and up to maxRows data records. Records may be
// ragged; width mismatches are a normalization concern, not a parse error.
func parseCSV(data []byte, maxRows int) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, domain.ErrMalformedCSV
	}
	if len(all) == 0 {
		return nil, nil, domain.ErrEmptyFile
	}

	headers := all[0]
	records := all[1:]
	if maxRows > 0 && len(records) > maxRows {
		return nil, nil, domain.ErrTooManyRows
	}
	return headers, records, nil
}
