package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/datalysis-io/datalysis/internal/analytics"
	"github.com/datalysis-io/datalysis/internal/segment"
)

// AnalyzeRequest carries one uploaded CSV through the pipeline. Data is the
// raw file body; the caller has already enforced the transport-level size
// and content-type checks, the service re-enforces its own ceilings.
type AnalyzeRequest struct {
	Filename string
	Data     []byte
}

// Report is the full analysis payload returned to the dashboard.
type Report struct {
	ID               snowflake.ID           `json:"-"`
	Filename         string                 `json:"filename"`
	Domain           string                 `json:"domain"`
	DataQualityScore float64                `json:"data_quality_score"`
	Kpis             analytics.KpiSet       `json:"kpis"`
	Trends           []analytics.TrendPoint `json:"trends"`
	Insights         []string               `json:"insights"`
	Segments         []segment.Segment      `json:"segments"`
	Customers        []segment.Customer     `json:"customers"`
}

// Stage names the steps of the ingestion state machine. Errored is reachable
// from every stage.
type Stage string

const (
	StageReceived   Stage = "received"
	StageParsed     Stage = "parsed"
	StageNormalized Stage = "normalized"
	StageAggregated Stage = "aggregated"
	StageResponded  Stage = "responded"
	StageErrored    Stage = "errored"
)

type Service interface {
	Analyze(context.Context, AnalyzeRequest) (Report, error)
}

// HistoryRecorder persists a summary of a completed report. Implementations
// must not retain the uploaded dataset itself.
type HistoryRecorder interface {
	Record(context.Context, Report) error
}
