package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AnalysisConfig collects every tunable of the ingestion pipeline. It lives
// in an optional analysis.yml so thresholds can be adjusted without a
// rebuild; the holder hot-reloads on file change.
type AnalysisConfig struct {
	Schema   SchemaConfig   `mapstructure:"schema"`
	Segments SegmentConfig  `mapstructure:"segments"`
	Insights InsightConfig  `mapstructure:"insights"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

type SchemaConfig struct {
	SampleSize                  int     `mapstructure:"sampleSize"`
	TypeMatchRatio              float64 `mapstructure:"typeMatchRatio"`
	CategoryMaxCardinalityRatio float64 `mapstructure:"categoryMaxCardinalityRatio"`
}

type SegmentConfig struct {
	EnterpriseMinLTV float64 `mapstructure:"enterpriseMinLtv"`
	MidMarketMinLTV  float64 `mapstructure:"midMarketMinLtv"`
	SMBMinLTV        float64 `mapstructure:"smbMinLtv"`
	TopCustomers     int     `mapstructure:"topCustomers"`
	ActiveWindowDays int     `mapstructure:"activeWindowDays"`
}

type InsightConfig struct {
	NoiseThreshold         float64 `mapstructure:"noiseThreshold"`
	ConcentrationThreshold float64 `mapstructure:"concentrationThreshold"`
	HighOrderValue         float64 `mapstructure:"highOrderValue"`
	MaxInsights            int     `mapstructure:"maxInsights"`
}

type LimitsConfig struct {
	MaxUploadBytes int64         `mapstructure:"maxUploadBytes"`
	MaxRows        int           `mapstructure:"maxRows"`
	MaxWorkers     int           `mapstructure:"maxWorkers"` // 0 = NumCPU
	ProcessTimeout time.Duration `mapstructure:"processTimeout"`
	ReportHistory  int           `mapstructure:"reportHistory"`
}

func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Schema: SchemaConfig{
			SampleSize:                  50,
			TypeMatchRatio:              0.8,
			CategoryMaxCardinalityRatio: 0.3,
		},
		Segments: SegmentConfig{
			EnterpriseMinLTV: 10_000,
			MidMarketMinLTV:  2_000,
			SMBMinLTV:        500,
			TopCustomers:     50,
			ActiveWindowDays: 30,
		},
		Insights: InsightConfig{
			NoiseThreshold:         0.05,
			ConcentrationThreshold: 0.5,
			HighOrderValue:         500,
			MaxInsights:            5,
		},
		Limits: LimitsConfig{
			MaxUploadBytes: 10 << 20,
			MaxRows:        200_000,
			ProcessTimeout: 30 * time.Second,
			ReportHistory:  100,
		},
	}
}

type AnalysisConfigHolder struct {
	current atomic.Value // holds AnalysisConfig
}

func NewAnalysisConfigHolder() (*AnalysisConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("analysis")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/datalysis")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DATALYSIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAnalysisDefaults(v, DefaultAnalysisConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AnalysisConfig
	if err := v.UnmarshalKey("analysis", &cfg); err != nil {
		return nil, err
	}
	if err := validateAnalysisConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AnalysisConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AnalysisConfig
		if err := v.UnmarshalKey("analysis", &updated); err != nil {
			log.Printf("[analysis-config] reload failed: %v", err)
			return
		}
		if err := validateAnalysisConfig(updated); err != nil {
			log.Printf("[analysis-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[analysis-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *AnalysisConfigHolder) Get() AnalysisConfig {
	return h.current.Load().(AnalysisConfig)
}

// NewStaticAnalysisConfigHolder wraps a fixed config for tests.
func NewStaticAnalysisConfigHolder(cfg AnalysisConfig) *AnalysisConfigHolder {
	holder := &AnalysisConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func setAnalysisDefaults(v *viper.Viper, d AnalysisConfig) {
	v.SetDefault("analysis.schema.sampleSize", d.Schema.SampleSize)
	v.SetDefault("analysis.schema.typeMatchRatio", d.Schema.TypeMatchRatio)
	v.SetDefault("analysis.schema.categoryMaxCardinalityRatio", d.Schema.CategoryMaxCardinalityRatio)
	v.SetDefault("analysis.segments.enterpriseMinLtv", d.Segments.EnterpriseMinLTV)
	v.SetDefault("analysis.segments.midMarketMinLtv", d.Segments.MidMarketMinLTV)
	v.SetDefault("analysis.segments.smbMinLtv", d.Segments.SMBMinLTV)
	v.SetDefault("analysis.segments.topCustomers", d.Segments.TopCustomers)
	v.SetDefault("analysis.segments.activeWindowDays", d.Segments.ActiveWindowDays)
	v.SetDefault("analysis.insights.noiseThreshold", d.Insights.NoiseThreshold)
	v.SetDefault("analysis.insights.concentrationThreshold", d.Insights.ConcentrationThreshold)
	v.SetDefault("analysis.insights.highOrderValue", d.Insights.HighOrderValue)
	v.SetDefault("analysis.insights.maxInsights", d.Insights.MaxInsights)
	v.SetDefault("analysis.limits.maxUploadBytes", d.Limits.MaxUploadBytes)
	v.SetDefault("analysis.limits.maxRows", d.Limits.MaxRows)
	v.SetDefault("analysis.limits.maxWorkers", d.Limits.MaxWorkers)
	v.SetDefault("analysis.limits.processTimeout", d.Limits.ProcessTimeout)
	v.SetDefault("analysis.limits.reportHistory", d.Limits.ReportHistory)
}

func validateAnalysisConfig(cfg AnalysisConfig) error {
	if cfg.Schema.TypeMatchRatio <= 0 || cfg.Schema.TypeMatchRatio > 1 {
		return errors.New("analysis.schema.typeMatchRatio must be in (0, 1]")
	}
	if cfg.Segments.EnterpriseMinLTV < cfg.Segments.MidMarketMinLTV ||
		cfg.Segments.MidMarketMinLTV < cfg.Segments.SMBMinLTV {
		return errors.New("analysis.segments ltv thresholds must be descending")
	}
	if cfg.Limits.MaxUploadBytes <= 0 {
		return errors.New("analysis.limits.maxUploadBytes must be positive")
	}
	if cfg.Limits.ProcessTimeout <= 0 {
		return errors.New("analysis.limits.processTimeout must be positive")
	}
	return nil
}
