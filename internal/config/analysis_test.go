package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAnalysisConfigIsValid(t *testing.T) {
	require.NoError(t, validateAnalysisConfig(DefaultAnalysisConfig()))
}

func TestValidateAnalysisConfig(t *testing.T) {
	base := DefaultAnalysisConfig()

	badRatio := base
	badRatio.Schema.TypeMatchRatio = 1.5
	assert.Error(t, validateAnalysisConfig(badRatio))

	badTiers := base
	badTiers.Segments.EnterpriseMinLTV = 100
	assert.Error(t, validateAnalysisConfig(badTiers))

	badLimit := base
	badLimit.Limits.MaxUploadBytes = 0
	assert.Error(t, validateAnalysisConfig(badLimit))

	badTimeout := base
	badTimeout.Limits.ProcessTimeout = 0
	assert.Error(t, validateAnalysisConfig(badTimeout))
}

func TestStaticHolder(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	cfg.Insights.MaxInsights = 3

	h := NewStaticAnalysisConfigHolder(cfg)
	assert.Equal(t, 3, h.Get().Insights.MaxInsights)
}
