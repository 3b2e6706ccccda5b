package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalysis-io/datalysis/internal/normalize"
)

func row(date string, amount float64, entity string) normalize.Row {
	r := normalize.Row{Amount: &amount, Entity: entity, Category: "General", Valid: true}
	if date != "" {
		ts, err := time.Parse("2006-01-02", date)
		if err != nil {
			panic(err)
		}
		r.Date = &ts
	}
	return r
}

func TestTierBoundariesInclusive(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		ltv  float64
		want string
	}{
		{10_000, TierEnterprise},
		{9_999.99, TierMidMarket},
		{2_000, TierMidMarket},
		{1_999.99, TierSMB},
		{500, TierSMB},
		{499.99, TierStartup},
		{0, TierStartup},
		{-10, TierStartup},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Tier(tt.ltv), "ltv %v", tt.ltv)
	}
}

func TestBuildSegmentsAndCustomers(t *testing.T) {
	rows := []normalize.Row{
		row("2023-01-10", 6_000, "Acme Corp"),
		row("2023-03-15", 5_500, "Acme Corp"), // Acme → 11,500 Enterprise
		row("2023-02-01", 2_500, "Beta LLC"),  // Mid-Market
		row("2023-04-20", 600, "carol@shop.io"),
		row("2023-04-25", 100, "Dave"),
	}

	segments, customers := Build(rows, DefaultThresholds(), 10, 30)

	require.Len(t, segments, 4)
	assert.Equal(t, Segment{Name: TierEnterprise, Value: 1}, segments[0])
	assert.Equal(t, Segment{Name: TierMidMarket, Value: 1}, segments[1])
	assert.Equal(t, Segment{Name: TierSMB, Value: 1}, segments[2])
	assert.Equal(t, Segment{Name: TierStartup, Value: 1}, segments[3])

	require.Len(t, customers, 4)
	assert.Equal(t, "Acme Corp", customers[0].Name)
	assert.InDelta(t, 11_500, customers[0].LTV, 1e-9)
	assert.Equal(t, "AC", customers[0].Initials)
	assert.Equal(t, "acme-corp@example.com", customers[0].Email)
	assert.Equal(t, "2023-03-15", customers[0].LastSeen)
	assert.Equal(t, "inactive", customers[0].Status) // last seen >30d before 2023-04-25

	// Email cells keep the address and derive a display name.
	carol := customers[2]
	assert.Equal(t, "Carol", carol.Name)
	assert.Equal(t, "carol@shop.io", carol.Email)
	assert.Equal(t, "C", carol.Initials)
	assert.Equal(t, "active", carol.Status)
}

func TestBuildTopNCap(t *testing.T) {
	rows := []normalize.Row{
		row("2023-01-01", 10, "a"),
		row("2023-01-01", 30, "b"),
		row("2023-01-01", 20, "c"),
	}

	_, customers := Build(rows, DefaultThresholds(), 2, 30)
	require.Len(t, customers, 2)
	assert.Equal(t, "b", customers[0].Name)
	assert.Equal(t, "c", customers[1].Name)
}

func TestBuildDeterministicTieBreak(t *testing.T) {
	rows := []normalize.Row{
		row("2023-01-01", 100, "zeta"),
		row("2023-01-01", 100, "alpha"),
	}

	_, first := Build(rows, DefaultThresholds(), 10, 30)
	_, second := Build(rows, DefaultThresholds(), 10, 30)
	require.Equal(t, first, second)
	assert.Equal(t, "alpha", first[0].Name)
}

func TestBuildEmptySegmentsOmitted(t *testing.T) {
	rows := []normalize.Row{row("2023-01-01", 50, "tiny")}

	segments, _ := Build(rows, DefaultThresholds(), 10, 30)
	require.Len(t, segments, 1)
	assert.Equal(t, TierStartup, segments[0].Name)
}

func TestBuildNoDatesMeansActive(t *testing.T) {
	rows := []normalize.Row{row("", 700, "nodate co")}

	_, customers := Build(rows, DefaultThresholds(), 10, 30)
	require.Len(t, customers, 1)
	assert.Equal(t, "active", customers[0].Status)
	assert.Empty(t, customers[0].LastSeen)
}
