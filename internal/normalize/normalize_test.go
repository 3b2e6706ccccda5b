package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalysis-io/datalysis/internal/schema"
)

func sampleAssignment() schema.Assignment {
	return schema.Assignment{
		Headers:       []string{"Date", "Category", "Amount"},
		Domain:        schema.DomainBusiness,
		DateIndex:     0,
		CategoryIndex: 1,
		AmountIndex:   2,
		EntityIndex:   -1,
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"1200.50", 1200.50, true},
		{"$1,200.50", 1200.50, true},
		{"€890", 890, true},
		{"£ 42.00", 42, true},
		{"(150.00)", -150, true},
		{"-75.25", -75.25, true},
		{"", 0, false},
		{"abc", 0, false},
		{"12.3.4", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2023-01-15", "2023-01-15", true},
		{"2023/01/15", "2023-01-15", true},
		{"01/15/2023", "2023-01-15", true},
		{"Jan 15, 2023", "2023-01-15", true},
		{"2023-01-15T08:30:00Z", "2023-01-15", true},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestNormalizeBadAmountInvalidatesRow(t *testing.T) {
	records := [][]string{
		{"2023-01-15", "Electronics", "1200.50"},
		{"2023-01-20", "Clothing", "oops"},
		{"2023-02-03", "Electronics", ""},
		{"2023-02-10", "Books", "55.00"},
		{"2023-03-01", "Books", "12.00"},
	}

	ds := Normalize(records, sampleAssignment())
	require.Len(t, ds.Rows, 5)
	assert.Equal(t, 5, ds.Total)

	assert.True(t, ds.Rows[0].Valid)
	assert.False(t, ds.Rows[1].Valid)
	assert.False(t, ds.Rows[2].Valid)
	assert.InDelta(t, 0.6, ds.QualityScore(), 1e-9)
	assert.Len(t, ds.Valid(), 3)
}

func TestNormalizeBadDateKeepsRowValid(t *testing.T) {
	records := [][]string{
		{"garbage", "Electronics", "100.00"},
	}

	ds := Normalize(records, sampleAssignment())
	require.Len(t, ds.Rows, 1)
	assert.True(t, ds.Rows[0].Valid)
	assert.Nil(t, ds.Rows[0].Date)
	assert.InDelta(t, 1.0, ds.QualityScore(), 1e-9)
}

func TestNormalizeBlankDimensionsFallBack(t *testing.T) {
	a := sampleAssignment()
	a.EntityIndex = 3
	records := [][]string{
		{"2023-01-15", "", "100.00", "  "},
	}

	ds := Normalize(records, a)
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, UncategorizedLabel, ds.Rows[0].Category)
	assert.Equal(t, UnknownEntityLabel, ds.Rows[0].Entity)
}

func TestNormalizeRaggedRow(t *testing.T) {
	// Short records read as blank cells past their length.
	records := [][]string{
		{"2023-01-15", "Electronics"},
	}

	ds := Normalize(records, sampleAssignment())
	require.Len(t, ds.Rows, 1)
	assert.False(t, ds.Rows[0].Valid)
}

func TestQualityScoreEmptyDataset(t *testing.T) {
	ds := Normalize(nil, sampleAssignment())
	assert.InDelta(t, 1.0, ds.QualityScore(), 1e-9)
}

func TestQualityScoreMonotonicity(t *testing.T) {
	records := [][]string{
		{"2023-01-15", "A", "100.00"},
		{"2023-01-16", "A", "200.00"},
	}
	base := Normalize(records, sampleAssignment()).QualityScore()

	withBad := Normalize(append(records, []string{"2023-01-17", "A", "bad"}), sampleAssignment()).QualityScore()
	assert.Less(t, withBad, base)

	withGood := Normalize(append(records, []string{"2023-01-17", "A", "300.00"}), sampleAssignment()).QualityScore()
	assert.InDelta(t, base, withGood, 1e-9)
}
