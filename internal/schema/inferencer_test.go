package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSampleTemplate(t *testing.T) {
	headers := []string{"Date", "Category", "Amount"}
	rows := [][]string{
		{"2023-01-15", "Electronics", "1200.50"},
		{"2023-01-20", "Clothing", "340.00"},
		{"2023-02-03", "Electronics", "890.25"},
	}

	a, err := Infer(headers, rows, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, a.DateIndex)
	assert.Equal(t, 1, a.CategoryIndex)
	assert.Equal(t, 2, a.AmountIndex)
	assert.Equal(t, -1, a.EntityIndex)
	assert.Equal(t, RoleDate, a.Roles["Date"])
	assert.Equal(t, RoleCategory, a.Roles["Category"])
	assert.Equal(t, RoleAmount, a.Roles["Amount"])
	assert.Equal(t, DomainBusiness, a.Domain)
}

func TestInferKeywordPrecedenceOverContent(t *testing.T) {
	// "Revenue" holds date-shaped strings; the header keyword still wins.
	headers := []string{"Revenue", "When"}
	rows := [][]string{
		{"2023-01-01", "2023-01-01"},
		{"2023-02-01", "2023-02-01"},
	}

	a, err := Infer(headers, rows, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, RoleAmount, a.Roles["Revenue"])
	assert.Equal(t, 0, a.AmountIndex)
}

func TestInferContentSamplingFallback(t *testing.T) {
	headers := []string{"col_a", "col_b", "col_c"}
	rows := [][]string{
		{"2023-01-05", "$1,200.00", "North"},
		{"2023-01-12", "$340.50", "South"},
		{"2023-02-02", "$89.99", "North"},
		{"2023-02-19", "$412.00", "East"},
		{"2023-03-07", "$51.25", "North"},
		{"2023-03-21", "$900.00", "South"},
		{"2023-04-01", "$77.10", "East"},
		{"2023-04-11", "$18.00", "North"},
		{"2023-04-19", "$230.00", "South"},
		{"2023-04-28", "$63.40", "North"},
	}

	a, err := Infer(headers, rows, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, RoleDate, a.Roles["col_a"])
	assert.Equal(t, RoleAmount, a.Roles["col_b"])
	assert.Equal(t, RoleCategory, a.Roles["col_c"])
}

func TestInferNoAmountColumn(t *testing.T) {
	headers := []string{"Date", "Notes"}
	rows := [][]string{
		{"2023-01-01", "first entry"},
		{"2023-01-02", "second entry"},
	}

	_, err := Infer(headers, rows, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoAmountColumn)
}

func TestInferHeaderOnlyKeywordMatch(t *testing.T) {
	// Zero data rows: keyword matching alone must still resolve roles.
	a, err := Infer([]string{"Date", "Category", "Amount"}, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, a.AmountIndex)
	assert.True(t, a.HasDate())
	assert.True(t, a.HasCategory())
}

func TestInferOneColumnPerRole(t *testing.T) {
	headers := []string{"Amount", "Total", "Sales"}
	rows := [][]string{{"10", "20", "30"}}

	a, err := Infer(headers, rows, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, a.AmountIndex)
	assert.Equal(t, RoleAmount, a.Roles["Amount"])
}

func TestInferEntityPrefersNameOverID(t *testing.T) {
	headers := []string{"customer_id", "Customer Name", "Amount"}
	rows := [][]string{{"c-1", "Ada Lovelace", "100"}}

	a, err := Infer(headers, rows, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, RoleEntityID, a.Roles["customer_id"])
	assert.Equal(t, RoleEntityName, a.Roles["Customer Name"])
	assert.Equal(t, 1, a.EntityIndex)
}

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Domain
	}{
		{"health", []string{"Date", "Patient", "Heart Rate BPM", "Amount"}, DomainHealth},
		{"weather", []string{"Date", "Temperature", "Humidity", "Amount"}, DomainWeather},
		{"finance", []string{"Date", "Transaction", "Balance", "Amount"}, DomainFinance},
		{"fallback", []string{"Date", "Category", "Amount"}, DomainBusiness},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyDomain(tt.headers))
		})
	}
}

func TestDomainWire(t *testing.T) {
	assert.Equal(t, "finance", DomainFinance.Wire())
	assert.Equal(t, "business", DomainUnknown.Wire())
	assert.Equal(t, "business", Domain("gibberish").Wire())
}
