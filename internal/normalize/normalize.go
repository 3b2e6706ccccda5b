package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/datalysis-io/datalysis/internal/schema"
)

// Fallback labels for blank dimension cells. Blank dimensions do not make a
// row invalid; only an unparseable amount does.
const (
	UncategorizedLabel = "Uncategorized"
	UnknownEntityLabel = "Unknown"
)

// Row is a normalized record. Amount is nil when the source cell was blank or
// unparseable (the row is then invalid); Date is nil when no date column
// exists or the cell failed to parse (the row stays valid but is excluded
// from trend bucketing).
type Row struct {
	Date     *time.Time
	Amount   *float64
	Category string
	Entity   string
	Valid    bool
}

// Dataset is the normalized form of one uploaded CSV.
type Dataset struct {
	Rows  []Row
	Total int
}

// QualityScore is the fraction of rows that survived normalization.
// A header-only file has nothing to reject, so it scores 1.0.
func (d Dataset) QualityScore() float64 {
	if d.Total == 0 {
		return 1.0
	}
	valid := 0
	for _, r := range d.Rows {
		if r.Valid {
			valid++
		}
	}
	return float64(valid) / float64(d.Total)
}

// Valid returns only the rows that parsed cleanly.
func (d Dataset) Valid() []Row {
	out := make([]Row, 0, len(d.Rows))
	for _, r := range d.Rows {
		if r.Valid {
			out = append(out, r)
		}
	}
	return out
}

// Normalize converts raw CSV records into Rows using the column assignment.
// Every input record yields exactly one Row; invalid rows are kept so the
// quality score can account for them.
func Normalize(records [][]string, a schema.Assignment) Dataset {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, normalizeOne(rec, a))
	}
	return Dataset{Rows: rows, Total: len(records)}
}

func normalizeOne(rec []string, a schema.Assignment) Row {
	row := Row{Category: UncategorizedLabel, Entity: UnknownEntityLabel}

	amt, ok := ParseAmount(cell(rec, a.AmountIndex))
	if !ok {
		return row // Valid stays false
	}
	row.Amount = &amt
	row.Valid = true

	if a.HasDate() {
		if ts, ok := ParseDate(cell(rec, a.DateIndex)); ok {
			row.Date = &ts
		}
	}
	if a.HasCategory() {
		if v := strings.TrimSpace(cell(rec, a.CategoryIndex)); v != "" {
			row.Category = v
		}
	}
	if a.HasEntity() {
		if v := strings.TrimSpace(cell(rec, a.EntityIndex)); v != "" {
			row.Entity = v
		}
	}
	return row
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "", " ", "")

// ParseAmount strips currency symbols and thousands separators before
// parsing. Parenthesized values are treated as negatives, accounting style.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = currencyReplacer.Replace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// dateFormats is ordered: unambiguous ISO forms first, then slashed forms
// with US month-first taking precedence, then verbose forms.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"01-02-2006",
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01",
}

// ParseDate tries each known layout in order and returns the first match,
// normalized to UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, f := range dateFormats {
		if ts, err := time.Parse(f, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
