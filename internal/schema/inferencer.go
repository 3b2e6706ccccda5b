package schema

import (
	"strconv"
	"strings"
	"time"
)

// Options tunes the content-sampling heuristics. Values come from the
// analysis config so they can be adjusted without code changes.
type Options struct {
	// SampleSize caps how many non-empty cells per column are inspected.
	SampleSize int
	// TypeMatchRatio is the fraction of sampled cells a recognizer must
	// accept before the column gets that role.
	TypeMatchRatio float64
	// CategoryMaxCardinalityRatio is the unique/total ceiling below which a
	// string column counts as categorical.
	CategoryMaxCardinalityRatio float64
}

// DefaultOptions returns the starting configuration.
func DefaultOptions() Options {
	return Options{
		SampleSize:                  50,
		TypeMatchRatio:              0.8,
		CategoryMaxCardinalityRatio: 0.3,
	}
}

var roleKeywords = map[ColumnRole][]string{
	RoleAmount:   {"amount", "sales", "revenue", "price", "value", "total", "cost", "spend", "charge"},
	RoleDate:     {"date", "time", "day", "created_at", "timestamp", "month"},
	RoleCategory: {"category", "type", "product", "item", "segment", "market", "group"},
	RoleEntityID: {"customer_id", "client_id", "user_id", "account_id", "entity_id"},
	RoleEntityName: {
		"customer", "client", "user", "account", "email", "patient", "member", "name",
	},
}

// keywordOrder fixes the precedence when one header matches several role
// keyword lists ("total_sales_date" is pathological but must be stable).
var keywordOrder = []ColumnRole{RoleAmount, RoleDate, RoleEntityID, RoleEntityName, RoleCategory}

var domainKeywords = map[Domain][]string{
	DomainHealth:  {"bpm", "patient", "heart", "blood", "pulse", "diagnosis", "bmi", "dosage"},
	DomainWeather: {"temperature", "precipitation", "humidity", "wind", "rainfall", "uv_index"},
	DomainFinance: {"balance", "transaction", "debit", "credit", "interest", "portfolio", "ticker"},
}

// Infer assigns one ColumnRole per header and classifies the dataset domain.
// Header keyword matches take precedence over content sampling; sampling only
// fills roles that keywords left open. Returns ErrNoAmountColumn when no
// column qualifies as an amount.
func Infer(headers []string, rows [][]string, opts Options) (Assignment, error) {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultOptions().SampleSize
	}
	if opts.TypeMatchRatio <= 0 || opts.TypeMatchRatio > 1 {
		opts.TypeMatchRatio = DefaultOptions().TypeMatchRatio
	}
	if opts.CategoryMaxCardinalityRatio <= 0 {
		opts.CategoryMaxCardinalityRatio = DefaultOptions().CategoryMaxCardinalityRatio
	}

	roles := make(map[string]ColumnRole, len(headers))
	taken := make(map[ColumnRole]int) // role -> column index
	for _, h := range headers {
		roles[h] = RoleUnknown
	}

	assign := func(idx int, role ColumnRole) {
		if _, ok := taken[role]; ok {
			return // first matching column wins
		}
		roles[headers[idx]] = role
		taken[role] = idx
	}

	// Pass 1: exact keyword match on normalized header names.
	for _, role := range keywordOrder {
		for idx, h := range headers {
			if roles[h] != RoleUnknown {
				continue
			}
			if matchKeyword(h, roleKeywords[role], true) {
				assign(idx, role)
			}
		}
	}

	// Pass 2: substring keyword match.
	for _, role := range keywordOrder {
		for idx, h := range headers {
			if roles[h] != RoleUnknown {
				continue
			}
			if matchKeyword(h, roleKeywords[role], false) {
				assign(idx, role)
			}
		}
	}

	// Pass 3: content sampling for whatever keywords left open.
	for idx, h := range headers {
		if roles[h] != RoleUnknown {
			continue
		}
		sampled := sampleColumn(rows, idx, opts.SampleSize)
		role := classifyByContent(sampled, len(rows), opts)
		if role != RoleUnknown {
			assign(idx, role)
		}
	}

	a := Assignment{
		Headers:       headers,
		Roles:         roles,
		Domain:        classifyDomain(headers),
		DateIndex:     indexFor(taken, RoleDate),
		AmountIndex:   indexFor(taken, RoleAmount),
		CategoryIndex: indexFor(taken, RoleCategory),
		EntityIndex:   entityIndex(taken),
	}

	if a.AmountIndex < 0 {
		return Assignment{}, ErrNoAmountColumn
	}
	return a, nil
}

func indexFor(taken map[ColumnRole]int, role ColumnRole) int {
	if idx, ok := taken[role]; ok {
		return idx
	}
	return -1
}

// entityIndex prefers a name-bearing column over an opaque identifier.
func entityIndex(taken map[ColumnRole]int) int {
	if idx, ok := taken[RoleEntityName]; ok {
		return idx
	}
	if idx, ok := taken[RoleEntityID]; ok {
		return idx
	}
	return -1
}

func matchKeyword(header string, words []string, exact bool) bool {
	h := normalizeHeader(header)
	for _, w := range words {
		if exact {
			if h == w {
				return true
			}
			continue
		}
		if strings.Contains(h, w) {
			return true
		}
	}
	return false
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

func sampleColumn(rows [][]string, idx, limit int) []string {
	out := make([]string, 0, limit)
	for _, row := range rows {
		if len(out) >= limit {
			break
		}
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "n/a") {
			continue
		}
		out = append(out, v)
	}
	return out
}

func classifyByContent(samples []string, totalRows int, opts Options) ColumnRole {
	if len(samples) == 0 {
		return RoleUnknown
	}

	dates, amounts := 0, 0
	unique := make(map[string]struct{}, len(samples))
	for _, v := range samples {
		if looksLikeDate(v) {
			dates++
		}
		if looksLikeAmount(v) {
			amounts++
		}
		unique[strings.ToLower(v)] = struct{}{}
	}

	threshold := int(float64(len(samples)) * opts.TypeMatchRatio)
	if threshold < 1 {
		threshold = 1
	}

	// Date before amount: "2023-01" parses as a date, not a number.
	if dates >= threshold {
		return RoleDate
	}
	if amounts >= threshold {
		return RoleAmount
	}

	uniqueRatio := float64(len(unique)) / float64(len(samples))
	if uniqueRatio <= opts.CategoryMaxCardinalityRatio && totalRows > len(unique) {
		return RoleCategory
	}
	if uniqueRatio > 0.5 && len(unique) > 10 {
		return RoleEntityName
	}
	return RoleUnknown
}

var sampleDateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"2006.01.02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01",
}

func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, f := range sampleDateFormats {
		if _, err := time.Parse(f, s); err == nil {
			return true
		}
	}
	return false
}

func looksLikeAmount(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// classifyDomain picks the vertical with the most header keyword hits.
// Zero hits or a tie falls back to DomainBusiness.
func classifyDomain(headers []string) Domain {
	joined := make([]string, 0, len(headers))
	for _, h := range headers {
		joined = append(joined, normalizeHeader(h))
	}

	best := DomainBusiness
	bestHits := 0
	for _, d := range []Domain{DomainFinance, DomainHealth, DomainWeather} {
		hits := 0
		for _, word := range domainKeywords[d] {
			for _, h := range joined {
				if strings.Contains(h, word) {
					hits++
				}
			}
		}
		if hits > bestHits {
			best = d
			bestHits = hits
		}
	}
	return best
}
