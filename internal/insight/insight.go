package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/datalysis-io/datalysis/internal/analytics"
	"github.com/datalysis-io/datalysis/internal/segment"
)

// Config tunes the detectors. Zero values fall back to defaults.
type Config struct {
	// NoiseThreshold is the minimum month-over-month fractional change worth
	// reporting (0.05 = 5%).
	NoiseThreshold float64
	// ConcentrationThreshold is the revenue share above which a single
	// category or segment counts as a concentration risk.
	ConcentrationThreshold float64
	// HighOrderValue is the average order value above which spend is called
	// premium.
	HighOrderValue float64
	// MaxInsights caps the returned list.
	MaxInsights int
}

// DefaultConfig returns the standard detector tuning.
func DefaultConfig() Config {
	return Config{
		NoiseThreshold:         0.05,
		ConcentrationThreshold: 0.5,
		HighOrderValue:         500,
		MaxInsights:            5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NoiseThreshold <= 0 {
		c.NoiseThreshold = d.NoiseThreshold
	}
	if c.ConcentrationThreshold <= 0 {
		c.ConcentrationThreshold = d.ConcentrationThreshold
	}
	if c.HighOrderValue <= 0 {
		c.HighOrderValue = d.HighOrderValue
	}
	if c.MaxInsights <= 0 {
		c.MaxInsights = d.MaxInsights
	}
	return c
}

type scored struct {
	text  string
	score float64
}

// Generate runs every detector over the aggregation output and returns the
// strongest findings, ranked by effect magnitude and capped at MaxInsights.
// An empty slice is a normal outcome for small or flat datasets.
func Generate(res analytics.Result, segments []segment.Segment, cfg Config) []string {
	cfg = cfg.withDefaults()

	var found []scored
	found = append(found, momTrend(res.Trends, cfg)...)
	found = append(found, categoryConcentration(res.Kpis.TotalSales, res.CategoryTotals, cfg)...)
	found = append(found, segmentConcentration(segments, cfg)...)
	found = append(found, orderValueLevel(res.Kpis, cfg)...)

	sort.Slice(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].text < found[j].text
	})
	if len(found) > cfg.MaxInsights {
		found = found[:cfg.MaxInsights]
	}

	out := make([]string, 0, len(found))
	for _, f := range found {
		out = append(out, f.text)
	}
	return out
}

// momTrend compares the two most recent trend buckets.
func momTrend(trends []analytics.TrendPoint, cfg Config) []scored {
	if len(trends) < 2 {
		return nil
	}
	prev := trends[len(trends)-2]
	last := trends[len(trends)-1]
	if prev.Sales == 0 {
		return nil
	}
	delta := (last.Sales - prev.Sales) / prev.Sales
	if math.Abs(delta) < cfg.NoiseThreshold {
		return nil
	}

	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	return []scored{{
		text: fmt.Sprintf("Sales are %s %.0f%% in %s compared to %s.",
			direction, math.Abs(delta)*100, last.Date, prev.Date),
		score: math.Abs(delta),
	}}
}

// categoryConcentration flags a single category carrying more than the
// threshold share of revenue, or confirms a balanced spread otherwise.
func categoryConcentration(totalSales float64, categories map[string]float64, cfg Config) []scored {
	if totalSales <= 0 || len(categories) < 2 {
		return nil
	}

	best := ""
	var bestTotal float64
	for name, total := range categories {
		if total > bestTotal || (total == bestTotal && name < best) || best == "" {
			best, bestTotal = name, total
		}
	}

	share := bestTotal / totalSales
	if share >= cfg.ConcentrationThreshold {
		return []scored{{
			text: fmt.Sprintf("%s drives %.0f%% of revenue; diversifying would reduce concentration risk.",
				best, share*100),
			score: share,
		}}
	}
	return []scored{{
		text:  "Revenue is well balanced across categories with no single point of dependency.",
		score: 0.1,
	}}
}

// segmentConcentration flags one tier holding most of the customer base.
func segmentConcentration(segments []segment.Segment, cfg Config) []scored {
	total := 0
	for _, s := range segments {
		total += s.Value
	}
	if total < 2 || len(segments) < 2 {
		return nil
	}
	for _, s := range segments {
		share := float64(s.Value) / float64(total)
		if share >= cfg.ConcentrationThreshold {
			return []scored{{
				text: fmt.Sprintf("%.0f%% of customers sit in the %s segment.",
					share*100, s.Name),
				score: share,
			}}
		}
	}
	return nil
}

// orderValueLevel comments on spend levels when the average order is high.
func orderValueLevel(kpis analytics.KpiSet, cfg Config) []scored {
	if kpis.TotalOrders == 0 || kpis.AvgOrderValue < cfg.HighOrderValue {
		return nil
	}
	return []scored{{
		text: fmt.Sprintf("Average order value of $%.2f indicates premium spending behavior.",
			kpis.AvgOrderValue),
		score: math.Min(kpis.AvgOrderValue/cfg.HighOrderValue, 1) * 0.5,
	}}
}
