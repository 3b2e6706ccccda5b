package analytics

import (
	"sort"
	"time"

	"github.com/datalysis-io/datalysis/internal/normalize"
)

// KpiSet is the headline figures block of an analysis response.
type KpiSet struct {
	TotalSales     float64 `json:"total_sales"`
	TotalOrders    int     `json:"total_orders"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TotalCustomers int     `json:"total_customers"`
	TopCategory    string  `json:"top_category,omitempty"`
}

// TrendPoint is one calendar-month bucket. Date is the YYYY-MM bucket key;
// Users counts distinct entities seen in the bucket.
type TrendPoint struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
	Users int     `json:"users"`
}

// Result carries everything the aggregation pass derives. CategoryTotals
// feeds the insight detectors and is not serialized directly.
type Result struct {
	Kpis           KpiSet
	Trends         []TrendPoint
	CategoryTotals map[string]float64
}

const trendBucketFormat = "2006-01"

// Aggregate computes KPIs and monthly trends over the valid rows of a
// dataset. Invalid rows were already excluded by normalization; rows without
// a parsed date contribute to KPIs but not to trends.
func Aggregate(rows []normalize.Row) Result {
	var (
		totalSales float64
		categories = map[string]float64{}
		entities   = map[string]struct{}{}

		bucketSales = map[string]float64{}
		bucketUsers = map[string]map[string]struct{}{}
	)

	for _, r := range rows {
		if r.Amount == nil {
			continue
		}
		amt := *r.Amount
		totalSales += amt
		categories[r.Category] += amt
		entities[r.Entity] = struct{}{}

		if r.Date == nil {
			continue
		}
		key := bucketKey(*r.Date)
		bucketSales[key] += amt
		if bucketUsers[key] == nil {
			bucketUsers[key] = map[string]struct{}{}
		}
		bucketUsers[key][r.Entity] = struct{}{}
	}

	kpis := KpiSet{
		TotalSales:     totalSales,
		TotalOrders:    len(rows),
		TotalCustomers: len(entities),
		TopCategory:    topCategory(categories),
	}
	if kpis.TotalOrders > 0 {
		kpis.AvgOrderValue = totalSales / float64(kpis.TotalOrders)
	}

	trends := make([]TrendPoint, 0, len(bucketSales))
	for key, sales := range bucketSales {
		trends = append(trends, TrendPoint{
			Date:  key,
			Sales: sales,
			Users: len(bucketUsers[key]),
		})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })

	return Result{Kpis: kpis, Trends: trends, CategoryTotals: categories}
}

func bucketKey(ts time.Time) string {
	return ts.UTC().Format(trendBucketFormat)
}

// topCategory returns the category with the highest revenue; ties break
// alphabetically so reruns are stable.
func topCategory(totals map[string]float64) string {
	best := ""
	var bestTotal float64
	for name, total := range totals {
		if best == "" || total > bestTotal || (total == bestTotal && name < best) {
			best = name
			bestTotal = total
		}
	}
	return best
}
