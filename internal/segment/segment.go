package segment

import (
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/datalysis-io/datalysis/internal/normalize"
)

// Tier names in display order. Every entity lands in exactly one tier.
const (
	TierEnterprise = "Enterprise"
	TierMidMarket  = "Mid-Market"
	TierSMB        = "SMB"
	TierStartup    = "Startup"
)

// Thresholds are inclusive lower bounds of lifetime value per tier. Anything
// below SMB is Startup.
type Thresholds struct {
	Enterprise float64
	MidMarket  float64
	SMB        float64
}

// DefaultThresholds returns the standard LTV cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{Enterprise: 10_000, MidMarket: 2_000, SMB: 500}
}

// Tier places a lifetime value into a tier name.
func (t Thresholds) Tier(ltv float64) string {
	switch {
	case ltv >= t.Enterprise:
		return TierEnterprise
	case ltv >= t.MidMarket:
		return TierMidMarket
	case ltv >= t.SMB:
		return TierSMB
	default:
		return TierStartup
	}
}

// Segment is one tier's entity count for the dashboard donut chart.
type Segment struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Customer is a display record for the dashboard's customer table.
type Customer struct {
	Initials string  `json:"initials"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Segment  string  `json:"segment"`
	LTV      float64 `json:"ltv"`
	Status   string  `json:"status"`
	LastSeen string  `json:"lastSeen"`
}

const (
	statusActive   = "active"
	statusInactive = "inactive"
)

// Build groups valid rows by entity, sums lifetime value, assigns tiers, and
// derives up to topN customer display records ordered by LTV descending
// (ties break on name). Status compares each entity's last activity against
// the dataset's most recent date minus activeWindowDays.
func Build(rows []normalize.Row, th Thresholds, topN, activeWindowDays int) ([]Segment, []Customer) {
	type acc struct {
		ltv  float64
		last *time.Time
	}
	byEntity := map[string]*acc{}
	var datasetMax *time.Time

	for _, r := range rows {
		if r.Amount == nil {
			continue
		}
		a := byEntity[r.Entity]
		if a == nil {
			a = &acc{}
			byEntity[r.Entity] = a
		}
		a.ltv += *r.Amount
		if r.Date != nil {
			if a.last == nil || r.Date.After(*a.last) {
				ts := *r.Date
				a.last = &ts
			}
			if datasetMax == nil || r.Date.After(*datasetMax) {
				ts := *r.Date
				datasetMax = &ts
			}
		}
	}

	counts := map[string]int{}
	customers := make([]Customer, 0, len(byEntity))
	for entity, a := range byEntity {
		tier := th.Tier(a.ltv)
		counts[tier]++

		name, email := identity(entity)
		c := Customer{
			Initials: initials(name),
			Name:     name,
			Email:    email,
			Segment:  tier,
			LTV:      a.ltv,
			Status:   statusActive,
		}
		if a.last != nil {
			c.LastSeen = a.last.Format("2006-01-02")
			if datasetMax != nil {
				cutoff := datasetMax.AddDate(0, 0, -activeWindowDays)
				if a.last.Before(cutoff) {
					c.Status = statusInactive
				}
			}
		}
		customers = append(customers, c)
	}

	sort.Slice(customers, func(i, j int) bool {
		if customers[i].LTV != customers[j].LTV {
			return customers[i].LTV > customers[j].LTV
		}
		return customers[i].Name < customers[j].Name
	})
	if topN > 0 && len(customers) > topN {
		customers = customers[:topN]
	}

	segments := make([]Segment, 0, 4)
	for _, tier := range []string{TierEnterprise, TierMidMarket, TierSMB, TierStartup} {
		if counts[tier] > 0 {
			segments = append(segments, Segment{Name: tier, Value: counts[tier]})
		}
	}
	return segments, customers
}

// identity splits an entity cell into display name and email. Cells that are
// already email addresses keep the address and title-case the local part;
// anything else gets a synthesized address.
func identity(entity string) (name, email string) {
	entity = strings.TrimSpace(entity)
	if at := strings.Index(entity, "@"); at > 0 {
		local := entity[:at]
		parts := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
		for i, p := range parts {
			parts[i] = title(p)
		}
		return strings.Join(parts, " "), strings.ToLower(entity)
	}
	return entity, slug.Make(entity) + "@example.com"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// initials takes the first letter of the first and last name words.
func initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}
	out := firstLetter(words[0])
	if len(words) > 1 {
		out += firstLetter(words[len(words)-1])
	}
	return out
}

func firstLetter(word string) string {
	for _, r := range word {
		return strings.ToUpper(string(r))
	}
	return ""
}
