package schema

import "errors"

// ColumnRole describes what a CSV column means to the analytics pipeline.
// Roles are assigned once per column for the whole dataset.
type ColumnRole string

const (
	RoleDate       ColumnRole = "date"
	RoleAmount     ColumnRole = "amount"
	RoleCategory   ColumnRole = "category"
	RoleEntityID   ColumnRole = "entity_id"
	RoleEntityName ColumnRole = "entity_name"
	RoleUnknown    ColumnRole = "unknown"
)

// Domain is the inferred business vertical of an uploaded dataset. It is a
// closed enum: the dashboard keys KPI labels off this value, so everything
// the classifier cannot place collapses to DomainBusiness on the wire.
type Domain string

const (
	DomainFinance  Domain = "finance"
	DomainHealth   Domain = "health"
	DomainWeather  Domain = "weather"
	DomainBusiness Domain = "business"
	DomainUnknown  Domain = "unknown"
)

// Wire returns the value sent to the dashboard.
func (d Domain) Wire() string {
	switch d {
	case DomainFinance, DomainHealth, DomainWeather, DomainBusiness:
		return string(d)
	default:
		return string(DomainBusiness)
	}
}

// Assignment is the dataset-global column role mapping produced by Infer.
// Index fields are -1 when no column qualified for the role.
type Assignment struct {
	Headers []string
	Roles   map[string]ColumnRole
	Domain  Domain

	DateIndex     int
	AmountIndex   int
	CategoryIndex int
	EntityIndex   int
}

// HasDate reports whether a date column was identified.
func (a Assignment) HasDate() bool { return a.DateIndex >= 0 }

// HasCategory reports whether a category column was identified.
func (a Assignment) HasCategory() bool { return a.CategoryIndex >= 0 }

// HasEntity reports whether an entity identity column was identified.
func (a Assignment) HasEntity() bool { return a.EntityIndex >= 0 }

// ErrNoAmountColumn is returned when no column qualifies as an amount.
// The KPI model requires an amount, so the dataset is rejected instead of
// silently defaulting.
var ErrNoAmountColumn = errors.New("no_amount_column")
