package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Summary is the persisted trace of one completed analysis. Only derived
// headline figures are stored; uploaded datasets never touch disk.
type Summary struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Filename         string       `gorm:"not null" json:"filename"`
	Domain           string       `gorm:"not null" json:"domain"`
	DataQualityScore float64      `gorm:"not null" json:"data_quality_score"`
	TotalSales       float64      `gorm:"not null" json:"total_sales"`
	TotalOrders      int          `gorm:"not null" json:"total_orders"`
	AvgOrderValue    float64      `gorm:"not null" json:"avg_order_value"`
	TotalCustomers   int          `gorm:"not null" json:"total_customers"`
	TopCategory      string       `json:"top_category,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;index" json:"created_at"`
}

func (Summary) TableName() string { return "report_summaries" }

type ListReportsRequest struct {
	Limit int
}

type GetReportRequest struct {
	ID string
}
