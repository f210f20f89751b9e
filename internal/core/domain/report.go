package domain

import "github.com/shopspring/decimal"

type MonthlySales struct {
	Month         string // YYYY-MM
	SaleCount     int
	TotalQuantity int
	Revenue       decimal.Decimal
}

type Trend string

const (
	TrendUp   Trend = "↑"
	TrendDown Trend = "↓"
	TrendFlat Trend = "—"
)

type WeeklyDemand struct {
	PartID        string
	PartName      string
	Week          string // %Y-%W
	TotalQuantity int
	AvgQuantity   float64 // per sale, two decimals
	MaxDay        int
	MinDay        int
	Trend         Trend
}

type WeeklyDemandFilter struct {
	StartDate string // YYYY-MM-DD, default 28 days before EndDate
	EndDate   string // YYYY-MM-DD inclusive, default today
	PartID    string
}
