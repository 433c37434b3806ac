package electricity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the calendar day format used on the wire and in storage.
const DayLayout = "2006-01-02"

// Reading is one hourly record of production, consumption and price.
type Reading struct {
	Date              time.Time
	StartTime         time.Time
	ProductionAmount  decimal.NullDecimal
	ConsumptionAmount decimal.NullDecimal
	HourlyPrice       decimal.NullDecimal
}

// Day returns the reading's calendar day as YYYY-MM-DD.
func (r Reading) Day() string {
	return r.Date.Format(DayLayout)
}

// DailyAggregate is the per-date rollup returned by daily stats queries.
type DailyAggregate struct {
	Date                  time.Time
	TotalProduction       decimal.Decimal
	TotalConsumption      decimal.Decimal
	AvgPrice              decimal.NullDecimal
	LongestNegativeStreak int
}

// DailyStatsPage is one page of daily aggregates plus the count of all
// aggregate rows matching the filters.
type DailyStatsPage struct {
	Rows       []DailyAggregate
	TotalCount int64
}

// PeakConsumptionHour is the hour with the largest consumption minus production.
type PeakConsumptionHour struct {
	StartTime                 time.Time
	ConsumptionProductionDiff decimal.Decimal
}

// CheapestHour is the hour with the lowest price.
type CheapestHour struct {
	StartTime time.Time
	Price     decimal.Decimal
}

// DayDetail is the single-date view: totals, derived hours and the hourly series.
type DayDetail struct {
	Date                  time.Time
	TotalProduction       decimal.Decimal
	TotalConsumption      decimal.Decimal
	AvgPrice              decimal.NullDecimal
	PeakConsumptionHour   *PeakConsumptionHour
	CheapestHour          *CheapestHour
	LongestNegativeStreak int
	HourlyData            []Reading
}
