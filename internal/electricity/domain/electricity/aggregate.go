package electricity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AggregateDaily groups readings by day and computes the daily rollup:
// null quantities count as zero in the sums and are excluded from the
// average price. Rows come back in ascending day order.
func AggregateDaily(readings []Reading) []DailyAggregate {
	type accumulator struct {
		date        time.Time
		production  decimal.Decimal
		consumption decimal.Decimal
		priceSum    decimal.Decimal
		priceCount  int
	}

	byDay := make(map[string]*accumulator)
	order := make([]string, 0)
	for _, r := range readings {
		key := r.Day()
		acc, ok := byDay[key]
		if !ok {
			acc = &accumulator{date: r.Date}
			byDay[key] = acc
			order = append(order, key)
		}
		if r.ProductionAmount.Valid {
			acc.production = acc.production.Add(r.ProductionAmount.Decimal)
		}
		if r.ConsumptionAmount.Valid {
			acc.consumption = acc.consumption.Add(r.ConsumptionAmount.Decimal)
		}
		if r.HourlyPrice.Valid {
			acc.priceSum = acc.priceSum.Add(r.HourlyPrice.Decimal)
			acc.priceCount++
		}
	}

	streaks := LongestNegativeStreakByDay(readings)
	sort.Strings(order)
	result := make([]DailyAggregate, 0, len(order))
	for _, key := range order {
		acc := byDay[key]
		result = append(result, DailyAggregate{
			Date:                  acc.date,
			TotalProduction:       acc.production,
			TotalConsumption:      acc.consumption,
			AvgPrice:              averageOf(acc.priceSum, acc.priceCount),
			LongestNegativeStreak: streaks[key],
		})
	}
	return result
}

// SortAggregates orders rows by column and direction. Null averages sort
// last in both directions and equal keys fall back to ascending date, which
// keeps repeated queries stable.
func SortAggregates(rows []DailyAggregate, column SortColumn, direction SortDirection) {
	desc := direction == SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var cmp int
		switch column {
		case SortByTotalProduction:
			cmp = a.TotalProduction.Cmp(b.TotalProduction)
		case SortByTotalConsumption:
			cmp = a.TotalConsumption.Cmp(b.TotalConsumption)
		case SortByAvgPrice:
			if a.AvgPrice.Valid != b.AvgPrice.Valid {
				return a.AvgPrice.Valid
			}
			if a.AvgPrice.Valid {
				cmp = a.AvgPrice.Decimal.Cmp(b.AvgPrice.Decimal)
			}
		case SortByLongestNegativeStreak:
			cmp = compareInt(a.LongestNegativeStreak, b.LongestNegativeStreak)
		default:
			cmp = a.Date.Compare(b.Date)
		}
		if cmp != 0 {
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return a.Date.Before(b.Date)
	})
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
