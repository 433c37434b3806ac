package electricity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BuildDayDetail derives the single-day view from that day's readings.
// Readings belonging to other days are ignored. It returns ErrDayNotFound
// when no reading exists for the day.
//
// Ties on the peak consumption hour and the cheapest hour resolve to the
// earliest start time. Hours with a null operand are not candidates.
func BuildDayDetail(day time.Time, readings []Reading) (*DayDetail, error) {
	key := day.Format(DayLayout)
	hourly := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.Day() == key {
			hourly = append(hourly, r)
		}
	}
	if len(hourly) == 0 {
		return nil, ErrDayNotFound
	}
	sort.SliceStable(hourly, func(i, j int) bool {
		return hourly[i].StartTime.Before(hourly[j].StartTime)
	})

	detail := &DayDetail{
		Date:                  day,
		TotalProduction:       decimal.Zero,
		TotalConsumption:      decimal.Zero,
		LongestNegativeStreak: LongestNegativeStreak(hourly),
		HourlyData:            hourly,
	}

	var priceSum decimal.Decimal
	priceCount := 0
	for _, r := range hourly {
		if r.ProductionAmount.Valid {
			detail.TotalProduction = detail.TotalProduction.Add(r.ProductionAmount.Decimal)
		}
		if r.ConsumptionAmount.Valid {
			detail.TotalConsumption = detail.TotalConsumption.Add(r.ConsumptionAmount.Decimal)
		}
		if r.HourlyPrice.Valid {
			priceSum = priceSum.Add(r.HourlyPrice.Decimal)
			priceCount++

			if detail.CheapestHour == nil || r.HourlyPrice.Decimal.LessThan(detail.CheapestHour.Price) {
				detail.CheapestHour = &CheapestHour{StartTime: r.StartTime, Price: r.HourlyPrice.Decimal}
			}
		}
		if r.ConsumptionAmount.Valid && r.ProductionAmount.Valid {
			diff := r.ConsumptionAmount.Decimal.Sub(r.ProductionAmount.Decimal)
			if detail.PeakConsumptionHour == nil || diff.GreaterThan(detail.PeakConsumptionHour.ConsumptionProductionDiff) {
				detail.PeakConsumptionHour = &PeakConsumptionHour{StartTime: r.StartTime, ConsumptionProductionDiff: diff}
			}
		}
	}
	detail.AvgPrice = averageOf(priceSum, priceCount)
	return detail, nil
}

func averageOf(sum decimal.Decimal, count int) decimal.NullDecimal {
	if count == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(count))))
}
