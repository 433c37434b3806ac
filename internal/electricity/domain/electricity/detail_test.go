package electricity

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullReading(day time.Time, hour int, production, consumption, price string) Reading {
	return Reading{
		Date:              day,
		StartTime:         day.Add(time.Duration(hour) * time.Hour),
		ProductionAmount:  decimal.NewNullDecimal(decimal.RequireFromString(production)),
		ConsumptionAmount: decimal.NewNullDecimal(decimal.RequireFromString(consumption)),
		HourlyPrice:       decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

func TestBuildDayDetail_SingleReading(t *testing.T) {
	detail, err := BuildDayDetail(testDay, []Reading{fullReading(testDay, 5, "4", "10", "5")})
	require.NoError(t, err)

	require.NotNil(t, detail.PeakConsumptionHour)
	require.NotNil(t, detail.CheapestHour)
	assert.True(t, detail.PeakConsumptionHour.ConsumptionProductionDiff.Equal(decimal.NewFromInt(6)))
	assert.True(t, detail.CheapestHour.Price.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, testDay.Add(5*time.Hour), detail.PeakConsumptionHour.StartTime)
	assert.Equal(t, testDay.Add(5*time.Hour), detail.CheapestHour.StartTime)
	assert.True(t, detail.TotalProduction.Equal(decimal.NewFromInt(4)))
	assert.True(t, detail.TotalConsumption.Equal(decimal.NewFromInt(10)))
	assert.True(t, detail.AvgPrice.Valid)
	assert.True(t, detail.AvgPrice.Decimal.Equal(decimal.NewFromInt(5)))
	assert.Len(t, detail.HourlyData, 1)
}

func TestBuildDayDetail_NoRowsIsNotFound(t *testing.T) {
	other := testDay.AddDate(0, 0, 1)
	_, err := BuildDayDetail(testDay, []Reading{fullReading(other, 1, "1", "1", "1")})
	assert.True(t, errors.Is(err, ErrDayNotFound))

	_, err = BuildDayDetail(testDay, nil)
	assert.True(t, errors.Is(err, ErrDayNotFound))
}

func TestBuildDayDetail_ZeroReadingsAreNotAbsence(t *testing.T) {
	detail, err := BuildDayDetail(testDay, []Reading{fullReading(testDay, 0, "0", "0", "0")})
	require.NoError(t, err)
	assert.True(t, detail.TotalProduction.IsZero())
	assert.True(t, detail.TotalConsumption.IsZero())
}

func TestBuildDayDetail_TiesResolveToEarliestHour(t *testing.T) {
	readings := []Reading{
		fullReading(testDay, 9, "1", "5", "2"),
		fullReading(testDay, 3, "1", "5", "2"),
		fullReading(testDay, 6, "0", "1", "7"),
	}
	detail, err := BuildDayDetail(testDay, readings)
	require.NoError(t, err)

	assert.Equal(t, testDay.Add(3*time.Hour), detail.PeakConsumptionHour.StartTime)
	assert.Equal(t, testDay.Add(3*time.Hour), detail.CheapestHour.StartTime)

	require.Len(t, detail.HourlyData, 3)
	assert.Equal(t, testDay.Add(3*time.Hour), detail.HourlyData[0].StartTime)
	assert.Equal(t, testDay.Add(9*time.Hour), detail.HourlyData[2].StartTime)
}

func TestBuildDayDetail_NullOperandsAreSkipped(t *testing.T) {
	withNulls := Reading{
		Date:             testDay,
		StartTime:        testDay.Add(time.Hour),
		ProductionAmount: decimal.NewNullDecimal(decimal.NewFromInt(2)),
	}
	detail, err := BuildDayDetail(testDay, []Reading{withNulls})
	require.NoError(t, err)

	assert.Nil(t, detail.PeakConsumptionHour)
	assert.Nil(t, detail.CheapestHour)
	assert.False(t, detail.AvgPrice.Valid)
	assert.True(t, detail.TotalProduction.Equal(decimal.NewFromInt(2)))
	assert.True(t, detail.TotalConsumption.IsZero())
}

func TestBuildDayDetail_NegativePeakAndStreak(t *testing.T) {
	readings := []Reading{
		fullReading(testDay, 0, "10", "2", "-1"),
		fullReading(testDay, 1, "10", "4", "-3"),
		fullReading(testDay, 2, "10", "1", "2"),
	}
	detail, err := BuildDayDetail(testDay, readings)
	require.NoError(t, err)

	assert.True(t, detail.PeakConsumptionHour.ConsumptionProductionDiff.Equal(decimal.NewFromInt(-6)))
	assert.Equal(t, testDay.Add(time.Hour), detail.PeakConsumptionHour.StartTime)
	assert.True(t, detail.CheapestHour.Price.Equal(decimal.NewFromInt(-3)))
	assert.Equal(t, 2, detail.LongestNegativeStreak)
}
