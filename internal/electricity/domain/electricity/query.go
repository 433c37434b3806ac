package electricity

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortColumn is one of the daily aggregate output columns.
type SortColumn string

const (
	SortByDate                  SortColumn = "date"
	SortByTotalProduction       SortColumn = "totalProduction"
	SortByTotalConsumption      SortColumn = "totalConsumption"
	SortByAvgPrice              SortColumn = "avgPrice"
	SortByLongestNegativeStreak SortColumn = "longestNegativeStreak"
)

// SortColumns lists the accepted sort columns.
var SortColumns = []SortColumn{
	SortByDate,
	SortByTotalProduction,
	SortByTotalConsumption,
	SortByAvgPrice,
	SortByLongestNegativeStreak,
}

// ResolveSortColumn maps a user supplied column name onto the allow-list.
// Matching is case-insensitive, so lowercase names such as
// "totalproduction" are accepted. Unknown or empty names fall back to date.
func ResolveSortColumn(name string) SortColumn {
	name = strings.TrimSpace(name)
	for _, column := range SortColumns {
		if strings.EqualFold(name, string(column)) {
			return column
		}
	}
	return SortByDate
}

// SortDirection orders query results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ResolveSortDirection returns asc only for "asc" (any case); everything else is desc.
func ResolveSortDirection(value string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(value), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// DecimalRange is an optional inclusive range. Nil bounds are open.
type DecimalRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Contains reports whether v satisfies both bounds.
func (r DecimalRange) Contains(v decimal.Decimal) bool {
	if r.Min != nil && v.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && v.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// IsSet reports whether any bound is present.
func (r DecimalRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// IntRange is an optional inclusive integer range.
type IntRange struct {
	Min *int
	Max *int
}

// Contains reports whether v satisfies both bounds.
func (r IntRange) Contains(v int) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// IsSet reports whether any bound is present.
func (r IntRange) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// DailyStatsQuery describes one page request over the daily aggregates.
type DailyStatsQuery struct {
	Page  int
	Limit int
	// Search restricts to one exact day before aggregation.
	Search *time.Time

	Production     DecimalRange
	Consumption    DecimalRange
	Price          DecimalRange
	NegativeStreak IntRange

	OrderBy SortColumn
	Order   SortDirection
}

// Offset returns the row offset of the requested page. Offsets that do not
// fit in an int saturate at math.MaxInt, which is past any result set.
func (q DailyStatsQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Matches applies the post-aggregation filters to one aggregate. A null
// average price never satisfies a price bound.
func (q DailyStatsQuery) Matches(agg DailyAggregate) bool {
	if !q.Production.Contains(agg.TotalProduction) {
		return false
	}
	if !q.Consumption.Contains(agg.TotalConsumption) {
		return false
	}
	if q.Price.IsSet() {
		if !agg.AvgPrice.Valid || !q.Price.Contains(agg.AvgPrice.Decimal) {
			return false
		}
	}
	return q.NegativeStreak.Contains(agg.LongestNegativeStreak)
}

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDay parses a strict YYYY-MM-DD calendar day in UTC.
func ParseDay(value string) (time.Time, error) {
	if !dayPattern.MatchString(value) {
		return time.Time{}, ErrInvalidDay
	}
	parsed, err := time.Parse(DayLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return parsed.UTC(), nil
}
