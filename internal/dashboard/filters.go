package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Filters holds the raw text of the filter inputs while the user edits them.
type Filters struct {
	Search            string
	MinProduction     string
	MaxProduction     string
	MinConsumption    string
	MaxConsumption    string
	MinPrice          string
	MaxPrice          string
	MinNegativeStreak string
	MaxNegativeStreak string
}

// AppliedFilters are the cleaned filters a fetch is issued with. Nil fields
// are left out of the request.
type AppliedFilters struct {
	Search            string
	MinProduction     *decimal.Decimal
	MaxProduction     *decimal.Decimal
	MinConsumption    *decimal.Decimal
	MaxConsumption    *decimal.Decimal
	MinPrice          *decimal.Decimal
	MaxPrice          *decimal.Decimal
	MinNegativeStreak *int
	MaxNegativeStreak *int
}

// CleanToNumber strips thousands separators and parses the rest. Blank or
// unparseable input yields nil, so a typo drops the filter instead of
// failing the request.
func CleanToNumber(value string) *decimal.Decimal {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// CleanToInt is CleanToNumber for whole numbers; fractional input yields nil.
func CleanToInt(value string) *int {
	parsed := CleanToNumber(value)
	if parsed == nil || !parsed.IsInteger() {
		return nil
	}
	n := int(parsed.IntPart())
	return &n
}

// Apply cleans the pending inputs.
func (f Filters) Apply() AppliedFilters {
	return AppliedFilters{
		Search:            strings.TrimSpace(f.Search),
		MinProduction:     CleanToNumber(f.MinProduction),
		MaxProduction:     CleanToNumber(f.MaxProduction),
		MinConsumption:    CleanToNumber(f.MinConsumption),
		MaxConsumption:    CleanToNumber(f.MaxConsumption),
		MinPrice:          CleanToNumber(f.MinPrice),
		MaxPrice:          CleanToNumber(f.MaxPrice),
		MinNegativeStreak: CleanToInt(f.MinNegativeStreak),
		MaxNegativeStreak: CleanToInt(f.MaxNegativeStreak),
	}
}

// QueryValues builds the daily stats query string, omitting unset fields.
func QueryValues(page, limit int, orderBy, order string, applied AppliedFilters) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))
	if orderBy != "" {
		values.Set("orderBy", orderBy)
	}
	if order != "" {
		values.Set("order", order)
	}
	if applied.Search != "" {
		values.Set("search", applied.Search)
	}
	setDecimal(values, "minProduction", applied.MinProduction)
	setDecimal(values, "maxProduction", applied.MaxProduction)
	setDecimal(values, "minConsumption", applied.MinConsumption)
	setDecimal(values, "maxConsumption", applied.MaxConsumption)
	setDecimal(values, "minPrice", applied.MinPrice)
	setDecimal(values, "maxPrice", applied.MaxPrice)
	setInt(values, "minNegativeStreak", applied.MinNegativeStreak)
	setInt(values, "maxNegativeStreak", applied.MaxNegativeStreak)
	return values
}

func setDecimal(values url.Values, key string, value *decimal.Decimal) {
	if value != nil {
		values.Set(key, value.String())
	}
}

func setInt(values url.Values, key string, value *int) {
	if value != nil {
		values.Set(key, strconv.Itoa(*value))
	}
}
