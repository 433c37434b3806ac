package electricityhttp

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

// Limits bounds the page size accepted by the daily stats endpoints.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits matches the documented API defaults.
var DefaultLimits = Limits{DefaultLimit: 10, MaxLimit: 100}

func (l Limits) normalized() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimits.DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = DefaultLimits.MaxLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}

// ParseDailyStatsQuery validates the daily stats query string. Every
// parameter is optional; any malformed number or date fails the whole
// request with one *electricity.ValidationError naming all bad fields.
func ParseDailyStatsQuery(values url.Values, limits Limits) (electricity.DailyStatsQuery, error) {
	limits = limits.normalized()
	p := paramParser{values: values}

	query := electricity.DailyStatsQuery{
		Page:    p.int("page", 1),
		Limit:   p.int("limit", limits.DefaultLimit),
		OrderBy: electricity.ResolveSortColumn(values.Get("orderBy")),
		Order:   electricity.ResolveSortDirection(values.Get("order")),
		Production: electricity.DecimalRange{
			Min: p.decimal("minProduction"),
			Max: p.decimal("maxProduction"),
		},
		Consumption: electricity.DecimalRange{
			Min: p.decimal("minConsumption"),
			Max: p.decimal("maxConsumption"),
		},
		Price: electricity.DecimalRange{
			Min: p.decimal("minPrice"),
			Max: p.decimal("maxPrice"),
		},
		NegativeStreak: electricity.IntRange{
			Min: p.optionalInt("minNegativeStreak"),
			Max: p.optionalInt("maxNegativeStreak"),
		},
	}

	var badDate bool
	if search := strings.TrimSpace(values.Get("search")); search != "" {
		day, err := electricity.ParseDay(search)
		if err != nil {
			badDate = true
		} else {
			query.Search = &day
		}
	}

	switch {
	case len(p.invalid) > 0:
		fields := p.invalid
		if badDate {
			fields = append(fields, "search")
		}
		return electricity.DailyStatsQuery{}, &electricity.ValidationError{Message: electricity.MsgInvalidNumber, Fields: fields}
	case badDate:
		return electricity.DailyStatsQuery{}, &electricity.ValidationError{Message: electricity.MsgInvalidDate, Fields: []string{"search"}}
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = limits.DefaultLimit
	}
	if query.Limit > limits.MaxLimit {
		query.Limit = limits.MaxLimit
	}
	return query, nil
}

type paramParser struct {
	values  url.Values
	invalid []string
}

func (p *paramParser) raw(name string) (string, bool) {
	value := strings.TrimSpace(p.values.Get(name))
	return value, value != ""
}

func (p *paramParser) int(name string, fallback int) int {
	if v := p.optionalInt(name); v != nil {
		return *v
	}
	return fallback
}

func (p *paramParser) optionalInt(name string) *int {
	value, ok := p.raw(name)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		p.invalid = append(p.invalid, name)
		return nil
	}
	return &parsed
}

func (p *paramParser) decimal(name string) *decimal.Decimal {
	value, ok := p.raw(name)
	if !ok {
		return nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		p.invalid = append(p.invalid, name)
		return nil
	}
	return &parsed
}
