package dashboard

import (
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NotAvailable is shown in place of a missing value.
const NotAvailable = "N/A"

// FormatNumber groups thousands and fixes the number of decimals, rounding
// half away from zero on the exact decimal value. A null value renders as
// NotAvailable.
func FormatNumber(value decimal.NullDecimal, decimals int) string {
	if !value.Valid {
		return NotAvailable
	}
	fixed := value.Decimal.StringFixed(int32(max(decimals, 0)))
	sign := ""
	if rest, ok := strings.CutPrefix(fixed, "-"); ok {
		sign, fixed = "-", rest
	}
	whole, frac, hasFrac := strings.Cut(fixed, ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return sign + fixed
	}
	out := sign + humanize.BigComma(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatCompact abbreviates large magnitudes with k, M and B suffixes and
// falls back to FormatNumber with two decimals below a thousand.
func FormatCompact(value decimal.NullDecimal) string {
	if !value.Valid {
		return NotAvailable
	}
	f := value.Decimal.InexactFloat64()
	switch abs := math.Abs(f); {
	case abs >= 1e9:
		return trimZeros(formatFloat(f/1e9, 2)) + "B"
	case abs >= 1e6:
		return trimZeros(formatFloat(f/1e6, 2)) + "M"
	case abs >= 1e3:
		return trimZeros(formatFloat(f/1e3, 2)) + "k"
	}
	return formatFloat(f, 2)
}

// FormatHour returns HH:MM from a YYYY-MM-DDTHH:MM:SS timestamp.
func FormatHour(ts string) string {
	if len(ts) < 16 {
		return ts
	}
	return ts[11:16]
}

// CalculateDomain returns a chart axis range padded by 10% of the spread on
// both ends. Unless allowNegative is set, the lower bound never drops below
// zero.
func CalculateDomain(values []float64, allowNegative bool) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	padding := (hi - lo) * 0.1
	lo -= padding
	if !allowNegative {
		lo = math.Max(0, lo)
	}
	return lo, hi + padding
}

// SeriesValues extracts one column of the hourly series for charting.
// Missing values plot as zero.
func SeriesValues(hours []HourlyReading, pick func(HourlyReading) decimal.NullDecimal) []float64 {
	out := make([]float64, len(hours))
	for i, h := range hours {
		if v := pick(h); v.Valid {
			out[i] = v.Decimal.InexactFloat64()
		}
	}
	return out
}

// formatFloat always passes two directives to humanize so that a trailing
// "." means zero decimals rather than a comma decimal separator.
func formatFloat(f float64, decimals int) string {
	decimals = min(max(decimals, 0), 9)
	return humanize.FormatFloat("#,###."+strings.Repeat("#", decimals), f)
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
