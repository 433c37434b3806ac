package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanToNumber(t *testing.T) {
	cases := map[string]string{
		"1,234.5": "1234.5",
		" 42 ":    "42",
		"-0.25":   "-0.25",
		"1,000":   "1000",
	}
	for in, want := range cases {
		got := CleanToNumber(in)
		require.NotNil(t, got, in)
		assert.Equal(t, want, got.String(), in)
	}

	for _, in := range []string{"", "   ", "abc", "12abc", ","} {
		assert.Nil(t, CleanToNumber(in), in)
	}
}

func TestCleanToInt(t *testing.T) {
	got := CleanToInt("3")
	require.NotNil(t, got)
	assert.Equal(t, 3, *got)

	got = CleanToInt("1,000")
	require.NotNil(t, got)
	assert.Equal(t, 1000, *got)

	assert.Nil(t, CleanToInt("2.5"))
	assert.Nil(t, CleanToInt("two"))
}

func TestQueryValues_OmitsUnsetFields(t *testing.T) {
	applied := Filters{
		Search:            " 2024-01-10 ",
		MinProduction:     "1,500",
		MaxPrice:          "oops",
		MinNegativeStreak: "2",
	}.Apply()

	values := QueryValues(3, 25, "avgPrice", "asc", applied)
	assert.Equal(t, "3", values.Get("page"))
	assert.Equal(t, "25", values.Get("limit"))
	assert.Equal(t, "avgPrice", values.Get("orderBy"))
	assert.Equal(t, "asc", values.Get("order"))
	assert.Equal(t, "2024-01-10", values.Get("search"))
	assert.Equal(t, "1500", values.Get("minProduction"))
	assert.Equal(t, "2", values.Get("minNegativeStreak"))

	for _, key := range []string{"maxPrice", "minPrice", "maxProduction", "minConsumption", "maxConsumption", "maxNegativeStreak"} {
		assert.False(t, values.Has(key), key)
	}
}
