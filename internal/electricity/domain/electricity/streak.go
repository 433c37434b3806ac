package electricity

import (
	"sort"
	"time"
)

// LongestNegativeStreak returns the length of the longest run of readings
// with negative price at consecutive hours. Readings are grouped by
// day; runs never span two days. Missing hours break a run, as do readings
// with a non-negative or null price.
//
// It mirrors the SQL used by the Postgres repository: negative readings are
// ranked by start time within their day and start_time - rank hours is used
// as the run key, so an unbroken run collapses to a single key.
func LongestNegativeStreak(readings []Reading) int {
	type runKey struct {
		day string
		at  time.Time
	}

	negatives := make([]Reading, 0, len(readings))
	for _, r := range readings {
		if r.HourlyPrice.Valid && r.HourlyPrice.Decimal.IsNegative() {
			negatives = append(negatives, r)
		}
	}
	sort.SliceStable(negatives, func(i, j int) bool {
		if !negatives[i].Date.Equal(negatives[j].Date) {
			return negatives[i].Date.Before(negatives[j].Date)
		}
		return negatives[i].StartTime.Before(negatives[j].StartTime)
	})

	counts := make(map[runKey]int)
	ranks := make(map[string]int)
	longest := 0
	for _, r := range negatives {
		day := r.Day()
		ranks[day]++
		key := runKey{day: day, at: r.StartTime.Add(-time.Duration(ranks[day]) * time.Hour)}
		counts[key]++
		if counts[key] > longest {
			longest = counts[key]
		}
	}
	return longest
}

// LongestNegativeStreakByDay computes LongestNegativeStreak per day.
func LongestNegativeStreakByDay(readings []Reading) map[string]int {
	byDay := make(map[string][]Reading)
	for _, r := range readings {
		byDay[r.Day()] = append(byDay[r.Day()], r)
	}
	result := make(map[string]int, len(byDay))
	for day, rows := range byDay {
		result[day] = LongestNegativeStreak(rows)
	}
	return result
}
