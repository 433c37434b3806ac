package electricity

import (
	"context"
	"time"
)

// ReadingRepository answers the read queries over the readings table.
type ReadingRepository interface {
	DailyStats(ctx context.Context, query DailyStatsQuery) (DailyStatsPage, error)
	// DayDetail returns ErrDayNotFound when the day has no readings.
	DayDetail(ctx context.Context, day time.Time) (*DayDetail, error)
}

// ReadingWriter stores readings. Rows that already exist for the same
// (date, start time) are left untouched.
type ReadingWriter interface {
	SaveReadings(ctx context.Context, readings []Reading) (int, error)
}
