package electricityhttp

import "net/http"

// Route patterns; the metrics middleware labels requests with these.
const (
	RouteIndex      = "/{$}"
	RouteDailyStats = "/api/daily-stats"
	RouteExport     = "/api/daily-stats/export"
	RouteDayDetail  = "/api/day/{date}"
)

// Register mounts the API routes on mux. Method checks happen in the
// handlers so that a wrong method answers 405 with an empty body.
func Register(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc(RouteIndex, h.Index)
	mux.HandleFunc(RouteDailyStats, h.DailyStats)
	mux.HandleFunc(RouteExport, h.Export)
	mux.HandleFunc(RouteDayDetail, h.DayDetail)
}
