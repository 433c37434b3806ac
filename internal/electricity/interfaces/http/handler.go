package electricityhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"electricity-dashboard/internal/electricity/domain/electricity"
)

const (
	hourLayout = "2006-01-02T15:04:05"

	msgNotFound       = "No data found for this date."
	msgInternal       = "Internal server error."
	msgUnsupportedFmt = "Unsupported export format."
)

// StatsReader is the read side the handlers depend on.
type StatsReader interface {
	DailyStats(ctx context.Context, query electricity.DailyStatsQuery) (electricity.DailyStatsPage, error)
	DayDetail(ctx context.Context, day time.Time) (*electricity.DayDetail, error)
	ExportDailyStats(ctx context.Context, query electricity.DailyStatsQuery, maxRows int) ([]electricity.DailyAggregate, error)
}

// Handler serves the electricity API.
type Handler struct {
	service       StatsReader
	limits        Limits
	exportMaxRows int
	logger        logrus.FieldLogger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLimits overrides the page size bounds.
func WithLimits(limits Limits) HandlerOption {
	return func(h *Handler) {
		h.limits = limits.normalized()
	}
}

// WithExportMaxRows caps the rows written by one export.
func WithExportMaxRows(rows int) HandlerOption {
	return func(h *Handler) {
		if rows > 0 {
			h.exportMaxRows = rows
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger logrus.FieldLogger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a handler.
func NewHandler(service StatsReader, opts ...HandlerOption) (*Handler, error) {
	if service == nil {
		return nil, errors.New("electricity handler: nil service")
	}
	h := &Handler{
		service:       service,
		limits:        DefaultLimits,
		exportMaxRows: 10000,
		logger:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// DailyStats handles GET /api/daily-stats.
func (h *Handler) DailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query, err := ParseDailyStatsQuery(r.URL.Query(), h.limits)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	page, err := h.service.DailyStats(r.Context(), query)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	resp := dailyStatsResponse{
		Page:       query.Page,
		Limit:      query.Limit,
		OrderBy:    string(query.OrderBy),
		Order:      string(query.Order),
		TotalCount: page.TotalCount,
		Data:       make([]dailyStatRow, 0, len(page.Rows)),
	}
	for _, row := range page.Rows {
		resp.Data = append(resp.Data, toDailyStatRow(row))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DayDetail handles GET /api/day/{date}.
func (h *Handler) DayDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	day, err := electricity.ParseDay(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, electricity.MsgInvalidDate)
		return
	}

	detail, err := h.service.DayDetail(r.Context(), day)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDetailResponse(detail))
}

// Index handles GET / with a short plain-text description of the API.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(indexText))
}

const indexText = `Electricity API

GET /api/daily-stats
  Per-day production, consumption, average price and longest negative price streak.
  Pagination: ?page=1&limit=10
  Sorting:    ?orderBy=totalProduction&order=asc
              (date, totalProduction, totalConsumption, avgPrice, longestNegativeStreak)
  Filtering:  ?minProduction=200000&maxPrice=10&minNegativeStreak=2
  Search:     ?search=2024-01-10

GET /api/daily-stats/export?format=csv|xlsx|pdf
  Same filters and sorting as /api/daily-stats, without pagination.

GET /api/day/{date}
  Totals, peak consumption hour, cheapest hour and hourly series for one day.
  Example: /api/day/2024-01-10

Errors
  400 {"error": "Invalid date format. Use YYYY-MM-DD."}
  400 {"error": "Invalid number format."}
  404 {"error": "No data found for this date."}
`

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var validation *electricity.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, electricity.ErrDayNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

type dailyStatsResponse struct {
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	OrderBy    string         `json:"orderBy"`
	Order      string         `json:"order"`
	TotalCount int64          `json:"totalCount"`
	Data       []dailyStatRow `json:"data"`
}

type dailyStatRow struct {
	Date                  string              `json:"date"`
	TotalProduction       decimal.Decimal     `json:"totalProduction"`
	TotalConsumption      decimal.Decimal     `json:"totalConsumption"`
	AvgPrice              decimal.NullDecimal `json:"avgPrice"`
	LongestNegativeStreak int                 `json:"longestNegativeStreak"`
}

func toDailyStatRow(row electricity.DailyAggregate) dailyStatRow {
	return dailyStatRow{
		Date:                  row.Date.Format(electricity.DayLayout),
		TotalProduction:       row.TotalProduction,
		TotalConsumption:      row.TotalConsumption,
		AvgPrice:              row.AvgPrice,
		LongestNegativeStreak: row.LongestNegativeStreak,
	}
}

type peakHourResponse struct {
	StartTime                 string          `json:"startTime"`
	ConsumptionProductionDiff decimal.Decimal `json:"consumptionProductionDiff"`
}

type cheapestHourResponse struct {
	StartTime string          `json:"startTime"`
	Price     decimal.Decimal `json:"price"`
}

type hourlyReadingResponse struct {
	StartTime         string              `json:"startTime"`
	ProductionAmount  decimal.NullDecimal `json:"productionAmount"`
	ConsumptionAmount decimal.NullDecimal `json:"consumptionAmount"`
	HourlyPrice       decimal.NullDecimal `json:"hourlyPrice"`
}

type dayDetailResponse struct {
	Date                  string                  `json:"date"`
	TotalProduction       decimal.Decimal         `json:"totalProduction"`
	TotalConsumption      decimal.Decimal         `json:"totalConsumption"`
	AvgPrice              decimal.NullDecimal     `json:"avgPrice"`
	PeakConsumptionHour   *peakHourResponse       `json:"peakConsumptionHour"`
	CheapestHour          *cheapestHourResponse   `json:"cheapestHour"`
	LongestNegativeStreak int                     `json:"longestNegativeStreak"`
	HourlyData            []hourlyReadingResponse `json:"hourlyData"`
}

func toDayDetailResponse(detail *electricity.DayDetail) dayDetailResponse {
	resp := dayDetailResponse{
		Date:                  detail.Date.Format(electricity.DayLayout),
		TotalProduction:       detail.TotalProduction,
		TotalConsumption:      detail.TotalConsumption,
		AvgPrice:              detail.AvgPrice,
		LongestNegativeStreak: detail.LongestNegativeStreak,
		HourlyData:            make([]hourlyReadingResponse, 0, len(detail.HourlyData)),
	}
	if peak := detail.PeakConsumptionHour; peak != nil {
		resp.PeakConsumptionHour = &peakHourResponse{
			StartTime:                 peak.StartTime.Format(hourLayout),
			ConsumptionProductionDiff: peak.ConsumptionProductionDiff,
		}
	}
	if cheapest := detail.CheapestHour; cheapest != nil {
		resp.CheapestHour = &cheapestHourResponse{
			StartTime: cheapest.StartTime.Format(hourLayout),
			Price:     cheapest.Price,
		}
	}
	for _, reading := range detail.HourlyData {
		resp.HourlyData = append(resp.HourlyData, hourlyReadingResponse{
			StartTime:         reading.StartTime.Format(hourLayout),
			ProductionAmount:  reading.ProductionAmount,
			ConsumptionAmount: reading.ConsumptionAmount,
			HourlyPrice:       reading.HourlyPrice,
		})
	}
	return resp
}
