package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/quickinstall/installstats/internal/model"
	"github.com/quickinstall/installstats/internal/service"
)

// StatsReader reads aggregate counters.
type StatsReader interface {
	PackageCounts(ctx context.Context, sel service.Selector) (model.Counts, error)
	MonthlyCounts(ctx context.Context, sel service.Selector) (model.Counts, error)
	AgentCounts(ctx context.Context, sel service.Selector) (model.Counts, error)
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatsHandler serves aggregate counts as flat JSON objects.
type StatsHandler struct {
	svc    StatsReader
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc StatsReader, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		svc:    svc,
		logger: logger.With("component", "handler.stats"),
	}
}

// Daily handles GET /api/stats?year=&month=&day=.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "daily", h.svc.PackageCounts)
}

// Monthly handles GET /api/stats/monthly?year=&month=.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "monthly", h.svc.MonthlyCounts)
}

// Agents handles GET /api/agents?year=&month=&day=.
func (h *StatsHandler) Agents(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "agents", h.svc.AgentCounts)
}

func (h *StatsHandler) serve(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	read func(context.Context, service.Selector) (model.Counts, error),
) {
	sel := parseSelector(r)

	counts, err := read(r.Context(), sel)
	if err != nil {
		h.logger.Error("failed to read stats",
			"kind", kind,
			"year", sel.Year,
			"month", sel.Month,
			"day", sel.Day,
			"error", err,
		)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: "Failed to read statistics",
			Code:  "STORE_UNAVAILABLE",
		})
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// parseSelector reads year, month and day query params.
// Missing or unparseable values are left zero so they default to today.
func parseSelector(r *http.Request) service.Selector {
	q := r.URL.Query()
	return service.Selector{
		Year:  queryInt(q.Get("year")),
		Month: queryInt(q.Get("month")),
		Day:   queryInt(q.Get("day")),
	}
}

func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
