package http

import (
	"net/http"
	"time"

	"finman/internal/charts"
	"finman/internal/core"
)

// chartError is the JSON error envelope for chart feeds.
type chartError struct {
	Error string `json:"error"`
}

// handleCategoryChart serves the expenses-by-category pie payload.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	txs, err := s.fetchTransactions(r.Context(), sessionFromRequest(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Category chart fetch failed", "error", err)
		status, msg := gatewayError(err)
		writeJSON(w, status, chartError{Error: msg})
		return
	}

	stats := core.ComputeStats(txs, time.Now())
	writeJSON(w, http.StatusOK, charts.CategoryPie(stats))
}

// handleDailyChart serves the daily series, as grouped bars by default
// or as the dual-line trend with ?kind=line.
func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != "bar" && kind != "line" {
		writeJSON(w, http.StatusBadRequest, chartError{Error: "unknown chart kind"})
		return
	}

	txs, err := s.fetchTransactions(r.Context(), sessionFromRequest(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Daily chart fetch failed", "error", err)
		status, msg := gatewayError(err)
		writeJSON(w, status, chartError{Error: msg})
		return
	}

	stats := core.ComputeStats(txs, time.Now())
	if kind == "line" {
		writeJSON(w, http.StatusOK, charts.DailyTrend(stats))
		return
	}
	writeJSON(w, http.StatusOK, charts.DailyBars(stats))
}
