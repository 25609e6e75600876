package http

import (
	"net/http"
	"time"

	"finman/internal/archive"
	"finman/internal/core"
)

// statRow is one rendered line in a list partial.
type statRow struct {
	ID       string
	Date     string
	Name     string
	Category string
	IsIncome bool
	Amount   string
}

func rowFromTransaction(t core.Transaction) statRow {
	date := "N/A"
	if ts, err := t.Date(); err == nil {
		date = ts.Format("02 Jan 2006")
	}
	return statRow{
		ID:       t.ID,
		Date:     date,
		Name:     t.DisplayName(),
		Category: t.DisplayCategory(),
		IsIncome: t.IsIncome,
		Amount:   formatRupees(t.Price.Decimal),
	}
}

// handleStatsCards renders the income/expenses/balance cards.
func (s *Server) handleStatsCards(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	txs, err := s.fetchTransactions(r.Context(), sessionFromRequest(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Stats partial fetch failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	stats := core.ComputeStats(txs, time.Now())
	data := struct {
		Income   string
		Expenses string
		Balance  string
		Negative bool
		Count    int
	}{
		Income:   formatRupees(stats.TotalIncome),
		Expenses: formatRupees(stats.TotalExpenses),
		Balance:  formatRupees(stats.Balance),
		Negative: stats.Balance.IsNegative(),
		Count:    len(txs),
	}

	if err := s.templates.ExecuteTemplate(w, "stats_cards", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Stats template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error rendering statistics</div>`))
	}
}

// handleRecent renders the recent-activity partial (up to five dated
// transactions, newest first).
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	txs, err := s.fetchTransactions(r.Context(), sessionFromRequest(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent partial fetch failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	stats := core.ComputeStats(txs, time.Now())
	rows := make([]statRow, 0, len(stats.Recent))
	for _, t := range stats.Recent {
		rows = append(rows, rowFromTransaction(t))
	}

	if err := s.templates.ExecuteTemplate(w, "recent", struct{ Rows []statRow }{Rows: rows}); err != nil {
		s.logger.ErrorContext(r.Context(), "Recent template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error rendering recent activity</div>`))
	}
}

// handleTransactionsTable renders the full table, newest first. An
// empty list renders the get-started call to action instead.
func (s *Server) handleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	txs, err := s.fetchTransactions(r.Context(), sessionFromRequest(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Transactions partial fetch failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	if len(txs) == 0 {
		if err := s.templates.ExecuteTemplate(w, "get_started", nil); err != nil {
			s.logger.ErrorContext(r.Context(), "Get-started template execution failed", "error", err)
		}
		return
	}

	ordered := core.SortNewestFirst(txs)
	rows := make([]statRow, 0, len(ordered))
	for _, t := range ordered {
		rows = append(rows, rowFromTransaction(t))
	}

	if err := s.templates.ExecuteTemplate(w, "transactions_table", struct{ Rows []statRow }{Rows: rows}); err != nil {
		s.logger.ErrorContext(r.Context(), "Transactions template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error rendering transactions</div>`))
	}
}

// reportRow is one archived report line.
type reportRow struct {
	ID        string
	Period    string
	Requested string
	Status    string
	Count     int
	Balance   string
	Done      bool
	Failed    bool
}

// handleReportsList renders the archived-reports partial.
func (s *Server) handleReportsList(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	reports, err := s.archive.ListRecent(r.Context(), 20)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report archive list failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error loading reports</div>`))
		return
	}

	rows := make([]reportRow, 0, len(reports))
	for _, rep := range reports {
		rows = append(rows, reportRow{
			ID:        rep.ID,
			Period:    rep.StartDate + " to " + rep.EndDate,
			Requested: rep.RequestedAt.Format("02 Jan 2006 15:04"),
			Status:    rep.Status,
			Count:     rep.Count,
			Balance:   formatRupees(rep.Balance),
			Done:      rep.Status == archive.StatusDone,
			Failed:    rep.Status == archive.StatusError,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "reports_list", struct{ Rows []reportRow }{Rows: rows}); err != nil {
		s.logger.ErrorContext(r.Context(), "Reports template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="error">Error rendering reports</div>`))
	}
}
