package http

import (
	"bytes"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finman/internal/archive"
	"finman/internal/report"
)

// handleDownloadReport generates a PDF synchronously and streams it as
// an attachment.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := report.ParseRange(r.Form.Get("start_date"), r.Form.Get("end_date"))
	if err != nil {
		status, msg := rangeError(err)
		ErrorResponse(status, msg).Write(w)
		return
	}

	sess := sessionFromRequest(r)
	txs, err := s.fetchTransactions(r.Context(), sess)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report fetch failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	// Render into memory first so a mid-render failure can still
	// produce an error fragment instead of a truncated download.
	var buf bytes.Buffer
	filename, err := s.reports.GenerateNow(r.Context(), rng, txs, &buf)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report generation failed",
			"error", err,
			"range_start", rng.Start.Format("2006-01-02"),
			"range_end", rng.End.Format("2006-01-02"))
		status, msg := rangeError(err)
		ErrorResponse(status, msg).Write(w)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleRequestReport queues an async report render and answers with
// the report id.
func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := report.ParseRange(r.Form.Get("start_date"), r.Form.Get("end_date"))
	if err != nil {
		status, msg := rangeError(err)
		ErrorResponse(status, msg).Write(w)
		return
	}

	sess := sessionFromRequest(r)
	txs, err := s.fetchTransactions(r.Context(), sess)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report fetch failed", "error", err)
		GatewayErrorResponse(err).Write(w)
		return
	}

	id, err := s.reports.RequestReport(r.Context(), rng, txs)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Report request failed", "error", err)
		status, msg := rangeError(err)
		ErrorResponse(status, msg).Write(w)
		return
	}

	NewHTMXResponse().
		Status(http.StatusAccepted).
		TriggerReportRequested(id).
		TriggerSuccessNotification("Report queued. It will appear in the list shortly.").
		Write(w)
}

// handleReportArtifact re-serves a finished report file from the
// archive: GET /reports/{id}/download, optionally ?format=xlsx.
func (s *Server) handleReportArtifact(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/reports/")
	id, ok := strings.CutSuffix(rest, "/download")
	if !ok || id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	rep, err := s.archive.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		s.logger.ErrorContext(r.Context(), "Report lookup failed", "error", err, "report_id", id)
		http.Error(w, "Server error. Please try again later.", http.StatusInternalServerError)
		return
	}

	if rep.Status != archive.StatusDone {
		http.Error(w, "Report is not ready yet.", http.StatusConflict)
		return
	}

	rng, err := report.ParseRange(rep.StartDate, rep.EndDate)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Archived report has invalid range",
			"error", err, "report_id", id)
		http.Error(w, "Server error. Please try again later.", http.StatusInternalServerError)
		return
	}

	path := rep.PDFPath
	filename := report.Filename(rng)
	contentType := "application/pdf"
	if r.URL.Query().Get("format") == "xlsx" {
		path = rep.XLSXPath
		filename = report.XLSXFilename(rng)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if path == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}
