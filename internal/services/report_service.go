package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finman/internal/amqp"
	"finman/internal/archive"
	"finman/internal/core"
	"finman/internal/report"
)

const dateLayout = "2006-01-02"

// ReportService orchestrates report generation across the archive,
// the PDF/XLSX renderers and AMQP
type ReportService struct {
	archive    *archive.Repository
	amqpClient *amqp.Client
	gen        *report.Generator
	reportsDir string
}

func NewReportService(
	archiveRepo *archive.Repository,
	amqpClient *amqp.Client,
	gen *report.Generator,
	reportsDir string,
) *ReportService {
	return &ReportService{
		archive:    archiveRepo,
		amqpClient: amqpClient,
		gen:        gen,
		reportsDir: reportsDir,
	}
}

// RequestReport archives a pending report for rng with the filtered
// transaction snapshot and publishes a render request. The snapshot is
// stored alongside the request so the worker can render it without a
// backend session. Returns the new report id.
func (s *ReportService) RequestReport(ctx context.Context, rng report.Range, txs []core.Transaction) (string, error) {
	filtered := report.FilterByRange(txs, rng)
	if len(filtered) == 0 {
		return "", report.ErrNoTransactions
	}

	sum := report.Summarize(filtered)
	rep := archive.Report{
		ID:            uuid.NewString(),
		StartDate:     rng.Start.Format(dateLayout),
		EndDate:       rng.End.Format(dateLayout),
		Count:         sum.Count,
		TotalIncome:   sum.TotalIncome,
		TotalExpenses: sum.TotalExpenses,
		Balance:       sum.Balance,
		Snapshot:      filtered,
		RequestedAt:   time.Now(),
	}

	if err := s.archive.Insert(ctx, rep); err != nil {
		return "", fmt.Errorf("archive report: %w", err)
	}

	// Publish async render message (non-blocking)
	if err := s.publishRenderMessage(ctx, rep.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report request",
			"report_id", rep.ID, "error", err)
		// Don't fail the request - the worker sweep picks up pending rows
	}

	return rep.ID, nil
}

// GenerateNow renders a PDF report for rng synchronously to w and
// returns the attachment filename. The report is also archived with its
// rendered artifacts so the history list can re-serve it; archiving
// failures are logged, not returned, since the user already has the
// bytes, and a row left pending is picked up by the worker sweep.
func (s *ReportService) GenerateNow(ctx context.Context, rng report.Range, txs []core.Transaction, w io.Writer) (string, error) {
	filtered := report.FilterByRange(txs, rng)
	if len(filtered) == 0 {
		return "", report.ErrNoTransactions
	}

	if err := s.gen.Generate(filtered, rng, w); err != nil {
		return "", err
	}

	sum := report.Summarize(filtered)
	rep := archive.Report{
		ID:            uuid.NewString(),
		StartDate:     rng.Start.Format(dateLayout),
		EndDate:       rng.End.Format(dateLayout),
		Count:         sum.Count,
		TotalIncome:   sum.TotalIncome,
		TotalExpenses: sum.TotalExpenses,
		Balance:       sum.Balance,
		Snapshot:      filtered,
		RequestedAt:   time.Now(),
	}
	if err := s.archive.Insert(ctx, rep); err != nil {
		slog.WarnContext(ctx, "Failed to archive streamed report",
			"report_id", rep.ID, "error", err)
		return report.Filename(rng), nil
	}
	if err := s.renderArtifacts(ctx, rep.ID, filtered, rng); err != nil {
		slog.WarnContext(ctx, "Failed to render streamed report artifacts, leaving pending for the worker",
			"report_id", rep.ID, "error", err)
	}

	return report.Filename(rng), nil
}

// ProcessReport renders the archived report id to PDF and XLSX files
// under the reports directory and marks the row done. Rendering errors
// are recorded on the row before being returned. Already-rendered
// reports are skipped.
func (s *ReportService) ProcessReport(ctx context.Context, id string) error {
	rep, err := s.archive.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load report %s: %w", id, err)
	}

	if rep.Status == archive.StatusDone {
		slog.DebugContext(ctx, "Report already rendered, skipping", "report_id", id)
		return nil
	}

	rng, err := report.ParseRange(rep.StartDate, rep.EndDate)
	if err != nil {
		s.recordFailure(ctx, id, err)
		return fmt.Errorf("report %s has invalid range: %w", id, err)
	}

	if err := s.renderArtifacts(ctx, id, rep.Snapshot, rng); err != nil {
		s.recordFailure(ctx, id, err)
		return err
	}
	return nil
}

// renderArtifacts writes the PDF and XLSX files for a report under the
// reports directory and marks the row done with their paths.
func (s *ReportService) renderArtifacts(ctx context.Context, id string, txs []core.Transaction, rng report.Range) error {
	if err := os.MkdirAll(s.reportsDir, 0755); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	pdfPath := filepath.Join(s.reportsDir, id+".pdf")
	if err := s.renderFile(pdfPath, func(f *os.File) error {
		return s.gen.Generate(txs, rng, f)
	}); err != nil {
		return fmt.Errorf("render PDF for report %s: %w", id, err)
	}

	xlsxPath := filepath.Join(s.reportsDir, id+".xlsx")
	if err := s.renderFile(xlsxPath, func(f *os.File) error {
		return s.gen.GenerateXLSX(txs, rng, f)
	}); err != nil {
		os.Remove(pdfPath)
		return fmt.Errorf("render XLSX for report %s: %w", id, err)
	}

	if err := s.archive.MarkDone(ctx, id, pdfPath, xlsxPath); err != nil {
		return fmt.Errorf("mark report %s done: %w", id, err)
	}

	slog.InfoContext(ctx, "Report rendered",
		"report_id", id,
		"pdf_path", pdfPath,
		"xlsx_path", xlsxPath)
	return nil
}

// renderFile writes through a temp file so a crashed render never
// leaves a half-written report on disk.
func (s *ReportService) renderFile(path string, render func(*os.File) error) error {
	tmp, err := os.CreateTemp(s.reportsDir, ".render-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move report into place: %w", err)
	}
	return nil
}

func (s *ReportService) recordFailure(ctx context.Context, id string, cause error) {
	if err := s.archive.MarkError(ctx, id, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to record report error",
			"report_id", id, "error", err)
	}
}

func (s *ReportService) publishRenderMessage(ctx context.Context, id string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, relying on worker sweep")
		return nil
	}

	return s.amqpClient.PublishReportRequest(ctx, id)
}

// Close closes the archive and AMQP connections
func (s *ReportService) Close() error {
	var errs []error

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close report service: %v", errs)
	}

	return nil
}
