package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finman/internal/amqp"
	"finman/internal/archive"
)

// ReportProcessor renders a single archived report by id.
type ReportProcessor interface {
	ProcessReport(ctx context.Context, id string) error
}

// PendingLister returns archived reports still waiting for a render.
type PendingLister interface {
	Pending(ctx context.Context, limit int) ([]archive.Report, error)
}

// ReportWorker renders archived reports. Requests normally arrive over
// AMQP; a periodic sweep of the archive's pending rows recovers from
// lost messages or worker downtime.
type ReportWorker struct {
	processor     ReportProcessor
	pending       PendingLister
	amqpClient    *amqp.Client
	batchSize     int
	sweepInterval time.Duration
}

func NewReportWorker(
	processor ReportProcessor,
	pending PendingLister,
	amqpClient *amqp.Client,
	batchSize int,
	sweepInterval time.Duration,
) *ReportWorker {
	return &ReportWorker{
		processor:     processor,
		pending:       pending,
		amqpClient:    amqpClient,
		batchSize:     batchSize,
		sweepInterval: sweepInterval,
	}
}

// Run blocks until ctx is cancelled, consuming render requests and
// sweeping the archive. It returns the first non-cancellation error
// from either loop.
func (w *ReportWorker) Run(ctx context.Context) error {
	// Catch up on anything queued while the worker was down.
	if err := w.StartupSweep(ctx); err != nil {
		slog.WarnContext(ctx, "Startup sweep failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if w.amqpClient != nil {
		g.Go(func() error {
			return w.consumeLoop(ctx)
		})
	} else {
		slog.WarnContext(ctx, "AMQP client not available, relying on sweep only")
	}

	g.Go(func() error {
		return w.sweepLoop(ctx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (w *ReportWorker) consumeLoop(ctx context.Context) error {
	return w.amqpClient.ConsumeReportRequests(ctx, func(msg *amqp.ReportRequestMessage) error {
		return w.processor.ProcessReport(ctx, msg.ReportID)
	})
}

func (w *ReportWorker) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingReports(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending report sweep failed", "error", err)
			}
		}
	}
}

// ProcessPendingReports renders up to one batch of pending reports,
// oldest first. A failing report is logged and skipped so one bad
// snapshot cannot wedge the queue.
func (w *ReportWorker) ProcessPendingReports(ctx context.Context) error {
	reports, err := w.pending.Pending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending reports: %w", err)
	}

	if len(reports) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending reports", "count", len(reports))

	for _, rep := range reports {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.processor.ProcessReport(ctx, rep.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to render pending report",
				"report_id", rep.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSweep drains the pending queue with a larger batch so a
// restarted worker recovers missed requests quickly.
func (w *ReportWorker) StartupSweep(ctx context.Context) error {
	reports, err := w.pending.Pending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending reports for startup sweep: %w", err)
	}

	if len(reports) == 0 {
		slog.InfoContext(ctx, "No pending reports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending reports on startup, processing...",
		"count", len(reports))

	rendered := 0
	failed := 0
	for _, rep := range reports {
		if err := w.processor.ProcessReport(ctx, rep.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to render report during startup",
				"report_id", rep.ID, "error", err)
			failed++
			continue
		}
		rendered++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(reports),
		"rendered", rendered,
		"errors", failed)

	return nil
}
