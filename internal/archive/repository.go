// Package archive persists generated reports in SQLite: request
// metadata, totals, the transaction snapshot the report was built from,
// and the paths of the rendered files.
//
// The snapshot makes async generation self-contained: the worker can
// render a report without a user session.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finman/internal/core"

	_ "modernc.org/sqlite"
)

// Report lifecycle states.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusError   = "error"
)

// Report is one archived report request.
type Report struct {
	ID            string
	StartDate     string // YYYY-MM-DD
	EndDate       string
	Status        string
	Count         int
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Snapshot      []core.Transaction
	PDFPath       string
	XLSXPath      string
	LastError     string
	RequestedAt   time.Time
	CompletedAt   *time.Time
}

// Repository wraps the SQLite report archive.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the archive at dbPath and
// runs pending migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores a new pending report with its snapshot.
func (r *Repository) Insert(ctx context.Context, rep Report) error {
	snapshot, err := json.Marshal(rep.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, start_date, end_date, status, transaction_count,
			total_income, total_expenses, balance, snapshot, requested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.StartDate, rep.EndDate, StatusPending, rep.Count,
		rep.TotalIncome.String(), rep.TotalExpenses.String(), rep.Balance.String(),
		string(snapshot), rep.RequestedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	slog.InfoContext(ctx, "Report archived",
		"id", rep.ID,
		"start_date", rep.StartDate,
		"end_date", rep.EndDate,
		"count", rep.Count)
	return nil
}

// Get loads a report by id. sql.ErrNoRows passes through when the id
// is unknown.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, status, transaction_count,
		       total_income, total_expenses, balance, snapshot,
		       pdf_path, xlsx_path, last_error, requested_at, completed_at
		FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

// ListRecent returns the newest reports first, without snapshots.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, status, transaction_count,
		       total_income, total_expenses, balance,
		       pdf_path, xlsx_path, last_error, requested_at, completed_at
		FROM reports ORDER BY requested_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var rep Report
		var income, expenses, balance string
		var completed sql.NullTime
		if err := rows.Scan(
			&rep.ID, &rep.StartDate, &rep.EndDate, &rep.Status, &rep.Count,
			&income, &expenses, &balance,
			&rep.PDFPath, &rep.XLSXPath, &rep.LastError, &rep.RequestedAt, &completed,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := rep.parseTotals(income, expenses, balance); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			rep.CompletedAt = &t
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// Pending returns up to limit unprocessed reports, oldest first, with
// snapshots loaded. Used by the worker sweep.
func (r *Repository) Pending(ctx context.Context, limit int) ([]Report, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM reports
		WHERE status = ? ORDER BY requested_at, id LIMIT ?`, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending reports: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Report, 0, len(ids))
	for _, id := range ids {
		rep, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}

// MarkDone records the rendered file paths and flips the status.
func (r *Repository) MarkDone(ctx context.Context, id, pdfPath, xlsxPath string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, pdf_path = ?, xlsx_path = ?, last_error = '', completed_at = ?
		WHERE id = ?`,
		StatusDone, pdfPath, xlsxPath, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark report done: %w", err)
	}
	slog.InfoContext(ctx, "Report completed", "id", id)
	return nil
}

// MarkError records a generation failure.
func (r *Repository) MarkError(ctx context.Context, id, msg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports
		SET status = ?, last_error = ?, completed_at = ?
		WHERE id = ?`,
		StatusError, msg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark report error: %w", err)
	}
	slog.WarnContext(ctx, "Report failed", "id", id, "error", msg)
	return nil
}

func (rep *Report) parseTotals(income, expenses, balance string) error {
	var err error
	if rep.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return fmt.Errorf("parse total income: %w", err)
	}
	if rep.TotalExpenses, err = decimal.NewFromString(expenses); err != nil {
		return fmt.Errorf("parse total expenses: %w", err)
	}
	if rep.Balance, err = decimal.NewFromString(balance); err != nil {
		return fmt.Errorf("parse balance: %w", err)
	}
	return nil
}

func scanReport(row *sql.Row) (*Report, error) {
	var rep Report
	var income, expenses, balance, snapshot string
	var completed sql.NullTime
	err := row.Scan(
		&rep.ID, &rep.StartDate, &rep.EndDate, &rep.Status, &rep.Count,
		&income, &expenses, &balance, &snapshot,
		&rep.PDFPath, &rep.XLSXPath, &rep.LastError, &rep.RequestedAt, &completed,
	)
	if err != nil {
		return nil, err
	}
	if err := rep.parseTotals(income, expenses, balance); err != nil {
		return nil, err
	}
	if snapshot != "" {
		if err := json.Unmarshal([]byte(snapshot), &rep.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	if completed.Valid {
		t := completed.Time
		rep.CompletedAt = &t
	}
	return &rep, nil
}
