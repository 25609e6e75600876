package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finman/internal/core"
)

const (
	sheetTransactions = "Transactions"
	sheetSummary      = "Summary"
)

// GenerateXLSX filters txs by rng and writes a two-sheet workbook to w:
// the transaction list plus a summary sheet with totals and per-category
// expense breakdown.
func (g *Generator) GenerateXLSX(txs []core.Transaction, rng Range, w io.Writer) error {
	filtered := FilterByRange(txs, rng)
	if len(filtered) == 0 {
		return ErrNoTransactions
	}
	sum := Summarize(filtered)

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetTransactions)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#9333EA"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	subtitleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11, Color: "#6B21A8"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#7E22CE"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F3E8FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	incomeStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 10, Color: "#16A34A"},
	})
	expenseStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 10, Color: "#DC2626"},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})

	f.MergeCell(sheetTransactions, "A1", "E1")
	f.SetCellValue(sheetTransactions, "A1", "FinMan Expense Report")
	f.SetCellStyle(sheetTransactions, "A1", "E1", titleStyle)
	f.SetRowHeight(sheetTransactions, 1, 30)

	f.MergeCell(sheetTransactions, "A2", "E2")
	f.SetCellValue(sheetTransactions, "A2", fmt.Sprintf("%s to %s",
		rng.Start.Format("January 2, 2006"), rng.End.Format("January 2, 2006")))
	f.SetCellStyle(sheetTransactions, "A2", "E2", subtitleStyle)

	for i, header := range []string{"Date", "Category", "Name", "Type", "Amount"} {
		cell := fmt.Sprintf("%c3", 'A'+i)
		f.SetCellValue(sheetTransactions, cell, header)
	}
	f.SetCellStyle(sheetTransactions, "A3", "E3", headerStyle)

	row := 4
	for _, t := range filtered {
		date := ""
		if ts, err := t.Date(); err == nil {
			date = ts.Format("2006-01-02")
		}
		kind, style := "Expense", expenseStyle
		if t.IsIncome {
			kind, style = "Income", incomeStyle
		}
		f.SetCellValue(sheetTransactions, fmt.Sprintf("A%d", row), date)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("B%d", row), t.DisplayCategory())
		f.SetCellValue(sheetTransactions, fmt.Sprintf("C%d", row), t.DisplayName())
		f.SetCellValue(sheetTransactions, fmt.Sprintf("D%d", row), kind)
		f.SetCellValue(sheetTransactions, fmt.Sprintf("E%d", row), t.Price.InexactFloat64())
		f.SetCellStyle(sheetTransactions, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), style)
		f.SetCellStyle(sheetTransactions, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), amountStyle)
		row++
	}

	f.SetColWidth(sheetTransactions, "A", "A", 14)
	f.SetColWidth(sheetTransactions, "B", "B", 18)
	f.SetColWidth(sheetTransactions, "C", "C", 32)
	f.SetColWidth(sheetTransactions, "D", "D", 12)
	f.SetColWidth(sheetTransactions, "E", "E", 14)

	g.writeSummarySheet(f, filtered, sum, headerStyle, amountStyle)

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (g *Generator) writeSummarySheet(f *excelize.File, txs []core.Transaction, sum Summary, headerStyle, amountStyle int) {
	f.NewSheet(sheetSummary)

	f.SetCellValue(sheetSummary, "A1", "Total Income")
	f.SetCellValue(sheetSummary, "B1", sum.TotalIncome.InexactFloat64())
	f.SetCellValue(sheetSummary, "A2", "Total Expenses")
	f.SetCellValue(sheetSummary, "B2", sum.TotalExpenses.InexactFloat64())
	f.SetCellValue(sheetSummary, "A3", "Net Balance")
	f.SetCellValue(sheetSummary, "B3", sum.Balance.InexactFloat64())
	f.SetCellValue(sheetSummary, "A4", "Transactions")
	f.SetCellValue(sheetSummary, "B4", sum.Count)
	f.SetCellStyle(sheetSummary, "B1", "B4", amountStyle)

	// Per-category expense breakdown, first-seen order like the
	// dashboard pie.
	f.SetCellValue(sheetSummary, "A6", "Category")
	f.SetCellValue(sheetSummary, "B6", "Expenses")
	f.SetCellStyle(sheetSummary, "A6", "B6", headerStyle)

	catIdx := make(map[string]int)
	var cats []core.CategoryTotal
	for _, t := range txs {
		if t.IsIncome {
			continue
		}
		name := t.DisplayCategory()
		i, ok := catIdx[name]
		if !ok {
			i = len(cats)
			catIdx[name] = i
			cats = append(cats, core.CategoryTotal{Category: name})
		}
		cats[i].Total = cats[i].Total.Add(t.Price.Decimal)
	}
	row := 7
	for _, c := range cats {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", row), c.Category)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", row), c.Total.InexactFloat64())
		row++
	}

	f.SetColWidth(sheetSummary, "A", "A", 20)
	f.SetColWidth(sheetSummary, "B", "B", 16)
}
