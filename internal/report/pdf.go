package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/signintech/gopdf"

	"finman/internal/core"
)

// A4 page geometry in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	marginX    = 28.0
	footerZone = 42.0
)

// Font family names registered with gopdf. Both faces must exist as TTF
// files in the generator's font directory.
const (
	fontRegular     = "report"
	fontBold        = "report-bold"
	fontRegularFile = "DejaVuSans.ttf"
	fontBoldFile    = "DejaVuSans-Bold.ttf"
)

type rgb struct{ r, g, b uint8 }

// Report theme, matching the dashboard's purple palette.
var (
	colorHeader     = rgb{147, 51, 234}
	colorHeading    = rgb{126, 34, 206}
	colorBody       = rgb{107, 33, 168}
	colorWhite      = rgb{255, 255, 255}
	colorIncome     = rgb{22, 163, 74}
	colorIncomeBg   = rgb{220, 252, 231}
	colorExpense    = rgb{220, 38, 38}
	colorExpenseBg  = rgb{254, 226, 226}
	colorPositiveFg = rgb{30, 64, 175}
	colorPositiveBg = rgb{219, 234, 254}
	colorNegativeFg = rgb{180, 83, 9}
	colorNegativeBg = rgb{254, 243, 199}
	colorTableHead  = rgb{243, 232, 255}
	colorTableZebra = rgb{249, 240, 255}
)

// Generator renders reports. Fonts are loaded per render from FontDir,
// so a bad deployment surfaces as a generation error rather than a
// startup crash.
type Generator struct {
	fontDir string
	now     func() time.Time
}

// NewGenerator returns a Generator loading TTF faces from fontDir.
func NewGenerator(fontDir string) *Generator {
	return &Generator{fontDir: fontDir, now: time.Now}
}

// Generate filters txs by rng and writes the PDF report to w. It
// returns ErrNoTransactions when the range matches nothing; any other
// error means rendering failed.
func (g *Generator) Generate(txs []core.Transaction, rng Range, w io.Writer) error {
	filtered := FilterByRange(txs, rng)
	if len(filtered) == 0 {
		return ErrNoTransactions
	}
	return g.renderPDF(filtered, Summarize(filtered), rng, w)
}

func (g *Generator) renderPDF(txs []core.Transaction, sum Summary, rng Range, w io.Writer) error {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFont(fontRegular, filepath.Join(g.fontDir, fontRegularFile)); err != nil {
		return fmt.Errorf("load report font: %w", err)
	}
	if err := pdf.AddTTFFont(fontBold, filepath.Join(g.fontDir, fontBoldFile)); err != nil {
		return fmt.Errorf("load report bold font: %w", err)
	}

	pdf.AddPage()
	p := &page{pdf: &pdf, y: 120}

	// Purple masthead.
	fill(&pdf, colorHeader)
	pdf.RectFromUpperLeftWithStyle(0, 0, pageWidth, 99, "F")
	p.centerText("FinMan", fontBold, 28, colorWhite, 38)
	p.centerText("Expense Report", fontRegular, 12, colorWhite, 72)

	// Report period block.
	stroke(&pdf, colorHeader)
	pdf.SetLineWidth(1)
	pdf.Rectangle(marginX, 115, pageWidth-marginX, 190, "D", 0, 0)
	p.y = 122
	p.text("Report Period", fontBold, 12, colorHeading, marginX+10)
	p.text("From: "+rng.Start.Format("January 2, 2006"), fontRegular, 10, colorBody, marginX+10)
	p.text("To: "+rng.End.Format("January 2, 2006"), fontRegular, 10, colorBody, marginX+10)
	p.text("Generated: "+g.now().Format("January 2, 2006, 3:04 PM"), fontRegular, 10, colorBody, marginX+10)

	// Summary boxes.
	p.y = 205
	balFg, balBg := colorPositiveFg, colorPositiveBg
	if sum.Balance.IsNegative() {
		balFg, balBg = colorNegativeFg, colorNegativeBg
	}
	boxW, boxH := 165.0, 56.0
	p.summaryBox(marginX, boxW, boxH, "TOTAL INCOME", FormatMoney(sum.TotalIncome), colorIncome, colorIncomeBg)
	p.summaryBox(marginX+boxW+10, boxW, boxH, "TOTAL EXPENSES", FormatMoney(sum.TotalExpenses), colorExpense, colorExpenseBg)
	p.summaryBox(marginX+2*(boxW+10), boxW, boxH, "NET BALANCE", FormatMoney(sum.Balance), balFg, balBg)
	p.y += boxH + 24

	// Transactions table.
	p.text(fmt.Sprintf("Transactions (%d)", sum.Count), fontBold, 12, colorHeading, marginX)
	p.y += 4
	p.tableHeader()
	for i, t := range txs {
		p.tableRow(t, i%2 == 0)
	}

	p.footer()

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// page tracks the vertical cursor and handles page breaks. Continuation
// pages carry table rows only; the masthead and summary stay on page 1.
type page struct {
	pdf *gopdf.GoPdf
	y   float64
}

func fill(pdf *gopdf.GoPdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
}

func stroke(pdf *gopdf.GoPdf, c rgb) {
	pdf.SetStrokeColor(c.r, c.g, c.b)
}

func (p *page) breakIfNeeded(required float64) {
	if p.y+required > pageHeight-footerZone {
		p.pdf.AddPage()
		p.y = 42
	}
}

// text writes a line at x and advances the cursor.
func (p *page) text(s, font string, size float64, c rgb, x float64) {
	p.pdf.SetFont(font, "", size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	p.pdf.SetXY(x, p.y)
	p.pdf.Cell(nil, s)
	p.y += size + 6
}

// centerText writes a horizontally centered line at a fixed y.
func (p *page) centerText(s, font string, size float64, c rgb, y float64) {
	p.pdf.SetFont(font, "", size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	w, err := p.pdf.MeasureTextWidth(s)
	if err != nil {
		w = 0
	}
	p.pdf.SetXY((pageWidth-w)/2, y)
	p.pdf.Cell(nil, s)
}

func (p *page) summaryBox(x, w, h float64, label, value string, fg, bg rgb) {
	fill(p.pdf, bg)
	p.pdf.RectFromUpperLeftWithStyle(x, p.y, w, h, "F")
	p.pdf.SetFont(fontBold, "", 10)
	p.pdf.SetTextColor(fg.r, fg.g, fg.b)
	p.pdf.SetXY(x+8, p.y+10)
	p.pdf.Cell(nil, label)
	p.pdf.SetFont(fontBold, "", 14)
	p.pdf.SetXY(x+8, p.y+32)
	p.pdf.Cell(nil, value)
}

// Table column x positions.
const (
	colDate     = marginX + 6
	colCategory = 110.0
	colName     = 210.0
	colType     = 392.0
	colAmountR  = pageWidth - marginX - 6
)

func (p *page) tableHeader() {
	p.breakIfNeeded(30)
	fill(p.pdf, colorTableHead)
	p.pdf.RectFromUpperLeftWithStyle(marginX, p.y, pageWidth-2*marginX, 22, "F")
	p.pdf.SetFont(fontBold, "", 9)
	p.pdf.SetTextColor(colorHeading.r, colorHeading.g, colorHeading.b)
	baseline := p.y + 7
	p.pdf.SetXY(colDate, baseline)
	p.pdf.Cell(nil, "Date")
	p.pdf.SetXY(colCategory, baseline)
	p.pdf.Cell(nil, "Category")
	p.pdf.SetXY(colName, baseline)
	p.pdf.Cell(nil, "Name")
	p.pdf.SetXY(colType, baseline)
	p.pdf.Cell(nil, "Type")
	p.rightText("Amount", fontBold, 9, colorHeading, baseline)
	p.y += 26
}

func (p *page) tableRow(t core.Transaction, zebra bool) {
	const rowH = 20.0
	p.breakIfNeeded(rowH + 4)

	if zebra {
		fill(p.pdf, colorTableZebra)
		p.pdf.RectFromUpperLeftWithStyle(marginX, p.y-3, pageWidth-2*marginX, rowH, "F")
	}

	baseline := p.y + 2
	date := ""
	if ts, err := t.Date(); err == nil {
		date = ts.Format("Jan 2, 06")
	}
	p.pdf.SetFont(fontRegular, "", 8)
	p.pdf.SetTextColor(colorBody.r, colorBody.g, colorBody.b)
	p.pdf.SetXY(colDate, baseline)
	p.pdf.Cell(nil, date)
	p.pdf.SetXY(colCategory, baseline)
	p.pdf.Cell(nil, t.DisplayCategory())
	p.pdf.SetXY(colName, baseline)
	p.pdf.Cell(nil, truncate(t.DisplayName(), 38))

	kind, kindColor := "Expense", colorExpense
	if t.IsIncome {
		kind, kindColor = "Income", colorIncome
	}
	p.pdf.SetFont(fontBold, "", 8)
	p.pdf.SetTextColor(kindColor.r, kindColor.g, kindColor.b)
	p.pdf.SetXY(colType, baseline)
	p.pdf.Cell(nil, kind)
	p.rightText(SignedMoney(t), fontBold, 8, kindColor, baseline)

	p.y += rowH
}

// rightText writes s right-aligned against the amount column.
func (p *page) rightText(s, font string, size float64, c rgb, y float64) {
	p.pdf.SetFont(font, "", size)
	p.pdf.SetTextColor(c.r, c.g, c.b)
	w, err := p.pdf.MeasureTextWidth(s)
	if err != nil {
		w = 0
	}
	p.pdf.SetXY(colAmountR-w, y)
	p.pdf.Cell(nil, s)
}

func (p *page) footer() {
	y := pageHeight - footerZone
	stroke(p.pdf, colorPositiveBg)
	p.pdf.SetLineWidth(0.8)
	p.pdf.Line(marginX, y, pageWidth-marginX, y)
	p.centerText("Generated by FinMan • Financial Management System", fontRegular, 8, colorHeader, y+8)
	p.centerText("This is a confidential report. Please keep it secure.", fontRegular, 8, colorHeader, y+20)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
