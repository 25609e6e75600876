// Package charts reshapes aggregated statistics into the dataset layout
// the dashboard's chart library consumes.
//
// The output is plain data. Marshaled shapes always use empty arrays,
// never null, so the frontend can render "no data" states without
// special-casing.
package charts

import (
	"strconv"

	"finman/internal/core"
)

// Palette cycled for category slices. Mirrors the dashboard theme.
var categoryPalette = []string{
	"#8b5cf6", "#ec4899", "#f59e0b", "#10b981",
	"#3b82f6", "#ef4444", "#14b8a6", "#f97316",
	"#6366f1", "#84cc16",
}

const (
	incomeColor      = "#10b981"
	incomeFillColor  = "rgba(16, 185, 129, 0.2)"
	expenseColor     = "#ef4444"
	expenseFillColor = "rgba(239, 68, 68, 0.2)"
)

// Dataset is one series in a chart payload. Color fields are optional
// and depend on the chart kind; BackgroundColor is a single color for
// bars and a per-slice list for pies.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// ChartData is the labels-plus-datasets payload shared by every chart.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// CategoryPie maps expense category totals to a pie payload. Slice
// order follows the aggregation's first-seen category order, so colors
// stay stable while the underlying list is unchanged.
func CategoryPie(s core.Stats) ChartData {
	labels := make([]string, 0, len(s.CategoryTotals))
	data := make([]float64, 0, len(s.CategoryTotals))
	colors := make([]string, 0, len(s.CategoryTotals))
	for i, c := range s.CategoryTotals {
		labels = append(labels, c.Category)
		data = append(data, c.Total.InexactFloat64())
		colors = append(colors, categoryPalette[i%len(categoryPalette)])
	}
	cd := ChartData{Labels: labels, Datasets: []Dataset{}}
	if len(labels) == 0 {
		return cd
	}
	cd.Datasets = append(cd.Datasets, Dataset{
		Label:           "Expenses by Category",
		Data:            data,
		BackgroundColor: colors,
		BorderWidth:     1,
	})
	return cd
}

// DailyBars maps the daily series to a grouped-bar payload with one
// income and one expense dataset. Labels are day-of-month numbers.
func DailyBars(s core.Stats) ChartData {
	labels, income, expense := splitDaily(s)
	cd := ChartData{Labels: labels, Datasets: []Dataset{}}
	if len(labels) == 0 {
		return cd
	}
	cd.Datasets = append(cd.Datasets,
		Dataset{Label: "Income", Data: income, BackgroundColor: incomeColor},
		Dataset{Label: "Expenses", Data: expense, BackgroundColor: expenseColor},
	)
	return cd
}

// DailyTrend maps the daily series to a two-line payload with soft area
// fills, for the month-to-date trend view.
func DailyTrend(s core.Stats) ChartData {
	labels, income, expense := splitDaily(s)
	cd := ChartData{Labels: labels, Datasets: []Dataset{}}
	if len(labels) == 0 {
		return cd
	}
	cd.Datasets = append(cd.Datasets,
		Dataset{
			Label:           "Income",
			Data:            income,
			BorderColor:     incomeColor,
			BackgroundColor: incomeFillColor,
			Fill:            true,
			Tension:         0.4,
		},
		Dataset{
			Label:           "Expenses",
			Data:            expense,
			BorderColor:     expenseColor,
			BackgroundColor: expenseFillColor,
			Fill:            true,
			Tension:         0.4,
		},
	)
	return cd
}

func splitDaily(s core.Stats) (labels []string, income, expense []float64) {
	labels = make([]string, 0, len(s.Daily))
	income = make([]float64, 0, len(s.Daily))
	expense = make([]float64, 0, len(s.Daily))
	for _, d := range s.Daily {
		labels = append(labels, strconv.Itoa(d.Day))
		income = append(income, d.Income.InexactFloat64())
		expense = append(expense, d.Expense.InexactFloat64())
	}
	return labels, income, expense
}
