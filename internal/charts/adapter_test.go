package charts

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"finman/internal/core"
)

func statsFor(t *testing.T, txs []core.Transaction, now time.Time) core.Stats {
	t.Helper()
	return core.ComputeStats(txs, now)
}

func tx(t *testing.T, id, price, category string, income bool, when string) core.Transaction {
	t.Helper()
	a, err := core.AmountFromString(price)
	if err != nil {
		t.Fatalf("bad amount %q: %v", price, err)
	}
	return core.Transaction{ID: id, Name: id, Price: a, Category: category, IsIncome: income, Time: when}
}

func TestCategoryPie(t *testing.T) {
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	s := statsFor(t, []core.Transaction{
		tx(t, "1", "30", "Food", false, "2026-08-01"),
		tx(t, "2", "70", "Housing", false, "2026-08-02"),
		tx(t, "3", "20", "Food", false, "2026-08-03"),
	}, now)

	cd := CategoryPie(s)
	if !reflect.DeepEqual(cd.Labels, []string{"Food", "Housing"}) {
		t.Errorf("labels = %v, want [Food Housing]", cd.Labels)
	}
	if len(cd.Datasets) != 1 {
		t.Fatalf("datasets = %d, want 1", len(cd.Datasets))
	}
	ds := cd.Datasets[0]
	if !reflect.DeepEqual(ds.Data, []float64{50, 70}) {
		t.Errorf("data = %v, want [50 70]", ds.Data)
	}
	colors, ok := ds.BackgroundColor.([]string)
	if !ok || len(colors) != 2 {
		t.Fatalf("backgroundColor = %v, want 2 colors", ds.BackgroundColor)
	}

	// Total mass must survive the reshaping.
	var sum float64
	for _, v := range ds.Data {
		sum += v
	}
	if math.Abs(sum-s.TotalExpenses.InexactFloat64()) > 1e-9 {
		t.Errorf("pie mass = %v, want %v", sum, s.TotalExpenses)
	}
}

func TestDailySeriesShapes(t *testing.T) {
	now := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	s := statsFor(t, []core.Transaction{
		tx(t, "1", "100", "", true, "2026-08-02"),
		tx(t, "2", "40", "Food", false, "2026-08-02"),
	}, now)

	bars := DailyBars(s)
	if !reflect.DeepEqual(bars.Labels, []string{"1", "2", "3", "4"}) {
		t.Errorf("bar labels = %v", bars.Labels)
	}
	if len(bars.Datasets) != 2 {
		t.Fatalf("bar datasets = %d, want 2", len(bars.Datasets))
	}
	if bars.Datasets[0].Label != "Income" || bars.Datasets[1].Label != "Expenses" {
		t.Errorf("dataset labels = %q, %q", bars.Datasets[0].Label, bars.Datasets[1].Label)
	}
	if !reflect.DeepEqual(bars.Datasets[0].Data, []float64{0, 100, 0, 0}) {
		t.Errorf("income data = %v", bars.Datasets[0].Data)
	}
	if !reflect.DeepEqual(bars.Datasets[1].Data, []float64{0, 40, 0, 0}) {
		t.Errorf("expense data = %v", bars.Datasets[1].Data)
	}

	trend := DailyTrend(s)
	if len(trend.Datasets) != 2 {
		t.Fatalf("trend datasets = %d, want 2", len(trend.Datasets))
	}
	if !trend.Datasets[0].Fill || trend.Datasets[0].Tension != 0.4 {
		t.Errorf("trend dataset missing line styling: %+v", trend.Datasets[0])
	}
	// Labels and data lengths always match.
	for _, ds := range trend.Datasets {
		if len(ds.Data) != len(trend.Labels) {
			t.Errorf("data length %d != labels length %d", len(ds.Data), len(trend.Labels))
		}
	}
}

func TestEmptyStatsMarshalAsEmptyArrays(t *testing.T) {
	var s core.Stats // no daily series, no categories

	for name, cd := range map[string]ChartData{
		"pie":   CategoryPie(s),
		"bars":  DailyBars(s),
		"trend": DailyTrend(s),
	} {
		b, err := json.Marshal(cd)
		if err != nil {
			t.Fatalf("%s marshal: %v", name, err)
		}
		if strings.Contains(string(b), "null") {
			t.Errorf("%s payload contains null: %s", name, b)
		}
		if !strings.Contains(string(b), `"labels":[]`) {
			t.Errorf("%s labels not an empty array: %s", name, b)
		}
		if !strings.Contains(string(b), `"datasets":[]`) {
			t.Errorf("%s datasets not an empty array: %s", name, b)
		}
	}
}
