package engine

import (
	"testing"
	"time"

	"github.com/datamilo/StockPriceStats/internal/model"
	"github.com/datamilo/StockPriceStats/internal/pricestore"
	"github.com/datamilo/StockPriceStats/internal/recorder"
)

var testStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// syntheticPoints builds a deterministic pseudo-random walk with regular
// dips so supports both hold and break across the grid.
func syntheticPoints(symbol string, seed uint64, days int) []model.PricePoint {
	points := make([]model.PricePoint, days)
	x := seed
	price := 100.0
	for i := 0; i < days; i++ {
		x = x*6364136223846793005 + 1442695040888963407
		price += float64(int64(x>>33)%200-95) / 60.0
		if price < 20 {
			price = 20
		}
		low := price - float64(int64(x>>40)%300)/100.0
		points[i] = model.PricePoint{
			Symbol: symbol,
			Date:   testStart.AddDate(0, 0, i),
			Open:   price,
			High:   price + 1,
			Low:    low,
			Close:  price + 0.5,
		}
	}
	return points
}

// cutAt keeps only points dated strictly before the given day offset.
func cutAt(points []model.PricePoint, day int) []model.PricePoint {
	cutoff := testStart.AddDate(0, 0, day)
	var out []model.PricePoint
	for _, p := range points {
		if p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func testSpecs() []model.WindowSpec {
	return []model.WindowSpec{
		{WindowDays: 10, WaitTimes: []int{0, 5, 10}, ExpiryTimes: []int{3, 7}},
		{WindowDays: 20, WaitTimes: []int{0, 10, 20}, ExpiryTimes: []int{3, 7}},
	}
}

func sameRows(t *testing.T, got, want *model.ResultSet) {
	t.Helper()
	got.Sort()
	want.Sort()
	if got.Len() != want.Len() {
		t.Fatalf("row count mismatch: got %d, want %d", got.Len(), want.Len())
	}
	for i := range want.Rows() {
		a, b := got.Rows()[i], want.Rows()[i]
		if a.Key() != b.Key() {
			t.Fatalf("row %d key mismatch: %+v vs %+v", i, a.Key(), b.Key())
		}
		if a.Success != b.Success || a.SupportLevel != b.SupportLevel ||
			a.MinDuringOption != b.MinDuringOption ||
			!a.TestDate.Equal(b.TestDate) || !a.ExpiryDate.Equal(b.ExpiryDate) {
			t.Fatalf("row %d field mismatch:\n got %+v\nwant %+v", i, a, b)
		}
		if (a.DaysToBreak == nil) != (b.DaysToBreak == nil) ||
			(a.DaysToBreak != nil && *a.DaysToBreak != *b.DaysToBreak) {
			t.Fatalf("row %d days_to_break mismatch", i)
		}
		if (a.BreakPct == nil) != (b.BreakPct == nil) ||
			(a.BreakPct != nil && *a.BreakPct != *b.BreakPct) {
			t.Fatalf("row %d break_pct mismatch", i)
		}
	}
}

// Chunked incremental processing must equal a single full recompute,
// row for row, for every window length.
func TestEngine_IncrementalEqualsFullRecompute(t *testing.T) {
	all := append(syntheticPoints("AAA", 1, 120), syntheticPoints("BBB", 7, 120)...)
	specs := testSpecs()

	// Full run on chunk 1, then incremental with the complete history.
	incRec := recorder.NewMemoryRecorder()
	chunk1 := pricestore.NewStore(cutAt(all, 70))
	if _, err := New(chunk1, incRec, specs, 2).RunFull(); err != nil {
		t.Fatalf("chunk 1 full run: %v", err)
	}
	full := pricestore.NewStore(all)
	if _, err := New(full, incRec, specs, 2).RunIncremental(); err != nil {
		t.Fatalf("incremental run: %v", err)
	}

	// Reference: one full run over the complete history.
	refRec := recorder.NewMemoryRecorder()
	if _, err := New(full, refRec, specs, 2).RunFull(); err != nil {
		t.Fatalf("reference full run: %v", err)
	}

	for _, spec := range specs {
		got, err := incRec.LoadResultSet(spec.WindowDays)
		if err != nil {
			t.Fatal(err)
		}
		want, err := refRec.LoadResultSet(spec.WindowDays)
		if err != nil {
			t.Fatal(err)
		}
		if want.Len() == 0 {
			t.Fatalf("window %d: reference run produced no rows, test data too small", spec.WindowDays)
		}
		sameRows(t, got, want)
	}
}

// A second incremental run with no new price data appends zero rows.
func TestEngine_IncrementalIsIdempotent(t *testing.T) {
	points := syntheticPoints("AAA", 3, 90)
	store := pricestore.NewStore(points)
	rec := recorder.NewMemoryRecorder()
	specs := testSpecs()

	if _, err := New(store, rec, specs, 1).RunFull(); err != nil {
		t.Fatalf("full run: %v", err)
	}
	summary, err := New(store, rec, specs, 1).RunIncremental()
	if err != nil {
		t.Fatalf("incremental run: %v", err)
	}
	for _, w := range summary.Windows {
		if w.RowsAppended != 0 {
			t.Errorf("%s: %d rows appended on idempotent re-run, want 0", w.Name, w.RowsAppended)
		}
	}
}

// One corrupt symbol is isolated: it is reported as failed and the other
// symbols' outcomes are produced normally.
func TestEngine_PartialFailureIsolation(t *testing.T) {
	good := syntheticPoints("AAA", 1, 60)
	bad := []model.PricePoint{
		{Symbol: "BAD", Date: testStart, Open: 10, High: 11, Low: 9, Close: 10},
		{Symbol: "BAD", Date: testStart, Open: 10, High: 11, Low: 9, Close: 10}, // duplicate date
	}
	store := pricestore.NewStore(append(good, bad...))
	rec := recorder.NewMemoryRecorder()
	spec := model.WindowSpec{WindowDays: 10, WaitTimes: []int{0}, ExpiryTimes: []int{3}}

	summary, err := New(store, rec, []model.WindowSpec{spec}, 2).RunFull()
	if err != nil {
		t.Fatalf("run must not abort on a single symbol: %v", err)
	}

	w := summary.Windows[0]
	if w.SymbolsFailed != 1 {
		t.Errorf("failed symbols = %d, want 1", w.SymbolsFailed)
	}
	if w.SymbolsProcessed != 1 {
		t.Errorf("processed symbols = %d, want 1", w.SymbolsProcessed)
	}

	rs, _ := rec.LoadResultSet(10)
	if rs.Len() == 0 {
		t.Error("healthy symbol produced no rows")
	}
	for _, r := range rs.Rows() {
		if r.Symbol == "BAD" {
			t.Error("corrupt symbol leaked rows into the result set")
		}
	}
}

// Symbols that disappear from the price store between runs keep their
// previously persisted rows and produce no new ones.
func TestEngine_RemovedSymbolKeepsHistory(t *testing.T) {
	all := append(syntheticPoints("AAA", 1, 80), syntheticPoints("BBB", 9, 80)...)
	rec := recorder.NewMemoryRecorder()
	spec := model.WindowSpec{WindowDays: 10, WaitTimes: []int{0}, ExpiryTimes: []int{3}}

	if _, err := New(pricestore.NewStore(all), rec, []model.WindowSpec{spec}, 1).RunFull(); err != nil {
		t.Fatal(err)
	}
	before, _ := rec.LoadResultSet(10)
	bbbRows := 0
	for _, r := range before.Rows() {
		if r.Symbol == "BBB" {
			bbbRows++
		}
	}
	if bbbRows == 0 {
		t.Fatal("setup: BBB produced no rows")
	}

	onlyAAA := pricestore.NewStore(syntheticPoints("AAA", 1, 80))
	if _, err := New(onlyAAA, rec, []model.WindowSpec{spec}, 1).RunIncremental(); err != nil {
		t.Fatalf("incremental with removed symbol: %v", err)
	}
	after, _ := rec.LoadResultSet(10)
	kept := 0
	for _, r := range after.Rows() {
		if r.Symbol == "BBB" {
			kept++
		}
	}
	if kept != bbbRows {
		t.Errorf("BBB rows after removal = %d, want %d", kept, bbbRows)
	}
}

// The wait-time constraint and the no-future-leakage guarantee hold over
// real engine output, not just in the spec construction.
func TestEngine_OutputInvariants(t *testing.T) {
	points := syntheticPoints("AAA", 5, 200)
	store := pricestore.NewStore(points)
	rec := recorder.NewMemoryRecorder()
	spec := model.NewWindowSpec(30, model.DefaultWaitTimes, model.DefaultExpiryTimes)

	if _, err := New(store, rec, []model.WindowSpec{spec}, 1).RunFull(); err != nil {
		t.Fatal(err)
	}

	rs, _ := rec.LoadResultSet(30)
	if rs.Len() == 0 {
		t.Fatal("no rows produced")
	}
	lastDate := points[len(points)-1].Date
	for _, r := range rs.Rows() {
		if r.WaitDays > 30 {
			t.Errorf("row with wait %d exceeds 30-day window", r.WaitDays)
		}
		if r.ExpiryDate.After(lastDate) {
			t.Errorf("future leakage: expiry date %v past end of data %v", r.ExpiryDate, lastDate)
		}
		if !r.TestDate.After(r.SupportDate) && r.WaitDays > 0 {
			t.Errorf("test date %v not after support date %v for wait %d",
				r.TestDate, r.SupportDate, r.WaitDays)
		}
	}
}
