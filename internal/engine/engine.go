// Package engine orchestrates the analysis: it fans the per-symbol work
// out over a worker pool, reconciles the results with previously
// persisted outcomes, and reports what happened.
package engine

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/datamilo/StockPriceStats/internal/calculator"
	"github.com/datamilo/StockPriceStats/internal/model"
	"github.com/datamilo/StockPriceStats/internal/pricestore"
	"github.com/datamilo/StockPriceStats/internal/recorder"
	"github.com/datamilo/StockPriceStats/internal/tester"
)

// Engine runs the support-level analysis for a set of window specs over
// a price store, persisting outcome rows through a Recorder.
type Engine struct {
	store   *pricestore.Store
	rec     recorder.Recorder
	specs   []model.WindowSpec
	workers int
}

// New creates an Engine. A non-positive worker count defaults to one
// worker per CPU, leaving one core free (minimum one).
func New(store *pricestore.Store, rec recorder.Recorder, specs []model.WindowSpec, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	return &Engine{store: store, rec: rec, specs: specs, workers: workers}
}

// symbolResult carries one symbol's outcome rows, or its failure, from a
// worker back to the single-threaded reducer.
type symbolResult struct {
	symbol string
	events int
	rows   []model.OutcomeRow
	tally  tester.Tally
	err    error
}

// RunFull discards all persisted rows and recomputes every window from
// scratch.
func (e *Engine) RunFull() (*Summary, error) {
	return e.run(false)
}

// RunIncremental computes and appends only outcome rows not yet covered
// by the persisted result sets. Running it again with no new price data
// appends nothing, and any sequence of incremental runs yields exactly
// the rows a single full run over the cumulative history would produce.
func (e *Engine) RunIncremental() (*Summary, error) {
	return e.run(true)
}

func (e *Engine) run(incremental bool) (*Summary, error) {
	summary := &Summary{Started: time.Now()}

	for _, spec := range e.specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("window spec %d: %w", spec.WindowDays, err)
		}

		if !incremental {
			if err := e.rec.Reset(spec.WindowDays); err != nil {
				return nil, fmt.Errorf("reset window %d: %w", spec.WindowDays, err)
			}
		}
		rs, err := e.rec.LoadResultSet(spec.WindowDays)
		if err != nil {
			return nil, fmt.Errorf("load results for window %d: %w", spec.WindowDays, err)
		}

		ws, err := e.runWindow(spec, rs)
		if err != nil {
			return nil, err
		}
		summary.Windows = append(summary.Windows, *ws)
	}

	summary.Finished = time.Now()
	log.Printf("[INFO] analysis complete in %s", summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	return summary, nil
}

// runWindow processes every symbol for one window spec and reconciles
// the new rows against the existing result set.
func (e *Engine) runWindow(spec model.WindowSpec, rs *model.ResultSet) (*WindowSummary, error) {
	hwm := rs.HighWaterMark()
	if hwm.IsZero() {
		log.Printf("[INFO] %s: full computation (%d symbols, %d workers)",
			spec.Name(), len(e.store.Symbols()), e.workers)
	} else {
		log.Printf("[INFO] %s: incremental from %s (%d symbols, %d workers)",
			spec.Name(), hwm.Format("2006-01-02"), len(e.store.Symbols()), e.workers)
	}

	jobs := make(chan string)
	results := make(chan symbolResult)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- e.processSymbol(symbol, spec, hwm)
			}
		}()
	}
	go func() {
		for _, symbol := range e.store.Symbols() {
			jobs <- symbol
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single-threaded reducer: workers never share the result set.
	ws := &WindowSummary{WindowDays: spec.WindowDays, Name: spec.Name()}
	var fresh []model.OutcomeRow
	for res := range results {
		if res.err != nil {
			log.Printf("[ERROR] %s %s: %v", spec.Name(), res.symbol, res.err)
			ws.SymbolsFailed++
			continue
		}
		if res.events == 0 {
			ws.SymbolsSkipped++
			continue
		}
		ws.SymbolsProcessed++
		ws.EventsTested += res.events
		ws.RowsWithheld += res.tally.Withheld
		ws.WaitExcluded += res.tally.WaitExcluded
		for _, row := range res.rows {
			if rs.Add(row) {
				fresh = append(fresh, row)
			} else {
				ws.DuplicatesDropped++
			}
		}
	}

	rs.Sort()
	inserted, err := e.rec.AppendRows(spec.WindowDays, fresh)
	if err != nil {
		return nil, fmt.Errorf("append results for window %d: %w", spec.WindowDays, err)
	}
	if inserted != len(fresh) {
		// The store already held keys the in-memory set did not; keep
		// the first-seen rows and account for the rest as duplicates.
		log.Printf("[WARN] %s: %d of %d rows were already persisted",
			spec.Name(), len(fresh)-inserted, len(fresh))
		ws.DuplicatesDropped += len(fresh) - inserted
	}
	ws.RowsAppended = inserted
	ws.TotalRows = rs.Len()
	ws.HighWaterMark = rs.HighWaterMark()

	log.Printf("[INFO] %s: %d events tested, %d rows appended, %d withheld, %d wait-excluded, %d duplicates",
		spec.Name(), ws.EventsTested, ws.RowsAppended, ws.RowsWithheld, ws.WaitExcluded, ws.DuplicatesDropped)
	return ws, nil
}

// processSymbol runs one symbol's computation. Panics are captured as
// that symbol's failure so a corrupt symbol cannot abort its siblings.
func (e *Engine) processSymbol(symbol string, spec model.WindowSpec, hwm time.Time) (res symbolResult) {
	res.symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := e.store.Validate(symbol); err != nil {
		res.err = err
		return res
	}
	series := e.store.Series(symbol)

	events, err := calculator.SupportEvents(series, spec.WindowDays, calculator.Exhaustive)
	if err != nil {
		res.err = err
		return res
	}
	if len(events) == 0 {
		return res // insufficient history, not an error
	}

	start := 0
	if !hwm.IsZero() {
		// Resume after the high-water mark, stepping back far enough to
		// re-test supports whose wait/expiry windows were previously cut
		// off by the end of the data. Their already-persisted rows are
		// recomputed identically and dropped as duplicates; the rows that
		// only now became resolvable get filled in, keeping incremental
		// runs row-for-row equal to a full recomputation.
		firstNew := len(events)
		for i, ev := range events {
			if ev.Date.After(hwm) {
				firstNew = i
				break
			}
		}
		start = firstNew - spec.Horizon()
		if start < 0 {
			start = 0
		}
	}

	for _, ev := range events[start:] {
		rows, tally := tester.TestEvent(series, ev, spec)
		res.rows = append(res.rows, rows...)
		res.tally.Add(tally)
	}
	res.events = len(events) - start
	return res
}
