// Package aggregator folds outcome rows into the summary shapes consumed
// by reporting. Everything here is re-derivable from a ResultSet; the
// aggregates are never a source of truth.
package aggregator

import (
	"sort"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// Cell is one (wait, expiry) bucket of the success matrix.
type Cell struct {
	SuccessRate float64 // successes / samples, 0..1
	SampleCount int
}

// Matrix summarises one window length's outcomes, bucketed by
// (wait days, expiry days).
type Matrix struct {
	WindowDays int
	WaitTimes  []int // sorted, only waits that produced samples
	Expiries   []int // sorted, only expiries that produced samples
	cells      map[[2]int]Cell
}

// Cell returns the bucket for the given wait and expiry; ok is false when
// no sample fell into it.
func (m *Matrix) Cell(waitDays, expiryDays int) (Cell, bool) {
	c, ok := m.cells[[2]int{waitDays, expiryDays}]
	return c, ok
}

// BuildMatrix folds a result set into its success matrix.
func BuildMatrix(rs *model.ResultSet) *Matrix {
	type bucket struct{ successes, samples int }
	buckets := make(map[[2]int]*bucket)
	waitSet := make(map[int]struct{})
	expirySet := make(map[int]struct{})

	for _, r := range rs.Rows() {
		k := [2]int{r.WaitDays, r.ExpiryDays}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
			waitSet[r.WaitDays] = struct{}{}
			expirySet[r.ExpiryDays] = struct{}{}
		}
		b.samples++
		if r.Success {
			b.successes++
		}
	}

	m := &Matrix{
		WindowDays: rs.WindowDays,
		WaitTimes:  sortedKeys(waitSet),
		Expiries:   sortedKeys(expirySet),
		cells:      make(map[[2]int]Cell, len(buckets)),
	}
	for k, b := range buckets {
		m.cells[k] = Cell{
			SuccessRate: float64(b.successes) / float64(b.samples),
			SampleCount: b.samples,
		}
	}
	return m
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// SymbolRollup summarises one symbol's outcomes across the whole grid.
// MeanDaysToBreak and MeanBreakPct average only over failed rows and are
// zero when the symbol never broke.
type SymbolRollup struct {
	Symbol          string
	SampleCount     int
	Breaks          int
	SuccessRate     float64
	MeanDaysToBreak float64
	MeanBreakPct    float64
}

// SymbolRollups folds a result set into per-symbol summaries, sorted by symbol.
func SymbolRollups(rs *model.ResultSet) []SymbolRollup {
	type acc struct {
		samples, successes, breaks int
		sumDays                    int
		sumPct                     float64
	}
	accs := make(map[string]*acc)

	for _, r := range rs.Rows() {
		a, ok := accs[r.Symbol]
		if !ok {
			a = &acc{}
			accs[r.Symbol] = a
		}
		a.samples++
		if r.Success {
			a.successes++
			continue
		}
		if r.DaysToBreak != nil && r.BreakPct != nil {
			a.breaks++
			a.sumDays += *r.DaysToBreak
			a.sumPct += *r.BreakPct
		}
	}

	symbols := make([]string, 0, len(accs))
	for s := range accs {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rollups := make([]SymbolRollup, 0, len(symbols))
	for _, s := range symbols {
		a := accs[s]
		ru := SymbolRollup{
			Symbol:      s,
			SampleCount: a.samples,
			Breaks:      a.breaks,
			SuccessRate: float64(a.successes) / float64(a.samples),
		}
		if a.breaks > 0 {
			ru.MeanDaysToBreak = float64(a.sumDays) / float64(a.breaks)
			ru.MeanBreakPct = a.sumPct / float64(a.breaks)
		}
		rollups = append(rollups, ru)
	}
	return rollups
}
