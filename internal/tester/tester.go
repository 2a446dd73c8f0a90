// Package tester scores support events against the wait/expiry grid.
//
// All arithmetic is in trading days: for an event at series index i and
// wait w, the wait window is the observations at indices (i, i+w], the
// test day is index i+w, and an expiry of e covers (i+w, i+w+e]. A breach
// means a low strictly below the support level; a low exactly equal to
// the level leaves the support intact, in both the wait and expiry phases.
package tester

import (
	"math"

	"github.com/datamilo/StockPriceStats/internal/model"
)

// Tally counts what happened to the candidate rows of one or more events.
// Withheld rows had expiry windows extending past the end of the price
// history and were not scored; WaitExcluded counts (event, wait) pairs
// whose support broke before the test day and therefore produced no rows.
type Tally struct {
	Emitted      int
	Withheld     int
	WaitExcluded int
}

// Add accumulates another tally into t.
func (t *Tally) Add(other Tally) {
	t.Emitted += other.Emitted
	t.Withheld += other.Withheld
	t.WaitExcluded += other.WaitExcluded
}

// TestEvent evaluates one support event against every admissible
// (wait, expiry) combination of the spec and returns the outcome rows
// together with counts of non-emitted candidates.
func TestEvent(series *model.PriceSeries, ev model.SupportEvent, spec model.WindowSpec) ([]model.OutcomeRow, Tally) {
	var (
		rows  []model.OutcomeRow
		tally Tally
	)
	points := series.Points
	n := len(points)

	for _, wait := range spec.WaitTimes {
		testIdx := ev.Index + wait

		// Wait phase: a breach before the test day means the support
		// failed before being tradeable. Skip every expiry for this
		// wait; this is an exclusion, not a recorded failure.
		waitEnd := testIdx
		if waitEnd > n-1 {
			waitEnd = n - 1
		}
		breached := false
		for j := ev.Index + 1; j <= waitEnd; j++ {
			if points[j].Low < ev.Level {
				breached = true
				break
			}
		}
		if breached {
			tally.WaitExcluded++
			continue
		}

		if testIdx >= n {
			// The test day itself lies past the available history, so
			// every expiry window for this wait is unresolvable.
			tally.Withheld += len(spec.ExpiryTimes)
			continue
		}
		testDate := points[testIdx].Date

		for _, expiry := range spec.ExpiryTimes {
			expiryIdx := testIdx + expiry
			if expiryIdx >= n {
				// Incomplete future window: scoring it would bias
				// toward false successes.
				tally.Withheld++
				continue
			}

			minLow := math.Inf(1)
			breakIdx := -1
			for j := testIdx + 1; j <= expiryIdx; j++ {
				if points[j].Low < minLow {
					minLow = points[j].Low
				}
				if breakIdx < 0 && points[j].Low < ev.Level {
					breakIdx = j
				}
			}

			row := model.OutcomeRow{
				Symbol:          ev.Symbol,
				WindowDays:      ev.WindowDays,
				SupportDate:     ev.Date,
				SupportLevel:    ev.Level,
				WaitDays:        wait,
				TestDate:        testDate,
				ExpiryDays:      expiry,
				ExpiryDate:      points[expiryIdx].Date,
				Success:         breakIdx < 0,
				MinDuringOption: minLow,
			}
			if breakIdx >= 0 {
				daysToBreak := breakIdx - testIdx
				breakPct := (ev.Level - points[breakIdx].Low) / ev.Level
				row.DaysToBreak = &daysToBreak
				row.BreakPct = &breakPct
			}
			rows = append(rows, row)
			tally.Emitted++
		}
	}
	return rows, tally
}
