package engine

import (
	"fmt"
	"strings"
	"time"
)

// WindowSummary reports what one window length's run did. The counters
// make silent data loss observable: every candidate row is either
// appended, withheld, wait-excluded, or dropped as a duplicate.
type WindowSummary struct {
	WindowDays        int
	Name              string
	SymbolsProcessed  int
	SymbolsSkipped    int // insufficient history for this window
	SymbolsFailed     int // data integrity or panic, isolated per symbol
	EventsTested      int
	RowsAppended      int
	RowsWithheld      int // expiry window past the end of the data
	WaitExcluded      int // support broke before the test day
	DuplicatesDropped int
	TotalRows         int
	HighWaterMark     time.Time
}

// Summary reports a whole run across all window lengths.
type Summary struct {
	Started  time.Time
	Finished time.Time
	Windows  []WindowSummary
}

// String renders the end-of-run report.
func (s *Summary) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Analysis run %s → %s (%s)\n",
		s.Started.Format("2006-01-02 15:04:05"),
		s.Finished.Format("15:04:05"),
		s.Finished.Sub(s.Started).Round(time.Millisecond)))

	for _, w := range s.Windows {
		b.WriteString(fmt.Sprintf("\n%s (%d days):\n", w.Name, w.WindowDays))
		b.WriteString(fmt.Sprintf("  symbols: %d processed, %d skipped, %d failed\n",
			w.SymbolsProcessed, w.SymbolsSkipped, w.SymbolsFailed))
		b.WriteString(fmt.Sprintf("  events tested: %d\n", w.EventsTested))
		b.WriteString(fmt.Sprintf("  rows: %d appended, %d withheld, %d wait-excluded, %d duplicates dropped\n",
			w.RowsAppended, w.RowsWithheld, w.WaitExcluded, w.DuplicatesDropped))
		if w.HighWaterMark.IsZero() {
			b.WriteString(fmt.Sprintf("  result set: %d rows\n", w.TotalRows))
		} else {
			b.WriteString(fmt.Sprintf("  result set: %d rows through %s\n",
				w.TotalRows, w.HighWaterMark.Format("2006-01-02")))
		}
	}
	return b.String()
}
