// Package recorder persists outcome rows between runs. The durable store
// is what incremental reconciliation resumes from: it must never contain
// duplicate keys or rows from a partially written batch.
package recorder

import "github.com/datamilo/StockPriceStats/internal/model"

// Recorder is the persistence boundary for per-window result sets.
type Recorder interface {
	// LoadResultSet returns the persisted rows for one window length,
	// ordered by (symbol, support date, wait days, expiry days). An
	// empty set is returned when nothing has been persisted yet.
	LoadResultSet(windowDays int) (*model.ResultSet, error)

	// AppendRows durably appends rows for one window length, skipping
	// any whose key is already present. It returns the number of rows
	// actually inserted.
	AppendRows(windowDays int, rows []model.OutcomeRow) (int, error)

	// Reset discards all persisted rows for one window length. Used by
	// explicit full recomputes, which replace the entire set.
	Reset(windowDays int) error

	Close() error
}
