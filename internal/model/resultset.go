package model

import (
	"sort"
	"time"
)

// ResultSet is the deduplicated collection of outcome rows for one window
// length. It is the unit the reconciliation engine works against: the
// high-water mark it exposes bounds incremental recomputation, and Merge
// enforces the no-duplicate-keys invariant.
type ResultSet struct {
	WindowDays int

	rows []OutcomeRow
	keys map[OutcomeKey]struct{}
}

// NewResultSet creates an empty ResultSet for the given window length.
func NewResultSet(windowDays int) *ResultSet {
	return &ResultSet{
		WindowDays: windowDays,
		keys:       make(map[OutcomeKey]struct{}),
	}
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int { return len(rs.rows) }

// Rows returns the rows in their current order. The slice is shared;
// callers must not modify it.
func (rs *ResultSet) Rows() []OutcomeRow { return rs.rows }

// Contains reports whether a row with the given key is already present.
func (rs *ResultSet) Contains(k OutcomeKey) bool {
	_, ok := rs.keys[k]
	return ok
}

// Add appends a single row unless its key is already present. It
// reports whether the row was added.
func (rs *ResultSet) Add(r OutcomeRow) bool {
	k := r.Key()
	if _, ok := rs.keys[k]; ok {
		return false
	}
	rs.keys[k] = struct{}{}
	rs.rows = append(rs.rows, r)
	return true
}

// Merge appends rows whose keys are not yet present, keeping the
// first-seen row on conflict. It returns the number of rows added and
// the number of duplicates dropped.
func (rs *ResultSet) Merge(rows []OutcomeRow) (added, duplicates int) {
	for _, r := range rows {
		k := r.Key()
		if _, ok := rs.keys[k]; ok {
			duplicates++
			continue
		}
		rs.keys[k] = struct{}{}
		rs.rows = append(rs.rows, r)
		added++
	}
	return added, duplicates
}

// HighWaterMark returns the maximum support date across the set, or the
// zero time when the set is empty.
func (rs *ResultSet) HighWaterMark() time.Time {
	var max time.Time
	for _, r := range rs.rows {
		if r.SupportDate.After(max) {
			max = r.SupportDate
		}
	}
	return max
}

// Sort orders the rows by (symbol, support date, wait days, expiry days).
func (rs *ResultSet) Sort() {
	sort.Slice(rs.rows, func(i, j int) bool {
		a, b := rs.rows[i], rs.rows[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if !a.SupportDate.Equal(b.SupportDate) {
			return a.SupportDate.Before(b.SupportDate)
		}
		if a.WaitDays != b.WaitDays {
			return a.WaitDays < b.WaitDays
		}
		return a.ExpiryDays < b.ExpiryDays
	})
}
