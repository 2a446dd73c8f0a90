package model

import "time"

// SupportEvent is a candidate support level: the rolling minimum low over
// the trailing window ending at Date. Index is the position of Date within
// the symbol's price series, used for trading-day arithmetic downstream.
type SupportEvent struct {
	Symbol     string
	WindowDays int
	Date       time.Time
	Level      float64
	Index      int
}

// OutcomeRow records the result of one (support event, wait, expiry) test.
// DaysToBreak and BreakPct are set only when the support failed during the
// option period: DaysToBreak counts trading days from the test date to the
// first breach, BreakPct is (level - breachLow) / level as a positive fraction.
type OutcomeRow struct {
	Symbol          string
	WindowDays      int
	SupportDate     time.Time
	SupportLevel    float64
	WaitDays        int
	TestDate        time.Time
	ExpiryDays      int
	ExpiryDate      time.Time
	Success         bool
	MinDuringOption float64
	DaysToBreak     *int
	BreakPct        *float64
}

// OutcomeKey uniquely identifies an OutcomeRow within one window length.
// Dates are keyed by calendar day in UTC.
type OutcomeKey struct {
	Symbol      string
	SupportDate string
	WaitDays    int
	ExpiryDays  int
}

// Key returns the deduplication key for the row.
func (r OutcomeRow) Key() OutcomeKey {
	return OutcomeKey{
		Symbol:      r.Symbol,
		SupportDate: r.SupportDate.Format("2006-01-02"),
		WaitDays:    r.WaitDays,
		ExpiryDays:  r.ExpiryDays,
	}
}
