package model

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func row(symbol string, supportDay, wait, expiry int) OutcomeRow {
	return OutcomeRow{
		Symbol:      symbol,
		WindowDays:  30,
		SupportDate: day(supportDay),
		WaitDays:    wait,
		ExpiryDays:  expiry,
		Success:     true,
	}
}

func TestResultSet_MergeDeduplicates(t *testing.T) {
	rs := NewResultSet(30)

	added, dups := rs.Merge([]OutcomeRow{
		row("AAA", 1, 0, 7),
		row("AAA", 1, 0, 14),
		row("BBB", 1, 0, 7),
	})
	if added != 3 || dups != 0 {
		t.Fatalf("first merge: added=%d dups=%d, want 3/0", added, dups)
	}

	// Re-merging the same keys must drop them all, even if field values differ.
	dup := row("AAA", 1, 0, 7)
	dup.Success = false
	added, dups = rs.Merge([]OutcomeRow{dup, row("CCC", 2, 30, 7)})
	if added != 1 || dups != 1 {
		t.Fatalf("second merge: added=%d dups=%d, want 1/1", added, dups)
	}
	if rs.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", rs.Len())
	}

	// First-seen row wins on conflict.
	for _, r := range rs.Rows() {
		if r.Symbol == "AAA" && r.ExpiryDays == 7 && !r.Success {
			t.Error("duplicate overwrote the first-seen row")
		}
	}
}

func TestResultSet_HighWaterMark(t *testing.T) {
	rs := NewResultSet(30)
	if !rs.HighWaterMark().IsZero() {
		t.Error("empty set should have zero high-water mark")
	}

	rs.Merge([]OutcomeRow{row("AAA", 5, 0, 7), row("AAA", 12, 0, 7), row("BBB", 9, 0, 7)})
	if got := rs.HighWaterMark(); !got.Equal(day(12)) {
		t.Errorf("high-water mark = %v, want %v", got, day(12))
	}
}

func TestResultSet_SortOrder(t *testing.T) {
	rs := NewResultSet(30)
	rs.Merge([]OutcomeRow{
		row("BBB", 1, 0, 7),
		row("AAA", 2, 30, 7),
		row("AAA", 2, 0, 14),
		row("AAA", 1, 0, 7),
	})
	rs.Sort()

	rows := rs.Rows()
	want := []OutcomeRow{
		row("AAA", 1, 0, 7),
		row("AAA", 2, 0, 14),
		row("AAA", 2, 30, 7),
		row("BBB", 1, 0, 7),
	}
	for i := range want {
		if rows[i].Key() != want[i].Key() {
			t.Errorf("position %d: got %+v, want %+v", i, rows[i].Key(), want[i].Key())
		}
	}
}

func TestNewWindowSpec_FiltersLongWaits(t *testing.T) {
	spec := NewWindowSpec(30, DefaultWaitTimes, DefaultExpiryTimes)
	for _, w := range spec.WaitTimes {
		if w > 30 {
			t.Errorf("wait time %d exceeds 30-day window", w)
		}
	}
	if len(spec.WaitTimes) != 2 { // 0 and 30
		t.Errorf("expected wait times {0,30}, got %v", spec.WaitTimes)
	}

	spec365 := NewWindowSpec(365, DefaultWaitTimes, DefaultExpiryTimes)
	if len(spec365.WaitTimes) != len(DefaultWaitTimes) {
		t.Errorf("365-day window should keep all wait times, got %v", spec365.WaitTimes)
	}
}

func TestWindowSpec_NamesAndPrefixes(t *testing.T) {
	tests := []struct {
		days   int
		name   string
		prefix string
	}{
		{30, "1-Month", "1_month"},
		{90, "3-Month", "3_month"},
		{180, "6-Month", "6_month"},
		{270, "9-Month", "9_month"},
		{365, "1-Year", "1_year"},
		{45, "45-Day", "45_day"},
	}
	for _, tt := range tests {
		spec := NewWindowSpec(tt.days, DefaultWaitTimes, DefaultExpiryTimes)
		if spec.Name() != tt.name {
			t.Errorf("days %d: name %q, want %q", tt.days, spec.Name(), tt.name)
		}
		if spec.FilePrefix() != tt.prefix {
			t.Errorf("days %d: prefix %q, want %q", tt.days, spec.FilePrefix(), tt.prefix)
		}
	}
}

func TestWindowSpec_Validate(t *testing.T) {
	good := NewWindowSpec(90, DefaultWaitTimes, DefaultExpiryTimes)
	if err := good.Validate(); err != nil {
		t.Errorf("valid spec rejected: %v", err)
	}

	bad := WindowSpec{WindowDays: 30, WaitTimes: []int{60}, ExpiryTimes: []int{7}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for wait time exceeding window")
	}

	noExpiry := WindowSpec{WindowDays: 30, WaitTimes: []int{0}}
	if err := noExpiry.Validate(); err == nil {
		t.Error("expected error for empty expiry list")
	}
}
