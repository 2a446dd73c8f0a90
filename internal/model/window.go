package model

import (
	"fmt"
	"strings"
)

// Default analysis grid. Wait times longer than the window length that
// defined the support are meaningless, so NewWindowSpec filters them out.
var (
	DefaultWindowDays  = []int{30, 90, 180, 270, 365}
	DefaultWaitTimes   = []int{0, 30, 60, 90, 120, 180}
	DefaultExpiryTimes = []int{7, 14, 21, 30, 45}
)

// windowNames maps window lengths to their report labels.
var windowNames = map[int]string{
	30:  "1-Month",
	90:  "3-Month",
	180: "6-Month",
	270: "9-Month",
	365: "1-Year",
}

// WindowSpec describes the full test grid for one rolling-low period:
// the lookback length in trading days, the admissible wait times before
// the hypothetical option is written, and the option expiry lengths.
type WindowSpec struct {
	WindowDays  int
	WaitTimes   []int
	ExpiryTimes []int
}

// NewWindowSpec builds a WindowSpec for the given window length, keeping
// only wait times that do not exceed the window itself.
func NewWindowSpec(windowDays int, waitTimes, expiryTimes []int) WindowSpec {
	waits := make([]int, 0, len(waitTimes))
	for _, w := range waitTimes {
		if w <= windowDays {
			waits = append(waits, w)
		}
	}
	return WindowSpec{
		WindowDays:  windowDays,
		WaitTimes:   waits,
		ExpiryTimes: append([]int(nil), expiryTimes...),
	}
}

// DefaultWindowSpecs returns the standard five-period grid.
func DefaultWindowSpecs() []WindowSpec {
	specs := make([]WindowSpec, 0, len(DefaultWindowDays))
	for _, d := range DefaultWindowDays {
		specs = append(specs, NewWindowSpec(d, DefaultWaitTimes, DefaultExpiryTimes))
	}
	return specs
}

// Name returns the report label for the window length ("1-Month", "1-Year", ...).
// Unlabelled lengths fall back to a day count.
func (w WindowSpec) Name() string {
	if name, ok := windowNames[w.WindowDays]; ok {
		return name
	}
	return fmt.Sprintf("%d-Day", w.WindowDays)
}

// FilePrefix returns the lower-case, underscore-separated form of Name,
// used to derive per-window output file names ("1_month", "1_year", ...).
func (w WindowSpec) FilePrefix() string {
	return strings.ReplaceAll(strings.ToLower(w.Name()), "-", "_")
}

// Validate checks the spec invariants.
func (w WindowSpec) Validate() error {
	if w.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", w.WindowDays)
	}
	for _, wait := range w.WaitTimes {
		if wait < 0 {
			return fmt.Errorf("wait time must be non-negative, got %d", wait)
		}
		if wait > w.WindowDays {
			return fmt.Errorf("wait time %d exceeds window length %d", wait, w.WindowDays)
		}
	}
	if len(w.ExpiryTimes) == 0 {
		return fmt.Errorf("at least one expiry time is required")
	}
	for _, e := range w.ExpiryTimes {
		if e <= 0 {
			return fmt.Errorf("expiry time must be positive, got %d", e)
		}
	}
	return nil
}

// Horizon returns the maximum number of trading days a test grid can
// reach past its support date (longest wait plus longest expiry).
func (w WindowSpec) Horizon() int {
	maxWait, maxExpiry := 0, 0
	for _, wait := range w.WaitTimes {
		if wait > maxWait {
			maxWait = wait
		}
	}
	for _, e := range w.ExpiryTimes {
		if e > maxExpiry {
			maxExpiry = e
		}
	}
	return maxWait + maxExpiry
}
