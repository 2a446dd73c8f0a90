package calculator

import (
	"errors"
	"math"
)

// RollingMin computes the trailing minimum over a sliding window of the
// given length. out[i] holds min(values[i-window+1 .. i]); positions with
// fewer than window trailing observations are NaN (insufficient history
// is a gap, not an error).
//
// Uses a monotonic index deque so the whole series is processed in O(N)
// regardless of window length.
func RollingMin(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}

	out := make([]float64, len(values))
	deque := make([]int, 0, window) // indices of candidate minimums, values ascending

	for i, v := range values {
		// Drop indices that fell out of the window.
		if len(deque) > 0 && deque[0] <= i-window {
			deque = deque[1:]
		}
		// Drop candidates dominated by the new value.
		for len(deque) > 0 && values[deque[len(deque)-1]] >= v {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)

		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[deque[0]]
	}
	return out, nil
}
