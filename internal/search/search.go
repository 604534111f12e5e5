package search

import (
	"errors"
	"fmt"

	"github.com/gpuscale/autotune/pkg/logger"
)

// Probe runs the job under test at a candidate parameter value. A nil return
// means the run succeeded; any error means the candidate is too high. The
// search assumes success is monotone non-increasing in the candidate value
// and does not verify it.
type Probe func(value int) error

// ErrNoViableValue is returned when the probe fails for every candidate down
// to the lowest positive value.
var ErrNoViableValue = errors.New("no viable parameter value")

// Find returns the largest candidate value, within margin of the true
// success/failure boundary, for which probe succeeds. low seeds the search
// and must be positive; margin is the tolerance at which bisection stops.
//
// The search has three sequential phases: halve low until a probe succeeds
// (a candidate of 0 is a sentinel and is never probed), double the successful
// value until a probe fails, then bisect the resulting bracket.
func Find(low, margin int, probe Probe) (int, error) {
	if low <= 0 {
		return 0, fmt.Errorf("low must be positive, got %d", low)
	}
	if margin <= 0 {
		return 0, fmt.Errorf("margin must be positive, got %d", margin)
	}
	if probe == nil {
		return 0, fmt.Errorf("probe function is required")
	}

	// Phase 1: lower the starting value until a run succeeds.
	logger.Info("trying parameter value", "value", low)
	err := probe(low)
	success := err == nil
	if !success {
		logger.Warn("run failed, the starting value is itself too high", "value", low, "cause", err)
	}

	for !success && low > 0 {
		low = low / 2
		if low == 0 {
			break
		}
		logger.Info("trying parameter value", "value", low)
		if err := probe(low); err != nil {
			logger.Warn("run failed, lowering the parameter value", "value", low, "cause", err)
		} else {
			success = true
		}
	}

	if !success {
		logger.Error("the run failed even at the lowest parameter value")
		return 0, ErrNoViableValue
	}

	// Phase 2: double until a run fails, establishing the bracket
	// [low successful, high failing].
	var high int
	for {
		high = 2 * low
		logger.Info("trying parameter value", "value", high)
		if err := probe(high); err != nil {
			logger.Info("run failed, bracket established", "low", low, "high", high, "cause", err)
			break
		}
		low = high
	}

	// Phase 3: bisect until the bracket is within the margin. The gap
	// strictly shrinks every iteration, so this terminates.
	for high-low > margin {
		mid := (low + high) / 2
		logger.Info("trying parameter value", "value", mid)
		if err := probe(mid); err != nil {
			high = mid
			logger.Info("run failed, bracket narrowed", "low", low, "high", high, "cause", err)
		} else {
			low = mid
			logger.Info("run succeeded, bracket narrowed", "low", low, "high", high)
		}
	}

	logger.Info("parameter value selected", "value", low)
	return low, nil
}
