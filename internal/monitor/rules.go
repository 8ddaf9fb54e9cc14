package monitor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Thresholds configures the termination rules. Defaults per the original
// pipeline: min_holders=15, holder_check_sec=20, price_min_increase=0.20,
// price_check_sec=10.
type Thresholds struct {
	MinHolders       int
	HolderCheckSec   time.Duration
	PriceMinIncrease decimal.Decimal
	PriceCheckSec    time.Duration
}

// DefaultThresholds returns the pipeline's default termination thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinHolders:       15,
		HolderCheckSec:   20 * time.Second,
		PriceMinIncrease: decimal.NewFromFloat(0.20),
		PriceCheckSec:    10 * time.Second,
	}
}

const momentumWindow = 7 * time.Second
const momentumSampleCount = 5

// Verdict reports whether a termination rule fired and which one.
type Verdict struct {
	ShouldExit bool
	Reason     string
}

// Evaluate runs the four termination rules against snap (and, for the
// momentum rule, the state's raw aggregates) at wall time now.
func Evaluate(state *State, snap Snapshot, thresholds Thresholds, now time.Time) Verdict {
	elapsed := now.Sub(snap.StartedAt)

	if elapsed >= 10*time.Second && snap.HolderCount == 0 {
		return Verdict{ShouldExit: true, Reason: "no holders after 10s"}
	}

	if elapsed >= thresholds.HolderCheckSec && snap.HolderCount < thresholds.MinHolders {
		return Verdict{ShouldExit: true, Reason: fmt.Sprintf(
			"holder count %d below minimum %d after %s", snap.HolderCount, thresholds.MinHolders, thresholds.HolderCheckSec)}
	}

	if elapsed >= thresholds.PriceCheckSec && snap.HasPrice {
		expected := snap.FirstSamplePrice.Mul(decimal.NewFromInt(1).Add(thresholds.PriceMinIncrease))
		if snap.Price.LessThan(expected) {
			return Verdict{ShouldExit: true, Reason: fmt.Sprintf(
				"price %s below required increase target %s after %s", snap.Price, expected, thresholds.PriceCheckSec)}
		}
	}

	if momentumMatches(state, now) {
		return Verdict{ShouldExit: true, Reason: "momentum matched: price, buyers, and volume trending up"}
	}

	return Verdict{}
}

func momentumMatches(state *State, now time.Time) bool {
	to := now.Unix()
	from := to - int64(momentumWindow/time.Second) + 1

	price, buyers, volume := state.momentumSeries(from, to)
	return isNonDecreasingOf5(price) && isNonDecreasingOf5(buyers) && isNonDecreasingOf5(volume)
}

func isNonDecreasingOf5(samples []decimal.Decimal) bool {
	if len(samples) < momentumSampleCount {
		return false
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].LessThan(samples[i-1]) {
			return false
		}
	}
	return true
}
