package monitor

import (
	"sort"

	"github.com/shopspring/decimal"
)

// series is a per-second aggregate map whose key domain is always a
// contiguous integer range once it has seen its first update: a later
// second materialises zeros for every skipped second in between, per the
// gap-fill rule.
type series struct {
	values   map[int64]decimal.Decimal
	firstSec int64
	lastSec  int64
	hasData  bool
}

func newSeries() *series {
	return &series{values: make(map[int64]decimal.Decimal)}
}

// Add folds delta into the bucket for sec, gap-filling every second between
// the previously-seen last second and sec (exclusive) with zero.
func (s *series) Add(sec int64, delta decimal.Decimal) {
	if !s.hasData {
		s.values[sec] = delta
		s.firstSec = sec
		s.lastSec = sec
		s.hasData = true
		return
	}
	if sec > s.lastSec {
		for gap := s.lastSec + 1; gap < sec; gap++ {
			s.values[gap] = decimal.Zero
		}
		s.lastSec = sec
	}
	s.values[sec] = s.values[sec].Add(delta)
}

// Last5InRange returns, sorted ascending, the values of the most recent up
// to 5 seconds that both exist in the series and fall within
// [from, to] inclusive. Returns fewer than 5 if the series doesn't have
// that much history in range.
func (s *series) Last5InRange(from, to int64) []decimal.Decimal {
	var secs []int64
	for sec := range s.values {
		if sec >= from && sec <= to {
			secs = append(secs, sec)
		}
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i] < secs[j] })
	if len(secs) > 5 {
		secs = secs[len(secs)-5:]
	}
	out := make([]decimal.Decimal, len(secs))
	for i, sec := range secs {
		out[i] = s.values[sec]
	}
	return out
}
