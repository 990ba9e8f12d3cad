package netstate

import (
	"sort"
	"time"
)

// Band pairs an elapsed-time ceiling with the probe interval used while the
// time spent in the current connectivity state is below that ceiling.
type Band struct {
	Below    time.Duration // exclusive upper bound on time in current state
	Interval time.Duration // probe interval while elapsed < Below
}

// Schedule maps how long the current state has persisted to a probe
// interval. Bands are evaluated in ascending order and the first band whose
// ceiling exceeds the elapsed time wins; Fallback covers everything beyond
// the last band. Probing slows down as a state persists, trading
// responsiveness for resource cost.
type Schedule struct {
	Bands    []Band
	Fallback time.Duration
}

// DefaultSchedule returns the stock five-bucket schedule:
// <1m probe every 5s, <10m every 10s, <1h every 30s, <10h every 10m,
// beyond that hourly.
func DefaultSchedule() Schedule {
	return Schedule{
		Bands: []Band{
			{Below: time.Minute, Interval: 5 * time.Second},
			{Below: 10 * time.Minute, Interval: 10 * time.Second},
			{Below: time.Hour, Interval: 30 * time.Second},
			{Below: 10 * time.Hour, Interval: 10 * time.Minute},
		},
		Fallback: time.Hour,
	}
}

// IntervalFor selects the probe interval for the given time in state.
func (s Schedule) IntervalFor(elapsed time.Duration) time.Duration {
	for _, b := range s.Bands {
		if elapsed < b.Below {
			return b.Interval
		}
	}

	return s.Fallback
}

// normalized returns a copy with bands sorted by ascending ceiling, so a
// schedule assembled from config in arbitrary order still evaluates
// first-match-wins correctly. A zero-valued schedule falls back to the
// defaults.
func (s Schedule) normalized() Schedule {
	if len(s.Bands) == 0 && s.Fallback == 0 {
		return DefaultSchedule()
	}

	out := Schedule{
		Bands:    make([]Band, len(s.Bands)),
		Fallback: s.Fallback,
	}
	copy(out.Bands, s.Bands)

	sort.SliceStable(out.Bands, func(i, j int) bool {
		return out.Bands[i].Below < out.Bands[j].Below
	})

	if out.Fallback <= 0 {
		out.Fallback = DefaultSchedule().Fallback
	}

	return out
}
