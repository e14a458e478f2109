// Package feed simulates the streaming price source with a bounded
// random walk. It is the only randomness in the tick path besides the
// signal confidence draw; both take injected rand sources so tests stay
// deterministic.
package feed

import (
	"math"
	"math/rand"
	"time"

	"signalbotv1/internal/model"
)

const (
	// volatilityFactor bounds each walk step to ±0.5% of the last price.
	volatilityFactor = 0.01

	// seedSpread is the ± range around the base price when seeding the
	// initial window.
	seedSpread = 10.0
)

// Walker produces successive prices of the simulated feed.
type Walker struct {
	rng *rand.Rand
}

// NewWalker creates a Walker backed by the given rand source.
func NewWalker(rng *rand.Rand) *Walker {
	return &Walker{rng: rng}
}

// Next applies one bounded random-walk step to last:
// next = last + uniform(-0.5,0.5) * volatilityFactor * last, rounded to
// 2 decimals.
func (w *Walker) Next(last float64) float64 {
	change := (w.rng.Float64() - 0.5) * volatilityFactor * last
	return round2(last + change)
}

// SeedWindow builds n samples anchored at base price, spaced interval
// apart and ending at now. Prices scatter uniformly within ±seedSpread/2
// of base, matching the feed's warm-up behavior.
func (w *Walker) SeedWindow(n int, base float64, interval time.Duration, now time.Time) []model.Sample {
	out := make([]model.Sample, n)
	for i := 0; i < n; i++ {
		ts := now.Add(-time.Duration(n-1-i) * interval)
		out[i] = model.Sample{
			Time:  ClockLabel(ts),
			Price: round2(base + (w.rng.Float64()-0.5)*seedSpread),
		}
	}
	return out
}

// ClockLabel formats a timestamp as the chart axis label.
func ClockLabel(t time.Time) string {
	return t.Format("15:04:05")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
