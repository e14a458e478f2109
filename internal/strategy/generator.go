// Package strategy turns market analysis snapshots into discrete trading
// signals.
//
// A signal is only considered when the analysis reports a clear pattern
// (volatility and momentum both above their gates) AND momentum exceeds
// the action threshold. Everything else yields nil — downstream treats
// nil as "hold".
package strategy

import (
	"fmt"
	"math/rand"
	"time"

	"signalbotv1/internal/model"
)

const (
	// momentumActionThreshold gates BUY/SELL on top of ClearPattern.
	momentumActionThreshold = 0.5

	confidenceFloor = 80
	confidenceSpan  = 20 // draws land in [80,99]
)

// Generator produces signals from (price, analysis) pairs.
//
// The rand source feeds the confidence draw only. Confidence is a
// presentation-grade score shown to the user, intentionally NOT derived
// from the analysis — do not "fix" it to something computed.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New creates a Generator with the given rand source.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, now: time.Now}
}

// NewWithClock creates a Generator with an injected clock for tests.
func NewWithClock(rng *rand.Rand, now func() time.Time) *Generator {
	return &Generator{rng: rng, now: now}
}

// Generate returns a signal for the current price, or nil when no
// actionable condition holds. Pure aside from the confidence draw.
func (g *Generator) Generate(price float64, a model.Analysis) *model.Signal {
	if !a.ClearPattern {
		return nil
	}

	var typ model.SignalType
	var reason string
	switch {
	case a.Trend == model.TrendBullish && a.Momentum > momentumActionThreshold:
		typ = model.SignalBuy
		reason = fmt.Sprintf("Strong bullish momentum (%v%%)", a.Momentum)
	case a.Trend == model.TrendBearish && a.Momentum > momentumActionThreshold:
		typ = model.SignalSell
		reason = fmt.Sprintf("Strong bearish momentum (%v%%)", a.Momentum)
	default:
		// Clear pattern but momentum at or below threshold, or no trend.
		return nil
	}

	return &model.Signal{
		Type:       typ,
		Price:      price,
		Timestamp:  g.now(),
		Confidence: confidenceFloor + g.rng.Intn(confidenceSpan),
		Reason:     reason,
	}
}
