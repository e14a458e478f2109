// Package analyzer derives rolling market statistics from the price series.
//
// Analyze is a pure function: identical input windows always produce
// identical snapshots. The heuristics are intentionally simple (window
// averages and range), not validated indicators.
package analyzer

import (
	"math"

	"signalbotv1/internal/model"
	"signalbotv1/internal/series"
)

const (
	// minSamples is the analysis floor; below it the snapshot is neutral.
	minSamples = 10
	recentLen  = 10
	olderLen   = 10

	volatilityThreshold = 0.5
	momentumThreshold   = 0.3
)

// Analyze computes a market snapshot from the series' trailing window.
//
// The recent sub-window is the last 10 samples, the older sub-window the
// up-to-10 samples preceding those. With between 10 and 19 samples the
// older sub-window is short; we average over whatever exists. With exactly
// 10 samples there are no older samples at all: momentum is 0 and the
// trend reports Bearish, since there is nothing to compare against.
//
// Equal averages also classify as Bearish — the comparison is strictly
// recentAvg > olderAvg, and signal suppression downstream depends on that
// tie-break, so it must not be loosened to >=.
func Analyze(sr series.Series) model.Analysis {
	if sr.Len() < minSamples {
		return model.Analysis{
			Trend:        model.TrendInsufficient,
			Volatility:   0,
			Momentum:     0,
			ClearPattern: false,
		}
	}

	window := sr.Window(recentLen + olderLen)
	split := len(window) - recentLen
	older := window[:split] // may be short, or empty at exactly 10 samples
	recent := window[split:]

	recentAvg := mean(recent)
	olderAvg := mean(older)

	// With no older samples there is no basis for comparison; the strict
	// inequality below must not degenerate into recentAvg > 0.
	trend := model.TrendBearish
	if len(older) > 0 && recentAvg > olderAvg {
		trend = model.TrendBullish
	}

	lo, hi := recent[0].Price, recent[0].Price
	for _, s := range recent[1:] {
		if s.Price > hi {
			hi = s.Price
		}
		if s.Price < lo {
			lo = s.Price
		}
	}
	volatility := round2((hi - lo) / recentAvg * 100)

	// Degenerate-division guard: synthetic prices never reach 0 in
	// practice, but a zero olderAvg must yield momentum 0, not NaN/Inf.
	momentum := 0.0
	if olderAvg != 0 {
		momentum = round2(math.Abs(recentAvg-olderAvg) / olderAvg * 100)
	}

	return model.Analysis{
		Trend:        trend,
		Volatility:   volatility,
		Momentum:     momentum,
		ClearPattern: volatility > volatilityThreshold && momentum > momentumThreshold,
	}
}

func mean(samples []model.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.Price
	}
	return sum / float64(len(samples))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
