// Package series provides the bounded, time-ordered price buffer that
// feeds the rolling-window analyzer.
package series

import "signalbotv1/internal/model"

// Cap is the maximum number of samples a Series retains.
const Cap = 50

// Series is a bounded FIFO of price samples in chronological order.
// It has value semantics: Append returns the updated series and callers
// must store the return. The zero value is an empty, usable series.
type Series struct {
	samples []model.Sample
}

// New creates a Series seeded with the given samples, trimmed to Cap.
func New(samples []model.Sample) Series {
	cp := make([]model.Sample, len(samples))
	copy(cp, samples)
	if len(cp) > Cap {
		cp = cp[len(cp)-Cap:]
	}
	return Series{samples: cp}
}

// Append returns the series with s added. When the bound is exceeded
// the oldest samples are evicted so the result holds exactly Cap.
func (sr Series) Append(s model.Sample) Series {
	next := make([]model.Sample, 0, len(sr.samples)+1)
	next = append(next, sr.samples...)
	next = append(next, s)
	if len(next) > Cap {
		next = next[len(next)-Cap:]
	}
	return Series{samples: next}
}

// Window returns the most recent n samples (fewer if unavailable),
// oldest first. The returned slice is a copy.
func (sr Series) Window(n int) []model.Sample {
	if n > len(sr.samples) {
		n = len(sr.samples)
	}
	if n <= 0 {
		return nil
	}
	out := make([]model.Sample, n)
	copy(out, sr.samples[len(sr.samples)-n:])
	return out
}

// Len returns the number of samples currently held.
func (sr Series) Len() int { return len(sr.samples) }

// Last returns the most recent sample and true, or a zero sample and
// false when the series is empty.
func (sr Series) Last() (model.Sample, bool) {
	if len(sr.samples) == 0 {
		return model.Sample{}, false
	}
	return sr.samples[len(sr.samples)-1], true
}

// Prices returns all held prices, oldest first.
func (sr Series) Prices() []float64 {
	out := make([]float64, len(sr.samples))
	for i, s := range sr.samples {
		out[i] = s.Price
	}
	return out
}
