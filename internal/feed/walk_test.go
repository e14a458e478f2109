package feed

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestWalker_NextBounded(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(1)))

	last := 100.0
	for i := 0; i < 1000; i++ {
		next := w.Next(last)
		maxStep := 0.5 * volatilityFactor * last
		if diff := math.Abs(next - last); diff > maxStep+0.005 { // +0.005 rounding slack
			t.Fatalf("step %d: |%v - %v| = %v exceeds bound %v", i, next, last, diff, maxStep)
		}
		// 2dp rounding
		if got := math.Round(next*100) / 100; got != next {
			t.Fatalf("step %d: price %v not rounded to 2dp", i, next)
		}
		last = next
	}
}

func TestWalker_Deterministic(t *testing.T) {
	a := NewWalker(rand.New(rand.NewSource(99)))
	b := NewWalker(rand.New(rand.NewSource(99)))
	last := 100.0
	for i := 0; i < 50; i++ {
		pa, pb := a.Next(last), b.Next(last)
		if pa != pb {
			t.Fatalf("step %d: same seed diverged: %v vs %v", i, pa, pb)
		}
		last = pa
	}
}

func TestWalker_SeedWindow(t *testing.T) {
	w := NewWalker(rand.New(rand.NewSource(5)))
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	samples := w.SeedWindow(20, 100, 5*time.Second, now)
	if len(samples) != 20 {
		t.Fatalf("len = %d, want 20", len(samples))
	}
	// Last sample anchored at now, spaced 5s backward
	if samples[19].Time != "10:30:00" {
		t.Errorf("last label = %q, want 10:30:00", samples[19].Time)
	}
	if samples[0].Time != "10:28:25" {
		t.Errorf("first label = %q, want 10:28:25", samples[0].Time)
	}
	for i, s := range samples {
		if s.Price < 95 || s.Price > 105 {
			t.Errorf("sample %d price %v outside base±5", i, s.Price)
		}
	}
}
