package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"signalbotv1/internal/feed"
	"signalbotv1/internal/model"
	"signalbotv1/internal/strategy"
)

// constSource always yields the same value, making the uniform draw a
// constant: Float64() == v/2^63. With 1<<62 that is exactly 0.5, which
// turns the walk step into zero (flat prices).
type constSource struct{ v int64 }

func (s *constSource) Int63() int64 { return s.v }
func (s *constSource) Seed(int64)   {}

func flatWalker() *feed.Walker {
	return feed.NewWalker(rand.New(&constSource{v: 1 << 62}))
}

// risingWalker draws 0.875 each step: +0.375% per tick.
func risingWalker() *feed.Walker {
	return feed.NewWalker(rand.New(&constSource{v: 1<<62 | 1<<61 | 1<<60}))
}

func newTestScheduler(w *feed.Walker) *Scheduler {
	gen := strategy.New(rand.New(rand.NewSource(42)))
	return New(Config{
		Symbol:       "SIM",
		BasePrice:    100,
		TickInterval: 2 * time.Millisecond,
		UpdateBuffer: 1024,
	}, w, gen)
}

// collectUntil drains updates until one with Tick >= n arrives.
func collectUntil(t *testing.T, s *Scheduler, n int64) []model.Update {
	t.Helper()
	var got []model.Update
	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-s.Updates():
			got = append(got, u)
			if u.Tick >= n {
				return got
			}
		case <-deadline:
			t.Fatalf("timed out waiting for tick %d (got %d updates)", n, len(got))
		}
	}
}

func TestScheduler_InitialUpdateBeforeTicking(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	defer s.Stop()

	select {
	case u := <-s.Updates():
		if u.Tick != 0 {
			t.Fatalf("first update Tick = %d, want 0", u.Tick)
		}
		if u.Signal != nil {
			t.Errorf("initial update carried a signal: %+v", u.Signal)
		}
		if len(u.Samples) != model.ChartTail {
			t.Errorf("initial update has %d samples, want %d", len(u.Samples), model.ChartTail)
		}
		if u.Analysis.Trend == "" {
			t.Error("initial update missing analysis")
		}
	case <-time.After(time.Second):
		t.Fatal("no initial update published")
	}
}

func TestScheduler_FlatRunNoSignalThroughSixTicks(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	defer s.Stop()

	updates := collectUntil(t, s, 6)
	for _, u := range updates {
		if u.Signal != nil {
			t.Fatalf("tick %d: signal %+v on a flat feed", u.Tick, u.Signal)
		}
	}

	// Tick 6 was eligible: the generator ran and still said nil.
	last := updates[len(updates)-1]
	if last.Tick != 6 {
		t.Fatalf("last tick = %d, want 6", last.Tick)
	}
	if last.Analysis.ClearPattern {
		t.Error("flat feed reported a clear pattern")
	}
}

func TestScheduler_BuySignalOnEligibleTick(t *testing.T) {
	s := newTestScheduler(risingWalker())
	s.Start()
	defer s.Stop()

	updates := collectUntil(t, s, 6)
	for _, u := range updates {
		if u.Tick < 6 && u.Signal != nil {
			t.Fatalf("tick %d: signal before first eligible tick", u.Tick)
		}
	}

	last := updates[len(updates)-1]
	if last.Signal == nil {
		t.Fatalf("tick 6: expected BUY signal, got none (analysis %+v)", last.Analysis)
	}
	if last.Signal.Type != model.SignalBuy {
		t.Errorf("signal type = %q, want BUY", last.Signal.Type)
	}
	if last.Signal.Confidence < 80 || last.Signal.Confidence > 99 {
		t.Errorf("confidence = %d, want [80,99]", last.Signal.Confidence)
	}

	select {
	case sig := <-s.Signals():
		if sig.Type != model.SignalBuy {
			t.Errorf("Signals() delivered %q, want BUY", sig.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("new signal not forwarded on Signals()")
	}

	if s.LastSignalTime().IsZero() {
		t.Error("LastSignalTime not recorded")
	}
}

func TestScheduler_SignalHeldBetweenEligibleTicks(t *testing.T) {
	s := newTestScheduler(risingWalker())
	s.Start()
	defer s.Stop()

	updates := collectUntil(t, s, 11)
	var sixth *model.Update
	for i := range updates {
		if updates[i].Tick == 6 {
			sixth = &updates[i]
		}
	}
	if sixth == nil || sixth.Signal == nil {
		t.Fatal("no signal on tick 6")
	}

	// Ticks 7..11 are ineligible: the tick-6 signal must be held, not
	// cleared.
	for _, u := range updates {
		if u.Tick > 6 && u.Tick < 12 {
			if u.Signal == nil {
				t.Fatalf("tick %d: held signal was cleared", u.Tick)
			}
			if !u.Signal.Timestamp.Equal(sixth.Signal.Timestamp) {
				t.Fatalf("tick %d: signal refreshed on ineligible tick", u.Tick)
			}
		}
	}
}

func TestScheduler_DoubleStartSingleStream(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	s.Start() // must not spawn a second tick stream
	defer s.Stop()

	updates := collectUntil(t, s, 10)

	// A doubled stream would break the strictly sequential tick numbers.
	want := int64(0)
	for _, u := range updates {
		if u.Tick != want {
			t.Fatalf("tick sequence broken: got %d, want %d", u.Tick, want)
		}
		want++
	}
}

func TestScheduler_StopHaltsTicks(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	collectUntil(t, s, 3)
	s.Stop()

	if s.Active() {
		t.Error("Active() = true after Stop")
	}

	snap := s.Snapshot()
	time.Sleep(20 * time.Millisecond) // ~10 intervals
	after := s.Snapshot()
	if after.Tick != snap.Tick {
		t.Errorf("ticks continued after Stop: %d → %d", snap.Tick, after.Tick)
	}

	// Last known state is retained for display.
	if after.Analysis.Trend == "" || len(after.Samples) == 0 {
		t.Error("state not retained after Stop")
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Stop() // never started: no-op
	s.Start()
	s.Stop()
	s.Stop() // second stop: no-op
}

func TestScheduler_Restart(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	collectUntil(t, s, 2)
	s.Stop()

	// Drain anything still buffered before restarting.
	for {
		select {
		case <-s.Updates():
			continue
		default:
		}
		break
	}

	s.Start()
	defer s.Stop()
	updates := collectUntil(t, s, 1)
	if updates[0].Tick != 0 {
		t.Errorf("restart did not reseed: first tick = %d", updates[0].Tick)
	}
}

func TestScheduler_SeriesStaysBounded(t *testing.T) {
	s := newTestScheduler(flatWalker())
	s.Start()
	defer s.Stop()

	updates := collectUntil(t, s, 40)
	for _, u := range updates {
		if len(u.Samples) > model.ChartTail {
			t.Fatalf("tick %d: update carries %d samples, cap %d", u.Tick, len(u.Samples), model.ChartTail)
		}
	}
}
