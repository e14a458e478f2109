// Package scheduler drives the periodic tick cadence: each tick draws a
// new price from the walk, appends it to the bounded series, recomputes
// the analysis, and (on eligible ticks) consults the signal generator.
//
// Ticks run strictly sequentially in a single goroutine that owns the
// sole time.Ticker handle; Stop releases it and waits for the goroutine
// to exit, so no tick can fire after Stop returns.
package scheduler

import (
	"log"
	"sync"
	"time"

	"signalbotv1/internal/analyzer"
	"signalbotv1/internal/feed"
	"signalbotv1/internal/model"
	"signalbotv1/internal/series"
	"signalbotv1/internal/strategy"
)

// Config holds the scheduler's tunables.
type Config struct {
	Symbol       string
	BasePrice    float64       // anchor for the seeded window
	TickInterval time.Duration // T between ticks
	SeedSamples  int           // initial synthetic window size
	SignalEvery  int64         // generator consulted every Nth tick
	UpdateBuffer int           // capacity of the updates channel
}

// Defaults mirror the reference feed behavior.
func (c *Config) applyDefaults() {
	if c.BasePrice == 0 {
		c.BasePrice = 100
	}
	if c.TickInterval == 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.SeedSamples == 0 {
		c.SeedSamples = 20
	}
	if c.SignalEvery == 0 {
		c.SignalEvery = 6
	}
	if c.UpdateBuffer == 0 {
		c.UpdateBuffer = 256
	}
}

// Scheduler owns the session state of one simulated feed.
type Scheduler struct {
	cfg    Config
	walker *feed.Walker
	gen    *strategy.Generator
	now    func() time.Time

	mu             sync.Mutex
	series         series.Series
	currentSignal  *model.Signal
	lastSignalTime time.Time
	lastUpdate     model.Update
	active         bool
	tick           int64
	stopCh         chan struct{}
	done           chan struct{}

	updateCh chan model.Update
	signalCh chan model.Signal

	// OnDropUpdate is called when the updates channel is full and an
	// update is dropped. Optional, set before Start.
	OnDropUpdate func()

	// OnTickDone reports each tick's processing duration. Optional,
	// set before Start.
	OnTickDone func(time.Duration)
}

// New creates a Scheduler in the Idle state.
func New(cfg Config, walker *feed.Walker, gen *strategy.Generator) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{
		cfg:      cfg,
		walker:   walker,
		gen:      gen,
		now:      time.Now,
		updateCh: make(chan model.Update, cfg.UpdateBuffer),
		signalCh: make(chan model.Signal, 16),
	}
}

// SetClock injects a clock for tests. Must be called before Start.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Updates is the per-tick stream consumed by display collaborators.
// Never closed: the scheduler is restartable.
func (s *Scheduler) Updates() <-chan model.Update { return s.updateCh }

// Signals carries only newly generated non-nil signals, for notification
// delivery.
func (s *Scheduler) Signals() <-chan model.Signal { return s.signalCh }

// Start transitions Idle → Running: seeds the series with a synthetic
// window, publishes the initial analysis (no signal yet), and begins
// ticking. Calling Start while already running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		log.Printf("[scheduler] start ignored: already running")
		return
	}
	s.active = true
	s.tick = 0
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	now := s.now()
	s.series = series.New(s.walker.SeedWindow(s.cfg.SeedSamples, s.cfg.BasePrice, s.cfg.TickInterval, now))
	s.currentSignal = nil

	update := model.Update{
		Symbol:   s.cfg.Symbol,
		Samples:  s.series.Window(model.ChartTail),
		Analysis: analyzer.Analyze(s.series),
		Tick:     0,
		TS:       now,
	}
	s.lastUpdate = update
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	s.publish(update)

	go s.run(stopCh, done)
	log.Printf("[scheduler] started symbol=%s interval=%v", s.cfg.Symbol, s.cfg.TickInterval)
}

// Stop transitions Running → Idle. It is idempotent, and by the time it
// returns no further tick will run. Accumulated series/analysis/signal
// state is retained so the last known state stays displayable.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	log.Printf("[scheduler] stopped symbol=%s", s.cfg.Symbol)
}

// Active reports whether the tick stream is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Snapshot returns the most recently published update. Valid after Stop
// as well — the last known state persists.
func (s *Scheduler) Snapshot() model.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate
}

// LastSignalTime returns when the last non-nil signal was generated,
// zero if none yet.
func (s *Scheduler) LastSignalTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSignalTime
}

// run is the single tick goroutine. It owns the ticker for this session.
func (s *Scheduler) run(stopCh chan struct{}, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// A stop racing with a pending tick wins.
			select {
			case <-stopCh:
				return
			default:
			}
			s.doTick()
		}
	}
}

// doTick is one scheduler activation: sample arrival, analysis, and
// possible signal emission.
func (s *Scheduler) doTick() {
	now := s.now()

	s.mu.Lock()
	last, ok := s.series.Last()
	lastPrice := s.cfg.BasePrice
	if ok {
		lastPrice = last.Price
	}
	price := s.walker.Next(lastPrice)
	s.series = s.series.Append(model.Sample{Time: feed.ClockLabel(now), Price: price})
	s.tick++
	tick := s.tick

	a := analyzer.Analyze(s.series)

	var fresh *model.Signal
	if tick%s.cfg.SignalEvery == 0 {
		// Eligible tick: the generator's verdict replaces the current
		// signal, including an explicit nil. All other ticks hold the
		// previous signal as-is (rate-limited refresh, not recompute).
		sig := s.gen.Generate(price, a)
		s.currentSignal = sig
		if sig != nil {
			s.lastSignalTime = now
			fresh = sig
		}
	}

	update := model.Update{
		Symbol:   s.cfg.Symbol,
		Samples:  s.series.Window(model.ChartTail),
		Analysis: a,
		Signal:   s.currentSignal,
		Tick:     tick,
		TS:       now,
	}
	s.lastUpdate = update
	s.mu.Unlock()

	if fresh != nil {
		select {
		case s.signalCh <- *fresh:
		default:
			log.Printf("[scheduler] signal channel full, dropping %s", fresh.Type)
		}
	}
	s.publish(update)

	if s.OnTickDone != nil {
		s.OnTickDone(s.now().Sub(now))
	}
}

// publish sends an update without ever blocking the tick path.
func (s *Scheduler) publish(u model.Update) {
	select {
	case s.updateCh <- u:
	default:
		if s.OnDropUpdate != nil {
			s.OnDropUpdate()
		} else {
			log.Printf("[scheduler] update channel full, dropping tick %d", u.Tick)
		}
	}
}
