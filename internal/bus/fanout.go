// Package bus broadcasts scheduler updates from a single input channel
// to N consumer channels. A full consumer channel drops the update so a
// slow display sink can never stall the tick path.
package bus

import (
	"context"
	"log"
	"sync"

	"signalbotv1/internal/model"
)

// FanOut broadcasts updates to all subscribers.
type FanOut struct {
	mu      sync.RWMutex
	outputs []chan model.Update
	bufSize int

	// OnDrop is called when an update is dropped for a subscriber.
	OnDrop func(subscriberIdx int)
}

// New creates a FanOut with the given buffer size for output channels.
func New(outputBufferSize int) *FanOut {
	return &FanOut{bufSize: outputBufferSize}
}

// Subscribe creates and returns a new output channel.
func (f *FanOut) Subscribe() <-chan model.Update {
	ch := make(chan model.Update, f.bufSize)
	f.mu.Lock()
	f.outputs = append(f.outputs, ch)
	f.mu.Unlock()
	return ch
}

// Run reads from input and fans out to all subscribers. Blocks until
// ctx is cancelled or input is closed; output channels are closed on
// exit.
func (f *FanOut) Run(ctx context.Context, input <-chan model.Update) {
	defer func() {
		f.mu.RLock()
		for _, ch := range f.outputs {
			close(ch)
		}
		f.mu.RUnlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-input:
			if !ok {
				return
			}
			f.mu.RLock()
			for i, ch := range f.outputs {
				select {
				case ch <- u:
				default:
					if f.OnDrop != nil {
						f.OnDrop(i)
					} else {
						log.Printf("[bus] output channel %d full, dropping tick %d", i, u.Tick)
					}
				}
			}
			f.mu.RUnlock()
		}
	}
}
