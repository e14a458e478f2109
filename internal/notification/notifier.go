// Package notification delivers signal alerts to external channels
// (Telegram, webhooks, logs). Delivery is entirely this package's
// problem: the scheduler never observes or retries a failed send.
package notification

import (
	"context"
	"fmt"
	"log"

	"signalbotv1/internal/model"
)

// Alert represents a notification to be sent.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// AlertFromSignal formats a trading signal as an alert.
func AlertFromSignal(sig model.Signal) Alert {
	return Alert{
		Title: fmt.Sprintf("Signal Alert: %s", sig.Type),
		Message: fmt.Sprintf("%s at $%.2f (%d%% confidence) — %s",
			sig.Type, sig.Price, sig.Confidence, sig.Reason),
	}
}

// Dispatch consumes generated signals and fans each one out to all
// notifiers. Blocks until ctx is cancelled or the channel is closed.
func Dispatch(ctx context.Context, signals <-chan model.Signal, notifiers []Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			alert := AlertFromSignal(sig)
			for _, n := range notifiers {
				if err := n.Send(ctx, alert); err != nil {
					log.Printf("[notify] delivery failed: %v", err)
				}
			}
		}
	}
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] %s: %s", alert.Title, alert.Message)
	return nil
}
