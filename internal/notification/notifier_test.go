package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"signalbotv1/internal/model"
)

func TestAlertFromSignal(t *testing.T) {
	sig := model.Signal{
		Type:       model.SignalBuy,
		Price:      101.37,
		Confidence: 91,
		Reason:     "Strong bullish momentum (0.87%)",
	}
	alert := AlertFromSignal(sig)

	if alert.Title != "Signal Alert: BUY" {
		t.Errorf("Title = %q", alert.Title)
	}
	for _, want := range []string{"BUY", "$101.37", "91% confidence", "0.87%"} {
		if !strings.Contains(alert.Message, want) {
			t.Errorf("Message %q missing %q", alert.Message, want)
		}
	}
}

func TestWebhookNotifier_Send(t *testing.T) {
	var mu sync.Mutex
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Send(context.Background(), Alert{Title: "Signal Alert: SELL", Message: "SELL at $99.10"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got["title"] != "Signal Alert: SELL" {
		t.Errorf("posted title = %v", got["title"])
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), Alert{Title: "x"}); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

// recordingNotifier captures alerts for Dispatch tests.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordingNotifier) Send(_ context.Context, a Alert) error {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func TestDispatch_FansOutToAllNotifiers(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	signals := make(chan model.Signal, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Dispatch(ctx, signals, []Notifier{a, b})
		close(done)
	}()

	signals <- model.Signal{Type: model.SignalBuy, Price: 100, Confidence: 85}

	deadline := time.Now().Add(2 * time.Second)
	for (a.count() == 0 || b.count() == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("alerts = %d/%d, want 1/1", a.count(), b.count())
	}
}

func TestEscapeMarkdown(t *testing.T) {
	got := escapeMarkdown("BUY at $101.37 (91%)")
	if !strings.Contains(got, `\.`) || !strings.Contains(got, `\(`) {
		t.Errorf("specials not escaped: %q", got)
	}
}
