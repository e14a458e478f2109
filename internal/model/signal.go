package model

import (
	"encoding/json"
	"time"
)

// SignalType is the direction of a trading signal.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

// Signal is a discrete directional signal emitted by the generator.
// Confidence is an integer percentage in [80,99]. It is drawn at random
// for presentation, NOT derived from the analysis — do not read it as a
// statistical estimate.
type Signal struct {
	Type       SignalType `json:"type"`
	Price      float64    `json:"price"`
	Timestamp  time.Time  `json:"timestamp"`
	Confidence int        `json:"confidence"`
	Reason     string     `json:"reason"`
}

// JSON returns the JSON-encoded signal (ignoring errors for hot-path usage).
func (s *Signal) JSON() []byte {
	b, _ := json.Marshal(s)
	return b
}
