package model

import (
	"encoding/json"
	"time"
)

// ChartTail is how many trailing samples an Update carries for charting.
const ChartTail = 20

// Update is the per-tick payload pushed to display collaborators:
// the chart tail of the series, the fresh analysis, and the current
// signal. Signal may be unchanged from the prior tick (signals are only
// refreshed on eligible ticks) or nil when no clear pattern exists.
type Update struct {
	Symbol   string    `json:"symbol"`
	Samples  []Sample  `json:"samples"`
	Analysis Analysis  `json:"analysis"`
	Signal   *Signal   `json:"signal,omitempty"`
	Tick     int64     `json:"tick"`
	TS       time.Time `json:"ts"`
}

// JSON returns the JSON-encoded update (ignoring errors for hot-path usage).
func (u *Update) JSON() []byte {
	b, _ := json.Marshal(u)
	return b
}
