package model

// Trend classifies the direction of the analyzed window.
type Trend string

const (
	TrendBullish Trend = "Bullish"
	TrendBearish Trend = "Bearish"
	// TrendInsufficient means fewer than 10 samples were available.
	// Consumers must treat it as "no opinion yet", never as a fault.
	TrendInsufficient Trend = "Insufficient data"
)

// Analysis is the rolling-window snapshot recomputed on every tick.
// Volatility and Momentum are percentages rounded to 2 decimal places.
type Analysis struct {
	Trend        Trend   `json:"trend"`
	Volatility   float64 `json:"volatility"`
	Momentum     float64 `json:"momentum"`
	ClearPattern bool    `json:"clear_pattern"`
}
