package model

// Sample represents a single observed price on the simulated feed.
// Time is a wall-clock label (e.g. "14:03:05") used for chart axes;
// ordering comes from position in the series, not from parsing Time.
type Sample struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}
