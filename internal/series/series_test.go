package series

import (
	"fmt"
	"testing"

	"signalbotv1/internal/model"
)

func sample(i int) model.Sample {
	return model.Sample{Time: fmt.Sprintf("t%d", i), Price: float64(i)}
}

func TestSeries_AppendBounded(t *testing.T) {
	var sr Series
	for i := 0; i < Cap+17; i++ {
		sr = sr.Append(sample(i))
		if sr.Len() > Cap {
			t.Fatalf("after %d appends Len() = %d, exceeds cap %d", i+1, sr.Len(), Cap)
		}
	}
	if sr.Len() != Cap {
		t.Fatalf("Len() = %d, want %d", sr.Len(), Cap)
	}

	// Oldest 17 evicted; survivors keep relative order
	got := sr.Window(Cap)
	for i, s := range got {
		want := float64(i + 17)
		if s.Price != want {
			t.Errorf("window[%d].Price = %v, want %v", i, s.Price, want)
		}
	}
}

func TestSeries_AppendDoesNotMutateReceiver(t *testing.T) {
	var base Series
	for i := 0; i < 5; i++ {
		base = base.Append(sample(i))
	}

	a := base.Append(sample(100))
	b := base.Append(sample(200))

	if base.Len() != 5 {
		t.Fatalf("base mutated: Len() = %d, want 5", base.Len())
	}
	la, _ := a.Last()
	lb, _ := b.Last()
	if la.Price != 100 || lb.Price != 200 {
		t.Errorf("branched appends interfered: got %v and %v", la.Price, lb.Price)
	}
}

func TestSeries_Window(t *testing.T) {
	var sr Series
	for i := 0; i < 8; i++ {
		sr = sr.Append(sample(i))
	}

	tests := []struct {
		n    int
		want int
	}{
		{n: 3, want: 3},
		{n: 8, want: 8},
		{n: 20, want: 8}, // more than available
		{n: 0, want: 0},
	}
	for _, tc := range tests {
		got := sr.Window(tc.n)
		if len(got) != tc.want {
			t.Errorf("Window(%d): len = %d, want %d", tc.n, len(got), tc.want)
		}
	}

	w := sr.Window(3)
	if w[0].Price != 5 || w[2].Price != 7 {
		t.Errorf("Window(3) = %v, want prices 5..7 oldest first", w)
	}
}

func TestSeries_LastEmpty(t *testing.T) {
	var sr Series
	if _, ok := sr.Last(); ok {
		t.Error("Last() on empty series reported ok")
	}
	sr = sr.Append(sample(1))
	s, ok := sr.Last()
	if !ok || s.Price != 1 {
		t.Errorf("Last() = %v/%v, want price 1", s, ok)
	}
}

func TestNew_TrimsToCap(t *testing.T) {
	in := make([]model.Sample, Cap+10)
	for i := range in {
		in[i] = sample(i)
	}
	sr := New(in)
	if sr.Len() != Cap {
		t.Fatalf("Len() = %d, want %d", sr.Len(), Cap)
	}
	first := sr.Window(Cap)[0]
	if first.Price != 10 {
		t.Errorf("oldest survivor price = %v, want 10", first.Price)
	}
}
