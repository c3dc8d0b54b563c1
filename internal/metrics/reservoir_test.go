package metrics

import "testing"

func TestReservoirPercentileLinearInterpolation(t *testing.T) {
	r := NewReservoir()
	for _, v := range []float64{10, 20, 30, 40, 50} {
		r.Add(v)
	}
	// n=5, idx = 50/100*(5-1) = 2 -> exact sample, no interpolation needed.
	if got := r.Percentile(50); got != 30 {
		t.Fatalf("want median 30, got %v", got)
	}
	// idx = 99/100*4 = 3.96 -> interpolate between v[3]=40 and v[4]=50.
	got := r.Percentile(99)
	want := 40*(1-0.96) + 50*0.96
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("want P99≈%v, got %v", want, got)
	}
}

func TestReservoirEmptyYieldsZero(t *testing.T) {
	r := NewReservoir()
	if got := r.Percentile(50); got != 0 {
		t.Fatalf("want 0 for an empty reservoir, got %v", got)
	}
}

func TestReservoirEvictsOldestOnOverflow(t *testing.T) {
	r := NewReservoir()
	for i := 0; i < reservoirCapacity+10; i++ {
		r.Add(float64(i))
	}
	if r.Len() != reservoirCapacity {
		t.Fatalf("want Len()=%d once full, got %d", reservoirCapacity, r.Len())
	}
	// The 10 oldest samples (0..9) must have been evicted; the minimum
	// surviving sample is 10.
	snap := r.snapshot()
	if snap[0] != 10 {
		t.Fatalf("want oldest surviving sample 10, got %v", snap[0])
	}
}

func TestReservoirSingleSample(t *testing.T) {
	r := NewReservoir()
	r.Add(42)
	if got := r.Percentile(99); got != 42 {
		t.Fatalf("want single sample returned regardless of percentile, got %v", got)
	}
}
