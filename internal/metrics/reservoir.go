// Package metrics implements the per-message latency reservoirs and
// percentile computation, the periodic CSV sink, and the Prometheus /
// host-resource surfaces that sit alongside it.
package metrics

import "sort"

// reservoirCapacity is the bounded sample count per latency family (spec
// §4.8: "the most recent 10,000 samples"). Oldest drops on overflow, the
// same eviction discipline as the teacher's ReplayBuffer in
// replay_buffer.go, applied to float64 latencies instead of message bytes.
const reservoirCapacity = 10_000

// Reservoir is a bounded FIFO of the most recent latency samples, used for
// percentile estimation. Not safe for concurrent use on its own — callers
// serialize access (the metrics pipeline guards all three with its mutex).
type Reservoir struct {
	samples []float64
	head    int
	full    bool
}

func NewReservoir() *Reservoir {
	return &Reservoir{samples: make([]float64, reservoirCapacity)}
}

// Add records one sample, evicting the oldest once the reservoir is full.
func (r *Reservoir) Add(v float64) {
	r.samples[r.head] = v
	r.head = (r.head + 1) % reservoirCapacity
	if r.head == 0 {
		r.full = true
	}
}

// Len returns the number of samples currently held.
func (r *Reservoir) Len() int {
	if r.full {
		return reservoirCapacity
	}
	return r.head
}

// snapshot returns a sorted copy of the current samples.
func (r *Reservoir) snapshot() []float64 {
	n := r.Len()
	out := make([]float64, n)
	if r.full {
		copy(out, r.samples[r.head:])
		copy(out[reservoirCapacity-r.head:], r.samples[:r.head])
	} else {
		copy(out, r.samples[:n])
	}
	sort.Float64s(out)
	return out
}

// Percentile returns the p-th percentile (0..100) of the current samples
// using linear interpolation between adjacent ranks:
//
//	idx = p/100 * (n-1)
//	v[floor(idx)]*(1-w) + v[ceil(idx)]*w
//
// Returns 0 for an empty reservoir.
func (r *Reservoir) Percentile(p float64) float64 {
	sorted := r.snapshot()
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := (p / 100) * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	w := idx - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
