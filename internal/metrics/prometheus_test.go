package metrics

import "testing"

func TestNewPrometheusIsASharedSingleton(t *testing.T) {
	a := NewPrometheus()
	b := NewPrometheus()
	if a != b {
		t.Fatal("want NewPrometheus to return the same process-wide collector set every call")
	}
}

func TestObserveMessageDoesNotPanicWithoutRenderTiming(t *testing.T) {
	p := NewPrometheus()
	rec := Record{MessageType: "OrderBook:Insert"}
	p.ObserveMessage("OrderBook", rec) // must not panic even with EndToEndLatency == 0
}
