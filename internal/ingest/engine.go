package ingest

import (
	"github.com/vineetd/tradebook-ingestd/internal/metrics"
	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

// RenderTimingFn lets an in-process external consumer (the GUI grid, per
// spec §1's "out of scope" contract) report render timing for an applied
// message before its metric record is filed. The ingestion service has no
// GUI of its own, so the default wiring passes nil and every render
// timestamp degrades to zero, exactly as spec §4.8 allows.
type RenderTimingFn func(msg wire.DataMessage) (renderStartMs, renderEndMs int64)

// Engine wires a Batcher's released batches through the Applier and then
// through the metrics pipeline, publishing each BatchApplied event to
// subscribers in the order its batch applied (spec §9: "BatchApplied
// events are delivered in the order their batches apply").
type Engine struct {
	batcher        *Batcher
	applier        *Applier
	pipeline       *metrics.Pipeline
	renderTimingFn RenderTimingFn
	subscribers    []chan BatchApplied
}

func NewEngine(batcher *Batcher, applier *Applier, pipeline *metrics.Pipeline, renderTimingFn RenderTimingFn) *Engine {
	return &Engine{batcher: batcher, applier: applier, pipeline: pipeline, renderTimingFn: renderTimingFn}
}

// Subscribe returns a channel that receives every BatchApplied event. It
// must be called before Run starts, and the returned channel should be
// drained continuously — a full subscriber channel stalls the applier,
// since publication is synchronous by design (spec: the event fires
// synchronously from the applier).
func (e *Engine) Subscribe(buffer int) <-chan BatchApplied {
	ch := make(chan BatchApplied, buffer)
	e.subscribers = append(e.subscribers, ch)
	return ch
}

// Run blocks, consuming batches from the batcher until its channel closes.
// Call it from its own goroutine; it is the sole writer to both tables by
// construction, since Applier.Apply is only ever invoked from here.
func (e *Engine) Run() {
	e.batcher.Run(e.onBatch)
	for _, ch := range e.subscribers {
		close(ch)
	}
}

func (e *Engine) onBatch(batch []wire.DataMessage) {
	applied := e.applier.Apply(batch)

	for i := 0; i < applied.Rejected; i++ {
		e.pipeline.IncCapacityExceeded()
	}

	for _, msg := range applied.Applied {
		var start, end int64
		if e.renderTimingFn != nil {
			start, end = e.renderTimingFn(msg)
		}
		e.pipeline.RecordMessage(metrics.RecordInput{
			Message:       msg,
			RenderStartMs: start,
			RenderEndMs:   end,
		})
	}

	for _, ch := range e.subscribers {
		ch <- applied
	}
}
