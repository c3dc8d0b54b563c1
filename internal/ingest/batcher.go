package ingest

import (
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

// BatcherConfig bounds a batch by size OR timeout, matching spec §4.4.
type BatcherConfig struct {
	BatchSize      int
	BatchTimeoutMs int
}

// Batcher is the single consumer of a Channel. It has no separate timer
// task: it bounds its wait on the channel by the time remaining until the
// timeout and treats a wait-timeout as a flush trigger, the same shape as
// the teacher's ticker-driven collection loops in metrics.go.
type Batcher struct {
	cfg BatcherConfig
	ch  *Channel
}

func NewBatcher(ch *Channel, cfg BatcherConfig) *Batcher {
	return &Batcher{ch: ch, cfg: cfg}
}

// Run pulls messages into batches and calls onBatch for each one released,
// until the channel is closed and drained. Any residual partial batch is
// flushed once the channel closes (spec: "On shutdown ... any residual
// batch is flushed").
func (b *Batcher) Run(onBatch func([]wire.DataMessage)) {
	timeout := time.Duration(b.cfg.BatchTimeoutMs) * time.Millisecond
	batch := make([]wire.DataMessage, 0, b.cfg.BatchSize)
	deadline := time.Now().Add(timeout)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		onBatch(batch)
		batch = make([]wire.DataMessage, 0, b.cfg.BatchSize)
		deadline = time.Now().Add(timeout)
	}

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			flush()
			remaining = timeout
		}

		timer := time.NewTimer(remaining)
		select {
		case msg, ok := <-b.ch.Recv():
			timer.Stop()
			if !ok {
				flush()
				return
			}
			batch = append(batch, msg)
			if len(batch) >= b.cfg.BatchSize {
				flush()
			}
		case <-timer.C:
			flush()
		}
	}
}
