// Package ingest implements the MPSC ingest queue, the size/timeout batcher,
// and the applier that drains batches into the tables.
package ingest

import (
	"context"
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/wire"
	"golang.org/x/time/rate"
)

// nowMs is the pipeline's clock; a package var so tests can fake it, the
// same seam the teacher uses for lastMessageSentAt comparisons in
// connection.go.
var nowMs = func() int64 { return time.Now().UnixMilli() }

// Channel is the single-consumer, multi-producer FIFO queue of decoded
// messages sitting between the transport handlers and the batcher. Every
// enqueue stamps QueueMs.
//
// Backpressure (spec §5): the channel is always a bounded Go channel, so a
// burst of transport handlers blocks instead of growing memory without
// bound. A non-zero capacity sets the bound (and, with a non-zero rate,
// adds a token-bucket limiter); capacity 0 uses a fixed 65,536-message
// buffer.
type Channel struct {
	ch      chan wire.DataMessage
	limiter *rate.Limiter
}

// NewChannel creates a queue. capacity <= 0 (the default) means a buffer of
// 65,536 messages; Enqueue blocks once it is full. burstPerSec, when
// capacity > 0, additionally rate-limits Enqueue to that many messages/sec
// with a burst equal to capacity.
func NewChannel(capacity int, burstPerSec int) *Channel {
	size := capacity
	if size <= 0 {
		size = 1 << 16
	}
	c := &Channel{ch: make(chan wire.DataMessage, size)}
	if capacity > 0 && burstPerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(burstPerSec), capacity)
	}
	return c
}

// Enqueue stamps QueueMs and pushes msg onto the channel. It blocks if the
// channel is bounded and full, or if a rate limiter is configured and its
// bucket is empty — this is the producer-side backpressure spec §5
// recommends for sustained overload.
func (c *Channel) Enqueue(ctx context.Context, msg wire.DataMessage) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	msg.Times.QueueMs = nowMs()
	select {
	case c.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the underlying channel. Only the owner (main wiring) should
// call this, once, after all producers have stopped.
func (c *Channel) Close() { close(c.ch) }

// Recv exposes the receive side for the batcher.
func (c *Channel) Recv() <-chan wire.DataMessage { return c.ch }

// Depth reports the number of messages currently buffered — used by the
// metrics pipeline's QueueDepth column.
func (c *Channel) Depth() int { return len(c.ch) }
