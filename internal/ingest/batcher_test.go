package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

// TestBatcherReleasesOnTimeout is the literal scenario from the batching
// contract: batch_size=1000, batch_timeout_ms=100, send 3 messages and wait
// past the timeout — exactly one batch of 3 is observed.
func TestBatcherReleasesOnTimeout(t *testing.T) {
	ch := NewChannel(0, 0)
	b := NewBatcher(ch, BatcherConfig{BatchSize: 1000, BatchTimeoutMs: 100})

	var mu sync.Mutex
	var batches [][]wire.DataMessage
	done := make(chan struct{})
	go func() {
		b.Run(func(batch []wire.DataMessage) {
			mu.Lock()
			cp := make([]wire.DataMessage, len(batch))
			copy(cp, batch)
			batches = append(batches, cp)
			mu.Unlock()
		})
		close(done)
	}()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-1"))
	}

	time.Sleep(250 * time.Millisecond)
	ch.Close()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("want exactly one batch released by timeout, got %d: %v", len(batches), batches)
	}
	if len(batches[0]) != 3 {
		t.Fatalf("want batch of 3, got %d", len(batches[0]))
	}
}

func TestBatcherReleasesOnSize(t *testing.T) {
	ch := NewChannel(0, 0)
	b := NewBatcher(ch, BatcherConfig{BatchSize: 2, BatchTimeoutMs: 10_000})

	var mu sync.Mutex
	var sizes []int
	done := make(chan struct{})
	go func() {
		b.Run(func(batch []wire.DataMessage) {
			mu.Lock()
			sizes = append(sizes, len(batch))
			mu.Unlock()
		})
		close(done)
	}()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-1"))
	}
	// Give the consumer goroutine a chance to drain before closing.
	time.Sleep(50 * time.Millisecond)
	ch.Close()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(sizes) != 2 {
		t.Fatalf("want 2 size-triggered batches of 2, got %v", sizes)
	}
	for _, n := range sizes {
		if n != 2 {
			t.Fatalf("want each batch sized 2, got %d in %v", n, sizes)
		}
	}
}

func TestBatcherFlushesResidualBatchOnClose(t *testing.T) {
	ch := NewChannel(0, 0)
	b := NewBatcher(ch, BatcherConfig{BatchSize: 100, BatchTimeoutMs: 10_000})

	var mu sync.Mutex
	var total int
	done := make(chan struct{})
	go func() {
		b.Run(func(batch []wire.DataMessage) {
			mu.Lock()
			total += len(batch)
			mu.Unlock()
		})
		close(done)
	}()

	ctx := context.Background()
	ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-1"))
	ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-2"))
	time.Sleep(20 * time.Millisecond)
	ch.Close()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if total != 2 {
		t.Fatalf("want residual partial batch flushed on close, got total=%d", total)
	}
}
