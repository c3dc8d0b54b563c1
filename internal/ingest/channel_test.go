package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

func TestChannelEnqueueStampsQueueMs(t *testing.T) {
	ch := NewChannel(0, 0)
	msg := insertMsg(wire.OrderBook, "ORD-1")
	if err := ch.Enqueue(context.Background(), msg); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got := <-ch.Recv()
	if got.Times.QueueMs == 0 {
		t.Fatal("want QueueMs stamped on enqueue")
	}
}

func TestChannelDepthReflectsBufferedCount(t *testing.T) {
	ch := NewChannel(0, 0)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-1"))
	}
	if d := ch.Depth(); d != 3 {
		t.Fatalf("want Depth()=3, got %d", d)
	}
	<-ch.Recv()
	if d := ch.Depth(); d != 2 {
		t.Fatalf("want Depth()=2 after one receive, got %d", d)
	}
}

func TestChannelEnqueueRespectsContextCancellation(t *testing.T) {
	// Bounded with an exhausted limiter: a cancelled context must return
	// promptly rather than block forever.
	ch := NewChannel(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Drain the initial burst token via a first call under a live context,
	// then confirm a second call under a cancelled context returns an error
	// instead of hanging.
	liveCtx, liveCancel := context.WithTimeout(context.Background(), time.Second)
	defer liveCancel()
	if err := ch.Enqueue(liveCtx, insertMsg(wire.OrderBook, "ORD-1")); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}

	err := ch.Enqueue(ctx, insertMsg(wire.OrderBook, "ORD-2"))
	if err == nil {
		t.Fatal("want error when context is already cancelled and the limiter bucket is empty")
	}
}
