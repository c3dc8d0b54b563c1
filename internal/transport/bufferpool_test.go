package transport

import "testing"

func TestBufferPoolGetPicksTierBySize(t *testing.T) {
	bp := NewBufferPool(8192)

	small := bp.Get(100)
	if cap(*small) != 4096 {
		t.Fatalf("want 4KB tier for a 100-byte request, got cap=%d", cap(*small))
	}

	medium := bp.Get(10_000)
	if cap(*medium) != 16384 {
		t.Fatalf("want 16KB tier for a 10000-byte request, got cap=%d", cap(*medium))
	}

	large := bp.Get(100_000)
	if cap(*large) < 100_000 {
		t.Fatalf("want a buffer large enough for a 100000-byte request, got cap=%d", cap(*large))
	}
}

func TestBufferPoolPutThenGetReusesBacking(t *testing.T) {
	bp := NewBufferPool(8192)
	buf := bp.Get(100)
	(*buf) = append(*buf, 1, 2, 3)
	bp.Put(buf)

	reused := bp.Get(100)
	if len(*reused) != 0 {
		t.Fatalf("want a pooled buffer reset to length 0, got len=%d", len(*reused))
	}
}

func TestBufferPoolPutNilIsNoop(t *testing.T) {
	bp := NewBufferPool(8192)
	bp.Put(nil) // must not panic
}
