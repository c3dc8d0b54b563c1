package table

import (
	"testing"

	"github.com/vineetd/tradebook-ingestd/internal/ingesterr"
)

func testSchema() *Schema {
	s := &Schema{Name: "Test"}
	s.Columns[0] = "Key"
	s.Columns[1] = "Symbol"
	return s
}

func rowWithKey(key string) Row {
	var r Row
	r[0] = TextCell(key)
	r[1] = TextCell("BTC")
	return r
}

func TestUpsertInsertThenUpdate(t *testing.T) {
	tb := New(testSchema())

	outcome, err := tb.Upsert(rowWithKey("A"))
	if err != nil || outcome != Inserted {
		t.Fatalf("want Inserted, got %v err=%v", outcome, err)
	}
	if tb.RowCount() != 1 {
		t.Fatalf("want RowCount 1, got %d", tb.RowCount())
	}

	outcome, err = tb.Upsert(rowWithKey("A"))
	if err != nil || outcome != Updated {
		t.Fatalf("want Updated, got %v err=%v", outcome, err)
	}
	if tb.RowCount() != 1 {
		t.Fatalf("update must not grow slot count, got %d", tb.RowCount())
	}
}

func TestDeleteTombstonesSlotWithoutReuse(t *testing.T) {
	tb := New(testSchema())
	tb.Upsert(rowWithKey("A"))

	if !tb.Delete("A") {
		t.Fatal("delete of existing key must return true")
	}
	if tb.Delete("A") {
		t.Fatal("second delete of same key must return false")
	}
	if _, ok := tb.RowByKey("A"); ok {
		t.Fatal("deleted key must not resolve via RowByKey")
	}

	// Re-insert the same key: must land in a fresh slot, not slot 0.
	tb.Upsert(rowWithKey("A"))
	if tb.RowCount() != 2 {
		t.Fatalf("re-insert after delete must take a new slot; want RowCount 2, got %d", tb.RowCount())
	}
	row, ok := tb.RowBySlot(0)
	if !ok || !row[0].IsNull() {
		t.Fatal("original slot must remain tombstoned (null column 0)")
	}
	if !row[1].IsNull() {
		t.Fatalf("want a tombstoned slot's other columns to read null too, got %q", row[1].String())
	}
	if cell := tb.Cell(0, 1); !cell.IsNull() {
		t.Fatalf("want Cell on a tombstoned slot to yield NullCell, got %q", cell.String())
	}
}

func TestBatchUpsertCountsInsertsAndUpdatesWithinOneCall(t *testing.T) {
	tb := New(testSchema())
	rows := []Row{rowWithKey("A"), rowWithKey("A"), rowWithKey("B")}
	res := tb.BatchUpsert(rows)
	if res.Inserted != 2 || res.Updated != 1 || res.Rejected != 0 {
		t.Fatalf("want Inserted=2 Updated=1 Rejected=0, got %+v", res)
	}
}

func TestUpsertCapacityExceeded(t *testing.T) {
	tb := New(testSchema())
	tb.rows = make([]Row, MaxSlots) // simulate a full table without the O(n) fill loop
	tb.rowCount.Store(MaxSlots)

	_, err := tb.Upsert(rowWithKey("new-key"))
	if err != ingesterr.ErrCapacityExceeded {
		t.Fatalf("want ErrCapacityExceeded, got %v", err)
	}
}

func TestAliveRowsSkipsTombstones(t *testing.T) {
	tb := New(testSchema())
	tb.Upsert(rowWithKey("A"))
	tb.Upsert(rowWithKey("B"))
	tb.Upsert(rowWithKey("C"))
	tb.Delete("B")
	tb.RefreshAlive()

	alive := tb.AliveRows()
	if len(alive) != 2 {
		t.Fatalf("want 2 alive rows, got %d (%v)", len(alive), alive)
	}
	for _, slot := range alive {
		row, _ := tb.RowBySlot(slot)
		if row[0].IsNull() {
			t.Fatalf("alive projection must not include tombstoned slot %d", slot)
		}
	}
}

func TestSearchCaseInsensitiveBoundedByLimit(t *testing.T) {
	tb := New(testSchema())
	for _, key := range []string{"A", "B", "C", "D"} {
		var r Row
		r[0] = TextCell(key)
		r[1] = TextCell("ethusdt")
		tb.Upsert(r)
	}

	got := tb.Search("ETH", 1, 2)
	if len(got) != 2 {
		t.Fatalf("want search bounded to limit=2, got %d results", len(got))
	}
	if got[0] != 0 || got[1] != 1 {
		t.Fatalf("want ascending slot order [0 1], got %v", got)
	}
}

func TestSearchSkipsTombstonedSlots(t *testing.T) {
	tb := New(testSchema())
	tb.Upsert(rowWithKey("A"))
	tb.Upsert(rowWithKey("B"))
	tb.Delete("A")

	got := tb.Search("btc", 1, 10)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("want only live slot 1, got %v", got)
	}
}

func TestSearchEmptyNeedleReturnsNil(t *testing.T) {
	tb := New(testSchema())
	tb.Upsert(rowWithKey("A"))
	if got := tb.Search("", 1, 10); got != nil {
		t.Fatalf("want nil for empty needle, got %v", got)
	}
}
