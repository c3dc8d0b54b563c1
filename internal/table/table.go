package table

import (
	"sync"
	"sync/atomic"

	"github.com/vineetd/tradebook-ingestd/internal/ingesterr"
)

// MaxSlots is the hard cap on slots per table (spec: 2,000,000). Upsert
// fails with ingesterr.ErrCapacityExceeded once it is reached; BatchUpsert
// processes as many rows as fit and reports the shortfall.
const MaxSlots = 2_000_000

// Row is one table row: NumColumns tagged cells. Passed by value on the
// read path so callers can't mutate table state through the returned row.
type Row [NumColumns]Cell

// UpsertResult reports whether Upsert created a new slot or replaced one.
type UpsertResult uint8

const (
	Inserted UpsertResult = iota
	Updated
)

// Table is a fixed-50-column columnar store with a stable slot index,
// tombstoned deletes, and a key→slot lookup. Many concurrent readers, one
// writer at a time — the same discipline the teacher's SubscriptionSet
// uses for its channel membership map, scaled up to a batch writer that
// holds the lock once per BatchUpsert rather than once per row.
type Table struct {
	schema *Schema

	mu       sync.RWMutex
	rows     []Row
	keyIndex map[string]int
	alive    []int

	rowCount atomic.Int64
}

// New creates an empty table for the given schema.
func New(schema *Schema) *Table {
	return &Table{
		schema:   schema,
		rows:     make([]Row, 0, 1024),
		keyIndex: make(map[string]int, 1024),
	}
}

// Schema returns the table's column schema.
func (t *Table) Schema() *Schema { return t.schema }

// RowCount returns the number of slots, including tombstones, without
// taking the lock — spec requires this to be observable lock-free.
func (t *Table) RowCount() int64 { return t.rowCount.Load() }

// Upsert inserts a new row or replaces an existing one by business key
// (column 0). O(1) expected; acquires the writer lock for one row.
func (t *Table) Upsert(row Row) (UpsertResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.upsertLocked(row)
}

func (t *Table) upsertLocked(row Row) (UpsertResult, error) {
	key := row[0].String()
	if slot, ok := t.keyIndex[key]; ok {
		t.rows[slot] = row
		return Updated, nil
	}
	if len(t.rows) >= MaxSlots {
		return Inserted, ingesterr.ErrCapacityExceeded
	}
	slot := len(t.rows)
	t.rows = append(t.rows, row)
	t.keyIndex[key] = slot
	t.rowCount.Store(int64(len(t.rows)))
	return Inserted, nil
}

// BatchResult summarizes one BatchUpsert call.
type BatchResult struct {
	Inserted  int
	Updated   int
	Rejected  int // rows that didn't fit under MaxSlots
}

// BatchUpsert applies rows under a single exclusive lock acquisition. Once
// the table hits MaxSlots, each further row with a new key is counted in
// Rejected (the shortfall); rows for existing keys still apply as updates.
func (t *Table) BatchUpsert(rows []Row) BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res BatchResult
	for _, row := range rows {
		switch outcome, err := t.upsertLocked(row); {
		case err != nil:
			res.Rejected++
		case outcome == Inserted:
			res.Inserted++
		default:
			res.Updated++
		}
	}
	return res
}

// Delete tombstones the slot holding key, if present: column 0 is nulled
// and the key is removed from the index. Returns whether a row was
// actually removed. The slot itself is never reclaimed — a later insert
// with the same key gets a fresh slot.
func (t *Table) Delete(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.keyIndex[key]
	if !ok {
		return false
	}
	delete(t.keyIndex, key)
	t.rows[slot][0] = NullCell
	return true
}

// RowByKey reads a live row by business key under the shared lock. Returns
// false for a missing or tombstoned key.
func (t *Table) RowByKey(key string) (Row, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	slot, ok := t.keyIndex[key]
	if !ok {
		return Row{}, false
	}
	return t.rows[slot], true
}

// RowBySlot reads a row by slot index. Out-of-range returns false; a
// tombstoned slot returns a zeroed row with ok=true, since the alive-row
// projection is the authoritative iteration order and callers in steady
// state shouldn't be addressing tombstoned slots directly.
func (t *Table) RowBySlot(slot int) (Row, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if slot < 0 || slot >= len(t.rows) {
		return Row{}, false
	}
	if t.rows[slot][0].IsNull() {
		return Row{}, true
	}
	return t.rows[slot], true
}

// Cell reads one bounds-checked cell. Out-of-range or a tombstoned slot
// yields NullCell.
func (t *Table) Cell(slot, col int) Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if slot < 0 || slot >= len(t.rows) || col < 0 || col >= NumColumns {
		return NullCell
	}
	if t.rows[slot][0].IsNull() {
		return NullCell
	}
	return t.rows[slot][col]
}

// MemoryEstimate returns a coarse byte count for diagnostics: slot count
// times the size of one row's cell vector.
func (t *Table) MemoryEstimate() int64 {
	t.mu.RLock()
	n := len(t.rows)
	t.mu.RUnlock()
	const bytesPerRow = int64(NumColumns) * 48 // rough per-cell footprint
	return int64(n) * bytesPerRow
}

// KeyCount returns the number of live keys (invariant: equals len(alive)).
func (t *Table) KeyCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.keyIndex)
}
