package table

// AliveRows returns the current alive-row projection: the ordered slot
// indices a consumer enumerates as dense rows 0..len(alive)-1. The slice
// is a snapshot copy, safe to range over after the lock is released.
func (t *Table) AliveRows() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]int, len(t.alive))
	copy(out, t.alive)
	return out
}

// RefreshAlive rebuilds the alive-row projection by scanning slots
// 0..RowCount for a non-null column 0. Called once per applied batch; cost
// is amortized over the batch (O(total slots) per call). For tables past
// ~100,000 slots an incremental update is a valid substitute — this
// full-rescan form is the simplest implementation satisfying the contract.
func (t *Table) RefreshAlive() {
	t.mu.Lock()
	defer t.mu.Unlock()

	alive := t.alive[:0]
	if cap(alive) < len(t.rows) {
		alive = make([]int, 0, len(t.rows))
	}
	for slot, row := range t.rows {
		if !row[0].IsNull() {
			alive = append(alive, slot)
		}
	}
	t.alive = alive
}
