package table

import "strings"

// Search scans live slots in ascending order and returns the first limit
// slot indices whose cell at col, rendered as text and lower-cased,
// contains needle (also lower-cased). O(N) per call — the limit bounds
// tail latency for a user-driven search box. Tombstoned slots are skipped.
// An empty needle returns nil without scanning.
func (t *Table) Search(needle string, col, limit int) []int {
	if needle == "" || limit <= 0 {
		return nil
	}
	needleLower := strings.ToLower(needle)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if col < 0 || col >= NumColumns {
		return nil
	}

	var out []int
	for slot, row := range t.rows {
		if row[0].IsNull() {
			continue
		}
		if row[col].containsFold(needleLower) {
			out = append(out, slot)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
