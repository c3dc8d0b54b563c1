package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/vineetd/tradebook-ingestd/internal/table"
)

// wireTimeLayout matches the generator's "2024-01-15 09:30:00.000" style
// timestamp cells (see spec §8 scenario 1).
const wireTimeLayout = "2006-01-02 15:04:05.000"

// parseTimestampMs accepts either a bare epoch-millisecond integer or the
// generator's datetime literal, coercing anything unparseable to zero
// rather than failing the row.
func parseTimestampMs(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if t, err := time.Parse(wireTimeLayout, raw); err == nil {
		return t.UnixMilli()
	}
	return 0
}

func parseDecimalCell(raw string) (table.Cell, error) {
	return table.ParseDecimal(raw)
}
