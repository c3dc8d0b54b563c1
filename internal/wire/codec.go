package wire

import (
	"strconv"
	"strings"

	"github.com/vineetd/tradebook-ingestd/internal/ingesterr"
	"github.com/vineetd/tradebook-ingestd/internal/table"
)

// Framer reassembles newline-delimited frames out of arbitrary read chunks,
// preserving a partial trailing fragment across calls until the next '\n'
// arrives. One Framer per connection; not safe for concurrent use.
type Framer struct {
	pending []byte
}

// Feed appends newly-read bytes and returns the complete frames (without
// their trailing '\n') found so far. Any incomplete tail is retained.
func (f *Framer) Feed(chunk []byte) [][]byte {
	f.pending = append(f.pending, chunk...)

	var frames [][]byte
	for {
		i := indexByte(f.pending, '\n')
		if i < 0 {
			break
		}
		line := f.pending[:i]
		line = trimCR(line)
		if len(line) > 0 {
			frame := make([]byte, len(line))
			copy(frame, line)
			frames = append(frames, frame)
		}
		f.pending = f.pending[i+1:]
	}
	return frames
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// ParseFrame splits one CSV frame into its four top-level fields
// (table, op, send timestamp, payload) and parses the payload into a
// DataMessage. The payload is handed unsplit to ParseRow/the delete-key
// extraction — it performs its own 50-way split.
//
// Unknown Table/Op tokens default to OrderBook/Insert (permissive by
// design). A frame with fewer than 4 top-level fields is a parse error.
func ParseFrame(line []byte) (DataMessage, error) {
	parts := splitN(string(line), ',', 4)
	if len(parts) < 4 {
		return DataMessage{}, ingesterr.ErrParseFailure
	}

	msg := DataMessage{
		Table: parseTableKind(parts[0]),
		Op:    parseOp(parts[1]),
	}
	msg.Times.SendMs, _ = strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)

	payload := parts[3]
	if msg.Op == Delete {
		msg.Key = payload
		return msg, nil
	}

	row, err := ParseRow(payload, msg.Schema())
	if err != nil {
		return DataMessage{}, err
	}
	msg.Row = row
	msg.RowValid = true
	msg.Key = row[0].String()
	return msg, nil
}

func parseTableKind(s string) TableKind {
	if s == "TradeBook" {
		return TradeBook
	}
	return OrderBook
}

func parseOp(s string) Op {
	switch s {
	case "Update":
		return Update
	case "Delete":
		return Delete
	default:
		return Insert
	}
}

// splitN splits s on sep into at most n parts, with the last part holding
// the remainder unsplit — equivalent to strings.SplitN but documents the
// "rest passed unsplit" framing rule at the call site.
func splitN(s string, sep byte, n int) []string {
	out := make([]string, 0, n)
	for len(out) < n-1 {
		i := strings.IndexByte(s, sep)
		if i < 0 {
			break
		}
		out = append(out, s[:i])
		s = s[i+1:]
	}
	out = append(out, s)
	return out
}

// ParseRow splits payload on ',' and verifies exactly table.NumColumns
// fields. A field-count mismatch is a parse error — counted and dropped,
// never a panic. Each field is parsed by position into its declared type;
// an unparseable cell coerces to that type's zero value rather than
// failing the whole row.
func ParseRow(payload string, schema *table.Schema) (table.Row, error) {
	fields := strings.Split(payload, ",")
	if len(fields) != table.NumColumns {
		return table.Row{}, ingesterr.ErrParseFailure
	}

	var row table.Row
	for i, f := range fields {
		row[i] = parseCell(f, schema.Types[i])
	}
	return row, nil
}

func parseCell(raw string, kind table.ColumnType) table.Cell {
	switch kind {
	case table.ColInt:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return table.IntCell(0)
		}
		return table.IntCell(v)
	case table.ColDecimal:
		c, err := parseDecimalCell(raw)
		if err != nil {
			return table.DecimalCell(0, 0)
		}
		return c
	case table.ColTimestamp:
		return table.TimeCell(parseTimestampMs(raw))
	default:
		return table.TextCell(raw)
	}
}
