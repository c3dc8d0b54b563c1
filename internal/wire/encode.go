package wire

import (
	"strconv"
	"strings"

	"github.com/vineetd/tradebook-ingestd/internal/table"
)

// Encode renders a DataMessage back into wire framing (without the
// trailing '\n'), the inverse of ParseFrame. Used by tests asserting
// round-trip fidelity and by cmd/datagen.
func Encode(msg DataMessage) string {
	var b strings.Builder
	b.WriteString(msg.Table.String())
	b.WriteByte(',')
	b.WriteString(msg.Op.String())
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(msg.Times.SendMs, 10))
	b.WriteByte(',')

	if msg.Op == Delete {
		b.WriteString(msg.Key)
		return b.String()
	}

	for i := 0; i < table.NumColumns; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(msg.Row[i].String())
	}
	return b.String()
}
