// Package wire implements the transport-agnostic line-delimited CSV codec:
// framing, DataMessage decoding, and row parsing into table.Row values.
// Permissive by design (spec §9) — unknown Table/Op tokens coerce to
// defaults instead of failing the frame.
package wire

import (
	"github.com/vineetd/tradebook-ingestd/internal/table"
)

// TableKind identifies which in-memory table a message targets.
type TableKind uint8

const (
	OrderBook TableKind = iota
	TradeBook
)

func (k TableKind) String() string {
	if k == TradeBook {
		return "TradeBook"
	}
	return "OrderBook"
}

// Op identifies the row-level operation a message carries.
type Op uint8

const (
	Insert Op = iota
	Update
	Delete
)

func (o Op) String() string {
	switch o {
	case Update:
		return "Update"
	case Delete:
		return "Delete"
	default:
		return "Insert"
	}
}

// Timestamps decorates a message through its life in the pipeline. All
// fields are Unix-epoch milliseconds; zero means "not yet stamped".
type Timestamps struct {
	SendMs        int64
	ReceiveMs     int64
	QueueMs       int64
	ApplyMs       int64
	RenderStartMs int64
	RenderEndMs   int64
}

// DataMessage is one decoded wire frame.
type DataMessage struct {
	Table TableKind
	Op    Op
	Times Timestamps

	// Key is the business key; populated for Delete, and for Insert/Update
	// after the row has been parsed (column 0 of Row).
	Key string
	// Row holds the parsed 50-field payload for Insert/Update. Zero value
	// for Delete.
	Row      table.Row
	RowValid bool
}

// Schema resolves the table.Schema this message's Table targets.
func (m DataMessage) Schema() *table.Schema {
	if m.Table == TradeBook {
		return table.TradeBookSchema
	}
	return table.OrderBookSchema
}
