package wire

import (
	"testing"

	"github.com/vineetd/tradebook-ingestd/internal/table"
)

func TestDataMessageSchemaResolvesByTable(t *testing.T) {
	orderMsg := DataMessage{Table: OrderBook}
	if orderMsg.Schema() != table.OrderBookSchema {
		t.Fatal("want OrderBook message to resolve OrderBookSchema")
	}

	tradeMsg := DataMessage{Table: TradeBook}
	if tradeMsg.Schema() != table.TradeBookSchema {
		t.Fatal("want TradeBook message to resolve TradeBookSchema")
	}
}

func TestTableKindAndOpStringers(t *testing.T) {
	if OrderBook.String() != "OrderBook" || TradeBook.String() != "TradeBook" {
		t.Fatal("unexpected TableKind.String()")
	}
	if Insert.String() != "Insert" || Update.String() != "Update" || Delete.String() != "Delete" {
		t.Fatal("unexpected Op.String()")
	}
}
