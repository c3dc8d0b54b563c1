package ingest

import (
	"github.com/vineetd/tradebook-ingestd/internal/table"
	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

// BatchApplied is emitted once per batch, synchronously from the applier,
// after both tables have been mutated and their alive-row projections
// refreshed. Per spec §9, a Search call made after observing this event is
// guaranteed to reflect the batch; observations before it are unspecified.
type BatchApplied struct {
	OrderInserted, OrderUpdated, OrderDeleted int
	TradeInserted, TradeUpdated, TradeDeleted int
	Total                                     int
	Rejected                                  int // upserts rejected because a table was at its slot cap
	BatchLatencyMs                            int64

	// Applied carries the non-delete messages from this batch, each
	// stamped with ApplyMs, for the metrics pipeline to turn into
	// per-message latency records.
	Applied []wire.DataMessage
}

func (b BatchApplied) sum() int {
	return b.OrderInserted + b.OrderUpdated + b.OrderDeleted +
		b.TradeInserted + b.TradeUpdated + b.TradeDeleted
}

// Applier is the sole writer to both tables. It dispatches each message in
// a batch, stages inserts/updates per table (last-writer-wins within the
// batch), applies deletes immediately, and performs one BatchUpsert per
// table for the whole batch.
type Applier struct {
	OrderBook *table.Table
	TradeBook *table.Table
}

func NewApplier(orderBook, tradeBook *table.Table) *Applier {
	return &Applier{OrderBook: orderBook, TradeBook: tradeBook}
}

// Apply processes one batch and returns the resulting BatchApplied event.
// Messages are processed in order; deletes within the batch apply
// immediately and are not staged, so a delete followed by a re-insert of
// the same key in one batch behaves identically to applying them one at a
// time (spec's single-batch-equals-one-at-a-time law). Inserts/updates are
// staged in arrival order, not deduplicated by key: two messages for the
// same key both count toward BatchApplied (spec §8's counters-sum-to-total
// law), and BatchUpsert's own sequential per-row loop gives the later one
// last-writer-wins on the stored content.
func (a *Applier) Apply(batch []wire.DataMessage) BatchApplied {
	var orderStage, tradeStage []table.Row

	var result BatchApplied
	applied := make([]wire.DataMessage, 0, len(batch))

	for i := range batch {
		msg := batch[i]
		msg.Times.ApplyMs = nowMs()

		switch msg.Op {
		case wire.Delete:
			if msg.Table == wire.TradeBook {
				tradeStage = dropStagedKey(tradeStage, msg.Key)
				if a.TradeBook.Delete(msg.Key) {
					result.TradeDeleted++
				}
			} else {
				orderStage = dropStagedKey(orderStage, msg.Key)
				if a.OrderBook.Delete(msg.Key) {
					result.OrderDeleted++
				}
			}
		default: // Insert, Update
			if !msg.RowValid {
				continue
			}
			if msg.Table == wire.TradeBook {
				tradeStage = append(tradeStage, msg.Row)
			} else {
				orderStage = append(orderStage, msg.Row)
			}
			applied = append(applied, msg)
		}
	}

	if len(orderStage) > 0 {
		res := a.OrderBook.BatchUpsert(orderStage)
		result.OrderInserted += res.Inserted
		result.OrderUpdated += res.Updated
		result.Rejected += res.Rejected
	}
	if len(tradeStage) > 0 {
		res := a.TradeBook.BatchUpsert(tradeStage)
		result.TradeInserted += res.Inserted
		result.TradeUpdated += res.Updated
		result.Rejected += res.Rejected
	}

	a.OrderBook.RefreshAlive()
	a.TradeBook.RefreshAlive()

	result.Applied = applied
	result.Total = len(batch)
	if n := len(batch); n > 0 {
		result.BatchLatencyMs = batch[n-1].Times.ApplyMs - batch[0].Times.QueueMs
	}
	return result
}

// dropStagedKey removes any rows already staged for key, in place. A
// same-batch delete erases earlier staged inserts/updates for that key —
// they were never actually applied to the table yet — so after the batch
// the key resolves (or not) as it would after one-at-a-time application.
// A purged row never occupies a slot, though: for a key that was not in the
// table before the batch, RowCount and slot indices end up lower than
// one-at-a-time application, which would leave a tombstoned slot behind.
func dropStagedKey(stage []table.Row, key string) []table.Row {
	out := stage[:0]
	for _, row := range stage {
		if row[0].String() != key {
			out = append(out, row)
		}
	}
	return out
}
