package metrics

import "github.com/vineetd/tradebook-ingestd/internal/wire"

// RecordInput is what the applier/consumer hand the pipeline for one
// applied message: the message itself, plus whatever render timing the
// external consumer (the GUI) has supplied via the engine's RenderTimingFn.
type RecordInput struct {
	Message      wire.DataMessage
	RenderStartMs int64
	RenderEndMs   int64
	UIQueueDepth  int
}

// Record is one row of the per-message CSV (spec §6). GC columns are
// optional per host — a host with no generational collector reports zero
// in all three rather than omitting the columns.
type Record struct {
	Timestamp             int64
	MessageType           string
	SendTimestamp         int64
	ReceiveTimestamp      int64
	QueueTimestamp        int64
	ApplyTimestamp        int64
	RenderStartTimestamp  int64
	RenderEndTimestamp    int64
	EndToEndLatency       int64
	ProcessingLatency     int64
	RenderLatency         int64
	QueueDepth            int
	UIRenderQueueDepth    int
	CPUUsage              float64
	MemoryUsage           int64
	Gen0Collections       int64
	Gen1Collections       int64
	Gen2Collections       int64
}

// newRecord computes a Record's derived latencies from a message's
// timestamps plus externally-supplied render timing. Render timestamps of
// zero (no RenderTimingFn reported timing) degrade the derived
// render/end-to-end metrics to zero rather than producing a bogus negative
// duration.
func newRecord(msg wire.DataMessage, renderStart, renderEnd int64, queueDepth, uiQueueDepth int) Record {
	rec := Record{
		Timestamp:            nowMsFn(),
		MessageType:          msg.Table.String() + ":" + msg.Op.String(),
		SendTimestamp:        msg.Times.SendMs,
		ReceiveTimestamp:     msg.Times.ReceiveMs,
		QueueTimestamp:       msg.Times.QueueMs,
		ApplyTimestamp:       msg.Times.ApplyMs,
		RenderStartTimestamp: renderStart,
		RenderEndTimestamp:   renderEnd,
		QueueDepth:           queueDepth,
		UIRenderQueueDepth:   uiQueueDepth,
	}

	if renderEnd > 0 {
		rec.EndToEndLatency = renderEnd - msg.Times.SendMs
	}
	if msg.Times.ApplyMs > 0 && msg.Times.ReceiveMs > 0 {
		rec.ProcessingLatency = msg.Times.ApplyMs - msg.Times.ReceiveMs
	}
	if renderEnd > 0 && renderStart > 0 {
		rec.RenderLatency = renderEnd - renderStart
	}
	return rec
}
