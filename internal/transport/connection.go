package transport

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/vineetd/tradebook-ingestd/internal/wire"
)

// Sink is what a connection hands each successfully decoded message to.
// It is satisfied by *ingest.Channel.
type Sink interface {
	Enqueue(ctx context.Context, msg wire.DataMessage) error
}

// ErrorSink observes the failure a connection reports without dropping the
// connection itself: a malformed frame.
type ErrorSink interface {
	IncParseError()
}

// handleConnection reads newline-delimited frames off conn until it is
// closed, reusing bufferPool for its read chunks the way the teacher's
// readPump reuses BufferPool-backed buffers. A malformed frame is counted
// and skipped; it never closes the connection (spec §7: bad data from one
// feed must not take down ingestion for the rest).
func handleConnection(ctx context.Context, conn net.Conn, bufSize int, pool *BufferPool, sink Sink, errs ErrorSink, logger zerolog.Logger) {
	defer conn.Close()

	bufPtr := pool.Get(bufSize)
	defer pool.Put(bufPtr)
	chunk := (*bufPtr)[:bufSize]

	framer := &wire.Framer{}

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			for _, frame := range framer.Feed(chunk[:n]) {
				receiveMs := time.Now().UnixMilli()
				msg, perr := wire.ParseFrame(frame)
				if perr != nil {
					errs.IncParseError()
					logger.Debug().Err(perr).Bytes("frame", frame).Msg("dropped malformed frame")
					continue
				}
				msg.Times.ReceiveMs = receiveMs
				if enqErr := sink.Enqueue(ctx, msg); enqErr != nil {
					logger.Warn().Err(enqErr).Msg("failed to enqueue message, connection closing")
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				logger.Debug().Err(err).Msg("connection read error")
			}
			return
		}
	}
}
