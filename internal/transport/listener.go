// Package transport accepts wire-format connections over TCP or a local
// Unix domain socket and feeds decoded messages into an ingest.Channel.
// Grounded on the teacher's server.go Start/accept-loop/Shutdown pattern,
// generalized from a WebSocket+HTTP listener to a raw-frame listener.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config controls buffer sizing and, for the pipe listener, the concurrent
// connection cap.
type Config struct {
	ReadBufferBytes int
	MaxConnections  int // 0 = unbounded; used by the pipe listener
}

// Listener accepts connections on a net.Listener and feeds each one's
// decoded messages to a Sink until Shutdown is called.
type Listener struct {
	name     string
	ln       net.Listener
	cfg      Config
	pool     *BufferPool
	sink     Sink
	errs     ErrorSink
	logger   zerolog.Logger
	sem      chan struct{} // nil when unbounded

	wg           sync.WaitGroup
	shuttingDown atomic.Bool
}

// NewTCPListener binds addr (e.g. ":9500") and returns a Listener that
// accepts unbounded concurrent connections, matching the spec's external
// feed transport.
func NewTCPListener(addr string, cfg Config, sink Sink, errs ErrorSink, logger zerolog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen tcp %s: %w", addr, err)
	}
	return newListener("tcp", ln, cfg, sink, errs, logger), nil
}

// NewPipeListener binds a Unix domain socket at path. This is the POSIX
// equivalent of the spec's local named-pipe transport (REDESIGN FLAG,
// see SPEC_FULL.md §4.3): Go has no portable named-pipe primitive, and a
// Unix domain socket gives the same same-host, no-network-stack framing
// the spec's local channel was for. Concurrent connections are capped at
// cfg.MaxConnections (spec: "a small number of co-located producers").
func NewPipeListener(path string, cfg Config, sink Sink, errs ErrorSink, logger zerolog.Logger) (*Listener, error) {
	_ = removeStaleSocket(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("transport: listen unix %s: %w", path, err)
	}
	l := newListener("pipe", ln, cfg, sink, errs, logger)
	if cfg.MaxConnections > 0 {
		l.sem = make(chan struct{}, cfg.MaxConnections)
	}
	return l, nil
}

func newListener(name string, ln net.Listener, cfg Config, sink Sink, errs ErrorSink, logger zerolog.Logger) *Listener {
	if cfg.ReadBufferBytes <= 0 {
		cfg.ReadBufferBytes = 8192
	}
	return &Listener{
		name:   name,
		ln:     ln,
		cfg:    cfg,
		pool:   NewBufferPool(cfg.ReadBufferBytes),
		sink:   sink,
		errs:   errs,
		logger: logger.With().Str("transport", name).Logger(),
	}
}

// Serve runs the accept loop until Shutdown closes the listener. It
// returns once the listener is closed and all in-flight connections have
// been handed off (it does not wait for them to finish; Shutdown does).
func (l *Listener) Serve(ctx context.Context) error {
	l.logger.Info().Str("addr", l.ln.Addr().String()).Msg("listening")
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if l.shuttingDown.Load() {
				return nil
			}
			return fmt.Errorf("transport(%s): accept: %w", l.name, err)
		}

		if l.sem != nil {
			select {
			case l.sem <- struct{}{}:
			default:
				l.logger.Warn().Msg("connection rejected: at max connections")
				conn.Close()
				continue
			}
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if l.sem != nil {
				defer func() { <-l.sem }()
			}
			handleConnection(ctx, conn, l.cfg.ReadBufferBytes, l.pool, l.sink, l.errs, l.logger)
		}()
	}
}

// Shutdown stops accepting new connections, closes the listener, and
// waits up to drainTimeout for in-flight connections to finish reading
// (mirroring the teacher's Shutdown drain loop, minus the send-side
// machinery this transport has no equivalent of).
func (l *Listener) Shutdown(drainTimeout time.Duration) error {
	l.shuttingDown.Store(true)
	if err := l.ln.Close(); err != nil {
		l.logger.Warn().Err(err).Msg("error closing listener")
	}

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		l.logger.Info().Msg("all connections drained")
	case <-time.After(drainTimeout):
		l.logger.Warn().Dur("timeout", drainTimeout).Msg("drain timeout exceeded, connections may still be closing")
	}
	return nil
}

func removeStaleSocket(path string) error {
	return unlinkIfSocket(path)
}
