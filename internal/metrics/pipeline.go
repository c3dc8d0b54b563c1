package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

var nowMsFn = func() int64 { return time.Now().UnixMilli() }

// State is the pipeline's lifecycle: Stopped -> Running on Start,
// Running -> Stopped on Dispose (which flushes once more first).
type State int32

const (
	Stopped State = iota
	Running
)

// Config configures where the CSV sink writes and how often it flushes.
type Config struct {
	Directory       string
	FlushInterval   time.Duration // default 1s
	SummaryInterval time.Duration // default 10s
}

// Pipeline owns the three latency reservoirs, the pending-record queue
// drained to CSV every second, and the 10s aggregate summary line. Timer
// callbacks never block mutators — RecordMessage only appends to a
// buffered channel and touches the reservoirs under a short lock, the same
// "flushing is advisory" discipline the teacher's MetricsCollector applies
// to Prometheus gauges.
type Pipeline struct {
	cfg Config

	mu         sync.Mutex
	endToEnd   *Reservoir
	processing *Reservoir
	render     *Reservoir

	pending chan Record
	sink    *CSVSink
	host    *HostSampler
	prom    *Prometheus

	state atomic.Int32

	totalMessages  atomic.Int64
	parseErrors    atomic.Int64
	capacityErrors atomic.Int64

	queueDepthFn func() int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewPipeline creates a Pipeline in the Stopped state. queueDepthFn reports
// the ingest channel's current depth for the CSV QueueDepth column; it may
// be nil (reports 0).
func NewPipeline(cfg Config, queueDepthFn func() int) (*Pipeline, error) {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.SummaryInterval <= 0 {
		cfg.SummaryInterval = 10 * time.Second
	}

	sink, err := NewCSVSink(cfg.Directory)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:          cfg,
		endToEnd:     NewReservoir(),
		processing:   NewReservoir(),
		render:       NewReservoir(),
		pending:      make(chan Record, 4096),
		sink:         sink,
		host:         NewHostSampler(),
		prom:         NewPrometheus(),
		queueDepthFn: queueDepthFn,
		stopCh:       make(chan struct{}),
	}, nil
}

// Start transitions Stopped -> Running and launches the two flush timers.
func (p *Pipeline) Start() {
	p.state.Store(int32(Running))
	p.wg.Add(2)
	go p.runFlushLoop()
	go p.runSummaryLoop()
}

// Dispose transitions Running -> Stopped, flushing once more before it
// returns.
func (p *Pipeline) Dispose() {
	if State(p.state.Swap(int32(Stopped))) == Stopped {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
	p.sink.Flush(p.drainPending())
	p.sink.Close()
}

func (p *Pipeline) runFlushLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.sink.Flush(p.drainPending())
		case <-p.stopCh:
			return
		}
	}
}

func (p *Pipeline) runSummaryLoop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.cfg.SummaryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.sink.WriteSummary(p.Summary())
		case <-p.stopCh:
			return
		}
	}
}

func (p *Pipeline) drainPending() []Record {
	var out []Record
	for {
		select {
		case rec := <-p.pending:
			out = append(out, rec)
		default:
			return out
		}
	}
}

// RecordMessage computes the derived latencies for one applied non-delete
// message and files it for the next CSV flush. renderStart/renderEnd are
// zero when no RenderTimingFn reported timing for this message; the derived render/end-to-end metrics then degrade to zero
// rather than a bogus value (spec §4.8).
func (p *Pipeline) RecordMessage(msg RecordInput) {
	p.totalMessages.Add(1)

	depth := 0
	if p.queueDepthFn != nil {
		depth = p.queueDepthFn()
	}
	cpu, mem, gen0, gen1, gen2 := p.host.Sample()

	rec := newRecord(msg.Message, msg.RenderStartMs, msg.RenderEndMs, depth, msg.UIQueueDepth)
	rec.CPUUsage = cpu
	rec.MemoryUsage = mem
	rec.Gen0Collections = gen0
	rec.Gen1Collections = gen1
	rec.Gen2Collections = gen2

	p.mu.Lock()
	if rec.EndToEndLatency > 0 {
		p.endToEnd.Add(float64(rec.EndToEndLatency))
	}
	if rec.ProcessingLatency > 0 {
		p.processing.Add(float64(rec.ProcessingLatency))
	}
	if rec.RenderLatency > 0 {
		p.render.Add(float64(rec.RenderLatency))
	}
	p.mu.Unlock()

	p.prom.ObserveMessage(msg.Message.Table.String(), rec)

	select {
	case p.pending <- rec:
	default:
		// Pending buffer momentarily full: drop the per-message CSV row
		// rather than block the applier. Percentile reservoirs above still
		// saw the sample.
	}
}

// IncParseError counts a dropped malformed frame (spec §7 ParseError).
func (p *Pipeline) IncParseError() {
	p.parseErrors.Add(1)
	p.prom.IncParseError()
}

// IncCapacityExceeded counts a row rejected at the table's slot cap.
func (p *Pipeline) IncCapacityExceeded() {
	p.capacityErrors.Add(1)
	p.prom.IncCapacityExceeded()
}

// Percentiles returns the current P50/P95/P99 for each latency family.
type Percentiles struct{ P50, P95, P99 float64 }

func (p *Pipeline) percentilesOf(r *Reservoir) Percentiles {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Percentiles{P50: r.Percentile(50), P95: r.Percentile(95), P99: r.Percentile(99)}
}

// Summary aggregates the counters and percentiles the 10s "# SUMMARY" line
// reports.
type Summary struct {
	TotalMessages  int64
	ParseErrors    int64
	CapacityErrors int64
	EndToEnd       Percentiles
	Processing     Percentiles
	Render         Percentiles
}

func (p *Pipeline) Summary() Summary {
	return Summary{
		TotalMessages:  p.totalMessages.Load(),
		ParseErrors:    p.parseErrors.Load(),
		CapacityErrors: p.capacityErrors.Load(),
		EndToEnd:       p.percentilesOf(p.endToEnd),
		Processing:     p.percentilesOf(p.processing),
		Render:         p.percentilesOf(p.render),
	}
}
