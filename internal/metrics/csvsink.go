package metrics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"Timestamp", "MessageType", "SendTimestamp", "ReceiveTimestamp",
	"QueueTimestamp", "ApplyTimestamp", "RenderStartTimestamp",
	"RenderEndTimestamp", "EndToEndLatency", "ProcessingLatency",
	"RenderLatency", "QueueDepth", "UIRenderQueueDepth", "CPUUsage",
	"MemoryUsage", "Gen0Collections", "Gen1Collections", "Gen2Collections",
}

// CSVSink owns the metrics_YYYYMMDD_HHMMSS.csv file a pipeline instance
// writes to for its lifetime. Writes are best-effort: an IOError here is
// swallowed (spec §7) to keep the hot path from ever failing on a flush.
type CSVSink struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// NewCSVSink creates (or truncates) metrics_<start-timestamp>.csv under
// dir and writes the header row.
func NewCSVSink(dir string) (*CSVSink, error) {
	if dir == "" {
		dir = "Metrics"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("metrics: create directory: %w", err)
	}

	name := fmt.Sprintf("metrics_%s.csv", time.Now().UTC().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("metrics: create csv: %w", err)
	}

	sink := &CSVSink{file: f, w: bufio.NewWriter(f)}
	sink.writeRow(csvHeader)
	return sink, nil
}

func (s *CSVSink) writeRow(fields []string) {
	for i, f := range fields {
		if i > 0 {
			s.w.WriteByte(',')
		}
		s.w.WriteString(f)
	}
	s.w.WriteByte('\n')
}

// Flush appends recs to the CSV and flushes the underlying buffer. Safe to
// call with an empty slice (no-op beyond the buffer flush).
func (s *CSVSink) Flush(recs []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		s.writeRow([]string{
			itoa(r.Timestamp), r.MessageType, itoa(r.SendTimestamp),
			itoa(r.ReceiveTimestamp), itoa(r.QueueTimestamp), itoa(r.ApplyTimestamp),
			itoa(r.RenderStartTimestamp), itoa(r.RenderEndTimestamp),
			itoa(r.EndToEndLatency), itoa(r.ProcessingLatency), itoa(r.RenderLatency),
			itoa(int64(r.QueueDepth)), itoa(int64(r.UIRenderQueueDepth)),
			ftoa(r.CPUUsage), itoa(r.MemoryUsage),
			itoa(r.Gen0Collections), itoa(r.Gen1Collections), itoa(r.Gen2Collections),
		})
	}
	if err := s.w.Flush(); err != nil {
		_ = err // best-effort: metrics I/O never fails the hot path
	}
}

// WriteSummary appends a "# SUMMARY ..." comment line aggregating the
// pipeline's counters and percentiles (spec §6).
func (s *CSVSink) WriteSummary(sum Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf(
		"# SUMMARY ts=%d total=%d parse_errors=%d capacity_errors=%d "+
			"e2e_p50=%.2f e2e_p95=%.2f e2e_p99=%.2f "+
			"proc_p50=%.2f proc_p95=%.2f proc_p99=%.2f "+
			"render_p50=%.2f render_p95=%.2f render_p99=%.2f\n",
		time.Now().UnixMilli(), sum.TotalMessages, sum.ParseErrors, sum.CapacityErrors,
		sum.EndToEnd.P50, sum.EndToEnd.P95, sum.EndToEnd.P99,
		sum.Processing.P50, sum.Processing.P95, sum.Processing.P99,
		sum.Render.P50, sum.Render.P95, sum.Render.P99,
	)
	if _, err := s.w.WriteString(line); err != nil {
		_ = err
	}
	if err := s.w.Flush(); err != nil {
		_ = err
	}
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.w.Flush()
	_ = s.file.Close()
}

func itoa(v int64) string   { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
