package metrics

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"
)

// HostSampler reports process CPU% and memory for the CSV's CPUUsage /
// MemoryUsage columns. Host performance counters are host-specific (spec
// §9) — where gopsutil or the cgroup files are unavailable, zeros are
// returned rather than failing the caller.
//
// The Go runtime has no generational GC distinct from runtime.GC(), so the
// Gen0/1/2 columns always report zero here — documented, not a bug (spec
// §6: "GC columns are optional ... emit 0 where the host has no
// generational GC").
type HostSampler struct {
	mu   sync.Mutex
	proc *process.Process
}

// NewHostSampler resolves the current process handle for gopsutil. A
// failure here (e.g. /proc unavailable) degrades to always-zero sampling,
// matching the cgroup-detection fallback in cgroupMemoryLimit below.
func NewHostSampler() *HostSampler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &HostSampler{}
	}
	return &HostSampler{proc: p}
}

// Sample returns (cpuPercent, memoryBytes, gen0, gen1, gen2). The last
// three are always zero (see type doc).
func (h *HostSampler) Sample() (cpuPercent float64, memBytes int64, gen0, gen1, gen2 int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.proc == nil {
		return 0, 0, 0, 0, 0
	}
	if pct, err := h.proc.CPUPercent(); err == nil {
		cpuPercent = pct
	}
	if info, err := h.proc.MemoryInfo(); err == nil && info != nil {
		memBytes = int64(info.RSS)
	} else {
		var rt runtime.MemStats
		runtime.ReadMemStats(&rt)
		memBytes = int64(rt.Alloc)
	}
	return cpuPercent, memBytes, 0, 0, 0
}

// cgroupMemoryLimit detects the container memory limit (cgroup v2, falling
// back to v1), exported as the ingest_memory_limit_bytes Prometheus gauge.
// Returns 0 when no limit is detected (unconstrained host).
func cgroupMemoryLimit() int64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		limit := strings.TrimSpace(string(data))
		if limit != "max" {
			if v, err := strconv.ParseInt(limit, 10, 64); err == nil {
				return v
			}
		}
		return 0
	}
	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
			return v
		}
	}
	return 0
}
