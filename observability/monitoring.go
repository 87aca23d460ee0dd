package observability

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Stats aggregates the runtime metrics exposed on the monitoring
// endpoint.
type Stats struct {
	Games          int     `json:"games"`
	ActiveGames    int     `json:"active_games"`
	Subscribers    int     `json:"subscribers"`
	AllocMemMb     uint64  `json:"alloc_mem_mb"`
	RssMb          uint64  `json:"rss_mb"`
	CPUPercent     float64 `json:"cpu_percent"`
	NumGoroutine   int     `json:"num_goroutine"`
	NumGC          uint32  `json:"num_gc"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	CollectedAtUTC string  `json:"collected_at"`
}

// GameCounts is what the monitor needs from the game runtime, kept as a
// narrow interface so observability never imports it.
type GameCounts interface {
	Count() int
	ActiveGames() int
	Subscribers() int
}

// Monitor samples process-level health on demand.
type Monitor struct {
	log       *slog.Logger
	proc      *process.Process
	counts    GameCounts
	startedAt time.Time
}

func NewMonitor(log *slog.Logger, counts GameCounts) (*Monitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Monitor{
		log:       log,
		proc:      proc,
		counts:    counts,
		startedAt: time.Now(),
	}, nil
}

// Collect gathers a point-in-time snapshot. Failures from the OS probe
// are logged and leave those fields zeroed rather than failing the
// whole report.
func (m *Monitor) Collect() Stats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := Stats{
		Games:          m.counts.Count(),
		ActiveGames:    m.counts.ActiveGames(),
		Subscribers:    m.counts.Subscribers(),
		AllocMemMb:     memStats.Alloc / 1024 / 1024,
		NumGoroutine:   runtime.NumGoroutine(),
		NumGC:          memStats.NumGC,
		UptimeSeconds:  int64(time.Since(m.startedAt).Seconds()),
		CollectedAtUTC: time.Now().UTC().Format(time.RFC3339),
	}

	if memInfo, err := m.proc.MemoryInfo(); err == nil {
		stats.RssMb = memInfo.RSS / 1024 / 1024
	} else {
		m.log.Debug("Failed to collect process memory", "err", err)
	}

	if cpuPercent, err := m.proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpuPercent
	} else {
		m.log.Debug("Failed to collect process cpu", "err", err)
	}

	return stats
}
