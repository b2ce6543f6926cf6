package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/bigbang/pkg/source"
)

// CategorySysMetrics tags events produced by the system metrics poller.
const CategorySysMetrics source.Category = "sysmetrics"

// SysMetrics is one snapshot of host utilisation, gathered via gopsutil.
type SysMetrics struct {
	// CPUTotal is the aggregate CPU usage percentage (0-100).
	CPUTotal float64

	// CPUCores holds per-core usage percentages.
	CPUCores []float64

	// MemUsedPercent is physical memory usage (0-100).
	MemUsedPercent float64
	MemUsed        uint64
	MemTotal       uint64

	// Load1 is the one-minute load average.
	Load1 float64

	Timestamp time.Time
}

// FetchSysMetrics gathers a SysMetrics snapshot. Partial failures fail the
// whole fetch: the sysmon world renders either a complete snapshot or the
// carried error.
func FetchSysMetrics(ctx context.Context) (any, error) {
	m := SysMetrics{Timestamp: time.Now()}

	perCore, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return nil, fmt.Errorf("collect: cpu: %w", err)
	}
	total, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("collect: cpu total: %w", err)
	}
	m.CPUCores = perCore
	if len(total) > 0 {
		m.CPUTotal = total[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: memory: %w", err)
	}
	m.MemUsedPercent = vm.UsedPercent
	m.MemUsed = vm.Used
	m.MemTotal = vm.Total

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: load: %w", err)
	}
	m.Load1 = avg.Load1

	return m, nil
}

// NewSysMetricsPoller returns a Poller emitting SysMetrics snapshots under
// CategorySysMetrics.
func NewSysMetricsPoller(interval time.Duration) *Poller {
	return NewPoller(CategorySysMetrics, interval, FetchSysMetrics)
}
