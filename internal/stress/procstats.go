package stress

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a snapshot of the resources the current process uses.
type ProcessStats struct {
	PID        int32         `json:"pid" yaml:"pid"`
	Threads    int32         `json:"threads" yaml:"threads"`
	Goroutines int           `json:"goroutines" yaml:"goroutines"`
	UserCPU    time.Duration `json:"user_cpu" yaml:"user_cpu"`
	SystemCPU  time.Duration `json:"system_cpu" yaml:"system_cpu"`
	RSS        uint64        `json:"rss" yaml:"rss"`
	LogicalCPU int           `json:"logical_cpu" yaml:"logical_cpu"`
}

// CollectProcessStats reads the OS view of the current process: its thread
// count, CPU times and resident memory.
func CollectProcessStats() (ProcessStats, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process %d: %w", pid, err)
	}

	stats := ProcessStats{
		PID:        pid,
		Goroutines: runtime.NumGoroutine(),
	}

	if stats.Threads, err = p.NumThreads(); err != nil {
		return stats, fmt.Errorf("thread count: %w", err)
	}

	times, err := p.Times()
	if err != nil {
		return stats, fmt.Errorf("cpu times: %w", err)
	}
	stats.UserCPU = seconds(times.User)
	stats.SystemCPU = seconds(times.System)

	mem, err := p.MemoryInfo()
	if err != nil {
		return stats, fmt.Errorf("memory info: %w", err)
	}
	stats.RSS = mem.RSS

	if stats.LogicalCPU, err = cpu.Counts(true); err != nil {
		return stats, fmt.Errorf("cpu count: %w", err)
	}
	return stats, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
