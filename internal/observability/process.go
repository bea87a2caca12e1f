package observability

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats собирает сведения о процессе для итоговых отчетов
type ProcessStats struct {
	StartTime time.Time
}

func NewProcessStats() *ProcessStats {
	return &ProcessStats{StartTime: time.Now()}
}

// Uptime возвращает время работы процесса
func (ps *ProcessStats) Uptime() string {
	return formatDuration(time.Since(ps.StartTime))
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// RSSMegabytes возвращает резидентную память процесса в MB.
// Если ОС не отдаёт сведения о процессе, используется куча Go.
func (ps *ProcessStats) RSSMegabytes() float64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			return float64(info.RSS) / 1024 / 1024
		}
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}

// CPUPercent возвращает загрузку CPU процессом, а при ошибке - системную
func (ps *ProcessStats) CPUPercent() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if p, err := proc.CPUPercent(); err == nil {
			return p, nil
		}
	}
	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// Report возвращает сводку для лога
func (ps *ProcessStats) Report() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	report := map[string]interface{}{
		"uptime":        ps.Uptime(),
		"rss_mb":        ps.RSSMegabytes(),
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report["system_used_percent"] = vm.UsedPercent
	}
	if cpuPercent, err := ps.CPUPercent(); err == nil {
		report["cpu_percent"] = cpuPercent
	}
	return report
}
