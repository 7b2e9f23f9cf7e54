// Package sysinfo samples host CPU and memory usage for run summaries.
package sysinfo

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot holds point-in-time host utilization.
type Snapshot struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	MemUsedMB  uint64  `json:"mem_used_mb"`
}

// Sample reads CPU and memory usage. The CPU reading averages over 100ms,
// long enough for a stable number without delaying the run summary.
func Sample(log zerolog.Logger) Snapshot {
	var snap Snapshot

	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		snap.CPUPercent = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to get memory statistics")
		return snap
	}
	snap.MemPercent = memStat.UsedPercent
	snap.MemUsedMB = memStat.Used / 1024 / 1024

	return snap
}
