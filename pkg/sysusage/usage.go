// Package sysusage samples host CPU and memory load.
package sysusage

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sample is a point-in-time load reading, both values in percent.
type Sample struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

// Pair holds the readings taken before and after an operation.
type Pair struct {
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
}

// Sampler reads system load. Interval is the CPU measuring window; zero
// compares against the previous call.
type Sampler struct {
	Interval time.Duration
}

func NewSampler(interval time.Duration) *Sampler {
	return &Sampler{Interval: interval}
}

// Take returns the current load. Readings that fail are reported as zero.
func (s *Sampler) Take(ctx context.Context) Sample {
	var out Sample
	if pct, err := cpu.PercentWithContext(ctx, s.Interval, false); err == nil && len(pct) > 0 {
		out.CPU = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.Memory = vm.UsedPercent
	}
	return out
}

// Between pairs two samples into CPU and memory pairs.
func Between(initial, final Sample) (cpuUsage Pair, memoryUsage Pair) {
	return Pair{Initial: initial.CPU, Final: final.CPU}, Pair{Initial: initial.Memory, Final: final.Memory}
}
