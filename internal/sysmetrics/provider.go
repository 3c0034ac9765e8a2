// Package sysmetrics serves the dashboard metrics: the gateway's numbers
// when it is reachable, locally sampled/simulated values otherwise. The
// dashboard degrades, it never hard-fails.
package sysmetrics

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"consoled/pkg/types"
)

// Source is the slice of the gateway client the provider needs.
type Source interface {
	SystemMetrics(ctx context.Context) (types.SystemMetrics, error)
}

// Provider fetches system metrics with local fallback.
type Provider struct {
	src Source
	log zerolog.Logger

	mu      sync.Mutex
	lastGPU float64
}

// New constructs a provider backed by the given gateway source.
func New(src Source, log zerolog.Logger) *Provider {
	return &Provider{src: src, log: log, lastGPU: 35}
}

// Collect returns current metrics, marking Simulated when the gateway was
// unreachable and values were produced locally.
func (p *Provider) Collect(ctx context.Context) types.SystemMetrics {
	m, err := p.src.SystemMetrics(ctx)
	if err == nil {
		return m
	}
	p.log.Debug().Err(err).Msg("gateway metrics unavailable, sampling locally")
	return p.sample(ctx)
}

// sample builds a plausible local payload: real CPU/memory/disk via gopsutil,
// GPU numbers from a bounded random walk (there is no local GPU probe here).
func (p *Provider) sample(ctx context.Context) types.SystemMetrics {
	out := types.SystemMetrics{Simulated: true}

	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		out.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out.MemoryPercent = vm.UsedPercent
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		out.DiskPercent = du.UsedPercent
	}

	p.mu.Lock()
	p.lastGPU += (rand.Float64() - 0.5) * 10
	if p.lastGPU < 5 {
		p.lastGPU = 5
	}
	if p.lastGPU > 95 {
		p.lastGPU = 95
	}
	out.GPUPercent = p.lastGPU
	out.GPUMemoryPercent = p.lastGPU * 0.8
	p.mu.Unlock()
	return out
}
