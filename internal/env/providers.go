// internal/env/providers.go
// Package: env
package env

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/model"
)

// HostProvider reports the operating system, like uname.
type HostProvider struct{}

func (HostProvider) Name() string { return "host" }

func (p HostProvider) Provide(ctx context.Context) (model.Information, error) {
	h, err := host.InfoWithContext(ctx)
	if err != nil {
		return model.Information{}, fmt.Errorf("host info: %w", err)
	}
	return model.NewInformation(p.Name(), map[string]string{
		"os":       h.OS,
		"host":     h.Hostname,
		"platform": strings.TrimSpace(h.Platform + " " + h.PlatformVersion),
		"release":  h.KernelVersion,
		"machine":  h.KernelArch,
	}), nil
}

// GolangProvider reports the Go runtime running the benchmarks.
type GolangProvider struct{}

func (GolangProvider) Name() string { return "golang" }

func (p GolangProvider) Provide(context.Context) (model.Information, error) {
	return model.NewInformation(p.Name(), map[string]string{
		"version":    runtime.Version(),
		"goos":       runtime.GOOS,
		"goarch":     runtime.GOARCH,
		"gomaxprocs": strconv.Itoa(runtime.GOMAXPROCS(0)),
	}), nil
}

// CPUProvider reports the processor model and core counts.
type CPUProvider struct{}

func (CPUProvider) Name() string { return "cpu" }

func (p CPUProvider) Provide(ctx context.Context) (model.Information, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return model.Information{}, fmt.Errorf("cpu counts: %w", err)
	}
	info := model.NewInformation(p.Name(), map[string]string{"logical": strconv.Itoa(logical)})
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.Set("physical", strconv.Itoa(physical))
	}
	if stats, err := cpu.InfoWithContext(ctx); err == nil && len(stats) > 0 {
		info.Set("model", stats[0].ModelName)
		info.Set("mhz", strconv.FormatFloat(stats[0].Mhz, 'f', -1, 64))
	}
	return info, nil
}

// MemoryProvider reports total and available memory in bytes.
type MemoryProvider struct{}

func (MemoryProvider) Name() string { return "mem" }

func (p MemoryProvider) Provide(ctx context.Context) (model.Information, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.Information{}, fmt.Errorf("virtual memory: %w", err)
	}
	return model.NewInformation(p.Name(), map[string]string{
		"total":     strconv.FormatUint(vm.Total, 10),
		"available": strconv.FormatUint(vm.Available, 10),
	}), nil
}

// SysloadProvider reports the 1, 5 and 15 minute load averages.
type SysloadProvider struct{}

func (SysloadProvider) Name() string { return "sysload" }

func (p SysloadProvider) Provide(ctx context.Context) (model.Information, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return model.Information{}, fmt.Errorf("%w: load average: %v", ErrUnavailable, err)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return model.NewInformation(p.Name(), map[string]string{
		"l1":  f(avg.Load1),
		"l5":  f(avg.Load5),
		"l15": f(avg.Load15),
	}), nil
}

// VCSProvider reports the git branch and commit of the working directory.
type VCSProvider struct {
	pm isolation.ProcessManager
}

// NewVCSProvider returns a git provider running git through pm.
func NewVCSProvider(pm isolation.ProcessManager) *VCSProvider {
	return &VCSProvider{pm: pm}
}

func (*VCSProvider) Name() string { return "vcs" }

func (p *VCSProvider) Provide(ctx context.Context) (model.Information, error) {
	if p.pm == nil {
		return model.Information{}, ErrUnavailable
	}
	if _, err := p.pm.Run(ctx, "git", "rev-parse", "--is-inside-work-tree"); err != nil {
		return model.Information{}, fmt.Errorf("%w: not a git work tree", ErrUnavailable)
	}
	branch, err := p.pm.Run(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return model.Information{}, fmt.Errorf("git branch: %w", err)
	}
	version, err := p.pm.Run(ctx, "git", "rev-parse", "HEAD")
	if err != nil {
		return model.Information{}, fmt.Errorf("git commit: %w", err)
	}
	return model.NewInformation(p.Name(), map[string]string{
		"system":  "git",
		"branch":  strings.TrimSpace(string(branch)),
		"version": strings.TrimSpace(string(version)),
	}), nil
}
