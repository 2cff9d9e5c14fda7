// internal/env/env.go
// Package: env
package env

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/model"
)

// ErrUnavailable is returned by providers that do not apply to the current
// environment, e.g. vcs outside a repository.
var ErrUnavailable = errors.New("environment information unavailable")

// Provider supplies one block of environment information.
type Provider interface {
	Name() string
	Provide(ctx context.Context) (model.Information, error)
}

// DefaultProviders lists the providers collected when none are configured.
var DefaultProviders = []string{"host", "golang", "cpu", "mem", "sysload", "vcs"}

// Registry maps provider names to providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns a registry with the built-in providers. pm runs
// external tools such as git.
func NewRegistry(pm isolation.ProcessManager) *Registry {
	r := &Registry{providers: map[string]Provider{}}
	for _, p := range []Provider{
		HostProvider{},
		GolangProvider{},
		CPUProvider{},
		MemoryProvider{},
		SysloadProvider{},
		&VCSProvider{pm: pm},
	} {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a provider under its name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Names returns the registered provider names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Select returns the providers for names in the given order. Unknown
// names are an error.
func (r *Registry) Select(names []string) ([]Provider, error) {
	out := make([]Provider, 0, len(names))
	for _, n := range names {
		p, ok := r.providers[n]
		if !ok {
			return nil, fmt.Errorf("unknown environment provider %q (available: %v)", n, r.Names())
		}
		out = append(out, p)
	}
	return out, nil
}

// Collect queries every provider in order. Unavailable providers are
// skipped silently; failing ones are logged and skipped.
func Collect(ctx context.Context, providers []Provider, logger *slog.Logger) []model.Information {
	var infos []model.Information
	for _, p := range providers {
		info, err := p.Provide(ctx)
		if errors.Is(err, ErrUnavailable) {
			logger.Debug("environment provider unavailable", "provider", p.Name())
			continue
		}
		if err != nil {
			logger.Warn("environment provider failed", "provider", p.Name(), "error", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos
}
