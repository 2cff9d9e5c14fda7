// internal/report/report.go
// Package: report
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/serializer"
)

// DefaultReport is rendered when nothing else is configured.
const DefaultReport = "aggregate"

var (
	// ErrNoFiles is returned when no suite document is given.
	ErrNoFiles = errors.New("at least one suite result file is required (see run --dump-file)")
	// ErrNoReport is returned when no report is requested.
	ErrNoReport = errors.New("at least one report is required, e.g. --report=aggregate")
	// ErrUnknownReport is returned for report names nobody registered.
	ErrUnknownReport = errors.New("unknown report")
)

// Generator renders one report over the given suites.
type Generator interface {
	Generate(w io.Writer, suites []*model.Suite) error
}

// Manager maps report names to generators.
type Manager struct {
	generators map[string]Generator
}

// NewManager returns a manager with the built-in reports registered.
func NewManager() *Manager {
	m := &Manager{generators: map[string]Generator{}}
	m.Register("aggregate", Aggregate{})
	m.Register("env", Env{})
	return m
}

// Register adds or replaces a generator.
func (m *Manager) Register(name string, g Generator) {
	m.generators[name] = g
}

// Names returns the registered report names sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.generators))
	for n := range m.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Render renders every named report in order. All names are checked
// before anything is written.
func (m *Manager) Render(w io.Writer, names []string, suites []*model.Suite) error {
	if len(names) == 0 {
		return ErrNoReport
	}
	gens := make([]Generator, 0, len(names))
	for _, n := range names {
		g, ok := m.generators[n]
		if !ok {
			return fmt.Errorf("%w %q (available: %v)", ErrUnknownReport, n, m.Names())
		}
		gens = append(gens, g)
	}
	for i, g := range gens {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := g.Generate(w, suites); err != nil {
			return fmt.Errorf("report %s: %w", names[i], err)
		}
	}
	return nil
}

// LoadSuites decodes the suite documents in files, in order. Every file is
// checked before any is decoded. Suites without a name are named after
// the base name of their file.
func LoadSuites(files []string) ([]*model.Suite, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			cwd, _ := os.Getwd()
			return nil, fmt.Errorf("could not find suite result file %q (cwd: %s): %w", f, cwd, err)
		}
	}

	var suites []*model.Suite
	for _, f := range files {
		decoded, err := serializer.DecodeFile(f)
		if err != nil {
			return nil, err
		}
		for _, s := range decoded {
			if s.Name == "" {
				s.Name = filepath.Base(f)
			}
		}
		suites = slices.Concat(suites, decoded)
	}
	return suites, nil
}
