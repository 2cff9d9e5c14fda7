package report

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/serializer"
)

func suiteFixture(t *testing.T, context string) *model.Suite {
	t.Helper()
	s := model.NewSuite(context, time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local), "", "uuid-"+context)
	s.AddEnvInformation(model.NewInformation("golang", map[string]string{"version": "go1.24"}))

	subj := s.CreateBenchmark("HashBench").CreateSubject("benchMd5")
	ps, err := model.NewParameterSet("0", map[string]any{"size": 10})
	require.NoError(t, err)

	ok := subj.CreateVariant(ps, 10, 0, 2)
	for _, net := range []float64{100, 140} {
		it := ok.CreateIteration()
		it.SetResult(model.TimeResult{Net: net})
		it.SetResult(model.MemoryResult{Peak: 2048})
	}
	require.NoError(t, ok.ComputeStats())
	ok.Status = model.StatusCompleted

	broken := subj.CreateVariant(ps, 100, 0, 2)
	require.NoError(t, broken.SetErrorStack(model.ErrorStack{{Class: "ProcessError", Message: "exit status 2"}}))

	s.RegisterResults()
	return s
}

func dump(t *testing.T, dir, name string, suites ...*model.Suite) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, serializer.XMLEncoder{Version: "test"}.EncodeFile(path, suites...))
	return path
}

func TestLoadSuites(t *testing.T) {
	dir := t.TempDir()
	named := suiteFixture(t, "candidate")
	named.Name = "candidate run"
	a := dump(t, dir, "baseline.xml", suiteFixture(t, "baseline"))
	b := dump(t, dir, "candidate.xml", named)

	suites, err := LoadSuites([]string{a, b})
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "baseline.xml", suites[0].Name)
	assert.Equal(t, "candidate run", suites[1].Name)
	assert.Len(t, suites[0].Variants(), 2)
}

func TestLoadSuites_Errors(t *testing.T) {
	_, err := LoadSuites(nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	dir := t.TempDir()
	a := dump(t, dir, "a.xml", suiteFixture(t, "a"))
	_, err = LoadSuites([]string{a, filepath.Join(dir, "missing.xml")})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "could not find suite result file")

	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("<benchrunner"), 0o644))
	_, err = LoadSuites([]string{bad})
	assert.Error(t, err)
}

func TestManager_Render(t *testing.T) {
	m := NewManager()
	assert.Equal(t, []string{"aggregate", "env"}, m.Names())

	suites := []*model.Suite{suiteFixture(t, "baseline")}
	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf, []string{"aggregate", "env"}, suites))

	out := buf.String()
	for _, want := range []string{
		"benchmark", "rstdev", "HashBench", "benchMd5", "{size=10}",
		"2048b", "10.000μs", "12.000μs", "±16.67%", "OK", "ERROR ProcessError",
		"golang", "go1.24",
	} {
		assert.Contains(t, out, want)
	}
}

func TestManager_RenderValidatesFirst(t *testing.T) {
	m := NewManager()
	var buf bytes.Buffer

	assert.ErrorIs(t, m.Render(&buf, nil, nil), ErrNoReport)

	err := m.Render(&buf, []string{"aggregate", "nope"}, []*model.Suite{suiteFixture(t, "x")})
	assert.ErrorIs(t, err, ErrUnknownReport)
	assert.Empty(t, buf.String())
}

type failingGenerator struct{}

func (failingGenerator) Generate(io.Writer, []*model.Suite) error { return errors.New("disk full") }

func TestManager_GeneratorError(t *testing.T) {
	m := NewManager()
	m.Register("broken", failingGenerator{})
	err := m.Render(io.Discard, []string{"broken"}, nil)
	assert.ErrorContains(t, err, "report broken: disk full")
}
