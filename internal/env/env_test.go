package env

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/model"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func gitMock(inTree bool) *isolation.MockProcessManager {
	return &isolation.MockProcessManager{
		RunFunc: func(_ context.Context, name string, args ...string) ([]byte, error) {
			switch strings.Join(args, " ") {
			case "rev-parse --is-inside-work-tree":
				if !inTree {
					return nil, &isolation.ExitError{Name: name, Code: 128, Stderr: "fatal: not a git repository"}
				}
				return []byte("true\n"), nil
			case "rev-parse --abbrev-ref HEAD":
				return []byte("main\n"), nil
			case "rev-parse HEAD":
				return []byte("4f2a9c1\n"), nil
			}
			return nil, errors.New("unexpected git call")
		},
	}
}

func TestVCSProvider(t *testing.T) {
	pm := gitMock(true)
	info, err := NewVCSProvider(pm).Provide(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "vcs", info.Name)
	assert.Equal(t, []string{"branch", "system", "version"}, info.Keys())
	branch, _ := info.Get("branch")
	assert.Equal(t, "main", branch)
	version, _ := info.Get("version")
	assert.Equal(t, "4f2a9c1", version)
	assert.Len(t, pm.Calls(), 3)
}

func TestVCSProvider_OutsideRepository(t *testing.T) {
	_, err := NewVCSProvider(gitMock(false)).Provide(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewVCSProvider(nil).Provide(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGolangProvider(t *testing.T) {
	info, err := GolangProvider{}.Provide(context.Background())
	require.NoError(t, err)
	v, ok := info.Get("version")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(v, "go") || strings.HasPrefix(v, "devel"))
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry(gitMock(true))
	assert.Equal(t, []string{"cpu", "golang", "host", "mem", "sysload", "vcs"}, r.Names())

	ps, err := r.Select([]string{"vcs", "golang"})
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "vcs", ps[0].Name())

	_, err = r.Select([]string{"opcache"})
	assert.ErrorContains(t, err, `unknown environment provider "opcache"`)
}

type stubProvider struct {
	name string
	err  error
}

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Provide(context.Context) (model.Information, error) {
	if s.err != nil {
		return model.Information{}, s.err
	}
	return model.NewInformation(s.name, map[string]string{"ok": "1"}), nil
}

func TestCollect_SkipsUnavailableAndFailing(t *testing.T) {
	infos := Collect(context.Background(), []Provider{
		stubProvider{name: "a"},
		stubProvider{name: "b", err: ErrUnavailable},
		stubProvider{name: "c", err: errors.New("boom")},
		stubProvider{name: "d"},
	}, discard())

	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "d", infos[1].Name)
}
