package isolation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/benchrunner/internal/model"
)

func job(command ...string) Job {
	return Job{
		Command: command,
		Request: Request{
			Class:      "HashBench",
			Subject:    "benchMd5",
			Revs:       4,
			Parameters: map[string]any{"size": 10},
			Before:     []string{"setUp"},
		},
		Timeout: time.Second,
	}
}

func launchWith(t *testing.T, fn func(ctx context.Context, name string, input []byte, args ...string) ([]byte, error)) ([]model.Result, *MockProcessManager, error) {
	t.Helper()
	pm := &MockProcessManager{RunWithInputFunc: fn}
	results, err := NewProcessLauncher(pm).Launch(context.Background(), job("php", "bench.php"))
	return results, pm, err
}

func requireModelError(t *testing.T, err error) *model.Error {
	t.Helper()
	var e *model.Error
	require.True(t, errors.As(err, &e), "expected *model.Error, got %v", err)
	return e
}

func TestLaunch_DecodesResultsSortedByKind(t *testing.T) {
	results, pm, err := launchWith(t, func(_ context.Context, _ string, _ []byte, _ ...string) ([]byte, error) {
		return []byte(`{"results":{"time":{"net":40},"mem":{"peak":100,"real":90,"final":80},"io":{"reads":3}}}`), nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, model.MetricsResult{Kind: "io", Values: map[string]float64{"reads": 3}}, results[0])
	assert.Equal(t, model.MemoryResult{Peak: 100, Real: 90, Final: 80}, results[1])
	assert.Equal(t, model.TimeResult{Net: 40}, results[2])

	calls := pm.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "php", calls[0].Name)
	assert.Equal(t, []string{"bench.php"}, calls[0].Args)

	var req Request
	require.NoError(t, json.Unmarshal(calls[0].Input, &req))
	assert.Equal(t, "HashBench", req.Class)
	assert.Equal(t, 4, req.Revs)
	assert.Equal(t, []string{"setUp"}, req.Before)
	assert.Equal(t, 10.0, req.Parameters["size"])
}

func TestLaunch_SubjectError(t *testing.T) {
	_, _, err := launchWith(t, func(_ context.Context, name string, _ []byte, _ ...string) ([]byte, error) {
		out := []byte(`{"error":{"class":"RuntimeException","message":"boom","code":3,"file":"bench.php","line":12}}`)
		return out, &ExitError{Name: name, Code: 255}
	})
	e := requireModelError(t, err)
	assert.Equal(t, model.Error{Class: "RuntimeException", Message: "boom", Code: 3, File: "bench.php", Line: 12}, *e)
}

func TestLaunch_ProcessErrorUsesStderr(t *testing.T) {
	_, _, err := launchWith(t, func(_ context.Context, name string, _ []byte, _ ...string) ([]byte, error) {
		return []byte("garbage"), &ExitError{Name: name, Code: 2, Stderr: "segfault"}
	})
	e := requireModelError(t, err)
	assert.Equal(t, ClassProcess, e.Class)
	assert.Equal(t, "segfault", e.Message)
	assert.Equal(t, 2, e.Code)
}

func TestLaunch_ProtocolErrors(t *testing.T) {
	for name, out := range map[string]string{
		"empty":        "",
		"not json":     "hello",
		"no payload":   "{}",
		"unknown key":  `{"results":{"time":{"net":1}},"extra":1}`,
		"missing time": `{"results":{"mem":{"peak":1}}}`,
		"dashed kind":  `{"results":{"time":{"net":1},"my-kind":{"net":2}}}`,
		"empty kind":   `{"results":{"time":{"net":1},"":{"net":2}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := launchWith(t, func(context.Context, string, []byte, ...string) ([]byte, error) {
				return []byte(out), nil
			})
			assert.Equal(t, ClassProtocol, requireModelError(t, err).Class)
		})
	}
}

func TestLaunch_Timeout(t *testing.T) {
	pm := &MockProcessManager{RunWithInputFunc: func(ctx context.Context, _ string, _ []byte, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	j := job("sleepy")
	j.Timeout = 10 * time.Millisecond

	_, err := NewProcessLauncher(pm).Launch(context.Background(), j)
	e := requireModelError(t, err)
	assert.Equal(t, ClassTimeout, e.Class)
	assert.Contains(t, e.Message, "10ms")
}

func TestLaunch_ParentCancellationIsNotATimeout(t *testing.T) {
	pm := &MockProcessManager{RunWithInputFunc: func(ctx context.Context, _ string, _ []byte, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcessLauncher(pm).Launch(ctx, job("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLaunch_EmptyCommand(t *testing.T) {
	_, err := NewProcessLauncher(&MockProcessManager{}).Launch(context.Background(), Job{})
	assert.Error(t, err)
}

// helperLauncher runs this test binary as the subject command.
func helperLauncher(mode string) (*ProcessLauncher, []string) {
	pm := &DefaultProcessManager{Env: []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode}}
	return NewProcessLauncher(pm), []string{os.Args[0], "-test.run=TestHelperProcess", "--"}
}

func TestLaunch_ChildProcess(t *testing.T) {
	l, cmd := helperLauncher("ok")
	j := job(cmd...)
	j.Timeout = 10 * time.Second
	results, err := l.Launch(context.Background(), j)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.TimeResult{Net: 40}, results[0])
}

func TestLaunch_ChildProcessError(t *testing.T) {
	l, cmd := helperLauncher("error")
	_, err := l.Launch(context.Background(), job(cmd...))
	e := requireModelError(t, err)
	assert.Equal(t, "LogicException", e.Class)
	assert.Equal(t, "benchMd5 failed", e.Message)
}

func TestLaunch_ChildProcessCrash(t *testing.T) {
	l, cmd := helperLauncher("crash")
	_, err := l.Launch(context.Background(), job(cmd...))
	e := requireModelError(t, err)
	assert.Equal(t, ClassProcess, e.Class)
	assert.Equal(t, 3, e.Code)
	assert.Equal(t, "fatal: out of memory", e.Message)
}

func TestLaunch_ChildProcessTimeout(t *testing.T) {
	l, cmd := helperLauncher("hang")
	j := job(cmd...)
	j.Timeout = 200 * time.Millisecond
	_, err := l.Launch(context.Background(), j)
	assert.Equal(t, ClassTimeout, requireModelError(t, err).Class)
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	var req Request
	in, _ := io.ReadAll(os.Stdin)
	_ = json.Unmarshal(in, &req)

	switch os.Getenv("HELPER_MODE") {
	case "ok":
		fmt.Printf(`{"results":{"time":{"net":%d}}}`, req.Revs*10)
	case "error":
		fmt.Printf(`{"error":{"class":"LogicException","message":"%s failed","code":1}}`, req.Subject)
		os.Exit(1)
	case "crash":
		fmt.Fprint(os.Stderr, "fatal: out of memory\n")
		os.Exit(3)
	case "hang":
		time.Sleep(time.Minute)
	}
}
