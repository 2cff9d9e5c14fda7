// internal/isolation/process.go
// Package: isolation
package isolation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ProcessManager runs external processes. Everything that starts a child
// process goes through it so tests can substitute MockProcessManager.
//
// Implementations must be safe for concurrent use.
type ProcessManager interface {
	// Run executes name with args and returns its stdout.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// RunWithInput executes name with input piped to stdin. Stdout is
	// returned even when the process exits non-zero so callers can decode
	// a structured error written before exiting.
	RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, error)
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Name, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Name, e.Code)
}

// DefaultProcessManager implements ProcessManager with os/exec.
type DefaultProcessManager struct {
	// Env is appended to the current environment of every child.
	Env []string
	// Dir is the working directory of every child; empty means inherit.
	Dir string
}

// NewDefaultProcessManager returns a process manager running real processes.
func NewDefaultProcessManager() *DefaultProcessManager {
	return &DefaultProcessManager{}
}

// Run executes a command synchronously and returns its output.
func (pm *DefaultProcessManager) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return pm.run(ctx, name, nil, args)
}

// RunWithInput executes a command with input piped to stdin.
func (pm *DefaultProcessManager) RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, error) {
	return pm.run(ctx, name, input, args)
}

func (pm *DefaultProcessManager) run(ctx context.Context, name string, input []byte, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}
	if len(pm.Env) > 0 {
		cmd.Env = append(os.Environ(), pm.Env...)
	}
	cmd.Dir = pm.Dir
	// Grandchildren holding the pipes open must not outlive a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if ctx.Err() != nil {
		return stdout.Bytes(), ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), &ExitError{
			Name:   name,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}
	return nil, fmt.Errorf("failed to run %s: %w", name, err)
}

// MockProcessManager is a test double for ProcessManager. Calling a method
// whose function field is nil panics.
type MockProcessManager struct {
	RunFunc          func(ctx context.Context, name string, args ...string) ([]byte, error)
	RunWithInputFunc func(ctx context.Context, name string, input []byte, args ...string) ([]byte, error)

	mu    sync.Mutex
	calls []ProcessCall
}

// ProcessCall records a single invocation.
type ProcessCall struct {
	Method string
	Name   string
	Args   []string
	Input  []byte
}

// Run delegates to RunFunc and records the call.
func (m *MockProcessManager) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.record(ProcessCall{Method: "Run", Name: name, Args: args})
	if m.RunFunc == nil {
		panic("MockProcessManager.RunFunc not set")
	}
	return m.RunFunc(ctx, name, args...)
}

// RunWithInput delegates to RunWithInputFunc and records the call.
func (m *MockProcessManager) RunWithInput(ctx context.Context, name string, input []byte, args ...string) ([]byte, error) {
	m.record(ProcessCall{Method: "RunWithInput", Name: name, Args: args, Input: input})
	if m.RunWithInputFunc == nil {
		panic("MockProcessManager.RunWithInputFunc not set")
	}
	return m.RunWithInputFunc(ctx, name, input, args...)
}

func (m *MockProcessManager) record(c ProcessCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of the recorded calls.
func (m *MockProcessManager) Calls() []ProcessCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ProcessCall, len(m.calls))
	copy(out, m.calls)
	return out
}
