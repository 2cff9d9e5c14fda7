// internal/isolation/launcher.go
// Package: isolation
package isolation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mwiater/benchrunner/internal/model"
)

// Error classes recorded for failures detected outside the subject.
const (
	ClassTimeout  = "TimeoutError"
	ClassProcess  = "ProcessError"
	ClassProtocol = "ProtocolError"
)

// Request is written as JSON to the subject command's stdin, once per
// iteration.
type Request struct {
	Class      string         `json:"class"`
	Subject    string         `json:"subject"`
	Revs       int            `json:"revs"`
	Parameters map[string]any `json:"parameters"`
	Before     []string       `json:"before"`
	After      []string       `json:"after"`
}

// Response is the JSON document a subject command writes to stdout.
type Response struct {
	Results map[string]map[string]float64 `json:"results,omitempty"`
	Error   *model.Error                  `json:"error,omitempty"`
}

// Job describes one isolated iteration.
type Job struct {
	Command []string
	Request Request
	// Timeout bounds the whole child process; zero disables it.
	Timeout time.Duration
}

// Launcher executes one iteration in an isolated context. Subject and
// process failures are returned as *model.Error.
type Launcher interface {
	Launch(ctx context.Context, job Job) ([]model.Result, error)
}

// ProcessLauncher runs every iteration in its own child process.
type ProcessLauncher struct {
	pm ProcessManager
}

// NewProcessLauncher returns a launcher backed by pm.
func NewProcessLauncher(pm ProcessManager) *ProcessLauncher {
	return &ProcessLauncher{pm: pm}
}

// Launch starts the subject command, sends the request and decodes the
// response. Results are returned sorted by kind.
func (l *ProcessLauncher) Launch(ctx context.Context, job Job) ([]model.Result, error) {
	if len(job.Command) == 0 {
		return nil, errors.New("launch: empty command")
	}
	input, err := json.Marshal(job.Request)
	if err != nil {
		return nil, fmt.Errorf("launch: encode request: %w", err)
	}

	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	out, runErr := l.pm.RunWithInput(runCtx, job.Command[0], input, job.Command[1:]...)
	if runErr != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, &model.Error{
			Class:   ClassTimeout,
			Message: fmt.Sprintf("iteration of %s exceeded the timeout of %s", job.Request.Subject, job.Timeout),
			Code:    -1,
		}
	}

	resp, decodeErr := decodeResponse(out)
	if decodeErr == nil && resp.Error != nil {
		e := *resp.Error
		if e.Class == "" {
			e.Class = ClassProcess
		}
		return nil, &e
	}
	if runErr != nil {
		return nil, processError(runErr)
	}
	if decodeErr != nil {
		return nil, &model.Error{Class: ClassProtocol, Message: decodeErr.Error()}
	}
	if _, ok := resp.Results[model.KindTime]; !ok {
		return nil, &model.Error{
			Class:   ClassProtocol,
			Message: fmt.Sprintf("response has no %q result", model.KindTime),
		}
	}

	kinds := make([]string, 0, len(resp.Results))
	for k := range resp.Results {
		// Serialized metrics are named <kind>-<metric>.
		if k == "" || strings.Contains(k, "-") {
			return nil, &model.Error{
				Class:   ClassProtocol,
				Message: fmt.Sprintf("invalid result kind %q: must be non-empty and must not contain '-'", k),
			}
		}
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	results := make([]model.Result, 0, len(kinds))
	for _, k := range kinds {
		results = append(results, model.ResultFromMetrics(k, resp.Results[k]))
	}
	return results, nil
}

func decodeResponse(out []byte) (*Response, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, errors.New("subject wrote no response")
	}
	var resp Response
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Results == nil && resp.Error == nil {
		return nil, errors.New("response has neither results nor error")
	}
	return &resp, nil
}

func processError(err error) *model.Error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		msg := exitErr.Stderr
		if msg == "" {
			msg = exitErr.Error()
		}
		return &model.Error{Class: ClassProcess, Message: msg, Code: exitErr.Code}
	}
	return &model.Error{Class: ClassProcess, Message: err.Error()}
}
