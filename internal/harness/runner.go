// internal/harness/runner.go
// Package: harness
package harness

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mwiater/benchrunner/internal/definition"
	"github.com/mwiater/benchrunner/internal/env"
	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/metrics"
	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/progress"
)

// Runner executes resolved benchmarks and builds the suite.
type Runner struct {
	launcher isolation.Launcher
	progress progress.Logger
	metrics  *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher sets the launcher running isolated iterations.
func WithLauncher(l isolation.Launcher) Option { return func(r *Runner) { r.launcher = l } }

// WithProgress sets the progress logger.
func WithProgress(p progress.Logger) Option { return func(r *Runner) { r.progress = p } }

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option { return func(r *Runner) { r.metrics = m } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithClock sets the clock used for the suite date and run duration.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// WithSleep replaces the pause observed between iterations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// New returns a runner. Without options iterations run as child processes
// and progress is discarded.
func New(opts ...Option) *Runner {
	r := &Runner{
		launcher: isolation.NewProcessLauncher(isolation.NewDefaultProcessManager()),
		progress: progress.None{},
		metrics:  metrics.NewRecorder(),
		logger:   slog.Default(),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the recorder of the runner.
func (r *Runner) Metrics() *metrics.Recorder { return r.metrics }

// job is one variant scheduled for execution.
type job struct {
	benchmark *definition.Benchmark
	subject   *definition.Subject
	variant   *model.Variant
}

// Run executes every variant of benchmarks and returns the suite. Variants
// are created up front in submission order, so the suite order never
// depends on completion order. Variants that never started, because of
// StopOnError or cancellation, are pruned from the suite.
func (r *Runner) Run(ctx context.Context, rc RunnerContext, benchmarks []*definition.Benchmark) (*model.Suite, error) {
	rc = rc.withDefaults()
	start := r.now()

	suite := model.NewSuite(rc.ContextName, start, rc.ConfigPath, uuid.NewString())
	for _, info := range env.Collect(ctx, rc.EnvProviders, r.logger) {
		suite.AddEnvInformation(info)
	}

	jobs := buildJobs(suite, benchmarks)
	r.logger.Info("starting run", "suite", suite.UUID, "variants", len(jobs), "parallel", rc.Parallel)
	r.progress.SuiteStart(suite, len(jobs))

	// A slot is taken before the stop flag is read so that, even when
	// sequential, a variant is only started once its predecessor is done.
	var stopped atomic.Bool
	slots := make(chan struct{}, rc.Parallel)
	var g errgroup.Group

	var lastBench *model.Benchmark
	var lastSubject *model.Subject
schedule:
	for _, j := range jobs {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		if stopped.Load() || ctx.Err() != nil {
			<-slots
			break
		}
		subj := j.variant.Subject()
		if b := subj.Benchmark(); b != lastBench {
			lastBench = b
			r.progress.BenchmarkStart(b)
		}
		if subj != lastSubject {
			lastSubject = subj
			r.progress.SubjectStart(subj)
		}

		g.Go(func() error {
			defer func() { <-slots }()
			r.runVariant(ctx, rc, j)
			if rc.StopOnError && (j.variant.Status == model.StatusFailed || j.variant.Status == model.StatusErrored) {
				if !stopped.Swap(true) {
					r.logger.Warn("stopping after first problem", "variant", j.variant.Name(), "status", j.variant.Status)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	suite.Prune()
	suite.RegisterResults()
	r.progress.SuiteEnd(suite)
	r.metrics.RunFinished(r.now().Sub(start))

	sum := suite.Summary()
	r.logger.Info("run finished",
		"suite", suite.UUID,
		"variants", sum.Variants,
		"completed", sum.Completed,
		"failed", sum.Failed,
		"errored", sum.Errored,
	)
	return suite, ctx.Err()
}

func buildJobs(suite *model.Suite, benchmarks []*definition.Benchmark) []job {
	var jobs []job
	for _, b := range benchmarks {
		mb := suite.CreateBenchmark(b.Class)
		for _, s := range b.Subjects {
			ms := mb.CreateSubject(s.Name)
			ms.Groups = s.Groups
			ms.Sleep = int(s.Sleep / time.Microsecond)
			ms.OutputTimeUnit = s.OutputTimeUnit
			ms.OutputTimePrecision = s.OutputTimePrecision
			ms.OutputMode = s.OutputMode
			ms.RetryThreshold = s.RetryThreshold
			for _, ps := range s.ParameterSets {
				for _, revs := range s.Revs {
					v := ms.CreateVariant(ps, revs, s.Warmup, s.Iterations)
					jobs = append(jobs, job{benchmark: b, subject: s, variant: v})
				}
			}
		}
	}
	return jobs
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
