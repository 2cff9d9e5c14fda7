// internal/harness/variant.go
// Package: harness
package harness

import (
	"context"
	"log/slog"
	"time"

	"github.com/mwiater/benchrunner/internal/assertion"
	"github.com/mwiater/benchrunner/internal/isolation"
	"github.com/mwiater/benchrunner/internal/model"
)

// runVariant drives one variant through
// pending → warmup → measuring → retry-check → completed | failed | errored.
// Errors never escape: they end up in the variant's error stack.
func (r *Runner) runVariant(ctx context.Context, rc RunnerContext, j job) {
	v := j.variant
	log := r.logger.With("variant", v.Name())

	r.progress.VariantStart(v)
	defer func() {
		r.metrics.VariantFinished(v.Status)
		r.progress.VariantEnd(v)
	}()

	timeout := rc.Timeout
	if j.subject.Timeout > 0 {
		timeout = j.subject.Timeout
	}
	launch := isolation.Job{
		Command: j.benchmark.Command,
		Request: isolation.Request{
			Class:      j.subject.Class,
			Subject:    j.subject.Name,
			Revs:       v.Revolutions,
			Parameters: v.ParameterSet.Map(),
			Before:     j.subject.Before,
			After:      j.subject.After,
		},
		Timeout: timeout,
	}

	if v.Warmup > 0 {
		v.Status = model.StatusWarmup
		for i := 0; i < v.Warmup; i++ {
			if _, err := r.launch(ctx, launch); err != nil {
				r.fail(log, v, err)
				return
			}
		}
	}

	threshold := j.subject.RetryThreshold
	for {
		v.Status = model.StatusMeasuring
		for i := 0; i < v.IterationCount; i++ {
			if i > 0 {
				if err := r.sleep(ctx, j.subject.Sleep); err != nil {
					r.fail(log, v, err)
					return
				}
			}
			results, err := r.launch(ctx, launch)
			if err != nil {
				r.fail(log, v, err)
				return
			}
			it := v.CreateIteration()
			for _, res := range results {
				it.SetResult(res)
			}
			r.progress.IterationEnd(it)
		}

		if threshold == nil {
			break
		}
		v.Status = model.StatusRetryCheck
		d, err := v.Distribution()
		if err != nil {
			r.fail(log, v, err)
			return
		}
		rstdev := d.Rstdev()
		if rstdev <= *threshold {
			break
		}
		if v.Retries >= rc.RetryLimit {
			log.Warn("retry limit reached, keeping last measurement",
				"rstdev", rstdev, "threshold", *threshold, "retries", v.Retries)
			break
		}
		v.Retries++
		r.metrics.Retried()
		log.Debug("rstdev above threshold, re-measuring", "rstdev", rstdev, "threshold", *threshold, "retry", v.Retries)
		r.progress.Retry(v, rstdev)
		v.ResetIterations()
	}

	d, err := v.Distribution()
	if err != nil {
		r.fail(log, v, err)
		return
	}
	if err := v.ComputeStats(); err != nil {
		r.fail(log, v, err)
		return
	}

	failures, err := assertion.EvaluateAll(d, j.subject.Assertions)
	if err != nil {
		r.fail(log, v, err)
		return
	}
	if len(failures) == 0 {
		v.Status = model.StatusCompleted
		return
	}
	mf := make([]model.Failure, 0, len(failures))
	for _, f := range failures {
		mf = append(mf, model.Failure{Message: f.Message})
	}
	if err := v.SetFailures(mf); err != nil {
		r.fail(log, v, err)
		return
	}
	log.Info("variant failed assertions", "failures", len(mf))
}

// launch runs one isolated iteration and records its wall time.
func (r *Runner) launch(ctx context.Context, j isolation.Job) ([]model.Result, error) {
	start := time.Now()
	results, err := r.launcher.Launch(ctx, j)
	r.metrics.IterationFinished(time.Since(start))
	return results, err
}

// fail records err as the variant's error stack.
func (r *Runner) fail(log *slog.Logger, v *model.Variant, err error) {
	log.Warn("variant errored", "error", err)
	if serr := v.SetErrorStack(model.ErrorStack{model.ErrorFrom(err)}); serr != nil {
		v.Status = model.StatusErrored
	}
}
