// internal/progress/dots.go
// Package: progress
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/mwiater/benchrunner/internal/model"
)

// Dots prints a single character per finished variant: "." completed,
// "F" failed, "E" errored. Problems are listed after the run.
type Dots struct {
	mu       sync.Mutex
	w        io.Writer
	problems []*model.Variant
}

// NewDots returns a dots logger writing to w.
func NewDots(w io.Writer) *Dots { return &Dots{w: w} }

func (d *Dots) SuiteStart(*model.Suite, int)    {}
func (d *Dots) BenchmarkStart(*model.Benchmark) {}
func (d *Dots) SubjectStart(*model.Subject)     {}
func (d *Dots) VariantStart(*model.Variant)     {}
func (d *Dots) IterationEnd(*model.Iteration)   {}
func (d *Dots) Retry(*model.Variant, float64)   {}

func (d *Dots) VariantEnd(v *model.Variant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch v.Status {
	case model.StatusFailed:
		fmt.Fprint(d.w, failStyle.Render("F"))
		d.problems = append(d.problems, v)
	case model.StatusErrored:
		fmt.Fprint(d.w, errorStyle.Render("E"))
		d.problems = append(d.problems, v)
	default:
		fmt.Fprint(d.w, ".")
	}
}

func (d *Dots) SuiteEnd(suite *model.Suite) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.w, "\n\n")
	for i, v := range d.problems {
		fmt.Fprintf(d.w, "%d) %s::%s\n", i+1, v.Subject().Benchmark().Class, VariantLine(v))
	}
	if len(d.problems) > 0 {
		fmt.Fprintln(d.w)
	}
	fmt.Fprintln(d.w, SummaryLine(suite))
}
