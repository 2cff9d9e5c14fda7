// internal/progress/plain.go
// Package: progress
package progress

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/mwiater/benchrunner/internal/model"
)

// Plain prints one line per finished variant, grouped under its benchmark.
type Plain struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlain returns a plain logger writing to w.
func NewPlain(w io.Writer) *Plain { return &Plain{w: w} }

func (p *Plain) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

func (p *Plain) SuiteStart(suite *model.Suite, variants int) {
	p.printf("benchrunner %s, %d variants\n\n", suite.UUID, variants)
}

func (p *Plain) BenchmarkStart(b *model.Benchmark) {
	p.printf("%s\n", titleStyle.Render(b.Class))
}

func (p *Plain) SubjectStart(*model.Subject)   {}
func (p *Plain) VariantStart(*model.Variant)   {}
func (p *Plain) IterationEnd(*model.Iteration) {}

func (p *Plain) Retry(v *model.Variant, rstdev float64) {
	p.printf("    %s\n", faintStyle.Render(fmt.Sprintf(
		"%s: rstdev %s%% above threshold, retry %d",
		v.Subject().Name, strconv.FormatFloat(rstdev, 'f', 2, 64), v.Retries,
	)))
}

func (p *Plain) VariantEnd(v *model.Variant) {
	p.printf("    %s\n", VariantLine(v))
}

func (p *Plain) SuiteEnd(suite *model.Suite) {
	p.printf("\n%s\n", SummaryLine(suite))
}
