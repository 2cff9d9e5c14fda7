// internal/progress/progress.go
// Package: progress
package progress

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/timeunit"
)

// DefaultLogger is the logger used when none is configured.
const DefaultLogger = "plain"

// DefaultPrecision is the number of decimals shown when a subject sets no
// output precision.
const DefaultPrecision = 3

// Logger receives run events from the runner. Implementations must be
// safe for concurrent use since parallel variants report concurrently.
type Logger interface {
	SuiteStart(suite *model.Suite, variants int)
	BenchmarkStart(b *model.Benchmark)
	SubjectStart(s *model.Subject)
	VariantStart(v *model.Variant)
	IterationEnd(it *model.Iteration)
	Retry(v *model.Variant, rstdev float64)
	VariantEnd(v *model.Variant)
	SuiteEnd(suite *model.Suite)
}

var factories = map[string]func(w io.Writer) Logger{
	"plain": func(w io.Writer) Logger { return NewPlain(w) },
	"dots":  func(w io.Writer) Logger { return NewDots(w) },
	"tui":   func(w io.Writer) Logger { return NewTUI(w) },
	"none":  func(io.Writer) Logger { return None{} },
}

// Names returns the available logger names sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the logger registered under name writing to w.
func New(name string, w io.Writer) (Logger, error) {
	if name == "" {
		name = DefaultLogger
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown progress logger %q (available: %v)", name, Names())
	}
	return f(w), nil
}

// None discards every event.
type None struct{}

func (None) SuiteStart(*model.Suite, int)    {}
func (None) BenchmarkStart(*model.Benchmark) {}
func (None) SubjectStart(*model.Subject)     {}
func (None) VariantStart(*model.Variant)     {}
func (None) IterationEnd(*model.Iteration)   {}
func (None) Retry(*model.Variant, float64)   {}
func (None) VariantEnd(*model.Variant)       {}
func (None) SuiteEnd(*model.Suite)           {}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// FormatTime renders a per-revolution time in microseconds using the
// subject's output unit, mode and precision, e.g. "12.345μs".
func FormatTime(s *model.Subject, micros float64) string {
	unit, mode, precision := timeunit.DefaultUnit, timeunit.DefaultMode, DefaultPrecision
	if s != nil {
		if s.OutputTimeUnit != "" {
			unit = s.OutputTimeUnit
		}
		if s.OutputMode != "" {
			mode = s.OutputMode
		}
		if s.OutputTimePrecision != nil {
			precision = *s.OutputTimePrecision
		}
	}
	v, err := timeunit.Convert(micros, timeunit.Microseconds, unit, mode)
	if err != nil {
		return strconv.FormatFloat(micros, 'f', precision, 64) + timeunit.Suffix(timeunit.Microseconds, timeunit.ModeTime)
	}
	return strconv.FormatFloat(v, 'f', precision, 64) + timeunit.Suffix(unit, mode)
}

// VariantLine renders the outcome of a finished variant on one line.
func VariantLine(v *model.Variant) string {
	return variantName(v) + variantOutcome(v)
}

func variantName(v *model.Variant) string {
	s := v.Subject()
	if s == nil {
		return v.Name()
	}
	name := s.Name
	if v.ParameterSet.Len() > 0 {
		name += " " + v.ParameterSet.String()
	}
	return name + fmt.Sprintf(" revs=%d", v.Revolutions)
}

func variantOutcome(v *model.Variant) string {
	if v.Status == model.StatusErrored {
		msg := "ERROR"
		if stack := v.ErrorStack(); len(stack) > 0 {
			msg += " " + stack[0].Class + ": " + stack[0].Message
		}
		return " " + errorStyle.Render(msg)
	}

	var out string
	if v.HasStats() {
		st := v.Stats()
		out += fmt.Sprintf(" I%d mean=%s ±%s%%",
			len(v.Iterations()),
			FormatTime(v.Subject(), st["mean"]),
			strconv.FormatFloat(st["rstdev"], 'f', 2, 64),
		)
	}
	if v.Retries > 0 {
		out += faintStyle.Render(fmt.Sprintf(" retries=%d", v.Retries))
	}
	if v.Status == model.StatusFailed {
		out += " " + failStyle.Render("FAIL")
		for _, f := range v.Failures() {
			out += "\n    " + failStyle.Render("- "+f.Message)
		}
		return out
	}
	return out + " " + okStyle.Render("OK")
}

// SummaryLine renders the totals of a finished suite.
func SummaryLine(suite *model.Suite) string {
	s := suite.Summary()
	return summaryStyle.Render(fmt.Sprintf(
		"%d subjects, %d variants, %d iterations: %d completed, %d failed, %d errored",
		s.Subjects, s.Variants, s.Iterations, s.Completed, s.Failed, s.Errored,
	))
}
