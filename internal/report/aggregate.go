// internal/report/aggregate.go
// Package: report
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/benchrunner/internal/model"
	"github.com/mwiater/benchrunner/internal/progress"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// Aggregate renders one row per variant with its distribution stats.
type Aggregate struct{}

var aggregateHeaders = []string{
	"suite", "benchmark", "subject", "set", "revs", "its", "mem_peak", "best", "mean", "p95", "rstdev", "status",
}

// Generate implements Generator.
func (Aggregate) Generate(w io.Writer, suites []*model.Suite) error {
	t := newTable(aggregateHeaders...)
	for _, s := range suites {
		label := s.Name
		if label == "" {
			label = s.ContextName
		}
		for _, v := range s.Variants() {
			t.Row(aggregateRow(label, v)...)
		}
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func aggregateRow(suite string, v *model.Variant) []string {
	subj := v.Subject()
	row := []string{
		suite,
		subj.Benchmark().Class,
		subj.Name,
		v.ParameterSet.String(),
		strconv.Itoa(v.Revolutions),
		strconv.Itoa(len(v.Iterations())),
		memPeak(v),
	}
	if !v.HasStats() {
		return append(row, "", "", "", "", status(v))
	}
	st := v.Stats()
	return append(row,
		progress.FormatTime(subj, st["min"]),
		progress.FormatTime(subj, st["mean"]),
		progress.FormatTime(subj, st["p95"]),
		"±"+strconv.FormatFloat(st["rstdev"], 'f', 2, 64)+"%",
		status(v),
	)
}

// memPeak is the mean peak memory over the iterations reporting it.
func memPeak(v *model.Variant) string {
	var sum float64
	var n int
	for _, it := range v.Iterations() {
		r, ok := it.Result(model.KindMemory)
		if !ok {
			continue
		}
		sum += r.Metrics()["peak"]
		n++
	}
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(sum/float64(n), 'f', 0, 64) + "b"
}

func status(v *model.Variant) string {
	switch {
	case v.HasErrorStack():
		stack := v.ErrorStack()
		return "ERROR " + stack[0].Class
	case v.HasFailed():
		return fmt.Sprintf("FAIL (%d)", len(v.Failures()))
	}
	return "OK"
}

// Env renders the environment information of every suite.
type Env struct{}

// Generate implements Generator.
func (Env) Generate(w io.Writer, suites []*model.Suite) error {
	for i, s := range suites {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		label := s.Name
		if label == "" {
			label = s.UUID
		}
		t := newTable("provider", "key", "value")
		for _, info := range s.EnvInformations() {
			for _, k := range info.Keys() {
				v, _ := info.Get(k)
				t.Row(info.Name, k, v)
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(label), t.String()); err != nil {
			return err
		}
	}
	return nil
}
