// internal/progress/tui.go
// Package: progress
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/benchrunner/internal/model"
)

// maxFinished bounds the finished variant lines kept on screen.
const maxFinished = 8

// suiteStartMsg is sent when the run starts.
type suiteStartMsg struct {
	uuid     string
	variants int
}

// variantStartMsg is sent when a variant starts running.
type variantStartMsg struct{ name string }

// iterationEndMsg is sent after each measured iteration.
type iterationEndMsg struct{ name string }

// retryMsg is sent when a variant is re-measured.
type retryMsg struct {
	name    string
	retries int
}

// variantEndMsg is sent when a variant reaches a terminal state.
type variantEndMsg struct {
	name   string
	line   string
	status model.Status
}

// suiteEndMsg is sent when the run is over; it stops the program.
type suiteEndMsg struct{ summary string }

// tuiModel is the Bubble Tea model rendering run progress.
type tuiModel struct {
	spinner    spinner.Model
	bar        progressbar.Model
	uuid       string
	total      int
	done       int
	iterations int
	failed     int
	errored    int
	running    []string
	finished   []string
	summary    string
	started    time.Time
	quitting   bool
}

func newTUIModel() *tuiModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &tuiModel{
		spinner: s,
		bar:     progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(40)),
		started: time.Now(),
	}
}

// Init starts the spinner animation.
func (m *tuiModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update applies run events and key presses to the model.
func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(40, max(10, msg.Width-30))
	case suiteStartMsg:
		m.uuid = msg.uuid
		m.total = msg.variants
	case variantStartMsg:
		m.running = append(m.running, msg.name)
	case iterationEndMsg:
		m.iterations++
	case retryMsg:
		m.finished = appendBounded(m.finished, faintStyle.Render(fmt.Sprintf("%s: retry %d", msg.name, msg.retries)))
	case variantEndMsg:
		m.done++
		switch msg.status {
		case model.StatusFailed:
			m.failed++
		case model.StatusErrored:
			m.errored++
		}
		m.running = removeFirst(m.running, msg.name)
		m.finished = appendBounded(m.finished, msg.line)
	case suiteEndMsg:
		m.summary = msg.summary
		m.running = nil
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the progress bar, running variants and recent results.
func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("benchrunner") + " " + faintStyle.Render(m.uuid) + "\n\n")
	for _, line := range m.finished {
		b.WriteString("  " + line + "\n")
	}
	if m.summary != "" {
		b.WriteString("\n" + m.summary + "\n")
		return b.String()
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	b.WriteString("\n" + m.bar.ViewAs(percent))
	b.WriteString(fmt.Sprintf(" %d/%d variants, %d iterations", m.done, m.total, m.iterations))
	if m.failed > 0 {
		b.WriteString(" " + failStyle.Render(fmt.Sprintf("%d failed", m.failed)))
	}
	if m.errored > 0 {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("%d errored", m.errored)))
	}
	b.WriteString(faintStyle.Render(fmt.Sprintf(" %.1fs", time.Since(m.started).Seconds())) + "\n")
	for _, name := range m.running {
		b.WriteString(m.spinner.View() + " " + name + "\n")
	}
	return b.String()
}

func appendBounded(lines []string, line string) []string {
	lines = append(lines, line)
	if len(lines) > maxFinished {
		lines = lines[len(lines)-maxFinished:]
	}
	return lines
}

func removeFirst(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i:i], names[i+1:]...)
		}
	}
	return names
}

// TUI renders progress with a Bubble Tea program. Events are forwarded to
// the program as messages; SuiteEnd blocks until the program has exited.
type TUI struct {
	mu      sync.Mutex
	w       io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI returns a TUI logger rendering to w.
func NewTUI(w io.Writer) *TUI { return &TUI{w: w} }

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (t *TUI) SuiteStart(suite *model.Suite, variants int) {
	t.mu.Lock()
	t.program = tea.NewProgram(newTUIModel(), tea.WithOutput(t.w), tea.WithInput(nil))
	t.done = make(chan struct{})
	p, done := t.program, t.done
	t.mu.Unlock()

	go func() {
		defer close(done)
		_, _ = p.Run()
	}()
	p.Send(suiteStartMsg{uuid: suite.UUID, variants: variants})
}

func (t *TUI) BenchmarkStart(*model.Benchmark) {}
func (t *TUI) SubjectStart(*model.Subject)     {}

func (t *TUI) VariantStart(v *model.Variant) {
	t.send(variantStartMsg{name: variantLabel(v)})
}

func (t *TUI) IterationEnd(it *model.Iteration) {
	t.send(iterationEndMsg{name: variantLabel(it.Variant())})
}

func (t *TUI) Retry(v *model.Variant, _ float64) {
	t.send(retryMsg{name: variantLabel(v), retries: v.Retries})
}

func (t *TUI) VariantEnd(v *model.Variant) {
	label := variantLabel(v)
	t.send(variantEndMsg{name: label, line: label + variantOutcome(v), status: v.Status})
}

func (t *TUI) SuiteEnd(suite *model.Suite) {
	t.send(suiteEndMsg{summary: SummaryLine(suite)})
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done != nil {
		<-done
	}
}

// variantLabel names a variant including its benchmark class.
func variantLabel(v *model.Variant) string {
	if s := v.Subject(); s != nil && s.Benchmark() != nil {
		return s.Benchmark().Class + "::" + variantName(v)
	}
	return variantName(v)
}
