package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header (title + progress + blank) and footer (blank + help).
	reservedLines = 5
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	compiledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cachedStyle   = lipgloss.NewStyle().Faint(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

type planMsg struct {
	total   int
	cached  int
	threads int
}

type startedMsg struct {
	file m.File
}

type resultMsg struct {
	record m.CompileRecord
}

type summaryMsg struct {
	records []m.CompileRecord
}

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	input  io.Reader

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, input io.Reader) *TUI {
	return &TUI{output: output, input: input}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	model := newCompileModel(cfg.Mode())

	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.program = tea.NewProgram(model,
		tea.WithOutput(t.output),
		tea.WithInput(t.input),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		_, _ = program.Run()
	}(t.program, t.done)

	return nil
}

// Close stops the program and waits for the terminal to be restored.
func (t *TUI) Close(_ context.Context) {
	program, done := t.current()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits the program.
func (t *TUI) Wait(ctx context.Context) {
	_, done := t.current()
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayPlan shows how many components will be compiled.
func (t *TUI) DisplayPlan(_ context.Context, total int, cached int, threads int) {
	t.send(planMsg{total: total, cached: cached, threads: threads})
}

// DisplayCompileStarted marks a component as in progress.
func (t *TUI) DisplayCompileStarted(_ context.Context, file m.File) {
	t.send(startedMsg{file: file})
}

// DisplayCompileResult records a finished component.
func (t *TUI) DisplayCompileResult(_ context.Context, record m.CompileRecord) {
	t.send(resultMsg{record: record})
}

// DisplaySummary replaces the progress list with the summary table.
func (t *TUI) DisplaySummary(ctx context.Context, records []m.CompileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.send(summaryMsg{records: records})

	return nil
}

func (t *TUI) current() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) {
	if program, _ := t.current(); program != nil {
		program.Send(msg)
	}
}

// compileModel renders progress while compiling and the results afterwards.
type compileModel struct {
	mode     StartMode
	viewport viewport.Model
	width    int
	height   int

	total   int
	cached  int
	threads int

	running []string
	records []m.CompileRecord
	summary []m.CompileRecord
	done    bool
}

func newCompileModel(mode StartMode) compileModel {
	cm := compileModel{mode: mode}
	return cm.resize(defaultWidth, defaultHeight)
}

func (cm compileModel) resize(width, height int) compileModel {
	cm.width = width
	cm.height = height

	viewHeight := height - reservedLines
	if viewHeight < 1 {
		viewHeight = 1
	}

	if cm.viewport.Width == 0 && cm.viewport.Height == 0 {
		cm.viewport = viewport.New(width, viewHeight)
	} else {
		cm.viewport.Width = width
		cm.viewport.Height = viewHeight
	}

	cm.viewport.SetContent(cm.content())

	return cm
}

func (cm compileModel) Init() tea.Cmd {
	return nil
}

func (cm compileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return cm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return cm, tea.Quit
		}

	case planMsg:
		cm.total, cm.cached, cm.threads = msg.total, msg.cached, msg.threads
		return cm.refresh(), nil

	case startedMsg:
		cm.running = append(cm.running, string(msg.file.Path))
		return cm.refresh(), nil

	case resultMsg:
		cm.running = removeString(cm.running, string(msg.record.Source.Path))
		cm.records = append(cm.records, msg.record)

		return cm.refresh(), nil

	case summaryMsg:
		cm.summary = sortRecords(msg.records)
		cm.done = true
		cm.viewport.SetContent(cm.content())
		cm.viewport.GotoTop()

		return cm, nil
	}

	var cmd tea.Cmd

	cm.viewport, cmd = cm.viewport.Update(msg)

	return cm, cmd
}

func (cm compileModel) refresh() compileModel {
	cm.viewport.SetContent(cm.content())
	cm.viewport.GotoBottom()

	return cm
}

func (cm compileModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("sfcc " + cm.mode.String()))
	b.WriteString("\n")
	b.WriteString(cm.progress())
	b.WriteString("\n\n")
	b.WriteString(cm.viewport.View())
	b.WriteString("\n")

	help := "↑/k up | ↓/j down | q quit"
	if !cm.done {
		help = "compiling... | " + help
	}

	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (cm compileModel) progress() string {
	if cm.mode == ModeView {
		return fmt.Sprintf("%d stored component(s)", len(cm.summary))
	}

	counts := countStatus(cm.records)

	return fmt.Sprintf("%d/%d done | %s | %s | %s | %d worker(s)",
		len(cm.records), cm.total,
		compiledStyle.Render(fmt.Sprintf("%d compiled", counts[m.Compiled])),
		cachedStyle.Render(fmt.Sprintf("%d cached", counts[m.Cached])),
		failedStyle.Render(fmt.Sprintf("%d failed", counts[m.Failed])),
		cm.threads)
}

func (cm compileModel) content() string {
	var b strings.Builder

	if cm.done {
		b.WriteString(renderSummaryTable(cm.summary))

		for _, record := range cm.summary {
			if record.Status == m.Failed {
				fmt.Fprintf(&b, "\n%s\n  %s\n", failedStyle.Render(record.Name), record.Err)
				continue
			}

			if cm.mode != ModeCompile {
				fmt.Fprintf(&b, "\n%s\n%s", titleStyle.Render(record.Name), indent(renderBindingsTable(record.Result.Bindings), "  "))
			}
		}

		return b.String()
	}

	for _, record := range cm.records {
		b.WriteString(statusLine(record))
		b.WriteString("\n")
	}

	for _, path := range cm.running {
		fmt.Fprintf(&b, "… %s\n", path)
	}

	return b.String()
}

func statusLine(record m.CompileRecord) string {
	switch record.Status {
	case m.Compiled:
		return compiledStyle.Render("✓ "+record.Name) + " " + string(record.Source.Path)
	case m.Cached:
		return cachedStyle.Render("= " + record.Name + " " + string(record.Source.Path))
	default:
		return failedStyle.Render("✗ "+record.Name) + " " + record.Err
	}
}

func removeString(items []string, target string) []string {
	for i, item := range items {
		if item == target {
			return append(items[:i:i], items[i+1:]...)
		}
	}

	return items
}
