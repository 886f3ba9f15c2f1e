package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd  *cobra.Command
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = newStartConfig(options).Mode()

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayPlan shows how many components will be compiled.
func (s *SimpleUI) DisplayPlan(ctx context.Context, total int, cached int, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	if s.mode == ModeView {
		return
	}

	s.printf("Compiling %d component(s) with %d worker(s), %d cached\n", total-cached, threads, cached)
}

// DisplayCompileStarted is silent for SimpleUI; results are printed as they complete.
func (s *SimpleUI) DisplayCompileStarted(ctx context.Context, _ m.File) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayCompileResult prints one line per finished component.
func (s *SimpleUI) DisplayCompileResult(ctx context.Context, record m.CompileRecord) {
	if err := ctx.Err(); err != nil {
		return
	}

	if record.Status == m.Failed {
		s.printf("%s %s (%s): %s\n", record.Status, record.Name, record.Source.Path, record.Err)
		return
	}

	s.printf("%s %s (%s)\n", record.Status, record.Name, record.Source.Path)
}

// DisplaySummary prints the summary table and, outside compile mode, the
// bindings of every component.
func (s *SimpleUI) DisplaySummary(ctx context.Context, records []m.CompileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := sortRecords(records)

	s.printf("\n%s", renderSummaryTable(sorted))

	if s.mode == ModeCompile {
		return nil
	}

	for _, record := range sorted {
		if record.Status == m.Failed {
			continue
		}

		s.printf("\n%s\n%s", record.Name, renderBindingsTable(record.Result.Bindings))
	}

	return nil
}

func sortRecords(records []m.CompileRecord) []m.CompileRecord {
	sorted := append([]m.CompileRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

func countStatus(records []m.CompileRecord) map[m.CompileStatus]int {
	counts := make(map[m.CompileStatus]int, 3)
	for _, record := range records {
		counts[record.Status]++
	}

	return counts
}

func renderSummaryTable(records []m.CompileRecord) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Component", "Source", "Status", "Bindings"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER})

	for _, record := range records {
		bindings := "-"
		if record.Status != m.Failed {
			bindings = fmt.Sprintf("%d", len(record.Result.Bindings))
		}

		table.Append([]string{record.Name, string(record.Source.Path), record.Status.String(), bindings})
	}

	counts := countStatus(records)
	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(records)),
		"",
		fmt.Sprintf("%d ok / %d failed", counts[m.Compiled]+counts[m.Cached], counts[m.Failed]),
		"",
	})

	table.Render()

	return tableBuffer.String()
}

func renderBindingsTable(bindings m.BindingMetadata) string {
	if len(bindings) == 0 {
		return "  (no bindings)\n"
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Name", "Kind"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)

	for _, record := range bindings.Records() {
		table.Append([]string{record.Name, string(record.Kind)})
	}

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// indent prefixes every non-empty line of text.
func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}

	return strings.Join(lines, "\n") + "\n"
}
