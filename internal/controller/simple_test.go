package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

func sampleRecords() []m.CompileRecord {
	return []m.CompileRecord{
		{
			Name:   "Counter",
			Source: m.File{Path: "components/Counter.sfc.yaml"},
			Status: m.Compiled,
			Result: m.CompiledScriptResult{Bindings: m.BindingMetadata{
				"count": m.BindingSetup,
				"msg":   m.BindingProps,
			}},
		},
		{
			Name:   "Broken",
			Source: m.File{Path: "components/Broken.sfc.yaml"},
			Status: m.Failed,
			Err:    "ParseError [setup 1:7]: unexpected token",
		},
		{
			Name:   "Badge",
			Source: m.File{Path: "components/Badge.sfc.yaml"},
			Status: m.Cached,
			Result: m.CompiledScriptResult{Bindings: m.BindingMetadata{"label": m.BindingLiteral}},
		},
	}
}

func newTestSimpleUI(t *testing.T, options ...StartOption) (*SimpleUI, *bytes.Buffer) {
	t.Helper()

	cmd := &cobra.Command{}

	var out bytes.Buffer
	cmd.SetOut(&out)

	ui := NewSimpleUI(cmd)
	require.NoError(t, ui.Start(context.Background(), options...))

	return ui, &out
}

func TestSimpleUI_CompileMode(t *testing.T) {
	ui, out := newTestSimpleUI(t, WithCompileMode())
	ctx := context.Background()

	ui.DisplayPlan(ctx, 3, 1, 2)

	for _, record := range sampleRecords() {
		ui.DisplayCompileStarted(ctx, record.Source)
		ui.DisplayCompileResult(ctx, record)
	}

	require.NoError(t, ui.DisplaySummary(ctx, sampleRecords()))
	ui.Wait(ctx)
	ui.Close(ctx)

	text := out.String()
	assert.Contains(t, text, "Compiling 2 component(s) with 2 worker(s), 1 cached")
	assert.Contains(t, text, "compiled Counter (components/Counter.sfc.yaml)")
	assert.Contains(t, text, "failed Broken (components/Broken.sfc.yaml): ParseError [setup 1:7]: unexpected token")
	assert.Contains(t, text, "COMPONENT")
	assert.Contains(t, strings.ToLower(text), "2 ok / 1 failed")
	assert.NotContains(t, text, "Setup", "compile mode does not list bindings")

	assert.Less(t, strings.LastIndex(text, "Badge"), strings.LastIndex(text, "Counter"))
}

func TestSimpleUI_BindingsMode(t *testing.T) {
	ui, out := newTestSimpleUI(t, WithBindingsMode())
	ctx := context.Background()

	require.NoError(t, ui.DisplaySummary(ctx, sampleRecords()))

	text := out.String()
	assert.Contains(t, text, "Counter\n")
	assert.Contains(t, text, "count")
	assert.Contains(t, text, "Setup")
	assert.Contains(t, text, "Props")
	assert.Contains(t, text, "Literal")
	assert.NotContains(t, text, "Broken\n")
}

func TestSimpleUI_ViewModeSkipsPlan(t *testing.T) {
	ui, out := newTestSimpleUI(t, WithViewMode())

	ui.DisplayPlan(context.Background(), 3, 3, 1)

	assert.Empty(t, out.String())
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	ui, out := newTestSimpleUI(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplayCompileResult(ctx, sampleRecords()[0])
	require.ErrorIs(t, ui.DisplaySummary(ctx, sampleRecords()), context.Canceled)
	require.ErrorIs(t, ui.Start(ctx), context.Canceled)
	assert.Empty(t, out.String())
}

func TestRenderBindingsTable(t *testing.T) {
	assert.Equal(t, "  (no bindings)\n", renderBindingsTable(nil))

	table := renderBindingsTable(m.BindingMetadata{"b": m.BindingData, "a": m.BindingOptions})
	assert.Less(t, bytes.Index([]byte(table), []byte("a ")), bytes.Index([]byte(table), []byte("b ")))
	assert.Contains(t, table, "Options")
	assert.Contains(t, table, "Data")
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b\n", indent("a\n\nb\n", "  "))
}
