package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

func update(t *testing.T, cm compileModel, msg tea.Msg) compileModel {
	t.Helper()

	next, _ := cm.Update(msg)

	model, ok := next.(compileModel)
	require.True(t, ok)

	return model
}

func TestCompileModel_Progress(t *testing.T) {
	cm := newCompileModel(ModeCompile)
	records := sampleRecords()

	cm = update(t, cm, planMsg{total: 3, cached: 1, threads: 2})
	cm = update(t, cm, startedMsg{file: records[0].Source})

	assert.Contains(t, cm.content(), "… components/Counter.sfc.yaml")

	cm = update(t, cm, resultMsg{record: records[0]})
	cm = update(t, cm, resultMsg{record: records[1]})

	assert.Empty(t, cm.running)
	assert.Len(t, cm.records, 2)

	view := cm.View()
	assert.Contains(t, view, "sfcc compile")
	assert.Contains(t, view, "2/3 done")
	assert.Contains(t, view, "1 compiled")
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "2 worker(s)")
	assert.Contains(t, view, "compiling...")
	assert.Contains(t, cm.content(), "unexpected token")
}

func TestCompileModel_Summary(t *testing.T) {
	cm := newCompileModel(ModeBindings)

	cm = update(t, cm, summaryMsg{records: sampleRecords()})

	require.True(t, cm.done)

	content := cm.content()
	assert.Contains(t, content, "COMPONENT")
	assert.Contains(t, content, "Setup")
	assert.Contains(t, content, "Literal")
	assert.Contains(t, content, "unexpected token")
	assert.NotContains(t, cm.View(), "compiling...")

	compile := update(t, newCompileModel(ModeCompile), summaryMsg{records: sampleRecords()})
	assert.NotContains(t, compile.content(), "Literal")
}

func TestCompileModel_ViewMode(t *testing.T) {
	cm := update(t, newCompileModel(ModeView), summaryMsg{records: sampleRecords()[:1]})

	assert.Contains(t, cm.View(), "1 stored component(s)")
}

func TestCompileModel_Keys(t *testing.T) {
	cm := newCompileModel(ModeCompile)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := cm.Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}

	_, cmd := cm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		assert.NotEqual(t, tea.QuitMsg{}, cmd())
	}
}

func TestCompileModel_Resize(t *testing.T) {
	cm := update(t, newCompileModel(ModeCompile), tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, cm.viewport.Width)
	assert.Equal(t, 40-reservedLines, cm.viewport.Height)

	tiny := update(t, cm, tea.WindowSizeMsg{Width: 10, Height: 2})
	assert.Equal(t, 1, tiny.viewport.Height)
}

func TestTUI_WithoutStart(t *testing.T) {
	tui := NewTUI(&bytes.Buffer{}, strings.NewReader(""))
	ctx := context.Background()

	tui.DisplayPlan(ctx, 1, 0, 1)
	tui.DisplayCompileResult(ctx, sampleRecords()[0])
	require.NoError(t, tui.DisplaySummary(ctx, nil))
	tui.Wait(ctx)
	tui.Close(ctx)
}

func TestRemoveString(t *testing.T) {
	items := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "c"}, removeString(items, "b"))
	assert.Equal(t, []string{"a", "b", "c"}, items)
	assert.Equal(t, []string{"a", "b", "c"}, removeString(items, "z"))
}
