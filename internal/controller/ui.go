// Package controller provides output adapters for displaying compile results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "sfcc.dev/pkg/sfcc/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeCompile StartMode = iota
	ModeBindings
	ModeView
)

func (s StartMode) String() string {
	switch s {
	case ModeCompile:
		return "compile"
	case ModeBindings:
		return "bindings"
	case ModeView:
		return "view"
	default:
		return "unknown"
	}
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// Mode returns the selected mode.
func (c StartConfig) Mode() StartMode {
	return c.mode
}

// WithCompileMode sets the UI to compile mode.
func WithCompileMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCompile
	}
}

// WithBindingsMode sets the UI to show the bindings of each component.
func WithBindingsMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeBindings
	}
}

// WithViewMode sets the UI to browse stored results.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeCompile}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for reporting a batch compilation.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayPlan(ctx context.Context, total int, cached int, threads int)
	DisplayCompileStarted(ctx context.Context, file m.File)
	DisplayCompileResult(ctx context.Context, record m.CompileRecord)
	DisplaySummary(ctx context.Context, records []m.CompileRecord) error
}

// NewUI picks the interactive TUI on a terminal and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd.OutOrStdout(), cmd.InOrStdin())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
