package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"sfcc.dev/pkg/sfcc/internal/adapter"
	"sfcc.dev/pkg/sfcc/internal/controller"
	m "sfcc.dev/pkg/sfcc/internal/model"
	"sfcc.dev/pkg/sfcc/pkg"
)

var (
	// ErrCompileFailed is returned when at least one component failed to compile.
	ErrCompileFailed = errors.New("compilation failed")
	// ErrNoResults is returned by View when the output directory holds no results.
	ErrNoResults = errors.New("no stored results")
)

// CompileArgs contains the arguments for compiling a set of descriptors.
type CompileArgs struct {
	Paths      []m.Path
	Exclude    []string
	Output     m.Path
	UseCache   bool
	Threads    int
	Production bool
	// Write stores code, bindings and the index under Output.
	Write bool
}

// ViewArgs contains the arguments for browsing stored results.
type ViewArgs struct {
	Output m.Path
	// Names limits the view to these components when not empty.
	Names []string
}

// Workflow is the batch layer around the Compiler used by the CLI.
type Workflow interface {
	Compile(ctx context.Context, args CompileArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.DescriptorLoader
	adapter.ResultStore
	controller.UI
	compiler Compiler
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	loader adapter.DescriptorLoader,
	store adapter.ResultStore,
	ui controller.UI,
	compiler Compiler,
) Workflow {
	return &workflow{
		SourceFSAdapter:  fsAdapter,
		DescriptorLoader: loader,
		ResultStore:      store,
		UI:               ui,
		compiler:         compiler,
	}
}

// Compile discovers descriptors, compiles the changed ones in parallel and
// reports every component. Failed components are reported, not fatal, until
// the end of the run.
func (w *workflow) Compile(ctx context.Context, args CompileArgs) error {
	mode := controller.WithCompileMode()
	if !args.Write {
		mode = controller.WithBindingsMode()
	}

	if err := w.Start(ctx, mode); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	records, err := w.compileAll(ctx, args)
	if err != nil {
		slog.Error("Failed to compile components", "error", err)
		return fmt.Errorf("compile: %w", err)
	}

	if err := w.DisplaySummary(ctx, records); err != nil {
		slog.Error("Failed to display summary", "error", err)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	if failed := countFailed(records); failed > 0 {
		return fmt.Errorf("%w: %d of %d component(s)", ErrCompileFailed, failed, len(records))
	}

	return nil
}

func (w *workflow) compileAll(ctx context.Context, args CompileArgs) ([]m.CompileRecord, error) {
	files, err := w.Get(ctx, args.Paths, args.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("get descriptors: %w", err)
	}

	index, err := w.LoadIndex(args.Output)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	cached, pending := w.splitCached(args, index, files)

	threads := args.Threads
	if threads <= 0 {
		threads = 1
	}

	w.DisplayPlan(ctx, len(files), len(cached), threads)

	spill, err := pkg.NewFileSpill[m.CompileRecord]()
	if err != nil {
		return nil, fmt.Errorf("create spill: %w", err)
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Warn("failed to remove spill", "path", spill.Path(), "error", err)
		}
	}()

	for _, record := range cached {
		if err := spill.Append(record); err != nil {
			return nil, err
		}

		w.DisplayCompileResult(ctx, record)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(threads)

	for _, file := range pending {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			w.DisplayCompileStarted(groupCtx, file)

			record := w.compileFile(file, args.Production)
			if err := spill.Append(record); err != nil {
				return err
			}

			w.DisplayCompileResult(groupCtx, record)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	records, err := spill.Slice()
	if err != nil {
		return nil, fmt.Errorf("read spill: %w", err)
	}

	sortByName(records)
	markDuplicateNames(records)

	if args.Write {
		if err := w.persist(args, index, records); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// splitCached returns the records whose stored result is still current and
// the files that need compiling.
func (w *workflow) splitCached(args CompileArgs, index m.CacheIndex, files []m.File) ([]m.CompileRecord, []m.File) {
	if !args.UseCache {
		return nil, files
	}

	bySource := make(map[m.Path]string, len(index.Components))
	for name, entry := range index.Components {
		bySource[entry.Source] = name
	}

	var (
		cached  []m.CompileRecord
		pending []m.File
	)

	for _, file := range files {
		name, ok := bySource[file.Path]
		entry := index.Components[name]

		if !ok || entry.Hash != file.Hash || entry.Error != "" || entry.Production != args.Production {
			pending = append(pending, file)
			continue
		}

		result, err := w.LoadResult(args.Output, name, entry)
		if err != nil {
			slog.Debug("stored result unusable, recompiling", "name", name, "error", err)

			pending = append(pending, file)

			continue
		}

		cached = append(cached, m.CompileRecord{Name: name, Source: file, Status: m.Cached, Result: result})
	}

	return cached, pending
}

func (w *workflow) compileFile(file m.File, production bool) m.CompileRecord {
	record := m.CompileRecord{Name: componentName(file.Path), Source: file}

	desc, err := w.LoadDescriptor(file.Path)
	if err != nil {
		slog.Warn("failed to load descriptor", "path", file.Path, "error", err)

		record.Status = m.Failed
		record.Err = err.Error()

		return record
	}

	record.Name = desc.Name

	result, err := w.compiler.Compile(desc, m.CompileOptions{Production: production})
	if err != nil {
		slog.Warn("failed to compile component", "name", desc.Name, "path", file.Path, "error", err)

		record.Status = m.Failed
		record.Err = err.Error()

		return record
	}

	slog.Debug("compiled component", "name", desc.Name, "path", file.Path, "bindings", len(result.Bindings))

	record.Status = m.Compiled
	record.Result = result

	return record
}

// persist writes freshly compiled results and the new index, and removes
// results whose descriptor is gone.
func (w *workflow) persist(args CompileArgs, index m.CacheIndex, records []m.CompileRecord) error {
	next := make(map[string]m.IndexEntry, len(records))
	keep := make(map[string]bool, len(index.Components))

	for _, record := range records {
		// A later record with a taken name is a duplicate and owns no files.
		if _, taken := next[record.Name]; taken {
			continue
		}

		entry := m.IndexEntry{
			Source:     record.Source.Path,
			Hash:       record.Source.Hash,
			Language:   record.Result.Language,
			Production: args.Production,
		}

		switch record.Status {
		case m.Failed:
			entry.Error = record.Err
		case m.Compiled:
			bindings, err := BindingsJSON(record.Result.Bindings)
			if err != nil {
				return err
			}

			if err := w.SaveResult(args.Output, record.Name, record.Result, bindings); err != nil {
				return fmt.Errorf("save %s: %w", record.Name, err)
			}

			if old, ok := index.Components[record.Name]; ok && old.Language.Extension() != record.Result.Language.Extension() {
				if err := w.RemoveAll(adapter.CodePath(args.Output, record.Name, old.Language)); err != nil {
					return fmt.Errorf("remove stale code of %s: %w", record.Name, err)
				}
			}

			keep[record.Name] = true
		case m.Cached:
			keep[record.Name] = true
		}

		next[record.Name] = entry
	}

	compiled := make(map[m.Path]bool, len(records))
	for _, record := range records {
		compiled[record.Source.Path] = true
	}

	for name, entry := range index.Components {
		if _, ok := next[name]; ok || compiled[entry.Source] {
			continue
		}

		if _, err := w.FileInfo(entry.Source); err != nil {
			continue
		}

		keep[name] = true
		next[name] = entry
	}

	cleaned, err := w.CleanResults(args.Output, index, keep)
	if err != nil {
		return fmt.Errorf("clean results: %w", err)
	}

	for name, entry := range next {
		cleaned.Components[name] = entry
	}

	if err := w.SaveIndex(args.Output, cleaned); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	return nil
}

// View shows the stored results of previous compile runs.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	index, err := w.LoadIndex(args.Output)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	wanted := make(map[string]bool, len(args.Names))
	for _, name := range args.Names {
		wanted[name] = true
	}

	var records []m.CompileRecord

	for name, entry := range index.Components {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}

		record := m.CompileRecord{
			Name:   name,
			Source: m.File{Path: entry.Source, Hash: entry.Hash},
			Status: m.Cached,
		}

		if entry.Error != "" {
			record.Status = m.Failed
			record.Err = entry.Error
		} else {
			result, err := w.LoadResult(args.Output, name, entry)
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}

			record.Result = result
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return fmt.Errorf("%w in %s", ErrNoResults, args.Output)
	}

	sortByName(records)

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	if err := w.DisplaySummary(ctx, records); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func componentName(path m.Path) string {
	return strings.TrimSuffix(filepath.Base(string(path)), adapter.DescriptorSuffix)
}

func sortByName(records []m.CompileRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}

		return records[i].Source.Path < records[j].Source.Path
	})
}

// markDuplicateNames fails every record whose component name was already
// taken by a record earlier in path order. records must be sorted by name.
func markDuplicateNames(records []m.CompileRecord) {
	for i := 1; i < len(records); i++ {
		prev := records[i-1]
		if records[i].Name != prev.Name {
			continue
		}

		records[i].Status = m.Failed
		records[i].Result = m.CompiledScriptResult{}
		records[i].Err = fmt.Sprintf("component name %q already used by %s", records[i].Name, firstWithName(records, i).Source.Path)
	}
}

func firstWithName(records []m.CompileRecord, i int) m.CompileRecord {
	for i > 0 && records[i-1].Name == records[i].Name {
		i--
	}

	return records[i]
}

func countFailed(records []m.CompileRecord) int {
	failed := 0

	for _, record := range records {
		if record.Status == m.Failed {
			failed++
		}
	}

	return failed
}
