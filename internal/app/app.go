// Package app implements the application layer for fin.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"go.trai.ch/fin/internal/adapters/fs"       //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/adapters/manifest" //nolint:depguard // Wired in app layer
	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/fin/internal/engine/closure"
	"go.trai.ch/fin/internal/engine/expand"
	"go.trai.ch/fin/internal/engine/merge"
	"go.trai.ch/fin/internal/engine/scan"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	expander     *expand.Expander
	merger       *merge.Merger
	scanner      *scan.Scanner
	resolver     *closure.Resolver
	reader       ports.ElfReader
	walker       *fs.Walker
	store        ports.BuildIDStore
	logger       ports.Logger
	telemetry    ports.Telemetry
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	expander *expand.Expander,
	merger *merge.Merger,
	scanner *scan.Scanner,
	resolver *closure.Resolver,
	reader ports.ElfReader,
	walker *fs.Walker,
	store ports.BuildIDStore,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: configLoader,
		expander:     expander,
		merger:       merger,
		scanner:      scanner,
		resolver:     resolver,
		reader:       reader,
		walker:       walker,
		store:        store,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// Expand flattens the given fragment files into a deduplicated flat manifest
// at output. label is applied to entries without their own provenance label.
func (a *App) Expand(ctx context.Context, fragmentPaths []string, label, output string) error {
	entries, err := a.expandFragments(ctx, fragmentPaths, label)
	if err != nil {
		return err
	}

	merged, err := a.mergeEntries(ctx, entries)
	if err != nil {
		return err
	}

	if err := manifest.WriteFlat(output, merged); err != nil {
		return zerr.Wrap(err, "failed to write output manifest")
	}
	return nil
}

// Finalize runs the full pipeline described by the plan at configPath:
// expansion, merging, ELF scanning, shared-library closure resolution, and
// output emission.
func (a *App) Finalize(ctx context.Context, configPath string) error {
	plan, err := a.configLoader.Load(configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load finalize plan")
	}

	entries, err := a.expandFragments(ctx, plan.Fragments, plan.Label)
	if err != nil {
		return err
	}

	merged, err := a.mergeEntries(ctx, entries)
	if err != nil {
		return err
	}

	binaries, err := a.scanEntries(ctx, merged)
	if err != nil {
		return err
	}

	final, allBinaries, err := a.resolveClosure(ctx, plan, merged, binaries)
	if err != nil {
		return err
	}

	if plan.BuildIDFile != "" {
		for _, b := range allBinaries {
			if b.Info.BuildID != "" {
				a.store.Add(b.Info.BuildID, b.Entry.Source)
			}
		}
		if err := a.store.Save(plan.BuildIDFile); err != nil {
			return err
		}
	}

	if err := manifest.WriteFlat(plan.Output, final); err != nil {
		return zerr.Wrap(err, "failed to write output manifest")
	}
	return nil
}

// ElfInfo dumps the metadata of the given files as indented JSON keyed by
// path.
func (a *App) ElfInfo(paths []string, w io.Writer) error {
	out := make(map[string]*domain.ElfInfo, len(paths))
	for _, p := range paths {
		info, err := a.reader.ReadInfo(p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read ELF metadata"), "path", p)
		}
		out[p] = info
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// expandFragments loads each fragment file and flattens the combined set.
// Accumulated diagnostics are logged in full before the stage fails.
func (a *App) expandFragments(ctx context.Context, fragmentPaths []string, label string) ([]domain.Entry, error) {
	_, v := a.telemetry.Record(ctx, "expand manifest fragments")

	fragments := make([]domain.Fragment, 0, len(fragmentPaths))
	for _, p := range fragmentPaths {
		fragments = append(fragments, domain.FileInclude{Path: p})
	}

	res, err := a.expander.Expand(fragments, label)
	if err != nil {
		err = zerr.Wrap(err, "failed to expand manifest fragments")
		v.Complete(err)
		return nil, err
	}
	for _, file := range res.FilesRead {
		_, _ = fmt.Fprintln(v, file)
	}
	if len(res.Errors) > 0 {
		for _, msg := range res.Errors {
			a.logger.Error(zerr.New(msg))
		}
		err := zerr.With(domain.ErrExpansionFailed, "error_count", len(res.Errors))
		v.Complete(err)
		return nil, err
	}

	v.Complete(nil)
	return res.Entries, nil
}

// mergeEntries collapses duplicate destinations. A conflict report is logged
// whole so one run surfaces every colliding destination.
func (a *App) mergeEntries(ctx context.Context, entries []domain.Entry) ([]domain.Entry, error) {
	_, v := a.telemetry.Record(ctx, "merge manifest entries")

	merged, message, err := a.merger.Merge(entries)
	if err != nil {
		err = zerr.Wrap(err, "failed to merge manifest entries")
		v.Complete(err)
		return nil, err
	}
	if message != "" {
		a.logger.Error(zerr.New(message))
		v.Complete(domain.ErrManifestConflict)
		return nil, domain.ErrManifestConflict
	}

	v.Complete(nil)
	return merged, nil
}

// scanEntries reads ELF metadata for every merged entry.
func (a *App) scanEntries(ctx context.Context, entries []domain.Entry) ([]domain.BinaryEntry, error) {
	ctx, v := a.telemetry.Record(ctx, "scan ELF binaries")

	binaries, err := a.scanner.Scan(ctx, entries)
	if err != nil {
		err = zerr.Wrap(err, "failed to scan manifest sources")
		v.Complete(err)
		return nil, err
	}

	v.Complete(nil)
	return binaries, nil
}

// libCandidate is a shared library discovered in a search path, keyed by its
// SONAME (or file name when it has none).
type libCandidate struct {
	source string
	info   *domain.ElfInfo
}

// resolveClosure walks the DT_NEEDED closure of every dynamic binary. Needed
// libraries absent from the manifest are pulled in from the plan's library
// search paths; anything still unaccounted for fails the run after every
// missing dependency has been logged.
func (a *App) resolveClosure(
	ctx context.Context,
	plan *domain.Plan,
	merged []domain.Entry,
	binaries []domain.BinaryEntry,
) ([]domain.Entry, []domain.BinaryEntry, error) {
	_, v := a.telemetry.Record(ctx, "resolve shared-library closure")

	final, allBinaries, err := a.doResolveClosure(plan, merged, binaries, v)
	v.Complete(err)
	return final, allBinaries, err
}

func (a *App) doResolveClosure(
	plan *domain.Plan,
	merged []domain.Entry,
	binaries []domain.BinaryEntry,
	v ports.Vertex,
) ([]domain.Entry, []domain.BinaryEntry, error) {
	search, err := a.scanSearchPaths(plan.LibSearchPaths)
	if err != nil {
		return nil, nil, err
	}

	byDest := make(map[string]*domain.ElfInfo, len(binaries))
	for _, b := range binaries {
		byDest[b.Entry.Destination] = b.Info
	}

	var added []domain.BinaryEntry
	lookup := func(libPath string) ([]string, bool, error) {
		if info, ok := byDest[libPath]; ok {
			return info.Needed, true, nil
		}
		cand, ok := search[path.Base(libPath)]
		if !ok {
			return nil, false, nil
		}
		entry := domain.Entry{Destination: libPath, Source: cand.source, Label: plan.Label}
		byDest[libPath] = cand.info
		added = append(added, domain.BinaryEntry{Entry: entry, Info: cand.info})
		_, _ = fmt.Fprintf(v, "pulled in %s from %s\n", libPath, cand.source)
		return cand.info.Needed, true, nil
	}

	visited := make(map[string]bool)
	var missing []string
	for _, b := range binaries {
		if !b.Info.Dynamic() {
			continue
		}
		_, miss, err := a.resolver.Resolve(b.Entry.Destination, plan.LibDir, b.Info.Needed, lookup, visited)
		if err != nil {
			return nil, nil, err
		}
		missing = append(missing, miss...)
	}
	if len(missing) > 0 {
		for _, msg := range missing {
			a.logger.Error(zerr.New(msg))
		}
		return nil, nil, zerr.With(domain.ErrMissingDependencies, "missing_count", len(missing))
	}

	final := append([]domain.Entry(nil), merged...)
	for _, b := range added {
		final = append(final, b.Entry)
	}
	domain.SortEntries(final)

	return final, append(binaries, added...), nil
}

// scanSearchPaths indexes every ELF file under the given directories by
// SONAME, falling back to the file name. The first hit for a name wins.
func (a *App) scanSearchPaths(dirs []string) (map[string]libCandidate, error) {
	found := make(map[string]libCandidate)
	for _, dir := range dirs {
		for file := range a.walker.WalkFiles(dir) {
			info, err := a.reader.ReadInfo(file)
			if errors.Is(err, domain.ErrNotELF) {
				continue
			}
			if err != nil {
				return nil, err
			}
			name := info.Soname
			if name == "" {
				name = filepath.Base(file)
			}
			if _, ok := found[name]; !ok {
				found[name] = libCandidate{source: file, info: info}
			}
		}
	}
	return found, nil
}
