// Package expand flattens a tree of manifest fragments into concrete entries.
//
// Expansion runs in two passes. The first pass recursively loads `file`
// includes and splits the fragments into regular entries and directives. The
// second pass resolves rename directives against the entries' sources
// (indirecting once through copy aliases), groups elf_runtime_dir annotations
// per destination, and checks for the ambiguities the directives can
// introduce. Diagnostics accumulate instead of failing fast so a broken build
// reports everything wrong at once.
package expand

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
)

// Expander flattens manifest fragments.
type Expander struct {
	loader ports.FragmentLoader
}

// NewExpander creates a new Expander using the given loader for `file`
// includes.
func NewExpander(loader ports.FragmentLoader) *Expander {
	return &Expander{loader: loader}
}

// Result is the outcome of one expansion.
type Result struct {
	// Entries are the flattened entries, sorted by destination.
	Entries []domain.Entry

	// RuntimeDirs maps a destination to its single elf_runtime_dir value.
	// The map is conflict-checked here; what consumes it is up to the caller.
	RuntimeDirs map[string]string

	// FilesRead lists every fragment file loaded through includes, in load
	// order, for the caller's dependency tracking.
	FilesRead []string

	// Errors holds every diagnostic accumulated during expansion. Expansion
	// never fails fast on these; the caller decides whether they are fatal.
	Errors []string
}

// Expand flattens fragments into entries. defaultLabel is applied to any
// fragment that does not carry its own label. The returned error reports
// I/O-level failures only; semantic problems land in Result.Errors.
func (e *Expander) Expand(fragments []domain.Fragment, defaultLabel string) (*Result, error) {
	st := &state{
		loader:      e.loader,
		runtimeDirs: make(map[string][]runtimeDir),
	}
	if err := st.collect(fragments, defaultLabel); err != nil {
		return nil, err
	}
	return st.resolve(), nil
}

// runtimeDir keeps the entry alongside its annotation so conflicts can name
// every participant.
type runtimeDir struct {
	entry domain.Entry
	dir   string
}

type state struct {
	loader      ports.FragmentLoader
	entries     []domain.Entry
	renames     []domain.RenameDirective
	copies      []domain.CopyDirective
	runtimeDirs map[string][]runtimeDir
	filesRead   []string
	errs        []string
}

// collect is the first pass: flatten includes depth-first and split fragments
// into entries and directives, inheriting the default label where a fragment
// omits its own.
func (s *state) collect(fragments []domain.Fragment, defaultLabel string) error {
	for _, frag := range fragments {
		switch f := frag.(type) {
		case domain.RegularEntry:
			entry := f.Entry
			if entry.Label == "" {
				entry.Label = defaultLabel
			}
			if f.ElfRuntimeDir != "" {
				s.runtimeDirs[entry.Destination] = append(s.runtimeDirs[entry.Destination],
					runtimeDir{entry: entry, dir: f.ElfRuntimeDir})
			}
			s.entries = append(s.entries, entry)

		case domain.RenameDirective:
			if f.Label == "" {
				f.Label = defaultLabel
			}
			s.renames = append(s.renames, f)

		case domain.CopyDirective:
			s.copies = append(s.copies, f)

		case domain.FileInclude:
			if f.Label == "" {
				f.Label = defaultLabel
			}
			sub, err := s.loader.LoadFragments(f.Path)
			if err != nil {
				return err
			}
			s.filesRead = append(s.filesRead, f.Path)
			if err := s.collect(sub, f.Label); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolve is the second pass: apply directives over the collected entries.
func (s *state) resolve() *Result {
	bySource := make(map[string][]domain.Entry)
	for _, entry := range s.entries {
		group := bySource[entry.Source]
		if !containsEntry(group, entry) {
			bySource[entry.Source] = append(group, entry)
		}
	}

	copyReverse := make(map[string]string, len(s.copies))
	for _, c := range s.copies {
		copyReverse[c.CopyTo] = c.CopyFrom
	}

	// dropped marks sources consumed by a rename without keep_original: the
	// original entry gives way to the renamed one.
	dropped := make(map[string]bool)
	var renamedEntries []domain.Entry
	for _, r := range s.renames {
		src := r.RenamedSource
		group, found := bySource[src]
		if !found {
			// One level of copy-alias indirection, then retry.
			if orig, aliased := copyReverse[src]; aliased {
				src = orig
				group, found = bySource[src]
			}
		}
		if !found {
			raw, _ := json.Marshal(map[string]string{
				"destination":    r.Destination,
				"renamed_source": r.RenamedSource,
			})
			s.errs = append(s.errs, "no manifest entry matches renamed_source: "+string(raw))
			continue
		}

		renamed := group[0]
		renamed.Destination = r.Destination
		if r.Label != "" {
			renamed.Label = r.Label
		}
		renamedEntries = append(renamedEntries, renamed)
		if !r.KeepOriginal {
			dropped[src] = true
		}
	}

	s.checkAmbiguousSources(bySource, dropped)
	runtimeDirs := s.resolveRuntimeDirs()

	var final []domain.Entry
	for _, entry := range s.entries {
		if !dropped[entry.Source] {
			final = append(final, entry)
		}
	}
	final = append(final, renamedEntries...)
	domain.SortEntries(final)

	return &Result{
		Entries:     final,
		RuntimeDirs: runtimeDirs,
		FilesRead:   s.filesRead,
		Errors:      s.errs,
	}
}

// checkAmbiguousSources reports sources claimed by several distinct entries
// and also consumed by a rename: there is no way to tell which of the
// originals the rename replaces.
func (s *state) checkAmbiguousSources(bySource map[string][]domain.Entry, dropped map[string]bool) {
	var ambiguous []string
	for src := range dropped {
		if len(bySource[src]) > 1 {
			ambiguous = append(ambiguous, src)
		}
	}
	sort.Strings(ambiguous)

	for _, src := range ambiguous {
		group := append([]domain.Entry(nil), bySource[src]...)
		domain.SortEntries(group)
		lines := make([]string, 0, len(group))
		for _, entry := range group {
			lines = append(lines, "  "+entry.String())
		}
		s.errs = append(s.errs, fmt.Sprintf(
			"multiple entries share source %q, which a rename also consumes; "+
				"cannot tell which entry the rename replaces "+
				"(a resource-style target and a rename-style target may both claim this source):\n%s",
			src, strings.Join(lines, "\n")))
	}
}

// resolveRuntimeDirs groups elf_runtime_dir annotations per destination. A
// destination annotated with more than one distinct directory is a conflict.
func (s *state) resolveRuntimeDirs() map[string]string {
	resolved := make(map[string]string)

	dests := make([]string, 0, len(s.runtimeDirs))
	for dest := range s.runtimeDirs {
		dests = append(dests, dest)
	}
	sort.Strings(dests)

	for _, dest := range dests {
		annotations := s.runtimeDirs[dest]
		distinct := map[string]bool{}
		for _, a := range annotations {
			distinct[a.dir] = true
		}
		if len(distinct) == 1 {
			resolved[dest] = annotations[0].dir
			continue
		}

		lines := make([]string, 0, len(annotations))
		for _, a := range annotations {
			lines = append(lines, fmt.Sprintf("  %s: elf_runtime_dir=%s", a.entry, a.dir))
		}
		sort.Strings(lines)
		s.errs = append(s.errs, fmt.Sprintf(
			"conflicting elf_runtime_dir values for destination %q:\n%s",
			dest, strings.Join(lines, "\n")))
	}
	return resolved
}

func containsEntry(entries []domain.Entry, e domain.Entry) bool {
	for _, other := range entries {
		if other == e {
			return true
		}
	}
	return false
}
