// Package domain contains the core value types for manifest finalization.
package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Entry describes one file placement: a build output (Source) installed at a
// package-relative path (Destination). Label is an opaque provenance tag, kept
// only for diagnostics and tie-breaking. Entries are immutable values; within
// one merged manifest the destination is unique.
type Entry struct {
	Destination string `json:"destination"`
	Source      string `json:"source"`
	Label       string `json:"label,omitempty"`
}

// ParseFlatLine parses one line of the flat destination=source manifest
// format. The flat format carries no label, so the caller supplies one.
func ParseFlatLine(line, label string) (Entry, error) {
	dest, src, ok := strings.Cut(line, "=")
	if !ok || dest == "" {
		return Entry{}, zerr.With(ErrBadManifestLine, "line", line)
	}
	return Entry{Destination: dest, Source: src, Label: label}, nil
}

// FlatLine renders the entry in the flat manifest format.
func (e Entry) FlatLine() string {
	return e.Destination + "=" + e.Source
}

// String renders the entry for diagnostics, including the label when present.
func (e Entry) String() string {
	if e.Label == "" {
		return e.FlatLine()
	}
	return e.FlatLine() + " (" + e.Label + ")"
}

// CompareEntries orders entries by destination, then source, then label.
func CompareEntries(a, b Entry) int {
	if c := strings.Compare(a.Destination, b.Destination); c != 0 {
		return c
	}
	if c := strings.Compare(a.Source, b.Source); c != 0 {
		return c
	}
	return strings.Compare(a.Label, b.Label)
}

// SortEntries sorts entries in place into the deterministic output order.
func SortEntries(entries []Entry) {
	slices.SortFunc(entries, CompareEntries)
}

// FlatManifest renders entries in the flat manifest format, one line per
// entry, sorted by destination. The input slice is not modified.
func FlatManifest(entries []Entry) string {
	sorted := slices.Clone(entries)
	SortEntries(sorted)

	var sb strings.Builder
	for _, e := range sorted {
		sb.WriteString(e.FlatLine())
		sb.WriteByte('\n')
	}
	return sb.String()
}
