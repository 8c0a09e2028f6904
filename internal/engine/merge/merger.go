// Package merge deduplicates expanded manifest entries by destination.
package merge

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
)

// Merger collapses entries that target the same destination, verifying that
// colliding entries agree on their source by path or by content.
type Merger struct {
	hasher ports.ContentHasher
}

// NewMerger creates a new Merger using the given hasher for content-equality
// checks.
func NewMerger(hasher ports.ContentHasher) *Merger {
	return &Merger{hasher: hasher}
}

// Conflict records one destination claimed by entries with genuinely
// different sources.
type Conflict struct {
	Destination string
	Entries     []domain.Entry
}

// Merge deduplicates entries by destination and returns them sorted. The
// message is empty on success; when entries collide with different sources it
// holds the full multi-line report, one line per conflicting entry, so a
// broken build surfaces every conflict at once. The error reports I/O
// failures from content comparison only.
func (m *Merger) Merge(entries []domain.Entry) (merged []domain.Entry, message string, err error) {
	byDest := make(map[string][]domain.Entry)
	var dests []string
	for _, entry := range entries {
		group := byDest[entry.Destination]
		if group == nil {
			dests = append(dests, entry.Destination)
		}
		if !slices.Contains(group, entry) {
			byDest[entry.Destination] = append(group, entry)
		}
	}
	sort.Strings(dests)

	var conflicts []Conflict
	for _, dest := range dests {
		keep, conflicting, err := m.collapse(byDest[dest])
		if err != nil {
			return nil, "", err
		}
		if len(conflicting) > 0 {
			slices.SortFunc(conflicting, domain.CompareEntries)
			conflicts = append(conflicts, Conflict{Destination: dest, Entries: conflicting})
			continue
		}
		merged = append(merged, keep)
	}

	return merged, formatConflicts(conflicts), nil
}

// collapse reduces one destination's entries to a single representative.
// Entries whose source matches the representative by path, or failing that by
// content, are folded in; a folded entry donates its label when the
// representative has none. Anything else is a conflict.
func (m *Merger) collapse(group []domain.Entry) (domain.Entry, []domain.Entry, error) {
	keep := group[0]
	var conflicting []domain.Entry
	for _, other := range group[1:] {
		same := other.Source == keep.Source
		if !same {
			// Only touch the filesystem when the paths differ textually.
			equal, err := m.hasher.ContentEqual(keep.Source, other.Source)
			if err != nil {
				return domain.Entry{}, nil, err
			}
			same = equal
		}
		if !same {
			conflicting = append(conflicting, other)
			continue
		}
		if keep.Label == "" && other.Label != "" {
			keep.Label = other.Label
		}
	}
	if len(conflicting) > 0 {
		conflicting = append(conflicting, keep)
	}
	return keep, conflicting, nil
}

func formatConflicts(conflicts []Conflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("manifest entries conflict on their destination:\n")
	for _, c := range conflicts {
		fmt.Fprintf(&sb, "%s:\n", c.Destination)
		for _, entry := range c.Entries {
			fmt.Fprintf(&sb, "  %s\n", entry)
		}
	}
	return sb.String()
}
