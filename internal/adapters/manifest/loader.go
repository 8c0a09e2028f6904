// Package manifest reads JSON manifest fragment files and reads/writes flat
// destination=source manifests.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FragmentLoader = (*Loader)(nil)

// Loader implements ports.FragmentLoader over the filesystem.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFragments reads and decodes one JSON fragment file.
func (l *Loader) LoadFragments(path string) ([]domain.Fragment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fragment paths come from the build plan
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read fragment file"), "path", path)
	}
	frags, err := Decode(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return frags, nil
}

// rawFragment is the union of every key a fragment object may carry. It
// exists only at the decode boundary; classification into the tagged domain
// variants happens exactly once, here.
type rawFragment struct {
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	Label         string `json:"label"`
	ElfRuntimeDir string `json:"elf_runtime_dir"`
	RenamedSource string `json:"renamed_source"`
	KeepOriginal  bool   `json:"keep_original"`
	CopyFrom      string `json:"copy_from"`
	CopyTo        string `json:"copy_to"`
	File          string `json:"file"`
}

// Decode parses a JSON array of fragment objects into tagged variants.
func Decode(data []byte) ([]domain.Fragment, error) {
	var raws []rawFragment
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, zerr.Wrap(err, "failed to parse fragment JSON")
	}

	frags := make([]domain.Fragment, 0, len(raws))
	for i, raw := range raws {
		frag, err := raw.classify()
		if err != nil {
			return nil, zerr.With(err, "index", i)
		}
		frags = append(frags, frag)
	}
	return frags, nil
}

func (r rawFragment) classify() (domain.Fragment, error) {
	switch {
	case r.File != "":
		return domain.FileInclude{Path: r.File, Label: r.Label}, nil

	case r.CopyFrom != "" || r.CopyTo != "":
		if r.CopyFrom == "" || r.CopyTo == "" {
			return nil, zerr.With(domain.ErrBadFragment, "reason", "copy directive needs both copy_from and copy_to")
		}
		return domain.CopyDirective{CopyFrom: r.CopyFrom, CopyTo: r.CopyTo, Label: r.Label}, nil

	case r.RenamedSource != "":
		if r.Destination == "" {
			return nil, zerr.With(domain.ErrBadFragment, "reason", "rename directive needs a destination")
		}
		return domain.RenameDirective{
			RenamedSource: r.RenamedSource,
			Destination:   r.Destination,
			Label:         r.Label,
			KeepOriginal:  r.KeepOriginal,
		}, nil

	case r.Source != "" && r.Destination != "":
		return domain.RegularEntry{
			Entry: domain.Entry{
				Destination: r.Destination,
				Source:      r.Source,
				Label:       r.Label,
			},
			ElfRuntimeDir: r.ElfRuntimeDir,
		}, nil

	default:
		return nil, zerr.With(domain.ErrBadFragment, "reason", "entry needs both source and destination")
	}
}

// ReadFlat parses a flat destination=source manifest. The flat format carries
// no labels, so every entry gets the supplied one. Blank lines are ignored.
func ReadFlat(path, label string) ([]domain.Entry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // manifest paths come from the build plan
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}

	var entries []domain.Entry
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		entry, err := domain.ParseFlatLine(line, label)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WriteFlat writes entries as a flat manifest, sorted by destination,
// creating parent directories as needed.
func WriteFlat(path string, entries []domain.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create manifest directory")
	}
	//nolint:gosec // output path comes from the build plan
	if err := os.WriteFile(path, []byte(domain.FlatManifest(entries)), 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", path)
	}
	return nil
}
