package expand_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/internal/adapters/manifest"
	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/engine/expand"
)

func newExpander() *expand.Expander {
	return expand.NewExpander(manifest.NewLoader())
}

func regular(dest, src, label string) domain.RegularEntry {
	return domain.RegularEntry{Entry: domain.Entry{Destination: dest, Source: src, Label: label}}
}

func TestExpand_PlainEntries(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/b", "obj/b", "//b"),
		regular("bin/a", "obj/a", ""),
	}, "//default")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/a", Source: "obj/a", Label: "//default"},
		{Destination: "bin/b", Source: "obj/b", Label: "//b"},
	}, res.Entries)
}

func TestExpand_RenameRoundTrip(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/foo", "obj/foo", "//src/foo"),
		domain.RenameDirective{RenamedSource: "obj/foo", Destination: "bin/foo2"},
	}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	// The original destination is gone; the renamed entry keeps source and label.
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/foo2", Source: "obj/foo", Label: "//src/foo"},
	}, res.Entries)
}

func TestExpand_RenameKeepOriginal(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/foo", "obj/foo", "//src/foo"),
		domain.RenameDirective{
			RenamedSource: "obj/foo",
			Destination:   "bin/foo2",
			Label:         "//src/foo2",
			KeepOriginal:  true,
		},
	}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/foo", Source: "obj/foo", Label: "//src/foo"},
		{Destination: "bin/foo2", Source: "obj/foo", Label: "//src/foo2"},
	}, res.Entries)
}

func TestExpand_RenameThroughCopyAlias(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/tool", "obj/tool", "//tool"),
		domain.CopyDirective{CopyFrom: "obj/tool", CopyTo: "obj/tool.stripped"},
		domain.RenameDirective{RenamedSource: "obj/tool.stripped", Destination: "bin/tool.prod"},
	}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/tool.prod", Source: "obj/tool", Label: "//tool"},
	}, res.Entries)
}

func TestExpand_UnknownRenameSource(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/foo", "obj/foo", "//src/foo"),
		domain.RenameDirective{RenamedSource: "obj/missing", Destination: "bin/ghost"},
	}, "")
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "renamed_source")
	assert.Contains(t, res.Errors[0], `"destination":"bin/ghost"`)
	assert.Contains(t, res.Errors[0], `"renamed_source":"obj/missing"`)
	// No ghost entry was produced.
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/foo", Source: "obj/foo", Label: "//src/foo"},
	}, res.Entries)
}

func TestExpand_AmbiguousRenamedSource(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		regular("bin/one", "obj/shared", "//one"),
		regular("bin/two", "obj/shared", "//two"),
		domain.RenameDirective{RenamedSource: "obj/shared", Destination: "bin/renamed"},
	}, "")
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], `source "obj/shared"`)
	assert.Contains(t, res.Errors[0], "bin/one")
	assert.Contains(t, res.Errors[0], "bin/two")
}

func TestExpand_RuntimeDirs(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		domain.RegularEntry{
			Entry:         domain.Entry{Destination: "bin/san", Source: "obj/san", Label: "//san"},
			ElfRuntimeDir: "lib/asan",
		},
		regular("bin/plain", "obj/plain", "//plain"),
	}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, map[string]string{"bin/san": "lib/asan"}, res.RuntimeDirs)
}

func TestExpand_RuntimeDirConflict(t *testing.T) {
	res, err := newExpander().Expand([]domain.Fragment{
		domain.RegularEntry{
			Entry:         domain.Entry{Destination: "bin/san", Source: "obj/san", Label: "//a"},
			ElfRuntimeDir: "lib/asan",
		},
		domain.RegularEntry{
			Entry:         domain.Entry{Destination: "bin/san", Source: "obj/san", Label: "//b"},
			ElfRuntimeDir: "lib/ubsan",
		},
	}, "")
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], `elf_runtime_dir values for destination "bin/san"`)
	assert.Contains(t, res.Errors[0], "lib/asan")
	assert.Contains(t, res.Errors[0], "lib/ubsan")
	assert.NotContains(t, res.RuntimeDirs, "bin/san")
}

func TestExpand_FileIncludes(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.json")
	require.NoError(t, os.WriteFile(inner, []byte(`[
		{"source": "obj/labeled", "destination": "bin/labeled", "label": "//own"},
		{"source": "obj/unlabeled", "destination": "bin/unlabeled"}
	]`), 0o600))

	res, err := newExpander().Expand([]domain.Fragment{
		domain.FileInclude{Path: inner, Label: "//group"},
	}, "")
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{inner}, res.FilesRead)
	assert.Equal(t, []domain.Entry{
		{Destination: "bin/labeled", Source: "obj/labeled", Label: "//own"},
		{Destination: "bin/unlabeled", Source: "obj/unlabeled", Label: "//group"},
	}, res.Entries)
}

func TestExpand_NestedIncludes(t *testing.T) {
	dir := t.TempDir()
	leaf := filepath.Join(dir, "leaf.json")
	mid := filepath.Join(dir, "mid.json")
	require.NoError(t, os.WriteFile(leaf, []byte(`[
		{"source": "obj/leaf", "destination": "bin/leaf"}
	]`), 0o600))
	require.NoError(t, os.WriteFile(mid, []byte(`[
		{"file": `+string(mustJSON(t, leaf))+`}
	]`), 0o600))

	res, err := newExpander().Expand([]domain.Fragment{
		domain.FileInclude{Path: mid, Label: "//top"},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{mid, leaf}, res.FilesRead)
	require.Len(t, res.Entries, 1)
	// The label flows down through both include levels.
	assert.Equal(t, "//top", res.Entries[0].Label)
}

func TestExpand_MissingIncludeFails(t *testing.T) {
	_, err := newExpander().Expand([]domain.Fragment{
		domain.FileInclude{Path: filepath.Join(t.TempDir(), "gone.json")},
	}, "")
	require.Error(t, err)
}

func mustJSON(t *testing.T, s string) []byte {
	t.Helper()
	return []byte(`"` + s + `"`)
}
