package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/internal/adapters/manifest"
	"go.trai.ch/fin/internal/core/domain"
)

func TestDecode_Variants(t *testing.T) {
	data := []byte(`[
		{"source": "obj/foo", "destination": "bin/foo", "label": "//src/foo"},
		{"source": "obj/libbar.so", "destination": "lib/libbar.so", "elf_runtime_dir": "lib/asan"},
		{"renamed_source": "obj/foo", "destination": "bin/foo2", "keep_original": true},
		{"copy_from": "obj/foo", "copy_to": "obj/foo.copy"},
		{"file": "more.fragment.json", "label": "//src/more"}
	]`)

	frags, err := manifest.Decode(data)
	require.NoError(t, err)
	require.Len(t, frags, 5)

	reg, ok := frags[0].(domain.RegularEntry)
	require.True(t, ok)
	assert.Equal(t, domain.Entry{Destination: "bin/foo", Source: "obj/foo", Label: "//src/foo"}, reg.Entry)
	assert.Empty(t, reg.ElfRuntimeDir)

	lib, ok := frags[1].(domain.RegularEntry)
	require.True(t, ok)
	assert.Equal(t, "lib/asan", lib.ElfRuntimeDir)

	ren, ok := frags[2].(domain.RenameDirective)
	require.True(t, ok)
	assert.Equal(t, "obj/foo", ren.RenamedSource)
	assert.Equal(t, "bin/foo2", ren.Destination)
	assert.True(t, ren.KeepOriginal)

	cp, ok := frags[3].(domain.CopyDirective)
	require.True(t, ok)
	assert.Equal(t, "obj/foo", cp.CopyFrom)
	assert.Equal(t, "obj/foo.copy", cp.CopyTo)

	inc, ok := frags[4].(domain.FileInclude)
	require.True(t, ok)
	assert.Equal(t, "more.fragment.json", inc.Path)
	assert.Equal(t, "//src/more", inc.Label)
}

func TestDecode_Errors(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		_, err := manifest.Decode([]byte(`{"not": "an array"}`))
		require.Error(t, err)
	})

	t.Run("entry without source", func(t *testing.T) {
		_, err := manifest.Decode([]byte(`[{"destination": "bin/foo"}]`))
		require.ErrorIs(t, err, domain.ErrBadFragment)
	})

	t.Run("half copy directive", func(t *testing.T) {
		_, err := manifest.Decode([]byte(`[{"copy_from": "obj/foo"}]`))
		require.ErrorIs(t, err, domain.ErrBadFragment)
	})

	t.Run("rename without destination", func(t *testing.T) {
		_, err := manifest.Decode([]byte(`[{"renamed_source": "obj/foo"}]`))
		require.ErrorIs(t, err, domain.ErrBadFragment)
	})
}

func TestLoadFragments_MissingFile(t *testing.T) {
	_, err := manifest.NewLoader().LoadFragments(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fragment file")
}

func TestFlat_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "package.manifest")

	entries := []domain.Entry{
		{Destination: "bin/zsh", Source: "obj/zsh", Label: "//shell"},
		{Destination: "bin/app", Source: "obj/app", Label: "//app"},
	}
	require.NoError(t, manifest.WriteFlat(path, entries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bin/app=obj/app\nbin/zsh=obj/zsh\n", string(data))

	back, err := manifest.ReadFlat(path, "//restored")
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, domain.Entry{Destination: "bin/app", Source: "obj/app", Label: "//restored"}, back[0])
}

func TestReadFlat_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.manifest")
	require.NoError(t, os.WriteFile(path, []byte("no-equals-sign\n"), 0o600))

	_, err := manifest.ReadFlat(path, "")
	require.ErrorIs(t, err, domain.ErrBadManifestLine)
}
