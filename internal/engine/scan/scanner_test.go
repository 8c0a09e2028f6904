package scan_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/internal/adapters/elf"
	"go.trai.ch/fin/internal/adapters/elf/elftest"
	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/engine/scan"
)

func writeImage(t *testing.T, dir, name string, b elftest.Builder) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o600))
	return path
}

func TestScan_MixedEntries(t *testing.T) {
	dir := t.TempDir()
	app := writeImage(t, dir, "app", elftest.Builder{
		Interp: "ld.so.1",
		Needed: []string{"libfoo.so"},
	})
	lib := writeImage(t, dir, "libfoo.so", elftest.Builder{
		Soname: "libfoo.so",
	})
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not an elf"), 0o600))

	scanner := scan.NewScanner(elf.NewReader(), 4)
	binaries, err := scanner.Scan(context.Background(), []domain.Entry{
		{Destination: "lib/libfoo.so", Source: lib},
		{Destination: "data/notes.txt", Source: text},
		{Destination: "bin/app", Source: app},
	})
	require.NoError(t, err)

	// The text file is skipped; results come back sorted by destination.
	require.Len(t, binaries, 2)
	assert.Equal(t, "bin/app", binaries[0].Entry.Destination)
	assert.Equal(t, []string{"libfoo.so"}, binaries[0].Info.Needed)
	assert.Equal(t, "lib/libfoo.so", binaries[1].Entry.Destination)
	assert.Equal(t, "libfoo.so", binaries[1].Info.Soname)
}

func TestScan_MissingSourceFails(t *testing.T) {
	scanner := scan.NewScanner(elf.NewReader(), 4)
	_, err := scanner.Scan(context.Background(), []domain.Entry{
		{Destination: "bin/app", Source: filepath.Join(t.TempDir(), "gone")},
	})
	require.Error(t, err)
}

func TestScan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := scan.NewScanner(elf.NewReader(), 4)
	_, err := scanner.Scan(ctx, []domain.Entry{
		{Destination: "bin/app", Source: "irrelevant"},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_Empty(t *testing.T) {
	scanner := scan.NewScanner(elf.NewReader(), 0)
	binaries, err := scanner.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, binaries)
}
