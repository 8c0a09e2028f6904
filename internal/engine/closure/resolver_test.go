package closure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/internal/engine/closure"
)

// mapLookup serves DT_NEEDED lists from a fixed table and records every path
// it was asked about.
func mapLookup(libs map[string][]string, asked *[]string) closure.Lookup {
	return func(path string) ([]string, bool, error) {
		if asked != nil {
			*asked = append(*asked, path)
		}
		needed, ok := libs[path]
		return needed, ok, nil
	}
}

func TestResolve_TransitiveChain(t *testing.T) {
	lookup := mapLookup(map[string][]string{
		"lib/liba.so":  {"libb.so"},
		"lib/libb.so":  {"libc2.so"},
		"lib/libc2.so": nil,
	}, nil)

	resolved, missing, err := closure.NewResolver().Resolve(
		"bin/app", "lib", []string{"liba.so"}, lookup, map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, []string{"lib/liba.so", "lib/libb.so", "lib/libc2.so"}, resolved)
}

func TestResolve_CycleTerminates(t *testing.T) {
	var asked []string
	lookup := mapLookup(map[string][]string{
		"lib/liba.so":  {"libb.so"},
		"lib/libb.so":  {"libc2.so"},
		"lib/libc2.so": {"liba.so"},
	}, &asked)

	resolved, missing, err := closure.NewResolver().Resolve(
		"bin/app", "lib", []string{"liba.so"}, lookup, map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Len(t, resolved, 3)
	// Each library is looked up exactly once despite the cycle.
	assert.Equal(t, []string{"lib/liba.so", "lib/libb.so", "lib/libc2.so"}, asked)
}

func TestResolve_MissingReportedOnce(t *testing.T) {
	lookup := mapLookup(map[string][]string{
		"lib/liba.so": {"libgone.so", "libb.so"},
		"lib/libb.so": nil,
	}, nil)

	visited := map[string]bool{}
	resolved, missing, err := closure.NewResolver().Resolve(
		"bin/app", "lib", []string{"liba.so"}, lookup, visited)
	require.NoError(t, err)
	// The sibling after the missing library is still walked.
	assert.Equal(t, []string{"lib/liba.so", "lib/libb.so"}, resolved)
	assert.Equal(t, []string{"bin/app missing dependency lib/libgone.so"}, missing)

	// A second binary sharing the visited set does not report it again.
	resolved, missing, err = closure.NewResolver().Resolve(
		"bin/other", "lib", []string{"libgone.so"}, lookup, visited)
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Empty(t, missing)
}

func TestResolve_LibcRewrite(t *testing.T) {
	var asked []string
	lookup := mapLookup(map[string][]string{
		"lib/ld.so.1": nil,
	}, &asked)

	resolved, missing, err := closure.NewResolver().Resolve(
		"bin/app", "lib", []string{"libc.so"}, lookup, map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, missing)
	assert.Equal(t, []string{"lib/ld.so.1"}, resolved)
	assert.Equal(t, []string{"lib/ld.so.1"}, asked)
}

func TestResolve_VDSONeverLookedUp(t *testing.T) {
	var asked []string
	lookup := mapLookup(nil, &asked)

	resolved, missing, err := closure.NewResolver().Resolve(
		"bin/app", "lib", []string{"libzircon.so"}, lookup, map[string]bool{})
	require.NoError(t, err)
	assert.Empty(t, resolved)
	assert.Empty(t, missing)
	assert.Empty(t, asked)
}

func TestRewriteNeeded(t *testing.T) {
	name, ok := closure.RewriteNeeded("libfoo.so")
	assert.True(t, ok)
	assert.Equal(t, "libfoo.so", name)

	name, ok = closure.RewriteNeeded("libc.so")
	assert.True(t, ok)
	assert.Equal(t, "ld.so.1", name)

	_, ok = closure.RewriteNeeded("libzircon.so")
	assert.False(t, ok)
}
