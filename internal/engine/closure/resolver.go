// Package closure walks DT_NEEDED dependencies of dynamic binaries and
// resolves them against a library install directory.
package closure

import (
	"fmt"
	"path"
)

// rewrites maps DT_NEEDED names to the install name that actually satisfies
// them. An empty value means the dependency is provided by the runtime and
// never appears in the manifest.
var rewrites = map[string]string{
	"libzircon.so": "",
	"libc.so":      "ld.so.1",
}

// RewriteNeeded returns the effective file name for a DT_NEEDED entry. The
// second result is false when the dependency is satisfied implicitly and must
// not be resolved at all.
func RewriteNeeded(name string) (string, bool) {
	rewritten, ok := rewrites[name]
	if !ok {
		return name, true
	}
	if rewritten == "" {
		return "", false
	}
	return rewritten, true
}

// Lookup resolves one library install path. It reports the library's own
// DT_NEEDED list and whether the path exists in the manifest at all.
type Lookup func(path string) (needed []string, found bool, err error)

// Resolver computes transitive shared-library closures.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve walks the transitive DT_NEEDED closure of one binary. direct holds
// the binary's own DT_NEEDED names; every name is rewritten, joined onto
// libDir, and looked up. Newly found install paths are returned in discovery
// order. Each unresolvable path produces exactly one missing line across all
// Resolve calls sharing the same visited set. The error reports lookup I/O
// failures only.
func (r *Resolver) Resolve(binaryName, libDir string, direct []string, lookup Lookup, visited map[string]bool) (resolved, missing []string, err error) {
	worklist := append([]string(nil), direct...)
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]

		name, ok := RewriteNeeded(name)
		if !ok {
			continue
		}
		libPath := path.Join(libDir, name)
		if visited[libPath] {
			continue
		}
		// Mark before the lookup so a missing library is reported once even
		// when several binaries need it.
		visited[libPath] = true

		needed, found, err := lookup(libPath)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			missing = append(missing, fmt.Sprintf("%s missing dependency %s", binaryName, libPath))
			continue
		}

		resolved = append(resolved, libPath)
		worklist = append(worklist, needed...)
	}
	return resolved, missing, nil
}
