package domain

import "go.trai.ch/zerr"

// ErrInvalidPlan is returned when a finalize plan is missing required fields.
var ErrInvalidPlan = zerr.New("invalid finalize plan")

// Plan describes one finalize run: which fragment files to expand, where
// shared libraries live inside the package, and which outputs to write.
type Plan struct {
	// Label is the default provenance label for entries without one.
	Label string

	// Fragments lists the JSON manifest fragment files to expand.
	Fragments []string

	// LibDir is the package-relative directory closure resolution joins
	// dependency names against. Defaults to "lib".
	LibDir string

	// LibSearchPaths lists build-output directories searched for shared
	// libraries that are needed but not yet present in the manifest.
	LibSearchPaths []string

	// Output is the path of the finalized flat manifest.
	Output string

	// BuildIDFile, when set, is where the build-ID index is written.
	BuildIDFile string
}

// Validate checks the plan for the fields a run cannot proceed without and
// fills in defaults.
func (p *Plan) Validate() error {
	if len(p.Fragments) == 0 {
		return zerr.With(ErrInvalidPlan, "reason", "no fragment files listed")
	}
	if p.Output == "" {
		return zerr.With(ErrInvalidPlan, "reason", "no output manifest path")
	}
	if p.LibDir == "" {
		p.LibDir = "lib"
	}
	return nil
}
