package ports

// BuildIDStore accumulates the build-ID index emitted alongside a finalized
// manifest, pairing each GNU build ID with the file it was read from.
type BuildIDStore interface {
	// Add records one build ID. Later additions for the same ID win.
	Add(buildID, path string)

	// Save writes the index to the given path, one "<id> <path>" line per
	// entry, sorted by ID.
	Save(path string) error
}
