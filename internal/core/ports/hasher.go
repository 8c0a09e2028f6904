package ports

// ContentHasher compares file contents without the caller holding the bytes.
type ContentHasher interface {
	// HashFile computes the content hash of one file.
	HashFile(path string) (uint64, error)

	// ContentEqual reports whether two files hold identical bytes. It must
	// not touch the filesystem when the two paths are textually equal.
	ContentEqual(a, b string) (bool, error)
}
