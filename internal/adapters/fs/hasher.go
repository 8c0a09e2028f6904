package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ContentHasher = (*Hasher)(nil)

// Hasher provides content hashing for manifest sources.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile computes the XXHash of a file's content.
func (h *Hasher) HashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// ContentEqual reports whether two files hold identical bytes. Files with
// different sizes are unequal without reading either one.
func (h *Hasher) ContentEqual(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", a)
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", b)
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	hashA, err := h.HashFile(a)
	if err != nil {
		return false, err
	}
	hashB, err := h.HashFile(b)
	if err != nil {
		return false, err
	}
	return hashA == hashB, nil
}
