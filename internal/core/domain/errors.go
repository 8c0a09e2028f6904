package domain

import "go.trai.ch/zerr"

var (
	// ErrNotELF is returned when a file does not carry the ELF magic. It is an
	// expected condition, not a failure: callers treat such files as opaque data.
	ErrNotELF = zerr.New("not an ELF file")

	// ErrMalformedELF is returned when a file looks like ELF but its headers or
	// offsets are inconsistent.
	ErrMalformedELF = zerr.New("malformed ELF file")

	// ErrUnsupportedELF is returned when a file's class or byte order is not one
	// of the four supported layouts.
	ErrUnsupportedELF = zerr.New("unsupported ELF class or byte order")

	// ErrBadManifestLine is returned when a flat manifest line is not of the
	// form destination=source.
	ErrBadManifestLine = zerr.New("malformed manifest line")

	// ErrBadFragment is returned when a JSON manifest fragment does not match
	// any of the recognized shapes.
	ErrBadFragment = zerr.New("unrecognized manifest fragment")

	// ErrExpansionFailed is returned after expansion when one or more
	// diagnostics were accumulated.
	ErrExpansionFailed = zerr.New("manifest expansion failed")

	// ErrManifestConflict is returned when entries collide on a destination
	// with sources that are neither the same path nor the same bytes.
	ErrManifestConflict = zerr.New("conflicting manifest entries")

	// ErrMissingDependencies is returned when closure resolution could not
	// account for every needed shared library.
	ErrMissingDependencies = zerr.New("unresolved shared-library dependencies")
)
