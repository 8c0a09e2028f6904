package ports

import "go.trai.ch/fin/internal/core/domain"

// ElfReader parses ELF metadata out of build outputs.
//
//go:generate mockgen -source=elf_reader.go -destination=mocks/mock_elf_reader.go -package=mocks
type ElfReader interface {
	// ReadInfo returns the metadata of the file at path. It returns
	// domain.ErrNotELF when the file is not ELF at all; that is an expected
	// condition, and callers treat such files as opaque data. Implementations
	// cache by path, so repeated reads of the same file parse once.
	ReadInfo(path string) (*domain.ElfInfo, error)
}
