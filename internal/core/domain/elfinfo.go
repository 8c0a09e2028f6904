package domain

// ElfInfo is a read-only snapshot of one ELF file's metadata. It is computed
// by a single full parse and treated as a cache keyed by file path.
type ElfInfo struct {
	// CPU is the machine name ("x64", "arm64", ...) derived from e_machine.
	CPU string `json:"cpu"`

	// Machine is the raw e_machine value, kept for machines without a name.
	Machine uint16 `json:"machine"`

	// BuildID is the lowercase hex GNU build ID, or empty when absent.
	BuildID string `json:"build_id,omitempty"`

	// Stripped reports whether the file carries no debugging sections.
	Stripped bool `json:"stripped"`

	// Interp is the PT_INTERP dynamic-linker path, or empty.
	Interp string `json:"interp,omitempty"`

	// Soname is the DT_SONAME value, or empty.
	Soname string `json:"soname,omitempty"`

	// Needed lists the DT_NEEDED shared-library names in file order.
	Needed []string `json:"needed,omitempty"`

	// Sizes is the load-segment byte accounting.
	Sizes ElfSizes `json:"sizes"`
}

// ElfSizes accounts the bytes of the PT_LOAD segments, classified by their
// access flags, plus the relocation payload reported by the dynamic section.
type ElfSizes struct {
	File   uint64 `json:"file"`
	Memory uint64 `json:"memory"`
	Code   uint64 `json:"code"`
	Rodata uint64 `json:"rodata"`
	Data   uint64 `json:"data"`
	Bss    uint64 `json:"bss"`
	Relro  uint64 `json:"relro"`
	Rel    uint64 `json:"rel"`
}

// Dynamic reports whether the file links against shared libraries.
func (i *ElfInfo) Dynamic() bool {
	return len(i.Needed) > 0
}

// BinaryEntry pairs a manifest entry with the parsed metadata of its source.
// It exists only during closure resolution and is never persisted.
type BinaryEntry struct {
	Entry Entry
	Info  *ElfInfo
}
