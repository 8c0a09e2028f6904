package domain

// Fragment is one parsed object from a JSON manifest fragment file. The JSON
// shape is classified exactly once at the decode boundary; everything past
// that point switches exhaustively over the four variants below.
type Fragment interface {
	fragment()
}

// RegularEntry is a fully specified entry, optionally annotated with the
// runtime directory its ELF dependencies should be resolved against. The
// annotation is recorded as a side directive and stripped before the entry
// itself is constructed.
type RegularEntry struct {
	Entry
	ElfRuntimeDir string
}

// RenameDirective requests that the entry whose source equals RenamedSource
// appear at Destination instead. When KeepOriginal is set the original entry
// survives alongside the renamed one.
type RenameDirective struct {
	RenamedSource string
	Destination   string
	Label         string
	KeepOriginal  bool
}

// CopyDirective establishes an alias: a later RenameDirective referencing
// CopyTo resolves through to the entry that provides CopyFrom.
type CopyDirective struct {
	CopyFrom string
	CopyTo   string
	Label    string
}

// FileInclude pulls in another fragment file. Its label becomes the default
// label for included entries that do not specify their own.
type FileInclude struct {
	Path  string
	Label string
}

func (RegularEntry) fragment()    {}
func (RenameDirective) fragment() {}
func (CopyDirective) fragment()   {}
func (FileInclude) fragment()     {}
