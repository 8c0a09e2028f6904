// Package elftest assembles minimal ELF images in memory for tests. The
// images carry exactly the structures the reader consumes: a header, a single
// PT_LOAD mapping the whole file, and optional PT_INTERP, PT_DYNAMIC, PT_NOTE
// segments and section headers.
package elftest

import (
	"encoding/binary"
)

// Machine values used by tests.
const (
	EM386     = 3
	EMX8664   = 62
	EMAARCH64 = 183
)

// loadBias is the virtual address the single PT_LOAD segment is mapped at.
// Keeping it non-zero exercises the vaddr-to-file-offset translation.
const loadBias = 0x10000

// Builder describes the image to assemble. The zero value produces a valid
// 64-bit little-endian image with no dynamic section.
type Builder struct {
	// Class32 selects ELFCLASS32 instead of ELFCLASS64.
	Class32 bool

	// BigEndian selects ELFDATA2MSB instead of ELFDATA2LSB.
	BigEndian bool

	// Machine is the e_machine value. Defaults to EM_X86_64.
	Machine uint16

	// Interp, when set, adds a PT_INTERP segment.
	Interp string

	// Soname and Needed populate the PT_DYNAMIC segment. A dynamic section
	// and string table are emitted whenever either is non-empty.
	Soname string
	Needed []string

	// BuildIDs adds one GNU build-ID note per element, in order.
	BuildIDs [][]byte

	// Sections names extra unallocated sections to append after the standard
	// .shstrtab. "symtab" emits an SHT_SYMTAB section; any other name emits
	// an SHT_PROGBITS section with that name. When empty, no section header
	// table is emitted at all.
	Sections []string

	// BreakPhentsize corrupts e_phentsize to provoke a malformed-header error.
	BreakPhentsize bool

	// StrtabVaddr overrides the DT_STRTAB address; used to point the string
	// table outside every PT_LOAD segment.
	StrtabVaddr uint64
}

// Bytes assembles the image.
func (b Builder) Bytes() []byte {
	w := &writer{is64: !b.Class32, be: b.BigEndian}
	if b.BigEndian {
		w.order = binary.BigEndian
	} else {
		w.order = binary.LittleEndian
	}

	machine := b.Machine
	if machine == 0 {
		machine = EMX8664
	}

	type segment struct {
		typ   uint32
		data  []byte
		vaddr uint64 // filled in during layout
		off   uint64
	}
	var segs []segment

	if b.Interp != "" {
		segs = append(segs, segment{typ: ptInterp, data: append([]byte(b.Interp), 0)})
	}
	if len(b.BuildIDs) > 0 {
		segs = append(segs, segment{typ: ptNote, data: buildNotes(w.order, b.BuildIDs)})
	}

	var strtab []byte
	strtabIndex := map[string]uint64{}
	if b.Soname != "" || len(b.Needed) > 0 {
		strtab = []byte{0}
		intern := func(s string) uint64 {
			if off, ok := strtabIndex[s]; ok {
				return off
			}
			off := uint64(len(strtab))
			strtab = append(strtab, s...)
			strtab = append(strtab, 0)
			strtabIndex[s] = off
			return off
		}
		for _, n := range b.Needed {
			intern(n)
		}
		if b.Soname != "" {
			intern(b.Soname)
		}
		segs = append(segs, segment{typ: 0, data: strtab}) // raw data, no phdr
	}

	phdrCount := 1 // PT_LOAD
	for _, s := range segs {
		if s.typ != 0 {
			phdrCount++
		}
	}
	hasDynamic := b.Soname != "" || len(b.Needed) > 0
	if hasDynamic {
		phdrCount++
	}

	// Layout: ehdr, phdrs, then segment payloads in order, then the dynamic
	// array, then section headers.
	off := uint64(w.ehdrSize()) + uint64(phdrCount)*uint64(w.phdrSize())
	var strtabOff uint64
	for i := range segs {
		segs[i].off = off
		segs[i].vaddr = loadBias + off
		if segs[i].typ == 0 {
			strtabOff = off
		}
		off += uint64(len(segs[i].data))
	}

	var dynamic []byte
	dynOff := off
	if hasDynamic {
		strtabVaddr := loadBias + strtabOff
		if b.StrtabVaddr != 0 {
			strtabVaddr = b.StrtabVaddr
		}
		var dyn []dynEntry
		for _, n := range b.Needed {
			dyn = append(dyn, dynEntry{dtNeeded, strtabIndex[n]})
		}
		if b.Soname != "" {
			dyn = append(dyn, dynEntry{dtSoname, strtabIndex[b.Soname]})
		}
		dyn = append(dyn, dynEntry{dtStrtab, strtabVaddr}, dynEntry{dtNull, 0})
		dynamic = w.dynArray(dyn)
		off += uint64(len(dynamic))
	}
	loadEnd := off

	var shdrs, shstrtab []byte
	shoff, shnum, shstrndx := uint64(0), 0, 0
	if len(b.Sections) > 0 {
		shstrtab, shdrs, shnum = w.sections(b.Sections, off)
		shoff = off + uint64(len(shstrtab))
		shstrndx = 1
	}

	// Assemble.
	img := make([]byte, 0, loadEnd+uint64(len(shstrtab))+uint64(len(shdrs)))
	img = append(img, w.ehdr(machine, phdrCount, shoff, shnum, shstrndx, b.BreakPhentsize)...)

	phdrs := w.phdr(ptLoad, 0, loadBias, loadEnd, loadEnd, pfR|pfX)
	for _, s := range segs {
		if s.typ != 0 {
			phdrs = append(phdrs, w.phdr(s.typ, s.off, s.vaddr, uint64(len(s.data)), uint64(len(s.data)), pfR)...)
		}
	}
	if hasDynamic {
		phdrs = append(phdrs, w.phdr(ptDynamic, dynOff, loadBias+dynOff, uint64(len(dynamic)), uint64(len(dynamic)), pfR|pfW)...)
	}
	img = append(img, phdrs...)

	for _, s := range segs {
		img = append(img, s.data...)
	}
	img = append(img, dynamic...)
	img = append(img, shstrtab...)
	img = append(img, shdrs...)
	return img
}

// ELF constants duplicated here so the package stays importable from any test
// without exporting parser internals.
const (
	ptLoad    = 1
	ptDynamic = 2
	ptInterp  = 3
	ptNote    = 4

	pfX = 1
	pfW = 2
	pfR = 4

	dtNull   = 0
	dtNeeded = 1
	dtStrtab = 5
	dtSoname = 14

	shtProgbits = 1
	shtSymtab   = 2
	shtStrtab   = 3
)

type dynEntry struct {
	tag uint64
	val uint64
}

type writer struct {
	order binary.AppendByteOrder
	is64  bool
	be    bool
}

func (w *writer) ehdrSize() int {
	if w.is64 {
		return 64
	}
	return 52
}

func (w *writer) phdrSize() int {
	if w.is64 {
		return 56
	}
	return 32
}

func (w *writer) shdrSize() int {
	if w.is64 {
		return 64
	}
	return 40
}

func (w *writer) u16(b []byte, v uint16) []byte {
	return w.order.AppendUint16(b, v)
}

func (w *writer) u32(b []byte, v uint32) []byte {
	return w.order.AppendUint32(b, v)
}

func (w *writer) word(b []byte, v uint64) []byte {
	if w.is64 {
		return w.order.AppendUint64(b, v)
	}
	return w.order.AppendUint32(b, uint32(v))
}

func (w *writer) ehdr(machine uint16, phnum int, shoff uint64, shnum, shstrndx int, breakPhentsize bool) []byte {
	ident := make([]byte, 16)
	copy(ident, []byte{0x7f, 'E', 'L', 'F'})
	if w.is64 {
		ident[4] = 2
	} else {
		ident[4] = 1
	}
	if w.be {
		ident[5] = 2
	} else {
		ident[5] = 1
	}
	ident[6] = 1 // EV_CURRENT

	b := ident
	b = w.u16(b, 3) // ET_DYN
	b = w.u16(b, machine)
	b = w.u32(b, 1)                         // e_version
	b = w.word(b, loadBias)                 // e_entry
	b = w.word(b, uint64(w.ehdrSize()))     // e_phoff
	b = w.word(b, shoff)                    // e_shoff
	b = w.u32(b, 0)                         // e_flags
	b = w.u16(b, uint16(w.ehdrSize()))      // e_ehsize
	phentsize := uint16(w.phdrSize())
	if breakPhentsize {
		phentsize++
	}
	b = w.u16(b, phentsize)
	b = w.u16(b, uint16(phnum))
	b = w.u16(b, uint16(w.shdrSize()))
	b = w.u16(b, uint16(shnum))
	b = w.u16(b, uint16(shstrndx))
	return b
}

func (w *writer) phdr(typ uint32, off, vaddr, filesz, memsz uint64, flags uint32) []byte {
	var b []byte
	b = w.u32(b, typ)
	if w.is64 {
		b = w.u32(b, flags)
		b = w.word(b, off)
		b = w.word(b, vaddr)
		b = w.word(b, vaddr) // p_paddr
		b = w.word(b, filesz)
		b = w.word(b, memsz)
		b = w.word(b, 0x1000) // p_align
		return b
	}
	b = w.word(b, off)
	b = w.word(b, vaddr)
	b = w.word(b, vaddr)
	b = w.word(b, filesz)
	b = w.word(b, memsz)
	b = w.u32(b, flags)
	b = w.u32(b, 0x1000)
	return b
}

func (w *writer) dynArray(entries []dynEntry) []byte {
	var b []byte
	for _, e := range entries {
		b = w.word(b, e.tag)
		b = w.word(b, e.val)
	}
	return b
}

func (w *writer) shdr(name uint32, typ uint32, flags, off, size uint64) []byte {
	var b []byte
	b = w.u32(b, name)
	b = w.u32(b, typ)
	b = w.word(b, flags)
	b = w.word(b, 0) // sh_addr
	b = w.word(b, off)
	b = w.word(b, size)
	b = w.u32(b, 0) // sh_link
	b = w.u32(b, 0) // sh_info
	b = w.word(b, 1)
	b = w.word(b, 0)
	return b
}

// sections emits a null section, .shstrtab, and one section per requested
// name, none of them allocated. shstrOff is the file offset where the
// .shstrtab payload will land.
func (w *writer) sections(names []string, shstrOff uint64) (shstrtab, shdrs []byte, count int) {
	shstrtab = []byte{0}
	intern := func(s string) uint32 {
		off := uint32(len(shstrtab))
		shstrtab = append(shstrtab, s...)
		shstrtab = append(shstrtab, 0)
		return off
	}

	shstrtabName := intern(".shstrtab")
	type sec struct {
		name uint32
		typ  uint32
	}
	secs := []sec{}
	for _, n := range names {
		if n == "symtab" {
			secs = append(secs, sec{intern(".symtab"), shtSymtab})
		} else {
			secs = append(secs, sec{intern(n), shtProgbits})
		}
	}

	shdrs = w.shdr(0, 0, 0, 0, 0) // SHN_UNDEF
	shdrs = append(shdrs, w.shdr(shstrtabName, shtStrtab, 0, shstrOff, uint64(len(shstrtab)))...)
	for _, s := range secs {
		shdrs = append(shdrs, w.shdr(s.name, s.typ, 0, 0, 0)...)
	}
	return shstrtab, shdrs, 2 + len(secs)
}

func buildNotes(order binary.AppendByteOrder, ids [][]byte) []byte {
	var b []byte
	for _, id := range ids {
		b = order.AppendUint32(b, 4) // namesz: "GNU\0"
		b = order.AppendUint32(b, uint32(len(id)))
		b = order.AppendUint32(b, 3) // NT_GNU_BUILD_ID
		b = append(b, 'G', 'N', 'U', 0)
		b = append(b, id...)
		for pad := (4 - len(id)%4) % 4; pad > 0; pad-- {
			b = append(b, 0)
		}
	}
	return b
}
