// Package elf extracts the metadata this tool needs from ELF binaries:
// machine, build ID, interpreter, SONAME, DT_NEEDED names, and load-segment
// size accounting. It parses headers directly rather than going through
// debug/elf so that malformed inputs surface as diagnostics with context
// instead of panics, and so that only the consumed fields are decoded.
package elf

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"sync"

	"go.trai.ch/fin/internal/core/domain"
	"go.trai.ch/fin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ElfReader = (*Reader)(nil)

// Reader implements ports.ElfReader with a path-keyed cache. Parsed metadata
// is immutable once computed, so callers may re-associate it with a renamed
// path without re-parsing when the underlying bytes are unchanged.
type Reader struct {
	mu    sync.Mutex
	cache map[string]*domain.ElfInfo
}

// NewReader creates a new Reader with an empty cache.
func NewReader() *Reader {
	return &Reader{cache: make(map[string]*domain.ElfInfo)}
}

// ReadInfo parses the ELF metadata of the file at path, consulting the cache
// first. domain.ErrNotELF is returned for non-ELF files and is not cached, so
// overwritten outputs get re-checked.
func (r *Reader) ReadInfo(path string) (*domain.ElfInfo, error) {
	r.mu.Lock()
	info, ok := r.cache[path]
	r.mu.Unlock()
	if ok {
		return info, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from a manifest the caller owns
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read binary"), "path", path)
	}

	info, err = Parse(data)
	if err != nil {
		if errors.Is(err, domain.ErrNotELF) {
			return nil, err
		}
		return nil, zerr.With(err, "path", path)
	}

	r.mu.Lock()
	r.cache[path] = info
	r.mu.Unlock()
	return info, nil
}

// ELF identification indexes and values.
const (
	eiClass  = 4
	eiData   = 5
	eiNident = 16

	elfClass32 = 1
	elfClass64 = 2

	elfData2LSB = 1
	elfData2MSB = 2
)

// Program header types.
const (
	ptLoad     = 1
	ptDynamic  = 2
	ptInterp   = 3
	ptNote     = 4
	ptGNURelro = 0x6474e552
)

// Program header flags.
const (
	pfX = 1
	pfW = 2
	pfR = 4
)

// Dynamic-section tags.
const (
	dtNull     = 0
	dtNeeded   = 1
	dtPltRelSz = 2
	dtStrtab   = 5
	dtRela     = 7
	dtRelaSz   = 8
	dtSoname   = 14
	dtRel      = 17
	dtRelSz    = 18
	dtPltRel   = 20
	dtRelrSz   = 35
)

// Section constants for the stripped check.
const (
	shtSymtab = 2
	shfAlloc  = 2
)

const ntGNUBuildID = 3

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// machineNames maps e_machine values to the CPU names the build uses.
var machineNames = map[uint16]string{
	3:   "x86",
	40:  "arm",
	62:  "x64",
	183: "arm64",
	243: "riscv64",
}

// Parse reads the metadata of one ELF image held in memory. It returns
// domain.ErrNotELF when the magic is absent, domain.ErrUnsupportedELF when
// the class or byte order is not one of the four supported layouts, and
// domain.ErrMalformedELF when headers or offsets are inconsistent.
func Parse(data []byte) (*domain.ElfInfo, error) {
	if len(data) < eiNident || !bytes.Equal(data[:4], elfMagic) {
		return nil, domain.ErrNotELF
	}

	p := &parser{data: data}
	switch data[eiData] {
	case elfData2LSB:
		p.order = binary.LittleEndian
	case elfData2MSB:
		p.order = binary.BigEndian
	default:
		return nil, zerr.With(domain.ErrUnsupportedELF, "ei_data", int(data[eiData]))
	}
	switch data[eiClass] {
	case elfClass32:
	case elfClass64:
		p.is64 = true
	default:
		return nil, zerr.With(domain.ErrUnsupportedELF, "ei_class", int(data[eiClass]))
	}

	hdr, err := p.header()
	if err != nil {
		return nil, err
	}
	phdrs, err := p.programHeaders(hdr)
	if err != nil {
		return nil, err
	}

	info := &domain.ElfInfo{Machine: hdr.machine, CPU: machineNames[hdr.machine]}
	info.Sizes.File = uint64(len(data))

	var loads []phdr
	var dyn *phdr
	for i := range phdrs {
		ph := phdrs[i]
		switch ph.typ {
		case ptLoad:
			loads = append(loads, ph)
			p.accountLoad(ph, &info.Sizes)
		case ptInterp:
			raw, err := p.bytesAt(ph.offset, ph.filesz)
			if err != nil {
				return nil, err
			}
			info.Interp = strings.TrimRight(string(raw), "\x00")
		case ptDynamic:
			dyn = &phdrs[i]
		case ptNote:
			if err := p.scanNotes(ph, info); err != nil {
				return nil, err
			}
		case ptGNURelro:
			info.Sizes.Relro += ph.memsz
		}
	}

	if dyn != nil {
		if err := p.readDynamic(*dyn, loads, info); err != nil {
			return nil, err
		}
	}

	stripped, err := p.stripped(hdr)
	if err != nil {
		return nil, err
	}
	info.Stripped = stripped

	return info, nil
}

// parser decodes one in-memory ELF image with its native byte order.
type parser struct {
	data  []byte
	order binary.ByteOrder
	is64  bool
}

type ehdr struct {
	machine   uint16
	phoff     uint64
	shoff     uint64
	phentsize uint16
	phnum     uint16
	shentsize uint16
	shnum     uint16
	shstrndx  uint16
}

type phdr struct {
	typ    uint32
	flags  uint32
	offset uint64
	vaddr  uint64
	filesz uint64
	memsz  uint64
}

type shdr struct {
	name  uint32
	typ   uint32
	flags uint64
}

func (p *parser) bytesAt(off, n uint64) ([]byte, error) {
	end := off + n
	if end < off || end > uint64(len(p.data)) {
		return nil, zerr.With(zerr.With(domain.ErrMalformedELF, "offset", off), "length", n)
	}
	return p.data[off:end], nil
}

func (p *parser) u16(off uint64) (uint16, error) {
	b, err := p.bytesAt(off, 2)
	if err != nil {
		return 0, err
	}
	return p.order.Uint16(b), nil
}

func (p *parser) u32(off uint64) (uint32, error) {
	b, err := p.bytesAt(off, 4)
	if err != nil {
		return 0, err
	}
	return p.order.Uint32(b), nil
}

// word reads one natural-width word: 4 bytes for ELFCLASS32, 8 for ELFCLASS64.
func (p *parser) word(off uint64) (uint64, error) {
	if p.is64 {
		b, err := p.bytesAt(off, 8)
		if err != nil {
			return 0, err
		}
		return p.order.Uint64(b), nil
	}
	v, err := p.u32(off)
	return uint64(v), err
}

func (p *parser) header() (ehdr, error) {
	var h ehdr
	var err error
	read16 := func(off uint64) uint16 {
		var v uint16
		if err == nil {
			v, err = p.u16(off)
		}
		return v
	}

	h.machine = read16(18)
	if p.is64 {
		if err == nil {
			h.phoff, err = p.word(32)
		}
		if err == nil {
			h.shoff, err = p.word(40)
		}
		h.phentsize = read16(54)
		h.phnum = read16(56)
		h.shentsize = read16(58)
		h.shnum = read16(60)
		h.shstrndx = read16(62)
	} else {
		if err == nil {
			h.phoff, err = p.word(28)
		}
		if err == nil {
			h.shoff, err = p.word(32)
		}
		h.phentsize = read16(42)
		h.phnum = read16(44)
		h.shentsize = read16(46)
		h.shnum = read16(48)
		h.shstrndx = read16(50)
	}
	if err != nil {
		return ehdr{}, err
	}

	if h.phnum > 0 && int(h.phentsize) != p.phdrSize() {
		return ehdr{}, zerr.With(zerr.With(zerr.With(domain.ErrMalformedELF,
			"reason", "unexpected e_phentsize"),
			"e_phentsize", int(h.phentsize)),
			"want", p.phdrSize())
	}
	return h, nil
}

func (p *parser) phdrSize() int {
	if p.is64 {
		return 56
	}
	return 32
}

func (p *parser) shdrSize() int {
	if p.is64 {
		return 64
	}
	return 40
}

func (p *parser) dynSize() uint64 {
	if p.is64 {
		return 16
	}
	return 8
}

func (p *parser) programHeaders(h ehdr) ([]phdr, error) {
	phdrs := make([]phdr, 0, h.phnum)
	for i := uint64(0); i < uint64(h.phnum); i++ {
		off := h.phoff + i*uint64(h.phentsize)
		ph, err := p.programHeader(off)
		if err != nil {
			return nil, err
		}
		phdrs = append(phdrs, ph)
	}
	return phdrs, nil
}

func (p *parser) programHeader(off uint64) (phdr, error) {
	var ph phdr
	var err error
	if ph.typ, err = p.u32(off); err != nil {
		return ph, err
	}
	if p.is64 {
		if ph.flags, err = p.u32(off + 4); err != nil {
			return ph, err
		}
		if ph.offset, err = p.word(off + 8); err != nil {
			return ph, err
		}
		if ph.vaddr, err = p.word(off + 16); err != nil {
			return ph, err
		}
		if ph.filesz, err = p.word(off + 32); err != nil {
			return ph, err
		}
		ph.memsz, err = p.word(off + 40)
		return ph, err
	}
	if ph.offset, err = p.word(off + 4); err != nil {
		return ph, err
	}
	if ph.vaddr, err = p.word(off + 8); err != nil {
		return ph, err
	}
	if ph.filesz, err = p.word(off + 16); err != nil {
		return ph, err
	}
	if ph.memsz, err = p.word(off + 20); err != nil {
		return ph, err
	}
	ph.flags, err = p.u32(off + 24)
	return ph, err
}

// accountLoad classifies one PT_LOAD segment by its access flags.
func (p *parser) accountLoad(ph phdr, sizes *domain.ElfSizes) {
	sizes.Memory += ph.memsz
	switch {
	case ph.flags&pfW != 0:
		sizes.Data += ph.filesz
		if ph.memsz > ph.filesz {
			sizes.Bss += ph.memsz - ph.filesz
		}
	case ph.flags&pfX != 0:
		sizes.Code += ph.filesz
	default:
		sizes.Rodata += ph.filesz
	}
}

// scanNotes walks one PT_NOTE segment looking for GNU build-ID notes. When a
// file carries more than one, the last one scanned wins; that matches the
// historical behavior of the build and must not change.
func (p *parser) scanNotes(ph phdr, info *domain.ElfInfo) error {
	seg, err := p.bytesAt(ph.offset, ph.filesz)
	if err != nil {
		return err
	}
	align4 := func(n uint32) uint64 { return (uint64(n) + 3) &^ 3 }

	off := uint64(0)
	for off+12 <= uint64(len(seg)) {
		namesz := p.order.Uint32(seg[off : off+4])
		descsz := p.order.Uint32(seg[off+4 : off+8])
		typ := p.order.Uint32(seg[off+8 : off+12])
		off += 12

		nameEnd := off + align4(namesz)
		descEnd := nameEnd + align4(descsz)
		if descEnd < off || descEnd > uint64(len(seg)) {
			return zerr.With(domain.ErrMalformedELF, "reason", "truncated note segment")
		}
		name := seg[off : off+uint64(namesz)]
		desc := seg[nameEnd : nameEnd+uint64(descsz)]
		off = descEnd

		if typ == ntGNUBuildID && bytes.Equal(name, []byte("GNU\x00")) {
			info.BuildID = hex.EncodeToString(desc)
		}
	}
	return nil
}

// readDynamic walks the PT_DYNAMIC (tag, value) array and resolves the string
// references through the string table named by DT_STRTAB.
func (p *parser) readDynamic(dyn phdr, loads []phdr, info *domain.ElfInfo) error {
	var neededOffsets []uint64
	sonameOffset := uint64(0)
	hasSoname := false
	strtabAddr := uint64(0)
	hasStrtab := false
	pltRelSz, pltRel := uint64(0), uint64(0)

	if _, err := p.bytesAt(dyn.offset, dyn.filesz); err != nil {
		return err
	}

	step := p.dynSize()
	done := false
	for off := dyn.offset; !done && off+step <= dyn.offset+dyn.filesz; off += step {
		tag, err := p.word(off)
		if err != nil {
			return err
		}
		val, err := p.word(off + step/2)
		if err != nil {
			return err
		}

		switch tag {
		case dtNull:
			done = true
		case dtNeeded:
			neededOffsets = append(neededOffsets, val)
		case dtSoname:
			sonameOffset, hasSoname = val, true
		case dtStrtab:
			strtabAddr, hasStrtab = val, true
		case dtRelSz, dtRelaSz, dtRelrSz:
			info.Sizes.Rel += val
		case dtPltRelSz:
			pltRelSz = val
		case dtPltRel:
			pltRel = val
		}
	}

	// DT_PLTRELSZ counts toward the relocation payload only when DT_PLTREL
	// says the PLT relocations are a separate table.
	if pltRel == dtRel || pltRel == dtRela {
		info.Sizes.Rel += pltRelSz
	}

	if len(neededOffsets) == 0 && !hasSoname {
		return nil
	}
	if !hasStrtab {
		return zerr.With(domain.ErrMalformedELF, "reason", "dynamic section without DT_STRTAB")
	}
	strtabOff, err := vaddrToOffset(loads, strtabAddr)
	if err != nil {
		return err
	}

	for _, no := range neededOffsets {
		s, err := p.cstring(strtabOff + no)
		if err != nil {
			return err
		}
		info.Needed = append(info.Needed, s)
	}
	if hasSoname {
		s, err := p.cstring(strtabOff + sonameOffset)
		if err != nil {
			return err
		}
		info.Soname = s
	}
	return nil
}

// vaddrToOffset translates a virtual address to a file offset by finding the
// PT_LOAD segment whose address range contains it. A dynamic string table
// that no load segment maps is corrupt input.
func vaddrToOffset(loads []phdr, addr uint64) (uint64, error) {
	for _, ph := range loads {
		if addr >= ph.vaddr && addr < ph.vaddr+ph.filesz {
			return addr - ph.vaddr + ph.offset, nil
		}
	}
	return 0, zerr.With(zerr.With(domain.ErrMalformedELF,
		"reason", "virtual address not mapped by any PT_LOAD segment"),
		"vaddr", addr)
}

func (p *parser) cstring(off uint64) (string, error) {
	if off > uint64(len(p.data)) {
		return "", zerr.With(zerr.With(domain.ErrMalformedELF, "reason", "string offset out of range"), "offset", off)
	}
	rest := p.data[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", zerr.With(zerr.With(domain.ErrMalformedELF, "reason", "unterminated string"), "offset", off)
	}
	return string(rest[:end]), nil
}

// stripped reports whether every section is either allocated at runtime or is
// neither a symbol table nor a .debug_* section. A file without a section
// header table counts as stripped.
func (p *parser) stripped(h ehdr) (bool, error) {
	if h.shoff == 0 || h.shnum == 0 {
		return true, nil
	}
	if int(h.shentsize) != p.shdrSize() {
		return false, zerr.With(zerr.With(zerr.With(domain.ErrMalformedELF,
			"reason", "unexpected e_shentsize"),
			"e_shentsize", int(h.shentsize)),
			"want", p.shdrSize())
	}

	shdrs := make([]shdr, 0, h.shnum)
	for i := uint64(0); i < uint64(h.shnum); i++ {
		sh, err := p.sectionHeader(h.shoff + i*uint64(h.shentsize))
		if err != nil {
			return false, err
		}
		shdrs = append(shdrs, sh)
	}

	if int(h.shstrndx) >= len(shdrs) {
		return false, zerr.With(domain.ErrMalformedELF, "reason", "e_shstrndx out of range")
	}
	strOff, err := p.sectionOffset(h.shoff + uint64(h.shstrndx)*uint64(h.shentsize))
	if err != nil {
		return false, err
	}

	for _, sh := range shdrs {
		if sh.flags&shfAlloc != 0 {
			continue
		}
		if sh.typ == shtSymtab {
			return false, nil
		}
		name, err := p.cstring(strOff + uint64(sh.name))
		if err != nil {
			return false, err
		}
		if strings.HasPrefix(name, ".debug_") {
			return false, nil
		}
	}
	return true, nil
}

func (p *parser) sectionHeader(off uint64) (shdr, error) {
	var sh shdr
	var err error
	if sh.name, err = p.u32(off); err != nil {
		return sh, err
	}
	if sh.typ, err = p.u32(off + 4); err != nil {
		return sh, err
	}
	sh.flags, err = p.word(off + 8)
	return sh, err
}

// sectionOffset reads just the sh_offset field of one section header.
func (p *parser) sectionOffset(off uint64) (uint64, error) {
	if p.is64 {
		return p.word(off + 24)
	}
	return p.word(off + 16)
}
