// Package elf assembles the one ELF64 shape bfjit's "build" subcommand
// ever needs: a single R+X code segment holding the generated machine
// code, followed by a single R+W BSS segment reserving the tape. It has
// no dependency on the rest of this module.
package elf

import "encoding/binary"

// ELF64 constants
const (
	ELFMAG0       = 0x7f
	ELFMAG1       = 'E'
	ELFMAG2       = 'L'
	ELFMAG3       = 'F'
	ELFCLASS64    = 2
	ELFDATA2LSB   = 1 // little-endian
	EV_CURRENT    = 1
	ELFOSABI_NONE = 0

	ET_EXEC = 2 // executable file

	EM_X86_64 = 62

	PT_LOAD = 1

	PF_X = 0x1 // execute
	PF_W = 0x2 // write
	PF_R = 0x4 // read

	ELF64HeaderSize = 64
	ELF64PhdrSize   = 56
	PageSize        = 0x1000

	// DefaultCodeBase and DefaultBSSBase are the fixed virtual
	// addresses bfjit links every built executable at: low enough to
	// fit in a 32-bit disp32 from the code, far enough apart that a
	// multi-megabyte tape never runs into the code segment.
	DefaultCodeBase = 0x400000
	DefaultBSSBase  = 0x600000

	numSegments = 2 // code (R+X) + tape (R+W, BSS)
)

// Header64 represents the ELF64 file header.
type Header64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

// Phdr64 represents an ELF64 program header.
type Phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	VAddr  uint64
	PAddr  uint64
	FileSz uint64
	MemSz  uint64
	Align  uint64
}

// Builder assembles a bfjit executable: a code segment at
// DefaultCodeBase, entered at its first byte, and a BSS tape segment
// at DefaultBSSBase.
type Builder struct {
	code     []byte
	tapeSize uint64
}

// NewBuilder returns a Builder for code, entered at its first byte,
// with a BSS tape segment tapeSize bytes long.
func NewBuilder(code []byte, tapeSize uint64) *Builder {
	return &Builder{code: code, tapeSize: tapeSize}
}

// Build produces the final ELF binary.
//
//	Layout
//
//	Offset     Content                Size
//	0x0000     ELF header             64 bytes
//	0x0040     Program header 1       56 bytes (PT_LOAD: code, R+X)
//	0x0078     Program header 2       56 bytes (PT_LOAD: tape, R+W, BSS)
//	0x1000     Code segment           variable (page-aligned)
//
// No section headers are emitted — program headers alone are enough
// for the kernel's ELF loader to map and run the binary.
func (b *Builder) Build() []byte {
	headerSize := ELF64HeaderSize + numSegments*ELF64PhdrSize
	codeOffset := alignUp(uint64(headerSize), PageSize)

	out := make([]byte, 0, codeOffset+uint64(len(b.code)))
	out = b.writeHeader(out)

	codePhdr := Phdr64{
		Type:   PT_LOAD,
		Flags:  PF_R | PF_X,
		Off:    codeOffset,
		VAddr:  DefaultCodeBase,
		PAddr:  DefaultCodeBase,
		FileSz: uint64(len(b.code)),
		MemSz:  uint64(len(b.code)),
		Align:  PageSize,
	}
	out = writePhdr(out, &codePhdr)

	tapePhdr := Phdr64{
		Type:  PT_LOAD,
		Flags: PF_R | PF_W,
		VAddr: DefaultBSSBase,
		PAddr: DefaultBSSBase,
		MemSz: b.tapeSize,
		Align: PageSize,
	}
	out = writePhdr(out, &tapePhdr)

	for uint64(len(out)) < codeOffset {
		out = append(out, 0)
	}
	out = append(out, b.code...)

	return out
}

func (b *Builder) writeHeader(out []byte) []byte {
	hdr := Header64{
		Type:      ET_EXEC,
		Machine:   EM_X86_64,
		Version:   EV_CURRENT,
		Entry:     DefaultCodeBase,
		PhOff:     ELF64HeaderSize,
		EhSize:    ELF64HeaderSize,
		PhEntSize: ELF64PhdrSize,
		PhNum:     numSegments,
	}

	hdr.Ident[0] = ELFMAG0
	hdr.Ident[1] = ELFMAG1
	hdr.Ident[2] = ELFMAG2
	hdr.Ident[3] = ELFMAG3
	hdr.Ident[4] = ELFCLASS64
	hdr.Ident[5] = ELFDATA2LSB
	hdr.Ident[6] = EV_CURRENT
	hdr.Ident[7] = ELFOSABI_NONE

	out = append(out, hdr.Ident[:]...)
	out = appendLE16(out, hdr.Type)
	out = appendLE16(out, hdr.Machine)
	out = appendLE32(out, hdr.Version)
	out = appendLE64(out, hdr.Entry)
	out = appendLE64(out, hdr.PhOff)
	out = appendLE64(out, hdr.ShOff)
	out = appendLE32(out, hdr.Flags)
	out = appendLE16(out, hdr.EhSize)
	out = appendLE16(out, hdr.PhEntSize)
	out = appendLE16(out, hdr.PhNum)
	out = appendLE16(out, hdr.ShEntSize)
	out = appendLE16(out, hdr.ShNum)
	out = appendLE16(out, hdr.ShStrNdx)

	return out
}

func writePhdr(out []byte, phdr *Phdr64) []byte {
	out = appendLE32(out, phdr.Type)
	out = appendLE32(out, phdr.Flags)
	out = appendLE64(out, phdr.Off)
	out = appendLE64(out, phdr.VAddr)
	out = appendLE64(out, phdr.PAddr)
	out = appendLE64(out, phdr.FileSz)
	out = appendLE64(out, phdr.MemSz)
	out = appendLE64(out, phdr.Align)
	return out
}

func appendLE16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
