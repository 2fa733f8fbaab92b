// Package jitexec maps a finished machine code buffer into executable
// memory and invokes it directly, in process, against a zeroed tape —
// the "ahead-of-time in-memory" half of the pipeline, as opposed
// to internal/elf's on-disk executable path.
package jitexec

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Program is a machine code buffer mapped into executable memory.
// Call Run to invoke it, and Close to release the mapping once done.
type Program struct {
	mem []byte
}

// Map copies code into a fresh anonymous mapping and flips it from
// writable to executable. The two-step protect sequence (W, then X,
// never both at once) keeps the page never simultaneously writable
// and executable.
func Map(code []byte) (*Program, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("jitexec: empty code buffer")
	}

	mem, err := unix.Mmap(-1, 0, len(code), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("jitexec: mmap: %w", err)
	}

	copy(mem, code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("jitexec: mprotect: %w", err)
	}

	return &Program{mem: mem}, nil
}

// Close unmaps the underlying executable pages.
func (p *Program) Close() error {
	if p.mem == nil {
		return nil
	}
	err := unix.Munmap(p.mem)
	p.mem = nil
	return err
}

// bfFunc is the Go-side shape used to call the generated code, which
// reads the tape base pointer from RDI (the System V first argument)
// and returns nothing. Go's internal register ABI on amd64 assigns
// integer arguments to RAX, RBX, RCX, RDI, ... in order, so the tape
// pointer is passed fourth to arrive in RDI; the first three are unused.
type bfFunc func(_, _, _ uintptr, tape uintptr)

// funcval mirrors the runtime's representation of a Go func value: a
// pointer to a small struct whose first word is the actual code
// entry point. A func variable itself holds a pointer to one of these
// structs, so &fn is a **funcval. Pointing a nil func variable at a
// fresh funcval whose codePtr is our mapped buffer's address turns it
// into a trampoline straight into the JIT-compiled bytes — the only way to call a raw address as a Go
// function without cgo.
type funcval struct {
	codePtr uintptr
}

// Run invokes the mapped code with tape as the RDI argument — the
// live Brainfuck data pointer for the whole call.
func (p *Program) Run(tape []byte) {
	if len(tape) == 0 {
		panic("jitexec: empty tape")
	}

	var fn bfFunc
	codeAddr := uintptr(unsafe.Pointer(&p.mem[0]))
	fv := &funcval{codePtr: codeAddr}
	*(**funcval)(unsafe.Pointer(&fn)) = fv

	fn(0, 0, 0, uintptr(unsafe.Pointer(&tape[0])))
	runtime.KeepAlive(tape)
	runtime.KeepAlive(p.mem)
}
