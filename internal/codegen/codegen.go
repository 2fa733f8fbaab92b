// Package codegen recursively lowers an IR program into x86-64
// machine code. The generated function takes a
// single argument, the tape base pointer, in RDI — the System V
// first-integer-argument register — and treats RDI as the live data
// pointer throughout, mutating it in place for Forward/Back.
package codegen

import (
	"fmt"
	"sync/atomic"

	"github.com/kdewar/bfjit/internal/asm"
	"github.com/kdewar/bfjit/internal/ir"
)

// Linux x86-64 syscall numbers and fds used by Print/Read's inlined
// syscalls.
const (
	sysRead  = 0
	sysWrite = 1
	fdStdin  = 0
	fdStdout = 1
)

// labelCounter mints process-wide monotone label names. It is atomic
// so a future parallel compiler could share it safely, though nothing
// in this compiler is actually concurrent.
var labelCounter uint64

func newLabel() string {
	return fmt.Sprintf("L%d", atomic.AddUint64(&labelCounter, 1))
}

// Generate lowers an IR program into a finished machine code buffer
// ending in a ret. The caller is expected to invoke it as a function
// with the tape base pointer already in RDI (internal/jitexec does
// exactly this).
func Generate(program []ir.Instruction) []byte {
	a := asm.New()
	emit(a, program)
	a.Ret()
	return a.Finish()
}

// GenerateStandalone lowers program into a freestanding entry point
// suitable for internal/elf: it loads tapeBase into RDI itself (there
// is no caller to do it), then exits cleanly via the exit syscall
// instead of returning.
func GenerateStandalone(program []ir.Instruction, tapeBase uint32) []byte {
	a := asm.New()
	a.MovRegImm32(asm.RDI, int32(tapeBase))
	emit(a, program)
	a.MovRegImm32(asm.RAX, 60) // exit
	a.MovRegImm32(asm.RDI, 0)
	a.Syscall()
	return a.Finish()
}

func emit(a *asm.Assembler, program []ir.Instruction) {
	for _, inst := range program {
		emitOne(a, inst)
	}
}

func emitOne(a *asm.Assembler, inst ir.Instruction) {
	switch inst.Kind {
	case ir.Increment:
		a.AddByteImmMem(asm.RDI, uint8(inst.Count))
	case ir.Decrement:
		a.SubByteImmMem(asm.RDI, uint8(inst.Count))
	case ir.Forward:
		a.AddRegImm32(asm.RDI, int32(inst.Count))
	case ir.Back:
		a.SubRegImm32(asm.RDI, int32(inst.Count))
	case ir.SetToZero:
		a.MovByteZeroMem(asm.RDI)
	case ir.Print:
		emitIO(a, sysWrite, fdStdout)
	case ir.Read:
		emitIO(a, sysRead, fdStdin)
	case ir.Add:
		emitMultiply(a, inst, a.AddMemDispAL)
	case ir.Sub:
		emitMultiply(a, inst, a.SubMemDispAL)
	case ir.Loop:
		emitLoop(a, inst.Body)
	}
}

// emitIO lowers Print/Read: the tape pointer is saved across the
// syscall (which clobbers RDI with the fd argument) and restored
// afterward, since it doubles as the 1-byte I/O buffer address.
func emitIO(a *asm.Assembler, syscallNo, fd int32) {
	a.PushReg(asm.RDI)
	a.MovRegImm32(asm.RAX, syscallNo)
	a.MovRegReg(asm.RSI, asm.RDI)
	a.MovRegImm32(asm.RDI, fd)
	a.MovRegImm32(asm.RDX, 1)
	a.Syscall()
	a.PopReg(asm.RDI)
}

// emitMultiply lowers Add/Sub: load the current cell into AL, zero
// the cell in place, optionally scale by the multiplier, then write
// AL to the target cell at whatever displacement fits.
func emitMultiply(a *asm.Assembler, inst ir.Instruction, writeTarget func(asm.Reg, int32)) {
	a.MovALFromMem(asm.RDI)
	a.SubMemAL(asm.RDI)
	if inst.Count > 1 {
		a.MovDLImm8(uint8(inst.Count))
		a.MulDL()
	}
	writeTarget(asm.RDI, inst.Offset)
}

// emitLoop lowers Loop(body): a pre-test skips zero-iteration loops
// entirely, then the do-while spine runs body and branches back while
// the cell is nonzero.
func emitLoop(a *asm.Assembler, body []ir.Instruction) {
	head := newLabel()
	done := newLabel()

	testCell(a)
	a.Jz(done)

	a.Label(head)
	emit(a, body)
	testCell(a)
	a.Jnz(head)

	a.Label(done)
}

// testCell loads the current cell into R9, masks it to a byte, and
// sets flags from testing it against itself — the pre-/post-test
// shared by a Loop's head and tail.
func testCell(a *asm.Assembler) {
	a.MovQwordFromMem(asm.R9, asm.RDI)
	a.AndRegImm32(asm.R9, 0xff)
	a.TestRegReg(asm.R9)
}
