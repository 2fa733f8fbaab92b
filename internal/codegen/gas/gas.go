// Package gas emits GAS (AT&T syntax) x86-64 assembly for the
// recursive IR, exposed as the "bfjit asm" subcommand. It mirrors the
// lowering templates of internal/codegen exactly, so the two backends
// always agree on what each IR node means, differing only in whether
// the result is bytes or text.
package gas

import (
	"fmt"
	"strings"

	"github.com/kdewar/bfjit/internal/ir"
)

// TapeSize is the BSS reservation for the tape in the assembled
// program, matching the runtime default the JIT backend allocates.
const TapeSize = 10 * 1024 * 1024

// Generator produces GAS assembly from an IR program.
type Generator struct {
	program []ir.Instruction
	out     strings.Builder
	labels  int
}

// NewGenerator returns a Generator for program.
func NewGenerator(program []ir.Instruction) *Generator {
	return &Generator{program: program}
}

// Generate returns the complete assembly text.
func (g *Generator) Generate() string {
	g.emitHeader()
	g.emitPrologue()
	g.emitProgram(g.program)
	g.emitEpilogue()
	return g.out.String()
}

func (g *Generator) nextLabel() string {
	g.labels++
	return fmt.Sprintf("L%d", g.labels)
}

func (g *Generator) emitHeader() {
	fmt.Fprintf(&g.out, ".section .bss\n")
	fmt.Fprintf(&g.out, "    .lcomm tape, %d\n", TapeSize)
	fmt.Fprintf(&g.out, "\n.section .text\n")
	fmt.Fprintf(&g.out, ".globl _start\n")
}

func (g *Generator) emitPrologue() {
	fmt.Fprintf(&g.out, "_start:\n")
	fmt.Fprintf(&g.out, "    movq $tape, %%rdi\n")
}

func (g *Generator) emitEpilogue() {
	fmt.Fprintf(&g.out, "    movq $60, %%rax\n")
	fmt.Fprintf(&g.out, "    xorq %%rdi, %%rdi\n")
	fmt.Fprintf(&g.out, "    syscall\n")
}

func (g *Generator) emitProgram(program []ir.Instruction) {
	for _, inst := range program {
		g.emitOne(inst)
	}
}

func (g *Generator) emitOne(inst ir.Instruction) {
	switch inst.Kind {
	case ir.Increment:
		fmt.Fprintf(&g.out, "    addb $%d, (%%rdi)\n", inst.Count)
	case ir.Decrement:
		fmt.Fprintf(&g.out, "    subb $%d, (%%rdi)\n", inst.Count)
	case ir.Forward:
		fmt.Fprintf(&g.out, "    addq $%d, %%rdi\n", inst.Count)
	case ir.Back:
		fmt.Fprintf(&g.out, "    subq $%d, %%rdi\n", inst.Count)
	case ir.SetToZero:
		fmt.Fprintf(&g.out, "    movb $0, (%%rdi)\n")
	case ir.Print:
		g.emitIO(1, 1)
	case ir.Read:
		g.emitIO(0, 0)
	case ir.Add:
		g.emitMultiply("add", inst)
	case ir.Sub:
		g.emitMultiply("sub", inst)
	case ir.Loop:
		g.emitLoop(inst.Body)
	}
}

func (g *Generator) emitIO(syscallNo, fd int) {
	fmt.Fprintf(&g.out, "    pushq %%rdi\n")
	fmt.Fprintf(&g.out, "    movq $%d, %%rax\n", syscallNo)
	fmt.Fprintf(&g.out, "    movq %%rdi, %%rsi\n")
	fmt.Fprintf(&g.out, "    movq $%d, %%rdi\n", fd)
	fmt.Fprintf(&g.out, "    movq $1, %%rdx\n")
	fmt.Fprintf(&g.out, "    syscall\n")
	fmt.Fprintf(&g.out, "    popq %%rdi\n")
}

func (g *Generator) emitMultiply(op string, inst ir.Instruction) {
	fmt.Fprintf(&g.out, "    movb (%%rdi), %%al\n")
	fmt.Fprintf(&g.out, "    subb %%al, (%%rdi)\n")
	if inst.Count > 1 {
		fmt.Fprintf(&g.out, "    movb $%d, %%dl\n", inst.Count)
		fmt.Fprintf(&g.out, "    mulb %%dl\n")
	}
	fmt.Fprintf(&g.out, "    %sb %%al, %d(%%rdi)\n", op, inst.Offset)
}

func (g *Generator) emitLoop(body []ir.Instruction) {
	head := g.nextLabel()
	done := g.nextLabel()

	g.emitTest()
	fmt.Fprintf(&g.out, "    jz %s\n", done)
	fmt.Fprintf(&g.out, "%s:\n", head)
	g.emitProgram(body)
	g.emitTest()
	fmt.Fprintf(&g.out, "    jnz %s\n", head)
	fmt.Fprintf(&g.out, "%s:\n", done)
}

func (g *Generator) emitTest() {
	fmt.Fprintf(&g.out, "    movq (%%rdi), %%r9\n")
	fmt.Fprintf(&g.out, "    andq $0xff, %%r9\n")
	fmt.Fprintf(&g.out, "    testq %%r9, %%r9\n")
}
