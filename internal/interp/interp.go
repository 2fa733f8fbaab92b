// Package interp is a tree-walking reference interpreter over the
// recursive IR. It exists to serve as the semantic oracle that
// internal/codegen's machine code is checked against: the interpreter
// recurses into Loop.Body the same way the parser built it, rather
// than stepping a flattened program counter.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/kdewar/bfjit/internal/ir"
)

// RuntimeError reports an out-of-range tape access or a failed read
// from the input or write to the output.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

// EOFBehavior selects what a Read does to the current cell once the
// input reader reports EOF.
type EOFBehavior int

const (
	EOFNoChange EOFBehavior = iota // leave the cell unchanged (default — matches the JIT backend's raw syscall behavior)
	EOFZero                        // set cell to 0
	EOFMinusOne                    // set cell to 255
)

// Interp executes a recursive IR program against a zeroed tape.
type Interp struct {
	tapeSize    int
	input       io.Reader
	output      io.Writer
	eofBehavior EOFBehavior
	tape        []byte
	dp          int
	ioBuf       [1]byte
}

// Option configures an Interp.
type Option func(*Interp)

// WithTapeSize sets the tape length (default 30000, Brainfuck's
// traditional size).
func WithTapeSize(size int) Option {
	return func(v *Interp) { v.tapeSize = size }
}

// WithInput sets the input reader (default os.Stdin).
func WithInput(r io.Reader) Option {
	return func(v *Interp) { v.input = r }
}

// WithOutput sets the output writer (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(v *Interp) { v.output = w }
}

// WithEOFBehavior sets the EOF handling behavior (default EOFNoChange).
func WithEOFBehavior(b EOFBehavior) Option {
	return func(v *Interp) { v.eofBehavior = b }
}

// New returns an Interp configured by opts.
func New(opts ...Option) *Interp {
	v := &Interp{
		tapeSize: 30000,
		input:    os.Stdin,
		output:   os.Stdout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes program against a freshly zeroed tape, starting the
// data pointer at cell 0 — mirroring the JIT path's "invoked against
// a zeroed tape" contract, for oracle parity.
func (v *Interp) Run(program []ir.Instruction) error {
	v.tape = make([]byte, v.tapeSize)
	v.dp = 0
	return v.exec(program)
}

func (v *Interp) exec(program []ir.Instruction) error {
	for _, inst := range program {
		if err := v.execOne(inst); err != nil {
			return err
		}
	}
	return nil
}

func (v *Interp) execOne(inst ir.Instruction) error {
	switch inst.Kind {
	case ir.Increment:
		v.tape[v.dp] += uint8(inst.Count)
	case ir.Decrement:
		v.tape[v.dp] -= uint8(inst.Count)
	case ir.Forward:
		return v.move(int(inst.Count))
	case ir.Back:
		return v.move(-int(inst.Count))
	case ir.SetToZero:
		v.tape[v.dp] = 0
	case ir.Print:
		return v.doPrint()
	case ir.Read:
		return v.doRead()
	case ir.Add:
		return v.doMulAdd(inst.Offset, uint8(inst.Count), 1)
	case ir.Sub:
		return v.doMulAdd(inst.Offset, uint8(inst.Count), -1)
	case ir.Loop:
		for v.tape[v.dp] != 0 {
			if err := v.exec(inst.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Interp) move(delta int) error {
	dp := v.dp + delta
	if dp < 0 || dp >= v.tapeSize {
		return &RuntimeError{Msg: fmt.Sprintf("data pointer out of bounds: %d (valid range 0-%d)", dp, v.tapeSize-1)}
	}
	v.dp = dp
	return nil
}

func (v *Interp) doPrint() error {
	v.ioBuf[0] = v.tape[v.dp]
	_, err := v.output.Write(v.ioBuf[:])
	if err != nil {
		return &RuntimeError{Msg: fmt.Sprintf("output error: %v", err)}
	}
	return nil
}

func (v *Interp) doRead() error {
	n, err := v.input.Read(v.ioBuf[:])
	if err == io.EOF || n == 0 {
		switch v.eofBehavior {
		case EOFZero:
			v.tape[v.dp] = 0
		case EOFMinusOne:
			v.tape[v.dp] = 255
		case EOFNoChange:
		}
		return nil
	}
	if err != nil {
		return &RuntimeError{Msg: fmt.Sprintf("input error: %v", err)}
	}
	v.tape[v.dp] = v.ioBuf[0]
	return nil
}

// doMulAdd is the shared oracle for Add(offset, mul) and Sub(offset,
// mul): read the current cell, zero it, and add/subtract mul times
// its former value to/from the cell at offset — matching exactly what
// internal/codegen's emitMultiply lowers to machine code.
func (v *Interp) doMulAdd(offset int32, mul uint8, sign int) error {
	target := v.dp + int(offset)
	if target < 0 || target >= v.tapeSize {
		return &RuntimeError{Msg: fmt.Sprintf("data pointer out of bounds: %d (valid range 0-%d)", target, v.tapeSize-1)}
	}
	val := v.tape[v.dp]
	v.tape[v.dp] = 0
	if sign > 0 {
		v.tape[target] += val * mul
	} else {
		v.tape[target] -= val * mul
	}
	return nil
}
