// Package ir defines the intermediate representation the parser builds
// and the code generator consumes: a recursive tree of Brainfuck
// operations with run-length and offset metadata folded in.
//
// The instruction set is closed and preserves loop nesting directly
// (a Loop node owns its body exclusively) rather than flattening
// control flow into jump targets, so the code generator can lower
// each node with a single fixed template and recurse into Loop bodies.
package ir

import "fmt"

// Kind identifies which variant an Instruction holds.
type Kind int

const (
	Increment Kind = iota // tape[p] += Count, 8-bit wrap
	Decrement             // tape[p] -= Count, 8-bit wrap
	Forward               // p += Count
	Back                  // p -= Count
	Print                 // write tape[p] to stdout
	Read                  // read one byte into tape[p]
	SetToZero             // tape[p] = 0
	Add                   // tape[p+Offset] += tape[p] * Count; tape[p] = 0
	Sub                   // tape[p+Offset] -= tape[p] * Count; tape[p] = 0
	Loop                  // Brainfuck [ Body ]
)

var kindNames = [...]string{
	Increment: "Increment",
	Decrement: "Decrement",
	Forward:   "Forward",
	Back:      "Back",
	Print:     "Print",
	Read:      "Read",
	SetToZero: "SetToZero",
	Add:       "Add",
	Sub:       "Sub",
	Loop:      "Loop",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Instruction is one node of the IR tree.
//
// Count holds the run-length for Increment/Decrement/Forward/Back and
// the multiplier for Add/Sub. Offset holds the signed cell offset for
// Add/Sub. Body holds the nested program for Loop; it is nil for every
// other kind. Run-length variants carry a zero Count only when a run
// of `+` or `-` whose length is a multiple of 256 wraps the 8-bit
// count (adding or subtracting zero is then the exact effect), and a
// Loop's Body is never empty — the parser skips `[]` entirely rather
// than emitting an empty loop.
type Instruction struct {
	Kind   Kind
	Count  uint32 // Increment/Decrement: 8-bit count; Forward/Back: 32-bit count; Add/Sub: multiplier [1,255]
	Offset int32  // Add/Sub only, non-zero
	Body   []Instruction
}

func MakeIncrement(n uint8) Instruction { return Instruction{Kind: Increment, Count: uint32(n)} }
func MakeDecrement(n uint8) Instruction { return Instruction{Kind: Decrement, Count: uint32(n)} }
func MakeForward(k uint32) Instruction  { return Instruction{Kind: Forward, Count: k} }
func MakeBack(k uint32) Instruction     { return Instruction{Kind: Back, Count: k} }
func MakePrint() Instruction            { return Instruction{Kind: Print} }
func MakeRead() Instruction             { return Instruction{Kind: Read} }
func MakeSetToZero() Instruction        { return Instruction{Kind: SetToZero} }

func MakeAdd(offset int32, mul uint8) Instruction {
	return Instruction{Kind: Add, Offset: offset, Count: uint32(mul)}
}

func MakeSub(offset int32, mul uint8) Instruction {
	return Instruction{Kind: Sub, Offset: offset, Count: uint32(mul)}
}

func MakeLoop(body []Instruction) Instruction {
	return Instruction{Kind: Loop, Body: body}
}

// Dump renders the IR tree in a flat, indented debug form.
func Dump(program []Instruction) string {
	var buf []byte
	buf = dump(buf, program, 0)
	return string(buf)
}

func dump(buf []byte, program []Instruction, depth int) []byte {
	for _, inst := range program {
		for i := 0; i < depth; i++ {
			buf = append(buf, "  "...)
		}
		switch inst.Kind {
		case Increment, Decrement:
			buf = append(buf, fmt.Sprintf("%s %d\n", inst.Kind, inst.Count)...)
		case Forward, Back:
			buf = append(buf, fmt.Sprintf("%s %d\n", inst.Kind, inst.Count)...)
		case Print, Read, SetToZero:
			buf = append(buf, fmt.Sprintf("%s\n", inst.Kind)...)
		case Add, Sub:
			buf = append(buf, fmt.Sprintf("%s offset=%+d mul=%d\n", inst.Kind, inst.Offset, inst.Count)...)
		case Loop:
			buf = append(buf, "Loop\n"...)
			buf = dump(buf, inst.Body, depth+1)
		default:
			buf = append(buf, fmt.Sprintf("%s\n", inst.Kind)...)
		}
	}
	return buf
}
