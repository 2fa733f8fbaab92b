package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kdewar/bfjit/internal/parser"
)

type scenario struct {
	name   string
	source string
	stdin  string
	want   string
}

var scenarios = []scenario{
	{
		name:   "prints_A",
		source: "++++++++[>++++++++<-]>+.",
		want:   "A",
	},
	{
		name:   "prints_0x19",
		source: "+++++[>+++++<-]>.",
		want:   "\x19",
	},
	{
		name:   "echo_one_byte",
		source: ",.",
		stdin:  "Z",
		want:   "Z",
	},
	{
		name:   "echo_two_reads",
		source: ",>,<.>.",
		stdin:  "Hi",
		want:   "Hi",
	},
	{
		name:   "set_to_zero_prints_nothing",
		source: "+[-]",
		want:   "",
	},
	{
		// "[->++++++++<]" is the canonical multiply-add idiom: it folds
		// to a single Add(+1, 8) instruction rather than an actual Loop,
		// so this exercises the peephole-fused path end to end. cell0=4
		// is multiplied into cell1 (4*8=32=' '), then bumped once more
		// to '!' before printing both.
		name:   "multiply_add_benchmark",
		source: "++++[->++++++++<]>.+.",
		want:   " !",
	},
	{
		name:   "rot13_benchmark",
		source: rot13Source(),
		stdin:  "Hello\n",
		want:   "Uryyb\n",
	},
}

// rot13Source builds a Brainfuck program that rot13-transforms exactly
// six input bytes, sized for the "Hello\n" -> "Uryyb\n" fixture above.
// It keeps four work cells per character (the character itself, a
// helper, a match-test scratch, and a pending shift) and chains 52
// equality branches, one per ASCII letter, reusing those same four
// cells for every character read. The branches only record the shift;
// it is added to the character after all 52 have run, so a shifted
// letter is never matched again by a later branch.
func rot13Source() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("+", 6)) // outer counter: 6 characters
	b.WriteString("[>,")
	for k := 'A'; k <= 'Z'; k++ {
		b.WriteString(rot13Branch(int(k)))
	}
	for k := 'a'; k <= 'z'; k++ {
		b.WriteString(rot13Branch(int(k)))
	}
	b.WriteString(">>>[-<<<+>>>]<<<") // C += S, S = 0
	b.WriteString(".<-]")
	return b.String()
}

// rot13Branch emits the code for one equality branch: test whether the
// character cell equals k, and if so, add +13 or -13 to the pending
// shift (rot13's wraparound point is the middle of each 26-letter
// range).
//
// Layout, relative to the character cell C at the current position:
// C, C+1 = helper H, C+2 = match scratch Y, C+3 = pending shift S.
// Every branch starts and ends at C with C unchanged and H and Y both
// back at zero.
func rot13Branch(k int) string {
	base := 'a'
	if k >= 'A' && k <= 'Z' {
		base = 'A'
	}
	idx := k - int(base)
	delta := 13
	if idx >= 13 {
		delta = -13
	}
	var shift string
	if delta < 0 {
		shift = strings.Repeat("-", -delta)
	} else {
		shift = strings.Repeat("+", delta)
	}

	var b strings.Builder
	b.WriteString("[->+>+<<]")            // copy C into H and Y, zero C
	b.WriteString(">[-<+>]<")             // restore C from H
	b.WriteString(">>")                   // move to Y
	b.WriteString(strings.Repeat("-", k)) // Y -= k
	b.WriteString("<+>")                  // H = 1 (assume match)
	b.WriteString("[<->[-]]")             // H = 0 if Y was nonzero; Y = 0
	b.WriteString("<")                    // move to H
	b.WriteString("[->>" + shift + "<<]") // if matched, add delta to S
	b.WriteString("<")                    // back to C
	return b.String()
}

func TestEndToEndScenarios(t *testing.T) {
	for _, tc := range scenarios {
		t.Run(tc.name, func(t *testing.T) {
			program, err := parser.Parse([]byte(tc.source))
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			var out bytes.Buffer
			vm := New(WithInput(strings.NewReader(tc.stdin)), WithOutput(&out))
			if err := vm.Run(program); err != nil {
				t.Fatalf("run error: %v", err)
			}

			if out.String() != tc.want {
				t.Errorf("got %q, want %q", out.String(), tc.want)
			}
		})
	}
}

func TestOutOfBoundsIsFatal(t *testing.T) {
	program, err := parser.Parse([]byte("<"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	vm := New(WithTapeSize(10))
	if err := vm.Run(program); err == nil {
		t.Error("expected an out-of-bounds RuntimeError")
	}
}

func TestEOFLeavesCellUnchanged(t *testing.T) {
	program, err := parser.Parse([]byte("+++,."))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var out bytes.Buffer
	vm := New(WithInput(strings.NewReader("")), WithOutput(&out), WithEOFBehavior(EOFNoChange))
	if err := vm.Run(program); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if out.String() != "\x03" {
		t.Errorf("got %q, want cell unchanged at 3", out.String())
	}
}

