package ir

import "testing"

func TestDumpFlatProgram(t *testing.T) {
	program := []Instruction{
		MakeIncrement(3),
		MakePrint(),
	}
	got := Dump(program)
	want := "Increment 3\nPrint\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpNestedLoop(t *testing.T) {
	program := []Instruction{
		MakeLoop([]Instruction{
			MakeDecrement(1),
		}),
	}
	got := Dump(program)
	want := "Loop\n  Decrement 1\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDumpAddSub(t *testing.T) {
	program := []Instruction{MakeAdd(2, 3), MakeSub(-1, 5)}
	got := Dump(program)
	want := "Add offset=+2 mul=3\nSub offset=-1 mul=5\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestKindStringUnknown(t *testing.T) {
	var k Kind = 99
	if k.String() != "Kind(99)" {
		t.Errorf("got %q, want Kind(99)", k.String())
	}
}

func TestConstructorsSetPayload(t *testing.T) {
	if i := MakeIncrement(7); i.Kind != Increment || i.Count != 7 {
		t.Errorf("MakeIncrement(7) = %+v", i)
	}
	if i := MakeForward(40000); i.Kind != Forward || i.Count != 40000 {
		t.Errorf("MakeForward(40000) = %+v", i)
	}
	if i := MakeAdd(-5, 10); i.Kind != Add || i.Offset != -5 || i.Count != 10 {
		t.Errorf("MakeAdd(-5, 10) = %+v", i)
	}
	if i := MakeSetToZero(); i.Kind != SetToZero {
		t.Errorf("MakeSetToZero() = %+v", i)
	}
}
