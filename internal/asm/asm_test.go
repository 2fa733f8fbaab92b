package asm

import (
	"encoding/binary"
	"testing"
)

func TestFitDisplacement(t *testing.T) {
	cases := []struct {
		off  int32
		want DispWidth
	}{
		{0, Disp8},
		{127, Disp8},
		{-128, Disp8},
		{128, Disp16},
		{-129, Disp16},
		{32767, Disp16},
		{32768, Disp32},
		{-32769, Disp32},
		{1 << 20, Disp32},
	}
	for _, c := range cases {
		if got := FitDisplacement(c.off); got != c.want {
			t.Errorf("FitDisplacement(%d) = %v, want %v", c.off, got, c.want)
		}
	}
}

func TestRet(t *testing.T) {
	a := New()
	a.Ret()
	got := a.Finish()
	want := []byte{0xC3}
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestAddByteImmMem(t *testing.T) {
	a := New()
	a.AddByteImmMem(RDI, 5)
	got := a.Finish()
	want := []byte{0x80, 0x07, 0x05} // modrm(mod=0,reg=0,rm=RDI&7=7)
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestMemDispALChoosesDisp8(t *testing.T) {
	a := New()
	a.AddMemDispAL(RDI, 100)
	got := a.Finish()
	want := []byte{0x00, 0x47, 100} // modrm(mod=1,reg=0,rm=7), disp8
	if string(got) != string(want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestMemDispALChoosesDisp32(t *testing.T) {
	a := New()
	a.SubMemDispAL(RDI, 1000)
	got := a.Finish()
	if len(got) != 6 {
		t.Fatalf("got %d bytes, want 6: %x", len(got), got)
	}
	if got[0] != 0x28 || got[1] != 0x87 {
		t.Errorf("got opcode/modrm %x %x, want 28 87", got[0], got[1])
	}
	disp := int32(binary.LittleEndian.Uint32(got[2:6]))
	if disp != 1000 {
		t.Errorf("got disp %d, want 1000", disp)
	}
}

func TestLabelResolutionForwardReference(t *testing.T) {
	a := New()
	a.Jz("done")
	a.Label("done")
	got := a.Finish()

	if len(got) != 6 {
		t.Fatalf("got %d bytes, want 6: %x", len(got), got)
	}
	if got[0] != 0x0F || got[1] != 0x84 {
		t.Errorf("got opcode %x %x, want 0F 84", got[0], got[1])
	}
	rel := int32(binary.LittleEndian.Uint32(got[2:6]))
	if rel != 0 {
		t.Errorf("jump-to-next-instruction should have rel32 == 0, got %d", rel)
	}
}

func TestLabelResolutionBackwardReference(t *testing.T) {
	a := New()
	a.Label("head")
	a.Ret() // 1 byte of padding before the branch back
	a.Jnz("head")
	got := a.Finish()

	rel := int32(binary.LittleEndian.Uint32(got[len(got)-4:]))
	// jnz's rel32 is relative to the byte after the 4-byte immediate:
	// head is at offset 0, the fixup field starts at offset 3 (0F 85 + 4
	// bytes follows at 3), so rel = 0 - (3+4) = -7.
	if rel != -7 {
		t.Errorf("got rel32 %d, want -7", rel)
	}
}

func TestUnresolvedLabelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unresolved label")
		}
	}()
	a := New()
	a.Jz("nowhere")
	a.Finish()
}

func TestExtendedRegisterSetsRexBit(t *testing.T) {
	a := New()
	a.MovQwordFromMem(R9, RDI)
	got := a.Finish()
	// REX.W + R (R9 is reg): 0x48 | 0x04 = 0x4C
	if got[0] != 0x4C {
		t.Errorf("got REX %x, want 4C", got[0])
	}
}
