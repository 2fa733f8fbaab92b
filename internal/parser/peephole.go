package parser

import "github.com/kdewar/bfjit/internal/ir"

// rewriteLoop applies the peephole rewrites to a
// non-empty loop body, or returns it wrapped as an ordinary Loop
// instruction unchanged.
func rewriteLoop(body []ir.Instruction) ir.Instruction {
	if len(body) == 1 && isDec1(body[0]) {
		return ir.MakeSetToZero()
	}

	if len(body) == 4 {
		if inst, ok := rewriteMultiply(body); ok {
			return inst
		}
	}

	return ir.MakeLoop(body)
}

func isDec1(i ir.Instruction) bool { return i.Kind == ir.Decrement && i.Count == 1 }

// asMove returns the signed cell-pointer movement of a Forward/Back
// instruction (positive for Forward, negative for Back).
func asMove(i ir.Instruction) (int32, bool) {
	switch i.Kind {
	case ir.Forward:
		return int32(i.Count), true
	case ir.Back:
		return -int32(i.Count), true
	}
	return 0, false
}

// rewriteMultiply recognizes the seven enabled 4-instruction
// multiply-add/multiply-sub idioms:
//
//	-  >k  +x  <k   ->  Add(+k, x)
//	>k +x  <k  -    ->  Add(+k, x)
//	<k +x  >k  -    ->  Add(-k, x)
//	-  >k  -x  <k   ->  Sub(+k, x)
//	>k -x  <k  -    ->  Sub(+k, x)
//	-  <k  -x  >k   ->  Sub(-k, x)
//	<k -x  >k  -    ->  Sub(-k, x)
//
// The eighth, symmetric shape (-  <k  +x  >k) is deliberately left
// unmatched, by design: it falls through to an ordinary Loop.
func rewriteMultiply(c []ir.Instruction) (ir.Instruction, bool) {
	if isDec1(c[0]) {
		if k, ok := asMove(c[1]); ok && k > 0 {
			if back, ok := asMove(c[3]); ok && back == -k {
				switch c[2].Kind {
				case ir.Increment:
					return ir.MakeAdd(k, uint8(c[2].Count)), true
				case ir.Decrement:
					return ir.MakeSub(k, uint8(c[2].Count)), true
				}
			}
		}
		if k, ok := asMove(c[1]); ok && k < 0 {
			if fwd, ok := asMove(c[3]); ok && fwd == -k && c[2].Kind == ir.Decrement {
				return ir.MakeSub(k, uint8(c[2].Count)), true
			}
		}
		return ir.Instruction{}, false
	}

	if k, ok := asMove(c[0]); ok {
		if !isDec1(c[3]) {
			return ir.Instruction{}, false
		}
		back, ok := asMove(c[2])
		if !ok || back != -k {
			return ir.Instruction{}, false
		}
		switch {
		case k > 0 && c[1].Kind == ir.Increment:
			return ir.MakeAdd(k, uint8(c[1].Count)), true
		case k > 0 && c[1].Kind == ir.Decrement:
			return ir.MakeSub(k, uint8(c[1].Count)), true
		case k < 0 && c[1].Kind == ir.Increment:
			return ir.MakeAdd(k, uint8(c[1].Count)), true
		case k < 0 && c[1].Kind == ir.Decrement:
			return ir.MakeSub(k, uint8(c[1].Count)), true
		}
	}

	return ir.Instruction{}, false
}
