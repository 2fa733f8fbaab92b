// Package parser implements the two-mode recursive-descent parser and
// the loop-body peephole optimizer.
package parser

import (
	"fmt"

	"github.com/kdewar/bfjit/internal/ir"
	"github.com/kdewar/bfjit/internal/lexer"
)

// Error is returned when parsing fails: an unmatched ']' or an
// unterminated '[' left open at end of input. Both are fatal,
// unrecoverable program-aborts.
type Error struct {
	Msg string
	Pos lexer.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d col %d (offset %d)", e.Msg, e.Pos.Line, e.Pos.Column, e.Pos.Offset)
}

// Parse tokenizes src and lowers it straight to an optimized IR
// program: recursive-descent parse followed by the peephole rewrite
// of every loop body as it closes.
func Parse(src []byte) ([]ir.Instruction, error) {
	c := &cursor{toks: lexer.Tokenize(src)}
	return parse(c, false)
}

type cursor struct {
	toks []lexer.Token
	pos  int
}

func (c *cursor) peek() lexer.Token { return c.toks[c.pos] }
func (c *cursor) next() lexer.Token { t := c.toks[c.pos]; c.pos++; return t }

// parse implements the two-mode contract: called with
// inLoop=false at the top level, it returns at end-of-input and fails
// if ']' is ever encountered; called with inLoop=true for a loop body,
// it returns upon consuming the matching ']' and fails if the token
// stream ends first.
func parse(c *cursor, inLoop bool) ([]ir.Instruction, error) {
	var program []ir.Instruction

	for {
		tok := c.peek()

		switch tok.Kind {
		case lexer.TokEOF:
			if inLoop {
				return nil, &Error{Msg: "unterminated loop: missing ']'", Pos: tok.Pos}
			}
			return program, nil

		case lexer.TokRBracket:
			if !inLoop {
				return nil, &Error{Msg: "unmatched ']'", Pos: tok.Pos}
			}
			c.next()
			return program, nil

		case lexer.TokLBracket:
			c.next()
			body, err := parse(c, true)
			if err != nil {
				return nil, err
			}
			if len(body) == 0 {
				continue // empty loop bodies are skipped entirely, not emitted
			}
			program = append(program, rewriteLoop(body))

		case lexer.TokPlus:
			program = append(program, ir.MakeIncrement(uint8(foldRun(c, lexer.TokPlus))))

		case lexer.TokMinus:
			program = append(program, ir.MakeDecrement(uint8(foldRun(c, lexer.TokMinus))))

		case lexer.TokRight:
			program = append(program, ir.MakeForward(foldRun(c, lexer.TokRight)))

		case lexer.TokLeft:
			program = append(program, ir.MakeBack(foldRun(c, lexer.TokLeft)))

		case lexer.TokDot:
			c.next()
			program = append(program, ir.MakePrint())

		case lexer.TokComma:
			c.next()
			program = append(program, ir.MakeRead())
		}
	}
}

// foldRun greedily counts and consumes a maximal run of consecutive
// tokens of kind. The count is accumulated in a uint32 and truncated
// by the caller to whatever width the target Instruction field needs;
// overflow of a pathologically long run is left to wrap as the
// unsigned field dictates.
func foldRun(c *cursor, kind lexer.TokenKind) uint32 {
	var n uint32
	for c.peek().Kind == kind {
		c.next()
		n++
	}
	return n
}
