// Command bfjit is an ahead-of-time, in-memory Brainfuck compiler. Run
// with a single path argument, it parses, optimizes, lowers to x86-64,
// maps the result executable, and invokes it directly against a
// zeroed tape — the literal "prog <path>" contract. A handful of
// subcommands expose the individual pipeline stages for inspection.
package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <Directory>\n", os.Args[0])
	os.Exit(1)
}

func readSource(file string) []byte {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return src
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "tokens":
		cmdTokens(os.Args[2:])
	case "ir":
		cmdIR(os.Args[2:])
	case "asm":
		cmdAsm(os.Args[2:])
	case "build":
		cmdBuild(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		cmdProg(os.Args[1:])
	}
}
