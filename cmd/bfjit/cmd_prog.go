package main

import (
	"fmt"
	"os"

	"github.com/kdewar/bfjit/internal/codegen"
	"github.com/kdewar/bfjit/internal/jitexec"
	"github.com/kdewar/bfjit/internal/parser"
)

// defaultTapeSize is the in-memory tape reserved for the JIT path.
// Larger than traditional Brainfuck's 30000 cells since nothing here
// shares address space with a fixed BSS layout the way internal/elf's
// on-disk executables do.
const defaultTapeSize = 10 * 1024 * 1024

func cmdProg(args []string) {
	if len(args) != 1 {
		usage()
	}

	src := readSource(args[0])

	program, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := codegen.Generate(program)

	prog, err := jitexec.Map(code)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer prog.Close()

	tape := make([]byte, defaultTapeSize)
	prog.Run(tape)
}
