package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdewar/bfjit/internal/codegen/gas"
	"github.com/kdewar/bfjit/internal/parser"
)

func cmdAsm(args []string) {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: input file with .s extension)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit asm [-o output] <file>")
		fs.PrintDefaults()
		os.Exit(1)
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
	}

	file := filepath.Clean(fs.Arg(0))
	src := readSource(file)

	program, err := parser.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	outFile := *output
	if outFile == "" {
		outFile = strings.TrimSuffix(file, ".bf") + ".s"
	}

	gen := gas.NewGenerator(program)
	asm := gen.Generate()

	if err := os.WriteFile(outFile, []byte(asm), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("generated %s -> %s\n", file, outFile)
}
