package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kdewar/bfjit/internal/codegen"
	"github.com/kdewar/bfjit/internal/elf"
	"github.com/kdewar/bfjit/internal/parser"
)

// buildTapeSize is the BSS reservation for a built executable's tape.
const buildTapeSize = 10 * 1024 * 1024

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "output file (default: input file without extension)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit build [-o output] <file>")
		fmt.Fprintln(os.Stderr, "\nProduces a native ELF64 Linux executable directly.")
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
		outFile = strings.TrimSuffix(file, ".bf")
	}

	code := codegen.GenerateStandalone(program, elf.DefaultBSSBase)
	binary := elf.NewBuilder(code, buildTapeSize).Build()

	if err := os.WriteFile(outFile, binary, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("built %s -> %s\n", file, outFile)
}
