package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kdewar/bfjit/internal/interp"
	"github.com/kdewar/bfjit/internal/parser"
)

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: bfjit run <file>")
		fmt.Fprintln(os.Stderr, "\nInterprets the program instead of JIT-compiling it.")
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

	vm := interp.New()
	if err := vm.Run(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
