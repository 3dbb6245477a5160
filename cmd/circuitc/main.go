// Command circuitc type-checks the circuit package in a directory.
//
// Usage:
//
//	circuitc [-trace] [-parse] [-dump] [-types] <dir>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/smasher164/circuit/ast"
	"github.com/smasher164/circuit/check"
	"github.com/smasher164/circuit/hir"
	"github.com/smasher164/circuit/names"
	"github.com/smasher164/circuit/parser"
)

var (
	trace     = flag.Bool("trace", false, "print a trace of the parse to stderr")
	parseOnly = flag.Bool("parse", false, "stop after parsing and print the syntax tree")
	dump      = flag.Bool("dump", false, "print the resolved IR after checking")
	showTypes = flag.Bool("types", false, "print function signatures and the type of every binding")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: circuitc [flags] <dir>\n")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("circuitc: ")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	if err := run(os.Stdout, flag.Arg(0)); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run(w io.Writer, dir string) error {
	parser.Debug = *trace
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	pkg, err := parser.ParsePackage(os.DirFS(abs), ".")
	if err != nil {
		return err
	}
	if *parseOnly {
		ast.Fprint(w, pkg)
		return nil
	}
	// Functions that resolved are still checked when others did not.
	store, funcs, resolveErr := names.Resolve(pkg)
	err = errors.Join(resolveErr, check.Program(store, funcs))
	if *dump {
		store.Dump(w)
	}
	if *showTypes {
		printTypes(w, store, funcs)
	}
	return err
}

func printTypes(w io.Writer, store *hir.Store, funcs []hir.FuncID) {
	for _, id := range funcs {
		fn := store.Function(id)
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = fmt.Sprintf("%s: %s", store.Ident(p.Ident).Name, p.Type)
		}
		fmt.Fprintf(w, "fn %s(%s) -> %s\n", store.Ident(fn.Name).Name, strings.Join(params, ", "), fn.Return)
	}
	for _, id := range store.TypedIdents() {
		info := store.Ident(id)
		fmt.Fprintf(w, "%s\t%s: %s\n", info.Span.Start, info.Name, store.IdentType(id))
	}
}
