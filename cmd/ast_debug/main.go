// Command ast_debug prints the NetLogo syntax tree of files, or of stdin
// when no file is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/DeusData/netlogo-intel/internal/discover"
	"github.com/DeusData/netlogo-intel/internal/parser"
	"github.com/DeusData/netlogo-intel/internal/syntax"
)

func main() {
	modeName := flag.String("mode", "model", "parse mode: model, embedded or oneline")
	flag.Parse()
	mode, ok := syntax.ParseMode(*modeName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *modeName)
		os.Exit(2)
	}

	if flag.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		dump(string(data), mode)
		return
	}
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			continue
		}
		kind, _ := discover.KindOf(path)
		src := discover.Parse(discover.FileInfo{Path: path, Kind: kind}, string(data))
		fmt.Printf("=== %s ===\n", path)
		dump(src.Code, mode)
	}
}

func dump(code string, mode syntax.Mode) {
	v := parser.Analyze(code, mode, nil, "debug")
	if err := syntax.Dump(os.Stdout, v.Tree); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}
