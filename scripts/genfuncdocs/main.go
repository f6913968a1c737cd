// Package main provides a generator that extracts the supported function
// matrix from the registered translation targets and writes markdown
// reference documentation.
//
// Usage:
//
//	go run ./scripts/genfuncdocs -outdir=docs/functions
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dashport-dev/dashport/pkg/target"

	_ "github.com/dashport-dev/dashport/pkg/targets/ansisql"
	_ "github.com/dashport-dev/dashport/pkg/targets/pandas"
)

var outDirFlag = flag.String("outdir", "docs/functions", "output directory")

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outDirFlag, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	for _, name := range target.List() {
		tgt, ok := target.Get(name)
		if !ok {
			log.Fatalf("target %s vanished from the registry", name)
		}
		path := filepath.Join(*outDirFlag, name+".md")
		if err := os.WriteFile(path, []byte(renderTarget(tgt)), 0o644); err != nil {
			log.Fatalf("failed to write %s: %v", path, err)
		}
		log.Printf("wrote %s", path)
	}
}

func renderTarget(tgt target.Target) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Functions: %s\n\n", tgt.Name())
	b.WriteString("<!-- generated by scripts/genfuncdocs; do not edit -->\n\n")
	b.WriteString("| Function | Kind | Args | Example |\n")
	b.WriteString("|----------|------|------|--------|\n")

	for _, spec := range tgt.Functions() {
		args := sampleArgs(tgt, spec)
		fmt.Fprintf(&b, "| %s | %s | %s | `%s` |\n",
			spec.Name, kindLabel(spec.Kind), arityLabel(spec), spec.Emit(args))
	}
	return b.String()
}

func kindLabel(k target.FuncKind) string {
	switch k {
	case target.FuncAggregate:
		return "aggregate"
	case target.FuncWindow:
		return "window"
	default:
		return "scalar"
	}
}

func arityLabel(spec target.FuncSpec) string {
	if spec.MaxArgs == target.Variadic {
		return fmt.Sprintf("%d+", spec.MinArgs)
	}
	if spec.MinArgs == spec.MaxArgs {
		return fmt.Sprintf("%d", spec.MinArgs)
	}
	return fmt.Sprintf("%d-%d", spec.MinArgs, spec.MaxArgs)
}

// sampleArgs builds placeholder arguments at the spec's minimum arity so the
// Emit function can render an example.
func sampleArgs(tgt target.Target, spec target.FuncSpec) []string {
	n := spec.MinArgs
	if n == 0 {
		n = 1
	}
	args := make([]string, n)
	for i := range args {
		args[i] = tgt.FieldRef(fmt.Sprintf("arg%d", i+1))
	}
	return args
}
