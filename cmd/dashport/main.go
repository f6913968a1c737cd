// Package main is the dashport CLI entry point.
package main

import (
	"os"

	"github.com/dashport-dev/dashport/internal/cli"
	_ "github.com/dashport-dev/dashport/pkg/targets/ansisql"
	_ "github.com/dashport-dev/dashport/pkg/targets/pandas"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
