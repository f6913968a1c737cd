// Package engine orchestrates a translation run: identifier assignment,
// concurrent parsing, dependency ordering, and per-calculation translation.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/dashport-dev/dashport/pkg/ident"
	"github.com/dashport-dev/dashport/pkg/target"
)

// Config holds engine configuration.
type Config struct {
	// Target is the registered translation target name. Defaults to
	// "pandas".
	Target string
	// Mappings carries a previously exported identifier table to seed the
	// run with, preserving user edits across runs.
	Mappings []ident.Mapping
	// Concurrency bounds the parallel parse workers. Defaults to
	// GOMAXPROCS.
	Concurrency int
	// GuardDivision makes every translated division yield null on zero
	// divisors instead of mirroring the source's unchecked division.
	GuardDivision bool
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs workbook translations against one target.
type Engine struct {
	target        target.Target
	seed          []ident.Mapping
	concurrency   int
	guardDivision bool
	logger        *slog.Logger
}

// New creates an engine for the configured target.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	name := cfg.Target
	if name == "" {
		name = "pandas"
	}
	tgt, ok := target.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown target %q (available: %v)", name, target.List())
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	logger.Debug("initializing engine", "target", tgt.Name(), "concurrency", concurrency)

	return &Engine{
		target:        tgt,
		seed:          cfg.Mappings,
		concurrency:   concurrency,
		guardDivision: cfg.GuardDivision,
		logger:        logger,
	}, nil
}

// Target returns the engine's translation target.
func (e *Engine) Target() target.Target { return e.target }
