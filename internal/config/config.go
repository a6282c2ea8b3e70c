// Package config parses weakc's command-line flags (spec §6). Grounded on
// the teacher's cmd/sentra/main.go hand-rolled flag/command dispatch
// (commandAliases, showUsage) — kept to the standard library flag package
// rather than a CLI framework, since the teacher's own entry point is
// stdlib-flag-based.
package config

import (
	"flag"
	"fmt"
	"io"
)

// OptLevel is one of the four optimization levels accepted by -O0..-O3.
// weakc's pipeline has no optimizer pass; the level is only reported in
// the driver's compilation summary line on stderr, matching spec.md's
// informative (non-binding) CLI description.
type OptLevel int

const (
	O0 OptLevel = iota
	O1
	O2
	O3
)

// Config holds the parsed CLI flags for a single compilation.
type Config struct {
	Input  string
	Output string

	DumpLexemes bool
	DumpAST     bool
	DumpLLVM    bool

	Opt OptLevel

	// Watch starts internal/compileserver's websocket diagnostics broadcast
	// instead of compiling once and exiting. Not named in spec.md's CLI
	// list (which documents only the core pipeline flags); an addition for
	// internal/compileserver's optional tooling role.
	Watch     bool
	WatchAddr string

	// Cache is a cache target understood by internal/ircache.DriverFromDSN,
	// or empty to disable the compiled-IR cache.
	Cache string
}

// Parse parses args (excluding the program name) into a Config, validating
// the required/mutually-exclusive flags spec.md §6 implies (-i is
// required; -O0..-O3 are mutually exclusive).
func Parse(args []string, errOut io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("weakc", flag.ContinueOnError)
	fs.SetOutput(errOut)

	cfg := &Config{}
	fs.StringVar(&cfg.Input, "i", "", "input source file (required)")
	fs.StringVar(&cfg.Output, "o", "", "LLVM output path (default: a.out.ll; dumps always go to stdout)")
	fs.BoolVar(&cfg.DumpLexemes, "dump-lexemes", false, "print the token stream and exit")
	fs.BoolVar(&cfg.DumpAST, "dump-ast", false, "print the parsed AST and exit")
	fs.BoolVar(&cfg.DumpLLVM, "dump-llvm", false, "print the translated LLVM IR and exit")
	fs.BoolVar(&cfg.Watch, "watch", false, "serve diagnostics over websocket on recompile")
	fs.StringVar(&cfg.WatchAddr, "watch-addr", ":7421", "listen address for --watch")
	fs.StringVar(&cfg.Cache, "cache", "", "compiled-IR cache target (sqlite path, or a driver:// DSN)")

	var o0, o1, o2, o3 bool
	fs.BoolVar(&o0, "O0", false, "no optimization (default)")
	fs.BoolVar(&o1, "O1", false, "optimization level 1")
	fs.BoolVar(&o2, "O2", false, "optimization level 2")
	fs.BoolVar(&o3, "O3", false, "optimization level 3")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch n, lvl := countSet(o0, o1, o2, o3), O0; {
	case n > 1:
		return nil, fmt.Errorf("config: at most one of -O0, -O1, -O2, -O3 may be given")
	case o1:
		cfg.Opt = O1
	case o2:
		cfg.Opt = O2
	case o3:
		cfg.Opt = O3
	default:
		cfg.Opt = lvl
	}

	if cfg.Input == "" {
		return nil, fmt.Errorf("config: -i <path> is required")
	}

	return cfg, nil
}

func countSet(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// String renders the optimization level the way the driver's compilation
// summary line reports it ("O0".."O3").
func (o OptLevel) String() string {
	switch o {
	case O1:
		return "O1"
	case O2:
		return "O2"
	case O3:
		return "O3"
	default:
		return "O0"
	}
}
