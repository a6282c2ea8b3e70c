// Command weakc is the CLI driver for the weak compiler front-end/middle-
// end (spec §6, informative collaborator). It wires
// lexer -> parser -> sema (variable-use, function, type) -> irgen -> cfg ->
// dominator -> llvmgen, with --dump-lexemes/--dump-ast/--dump-llvm short-
// circuiting the pipeline at the matching stage. Grounded on the teacher's
// cmd/sentra/main.go command-dispatch/log.Fatalf idiom, cut down to
// weakc's single-command, flag-only surface (internal/config).
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"weakc/internal/ast"
	"weakc/internal/cfg"
	"weakc/internal/compileserver"
	"weakc/internal/config"
	"weakc/internal/diag"
	"weakc/internal/dominator"
	"weakc/internal/ir"
	"weakc/internal/ircache"
	"weakc/internal/irgen"
	"weakc/internal/lexer"
	"weakc/internal/llvmgen"
	"weakc/internal/parser"
	"weakc/internal/sema"
	"weakc/internal/token"
)

func main() {
	conf, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if conf.Watch {
		runWatch(conf)
		return
	}

	diags, err := compile(conf, os.Stdout)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, formatDiagnostic(d))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// runWatch compiles conf.Input once, broadcasts the resulting report
// through internal/compileserver, and then serves the websocket
// diagnostics feed on conf.WatchAddr. It does not watch the filesystem and
// has no recompile trigger; the one report is broadcast before Serve starts
// accepting clients.
func runWatch(conf *config.Config) {
	srv := compileserver.New(conf.WatchAddr)
	fmt.Fprintf(os.Stderr, "weakc: watching, websocket diagnostics on %s\n", conf.WatchAddr)

	var buf bytes.Buffer
	diags, err := compile(conf, &buf)
	srv.Broadcast(&compileserver.Report{
		Source:      conf.Input,
		Diagnostics: diags,
		OK:          err == nil,
	})
	if err := srv.Serve(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// compile runs the full pipeline for a single translation unit, writing
// any requested dump to out. It returns the warnings accumulated across
// every stage (flushed between stages so the error path never loses them)
// and the first stage error, if any.
func compile(conf *config.Config, out io.Writer) ([]*diag.Diagnostic, error) {
	var warnings []*diag.Diagnostic

	src, err := os.ReadFile(conf.Input)
	if err != nil {
		return nil, fmt.Errorf("weakc: read %s: %w", conf.Input, err)
	}

	toks, err := stageLex(src)
	if err != nil {
		return warnings, err
	}
	if conf.DumpLexemes {
		dumpLexemes(out, toks)
		return warnings, nil
	}

	root, err := stageParse(toks)
	if err != nil {
		return warnings, err
	}
	if conf.DumpAST {
		dumpAST(out, root)
		return warnings, nil
	}

	sink := diag.NewSink()
	if err := stageSema(root, sink); err != nil {
		warnings = append(warnings, sink.Flush()...)
		return warnings, err
	}
	warnings = append(warnings, sink.Flush()...)

	unit, err := stageIRGen(root)
	if err != nil {
		return warnings, err
	}

	if cached, ok, cerr := withCache(conf, src, unit); cerr != nil {
		warnings = append(warnings, &diag.Diagnostic{Severity: diag.Warning, Message: cerr.Error()})
	} else if ok {
		unit = cached
	}

	// cfg.Build is idempotent (spec's CFG-determinism invariant), so this
	// runs unconditionally whether unit came from irgen or the cache.
	for _, fn := range unit.Funcs {
		cfg.Build(fn)
		dominator.Run(fn)
	}

	mod, err := llvmgen.Emit(unit)
	if err != nil {
		return warnings, fmt.Errorf("weakc: llvm translation: %w", err)
	}

	if conf.DumpLLVM {
		fmt.Fprintln(out, mod.String())
		return warnings, nil
	}

	dest := conf.Output
	if dest == "" {
		dest = "a.out.ll"
	}
	if err := os.WriteFile(dest, []byte(mod.String()), 0o644); err != nil {
		return warnings, fmt.Errorf("weakc: write %s: %w", dest, err)
	}

	fmt.Fprintf(os.Stderr, "weakc: %s -> %s (%s instructions, opt %s)\n",
		conf.Input, dest, humanize.Comma(int64(countInstructions(unit))), conf.Opt)

	return warnings, nil
}

func stageLex(src []byte) (toks []token.Token, err error) {
	defer diag.Recover(&err)
	toks = lexer.New(src).Analyze()
	return
}

func stageParse(toks []token.Token) (root *ast.Compound, err error) {
	defer diag.Recover(&err)
	return parser.New(toks).Parse()
}

// stageSema runs the three semantic analyses in the order spec §4 names
// them: variable-use resolution must run before function/type checking
// can assume every call resolves to a declaration.
func stageSema(root *ast.Compound, sink *diag.Sink) (err error) {
	defer diag.Recover(&err)
	sema.NewVariableUse(sink).Analyze(root)
	sema.NewFunction().Analyze(root)
	sema.NewType().Analyze(root)
	return
}

func stageIRGen(root *ast.Compound) (unit *ir.Unit, err error) {
	defer diag.Recover(&err)
	unit = irgen.Generate(root)
	return
}

// withCache consults internal/ircache keyed by a content hash of src when
// conf.Cache names a target, storing unit on a miss. A cache error is
// non-fatal: it degrades to a warning and the pipeline proceeds as if the
// cache were disabled.
func withCache(conf *config.Config, src []byte, unit *ir.Unit) (*ir.Unit, bool, error) {
	if conf.Cache == "" {
		return nil, false, nil
	}
	store, err := ircache.Open(ircache.DriverFromDSN(conf.Cache), conf.Cache)
	if err != nil {
		return nil, false, err
	}
	defer store.Close()

	sum := sha256.Sum256(src)
	hash := hex.EncodeToString(sum[:])

	if cached, found, err := store.Lookup(hash); err != nil {
		return nil, false, err
	} else if found {
		return cached, true, nil
	}
	if err := store.Put(hash, unit); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func countInstructions(unit *ir.Unit) int {
	n := 0
	for _, fn := range unit.Funcs {
		n += len(fn.FuncDeclVal.Body)
	}
	return n
}

func dumpLexemes(out io.Writer, toks []token.Token) {
	for _, t := range toks {
		fmt.Fprintln(out, t.String())
	}
}

func formatDiagnostic(d *diag.Diagnostic) string {
	if diag.ColorEnabled(os.Stderr.Fd()) {
		return "\x1b[33m" + d.Error() + "\x1b[0m"
	}
	return d.Error()
}

func formatError(err error) string {
	if d, ok := err.(*diag.Diagnostic); ok {
		if diag.ColorEnabled(os.Stderr.Fd()) {
			return "\x1b[31m" + d.Error() + "\x1b[0m"
		}
		return d.Error()
	}
	return err.Error()
}
