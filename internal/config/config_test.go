package config

import (
	"io"
	"testing"
)

func TestParseRequiresInput(t *testing.T) {
	if _, err := Parse([]string{"--dump-ast"}, io.Discard); err == nil {
		t.Fatal("expected an error when -i is omitted")
	}
}

func TestParseBasicFlags(t *testing.T) {
	cfg, err := Parse([]string{"-i", "prog.weak", "-o", "prog.ll", "--dump-llvm", "-O2"}, io.Discard)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Input != "prog.weak" || cfg.Output != "prog.ll" {
		t.Errorf("unexpected input/output: %+v", cfg)
	}
	if !cfg.DumpLLVM {
		t.Error("expected DumpLLVM to be set")
	}
	if cfg.Opt != O2 {
		t.Errorf("Opt = %v, want O2", cfg.Opt)
	}
}

func TestParseRejectsMultipleOptLevels(t *testing.T) {
	if _, err := Parse([]string{"-i", "prog.weak", "-O1", "-O2"}, io.Discard); err == nil {
		t.Fatal("expected an error for conflicting -O flags")
	}
}

func TestOptLevelString(t *testing.T) {
	cases := map[OptLevel]string{O0: "O0", O1: "O1", O2: "O2", O3: "O3"}
	for lvl, want := range cases {
		if got := lvl.String(); got != want {
			t.Errorf("OptLevel(%d).String() = %q, want %q", lvl, got, want)
		}
	}
}
