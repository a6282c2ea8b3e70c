// Package diag is the compiler's diagnostics layer: warnings accumulate in
// a per-compilation Sink flushed between pipeline stages; the first error of a stage
// aborts it via a panic carrying a *Diagnostic, recovered at the stage
// boundary. Modeled on the teacher's internal/errors.SentraError, adapted
// to the line/column wording spec.md §7 requires.
package diag

import (
	"fmt"

	"github.com/mattn/go-isatty"
)

// Severity distinguishes a warning (buffered, never aborts) from an error
// (aborts the current stage).
type Severity int

const (
	Warning Severity = iota
	Error
)

// Pos is the (line, column) a Diagnostic points at. Kept distinct from
// token.Position so this package has no dependency on the token package.
type Pos struct {
	Line   int
	Column int
}

// Diagnostic is a single formatted compiler message.
type Diagnostic struct {
	Severity Severity
	Pos      Pos
	Message  string
}

// Error satisfies the error interface with spec §7's exact wording.
func (d *Diagnostic) Error() string {
	label := "Error"
	if d.Severity == Warning {
		label = "Warning"
	}
	return fmt.Sprintf("%s at line %d, column %d: %s", label, d.Pos.Line, d.Pos.Column, d.Message)
}

// Unreachable is raised for a violated structural invariant; it is always
// fatal regardless of which stage is running.
type Unreachable struct {
	Message string
}

func (u *Unreachable) Error() string {
	return fmt.Sprintf("unreachable: %s", u.Message)
}

// Sink accumulates warnings for a single translation unit and is flushed by
// the driver between pipeline stages. It has no internal locking and is not
// safe for concurrent use (the pipeline is single-threaded per spec §5).
type Sink struct {
	warnings []*Diagnostic
}

// NewSink returns an empty warnings sink.
func NewSink() *Sink { return &Sink{} }

// Warn buffers a warning; it never aborts the calling stage.
func (s *Sink) Warn(pos Pos, format string, args ...any) {
	s.warnings = append(s.warnings, &Diagnostic{
		Severity: Warning,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Fail raises the first error of the current stage. Callers recover this
// panic at their stage boundary and convert it to a returned error.
func Fail(pos Pos, format string, args ...any) {
	panic(&Diagnostic{
		Severity: Error,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// FailUnreachable raises a fatal internal-invariant violation.
func FailUnreachable(message string) {
	panic(&Unreachable{Message: message})
}

// Flush returns and clears the buffered warnings, matching spec §4.11 and
// §5's requirement that callers flush between stages (including on the
// error path, so warnings are not lost when a later stage fails).
func (s *Sink) Flush() []*Diagnostic {
	w := s.warnings
	s.warnings = nil
	return w
}

// Recover converts a panicked *Diagnostic or *Unreachable into an error,
// leaving any other panic to propagate. Call via `defer diag.Recover(&err)`
// at the entry point of each fallible stage.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case *Diagnostic:
		*errp = v
	case *Unreachable:
		*errp = v
	default:
		panic(r)
	}
}

// ColorEnabled reports whether fd is a real terminal, used by the CLI
// driver to decide whether to colorize diagnostic output.
func ColorEnabled(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
