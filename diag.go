package bozon

import (
	"fmt"

	"github.com/bozon-lang/bozonc/ascii"
)

// Severity classifies a diagnostic per the four prefixes in §6.3.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
	SeveritySuggestion
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	case SeveritySuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

func (s Severity) color() string {
	switch s {
	case SeverityError:
		return ascii.DefaultTheme.Error
	case SeverityWarning:
		return ascii.DefaultTheme.Warning
	case SeverityNote:
		return ascii.DefaultTheme.Info
	case SeveritySuggestion:
		return ascii.DefaultTheme.Hint
	default:
		return ascii.Reset
	}
}

// WarningCategory names one of the gated warning categories of §7.
type WarningCategory string

const (
	WarnIntOverflow          WarningCategory = "int_overflow"
	WarnIntDivideByZero      WarningCategory = "int_divide_by_zero"
	WarnFloatDivideByZero    WarningCategory = "float_divide_by_zero"
	WarnFloatOverflow        WarningCategory = "float_overflow"
	WarnNullPointerDeref     WarningCategory = "null_pointer_dereference"
	WarnUnusedValue          WarningCategory = "unused_value"
	WarnBadFileExtension     WarningCategory = "bad_file_extension"
	WarnBinaryStdout         WarningCategory = "binary_stdout"
	WarnUnknownTarget        WarningCategory = "unknown_target"
	WarnShiftOverflow        WarningCategory = "shift_overflow"
	WarnUnicodeOutOfRange    WarningCategory = "unicode_out_of_range" // reported as an error, never gated
)

// CompileError is a single diagnostic attached to a source location.
// Recoverable compiler errors are always represented this way; the
// pass that produced one keeps going to find more of them (§7).
type CompileError struct {
	Severity   Severity
	Category   WarningCategory // empty for non-warning diagnostics and compile_warning
	File       string
	Location   SrcTokens
	Message    string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Severity, e.Message)
}

// Render formats a diagnostic the way the driver prints it to stderr,
// one line per diagnostic, optionally colorized per the ascii theme.
func (e CompileError) Render(colorize bool) string {
	prefix := e.Severity.String() + ": "
	if colorize {
		prefix = ascii.Color(e.Severity.color(), "%s", prefix)
	}
	loc := e.Location.Span()
	if e.File != "" {
		return fmt.Sprintf("%s%s (%s:%s)", prefix, e.Message, e.File, loc)
	}
	return fmt.Sprintf("%s%s", prefix, e.Message)
}

// Diagnostics is an append-only sink shared across every phase of a
// single compilation (§5: "shared mutable state ... diagnostic sink
// (append-only)").
type Diagnostics struct {
	errs []CompileError
}

func (d *Diagnostics) Add(e CompileError) {
	d.errs = append(d.errs, e)
}

func (d *Diagnostics) Errorf(loc SrcTokens, format string, args ...any) {
	d.Add(CompileError{Severity: SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Notef(loc SrcTokens, format string, args ...any) {
	d.Add(CompileError{Severity: SeverityNote, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Suggestf(loc SrcTokens, format string, args ...any) {
	d.Add(CompileError{Severity: SeveritySuggestion, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Warnf emits a gated warning: it is dropped silently if cfg disables
// its category via -Wno-<name> (policy table, §7).
func (d *Diagnostics) Warnf(cfg *Config, cat WarningCategory, loc SrcTokens, format string, args ...any) {
	if cfg != nil && !cfg.WarningEnabled(cat) {
		return
	}
	d.Add(CompileError{
		Severity: SeverityWarning,
		Category: cat,
		Location: loc,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) All() []CompileError { return d.errs }

// HasErrors reports whether any diagnostic with SeverityError was
// recorded; the driver's exit code (§6.1) is keyed off this.
func (d *Diagnostics) HasErrors() bool {
	for _, e := range d.errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// internalf panics on a true internal-consistency violation — never
// for a recoverable, user-facing error (§9: "keep unreachable! only
// for true internal-consistency invariants").
func internalf(format string, args ...any) {
	panic(fmt.Sprintf("bozonc: internal error: "+format, args...))
}
