// Command bozonc is the batch ahead-of-time compiler driver (§6.1):
// parse and resolve, then lower to one of LLVM IR, C, or a bytecode
// dump. The compile-time executor is used only to compile function
// bodies for the bytecode dump; the driver executes no function.
//
// Grounded on the teacher's cmd/langlang/main.go: a flag-struct of
// pointers built by readArgs, log.Fatal on setup errors, and a staged
// early-return for debug-only emit kinds.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	bozon "github.com/bozon-lang/bozonc"
	"github.com/bozon-lang/bozonc/ascii"
	bc "github.com/bozon-lang/bozonc/backend/c"
	bllvm "github.com/bozon-lang/bozonc/backend/llvm"
	"github.com/bozon-lang/bozonc/syntax"
)

const defaultWritePermission = 0644

type args struct {
	inputPath *string
	emit      *string
	output    *string
	includeDirs  multiFlag
	stdlibDir *string
	target    *string
	optLevel  *string
	warnings  multiFlag
	returnZeroOnError *bool
	x86AsmSyntax      *string
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func readArgs() *args {
	a := &args{
		emit:              flag.String("emit", "obj", "Output kind: obj, asm, llvm-bc, llvm-ir, c, null"),
		output:            flag.String("o", "", "Output path (default: stdout)"),
		stdlibDir:         flag.String("stdlib-dir", "", "Path to the standard library sources"),
		target:            flag.String("target", "", "Target triple, e.g. x86_64-unknown-linux-gnu"),
		optLevel:          flag.String("O", "1", "Optimization level: 0, 1, 2, 3, s, z"),
		returnZeroOnError: flag.Bool("return-zero-on-error", false, "Exit 0 even if diagnostics include errors"),
		x86AsmSyntax:      flag.String("x86-asm-syntax", "att", "Assembly syntax for --emit=asm on x86: att or intel"),
	}
	flag.Var(&a.includeDirs, "I", "Add a directory to the include search path (repeatable)")
	flag.Var(&a.warnings, "W", "Toggle a warning category: <name> or no-<name> (repeatable)")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("no input file given")
	}
	p := flag.Arg(0)
	a.inputPath = &p
	return a
}

func main() {
	a := readArgs()

	session := bozon.NewSession()
	configureFromArgs(session.Config, a)

	src, err := os.ReadFile(*a.inputPath)
	if err != nil {
		log.Fatal(err)
	}

	parser := syntax.NewParser(session, src)
	fns, err := parser.ParseModule()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(session, a, true))
	}

	out, err := emit(session, fns, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(session, a, true))
	}

	for _, diag := range session.Diagnostics.All() {
		fmt.Fprintln(os.Stderr, diag.Render(true))
	}

	if err := writeOutput(*a.output, out); err != nil {
		log.Fatal(err)
	}
	os.Exit(exitCode(session, a, false))
}

func configureFromArgs(cfg *bozon.Config, a *args) {
	cfg.SetString("emit", *a.emit)
	cfg.SetString("output", *a.output)
	cfg.SetString("target", *a.target)
	cfg.SetBool("return_zero_on_error", *a.returnZeroOnError)
	cfg.SetString("x86_asm_syntax", *a.x86AsmSyntax)

	switch *a.optLevel {
	case "s":
		cfg.SetInt("codegen.optimize", -1) // -Os: "optimize for size" sentinel
	case "z":
		cfg.SetInt("codegen.optimize", -2) // -Oz: "optimize harder for size"
	default:
		n := 1
		fmt.Sscanf(*a.optLevel, "%d", &n)
		cfg.SetInt("codegen.optimize", n)
	}

	for _, w := range a.warnings {
		if strings.HasPrefix(w, "no-") {
			cfg.SetWarning(bozon.WarningCategory(strings.TrimPrefix(w, "no-")), false)
		} else {
			cfg.SetWarning(bozon.WarningCategory(w), true)
		}
	}
}

func emit(session *bozon.Session, fns []*bozon.FunctionDecl, a *args) (string, error) {
	switch *a.emit {
	case "null":
		var sb strings.Builder
		exec := bozon.NewExecutor(session)
		for _, fn := range fns {
			prog, err := exec.Program(fn)
			if err != nil {
				return "", err
			}
			sb.WriteString(prog.Disassemble(ascii.Theme{}))
		}
		return sb.String(), nil

	case "c":
		return bc.EmitModule(session, fns, bc.Options{UnitName: unitName(*a.inputPath)})

	case "llvm-ir":
		mod := bllvm.NewModule(session, *a.target)
		for _, fn := range fns {
			mod.Declare(fn)
		}
		for _, fn := range fns {
			if err := mod.Lower(fn); err != nil {
				return "", err
			}
		}
		return mod.Module().String(), nil

	case "llvm-bc", "obj", "asm":
		return "", fmt.Errorf("--emit=%s requires an external llc/clang toolchain invocation, not implemented by this driver", *a.emit)

	default:
		return "", fmt.Errorf("unknown --emit kind %q", *a.emit)
	}
}

func unitName(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

func writeOutput(path, content string) error {
	if path == "" || path == "-" {
		fmt.Print(content)
		return nil
	}
	return os.WriteFile(path, []byte(content), defaultWritePermission)
}

// exitCode implements §6.1: 0 on success, 1 on any error-severity
// diagnostic unless --return-zero-on-error was passed.
func exitCode(session *bozon.Session, a *args, hardFailure bool) int {
	if hardFailure {
		if *a.returnZeroOnError {
			return 0
		}
		return 1
	}
	if session.Diagnostics.HasErrors() && !*a.returnZeroOnError {
		return 1
	}
	return 0
}
