// Package c lowers a typed Bozon function set to a single portable C
// translation unit (§4.7), grounded on the teacher's genc.go: an
// embedded runtime prelude followed by generated declarations and
// bodies, built with the same outputWriter the teacher's five
// source-output backends share.
package c

import (
	"embed"
	"fmt"

	"github.com/bozon-lang/bozonc"
)

//go:embed runtime/bozon_runtime.c
var runtimeSrc embed.FS

// Options mirrors the teacher's GenCOptions, retargeted at a named
// translation unit instead of a named parser type.
type Options struct {
	// UnitName prefixes every generated global/type name, so two
	// bozonc-emitted units can be linked together without collisions.
	UnitName string

	// RemoveLib omits the embedded runtime; the caller is then
	// responsible for linking bozon_runtime.c (or an equivalent)
	// themselves.
	RemoveLib bool
}

// EmitModule renders every function in fns (plus every struct type it
// transitively touches) as one C source string.
func EmitModule(session *bozon.Session, fns []*bozon.FunctionDecl, opt Options) (string, error) {
	if opt.UnitName == "" {
		opt.UnitName = "bozon_module"
	}
	e := &moduleEmitter{session: session, opt: opt, types: newTypeNamer(), out: newOutputWriter("  ")}
	for _, fn := range fns {
		e.types.register(fn.Return)
		for _, p := range fn.Params {
			e.types.register(p.Type)
		}
	}

	e.writePrelude()
	if err := e.writeRuntime(); err != nil {
		return "", err
	}
	e.types.writeTypeDecls(e.out)
	e.writePrototypes(fns)
	for _, fn := range fns {
		if err := e.writeFunction(fn); err != nil {
			return "", fmt.Errorf("emitting %s: %w", fn.Name, err)
		}
	}
	return e.out.output(), nil
}

type moduleEmitter struct {
	session *bozon.Session
	opt     Options
	types   *typeNamer
	out     *outputWriter
}

func (e *moduleEmitter) writePrelude() {
	e.out.writel("/*")
	e.out.writel(" * Auto-generated C translation unit by bozonc.")
	e.out.writel(" * Do not edit; regenerate from source instead.")
	e.out.writel(" */")
	e.out.writel("")
	e.out.writel("#include <stdint.h>")
	e.out.writel("#include <stddef.h>")
	e.out.writel("")
}

func (e *moduleEmitter) writeRuntime() error {
	if e.opt.RemoveLib {
		e.out.writel(`#include "bozon_runtime.h"`)
		e.out.writel("")
		return nil
	}
	data, err := runtimeSrc.ReadFile("runtime/bozon_runtime.c")
	if err != nil {
		return err
	}
	e.out.writel("/* ---- BEGIN embedded runtime: bozon_runtime.c ---- */")
	e.out.writel(string(data))
	e.out.writel("/* ---- END embedded runtime ---- */")
	e.out.writel("")
	return nil
}

func (e *moduleEmitter) cFuncName(fn *bozon.FunctionDecl) string {
	if fn.Linkage&bozon.LinkageLibc != 0 {
		return fn.LibcName
	}
	return sanitizeCIdent(fn.SymbolName)
}

func (e *moduleEmitter) signature(fn *bozon.FunctionDecl) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", e.types.CType(p.Type), sanitizeCIdent(p.Name))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	joined := ""
	for i, p := range params {
		if i > 0 {
			joined += ", "
		}
		joined += p
	}
	return fmt.Sprintf("%s %s(%s)", e.types.CType(fn.Return), e.cFuncName(fn), joined)
}

func (e *moduleEmitter) writePrototypes(fns []*bozon.FunctionDecl) {
	e.out.writel("/* Forward declarations */")
	for _, fn := range fns {
		if fn.Linkage&bozon.LinkageLibc != 0 || fn.Intrinsic != bozon.IntrinsicNone {
			continue
		}
		e.out.writel(e.signature(fn) + ";")
	}
	e.out.writel("")
}

func (e *moduleEmitter) writeFunction(fn *bozon.FunctionDecl) error {
	if fn.Linkage&bozon.LinkageLibc != 0 || fn.Intrinsic != bozon.IntrinsicNone {
		return nil
	}
	fe := &funcEmitter{mod: e, fn: fn, out: e.out, locals: make(map[*bozon.VarDecl]string)}
	e.out.writel(e.signature(fn) + " {")
	e.out.indent()
	for _, p := range fn.Params {
		fe.locals[p] = sanitizeCIdent(p.Name)
	}
	for _, stmt := range fn.Body {
		if err := fe.stmt(stmt); err != nil {
			return err
		}
	}
	e.out.unindent()
	e.out.writel("}")
	e.out.writel("")
	return nil
}
