package c

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"
)

// freshCounter hands out the suffix for every generated C identifier
// this translation unit emits, so two functions lowered in the same
// run never collide on a temporary name.
var freshCounter uint64

func freshLocal() string      { return fmt.Sprintf("v_%x", atomic.AddUint64(&freshCounter, 1)) }
func freshTypeName() string   { return fmt.Sprintf("t_%x", atomic.AddUint64(&freshCounter, 1)) }
func freshGlobal(n string) string {
	return fmt.Sprintf("gv_%s_%x", sanitizeCIdent(n), atomic.AddUint64(&freshCounter, 1))
}

// sanitizeCIdent mangles an arbitrary Bozon identifier into a valid C
// one, grounded on the teacher's genc.go helper of the same name and
// the same rule (leading digit gets an underscore, anything else
// invalid becomes one too).
func sanitizeCIdent(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
