package c

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeCIdent(t *testing.T) {
	cases := map[string]string{
		"foo":        "foo",
		"foo_bar":    "foo_bar",
		"0foo":       "_0foo",
		"foo-bar":    "foo_bar",
		"":           "_",
		"foo.bar()":  "foo_bar__",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeCIdent(in), "input %q", in)
	}
}

func TestFreshLocalNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := freshLocal()
		assert.False(t, seen[n], "duplicate fresh name %q", n)
		seen[n] = true
	}
}
