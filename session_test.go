package bozon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_WiresFreshComponents(t *testing.T) {
	s := NewSession()
	require.NotNil(t, s.Interner)
	require.NotNil(t, s.Diagnostics)
	require.NotNil(t, s.Config)
	require.NotNil(t, s.Root)

	i32, ok := s.Interner.Builtin("int32")
	require.True(t, ok)
	assert.NotNil(t, i32)
	assert.Empty(t, s.Diagnostics.All())
}

func TestNewSession_IndependentInstances(t *testing.T) {
	a := NewSession()
	b := NewSession()
	assert.NotSame(t, a.Interner, b.Interner)
	assert.NotSame(t, a.Diagnostics, b.Diagnostics)
	assert.NotSame(t, a.Root, b.Root)

	a.Diagnostics.Errorf(SrcTokens{}, "oops")
	assert.Empty(t, b.Diagnostics.All(), "sessions must not share diagnostic state")
}
