package bozon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_DeclareVar_FirstInsertionWins(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	s := NewScope(nil, "")
	v := &VarDecl{Name: "x", Type: Base(i32)}
	got, err := s.DeclareVar(v)
	require.NoError(t, err)
	assert.Same(t, v, got)

	same, err := s.DeclareVar(&VarDecl{Name: "x", Type: Base(i32)})
	require.NoError(t, err, "redeclaring with the same type is a no-op returning the existing symbol")
	assert.Same(t, v, same)
}

func TestScope_DeclareVar_ConflictingTypeErrors(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	f64, _ := interner.Builtin("float64")
	s := NewScope(nil, "")
	_, err := s.DeclareVar(&VarDecl{Name: "x", Type: Base(i32)})
	require.NoError(t, err)

	_, err = s.DeclareVar(&VarDecl{Name: "x", Type: Base(f64)})
	assert.Error(t, err)
}

func TestScope_LookupVar_WalksParents(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	outer := NewScope(nil, "outer")
	_, err := outer.DeclareVar(&VarDecl{Name: "shared", Type: Base(i32)})
	require.NoError(t, err)

	inner := outer.Child("inner")
	found, owner := inner.LookupVar("shared")
	require.NotNil(t, found)
	assert.Same(t, outer, owner)

	_, notFoundOwner := inner.LookupVar("missing")
	assert.Nil(t, notFoundOwner)
}

func TestScope_LookupVar_InnerShadowsOuter(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	f64, _ := interner.Builtin("float64")
	outer := NewScope(nil, "outer")
	_, err := outer.DeclareVar(&VarDecl{Name: "x", Type: Base(i32)})
	require.NoError(t, err)

	inner := outer.Child("inner")
	_, err = inner.DeclareVar(&VarDecl{Name: "x", Type: Base(f64)})
	require.NoError(t, err)

	found, owner := inner.LookupVar("x")
	assert.Equal(t, Base(f64), found.Type)
	assert.Same(t, inner, owner)
}

// TestScope_LookupFuncSet_MergesAcrossParents covers §3.3's
// overload-set merging: every function sharing the unqualified name in
// any enclosing scope contributes to the combined candidate set.
func TestScope_LookupFuncSet_MergesAcrossParents(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	f64, _ := interner.Builtin("float64")
	outer := NewScope(nil, "outer")
	fOuter := &FunctionDecl{Name: "f", Params: []*VarDecl{{Type: Base(i32)}}}
	outer.DeclareFunc(fOuter)

	inner := outer.Child("inner")
	fInner := &FunctionDecl{Name: "f", Params: []*VarDecl{{Type: Base(f64)}}}
	inner.DeclareFunc(fInner)

	merged := inner.LookupFuncSet("f")
	require.NotNil(t, merged)
	assert.ElementsMatch(t, []*FunctionDecl{fOuter, fInner}, merged.Functions)
}

func TestScope_LookupFuncSet_UnknownNameIsNil(t *testing.T) {
	s := NewScope(nil, "")
	assert.Nil(t, s.LookupFuncSet("nope"))
}

func TestScope_LookupOperatorSet_FallsThroughToParent(t *testing.T) {
	outer := NewScope(nil, "outer")
	f := &FunctionDecl{Name: "operator+"}
	outer.DeclareOperator(OpAdd, f)

	inner := outer.Child("inner")
	set := inner.LookupOperatorSet(OpAdd)
	require.NotNil(t, set)
	assert.Contains(t, set.Functions, f)

	assert.Nil(t, inner.LookupOperatorSet(OpSubtract))
}

func TestScope_DeclareAlias_ConflictDetection(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	i64, _ := interner.Builtin("int64")
	s := NewScope(nil, "")
	_, err := s.DeclareAlias(&TypeAliasDecl{Name: "myint", Type: Base(i32)})
	require.NoError(t, err)

	_, err = s.DeclareAlias(&TypeAliasDecl{Name: "myint", Type: Base(i64)})
	assert.Error(t, err)

	same, err := s.DeclareAlias(&TypeAliasDecl{Name: "myint", Type: Base(i32)})
	require.NoError(t, err)
	assert.Equal(t, Base(i32), same.Type)
}

func TestScope_DeclareUnresolved_IsIdempotentPerName(t *testing.T) {
	s := NewScope(nil, "")
	u1 := s.DeclareUnresolved("Foo")
	u2 := s.DeclareUnresolved("Foo")
	assert.Same(t, u1, u2)
}

func TestScope_QualifiedName(t *testing.T) {
	root := NewScope(nil, "")
	assert.Equal(t, "x", root.QualifiedName("x"))

	ns := NewScope(nil, "ns")
	assert.Equal(t, "ns.x", ns.QualifiedName("x"))
}

// TestScope_DeclareVariadicExpansion_MaterializesCopies covers §4.3's
// variadic-pack scoring: a call site with N arguments materializes N
// monomorphic copies of the original variadic parameter, stripped of
// the variadic modifier layer.
func TestScope_DeclareVariadicExpansion_MaterializesCopies(t *testing.T) {
	interner := NewTypeInterner()
	i32, _ := interner.Builtin("int32")
	s := NewScope(nil, "")
	original := &VarDecl{Name: "args", Type: Base(i32).AddLayer(ModVariadic)}

	ve := s.DeclareVariadicExpansion(original, 3)
	require.Len(t, ve.Copies, 3)
	for i, c := range ve.Copies {
		assert.Equal(t, Base(i32), c.Type, "each copy drops the variadic modifier")
		assert.Contains(t, c.Name, "args#")
		_ = i
	}

	// Requesting fewer than already materialized keeps the existing copies.
	ve2 := s.DeclareVariadicExpansion(original, 1)
	assert.Same(t, ve, ve2)
	assert.Len(t, ve2.Copies, 3)

	// Requesting more grows the set without recreating earlier copies.
	first := ve.Copies[0]
	ve3 := s.DeclareVariadicExpansion(original, 5)
	assert.Len(t, ve3.Copies, 5)
	assert.Same(t, first, ve3.Copies[0])
}
