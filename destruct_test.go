package bozon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedDestructRecord(name string) DestructRecord {
	return DestructRecord{
		Op:    DestructDestroy,
		Value: DynamicExpr(SrcTokens{}, Typespec{}, ValueLvalue, IdentifierExpr{Var: &VarDecl{Name: name}}),
	}
}

func recordNames(records []DestructRecord) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Value.Body.(IdentifierExpr).Var.Name
	}
	return names
}

// TestDestructScope_UnwindAll_ReverseOrder covers §8 property 4:
// destruct operations run in reverse of insertion order.
func TestDestructScope_UnwindAll_ReverseOrder(t *testing.T) {
	scope := NewDestructScope(nil)
	scope.Push(namedDestructRecord("a"))
	scope.Push(namedDestructRecord("b"))
	scope.Push(namedDestructRecord("c"))

	assert.Equal(t, []string{"c", "b", "a"}, recordNames(scope.UnwindAll()))
}

// TestDestructScope_S6 models scenario S6: a loop body constructs A
// then B, then breaks inside a nested switch — the unwind from the
// loop's begin index must emit B's destructor then A's, each exactly
// once.
func TestDestructScope_S6(t *testing.T) {
	loopScope := NewDestructScope(nil)
	loopScope.Push(namedDestructRecord("A"))
	loopScope.Push(namedDestructRecord("B"))

	// A nested switch scope begins after A and B were pushed into the
	// same destruct stack (loops/switches share the parent's record
	// stack and only remember their own begin index).
	switchBegin := NewDestructScope(loopScope)
	_ = switchBegin

	unwound := loopScope.UnwindToLoopBegin()
	assert.Equal(t, []string{"B", "A"}, recordNames(unwound))

	// Each record appears exactly once.
	seen := map[string]int{}
	for _, r := range unwound {
		seen[r.Value.Body.(IdentifierExpr).Var.Name]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "record %q should unwind exactly once", name)
	}
}

func TestDestructScope_BeginIndex_OnlyUnwindsSuffix(t *testing.T) {
	outer := NewDestructScope(nil)
	outer.Push(namedDestructRecord("outer1"))

	inner := NewDestructScope(outer)
	outer.Push(namedDestructRecord("inner1"))
	outer.Push(namedDestructRecord("inner2"))

	// A break inside `inner` only unwinds what was pushed since entry.
	assert.Equal(t, []string{"inner2", "inner1"}, recordNames(outer.UnwindFrom(inner.BeginIndex)))
	// Leaving the outer scope normally unwinds everything.
	assert.Equal(t, []string{"inner2", "inner1", "outer1"}, recordNames(outer.UnwindAll()))
}

func TestMoveIndicator_ClearGuardsDestruct(t *testing.T) {
	mi := NewMoveIndicator()
	assert.True(t, mi.IsLive())
	mi.Clear()
	assert.False(t, mi.IsLive())
}

func TestMoveIndicator_NilIsLive(t *testing.T) {
	var mi *MoveIndicator
	assert.True(t, mi.IsLive(), "a record without a move-destruct indicator is unconditionally live")
}

func TestDestructRecord_ConditionalOnMoveIndicator(t *testing.T) {
	scope := NewDestructScope(nil)
	mi := NewMoveIndicator()
	scope.Push(DestructRecord{
		Op:            DestructDestroy,
		Value:         constArg(Void(), &NullValue{}),
		MoveIndicator: mi,
	})
	records := scope.UnwindAll()
	require.Len(t, records, 1)
	assert.True(t, records[0].MoveIndicator.IsLive())

	mi.Clear()
	assert.False(t, records[0].MoveIndicator.IsLive(), "clearing is visible through the shared pointer")
}
