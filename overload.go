package bozon

import "fmt"

// matchInapplicable is the -1 sentinel score of §4.3.
const matchInapplicable = -1

// MatchLevel is the (min, sum) pair ranking a candidate against an
// argument list (§4.3, Glossary "match level").
type MatchLevel struct {
	Min int
	Sum int
}

// Less orders two match levels: lower is better, componentwise
// (§4.3's "the best candidate is the unique one with (min, sum) ≤ all
// others componentwise").
func (a MatchLevel) Less(b MatchLevel) bool {
	return a.Min < b.Min && a.Sum < b.Sum
}

func (a MatchLevel) LessOrEqual(b MatchLevel) bool {
	return a.Min <= b.Min && a.Sum <= b.Sum
}

// ScoreConversion ranks binding a single argument of type `arg` (with
// its value category) to a parameter of type `param`, per the table
// in §4.3. -1 means inapplicable.
func ScoreConversion(param, arg Typespec, argCategory ValueCategory) int {
	if param.Equal(arg) {
		return 0
	}

	// Reference binding: must match the parameter's reference kind
	// against the argument's value category (§4.3).
	if outer, ok := paramOuter(param); ok && outer.isReference() {
		inner := param.RemoveLayer()
		switch outer {
		case ModLvalueReference, ModAutoReference:
			if argCategory != ValueLvalue && argCategory != ValueLvalueReference {
				return matchInapplicable
			}
		case ModMoveReference:
			if argCategory != ValueRvalue {
				return matchInapplicable
			}
		}
		return scoreValue(inner, stripReferenceLike(arg))
	}

	return scoreValue(param, arg)
}

func paramOuter(t Typespec) (Modifier, bool) {
	if len(t.Modifiers) == 0 {
		return 0, false
	}
	m := t.Modifiers[0]
	if m.isReference() {
		return m, true
	}
	return 0, false
}

func stripReferenceLike(t Typespec) Typespec {
	if outer, ok := paramOuter(t); ok {
		_ = outer
		return t.RemoveLayer()
	}
	return t
}

// scoreValue scores by-value conversions: const/mut add, null to
// optional/pointer, integer widening, numeric conversions (§4.3).
func scoreValue(param, arg Typespec) int {
	if param.Equal(arg) {
		return 0
	}

	// null -> optional-pointer-like or pointer
	if IsTerm[UnresolvedTerm](arg) {
		// never matched structurally; unresolved args are a caller error upstream.
		return matchInapplicable
	}
	if isNullType(arg) {
		if IsOptionalPointerLike(param) || param.IsMod(ModPointer) || param.IsMod(ModOptional) {
			return 1
		}
		return matchInapplicable
	}

	pMut, pRest := param.IsMod(ModMut), param
	aMut, aRest := arg.IsMod(ModMut), arg
	if pMut != aMut {
		pPlain := pRest
		aPlain := aRest
		if pMut {
			pPlain = pRest.RemoveLayer()
		}
		if aMut {
			aPlain = aRest.RemoveLayer()
		}
		if pPlain.Equal(aPlain) {
			// adding const (mut -> non-mut) or removing it from an rvalue: +1
			return 1
		}
	}

	if len(param.Modifiers) == 0 && len(arg.Modifiers) == 0 {
		pb, pok := param.Term.(BaseTypeTerm)
		ab, aok := arg.Term.(BaseTypeTerm)
		if pok && aok {
			return scoreNumeric(pb.Info.Kind, ab.Info.Kind)
		}
	}

	if len(param.Modifiers) > 0 && param.Modifiers[0] == ModPointer &&
		len(arg.Modifiers) > 0 && arg.Modifiers[0] == ModPointer {
		return scoreValue(param.RemoveLayer(), arg.RemoveLayer())
	}

	return matchInapplicable
}

func isNullType(t Typespec) bool {
	return len(t.Modifiers) == 0 && t.Term == nil
}

// scoreNumeric scores conversions between base numeric kinds (§4.3):
// integer widening in the same signedness class costs +1 per doubled
// width; crossing signedness, float<->int, or narrowing is
// inapplicable (-1) as an *implicit* conversion — callers needing an
// explicit `as` cast never go through this path.
func scoreNumeric(param, arg TypeInfoKind) int {
	if param == arg {
		return 0
	}
	if param == TypeChar || arg == TypeChar || param == TypeBool || arg == TypeBool ||
		param == TypeStr || arg == TypeStr {
		return matchInapplicable
	}
	if param.isInteger() && arg.isInteger() && param.isSigned() == arg.isSigned() {
		if param.bitWidth() > arg.bitWidth() {
			doublings := 0
			w := arg.bitWidth()
			for w < param.bitWidth() {
				w *= 2
				doublings++
			}
			return doublings
		}
		return matchInapplicable // narrowing
	}
	if param.isFloat() && arg.isFloat() {
		if param.bitWidth() > arg.bitWidth() {
			return 1
		}
		return matchInapplicable
	}
	// different signedness, float<->int: implicit conversion disallowed
	return matchInapplicable
}

// RankCandidate computes the (min, sum) match level of a candidate's
// parameter list against an argument list. A variadic pack's score is
// the sum of its per-element scores (§4.3). Returns ok=false if any
// argument is inapplicable.
func RankCandidate(params []Typespec, args []*Expr) (MatchLevel, bool) {
	if len(params) != len(args) {
		// Caller is expected to have already expanded/checked variadic
		// arity; a plain arity mismatch is simply not a candidate.
		return MatchLevel{}, false
	}
	if len(params) == 0 {
		return MatchLevel{Min: 0, Sum: 0}, true
	}
	min, sum := 1<<30, 0
	for i, p := range params {
		s := ScoreConversion(p, args[i].Type, args[i].Category)
		if s == matchInapplicable {
			return MatchLevel{}, false
		}
		if s < min {
			min = s
		}
		sum += s
	}
	return MatchLevel{Min: min, Sum: sum}, true
}

// ResolveOverload picks the unique best candidate from a function
// overload set for a call's argument list (§4.3, §8 property 5). It
// returns an "ambiguous call" error citing the tied candidates when no
// candidate dominates all the others componentwise.
func ResolveOverload(set *FuncOverloadSet, args []*Expr) (*FunctionDecl, error) {
	if set == nil || len(set.Functions) == 0 {
		return nil, fmt.Errorf("no matching overload for %q", "<unknown>")
	}

	type candidate struct {
		fn    *FunctionDecl
		level MatchLevel
	}
	var candidates []candidate
	for _, fn := range set.Functions {
		level, ok := RankCandidate(fn.ParamTypes(), args)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{fn, level})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no matching overload for %q with the given argument types", set.Name)
	}

	// The winner must dominate every other candidate, not just whichever
	// one the scan has seen so far — a single "current best" variable
	// can't detect that two candidates incomparable to an earlier best
	// are also incomparable to each other. Compute the full Pareto
	// frontier (candidates no other candidate strictly dominates) and
	// only declare a unique winner when exactly one remains.
	var frontier []candidate
	for i, ci := range candidates {
		dominated := false
		for j, cj := range candidates {
			if i == j {
				continue
			}
			if cj.level.LessOrEqual(ci.level) && !ci.level.LessOrEqual(cj.level) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, ci)
		}
	}
	if len(frontier) > 1 {
		return nil, fmt.Errorf("ambiguous call to %q: %d candidates tie at match level (min=%d, sum=%d)",
			set.Name, len(frontier), frontier[0].level.Min, frontier[0].level.Sum)
	}
	return frontier[0].fn, nil
}
