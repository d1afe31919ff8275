package bozon

import "fmt"

// VarDecl is a single declared variable (§3.3).
type VarDecl struct {
	Name  string
	Type  Typespec
	IsArg bool
}

// VariadicExpansion is the "original" variadic-variable record that
// generates N monomorphic copies once the call site's argument count
// is known (§3.3).
type VariadicExpansion struct {
	Original *VarDecl
	Copies   []*VarDecl
}

// FuncOverloadSet is the set of function declarations (plus alias
// declarations) sharing a fully-qualified identifier, considered
// together during call resolution (§3.3, Glossary "overload set").
type FuncOverloadSet struct {
	Name      string
	Functions []*FunctionDecl
}

// OperatorOverloadSet is keyed by operator token kind and lives
// per-scope (§3.3, §4.3).
type OperatorOverloadSet struct {
	Op        OperatorKind
	Functions []*FunctionDecl
}

// TypeAliasDecl binds a name to a typespec.
type TypeAliasDecl struct {
	Name string
	Type Typespec
}

// Scope is an ordered symbol table (declaration set, §3.3). Lookup of
// an unqualified identifier walks this scope then its parents;
// qualified identifiers resolve directly against a specific scope.
type Scope struct {
	parent *Scope
	name   string // empty for an unqualified/anonymous (e.g. block) scope

	vars          map[string]*VarDecl
	varOrder      []string
	variadics     map[string]*VariadicExpansion
	funcs         map[string]*FuncOverloadSet
	operators     map[OperatorKind]*OperatorOverloadSet
	aliases       map[string]*TypeAliasDecl
	structs       map[string]*TypeInfo
	unresolved    map[string]*UnresolvedTerm
	children      map[string]*Scope
}

func NewScope(parent *Scope, name string) *Scope {
	return &Scope{
		parent:     parent,
		name:       name,
		vars:       make(map[string]*VarDecl),
		variadics:  make(map[string]*VariadicExpansion),
		funcs:      make(map[string]*FuncOverloadSet),
		operators:  make(map[OperatorKind]*OperatorOverloadSet),
		aliases:    make(map[string]*TypeAliasDecl),
		structs:    make(map[string]*TypeInfo),
		unresolved: make(map[string]*UnresolvedTerm),
		children:   make(map[string]*Scope),
	}
}

func (s *Scope) Child(name string) *Scope {
	if c, ok := s.children[name]; ok {
		return c
	}
	c := NewScope(s, name)
	s.children[name] = c
	return c
}

// QualifiedName returns the fully-scoped dotted name for an
// identifier declared directly in this scope.
func (s *Scope) QualifiedName(ident string) string {
	if s.name == "" {
		return ident
	}
	return s.name + "." + ident
}

// DeclareVar inserts a variable. A first insertion of a clashing
// symbol returns the existing symbol as a no-op; redeclaring with a
// different type is the caller's error (§3.3).
func (s *Scope) DeclareVar(v *VarDecl) (*VarDecl, error) {
	if existing, ok := s.vars[v.Name]; ok {
		if existing.Type.Equal(v.Type) {
			return existing, nil
		}
		return nil, fmt.Errorf("redeclaration of %q with a different type", v.Name)
	}
	s.vars[v.Name] = v
	s.varOrder = append(s.varOrder, v.Name)
	return v, nil
}

// DeclareFunc inserts a function declaration into the named overload
// set, creating the set on first use.
func (s *Scope) DeclareFunc(f *FunctionDecl) {
	set, ok := s.funcs[f.Name]
	if !ok {
		set = &FuncOverloadSet{Name: f.Name}
		s.funcs[f.Name] = set
	}
	set.Functions = append(set.Functions, f)
}

// DeclareOperator inserts a function into the per-scope operator
// overload set keyed by op.
func (s *Scope) DeclareOperator(op OperatorKind, f *FunctionDecl) {
	set, ok := s.operators[op]
	if !ok {
		set = &OperatorOverloadSet{Op: op}
		s.operators[op] = set
	}
	set.Functions = append(set.Functions, f)
}

func (s *Scope) DeclareAlias(a *TypeAliasDecl) (*TypeAliasDecl, error) {
	if existing, ok := s.aliases[a.Name]; ok {
		if existing.Type.Equal(a.Type) {
			return existing, nil
		}
		return nil, fmt.Errorf("redeclaration of alias %q with a different type", a.Name)
	}
	s.aliases[a.Name] = a
	return a, nil
}

func (s *Scope) DeclareStruct(info *TypeInfo) {
	s.structs[info.Name] = info
}

// DeclareUnresolved registers a placeholder for a forward reference
// (§3.3). It is replaced in place once the real declaration resolves.
func (s *Scope) DeclareUnresolved(name string) *UnresolvedTerm {
	if u, ok := s.unresolved[name]; ok {
		return u
	}
	u := &UnresolvedTerm{Name: name}
	s.unresolved[name] = u
	return u
}

// LookupVar walks this scope then parents (unqualified lookup).
func (s *Scope) LookupVar(name string) (*VarDecl, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, sc
		}
	}
	return nil, nil
}

// LookupFuncSet combines unqualified overload-set matches across the
// scope chain: every function sharing the name in any enclosing scope
// contributes candidates to the merged set (§3.3's "overload-set
// merging").
func (s *Scope) LookupFuncSet(name string) *FuncOverloadSet {
	merged := &FuncOverloadSet{Name: name}
	for sc := s; sc != nil; sc = sc.parent {
		if set, ok := sc.funcs[name]; ok {
			merged.Functions = append(merged.Functions, set.Functions...)
		}
	}
	if len(merged.Functions) == 0 {
		return nil
	}
	return merged
}

// LookupOperatorSet returns the per-scope operator overload set for
// op, checked before falling back to the built-in table (§4.3).
func (s *Scope) LookupOperatorSet(op OperatorKind) *OperatorOverloadSet {
	for sc := s; sc != nil; sc = sc.parent {
		if set, ok := sc.operators[op]; ok && len(set.Functions) > 0 {
			return set
		}
	}
	return nil
}

func (s *Scope) LookupAlias(name string) (*TypeAliasDecl, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if a, ok := sc.aliases[name]; ok {
			return a, true
		}
	}
	return nil, false
}

func (s *Scope) LookupStruct(name string) (*TypeInfo, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.structs[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DeclareVariadicExpansion registers an "original" variadic parameter
// and materializes the N monomorphic copies requested for a specific
// call site's argument count (§3.3, §4.3's "variadic pack" scoring).
func (s *Scope) DeclareVariadicExpansion(original *VarDecl, n int) *VariadicExpansion {
	ve, ok := s.variadics[original.Name]
	if !ok {
		ve = &VariadicExpansion{Original: original}
		s.variadics[original.Name] = ve
	}
	for len(ve.Copies) < n {
		idx := len(ve.Copies)
		copy := &VarDecl{
			Name: fmt.Sprintf("%s#%d", original.Name, idx),
			Type: original.Type.RemoveLayer(), // strip the variadic modifier
		}
		ve.Copies = append(ve.Copies, copy)
	}
	return ve
}
