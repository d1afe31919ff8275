package bozon

// Session bundles the state every compiler phase shares, passed as a
// single *Session argument instead of kept in package-level
// statics: the type interner (structural identity of every Typespec
// seen so far), the append-only diagnostic sink, the resolved CLI
// configuration, and the root lexical scope a translation unit hangs
// its top-level declarations off of.
type Session struct {
	Interner    *TypeInterner
	Diagnostics *Diagnostics
	Config      *Config
	Root        *Scope
}

func NewSession() *Session {
	return &Session{
		Interner:    NewTypeInterner(),
		Diagnostics: &Diagnostics{},
		Config:      NewConfig(),
		Root:        NewScope(nil, "<root>"),
	}
}
