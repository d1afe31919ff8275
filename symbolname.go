package bozon

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeSymbolName implements the bijective symbol-name codec of
// §3.2: a prefix-terminated grammar used both for linker symbols on
// external-linkage functions and for diagnostic demangling.
//
// forceMutTag controls whether an explicit "mut."/"const." tag is
// always emitted for this node even when `mut` is absent. It is only
// ever true when t is the pointee of an enclosing pointer, reference,
// or optional layer — the only positions where Bozon's mutability bit
// is part of the type's own spelling rather than a property of the
// binding that holds it (matching S5's `*const [3: int32]` example,
// which emits "const." for the array but not for its int32 element).
func EncodeSymbolName(t Typespec) string {
	return encodeNode(t, false)
}

func encodeNode(t Typespec, forceMutTag bool) string {
	if outer, ok := t.outer(); ok {
		rest := t.RemoveLayer()
		switch outer {
		case ModPointer:
			return "0P." + encodeNode(rest, true)
		case ModLvalueReference, ModAutoReference:
			return "0R." + encodeNode(rest, true)
		case ModMoveReference:
			return "0RR." + encodeNode(rest, true)
		case ModAutoReferenceMut:
			return "0RM." + encodeNode(rest, true)
		case ModOptional:
			return "0O." + encodeNode(rest, true)
		case ModVariadic:
			return "0V." + encodeNode(rest, forceMutTag)
		case ModConsteval:
			return "consteval." + encodeNode(rest, forceMutTag)
		case ModMut:
			return "mut." + encodeNode(rest, false)
		default:
			internalf("EncodeSymbolName: unhandled modifier %s", outer)
		}
	}
	if forceMutTag {
		return "const." + encodeTerminator(t.Term)
	}
	return encodeTerminator(t.Term)
}

func encodeTerminator(term Terminator) string {
	switch v := term.(type) {
	case nil:
		internalf("EncodeSymbolName: empty typespec has no terminator")
	case VoidTerm:
		return "void"
	case AutoTerm:
		return "auto"
	case TypenameTerm:
		return "typename"
	case UnresolvedTerm:
		return "unresolved." + v.Name
	case BaseTypeTerm:
		return v.Info.Name
	case EnumTerm:
		return "enum." + v.Decl.Name
	case ArrayTerm:
		return fmt.Sprintf("0A.1.%d.%s", v.Size, encodeNode(*v.Elem, false))
	case ArraySliceTerm:
		return "0S." + encodeNode(*v.Elem, false)
	case TupleTerm:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = encodeNode(e, false)
		}
		return fmt.Sprintf("0T.%d.%s", len(v.Elems), strings.Join(parts, "."))
	case FunctionTerm:
		parts := make([]string, len(v.Params))
		for i, p := range v.Params {
			parts[i] = encodeNode(p, false)
		}
		return fmt.Sprintf("0F.%d.%s.%s", len(v.Params), strings.Join(parts, "."), encodeNode(*v.Return, false))
	default:
		internalf("EncodeSymbolName: unhandled terminator %T", term)
	}
	return ""
}

// symDecoder is a small recursive-descent reader over the dot-split
// token stream produced by EncodeSymbolName — the exact inverse
// grammar, token by token.
type symDecoder struct {
	toks    []string
	pos     int
	interner *TypeInterner
}

// DecodeSymbolName is the exact inverse of EncodeSymbolName: for every
// complete typespec t, DecodeSymbolName(EncodeSymbolName(t)) == t
// (§8 property 1). It returns an error marker rather than panicking on
// ill-formed input (§4.1: "the codec rejects ill-formed inputs by
// returning an error marker, not by throwing").
func DecodeSymbolName(s string, interner *TypeInterner) (Typespec, error) {
	d := &symDecoder{toks: strings.Split(s, "."), interner: interner}
	t, err := d.node(false)
	if err != nil {
		return Typespec{}, err
	}
	if d.pos != len(d.toks) {
		return Typespec{}, fmt.Errorf("symbolname: trailing tokens after decoding %q", s)
	}
	return t, nil
}

func (d *symDecoder) next() (string, error) {
	if d.pos >= len(d.toks) {
		return "", fmt.Errorf("symbolname: unexpected end of input")
	}
	tok := d.toks[d.pos]
	d.pos++
	return tok, nil
}

func (d *symDecoder) node(consumedMutTag bool) (Typespec, error) {
	tok, err := d.next()
	if err != nil {
		return Typespec{}, err
	}
	switch tok {
	case "0P":
		inner, err := d.node(true)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModPointer), nil
	case "0R":
		inner, err := d.node(true)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModLvalueReference), nil
	case "0RR":
		inner, err := d.node(true)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModMoveReference), nil
	case "0RM":
		inner, err := d.node(true)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModAutoReferenceMut), nil
	case "0O":
		inner, err := d.node(true)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModOptional), nil
	case "0V":
		inner, err := d.node(consumedMutTag)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModVariadic), nil
	case "consteval":
		inner, err := d.node(consumedMutTag)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModConsteval), nil
	case "mut":
		inner, err := d.node(false)
		if err != nil {
			return Typespec{}, err
		}
		return inner.AddLayer(ModMut), nil
	case "const":
		if !consumedMutTag {
			return Typespec{}, fmt.Errorf("symbolname: unexpected `const` tag outside a pointer/reference/optional referent")
		}
		return d.node(false)
	case "void":
		return VoidTerm{}.wrap(), nil
	case "auto":
		return AutoTerm{}.wrap(), nil
	case "typename":
		return TypenameTerm{}.wrap(), nil
	case "0A":
		return d.array()
	case "0S":
		inner, err := d.node(false)
		if err != nil {
			return Typespec{}, err
		}
		return Typespec{Term: ArraySliceTerm{Elem: &inner}}, nil
	case "0T":
		return d.tuple()
	case "0F":
		return d.function()
	case "unresolved":
		name, err := d.next()
		if err != nil {
			return Typespec{}, err
		}
		return Typespec{Term: UnresolvedTerm{Name: name}}, nil
	case "enum":
		name, err := d.next()
		if err != nil {
			return Typespec{}, err
		}
		return Typespec{Term: EnumTerm{Decl: &EnumDecl{Name: name}}}, nil
	default:
		if d.interner != nil {
			if info, ok := d.interner.Builtin(tok); ok {
				return Base(info), nil
			}
		}
		return Typespec{Term: UnresolvedTerm{Name: tok}}, nil
	}
}

func (d *symDecoder) array() (Typespec, error) {
	ndimsTok, err := d.next()
	if err != nil {
		return Typespec{}, err
	}
	ndims, err := strconv.Atoi(ndimsTok)
	if err != nil || ndims != 1 {
		return Typespec{}, fmt.Errorf("symbolname: only single-dimension array codecs are supported, got %q", ndimsTok)
	}
	sizeTok, err := d.next()
	if err != nil {
		return Typespec{}, err
	}
	size, err := strconv.Atoi(sizeTok)
	if err != nil {
		return Typespec{}, fmt.Errorf("symbolname: bad array size %q: %w", sizeTok, err)
	}
	elem, err := d.node(false)
	if err != nil {
		return Typespec{}, err
	}
	return Typespec{Term: ArrayTerm{Size: size, Elem: &elem}}, nil
}

func (d *symDecoder) tuple() (Typespec, error) {
	kTok, err := d.next()
	if err != nil {
		return Typespec{}, err
	}
	k, err := strconv.Atoi(kTok)
	if err != nil {
		return Typespec{}, fmt.Errorf("symbolname: bad tuple arity %q: %w", kTok, err)
	}
	elems := make([]Typespec, k)
	for i := 0; i < k; i++ {
		e, err := d.node(false)
		if err != nil {
			return Typespec{}, err
		}
		elems[i] = e
	}
	return Typespec{Term: TupleTerm{Elems: elems}}, nil
}

func (d *symDecoder) function() (Typespec, error) {
	nTok, err := d.next()
	if err != nil {
		return Typespec{}, err
	}
	n, err := strconv.Atoi(nTok)
	if err != nil {
		return Typespec{}, fmt.Errorf("symbolname: bad function arity %q: %w", nTok, err)
	}
	params := make([]Typespec, n)
	for i := 0; i < n; i++ {
		p, err := d.node(false)
		if err != nil {
			return Typespec{}, err
		}
		params[i] = p
	}
	ret, err := d.node(false)
	if err != nil {
		return Typespec{}, err
	}
	return Typespec{Term: FunctionTerm{Params: params, Return: &ret}}, nil
}

func (VoidTerm) wrap() Typespec     { return Typespec{Term: VoidTerm{}} }
func (AutoTerm) wrap() Typespec     { return Typespec{Term: AutoTerm{}} }
func (TypenameTerm) wrap() Typespec { return Typespec{Term: TypenameTerm{}} }
