// Package typesystem holds the semantic type representation: concrete
// types identified by TVars, unification variables solved by a
// union-find arena, and the unifier itself.
package typesystem

import (
	"fmt"
	"strings"

	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Type is the sealed interface of all type shapes. Use Unifier.View to
// look through resolved unification variables before switching on it.
type Type interface {
	isType()
	String() string
}

func (Unknown) isType()  {}
func (UVar) isType()     {}
func (NumUVar) isType()  {}
func (Var) isType()      {}
func (NamedVar) isType() {}
func (Tuple) isType()    {}
func (Array) isType()    {}
func (Fun) isType()      {}
func (Ptr) isType()      {}
func (MutPtr) isType()   {}
func (TypeApp) isType()  {}

// Unknown is the error placeholder type. It suppresses cascading
// diagnostics: every check against it silently succeeds downstream.
type Unknown struct{}

// UVar is an open unification variable, addressed into a Unifier arena.
type UVar struct {
	ID UVarID
}

// NumUVar is a unification variable restricted to builtin numeric
// types, produced by unsuffixed numeric literals.
type NumUVar struct {
	ID UVarID
}

// Var is a concrete type referenced without a user-visible name.
type Var struct {
	TVar TVar
}

// NamedVar is a concrete type as the user wrote it.
type NamedVar struct {
	TVar TVar
	Name string
}

type Tuple struct {
	Elems []Type
}

type Array struct {
	Len  int
	Elem Type
}

type Fun struct {
	Params []Type
	Ret    Type
}

type Ptr struct {
	Elem Type
}

type MutPtr struct {
	Elem Type
}

// TypeApp is a generic type applied to arguments, e.g. `List<i32>`.
// Head is always a KindTypeCons TVar with Arity == len(Args).
type TypeApp struct {
	Head TVar
	Name string
	Args []Type
}

// Unit is the empty tuple.
func Unit() Type { return Tuple{} }

// Builtin returns the NamedVar of a builtin type.
func Builtin(name string) Type {
	return NamedVar{TVar: MustBuiltinTVar(name), Name: name}
}

// Never is the bottom type; it coerces to anything.
func Never() Type { return Builtin("never") }

// Bool returns the builtin bool type.
func Bool() Type { return Builtin("bool") }

// NewNamedVar wraps a TVar as a type, rejecting bare references to
// generic type constructors (`List` without arguments).
func NewNamedVar(tv TVar, name string, pos source.Position) (Type, *diagnostics.Diagnostic) {
	if tv.Kind == KindTypeCons {
		return Unknown{}, diagnostics.NewError(diagnostics.ErrR001, pos,
			"wrong number of type parameters: %s expects %d, got 0", name, tv.Arity)
	}
	return NamedVar{TVar: tv, Name: name}, nil
}

// NewTypeApp applies type arguments to a constructor TVar, checking
// arity.
func NewTypeApp(tv TVar, name string, args []Type, pos source.Position) (Type, *diagnostics.Diagnostic) {
	if tv.Kind != KindTypeCons {
		return Unknown{}, diagnostics.NewError(diagnostics.ErrR001, pos,
			"wrong number of type parameters: %s expects 0, got %d", name, len(args))
	}
	if tv.Arity != len(args) {
		return Unknown{}, diagnostics.NewError(diagnostics.ErrR001, pos,
			"wrong number of type parameters: %s expects %d, got %d", name, tv.Arity, len(args))
	}
	return TypeApp{Head: tv, Name: name, Args: args}, nil
}

// Substitute replaces Parameter TVars by their instantiations. Open
// unification variables and Unknown pass through untouched.
func Substitute(t Type, subst map[TVar]Type) Type {
	switch t := t.(type) {
	case Unknown, UVar, NumUVar:
		return t
	case Var:
		if r, ok := subst[t.TVar]; ok {
			return r
		}
		return t
	case NamedVar:
		if r, ok := subst[t.TVar]; ok {
			return r
		}
		return t
	case Tuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = Substitute(e, subst)
		}
		return Tuple{Elems: elems}
	case Array:
		return Array{Len: t.Len, Elem: Substitute(t.Elem, subst)}
	case Fun:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = Substitute(p, subst)
		}
		return Fun{Params: params, Ret: Substitute(t.Ret, subst)}
	case Ptr:
		return Ptr{Elem: Substitute(t.Elem, subst)}
	case MutPtr:
		return MutPtr{Elem: Substitute(t.Elem, subst)}
	case TypeApp:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, subst)
		}
		return TypeApp{Head: t.Head, Name: t.Name, Args: args}
	}
	panic(fmt.Sprintf("unknown type shape: %T", t))
}

// SizeDependencies collects the TVars this type's size depends on.
// By-value composition (tuples, arrays, type applications) recurses;
// pointers and function types have a fixed width and break the chain;
// Parameter TVars are excluded: they get the unsized treatment until
// instantiated. Open unification variables are an invariant violation
// here: size queries only run on resolved declaration types.
func SizeDependencies(t Type) map[TVar]struct{} {
	set := make(map[TVar]struct{})
	sizeDeps(t, set)
	return set
}

func sizeDeps(t Type, set map[TVar]struct{}) {
	switch t := t.(type) {
	case Unknown:
	case UVar, NumUVar:
		panic("size dependency query on an open unification variable")
	case Var:
		if t.TVar.Kind != KindParameter {
			set[t.TVar] = struct{}{}
		}
	case NamedVar:
		if t.TVar.Kind != KindParameter {
			set[t.TVar] = struct{}{}
		}
	case TypeApp:
		if t.Head.Kind != KindParameter {
			set[t.Head] = struct{}{}
		}
		for _, a := range t.Args {
			sizeDeps(a, set)
		}
	case Tuple:
		for _, e := range t.Elems {
			sizeDeps(e, set)
		}
	case Array:
		sizeDeps(t.Elem, set)
	case Fun, Ptr, MutPtr:
		// fixed pointer width
	}
}

func (Unknown) String() string { return "{unknown}" }

func (t UVar) String() string { return fmt.Sprintf("U?#%d", t.ID) }

func (t NumUVar) String() string { return fmt.Sprintf("NU?#%d", t.ID) }

func (t Var) String() string { return t.TVar.String() }

func (t NamedVar) String() string { return t.Name }

func (t Tuple) String() string {
	return "(" + joinTypes(t.Elems) + ")"
}

func (t Array) String() string {
	return fmt.Sprintf("[%d]%s", t.Len, t.Elem)
}

func (t Fun) String() string {
	return fmt.Sprintf("fn(%s) -> %s", joinTypes(t.Params), t.Ret)
}

func (t Ptr) String() string { return "*" + t.Elem.String() }

func (t MutPtr) String() string { return "*mut " + t.Elem.String() }

func (t TypeApp) String() string {
	return fmt.Sprintf("%s<%s>", t.Name, joinTypes(t.Args))
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
