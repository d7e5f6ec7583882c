// Package symbols holds the symbol and type table: per-declaration
// metadata keyed by NodeID, per-type metadata keyed by TVar, and type
// sizes computed over the topologically sorted size-dependency graph.
// It is built once, after every signature exists and before any body
// is checked, so layout queries are available during checking.
package symbols

import (
	"sort"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// SymKind is the sealed metadata sum per declaration kind.
type SymKind interface {
	isSymKind()
}

func (FuncSym) isSymKind()     {}
func (StructSym) isSymKind()   {}
func (EnumSym) isSymKind()     {}
func (EnumConsSym) isSymKind() {}

// FuncSym carries a function's checked signature. Params holds the
// generic parameter TVars in declaration order, the receiver type's
// parameters first for methods.
type FuncSym struct {
	Params []typesystem.TVar
	Args   []typesystem.Type
	Ret    typesystem.Type
}

type StructSym struct {
	TVar typesystem.TVar
}

type EnumSym struct {
	TVar typesystem.TVar
}

// EnumConsSym is one constructor; Index is its ordinal within the
// owning enum, Parent the enum's declaration.
type EnumConsSym struct {
	Index  int
	Args   []typesystem.Type
	Parent source.NodeID
}

// SymInfo is the per-declaration record.
type SymInfo struct {
	Name        string
	Pos         source.Position
	Kind        SymKind
	BuiltinName string
	IsExtern    bool
	Mangle      bool
}

// NewSymInfo builds a SymInfo with default flags.
func NewSymInfo(name string, pos source.Position, kind SymKind) *SymInfo {
	return &SymInfo{Name: name, Pos: pos, Kind: kind, Mangle: true}
}

// WithAttributes applies attribute-derived flags.
func (s *SymInfo) WithAttributes(attrs []ast.Attribute) *SymInfo {
	for _, a := range attrs {
		switch a.Name.Name {
		case config.AttrExtern:
			s.IsExtern = true
		case config.AttrNoMangle:
			s.Mangle = false
		case config.AttrBuiltin:
			s.BuiltinName = s.Name
		}
	}
	return s
}

// FieldInfo keeps the declared field order; sizing and layout follow
// it.
type FieldInfo struct {
	Name string
	Type typesystem.Type
}

// ConsInfo is a constructor reference in declaration order.
type ConsInfo struct {
	Name string
	ID   source.NodeID
}

// TypeKind is the sealed per-type metadata sum.
type TypeKind interface {
	isTypeKind()
}

func (BuiltinType) isTypeKind() {}
func (StructType) isTypeKind()  {}
func (EnumType) isTypeKind()    {}

type BuiltinType struct{}

type StructType struct {
	Params []typesystem.TVar
	Fields []FieldInfo
}

type EnumType struct {
	Params       []typesystem.TVar
	Constructors []ConsInfo
}

// TypeInfo is the per-type record.
type TypeInfo struct {
	Name    string
	Pos     source.Position
	Methods map[string]source.NodeID
	Kind    TypeKind
}

// Field returns the named field's type.
func (ti *TypeInfo) Field(name string) (typesystem.Type, bool) {
	st, ok := ti.Kind.(StructType)
	if !ok {
		return nil, false
	}
	for _, f := range st.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// SizeClass classifies a size query result.
type SizeClass int

const (
	// SizeSized carries a concrete byte count.
	SizeSized SizeClass = iota
	// SizeUnsized marks a type whose size could not be computed
	// (cyclic, generic, or depending on an unsized type).
	SizeUnsized
	// SizeUnknown marks an error placeholder; cascades are suppressed.
	SizeUnknown
	// SizeNotUnified marks an open unification variable reaching a
	// size query. Outside active type checking it is an invariant
	// violation.
	SizeNotUnified
)

type TypeSize struct {
	Class SizeClass
	Bytes int
}

func sized(n int) TypeSize { return TypeSize{Class: SizeSized, Bytes: n} }

// SymTable is the frozen symbol/type table handed to the checker and
// the lowering stages.
type SymTable struct {
	nodes    map[source.NodeID]*SymInfo
	types    map[typesystem.TVar]*TypeInfo
	order    []typesystem.TVar
	sizes    map[typesystem.TVar]int
	ptrWidth int
	layout   config.LayoutPolicy
}

// New builds the table: dependency graph, topological order, cycle
// diagnostics, sizes, and signature size checks. Construction always
// completes; problems accumulate as diagnostics.
func New(ctx *diagnostics.Context, proj *config.Project, nodes map[source.NodeID]*SymInfo, types map[typesystem.TVar]*TypeInfo) *SymTable {
	st := &SymTable{
		nodes:    nodes,
		types:    types,
		sizes:    make(map[typesystem.TVar]int),
		ptrWidth: proj.PointerWidth,
		layout:   proj.Layout,
	}
	graph := st.depGraph()
	order, cyclic := topoSort(graph)
	st.order = order
	for _, tv := range cyclic {
		info := types[tv]
		ctx.Report(diagnostics.NewError(diagnostics.ErrS001, info.Pos,
			"recursive type %s has infinite size", info.Name).
			WithNote("break the cycle with a pointer field"))
	}
	st.calculateSizes(ctx)
	st.checkSizes(ctx)
	return st
}

// TypeOrder returns every sized TVar in dependency order.
func (st *SymTable) TypeOrder() []typesystem.TVar { return st.order }

// FindSymInfo returns the record of a declaration.
func (st *SymTable) FindSymInfo(id source.NodeID) (*SymInfo, bool) {
	s, ok := st.nodes[id]
	return s, ok
}

// FindTypeInfo returns the record of a type.
func (st *SymTable) FindTypeInfo(tv typesystem.TVar) (*TypeInfo, bool) {
	t, ok := st.types[tv]
	return t, ok
}

// FindBuiltin returns the record of a builtin type by name.
func (st *SymTable) FindBuiltin(name string) (*TypeInfo, bool) {
	tv, ok := typesystem.BuiltinTVar(name)
	if !ok {
		return nil, false
	}
	return st.FindTypeInfo(tv)
}

// Symbols returns the declaration ids in sorted order.
func (st *SymTable) Symbols() []source.NodeID {
	ids := make([]source.NodeID, 0, len(st.nodes))
	for id := range st.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sizeof computes the byte size of a type under the configured layout
// policy.
func (st *SymTable) Sizeof(t typesystem.Type) TypeSize {
	switch t := t.(type) {
	case typesystem.Unknown:
		return TypeSize{Class: SizeUnknown}
	case typesystem.UVar, typesystem.NumUVar:
		return TypeSize{Class: SizeNotUnified}
	case typesystem.Var:
		return st.tvarSize(t.TVar)
	case typesystem.NamedVar:
		return st.tvarSize(t.TVar)
	case typesystem.TypeApp:
		return st.tvarSize(t.Head)
	case typesystem.Tuple:
		return st.sumSizes(t.Elems)
	case typesystem.Array:
		elem := st.Sizeof(t.Elem)
		if elem.Class != SizeSized {
			return elem
		}
		return sized(elem.Bytes * t.Len)
	case typesystem.Fun, typesystem.Ptr, typesystem.MutPtr:
		// function values are function pointers, same as LayoutOf
		return sized(st.ptrWidth)
	}
	return TypeSize{Class: SizeUnknown}
}

func (st *SymTable) tvarSize(tv typesystem.TVar) TypeSize {
	if n, ok := st.sizes[tv]; ok {
		return sized(n)
	}
	return TypeSize{Class: SizeUnsized}
}

func (st *SymTable) sumSizes(ts []typesystem.Type) TypeSize {
	total := 0
	for _, t := range ts {
		s := st.Sizeof(t)
		if s.Class != SizeSized {
			return s
		}
		total += s.Bytes
	}
	return sized(total)
}

// checkSizes verifies that every function and constructor signature
// is made of sized types. Generic signatures are exempt: a parameter
// has no size until instantiated.
func (st *SymTable) checkSizes(ctx *diagnostics.Context) {
	for _, id := range st.Symbols() {
		sym := st.nodes[id]
		var types []typesystem.Type
		switch k := sym.Kind.(type) {
		case FuncSym:
			types = append(append([]typesystem.Type{}, k.Args...), k.Ret)
		case EnumConsSym:
			types = k.Args
		default:
			continue
		}
		for _, t := range types {
			if mentionsParameter(t) {
				continue
			}
			if st.Sizeof(t).Class == SizeUnsized {
				ctx.Report(diagnostics.NewError(diagnostics.ErrS002, sym.Pos,
					"%s uses a type with no known size", sym.Name))
				break
			}
		}
	}
}

func mentionsParameter(t typesystem.Type) bool {
	switch t := t.(type) {
	case typesystem.Var:
		return t.TVar.Kind == typesystem.KindParameter
	case typesystem.NamedVar:
		return t.TVar.Kind == typesystem.KindParameter
	case typesystem.Tuple:
		for _, e := range t.Elems {
			if mentionsParameter(e) {
				return true
			}
		}
	case typesystem.Array:
		return mentionsParameter(t.Elem)
	case typesystem.Fun:
		for _, p := range t.Params {
			if mentionsParameter(p) {
				return true
			}
		}
		return mentionsParameter(t.Ret)
	case typesystem.Ptr:
		return mentionsParameter(t.Elem)
	case typesystem.MutPtr:
		return mentionsParameter(t.Elem)
	case typesystem.TypeApp:
		if t.Head.Kind == typesystem.KindParameter {
			return true
		}
		for _, a := range t.Args {
			if mentionsParameter(a) {
				return true
			}
		}
	}
	return false
}
