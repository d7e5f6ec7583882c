package symbols

import (
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// Layout describes how a concrete type sits in memory. It is computed
// only for fully concrete types; generic parameters never reach here.
type Layout struct {
	Size  int
	Align int
	Kind  LayoutKind
}

// LayoutKind is the sealed layout shape sum.
type LayoutKind interface {
	isLayoutKind()
}

func (Primitive) isLayoutKind()    {}
func (StructLayout) isLayoutKind() {}
func (UnionLayout) isLayoutKind()  {}

// Primitive is a scalar that fits a register.
type Primitive struct {
	Type typesystem.Type
}

type FieldLayout struct {
	Name   string
	Offset int
	Layout Layout
}

// StructLayout is a sequence of fields at computed offsets. Tuples and
// arrays use it with synthesized field names.
type StructLayout struct {
	Fields []FieldLayout
}

// UnionLayout overlays every enum constructor payload after the
// discriminant tag.
type UnionLayout struct {
	TagSize  int
	Variants []Layout
}

// RequiresStack reports whether a value of this layout needs a stack
// slot rather than a register.
func (l Layout) RequiresStack() bool {
	_, isPrimitive := l.Kind.(Primitive)
	return !isPrimitive
}

// alignOf returns the alignment of a type under the configured policy;
// the packed policy aligns everything at byte 1.
func (st *SymTable) alignOf(t typesystem.Type) int {
	if st.layout == config.LayoutPacked {
		return 1
	}
	switch t := t.(type) {
	case typesystem.Var:
		return st.alignOfTVar(t.TVar)
	case typesystem.NamedVar:
		return st.alignOfTVar(t.TVar)
	case typesystem.TypeApp:
		return st.alignOfTVar(t.Head)
	case typesystem.Tuple:
		a := 1
		for _, e := range t.Elems {
			if ea := st.alignOf(e); ea > a {
				a = ea
			}
		}
		return a
	case typesystem.Array:
		return st.alignOf(t.Elem)
	case typesystem.Ptr, typesystem.MutPtr, typesystem.Fun:
		return st.ptrWidth
	}
	return 1
}

func (st *SymTable) alignOfTVar(tv typesystem.TVar) int {
	if n, ok := tv.BuiltinSize(st.ptrWidth); ok {
		if n == 0 {
			return 1
		}
		return n
	}
	info, ok := st.types[tv]
	if !ok {
		return 1
	}
	switch k := info.Kind.(type) {
	case StructType:
		return st.alignOfStruct(k.Fields)
	case EnumType:
		a := enumTagSize
		for _, c := range k.Constructors {
			sym, found := st.nodes[c.ID]
			if !found {
				continue
			}
			if cons, isCons := sym.Kind.(EnumConsSym); isCons {
				for _, arg := range cons.Args {
					if aa := st.alignOf(arg); aa > a {
						a = aa
					}
				}
			}
		}
		return a
	}
	return 1
}

func (st *SymTable) alignOfStruct(fields []FieldInfo) int {
	a := 1
	for _, f := range fields {
		if fa := st.alignOf(f.Type); fa > a {
			a = fa
		}
	}
	return a
}

// LayoutOf builds the full layout of a concrete, sized type. The
// second result is false when the type is unsized or not fully
// concrete.
func (st *SymTable) LayoutOf(t typesystem.Type) (Layout, bool) {
	switch t := t.(type) {
	case typesystem.Var:
		return st.layoutOfTVar(t.TVar)
	case typesystem.NamedVar:
		return st.layoutOfTVar(t.TVar)
	case typesystem.TypeApp:
		return st.layoutOfTVar(t.Head)
	case typesystem.Tuple:
		return st.layoutOfFields(tupleFields(t.Elems))
	case typesystem.Array:
		elems := make([]typesystem.Type, t.Len)
		for i := range elems {
			elems[i] = t.Elem
		}
		return st.layoutOfFields(tupleFields(elems))
	case typesystem.Ptr, typesystem.MutPtr, typesystem.Fun:
		return Layout{
			Size:  st.ptrWidth,
			Align: st.alignOf(t),
			Kind:  Primitive{Type: typesystem.Builtin("usize")},
		}, true
	}
	return Layout{}, false
}

func tupleFields(elems []typesystem.Type) []FieldInfo {
	fields := make([]FieldInfo, len(elems))
	for i, e := range elems {
		fields[i] = FieldInfo{Name: tupleFieldName(i), Type: e}
	}
	return fields
}

func tupleFieldName(i int) string {
	// matches the field-access syntax for tuples: t.0, t.1, ...
	const digits = "0123456789"
	if i < 10 {
		return digits[i : i+1]
	}
	return tupleFieldName(i/10) + digits[i%10:i%10+1]
}

func (st *SymTable) layoutOfTVar(tv typesystem.TVar) (Layout, bool) {
	if n, ok := tv.BuiltinSize(st.ptrWidth); ok {
		return Layout{
			Size:  n,
			Align: st.alignOfTVar(tv),
			Kind:  Primitive{Type: typesystem.Var{TVar: tv}},
		}, true
	}
	info, ok := st.types[tv]
	if !ok {
		return Layout{}, false
	}
	size, haveSize := st.sizes[tv]
	if !haveSize {
		return Layout{}, false
	}
	switch k := info.Kind.(type) {
	case StructType:
		l, ok := st.layoutOfFields(k.Fields)
		if !ok {
			return Layout{}, false
		}
		l.Size = size
		return l, true
	case EnumType:
		var variants []Layout
		for _, c := range k.Constructors {
			sym, found := st.nodes[c.ID]
			if !found {
				continue
			}
			cons, isCons := sym.Kind.(EnumConsSym)
			if !isCons {
				continue
			}
			vl, ok := st.layoutOfFields(tupleFields(cons.Args))
			if !ok {
				return Layout{}, false
			}
			variants = append(variants, vl)
		}
		return Layout{
			Size:  size,
			Align: st.alignOfTVar(tv),
			Kind:  UnionLayout{TagSize: enumTagSize, Variants: variants},
		}, true
	}
	return Layout{}, false
}

func (st *SymTable) layoutOfFields(fields []FieldInfo) (Layout, bool) {
	offset := 0
	out := make([]FieldLayout, 0, len(fields))
	for _, f := range fields {
		fl, ok := st.LayoutOf(f.Type)
		if !ok {
			return Layout{}, false
		}
		if st.layout == config.LayoutAligned {
			offset = alignUp(offset, fl.Align)
		}
		out = append(out, FieldLayout{Name: f.Name, Offset: offset, Layout: fl})
		offset += fl.Size
	}
	align := st.alignOfStruct(fields)
	size := offset
	if st.layout == config.LayoutAligned {
		size = alignUp(size, align)
	}
	return Layout{Size: size, Align: align, Kind: StructLayout{Fields: out}}, true
}
