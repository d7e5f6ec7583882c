package typesystem

import "fmt"

// TVarKind classifies a type variable.
type TVarKind uint8

const (
	// KindParameter is a generic parameter; it never receives a size
	// and is substituted away at instantiation.
	KindParameter TVarKind = iota
	// KindType is a proper type (struct, enum or builtin).
	KindType
	// KindTypeCons is a type constructor awaiting Arity arguments.
	KindTypeCons
)

// TVar identifies a semantic type: a struct, enum, builtin primitive
// or generic parameter. Builtins occupy the reserved id range 1..13;
// user TVars come from a TVarAlloc.
type TVar struct {
	ID    uint32
	Kind  TVarKind
	Arity int // KindTypeCons only
}

// BuiltinTypeNames lists every builtin type, in reserved-id order.
var BuiltinTypeNames = [...]string{
	"never", "bool", "order",
	"u8", "u16", "u32", "u64", "usize",
	"i8", "i16", "i32", "i64", "isize",
}

const (
	neverID uint32 = iota + 1
	boolID
	orderID
	u8ID
	u16ID
	u32ID
	u64ID
	usizeID
	i8ID
	i16ID
	i32ID
	i64ID
	isizeID
)

// firstUserTVarID keeps user ids clear of every reserved builtin id.
const firstUserTVarID uint32 = 64

// BuiltinTVar returns the reserved TVar of a builtin type name.
func BuiltinTVar(name string) (TVar, bool) {
	for i, n := range BuiltinTypeNames {
		if n == name {
			return TVar{ID: uint32(i) + 1, Kind: KindType}, true
		}
	}
	return TVar{}, false
}

// MustBuiltinTVar is BuiltinTVar for names known at compile time.
func MustBuiltinTVar(name string) TVar {
	tv, ok := BuiltinTVar(name)
	if !ok {
		panic(fmt.Sprintf("not a builtin type name: %s", name))
	}
	return tv
}

// IsBuiltin reports whether the TVar is in the reserved range.
func (tv TVar) IsBuiltin() bool {
	return tv.ID >= neverID && tv.ID <= isizeID
}

// IsNever reports whether this is the bottom type.
func (tv TVar) IsNever() bool { return tv.ID == neverID }

// IsNumeric reports whether the TVar is a builtin integer type.
func (tv TVar) IsNumeric() bool {
	return tv.ID >= u8ID && tv.ID <= isizeID
}

// BuiltinName returns the builtin type name of a reserved TVar.
func (tv TVar) BuiltinName() (string, bool) {
	if !tv.IsBuiltin() {
		return "", false
	}
	return BuiltinTypeNames[tv.ID-1], true
}

// BuiltinSize returns the byte size of a builtin type. The pointer
// width decides usize/isize.
func (tv TVar) BuiltinSize(ptrWidth int) (int, bool) {
	switch tv.ID {
	case neverID:
		return 0, true
	case boolID, orderID, u8ID, i8ID:
		return 1, true
	case u16ID, i16ID:
		return 2, true
	case u32ID, i32ID:
		return 4, true
	case u64ID, i64ID:
		return 8, true
	case usizeID, isizeID:
		return ptrWidth, true
	}
	return 0, false
}

func (tv TVar) String() string {
	if name, ok := tv.BuiltinName(); ok {
		return name
	}
	return fmt.Sprintf("T#%d", tv.ID)
}

// TVarAlloc hands out fresh user TVars. It is owned by the pipeline
// context so allocation order is deterministic across runs.
type TVarAlloc struct {
	next uint32
}

func NewTVarAlloc() *TVarAlloc {
	return &TVarAlloc{next: firstUserTVarID}
}

// FreshType allocates a TVar for a monomorphic struct or enum.
func (a *TVarAlloc) FreshType() TVar {
	id := a.next
	a.next++
	return TVar{ID: id, Kind: KindType}
}

// FreshParameter allocates a generic parameter TVar.
func (a *TVarAlloc) FreshParameter() TVar {
	id := a.next
	a.next++
	return TVar{ID: id, Kind: KindParameter}
}

// FreshTypeCons allocates a TVar for a generic struct or enum that
// expects arity type arguments.
func (a *TVarAlloc) FreshTypeCons(arity int) TVar {
	id := a.next
	a.next++
	return TVar{ID: id, Kind: KindTypeCons, Arity: arity}
}
