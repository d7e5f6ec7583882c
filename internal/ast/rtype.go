package ast

import "github.com/mosaic-lang/mosaic/internal/source"

// RTypeNode is a raw, unresolved type annotation.
type RTypeNode struct {
	Data RType
	Pos  source.Position
}

type RType interface {
	isRType()
}

func (RTypeVar) isRType()      {}
func (RTypeTuple) isRType()    {}
func (RTypeArray) isRType()    {}
func (RTypePtr) isRType()      {}
func (RTypeMutPtr) isRType()   {}
func (RTypeSlice) isRType()    {}
func (RTypeMutSlice) isRType() {}
func (RTypeFun) isRType()      {}
func (RTypeApp) isRType()      {}

// RTypeVar names a type: `x: usize`, `p: geometry::Point`.
type RTypeVar struct {
	Path Path
}

// RTypeTuple is `(i32, char)`.
type RTypeTuple struct {
	Elems []RTypeNode
}

// RTypeArray is `[5]i32`, with a compile-time length.
type RTypeArray struct {
	Len  int
	Elem *RTypeNode
}

// RTypePtr is `*T`.
type RTypePtr struct {
	Elem *RTypeNode
}

// RTypeMutPtr is `*mut T`.
type RTypeMutPtr struct {
	Elem *RTypeNode
}

// RTypeSlice is `[]T`; the front end lowers it to a pointer.
type RTypeSlice struct {
	Elem *RTypeNode
}

// RTypeMutSlice is `[]mut T`.
type RTypeMutSlice struct {
	Elem *RTypeNode
}

// RTypeFun is `fn(i32, i32) -> bool`.
type RTypeFun struct {
	Params []RTypeNode
	Ret    *RTypeNode
}

// RTypeApp applies type arguments to a generic type: `List<T>`.
type RTypeApp struct {
	Path Path
	Args []RTypeNode
}
