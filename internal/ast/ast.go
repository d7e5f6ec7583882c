// Package ast defines the module tree produced by the parser.
//
// Paths and type annotations are still raw here: names are dotted
// paths, types are syntax. The module-tree, resolver and checker
// stages progressively replace them with linked representations.
package ast

import (
	"strings"

	"github.com/mosaic-lang/mosaic/internal/source"
)

// Visibility of a declaration or import.
type Visibility int

const (
	Private Visibility = iota
	Public
)

// Ident is a name with its position.
type Ident struct {
	Name string
	Pos  source.Position
}

// Path is a non-empty dotted name, e.g. `std::io::println`.
type Path struct {
	Segments []Ident
}

func NewPath(segments ...Ident) Path {
	return Path{Segments: segments}
}

// First returns the leading segment.
func (p Path) First() Ident { return p.Segments[0] }

// Rest returns the path without its leading segment.
func (p Path) Rest() Path { return Path{Segments: p.Segments[1:]} }

// Last returns the final segment.
func (p Path) Last() Ident { return p.Segments[len(p.Segments)-1] }

// Single returns the sole segment of a one-segment path.
func (p Path) Single() (Ident, bool) {
	if len(p.Segments) == 1 {
		return p.Segments[0], true
	}
	return Ident{}, false
}

func (p Path) Len() int { return len(p.Segments) }

// Prepend returns a path with name pushed in front.
func (p Path) Prepend(name Ident) Path {
	segs := make([]Ident, 0, len(p.Segments)+1)
	segs = append(segs, name)
	segs = append(segs, p.Segments...)
	return Path{Segments: segs}
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(s.Name)
	}
	return b.String()
}

// Attribute is a raw `@name(args)` annotation on a declaration.
type Attribute struct {
	Name Ident
	Args []string
	Pos  source.Position
}

// HasAttr reports whether attrs contains an attribute called name.
func HasAttr(attrs []Attribute, name string) bool {
	for _, a := range attrs {
		if a.Name.Name == name {
			return true
		}
	}
	return false
}

// AttrArg returns the first argument of the named attribute.
func AttrArg(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Name == name && len(a.Args) > 0 {
			return a.Args[0], true
		}
	}
	return "", false
}

// Program is the set of parsed files. Each file implements the module
// named by its path: foo/bar.mos and foo/bar/mod.mos both implement
// the module [foo, bar].
type Program struct {
	Files map[string]*Module
}

// FileKey joins a module path into a Program.Files key.
func FileKey(path []string) string {
	return strings.Join(path, "::")
}

// Module is one `mod name { items }` (or one file).
type Module struct {
	Attributes []Attribute
	Visibility Visibility
	Name       Ident
	Items      []ModuleItem
	Pos        source.Position
}

// ModuleItem is anything declarable inside a module.
type ModuleItem interface {
	isModuleItem()
}

func (*Module) isModuleItem()     {}
func (*ModuleDecl) isModuleItem() {}
func (*Import) isModuleItem()     {}
func (*Func) isModuleItem()       {}
func (*Struct) isModuleItem()     {}
func (*Enum) isModuleItem()       {}
func (*ItemError) isModuleItem()  {}

// ModuleDecl declares a module implemented in a separate file:
// `mod name;`.
type ModuleDecl struct {
	Attributes []Attribute
	Visibility Visibility
	Name       Ident
	Pos        source.Position
}

// ItemError is a parser recovery placeholder.
type ItemError struct {
	Pos source.Position
}

// Import is a (possibly nested) import statement:
// `pub import foo::{bar::{x, y as z}, qux::*};`.
type Import struct {
	Visibility Visibility
	Root       ImportPathNode
	Pos        source.Position
}

type ImportPathNode struct {
	Data ImportPath
	Pos  source.Position
}

type ImportPath interface {
	isImportPath()
}

func (ImportAll) isImportPath()   {}
func (ImportExact) isImportPath() {}
func (ImportSeq) isImportPath()   {}
func (ImportMany) isImportPath()  {}

// ImportAll glob imports every item: `import std::*`.
type ImportAll struct{}

// ImportExact imports one item with an optional alias.
type ImportExact struct {
	Name  Ident
	Alias *Ident
}

// ImportSeq is one path step: `std::<rest>`.
type ImportSeq struct {
	Name Ident
	Next *ImportPathNode
}

// ImportMany imports several subtrees from one prefix.
type ImportMany struct {
	Paths []ImportPathNode
}

// Func is a function declaration. The body may be omitted for extern
// and builtin functions.
type Func struct {
	Attributes []Attribute
	Visibility Visibility
	Name       Ident
	TypeParams []Ident
	Args       []FnArg
	RetType    *RTypeNode
	Body       *ExprNode
	Pos        source.Position
}

// FnArgKind distinguishes named arguments from the receiver forms.
type FnArgKind int

const (
	ArgNamed FnArgKind = iota
	ArgSelf
	ArgPtrSelf
	ArgMutPtrSelf
)

type FnArg struct {
	Kind  FnArgKind
	IsMut bool
	Name  Ident      // ArgNamed only
	Type  *RTypeNode // ArgNamed only
	Pos   source.Position
}

// Struct is a struct declaration with an optional method block.
type Struct struct {
	Attributes []Attribute
	Visibility Visibility
	Name       Ident
	TypeParams []Ident
	Fields     []StructField
	Methods    []*Func
	Pos        source.Position
}

type StructField struct {
	Name Ident
	Type RTypeNode
}

// Enum is an enum declaration with tuple-style constructors and an
// optional method block.
type Enum struct {
	Attributes   []Attribute
	Visibility   Visibility
	Name         Ident
	TypeParams   []Ident
	Constructors []Constructor
	Methods      []*Func
	Pos          source.Position
}

type Constructor struct {
	Attributes []Attribute
	Name       Ident
	Params     []RTypeNode
	Pos        source.Position
}
