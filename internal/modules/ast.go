package modules

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Program is the output of this stage: the single spliced module tree
// with a NodeID on every declaration, plus the solved namespace tree.
type Program struct {
	Tree *Tree
	Root *Module
}

// Module is a module with its declaration id assigned. Imports are
// gone: they live on the module's scope as PendingImports and are
// consumed by the solver.
type Module struct {
	Attributes []ast.Attribute
	Visibility ast.Visibility
	ID         source.NodeID
	Name       ast.Ident
	Items      []Item
	Pos        source.Position
}

// Item is a declaration surviving past import splitting.
type Item interface {
	isItem()
}

func (*Module) isItem() {}
func (*Func) isItem()   {}
func (*Struct) isItem() {}
func (*Enum) isItem()   {}

// Func carries raw argument/return syntax and an unresolved body; the
// resolver takes those apart.
type Func struct {
	Attributes []ast.Attribute
	Visibility ast.Visibility
	ID         source.NodeID
	Name       ast.Ident
	TypeParams []ast.Ident
	Args       []ast.FnArg
	RetType    *ast.RTypeNode
	Body       *ast.ExprNode
	Pos        source.Position
}

type Struct struct {
	Attributes []ast.Attribute
	Visibility ast.Visibility
	ID         source.NodeID
	Name       ast.Ident
	TypeParams []ast.Ident
	Fields     []ast.StructField
	Methods    []*Func
	Pos        source.Position
}

type Enum struct {
	Attributes   []ast.Attribute
	Visibility   ast.Visibility
	ID           source.NodeID
	Name         ast.Ident
	TypeParams   []ast.Ident
	Constructors []Constructor
	Methods      []*Func
	Pos          source.Position
}

type Constructor struct {
	Attributes []ast.Attribute
	ID         source.NodeID
	Name       ast.Ident
	Params     []ast.RTypeNode
	Pos        source.Position
}
