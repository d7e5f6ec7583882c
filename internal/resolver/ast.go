// Package resolver links the scope-resolved module tree: every path
// becomes a Local or Global reference, every type annotation becomes a
// semantic Type, and every declaration gets its SymInfo/TypeInfo
// registered. Its output feeds the symbol table and the checker.
package resolver

import (
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// Program is the resolved program: the flat function list (methods
// included) and the symbol table built from every signature.
type Program struct {
	Functions []*Func
	SymTable  *symbols.SymTable
}

// SymRef is a resolved variable reference.
type SymRef interface {
	isSymRef()
}

func (LocalRef) isSymRef()  {}
func (GlobalRef) isSymRef() {}

// LocalRef names a function argument or let binding.
type LocalRef struct {
	Name string
}

// GlobalRef points at a declaration.
type GlobalRef struct {
	ID source.NodeID
}

type FnArg struct {
	IsMut bool
	Name  string
	Type  typesystem.Type
	Pos   source.Position
}

// Func is a resolved function. Params holds its generic parameter
// TVars in declaration order; the body still carries unchecked
// expressions.
type Func struct {
	ID      source.NodeID
	Name    string
	Params  []typesystem.TVar
	Args    []FnArg
	RetType typesystem.Type
	Body    ExprNode
	Pos     source.Position
}

type ExprNode struct {
	Data ExprData
	Pos  source.Position
}

// ExprData is the sealed resolved expression sum.
type ExprData interface {
	isExprData()
}

func (ExprError) isExprData()   {}
func (Var) isExprData()         {}
func (NumLit) isExprData()      {}
func (CharLit) isExprData()     {}
func (StringLit) isExprData()   {}
func (TupleExpr) isExprData()   {}
func (Block) isExprData()       {}
func (Return) isExprData()      {}
func (Let) isExprData()         {}
func (If) isExprData()          {}
func (While) isExprData()       {}
func (Match) isExprData()       {}
func (StructCons) isExprData()  {}
func (Assign) isExprData()      {}
func (FunCall) isExprData()     {}
func (MethodCall) isExprData()  {}
func (FieldAccess) isExprData() {}
func (Ref) isExprData()         {}
func (RefMut) isExprData()      {}
func (Deref) isExprData()       {}
func (ArrayExact) isExprData()  {}
func (ArrayRepeat) isExprData() {}
func (IndexAccess) isExprData() {}
func (Cast) isExprData()        {}

// ExprError replaces an expression that failed to resolve; downstream
// checks pass through it silently.
type ExprError struct{}

type Var struct {
	Ref SymRef
}

type NumLit struct {
	Value uint64
}

type CharLit struct {
	Value byte
}

type StringLit struct {
	Value string
}

type TupleExpr struct {
	Elems []ExprNode
}

// Block is a sequence of statements and a result expression. A closed
// block's result is a synthesized unit tuple.
type Block struct {
	Stmts []ExprNode
	Last  *ExprNode
}

type Return struct {
	Value *ExprNode
}

type Let struct {
	Name  string
	IsMut bool
	Type  typesystem.Type // nil without annotation
	Value *ExprNode
}

type If struct {
	Cond *ExprNode
	Then *ExprNode
	Else *ExprNode
}

type While struct {
	Cond *ExprNode
	Body *ExprNode
}

type Match struct {
	Scrutinee *ExprNode
	Clauses   []MatchClause
}

type MatchClause struct {
	Pattern PatternNode
	Expr    ExprNode
	Pos     source.Position
}

type FieldInit struct {
	Name string
	Expr ExprNode
	Pos  source.Position
}

// StructCons keeps initializers in source order; the checker validates
// completeness against the struct's field list.
type StructCons struct {
	ID     source.NodeID
	Fields []FieldInit
}

type Assign struct {
	Target *ExprNode
	Value  *ExprNode
}

type FunCall struct {
	Callee *ExprNode
	Args   []ExprNode
}

type MethodCall struct {
	Recv *ExprNode
	Name string
	Args []ExprNode
}

type FieldAccess struct {
	Expr *ExprNode
	Name string
}

type Ref struct {
	Expr *ExprNode
}

type RefMut struct {
	Expr *ExprNode
}

type Deref struct {
	Expr *ExprNode
}

type ArrayExact struct {
	Elems []ExprNode
}

type ArrayRepeat struct {
	Elem  *ExprNode
	Count int
}

type IndexAccess struct {
	Expr  *ExprNode
	Index *ExprNode
}

type Cast struct {
	Expr *ExprNode
	Type typesystem.Type
}

type PatternNode struct {
	Data PatternData
	Pos  source.Position
}

// PatternData is the sealed resolved pattern sum.
type PatternData interface {
	isPatternData()
}

func (PatError) isPatternData()    {}
func (PatWildcard) isPatternData() {}
func (PatNumber) isPatternData()   {}
func (PatVar) isPatternData()      {}
func (PatTuple) isPatternData()    {}
func (PatCons) isPatternData()     {}

type PatError struct{}

type PatWildcard struct{}

type PatNumber struct {
	Value uint64
}

type PatVar struct {
	Name string
}

type PatTuple struct {
	Elems []PatternNode
}

type PatCons struct {
	ID    source.NodeID
	Elems []PatternNode
}
