// Package checker runs bidirectional type checking over resolved
// function bodies. Expected types are pushed down the expression tree
// and unified at every node; unconstrained positions get fresh
// unification variables that must all be solved by the time a
// function's body is done.
package checker

import (
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// Program is a fully typed program. Every type below a Func is zonked:
// no unification variable survives into lowering.
type Program struct {
	Functions []*Func
	SymTable  *symbols.SymTable
}

type Arg struct {
	Name  string
	IsMut bool
	Type  typesystem.Type
}

type Func struct {
	ID      source.NodeID
	Name    string
	Args    []Arg
	RetType typesystem.Type
	Body    Expr
}

// Expr is the sealed typed expression sum.
type Expr interface {
	isExpr()
}

func (ExprError) isExpr()   {}
func (NumLit) isExpr()      {}
func (CharLit) isExpr()     {}
func (StringLit) isExpr()   {}
func (LocalVar) isExpr()    {}
func (GlobalVar) isExpr()   {}
func (TupleExpr) isExpr()   {}
func (FunCall) isExpr()     {}
func (MethodCall) isExpr()  {}
func (FieldAccess) isExpr() {}
func (StructCons) isExpr()  {}
func (Block) isExpr()       {}
func (Return) isExpr()      {}
func (Let) isExpr()         {}
func (If) isExpr()          {}
func (While) isExpr()       {}
func (Match) isExpr()       {}
func (Assign) isExpr()      {}
func (Ref) isExpr()         {}
func (RefMut) isExpr()      {}
func (Deref) isExpr()       {}
func (ArrayExact) isExpr()  {}
func (ArrayRepeat) isExpr() {}
func (IndexAccess) isExpr() {}
func (Cast) isExpr()        {}

// ExprError stands in for an expression that already produced a
// diagnostic.
type ExprError struct{}

type NumLit struct {
	Value uint64
	Type  typesystem.Type
}

type CharLit struct {
	Value byte
}

type StringLit struct {
	Value string
	Type  typesystem.Type
}

type LocalVar struct {
	Name string
	Type typesystem.Type
}

// GlobalVar references a declaration. For a generic function or
// constructor, Inst records the call site's instantiation of each
// parameter TVar; lowering specializes from it.
type GlobalVar struct {
	ID   source.NodeID
	Type typesystem.Type
	Inst map[typesystem.TVar]typesystem.Type
}

type TupleExpr struct {
	Elems []Expr
	Type  typesystem.Type
}

type FunCall struct {
	Callee   Expr
	Args     []Expr
	ArgTypes []typesystem.Type
	RetType  typesystem.Type
}

// MethodCall carries the dispatched method's declaration id; the
// receiver is passed as the implicit first argument.
type MethodCall struct {
	Recv     Expr
	Method   source.NodeID
	Args     []Expr
	ArgTypes []typesystem.Type
	RetType  typesystem.Type
	Inst     map[typesystem.TVar]typesystem.Type
}

type FieldAccess struct {
	Object    Expr
	Name      string
	Index     int
	ObjType   typesystem.Type
	FieldType typesystem.Type
}

type Init struct {
	Name  string
	Index int
	Expr  Expr
}

type StructCons struct {
	ID    source.NodeID
	Type  typesystem.Type
	Inits []Init
	Inst  map[typesystem.TVar]typesystem.Type
}

type Block struct {
	Stmts []Expr
	Last  Expr
	Type  typesystem.Type
}

type Return struct {
	Value   Expr
	RetType typesystem.Type
}

type Let struct {
	Name  string
	IsMut bool
	Type  typesystem.Type
	Value Expr
}

type If struct {
	Cond Expr
	Then Expr
	Else Expr // unit literal when the source had no else branch
	Type typesystem.Type
}

type While struct {
	Cond Expr
	Body Expr
}

type MatchClause struct {
	Pattern Pattern
	Expr    Expr
}

type Match struct {
	Scrutinee Expr
	ScrutType typesystem.Type
	Clauses   []MatchClause
	Type      typesystem.Type
}

type Assign struct {
	Target Expr
	Value  Expr
	Type   typesystem.Type
}

type Ref struct {
	Expr Expr
	Type typesystem.Type
}

type RefMut struct {
	Expr Expr
	Type typesystem.Type
}

type Deref struct {
	Expr     Expr
	ElemType typesystem.Type
}

type ArrayExact struct {
	Elems    []Expr
	ElemType typesystem.Type
}

type ArrayRepeat struct {
	Elem     Expr
	Count    int
	ElemType typesystem.Type
}

type IndexAccess struct {
	Expr     Expr
	Index    Expr
	ElemType typesystem.Type
}

type Cast struct {
	Expr Expr
	From typesystem.Type
	To   typesystem.Type
}

// Pattern is the sealed typed pattern sum.
type Pattern interface {
	isPattern()
}

func (PatError) isPattern()    {}
func (PatWildcard) isPattern() {}
func (PatNumber) isPattern()   {}
func (PatVar) isPattern()      {}
func (PatTuple) isPattern()    {}
func (PatCons) isPattern()     {}

type PatError struct{}

type PatWildcard struct{}

type PatNumber struct {
	Value uint64
	Type  typesystem.Type
}

type PatVar struct {
	Name string
	Type typesystem.Type
}

type PatTuple struct {
	Elems []Pattern
}

// PatCons matches one enum constructor; ArgTypes are the constructor's
// argument types under the match's instantiation.
type PatCons struct {
	ID       source.NodeID
	Elems    []Pattern
	ArgTypes []typesystem.Type
	Inst     map[typesystem.TVar]typesystem.Type
}
