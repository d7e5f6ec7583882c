package ast

import "github.com/mosaic-lang/mosaic/internal/source"

// ExprNode is a raw expression with its position.
type ExprNode struct {
	Data Expr
	Pos  source.Position
}

type Expr interface {
	isExpr()
}

func (ExprError) isExpr()       {}
func (ExprVar) isExpr()         {}
func (ExprNum) isExpr()         {}
func (ExprChar) isExpr()        {}
func (ExprString) isExpr()      {}
func (ExprTuple) isExpr()       {}
func (ExprCall) isExpr()        {}
func (ExprMethodCall) isExpr()  {}
func (ExprField) isExpr()       {}
func (ExprClosedBlock) isExpr() {}
func (ExprOpenBlock) isExpr()   {}
func (ExprReturn) isExpr()      {}
func (ExprLet) isExpr()         {}
func (ExprMatch) isExpr()       {}
func (ExprRef) isExpr()         {}
func (ExprRefMut) isExpr()      {}
func (ExprDeref) isExpr()       {}
func (ExprIf) isExpr()          {}
func (ExprWhile) isExpr()       {}
func (ExprStructCons) isExpr()  {}
func (ExprAssign) isExpr()      {}
func (ExprArrayExact) isExpr()  {}
func (ExprArrayRepeat) isExpr() {}
func (ExprIndex) isExpr()       {}
func (ExprCast) isExpr()        {}

// ExprError is a parser recovery placeholder.
type ExprError struct{}

// ExprVar references a variable or item by path.
type ExprVar struct {
	Path Path
}

type ExprNum struct {
	Value uint64
}

type ExprChar struct {
	Value byte
}

type ExprString struct {
	Value string
}

type ExprTuple struct {
	Elems []ExprNode
}

// ExprCall calls a callable expression. Tuple enum constructors are
// also spelled as calls.
type ExprCall struct {
	Callee *ExprNode
	Args   []ExprNode
}

type ExprMethodCall struct {
	Recv *ExprNode
	Name Ident
	Args []ExprNode
}

type ExprField struct {
	Recv *ExprNode
	Name Ident
}

// ExprClosedBlock is `{ e1; e2; }`; its value is unit.
type ExprClosedBlock struct {
	Stmts []ExprNode
}

// ExprOpenBlock is `{ e1; e2; last }`; its value is last's.
type ExprOpenBlock struct {
	Stmts []ExprNode
	Last  *ExprNode
}

// ExprReturn returns early; a missing value defaults to unit.
type ExprReturn struct {
	Value *ExprNode
}

type ExprLet struct {
	Name  Ident
	IsMut bool
	Type  *RTypeNode // nil when inferred
	Value *ExprNode
}

type ExprMatch struct {
	Subject *ExprNode
	Clauses []MatchClause
}

type ExprRef struct {
	Operand *ExprNode
}

type ExprRefMut struct {
	Operand *ExprNode
}

type ExprDeref struct {
	Operand *ExprNode
}

// ExprIf defaults a missing else branch to unit.
type ExprIf struct {
	Cond *ExprNode
	Then *ExprNode
	Else *ExprNode // may be nil
}

type ExprWhile struct {
	Cond *ExprNode
	Body *ExprNode
}

type ExprStructCons struct {
	Path   Path
	Fields []FieldInit
}

type FieldInit struct {
	Name  Ident
	Value ExprNode
}

type ExprAssign struct {
	LHS *ExprNode
	RHS *ExprNode
}

type ExprArrayExact struct {
	Elems []ExprNode
}

type ExprArrayRepeat struct {
	Elem  *ExprNode
	Count int
}

type ExprIndex struct {
	Recv  *ExprNode
	Index *ExprNode
}

type ExprCast struct {
	Value *ExprNode
	Type  RTypeNode
}

// MatchClause is one `pattern => expr` arm.
type MatchClause struct {
	Pattern PatternNode
	Expr    ExprNode
	Pos     source.Position
}

type PatternNode struct {
	Data Pattern
	Pos  source.Position
}

type Pattern interface {
	isPattern()
}

func (PatWildcard) isPattern() {}
func (PatNumber) isPattern()   {}
func (PatVar) isPattern()      {}
func (PatTuple) isPattern()    {}
func (PatCons) isPattern()     {}

type PatWildcard struct{}

type PatNumber struct {
	Value uint64
}

type PatVar struct {
	Name Ident
}

type PatTuple struct {
	Elems []PatternNode
}

// PatCons matches a tuple enum constructor.
type PatCons struct {
	Path  Path
	Elems []PatternNode
}
