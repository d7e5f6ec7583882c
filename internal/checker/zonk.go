package checker

import (
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// zonker deep-substitutes solved unification variables throughout a
// typed body. Variables still open at this point were already reported
// by env.finish; they collapse to Unknown so lowering never sees a
// UVar. If one collapses without a prior diagnostic, the checker's own
// invariant is broken.
type zonker struct {
	u    *typesystem.Unifier
	open bool
}

func (c *checker) zonkFunc(body Expr) (Expr, error) {
	z := &zonker{u: c.env.u}
	body = z.expr(body)
	if z.open && !c.ctx.HasErrors() {
		return nil, diagnostics.Internalf("open unification variable survived a clean check")
	}
	return body, nil
}

func (z *zonker) tp(t typesystem.Type) typesystem.Type {
	if t == nil {
		return nil
	}
	out, ok := z.u.Zonk(t)
	if !ok {
		z.open = true
		return typesystem.Unknown{}
	}
	return out
}

func (z *zonker) inst(m map[typesystem.TVar]typesystem.Type) map[typesystem.TVar]typesystem.Type {
	for k, v := range m {
		m[k] = z.tp(v)
	}
	return m
}

func (z *zonker) exprs(in []Expr) []Expr {
	for i, e := range in {
		in[i] = z.expr(e)
	}
	return in
}

func (z *zonker) tps(in []typesystem.Type) []typesystem.Type {
	for i, t := range in {
		in[i] = z.tp(t)
	}
	return in
}

func (z *zonker) expr(e Expr) Expr {
	switch e := e.(type) {
	case ExprError, CharLit:
		return e
	case NumLit:
		e.Type = z.tp(e.Type)
		return e
	case StringLit:
		e.Type = z.tp(e.Type)
		return e
	case LocalVar:
		e.Type = z.tp(e.Type)
		return e
	case GlobalVar:
		e.Type = z.tp(e.Type)
		e.Inst = z.inst(e.Inst)
		return e
	case TupleExpr:
		e.Elems = z.exprs(e.Elems)
		e.Type = z.tp(e.Type)
		return e
	case FunCall:
		e.Callee = z.expr(e.Callee)
		e.Args = z.exprs(e.Args)
		e.ArgTypes = z.tps(e.ArgTypes)
		e.RetType = z.tp(e.RetType)
		return e
	case MethodCall:
		e.Recv = z.expr(e.Recv)
		e.Args = z.exprs(e.Args)
		e.ArgTypes = z.tps(e.ArgTypes)
		e.RetType = z.tp(e.RetType)
		e.Inst = z.inst(e.Inst)
		return e
	case FieldAccess:
		e.Object = z.expr(e.Object)
		e.ObjType = z.tp(e.ObjType)
		e.FieldType = z.tp(e.FieldType)
		return e
	case StructCons:
		for i, init := range e.Inits {
			e.Inits[i].Expr = z.expr(init.Expr)
		}
		e.Type = z.tp(e.Type)
		e.Inst = z.inst(e.Inst)
		return e
	case Block:
		e.Stmts = z.exprs(e.Stmts)
		e.Last = z.expr(e.Last)
		e.Type = z.tp(e.Type)
		return e
	case Return:
		e.Value = z.expr(e.Value)
		e.RetType = z.tp(e.RetType)
		return e
	case Let:
		e.Value = z.expr(e.Value)
		e.Type = z.tp(e.Type)
		return e
	case If:
		e.Cond = z.expr(e.Cond)
		e.Then = z.expr(e.Then)
		e.Else = z.expr(e.Else)
		e.Type = z.tp(e.Type)
		return e
	case While:
		e.Cond = z.expr(e.Cond)
		e.Body = z.expr(e.Body)
		return e
	case Match:
		e.Scrutinee = z.expr(e.Scrutinee)
		e.ScrutType = z.tp(e.ScrutType)
		for i, cl := range e.Clauses {
			e.Clauses[i].Pattern = z.pattern(cl.Pattern)
			e.Clauses[i].Expr = z.expr(cl.Expr)
		}
		e.Type = z.tp(e.Type)
		return e
	case Assign:
		e.Target = z.expr(e.Target)
		e.Value = z.expr(e.Value)
		e.Type = z.tp(e.Type)
		return e
	case Ref:
		e.Expr = z.expr(e.Expr)
		e.Type = z.tp(e.Type)
		return e
	case RefMut:
		e.Expr = z.expr(e.Expr)
		e.Type = z.tp(e.Type)
		return e
	case Deref:
		e.Expr = z.expr(e.Expr)
		e.ElemType = z.tp(e.ElemType)
		return e
	case ArrayExact:
		e.Elems = z.exprs(e.Elems)
		e.ElemType = z.tp(e.ElemType)
		return e
	case ArrayRepeat:
		e.Elem = z.expr(e.Elem)
		e.ElemType = z.tp(e.ElemType)
		return e
	case IndexAccess:
		e.Expr = z.expr(e.Expr)
		e.Index = z.expr(e.Index)
		e.ElemType = z.tp(e.ElemType)
		return e
	case Cast:
		e.Expr = z.expr(e.Expr)
		e.From = z.tp(e.From)
		e.To = z.tp(e.To)
		return e
	}
	return e
}

func (z *zonker) pattern(p Pattern) Pattern {
	switch p := p.(type) {
	case PatNumber:
		p.Type = z.tp(p.Type)
		return p
	case PatVar:
		p.Type = z.tp(p.Type)
		return p
	case PatTuple:
		for i, el := range p.Elems {
			p.Elems[i] = z.pattern(el)
		}
		return p
	case PatCons:
		for i, el := range p.Elems {
			p.Elems[i] = z.pattern(el)
		}
		p.ArgTypes = z.tps(p.ArgTypes)
		p.Inst = z.inst(p.Inst)
		return p
	}
	return p
}
