package resolver

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// trExpr rewrites one raw expression. Resolution failures report a
// diagnostic and yield ExprError in place, so a single bad name does
// not take the rest of the function down with it.
func trExpr(ctx *diagnostics.Context, e *env, node ast.ExprNode) (ExprNode, error) {
	out := ExprNode{Pos: node.Pos}
	switch d := node.Data.(type) {
	case ast.ExprError:
		out.Data = ExprError{}

	case ast.ExprVar:
		ref, diag := e.findSymbol(d.Path)
		if diag != nil {
			ctx.Report(diag)
			out.Data = ExprError{}
			break
		}
		out.Data = Var{Ref: ref}

	case ast.ExprNum:
		out.Data = NumLit{Value: d.Value}

	case ast.ExprChar:
		out.Data = CharLit{Value: d.Value}

	case ast.ExprString:
		out.Data = StringLit{Value: d.Value}

	case ast.ExprTuple:
		elems, err := trExprs(ctx, e, d.Elems)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = TupleExpr{Elems: elems}

	case ast.ExprCall:
		callee, err := trExpr(ctx, e, *d.Callee)
		if err != nil {
			return ExprNode{}, err
		}
		args, err := trExprs(ctx, e, d.Args)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = FunCall{Callee: &callee, Args: args}

	case ast.ExprMethodCall:
		recv, err := trExpr(ctx, e, *d.Recv)
		if err != nil {
			return ExprNode{}, err
		}
		args, err := trExprs(ctx, e, d.Args)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = MethodCall{Recv: &recv, Name: d.Name.Name, Args: args}

	case ast.ExprField:
		recv, err := trExpr(ctx, e, *d.Recv)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = FieldAccess{Expr: &recv, Name: d.Name.Name}

	case ast.ExprOpenBlock:
		e.pushScope()
		stmts, err := trExprs(ctx, e, d.Stmts)
		if err != nil {
			e.popScope()
			return ExprNode{}, err
		}
		last, err := trExpr(ctx, e, *d.Last)
		e.popScope()
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Block{Stmts: stmts, Last: &last}

	case ast.ExprClosedBlock:
		e.pushScope()
		stmts, err := trExprs(ctx, e, d.Stmts)
		e.popScope()
		if err != nil {
			return ExprNode{}, err
		}
		unit := ExprNode{Data: TupleExpr{}, Pos: node.Pos}
		out.Data = Block{Stmts: stmts, Last: &unit}

	case ast.ExprReturn:
		if d.Value == nil {
			out.Data = Return{}
			break
		}
		value, err := trExpr(ctx, e, *d.Value)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Return{Value: &value}

	case ast.ExprLet:
		var annot typesystem.Type
		if d.Type != nil {
			t, err := e.resolveType(ctx, *d.Type)
			if err != nil {
				return ExprNode{}, err
			}
			annot = t
		}
		e.addLocal(d.Name.Name)
		value, err := trExpr(ctx, e, *d.Value)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Let{Name: d.Name.Name, IsMut: d.IsMut, Type: annot, Value: &value}

	case ast.ExprIf:
		cond, err := trExpr(ctx, e, *d.Cond)
		if err != nil {
			return ExprNode{}, err
		}
		then, err := trExpr(ctx, e, *d.Then)
		if err != nil {
			return ExprNode{}, err
		}
		ifData := If{Cond: &cond, Then: &then}
		if d.Else != nil {
			els, err := trExpr(ctx, e, *d.Else)
			if err != nil {
				return ExprNode{}, err
			}
			ifData.Else = &els
		}
		out.Data = ifData

	case ast.ExprWhile:
		cond, err := trExpr(ctx, e, *d.Cond)
		if err != nil {
			return ExprNode{}, err
		}
		body, err := trExpr(ctx, e, *d.Body)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = While{Cond: &cond, Body: &body}

	case ast.ExprMatch:
		subject, err := trExpr(ctx, e, *d.Subject)
		if err != nil {
			return ExprNode{}, err
		}
		clauses := make([]MatchClause, 0, len(d.Clauses))
		for _, c := range d.Clauses {
			clause, err := trClause(ctx, e, c)
			if err != nil {
				return ExprNode{}, err
			}
			clauses = append(clauses, clause)
		}
		out.Data = Match{Scrutinee: &subject, Clauses: clauses}

	case ast.ExprStructCons:
		ref, diag := e.findSymbol(d.Path)
		if diag != nil {
			ctx.Report(diag)
			out.Data = ExprError{}
			break
		}
		global, ok := ref.(GlobalRef)
		if !ok {
			ctx.Report(diagnostics.NewError(diagnostics.ErrR002, node.Pos,
				"%s does not name a struct", d.Path))
			out.Data = ExprError{}
			break
		}
		seen := make(map[string]struct{}, len(d.Fields))
		fields := make([]FieldInit, 0, len(d.Fields))
		for _, f := range d.Fields {
			if _, dup := seen[f.Name.Name]; dup {
				ctx.Report(diagnostics.NewError(diagnostics.ErrT011, f.Name.Pos,
					"field %s initialized more than once", f.Name.Name))
				continue
			}
			seen[f.Name.Name] = struct{}{}
			value, err := trExpr(ctx, e, f.Value)
			if err != nil {
				return ExprNode{}, err
			}
			fields = append(fields, FieldInit{Name: f.Name.Name, Expr: value, Pos: f.Name.Pos})
		}
		out.Data = StructCons{ID: global.ID, Fields: fields}

	case ast.ExprAssign:
		target, err := trExpr(ctx, e, *d.LHS)
		if err != nil {
			return ExprNode{}, err
		}
		value, err := trExpr(ctx, e, *d.RHS)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Assign{Target: &target, Value: &value}

	case ast.ExprRef:
		inner, err := trExpr(ctx, e, *d.Operand)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Ref{Expr: &inner}

	case ast.ExprRefMut:
		inner, err := trExpr(ctx, e, *d.Operand)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = RefMut{Expr: &inner}

	case ast.ExprDeref:
		inner, err := trExpr(ctx, e, *d.Operand)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Deref{Expr: &inner}

	case ast.ExprArrayExact:
		elems, err := trExprs(ctx, e, d.Elems)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = ArrayExact{Elems: elems}

	case ast.ExprArrayRepeat:
		elem, err := trExpr(ctx, e, *d.Elem)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = ArrayRepeat{Elem: &elem, Count: d.Count}

	case ast.ExprIndex:
		recv, err := trExpr(ctx, e, *d.Recv)
		if err != nil {
			return ExprNode{}, err
		}
		index, err := trExpr(ctx, e, *d.Index)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = IndexAccess{Expr: &recv, Index: &index}

	case ast.ExprCast:
		value, err := trExpr(ctx, e, *d.Value)
		if err != nil {
			return ExprNode{}, err
		}
		t, err := e.resolveType(ctx, d.Type)
		if err != nil {
			return ExprNode{}, err
		}
		out.Data = Cast{Expr: &value, Type: t}

	default:
		return ExprNode{}, diagnostics.Internalf("unhandled expression %T", node.Data)
	}
	return out, nil
}

func trExprs(ctx *diagnostics.Context, e *env, nodes []ast.ExprNode) ([]ExprNode, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]ExprNode, 0, len(nodes))
	for _, n := range nodes {
		expr, err := trExpr(ctx, e, n)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

// trClause scopes the clause so pattern bindings are visible only in
// its own arm.
func trClause(ctx *diagnostics.Context, e *env, c ast.MatchClause) (MatchClause, error) {
	e.pushScope()
	defer e.popScope()

	pattern := trPattern(ctx, e, c.Pattern)
	expr, err := trExpr(ctx, e, c.Expr)
	if err != nil {
		return MatchClause{}, err
	}
	return MatchClause{Pattern: pattern, Expr: expr, Pos: c.Pos}, nil
}

// trPattern resolves constructor paths and registers variable
// bindings in the current clause scope.
func trPattern(ctx *diagnostics.Context, e *env, node ast.PatternNode) PatternNode {
	out := PatternNode{Pos: node.Pos}
	switch d := node.Data.(type) {
	case ast.PatWildcard:
		out.Data = PatWildcard{}

	case ast.PatNumber:
		out.Data = PatNumber{Value: d.Value}

	case ast.PatVar:
		e.addLocal(d.Name.Name)
		out.Data = PatVar{Name: d.Name.Name}

	case ast.PatTuple:
		elems := make([]PatternNode, 0, len(d.Elems))
		for _, el := range d.Elems {
			elems = append(elems, trPattern(ctx, e, el))
		}
		out.Data = PatTuple{Elems: elems}

	case ast.PatCons:
		ref, diag := e.findSymbol(d.Path)
		if diag != nil {
			ctx.Report(diag)
			out.Data = PatError{}
			break
		}
		global, ok := ref.(GlobalRef)
		if !ok {
			ctx.Report(diagnostics.NewError(diagnostics.ErrR002, node.Pos,
				"%s does not name an enum constructor", d.Path))
			out.Data = PatError{}
			break
		}
		elems := make([]PatternNode, 0, len(d.Elems))
		for _, el := range d.Elems {
			elems = append(elems, trPattern(ctx, e, el))
		}
		out.Data = PatCons{ID: global.ID, Elems: elems}
	}
	return out
}
