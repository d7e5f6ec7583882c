package checker

import (
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/resolver"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// Translate type checks every resolved function. Each body gets its
// own Unifier; the typed output carries only zonked types.
func Translate(ctx *diagnostics.Context, prog *resolver.Program) (*Program, error) {
	functions := make([]*Func, 0, len(prog.Functions))
	for _, fn := range prog.Functions {
		checked, err := trFunc(ctx, prog.SymTable, fn)
		if err != nil {
			return nil, err
		}
		functions = append(functions, checked)
	}
	return &Program{Functions: functions, SymTable: prog.SymTable}, nil
}

func trFunc(ctx *diagnostics.Context, st *symbols.SymTable, fn *resolver.Func) (*Func, error) {
	c := &checker{ctx: ctx, st: st, env: newCheckEnv(fn.RetType)}

	args := make([]Arg, 0, len(fn.Args))
	for _, arg := range fn.Args {
		c.env.addVar(arg.Name, arg.IsMut, arg.Type)
		args = append(args, Arg{Name: arg.Name, IsMut: arg.IsMut, Type: arg.Type})
	}

	body, err := c.checkExpr(fn.Body, fn.RetType, false)
	if err != nil {
		return nil, err
	}
	c.env.finish(ctx)

	body, err = c.zonkFunc(body)
	if err != nil {
		return nil, err
	}
	return &Func{ID: fn.ID, Name: fn.Name, Args: args, RetType: fn.RetType, Body: body}, nil
}

type checker struct {
	ctx *diagnostics.Context
	st  *symbols.SymTable
	env *env
}

// errExpr yields the error placeholder for an already-diagnosed
// subtree, swallowing the caller's expectation so the surrounding
// code does not also report it as uninferable.
func (c *checker) errExpr(expected typesystem.Type) Expr {
	c.env.u.Unify(expected, typesystem.Unknown{})
	return ExprError{}
}

// errPat is errExpr for patterns.
func (c *checker) errPat(expected typesystem.Type) Pattern {
	c.env.u.Unify(expected, typesystem.Unknown{})
	return PatError{}
}

// expect unifies and reports on failure; the caller keeps its node
// either way, so one mismatch does not hide the errors below it.
func (c *checker) expect(pos source.Position, expected, got typesystem.Type) {
	if !c.env.u.Unify(expected, got) {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT001, pos,
			"type mismatch: expected %s, got %s", expected, got))
	}
}

// instantiate maps each generic parameter to a fresh unification
// variable, in declaration order.
func (c *checker) instantiate(params []typesystem.TVar, pos source.Position) map[typesystem.TVar]typesystem.Type {
	if len(params) == 0 {
		return nil
	}
	inst := make(map[typesystem.TVar]typesystem.Type, len(params))
	for _, p := range params {
		inst[p] = c.env.fresh(pos)
	}
	return inst
}

// appliedType builds the use-site type of a declared struct or enum:
// its bare name for monomorphic types, an application of the
// instantiated parameters otherwise.
func appliedType(tv typesystem.TVar, name string, params []typesystem.TVar, inst map[typesystem.TVar]typesystem.Type) typesystem.Type {
	if len(params) == 0 {
		return typesystem.NamedVar{TVar: tv, Name: name}
	}
	args := make([]typesystem.Type, len(params))
	for i, p := range params {
		args[i] = inst[p]
	}
	return typesystem.TypeApp{Head: tv, Name: name, Args: args}
}

// globalType computes the use-site type of a referenced declaration
// and its instantiation map.
func (c *checker) globalType(id source.NodeID, pos source.Position) (typesystem.Type, map[typesystem.TVar]typesystem.Type, error) {
	info, ok := c.st.FindSymInfo(id)
	if !ok {
		return nil, nil, diagnostics.Internalf("reference to unregistered declaration %v", id)
	}
	switch k := info.Kind.(type) {
	case symbols.FuncSym:
		inst := c.instantiate(k.Params, pos)
		tp := typesystem.Fun{Params: k.Args, Ret: k.Ret}
		if inst == nil {
			return tp, nil, nil
		}
		return typesystem.Substitute(tp, inst), inst, nil

	case symbols.EnumConsSym:
		enumTp, inst, err := c.enumType(k.Parent, pos)
		if err != nil {
			return nil, nil, err
		}
		if len(k.Args) == 0 {
			return enumTp, inst, nil
		}
		args := make([]typesystem.Type, len(k.Args))
		for i, a := range k.Args {
			args[i] = typesystem.Substitute(a, inst)
		}
		return typesystem.Fun{Params: args, Ret: enumTp}, inst, nil

	case symbols.StructSym, symbols.EnumSym:
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT001, pos,
			"%s is a type, not a value", info.Name))
		return typesystem.Unknown{}, nil, nil
	}
	return nil, nil, diagnostics.Internalf("unknown symbol kind for %v", id)
}

// enumType builds the instantiated type of the enum declared at id.
func (c *checker) enumType(id source.NodeID, pos source.Position) (typesystem.Type, map[typesystem.TVar]typesystem.Type, error) {
	info, ok := c.st.FindSymInfo(id)
	if !ok {
		return nil, nil, diagnostics.Internalf("enum constructor without parent %v", id)
	}
	enum, ok := info.Kind.(symbols.EnumSym)
	if !ok {
		return nil, nil, diagnostics.Internalf("parent of a constructor is not an enum")
	}
	ti, ok := c.st.FindTypeInfo(enum.TVar)
	if !ok {
		return nil, nil, diagnostics.Internalf("enum %s has no type record", info.Name)
	}
	var params []typesystem.TVar
	if ek, ok := ti.Kind.(symbols.EnumType); ok {
		params = ek.Params
	}
	inst := c.instantiate(params, pos)
	return appliedType(enum.TVar, info.Name, params, inst), inst, nil
}

func (c *checker) checkExpr(node resolver.ExprNode, expected typesystem.Type, expectedMut bool) (Expr, error) {
	pos := node.Pos
	switch d := node.Data.(type) {
	case resolver.ExprError:
		return c.errExpr(expected), nil

	case resolver.Var:
		switch ref := d.Ref.(type) {
		case resolver.LocalRef:
			b, err := c.env.lookup(ref.Name)
			if err != nil {
				return nil, err
			}
			if expectedMut && !b.isMut {
				c.ctx.Report(diagnostics.NewError(diagnostics.ErrT002, pos,
					"cannot assign through immutable binding %s", ref.Name))
			}
			c.expect(pos, expected, b.tp)
			return LocalVar{Name: ref.Name, Type: b.tp}, nil
		case resolver.GlobalRef:
			tp, inst, err := c.globalType(ref.ID, pos)
			if err != nil {
				return nil, err
			}
			c.expect(pos, expected, tp)
			return GlobalVar{ID: ref.ID, Type: tp, Inst: inst}, nil
		}
		return nil, diagnostics.Internalf("unknown symbol reference %T", d.Ref)

	case resolver.NumLit:
		tp := c.env.freshNumeric(pos)
		c.expect(pos, expected, tp)
		return NumLit{Value: d.Value, Type: tp}, nil

	case resolver.CharLit:
		c.expect(pos, expected, typesystem.Builtin("u8"))
		return CharLit{Value: d.Value}, nil

	case resolver.StringLit:
		tp := typesystem.Ptr{Elem: typesystem.Builtin("u8")}
		c.expect(pos, expected, tp)
		return StringLit{Value: d.Value, Type: tp}, nil

	case resolver.TupleExpr:
		elems := make([]Expr, 0, len(d.Elems))
		tps := make([]typesystem.Type, 0, len(d.Elems))
		for _, el := range d.Elems {
			tp := c.env.fresh(el.Pos)
			checked, err := c.checkExpr(el, tp, expectedMut)
			if err != nil {
				return nil, err
			}
			elems = append(elems, checked)
			tps = append(tps, tp)
		}
		tp := typesystem.Tuple{Elems: tps}
		c.expect(pos, expected, tp)
		return TupleExpr{Elems: elems, Type: tp}, nil

	case resolver.FunCall:
		return c.checkCall(d, pos, expected)

	case resolver.MethodCall:
		return c.checkMethodCall(d, pos, expected)

	case resolver.FieldAccess:
		return c.checkFieldAccess(d, pos, expected, expectedMut)

	case resolver.StructCons:
		return c.checkStructCons(d, pos, expected)

	case resolver.Block:
		c.env.newScope()
		stmts := make([]Expr, 0, len(d.Stmts))
		for _, s := range d.Stmts {
			checked, err := c.checkExpr(s, typesystem.Unit(), false)
			if err != nil {
				c.env.leaveScope()
				return nil, err
			}
			stmts = append(stmts, checked)
		}
		last, err := c.checkExpr(*d.Last, expected, expectedMut)
		c.env.leaveScope()
		if err != nil {
			return nil, err
		}
		return Block{Stmts: stmts, Last: last, Type: expected}, nil

	case resolver.Return:
		ret := c.env.expectedRet
		var value Expr = TupleExpr{Type: typesystem.Unit()}
		if d.Value != nil {
			checked, err := c.checkExpr(*d.Value, ret, false)
			if err != nil {
				return nil, err
			}
			value = checked
		} else {
			c.expect(pos, ret, typesystem.Unit())
		}
		// a return never produces a value, so it satisfies any
		// expectation
		c.env.u.Unify(expected, typesystem.Never())
		return Return{Value: value, RetType: ret}, nil

	case resolver.Let:
		tp := d.Type
		if tp == nil {
			tp = c.env.fresh(pos)
		}
		c.env.newScope()
		value, err := c.checkExpr(*d.Value, tp, false)
		c.env.leaveScope()
		if err != nil {
			return nil, err
		}
		c.env.addVar(d.Name, d.IsMut, tp)
		c.expect(pos, expected, typesystem.Unit())
		return Let{Name: d.Name, IsMut: d.IsMut, Type: tp, Value: value}, nil

	case resolver.If:
		tp := c.env.fresh(pos)
		cond, err := c.checkExpr(*d.Cond, typesystem.Bool(), false)
		if err != nil {
			return nil, err
		}
		var els Expr = TupleExpr{Type: typesystem.Unit()}
		if d.Else != nil {
			checked, err := c.checkExpr(*d.Else, tp, expectedMut)
			if err != nil {
				return nil, err
			}
			els = checked
		} else {
			c.env.u.Unify(tp, typesystem.Unit())
		}
		then, err := c.checkExpr(*d.Then, tp, expectedMut)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, tp)
		return If{Cond: cond, Then: then, Else: els, Type: tp}, nil

	case resolver.While:
		cond, err := c.checkExpr(*d.Cond, typesystem.Bool(), false)
		if err != nil {
			return nil, err
		}
		body, err := c.checkExpr(*d.Body, typesystem.Unit(), false)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, typesystem.Unit())
		return While{Cond: cond, Body: body}, nil

	case resolver.Match:
		return c.checkMatch(d, pos, expected, expectedMut)

	case resolver.Assign:
		tp := c.env.fresh(pos)
		target, err := c.checkExpr(*d.Target, tp, true)
		if err != nil {
			return nil, err
		}
		value, err := c.checkExpr(*d.Value, tp, false)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, typesystem.Unit())
		return Assign{Target: target, Value: value, Type: tp}, nil

	case resolver.Ref:
		inner := c.env.fresh(pos)
		checked, err := c.checkExpr(*d.Expr, inner, false)
		if err != nil {
			return nil, err
		}
		tp := typesystem.Ptr{Elem: inner}
		c.expect(pos, expected, tp)
		return Ref{Expr: checked, Type: tp}, nil

	case resolver.RefMut:
		inner := c.env.fresh(pos)
		checked, err := c.checkExpr(*d.Expr, inner, true)
		if err != nil {
			return nil, err
		}
		tp := typesystem.MutPtr{Elem: inner}
		c.expect(pos, expected, tp)
		return RefMut{Expr: checked, Type: tp}, nil

	case resolver.Deref:
		inner := c.env.fresh(pos)
		var ptr typesystem.Type = typesystem.Ptr{Elem: inner}
		if expectedMut {
			ptr = typesystem.MutPtr{Elem: inner}
		}
		checked, err := c.checkExpr(*d.Expr, ptr, false)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, inner)
		return Deref{Expr: checked, ElemType: inner}, nil

	case resolver.ArrayExact:
		elemTp := c.env.fresh(pos)
		elems := make([]Expr, 0, len(d.Elems))
		for _, el := range d.Elems {
			checked, err := c.checkExpr(el, elemTp, false)
			if err != nil {
				return nil, err
			}
			elems = append(elems, checked)
		}
		c.expect(pos, expected, typesystem.Array{Len: len(d.Elems), Elem: elemTp})
		return ArrayExact{Elems: elems, ElemType: elemTp}, nil

	case resolver.ArrayRepeat:
		elemTp := c.env.fresh(pos)
		elem, err := c.checkExpr(*d.Elem, elemTp, false)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, typesystem.Array{Len: d.Count, Elem: elemTp})
		return ArrayRepeat{Elem: elem, Count: d.Count, ElemType: elemTp}, nil

	case resolver.IndexAccess:
		return c.checkIndex(d, pos, expected, expectedMut)

	case resolver.Cast:
		from := c.env.fresh(d.Expr.Pos)
		checked, err := c.checkExpr(*d.Expr, from, false)
		if err != nil {
			return nil, err
		}
		c.expect(pos, expected, d.Type)
		return Cast{Expr: checked, From: from, To: d.Type}, nil
	}
	return nil, diagnostics.Internalf("unhandled expression %T", node.Data)
}

func (c *checker) checkCall(d resolver.FunCall, pos source.Position, expected typesystem.Type) (Expr, error) {
	fnTp := c.env.fresh(d.Callee.Pos)
	callee, err := c.checkExpr(*d.Callee, fnTp, false)
	if err != nil {
		return nil, err
	}
	fun, ok := c.env.u.View(fnTp).(typesystem.Fun)
	if !ok {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT003, d.Callee.Pos,
			"called value is not a function"))
		return c.errExpr(expected), nil
	}
	args := make([]Expr, 0, len(fun.Params))
	for i, argTp := range fun.Params {
		if i >= len(d.Args) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT004, pos,
				"missing argument %d of type %s", i+1, argTp))
			args = append(args, ExprError{})
			continue
		}
		checked, err := c.checkExpr(d.Args[i], argTp, false)
		if err != nil {
			return nil, err
		}
		args = append(args, checked)
	}
	for i := len(fun.Params); i < len(d.Args); i++ {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT005, d.Args[i].Pos,
			"unexpected argument %d", i+1))
	}
	c.expect(pos, expected, fun.Ret)
	return FunCall{Callee: callee, Args: args, ArgTypes: fun.Params, RetType: fun.Ret}, nil
}

// receiverTVar digs the nominal type out of a checked receiver type.
func receiverTVar(t typesystem.Type) (typesystem.TVar, []typesystem.Type, bool) {
	switch t := t.(type) {
	case typesystem.Var:
		return t.TVar, nil, true
	case typesystem.NamedVar:
		return t.TVar, nil, true
	case typesystem.TypeApp:
		return t.Head, t.Args, true
	}
	return typesystem.TVar{}, nil, false
}

func (c *checker) checkMethodCall(d resolver.MethodCall, pos source.Position, expected typesystem.Type) (Expr, error) {
	recvTp := c.env.fresh(d.Recv.Pos)
	recv, err := c.checkExpr(*d.Recv, recvTp, false)
	if err != nil {
		return nil, err
	}
	tv, typeArgs, ok := receiverTVar(c.env.u.View(recvTp))
	if !ok {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT009, pos,
			"cannot resolve method %s: receiver type is not known here", d.Name))
		return c.errExpr(expected), nil
	}
	ti, found := c.st.FindTypeInfo(tv)
	if !found {
		return nil, diagnostics.Internalf("receiver type %v has no type record", tv)
	}
	methodID, bound := ti.Methods[d.Name]
	if !bound {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT009, pos,
			"type %s has no method %s", ti.Name, d.Name))
		return c.errExpr(expected), nil
	}
	info, found := c.st.FindSymInfo(methodID)
	if !found {
		return nil, diagnostics.Internalf("method %s of %s is not registered", d.Name, ti.Name)
	}
	sig, isFunc := info.Kind.(symbols.FuncSym)
	if !isFunc {
		return nil, diagnostics.Internalf("method %s of %s is not a function", d.Name, ti.Name)
	}
	if len(sig.Args) == 0 {
		return nil, diagnostics.Internalf("method %s of %s has no receiver argument", d.Name, ti.Name)
	}

	// the receiver type's own arguments pin the leading parameters;
	// the method's extra parameters instantiate fresh
	inst := c.instantiate(sig.Params, pos)
	for i, arg := range typeArgs {
		if i < len(sig.Params) {
			inst[sig.Params[i]] = arg
		}
	}

	recvArg := typesystem.Substitute(sig.Args[0], inst)
	switch rt := recvArg.(type) {
	case typesystem.Ptr:
		c.expect(d.Recv.Pos, rt.Elem, recvTp)
	case typesystem.MutPtr:
		c.expect(d.Recv.Pos, rt.Elem, recvTp)
	default:
		c.expect(d.Recv.Pos, recvArg, recvTp)
	}

	argTps := make([]typesystem.Type, 0, len(sig.Args)-1)
	args := make([]Expr, 0, len(sig.Args)-1)
	for i, raw := range sig.Args[1:] {
		argTp := typesystem.Substitute(raw, inst)
		argTps = append(argTps, argTp)
		if i >= len(d.Args) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT004, pos,
				"missing argument %d of type %s", i+1, argTp))
			args = append(args, ExprError{})
			continue
		}
		checked, err := c.checkExpr(d.Args[i], argTp, false)
		if err != nil {
			return nil, err
		}
		args = append(args, checked)
	}
	for i := len(sig.Args) - 1; i < len(d.Args); i++ {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT005, d.Args[i].Pos,
			"unexpected argument %d", i+1))
	}

	ret := typesystem.Substitute(sig.Ret, inst)
	c.expect(pos, expected, ret)
	return MethodCall{Recv: recv, Method: methodID, Args: args, ArgTypes: argTps, RetType: ret, Inst: inst}, nil
}

func (c *checker) checkFieldAccess(d resolver.FieldAccess, pos source.Position, expected typesystem.Type, expectedMut bool) (Expr, error) {
	objTp := c.env.fresh(d.Expr.Pos)
	obj, err := c.checkExpr(*d.Expr, objTp, expectedMut)
	if err != nil {
		return nil, err
	}
	tv, typeArgs, ok := receiverTVar(c.env.u.View(objTp))
	if !ok {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT006, pos,
			"no field %s on type %s", d.Name, objTp))
		return c.errExpr(expected), nil
	}
	ti, found := c.st.FindTypeInfo(tv)
	if !found {
		return nil, diagnostics.Internalf("type %v has no type record", tv)
	}
	st, isStruct := ti.Kind.(symbols.StructType)
	if !isStruct {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT006, pos,
			"no field %s on type %s", d.Name, ti.Name))
		return c.errExpr(expected), nil
	}
	index := -1
	var fieldTp typesystem.Type
	for i, f := range st.Fields {
		if f.Name == d.Name {
			index, fieldTp = i, f.Type
			break
		}
	}
	if index < 0 {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT006, pos,
			"no field %s on type %s", d.Name, ti.Name))
		return c.errExpr(expected), nil
	}
	if len(typeArgs) > 0 {
		inst := make(map[typesystem.TVar]typesystem.Type, len(st.Params))
		for i, p := range st.Params {
			if i < len(typeArgs) {
				inst[p] = typeArgs[i]
			}
		}
		fieldTp = typesystem.Substitute(fieldTp, inst)
	}
	c.expect(pos, expected, fieldTp)
	return FieldAccess{Object: obj, Name: d.Name, Index: index, ObjType: objTp, FieldType: fieldTp}, nil
}

func (c *checker) checkStructCons(d resolver.StructCons, pos source.Position, expected typesystem.Type) (Expr, error) {
	info, found := c.st.FindSymInfo(d.ID)
	if !found {
		return nil, diagnostics.Internalf("constructor of unregistered declaration %v", d.ID)
	}
	sym, isStruct := info.Kind.(symbols.StructSym)
	if !isStruct {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT001, pos,
			"%s is not a struct", info.Name))
		return c.errExpr(expected), nil
	}
	ti, found := c.st.FindTypeInfo(sym.TVar)
	if !found {
		return nil, diagnostics.Internalf("struct %s has no type record", info.Name)
	}
	st, ok := ti.Kind.(symbols.StructType)
	if !ok {
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT001, pos,
			"%s cannot be constructed with field initializers", info.Name))
		return c.errExpr(expected), nil
	}

	inst := c.instantiate(st.Params, pos)
	structTp := appliedType(sym.TVar, info.Name, st.Params, inst)

	covered := make(map[string]struct{}, len(d.Fields))
	inits := make([]Init, 0, len(d.Fields))
	for _, init := range d.Fields {
		index := -1
		var fieldTp typesystem.Type
		for i, f := range st.Fields {
			if f.Name == init.Name {
				index, fieldTp = i, typesystem.Substitute(f.Type, inst)
				break
			}
		}
		if index < 0 {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT008, init.Pos,
				"struct %s has no field %s", info.Name, init.Name))
			continue
		}
		covered[init.Name] = struct{}{}
		checked, err := c.checkExpr(init.Expr, fieldTp, false)
		if err != nil {
			return nil, err
		}
		inits = append(inits, Init{Name: init.Name, Index: index, Expr: checked})
	}
	for _, f := range st.Fields {
		if _, ok := covered[f.Name]; !ok {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT007, pos,
				"missing field %s of type %s", f.Name, f.Type))
		}
	}

	c.expect(pos, expected, structTp)
	return StructCons{ID: d.ID, Type: structTp, Inits: inits, Inst: inst}, nil
}

func (c *checker) checkMatch(d resolver.Match, pos source.Position, expected typesystem.Type, expectedMut bool) (Expr, error) {
	scrutTp := c.env.fresh(d.Scrutinee.Pos)
	scrut, err := c.checkExpr(*d.Scrutinee, scrutTp, false)
	if err != nil {
		return nil, err
	}
	tp := c.env.fresh(pos)
	clauses := make([]MatchClause, 0, len(d.Clauses))
	for _, clause := range d.Clauses {
		c.env.newScope()
		pat, err := c.checkPattern(clause.Pattern, scrutTp)
		if err != nil {
			c.env.leaveScope()
			return nil, err
		}
		body, err := c.checkExpr(clause.Expr, tp, expectedMut)
		c.env.leaveScope()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, MatchClause{Pattern: pat, Expr: body})
	}
	c.expect(pos, expected, tp)
	return Match{Scrutinee: scrut, ScrutType: scrutTp, Clauses: clauses, Type: tp}, nil
}

// checkPattern unifies a pattern against the scrutinee type and binds
// its variables into the current clause scope.
func (c *checker) checkPattern(node resolver.PatternNode, expected typesystem.Type) (Pattern, error) {
	pos := node.Pos
	switch d := node.Data.(type) {
	case resolver.PatError:
		return c.errPat(expected), nil

	case resolver.PatWildcard:
		return PatWildcard{}, nil

	case resolver.PatNumber:
		tp := c.env.freshNumeric(pos)
		if !c.env.u.Unify(expected, tp) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT012, pos,
				"numeric pattern cannot match a value of type %s", expected))
			return c.errPat(expected), nil
		}
		return PatNumber{Value: d.Value, Type: tp}, nil

	case resolver.PatVar:
		c.env.addVar(d.Name, false, expected)
		return PatVar{Name: d.Name, Type: expected}, nil

	case resolver.PatTuple:
		tps := make([]typesystem.Type, len(d.Elems))
		for i := range d.Elems {
			tps[i] = c.env.fresh(pos)
		}
		if !c.env.u.Unify(expected, typesystem.Tuple{Elems: tps}) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT012, pos,
				"tuple pattern cannot match a value of type %s", expected))
			return c.errPat(expected), nil
		}
		elems := make([]Pattern, 0, len(d.Elems))
		for i, el := range d.Elems {
			pat, err := c.checkPattern(el, tps[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, pat)
		}
		return PatTuple{Elems: elems}, nil

	case resolver.PatCons:
		info, found := c.st.FindSymInfo(d.ID)
		if !found {
			return nil, diagnostics.Internalf("pattern names unregistered declaration %v", d.ID)
		}
		cons, isCons := info.Kind.(symbols.EnumConsSym)
		if !isCons {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT012, pos,
				"%s is not an enum constructor", info.Name))
			return c.errPat(expected), nil
		}
		enumTp, inst, err := c.enumType(cons.Parent, pos)
		if err != nil {
			return nil, err
		}
		if !c.env.u.Unify(expected, enumTp) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT012, pos,
				"pattern %s cannot match a value of type %s", info.Name, expected))
			return c.errPat(expected), nil
		}
		if len(d.Elems) != len(cons.Args) {
			c.ctx.Report(diagnostics.NewError(diagnostics.ErrT012, pos,
				"%s takes %d values, pattern has %d", info.Name, len(cons.Args), len(d.Elems)))
			return c.errPat(expected), nil
		}
		argTps := make([]typesystem.Type, len(cons.Args))
		elems := make([]Pattern, 0, len(d.Elems))
		for i, raw := range cons.Args {
			argTps[i] = typesystem.Substitute(raw, inst)
			pat, err := c.checkPattern(d.Elems[i], argTps[i])
			if err != nil {
				return nil, err
			}
			elems = append(elems, pat)
		}
		return PatCons{ID: d.ID, Elems: elems, ArgTypes: argTps, Inst: inst}, nil
	}
	return nil, diagnostics.Internalf("unhandled pattern %T", node.Data)
}

func (c *checker) checkIndex(d resolver.IndexAccess, pos source.Position, expected typesystem.Type, expectedMut bool) (Expr, error) {
	arrTp := c.env.fresh(d.Expr.Pos)
	arr, err := c.checkExpr(*d.Expr, arrTp, expectedMut)
	if err != nil {
		return nil, err
	}
	idxTp := c.env.freshNumeric(d.Index.Pos)
	index, err := c.checkExpr(*d.Index, idxTp, false)
	if err != nil {
		return nil, err
	}
	var elemTp typesystem.Type
	switch t := c.env.u.View(arrTp).(type) {
	case typesystem.Array:
		elemTp = t.Elem
	case typesystem.Ptr:
		elemTp = t.Elem
	case typesystem.MutPtr:
		elemTp = t.Elem
	default:
		c.ctx.Report(diagnostics.NewError(diagnostics.ErrT001, pos,
			"type %s cannot be indexed", arrTp))
		return c.errExpr(expected), nil
	}
	c.expect(pos, expected, elemTp)
	return IndexAccess{Expr: arr, Index: index, ElemType: elemTp}, nil
}
