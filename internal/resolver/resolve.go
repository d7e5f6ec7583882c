package resolver

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/modules"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// Translate resolves the whole module tree and builds the symbol
// table. Every struct and enum gets its TVar allocated up front so
// mutually recursive declarations resolve in any order.
func Translate(ctx *diagnostics.Context, proj *config.Project, alloc *typesystem.TVarAlloc, prog *modules.Program) (*Program, error) {
	nodeTVars := make(map[source.NodeID]typesystem.TVar)
	generateTVars(alloc, nodeTVars, prog.Root)

	e := newEnv(prog.Tree, nodeTVars)
	e.alloc = alloc

	functions, err := trModule(ctx, e, prog.Root)
	if err != nil {
		return nil, err
	}

	return &Program{
		Functions: functions,
		SymTable:  symbols.New(ctx, proj, e.nodes, e.types),
	}, nil
}

// generateTVars allocates the type identity of every struct and enum
// before anything is resolved. Builtin declarations short-circuit to
// their reserved ids.
func generateTVars(alloc *typesystem.TVarAlloc, out map[source.NodeID]typesystem.TVar, m *modules.Module) {
	for _, item := range m.Items {
		switch it := item.(type) {
		case *modules.Module:
			generateTVars(alloc, out, it)
		case *modules.Struct:
			out[it.ID] = declTVar(alloc, it.Name.Name, it.Attributes, len(it.TypeParams))
		case *modules.Enum:
			out[it.ID] = declTVar(alloc, it.Name.Name, it.Attributes, len(it.TypeParams))
		}
	}
}

func declTVar(alloc *typesystem.TVarAlloc, name string, attrs []ast.Attribute, arity int) typesystem.TVar {
	if ast.HasAttr(attrs, config.AttrBuiltin) {
		builtinName := name
		if arg, ok := ast.AttrArg(attrs, config.AttrBuiltin); ok {
			builtinName = arg
		}
		if tv, ok := typesystem.BuiltinTVar(builtinName); ok {
			return tv
		}
	}
	if arity > 0 {
		return alloc.FreshTypeCons(arity)
	}
	return alloc.FreshType()
}

func trModule(ctx *diagnostics.Context, e *env, m *modules.Module) ([]*Func, error) {
	var functions []*Func
	for _, item := range m.Items {
		e.currentModule = m.ID
		switch it := item.(type) {
		case *modules.Module:
			fns, err := trModule(ctx, e, it)
			if err != nil {
				return nil, err
			}
			functions = append(functions, fns...)
		case *modules.Func:
			fn, err := trFunc(ctx, e, it, nil)
			if err != nil {
				return nil, err
			}
			if fn != nil {
				functions = append(functions, fn)
			}
		case *modules.Struct:
			fns, err := trStruct(ctx, e, it)
			if err != nil {
				return nil, err
			}
			functions = append(functions, fns...)
		case *modules.Enum:
			fns, err := trEnum(ctx, e, it)
			if err != nil {
				return nil, err
			}
			functions = append(functions, fns...)
		}
	}
	return functions, nil
}

// declParams allocates one Parameter TVar per type-parameter name, in
// declaration order.
func declParams(e *env, names []ast.Ident) (map[string]typesystem.TVar, []typesystem.TVar, []typesystem.Type) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	byName := make(map[string]typesystem.TVar, len(names))
	ordered := make([]typesystem.TVar, 0, len(names))
	vars := make([]typesystem.Type, 0, len(names))
	for _, n := range names {
		tv := e.alloc.FreshParameter()
		byName[n.Name] = tv
		ordered = append(ordered, tv)
		vars = append(vars, typesystem.NamedVar{TVar: tv, Name: n.Name})
	}
	return byName, ordered, vars
}

// parentInfo is the receiver context a method resolves under.
type parentInfo struct {
	selfType typesystem.Type
	byName   map[string]typesystem.TVar
	params   []typesystem.TVar
}

func trStruct(ctx *diagnostics.Context, e *env, s *modules.Struct) ([]*Func, error) {
	tv, err := e.tvarOf(s.ID)
	if err != nil {
		return nil, err
	}
	byName, params, paramVars := declParams(e, s.TypeParams)

	var fields []symbols.FieldInfo
	e.withTypeParams(byName, func() {
		seen := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			if _, dup := seen[f.Name.Name]; dup {
				ctx.Report(diagnostics.NewError(diagnostics.ErrR004, f.Name.Pos,
					"field %s is declared more than once", f.Name.Name))
				continue
			}
			seen[f.Name.Name] = struct{}{}
			t, rerr := e.resolveType(ctx, f.Type)
			if rerr != nil {
				err = rerr
				return
			}
			fields = append(fields, symbols.FieldInfo{Name: f.Name.Name, Type: t})
		}
	})
	if err != nil {
		return nil, err
	}

	methods := make(map[string]source.NodeID, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Name] = m.ID
	}

	var kind symbols.TypeKind = symbols.StructType{Params: params, Fields: fields}
	if ast.HasAttr(s.Attributes, config.AttrBuiltin) {
		kind = symbols.BuiltinType{}
	}
	e.addTypeInfo(tv, &symbols.TypeInfo{
		Name:    s.Name.Name,
		Pos:     s.Pos,
		Methods: methods,
		Kind:    kind,
	})
	e.addSymInfo(s.ID, symbols.NewSymInfo(s.Name.Name, s.Pos, symbols.StructSym{TVar: tv}).
		WithAttributes(s.Attributes))

	parent := &parentInfo{
		selfType: selfType(tv, s.Name.Name, paramVars),
		byName:   byName,
		params:   params,
	}
	var functions []*Func
	for _, m := range s.Methods {
		fn, ferr := trFunc(ctx, e, m, parent)
		if ferr != nil {
			return nil, ferr
		}
		if fn != nil {
			functions = append(functions, fn)
		}
	}
	return functions, nil
}

func trEnum(ctx *diagnostics.Context, e *env, en *modules.Enum) ([]*Func, error) {
	tv, err := e.tvarOf(en.ID)
	if err != nil {
		return nil, err
	}
	byName, params, paramVars := declParams(e, en.TypeParams)

	var cons []symbols.ConsInfo
	e.withTypeParams(byName, func() {
		for i, c := range en.Constructors {
			args := make([]typesystem.Type, 0, len(c.Params))
			for _, p := range c.Params {
				t, rerr := e.resolveType(ctx, p)
				if rerr != nil {
					err = rerr
					return
				}
				args = append(args, t)
			}
			cons = append(cons, symbols.ConsInfo{Name: c.Name.Name, ID: c.ID})
			e.addSymInfo(c.ID, symbols.NewSymInfo(c.Name.Name, c.Pos, symbols.EnumConsSym{
				Index:  i,
				Args:   args,
				Parent: en.ID,
			}).WithAttributes(c.Attributes))
		}
	})
	if err != nil {
		return nil, err
	}

	methods := make(map[string]source.NodeID, len(en.Methods))
	for _, m := range en.Methods {
		methods[m.Name.Name] = m.ID
	}

	var kind symbols.TypeKind = symbols.EnumType{Params: params, Constructors: cons}
	if ast.HasAttr(en.Attributes, config.AttrBuiltin) {
		kind = symbols.BuiltinType{}
	}
	e.addTypeInfo(tv, &symbols.TypeInfo{
		Name:    en.Name.Name,
		Pos:     en.Pos,
		Methods: methods,
		Kind:    kind,
	})
	e.addSymInfo(en.ID, symbols.NewSymInfo(en.Name.Name, en.Pos, symbols.EnumSym{TVar: tv}).
		WithAttributes(en.Attributes))

	parent := &parentInfo{
		selfType: selfType(tv, en.Name.Name, paramVars),
		byName:   byName,
		params:   params,
	}
	var functions []*Func
	for _, m := range en.Methods {
		fn, ferr := trFunc(ctx, e, m, parent)
		if ferr != nil {
			return nil, ferr
		}
		if fn != nil {
			functions = append(functions, fn)
		}
	}
	return functions, nil
}

func selfType(tv typesystem.TVar, name string, paramVars []typesystem.Type) typesystem.Type {
	if len(paramVars) == 0 {
		return typesystem.NamedVar{TVar: tv, Name: name}
	}
	return typesystem.TypeApp{Head: tv, Name: name, Args: paramVars}
}

func trFunc(ctx *diagnostics.Context, e *env, f *modules.Func, parent *parentInfo) (*Func, error) {
	e.pushScope()
	defer e.popScope()

	ownByName, ownParams, _ := declParams(e, f.TypeParams)
	merged := ownByName
	allParams := ownParams
	if parent != nil {
		merged = make(map[string]typesystem.TVar, len(ownByName)+len(parent.byName))
		for k, v := range parent.byName {
			merged[k] = v
		}
		for k, v := range ownByName {
			merged[k] = v
		}
		// receiver parameters come first so instantiation maps line
		// up with the receiver's type arguments
		allParams = append(append([]typesystem.TVar(nil), parent.params...), ownParams...)
	}

	var (
		retType typesystem.Type = typesystem.Unit()
		args    []FnArg
		argTps  []typesystem.Type
		bad     bool
		err     error
	)
	e.withTypeParams(merged, func() {
		if f.RetType != nil {
			retType, err = e.resolveType(ctx, *f.RetType)
			if err != nil {
				return
			}
		}
		for _, arg := range f.Args {
			switch arg.Kind {
			case ast.ArgNamed:
				e.addLocal(arg.Name.Name)
				var t typesystem.Type
				t, err = e.resolveType(ctx, *arg.Type)
				if err != nil {
					return
				}
				argTps = append(argTps, t)
				args = append(args, FnArg{IsMut: arg.IsMut, Name: arg.Name.Name, Type: t, Pos: arg.Pos})
			case ast.ArgSelf, ast.ArgPtrSelf, ast.ArgMutPtrSelf:
				if parent == nil {
					ctx.Report(diagnostics.NewError(diagnostics.ErrR005, arg.Pos,
						"self receiver outside a method block"))
					bad = true
					return
				}
				e.addLocal("self")
				t := parent.selfType
				isMut := false
				switch arg.Kind {
				case ast.ArgSelf:
					isMut = arg.IsMut
				case ast.ArgPtrSelf:
					t = typesystem.Ptr{Elem: t}
				case ast.ArgMutPtrSelf:
					t = typesystem.MutPtr{Elem: t}
				}
				argTps = append(argTps, t)
				args = append(args, FnArg{IsMut: isMut, Name: "self", Type: t, Pos: arg.Pos})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if bad {
		return nil, nil
	}

	info := symbols.NewSymInfo(f.Name.Name, f.Pos, symbols.FuncSym{
		Params: allParams,
		Args:   argTps,
		Ret:    retType,
	}).WithAttributes(f.Attributes)
	e.addSymInfo(f.ID, info)

	if f.Body == nil {
		if !info.IsExtern {
			ctx.Report(diagnostics.NewError(diagnostics.ErrR003, f.Pos,
				"function %s has no body", f.Name.Name))
		}
		return nil, nil
	}

	var body ExprNode
	e.withTypeParams(merged, func() {
		body, err = trExpr(ctx, e, *f.Body)
	})
	if err != nil {
		return nil, err
	}

	return &Func{
		ID:      f.ID,
		Name:    f.Name.Name,
		Params:  allParams,
		Args:    args,
		RetType: retType,
		Body:    body,
		Pos:     f.Pos,
	}, nil
}
