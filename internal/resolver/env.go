package resolver

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/modules"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// env threads the resolver's state: the frozen scope tree, the
// NodeID-to-TVar map from the pre-pass, the accumulating
// SymInfo/TypeInfo tables, lexical local scopes, and the type
// parameters in force while a generic declaration resolves its own
// syntax.
type env struct {
	currentModule source.NodeID
	tree          *modules.Tree
	nodeTVars     map[source.NodeID]typesystem.TVar
	nodes         map[source.NodeID]*symbols.SymInfo
	types         map[typesystem.TVar]*symbols.TypeInfo
	localScopes   []map[string]struct{}
	typeParams    map[string]typesystem.TVar
	alloc         *typesystem.TVarAlloc
}

func newEnv(tree *modules.Tree, nodeTVars map[source.NodeID]typesystem.TVar) *env {
	return &env{
		currentModule: source.RootID,
		tree:          tree,
		nodeTVars:     nodeTVars,
		nodes:         make(map[source.NodeID]*symbols.SymInfo),
		types:         make(map[typesystem.TVar]*symbols.TypeInfo),
	}
}

func (e *env) pushScope() {
	e.localScopes = append(e.localScopes, make(map[string]struct{}))
}

func (e *env) popScope() {
	e.localScopes = e.localScopes[:len(e.localScopes)-1]
}

func (e *env) addLocal(name string) {
	e.localScopes[len(e.localScopes)-1][name] = struct{}{}
}

// withTypeParams installs a declaration's parameter TVars for the
// duration of fn. Parameters are per-declaration; they never nest.
func (e *env) withTypeParams(params map[string]typesystem.TVar, fn func()) {
	e.typeParams = params
	fn()
	e.typeParams = nil
}

// findSymbol resolves a path: single names check the lexical locals
// first, everything else goes through the scope tree from the current
// module.
func (e *env) findSymbol(path ast.Path) (SymRef, *diagnostics.Diagnostic) {
	if name, ok := path.Single(); ok {
		for i := len(e.localScopes) - 1; i >= 0; i-- {
			if _, found := e.localScopes[i][name.Name]; found {
				return LocalRef{Name: name.Name}, nil
			}
		}
	}
	binding, _, diag := e.tree.FindPath(e.currentModule, path, true)
	if diag != nil {
		return nil, diag
	}
	id, ok := modules.SymbolID(binding.Sym)
	if !ok {
		// FindPath never hands out ambiguous bindings.
		panic("ambiguous binding escaped FindPath")
	}
	return GlobalRef{ID: id}, nil
}

func (e *env) tvarOf(id source.NodeID) (typesystem.TVar, error) {
	tv, ok := e.nodeTVars[id]
	if !ok {
		return typesystem.TVar{}, diagnostics.Internalf("no type id for declaration %v", id)
	}
	return tv, nil
}

func (e *env) addSymInfo(id source.NodeID, info *symbols.SymInfo) {
	e.nodes[id] = info
}

func (e *env) addTypeInfo(tv typesystem.TVar, info *symbols.TypeInfo) {
	e.types[tv] = info
}

// resolveType turns raw type syntax into a semantic type. Failures are
// reported and yield the Unknown placeholder so one bad annotation
// produces one diagnostic.
func (e *env) resolveType(ctx *diagnostics.Context, node ast.RTypeNode) (typesystem.Type, error) {
	switch d := node.Data.(type) {
	case ast.RTypeVar:
		return e.resolveTypeVar(ctx, d.Path, node.Pos, nil)
	case ast.RTypeTuple:
		elems := make([]typesystem.Type, len(d.Elems))
		for i, el := range d.Elems {
			t, err := e.resolveType(ctx, el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return typesystem.Tuple{Elems: elems}, nil
	case ast.RTypeArray:
		elem, err := e.resolveType(ctx, *d.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.Array{Len: d.Len, Elem: elem}, nil
	case ast.RTypePtr:
		elem, err := e.resolveType(ctx, *d.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.Ptr{Elem: elem}, nil
	case ast.RTypeMutPtr:
		elem, err := e.resolveType(ctx, *d.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.MutPtr{Elem: elem}, nil
	case ast.RTypeSlice:
		// slices lower to pointers at this level of the language
		elem, err := e.resolveType(ctx, *d.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.Ptr{Elem: elem}, nil
	case ast.RTypeMutSlice:
		elem, err := e.resolveType(ctx, *d.Elem)
		if err != nil {
			return nil, err
		}
		return typesystem.MutPtr{Elem: elem}, nil
	case ast.RTypeFun:
		params := make([]typesystem.Type, len(d.Params))
		for i, p := range d.Params {
			t, err := e.resolveType(ctx, p)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		ret, err := e.resolveType(ctx, *d.Ret)
		if err != nil {
			return nil, err
		}
		return typesystem.Fun{Params: params, Ret: ret}, nil
	case ast.RTypeApp:
		args := make([]typesystem.Type, len(d.Args))
		for i, a := range d.Args {
			t, err := e.resolveType(ctx, a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return e.resolveTypeVar(ctx, d.Path, node.Pos, args)
	}
	return nil, diagnostics.Internalf("unknown raw type shape %T", node.Data)
}

// resolveTypeVar resolves a named type reference, generic when args is
// non-nil.
func (e *env) resolveTypeVar(ctx *diagnostics.Context, path ast.Path, pos source.Position, args []typesystem.Type) (typesystem.Type, error) {
	if name, ok := path.Single(); ok {
		if tv, isParam := e.typeParams[name.Name]; isParam {
			if args != nil {
				ctx.Report(diagnostics.NewError(diagnostics.ErrR001, pos,
					"wrong number of type parameters: %s expects 0, got %d", name.Name, len(args)))
				return typesystem.Unknown{}, nil
			}
			return typesystem.NamedVar{TVar: tv, Name: name.Name}, nil
		}
	}

	ref, diag := e.findSymbol(path)
	if diag != nil {
		ctx.Report(diag)
		return typesystem.Unknown{}, nil
	}
	global, isGlobal := ref.(GlobalRef)
	if !isGlobal {
		ctx.Report(diagnostics.NewError(diagnostics.ErrR002, pos,
			"%s is a local binding, local type definitions are not supported", path))
		return typesystem.Unknown{}, nil
	}
	tv, err := e.tvarOf(global.ID)
	if err != nil {
		// the path resolved to a declaration that is not a type
		ctx.Report(diagnostics.NewError(diagnostics.ErrR002, pos,
			"%s does not name a type", path))
		return typesystem.Unknown{}, nil
	}

	name := path.String()
	if args == nil {
		t, d := typesystem.NewNamedVar(tv, name, pos)
		ctx.Report(d)
		return t, nil
	}
	t, d := typesystem.NewTypeApp(tv, name, args, pos)
	ctx.Report(d)
	return t, nil
}
