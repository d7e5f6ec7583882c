package resolver

import (
	"testing"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/modules"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/symbols"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

func ident(name string) ast.Ident {
	return ast.Ident{Name: name, Pos: source.Nowhere()}
}

func path(segs ...string) ast.Path {
	ids := make([]ast.Ident, len(segs))
	for i, s := range segs {
		ids[i] = ident(s)
	}
	return ast.NewPath(ids...)
}

func tyVar(segs ...string) ast.RTypeNode {
	return ast.RTypeNode{Data: ast.RTypeVar{Path: path(segs...)}, Pos: source.Nowhere()}
}

func tyApp(name string, args ...ast.RTypeNode) ast.RTypeNode {
	return ast.RTypeNode{Data: ast.RTypeApp{Path: path(name), Args: args}, Pos: source.Nowhere()}
}

// builtinStruct declares a bodyless named type bound to a reserved
// builtin, the way the standard library introduces u32 and friends.
func builtinStruct(name string) *ast.Struct {
	return &ast.Struct{
		Attributes: []ast.Attribute{{Name: ident("builtin"), Pos: source.Nowhere()}},
		Visibility: ast.Public,
		Name:       ident(name),
		Pos:        source.Nowhere(),
	}
}

func namedArg(name string, t ast.RTypeNode) ast.FnArg {
	return ast.FnArg{Kind: ast.ArgNamed, Name: ident(name), Type: &t, Pos: source.Nowhere()}
}

func fnDecl(name string, args []ast.FnArg, ret *ast.RTypeNode, body *ast.ExprNode) *ast.Func {
	return &ast.Func{
		Visibility: ast.Public,
		Name:       ident(name),
		Args:       args,
		RetType:    ret,
		Body:       body,
		Pos:        source.Nowhere(),
	}
}

func varExpr(segs ...string) ast.ExprNode {
	return ast.ExprNode{Data: ast.ExprVar{Path: path(segs...)}, Pos: source.Nowhere()}
}

func numExpr(v uint64) ast.ExprNode {
	return ast.ExprNode{Data: ast.ExprNum{Value: v}, Pos: source.Nowhere()}
}

func openBlock(last ast.ExprNode, stmts ...ast.ExprNode) *ast.ExprNode {
	return &ast.ExprNode{Data: ast.ExprOpenBlock{Stmts: stmts, Last: &last}, Pos: source.Nowhere()}
}

func runResolve(t *testing.T, items ...ast.ModuleItem) (*Program, *diagnostics.Context) {
	t.Helper()
	ctx := diagnostics.NewContext()
	files := map[string]*ast.Module{
		ast.FileKey([]string{"src"}): {Name: ident("src"), Items: items},
	}
	mprog, err := modules.Translate(ctx, source.NewNodeIDAlloc(), &ast.Program{Files: files}, "src")
	if err != nil {
		t.Fatalf("module tree: %v", err)
	}
	prog, err := Translate(ctx, config.Default(), typesystem.NewTVarAlloc(), mprog)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return prog, ctx
}

func findFunc(t *testing.T, prog *Program, name string) *Func {
	t.Helper()
	for _, f := range prog.Functions {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no resolved function %q", name)
	return nil
}

func wantCodes(t *testing.T, ctx *diagnostics.Context, codes ...diagnostics.Code) {
	t.Helper()
	var got []diagnostics.Code
	for _, d := range ctx.Diagnostics() {
		got = append(got, d.Code)
	}
	if len(got) != len(codes) {
		t.Fatalf("got diagnostics %v, want %v", got, codes)
	}
	for i, c := range codes {
		if got[i] != c {
			t.Fatalf("diagnostic %d: got %s, want %s", i, got[i], c)
		}
	}
}

func TestLocalAndGlobalReferences(t *testing.T) {
	u32 := tyVar("u32")
	prog, ctx := runResolve(t,
		builtinStruct("u32"),
		fnDecl("id", []ast.FnArg{namedArg("x", u32)}, &u32, openBlock(varExpr("x"))),
		fnDecl("use", nil, &u32, openBlock(ast.ExprNode{
			Data: ast.ExprCall{Callee: &ast.ExprNode{Data: ast.ExprVar{Path: path("id")}}, Args: []ast.ExprNode{numExpr(1)}},
			Pos:  source.Nowhere(),
		})),
	)
	wantCodes(t, ctx)

	id := findFunc(t, prog, "id")
	block := id.Body.Data.(Block)
	if ref := block.Last.Data.(Var).Ref; ref != (LocalRef{Name: "x"}) {
		t.Fatalf("argument reference resolved to %#v", ref)
	}

	use := findFunc(t, prog, "use")
	call := use.Body.Data.(Block).Last.Data.(FunCall)
	callee, ok := call.Callee.Data.(Var).Ref.(GlobalRef)
	if !ok || callee.ID != id.ID {
		t.Fatalf("callee resolved to %#v, want global %v", call.Callee.Data, id.ID)
	}
}

func TestSliceTypesLowerToPointers(t *testing.T) {
	u8 := tyVar("u8")
	slice := ast.RTypeNode{Data: ast.RTypeSlice{Elem: &u8}, Pos: source.Nowhere()}
	mutSlice := ast.RTypeNode{Data: ast.RTypeMutSlice{Elem: &u8}, Pos: source.Nowhere()}
	prog, ctx := runResolve(t,
		builtinStruct("u8"),
		fnDecl("f", []ast.FnArg{namedArg("r", slice), namedArg("w", mutSlice)}, nil,
			openBlock(ast.ExprNode{Data: ast.ExprTuple{}, Pos: source.Nowhere()})),
	)
	wantCodes(t, ctx)

	f := findFunc(t, prog, "f")
	if _, ok := f.Args[0].Type.(typesystem.Ptr); !ok {
		t.Fatalf("read slice lowered to %v", f.Args[0].Type)
	}
	if _, ok := f.Args[1].Type.(typesystem.MutPtr); !ok {
		t.Fatalf("mut slice lowered to %v", f.Args[1].Type)
	}
}

func TestGenericStructParameters(t *testing.T) {
	prog, ctx := runResolve(t,
		&ast.Struct{
			Visibility: ast.Public,
			Name:       ident("Pair"),
			TypeParams: []ast.Ident{ident("T")},
			Fields: []ast.StructField{
				{Name: ident("a"), Type: tyVar("T")},
				{Name: ident("b"), Type: tyVar("T")},
			},
			Pos: source.Nowhere(),
		},
	)
	wantCodes(t, ctx)

	st := prog.SymTable
	var pair *symbols.TypeInfo
	for _, id := range st.Symbols() {
		info, _ := st.FindSymInfo(id)
		if s, ok := info.Kind.(symbols.StructSym); ok && info.Name == "Pair" {
			pair, _ = st.FindTypeInfo(s.TVar)
			if s.TVar.Kind != typesystem.KindTypeCons || s.TVar.Arity != 1 {
				t.Fatalf("Pair has kind %v arity %d", s.TVar.Kind, s.TVar.Arity)
			}
		}
	}
	if pair == nil {
		t.Fatal("Pair not registered")
	}
	fields := pair.Kind.(symbols.StructType).Fields
	a := fields[0].Type.(typesystem.NamedVar)
	b := fields[1].Type.(typesystem.NamedVar)
	if a.TVar.Kind != typesystem.KindParameter || a.TVar != b.TVar {
		t.Fatalf("fields resolved to %v and %v, want one shared parameter", a, b)
	}
}

func TestTypeParameterArity(t *testing.T) {
	pair := &ast.Struct{
		Visibility: ast.Public,
		Name:       ident("Pair"),
		TypeParams: []ast.Ident{ident("T")},
		Fields:     []ast.StructField{{Name: ident("a"), Type: tyVar("T")}},
		Pos:        source.Nowhere(),
	}
	bare := tyVar("Pair")
	_, ctx := runResolve(t,
		pair,
		fnDecl("f", []ast.FnArg{namedArg("p", bare)}, nil,
			openBlock(ast.ExprNode{Data: ast.ExprTuple{}, Pos: source.Nowhere()})),
	)
	wantCodes(t, ctx, diagnostics.ErrR001)
}

func TestTypeAppOnMonomorphicType(t *testing.T) {
	_, ctx := runResolve(t,
		builtinStruct("u32"),
		builtinStruct("u8"),
		fnDecl("f", []ast.FnArg{namedArg("x", tyApp("u32", tyVar("u8")))}, nil,
			openBlock(ast.ExprNode{Data: ast.ExprTuple{}, Pos: source.Nowhere()})),
	)
	wantCodes(t, ctx, diagnostics.ErrR001)
}

func TestDuplicateFieldReported(t *testing.T) {
	_, ctx := runResolve(t,
		builtinStruct("u32"),
		&ast.Struct{
			Visibility: ast.Public,
			Name:       ident("S"),
			Fields: []ast.StructField{
				{Name: ident("x"), Type: tyVar("u32")},
				{Name: ident("x"), Type: tyVar("u32")},
			},
			Pos: source.Nowhere(),
		},
	)
	wantCodes(t, ctx, diagnostics.ErrR004)
}

func TestSelfOutsideMethod(t *testing.T) {
	_, ctx := runResolve(t,
		fnDecl("f", []ast.FnArg{{Kind: ast.ArgSelf, Pos: source.Nowhere()}}, nil,
			openBlock(ast.ExprNode{Data: ast.ExprTuple{}, Pos: source.Nowhere()})),
	)
	wantCodes(t, ctx, diagnostics.ErrR005)
}

func TestBodylessFunctions(t *testing.T) {
	extern := fnDecl("write", nil, nil, nil)
	extern.Attributes = []ast.Attribute{{Name: ident("extern"), Pos: source.Nowhere()}}
	prog, ctx := runResolve(t, extern, fnDecl("broken", nil, nil, nil))
	wantCodes(t, ctx, diagnostics.ErrR003)
	if len(prog.Functions) != 0 {
		t.Fatalf("bodyless declarations produced %d checked functions", len(prog.Functions))
	}
}

func TestMethodReceiverForms(t *testing.T) {
	u32 := tyVar("u32")
	point := &ast.Struct{
		Visibility: ast.Public,
		Name:       ident("Point"),
		Fields:     []ast.StructField{{Name: ident("x"), Type: u32}},
		Methods: []*ast.Func{
			fnDecl("get", []ast.FnArg{{Kind: ast.ArgSelf, Pos: source.Nowhere()}}, &u32,
				openBlock(ast.ExprNode{Data: ast.ExprField{
					Recv: &ast.ExprNode{Data: ast.ExprVar{Path: path("self")}},
					Name: ident("x"),
				}, Pos: source.Nowhere()})),
			fnDecl("set", []ast.FnArg{{Kind: ast.ArgMutPtrSelf, Pos: source.Nowhere()}}, nil,
				openBlock(ast.ExprNode{Data: ast.ExprTuple{}, Pos: source.Nowhere()})),
		},
		Pos: source.Nowhere(),
	}
	prog, ctx := runResolve(t, builtinStruct("u32"), point)
	wantCodes(t, ctx)

	get := findFunc(t, prog, "get")
	recv, ok := get.Args[0].Type.(typesystem.NamedVar)
	if !ok || recv.Name != "Point" {
		t.Fatalf("by-value receiver resolved to %v", get.Args[0].Type)
	}
	if ref := get.Body.Data.(Block).Last.Data.(FieldAccess).Expr.Data.(Var).Ref; ref != (LocalRef{Name: "self"}) {
		t.Fatalf("self resolved to %#v", ref)
	}

	set := findFunc(t, prog, "set")
	if _, ok := set.Args[0].Type.(typesystem.MutPtr); !ok {
		t.Fatalf("mut pointer receiver resolved to %v", set.Args[0].Type)
	}
}

func TestEnumConstructors(t *testing.T) {
	opt := &ast.Enum{
		Visibility: ast.Public,
		Name:       ident("Option"),
		TypeParams: []ast.Ident{ident("T")},
		Constructors: []ast.Constructor{
			{Name: ident("Some"), Params: []ast.RTypeNode{tyVar("T")}, Pos: source.Nowhere()},
			{Name: ident("None"), Pos: source.Nowhere()},
		},
		Pos: source.Nowhere(),
	}
	match := ast.ExprNode{Data: ast.ExprMatch{
		Subject: &ast.ExprNode{Data: ast.ExprVar{Path: path("x")}},
		Clauses: []ast.MatchClause{
			{
				Pattern: ast.PatternNode{Data: ast.PatCons{
					Path:  path("Option", "Some"),
					Elems: []ast.PatternNode{{Data: ast.PatVar{Name: ident("v")}, Pos: source.Nowhere()}},
				}, Pos: source.Nowhere()},
				Expr: varExpr("v"),
				Pos:  source.Nowhere(),
			},
			{
				Pattern: ast.PatternNode{Data: ast.PatWildcard{}, Pos: source.Nowhere()},
				Expr:    numExpr(0),
				Pos:     source.Nowhere(),
			},
		},
	}, Pos: source.Nowhere()}
	u32 := tyVar("u32")
	optU32 := tyApp("Option", tyVar("u32"))
	prog, ctx := runResolve(t,
		builtinStruct("u32"),
		opt,
		fnDecl("unwrap", []ast.FnArg{namedArg("x", optU32)}, &u32, openBlock(match)),
	)
	wantCodes(t, ctx)

	st := prog.SymTable
	var someID source.NodeID
	for _, id := range st.Symbols() {
		info, _ := st.FindSymInfo(id)
		cons, ok := info.Kind.(symbols.EnumConsSym)
		if !ok {
			continue
		}
		switch info.Name {
		case "Some":
			someID = id
			if cons.Index != 0 || len(cons.Args) != 1 {
				t.Fatalf("Some registered as index %d with %d args", cons.Index, len(cons.Args))
			}
		case "None":
			if cons.Index != 1 || len(cons.Args) != 0 {
				t.Fatalf("None registered as index %d with %d args", cons.Index, len(cons.Args))
			}
		}
	}

	unwrap := findFunc(t, prog, "unwrap")
	m := unwrap.Body.Data.(Block).Last.Data.(Match)
	pat := m.Clauses[0].Pattern.Data.(PatCons)
	if pat.ID != someID {
		t.Fatalf("pattern constructor resolved to %v, want %v", pat.ID, someID)
	}
	if ref := m.Clauses[0].Expr.Data.(Var).Ref; ref != (LocalRef{Name: "v"}) {
		t.Fatalf("pattern binding resolved to %#v", ref)
	}
}

func TestBuiltinDeclarationUsesReservedTVar(t *testing.T) {
	prog, ctx := runResolve(t, builtinStruct("u32"))
	wantCodes(t, ctx)

	st := prog.SymTable
	want, _ := typesystem.BuiltinTVar("u32")
	for _, id := range st.Symbols() {
		info, _ := st.FindSymInfo(id)
		s, ok := info.Kind.(symbols.StructSym)
		if !ok || info.Name != "u32" {
			continue
		}
		if s.TVar != want {
			t.Fatalf("u32 bound to %v, want reserved %v", s.TVar, want)
		}
		ti, _ := st.FindTypeInfo(s.TVar)
		if _, ok := ti.Kind.(symbols.BuiltinType); !ok {
			t.Fatalf("u32 registered as %T", ti.Kind)
		}
		return
	}
	t.Fatal("u32 not registered")
}

func TestDuplicateFieldInit(t *testing.T) {
	u32 := tyVar("u32")
	cons := ast.ExprNode{Data: ast.ExprStructCons{
		Path: path("S"),
		Fields: []ast.FieldInit{
			{Name: ident("x"), Value: numExpr(1)},
			{Name: ident("x"), Value: numExpr(2)},
		},
	}, Pos: source.Nowhere()}
	_, ctx := runResolve(t,
		builtinStruct("u32"),
		&ast.Struct{
			Visibility: ast.Public,
			Name:       ident("S"),
			Fields:     []ast.StructField{{Name: ident("x"), Type: u32}},
			Pos:        source.Nowhere(),
		},
		fnDecl("mk", nil, &ast.RTypeNode{Data: ast.RTypeVar{Path: path("S")}, Pos: source.Nowhere()},
			openBlock(cons)),
	)
	wantCodes(t, ctx, diagnostics.ErrT011)
}

func TestLetIntroducesLocal(t *testing.T) {
	u32 := tyVar("u32")
	body := openBlock(
		varExpr("n"),
		ast.ExprNode{Data: ast.ExprLet{
			Name:  ident("n"),
			Value: &ast.ExprNode{Data: ast.ExprNum{Value: 3}, Pos: source.Nowhere()},
		}, Pos: source.Nowhere()},
	)
	prog, ctx := runResolve(t,
		builtinStruct("u32"),
		fnDecl("f", nil, &u32, body),
	)
	wantCodes(t, ctx)

	f := findFunc(t, prog, "f")
	block := f.Body.Data.(Block)
	if ref := block.Last.Data.(Var).Ref; ref != (LocalRef{Name: "n"}) {
		t.Fatalf("let binding resolved to %#v", ref)
	}
}
