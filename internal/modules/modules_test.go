package modules

import (
	"reflect"
	"testing"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

func ident(name string) ast.Ident {
	return ast.Ident{Name: name, Pos: source.Nowhere()}
}

func pubFn(name string) *ast.Func {
	return &ast.Func{Visibility: ast.Public, Name: ident(name), Pos: source.Nowhere()}
}

func privFn(name string) *ast.Func {
	return &ast.Func{Visibility: ast.Private, Name: ident(name), Pos: source.Nowhere()}
}

func pubStruct(name string) *ast.Struct {
	return &ast.Struct{Visibility: ast.Public, Name: ident(name), Pos: source.Nowhere()}
}

func pubMod(name string, items ...ast.ModuleItem) *ast.Module {
	return &ast.Module{Visibility: ast.Public, Name: ident(name), Items: items, Pos: source.Nowhere()}
}

func privMod(name string, items ...ast.ModuleItem) *ast.Module {
	return &ast.Module{Visibility: ast.Private, Name: ident(name), Items: items, Pos: source.Nowhere()}
}

// imp builds `import a::b::X`; impGlob builds `import a::b::*`.
func imp(segs ...string) *ast.Import {
	last := segs[len(segs)-1]
	node := ast.ImportPathNode{Data: ast.ImportExact{Name: ident(last)}, Pos: source.Nowhere()}
	return chain(node, segs[:len(segs)-1])
}

func impAs(alias string, segs ...string) *ast.Import {
	a := ident(alias)
	last := segs[len(segs)-1]
	node := ast.ImportPathNode{Data: ast.ImportExact{Name: ident(last), Alias: &a}, Pos: source.Nowhere()}
	return chain(node, segs[:len(segs)-1])
}

func impGlob(segs ...string) *ast.Import {
	node := ast.ImportPathNode{Data: ast.ImportAll{}, Pos: source.Nowhere()}
	return chain(node, segs)
}

func chain(node ast.ImportPathNode, prefix []string) *ast.Import {
	for i := len(prefix) - 1; i >= 0; i-- {
		next := node
		node = ast.ImportPathNode{
			Data: ast.ImportSeq{Name: ident(prefix[i]), Next: &next},
			Pos:  source.Nowhere(),
		}
	}
	return &ast.Import{Root: node, Pos: source.Nowhere()}
}

func runFiles(t *testing.T, files map[string]*ast.Module) (*Program, *diagnostics.Context) {
	t.Helper()
	ctx := diagnostics.NewContext()
	prog, err := Translate(ctx, source.NewNodeIDAlloc(), &ast.Program{Files: files}, "src")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	return prog, ctx
}

func run(t *testing.T, items ...ast.ModuleItem) (*Program, *diagnostics.Context) {
	t.Helper()
	return runFiles(t, map[string]*ast.Module{
		ast.FileKey([]string{"src"}): {Name: ident("src"), Items: items},
	})
}

// scopeOf walks module names down from the root scope.
func scopeOf(t *testing.T, p *Program, names ...string) (source.NodeID, *Scope) {
	t.Helper()
	id := source.RootID
	for _, name := range names {
		s, ok := p.Tree.Get(id)
		if !ok {
			t.Fatalf("no scope for %s", name)
		}
		b, ok := s.Items[name]
		if !ok {
			t.Fatalf("%s not bound", name)
		}
		id, ok = SymbolID(b.Sym)
		if !ok {
			t.Fatalf("%s is ambiguous", name)
		}
	}
	s, ok := p.Tree.Get(id)
	if !ok {
		t.Fatalf("scope %v missing", id)
	}
	return id, s
}

func TestDuplicateName(t *testing.T) {
	_, ctx := run(t, pubFn("f"), pubFn("f"))
	if !ctx.HasErrors() {
		t.Fatal("duplicate declaration must be reported")
	}
	d := ctx.Diagnostics()[0]
	if d.Code != diagnostics.ErrM002 {
		t.Errorf("code = %s, want %s", d.Code, diagnostics.ErrM002)
	}
}

func TestAmbiguousImport(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X")),
		pubMod("b", pubFn("X")),
		pubMod("c", imp("a", "X"), imp("b", "X")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	amb, ok := c.Items["X"].Sym.(Ambiguous)
	if !ok {
		t.Fatalf("X = %#v, want Ambiguous", c.Items["X"].Sym)
	}
	if len(amb.IDs) != 2 {
		t.Errorf("conflict set has %d ids, want 2", len(amb.IDs))
	}
}

func TestSameDeclarationIsNotAmbiguous(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X")),
		pubMod("c", imp("a", "X"), imp("a", "X")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	if _, ok := c.Items["X"].Sym.(Imported); !ok {
		t.Errorf("X = %#v, want Imported", c.Items["X"].Sym)
	}
}

func TestImportAlias(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X")),
		pubMod("c", impAs("Y", "a", "X")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	if _, ok := c.Items["Y"]; !ok {
		t.Error("alias Y not bound")
	}
	if _, ok := c.Items["X"]; ok {
		t.Error("original name X must not be bound by an aliased import")
	}
}

func TestExactImportBeatsGlob(t *testing.T) {
	layouts := [][]ast.ModuleItem{
		{impGlob("b"), imp("a", "X")},
		{imp("a", "X"), impGlob("b")},
	}
	for _, imports := range layouts {
		p, ctx := run(t,
			pubMod("a", pubFn("X")),
			pubMod("b", pubFn("X")),
			pubMod("c", imports...),
		)
		if ctx.HasErrors() {
			t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
		}
		_, a := scopeOf(t, p, "a")
		wantID, _ := SymbolID(a.Items["X"].Sym)
		_, c := scopeOf(t, p, "c")
		got, ok := c.Items["X"].Sym.(Imported)
		if !ok {
			t.Fatalf("X = %#v, want Imported", c.Items["X"].Sym)
		}
		if got.ID != wantID {
			t.Errorf("X resolves to %v, want a::X (%v)", got.ID, wantID)
		}
	}
}

func TestGlobCollisionIsAmbiguous(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X")),
		pubMod("b", pubFn("X")),
		pubMod("c", impGlob("a"), impGlob("b")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	if _, ok := c.Items["X"].Sym.(Ambiguous); !ok {
		t.Errorf("X = %#v, want Ambiguous", c.Items["X"].Sym)
	}
}

func TestGlobSkipsPrivateItems(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X"), privFn("hidden")),
		pubMod("c", impGlob("a")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	if _, ok := c.Items["X"]; !ok {
		t.Error("public item missing from glob import")
	}
	if _, ok := c.Items["hidden"]; ok {
		t.Error("private item leaked through glob import")
	}
}

func TestReexportConvergence(t *testing.T) {
	// c sees Point through b's re-export and through a directly; both
	// denote the same declaration, so there is exactly one binding.
	p, ctx := run(t,
		pubMod("a", pubStruct("Point")),
		pubMod("b", &ast.Import{Visibility: ast.Public, Root: imp("a", "Point").Root, Pos: source.Nowhere()}, pubFn("make")),
		pubMod("c", impGlob("b"), imp("a", "Point")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, a := scopeOf(t, p, "a")
	wantID, _ := SymbolID(a.Items["Point"].Sym)
	_, c := scopeOf(t, p, "c")
	got, ok := SymbolID(c.Items["Point"].Sym)
	if !ok {
		t.Fatalf("Point = %#v, want a single binding", c.Items["Point"].Sym)
	}
	if got != wantID {
		t.Errorf("Point resolves to %v, want %v", got, wantID)
	}
	if _, ok := c.Items["make"]; !ok {
		t.Error("glob of b must bring in make")
	}
}

func TestSolveIsIdempotent(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", pubFn("X")),
		pubMod("b", pubFn("X")),
		pubMod("c", impGlob("a"), impGlob("b"), imp("a", "X")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	again := solve(diagnostics.NewContext(), p.Tree)
	if !reflect.DeepEqual(p.Tree.scopes, again.scopes) {
		t.Error("re-solving an already-solved tree changed it")
	}
}

func TestGlobFromNonNamespace(t *testing.T) {
	_, ctx := run(t,
		pubFn("f"),
		pubMod("c", impGlob("f")),
	)
	if !ctx.HasErrors() {
		t.Fatal("glob import from a function must be reported")
	}
	if got := ctx.Diagnostics()[0].Code; got != diagnostics.ErrM007 {
		t.Errorf("code = %s, want %s", got, diagnostics.ErrM007)
	}
}

func TestImportThroughFunction(t *testing.T) {
	_, ctx := run(t,
		pubMod("a", pubFn("f")),
		pubMod("c", imp("a", "f", "inner")),
	)
	if !ctx.HasErrors() {
		t.Fatal("importing through a function must be reported")
	}
	if got := ctx.Diagnostics()[0].Code; got != diagnostics.ErrM005 {
		t.Errorf("code = %s, want %s", got, diagnostics.ErrM005)
	}
}

func TestPrivateImportRejected(t *testing.T) {
	_, ctx := run(t,
		pubMod("a", privFn("X")),
		pubMod("c", imp("a", "X")),
	)
	if !ctx.HasErrors() {
		t.Fatal("importing a private item must be reported")
	}
	if got := ctx.Diagnostics()[0].Code; got != diagnostics.ErrM006 {
		t.Errorf("code = %s, want %s", got, diagnostics.ErrM006)
	}
}

func TestSuperImport(t *testing.T) {
	p, ctx := run(t,
		pubMod("outer",
			pubFn("helper"),
			privMod("inner", imp("super", "helper")),
		),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, inner := scopeOf(t, p, "outer", "inner")
	if _, ok := inner.Items["helper"].Sym.(Imported); !ok {
		t.Errorf("helper = %#v, want Imported via super", inner.Items["helper"].Sym)
	}
}

func TestEnumConstructorImport(t *testing.T) {
	p, ctx := run(t,
		pubMod("a", &ast.Enum{
			Visibility:   ast.Public,
			Name:         ident("Color"),
			Constructors: []ast.Constructor{{Name: ident("Red")}, {Name: ident("Blue")}},
			Pos:          source.Nowhere(),
		}),
		pubMod("c", imp("a", "Color", "Red")),
	)
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, c := scopeOf(t, p, "c")
	b, ok := c.Items["Red"]
	if !ok {
		t.Fatal("Red not bound")
	}
	if b.Kind != KindCons {
		t.Errorf("kind = %v, want %v", b.Kind, KindCons)
	}
}

func TestModuleDeclSplicing(t *testing.T) {
	p, ctx := runFiles(t, map[string]*ast.Module{
		ast.FileKey([]string{"src"}): {
			Name: ident("src"),
			Items: []ast.ModuleItem{
				&ast.ModuleDecl{Visibility: ast.Public, Name: ident("util"), Pos: source.Nowhere()},
			},
		},
		ast.FileKey([]string{"src", "util"}): {
			Name:  ident("util"),
			Items: []ast.ModuleItem{pubFn("helper")},
		},
	})
	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diagnostics()[0].Message())
	}
	_, util := scopeOf(t, p, "util")
	if _, ok := util.Items["helper"]; !ok {
		t.Error("spliced module lost its items")
	}
}

func TestMissingModuleFile(t *testing.T) {
	_, ctx := run(t, &ast.ModuleDecl{Name: ident("ghost"), Pos: source.Nowhere()})
	if !ctx.HasErrors() {
		t.Fatal("missing module file must be reported")
	}
	if got := ctx.Diagnostics()[0].Code; got != diagnostics.ErrM001 {
		t.Errorf("code = %s, want %s", got, diagnostics.ErrM001)
	}
}

func TestAllocationDeterminism(t *testing.T) {
	build := func() *Program {
		p, _ := run(t,
			pubMod("a", pubStruct("Point"), pubFn("f")),
			pubMod("b", imp("a", "Point")),
		)
		return p
	}
	first := build()
	second := build()
	if !reflect.DeepEqual(first.Tree.scopes, second.Tree.scopes) {
		t.Error("identical input produced different trees")
	}
}
