package modules

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Translate splices the parsed file map into a single module tree
// rooted at the entry module, assigns a NodeID to every declaration,
// registers every namespace scope, and solves imports to a fixed
// point.
//
// A missing entry module is an internal error; everything else that
// can go wrong is a user-facing diagnostic.
func Translate(ctx *diagnostics.Context, alloc *source.NodeIDAlloc, prog *ast.Program, entry string) (*Program, error) {
	files := make(map[string]*ast.Module, len(prog.Files))
	for key, m := range prog.Files {
		files[key] = m
	}

	b := &builder{
		ctx:   ctx,
		alloc: alloc,
		tree:  NewTree(),
		cur:   source.RootID,
		files: files,
	}

	rootMod, ok := b.takeFile([]string{entry})
	if !ok {
		return nil, diagnostics.Internalf("failed to load the entry module %q", entry)
	}

	root := b.trRoot(rootMod)
	tree := solve(ctx, b.tree)

	return &Program{Tree: tree, Root: root}, nil
}

// trRoot splices the entry module directly into the root scope, so
// its declarations resolve through the root-relative fallback from
// anywhere in the tree.
func (b *builder) trRoot(m *ast.Module) *Module {
	b.curPath = append(b.curPath, m.Name.Name)
	items := b.trItems(m.Items)
	b.curPath = b.curPath[:len(b.curPath)-1]
	return &Module{
		Attributes: m.Attributes,
		Visibility: ast.Public,
		ID:         source.RootID,
		Name:       m.Name,
		Items:      items,
		Pos:        m.Pos,
	}
}

type builder struct {
	ctx     *diagnostics.Context
	alloc   *source.NodeIDAlloc
	tree    *Tree
	cur     source.NodeID
	curPath []string
	files   map[string]*ast.Module
}

func (b *builder) takeFile(path []string) (*ast.Module, bool) {
	key := ast.FileKey(path)
	m, ok := b.files[key]
	if ok {
		delete(b.files, key)
	}
	return m, ok
}

func (b *builder) enter(id source.NodeID, name string) {
	b.cur = id
	b.curPath = append(b.curPath, name)
}

func (b *builder) leave() {
	scope, _ := b.tree.Get(b.cur)
	b.cur = scope.Parent
	b.curPath = b.curPath[:len(b.curPath)-1]
}

// declID allocates the declaration id, short-circuiting declarations
// marked @builtin to their reserved ids.
func (b *builder) declID(name string, attrs []ast.Attribute) source.NodeID {
	if ast.HasAttr(attrs, config.AttrBuiltin) {
		if id, ok := source.BuiltinNodeID(name); ok {
			return id
		}
	}
	return b.alloc.Fresh()
}

func (b *builder) trModule(m *ast.Module) *Module {
	id := b.alloc.Fresh()

	if d := b.tree.AddItem(b.cur, m.Name, Binding{
		Vis:  m.Visibility,
		Kind: KindModule,
		Sym:  Local{ID: id},
	}); d != nil {
		b.ctx.Report(d)
		return &Module{ID: id, Name: m.Name, Pos: m.Pos}
	}
	b.tree.Insert(id, &Scope{
		Kind:   ScopeModule,
		Parent: b.cur,
		Items:  make(map[string]Binding),
	})
	b.enter(id, m.Name.Name)
	items := b.trItems(m.Items)
	b.leave()

	return &Module{
		Attributes: m.Attributes,
		Visibility: m.Visibility,
		ID:         id,
		Name:       m.Name,
		Items:      items,
		Pos:        m.Pos,
	}
}

func (b *builder) trItems(raw []ast.ModuleItem) []Item {
	var items []Item
	for _, raw := range raw {
		switch it := raw.(type) {
		case *ast.Module:
			items = append(items, b.trModule(it))
		case *ast.ModuleDecl:
			sub, ok := b.takeFile(append(append([]string{}, b.curPath...), it.Name.Name))
			if !ok {
				b.ctx.Report(diagnostics.NewError(diagnostics.ErrM001, it.Pos,
					"no file implements module %s", it.Name.Name))
				continue
			}
			// `pub mod name;` carries the visibility; the file
			// carries the contents.
			sub.Name = it.Name
			sub.Visibility = it.Visibility
			sub.Attributes = append(sub.Attributes, it.Attributes...)
			items = append(items, b.trModule(sub))
		case *ast.Import:
			scope, _ := b.tree.Get(b.cur)
			scope.Imports = append(scope.Imports, flattenImport(it)...)
		case *ast.Func:
			if f := b.trFunc(it); f != nil {
				items = append(items, f)
			}
		case *ast.Struct:
			if s := b.trStruct(it); s != nil {
				items = append(items, s)
			}
		case *ast.Enum:
			if e := b.trEnum(it); e != nil {
				items = append(items, e)
			}
		case *ast.ItemError:
			// parser recovery placeholder
		}
	}
	return items
}

func (b *builder) trFunc(f *ast.Func) *Func {
	id := b.alloc.Fresh()
	if d := b.tree.AddItem(b.cur, f.Name, Binding{
		Vis:  f.Visibility,
		Kind: KindFunc,
		Sym:  Local{ID: id},
	}); d != nil {
		b.ctx.Report(d)
		return nil
	}
	return &Func{
		Attributes: f.Attributes,
		Visibility: f.Visibility,
		ID:         id,
		Name:       f.Name,
		TypeParams: f.TypeParams,
		Args:       f.Args,
		RetType:    f.RetType,
		Body:       f.Body,
		Pos:        f.Pos,
	}
}

func (b *builder) trStruct(s *ast.Struct) *Struct {
	id := b.declID(s.Name.Name, s.Attributes)
	if d := b.tree.AddItem(b.cur, s.Name, Binding{
		Vis:  s.Visibility,
		Kind: KindStruct,
		Sym:  Local{ID: id},
	}); d != nil {
		b.ctx.Report(d)
		return nil
	}
	b.tree.Insert(id, &Scope{
		Kind:   ScopeStruct,
		Parent: b.cur,
		Items:  make(map[string]Binding),
	})
	return &Struct{
		Attributes: s.Attributes,
		Visibility: s.Visibility,
		ID:         id,
		Name:       s.Name,
		TypeParams: s.TypeParams,
		Fields:     s.Fields,
		Methods:    b.trMethods(s.Methods),
		Pos:        s.Pos,
	}
}

func (b *builder) trEnum(e *ast.Enum) *Enum {
	id := b.declID(e.Name.Name, e.Attributes)
	if d := b.tree.AddItem(b.cur, e.Name, Binding{
		Vis:  e.Visibility,
		Kind: KindEnum,
		Sym:  Local{ID: id},
	}); d != nil {
		b.ctx.Report(d)
		return nil
	}
	b.tree.Insert(id, &Scope{
		Kind:   ScopeEnum,
		Parent: b.cur,
		Items:  make(map[string]Binding),
	})
	b.enter(id, e.Name.Name)
	defer b.leave()

	var constructors []Constructor
	for _, c := range e.Constructors {
		consID := b.alloc.Fresh()
		if d := b.tree.AddItem(b.cur, c.Name, Binding{
			Vis:  e.Visibility,
			Kind: KindCons,
			Sym:  Local{ID: consID},
		}); d != nil {
			b.ctx.Report(d)
			continue
		}
		constructors = append(constructors, Constructor{
			Attributes: c.Attributes,
			ID:         consID,
			Name:       c.Name,
			Params:     c.Params,
			Pos:        c.Pos,
		})
	}

	return &Enum{
		Attributes:   e.Attributes,
		Visibility:   e.Visibility,
		ID:           id,
		Name:         e.Name,
		TypeParams:   e.TypeParams,
		Constructors: constructors,
		Methods:      b.trMethods(e.Methods),
		Pos:          e.Pos,
	}
}

// trMethods assigns ids to a method block. Methods are reached through
// the symbol table's method map, not the namespace, so they are not
// bound in the owning scope.
func (b *builder) trMethods(methods []*ast.Func) []*Func {
	var out []*Func
	for _, m := range methods {
		out = append(out, &Func{
			Attributes: m.Attributes,
			Visibility: m.Visibility,
			ID:         b.alloc.Fresh(),
			Name:       m.Name,
			TypeParams: m.TypeParams,
			Args:       m.Args,
			RetType:    m.RetType,
			Body:       m.Body,
			Pos:        m.Pos,
		})
	}
	return out
}

// flattenImport turns one (possibly nested) import statement into the
// flat pending imports the solver works on.
func flattenImport(imp *ast.Import) []PendingImport {
	var out []PendingImport
	flattenImportPath(imp.Root, ast.Path{}, imp.Visibility, &out)
	return out
}

func flattenImportPath(node ast.ImportPathNode, prefix ast.Path, vis ast.Visibility, out *[]PendingImport) {
	switch d := node.Data.(type) {
	case ast.ImportExact:
		segs := append(append([]ast.Ident{}, prefix.Segments...), d.Name)
		*out = append(*out, PendingImport{
			Path:   ast.Path{Segments: segs},
			Alias:  d.Alias,
			IsGlob: false,
			Vis:    vis,
			Pos:    node.Pos,
		})
	case ast.ImportAll:
		*out = append(*out, PendingImport{
			Path:   prefix,
			IsGlob: true,
			Vis:    vis,
			Pos:    node.Pos,
		})
	case ast.ImportSeq:
		segs := append(append([]ast.Ident{}, prefix.Segments...), d.Name)
		flattenImportPath(*d.Next, ast.Path{Segments: segs}, vis, out)
	case ast.ImportMany:
		for _, p := range d.Paths {
			flattenImportPath(p, prefix, vis, out)
		}
	}
}
