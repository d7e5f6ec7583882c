package modules

import (
	"sort"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Tree is the namespace tree, keyed by the NodeID of the declaration
// that owns each scope. It is mutable while the module tree is built
// and imports are solved; afterwards it is a frozen snapshot shared by
// every later stage.
type Tree struct {
	scopes map[source.NodeID]*Scope
}

func NewTree() *Tree {
	t := &Tree{scopes: make(map[source.NodeID]*Scope)}
	t.scopes[source.RootID] = &Scope{
		Kind:  ScopeRoot,
		Items: make(map[string]Binding),
	}
	return t
}

// Insert registers the scope owned by id.
func (t *Tree) Insert(id source.NodeID, s *Scope) {
	t.scopes[id] = s
}

// Get returns the scope owned by id.
func (t *Tree) Get(id source.NodeID) (*Scope, bool) {
	s, ok := t.scopes[id]
	return s, ok
}

// ScopeIDs returns every scope owner in sorted order.
func (t *Tree) ScopeIDs() []source.NodeID {
	ids := make([]source.NodeID, 0, len(t.scopes))
	for id := range t.scopes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone deep-copies every scope's bindings. Pending import lists are
// shared; they are never mutated after construction.
func (t *Tree) Clone() *Tree {
	scopes := make(map[source.NodeID]*Scope, len(t.scopes))
	for id, s := range t.scopes {
		scopes[id] = s.clone()
	}
	return &Tree{scopes: scopes}
}

// AddItem binds name in the scope owned by scopeID, failing on a
// duplicate.
func (t *Tree) AddItem(scopeID source.NodeID, name ast.Ident, b Binding) *diagnostics.Diagnostic {
	s := t.scopes[scopeID]
	if _, taken := s.Items[name.Name]; taken {
		return diagnostics.NewError(diagnostics.ErrM002, name.Pos,
			"the name %s is already bound in this scope", name.Name)
	}
	s.Items[name.Name] = b
	return nil
}

// FindPath resolves a dotted path starting in the scope owned by
// scopeID. The private guard permits one private access along the
// path, which is what lets a module reach its own and its parent's
// private items; it drops to false on the first descent into a child
// module. The returned guard is the value in force where the path
// ended; glob imports use it to decide whether private items are
// visible.
//
// Ambiguous bindings are never returned; they surface as a
// diagnostic.
func (t *Tree) FindPath(scopeID source.NodeID, path ast.Path, privateGuard bool) (Binding, bool, *diagnostics.Diagnostic) {
	name := path.First()
	rest := path.Rest()
	scope, ok := t.scopes[scopeID]
	if !ok {
		return Binding{}, false, diagnostics.NewError(diagnostics.ErrM003, name.Pos,
			"cannot find %s in this scope", name.Name)
	}

	binding, found := scope.Items[name.Name]
	if !found {
		if !privateGuard {
			return Binding{}, false, diagnostics.NewError(diagnostics.ErrM003, name.Pos,
				"cannot find %s in this scope", name.Name)
		}
		if name.Name == "super" {
			if !scope.HasParent() {
				return Binding{}, false, diagnostics.NewError(diagnostics.ErrM003, name.Pos,
					"the root module has no parent")
			}
			if rest.Len() == 0 {
				return Binding{
					Vis:  ast.Private,
					Kind: KindModule,
					Sym:  Imported{ID: scope.Parent},
				}, privateGuard, nil
			}
			return t.FindPath(scope.Parent, rest, privateGuard)
		}
		// Leading segment not in the local scope: retry from the root.
		return t.FindPath(source.RootID, path, false)
	}

	if binding.Vis == ast.Private && !privateGuard {
		return Binding{}, false, diagnostics.NewError(diagnostics.ErrM006, name.Pos,
			"%s is private", name.Name)
	}
	if rest.Len() == 0 {
		if _, amb := binding.Sym.(Ambiguous); amb {
			return Binding{}, false, ambiguousDiag(name, binding)
		}
		return binding, privateGuard, nil
	}

	id, single := SymbolID(binding.Sym)
	if !single {
		return Binding{}, false, ambiguousDiag(name, binding)
	}
	guard := false
	switch binding.Kind {
	case KindModule:
	case KindStruct, KindEnum:
		guard = true
	case KindFunc, KindCons:
		return Binding{}, false, diagnostics.NewError(diagnostics.ErrM005, name.Pos,
			"cannot import from %s", name.Name).
			WithNote("%s is a %s, not a namespace", name.Name, binding.Kind)
	}
	return t.FindPath(id, rest, guard)
}

func ambiguousDiag(name ast.Ident, b Binding) *diagnostics.Diagnostic {
	d := diagnostics.NewError(diagnostics.ErrM004, name.Pos,
		"%s is ambiguous", name.Name)
	if amb, ok := b.Sym.(Ambiguous); ok {
		d.WithNote("%s may refer to any of %d distinct declarations brought in by imports", name.Name, len(amb.IDs))
	}
	return d
}
