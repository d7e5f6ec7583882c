// Package modules builds the namespace tree from the parsed file map
// and solves imports to a fixed point. Types play no part here; the
// resolver links them afterwards against the frozen tree.
package modules

import (
	"sort"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Kind classifies what a name is bound to.
type Kind int

const (
	KindModule Kind = iota
	KindFunc
	KindStruct
	KindEnum
	KindCons
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunc:
		return "function"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindCons:
		return "enum constructor"
	}
	return "item"
}

// Symbol is what a binding denotes. During import solving a slot only
// moves forward: absent, then one of Local/Imported/GlobImported, then
// Ambiguous, never backward.
type Symbol interface {
	isSymbol()
}

func (Local) isSymbol()        {}
func (Imported) isSymbol()     {}
func (GlobImported) isSymbol() {}
func (Ambiguous) isSymbol()    {}

// Local is a declaration in this very scope.
type Local struct {
	ID source.NodeID
}

// Imported came from an exact import.
type Imported struct {
	ID source.NodeID
}

// GlobImported came from a glob import; any exact binding shadows it.
type GlobImported struct {
	ID source.NodeID
}

// Ambiguous holds every distinct declaration the name may refer to.
// IDs stays sorted and free of duplicates.
type Ambiguous struct {
	IDs []source.NodeID
}

// WithID returns an Ambiguous extended by id, and whether that changed
// anything.
func (a Ambiguous) WithID(id source.NodeID) (Ambiguous, bool) {
	i := sort.Search(len(a.IDs), func(i int) bool { return a.IDs[i] >= id })
	if i < len(a.IDs) && a.IDs[i] == id {
		return a, false
	}
	ids := make([]source.NodeID, 0, len(a.IDs)+1)
	ids = append(ids, a.IDs[:i]...)
	ids = append(ids, id)
	ids = append(ids, a.IDs[i:]...)
	return Ambiguous{IDs: ids}, true
}

// NewAmbiguous builds the two-element initial conflict set.
func NewAmbiguous(a, b source.NodeID) Ambiguous {
	if a == b {
		return Ambiguous{IDs: []source.NodeID{a}}
	}
	if a > b {
		a, b = b, a
	}
	return Ambiguous{IDs: []source.NodeID{a, b}}
}

// SymbolID extracts the single declaration a non-ambiguous symbol
// denotes.
func SymbolID(s Symbol) (source.NodeID, bool) {
	switch s := s.(type) {
	case Local:
		return s.ID, true
	case Imported:
		return s.ID, true
	case GlobImported:
		return s.ID, true
	}
	return 0, false
}

// Binding is one named item in a scope.
type Binding struct {
	Vis  ast.Visibility
	Kind Kind
	Sym  Symbol
}

// PendingImport is an unresolved import attached to its module scope
// until the fixed point solves it.
type PendingImport struct {
	Path   ast.Path
	Alias  *ast.Ident
	IsGlob bool
	Vis    ast.Visibility
	Pos    source.Position
}

// ScopeKind discriminates the namespace node kinds.
type ScopeKind int

const (
	ScopeRoot ScopeKind = iota
	ScopeModule
	ScopeStruct
	ScopeEnum
)

// Scope is one namespace node. Module scopes additionally carry their
// pending imports.
type Scope struct {
	Kind    ScopeKind
	Parent  source.NodeID // all but ScopeRoot
	Items   map[string]Binding
	Imports []PendingImport // ScopeModule only
}

// HasParent reports whether the scope has a parent; only the root
// does not.
func (s *Scope) HasParent() bool { return s.Kind != ScopeRoot }

// ItemNames returns the scope's names in sorted order, for
// deterministic iteration.
func (s *Scope) ItemNames() []string {
	names := make([]string, 0, len(s.Items))
	for name := range s.Items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scope) clone() *Scope {
	items := make(map[string]Binding, len(s.Items))
	for name, b := range s.Items {
		items[name] = b
	}
	return &Scope{
		Kind:    s.Kind,
		Parent:  s.Parent,
		Items:   items,
		Imports: s.Imports,
	}
}
