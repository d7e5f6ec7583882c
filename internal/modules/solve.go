package modules

import (
	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// solve runs import resolution to a fixed point. Each iteration
// resolves every pending import against an immutable snapshot of the
// previous iteration's tree and applies the results to a fresh tree,
// so results within one pass cannot observe each other's writes.
// Convergence is guaranteed because bindings only move forward on the
// lattice absent < bound < ambiguous.
//
// Failures are silent during iteration; an import may become
// resolvable once another import lands. Whatever still fails after
// convergence is reported.
func solve(ctx *diagnostics.Context, tree *Tree) *Tree {
	next := tree.Clone()
	changed := true
	for changed {
		snapshot := next.Clone()
		changed = false
		for _, id := range next.ScopeIDs() {
			scope, _ := next.Get(id)
			if scope.Kind != ScopeModule && scope.Kind != ScopeRoot {
				continue
			}
			for _, imp := range scope.Imports {
				if resolveImport(snapshot, scope.Items, id, imp) {
					changed = true
				}
			}
		}
	}

	for _, id := range next.ScopeIDs() {
		scope, _ := next.Get(id)
		if scope.Kind != ScopeModule && scope.Kind != ScopeRoot {
			continue
		}
		for _, imp := range scope.Imports {
			reportImportErrors(ctx, next, id, imp)
		}
	}
	return next
}

// resolveImport applies one import against the snapshot, mutating
// items, and reports whether anything changed.
func resolveImport(snapshot *Tree, items map[string]Binding, id source.NodeID, imp PendingImport) bool {
	if imp.Path.Len() == 0 {
		return false
	}
	binding, guard, diag := snapshot.FindPath(id, imp.Path, true)
	if diag != nil {
		return false
	}
	bindingID, ok := SymbolID(binding.Sym)
	if !ok {
		return false
	}

	if !imp.IsGlob {
		name := imp.Path.Last().Name
		if imp.Alias != nil {
			name = imp.Alias.Name
		}
		return insertExact(items, name, Binding{
			Vis:  imp.Vis,
			Kind: binding.Kind,
			Sym:  Imported{ID: bindingID},
		}, bindingID)
	}

	target, isNamespace := snapshot.Get(bindingID)
	if !isNamespace {
		return false
	}
	changed := false
	for _, name := range target.ItemNames() {
		item := target.Items[name]
		if item.Vis == ast.Private && !guard {
			continue
		}
		itemID, single := SymbolID(item.Sym)
		if !single {
			continue
		}
		if insertGlob(items, name, Binding{
			Vis:  imp.Vis,
			Kind: item.Kind,
			Sym:  GlobImported{ID: itemID},
		}, itemID) {
			changed = true
		}
	}
	return changed
}

// insertExact lands an exact import. It shadows glob imports, is a
// no-op when the slot already holds the same declaration, and turns
// the slot ambiguous on a genuine conflict.
func insertExact(items map[string]Binding, name string, nb Binding, nbID source.NodeID) bool {
	existing, taken := items[name]
	if !taken {
		items[name] = nb
		return true
	}
	switch sym := existing.Sym.(type) {
	case GlobImported:
		items[name] = nb
		return true
	case Local:
		if sym.ID == nbID {
			return false
		}
		existing.Sym = NewAmbiguous(sym.ID, nbID)
	case Imported:
		if sym.ID == nbID {
			return false
		}
		existing.Sym = NewAmbiguous(sym.ID, nbID)
	case Ambiguous:
		amb, grown := sym.WithID(nbID)
		if !grown {
			return false
		}
		existing.Sym = amb
	}
	items[name] = existing
	return true
}

// insertGlob lands one item of a glob import. Local declarations and
// exact imports always beat it; colliding globs of distinct
// declarations go ambiguous.
func insertGlob(items map[string]Binding, name string, nb Binding, nbID source.NodeID) bool {
	existing, taken := items[name]
	if !taken {
		items[name] = nb
		return true
	}
	switch sym := existing.Sym.(type) {
	case Local, Imported:
		return false
	case GlobImported:
		if sym.ID == nbID {
			return false
		}
		existing.Sym = NewAmbiguous(sym.ID, nbID)
	case Ambiguous:
		amb, grown := sym.WithID(nbID)
		if !grown {
			return false
		}
		existing.Sym = amb
	}
	items[name] = existing
	return true
}

// reportImportErrors re-resolves an import against the converged tree
// and reports whatever still fails.
func reportImportErrors(ctx *diagnostics.Context, tree *Tree, id source.NodeID, imp PendingImport) {
	if imp.Path.Len() == 0 {
		return
	}
	binding, _, diag := tree.FindPath(id, imp.Path, true)
	if diag != nil {
		ctx.Report(diag)
		return
	}
	if !imp.IsGlob {
		return
	}
	bindingID, ok := SymbolID(binding.Sym)
	if !ok {
		return
	}
	if _, isNamespace := tree.Get(bindingID); !isNamespace {
		name := imp.Path.Last()
		if imp.Alias != nil {
			name = *imp.Alias
		}
		ctx.Report(diagnostics.NewError(diagnostics.ErrM007, name.Pos,
			"cannot glob import from %s, it is not a namespace", name.Name))
	}
}
