package typesystem

// Unify makes expected and actual equal, solving unification variables
// as a side effect, and reports success. The direction matters only
// for pointer mutability: an actual *mut T is accepted where a *T is
// expected, never the reverse.
//
// A failing call may still have resolved variables in sub-branches
// that unified before the mismatch was found. Callers treat failure as
// a diagnostic and replace the offending type with Unknown, so the
// partial solution is never observed through a well-typed program.
func (u *Unifier) Unify(expected, actual Type) bool {
	e := u.View(expected)
	a := u.View(actual)

	// Error placeholders unify with anything to stop cascades. An open
	// variable meeting one is bound to it, so the variable never
	// reports as uninferable on top of the error already diagnosed.
	if _, ok := e.(Unknown); ok {
		u.poison(a)
		return true
	}
	if _, ok := a.(Unknown); ok {
		u.poison(e)
		return true
	}

	// never is the bottom type.
	if isNeverType(e) || isNeverType(a) {
		return true
	}

	switch e := e.(type) {
	case UVar:
		return u.unifyVar(e.ID, a)
	case NumUVar:
		return u.unifyNumVar(e.ID, a)
	case Var:
		return u.unifyTVar(e.TVar, a)
	case NamedVar:
		return u.unifyTVar(e.TVar, a)
	case Tuple:
		a, ok := a.(Tuple)
		if !ok || len(e.Elems) != len(a.Elems) {
			return false
		}
		for i := range e.Elems {
			if !u.Unify(e.Elems[i], a.Elems[i]) {
				return false
			}
		}
		return true
	case Array:
		a, ok := a.(Array)
		if !ok || e.Len != a.Len {
			return false
		}
		return u.Unify(e.Elem, a.Elem)
	case Fun:
		a, ok := a.(Fun)
		if !ok || len(e.Params) != len(a.Params) {
			return false
		}
		for i := range e.Params {
			if !u.Unify(e.Params[i], a.Params[i]) {
				return false
			}
		}
		return u.Unify(e.Ret, a.Ret)
	case Ptr:
		switch a := a.(type) {
		case Ptr:
			return u.Unify(e.Elem, a.Elem)
		case MutPtr:
			return u.Unify(e.Elem, a.Elem)
		}
		return u.unifyFlipped(e, a)
	case MutPtr:
		a2, ok := a.(MutPtr)
		if ok {
			return u.Unify(e.Elem, a2.Elem)
		}
		return u.unifyFlipped(e, a)
	case TypeApp:
		a, ok := a.(TypeApp)
		if !ok || e.Head != a.Head {
			return false
		}
		for i := range e.Args {
			if !u.Unify(e.Args[i], a.Args[i]) {
				return false
			}
		}
		return true
	}
	return u.unifyFlipped(e, a)
}

// poison binds an open variable to the error placeholder. The operand
// has already been viewed.
func (u *Unifier) poison(t Type) {
	switch t := t.(type) {
	case UVar:
		u.bind(t.ID, Unknown{})
	case NumUVar:
		u.bind(t.ID, Unknown{})
	}
}

// unifyFlipped handles the cases where only the actual side is a
// unification variable or concrete TVar.
func (u *Unifier) unifyFlipped(e, a Type) bool {
	switch a := a.(type) {
	case UVar:
		return u.unifyVar(a.ID, e)
	case NumUVar:
		return u.unifyNumVar(a.ID, e)
	}
	return false
}

// unifyVar resolves the open variable id to other, which has already
// been viewed.
func (u *Unifier) unifyVar(id UVarID, other Type) bool {
	switch o := other.(type) {
	case UVar:
		u.union(id, o.ID)
		return true
	case NumUVar:
		u.union(id, o.ID)
		return true
	}
	if u.occurs(id, other) {
		return false
	}
	u.bind(id, other)
	return true
}

// unifyNumVar is unifyVar with the numeric constraint: concrete
// bindings must be builtin numeric types.
func (u *Unifier) unifyNumVar(id UVarID, other Type) bool {
	switch o := other.(type) {
	case UVar:
		u.union(id, o.ID)
		return true
	case NumUVar:
		u.union(id, o.ID)
		return true
	case Var:
		if !o.TVar.IsNumeric() {
			return false
		}
	case NamedVar:
		if !o.TVar.IsNumeric() {
			return false
		}
	default:
		return false
	}
	u.bind(id, other)
	return true
}

func (u *Unifier) unifyTVar(tv TVar, a Type) bool {
	switch a := a.(type) {
	case Var:
		return tv == a.TVar
	case NamedVar:
		return tv == a.TVar
	case UVar:
		return u.unifyVar(a.ID, reifyTVar(tv))
	case NumUVar:
		return u.unifyNumVar(a.ID, reifyTVar(tv))
	}
	return false
}

func reifyTVar(tv TVar) Type {
	if name, ok := tv.BuiltinName(); ok {
		return NamedVar{TVar: tv, Name: name}
	}
	return Var{TVar: tv}
}

func isNeverType(t Type) bool {
	switch t := t.(type) {
	case Var:
		return t.TVar.IsNever()
	case NamedVar:
		return t.TVar.IsNever()
	}
	return false
}
