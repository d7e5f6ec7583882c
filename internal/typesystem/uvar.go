package typesystem

// UVarID indexes a cell in a Unifier arena.
type UVarID int

type cellState uint8

const (
	stateOpen cellState = iota
	stateLink
	stateBound
)

type cell struct {
	state   cellState
	numeric bool
	link    UVarID // stateLink
	bound   Type   // stateBound, never a UVar/NumUVar
}

// Unifier is an index-addressed union-find arena of unification
// variables. One Unifier lives for the duration of a single function
// body's type check and is discarded afterward; Zonk extracts the
// solved types before that happens.
type Unifier struct {
	cells []cell
}

func NewUnifier() *Unifier {
	return &Unifier{}
}

// Fresh allocates an open unification variable.
func (u *Unifier) Fresh() Type {
	id := UVarID(len(u.cells))
	u.cells = append(u.cells, cell{state: stateOpen})
	return UVar{ID: id}
}

// FreshNumeric allocates a unification variable constrained to the
// builtin numeric types.
func (u *Unifier) FreshNumeric() Type {
	id := UVarID(len(u.cells))
	u.cells = append(u.cells, cell{state: stateOpen, numeric: true})
	return NumUVar{ID: id}
}

// find returns the canonical representative, compressing the path.
func (u *Unifier) find(id UVarID) UVarID {
	root := id
	for u.cells[root].state == stateLink {
		root = u.cells[root].link
	}
	for u.cells[id].state == stateLink {
		next := u.cells[id].link
		u.cells[id].link = root
		id = next
	}
	return root
}

// View looks through unification variables: a bound variable yields
// its binding, an open one its canonical UVar/NumUVar. All other types
// pass through unchanged. Callers switch on the result.
func (u *Unifier) View(t Type) Type {
	var id UVarID
	switch t := t.(type) {
	case UVar:
		id = t.ID
	case NumUVar:
		id = t.ID
	default:
		return t
	}
	root := u.find(id)
	c := &u.cells[root]
	if c.state == stateBound {
		return c.bound
	}
	if c.numeric {
		return NumUVar{ID: root}
	}
	return UVar{ID: root}
}

// bind resolves an open root to a concrete type.
func (u *Unifier) bind(id UVarID, t Type) {
	root := u.find(id)
	u.cells[root].state = stateBound
	u.cells[root].bound = t
}

// union links two open roots; numericness is sticky.
func (u *Unifier) union(a, b UVarID) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	numeric := u.cells[ra].numeric || u.cells[rb].numeric
	u.cells[ra].state = stateLink
	u.cells[ra].link = rb
	u.cells[rb].numeric = numeric
}

// occurs reports whether the open variable id appears structurally in
// t. Pointers break the recursion: a type may contain itself behind a
// pointer without being infinite.
func (u *Unifier) occurs(id UVarID, t Type) bool {
	root := u.find(id)
	switch t := u.View(t).(type) {
	case UVar:
		return u.find(t.ID) == root
	case NumUVar:
		return u.find(t.ID) == root
	case Tuple:
		for _, e := range t.Elems {
			if u.occurs(id, e) {
				return true
			}
		}
	case Array:
		return u.occurs(id, t.Elem)
	case Fun:
		for _, p := range t.Params {
			if u.occurs(id, p) {
				return true
			}
		}
		return u.occurs(id, t.Ret)
	case TypeApp:
		for _, a := range t.Args {
			if u.occurs(id, a) {
				return true
			}
		}
	case Ptr, MutPtr:
		// fixed-width indirection
	}
	return false
}

// Zonk substitutes every solved unification variable in t, deeply.
// The second result is false when an open variable remains, in which
// case the returned type still contains it.
func (u *Unifier) Zonk(t Type) (Type, bool) {
	switch t := u.View(t).(type) {
	case UVar:
		return t, false
	case NumUVar:
		return t, false
	case Unknown, Var, NamedVar:
		return t, true
	case Tuple:
		ok := true
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			var eok bool
			elems[i], eok = u.Zonk(e)
			ok = ok && eok
		}
		return Tuple{Elems: elems}, ok
	case Array:
		elem, ok := u.Zonk(t.Elem)
		return Array{Len: t.Len, Elem: elem}, ok
	case Fun:
		ok := true
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			var pok bool
			params[i], pok = u.Zonk(p)
			ok = ok && pok
		}
		ret, rok := u.Zonk(t.Ret)
		return Fun{Params: params, Ret: ret}, ok && rok
	case Ptr:
		elem, ok := u.Zonk(t.Elem)
		return Ptr{Elem: elem}, ok
	case MutPtr:
		elem, ok := u.Zonk(t.Elem)
		return MutPtr{Elem: elem}, ok
	}
	panic("unknown type shape in zonk")
}

// DefaultOpenNumerics binds every still-open numeric variable to def.
// Called once per function body, before the final zonk.
func (u *Unifier) DefaultOpenNumerics(def Type) {
	for i := range u.cells {
		id := UVarID(i)
		root := u.find(id)
		c := &u.cells[root]
		if c.state == stateOpen && c.numeric {
			c.state = stateBound
			c.bound = def
		}
	}
}
