package typesystem

import "testing"

func TestUnifyBuiltins(t *testing.T) {
	tests := []struct {
		name     string
		expected Type
		actual   Type
		want     bool
	}{
		{"same builtin", Builtin("i32"), Builtin("i32"), true},
		{"different builtin", Builtin("i32"), Builtin("u32"), false},
		{"bool vs numeric", Builtin("bool"), Builtin("u8"), false},
		{"never into i32", Builtin("i32"), Never(), true},
		{"never into tuple", Tuple{Elems: []Type{Builtin("bool")}}, Never(), true},
		{"unknown suppresses mismatch", Unknown{}, Builtin("i32"), true},
		{"unknown on actual side", Builtin("i32"), Unknown{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUnifier()
			if got := u.Unify(tt.expected, tt.actual); got != tt.want {
				t.Errorf("Unify(%s, %s) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestUnifyComposite(t *testing.T) {
	i32 := Builtin("i32")
	u8 := Builtin("u8")
	tests := []struct {
		name     string
		expected Type
		actual   Type
		want     bool
	}{
		{"tuple pairwise", Tuple{Elems: []Type{i32, u8}}, Tuple{Elems: []Type{i32, u8}}, true},
		{"tuple arity", Tuple{Elems: []Type{i32}}, Tuple{Elems: []Type{i32, u8}}, false},
		{"array equal len", Array{Len: 3, Elem: i32}, Array{Len: 3, Elem: i32}, true},
		{"array len mismatch", Array{Len: 3, Elem: i32}, Array{Len: 4, Elem: i32}, false},
		{"fun ok", Fun{Params: []Type{i32}, Ret: u8}, Fun{Params: []Type{i32}, Ret: u8}, true},
		{"fun ret mismatch", Fun{Params: []Type{i32}, Ret: u8}, Fun{Params: []Type{i32}, Ret: i32}, false},
		{"ptr covariant", Ptr{Elem: i32}, Ptr{Elem: i32}, true},
		{"mut ptr where ptr expected", Ptr{Elem: i32}, MutPtr{Elem: i32}, true},
		{"ptr where mut ptr expected", MutPtr{Elem: i32}, Ptr{Elem: i32}, false},
		{"mut ptr both sides", MutPtr{Elem: i32}, MutPtr{Elem: i32}, true},
		{"tuple vs array", Tuple{Elems: []Type{i32}}, Array{Len: 1, Elem: i32}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUnifier()
			if got := u.Unify(tt.expected, tt.actual); got != tt.want {
				t.Errorf("Unify(%s, %s) = %v, want %v", tt.expected, tt.actual, got, tt.want)
			}
		})
	}
}

func TestUnifyTypeApp(t *testing.T) {
	alloc := NewTVarAlloc()
	list := alloc.FreshTypeCons(1)
	set := alloc.FreshTypeCons(1)
	i32 := Builtin("i32")
	u8 := Builtin("u8")

	u := NewUnifier()
	if !u.Unify(TypeApp{Head: list, Name: "List", Args: []Type{i32}},
		TypeApp{Head: list, Name: "List", Args: []Type{i32}}) {
		t.Error("equal applications must unify")
	}
	if u.Unify(TypeApp{Head: list, Name: "List", Args: []Type{i32}},
		TypeApp{Head: set, Name: "Set", Args: []Type{i32}}) {
		t.Error("different heads must not unify")
	}
	if u.Unify(TypeApp{Head: list, Name: "List", Args: []Type{i32}},
		TypeApp{Head: list, Name: "List", Args: []Type{u8}}) {
		t.Error("argument mismatch must not unify")
	}
}

func TestUnifyVariables(t *testing.T) {
	i32 := Builtin("i32")

	t.Run("resolve to concrete", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if !u.Unify(v, i32) {
			t.Fatal("open variable must accept a concrete type")
		}
		if got := u.View(v); got.String() != "i32" {
			t.Errorf("View(v) = %s, want i32", got)
		}
	})

	t.Run("link two open variables", func(t *testing.T) {
		u := NewUnifier()
		a := u.Fresh()
		b := u.Fresh()
		if !u.Unify(a, b) {
			t.Fatal("two open variables must link")
		}
		if !u.Unify(b, i32) {
			t.Fatal("linked variable must accept a concrete type")
		}
		if got := u.View(a); got.String() != "i32" {
			t.Errorf("View(a) = %s after binding b, want i32", got)
		}
	})

	t.Run("conflicting bindings", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if !u.Unify(v, i32) {
			t.Fatal("first binding must succeed")
		}
		if u.Unify(v, Builtin("bool")) {
			t.Error("second conflicting binding must fail")
		}
	})
}

func TestUnifyNumeric(t *testing.T) {
	t.Run("numeric accepts integer", func(t *testing.T) {
		u := NewUnifier()
		n := u.FreshNumeric()
		if !u.Unify(n, Builtin("u16")) {
			t.Error("numeric variable must accept u16")
		}
	})
	t.Run("numeric rejects bool", func(t *testing.T) {
		u := NewUnifier()
		n := u.FreshNumeric()
		if u.Unify(n, Builtin("bool")) {
			t.Error("numeric variable must reject bool")
		}
	})
	t.Run("numeric rejects tuple", func(t *testing.T) {
		u := NewUnifier()
		n := u.FreshNumeric()
		if u.Unify(n, Unit()) {
			t.Error("numeric variable must reject unit")
		}
	})
	t.Run("numericness survives linking", func(t *testing.T) {
		u := NewUnifier()
		n := u.FreshNumeric()
		v := u.Fresh()
		if !u.Unify(v, n) {
			t.Fatal("open and numeric variables must link")
		}
		if u.Unify(v, Builtin("bool")) {
			t.Error("linked variable must keep the numeric constraint")
		}
	})
	t.Run("defaulting", func(t *testing.T) {
		u := NewUnifier()
		n := u.FreshNumeric()
		u.DefaultOpenNumerics(Builtin("i32"))
		got, ok := u.Zonk(n)
		if !ok || got.String() != "i32" {
			t.Errorf("Zonk after defaulting = %s (ok=%v), want i32", got, ok)
		}
	})
}

func TestOccursCheck(t *testing.T) {
	t.Run("tuple containing itself fails", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if u.Unify(v, Tuple{Elems: []Type{Builtin("i32"), v}}) {
			t.Error("occurs check must reject an infinite tuple")
		}
	})
	t.Run("array containing itself fails", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if u.Unify(v, Array{Len: 2, Elem: v}) {
			t.Error("occurs check must reject an infinite array")
		}
	})
	t.Run("fun returning itself fails", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if u.Unify(v, Fun{Params: nil, Ret: v}) {
			t.Error("occurs check must reject an infinite function type")
		}
	})
	t.Run("pointer indirection is allowed", func(t *testing.T) {
		u := NewUnifier()
		v := u.Fresh()
		if !u.Unify(v, Ptr{Elem: v}) {
			t.Error("recursion behind a pointer must pass the occurs check")
		}
	})
	t.Run("occurs through a linked variable", func(t *testing.T) {
		u := NewUnifier()
		a := u.Fresh()
		b := u.Fresh()
		if !u.Unify(a, b) {
			t.Fatal("linking must succeed")
		}
		if u.Unify(a, Tuple{Elems: []Type{b}}) {
			t.Error("occurs check must see through links")
		}
	})
}

func TestZonk(t *testing.T) {
	u := NewUnifier()
	v := u.Fresh()
	w := u.Fresh()
	if !u.Unify(v, Builtin("u8")) {
		t.Fatal("binding v must succeed")
	}
	nested := Tuple{Elems: []Type{v, Ptr{Elem: v}, w}}

	got, ok := u.Zonk(nested)
	if ok {
		t.Error("zonk must report the open variable w")
	}
	tup, isTup := got.(Tuple)
	if !isTup || len(tup.Elems) != 3 {
		t.Fatalf("zonk result = %s, want a 3-tuple", got)
	}
	if tup.Elems[0].String() != "u8" {
		t.Errorf("first element = %s, want u8", tup.Elems[0])
	}
	if p, isPtr := tup.Elems[1].(Ptr); !isPtr || p.Elem.String() != "u8" {
		t.Errorf("second element = %s, want *u8", tup.Elems[1])
	}
	if _, isOpen := tup.Elems[2].(UVar); !isOpen {
		t.Errorf("third element = %s, want an open variable", tup.Elems[2])
	}
}

func TestSubstitute(t *testing.T) {
	alloc := NewTVarAlloc()
	p := alloc.FreshParameter()
	i32 := Builtin("i32")

	in := Fun{
		Params: []Type{Var{TVar: p}, Ptr{Elem: Var{TVar: p}}},
		Ret:    Tuple{Elems: []Type{Var{TVar: p}, Builtin("bool")}},
	}
	out := Substitute(in, map[TVar]Type{p: i32})
	if got, want := out.String(), "fn(i32, *i32) -> (i32, bool)"; got != want {
		t.Errorf("Substitute = %s, want %s", got, want)
	}
	if in.Params[0].String() == "i32" {
		t.Error("Substitute must not mutate its input")
	}
}

func TestSizeDependencies(t *testing.T) {
	alloc := NewTVarAlloc()
	a := alloc.FreshType()
	b := alloc.FreshType()
	p := alloc.FreshParameter()
	list := alloc.FreshTypeCons(1)

	typ := Tuple{Elems: []Type{
		Var{TVar: a},
		Ptr{Elem: Var{TVar: b}},
		Var{TVar: p},
		TypeApp{Head: list, Name: "List", Args: []Type{Var{TVar: b}}},
		Fun{Params: []Type{Var{TVar: b}}, Ret: Var{TVar: b}},
	}}
	deps := SizeDependencies(typ)
	if _, ok := deps[a]; !ok {
		t.Error("by-value field must contribute a dependency")
	}
	if _, ok := deps[b]; !ok {
		t.Error("type application arguments must contribute dependencies")
	}
	if _, ok := deps[p]; ok {
		t.Error("generic parameters must be excluded")
	}
	if _, ok := deps[list]; !ok {
		t.Error("the application head must contribute a dependency")
	}
	if len(deps) != 3 {
		t.Errorf("got %d dependencies, want 3", len(deps))
	}
}

func TestBuiltinSizes(t *testing.T) {
	tests := []struct {
		name     string
		ptrWidth int
		want     int
	}{
		{"never", 8, 0},
		{"bool", 8, 1},
		{"order", 8, 1},
		{"u8", 8, 1},
		{"u16", 8, 2},
		{"u32", 8, 4},
		{"u64", 8, 8},
		{"usize", 8, 8},
		{"usize", 4, 4},
		{"i8", 8, 1},
		{"i16", 8, 2},
		{"i32", 8, 4},
		{"i64", 8, 8},
		{"isize", 2, 2},
	}
	for _, tt := range tests {
		tv := MustBuiltinTVar(tt.name)
		got, ok := tv.BuiltinSize(tt.ptrWidth)
		if !ok || got != tt.want {
			t.Errorf("BuiltinSize(%s, %d) = %d, want %d", tt.name, tt.ptrWidth, got, tt.want)
		}
	}
}

func TestTVarAllocDeterminism(t *testing.T) {
	a := NewTVarAlloc()
	b := NewTVarAlloc()
	for i := 0; i < 5; i++ {
		if got, want := a.FreshType(), b.FreshType(); got != want {
			t.Fatalf("allocation %d diverged: %v vs %v", i, got, want)
		}
	}
	first := NewTVarAlloc().FreshType()
	if bt, ok := BuiltinTVar("isize"); !ok || first.ID <= bt.ID {
		t.Errorf("first user TVar id %d must be above the builtin range", first.ID)
	}
}

func TestUnknownBindsOpenVariables(t *testing.T) {
	u := NewUnifier()
	v := u.Fresh()
	if !u.Unify(v, Unknown{}) {
		t.Fatal("unify with the error placeholder failed")
	}
	if _, ok := u.View(v).(Unknown); !ok {
		t.Errorf("View = %v, want the variable absorbed into Unknown", u.View(v))
	}

	n := u.FreshNumeric()
	if !u.Unify(Unknown{}, n) {
		t.Fatal("unify with the error placeholder failed")
	}
	if _, ok := u.View(n).(Unknown); !ok {
		t.Errorf("View = %v, want the numeric variable absorbed into Unknown", u.View(n))
	}
}
