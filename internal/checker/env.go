package checker

import (
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

type binding struct {
	isMut bool
	tp    typesystem.Type
}

// env is the per-function checking state: one Unifier, the lexical
// variable scopes, the declared return type, and the positions of
// every unification variable handed out, so the ones still open at
// the end can be reported where they were introduced.
type env struct {
	u           *typesystem.Unifier
	expectedRet typesystem.Type
	scopes      []map[string]binding
	uvars       []openVar
}

type openVar struct {
	tp  typesystem.Type
	pos source.Position
}

func newCheckEnv(expectedRet typesystem.Type) *env {
	return &env{
		u:           typesystem.NewUnifier(),
		expectedRet: expectedRet,
		scopes:      []map[string]binding{{}},
	}
}

func (e *env) fresh(pos source.Position) typesystem.Type {
	tp := e.u.Fresh()
	e.uvars = append(e.uvars, openVar{tp: tp, pos: pos})
	return tp
}

func (e *env) freshNumeric(pos source.Position) typesystem.Type {
	tp := e.u.FreshNumeric()
	e.uvars = append(e.uvars, openVar{tp: tp, pos: pos})
	return tp
}

func (e *env) addVar(name string, isMut bool, tp typesystem.Type) {
	e.scopes[len(e.scopes)-1][name] = binding{isMut: isMut, tp: tp}
}

// lookup finds an in-scope variable. The resolver only emits LocalRef
// for names it bound, so a miss is an invariant violation.
func (e *env) lookup(name string) (binding, error) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b, nil
		}
	}
	return binding{}, diagnostics.Internalf("unbound local %q survived resolution", name)
}

func (e *env) newScope() {
	e.scopes = append(e.scopes, map[string]binding{})
}

func (e *env) leaveScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

// finish closes out the function's unification state: open numeric
// variables default to i32, any other open variable is a "cannot
// infer" diagnostic at the position that introduced it.
func (e *env) finish(ctx *diagnostics.Context) {
	for _, ov := range e.uvars {
		if _, open := e.u.View(ov.tp).(typesystem.UVar); open {
			ctx.Report(diagnostics.NewError(diagnostics.ErrT010, ov.pos,
				"cannot infer type, please annotate"))
		}
	}
	e.u.DefaultOpenNumerics(typesystem.Builtin(config.DefaultNumericTypeName))
}
