package pipeline

import (
	"io"

	"github.com/google/uuid"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/checker"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/modules"
	"github.com/mosaic-lang/mosaic/internal/resolver"
	"github.com/mosaic-lang/mosaic/internal/source"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

// PipelineContext carries everything a compilation run owns: the project
// configuration, the diagnostics sink, the id allocators, and the program
// as it moves through the stages. There is exactly one per run; nothing
// in the compiler keeps global state.
type PipelineContext struct {
	Config *config.Project
	Diags  *diagnostics.Context

	// BuildID tells separate runs apart in logs and internal-error
	// output.
	BuildID uuid.UUID

	Nodes *source.NodeIDAlloc
	TVars *typesystem.TVarAlloc

	// Verbose enables stage tracing on Trace (stderr by default).
	Verbose bool
	Trace   io.Writer

	// Source is the parsed program handed in by the embedding driver.
	Source *ast.Program

	// Stage outputs, filled in as the run progresses.
	Modules  *modules.Program
	Resolved *resolver.Program
	Checked  *checker.Program

	// Err is set by the first internal error and aborts the run.
	Err error
}

// NewContext prepares a run over prog with a fresh build id and fresh
// allocators.
func NewContext(proj *config.Project, prog *ast.Program) *PipelineContext {
	return &PipelineContext{
		Config:  proj,
		Diags:   diagnostics.NewContext(),
		BuildID: uuid.New(),
		Nodes:   source.NewNodeIDAlloc(),
		TVars:   typesystem.NewTVarAlloc(),
		Source:  prog,
	}
}

// fail records an internal error on the context, stamping the build id
// so the failing run can be found in logs.
func (ctx *PipelineContext) fail(err error) *PipelineContext {
	if ie, ok := err.(*diagnostics.InternalError); ok && ie.BuildID == "" {
		ie.BuildID = ctx.BuildID.String()
	}
	ctx.Err = err
	return ctx
}
