// Package frontend is the embedding surface of the Mosaic semantic
// front end. A driver that owns parsing hands in an ast.Program and
// receives the fully typed program ready for lowering; diagnostics are
// rendered through the driver's renderer.
package frontend

import (
	"errors"
	"fmt"
	"io"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/checker"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/pipeline"
)

// ErrInvalidProgram is returned when the program had errors; they have
// already been rendered by then.
var ErrInvalidProgram = errors.New("program has errors")

// Options configures one front-end run. The zero value uses the
// default project configuration and renders diagnostics to stderr.
type Options struct {
	// Config is the project configuration; nil means config.Default().
	Config *config.Project

	// Renderer receives every diagnostic of the run; nil means a
	// terminal renderer on stderr.
	Renderer diagnostics.Renderer

	// Sources maps file names to contents, for line/column rendering.
	Sources map[string]string

	// Verbose enables stage tracing on Trace.
	Verbose bool
	Trace   io.Writer
}

// Check runs module solving, resolution and type checking over prog.
//
// User mistakes are rendered through the renderer and reported as
// ErrInvalidProgram; any other error is an internal fault carrying the
// run's build id.
func Check(prog *ast.Program, opts Options) (*checker.Program, error) {
	proj := opts.Config
	if proj == nil {
		proj = config.Default()
	}
	if err := proj.Validate(); err != nil {
		return nil, fmt.Errorf("project configuration: %w", err)
	}

	ctx := pipeline.NewContext(proj, prog)
	ctx.Verbose = opts.Verbose
	ctx.Trace = opts.Trace
	for name, contents := range opts.Sources {
		ctx.Diags.AddSource(name, contents)
	}

	ctx = pipeline.Frontend().Run(ctx)
	if ctx.Err != nil {
		return nil, ctx.Err
	}

	r := opts.Renderer
	if r == nil {
		r = diagnostics.NewTermRenderer()
	}
	if err := ctx.Diags.Finish(r); err != nil {
		return nil, err
	}
	if ctx.Diags.HasErrors() {
		return nil, ErrInvalidProgram
	}
	return ctx.Checked, nil
}
