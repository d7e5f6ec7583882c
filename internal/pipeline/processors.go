package pipeline

import (
	"github.com/mosaic-lang/mosaic/internal/checker"
	"github.com/mosaic-lang/mosaic/internal/modules"
	"github.com/mosaic-lang/mosaic/internal/resolver"
)

// ModulesProcessor builds the scope tree and solves imports to a fixed
// point (stage 1).
type ModulesProcessor struct{}

func (ModulesProcessor) Name() string { return "modules" }

func (ModulesProcessor) Process(ctx *PipelineContext) *PipelineContext {
	prog, err := modules.Translate(ctx.Diags, ctx.Nodes, ctx.Source, ctx.Config.Entry)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.Modules = prog
	return ctx
}

// ResolverProcessor rewrites names to references and builds the symbol
// table (stage 2).
type ResolverProcessor struct{}

func (ResolverProcessor) Name() string { return "resolver" }

func (ResolverProcessor) Process(ctx *PipelineContext) *PipelineContext {
	prog, err := resolver.Translate(ctx.Diags, ctx.Config, ctx.TVars, ctx.Modules)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.Resolved = prog
	return ctx
}

// CheckerProcessor infers and checks types, producing the fully typed
// program (stage 3).
type CheckerProcessor struct{}

func (CheckerProcessor) Name() string { return "checker" }

func (CheckerProcessor) Process(ctx *PipelineContext) *PipelineContext {
	prog, err := checker.Translate(ctx.Diags, ctx.Resolved)
	if err != nil {
		return ctx.fail(err)
	}
	ctx.Checked = prog
	return ctx
}
