package pipeline

import "fmt"

// Processor is one stage of a compilation run. A stage reads its input
// off the context, reports user mistakes into ctx.Diags, and stores its
// output back on the context.
type Processor interface {
	Name() string
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Frontend is the full semantic pipeline: module solving, resolution,
// type checking.
func Frontend() *Pipeline {
	return New(ModulesProcessor{}, ResolverProcessor{}, CheckerProcessor{})
}

// Run executes the stages in order. A stage only runs while the context
// is still clean: once any diagnostic has been recorded, or an internal
// error raised, the remaining stages are skipped. Later stages may
// therefore assume their input is well formed.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, processor := range p.processors {
		if ctx.Err != nil || ctx.Diags.HasErrors() {
			break
		}
		if ctx.Verbose && ctx.Trace != nil {
			fmt.Fprintf(ctx.Trace, "[%s] stage %s\n", ctx.BuildID, processor.Name())
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}
