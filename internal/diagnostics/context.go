package diagnostics

import "github.com/mosaic-lang/mosaic/internal/source"

// Context accumulates diagnostics for one compilation run.
//
// All diagnostics for a run are collected and rendered together; the
// pipeline consults ErrorCount at stage boundaries to decide whether
// the next stage may run.
type Context struct {
	diags   []*Diagnostic
	sources *source.Map
	errors  int
}

func NewContext() *Context {
	return &Context{sources: source.NewMap()}
}

// Report adds a diagnostic. Nil diagnostics are ignored so call sites
// can report unconditionally.
func (c *Context) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	c.diags = append(c.diags, d)
	if d.Severity == SeverityError {
		c.errors++
	}
}

// ErrorCount returns the number of error-severity diagnostics so far.
func (c *Context) ErrorCount() int { return c.errors }

// HasErrors reports whether any error has been recorded.
func (c *Context) HasErrors() bool { return c.errors > 0 }

// Diagnostics returns all recorded diagnostics in report order.
func (c *Context) Diagnostics() []*Diagnostic { return c.diags }

// AddSource registers file contents for diagnostic rendering.
func (c *Context) AddSource(filename, contents string) {
	c.sources.Add(filename, contents)
}

// Sources exposes the registered sources to renderers.
func (c *Context) Sources() *source.Map { return c.sources }

// Finish renders every recorded diagnostic with r.
func (c *Context) Finish(r Renderer) error {
	for _, d := range c.diags {
		if err := r.Show(d, c.sources); err != nil {
			return err
		}
	}
	return nil
}
