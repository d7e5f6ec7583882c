package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mosaic-lang/mosaic/internal/source"
)

// Renderer turns diagnostics into user-visible output. The front end
// only defines the in-memory contract; this terminal renderer is the
// default thin collaborator.
type Renderer interface {
	Show(d *Diagnostic, sources *source.Map) error
}

// TermRenderer writes plain-text diagnostics to a writer, coloring
// labels when the writer is a terminal.
type TermRenderer struct {
	out   io.Writer
	color bool
}

// NewTermRenderer renders to stderr, enabling color only when stderr
// is a TTY.
func NewTermRenderer() *TermRenderer {
	fd := os.Stderr.Fd()
	return &TermRenderer{
		out:   os.Stderr,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
	}
}

// NewWriterRenderer renders to an arbitrary writer without color.
func NewWriterRenderer(w io.Writer) *TermRenderer {
	return &TermRenderer{out: w}
}

func (r *TermRenderer) Show(d *Diagnostic, sources *source.Map) error {
	line, col := sources.LineCol(d.Pos.Filename, d.Pos.Start)
	if _, err := fmt.Fprintf(r.out, "%s[%s]: %s (%s:%d:%d)\n",
		d.Severity, d.Code, d.Message(), d.Pos.Filename, line, col); err != nil {
		return err
	}
	for _, l := range d.Labels[min(1, len(d.Labels)):] {
		msg := l.Msg
		if r.color {
			msg = string(l.Color) + msg + string(colorReset)
		}
		if _, err := fmt.Fprintf(r.out, "  | %s (%s)\n", msg, l.Pos); err != nil {
			return err
		}
	}
	for _, n := range d.Notes {
		if _, err := fmt.Fprintf(r.out, "  note: %s\n", n); err != nil {
			return err
		}
	}
	return nil
}
