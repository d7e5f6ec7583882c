package diagnostics

import (
	"fmt"

	"github.com/mosaic-lang/mosaic/internal/source"
)

// Severity of a diagnostic. Any error blocks the next pipeline stage.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Color is the terminal color a label is rendered with.
type Color string

const (
	ColorRed    Color = "\x1b[31m"
	ColorYellow Color = "\x1b[33m"
	ColorBlue   Color = "\x1b[34m"
	colorReset  Color = "\x1b[0m"
)

// Label is a positioned message attached to a diagnostic.
type Label struct {
	Pos   source.Position
	Msg   string
	Color Color
}

// Diagnostic is a problem in user code. It is reported into a Context
// and rendered by an external collaborator; it never aborts the stage
// that produced it.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Pos      source.Position
	Labels   []Label
	Notes    []string
}

// NewError creates an error diagnostic with a single label at pos.
func NewError(code Code, pos source.Position, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Pos:      pos,
		Labels: []Label{{
			Pos:   pos,
			Msg:   fmt.Sprintf(format, args...),
			Color: ColorRed,
		}},
	}
}

// WithLabel attaches an extra label.
func (d *Diagnostic) WithLabel(pos source.Position, color Color, format string, args ...interface{}) *Diagnostic {
	d.Labels = append(d.Labels, Label{Pos: pos, Msg: fmt.Sprintf(format, args...), Color: color})
	return d
}

// WithNote attaches a free-standing note.
func (d *Diagnostic) WithNote(format string, args ...interface{}) *Diagnostic {
	d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
	return d
}

// Message returns the primary label's text.
func (d *Diagnostic) Message() string {
	if len(d.Labels) == 0 {
		return "<no message for this error>"
	}
	return d.Labels[0].Msg
}

// InternalError is a compiler-invariant violation: malformed input an
// earlier stage should have rejected, or an unimplemented feature. It
// aborts the whole run and is never used for mistakes in user code.
type InternalError struct {
	BuildID string
	Msg     string
}

func (e *InternalError) Error() string {
	if e.BuildID == "" {
		return fmt.Sprintf("internal compiler error: %s", e.Msg)
	}
	return fmt.Sprintf("internal compiler error [build %s]: %s", e.BuildID, e.Msg)
}

// Internalf creates an InternalError. The build id is stamped on by the
// pipeline before the error reaches the user.
func Internalf(format string, args ...interface{}) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
