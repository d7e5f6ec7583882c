package source

import "fmt"

// Position is a byte span inside one source file.
type Position struct {
	Filename string
	Start    int
	End      int
}

// NewPosition creates a position covering [start, end) in filename.
func NewPosition(filename string, start, end int) Position {
	return Position{Filename: filename, Start: start, End: end}
}

// Nowhere is the position of compiler-generated nodes.
func Nowhere() Position {
	return Position{Filename: "<nowhere>"}
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d..%d", p.Filename, p.Start, p.End)
}

// Generator stamps positions for a single file.
type Generator struct {
	filename string
}

func NewGenerator(filename string) *Generator {
	return &Generator{filename: filename}
}

func (g *Generator) Make(start, end int) Position {
	return Position{Filename: g.filename, Start: start, End: end}
}
