package source

// Map associates file names with their contents, for diagnostic
// rendering.
type Map struct {
	files map[string]string
}

func NewMap() *Map {
	return &Map{files: make(map[string]string)}
}

func (m *Map) Add(filename, contents string) {
	m.files[filename] = contents
}

func (m *Map) Get(filename string) (string, bool) {
	s, ok := m.files[filename]
	return s, ok
}

// LineCol converts a byte offset in filename to a 1-based line and
// column. Offsets past the end clamp to the last line.
func (m *Map) LineCol(filename string, offset int) (line, col int) {
	src, ok := m.files[filename]
	if !ok {
		return 0, 0
	}
	line, col = 1, 1
	for i := 0; i < len(src) && i < offset; i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
