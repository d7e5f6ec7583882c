package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LayoutPolicy selects how struct fields are placed in memory.
type LayoutPolicy string

const (
	// LayoutPacked lays fields out back to back with no padding.
	LayoutPacked LayoutPolicy = "packed"
	// LayoutAligned inserts standard alignment padding between fields
	// and rounds the struct size up to its alignment.
	LayoutAligned LayoutPolicy = "aligned"
)

// Project represents the top-level mosaic.yaml configuration.
type Project struct {
	// Name is the project name, used in output artifacts.
	Name string `yaml:"name"`

	// Entry is the module path compilation starts from.
	// Defaults to "src".
	Entry string `yaml:"entry,omitempty"`

	// PointerWidth is the byte width of pointers on the target.
	// Defaults to 8.
	PointerWidth int `yaml:"pointer_width,omitempty"`

	// Layout selects the struct layout policy: "packed" or "aligned".
	// Defaults to "packed".
	Layout LayoutPolicy `yaml:"layout,omitempty"`
}

// Default returns the configuration used when no mosaic.yaml is present.
func Default() *Project {
	return &Project{
		Entry:        EntryModuleName,
		PointerWidth: DefaultPointerWidth,
		Layout:       LayoutPacked,
	}
}

// Load reads and validates a mosaic.yaml file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks field values and fills in defaults for omitted ones.
func (p *Project) Validate() error {
	if p.Entry == "" {
		p.Entry = EntryModuleName
	}
	if p.PointerWidth == 0 {
		p.PointerWidth = DefaultPointerWidth
	}
	switch p.PointerWidth {
	case 2, 4, 8:
	default:
		return fmt.Errorf("unsupported pointer width %d (want 2, 4 or 8)", p.PointerWidth)
	}
	if p.Layout == "" {
		p.Layout = LayoutPacked
	}
	switch p.Layout {
	case LayoutPacked, LayoutAligned:
	default:
		return fmt.Errorf("unknown layout policy %q (want %q or %q)", p.Layout, LayoutPacked, LayoutAligned)
	}
	return nil
}
