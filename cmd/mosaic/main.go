package main

import (
	"fmt"
	"os"

	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/typesystem"
)

const usage = `Usage: mosaic <command> [mosaic.yaml]

Commands:
  config    validate the project file and print the resolved configuration
  layouts   print builtin type layouts for the configured target
  help      show this help
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "config":
		proj := loadProject(os.Args[2:])
		printConfig(proj)
	case "layouts":
		proj := loadProject(os.Args[2:])
		printLayouts(proj)
	case "help", "-help", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "mosaic: unknown command %q\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// loadProject reads the named project file, or mosaic.yaml in the
// working directory, or falls back to the defaults when neither is
// given.
func loadProject(args []string) *config.Project {
	path := config.ProjectFileName
	explicit := len(args) > 0
	if explicit {
		path = args[0]
	}
	if !explicit {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default()
		}
	}
	proj, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mosaic: %s\n", err)
		os.Exit(1)
	}
	return proj
}

func printConfig(proj *config.Project) {
	fmt.Printf("name:          %s\n", proj.Name)
	fmt.Printf("entry:         %s\n", proj.Entry)
	fmt.Printf("pointer_width: %d\n", proj.PointerWidth)
	fmt.Printf("layout:        %s\n", proj.Layout)
}

func printLayouts(proj *config.Project) {
	fmt.Printf("target: %d-byte pointers, %s layout\n\n", proj.PointerWidth, proj.Layout)
	fmt.Printf("%-8s %5s %5s\n", "type", "size", "align")
	for _, name := range typesystem.BuiltinTypeNames {
		tv := typesystem.MustBuiltinTVar(name)
		size, ok := tv.BuiltinSize(proj.PointerWidth)
		if !ok {
			continue
		}
		align := 1
		if proj.Layout == config.LayoutAligned && size > 1 {
			align = size
		}
		fmt.Printf("%-8s %5d %5d\n", name, size, align)
	}
}
