package config

const SourceFileExt = ".mos"

// ProjectFileName is the per-project configuration file.
const ProjectFileName = "mosaic.yaml"

// EntryModuleName is the module every project compilation starts from.
const EntryModuleName = "src"

// Declaration attribute names recognized by the front end.
const (
	AttrBuiltin  = "builtin"
	AttrExtern   = "extern"
	AttrNoMangle = "no_mangle"
)

// DefaultNumericTypeName is the type an unconstrained numeric literal
// defaults to when a function finishes type checking.
const DefaultNumericTypeName = "i32"

// DefaultPointerWidth is the byte width of pointers, slices' data
// pointers and function pointers on the default target.
const DefaultPointerWidth = 8
