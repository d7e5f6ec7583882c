package diagnostics

// Code is a stable diagnostic identifier. The letter names the stage
// that reports it: M = module tree / imports, R = resolver,
// S = symbol table, T = type checker.
type Code string

const (
	// Module tree & import solving.
	ErrM001 Code = "M001" // missing module file
	ErrM002 Code = "M002" // name already bound in scope
	ErrM003 Code = "M003" // unbound name
	ErrM004 Code = "M004" // ambiguous symbol
	ErrM005 Code = "M005" // cannot import from a non-namespace item
	ErrM006 Code = "M006" // private item
	ErrM007 Code = "M007" // glob import target is not a namespace

	// Resolver.
	ErrR001 Code = "R001" // wrong number of type parameters
	ErrR002 Code = "R002" // local type definitions not supported
	ErrR003 Code = "R003" // missing function body
	ErrR004 Code = "R004" // duplicate struct field
	ErrR005 Code = "R005" // self receiver outside a method block

	// Symbol table.
	ErrS001 Code = "S001" // recursive type (by-value cycle)
	ErrS002 Code = "S002" // unsized type in a signature or field

	// Type checker.
	ErrT001 Code = "T001" // type mismatch
	ErrT002 Code = "T002" // cannot assign to immutable place
	ErrT003 Code = "T003" // called value is not a function
	ErrT004 Code = "T004" // missing call argument
	ErrT005 Code = "T005" // unexpected call argument
	ErrT006 Code = "T006" // no such field
	ErrT007 Code = "T007" // missing field in struct constructor
	ErrT008 Code = "T008" // unknown field in struct constructor
	ErrT009 Code = "T009" // unbound method
	ErrT010 Code = "T010" // cannot infer type
	ErrT011 Code = "T011" // field initialized more than once
	ErrT012 Code = "T012" // pattern cannot match this type
)
