package frontend

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mosaic-lang/mosaic/internal/ast"
	"github.com/mosaic-lang/mosaic/internal/config"
	"github.com/mosaic-lang/mosaic/internal/diagnostics"
	"github.com/mosaic-lang/mosaic/internal/source"
)

func ident(name string) ast.Ident {
	return ast.Ident{Name: name, Pos: source.Nowhere()}
}

func tyVar(name string) ast.RTypeNode {
	return ast.RTypeNode{
		Data: ast.RTypeVar{Path: ast.NewPath(ident(name))},
		Pos:  source.Nowhere(),
	}
}

func program(items ...ast.ModuleItem) *ast.Program {
	return &ast.Program{Files: map[string]*ast.Module{
		ast.FileKey([]string{"src"}): {Name: ident("src"), Items: items},
	}}
}

func fn(name string, ret *ast.RTypeNode, body ast.Expr) *ast.Func {
	return &ast.Func{
		Visibility: ast.Public,
		Name:       ident(name),
		RetType:    ret,
		Body:       &ast.ExprNode{Data: body, Pos: source.Nowhere()},
		Pos:        source.Nowhere(),
	}
}

func i32Builtin() *ast.Struct {
	return &ast.Struct{
		Attributes: []ast.Attribute{{Name: ident("builtin"), Pos: source.Nowhere()}},
		Visibility: ast.Public,
		Name:       ident("i32"),
		Pos:        source.Nowhere(),
	}
}

func TestCheckReturnsTypedProgram(t *testing.T) {
	num := ast.ExprNode{Data: ast.ExprNum{Value: 7}, Pos: source.Nowhere()}
	ret := tyVar("i32")
	prog, err := Check(program(
		i32Builtin(),
		fn("seven", &ret, ast.ExprOpenBlock{Last: &num}),
	), Options{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(prog.Functions) != 1 || prog.Functions[0].Name != "seven" {
		t.Fatalf("checked functions = %v", prog.Functions)
	}
}

func TestCheckRendersAndReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	ret := tyVar("Missing")
	_, err := Check(program(
		i32Builtin(),
		fn("broken", &ret, ast.ExprClosedBlock{}),
	), Options{Renderer: diagnostics.NewWriterRenderer(&buf)})
	if !errors.Is(err, ErrInvalidProgram) {
		t.Fatalf("err = %v, want ErrInvalidProgram", err)
	}
	if !strings.Contains(buf.String(), "Missing") {
		t.Errorf("diagnostic output %q does not mention the unknown type", buf.String())
	}
}

func TestCheckRejectsBadConfig(t *testing.T) {
	proj := config.Default()
	proj.Layout = "diagonal"
	_, err := Check(program(), Options{Config: proj})
	if err == nil || errors.Is(err, ErrInvalidProgram) {
		t.Fatalf("err = %v, want a configuration error", err)
	}
}
