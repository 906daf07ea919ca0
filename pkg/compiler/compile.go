// Package compiler compiles templates into render functions: parse, transform,
// validate and generate.
package compiler

import (
	"errors"
	"fmt"

	"github.com/recera/vexc/pkg/compiler/ast"
	"github.com/recera/vexc/pkg/compiler/codegen"
	"github.com/recera/vexc/pkg/compiler/parser"
	"github.com/recera/vexc/pkg/compiler/transform"
)

// Version is mixed into cache keys so a compiler upgrade invalidates old output
const Version = "0.1.0"

// Options configures every stage of a compilation
type Options struct {
	Parser    parser.Options
	Transform transform.Options
	Codegen   codegen.Options
}

// DefaultOptions returns condensed whitespace, static hoisting and function-mode output
func DefaultOptions() Options {
	return Options{
		Transform: transform.Options{HoistStatic: true},
		Codegen:   codegen.DefaultOptions(),
	}
}

// Result holds the generated code and the intermediate tree it came from
type Result struct {
	Code    string
	Helpers []string
	AST     *ast.RootNode
}

// Compile compiles one template. filename is only used in error messages.
func Compile(filename, source string, opts Options) (*Result, error) {
	root, err := parser.Parse(filename, source, opts.Parser)
	if err != nil {
		return nil, err
	}

	ctx := transform.Transform(root, opts.Transform)
	if errs := ctx.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", filename, errors.Join(errs...))
	}
	if err := ast.Validate(root); err != nil {
		return nil, fmt.Errorf("%s: invalid tree: %w", filename, err)
	}

	out, err := codegen.Generate(root, ctx, opts.Codegen)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return &Result{
		Code:    out.Code,
		Helpers: out.Helpers,
		AST:     root,
	}, nil
}
