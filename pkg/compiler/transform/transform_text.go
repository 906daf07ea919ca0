package transform

import "github.com/recera/vexc/pkg/compiler/ast"

// TransformText registers toDisplayString for every interpolation
func TransformText(node ast.Node, ctx *Context) func() {
	if _, ok := node.(*ast.InterpolationNode); !ok {
		return nil
	}
	return func() {
		ctx.Helper(ast.ToDisplayString)
	}
}
