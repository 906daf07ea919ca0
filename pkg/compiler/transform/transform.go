// Package transform walks a parsed template and attaches to every node the
// codegen node describing how to build it at render time.
package transform

import (
	"fmt"

	"github.com/recera/vexc/pkg/compiler/ast"
)

// debugLog is set by callers that want pass tracing
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Transform runs the built-in passes and opts.NodeTransforms over root and
// returns the context holding the helpers, assets and hoists the emitter needs.
func Transform(root *ast.RootNode, opts Options) *Context {
	ctx := NewContext(root, opts)
	transforms := append([]NodeTransform{TransformElement, TransformText}, opts.NodeTransforms...)

	traverseNode(root, ctx, transforms)
	if opts.HoistStatic {
		hoistStatic(root, ctx)
	}
	createRootCodegen(root)

	if debugLog != nil {
		debugLog("[transform] done:", len(ctx.Helpers()), "helpers,", len(ctx.Hoists), "hoists")
	}
	return ctx
}

func traverseNode(node ast.Node, ctx *Context, transforms []NodeTransform) {
	ctx.CurrentNode = node

	var exits []func()
	for _, t := range transforms {
		if onExit := t(node, ctx); onExit != nil {
			exits = append(exits, onExit)
		}
	}

	switch n := node.(type) {
	case *ast.RootNode:
		traverseChildren(n, ctx, transforms)
	case *ast.ElementNode:
		traverseChildren(n, ctx, transforms)
	case *ast.TextNode, *ast.InterpolationNode:
	default:
		panic(&ast.InvariantError{Node: node, Msg: fmt.Sprintf("transform: unhandled node %T", node)})
	}

	// exit in reverse so the first pass sees the final state of its children
	ctx.CurrentNode = node
	for i := len(exits) - 1; i >= 0; i-- {
		exits[i]()
	}
}

// traverseChildren visits the children of parent and leaves the cursor as it
// found it, so exit callbacks see their own node's parent and index.
func traverseChildren(parent ast.ParentNode, ctx *Context, transforms []NodeTransform) {
	prevParent, prevIndex := ctx.Parent, ctx.ChildIndex
	for i, child := range parent.ChildNodes() {
		ctx.Parent = parent
		ctx.ChildIndex = i
		traverseNode(child, ctx, transforms)
	}
	ctx.Parent = prevParent
	ctx.ChildIndex = prevIndex
}

// createRootCodegen lists what the render function returns. Template
// groupings are flattened into their children.
func createRootCodegen(root *ast.RootNode) {
	codegen := make([]ast.RootCodegenNode, 0, len(root.Children))
	var collect func(children []ast.TemplateChildNode)
	collect = func(children []ast.TemplateChildNode) {
		for _, child := range children {
			switch n := child.(type) {
			case *ast.ElementNode:
				if n.TagType == ast.ElementTemplate {
					collect(n.Children)
					continue
				}
				if call, ok := n.CodegenNode().(*ast.VNodeCall); ok {
					codegen = append(codegen, call)
				} else {
					codegen = append(codegen, n)
				}
			case *ast.TextNode, *ast.InterpolationNode:
				codegen = append(codegen, n)
			default:
				panic(&ast.InvariantError{Node: root, Msg: fmt.Sprintf("root codegen: unhandled child %T", child)})
			}
		}
	}
	collect(root.Children)
	root.CodegenNode = codegen
}
