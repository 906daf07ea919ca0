package transform

import "github.com/recera/vexc/pkg/compiler/ast"

func hoistStatic(root *ast.RootNode, ctx *Context) {
	walkHoist(root, ctx, true)
}

func walkHoist(parent ast.ParentNode, ctx *Context, rootLevel bool) {
	for _, child := range parent.ChildNodes() {
		el, ok := child.(*ast.ElementNode)
		if !ok {
			continue
		}
		switch el.TagType {
		case ast.ElementTemplate:
			walkHoist(el, ctx, rootLevel)
			continue
		case ast.ElementComponent:
			walkHoist(el, ctx, false)
			continue
		}

		call, ok := el.CodegenNode().(*ast.VNodeCall)
		if !ok {
			continue
		}
		if !rootLevel && isStaticElement(el) {
			el.SetCodegenNode(ctx.Hoist(call))
			continue
		}

		walkHoist(el, ctx, false)
		if hoisted := hoistableChildren(el); hoisted != nil {
			el.SetCodegenNode(ast.NewVNodeCall(nil, call.Tag, call.Props, ctx.Hoist(hoisted), call.Directives, call.IsComponent))
		}
	}
}

// isStaticElement reports whether el and its whole subtree never change
func isStaticElement(el *ast.ElementNode) bool {
	if el.TagType != ast.ElementPlain {
		return false
	}
	for _, p := range el.Props {
		if _, ok := p.(*ast.DirectiveNode); ok {
			return false
		}
	}
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ast.TextNode:
		case *ast.ElementNode:
			if !isStaticElement(c) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// hoistableChildren returns the children array of el when every child is
// static text or an already hoisted element, and at least one is an element.
func hoistableChildren(el *ast.ElementNode) *ast.ArrayExpression {
	if len(el.Children) == 0 {
		return nil
	}
	elements := make([]ast.ArrayElement, 0, len(el.Children))
	hasElement := false
	for _, child := range el.Children {
		switch c := child.(type) {
		case *ast.TextNode:
			elements = append(elements, c)
		case *ast.ElementNode:
			exp, ok := c.CodegenNode().(*ast.SimpleExpressionNode)
			if !ok {
				return nil
			}
			elements = append(elements, exp)
			hasElement = true
		default:
			return nil
		}
	}
	if !hasElement {
		return nil
	}
	return ast.NewArrayExpression(elements...)
}
