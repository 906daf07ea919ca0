package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/recera/vexc/pkg/compiler/ast"
)

// TransformElement builds the VNodeCall of every element and component once
// its children are done. <template> groupings are left without codegen.
func TransformElement(node ast.Node, ctx *Context) func() {
	el, ok := node.(*ast.ElementNode)
	if !ok || el.TagType == ast.ElementTemplate {
		return nil
	}

	return func() {
		isComponent := el.TagType == ast.ElementComponent
		tag := resolveComponentType(el, ctx)
		props, directives := buildProps(el, ctx)

		var children ast.VNodeChildren
		if len(el.Children) > 0 {
			children = ast.TemplateChildren(el.Children)
		}

		el.SetCodegenNode(ast.NewVNodeCall(ctx, tag, props, children, directives, isComponent))
	}
}

func resolveComponentType(el *ast.ElementNode, ctx *Context) ast.VNodeTag {
	if el.TagType != ast.ElementComponent {
		return ast.TagName(el.Tag)
	}

	if isDynamicComponent(el) {
		for _, p := range el.Props {
			switch p := p.(type) {
			case *ast.AttributeNode:
				if p.Name == "is" && p.Value != nil {
					return ast.NewCallExpression(ctx.Helper(ast.ResolveDynamicComponent), ast.Raw(strconv.Quote(p.Value.Content)))
				}
			case *ast.DirectiveNode:
				if isBindOf(p, "is") && p.Exp != nil {
					return ast.NewCallExpression(ctx.Helper(ast.ResolveDynamicComponent), p.Exp)
				}
			}
		}
		ctx.ReportError(fmt.Errorf("<%s> requires an \"is\" binding", el.Tag))
	}

	ctx.Helper(ast.ResolveComponent)
	ctx.Components.Add(el.Tag)
	return ast.TagName(ToValidAssetID(el.Tag, "component"))
}

func isDynamicComponent(el *ast.ElementNode) bool {
	return el.Tag == "component"
}

func isBindOf(dir *ast.DirectiveNode, name string) bool {
	if dir.Name != "bind" || dir.Arg == nil {
		return false
	}
	arg, ok := dir.Arg.(*ast.SimpleExpressionNode)
	return ok && arg.IsStatic && arg.Content == name
}

// buildProps turns attributes and built-in directives into the props argument
// and collects runtime directives into packed directive arguments.
func buildProps(el *ast.ElementNode, ctx *Context) (ast.PropsExpression, *ast.ArrayExpression) {
	var (
		properties  []*ast.Property
		mergeArgs   []ast.CallArgument
		runtimeDirs []*ast.DirectiveNode
	)
	flush := func() {
		if len(properties) > 0 {
			mergeArgs = append(mergeArgs, ast.NewObjectExpression(properties...))
			properties = nil
		}
	}
	dynamic := isDynamicComponent(el)

	for _, p := range el.Props {
		switch p := p.(type) {
		case *ast.AttributeNode:
			if dynamic && p.Name == "is" {
				continue
			}
			value := ""
			if p.Value != nil {
				value = p.Value.Content
			}
			properties = append(properties, ast.NewProperty(p.Name, ast.NewSimpleExpression(value, true)))

		case *ast.DirectiveNode:
			switch p.Name {
			case "bind":
				if dynamic && isBindOf(p, "is") {
					continue
				}
				if p.Exp == nil {
					ctx.ReportError(fmt.Errorf("v-bind on <%s> is missing an expression", el.Tag))
					continue
				}
				if p.Arg == nil {
					// v-bind="obj" spreads an object into the props
					flush()
					mergeArgs = append(mergeArgs, p.Exp)
					continue
				}
				properties = append(properties, &ast.Property{Key: p.Arg, Value: asJSChild(p.Exp)})
			case "on":
				if p.Arg == nil {
					ctx.ReportError(fmt.Errorf("v-on on <%s> is missing an event name", el.Tag))
					continue
				}
				if len(p.Modifiers) > 0 {
					ctx.ReportError(fmt.Errorf("v-on on <%s>: modifiers .%s are not supported", el.Tag, strings.Join(p.Modifiers, ".")))
					continue
				}
				var handler ast.JSChildNode = ast.NewSimpleExpression("() => {}", false)
				if p.Exp != nil {
					handler = asJSChild(p.Exp)
				}
				properties = append(properties, &ast.Property{Key: handlerKey(p.Arg), Value: handler})
			case "text":
				if p.Exp == nil {
					ctx.ReportError(fmt.Errorf("v-text on <%s> is missing an expression", el.Tag))
					continue
				}
				properties = append(properties, ast.NewProperty("textContent",
					ast.NewCallExpression(ctx.Helper(ast.ToDisplayString), p.Exp)))
			case "html":
				if p.Exp == nil {
					ctx.ReportError(fmt.Errorf("v-html on <%s> is missing an expression", el.Tag))
					continue
				}
				properties = append(properties, ast.NewProperty("innerHTML", asJSChild(p.Exp)))
			default:
				runtimeDirs = append(runtimeDirs, p)
			}
		}
	}

	var props ast.PropsExpression
	if len(mergeArgs) > 0 {
		flush()
		props = ast.NewCallExpression(ctx.Helper(ast.MergeProps), mergeArgs...)
	} else if len(properties) > 0 {
		props = ast.NewObjectExpression(properties...)
	}

	var directives *ast.ArrayExpression
	if len(runtimeDirs) > 0 {
		args := make([]*ast.ArrayExpression, 0, len(runtimeDirs))
		for _, dir := range runtimeDirs {
			args = append(args, buildDirectiveArgs(dir, ctx))
		}
		directives = ast.NewDirectiveArguments(args...)
	}
	return props, directives
}

// buildDirectiveArgs packs a runtime directive, filling gaps before present
// fields with undefined so the tuple stays gap-free.
func buildDirectiveArgs(dir *ast.DirectiveNode, ctx *Context) *ast.ArrayExpression {
	var name ast.Raw
	if dir.Name == "show" {
		name = ast.Raw(ctx.HelperString(ast.VShow))
	} else {
		ctx.Helper(ast.ResolveDirective)
		ctx.Directives.Add(dir.Name)
		name = ast.Raw(ToValidAssetID(dir.Name, "directive"))
	}

	exp, arg := dir.Exp, dir.Arg
	var modifiers *ast.ObjectExpression
	if len(dir.Modifiers) > 0 {
		modifiers = ast.NewModifiers(dir.Modifiers)
		if arg == nil {
			arg = ast.Undefined()
		}
	}
	if arg != nil && exp == nil {
		exp = ast.Undefined()
	}
	return ast.NewDirectiveArgument(name, exp, arg, modifiers)
}

func handlerKey(arg ast.ExpressionNode) ast.ExpressionNode {
	if s, ok := arg.(*ast.SimpleExpressionNode); ok && s.IsStatic {
		return ast.NewSimpleExpression(toHandlerKey(s.Content), true)
	}
	return arg
}

func asJSChild(exp ast.ExpressionNode) ast.JSChildNode {
	switch e := exp.(type) {
	case *ast.SimpleExpressionNode:
		return e
	default:
		panic(&ast.InvariantError{Node: exp, Msg: fmt.Sprintf("unhandled expression %T", exp)})
	}
}
