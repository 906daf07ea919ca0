package ast

import "fmt"

// Dump converts an IR tree into plain maps and slices suitable for YAML or
// JSON encoding. Codegen nodes attached to elements and the root are included.
func Dump(n any) any {
	switch n := n.(type) {
	case nil:
		return nil
	case *RootNode:
		m := map[string]any{
			"type":     n.Type().String(),
			"children": dumpChildren(n.Children),
		}
		if n.CodegenNode != nil {
			codegen := make([]any, 0, len(n.CodegenNode))
			for _, c := range n.CodegenNode {
				codegen = append(codegen, Dump(c))
			}
			m["codegenNode"] = codegen
		}
		return m
	case *ElementNode:
		m := map[string]any{
			"type":    n.Type().String(),
			"tag":     n.Tag,
			"tagType": n.TagType.String(),
		}
		if len(n.Props) > 0 {
			props := make([]any, 0, len(n.Props))
			for _, p := range n.Props {
				props = append(props, Dump(p))
			}
			m["props"] = props
		}
		if len(n.Children) > 0 {
			m["children"] = dumpChildren(n.Children)
		}
		if n.codegenNode != nil {
			m["codegenNode"] = Dump(n.codegenNode)
		}
		return m
	case *TextNode:
		return map[string]any{"type": n.Type().String(), "content": n.Content}
	case *InterpolationNode:
		return map[string]any{"type": n.Type().String(), "content": Dump(n.Content)}
	case *SimpleExpressionNode:
		return map[string]any{"type": n.Type().String(), "content": n.Content, "isStatic": n.IsStatic}
	case *AttributeNode:
		m := map[string]any{"type": n.Type().String(), "name": n.Name}
		if n.Value != nil {
			m["value"] = n.Value.Content
		}
		return m
	case *DirectiveNode:
		m := map[string]any{"type": n.Type().String(), "name": n.Name}
		if n.Exp != nil {
			m["exp"] = Dump(n.Exp)
		}
		if n.Arg != nil {
			m["arg"] = Dump(n.Arg)
		}
		if len(n.Modifiers) > 0 {
			m["modifiers"] = n.Modifiers
		}
		return m
	case *VNodeCall:
		m := map[string]any{
			"type":        n.Type().String(),
			"tag":         Dump(n.Tag),
			"isComponent": n.IsComponent,
		}
		if n.Props != nil {
			m["props"] = Dump(n.Props)
		}
		if n.Children != nil {
			m["children"] = Dump(n.Children)
		}
		if n.Directives != nil {
			m["directives"] = Dump(n.Directives)
		}
		return m
	case *CallExpression:
		args := make([]any, 0, len(n.Arguments))
		for _, a := range n.Arguments {
			args = append(args, Dump(a))
		}
		return map[string]any{
			"type":      n.Type().String(),
			"callee":    Dump(n.Callee),
			"arguments": args,
		}
	case *ObjectExpression:
		props := make([]any, 0, len(n.Properties))
		for _, p := range n.Properties {
			props = append(props, Dump(p))
		}
		return map[string]any{"type": n.Type().String(), "properties": props}
	case *Property:
		return map[string]any{
			"type":  n.Type().String(),
			"key":   Dump(n.Key),
			"value": Dump(n.Value),
		}
	case *ArrayExpression:
		elements := make([]any, 0, len(n.Elements))
		for _, e := range n.Elements {
			elements = append(elements, Dump(e))
		}
		return map[string]any{"type": n.Type().String(), "elements": elements}
	case TemplateChildren:
		return dumpChildren(n)
	case *Symbol:
		return "Symbol(" + n.name + ")"
	case TagName:
		return string(n)
	case Identifier:
		return string(n)
	case Raw:
		return string(n)
	default:
		panic(&InvariantError{Msg: fmt.Sprintf("dump: unhandled %T", n)})
	}
}

func dumpChildren(children []TemplateChildNode) []any {
	out := make([]any, 0, len(children))
	for _, c := range children {
		out = append(out, Dump(c))
	}
	return out
}
