package ast

import (
	"errors"
	"fmt"
)

// InvariantError reports an IR shape that no upstream pass may produce
type InvariantError struct {
	Node Node
	Msg  string
}

func (e *InvariantError) Error() string {
	if e.Node == nil {
		return "ast: " + e.Msg
	}
	return fmt.Sprintf("ast: %s: %s", e.Node.Type(), e.Msg)
}

func checkElementCodegen(n *ElementNode, c ElementCodegenNode) error {
	if c == nil {
		return nil
	}
	switch n.TagType {
	case ElementTemplate:
		return &InvariantError{Node: n, Msg: fmt.Sprintf("<%s> is compiled away and cannot carry a codegen node", n.Tag)}
	case ElementComponent:
		if _, ok := c.(*VNodeCall); !ok {
			return &InvariantError{Node: n, Msg: fmt.Sprintf("component <%s> codegen must be a VNodeCall, got %s", n.Tag, c.Type())}
		}
	case ElementPlain:
		switch c.(type) {
		case *VNodeCall, *SimpleExpressionNode:
		default:
			return &InvariantError{Node: n, Msg: fmt.Sprintf("element <%s> codegen must be a VNodeCall or hoisted expression, got %s", n.Tag, c.Type())}
		}
	default:
		return &InvariantError{Node: n, Msg: fmt.Sprintf("unknown element type %d", n.TagType)}
	}
	return nil
}

// Validate checks every IR invariant reachable from root and returns all
// violations joined together, or nil.
func Validate(root *RootNode) error {
	var errs []error
	checked := make(map[*VNodeCall]bool)
	err := Walk(root, func(child TemplateChildNode, parent ParentNode) error {
		el, ok := child.(*ElementNode)
		if !ok {
			return nil
		}
		if err := checkElementCodegen(el, el.codegenNode); err != nil {
			errs = append(errs, err)
		}
		if call, ok := el.codegenNode.(*VNodeCall); ok {
			if call.IsComponent != (el.TagType == ElementComponent) {
				errs = append(errs, &InvariantError{Node: call, Msg: fmt.Sprintf("isComponent=%t does not match <%s> (%s)", call.IsComponent, el.Tag, el.TagType)})
			}
			checked[call] = true
			errs = append(errs, validateVNodeCall(call)...)
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	// root entries are usually the calls of top-level elements, already checked
	for _, c := range root.CodegenNode {
		if call, ok := c.(*VNodeCall); ok && !checked[call] {
			checked[call] = true
			errs = append(errs, validateVNodeCall(call)...)
		}
	}
	return errors.Join(errs...)
}

func validateVNodeCall(call *VNodeCall) []error {
	var errs []error
	switch tag := call.Tag.(type) {
	case TagName:
		if tag == "" {
			errs = append(errs, &InvariantError{Node: call, Msg: "empty tag"})
		}
	case *Symbol:
		if call.IsComponent {
			errs = append(errs, &InvariantError{Node: call, Msg: fmt.Sprintf("symbolic tag %s cannot be a component", tag)})
		}
	case *CallExpression:
		if tag.Callee == ResolveDynamicComponent && !call.IsComponent {
			errs = append(errs, &InvariantError{Node: call, Msg: "dynamic component tag on a non-component vnode"})
		}
	case nil:
		errs = append(errs, &InvariantError{Node: call, Msg: "missing tag"})
	default:
		errs = append(errs, &InvariantError{Node: call, Msg: fmt.Sprintf("unknown tag kind %T", tag)})
	}
	if call.Directives != nil {
		for _, el := range call.Directives.Elements {
			arg, ok := el.(*ArrayExpression)
			if !ok {
				errs = append(errs, &InvariantError{Node: call.Directives, Msg: fmt.Sprintf("directive argument must be an array, got %T", el)})
				continue
			}
			if err := CheckDirectiveArgument(arg); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// CheckDirectiveArgument verifies a packed directive tuple has one of the four
// legal shapes and no absent field.
func CheckDirectiveArgument(a *ArrayExpression) error {
	n := len(a.Elements)
	if n < 1 || n > 4 {
		return &InvariantError{Node: a, Msg: fmt.Sprintf("directive tuple has %d elements", n)}
	}
	if _, ok := a.Elements[0].(Raw); !ok {
		return &InvariantError{Node: a, Msg: fmt.Sprintf("directive name must be raw code, got %T", a.Elements[0])}
	}
	for i := 1; i < n; i++ {
		el := a.Elements[i]
		if isAbsent(el) {
			return &InvariantError{Node: a, Msg: fmt.Sprintf("%s is absent", directiveFieldNames[i-1])}
		}
		if i == 3 {
			if _, ok := el.(*ObjectExpression); !ok {
				return &InvariantError{Node: a, Msg: fmt.Sprintf("modifiers must be an object, got %T", el)}
			}
		} else if _, ok := el.(ExpressionNode); !ok {
			return &InvariantError{Node: a, Msg: fmt.Sprintf("%s must be an expression, got %T", directiveFieldNames[i-1], el)}
		}
	}
	return nil
}
