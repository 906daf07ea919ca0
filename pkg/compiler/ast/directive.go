package ast

// Undefined is the placeholder for an absent directive field that is followed
// by a present one.
func Undefined() *SimpleExpressionNode {
	return NewSimpleExpression("void 0", false)
}

// NewDirectiveArgument packs a directive binding into the shortest gap-free
// tuple: [name], [name, exp], [name, exp, arg] or [name, exp, arg, modifiers].
// Trailing nil fields are dropped. A nil field followed by a present one is a
// caller bug and panics with *InvariantError; use Undefined to fill the gap.
func NewDirectiveArgument(name Raw, exp, arg ExpressionNode, modifiers *ObjectExpression) *ArrayExpression {
	fields := []ArrayElement{name}
	present := []bool{!isAbsent(exp), !isAbsent(arg), modifiers != nil}

	last := 0
	for i, ok := range present {
		if ok {
			last = i + 1
		}
	}
	for i := 0; i < last; i++ {
		if !present[i] {
			panic(&InvariantError{
				Node: nil,
				Msg:  "directive " + string(name) + ": " + directiveFieldNames[i] + " is absent but a later field is present",
			})
		}
	}

	if last >= 1 {
		fields = append(fields, exp)
	}
	if last >= 2 {
		fields = append(fields, arg)
	}
	if last >= 3 {
		fields = append(fields, modifiers)
	}
	return NewArrayExpression(fields...)
}

var directiveFieldNames = [...]string{"exp", "arg", "modifiers"}

// isAbsent reports whether n is nil, including a nil pointer held in an
// interface.
func isAbsent(n any) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *SimpleExpressionNode:
		return v == nil
	case *ObjectExpression:
		return v == nil
	case *ArrayExpression:
		return v == nil
	case *CallExpression:
		return v == nil
	}
	return false
}

// NewDirectiveArguments collects packed directive tuples for VNodeCall.Directives
func NewDirectiveArguments(args ...*ArrayExpression) *ArrayExpression {
	elements := make([]ArrayElement, 0, len(args))
	for _, a := range args {
		elements = append(elements, a)
	}
	return NewArrayExpression(elements...)
}

// NewModifiers builds the {mod: true, ...} object passed as the fourth tuple field
func NewModifiers(modifiers []string) *ObjectExpression {
	obj := NewObjectExpression()
	for _, m := range modifiers {
		obj.Properties = append(obj.Properties, NewProperty(m, NewSimpleExpression("true", false)))
	}
	return obj
}
