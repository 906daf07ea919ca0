package ast

// NewVNodeCall builds a VNodeCall and registers the helpers it needs with ctx.
// The creation helper follows isComponent and withDirectives is registered
// when directives is non-nil. A nil ctx skips registration entirely, which is
// how nodes are built outside of a tracked compilation.
func NewVNodeCall(
	ctx HelperRegistrar,
	tag VNodeTag,
	props PropsExpression,
	children VNodeChildren,
	directives *ArrayExpression,
	isComponent bool,
) *VNodeCall {
	if ctx != nil {
		ctx.Helper(GetVNodeHelper(isComponent))
		if directives != nil {
			ctx.Helper(WithDirectives)
		}
	}

	return &VNodeCall{
		Tag:         tag,
		Props:       props,
		Children:    children,
		Directives:  directives,
		IsComponent: isComponent,
	}
}
