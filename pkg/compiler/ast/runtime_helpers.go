package ast

// Symbol is a unique marker for a runtime helper. Two symbols are the same
// helper only if they are the same pointer.
type Symbol struct {
	name string
}

// Name returns the runtime export name of the helper
func (s *Symbol) Name() string {
	return s.name
}

func (s *Symbol) String() string {
	return s.name
}

// Runtime helpers referenced by generated render code
var (
	Fragment                = &Symbol{name: "Fragment"}
	CreateVNode             = &Symbol{name: "createVNode"}
	CreateElementVNode      = &Symbol{name: "createElementVNode"}
	WithDirectives          = &Symbol{name: "withDirectives"}
	ResolveComponent        = &Symbol{name: "resolveComponent"}
	ResolveDynamicComponent = &Symbol{name: "resolveDynamicComponent"}
	ResolveDirective        = &Symbol{name: "resolveDirective"}
	ToDisplayString         = &Symbol{name: "toDisplayString"}
	MergeProps              = &Symbol{name: "mergeProps"}
	VShow                   = &Symbol{name: "vShow"}
)

// HelperRegistrar records which runtime helpers a compilation uses
type HelperRegistrar interface {
	Helper(s *Symbol) *Symbol
}

// GetVNodeHelper returns the helper creating a vnode of the given kind
func GetVNodeHelper(isComponent bool) *Symbol {
	if isComponent {
		return CreateVNode
	}
	return CreateElementVNode
}
