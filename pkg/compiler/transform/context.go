package transform

import (
	"fmt"

	"github.com/recera/vexc/internal/orderedset"
	"github.com/recera/vexc/pkg/compiler/ast"
)

// NodeTransform is one pass applied to each node on the way down. The returned
// exit function, if any, runs after the node's children have been transformed.
type NodeTransform func(node ast.Node, ctx *Context) (onExit func())

// Options configures a transform run
type Options struct {
	// HoistStatic moves fully static subtrees out of the render function
	HoistStatic bool

	// NodeTransforms run after the built-in passes, in order
	NodeTransforms []NodeTransform

	// OnError receives recoverable compile errors. When nil they are
	// collected and returned by Context.Errors.
	OnError func(error)
}

// Context is the mutable state of one template compilation. It must not be
// shared between compilations.
type Context struct {
	Options

	Root *ast.RootNode

	// Components and Directives are user assets resolved at the top of the
	// render function, in first-use order.
	Components *orderedset.Set[string]
	Directives *orderedset.Set[string]

	// Hoists are expressions lifted out of the render function; Hoists[i]
	// is referenced as _hoisted_{i+1}.
	Hoists []ast.JSChildNode

	// traversal cursor
	Parent      ast.ParentNode
	CurrentNode ast.Node
	ChildIndex  int

	helpers *orderedset.Set[*ast.Symbol]
	uses    map[*ast.Symbol]int // Helper calls not yet undone by RemoveHelper
	errors  []error
}

var _ ast.HelperRegistrar = (*Context)(nil)

// NewContext creates the context for compiling root
func NewContext(root *ast.RootNode, opts Options) *Context {
	return &Context{
		Options:     opts,
		Root:        root,
		Components:  orderedset.New[string](),
		Directives:  orderedset.New[string](),
		CurrentNode: root,
		helpers:     orderedset.New[*ast.Symbol](),
		uses:        make(map[*ast.Symbol]int),
	}
}

// Helper records that generated code calls s and returns s for use as a callee.
// Registering the same helper twice keeps its original position.
func (c *Context) Helper(s *ast.Symbol) *ast.Symbol {
	c.uses[s]++
	if c.helpers.Add(s) && debugLog != nil {
		debugLog("[transform] helper", s.Name())
	}
	return s
}

// RemoveHelper undoes one Helper call for s, for a pass that drops a node
// referencing it. s stays registered while other Helper calls remain.
func (c *Context) RemoveHelper(s *ast.Symbol) {
	n, ok := c.uses[s]
	if !ok {
		return
	}
	if n > 1 {
		c.uses[s] = n - 1
		return
	}
	delete(c.uses, s)
	c.helpers.Delete(s)
}

// HasHelper reports whether s has been registered
func (c *Context) HasHelper(s *ast.Symbol) bool {
	return c.helpers.Has(s)
}

// Helpers returns the registered helpers in registration order
func (c *Context) Helpers() []*ast.Symbol {
	return c.helpers.Items()
}

// HelperString registers s and returns the local name generated code uses for it
func (c *Context) HelperString(s *ast.Symbol) string {
	return "_" + c.Helper(s).Name()
}

// WithDirectivesHelper registers and returns the helper wrapping vnodes
// that carry runtime directives.
func (c *Context) WithDirectivesHelper() *ast.Symbol {
	return c.Helper(ast.WithDirectives)
}

// Hoist lifts exp out of the render function and returns a reference to it
func (c *Context) Hoist(exp ast.JSChildNode) *ast.SimpleExpressionNode {
	c.Hoists = append(c.Hoists, exp)
	return ast.NewSimpleExpression(fmt.Sprintf("_hoisted_%d", len(c.Hoists)), false)
}

// ReportError hands err to Options.OnError or keeps it for Errors
func (c *Context) ReportError(err error) {
	if c.OnError != nil {
		c.OnError(err)
		return
	}
	c.errors = append(c.errors, err)
}

// Errors returns errors collected while OnError was unset
func (c *Context) Errors() []error {
	return c.errors
}
