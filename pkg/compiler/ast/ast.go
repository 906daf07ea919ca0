// Package ast defines the intermediate representation shared by the template
// parser, the transform passes and the code generator.
//
// Template nodes (elements, text, interpolations) come from the parser. Codegen
// nodes (VNodeCall and the small JavaScript construction vocabulary) are attached
// to template nodes by the transform passes and consumed by the emitter.
package ast

// NodeType discriminates every IR node
type NodeType uint8

const (
	NodeRoot NodeType = iota
	NodeElement
	NodeText
	NodeInterpolation
	NodeSimpleExpression
	NodeAttribute
	NodeDirective

	// codegen
	NodeVNodeCall
	NodeJSCallExpression
	NodeJSObjectExpression
	NodeJSProperty
	NodeJSArrayExpression
)

var nodeTypeNames = [...]string{
	NodeRoot:               "ROOT",
	NodeElement:            "ELEMENT",
	NodeText:               "TEXT",
	NodeInterpolation:      "INTERPOLATION",
	NodeSimpleExpression:   "SIMPLE_EXPRESSION",
	NodeAttribute:          "ATTRIBUTE",
	NodeDirective:          "DIRECTIVE",
	NodeVNodeCall:          "VNODE_CALL",
	NodeJSCallExpression:   "JS_CALL_EXPRESSION",
	NodeJSObjectExpression: "JS_OBJECT_EXPRESSION",
	NodeJSProperty:         "JS_PROPERTY",
	NodeJSArrayExpression:  "JS_ARRAY_EXPRESSION",
}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "UNKNOWN"
}

// ElementType tells plain elements, components and <template> apart
type ElementType uint8

const (
	// ElementPlain is a native element such as div or span
	ElementPlain ElementType = iota
	// ElementComponent is a user component resolved at runtime
	ElementComponent
	// ElementTemplate is a grouping construct that is compiled away
	ElementTemplate
)

func (t ElementType) String() string {
	switch t {
	case ElementPlain:
		return "ELEMENT"
	case ElementComponent:
		return "COMPONENT"
	case ElementTemplate:
		return "TEMPLATE"
	default:
		return "UNKNOWN"
	}
}

// Node is implemented by every IR node
type Node interface {
	Type() NodeType
}

// ParentNode is a node owning template children: *RootNode or *ElementNode
type ParentNode interface {
	Node
	ChildNodes() []TemplateChildNode
}

// TemplateChildNode is *ElementNode, *TextNode or *InterpolationNode
type TemplateChildNode interface {
	RootCodegenNode
	CallArgument
	ArrayElement
	templateChild()
}

// ExpressionNode is currently only *SimpleExpressionNode
type ExpressionNode interface {
	Node
	CallArgument
	ArrayElement
	expression()
}

// JSChildNode is any node the emitter can serialize as a JavaScript value
type JSChildNode interface {
	Node
	CallArgument
	ArrayElement
	jsChild()
}

// PropsExpression describes the props argument of a VNodeCall: an object
// literal, a call computing props (mergeProps) or a plain expression.
type PropsExpression interface {
	JSChildNode
	propsExpression()
}

// VNodeTag is TagName, *Symbol or *CallExpression
type VNodeTag interface {
	vnodeTag()
}

// VNodeChildren is TemplateChildren or a hoisted *SimpleExpressionNode
type VNodeChildren interface {
	vnodeChildren()
}

// Callee is the function called by a CallExpression: *Symbol or Identifier
type Callee interface {
	callee()
}

// CallArgument is Raw, a JSChildNode, a TemplateChildNode or TemplateChildren
type CallArgument interface {
	callArgument()
}

// ArrayElement is Raw or any node
type ArrayElement interface {
	arrayElement()
}

// ElementProp is *AttributeNode or *DirectiveNode
type ElementProp interface {
	Node
	elementProp()
}

// ElementCodegenNode is *VNodeCall or a hoisted *SimpleExpressionNode
type ElementCodegenNode interface {
	JSChildNode
	elementCodegen()
}

// RootCodegenNode is a TemplateChildNode or *VNodeCall
type RootCodegenNode interface {
	Node
	rootCodegen()
}

// TagName is a literal element tag or an already resolved component identifier
type TagName string

// Identifier is a plain callee name emitted verbatim
type Identifier string

// Raw is a code fragment the emitter writes verbatim
type Raw string

// TemplateChildren is an ordered list of template children
type TemplateChildren []TemplateChildNode

// RootNode is the top of a parsed template
type RootNode struct {
	Children    []TemplateChildNode
	CodegenNode []RootCodegenNode
}

// ElementNode is a plain element, a component or a <template> grouping
type ElementNode struct {
	Tag      string
	TagType  ElementType
	Props    []ElementProp
	Children []TemplateChildNode

	codegenNode ElementCodegenNode
}

// TextNode is literal text content
type TextNode struct {
	Content string
}

// InterpolationNode is a {{ expression }} child
type InterpolationNode struct {
	Content ExpressionNode
}

// SimpleExpressionNode is an opaque expression source fragment
type SimpleExpressionNode struct {
	Content  string
	IsStatic bool
}

// AttributeNode is a static attribute; Value is nil for valueless attributes
type AttributeNode struct {
	Name  string
	Value *TextNode
}

// DirectiveNode is a v-name:arg.modifiers="exp" binding
type DirectiveNode struct {
	Name      string
	Exp       ExpressionNode
	Arg       ExpressionNode
	Modifiers []string
}

// VNodeCall describes how to construct one element or component at render time.
// A VNodeCall with Directives is wrapped by withDirectives when emitted.
type VNodeCall struct {
	Tag         VNodeTag
	Props       PropsExpression
	Children    VNodeChildren
	Directives  *ArrayExpression
	IsComponent bool
}

// CallExpression calls a runtime helper or a named function
type CallExpression struct {
	Callee    Callee
	Arguments []CallArgument
}

// ObjectExpression is an ordered object literal
type ObjectExpression struct {
	Properties []*Property
}

// Property is a single key/value pair of an ObjectExpression
type Property struct {
	Key   ExpressionNode
	Value JSChildNode
}

// ArrayExpression is an ordered array literal
type ArrayExpression struct {
	Elements []ArrayElement
}

func (*RootNode) Type() NodeType             { return NodeRoot }
func (*ElementNode) Type() NodeType          { return NodeElement }
func (*TextNode) Type() NodeType             { return NodeText }
func (*InterpolationNode) Type() NodeType    { return NodeInterpolation }
func (*SimpleExpressionNode) Type() NodeType { return NodeSimpleExpression }
func (*AttributeNode) Type() NodeType        { return NodeAttribute }
func (*DirectiveNode) Type() NodeType        { return NodeDirective }
func (*VNodeCall) Type() NodeType            { return NodeVNodeCall }
func (*CallExpression) Type() NodeType       { return NodeJSCallExpression }
func (*ObjectExpression) Type() NodeType     { return NodeJSObjectExpression }
func (*Property) Type() NodeType             { return NodeJSProperty }
func (*ArrayExpression) Type() NodeType      { return NodeJSArrayExpression }

func (n *RootNode) ChildNodes() []TemplateChildNode    { return n.Children }
func (n *ElementNode) ChildNodes() []TemplateChildNode { return n.Children }

func (*ElementNode) templateChild()       {}
func (*TextNode) templateChild()          {}
func (*InterpolationNode) templateChild() {}

func (*SimpleExpressionNode) expression() {}

func (*VNodeCall) jsChild()            {}
func (*CallExpression) jsChild()       {}
func (*ObjectExpression) jsChild()     {}
func (*ArrayExpression) jsChild()      {}
func (*SimpleExpressionNode) jsChild() {}

func (*ObjectExpression) propsExpression()     {}
func (*CallExpression) propsExpression()       {}
func (*SimpleExpressionNode) propsExpression() {}

func (TagName) vnodeTag()         {}
func (*Symbol) vnodeTag()         {}
func (*CallExpression) vnodeTag() {}

func (TemplateChildren) vnodeChildren()      {}
func (*SimpleExpressionNode) vnodeChildren() {}

func (*Symbol) callee()    {}
func (Identifier) callee() {}

func (Raw) callArgument()                   {}
func (TemplateChildren) callArgument()      {}
func (*ElementNode) callArgument()          {}
func (*TextNode) callArgument()             {}
func (*InterpolationNode) callArgument()    {}
func (*SimpleExpressionNode) callArgument() {}
func (*VNodeCall) callArgument()            {}
func (*CallExpression) callArgument()       {}
func (*ObjectExpression) callArgument()     {}
func (*ArrayExpression) callArgument()      {}

func (Raw) arrayElement()                   {}
func (*RootNode) arrayElement()             {}
func (*ElementNode) arrayElement()          {}
func (*TextNode) arrayElement()             {}
func (*InterpolationNode) arrayElement()    {}
func (*SimpleExpressionNode) arrayElement() {}
func (*AttributeNode) arrayElement()        {}
func (*DirectiveNode) arrayElement()        {}
func (*VNodeCall) arrayElement()            {}
func (*CallExpression) arrayElement()       {}
func (*ObjectExpression) arrayElement()     {}
func (*Property) arrayElement()             {}
func (*ArrayExpression) arrayElement()      {}

func (*AttributeNode) elementProp() {}
func (*DirectiveNode) elementProp() {}

func (*VNodeCall) elementCodegen()            {}
func (*SimpleExpressionNode) elementCodegen() {}

func (*VNodeCall) rootCodegen()         {}
func (*ElementNode) rootCodegen()       {}
func (*TextNode) rootCodegen()          {}
func (*InterpolationNode) rootCodegen() {}

// CodegenNode returns the codegen node attached by the transform passes, or nil
func (n *ElementNode) CodegenNode() ElementCodegenNode {
	return n.codegenNode
}

// SetCodegenNode attaches c to n. It panics with *InvariantError when c does
// not fit the element kind: templates never carry one and components only
// accept a VNodeCall.
func (n *ElementNode) SetCodegenNode(c ElementCodegenNode) {
	if err := checkElementCodegen(n, c); err != nil {
		panic(err)
	}
	n.codegenNode = c
}

// NewRoot creates a root owning children with no codegen node yet
func NewRoot(children []TemplateChildNode) *RootNode {
	return &RootNode{
		Children:    children,
		CodegenNode: nil,
	}
}

// NewElement creates an element node with no codegen node
func NewElement(tag string, tagType ElementType, props []ElementProp, children []TemplateChildNode) *ElementNode {
	return &ElementNode{
		Tag:      tag,
		TagType:  tagType,
		Props:    props,
		Children: children,
	}
}

// NewText creates a text node
func NewText(content string) *TextNode {
	return &TextNode{Content: content}
}

// NewInterpolation creates an interpolation of a simple expression
func NewInterpolation(content string) *InterpolationNode {
	return &InterpolationNode{Content: NewSimpleExpression(content, false)}
}

// NewSimpleExpression creates an expression node. Static expressions are
// literal strings (attribute names, directive arguments) the emitter quotes.
func NewSimpleExpression(content string, isStatic bool) *SimpleExpressionNode {
	return &SimpleExpressionNode{Content: content, IsStatic: isStatic}
}

// NewAttribute creates a static attribute. A nil value means a valueless attribute.
func NewAttribute(name string, value *TextNode) *AttributeNode {
	return &AttributeNode{Name: name, Value: value}
}

// NewDirective creates a directive binding; exp and arg may be nil
func NewDirective(name string, exp, arg ExpressionNode, modifiers []string) *DirectiveNode {
	return &DirectiveNode{
		Name:      name,
		Exp:       exp,
		Arg:       arg,
		Modifiers: modifiers,
	}
}

// NewCallExpression creates a call of callee with args
func NewCallExpression(callee Callee, args ...CallArgument) *CallExpression {
	return &CallExpression{
		Callee:    callee,
		Arguments: args,
	}
}

// NewObjectExpression creates an object literal
func NewObjectExpression(properties ...*Property) *ObjectExpression {
	return &ObjectExpression{Properties: properties}
}

// NewProperty creates an object property. A string key becomes a static expression.
func NewProperty(key string, value JSChildNode) *Property {
	return &Property{
		Key:   NewSimpleExpression(key, true),
		Value: value,
	}
}

// NewArrayExpression creates an array literal
func NewArrayExpression(elements ...ArrayElement) *ArrayExpression {
	return &ArrayExpression{Elements: elements}
}
