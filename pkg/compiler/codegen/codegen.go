// Package codegen serializes a transformed template into render function source.
package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/recera/vexc/pkg/compiler/ast"
	"github.com/recera/vexc/pkg/compiler/transform"
)

// Mode selects the shape of the generated code
type Mode uint8

const (
	// ModeFunction emits a function body returning render, with helpers taken
	// from a runtime global and expressions evaluated inside with (_ctx).
	ModeFunction Mode = iota
	// ModeModule emits an ES module exporting render. Simple identifier
	// paths in expressions are prefixed with _ctx.
	ModeModule
)

// Options configures code generation
type Options struct {
	Mode Mode

	// RuntimeModule is the module helpers are imported from in ModeModule
	RuntimeModule string

	// RuntimeGlobal is the global object helpers are read from in ModeFunction
	RuntimeGlobal string

	// Indent is one indentation step
	Indent string
}

// DefaultOptions returns function mode with the chibivue runtime
func DefaultOptions() Options {
	return Options{
		Mode:          ModeFunction,
		RuntimeModule: "chibivue",
		RuntimeGlobal: "ChibiVue",
		Indent:        "  ",
	}
}

// Result is the generated source plus the helpers it imports
type Result struct {
	Code    string
	Helpers []string
}

type generator struct {
	b     strings.Builder
	level int
	opts  Options
	ctx   *transform.Context
	err   error
}

// Generate emits the render function for root. ctx must be the context root
// was transformed with: only the helpers it recorded are imported and any
// reference to another helper is an error.
func Generate(root *ast.RootNode, ctx *transform.Context, opts Options) (*Result, error) {
	defaults := DefaultOptions()
	if opts.RuntimeModule == "" {
		opts.RuntimeModule = defaults.RuntimeModule
	}
	if opts.RuntimeGlobal == "" {
		opts.RuntimeGlobal = defaults.RuntimeGlobal
	}
	if opts.Indent == "" {
		opts.Indent = defaults.Indent
	}

	g := &generator{opts: opts, ctx: ctx}
	g.genPreamble()
	g.genHoists()

	if opts.Mode == ModeModule {
		g.write("export function render(_ctx) {")
		g.indent()
	} else {
		g.write("return function render(_ctx) {")
		g.indent()
		g.write("with (_ctx) {")
		g.indent()
	}

	g.genAssets("component", ast.ResolveComponent, ctx.Components.Items())
	g.genAssets("directive", ast.ResolveDirective, ctx.Directives.Items())

	g.write("return ")
	g.genRoot(root)

	if opts.Mode == ModeFunction {
		g.deindent()
		g.write("}")
	}
	g.deindent()
	g.write("}")
	g.newline()

	if g.err != nil {
		return nil, g.err
	}

	helpers := make([]string, 0, len(ctx.Helpers()))
	for _, h := range ctx.Helpers() {
		helpers = append(helpers, h.Name())
	}
	return &Result{Code: g.b.String(), Helpers: helpers}, nil
}

// write helper that stops once an error is recorded
func (g *generator) write(s string) {
	if g.err != nil {
		return
	}
	g.b.WriteString(s)
}

func (g *generator) fail(format string, args ...interface{}) {
	if g.err == nil {
		g.err = fmt.Errorf("codegen: "+format, args...)
	}
}

func (g *generator) newline() {
	g.write("\n" + strings.Repeat(g.opts.Indent, g.level))
}

// blankLine ends the current line and leaves an empty one without indentation
func (g *generator) blankLine() {
	g.write("\n")
	g.newline()
}

func (g *generator) indent() {
	g.level++
	g.newline()
}

func (g *generator) deindent() {
	g.level--
	g.newline()
}

func (g *generator) helper(s *ast.Symbol) string {
	if !g.ctx.HasHelper(s) {
		g.fail("helper %s used but never registered", s.Name())
	}
	return "_" + s.Name()
}

func (g *generator) genPreamble() {
	helpers := g.ctx.Helpers()
	if len(helpers) == 0 {
		return
	}
	aliases := make([]string, 0, len(helpers))
	for _, h := range helpers {
		if g.opts.Mode == ModeModule {
			aliases = append(aliases, h.Name()+" as _"+h.Name())
		} else {
			aliases = append(aliases, h.Name()+": _"+h.Name())
		}
	}
	if g.opts.Mode == ModeModule {
		g.write(fmt.Sprintf("import { %s } from %s", strings.Join(aliases, ", "), jsString(g.opts.RuntimeModule)))
	} else {
		g.write(fmt.Sprintf("const { %s } = %s", strings.Join(aliases, ", "), g.opts.RuntimeGlobal))
	}
	g.blankLine()
}

func (g *generator) genHoists() {
	if len(g.ctx.Hoists) == 0 {
		return
	}
	for i, exp := range g.ctx.Hoists {
		if i > 0 {
			g.newline()
		}
		g.write(fmt.Sprintf("const _hoisted_%d = ", i+1))
		g.genNode(exp)
	}
	g.blankLine()
}

func (g *generator) genAssets(kind string, resolver *ast.Symbol, names []string) {
	if len(names) == 0 {
		return
	}
	for i, name := range names {
		if i > 0 {
			g.newline()
		}
		id := transform.ToValidAssetID(name, kind)
		g.write(fmt.Sprintf("const %s = %s(%s)", id, g.helper(resolver), jsString(name)))
	}
	g.blankLine()
}

func (g *generator) genRoot(root *ast.RootNode) {
	switch len(root.CodegenNode) {
	case 0:
		g.write("null")
	case 1:
		g.genRootChild(root.CodegenNode[0])
	default:
		g.write("[")
		g.indent()
		for i, c := range root.CodegenNode {
			if i > 0 {
				g.write(",")
				g.newline()
			}
			g.genRootChild(c)
		}
		g.deindent()
		g.write("]")
	}
}

func (g *generator) genRootChild(c ast.RootCodegenNode) {
	switch c := c.(type) {
	case *ast.VNodeCall:
		g.genNode(c)
	case ast.TemplateChildNode:
		g.genChild(c)
	default:
		g.fail("unhandled root codegen %T", c)
	}
}

// genNode emits any JavaScript-valued node
func (g *generator) genNode(n ast.JSChildNode) {
	switch n := n.(type) {
	case *ast.VNodeCall:
		g.genVNodeCall(n)
	case *ast.CallExpression:
		g.genCallExpression(n)
	case *ast.ObjectExpression:
		g.genObjectExpression(n)
	case *ast.ArrayExpression:
		g.genArrayExpression(n)
	case *ast.SimpleExpressionNode:
		g.genExpression(n)
	case nil:
		g.write("null")
	default:
		g.fail("unhandled node %T", n)
	}
}

func (g *generator) genVNodeCall(n *ast.VNodeCall) {
	if n.Directives != nil {
		g.write(g.helper(ast.WithDirectives) + "(")
	}
	g.write(g.helper(ast.GetVNodeHelper(n.IsComponent)) + "(")

	switch tag := n.Tag.(type) {
	case ast.TagName:
		if n.IsComponent {
			g.write(string(tag))
		} else {
			g.write(jsString(string(tag)))
		}
	case *ast.Symbol:
		g.write(g.helper(tag))
	case *ast.CallExpression:
		g.genCallExpression(tag)
	default:
		g.fail("unhandled vnode tag %T", n.Tag)
	}

	// trailing absent arguments are dropped
	switch {
	case n.Children != nil:
		g.write(", ")
		g.genProps(n.Props)
		g.write(", ")
		g.genVNodeChildren(n.Children)
	case n.Props != nil:
		g.write(", ")
		g.genProps(n.Props)
	}
	g.write(")")

	if n.Directives != nil {
		g.write(", ")
		g.genArrayExpression(n.Directives)
		g.write(")")
	}
}

func (g *generator) genProps(p ast.PropsExpression) {
	if p == nil {
		g.write("null")
		return
	}
	g.genNode(p)
}

func (g *generator) genVNodeChildren(c ast.VNodeChildren) {
	switch c := c.(type) {
	case ast.TemplateChildren:
		g.genChildList(c)
	case *ast.SimpleExpressionNode:
		g.genExpression(c)
	default:
		g.fail("unhandled vnode children %T", c)
	}
}

// genChildList emits children as an array, flattening template groupings
func (g *generator) genChildList(children []ast.TemplateChildNode) {
	flat := flatten(children)
	multiline := false
	for _, c := range flat {
		if _, ok := c.(*ast.ElementNode); ok {
			multiline = true
			break
		}
	}

	g.write("[")
	if multiline {
		g.indent()
	}
	for i, c := range flat {
		if i > 0 {
			if multiline {
				g.write(",")
				g.newline()
			} else {
				g.write(", ")
			}
		}
		g.genChild(c)
	}
	if multiline {
		g.deindent()
	}
	g.write("]")
}

func flatten(children []ast.TemplateChildNode) []ast.TemplateChildNode {
	out := make([]ast.TemplateChildNode, 0, len(children))
	for _, c := range children {
		if el, ok := c.(*ast.ElementNode); ok && el.TagType == ast.ElementTemplate {
			out = append(out, flatten(el.Children)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (g *generator) genChild(c ast.TemplateChildNode) {
	switch c := c.(type) {
	case *ast.ElementNode:
		if c.TagType == ast.ElementTemplate {
			g.genChildList(c.Children)
			return
		}
		if c.CodegenNode() == nil {
			g.fail("<%s> was not transformed", c.Tag)
			return
		}
		g.genNode(c.CodegenNode())
	case *ast.TextNode:
		g.write(jsString(c.Content))
	case *ast.InterpolationNode:
		g.write(g.helper(ast.ToDisplayString) + "(")
		g.genNode(asJS(c.Content))
		g.write(")")
	default:
		g.fail("unhandled child %T", c)
	}
}

func (g *generator) genCallExpression(n *ast.CallExpression) {
	switch callee := n.Callee.(type) {
	case *ast.Symbol:
		g.write(g.helper(callee))
	case ast.Identifier:
		g.write(string(callee))
	default:
		g.fail("unhandled callee %T", n.Callee)
	}
	g.write("(")
	for i, arg := range n.Arguments {
		if i > 0 {
			g.write(", ")
		}
		switch a := arg.(type) {
		case ast.Raw:
			g.write(string(a))
		case ast.TemplateChildren:
			g.genChildList(a)
		case ast.TemplateChildNode:
			g.genChild(a)
		case ast.JSChildNode:
			g.genNode(a)
		default:
			g.fail("unhandled call argument %T", arg)
		}
	}
	g.write(")")
}

func (g *generator) genObjectExpression(n *ast.ObjectExpression) {
	if len(n.Properties) == 0 {
		g.write("{}")
		return
	}
	g.write("{ ")
	for i, p := range n.Properties {
		if i > 0 {
			g.write(", ")
		}
		g.genPropertyKey(p.Key)
		g.write(": ")
		g.genNode(p.Value)
	}
	g.write(" }")
}

var identRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

func (g *generator) genPropertyKey(key ast.ExpressionNode) {
	s, ok := key.(*ast.SimpleExpressionNode)
	if !ok {
		g.fail("unhandled property key %T", key)
		return
	}
	switch {
	case !s.IsStatic:
		g.write("[")
		g.genExpression(s)
		g.write("]")
	case identRE.MatchString(s.Content):
		g.write(s.Content)
	default:
		g.write(jsString(s.Content))
	}
}

func (g *generator) genArrayExpression(n *ast.ArrayExpression) {
	g.write("[")
	for i, el := range n.Elements {
		if i > 0 {
			g.write(", ")
		}
		switch e := el.(type) {
		case ast.Raw:
			g.write(string(e))
		case ast.TemplateChildNode:
			g.genChild(e)
		case ast.JSChildNode:
			g.genNode(e)
		default:
			g.fail("unhandled array element %T", el)
		}
	}
	g.write("]")
}

var pathRE = regexp.MustCompile(`^[A-Za-z$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)

var jsLiterals = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true,
	"this": true, "NaN": true, "Infinity": true,
}

func (g *generator) genExpression(n *ast.SimpleExpressionNode) {
	if n.IsStatic {
		g.write(jsString(n.Content))
		return
	}
	if g.opts.Mode == ModeModule && pathRE.MatchString(n.Content) {
		head, _, _ := strings.Cut(n.Content, ".")
		if !jsLiterals[head] {
			g.write("_ctx." + n.Content)
			return
		}
	}
	g.write(n.Content)
}

func asJS(exp ast.ExpressionNode) ast.JSChildNode {
	if s, ok := exp.(*ast.SimpleExpressionNode); ok {
		return s
	}
	return nil
}

// jsString quotes s as a JavaScript string literal
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
