// Package parser turns template markup into the IR consumed by the transform passes.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/recera/vexc/pkg/compiler/ast"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Whitespace controls how text whitespace is kept
type Whitespace uint8

const (
	// WhitespaceCondense drops whitespace-only text between elements and
	// collapses runs of whitespace into one space
	WhitespaceCondense Whitespace = iota
	// WhitespacePreserve keeps text exactly as written
	WhitespacePreserve
)

// Options configures a parse
type Options struct {
	Whitespace Whitespace

	// IsComponent overrides component detection. By default a tag is a
	// component when it starts with an uppercase letter, contains a hyphen
	// or is the dynamic <component> tag.
	IsComponent func(tag string) bool
}

// Parser is a recursive descent parser for templates
type Parser struct {
	input    string
	pos      int
	line     int
	col      int
	filename string
	opts     Options
}

// New creates a template parser
func New(filename, input string, opts Options) *Parser {
	return &Parser{
		input:    input,
		pos:      0,
		line:     1,
		col:      1,
		filename: filename,
		opts:     opts,
	}
}

// Parse parses the whole template into a root node
func Parse(filename, input string, opts Options) (*ast.RootNode, error) {
	return New(filename, input, opts).Parse()
}

// Parse parses the entire template
func (p *Parser) Parse() (*ast.RootNode, error) {
	children, err := p.parseChildren("")
	if err != nil {
		return nil, err
	}
	return ast.NewRoot(children), nil
}

// parseChildren parses nodes until the closing tag of parent or end of input
func (p *Parser) parseChildren(parent string) ([]ast.TemplateChildNode, error) {
	var nodes []ast.TemplateChildNode

	for p.pos < len(p.input) {
		if p.peek("<!--") {
			if err := p.skipComment(); err != nil {
				return nil, err
			}
		} else if p.peek("{{") {
			node, err := p.parseInterpolation()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		} else if p.peek("</") {
			if parent == "" {
				return nil, p.error("unexpected closing tag")
			}
			break
		} else if p.peek("<") && p.pos+1 < len(p.input) && isTagStart(p.input[p.pos+1]) {
			node, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		} else {
			nodes = append(nodes, p.parseText())
		}
	}

	if p.opts.Whitespace == WhitespaceCondense {
		nodes = condense(nodes)
	}
	return nodes, nil
}

func isTagStart(c byte) bool {
	return c < unicode.MaxASCII && unicode.IsLetter(rune(c))
}

func (p *Parser) skipComment() error {
	p.consume("<!--")
	p.parseUntil("-->")
	if !p.consume("-->") {
		return p.error("unterminated comment")
	}
	return nil
}

// parseInterpolation parses {{ expression }}
func (p *Parser) parseInterpolation() (*ast.InterpolationNode, error) {
	line, col := p.line, p.col
	p.consume("{{")

	content := p.parseUntil("}}")
	if !p.consume("}}") {
		return nil, fmt.Errorf("%s:%d:%d: unterminated interpolation", p.filename, line, col)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%s:%d:%d: empty interpolation", p.filename, line, col)
	}
	return ast.NewInterpolation(content), nil
}

// parseElement parses an element, component or template grouping
func (p *Parser) parseElement() (*ast.ElementNode, error) {
	line, col := p.line, p.col
	if !p.consume("<") {
		return nil, p.error("expected <")
	}

	tag := p.parseTagName()
	if tag == "" {
		return nil, p.error("expected tag name")
	}

	props, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	el := ast.NewElement(tag, p.tagType(tag), props, nil)

	p.skipWhitespace()
	if p.consume("/>") {
		return el, nil
	}
	if !p.consume(">") {
		return nil, p.error("expected >")
	}
	if voidElements[tag] {
		return el, nil
	}

	children, err := p.parseChildren(tag)
	if err != nil {
		return nil, err
	}
	el.Children = children

	if !p.consume("</") {
		return nil, fmt.Errorf("%s:%d:%d: element <%s> is missing its closing tag", p.filename, line, col, tag)
	}
	closing := p.parseTagName()
	if closing != tag {
		return nil, p.error(fmt.Sprintf("mismatched tags: <%s> and </%s>", tag, closing))
	}
	p.skipWhitespace()
	if !p.consume(">") {
		return nil, p.error("expected >")
	}
	return el, nil
}

func (p *Parser) tagType(tag string) ast.ElementType {
	if tag == "template" {
		return ast.ElementTemplate
	}
	if p.opts.IsComponent != nil {
		if p.opts.IsComponent(tag) {
			return ast.ElementComponent
		}
		return ast.ElementPlain
	}
	if tag == "component" || strings.Contains(tag, "-") || unicode.IsUpper(rune(tag[0])) {
		return ast.ElementComponent
	}
	return ast.ElementPlain
}

// parseAttributes parses static attributes and directives
func (p *Parser) parseAttributes() ([]ast.ElementProp, error) {
	var props []ast.ElementProp

	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return nil, p.error("unterminated start tag")
		}
		if p.peek(">") || p.peek("/>") {
			break
		}

		name := p.parseAttributeName()
		if name == "" {
			return nil, p.error(fmt.Sprintf("unexpected character %q in start tag", p.input[p.pos]))
		}

		var value *string
		p.skipWhitespace()
		if p.consume("=") {
			p.skipWhitespace()
			v, err := p.parseAttributeValue()
			if err != nil {
				return nil, err
			}
			value = &v
		}

		prop, err := p.newProp(name, value)
		if err != nil {
			return nil, err
		}
		props = append(props, prop)
	}

	return props, nil
}

func (p *Parser) parseAttributeValue() (string, error) {
	for _, quote := range []string{`"`, `'`} {
		if p.consume(quote) {
			value := p.parseUntil(quote)
			if !p.consume(quote) {
				return "", p.error("unterminated attribute value")
			}
			return value, nil
		}
	}
	// unquoted value
	start := p.pos
	for p.pos < len(p.input) && !unicode.IsSpace(rune(p.input[p.pos])) && !p.peek(">") && !p.peek("/>") {
		p.advance()
	}
	if p.pos == start {
		return "", p.error("expected attribute value")
	}
	return p.input[start:p.pos], nil
}

// newProp classifies an attribute: v-name:arg.mods and the :arg and @arg
// shorthands become directives, anything else is a static attribute.
func (p *Parser) newProp(name string, value *string) (ast.ElementProp, error) {
	var dirName, rest string
	switch {
	case strings.HasPrefix(name, "v-"):
		var hasArg bool
		dirName, rest, hasArg = strings.Cut(name[2:], ":")
		if hasArg {
			rest = ":" + rest
		} else if i := strings.IndexByte(dirName, '.'); i >= 0 {
			// v-name.mod without argument
			dirName, rest = dirName[:i], dirName[i:]
		}
	case strings.HasPrefix(name, ":"):
		dirName, rest = "bind", name
	case strings.HasPrefix(name, "@"):
		dirName, rest = "on", ":"+name[1:]
	default:
		var v *ast.TextNode
		if value != nil {
			v = ast.NewText(*value)
		}
		return ast.NewAttribute(name, v), nil
	}

	if dirName == "" {
		return nil, p.error(fmt.Sprintf("invalid directive %q", name))
	}

	var arg ast.ExpressionNode
	var modifiers []string
	if rest != "" {
		argPart := rest
		if strings.HasPrefix(argPart, ":") {
			argPart = argPart[1:]
			// dynamic arguments may contain dots inside the brackets
			var mods string
			if strings.HasPrefix(argPart, "[") {
				end := strings.IndexByte(argPart, ']')
				if end < 0 {
					return nil, p.error(fmt.Sprintf("unterminated dynamic argument in %q", name))
				}
				mods = argPart[end+1:]
				arg = ast.NewSimpleExpression(argPart[1:end], false)
			} else {
				var a string
				a, mods, _ = strings.Cut(argPart, ".")
				if mods != "" {
					mods = "." + mods
				}
				if a == "" {
					return nil, p.error(fmt.Sprintf("empty directive argument in %q", name))
				}
				arg = ast.NewSimpleExpression(a, true)
			}
			argPart = mods
		}
		for _, m := range strings.Split(strings.TrimPrefix(argPart, "."), ".") {
			if m != "" {
				modifiers = append(modifiers, m)
			}
		}
	}

	var exp ast.ExpressionNode
	if value != nil && strings.TrimSpace(*value) != "" {
		exp = ast.NewSimpleExpression(strings.TrimSpace(*value), false)
	}
	return ast.NewDirective(dirName, exp, arg, modifiers), nil
}

// parseText parses plain text until the next template construct
func (p *Parser) parseText() *ast.TextNode {
	start := p.pos

	for p.pos < len(p.input) {
		if p.peek("{{") || p.peek("<!--") || p.peek("</") {
			break
		}
		if p.peek("<") && p.pos+1 < len(p.input) && isTagStart(p.input[p.pos+1]) {
			break
		}
		p.advance()
	}
	if p.pos == start {
		// lone '<' that does not open a tag
		p.advance()
	}

	return ast.NewText(p.input[start:p.pos])
}

var whitespaceRE = regexp.MustCompile(`[\t\r\n\f ]+`)

// condense merges adjacent text, drops whitespace-only text at the edges or
// between two elements on separate lines, and collapses whitespace runs.
func condense(nodes []ast.TemplateChildNode) []ast.TemplateChildNode {
	merged := make([]ast.TemplateChildNode, 0, len(nodes))
	for _, n := range nodes {
		if t, ok := n.(*ast.TextNode); ok && len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(*ast.TextNode); ok {
				merged[len(merged)-1] = ast.NewText(prev.Content + t.Content)
				continue
			}
		}
		merged = append(merged, n)
	}

	out := make([]ast.TemplateChildNode, 0, len(merged))
	for i, n := range merged {
		t, ok := n.(*ast.TextNode)
		if !ok {
			out = append(out, n)
			continue
		}
		if strings.TrimSpace(t.Content) == "" {
			if i == 0 || i == len(merged)-1 {
				continue
			}
			_, prevEl := merged[i-1].(*ast.ElementNode)
			_, nextEl := merged[i+1].(*ast.ElementNode)
			if prevEl && nextEl && strings.ContainsAny(t.Content, "\r\n") {
				continue
			}
		}
		out = append(out, ast.NewText(whitespaceRE.ReplaceAllString(t.Content, " ")))
	}
	return out
}
