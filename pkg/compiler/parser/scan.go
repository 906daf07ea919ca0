package parser

import (
	"fmt"
	"unicode"
)

func (p *Parser) peek(s string) bool {
	if p.pos+len(s) > len(p.input) {
		return false
	}
	return p.input[p.pos:p.pos+len(s)] == s
}

func (p *Parser) consume(s string) bool {
	if p.peek(s) {
		for i := 0; i < len(s); i++ {
			p.advance()
		}
		return true
	}
	return false
}

func (p *Parser) advance() {
	if p.pos < len(p.input) {
		if p.input[p.pos] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
		p.pos++
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.advance()
	}
}

func (p *Parser) parseUntil(delimiter string) string {
	start := p.pos

	for p.pos < len(p.input) {
		if p.peek(delimiter) {
			return p.input[start:p.pos]
		}
		p.advance()
	}

	return p.input[start:p.pos]
}

func (p *Parser) parseTagName() string {
	start := p.pos

	// Parse tag name (letters, digits, hyphens)
	for p.pos < len(p.input) {
		ch := rune(p.input[p.pos])
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '-' {
			break
		}
		p.advance()
	}

	return p.input[start:p.pos]
}

// parseAttributeName reads up to whitespace, '=', '>' or "/>"; directive
// names need ':', '@', '.' and brackets to pass through.
func (p *Parser) parseAttributeName() string {
	start := p.pos

	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if unicode.IsSpace(rune(ch)) || ch == '=' || ch == '>' || ch == '"' || ch == '\'' || ch == '<' || p.peek("/>") {
			break
		}
		p.advance()
	}

	return p.input[start:p.pos]
}

func (p *Parser) error(msg string) error {
	return fmt.Errorf("%s:%d:%d: %s", p.filename, p.line, p.col, msg)
}
