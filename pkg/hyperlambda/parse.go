// Package hyperlambda reads and writes node trees in hyperlambda, an
// indentation based text format:
//
//	_data
//	  name:Thomas
//	  age:int:44
//	  bio:@"multi
//	line"
//
// Each line is "name", "name:value" or "name:type:value"; two spaces of
// indentation make a node the child of the line above. Names and values may
// be quoted with the literal package's single-line or multi-line forms.
package hyperlambda

import (
	"fmt"
	"strings"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/literal"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// Parse parses text into a nameless root node whose children are the
// top-level nodes of the text.
func Parse(text string) (*node.Node, error) {
	p := &parser{input: text}
	return p.parse()
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() (*node.Node, error) {
	root := node.New("", nil)
	stack := []*node.Node{root}
	for p.pos < len(p.input) {
		lineStart := p.pos
		indent := 0
		for p.pos < len(p.input) && p.input[p.pos] == ' ' {
			indent++
			p.pos++
		}
		if p.atLineEnd() {
			p.skipLineEnd()
			continue
		}
		if strings.HasPrefix(p.input[p.pos:], "//") {
			p.skipToLineEnd()
			p.skipLineEnd()
			continue
		}
		if indent%2 != 0 {
			return nil, p.errorf(lineStart, "odd indentation of %d spaces", indent)
		}
		depth := indent / 2
		if depth > len(stack)-1 {
			return nil, p.errorf(lineStart, "indentation skips a level")
		}
		n, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		stack = stack[:depth+1]
		stack[depth].Append(n)
		stack = append(stack, n)
		if !p.atLineEnd() {
			return nil, p.errorf(p.pos, "unexpected content after value")
		}
		p.skipLineEnd()
	}
	return root, nil
}

func (p *parser) parseLine() (*node.Node, error) {
	name, _, err := p.readPart(true)
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ':' {
		return node.New(name, nil), nil
	}
	p.pos++ // ':'
	first, quoted, err := p.readPart(true)
	if err != nil {
		return nil, err
	}
	if quoted || p.pos >= len(p.input) || p.input[p.pos] != ':' {
		return node.New(name, first), nil
	}
	p.pos++ // ':'
	typeName := first
	raw, _, err := p.readPart(false)
	if err != nil {
		return nil, err
	}
	value, err := p.typed(raw, typeName)
	if err != nil {
		return nil, err
	}
	return node.New(name, value), nil
}

func (p *parser) typed(raw, typeName string) (any, error) {
	switch typeName {
	case "string":
		return raw, nil
	case "node":
		inner, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if inner.Len() == 1 {
			return inner.FirstChild().UnTie(), nil
		}
		return inner, nil
	default:
		return coerce.ParseScalar(raw, typeName)
	}
}

// readPart reads a quoted literal or raw text. Raw text ends at the end of
// the line, or at ':' when stopAtColon is set.
func (p *parser) readPart(stopAtColon bool) (string, bool, error) {
	rest := p.input[p.pos:]
	switch {
	case strings.HasPrefix(rest, `"`):
		s, next, err := literal.ReadSingleLine(p.input, p.pos)
		p.pos = next
		return s, true, err
	case strings.HasPrefix(rest, `@"`):
		s, next, err := literal.ReadMultiLine(p.input, p.pos)
		p.pos = next
		return s, true, err
	}
	start := p.pos
	for p.pos < len(p.input) && !p.atLineEnd() {
		if p.input[p.pos] == ':' && stopAtColon {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos], false, nil
}

func (p *parser) atLineEnd() bool {
	if p.pos >= len(p.input) {
		return true
	}
	return p.input[p.pos] == '\n' || p.input[p.pos] == '\r'
}

func (p *parser) skipLineEnd() {
	if p.pos < len(p.input) && p.input[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.input) && p.input[p.pos] == '\n' {
		p.pos++
	}
}

func (p *parser) skipToLineEnd() {
	for !p.atLineEnd() {
		p.pos++
	}
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return types.NewError(types.ErrConversion, "hyperlambda: "+fmt.Sprintf(format, args...), pos)
}
