package hyperlambda

import (
	"fmt"
	"strings"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/literal"
	"github.com/sandrolain/golambda/pkg/node"
)

// Format renders n and its descendants as hyperlambda with CRLF line
// separators. A nameless, valueless node renders only its children, so
// Format(Parse(text)) reproduces text.
func Format(n *node.Node) (string, error) {
	var lines []string
	var err error
	if n.Name == "" && n.Value == nil {
		for _, c := range n.Children() {
			if lines, err = appendNode(lines, c, 0); err != nil {
				return "", err
			}
		}
	} else if lines, err = appendNode(lines, n, 0); err != nil {
		return "", err
	}
	return strings.Join(lines, literal.CRLF), nil
}

func appendNode(lines []string, n *node.Node, depth int) ([]string, error) {
	value, err := formatValue(n.Value)
	if err != nil {
		return nil, err
	}
	name := formatName(n.Name)
	if name == "" && value == "" {
		name = `""`
	}
	lines = append(lines, strings.Repeat("  ", depth)+name+value)
	for _, c := range n.Children() {
		if lines, err = appendNode(lines, c, depth+1); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func formatName(name string) string {
	if needsQuotes(name) || strings.HasPrefix(name, "//") {
		return literal.Quote(name)
	}
	return name
}

func formatValue(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		if needsQuotes(tv) {
			return ":" + literal.Quote(tv), nil
		}
		return ":" + tv, nil
	case *node.Node:
		inner, err := Format(tv)
		if err != nil {
			return "", err
		}
		return ":node:" + literal.Quote(inner), nil
	}
	typeName := coerce.TypeName(v)
	if typeName == "" {
		return "", fmt.Errorf("hyperlambda: cannot format value of type %T", v)
	}
	s := coerce.FormatScalar(v)
	if strings.ContainsAny(s, "\r\n") || strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `@"`) {
		s = literal.Quote(s)
	}
	return ":" + typeName + ":" + s, nil
}

func needsQuotes(s string) bool {
	if s == "" {
		return false
	}
	return strings.ContainsAny(s, ":\r\n") ||
		strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `@"`) ||
		strings.TrimSpace(s) != s
}

// Codec implements coerce.NodeCodec with hyperlambda.
type Codec struct{}

// Parse implements coerce.NodeCodec.
func (Codec) Parse(text string) (*node.Node, error) {
	return Parse(text)
}

// Format implements coerce.NodeCodec.
func (Codec) Format(n *node.Node) (string, error) {
	return Format(n)
}

// NewCoercer returns the default coercer, with hyperlambda as node codec.
func NewCoercer() *coerce.Converter {
	return coerce.New(coerce.WithNodeCodec(Codec{}))
}
