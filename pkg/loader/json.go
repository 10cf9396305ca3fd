package loader

import (
	"github.com/valyala/fastjson"

	"github.com/sandrolain/golambda/pkg/node"
)

var parsers fastjson.ParserPool

// FromJSON parses a JSON document. Integral numbers become int values,
// other numbers float64.
func FromJSON(data []byte) (*node.Node, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, loadError(FormatJSON, err)
	}
	root := node.New("", nil)
	fillJSON(root, v)
	return root, nil
}

// fillJSON stores v into n: containers as children, scalars as value.
func fillJSON(n *node.Node, v *fastjson.Value) {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		o.Visit(func(key []byte, child *fastjson.Value) {
			c := node.New(string(key), nil)
			fillJSON(c, child)
			n.Append(c)
		})
	case fastjson.TypeArray:
		items, _ := v.Array()
		for _, item := range items {
			c := node.New("", nil)
			fillJSON(c, item)
			n.Append(c)
		}
	default:
		n.Value = jsonScalar(v)
	}
}

func jsonScalar(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if i, err := v.Int(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}
