package main

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/node"
)

// marshalValues renders match values as a JSON array. Nodes become
// {"name", "value", "children"} objects, paths become index arrays and
// values without a JSON counterpart use their canonical string form.
func marshalValues(c coerce.Coercer, values []any) ([]byte, error) {
	var a fastjson.Arena
	arr := a.NewArray()
	for i, v := range values {
		jv, err := jsonValue(&a, c, v)
		if err != nil {
			return nil, err
		}
		arr.SetArrayItem(i, jv)
	}
	return arr.MarshalTo(nil), nil
}

func jsonValue(a *fastjson.Arena, c coerce.Coercer, v any) (*fastjson.Value, error) {
	switch tv := v.(type) {
	case nil:
		return a.NewNull(), nil
	case bool:
		if tv {
			return a.NewTrue(), nil
		}
		return a.NewFalse(), nil
	case string:
		return a.NewString(tv), nil
	case int:
		return a.NewNumberInt(tv), nil
	case float64:
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return a.NewString(coerce.FormatScalar(tv)), nil
		}
		return a.NewNumberFloat64(tv), nil
	case int64, int16, int8, uint, uint64, uint16, uint8, float32:
		return a.NewNumberString(coerce.FormatScalar(tv)), nil
	case decimal.Decimal:
		return a.NewNumberString(tv.String()), nil
	case time.Time:
		return a.NewString(tv.Format(time.RFC3339Nano)), nil
	case node.Path:
		arr := a.NewArray()
		for i, idx := range tv {
			arr.SetArrayItem(i, a.NewNumberInt(idx))
		}
		return arr, nil
	case *node.Node:
		return jsonNode(a, c, tv)
	}
	s, err := c.ToString(v)
	if err != nil {
		return nil, err
	}
	return a.NewString(s), nil
}

func jsonNode(a *fastjson.Arena, c coerce.Coercer, n *node.Node) (*fastjson.Value, error) {
	obj := a.NewObject()
	obj.Set("name", a.NewString(n.Name))
	value, err := jsonValue(a, c, n.Value)
	if err != nil {
		return nil, err
	}
	obj.Set("value", value)
	if n.Len() > 0 {
		children := a.NewArray()
		for i, child := range n.Children() {
			cv, err := jsonNode(a, c, child)
			if err != nil {
				return nil, err
			}
			children.SetArrayItem(i, cv)
		}
		obj.Set("children", children)
	}
	return obj, nil
}

func countNodes(n *node.Node) int {
	count := 0
	n.Walk(func(*node.Node) { count++ })
	return count
}
