package coerce

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// Equal reports whether a and b hold the same value of the same type.
// Values of different Go types are never equal: int 5 is not int64 5.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case []byte:
		tb, ok := b.([]byte)
		return ok && bytes.Equal(ta, tb)
	case decimal.Decimal:
		tb, ok := b.(decimal.Decimal)
		return ok && ta.Equal(tb)
	case *big.Int:
		tb, ok := b.(*big.Int)
		return ok && ta != nil && tb != nil && ta.Cmp(tb) == 0
	case time.Time:
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	case node.Path:
		tb, ok := b.(node.Path)
		return ok && ta.Equal(tb)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// To converts v to T through c. Values already of type T pass through; nil
// yields T's zero value.
func To[T any](c Coercer, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	target := TypeName(any(zero))
	if target == "" {
		return zero, types.NewError(types.ErrUnknownTarget,
			fmt.Sprintf("no conversion to %T", zero), -1)
	}
	out, err := c.Coerce(v, target)
	if err != nil {
		return zero, err
	}
	t, ok := out.(T)
	if !ok {
		return zero, types.NewError(types.ErrConversion,
			fmt.Sprintf("cannot convert %T to %T", v, zero), -1)
	}
	return t, nil
}
