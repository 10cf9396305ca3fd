package coerce

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// DateLayout is the canonical string form of dates.
const DateLayout = "2006-01-02T15:04:05.999999999"

// TypeName returns the type name of v as used in ":type:" prefixes and
// converters, or "" if v has no name.
func TypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case int64:
		return "long"
	case int16:
		return "short"
	case int8:
		return "sbyte"
	case rune:
		return "char"
	case uint:
		return "uint"
	case uint64:
		return "ulong"
	case uint16:
		return "ushort"
	case uint8:
		return "byte"
	case float32:
		return "float"
	case float64:
		return "double"
	case decimal.Decimal:
		return "decimal"
	case bool:
		return "bool"
	case time.Time:
		return "date"
	case time.Duration:
		return "time"
	case uuid.UUID:
		return "guid"
	case []byte:
		return "blob"
	case *node.Node:
		return "node"
	case node.Path:
		return "path"
	case *big.Int:
		return "bigint"
	default:
		return ""
	}
}

// FormatScalar renders a non-node value in its canonical string form.
func FormatScalar(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case int:
		return strconv.Itoa(tv)
	case int64:
		return strconv.FormatInt(tv, 10)
	case int16:
		return strconv.FormatInt(int64(tv), 10)
	case int8:
		return strconv.FormatInt(int64(tv), 10)
	case rune:
		return string(tv)
	case uint:
		return strconv.FormatUint(uint64(tv), 10)
	case uint64:
		return strconv.FormatUint(tv, 10)
	case uint16:
		return strconv.FormatUint(uint64(tv), 10)
	case uint8:
		return strconv.FormatUint(uint64(tv), 10)
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case time.Time:
		return tv.Format(DateLayout)
	case []byte:
		return base64.StdEncoding.EncodeToString(tv)
	case fmt.Stringer:
		// decimal.Decimal, uuid.UUID, time.Duration, node.Path, *big.Int
		return tv.String()
	default:
		return fmt.Sprint(v)
	}
}

// ParseScalar parses s as the type named by typeName. "node" is not a
// scalar type and is handled by Converter.
func ParseScalar(s, typeName string) (any, error) {
	trimmed := strings.TrimSpace(s)
	var (
		out any
		err error
	)
	switch typeName {
	case "string":
		return s, nil
	case "int":
		out, err = strconv.Atoi(trimmed)
	case "long":
		out, err = strconv.ParseInt(trimmed, 10, 64)
	case "short":
		var i int64
		i, err = strconv.ParseInt(trimmed, 10, 16)
		out = int16(i)
	case "sbyte":
		var i int64
		i, err = strconv.ParseInt(trimmed, 10, 8)
		out = int8(i)
	case "uint":
		var u uint64
		u, err = strconv.ParseUint(trimmed, 10, strconv.IntSize)
		out = uint(u)
	case "ulong":
		out, err = strconv.ParseUint(trimmed, 10, 64)
	case "ushort":
		var u uint64
		u, err = strconv.ParseUint(trimmed, 10, 16)
		out = uint16(u)
	case "byte":
		var u uint64
		u, err = strconv.ParseUint(trimmed, 10, 8)
		out = uint8(u)
	case "char":
		if utf8.RuneCountInString(s) != 1 {
			err = fmt.Errorf("%q is not a single character", s)
			break
		}
		r, _ := utf8.DecodeRuneInString(s)
		out = r
	case "float":
		var f float64
		f, err = strconv.ParseFloat(trimmed, 32)
		out = float32(f)
	case "double":
		out, err = strconv.ParseFloat(trimmed, 64)
	case "decimal":
		out, err = decimal.NewFromString(trimmed)
	case "bool":
		out, err = strconv.ParseBool(trimmed)
	case "date":
		out, err = dateparse.ParseIn(trimmed, time.UTC)
	case "time":
		out, err = time.ParseDuration(trimmed)
	case "guid":
		out, err = uuid.Parse(trimmed)
	case "blob":
		out, err = base64.StdEncoding.DecodeString(trimmed)
	case "path":
		out, err = node.ParsePath(trimmed)
	case "bigint":
		b, ok := new(big.Int).SetString(trimmed, 10)
		if !ok {
			err = fmt.Errorf("%q is not an integer", s)
		}
		out = b
	default:
		return nil, types.NewError(types.ErrUnknownTarget,
			fmt.Sprintf("unknown type %q", typeName), -1)
	}
	if err != nil {
		return nil, conversionError(s, typeName, err)
	}
	return out, nil
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch tv := v.(type) {
	case int:
		return decimal.NewFromInt(int64(tv)), true
	case int64:
		return decimal.NewFromInt(tv), true
	case int16:
		return decimal.NewFromInt(int64(tv)), true
	case int8:
		return decimal.NewFromInt(int64(tv)), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(tv)), 0), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(tv), 0), true
	case uint16:
		return decimal.NewFromInt(int64(tv)), true
	case uint8:
		return decimal.NewFromInt(int64(tv)), true
	case float32:
		return decimal.NewFromFloat32(tv), true
	case float64:
		return decimal.NewFromFloat(tv), true
	case decimal.Decimal:
		return tv, true
	case *big.Int:
		if tv == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromBigInt(tv, 0), true
	default:
		return decimal.Zero, false
	}
}

// convertNumeric converts between numeric types without a string round
// trip. ok is false when either side is not numeric.
func convertNumeric(value any, typeName string) (out any, ok bool, err error) {
	d, isNum := toDecimal(value)
	if !isNum {
		return nil, false, nil
	}
	switch typeName {
	case "float":
		f, _ := d.Float64()
		return float32(f), true, nil
	case "double":
		f, _ := d.Float64()
		return f, true, nil
	case "decimal":
		return d, true, nil
	case "bigint":
		if !d.IsInteger() {
			return nil, true, fmt.Errorf("%s is not an integer", d)
		}
		return d.BigInt(), true, nil
	}
	bits, signed, isInt := intTarget(typeName)
	if !isInt {
		return nil, false, nil
	}
	if !d.IsInteger() {
		return nil, true, fmt.Errorf("%s is not an integer", d)
	}
	b := d.BigInt()
	if signed {
		if !b.IsInt64() {
			return nil, true, fmt.Errorf("%s overflows %s", d, typeName)
		}
		i := b.Int64()
		if bits < 64 && (i < -(1<<(bits-1)) || i > 1<<(bits-1)-1) {
			return nil, true, fmt.Errorf("%s overflows %s", d, typeName)
		}
		switch typeName {
		case "int":
			return int(i), true, nil
		case "long":
			return i, true, nil
		case "short":
			return int16(i), true, nil
		case "sbyte":
			return int8(i), true, nil
		default:
			return rune(i), true, nil
		}
	}
	if b.Sign() < 0 || !b.IsUint64() {
		return nil, true, fmt.Errorf("%s overflows %s", d, typeName)
	}
	u := b.Uint64()
	if bits < 64 && u > 1<<bits-1 {
		return nil, true, fmt.Errorf("%s overflows %s", d, typeName)
	}
	switch typeName {
	case "uint":
		return uint(u), true, nil
	case "ulong":
		return u, true, nil
	case "ushort":
		return uint16(u), true, nil
	default:
		return uint8(u), true, nil
	}
}

func intTarget(typeName string) (bits int, signed bool, ok bool) {
	switch typeName {
	case "int":
		return strconv.IntSize, true, true
	case "long":
		return 64, true, true
	case "short":
		return 16, true, true
	case "sbyte":
		return 8, true, true
	case "char":
		return 32, true, true
	case "uint":
		return strconv.IntSize, false, true
	case "ulong":
		return 64, false, true
	case "ushort":
		return 16, false, true
	case "byte":
		return 8, false, true
	default:
		return 0, false, false
	}
}
