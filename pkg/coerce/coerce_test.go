package coerce_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

func TestParseScalar(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	tests := []struct {
		typeName string
		in       string
		want     any
	}{
		{"string", " kept ", " kept "},
		{"int", "5", 5},
		{"int", " -7 ", -7},
		{"long", "9000000000", int64(9000000000)},
		{"short", "12", int16(12)},
		{"sbyte", "-3", int8(-3)},
		{"uint", "4", uint(4)},
		{"ulong", "18446744073709551615", uint64(18446744073709551615)},
		{"ushort", "65535", uint16(65535)},
		{"byte", "255", uint8(255)},
		{"char", "x", 'x'},
		{"float", "1.5", float32(1.5)},
		{"double", "2.25", 2.25},
		{"bool", "true", true},
		{"time", "90s", 90 * time.Second},
		{"guid", id.String(), id},
		{"blob", "AQI=", []byte{1, 2}},
		{"path", "0-1", node.Path{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.typeName+"/"+tt.in, func(t *testing.T) {
			got, err := coerce.ParseScalar(tt.in, tt.typeName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScalarSpecial(t *testing.T) {
	d, err := coerce.ParseScalar("1.10", "decimal")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.1").Equal(d.(decimal.Decimal)))

	b, err := coerce.ParseScalar("123456789012345678901234567890", "bigint")
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.Equal(t, 0, want.Cmp(b.(*big.Int)))

	date, err := coerce.ParseScalar("2015-01-22T23:59:59", "date")
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 1, 22, 23, 59, 59, 0, time.UTC).Equal(date.(time.Time)))
}

func TestParseScalarErrors(t *testing.T) {
	tests := []struct {
		typeName string
		in       string
		code     types.ErrorCode
	}{
		{"int", "abc", types.ErrConversion},
		{"byte", "256", types.ErrConversion},
		{"char", "xy", types.ErrConversion},
		{"bool", "maybe", types.ErrConversion},
		{"guid", "not-a-guid", types.ErrConversion},
		{"bigint", "1.5", types.ErrConversion},
		{"nosuch", "1", types.ErrUnknownTarget},
	}
	for _, tt := range tests {
		t.Run(tt.typeName+"/"+tt.in, func(t *testing.T) {
			_, err := coerce.ParseScalar(tt.in, tt.typeName)
			assert.True(t, types.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestFormatScalar(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{42, "42"},
		{int64(-1), "-1"},
		{uint8(7), "7"},
		{'x', "x"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{time.Date(2015, 1, 22, 23, 59, 59, 0, time.UTC), "2015-01-22T23:59:59"},
		{[]byte{1, 2}, "AQI="},
		{decimal.RequireFromString("3.14"), "3.14"},
		{node.Path{1, 0}, "1-0"},
		{time.Minute, "1m0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerce.FormatScalar(tt.in), "%T", tt.in)
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "int", coerce.TypeName(1))
	assert.Equal(t, "long", coerce.TypeName(int64(1)))
	assert.Equal(t, "char", coerce.TypeName('a'))
	assert.Equal(t, "date", coerce.TypeName(time.Now()))
	assert.Equal(t, "node", coerce.TypeName(node.New("", nil)))
	assert.Equal(t, "", coerce.TypeName(struct{}{}))
}

func TestCoerceNumeric(t *testing.T) {
	c := coerce.New()
	tests := []struct {
		in       any
		typeName string
		want     any
	}{
		{5, "long", int64(5)},
		{int64(5), "int", 5},
		{uint8(200), "short", int16(200)},
		{2.0, "int", 2},
		{3, "double", 3.0},
		{3, "decimal", decimal.NewFromInt(3)},
		{"12", "int", 12},
		{7, "string", "7"},
		{"x", "string", "x"},
	}
	for _, tt := range tests {
		got, err := c.Coerce(tt.in, tt.typeName)
		require.NoError(t, err, "%v -> %s", tt.in, tt.typeName)
		if d, ok := tt.want.(decimal.Decimal); ok {
			assert.True(t, d.Equal(got.(decimal.Decimal)))
			continue
		}
		assert.Equal(t, tt.want, got, "%v -> %s", tt.in, tt.typeName)
	}
}

func TestCoerceNumericErrors(t *testing.T) {
	c := coerce.New()
	for _, tt := range []struct {
		in       any
		typeName string
	}{
		{2.5, "int"},
		{300, "byte"},
		{-1, "uint"},
		{int64(1) << 40, "short"},
	} {
		_, err := c.Coerce(tt.in, tt.typeName)
		assert.Error(t, err, "%v -> %s", tt.in, tt.typeName)
	}
}

func TestCoerceNil(t *testing.T) {
	v, err := coerce.New().Coerce(nil, "int")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNodeToString(t *testing.T) {
	c := hyperlambda.NewCoercer()
	root := node.New("root", nil).Add("foo", 5)
	s, err := c.ToString(root)
	require.NoError(t, err)
	assert.Equal(t, "root\r\n  foo:int:5", s)

	s, err = coerce.New().ToString(root)
	require.NoError(t, err)
	assert.Equal(t, "Name=root, Count=1", s)
}

func TestStringToNode(t *testing.T) {
	c := hyperlambda.NewCoercer()
	v, err := c.Coerce("root\r\n  foo:int:5", "node")
	require.NoError(t, err)
	root, ok := v.(*node.Node)
	require.True(t, ok)
	require.Equal(t, 1, root.Len())
	assert.Equal(t, "root", root.Child(0).Name)
	assert.Equal(t, 5, root.Child(0).Child(0).Value)

	_, err = coerce.New().Coerce("x", "node")
	assert.True(t, types.HasCode(err, types.ErrUnknownTarget))
}

func TestDateRoundTrip(t *testing.T) {
	c := hyperlambda.NewCoercer()
	when := time.Date(2015, 1, 22, 23, 59, 59, 0, time.UTC)
	s, err := c.ToString(when)
	require.NoError(t, err)
	back, err := c.Coerce(s, "date")
	require.NoError(t, err)
	assert.True(t, when.Equal(back.(time.Time)))
}

func TestEqual(t *testing.T) {
	now := time.Now()
	tests := []struct {
		a, b any
		want bool
	}{
		{nil, nil, true},
		{nil, 0, false},
		{5, 5, true},
		{5, int64(5), false},
		{"5", 5, false},
		{"a", "a", true},
		{[]byte{1}, []byte{1}, true},
		{[]byte{1}, []byte{2}, false},
		{decimal.RequireFromString("1.0"), decimal.RequireFromString("1"), true},
		{now, now.In(time.UTC), true},
		{node.Path{1}, node.Path{1}, true},
		{big.NewInt(3), big.NewInt(3), true},
		{[]int{1}, []int{1}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, coerce.Equal(tt.a, tt.b), "%v == %v", tt.a, tt.b)
	}
}

func TestTo(t *testing.T) {
	c := hyperlambda.NewCoercer()

	i, err := coerce.To[int](c, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	s, err := coerce.To[string](c, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", s)

	z, err := coerce.To[int](c, nil)
	require.NoError(t, err)
	assert.Zero(t, z)

	n, err := coerce.To[*node.Node](c, "a:b")
	require.NoError(t, err)
	assert.Equal(t, "a", n.Child(0).Name)

	_, err = coerce.To[struct{}](c, 1)
	assert.True(t, types.HasCode(err, types.ErrUnknownTarget))
}
