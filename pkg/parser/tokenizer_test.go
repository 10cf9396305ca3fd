package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/golambda/pkg/parser"
	"github.com/sandrolain/golambda/pkg/types"
)

type tok struct {
	typ   parser.TokenType
	value string
}

func tokens(t *testing.T, expression string) []tok {
	t.Helper()
	list, err := parser.Tokenize(expression)
	require.NoError(t, err)
	out := make([]tok, len(list))
	for i, tk := range list {
		out[i] = tok{tk.Type, tk.Value}
	}
	return out
}

func TestTokenize(t *testing.T) {
	op := func(s string) tok { return tok{parser.TokenOperator, s} }
	text := func(s string) tok { return tok{parser.TokenText, s} }
	str := func(s string) tok { return tok{parser.TokenString, s} }

	tests := []struct {
		name string
		expr string
		want []tok
	}{
		{"simple", "@/*/?name", []tok{op("/"), text("*"), op("/"), op("?"), text("name")}},
		{"reference", "@@/0/?value", []tok{{parser.TokenReference, "@"}, op("/"), text("0"), op("/"), op("?"), text("value")}},
		{"quoted name", `@/"a/b"/?node`, []tok{op("/"), str("a/b"), op("/"), op("?"), text("node")}},
		{"escapes", `@/"a\"b\tc"/?node`, []tok{op("/"), str("a\"b\tc"), op("/"), op("?"), text("node")}},
		{"quoted value", `@/*/="x y"/?node`, []tok{op("/"), text("*"), op("/"), text("=x y"), op("/"), op("?"), text("node")}},
		{"quoted regex value", `@/*/="/a|b/"/?node`, []tok{op("/"), text("*"), op("/"), text("=/a|b/"), op("/"), op("?"), text("node")}},
		{"multi-line", "@/@\"a\nb\"/?name", []tok{op("/"), str("a\r\nb"), op("/"), op("?"), text("name")}},
		{"multi-line value", "@/=@\"a\"\"b\"/?name", []tok{op("/"), text(`=a"b`), op("/"), op("?"), text("name")}},
		{"whitespace", "@/ foo \n/?name", []tok{op("/"), text("foo"), op("/"), op("?"), text("name")}},
		{"logicals", "@/a/|/b/&/c/^/d/!/e", []tok{
			op("/"), text("a"), op("/"), op("|"), op("/"), text("b"), op("/"), op("&"),
			op("/"), text("c"), op("/"), op("^"), op("/"), text("d"), op("/"), op("!"), op("/"), text("e"),
		}},
		{"groups", "@/(/a/)?count", []tok{op("/"), op("("), op("/"), text("a"), op("/"), op(")"), op("?"), text("count")}},
		{"sub-group reference", "@/(@/a)", []tok{op("/"), op("("), text("@"), op("/"), text("a"), op(")")}},
		{"range and modulo", "@/*/[1,3]/%2", []tok{op("/"), text("*"), op("/"), text("[1,3]"), op("/"), text("%2")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokens(t, tt.expr))
		})
	}
}

func TestTokenPositions(t *testing.T) {
	list, err := parser.Tokenize("@/*/?name")
	require.NoError(t, err)
	positions := make([]int, len(list))
	for i, tk := range list {
		positions[i] = tk.Position
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, positions)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		code types.ErrorCode
		pos  int
	}{
		{"unclosed string", `@/"abc`, types.ErrStringNotClosed, 2},
		{"unclosed multi-line", `@/@"abc`, types.ErrStringNotClosed, 2},
		{"newline in string", "@/\"a\nb\"", types.ErrNewlineInString, 4},
		{"bad escape", `@/"a\qb"`, types.ErrUnsupportedEscape, 4},
		{"lone carriage return escape", `@/"a\rb"`, types.ErrBadCarriageReturn, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Tokenize(tt.expr)
			require.Error(t, err)
			var e *types.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.code, e.Code)
			assert.Equal(t, tt.pos, e.Position)
		})
	}
}

func TestTokenizerStopsAfterError(t *testing.T) {
	tz := parser.NewTokenizer(`@/"abc`)
	assert.Equal(t, parser.TokenOperator, tz.Next().Type)
	assert.Equal(t, parser.TokenError, tz.Next().Type)
	assert.Equal(t, parser.TokenEOF, tz.Next().Type)
	assert.Error(t, tz.Err())
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "(eof)", parser.TokenEOF.String())
	assert.Equal(t, "(text)", parser.TokenText.String())
	assert.Equal(t, "(string)", parser.TokenString.String())
	assert.Equal(t, "(unknown)", parser.TokenType(99).String())
}

func TestTokenIs(t *testing.T) {
	list, err := parser.Tokenize(`@/"/"/?node`)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.True(t, list[0].Is("/"))
	assert.False(t, list[1].Is("/"), "quoted slash is not an operator")
	assert.True(t, list[1].Quoted())
}
