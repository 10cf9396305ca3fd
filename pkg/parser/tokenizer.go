package parser

import (
	"errors"
	"strings"

	"github.com/sandrolain/golambda/pkg/literal"
	"github.com/sandrolain/golambda/pkg/types"
)

// Tokenizer splits a lambda expression into tokens.
//
// It is a single pass cursor over the input: every call to Next consumes one
// token. To tokenize an expression again, create a new Tokenizer.
type Tokenizer struct {
	input  string
	offset int   // length of the stripped '@' prefix
	pos    int   // cursor into input
	first  bool  // no token produced yet
	err    error // first error encountered
}

// NewTokenizer creates a tokenizer for expression. A leading '@' is
// stripped; positions reported by tokens still refer to expression.
func NewTokenizer(expression string) *Tokenizer {
	t := &Tokenizer{input: expression, first: true}
	if strings.HasPrefix(expression, "@") {
		t.input = expression[1:]
		t.offset = 1
	}
	return t
}

// Next returns the next token. Once the input is exhausted, or after an
// error, Next returns TokenEOF for all subsequent calls.
func (t *Tokenizer) Next() Token {
	if t.err != nil {
		return t.eof()
	}
	for t.pos < len(t.input) && isWhitespace(t.input[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.input) {
		return t.eof()
	}

	first := t.first
	t.first = false
	start := t.pos
	ch := t.input[t.pos]

	switch {
	case isOperator(ch):
		t.pos++
		return t.token(TokenOperator, t.input[start:t.pos], start)
	case ch == '@' && first && !t.quoteAt(t.pos+1):
		t.pos++
		return t.token(TokenReference, "@", start)
	case ch == '"':
		return t.readLiteral(literal.ReadSingleLine, "", start)
	case ch == '@' && t.quoteAt(t.pos+1):
		return t.readLiteral(literal.ReadMultiLine, "", start)
	}
	return t.readText(start)
}

// Err returns the first error encountered during tokenizing, if any.
func (t *Tokenizer) Err() error {
	return t.err
}

// Tokenize returns every token of expression.
func Tokenize(expression string) ([]Token, error) {
	t := NewTokenizer(expression)
	var tokens []Token
	for {
		tok := t.Next()
		switch tok.Type {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return tokens, t.Err()
		}
		tokens = append(tokens, tok)
	}
}

// readText accumulates characters up to the next operator. A lone '='
// directly followed by a literal takes the literal as its operand, so
// ="/re/" and =@"..." stay one token.
func (t *Tokenizer) readText(start int) Token {
	for t.pos < len(t.input) && !isOperator(t.input[t.pos]) {
		if t.pos == start+1 && t.input[start] == '=' {
			switch {
			case t.input[t.pos] == '"':
				return t.readLiteral(literal.ReadSingleLine, "=", start)
			case t.input[t.pos] == '@' && t.quoteAt(t.pos+1):
				return t.readLiteral(literal.ReadMultiLine, "=", start)
			}
		}
		t.pos++
	}
	value := strings.TrimRight(t.input[start:t.pos], " \r\n\t")
	return t.token(TokenText, value, start)
}

type literalReader func(input string, pos int) (string, int, error)

func (t *Tokenizer) readLiteral(read literalReader, prefix string, start int) Token {
	value, next, err := read(t.input, t.pos)
	if err != nil {
		return t.error(err, start)
	}
	t.pos = next
	if prefix != "" {
		// ="..." is a value token whose operand happened to be quoted.
		return t.token(TokenText, prefix+value, start)
	}
	return t.token(TokenString, value, start)
}

func (t *Tokenizer) quoteAt(pos int) bool {
	return pos < len(t.input) && t.input[pos] == '"'
}

func (t *Tokenizer) token(tt TokenType, value string, start int) Token {
	return Token{Type: tt, Value: value, Position: start + t.offset}
}

func (t *Tokenizer) eof() Token {
	return Token{Type: TokenEOF, Position: t.pos + t.offset}
}

func (t *Tokenizer) error(err error, start int) Token {
	var e *types.Error
	if errors.As(err, &e) && e.Position >= 0 {
		e.Position += t.offset
	}
	t.err = err
	return Token{Type: TokenError, Value: t.input[start:], Position: start + t.offset}
}
