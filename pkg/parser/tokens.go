package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	TokenOperator  // / | & ^ ! ( ) ?
	TokenReference // leading @ of a reference expression
	TokenText      // any other run of characters, right-trimmed
	TokenString    // "..." or @"..." contents
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenOperator:
		return "(operator)"
	case TokenReference:
		return "(reference)"
	case TokenText:
		return "(text)"
	case TokenString:
		return "(string)"
	default:
		return "(unknown)"
	}
}

// Token is a single lexical token. Value holds the token text; for
// TokenString it holds the unescaped literal contents.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// Quoted reports whether the token came from a string literal.
func (t Token) Quoted() bool {
	return t.Type == TokenString
}

// Is reports whether t is the unquoted token s.
func (t Token) Is(s string) bool {
	return t.Type != TokenString && t.Type != TokenError && t.Value == s
}

// isOperator reports whether ch always forms a token of its own.
func isOperator(ch byte) bool {
	switch ch {
	case '/', '|', '&', '^', '!', '(', ')', '?':
		return true
	default:
		return false
	}
}

func isWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\r', '\n', '\t':
		return true
	default:
		return false
	}
}
