// Package literal reads and writes the quoted string literals shared by
// lambda expressions and hyperlambda text.
//
// Two forms exist:
//
//	"single line\twith escapes"
//	@"multi line, ""doubled"" quotes,
//	newlines kept"
//
// Single-line literals support the escapes \" \' \\ \a \b \f \t \v, \n
// (which expands to CRLF), the four character sequence \r\n and \xHHHH.
// Multi-line literals normalise every newline to CRLF.
package literal

import (
	"strconv"
	"strings"

	"github.com/sandrolain/golambda/pkg/types"
)

// CRLF is the newline every literal normalises to.
const CRLF = "\r\n"

// ReadSingleLine reads the single-line literal whose opening quote is at
// input[pos]. It returns the unescaped contents and the offset just past the
// closing quote.
func ReadSingleLine(input string, pos int) (string, int, error) {
	start := pos
	pos++ // opening quote
	var b strings.Builder
	for {
		if pos >= len(input) {
			return "", pos, types.NewError(types.ErrStringNotClosed,
				"string literal not closed", start).WithToken(input[start:])
		}
		ch := input[pos]
		switch ch {
		case '"':
			return b.String(), pos + 1, nil
		case '\n':
			return "", pos, types.NewError(types.ErrNewlineInString,
				"newline in single-line string literal", pos).WithToken(input[start:pos])
		case '\\':
			pos++
			if pos >= len(input) {
				return "", pos, types.NewError(types.ErrStringNotClosed,
					"string literal not closed", start).WithToken(input[start:])
			}
			next, err := readEscape(input, pos, &b)
			if err != nil {
				return "", pos, err
			}
			pos = next
		default:
			b.WriteByte(ch)
			pos++
		}
	}
}

// readEscape expands the escape whose letter is at input[pos] and returns
// the offset after it.
func readEscape(input string, pos int, b *strings.Builder) (int, error) {
	switch input[pos] {
	case '"', '\'', '\\':
		b.WriteByte(input[pos])
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 't':
		b.WriteByte('\t')
	case 'v':
		b.WriteByte('\v')
	case 'n':
		b.WriteString(CRLF)
	case 'r':
		if !strings.HasPrefix(input[pos+1:], `\n`) {
			return pos, types.NewError(types.ErrBadCarriageReturn,
				`carriage return must be followed by \n`, pos-1)
		}
		b.WriteString(CRLF)
		return pos + 3, nil
	case 'x':
		if pos+5 > len(input) {
			return pos, types.NewError(types.ErrUnsupportedEscape,
				`\x escape needs four hex digits`, pos-1)
		}
		code, err := strconv.ParseUint(input[pos+1:pos+5], 16, 32)
		if err != nil {
			return pos, types.NewError(types.ErrUnsupportedEscape,
				`\x escape needs four hex digits`, pos-1).WithCause(err)
		}
		b.WriteRune(rune(code))
		return pos + 5, nil
	default:
		return pos, types.NewError(types.ErrUnsupportedEscape,
			"unsupported escape sequence \\"+string(input[pos]), pos-1)
	}
	return pos + 1, nil
}

// ReadMultiLine reads the multi-line literal whose '@' is at input[pos].
// It returns the contents and the offset just past the closing quote.
func ReadMultiLine(input string, pos int) (string, int, error) {
	start := pos
	pos += 2 // @"
	var b strings.Builder
	for {
		if pos >= len(input) {
			return "", pos, types.NewError(types.ErrStringNotClosed,
				"multi-line string literal not closed", start).WithToken(input[start:])
		}
		ch := input[pos]
		switch {
		case ch == '"' && pos+1 < len(input) && input[pos+1] == '"':
			b.WriteByte('"')
			pos += 2
		case ch == '"':
			return b.String(), pos + 1, nil
		case ch == '\r' && pos+1 < len(input) && input[pos+1] == '\n':
			b.WriteString(CRLF)
			pos += 2
		case ch == '\r' || ch == '\n':
			b.WriteString(CRLF)
			pos++
		default:
			b.WriteByte(ch)
			pos++
		}
	}
}

// Quote renders s as a literal that ReadSingleLine or ReadMultiLine reads
// back as s. Strings with newlines use the multi-line form.
func Quote(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return `@"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\t':
			b.WriteString(`\t`)
		case '\v':
			b.WriteString(`\v`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
