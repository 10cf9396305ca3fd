package xutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/golambda/pkg/types"
)

// Substitute replaces every {n} placeholder of template with args[n].
// "{{" and "}}" stand for literal braces.
func Substitute(template string, args []string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))
	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch ch {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", badFormat(template, i, "'{' without matching '}'")
			}
			idx, err := strconv.Atoi(strings.TrimSpace(template[i+1 : i+end]))
			if err != nil || idx < 0 {
				return "", badFormat(template, i, fmt.Sprintf("placeholder %q is not an index", template[i:i+end+1]))
			}
			if idx >= len(args) {
				return "", badFormat(template, i, fmt.Sprintf("placeholder {%d} has no value, %d given", idx, len(args)))
			}
			b.WriteString(args[idx])
			i += end
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			} else {
				return "", badFormat(template, i, "'}' without matching '{'")
			}
			b.WriteByte('}')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func badFormat(template string, pos int, msg string) error {
	return types.NewError(types.ErrBadFormat, msg, pos).WithToken(template)
}
