// Package regex provides the regular expression capability used by the
// "/pattern/options" iterators.
//
// Options are single letters:
//
//	o  compiled
//	c  culture invariant (always on)
//	e  ECMAScript
//	i  ignore case
//	m  multiline
//	r  right to left
//	s  singleline
//	w  ignore pattern whitespace
//	x  explicit capture
//
// The default Compiler is backed by github.com/dlclark/regexp2, which
// implements the same option set natively.
package regex

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/sandrolain/golambda/pkg/types"
)

// Compiler compiles a pattern with an options string.
type Compiler interface {
	Compile(pattern, options string) (types.Matcher, error)
}

// Regexp2 is the default Compiler.
type Regexp2 struct {
	// MatchTimeout bounds a single match; zero means no limit.
	MatchTimeout time.Duration
}

// Default returns the default Compiler.
func Default() Compiler {
	return Regexp2{}
}

// Options maps an options string to regexp2 flags.
func Options(options string) (regexp2.RegexOptions, error) {
	var opts regexp2.RegexOptions
	for _, ch := range options {
		switch ch {
		case 'o':
			opts |= regexp2.Compiled
		case 'c':
		case 'e':
			opts |= regexp2.ECMAScript
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 'r':
			opts |= regexp2.RightToLeft
		case 's':
			opts |= regexp2.Singleline
		case 'w':
			opts |= regexp2.IgnorePatternWhitespace
		case 'x':
			opts |= regexp2.ExplicitCapture
		default:
			return 0, types.NewError(types.ErrRegexOption,
				fmt.Sprintf("'%c' is not a recognized regular expression option", ch), -1).
				WithToken(options)
		}
	}
	return opts, nil
}

// Compile implements Compiler.
func (c Regexp2) Compile(pattern, options string) (types.Matcher, error) {
	opts, err := Options(options)
	if err != nil {
		return nil, err
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, types.NewError(types.ErrRegexPattern,
			fmt.Sprintf("invalid regular expression %q", pattern), -1).WithCause(err)
	}
	if c.MatchTimeout > 0 {
		re.MatchTimeout = c.MatchTimeout
	}
	return re, nil
}
