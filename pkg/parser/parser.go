// Package parser compiles lambda expressions into programs.
//
// Compilation is a single pass over the token stream: each token is
// dispatched on its literal form and appends either a nested group, a
// logical operator or an iterator to the group being built. The token
// following '?' is the type declarator and ends the expression.
//
// # Example
//
//	prog, err := parser.Parse("@/*/_data/*/?value")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(prog.Kind) // value
//
// # Grammar
//
//	expression := '@' ['@'] body ['?' type]
//	body       := token { token }
//	type       := ('node' | 'value' | 'count' | 'name' | 'path') ['.' converter]
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandrolain/golambda/pkg/coerce"
	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/regex"
	"github.com/sandrolain/golambda/pkg/types"
)

// Parse compiles an expression into a Program.
//
// Example:
//
//	prog, err := parser.Parse("@/0/?name")
//	if err != nil {
//	    var e *types.Error
//	    if errors.As(err, &e) {
//	        fmt.Printf("%s at position %d\n", e.Code, e.Position)
//	    }
//	}
func Parse(source string, opts ...CompileOption) (*types.Program, error) {
	return NewParser(source, opts...).Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// Coercer converts the literals of ":type:" value tokens.
	Coercer coerce.Coercer
	// Regex compiles the patterns of regex tokens.
	Regex regex.Compiler
}

// WithCoercer sets the coercer used for typed value tokens.
func WithCoercer(c coerce.Coercer) CompileOption {
	return func(opts *CompileOptions) {
		opts.Coercer = c
	}
}

// WithRegexCompiler sets the regex capability.
func WithRegexCompiler(c regex.Compiler) CompileOption {
	return func(opts *CompileOptions) {
		opts.Regex = c
	}
}

// Validate checks the minimal shape of an expression: it starts with '@',
// is at least four characters long and its second character is one of
// '?', '/', '{' or '@'.
func Validate(source string) error {
	if len(source) < 4 || source[0] != '@' || !strings.ContainsRune("?/{@", rune(source[1])) {
		return types.NewError(types.ErrNotAnExpression, "not a valid lambda expression", 0).
			WithExpression(source)
	}
	return nil
}

// IsExpression reports whether v is a string with the shape of an expression.
func IsExpression(v any) bool {
	s, ok := v.(string)
	return ok && Validate(s) == nil
}

// Parser builds a Program from the tokens of one expression.
type Parser struct {
	source string
	opts   CompileOptions
	tok    *Tokenizer
	prog   *types.Program

	current    int   // index of the group being built
	previous   Token // last dispatched token
	groupStart bool  // no iterator or operator added to the current group yet
}

// NewParser creates a parser for source.
func NewParser(source string, opts ...CompileOption) *Parser {
	options := CompileOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Coercer == nil {
		options.Coercer = hyperlambda.NewCoercer()
	}
	if options.Regex == nil {
		options.Regex = regex.Default()
	}
	return &Parser{
		source:     source,
		opts:       options,
		tok:        NewTokenizer(source),
		prog:       types.NewProgram(source),
		groupStart: true,
	}
}

// Parse runs the compilation.
func (p *Parser) Parse() (*types.Program, error) {
	if err := Validate(p.source); err != nil {
		return nil, err
	}

	declarator := ""
Loop:
	for {
		t := p.tok.Next()
		switch t.Type {
		case TokenEOF:
			break Loop
		case TokenError:
			return nil, p.annotate(p.tok.Err())
		}
		if p.previous.Is("?") {
			declarator = t.Value
			break Loop
		}
		if !t.Is("?") {
			if err := p.dispatch(t); err != nil {
				return nil, p.annotate(err)
			}
		}
		p.previous = t
	}

	if p.prog.Groups[p.current].Parent >= 0 {
		return nil, p.errorAt(types.ErrUnclosedGroup, "group opened with '(' is never closed", len(p.source))
	}
	if err := p.declarator(declarator); err != nil {
		return nil, err
	}
	if p.prog.Reference() && p.prog.Kind != types.KindName && p.prog.Kind != types.KindValue {
		return nil, p.errorAt(types.ErrReferenceType,
			fmt.Sprintf("reference expressions must be of type name or value, not %s", p.prog.Kind), -1)
	}
	return p.prog, nil
}

// declarator parses "kind[.converter]". An empty declarator means node.
func (p *Parser) declarator(s string) error {
	if s == "" {
		p.prog.Kind = types.KindNode
		return nil
	}
	kind, convert, _ := strings.Cut(s, ".")
	k, ok := types.ParseResultKind(kind)
	if !ok {
		return p.errorAt(types.ErrUnknownType, fmt.Sprintf("unknown type declarator %q", s), -1).WithToken(s)
	}
	p.prog.Kind = k
	p.prog.Convert = convert
	return nil
}

func (p *Parser) dispatch(t Token) error {
	if t.Quoted() {
		p.groupStart = false
		return p.defaultToken(t)
	}
	if t.Value == "@" && p.groupStart {
		g := &p.prog.Groups[p.current]
		if g.Reference {
			return p.errorAt(types.ErrDuplicateReference, "reference marker '@' repeated", t.Position).WithToken(t.Value)
		}
		g.Reference = true
		return nil
	}
	p.groupStart = false

	switch t.Value {
	case "(":
		p.openGroup(t)
	case ")":
		parent := p.prog.Groups[p.current].Parent
		if parent < 0 {
			return p.errorAt(types.ErrUnopenedGroup, "')' without matching '('", t.Position).WithToken(t.Value)
		}
		p.current = parent
	case "|":
		p.addLogical(types.LogicalOr)
	case "&":
		p.addLogical(types.LogicalAnd)
	case "^":
		p.addLogical(types.LogicalXor)
	case "!":
		p.addLogical(types.LogicalNot)
	case "/":
		if p.previous.Is("/") {
			p.add(types.Iterator{Kind: types.IterNamed, Name: ""}, t)
		}
	case "..":
		p.add(types.Iterator{Kind: types.IterRoot}, t)
	case ".":
		p.add(types.Iterator{Kind: types.IterParent}, t)
	case "*":
		p.add(types.Iterator{Kind: types.IterChildren}, t)
	case "**":
		p.add(types.Iterator{Kind: types.IterFlatten}, t)
	case "#":
		p.add(types.Iterator{Kind: types.IterReference}, t)
	case "<":
		p.add(types.Iterator{Kind: types.IterShiftLeft}, t)
	case ">":
		p.add(types.Iterator{Kind: types.IterShiftRight}, t)
	default:
		return p.defaultToken(t)
	}
	return nil
}

func (p *Parser) openGroup(t Token) {
	idx := len(p.prog.Groups)
	p.add(types.Iterator{Kind: types.IterGroup, Group: idx}, t)
	p.prog.Groups = append(p.prog.Groups, types.Group{
		Parent:   p.current,
		Logicals: []types.Logical{{Kind: types.LogicalOr}},
	})
	p.current = idx
	p.groupStart = true
}

func (p *Parser) addLogical(kind types.LogicalKind) {
	g := &p.prog.Groups[p.current]
	g.Logicals = append(g.Logicals, types.Logical{Kind: kind})
}

func (p *Parser) add(it types.Iterator, t Token) {
	it.Token = t.Value
	it.Position = t.Position
	g := &p.prog.Groups[p.current]
	l := &g.Logicals[len(g.Logicals)-1]
	l.Chain = append(l.Chain, it)
}

// defaultToken classifies every token that is not a fixed form.
func (p *Parser) defaultToken(t Token) error {
	v := t.Value
	switch {
	case strings.HasPrefix(v, "="):
		return p.valueToken(t, v[1:])
	case strings.HasPrefix(v, "["):
		return p.rangeToken(t)
	case len(v) > 2 && strings.HasPrefix(v, ".."):
		p.add(types.Iterator{Kind: types.IterNamedAncestor, Name: v[2:]}, t)
	case strings.HasPrefix(v, "%"):
		n, err := strconv.Atoi(v[1:])
		if err != nil || n < 0 || !isDigits(v[1:]) {
			return p.errorAt(types.ErrBadModulo, "modulo token needs a non-negative integer", t.Position).WithToken(v)
		}
		p.add(types.Iterator{Kind: types.IterModulo, Number: n}, t)
	case strings.HasPrefix(v, "+"), strings.HasPrefix(v, "-"):
		n := 1
		if digits := v[1:]; digits != "" {
			if !isDigits(digits) {
				return p.errorAt(types.ErrBadSibling, "sibling token needs an integer offset", t.Position).WithToken(v)
			}
			n, _ = strconv.Atoi(digits)
		}
		if v[0] == '-' {
			n = -n
		}
		p.add(types.Iterator{Kind: types.IterSibling, Number: n}, t)
	case strings.HasPrefix(v, "/"):
		return p.regexToken(t, v, types.IterNamedRegex)
	case isDigits(v):
		n, err := strconv.Atoi(v)
		if err != nil {
			return p.errorAt(types.ErrBadRange, "child index out of range", t.Position).WithToken(v).WithCause(err)
		}
		p.add(types.Iterator{Kind: types.IterNumbered, Number: n}, t)
	default:
		p.add(types.Iterator{Kind: types.IterNamed, Name: strings.TrimPrefix(v, `\`)}, t)
	}
	return nil
}

func (p *Parser) valueToken(t Token, rest string) error {
	switch {
	case strings.HasPrefix(rest, "/"):
		return p.regexToken(t, rest, types.IterValuedRegex)
	case strings.HasPrefix(rest, `\`):
		p.add(types.Iterator{Kind: types.IterValued, Value: rest[1:]}, t)
		return nil
	case strings.HasPrefix(rest, ":"):
		typeName, lit, ok := strings.Cut(rest[1:], ":")
		if !ok || typeName == "" {
			return p.errorAt(types.ErrBadTypedValue, "typed value token must look like =:type:value", t.Position).WithToken(t.Value)
		}
		lit = strings.TrimPrefix(lit, `\`)
		value, err := p.opts.Coercer.Coerce(lit, typeName)
		if err != nil {
			return types.Annotate(err, p.source, nil)
		}
		p.add(types.Iterator{Kind: types.IterValued, Value: value, TypeName: typeName}, t)
		return nil
	default:
		p.add(types.Iterator{Kind: types.IterValued, Value: rest}, t)
		return nil
	}
}

func (p *Parser) rangeToken(t Token) error {
	v := t.Value
	bad := func(msg string) error {
		return p.errorAt(types.ErrBadRange, msg, t.Position).WithToken(v)
	}
	if !strings.HasSuffix(v, "]") {
		return bad("range token must end with ']'")
	}
	parts := strings.Split(v[1:len(v)-1], ",")
	if len(parts) != 2 {
		return bad("range token must hold two comma separated bounds")
	}
	bounds := [2]int{0, -1}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !isDigits(part) {
			return bad(fmt.Sprintf("range bound %q is not a non-negative integer", part))
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return bad(fmt.Sprintf("range bound %q is out of range", part))
		}
		bounds[i] = n
	}
	if bounds[1] >= 0 && bounds[1] <= bounds[0] {
		return bad("range end must be greater than range start")
	}
	p.add(types.Iterator{Kind: types.IterRange, Start: bounds[0], End: bounds[1]}, t)
	return nil
}

// regexToken compiles "/pattern/options". The 'd' option is the engine's
// own distinct flag and is not passed to the regex capability.
func (p *Parser) regexToken(t Token, v string, kind types.IteratorKind) error {
	last := strings.LastIndex(v, "/")
	if last <= 0 {
		return p.errorAt(types.ErrRegexNotClosed,
			fmt.Sprintf("%q is not a valid regular expression, missing '/' at end of pattern", v), t.Position).WithToken(v)
	}
	pattern, options := v[1:last], v[last+1:]
	distinct := strings.ContainsRune(options, 'd')
	options = strings.ReplaceAll(options, "d", "")
	m, err := p.opts.Regex.Compile(pattern, options)
	if err != nil {
		var e *types.Error
		if errors.As(err, &e) && e.Position < 0 {
			e.Position = t.Position
		}
		return err
	}
	p.add(types.Iterator{Kind: kind, Regex: m, Distinct: distinct}, t)
	return nil
}

func (p *Parser) errorAt(code types.ErrorCode, msg string, pos int) *types.Error {
	return types.NewError(code, msg, pos).WithExpression(p.source)
}

func (p *Parser) annotate(err error) error {
	return types.Annotate(err, p.source, nil)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
