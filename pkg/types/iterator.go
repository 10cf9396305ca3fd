package types

// IteratorKind tags the variant held by an Iterator.
type IteratorKind uint8

const (
	IterRoot          IteratorKind = iota // ..
	IterParent                            // .
	IterChildren                          // *
	IterFlatten                           // **
	IterNumbered                          // 3
	IterNamed                             // name
	IterNamedAncestor                     // ..name
	IterRange                             // [s,e]
	IterModulo                            // %n
	IterSibling                           // +n / -n
	IterShiftLeft                         // <
	IterShiftRight                        // >
	IterReference                         // #
	IterValued                            // =value
	IterNamedRegex                        // "/re/"
	IterValuedRegex                       // =/re/
	IterGroup                             // ( ... )
)

var iteratorKindNames = [...]string{
	IterRoot:          "root",
	IterParent:        "parent",
	IterChildren:      "children",
	IterFlatten:       "flatten",
	IterNumbered:      "numbered",
	IterNamed:         "named",
	IterNamedAncestor: "named-ancestor",
	IterRange:         "range",
	IterModulo:        "modulo",
	IterSibling:       "sibling",
	IterShiftLeft:     "shift-left",
	IterShiftRight:    "shift-right",
	IterReference:     "reference",
	IterValued:        "valued",
	IterNamedRegex:    "named-regex",
	IterValuedRegex:   "valued-regex",
	IterGroup:         "group",
}

// String returns a readable name for the kind.
func (k IteratorKind) String() string {
	if int(k) < len(iteratorKindNames) {
		return iteratorKindNames[k]
	}
	return "unknown"
}

// Matcher is a compiled regular expression.
type Matcher interface {
	MatchString(s string) (bool, error)
}

// Iterator is one stage in a chain. Only the fields relevant to Kind are set.
type Iterator struct {
	Kind IteratorKind

	// Name is the target of Named and NamedAncestor.
	Name string
	// Number is the child index of Numbered, the divisor of Modulo and the
	// signed offset of Sibling.
	Number int
	// Start and End bound a Range; End is -1 when unbounded.
	Start int
	End   int
	// Value is the equality target of Valued. TypeName is non-empty when the
	// literal was coerced through a ":type:" prefix.
	Value    any
	TypeName string
	// Regex and Distinct configure the regex iterators.
	Regex    Matcher
	Distinct bool
	// Group indexes Program.Groups for IterGroup.
	Group int

	Token    string
	Position int
}
