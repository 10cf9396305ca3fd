// Package coerce converts node values between the types an expression can
// name, e.g. the "int" in "=:int:5" or the "string" in "?value.string".
//
// The conversion contract is culture invariant: numbers use '.' as decimal
// separator, dates render as ISO 8601 and byte blobs as standard base64.
//
// The engine only depends on the Coercer interface; Converter is the default
// implementation. Node <-> string conversion is delegated to a NodeCodec,
// normally the hyperlambda codec.
package coerce

import (
	"fmt"

	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// Coercer converts values to named target types and to strings.
type Coercer interface {
	// Coerce converts value to the type named by typeName. A nil value
	// converts to nil.
	Coerce(value any, typeName string) (any, error)
	// ToString converts value to its canonical string form.
	ToString(value any) (string, error)
}

// NodeCodec converts between node trees and their textual form.
type NodeCodec interface {
	// Parse returns a nameless root holding the nodes described by text.
	Parse(text string) (*node.Node, error)
	// Format renders n as text.
	Format(n *node.Node) (string, error)
}

// Converter is the default Coercer.
type Converter struct {
	codec NodeCodec
}

// Option configures a Converter.
type Option func(*Converter)

// WithNodeCodec sets the codec used for node <-> string conversion.
func WithNodeCodec(codec NodeCodec) Option {
	return func(c *Converter) {
		c.codec = codec
	}
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToString implements Coercer.
func (c *Converter) ToString(value any) (string, error) {
	if n, ok := value.(*node.Node); ok && n != nil {
		if c.codec == nil {
			return fmt.Sprintf("Name=%s, Count=%d", n.Name, n.Len()), nil
		}
		s, err := c.codec.Format(n)
		if err != nil {
			return "", conversionError(value, "string", err)
		}
		return s, nil
	}
	return FormatScalar(value), nil
}

// Coerce implements Coercer.
func (c *Converter) Coerce(value any, typeName string) (any, error) {
	if value == nil {
		return nil, nil
	}
	if TypeName(value) == typeName {
		return value, nil
	}
	switch typeName {
	case "string":
		return c.ToString(value)
	case "node":
		return c.toNode(value)
	}
	if out, ok, err := convertNumeric(value, typeName); ok {
		if err != nil {
			return nil, conversionError(value, typeName, err)
		}
		return out, nil
	}
	s, err := c.ToString(value)
	if err != nil {
		return nil, err
	}
	return ParseScalar(s, typeName)
}

func (c *Converter) toNode(value any) (any, error) {
	if c.codec == nil {
		return nil, types.NewError(types.ErrUnknownTarget, "no node codec configured", -1)
	}
	s, err := c.ToString(value)
	if err != nil {
		return nil, err
	}
	n, err := c.codec.Parse(s)
	if err != nil {
		return nil, conversionError(value, "node", err)
	}
	return n, nil
}

func conversionError(value any, typeName string, cause error) *types.Error {
	return types.NewError(types.ErrConversion,
		fmt.Sprintf("cannot convert %T to %s", value, typeName), -1).WithCause(cause)
}
