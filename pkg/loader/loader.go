// Package loader builds node trees from documents.
//
// JSON and YAML objects become named nodes in document order, arrays
// become children with empty names and scalars become node values.
// Hyperlambda documents are parsed by the hyperlambda package.
//
// Every loader returns a nameless root whose children are the document's
// top-level entries.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandrolain/golambda/pkg/hyperlambda"
	"github.com/sandrolain/golambda/pkg/node"
	"github.com/sandrolain/golambda/pkg/types"
)

// Format names a document format.
type Format string

const (
	FormatJSON        Format = "json"
	FormatYAML        Format = "yaml"
	FormatHyperlambda Format = "hyperlambda"
)

// FormatFor picks a format from a file extension. Unknown extensions are
// read as hyperlambda.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatHyperlambda
	}
}

// ParseFormat parses a format name as given on a command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatHyperlambda:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "hl":
		return FormatHyperlambda, nil
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

// Load parses data in the given format.
func Load(data []byte, format Format) (*node.Node, error) {
	switch format {
	case FormatJSON:
		return FromJSON(data)
	case FormatYAML:
		return FromYAML(data)
	case FormatHyperlambda:
		return FromHyperlambda(data)
	}
	return nil, fmt.Errorf("unknown document format %q", format)
}

// LoadReader reads r to the end and parses it in the given format.
func LoadReader(r io.Reader, format Format) (*node.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Load(data, format)
}

// LoadFile reads the file at path, choosing the format by extension.
func LoadFile(path string) (*node.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	root, err := Load(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return root, nil
}

// FromHyperlambda parses a hyperlambda document.
func FromHyperlambda(data []byte) (*node.Node, error) {
	return hyperlambda.Parse(string(data))
}

func loadError(format Format, err error) error {
	return types.NewError(types.ErrConversion, fmt.Sprintf("%s: %v", format, err), -1).WithCause(err)
}
