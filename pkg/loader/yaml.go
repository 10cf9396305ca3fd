package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/golambda/pkg/node"
)

// FromYAML parses a YAML document. Mapping order is preserved; scalars
// take the type YAML resolves them to (int, float64, bool or string).
func FromYAML(data []byte) (*node.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, loadError(FormatYAML, err)
	}
	root := node.New("", nil)
	if len(doc.Content) == 0 {
		return root, nil
	}
	if err := fillYAML(root, doc.Content[0]); err != nil {
		return nil, loadError(FormatYAML, err)
	}
	return root, nil
}

func fillYAML(n *node.Node, y *yaml.Node) error {
	switch y.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(y.Content); i += 2 {
			c := node.New(y.Content[i].Value, nil)
			if err := fillYAML(c, y.Content[i+1]); err != nil {
				return err
			}
			n.Append(c)
		}
	case yaml.SequenceNode:
		for _, item := range y.Content {
			c := node.New("", nil)
			if err := fillYAML(c, item); err != nil {
				return err
			}
			n.Append(c)
		}
	case yaml.AliasNode:
		return fillYAML(n, y.Alias)
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", y.Line, err)
		}
		n.Value = v
	}
	return nil
}
