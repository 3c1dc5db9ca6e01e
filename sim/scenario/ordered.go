package scenario

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one key/value pair of an Ordered mapping.
type Entry[T any] struct {
	Name  string
	Value T
}

// Ordered is a YAML mapping decoded in document order. Cumulative weights
// over slices and mobility patterns depend on that order, which a Go map
// would lose.
type Ordered[T any] []Entry[T]

// UnmarshalYAML decodes each value strictly (unknown fields are errors) and
// rejects duplicate keys.
func (o *Ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	out := make(Ordered[T], 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		var v T
		if err := decodeStrict(val, &v); err != nil {
			return fmt.Errorf("%s: %w", key.Value, err)
		}
		out = append(out, Entry[T]{Name: key.Value, Value: v})
	}
	*o = out
	return nil
}

// Names returns the keys in document order.
func (o Ordered[T]) Names() []string {
	names := make([]string, len(o))
	for i, e := range o {
		names[i] = e.Name
	}
	return names
}

// decodeStrict decodes node into v with KnownFields enabled. Node.Decode
// does not carry the parent decoder's strictness, so the node is
// re-encoded and decoded afresh.
func decodeStrict(node *yaml.Node, v any) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(v)
}
