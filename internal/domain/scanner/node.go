package scanner

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// maxExpandedNodes bounds the size of the tree produced once aliases are
// expanded. A handful of nested aliases can otherwise describe a tree with
// billions of nodes.
const maxExpandedNodes = 1 << 20

// Node is a parsed YAML value. Implementations are Scalar, Sequence and Mapping.
type Node interface {
	isNode()
}

// Scalar is a leaf value. Tag is the resolved short tag, such as "!!str" or "!!int".
type Scalar struct {
	Value string
	Tag   string
}

// IsText reports whether the scalar resolved to a string.
func (s Scalar) IsText() bool { return s.Tag == "!!str" }

// Sequence is an ordered list of nodes.
type Sequence struct {
	Items []Node
}

// Mapping keeps its entries in document order.
type Mapping struct {
	Entries []Entry
}

// Entry is one key/value pair of a Mapping. Non-scalar keys are rendered as "".
type Entry struct {
	Key   string
	Value Node
}

func (Scalar) isNode()   {}
func (Sequence) isNode() {}
func (Mapping) isNode()  {}

// ParseDocument parses the first YAML document in text. An empty document
// yields a nil Node and no error. Syntax errors are wrapped with driven.ErrParse.
func ParseDocument(text string) (Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("parse workflow: %w: %w", driven.ErrParse, err)
	}

	c := &converter{}
	node := c.convert(&doc)
	if c.count > maxExpandedNodes {
		return nil, fmt.Errorf("parse workflow: %w: document expands to more than %d nodes", driven.ErrParse, maxExpandedNodes)
	}
	return node, nil
}

type converter struct {
	count int
}

func (c *converter) convert(n *yaml.Node) Node {
	if n == nil || c.count > maxExpandedNodes {
		return nil
	}
	c.count++

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return c.convert(n.Content[0])

	case yaml.AliasNode:
		return c.convert(n.Alias)

	case yaml.ScalarNode:
		return Scalar{Value: n.Value, Tag: n.ShortTag()}

	case yaml.SequenceNode:
		items := make([]Node, 0, len(n.Content))
		for _, child := range n.Content {
			items = append(items, c.convert(child))
		}
		return Sequence{Items: items}

	case yaml.MappingNode:
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if k := n.Content[i]; k.Kind == yaml.ScalarNode {
				key = k.Value
			}
			entries = append(entries, Entry{Key: key, Value: c.convert(n.Content[i+1])})
		}
		return Mapping{Entries: entries}
	}

	return nil
}
