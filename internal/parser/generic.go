package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// reservedFields would clash with the node's own type and position keys.
var reservedFields = map[string]string{
	"type":  "typeNode",
	"range": "rangeNode",
	"loc":   "locNode",
}

// generic exposes a CST node as-is: the kind in PascalCase, named children
// under their grammar field names and unlabeled children under "children".
// Leaves keep their source text.
func (c *converter) generic(n *tree_sitter.Node) *estree.Node {
	node := c.make(estree.Type(pascalCase(n.Kind())), n)
	var rest estree.NodeList
	named := 0
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() || c.skip(child) {
			continue
		}
		named++
		var v *estree.Node
		if c.dialect.ESTree() {
			v = c.node(child)
		} else {
			v = c.generic(child)
		}
		if v == nil {
			continue
		}
		name := n.FieldNameForChild(uint32(i))
		if alt, ok := reservedFields[name]; ok {
			name = alt
		}
		if name == "" {
			rest = append(rest, v)
			continue
		}
		switch prev := node.Get(name).(type) {
		case nil:
			node.Set(name, v)
		case *estree.Node:
			node.Set(name, estree.NodeList{prev, v})
		case estree.NodeList:
			node.Set(name, append(prev, v))
		}
	}
	if rest != nil {
		node.Set("children", rest)
	}
	if named == 0 {
		text := c.text(n)
		node.Set("text", estree.String(text))
		if strings.Contains(n.Kind(), "identifier") {
			node.Set("name", estree.String(text))
		}
	}
	return node
}
