package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// jsxElement converts elements and fragments. A fragment is an element whose
// opening tag has no name.
func (c *converter) jsxElement(n *tree_sitter.Node) *estree.Node {
	if n.Kind() == "jsx_self_closing_element" {
		el := c.make(estree.JSXElement, n)
		el.Set("openingElement", c.jsxOpening(n, true))
		el.Set("children", estree.NodeList{})
		el.Set("closingElement", nil)
		return el
	}

	open := field(n, "open_tag")
	closeTag := field(n, "close_tag")
	children := estree.NodeList{}
	for _, k := range c.named(n) {
		if sameNode(k, open) || sameNode(k, closeTag) {
			continue
		}
		children = appendNode(children, c.jsxChild(k))
	}

	if open != nil && field(open, "name") == nil {
		frag := c.make(estree.JSXFragment, n)
		frag.Set("openingFragment", c.make(estree.JSXOpeningFragment, open))
		frag.Set("children", children)
		if closeTag != nil {
			frag.Set("closingFragment", c.make(estree.JSXClosingFragment, closeTag))
		}
		return frag
	}

	el := c.make(estree.JSXElement, n)
	if open != nil {
		el.Set("openingElement", c.jsxOpening(open, false))
	}
	el.Set("children", children)
	var closing *estree.Node
	if closeTag != nil {
		closing = c.make(estree.JSXClosingElement, closeTag)
		closing.Set("name", c.jsxName(field(closeTag, "name")))
	}
	el.Set("closingElement", closing)
	return el
}

func (c *converter) jsxOpening(n *tree_sitter.Node, selfClosing bool) *estree.Node {
	o := c.make(estree.JSXOpeningElement, n)
	name := field(n, "name")
	o.Set("name", c.jsxName(name))
	typeArgs := field(n, "type_arguments")
	if typeArgs != nil {
		o.Set("typeArguments", c.typeArguments(typeArgs))
	}
	attrs := estree.NodeList{}
	for _, k := range c.named(n) {
		if sameNode(k, name) || sameNode(k, typeArgs) {
			continue
		}
		attrs = appendNode(attrs, c.jsxAttribute(k))
	}
	o.Set("attributes", attrs)
	o.Set("selfClosing", estree.Bool(selfClosing))
	return o
}

func (c *converter) jsxAttribute(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "jsx_attribute":
		kids := c.named(n)
		a := c.make(estree.JSXAttribute, n)
		if len(kids) > 0 {
			a.Set("name", c.jsxName(kids[0]))
		}
		var value *estree.Node
		if len(kids) > 1 {
			value = c.jsxValue(kids[1])
		}
		a.Set("value", value)
		return a
	case "jsx_expression":
		if inner := c.firstNamed(n); inner != nil && inner.Kind() == "spread_element" {
			s := c.make(estree.JSXSpreadAttribute, n)
			s.Set("argument", c.expr(c.firstNamed(inner)))
			return s
		}
	}
	return c.jsxChild(n)
}

func (c *converter) jsxValue(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "string":
		lit := c.make(estree.Literal, n)
		raw := c.text(n)
		value := ""
		if len(raw) >= 2 {
			value = raw[1 : len(raw)-1]
		}
		lit.Set("value", estree.String(value))
		lit.Set("raw", estree.String(raw))
		return lit
	}
	return c.jsxChild(n)
}

func (c *converter) jsxChild(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "jsx_text", "html_character_reference":
		t := c.make(estree.JSXText, n)
		raw := c.text(n)
		t.Set("value", estree.String(raw))
		t.Set("raw", estree.String(raw))
		return t
	case "jsx_expression":
		inner := c.firstNamed(n)
		if inner != nil && inner.Kind() == "spread_element" {
			s := c.make("JSXSpreadChild", n)
			s.Set("expression", c.expr(c.firstNamed(inner)))
			return s
		}
		e := c.make(estree.JSXExpressionContainer, n)
		if inner == nil {
			// {} or {/* comment */}: the empty expression sits between the braces.
			start, end := n.StartByte()+1, n.EndByte()
			if end > start {
				end--
			}
			e.Set("expression", c.makeSpan(estree.JSXEmptyExpression, start, end))
		} else {
			e.Set("expression", c.expr(inner))
		}
		return e
	case "jsx_element", "jsx_self_closing_element":
		return c.jsxElement(n)
	}
	return c.expr(n)
}

// jsxName converts element and attribute names.
func (c *converter) jsxName(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "member_expression", "nested_identifier":
		obj := field(n, "object")
		prop := field(n, "property")
		if obj == nil || prop == nil {
			kids := c.named(n)
			if len(kids) < 2 {
				return c.jsxIdentifier(n)
			}
			obj, prop = kids[0], kids[len(kids)-1]
		}
		m := c.make(estree.JSXMemberExpression, n)
		m.Set("object", c.jsxName(obj))
		m.Set("property", c.jsxIdentifier(prop))
		return m
	case "jsx_namespace_name":
		kids := c.named(n)
		ns := c.make(estree.JSXNamespacedName, n)
		if len(kids) > 0 {
			ns.Set("namespace", c.jsxIdentifier(kids[0]))
		}
		if len(kids) > 1 {
			ns.Set("name", c.jsxIdentifier(kids[1]))
		}
		return ns
	}
	return c.jsxIdentifier(n)
}

func (c *converter) jsxIdentifier(n *tree_sitter.Node) *estree.Node {
	id := c.make(estree.JSXIdentifier, n)
	id.Set("name", estree.String(c.text(n)))
	return id
}
