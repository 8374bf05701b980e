package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// identifier converts any name-like leaf to an Identifier. It returns nil for
// a nil node so optional names become null.
func (c *converter) identifier(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	id := c.make(estree.Identifier, n)
	id.Set("name", estree.String(c.text(n)))
	return id
}

// expr converts an expression. Parentheses do not produce nodes.
func (c *converter) expr(n *tree_sitter.Node) *estree.Node {
	if n == nil || c.skip(n) {
		return nil
	}
	switch n.Kind() {
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "statement_identifier", "type_identifier", "undefined":
		return c.identifier(n)
	case "private_property_identifier":
		id := c.make(estree.PrivateIdentifier, n)
		id.Set("name", estree.String(strings.TrimPrefix(c.text(n), "#")))
		return id
	case "this":
		return c.make(estree.ThisExpression, n)
	case "super":
		return c.make(estree.Super, n)
	case "true", "false":
		lit := c.make(estree.Literal, n)
		lit.Set("value", estree.Bool(n.Kind() == "true"))
		lit.Set("raw", estree.String(c.text(n)))
		return lit
	case "null":
		lit := c.make(estree.Literal, n)
		lit.Set("value", estree.Null)
		lit.Set("raw", estree.String("null"))
		return lit
	case "number":
		return c.numberLiteral(n)
	case "string":
		return c.stringLiteral(n)
	case "regex":
		return c.regexLiteral(n)
	case "template_string":
		return c.templateLiteral(n)
	case "parenthesized_expression":
		return c.expr(c.firstNamed(n))
	case "array":
		a := c.make(estree.ArrayExpression, n)
		a.Set("elements", c.elements(n, c.expr))
		return a
	case "object":
		return c.object(n)
	case "function_expression", "function", "generator_function":
		return c.function(estree.FunctionExpression, n)
	case "arrow_function":
		fn := c.make(estree.ArrowFunctionExpression, n)
		fn.Set("id", nil)
		c.fillFunction(fn, n)
		return fn
	case "class":
		return c.class(estree.ClassExpression, n)
	case "call_expression", "member_expression", "subscript_expression":
		return c.chain(n)
	case "new_expression":
		e := c.make(estree.NewExpression, n)
		e.Set("callee", c.expr(field(n, "constructor")))
		if ta := field(n, "type_arguments"); ta != nil {
			e.Set("typeArguments", c.typeArguments(ta))
		}
		e.Set("arguments", c.arguments(field(n, "arguments")))
		return e
	case "binary_expression":
		op := c.text(field(n, "operator"))
		t := estree.BinaryExpression
		switch op {
		case "&&", "||", "??":
			t = estree.LogicalExpression
		}
		e := c.make(t, n)
		e.Set("operator", estree.String(op))
		e.Set("left", c.expr(field(n, "left")))
		e.Set("right", c.expr(field(n, "right")))
		return e
	case "unary_expression":
		e := c.make(estree.UnaryExpression, n)
		e.Set("operator", estree.String(c.text(field(n, "operator"))))
		e.Set("prefix", estree.Bool(true))
		e.Set("argument", c.expr(field(n, "argument")))
		return e
	case "update_expression":
		op := field(n, "operator")
		arg := field(n, "argument")
		e := c.make(estree.UpdateExpression, n)
		e.Set("operator", estree.String(c.text(op)))
		e.Set("prefix", estree.Bool(op != nil && arg != nil && op.StartByte() < arg.StartByte()))
		e.Set("argument", c.expr(arg))
		return e
	case "assignment_expression", "augmented_assignment_expression":
		op := "="
		if o := field(n, "operator"); o != nil {
			op = c.text(o)
		}
		e := c.make(estree.AssignmentExpression, n)
		e.Set("operator", estree.String(op))
		e.Set("left", c.pattern(field(n, "left")))
		e.Set("right", c.expr(field(n, "right")))
		return e
	case "ternary_expression":
		e := c.make(estree.ConditionalExpression, n)
		e.Set("test", c.expr(field(n, "condition")))
		e.Set("consequent", c.expr(field(n, "consequence")))
		e.Set("alternate", c.expr(field(n, "alternative")))
		return e
	case "sequence_expression":
		e := c.make(estree.SequenceExpression, n)
		e.Set("expressions", c.sequence(n, estree.NodeList{}))
		return e
	case "await_expression":
		e := c.make(estree.AwaitExpression, n)
		e.Set("argument", c.expr(c.firstNamed(n)))
		return e
	case "yield_expression":
		e := c.make(estree.YieldExpression, n)
		e.Set("delegate", estree.Bool(hasToken(n, "*")))
		e.Set("argument", c.expr(c.firstNamed(n)))
		return e
	case "spread_element":
		e := c.make(estree.SpreadElement, n)
		e.Set("argument", c.expr(c.firstNamed(n)))
		return e
	case "meta_property":
		e := c.make(estree.MetaProperty, n)
		e.Set("meta", c.identifier(n.Child(0)))
		e.Set("property", c.identifier(n.Child(n.ChildCount()-1)))
		return e
	case "object_pattern", "array_pattern", "assignment_pattern", "rest_pattern":
		return c.pattern(n)
	case "decorator":
		return c.node(n)
	case "jsx_element", "jsx_self_closing_element":
		return c.jsxElement(n)
	}
	if c.dialect.TypeScript() {
		if e := c.tsExpression(n); e != nil {
			return e
		}
	}
	return c.generic(n)
}

func (c *converter) sequence(n *tree_sitter.Node, out estree.NodeList) estree.NodeList {
	for _, k := range c.named(n) {
		if k.Kind() == "sequence_expression" {
			out = c.sequence(k, out)
			continue
		}
		out = appendNode(out, c.expr(k))
	}
	return out
}

func (c *converter) arguments(n *tree_sitter.Node) estree.NodeList {
	out := estree.NodeList{}
	for _, k := range c.named(n) {
		out = appendNode(out, c.expr(k))
	}
	return out
}

// elements converts an array literal or pattern, keeping holes as nil
// entries.
func (c *converter) elements(n *tree_sitter.Node, conv func(*tree_sitter.Node) *estree.Node) estree.NodeList {
	out := estree.NodeList{}
	expect := true
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || c.skip(child) {
			continue
		}
		switch child.Kind() {
		case "[", "]":
			continue
		case ",":
			if expect {
				out = append(out, nil)
			}
			expect = true
			continue
		}
		if !child.IsNamed() {
			continue
		}
		out = appendNode(out, conv(child))
		expect = false
	}
	return out
}

func (c *converter) object(n *tree_sitter.Node) *estree.Node {
	obj := c.make(estree.ObjectExpression, n)
	props := estree.NodeList{}
	for _, k := range c.named(n) {
		switch k.Kind() {
		case "pair":
			key, computed := c.propertyKey(field(k, "key"))
			p := c.property(k, key, c.expr(field(k, "value")), "init")
			p.Set("computed", estree.Bool(computed))
			props = append(props, p)
		case "shorthand_property_identifier":
			p := c.property(k, c.identifier(k), c.identifier(k), "init")
			p.Set("shorthand", estree.Bool(true))
			props = append(props, p)
		case "method_definition":
			name := field(k, "name")
			key, computed := c.propertyKey(name)
			kind := "init"
			if hasToken(k, "get") {
				kind = "get"
			} else if hasToken(k, "set") {
				kind = "set"
			}
			p := c.property(k, key, c.methodValue(k, name), kind)
			p.Set("computed", estree.Bool(computed))
			p.Set("method", estree.Bool(kind == "init"))
			props = append(props, p)
		default:
			props = appendNode(props, c.expr(k))
		}
	}
	obj.Set("properties", props)
	return obj
}

func (c *converter) property(n *tree_sitter.Node, key, value *estree.Node, kind string) *estree.Node {
	p := c.make(estree.Property, n)
	p.Set("key", key)
	p.Set("value", value)
	p.Set("kind", estree.String(kind))
	p.Set("method", estree.Bool(false))
	p.Set("shorthand", estree.Bool(false))
	p.Set("computed", estree.Bool(false))
	return p
}

// chain converts member and call expressions, wrapping an optional chain in
// a ChainExpression at its outermost link.
func (c *converter) chain(n *tree_sitter.Node) *estree.Node {
	e, optional := c.chainLink(n)
	if !optional || e == nil || e.Type == estree.TaggedTemplateExpression {
		return e
	}
	wrap := c.make(estree.ChainExpression, n)
	wrap.Set("expression", e)
	return wrap
}

func isOptional(n *tree_sitter.Node) bool {
	return childOfKind(n, "optional_chain", "?.") != nil
}

// chainObject converts the object/callee of a link without wrapping it.
func (c *converter) chainObject(n *tree_sitter.Node) (*estree.Node, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind() {
	case "call_expression", "member_expression", "subscript_expression":
		return c.chainLink(n)
	}
	return c.expr(n), false
}

func (c *converter) chainLink(n *tree_sitter.Node) (*estree.Node, bool) {
	switch n.Kind() {
	case "member_expression":
		obj, inChain := c.chainObject(field(n, "object"))
		optional := isOptional(n)
		e := c.make(estree.MemberExpression, n)
		e.Set("object", obj)
		e.Set("property", c.expr(field(n, "property")))
		e.Set("computed", estree.Bool(false))
		e.Set("optional", estree.Bool(optional))
		return e, inChain || optional
	case "subscript_expression":
		obj, inChain := c.chainObject(field(n, "object"))
		optional := isOptional(n)
		e := c.make(estree.MemberExpression, n)
		e.Set("object", obj)
		e.Set("property", c.expr(field(n, "index")))
		e.Set("computed", estree.Bool(true))
		e.Set("optional", estree.Bool(optional))
		return e, inChain || optional
	case "call_expression":
		fn := field(n, "function")
		args := field(n, "arguments")
		if fn != nil && fn.Kind() == "import" {
			e := c.make(estree.ImportExpression, n)
			list := c.arguments(args)
			var source, options *estree.Node
			if len(list) > 0 {
				source = list[0]
			}
			if len(list) > 1 {
				options = list[1]
			}
			e.Set("source", source)
			e.Set("options", options)
			return e, false
		}
		if args != nil && args.Kind() == "template_string" {
			e := c.make(estree.TaggedTemplateExpression, n)
			e.Set("tag", c.expr(fn))
			if ta := field(n, "type_arguments"); ta != nil {
				e.Set("typeArguments", c.typeArguments(ta))
			}
			e.Set("quasi", c.templateLiteral(args))
			return e, false
		}
		callee, inChain := c.chainObject(fn)
		optional := isOptional(n)
		e := c.make(estree.CallExpression, n)
		e.Set("callee", callee)
		if ta := field(n, "type_arguments"); ta != nil {
			e.Set("typeArguments", c.typeArguments(ta))
		}
		e.Set("arguments", c.arguments(args))
		e.Set("optional", estree.Bool(optional))
		return e, inChain || optional
	}
	return c.expr(n), false
}

// pattern converts a binding or assignment target.
func (c *converter) pattern(n *tree_sitter.Node) *estree.Node {
	if n == nil || c.skip(n) {
		return nil
	}
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier_pattern", "undefined":
		return c.identifier(n)
	case "this":
		// TypeScript this-parameter: function f(this: Window) {}
		return c.identifier(n)
	case "object_pattern":
		obj := c.make(estree.ObjectPattern, n)
		props := estree.NodeList{}
		for _, k := range c.named(n) {
			switch k.Kind() {
			case "pair_pattern":
				key, computed := c.propertyKey(field(k, "key"))
				p := c.property(k, key, c.pattern(field(k, "value")), "init")
				p.Set("computed", estree.Bool(computed))
				props = append(props, p)
			case "shorthand_property_identifier_pattern":
				p := c.property(k, c.identifier(k), c.identifier(k), "init")
				p.Set("shorthand", estree.Bool(true))
				props = append(props, p)
			case "object_assignment_pattern":
				left := field(k, "left")
				ap := c.make(estree.AssignmentPattern, k)
				ap.Set("left", c.pattern(left))
				ap.Set("right", c.expr(field(k, "right")))
				p := c.property(k, c.identifier(left), ap, "init")
				p.Set("shorthand", estree.Bool(true))
				props = append(props, p)
			default:
				props = appendNode(props, c.pattern(k))
			}
		}
		obj.Set("properties", props)
		return obj
	case "array_pattern":
		a := c.make(estree.ArrayPattern, n)
		a.Set("elements", c.elements(n, c.pattern))
		return a
	case "assignment_pattern":
		ap := c.make(estree.AssignmentPattern, n)
		ap.Set("left", c.pattern(field(n, "left")))
		ap.Set("right", c.expr(field(n, "right")))
		return ap
	case "rest_pattern":
		r := c.make(estree.RestElement, n)
		r.Set("argument", c.pattern(c.firstNamed(n)))
		return r
	case "parenthesized_expression":
		return c.pattern(c.firstNamed(n))
	}
	return c.expr(n)
}

// templateLiteral splits a template string into quasis and expressions.
// Each quasi spans its delimiters ("`", "${", "}") like typescript-estree.
func (c *converter) templateLiteral(n *tree_sitter.Node) *estree.Node {
	t := c.make(estree.TemplateLiteral, n)
	var subs []*tree_sitter.Node
	for _, k := range c.named(n) {
		if k.Kind() == "template_substitution" {
			subs = append(subs, k)
		}
	}
	quasis := estree.NodeList{}
	exprs := estree.NodeList{}
	for i := 0; i <= len(subs); i++ {
		start := n.StartByte()
		if i > 0 {
			start = subs[i-1].EndByte() - 1
		}
		end := n.EndByte()
		rawEnd := end - 1
		if i < len(subs) {
			end = subs[i].StartByte() + 2
			rawEnd = end - 2
		}
		raw := string(c.src[start+1 : rawEnd])
		q := c.makeSpan(estree.TemplateElement, start, end)
		value := &estree.Node{}
		value.Set("raw", estree.String(raw))
		if cooked, ok := unescapeString(raw); ok {
			value.Set("cooked", estree.String(cooked))
		} else {
			value.Set("cooked", estree.Null)
		}
		q.Set("value", value)
		q.Set("tail", estree.Bool(i == len(subs)))
		quasis = append(quasis, q)
		if i < len(subs) {
			exprs = appendNode(exprs, c.expr(c.firstNamed(subs[i])))
		}
	}
	t.Set("quasis", quasis)
	t.Set("expressions", exprs)
	return t
}

func (c *converter) stringLiteral(n *tree_sitter.Node) *estree.Node {
	raw := c.text(n)
	lit := c.make(estree.Literal, n)
	inner := ""
	if len(raw) >= 2 {
		inner = raw[1 : len(raw)-1]
	}
	value, _ := unescapeString(inner)
	lit.Set("value", estree.String(value))
	lit.Set("raw", estree.String(raw))
	return lit
}

func (c *converter) numberLiteral(n *tree_sitter.Node) *estree.Node {
	raw := c.text(n)
	lit := c.make(estree.Literal, n)
	if digits, ok := strings.CutSuffix(raw, "n"); ok {
		digits = strings.ReplaceAll(digits, "_", "")
		lit.Set("value", estree.BigInt(digits))
		lit.Set("raw", estree.String(raw))
		lit.Set("bigint", estree.String(digits))
		return lit
	}
	lit.Set("value", estree.Number(parseNumber(raw)))
	lit.Set("raw", estree.String(raw))
	return lit
}

func (c *converter) regexLiteral(n *tree_sitter.Node) *estree.Node {
	raw := c.text(n)
	lit := c.make(estree.Literal, n)
	pattern := ""
	if p := field(n, "pattern"); p != nil {
		pattern = c.text(p)
	}
	flags := ""
	if f := field(n, "flags"); f != nil {
		flags = c.text(f)
	}
	lit.Set("value", estree.RegExp(raw))
	lit.Set("raw", estree.String(raw))
	regex := &estree.Node{}
	regex.Set("pattern", estree.String(pattern))
	regex.Set("flags", estree.String(flags))
	lit.Set("regex", regex)
	return lit
}
