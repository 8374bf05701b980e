package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

var keywordTypes = map[string]estree.Type{
	"any":       "TSAnyKeyword",
	"unknown":   "TSUnknownKeyword",
	"never":     "TSNeverKeyword",
	"void":      "TSVoidKeyword",
	"undefined": "TSUndefinedKeyword",
	"null":      "TSNullKeyword",
	"string":    "TSStringKeyword",
	"number":    "TSNumberKeyword",
	"boolean":   "TSBooleanKeyword",
	"bigint":    "TSBigIntKeyword",
	"symbol":    "TSSymbolKeyword",
	"object":    "TSObjectKeyword",
	"intrinsic": "TSIntrinsicKeyword",
}

// tsDeclaration converts TypeScript-only statements. It returns nil for
// kinds it does not know.
func (c *converter) tsDeclaration(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "interface_declaration":
		d := c.make(estree.TSInterfaceDeclaration, n)
		d.Set("id", c.identifier(field(n, "name")))
		if tp := field(n, "type_parameters"); tp != nil {
			d.Set("typeParameters", c.typeParameters(tp))
		}
		extends := estree.NodeList{}
		if clause := childOfKind(n, "extends_type_clause"); clause != nil {
			for _, typ := range c.named(clause) {
				extends = appendNode(extends, c.heritage(estree.TSInterfaceHeritage, typ))
			}
		}
		d.Set("extends", extends)
		if body := field(n, "body"); body != nil {
			ib := c.make(estree.TSInterfaceBody, body)
			ib.Set("body", c.signatures(body))
			d.Set("body", ib)
		}
		d.Set("declare", estree.Bool(false))
		return d
	case "type_alias_declaration":
		d := c.make(estree.TSTypeAliasDeclaration, n)
		d.Set("id", c.identifier(field(n, "name")))
		if tp := field(n, "type_parameters"); tp != nil {
			d.Set("typeParameters", c.typeParameters(tp))
		}
		d.Set("typeAnnotation", c.tsType(field(n, "value")))
		d.Set("declare", estree.Bool(false))
		return d
	case "enum_declaration":
		d := c.make(estree.TSEnumDeclaration, n)
		d.Set("id", c.identifier(field(n, "name")))
		members := estree.NodeList{}
		for _, m := range c.named(field(n, "body")) {
			member := c.make(estree.TSEnumMember, m)
			if m.Kind() == "enum_assignment" {
				key, computed := c.propertyKey(field(m, "name"))
				member.Set("id", key)
				member.Set("initializer", c.expr(field(m, "value")))
				member.Set("computed", estree.Bool(computed))
			} else {
				key, computed := c.propertyKey(m)
				member.Set("id", key)
				member.Set("computed", estree.Bool(computed))
			}
			members = append(members, member)
		}
		d.Set("members", members)
		d.Set("const", estree.Bool(hasToken(n, "const")))
		d.Set("declare", estree.Bool(false))
		return d
	case "internal_module", "module":
		return c.tsModule(n, n)
	case "function_signature":
		fn := c.make(estree.TSDeclareFunction, n)
		fn.Set("id", c.identifier(field(n, "name")))
		c.fillFunction(fn, n)
		fn.Set("declare", estree.Bool(false))
		return fn
	case "ambient_declaration":
		inner := c.firstNamed(n)
		if inner == nil {
			return c.generic(n)
		}
		if inner.Kind() == "statement_block" {
			// declare global { ... }
			d := c.make(estree.TSModuleDeclaration, n)
			id := tokenChild(n, "global")
			if id != nil {
				d.Set("id", c.identifier(id))
			}
			mb := c.make(estree.TSModuleBlock, inner)
			mb.Set("body", c.statements(c.named(inner), false))
			d.Set("body", mb)
			d.Set("kind", estree.String("global"))
			d.Set("declare", estree.Bool(true))
			return d
		}
		d := c.node(inner)
		if d == nil {
			return nil
		}
		r, loc := c.units.Span(int(n.StartByte()), int(n.EndByte()))
		d.Range, d.Loc = &r, &loc
		d.Set("declare", estree.Bool(true))
		return d
	case "import_alias":
		d := c.make("TSImportEqualsDeclaration", n)
		kids := c.named(n)
		if len(kids) > 0 {
			d.Set("id", c.identifier(kids[0]))
		}
		if len(kids) > 1 {
			d.Set("moduleReference", c.entityName(kids[1]))
		}
		d.Set("importKind", estree.String("value"))
		return d
	}
	return nil
}

// tsModule builds a TSModuleDeclaration from a namespace or module node; span
// is the node whose range the declaration takes.
func (c *converter) tsModule(n, span *tree_sitter.Node) *estree.Node {
	d := c.make(estree.TSModuleDeclaration, span)
	d.Set("id", c.entityName(field(n, "name")))
	if body := field(n, "body"); body != nil {
		mb := c.make(estree.TSModuleBlock, body)
		mb.Set("body", c.statements(c.named(body), false))
		d.Set("body", mb)
	}
	kind := "namespace"
	if n.Kind() == "module" {
		kind = "module"
	}
	d.Set("kind", estree.String(kind))
	d.Set("declare", estree.Bool(false))
	return d
}

// entityName converts dotted names (A.B.C) to nested TSQualifiedName nodes.
func (c *converter) entityName(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "nested_identifier", "nested_type_identifier", "member_expression":
		kids := c.named(n)
		if len(kids) < 2 {
			return c.identifier(n)
		}
		q := c.make(estree.TSQualifiedName, n)
		q.Set("left", c.entityName(kids[0]))
		q.Set("right", c.identifier(kids[len(kids)-1]))
		return q
	case "string":
		return c.expr(n)
	}
	return c.identifier(n)
}

// tsExpression converts TypeScript-only expressions.
func (c *converter) tsExpression(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "as_expression", "satisfies_expression":
		t := estree.TSAsExpression
		if n.Kind() == "satisfies_expression" {
			t = estree.TSSatisfiesExpression
		}
		e := c.make(t, n)
		kids := c.named(n)
		if len(kids) > 0 {
			e.Set("expression", c.expr(kids[0]))
		}
		if len(kids) > 1 {
			e.Set("typeAnnotation", c.tsType(kids[1]))
		} else if tok := tokenChild(n, "const"); tok != nil {
			ref := c.make(estree.TSTypeReference, tok)
			ref.Set("typeName", c.identifier(tok))
			e.Set("typeAnnotation", ref)
		}
		return e
	case "non_null_expression":
		e := c.make(estree.TSNonNullExpression, n)
		e.Set("expression", c.expr(c.firstNamed(n)))
		return e
	case "type_assertion":
		e := c.make(estree.TSTypeAssertion, n)
		kids := c.named(n)
		if len(kids) > 0 {
			e.Set("typeAnnotation", c.tsType(c.firstNamed(kids[0])))
		}
		if len(kids) > 1 {
			e.Set("expression", c.expr(kids[1]))
		}
		return e
	case "instantiation_expression":
		e := c.make("TSInstantiationExpression", n)
		e.Set("expression", c.expr(field(n, "function")))
		e.Set("typeArguments", c.typeArguments(field(n, "type_arguments")))
		return e
	case "predefined_type", "union_type", "intersection_type", "generic_type", "literal_type",
		"object_type", "array_type", "tuple_type", "function_type", "type_query", "lookup_type",
		"conditional_type", "index_type_query", "readonly_type", "nested_type_identifier":
		return c.tsType(n)
	}
	return nil
}

func (c *converter) typeAnnotation(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	a := c.make(estree.TSTypeAnnotation, n)
	switch n.Kind() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation", "adding_type_annotation":
		a.Set("typeAnnotation", c.tsType(c.firstNamed(n)))
	default:
		a.Set("typeAnnotation", c.tsType(n))
	}
	return a
}

func (c *converter) typeArguments(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	a := c.make(estree.TSTypeParameterInstantiation, n)
	params := estree.NodeList{}
	for _, k := range c.named(n) {
		params = appendNode(params, c.tsType(k))
	}
	a.Set("params", params)
	return a
}

func (c *converter) typeParameters(n *tree_sitter.Node) *estree.Node {
	d := c.make(estree.TSTypeParameterDeclaration, n)
	params := estree.NodeList{}
	for _, k := range c.named(n) {
		if k.Kind() != "type_parameter" {
			continue
		}
		p := c.make(estree.TSTypeParameter, k)
		p.Set("name", c.identifier(field(k, "name")))
		if cons := field(k, "constraint"); cons != nil {
			p.Set("constraint", c.tsType(c.firstNamed(cons)))
		}
		if def := field(k, "value"); def != nil {
			p.Set("default", c.tsType(c.firstNamed(def)))
		}
		p.Set("in", estree.Bool(hasToken(k, "in")))
		p.Set("out", estree.Bool(hasToken(k, "out")))
		p.Set("const", estree.Bool(hasToken(k, "const")))
		params = append(params, p)
	}
	d.Set("params", params)
	return d
}

// heritage builds TSInterfaceHeritage / TSClassImplements nodes.
func (c *converter) heritage(t estree.Type, n *tree_sitter.Node) *estree.Node {
	h := c.make(t, n)
	name := n
	if n.Kind() == "generic_type" {
		name = field(n, "name")
		h.Set("typeArguments", c.typeArguments(field(n, "type_arguments")))
	}
	h.Set("expression", c.entityExpression(name))
	return h
}

// entityExpression converts dotted type names used as values.
func (c *converter) entityExpression(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	if n.Kind() == "nested_type_identifier" || n.Kind() == "nested_identifier" {
		kids := c.named(n)
		if len(kids) >= 2 {
			m := c.make(estree.MemberExpression, n)
			m.Set("object", c.entityExpression(kids[0]))
			m.Set("property", c.identifier(kids[len(kids)-1]))
			m.Set("computed", estree.Bool(false))
			m.Set("optional", estree.Bool(false))
			return m
		}
	}
	return c.identifier(n)
}

// tsType converts a node in type position.
func (c *converter) tsType(n *tree_sitter.Node) *estree.Node {
	if n == nil || c.skip(n) {
		return nil
	}
	switch n.Kind() {
	case "predefined_type":
		if t, ok := keywordTypes[c.text(n)]; ok {
			return c.make(t, n)
		}
		return c.make("TS"+estree.Type(pascalCase(c.text(n)))+"Keyword", n)
	case "type_identifier", "identifier", "nested_type_identifier":
		ref := c.make(estree.TSTypeReference, n)
		ref.Set("typeName", c.entityName(n))
		return ref
	case "generic_type":
		ref := c.make(estree.TSTypeReference, n)
		ref.Set("typeName", c.entityName(field(n, "name")))
		ref.Set("typeArguments", c.typeArguments(field(n, "type_arguments")))
		return ref
	case "this_type", "this":
		return c.make("TSThisType", n)
	case "union_type", "intersection_type":
		t := estree.TSUnionType
		if n.Kind() == "intersection_type" {
			t = estree.TSIntersectionType
		}
		u := c.make(t, n)
		u.Set("types", c.flattenTypes(n, n.Kind(), estree.NodeList{}))
		return u
	case "array_type":
		a := c.make(estree.TSArrayType, n)
		a.Set("elementType", c.tsType(c.firstNamed(n)))
		return a
	case "tuple_type":
		a := c.make(estree.TSTupleType, n)
		elems := estree.NodeList{}
		for _, k := range c.named(n) {
			elems = appendNode(elems, c.tsType(k))
		}
		a.Set("elementTypes", elems)
		return a
	case "optional_type":
		o := c.make("TSOptionalType", n)
		o.Set("typeAnnotation", c.tsType(c.firstNamed(n)))
		return o
	case "rest_type":
		r := c.make("TSRestType", n)
		r.Set("typeAnnotation", c.tsType(c.firstNamed(n)))
		return r
	case "literal_type":
		inner := c.firstNamed(n)
		if inner == nil {
			return c.generic(n)
		}
		switch inner.Kind() {
		case "null":
			return c.make("TSNullKeyword", n)
		case "undefined":
			return c.make("TSUndefinedKeyword", n)
		}
		l := c.make(estree.TSLiteralType, n)
		l.Set("literal", c.expr(inner))
		return l
	case "template_literal_type":
		return c.generic(n)
	case "object_type":
		o := c.make(estree.TSTypeLiteral, n)
		o.Set("members", c.signatures(n))
		return o
	case "function_type", "constructor_type":
		t := estree.TSFunctionType
		if n.Kind() == "constructor_type" {
			t = "TSConstructorType"
		}
		f := c.make(t, n)
		if tp := field(n, "type_parameters"); tp != nil {
			f.Set("typeParameters", c.typeParameters(tp))
		}
		f.Set("params", c.params(n))
		if rt := field(n, "return_type"); rt != nil {
			start := rt.StartByte()
			if arrow := tokenChild(n, "=>"); arrow != nil {
				start = arrow.StartByte()
			}
			ann := c.makeSpan(estree.TSTypeAnnotation, start, rt.EndByte())
			ann.Set("typeAnnotation", c.tsType(rt))
			f.Set("returnType", ann)
		}
		return f
	case "parenthesized_type":
		return c.tsType(c.firstNamed(n))
	case "type_query":
		q := c.make(estree.TSTypeQuery, n)
		q.Set("exprName", c.entityName(c.firstNamed(n)))
		return q
	case "index_type_query":
		o := c.make(estree.TSTypeOperator, n)
		o.Set("operator", estree.String("keyof"))
		o.Set("typeAnnotation", c.tsType(c.firstNamed(n)))
		return o
	case "readonly_type":
		o := c.make(estree.TSTypeOperator, n)
		o.Set("operator", estree.String("readonly"))
		o.Set("typeAnnotation", c.tsType(c.firstNamed(n)))
		return o
	case "lookup_type":
		kids := c.named(n)
		l := c.make(estree.TSIndexedAccessType, n)
		if len(kids) > 0 {
			l.Set("objectType", c.tsType(kids[0]))
		}
		if len(kids) > 1 {
			l.Set("indexType", c.tsType(kids[1]))
		}
		return l
	case "conditional_type":
		ct := c.make(estree.TSConditionalType, n)
		ct.Set("checkType", c.tsType(field(n, "left")))
		ct.Set("extendsType", c.tsType(field(n, "right")))
		ct.Set("trueType", c.tsType(field(n, "consequence")))
		ct.Set("falseType", c.tsType(field(n, "alternative")))
		return ct
	case "infer_type":
		it := c.make("TSInferType", n)
		tp := c.make(estree.TSTypeParameter, n)
		tp.Set("name", c.identifier(c.firstNamed(n)))
		it.Set("typeParameter", tp)
		return it
	case "type_predicate", "type_predicate_annotation", "asserts", "asserts_annotation":
		if n.Kind() == "type_predicate_annotation" || n.Kind() == "asserts_annotation" {
			return c.tsType(c.firstNamed(n))
		}
		p := c.make("TSTypePredicate", n)
		p.Set("asserts", estree.Bool(hasToken(n, "asserts") || n.Kind() == "asserts"))
		kids := c.named(n)
		if len(kids) > 0 {
			p.Set("parameterName", c.identifier(kids[0]))
		}
		if len(kids) > 1 {
			ann := c.make(estree.TSTypeAnnotation, kids[1])
			ann.Set("typeAnnotation", c.tsType(kids[1]))
			p.Set("typeAnnotation", ann)
		}
		return p
	case "type_annotation":
		return c.tsType(c.firstNamed(n))
	}
	return c.generic(n)
}

func (c *converter) flattenTypes(n *tree_sitter.Node, kind string, out estree.NodeList) estree.NodeList {
	for _, k := range c.named(n) {
		if k.Kind() == kind {
			out = c.flattenTypes(k, kind, out)
			continue
		}
		out = appendNode(out, c.tsType(k))
	}
	return out
}

// signatures converts the members of an interface body or object type.
func (c *converter) signatures(n *tree_sitter.Node) estree.NodeList {
	out := estree.NodeList{}
	for _, m := range c.named(n) {
		out = appendNode(out, c.signature(m))
	}
	return out
}

func (c *converter) signature(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "property_signature":
		key, computed := c.propertyKey(field(n, "name"))
		s := c.make(estree.TSPropertySignature, n)
		s.Set("key", key)
		s.Set("computed", estree.Bool(computed))
		s.Set("optional", estree.Bool(hasToken(n, "?")))
		s.Set("readonly", estree.Bool(hasToken(n, "readonly")))
		s.Set("static", estree.Bool(false))
		if typ := field(n, "type"); typ != nil {
			s.Set("typeAnnotation", c.typeAnnotation(typ))
		}
		return s
	case "method_signature":
		key, computed := c.propertyKey(field(n, "name"))
		s := c.make(estree.TSMethodSignature, n)
		s.Set("key", key)
		s.Set("computed", estree.Bool(computed))
		s.Set("optional", estree.Bool(hasToken(n, "?")))
		kind := "method"
		if hasToken(n, "get") {
			kind = "get"
		} else if hasToken(n, "set") {
			kind = "set"
		}
		s.Set("kind", estree.String(kind))
		c.fillSignature(s, n)
		return s
	case "call_signature":
		s := c.make(estree.TSCallSignatureDeclaration, n)
		c.fillSignature(s, n)
		return s
	case "construct_signature":
		s := c.make(estree.TSConstructSignatureDeclaration, n)
		c.fillSignature(s, n)
		return s
	case "index_signature":
		s := c.make(estree.TSIndexSignature, n)
		params := estree.NodeList{}
		if name := field(n, "name"); name != nil {
			idx := field(n, "index_type")
			p := c.identifier(name)
			if idx != nil {
				r, loc := c.units.Span(int(name.StartByte()), int(idx.EndByte()))
				p.Range, p.Loc = &r, &loc
				ann := c.makeSpan(estree.TSTypeAnnotation, name.EndByte(), idx.EndByte())
				ann.Set("typeAnnotation", c.tsType(idx))
				p.Set("typeAnnotation", ann)
			}
			params = append(params, p)
		}
		s.Set("parameters", params)
		if typ := field(n, "type"); typ != nil {
			s.Set("typeAnnotation", c.typeAnnotation(typ))
		}
		s.Set("readonly", estree.Bool(hasToken(n, "readonly")))
		s.Set("static", estree.Bool(hasToken(n, "static")))
		return s
	}
	return c.node(n)
}

func (c *converter) fillSignature(s *estree.Node, n *tree_sitter.Node) {
	if tp := field(n, "type_parameters"); tp != nil {
		s.Set("typeParameters", c.typeParameters(tp))
	}
	s.Set("params", c.params(n))
	if rt := field(n, "return_type"); rt != nil {
		s.Set("returnType", c.typeAnnotation(rt))
	}
}

// pascalCase turns a grammar kind such as "if_statement" into "IfStatement".
func pascalCase(kind string) string {
	parts := strings.FieldsFunc(kind, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	if b.Len() == 0 {
		return kind
	}
	return b.String()
}
