package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/textpos"
)

// converter walks a tree-sitter CST and builds estree nodes. All positions
// are translated from byte offsets to UTF-16 offsets through units.
type converter struct {
	src     []byte
	units   *textpos.UnitTable
	dialect Dialect
	module  bool
}

func (c *converter) makeSpan(t estree.Type, start, end uint) *estree.Node {
	r, loc := c.units.Span(int(start), int(end))
	return estree.New(t, r, loc)
}

func (c *converter) make(t estree.Type, n *tree_sitter.Node) *estree.Node {
	return c.makeSpan(t, n.StartByte(), n.EndByte())
}

func (c *converter) text(n *tree_sitter.Node) string {
	return n.Utf8Text(c.src)
}

func (c *converter) skip(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "comment", "line_comment", "block_comment", "html_comment", "hash_bang_line":
		return true
	}
	if n.IsExtra() {
		return true
	}
	// Only reachable in tolerant mode.
	return n.IsError() || n.IsMissing()
}

// named returns the named children of n that carry syntax.
func (c *converter) named(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || c.skip(child) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c *converter) firstNamed(n *tree_sitter.Node) *tree_sitter.Node {
	if kids := c.named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child spelled like one of
// tokens.
func hasToken(n *tree_sitter.Node, tokens ...string) bool {
	return tokenChild(n, tokens...) != nil
}

func tokenChild(n *tree_sitter.Node, tokens ...string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.IsNamed() {
			continue
		}
		for _, tok := range tokens {
			if child.Kind() == tok {
				return child
			}
		}
	}
	return nil
}

func childOfKind(n *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}

func sameNode(a, b *tree_sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

func field(n *tree_sitter.Node, name string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

func appendNode(list estree.NodeList, n *estree.Node) estree.NodeList {
	if n == nil {
		return list
	}
	return append(list, n)
}

// program builds the root. Its range always covers the whole source so that
// every offset inside the buffer resolves to at least the Program node.
func (c *converter) program(n *tree_sitter.Node) *estree.Node {
	r := estree.Range{Start: 0, End: c.units.Len()}
	loc := estree.SourceLocation{Start: estree.Position{Line: 1}, End: c.units.Position(len(c.src))}
	prog := estree.New(estree.Program, r, loc)
	prog.Set("body", c.statements(c.named(n), true))
	sourceType := "script"
	if c.module {
		sourceType = "module"
	}
	prog.Set("sourceType", estree.String(sourceType))
	return prog
}

// statements converts a statement list. With prologue set, leading string
// expression statements are marked as directives.
func (c *converter) statements(kids []*tree_sitter.Node, prologue bool) estree.NodeList {
	out := estree.NodeList{}
	for _, k := range kids {
		s := c.node(k)
		if s == nil {
			continue
		}
		if prologue {
			if isStringStatement(s) {
				raw := s.Child("expression").Str("raw")
				s.Set("directive", estree.String(raw[1:len(raw)-1]))
			} else {
				prologue = false
			}
		}
		out = append(out, s)
	}
	return out
}

func isStringStatement(s *estree.Node) bool {
	if s.Type != estree.ExpressionStatement {
		return false
	}
	e := s.Child("expression")
	if e == nil || e.Type != estree.Literal {
		return false
	}
	v, ok := e.Scalar("value")
	return ok && v.Kind == estree.KindString
}

func (c *converter) block(n *tree_sitter.Node, prologue bool) *estree.Node {
	if n == nil {
		return nil
	}
	b := c.make(estree.BlockStatement, n)
	b.Set("body", c.statements(c.named(n), prologue))
	return b
}

// node converts any CST node, dispatching on its kind. Unknown kinds fall
// back to the generic conversion.
func (c *converter) node(n *tree_sitter.Node) *estree.Node {
	if n == nil || c.skip(n) {
		return nil
	}
	switch n.Kind() {
	case "expression_statement":
		inner := c.firstNamed(n)
		if inner != nil && inner.Kind() == "internal_module" {
			return c.tsModule(inner, n)
		}
		s := c.make(estree.ExpressionStatement, n)
		s.Set("expression", c.expr(inner))
		return s
	case "statement_block":
		return c.block(n, false)
	case "empty_statement":
		return c.make(estree.EmptyStatement, n)
	case "debugger_statement":
		return c.make(estree.DebuggerStatement, n)
	case "lexical_declaration", "variable_declaration":
		return c.variableDeclaration(n)
	case "variable_declarator":
		return c.variableDeclarator(n)
	case "return_statement":
		s := c.make(estree.ReturnStatement, n)
		s.Set("argument", c.expr(c.firstNamed(n)))
		return s
	case "throw_statement":
		s := c.make(estree.ThrowStatement, n)
		s.Set("argument", c.expr(c.firstNamed(n)))
		return s
	case "break_statement", "continue_statement":
		t := estree.BreakStatement
		if n.Kind() == "continue_statement" {
			t = estree.ContinueStatement
		}
		s := c.make(t, n)
		s.Set("label", c.identifier(field(n, "label")))
		return s
	case "labeled_statement":
		s := c.make(estree.LabeledStatement, n)
		s.Set("label", c.identifier(field(n, "label")))
		s.Set("body", c.node(field(n, "body")))
		return s
	case "if_statement":
		s := c.make(estree.IfStatement, n)
		s.Set("test", c.expr(field(n, "condition")))
		s.Set("consequent", c.node(field(n, "consequence")))
		var alt *estree.Node
		if e := field(n, "alternative"); e != nil {
			if e.Kind() == "else_clause" {
				alt = c.node(c.firstNamed(e))
			} else {
				alt = c.node(e)
			}
		}
		s.Set("alternate", alt)
		return s
	case "switch_statement":
		return c.switchStatement(n)
	case "while_statement":
		s := c.make(estree.WhileStatement, n)
		s.Set("test", c.expr(field(n, "condition")))
		s.Set("body", c.node(field(n, "body")))
		return s
	case "do_statement":
		s := c.make(estree.DoWhileStatement, n)
		s.Set("body", c.node(field(n, "body")))
		s.Set("test", c.expr(field(n, "condition")))
		return s
	case "for_statement":
		return c.forStatement(n)
	case "for_in_statement":
		return c.forInStatement(n)
	case "try_statement":
		return c.tryStatement(n)
	case "with_statement":
		s := c.make("WithStatement", n)
		s.Set("object", c.expr(field(n, "object")))
		s.Set("body", c.node(field(n, "body")))
		return s
	case "function_declaration", "generator_function_declaration":
		return c.function(estree.FunctionDeclaration, n)
	case "class_declaration", "abstract_class_declaration":
		return c.class(estree.ClassDeclaration, n)
	case "import_statement":
		return c.importDeclaration(n)
	case "export_statement":
		return c.exportDeclaration(n)
	case "decorator":
		d := c.make(estree.Decorator, n)
		d.Set("expression", c.expr(c.firstNamed(n)))
		return d
	}
	if c.dialect.TypeScript() {
		if s := c.tsDeclaration(n); s != nil {
			return s
		}
	}
	return c.expr(n)
}

func (c *converter) variableDeclaration(n *tree_sitter.Node) *estree.Node {
	d := c.make(estree.VariableDeclaration, n)
	kind := "var"
	if first := n.Child(0); first != nil && !first.IsNamed() {
		kind = first.Kind()
	}
	var decls estree.NodeList
	for _, k := range c.named(n) {
		if k.Kind() == "variable_declarator" {
			decls = appendNode(decls, c.variableDeclarator(k))
		}
	}
	if decls == nil {
		decls = estree.NodeList{}
	}
	d.Set("declarations", decls)
	d.Set("kind", estree.String(kind))
	d.Set("declare", estree.Bool(false))
	return d
}

func (c *converter) variableDeclarator(n *tree_sitter.Node) *estree.Node {
	d := c.make(estree.VariableDeclarator, n)
	d.Set("id", c.annotatedPattern(field(n, "name"), field(n, "type")))
	d.Set("init", c.expr(field(n, "value")))
	d.Set("definite", estree.Bool(hasToken(n, "!")))
	return d
}

// annotatedPattern converts a binding and attaches its type annotation. The
// binding's span is stretched over the annotation.
func (c *converter) annotatedPattern(name, typ *tree_sitter.Node) *estree.Node {
	p := c.pattern(name)
	if p == nil || typ == nil {
		return p
	}
	p.Set("typeAnnotation", c.typeAnnotation(typ))
	r, loc := c.units.Span(int(name.StartByte()), int(typ.EndByte()))
	p.Range, p.Loc = &r, &loc
	return p
}

func (c *converter) switchStatement(n *tree_sitter.Node) *estree.Node {
	s := c.make(estree.SwitchStatement, n)
	s.Set("discriminant", c.expr(field(n, "value")))
	cases := estree.NodeList{}
	for _, k := range c.named(field(n, "body")) {
		if k.Kind() != "switch_case" && k.Kind() != "switch_default" {
			continue
		}
		sc := c.make(estree.SwitchCase, k)
		value := field(k, "value")
		sc.Set("test", c.expr(value))
		var body []*tree_sitter.Node
		for _, stmt := range c.named(k) {
			if !sameNode(stmt, value) {
				body = append(body, stmt)
			}
		}
		sc.Set("consequent", c.statements(body, false))
		cases = append(cases, sc)
	}
	s.Set("cases", cases)
	return s
}

// clauseExpr unwraps the init/test slots of a for statement, which may be
// an expression statement or an empty statement.
func (c *converter) clauseExpr(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case "empty_statement", ";":
		return nil
	case "expression_statement":
		return c.expr(c.firstNamed(n))
	case "lexical_declaration", "variable_declaration":
		return c.variableDeclaration(n)
	}
	return c.expr(n)
}

func (c *converter) forStatement(n *tree_sitter.Node) *estree.Node {
	s := c.make(estree.ForStatement, n)
	s.Set("init", c.clauseExpr(field(n, "initializer")))
	s.Set("test", c.clauseExpr(field(n, "condition")))
	s.Set("update", c.clauseExpr(field(n, "increment")))
	s.Set("body", c.node(field(n, "body")))
	return s
}

func (c *converter) forInStatement(n *tree_sitter.Node) *estree.Node {
	t := estree.ForInStatement
	op := field(n, "operator")
	if op != nil && op.Kind() == "of" {
		t = estree.ForOfStatement
	}
	s := c.make(t, n)

	leftNode := field(n, "left")
	left := c.pattern(leftNode)
	if kind := field(n, "kind"); kind != nil && leftNode != nil {
		decl := c.makeSpan(estree.VariableDeclaration, kind.StartByte(), leftNode.EndByte())
		declarator := c.make(estree.VariableDeclarator, leftNode)
		declarator.Set("id", left)
		declarator.Set("init", nil)
		declarator.Set("definite", estree.Bool(false))
		decl.Set("declarations", estree.NodeList{declarator})
		decl.Set("kind", estree.String(kind.Kind()))
		decl.Set("declare", estree.Bool(false))
		left = decl
	}
	s.Set("left", left)
	s.Set("right", c.expr(field(n, "right")))
	s.Set("body", c.node(field(n, "body")))
	if t == estree.ForOfStatement {
		s.Set("await", estree.Bool(hasToken(n, "await")))
	}
	return s
}

func (c *converter) tryStatement(n *tree_sitter.Node) *estree.Node {
	s := c.make(estree.TryStatement, n)
	s.Set("block", c.block(field(n, "body"), false))

	var handler *estree.Node
	if h := field(n, "handler"); h != nil {
		handler = c.make(estree.CatchClause, h)
		handler.Set("param", c.annotatedPattern(field(h, "parameter"), field(h, "type")))
		handler.Set("body", c.block(field(h, "body"), false))
	}
	s.Set("handler", handler)

	var finalizer *estree.Node
	if f := field(n, "finalizer"); f != nil {
		finalizer = c.block(field(f, "body"), false)
	}
	s.Set("finalizer", finalizer)
	return s
}

// function builds FunctionDeclaration and FunctionExpression nodes.
func (c *converter) function(t estree.Type, n *tree_sitter.Node) *estree.Node {
	fn := c.make(t, n)
	fn.Set("id", c.identifier(field(n, "name")))
	c.fillFunction(fn, n)
	return fn
}

func (c *converter) fillFunction(fn *estree.Node, n *tree_sitter.Node) {
	if tp := field(n, "type_parameters"); tp != nil {
		fn.Set("typeParameters", c.typeParameters(tp))
	}
	fn.Set("params", c.params(n))
	if rt := field(n, "return_type"); rt != nil {
		fn.Set("returnType", c.typeAnnotation(rt))
	}
	body := field(n, "body")
	if body != nil && body.Kind() == "statement_block" {
		fn.Set("body", c.block(body, true))
		fn.Set("expression", estree.Bool(false))
	} else {
		fn.Set("body", c.expr(body))
		fn.Set("expression", estree.Bool(body != nil))
	}
	fn.Set("async", estree.Bool(hasToken(n, "async")))
	fn.Set("generator", estree.Bool(hasToken(n, "*")))
}

// params collects the parameter list of a function-like node.
func (c *converter) params(n *tree_sitter.Node) estree.NodeList {
	out := estree.NodeList{}
	if single := field(n, "parameter"); single != nil {
		return appendNode(out, c.pattern(single))
	}
	list := field(n, "parameters")
	for _, p := range c.named(list) {
		out = appendNode(out, c.param(p))
	}
	return out
}

func (c *converter) param(n *tree_sitter.Node) *estree.Node {
	switch n.Kind() {
	case "required_parameter", "optional_parameter":
	default:
		return c.pattern(n)
	}
	pat := field(n, "pattern")
	typ := field(n, "type")
	p := c.annotatedPattern(pat, typ)
	if p == nil {
		return nil
	}
	if n.Kind() == "optional_parameter" {
		p.Set("optional", estree.Bool(true))
	}
	for _, d := range c.named(n) {
		if d.Kind() == "decorator" {
			p.Set("decorators", appendNode(p.List("decorators"), c.node(d)))
		}
	}
	if value := field(n, "value"); value != nil {
		ap := c.makeSpan(estree.AssignmentPattern, pat.StartByte(), value.EndByte())
		ap.Set("left", p)
		ap.Set("right", c.expr(value))
		p = ap
	}
	access := childOfKind(n, "accessibility_modifier")
	readonly := hasToken(n, "readonly")
	override := childOfKind(n, "override_modifier") != nil
	if access == nil && !readonly && !override {
		return p
	}
	prop := c.make(estree.TSParameterProperty, n)
	if access != nil {
		prop.Set("accessibility", estree.String(c.text(access)))
	}
	prop.Set("readonly", estree.Bool(readonly))
	prop.Set("override", estree.Bool(override))
	prop.Set("static", estree.Bool(false))
	prop.Set("parameter", p)
	return prop
}

// class builds ClassDeclaration and ClassExpression nodes.
func (c *converter) class(t estree.Type, n *tree_sitter.Node) *estree.Node {
	cl := c.make(t, n)
	cl.Set("decorators", c.decorators(n))
	cl.Set("id", c.identifier(field(n, "name")))
	if tp := field(n, "type_parameters"); tp != nil {
		cl.Set("typeParameters", c.typeParameters(tp))
	}
	var super *estree.Node
	implements := estree.NodeList{}
	if heritage := childOfKind(n, "class_heritage"); heritage != nil {
		for _, h := range c.named(heritage) {
			switch h.Kind() {
			case "extends_clause":
				super = c.expr(field(h, "value"))
				if ta := field(h, "type_arguments"); ta != nil {
					cl.Set("superTypeArguments", c.typeArguments(ta))
				}
			case "implements_clause":
				for _, typ := range c.named(h) {
					implements = appendNode(implements, c.heritage("TSClassImplements", typ))
				}
			default:
				super = c.expr(h)
			}
		}
	}
	cl.Set("superClass", super)
	cl.Set("implements", implements)
	cl.Set("body", c.classBody(field(n, "body")))
	cl.Set("abstract", estree.Bool(n.Kind() == "abstract_class_declaration"))
	cl.Set("declare", estree.Bool(false))
	return cl
}

func (c *converter) decorators(n *tree_sitter.Node) estree.NodeList {
	out := estree.NodeList{}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil && child.Kind() == "decorator" {
			out = appendNode(out, c.node(child))
		}
	}
	return out
}

func (c *converter) classBody(n *tree_sitter.Node) *estree.Node {
	if n == nil {
		return nil
	}
	body := c.make(estree.ClassBody, n)
	members := estree.NodeList{}
	// Method decorators are siblings of the method in the class body.
	var pending []*tree_sitter.Node
	for _, m := range c.named(n) {
		var member *estree.Node
		switch m.Kind() {
		case "decorator":
			pending = append(pending, m)
			continue
		case "method_definition", "method_signature":
			member = c.method(estree.MethodDefinition, m)
		case "abstract_method_signature":
			member = c.method(estree.TSAbstractMethodDefinition, m)
		case "field_definition", "public_field_definition":
			member = c.propertyDefinition(m)
		case "class_static_block":
			member = c.make(estree.StaticBlock, m)
			member.Set("body", c.statements(c.named(field(m, "body")), false))
		default:
			member = c.node(m)
		}
		if member != nil && len(pending) > 0 {
			c.attachDecorators(member, pending, m.EndByte())
		}
		pending = nil
		members = appendNode(members, member)
	}
	body.Set("body", members)
	return body
}

// attachDecorators prepends decorators to member and widens its span to
// start at the first of them.
func (c *converter) attachDecorators(member *estree.Node, decorators []*tree_sitter.Node, end uint) {
	list := estree.NodeList{}
	for _, d := range decorators {
		list = appendNode(list, c.node(d))
	}
	member.Set("decorators", append(list, member.List("decorators")...))
	span := c.makeSpan(member.Type, decorators[0].StartByte(), end)
	member.Range, member.Loc = span.Range, span.Loc
}

func (c *converter) memberModifiers(node *estree.Node, n *tree_sitter.Node) {
	node.Set("static", estree.Bool(hasToken(n, "static")))
	node.Set("override", estree.Bool(childOfKind(n, "override_modifier") != nil))
	node.Set("optional", estree.Bool(hasToken(n, "?")))
	if access := childOfKind(n, "accessibility_modifier"); access != nil {
		node.Set("accessibility", estree.String(c.text(access)))
	}
}

// method builds class methods. The function value starts at the parameter
// list, as in typescript-estree.
func (c *converter) method(t estree.Type, n *tree_sitter.Node) *estree.Node {
	name := field(n, "name")
	key, computed := c.propertyKey(name)
	kind := "method"
	switch {
	case hasToken(n, "get"):
		kind = "get"
	case hasToken(n, "set"):
		kind = "set"
	case !computed && key != nil && (key.Str("name") == "constructor" || key.Str("value") == "constructor"):
		kind = "constructor"
	}

	m := c.make(t, n)
	m.Set("decorators", c.decorators(n))
	m.Set("key", key)
	m.Set("value", c.methodValue(n, name))
	m.Set("kind", estree.String(kind))
	m.Set("computed", estree.Bool(computed))
	c.memberModifiers(m, n)
	return m
}

func (c *converter) methodValue(n, name *tree_sitter.Node) *estree.Node {
	start := n.EndByte()
	if tp := field(n, "type_parameters"); tp != nil {
		start = tp.StartByte()
	} else if params := field(n, "parameters"); params != nil {
		start = params.StartByte()
	} else if name != nil {
		start = name.EndByte()
	}
	t := estree.FunctionExpression
	if field(n, "body") == nil {
		t = "TSEmptyBodyFunctionExpression"
	}
	fn := c.makeSpan(t, start, n.EndByte())
	fn.Set("id", nil)
	c.fillFunction(fn, n)
	return fn
}

func (c *converter) propertyDefinition(n *tree_sitter.Node) *estree.Node {
	name := field(n, "name")
	if name == nil {
		name = field(n, "property")
	}
	key, computed := c.propertyKey(name)
	t := estree.PropertyDefinition
	if hasToken(n, "abstract") {
		t = "TSAbstractPropertyDefinition"
	}
	p := c.make(t, n)
	p.Set("decorators", c.decorators(n))
	p.Set("key", key)
	if typ := field(n, "type"); typ != nil {
		p.Set("typeAnnotation", c.typeAnnotation(typ))
	}
	p.Set("value", c.expr(field(n, "value")))
	p.Set("computed", estree.Bool(computed))
	p.Set("declare", estree.Bool(hasToken(n, "declare")))
	p.Set("readonly", estree.Bool(hasToken(n, "readonly")))
	p.Set("definite", estree.Bool(hasToken(n, "!")))
	c.memberModifiers(p, n)
	return p
}

// propertyKey converts an object or class member name.
func (c *converter) propertyKey(n *tree_sitter.Node) (*estree.Node, bool) {
	if n == nil {
		return nil, false
	}
	switch n.Kind() {
	case "computed_property_name":
		return c.expr(c.firstNamed(n)), true
	case "property_identifier", "identifier", "type_identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern":
		return c.identifier(n), false
	}
	return c.expr(n), false
}

func (c *converter) importDeclaration(n *tree_sitter.Node) *estree.Node {
	c.module = true
	d := c.make(estree.ImportDeclaration, n)
	specifiers := estree.NodeList{}
	if clause := childOfKind(n, "import_clause"); clause != nil {
		for _, k := range c.named(clause) {
			switch k.Kind() {
			case "identifier":
				s := c.make(estree.ImportDefaultSpecifier, k)
				s.Set("local", c.identifier(k))
				specifiers = append(specifiers, s)
			case "namespace_import":
				s := c.make(estree.ImportNamespaceSpecifier, k)
				s.Set("local", c.identifier(c.firstNamed(k)))
				specifiers = append(specifiers, s)
			case "named_imports":
				for _, spec := range c.named(k) {
					if spec.Kind() != "import_specifier" {
						continue
					}
					s := c.make(estree.ImportSpecifier, spec)
					name := field(spec, "name")
					local := field(spec, "alias")
					if local == nil {
						local = name
					}
					s.Set("imported", c.moduleName(name))
					s.Set("local", c.identifier(local))
					s.Set("importKind", estree.String(importKind(spec)))
					specifiers = append(specifiers, s)
				}
			}
		}
	}
	d.Set("specifiers", specifiers)
	d.Set("source", c.expr(field(n, "source")))
	d.Set("importKind", estree.String(importKind(n)))
	d.Set("attributes", estree.NodeList{})
	return d
}

func importKind(n *tree_sitter.Node) string {
	if hasToken(n, "type", "typeof") {
		return "type"
	}
	return "value"
}

// moduleName converts an import/export name, which may be a string.
func (c *converter) moduleName(n *tree_sitter.Node) *estree.Node {
	if n != nil && n.Kind() == "string" {
		return c.expr(n)
	}
	return c.identifier(n)
}

func (c *converter) exportDeclaration(n *tree_sitter.Node) *estree.Node {
	c.module = true
	isDefault := hasToken(n, "default")
	if decl := field(n, "declaration"); decl != nil {
		if isDefault {
			d := c.make(estree.ExportDefaultDeclaration, n)
			d.Set("declaration", c.node(decl))
			d.Set("exportKind", estree.String("value"))
			return d
		}
		d := c.make(estree.ExportNamedDeclaration, n)
		d.Set("declaration", c.node(decl))
		d.Set("specifiers", estree.NodeList{})
		d.Set("source", nil)
		d.Set("exportKind", estree.String(exportKind(decl)))
		d.Set("attributes", estree.NodeList{})
		return d
	}
	if value := field(n, "value"); value != nil {
		if hasToken(n, "=") {
			d := c.make(estree.TSExportAssignment, n)
			d.Set("expression", c.expr(value))
			return d
		}
		d := c.make(estree.ExportDefaultDeclaration, n)
		d.Set("declaration", c.expr(value))
		d.Set("exportKind", estree.String("value"))
		return d
	}
	source := field(n, "source")
	if clause := childOfKind(n, "export_clause"); clause != nil {
		d := c.make(estree.ExportNamedDeclaration, n)
		specifiers := estree.NodeList{}
		for _, spec := range c.named(clause) {
			if spec.Kind() != "export_specifier" {
				continue
			}
			s := c.make(estree.ExportSpecifier, spec)
			name := field(spec, "name")
			alias := field(spec, "alias")
			if alias == nil {
				alias = name
			}
			s.Set("local", c.moduleName(name))
			s.Set("exported", c.moduleName(alias))
			s.Set("exportKind", estree.String(importKind(spec)))
			specifiers = append(specifiers, s)
		}
		d.Set("declaration", nil)
		d.Set("specifiers", specifiers)
		d.Set("source", c.expr(source))
		d.Set("exportKind", estree.String(importKind(n)))
		d.Set("attributes", estree.NodeList{})
		return d
	}
	if hasToken(n, "*") || childOfKind(n, "namespace_export") != nil {
		d := c.make(estree.ExportAllDeclaration, n)
		var exported *estree.Node
		if ns := childOfKind(n, "namespace_export"); ns != nil {
			exported = c.moduleName(c.firstNamed(ns))
		}
		d.Set("exported", exported)
		d.Set("source", c.expr(source))
		d.Set("exportKind", estree.String(importKind(n)))
		d.Set("attributes", estree.NodeList{})
		return d
	}
	return c.generic(n)
}

func exportKind(decl *tree_sitter.Node) string {
	switch decl.Kind() {
	case "interface_declaration", "type_alias_declaration":
		return "type"
	}
	return "value"
}
