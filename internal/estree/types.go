package estree

import "strings"

// Node types produced by the TypeScript/JavaScript converter.
const (
	Program Type = "Program"

	// Statements
	ExpressionStatement Type = "ExpressionStatement"
	BlockStatement      Type = "BlockStatement"
	EmptyStatement      Type = "EmptyStatement"
	DebuggerStatement   Type = "DebuggerStatement"
	ReturnStatement     Type = "ReturnStatement"
	BreakStatement      Type = "BreakStatement"
	ContinueStatement   Type = "ContinueStatement"
	LabeledStatement    Type = "LabeledStatement"
	IfStatement         Type = "IfStatement"
	SwitchStatement     Type = "SwitchStatement"
	SwitchCase          Type = "SwitchCase"
	ThrowStatement      Type = "ThrowStatement"
	TryStatement        Type = "TryStatement"
	CatchClause         Type = "CatchClause"
	WhileStatement      Type = "WhileStatement"
	DoWhileStatement    Type = "DoWhileStatement"
	ForStatement        Type = "ForStatement"
	ForInStatement      Type = "ForInStatement"
	ForOfStatement      Type = "ForOfStatement"

	// Declarations
	FunctionDeclaration      Type = "FunctionDeclaration"
	VariableDeclaration      Type = "VariableDeclaration"
	VariableDeclarator       Type = "VariableDeclarator"
	ClassDeclaration         Type = "ClassDeclaration"
	ClassBody                Type = "ClassBody"
	MethodDefinition         Type = "MethodDefinition"
	PropertyDefinition       Type = "PropertyDefinition"
	StaticBlock              Type = "StaticBlock"
	ImportDeclaration        Type = "ImportDeclaration"
	ImportSpecifier          Type = "ImportSpecifier"
	ImportDefaultSpecifier   Type = "ImportDefaultSpecifier"
	ImportNamespaceSpecifier Type = "ImportNamespaceSpecifier"
	ExportNamedDeclaration   Type = "ExportNamedDeclaration"
	ExportSpecifier          Type = "ExportSpecifier"
	ExportDefaultDeclaration Type = "ExportDefaultDeclaration"
	ExportAllDeclaration     Type = "ExportAllDeclaration"
	Decorator                Type = "Decorator"

	// Expressions
	Identifier               Type = "Identifier"
	PrivateIdentifier        Type = "PrivateIdentifier"
	Literal                  Type = "Literal"
	TemplateLiteral          Type = "TemplateLiteral"
	TemplateElement          Type = "TemplateElement"
	TaggedTemplateExpression Type = "TaggedTemplateExpression"
	ThisExpression           Type = "ThisExpression"
	Super                    Type = "Super"
	ArrayExpression          Type = "ArrayExpression"
	ObjectExpression         Type = "ObjectExpression"
	Property                 Type = "Property"
	FunctionExpression       Type = "FunctionExpression"
	ArrowFunctionExpression  Type = "ArrowFunctionExpression"
	ClassExpression          Type = "ClassExpression"
	UnaryExpression          Type = "UnaryExpression"
	UpdateExpression         Type = "UpdateExpression"
	BinaryExpression         Type = "BinaryExpression"
	LogicalExpression        Type = "LogicalExpression"
	AssignmentExpression     Type = "AssignmentExpression"
	ConditionalExpression    Type = "ConditionalExpression"
	CallExpression           Type = "CallExpression"
	NewExpression            Type = "NewExpression"
	MemberExpression         Type = "MemberExpression"
	ChainExpression          Type = "ChainExpression"
	SequenceExpression       Type = "SequenceExpression"
	YieldExpression          Type = "YieldExpression"
	AwaitExpression          Type = "AwaitExpression"
	ImportExpression         Type = "ImportExpression"
	MetaProperty             Type = "MetaProperty"
	SpreadElement            Type = "SpreadElement"

	// Patterns
	RestElement       Type = "RestElement"
	AssignmentPattern Type = "AssignmentPattern"
	ArrayPattern      Type = "ArrayPattern"
	ObjectPattern     Type = "ObjectPattern"

	// JSX
	JSXElement             Type = "JSXElement"
	JSXOpeningElement      Type = "JSXOpeningElement"
	JSXClosingElement      Type = "JSXClosingElement"
	JSXFragment            Type = "JSXFragment"
	JSXOpeningFragment     Type = "JSXOpeningFragment"
	JSXClosingFragment     Type = "JSXClosingFragment"
	JSXIdentifier          Type = "JSXIdentifier"
	JSXMemberExpression    Type = "JSXMemberExpression"
	JSXNamespacedName      Type = "JSXNamespacedName"
	JSXAttribute           Type = "JSXAttribute"
	JSXSpreadAttribute     Type = "JSXSpreadAttribute"
	JSXExpressionContainer Type = "JSXExpressionContainer"
	JSXEmptyExpression     Type = "JSXEmptyExpression"
	JSXText                Type = "JSXText"

	// TypeScript
	TSInterfaceDeclaration          Type = "TSInterfaceDeclaration"
	TSInterfaceBody                 Type = "TSInterfaceBody"
	TSInterfaceHeritage             Type = "TSInterfaceHeritage"
	TSPropertySignature             Type = "TSPropertySignature"
	TSMethodSignature               Type = "TSMethodSignature"
	TSCallSignatureDeclaration      Type = "TSCallSignatureDeclaration"
	TSConstructSignatureDeclaration Type = "TSConstructSignatureDeclaration"
	TSIndexSignature                Type = "TSIndexSignature"
	TSTypeAliasDeclaration          Type = "TSTypeAliasDeclaration"
	TSEnumDeclaration               Type = "TSEnumDeclaration"
	TSEnumMember                    Type = "TSEnumMember"
	TSModuleDeclaration             Type = "TSModuleDeclaration"
	TSModuleBlock                   Type = "TSModuleBlock"
	TSDeclareFunction               Type = "TSDeclareFunction"
	TSAbstractMethodDefinition      Type = "TSAbstractMethodDefinition"
	TSParameterProperty             Type = "TSParameterProperty"
	TSTypeAnnotation                Type = "TSTypeAnnotation"
	TSTypeReference                 Type = "TSTypeReference"
	TSQualifiedName                 Type = "TSQualifiedName"
	TSTypeParameterInstantiation    Type = "TSTypeParameterInstantiation"
	TSTypeParameterDeclaration      Type = "TSTypeParameterDeclaration"
	TSTypeParameter                 Type = "TSTypeParameter"
	TSUnionType                     Type = "TSUnionType"
	TSIntersectionType              Type = "TSIntersectionType"
	TSArrayType                     Type = "TSArrayType"
	TSTupleType                     Type = "TSTupleType"
	TSLiteralType                   Type = "TSLiteralType"
	TSTypeLiteral                   Type = "TSTypeLiteral"
	TSFunctionType                  Type = "TSFunctionType"
	TSTypeQuery                     Type = "TSTypeQuery"
	TSTypeOperator                  Type = "TSTypeOperator"
	TSIndexedAccessType             Type = "TSIndexedAccessType"
	TSConditionalType               Type = "TSConditionalType"
	TSAsExpression                  Type = "TSAsExpression"
	TSSatisfiesExpression           Type = "TSSatisfiesExpression"
	TSNonNullExpression             Type = "TSNonNullExpression"
	TSTypeAssertion                 Type = "TSTypeAssertion"
	TSExportAssignment              Type = "TSExportAssignment"
)

// VisitorKeys lists, per node type, the fields holding child nodes in
// traversal order. Types missing from the table (generic tree-sitter
// dialects, synthetic objects) fall back to their node-valued fields in
// declaration order.
var VisitorKeys = map[Type][]string{
	Program:             {"body"},
	ExpressionStatement: {"expression"},
	BlockStatement:      {"body"},
	ReturnStatement:     {"argument"},
	BreakStatement:      {"label"},
	ContinueStatement:   {"label"},
	LabeledStatement:    {"label", "body"},
	IfStatement:         {"test", "consequent", "alternate"},
	SwitchStatement:     {"discriminant", "cases"},
	SwitchCase:          {"test", "consequent"},
	ThrowStatement:      {"argument"},
	TryStatement:        {"block", "handler", "finalizer"},
	CatchClause:         {"param", "body"},
	WhileStatement:      {"test", "body"},
	DoWhileStatement:    {"body", "test"},
	ForStatement:        {"init", "test", "update", "body"},
	ForInStatement:      {"left", "right", "body"},
	ForOfStatement:      {"left", "right", "body"},

	FunctionDeclaration:      {"decorators", "id", "typeParameters", "params", "returnType", "body"},
	VariableDeclaration:      {"declarations"},
	VariableDeclarator:       {"id", "init"},
	ClassDeclaration:         {"decorators", "id", "typeParameters", "superClass", "superTypeArguments", "implements", "body"},
	ClassExpression:          {"decorators", "id", "typeParameters", "superClass", "superTypeArguments", "implements", "body"},
	ClassBody:                {"body"},
	MethodDefinition:         {"decorators", "key", "value"},
	PropertyDefinition:       {"decorators", "key", "typeAnnotation", "value"},
	StaticBlock:              {"body"},
	ImportDeclaration:        {"specifiers", "source", "attributes"},
	ImportSpecifier:          {"imported", "local"},
	ImportDefaultSpecifier:   {"local"},
	ImportNamespaceSpecifier: {"local"},
	ExportNamedDeclaration:   {"declaration", "specifiers", "source"},
	ExportSpecifier:          {"local", "exported"},
	ExportDefaultDeclaration: {"declaration"},
	ExportAllDeclaration:     {"exported", "source"},
	Decorator:                {"expression"},

	Identifier:               {"decorators", "typeAnnotation"},
	TemplateLiteral:          {"quasis", "expressions"},
	TaggedTemplateExpression: {"tag", "typeArguments", "quasi"},
	ArrayExpression:          {"elements"},
	ObjectExpression:         {"properties"},
	Property:                 {"key", "value"},
	FunctionExpression:       {"id", "typeParameters", "params", "returnType", "body"},
	ArrowFunctionExpression:  {"typeParameters", "params", "returnType", "body"},
	UnaryExpression:          {"argument"},
	UpdateExpression:         {"argument"},
	BinaryExpression:         {"left", "right"},
	LogicalExpression:        {"left", "right"},
	AssignmentExpression:     {"left", "right"},
	ConditionalExpression:    {"test", "consequent", "alternate"},
	CallExpression:           {"callee", "typeArguments", "arguments"},
	NewExpression:            {"callee", "typeArguments", "arguments"},
	MemberExpression:         {"object", "property"},
	ChainExpression:          {"expression"},
	SequenceExpression:       {"expressions"},
	YieldExpression:          {"argument"},
	AwaitExpression:          {"argument"},
	ImportExpression:         {"source", "options"},
	MetaProperty:             {"meta", "property"},
	SpreadElement:            {"argument"},

	RestElement:       {"decorators", "argument", "typeAnnotation", "value"},
	AssignmentPattern: {"decorators", "left", "right", "typeAnnotation"},
	ArrayPattern:      {"decorators", "elements", "typeAnnotation"},
	ObjectPattern:     {"decorators", "properties", "typeAnnotation"},

	JSXElement:             {"openingElement", "children", "closingElement"},
	JSXOpeningElement:      {"name", "typeArguments", "attributes"},
	JSXClosingElement:      {"name"},
	JSXFragment:            {"openingFragment", "children", "closingFragment"},
	JSXMemberExpression:    {"object", "property"},
	JSXNamespacedName:      {"namespace", "name"},
	JSXAttribute:           {"name", "value"},
	JSXSpreadAttribute:     {"argument"},
	JSXExpressionContainer: {"expression"},

	TSInterfaceDeclaration:          {"id", "typeParameters", "extends", "body"},
	TSInterfaceBody:                 {"body"},
	TSInterfaceHeritage:             {"expression", "typeArguments"},
	TSPropertySignature:             {"key", "typeAnnotation"},
	TSMethodSignature:               {"key", "typeParameters", "params", "returnType"},
	TSCallSignatureDeclaration:      {"typeParameters", "params", "returnType"},
	TSConstructSignatureDeclaration: {"typeParameters", "params", "returnType"},
	TSIndexSignature:                {"parameters", "typeAnnotation"},
	TSTypeAliasDeclaration:          {"id", "typeParameters", "typeAnnotation"},
	TSEnumDeclaration:               {"id", "members"},
	TSEnumMember:                    {"id", "initializer"},
	TSModuleDeclaration:             {"id", "body"},
	TSModuleBlock:                   {"body"},
	TSDeclareFunction:               {"id", "typeParameters", "params", "returnType"},
	TSAbstractMethodDefinition:      {"decorators", "key", "value"},
	TSParameterProperty:             {"decorators", "parameter"},
	TSTypeAnnotation:                {"typeAnnotation"},
	TSTypeReference:                 {"typeName", "typeArguments"},
	TSQualifiedName:                 {"left", "right"},
	TSTypeParameterInstantiation:    {"params"},
	TSTypeParameterDeclaration:      {"params"},
	TSTypeParameter:                 {"name", "constraint", "default"},
	TSUnionType:                     {"types"},
	TSIntersectionType:              {"types"},
	TSArrayType:                     {"elementType"},
	TSTupleType:                     {"elementTypes"},
	TSLiteralType:                   {"literal"},
	TSTypeLiteral:                   {"members"},
	TSFunctionType:                  {"typeParameters", "params", "returnType"},
	TSTypeQuery:                     {"exprName", "typeArguments"},
	TSTypeOperator:                  {"typeAnnotation"},
	TSIndexedAccessType:             {"objectType", "indexType"},
	TSConditionalType:               {"checkType", "extendsType", "trueType", "falseType"},
	TSAsExpression:                  {"expression", "typeAnnotation"},
	TSSatisfiesExpression:           {"expression", "typeAnnotation"},
	TSNonNullExpression:             {"expression"},
	TSTypeAssertion:                 {"typeAnnotation", "expression"},
	TSExportAssignment:              {"expression"},

	// Leaves
	EmptyStatement:     nil,
	DebuggerStatement:  nil,
	PrivateIdentifier:  nil,
	Literal:            nil,
	TemplateElement:    nil,
	ThisExpression:     nil,
	Super:              nil,
	JSXIdentifier:      nil,
	JSXText:            nil,
	JSXEmptyExpression: nil,
	JSXOpeningFragment: nil,
	JSXClosingFragment: nil,
}

// ChildKeys returns the fields of n that hold child nodes, in traversal order.
func ChildKeys(n *Node) []string {
	if keys, ok := VisitorKeys[n.Type]; ok {
		return keys
	}
	if strings.HasPrefix(string(n.Type), "TS") && strings.HasSuffix(string(n.Type), "Keyword") {
		return nil
	}
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		switch f.Value.(type) {
		case *Node, NodeList:
			keys = append(keys, f.Name)
		}
	}
	return keys
}

// IsStatement reports whether t belongs to esquery's :statement class.
func IsStatement(t Type) bool {
	s := string(t)
	return strings.HasSuffix(s, "Statement") || strings.HasSuffix(s, "Declaration") || IsDeclaration(t)
}

// IsDeclaration reports whether t belongs to esquery's :declaration class.
func IsDeclaration(t Type) bool {
	return strings.HasSuffix(string(t), "Declaration")
}

// IsExpression reports whether t belongs to esquery's :expression class.
func IsExpression(t Type) bool {
	s := string(t)
	return strings.HasSuffix(s, "Expression") || strings.HasSuffix(s, "Literal") ||
		(t == Identifier || t == Super || t == MetaProperty)
}

// IsPattern reports whether t belongs to esquery's :pattern class.
func IsPattern(t Type) bool {
	return strings.HasSuffix(string(t), "Pattern") || IsExpression(t)
}

// IsFunction reports whether t belongs to esquery's :function class.
func IsFunction(t Type) bool {
	switch t {
	case FunctionDeclaration, FunctionExpression, ArrowFunctionExpression:
		return true
	}
	return false
}
