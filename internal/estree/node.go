// Package estree holds the ESTree-shaped syntax tree produced by the parser
// adapter, the per-kind child table used to enumerate it, and the position
// index over it.
package estree

import (
	"fmt"
	"math"
	"strconv"
)

// Type is the ESTree node tag, e.g. "Identifier" or "CallExpression".
type Type string

// Range is a half-open span of UTF-16 code-unit offsets into the source.
type Range struct {
	Start int
	End   int
}

// Len returns the span size.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether pos lies inside the closed interval [Start, End].
// Both boundaries match so a cursor between two tokens hits both of them.
func (r Range) Contains(pos int) bool {
	return r.Start <= pos && pos <= r.End
}

// Position is a 1-based line and 0-based UTF-16 column.
type Position struct {
	Line   int
	Column int
}

// Less orders positions by line, then column.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// SourceLocation is the line/column form of a node's span.
type SourceLocation struct {
	Start Position
	End   Position
}

// Value is a field value: *Node, NodeList or Scalar.
type Value interface {
	isValue()
}

// NodeList is an ordered sequence field. Entries may be nil for array holes.
type NodeList []*Node

func (NodeList) isValue() {}

// ScalarKind tags the leaf value held by a Scalar.
type ScalarKind uint8

const (
	KindNull ScalarKind = iota
	KindString
	KindNumber
	KindBool
	KindBigInt
	KindRegExp
)

// Scalar is a leaf field value.
type Scalar struct {
	Kind ScalarKind
	Str  string
	Num  float64
	Bool bool
}

func (Scalar) isValue() {}

// Null is the absent-value scalar used for empty optional children.
var Null = Scalar{Kind: KindNull}

// String returns a string scalar.
func String(s string) Scalar { return Scalar{Kind: KindString, Str: s} }

// Number returns a numeric scalar.
func Number(f float64) Scalar { return Scalar{Kind: KindNumber, Num: f} }

// Bool returns a boolean scalar.
func Bool(b bool) Scalar { return Scalar{Kind: KindBool, Bool: b} }

// BigInt returns a bigint scalar holding its decimal digits.
func BigInt(digits string) Scalar { return Scalar{Kind: KindBigInt, Str: digits} }

// RegExp returns a regular expression scalar holding its literal text.
func RegExp(literal string) Scalar { return Scalar{Kind: KindRegExp, Str: literal} }

// IsNull reports whether the scalar is null.
func (s Scalar) IsNull() bool { return s.Kind == KindNull }

// String renders the value the way JavaScript template interpolation would,
// which is what attribute selectors compare against.
func (s Scalar) String() string {
	switch s.Kind {
	case KindString, KindBigInt, KindRegExp:
		return s.Str
	case KindNumber:
		return formatNumber(s.Num)
	case KindBool:
		return strconv.FormatBool(s.Bool)
	default:
		return "null"
	}
}

// Interface returns the plain Go value for encoders.
func (s Scalar) Interface() interface{} {
	switch s.Kind {
	case KindString, KindBigInt, KindRegExp:
		return s.Str
	case KindNumber:
		if math.IsInf(s.Num, 0) || math.IsNaN(s.Num) {
			return formatNumber(s.Num)
		}
		return s.Num
	case KindBool:
		return s.Bool
	default:
		return nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Field is one named member of a node.
type Field struct {
	Name  string
	Value Value
}

// Node is an immutable syntax tree node once the parser hands it out.
// A node with a nil Range is not positionally addressable: it is skipped by
// every traversal but can still be reached through attribute paths (e.g. the
// {raw, cooked} object of a TemplateElement).
type Node struct {
	Type   Type
	Range  *Range
	Loc    *SourceLocation
	Fields []Field
}

func (*Node) isValue() {}

// New creates a positioned node.
func New(t Type, r Range, loc SourceLocation) *Node {
	return &Node{Type: t, Range: &r, Loc: &loc}
}

// Addressable reports whether the node takes part in traversals.
func (n *Node) Addressable() bool {
	return n != nil && n.Range != nil
}

// Span returns the node's span size, or -1 when it has no range.
func (n *Node) Span() int {
	if !n.Addressable() {
		return -1
	}
	return n.Range.Len()
}

// Set assigns a field, replacing an existing value with the same name.
func (n *Node) Set(name string, v Value) *Node {
	if v == nil {
		v = Null
	}
	if child, ok := v.(*Node); ok && child == nil {
		v = Null
	}
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			n.Fields[i].Value = v
			return n
		}
	}
	n.Fields = append(n.Fields, Field{Name: name, Value: v})
	return n
}

// Get returns a field value, or nil when the field does not exist.
func (n *Node) Get(name string) Value {
	if n == nil {
		return nil
	}
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return n.Fields[i].Value
		}
	}
	return nil
}

// Has reports whether the field exists (it may still hold null).
func (n *Node) Has(name string) bool {
	return n.Get(name) != nil
}

// Child returns a single-node field, or nil.
func (n *Node) Child(name string) *Node {
	if c, ok := n.Get(name).(*Node); ok {
		return c
	}
	return nil
}

// List returns a sequence field, or nil.
func (n *Node) List(name string) NodeList {
	if l, ok := n.Get(name).(NodeList); ok {
		return l
	}
	return nil
}

// Scalar returns a leaf field.
func (n *Node) Scalar(name string) (Scalar, bool) {
	s, ok := n.Get(name).(Scalar)
	return s, ok
}

// Str returns a string leaf field, or "".
func (n *Node) Str(name string) string {
	if s, ok := n.Scalar(name); ok && s.Kind == KindString {
		return s.Str
	}
	return ""
}

// Flag returns a boolean leaf field, or false.
func (n *Node) Flag(name string) bool {
	if s, ok := n.Scalar(name); ok && s.Kind == KindBool {
		return s.Bool
	}
	return false
}

// String formats the node as "Type (start-end)".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Range == nil {
		return string(n.Type)
	}
	return fmt.Sprintf("%s (%d-%d)", n.Type, n.Range.Start, n.Range.End)
}
