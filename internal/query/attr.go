package query

import (
	"strconv"
	"strings"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// lookup resolves a dotted attribute path. "type" yields the node type and
// numeric segments index into lists. ok is false when the path leaves the
// tree (JavaScript's undefined).
func lookup(n *estree.Node, path []string) (estree.Value, bool) {
	var cur estree.Value = n
	for _, key := range path {
		switch v := cur.(type) {
		case *estree.Node:
			if v == nil {
				return nil, false
			}
			if key == "type" && v.Type != "" {
				cur = estree.String(string(v.Type))
				continue
			}
			next := v.Get(key)
			if next == nil {
				return nil, false
			}
			cur = next
		case estree.NodeList:
			if key == "length" {
				cur = estree.Number(float64(len(v)))
				continue
			}
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			if v[i] == nil {
				cur = estree.Null
				continue
			}
			cur = v[i]
		default:
			// Scalars have no attributes; null stops the walk like
			// JavaScript's optional lookup in esquery.
			return nil, false
		}
	}
	return cur, true
}

// stringify renders a value the way JavaScript template literals do.
func stringify(v estree.Value, ok bool) string {
	if !ok {
		return "undefined"
	}
	switch x := v.(type) {
	case estree.Scalar:
		return x.String()
	case estree.NodeList:
		parts := make([]string, len(x))
		for i, n := range x {
			if n != nil {
				parts[i] = "[object Object]"
			}
		}
		return strings.Join(parts, ",")
	}
	return "[object Object]"
}

// typeOf mirrors JavaScript's typeof operator.
func typeOf(v estree.Value, ok bool) string {
	if !ok {
		return "undefined"
	}
	if s, isScalar := v.(estree.Scalar); isScalar {
		switch s.Kind {
		case estree.KindString:
			return "string"
		case estree.KindNumber:
			return "number"
		case estree.KindBool:
			return "boolean"
		case estree.KindBigInt:
			return "bigint"
		}
	}
	return "object"
}

// number coerces a value for relational comparison.
func number(v estree.Value, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	s, isScalar := v.(estree.Scalar)
	if !isScalar {
		return 0, false
	}
	switch s.Kind {
	case estree.KindNumber:
		return s.Num, true
	case estree.KindBool:
		if s.Bool {
			return 1, true
		}
		return 0, true
	case estree.KindNull:
		return 0, true
	case estree.KindString, estree.KindBigInt:
		f, err := strconv.ParseFloat(strings.TrimSpace(s.Str), 64)
		return f, err == nil
	}
	return 0, false
}

func (s attrSel) match(p *estree.Path) bool {
	v, ok := lookup(p.Node, s.path)
	switch s.op {
	case "":
		if !ok {
			return false
		}
		sc, isScalar := v.(estree.Scalar)
		return !isScalar || !sc.IsNull()
	case "=", "!=":
		eq := s.equal(v, ok)
		if s.op == "!=" {
			return !eq
		}
		return eq
	}
	return s.compare(v, ok)
}

func (s attrSel) equal(v estree.Value, ok bool) bool {
	switch s.value.kind {
	case valueRegexp:
		sc, isScalar := v.(estree.Scalar)
		return ok && isScalar && sc.Kind == estree.KindString && s.value.re.MatchString(sc.Str)
	case valueType:
		return typeOf(v, ok) == s.value.literal
	}
	return stringify(v, ok) == s.value.literal
}

func (s attrSel) compare(v estree.Value, ok bool) bool {
	sc, isScalar := v.(estree.Scalar)
	if ok && isScalar && sc.Kind == estree.KindString && !s.value.numeric {
		return ordered(strings.Compare(sc.Str, s.value.literal), s.op)
	}
	lhs, lok := number(v, ok)
	if !lok {
		return false
	}
	rhs := s.value.number
	if !s.value.numeric {
		f, err := strconv.ParseFloat(s.value.literal, 64)
		if err != nil {
			return false
		}
		rhs = f
	}
	switch {
	case lhs < rhs:
		return ordered(-1, s.op)
	case lhs > rhs:
		return ordered(1, s.op)
	}
	return ordered(0, s.op)
}

func ordered(cmp int, op string) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}
