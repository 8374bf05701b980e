// Package query implements the esquery selector language over estree trees.
package query

import (
	"regexp"
	"strings"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// matcher is one compiled selector term. p is the candidate node together
// with its ancestry.
type matcher interface {
	match(p *estree.Path) bool
}

type wildcard struct{}

func (wildcard) match(*estree.Path) bool { return true }

// typeSel matches a node type, ignoring case.
type typeSel struct {
	name string
}

func (s typeSel) match(p *estree.Path) bool {
	return strings.EqualFold(string(p.Node.Type), s.name)
}

type valueKind uint8

const (
	valueLiteral valueKind = iota
	valueRegexp
	valueType
)

type attrValue struct {
	kind    valueKind
	literal string
	number  float64
	numeric bool
	re      *regexp.Regexp
}

// attrSel matches [path], [path op value].
type attrSel struct {
	path  []string
	op    string
	value attrValue
}

// fieldSel matches a node reached from an ancestor through path.
type fieldSel struct {
	path []string
}

func (s fieldSel) match(p *estree.Path) bool {
	cur := p
	for i := len(s.path) - 1; i >= 0; i-- {
		if cur == nil || cur.Key != s.path[i] {
			return false
		}
		cur = cur.Parent
	}
	return true
}

// compound requires every part to match the same node.
type compound struct {
	parts []matcher
}

func (s compound) match(p *estree.Path) bool {
	for _, part := range s.parts {
		if !part.match(p) {
			return false
		}
	}
	return true
}

// anyOf matches when one alternative does (selector lists, :matches, :is).
type anyOf struct {
	alts []matcher
}

func (s anyOf) match(p *estree.Path) bool {
	for _, alt := range s.alts {
		if alt.match(p) {
			return true
		}
	}
	return false
}

type not struct {
	alts []matcher
}

func (s not) match(p *estree.Path) bool {
	for _, alt := range s.alts {
		if alt.match(p) {
			return false
		}
	}
	return true
}

// has matches when some descendant matches one of the relative selectors.
// Ancestry seen by the inner selectors stops at the subject node.
type has struct {
	alts []matcher
}

// hasRoot matches the node a :has is evaluated for, which is the root of the
// walk the relative selector runs in.
type hasRoot struct{}

func (hasRoot) match(p *estree.Path) bool {
	return p.Parent == nil
}

func (s has) match(p *estree.Path) bool {
	found := false
	estree.WalkPaths(p.Node, func(sub *estree.Path) bool {
		if found {
			return false
		}
		if sub.Parent == nil {
			return true
		}
		for _, alt := range s.alts {
			if alt.match(sub) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

type combinator uint8

const (
	combDescendant combinator = iota
	combChild
	combSibling
	combAdjacent
)

type relation struct {
	kind        combinator
	left, right matcher
}

func (s relation) match(p *estree.Path) bool {
	if !s.right.match(p) {
		return false
	}
	switch s.kind {
	case combChild:
		return p.Parent != nil && s.left.match(p.Parent)
	case combDescendant:
		for a := p.Parent; a != nil; a = a.Parent {
			if s.left.match(a) {
				return true
			}
		}
		return false
	case combSibling:
		if p.Index < 0 {
			return false
		}
		for i := 0; i < p.Index; i++ {
			if sib := siblingPath(p, i); sib != nil && s.left.match(sib) {
				return true
			}
		}
		return false
	case combAdjacent:
		if p.Index <= 0 {
			return false
		}
		sib := siblingPath(p, p.Index-1)
		return sib != nil && s.left.match(sib)
	}
	return false
}

func siblingPath(p *estree.Path, i int) *estree.Path {
	n := p.Siblings[i]
	if !n.Addressable() {
		return nil
	}
	return &estree.Path{Node: n, Parent: p.Parent, Key: p.Key, Index: i, Siblings: p.Siblings, Depth: p.Depth}
}

// nthChild matches the node at a 1-based index of its containing list,
// counted from the end when fromEnd is set.
type nthChild struct {
	n       int
	fromEnd bool
}

func (s nthChild) match(p *estree.Path) bool {
	if p.Index < 0 {
		return false
	}
	if s.fromEnd {
		return len(p.Siblings)-p.Index == s.n
	}
	return p.Index+1 == s.n
}

// class matches esquery's node classes.
type class struct {
	name string
}

func (s class) match(p *estree.Path) bool {
	t := p.Node.Type
	switch s.name {
	case "statement":
		return estree.IsStatement(t)
	case "expression":
		return estree.IsExpression(t)
	case "declaration":
		return estree.IsDeclaration(t)
	case "function":
		return estree.IsFunction(t)
	case "pattern":
		return estree.IsPattern(t)
	}
	return false
}
