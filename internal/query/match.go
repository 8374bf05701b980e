package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/debug"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// Selector is a compiled selector. It is immutable and safe for concurrent
// use.
type Selector struct {
	source string
	root   matcher
	types  []string
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Types lists the node type names the selector mentions, in source order.
func (s *Selector) Types() []string {
	out := make([]string, len(s.types))
	copy(out, s.types)
	return out
}

// Matches reports whether the node at p satisfies the selector.
func (s *Selector) Matches(p *estree.Path) bool {
	return s.root.match(p)
}

// Match evaluates the selector over the tree and returns the matching nodes
// in pre-order. A panic while evaluating is returned as a SelectorError.
func (s *Selector) Match(root *estree.Node) (nodes []*estree.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			nodes = nil
			err = errors.NewSelectorError(s.source, 0, fmt.Errorf("evaluation failed: %v", r))
		}
	}()

	start := time.Now()
	seen := make(map[*estree.Node]struct{})
	nodes = []*estree.Node{}
	estree.WalkPaths(root, func(p *estree.Path) bool {
		if _, dup := seen[p.Node]; dup {
			return true
		}
		if s.root.match(p) {
			seen[p.Node] = struct{}{}
			nodes = append(nodes, p.Node)
		}
		return true
	})
	debug.LogQuery("%q matched %d nodes in %v", s.source, len(nodes), time.Since(start))
	return nodes, nil
}

// UnknownTypes lists the type names in the selector that do not occur in
// known (compared case-insensitively).
func (s *Selector) UnknownTypes(known map[estree.Type]int) []string {
	lower := make(map[string]bool, len(known))
	for t := range known {
		lower[strings.ToLower(string(t))] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, name := range s.types {
		key := strings.ToLower(name)
		if lower[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Match compiles selector and evaluates it against root. Syntax errors and
// evaluation failures are returned as *errors.SelectorError; a valid selector
// without matches returns an empty slice and no error.
func Match(root *estree.Node, selector string) ([]*estree.Node, error) {
	sel, err := Compile(selector)
	if err != nil {
		return nil, err
	}
	return sel.Match(root)
}
