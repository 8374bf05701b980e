// Package display renders syntax trees and highlight results for terminals.
package display

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// TreeFormatter formats syntax trees for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format   string  // "text", "json", "yaml", "compact"
	ShowLoc  bool    // Show line:column spans next to offsets
	MaxDepth int     // Maximum depth to display, 0 = unlimited
	Indent   string  // Indentation string for json
	Styles   *Styles // nil renders without color
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	if options.Styles == nil {
		options.Styles = NewStyles(false)
	}
	return &TreeFormatter{options: options}
}

// Format formats a syntax tree for display
func (tf *TreeFormatter) Format(root *estree.Node) (string, error) {
	if root == nil {
		return "No tree data available", nil
	}

	switch tf.options.Format {
	case "json":
		data, err := json.MarshalIndent(Prune(root, tf.options.MaxDepth), "", tf.options.Indent)
		if err != nil {
			return "", fmt.Errorf("failed to encode AST as JSON: %w", err)
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(Prune(root, tf.options.MaxDepth))
		if err != nil {
			return "", fmt.Errorf("failed to encode AST as YAML: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case "compact":
		return tf.formatCompact(root), nil
	case "", "text":
		return tf.formatText(root), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml or compact)", tf.options.Format)
	}
}

// formatText formats tree as ASCII art
func (tf *TreeFormatter) formatText(root *estree.Node) string {
	var sb strings.Builder

	total, depth := 0, 0
	estree.WalkPaths(root, func(p *estree.Path) bool {
		total++
		depth = max(depth, p.Depth)
		return true
	})
	sb.WriteString(fmt.Sprintf("AST: %d nodes, max depth %d\n\n", total, depth))

	tf.formatNode(&sb, "", root, "", true, true, 0)
	return strings.TrimRight(sb.String(), "\n")
}

// formatNode recursively formats a tree node
func (tf *TreeFormatter) formatNode(sb *strings.Builder, label string, node *estree.Node, prefix string, isLast, isRoot bool, depth int) {
	st := tf.options.Styles

	var branch string
	if isRoot {
		branch = "→ "
	} else if isLast {
		branch = "└─→ "
	} else {
		branch = "├─→ "
	}

	sb.WriteString(prefix)
	sb.WriteString(st.Gutter.Render(branch))
	if label != "" {
		sb.WriteString(st.Key.Render(label + ":"))
		sb.WriteByte(' ')
	}
	sb.WriteString(st.Type.Render(string(node.Type)))
	sb.WriteString(" " + st.Range.Render(tf.span(node)))
	if attrs := scalarAttrs(node); attrs != "" {
		sb.WriteString(" " + st.Value.Render(attrs))
	}

	children := labeledChildren(node)
	if tf.options.MaxDepth > 0 && depth >= tf.options.MaxDepth && len(children) > 0 {
		hidden := estree.Count(node) - 1
		sb.WriteString(" " + st.Dim.Render(fmt.Sprintf("(+%d more)", hidden)))
		sb.WriteString("\n")
		return
	}
	sb.WriteString("\n")

	for i, child := range children {
		var childPrefix string
		if isRoot || isLast {
			childPrefix = prefix + "  "
		} else {
			childPrefix = prefix + "│ "
		}
		tf.formatNode(sb, child.label, child.node, childPrefix, i == len(children)-1, false, depth+1)
	}
}

func (tf *TreeFormatter) span(n *estree.Node) string {
	if n.Range == nil {
		return "[-]"
	}
	s := fmt.Sprintf("[%d-%d]", n.Range.Start, n.Range.End)
	if tf.options.ShowLoc && n.Loc != nil {
		s += fmt.Sprintf(" %d:%d-%d:%d", n.Loc.Start.Line, n.Loc.Start.Column, n.Loc.End.Line, n.Loc.End.Column)
	}
	return s
}

type labeledChild struct {
	label string
	node  *estree.Node
}

func labeledChildren(n *estree.Node) []labeledChild {
	var out []labeledChild
	for _, key := range estree.ChildKeys(n) {
		switch v := n.Get(key).(type) {
		case *estree.Node:
			if v.Addressable() {
				out = append(out, labeledChild{label: key, node: v})
			}
		case estree.NodeList:
			for i, c := range v {
				if c.Addressable() {
					out = append(out, labeledChild{label: fmt.Sprintf("%s[%d]", key, i), node: c})
				}
			}
		}
	}
	return out
}

// scalarAttrs renders the non-null leaf fields as key=value pairs.
func scalarAttrs(n *estree.Node) string {
	var parts []string
	for _, f := range n.Fields {
		s, ok := f.Value.(estree.Scalar)
		if !ok || s.IsNull() {
			continue
		}
		v := s.String()
		if s.Kind == estree.KindString {
			v = strconv.Quote(v)
		}
		parts = append(parts, f.Name+"="+v)
	}
	return strings.Join(parts, " ")
}

// formatCompact formats the leftmost path of the tree on one line
func (tf *TreeFormatter) formatCompact(root *estree.Node) string {
	var parts []string
	depth := 0
	for n := root; n != nil; depth++ {
		parts = append(parts, string(n.Type))
		kids := estree.Children(n)
		if len(kids) == 0 || (tf.options.MaxDepth > 0 && depth >= tf.options.MaxDepth) {
			break
		}
		if len(kids) > 1 {
			parts[len(parts)-1] += fmt.Sprintf(" (+%d more)", len(kids)-1)
		}
		n = kids[0]
	}
	return strings.Join(parts, " → ")
}

// Prune returns a copy of root with subtrees below maxDepth removed. Nodes
// at the cut keep their type, position and leaf fields. A maxDepth of 0
// returns root unchanged.
func Prune(root *estree.Node, maxDepth int) *estree.Node {
	if maxDepth <= 0 || root == nil {
		return root
	}
	return prune(root, 0, maxDepth)
}

func prune(n *estree.Node, depth, maxDepth int) *estree.Node {
	if n == nil {
		return nil
	}
	out := &estree.Node{Type: n.Type, Range: n.Range, Loc: n.Loc}
	for _, f := range n.Fields {
		switch v := f.Value.(type) {
		case *estree.Node:
			if depth >= maxDepth {
				continue
			}
			out.Fields = append(out.Fields, estree.Field{Name: f.Name, Value: prune(v, depth+1, maxDepth)})
		case estree.NodeList:
			if depth >= maxDepth {
				continue
			}
			list := make(estree.NodeList, len(v))
			for i, c := range v {
				list[i] = prune(c, depth+1, maxDepth)
			}
			out.Fields = append(out.Fields, estree.Field{Name: f.Name, Value: list})
		default:
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}
