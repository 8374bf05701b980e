package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// Suggest returns candidate selectors for n, from the bare type name to more
// specific attribute and compound forms. It only looks at n and its own
// fields; the result never holds duplicates.
func Suggest(n *estree.Node) []string {
	if n == nil || n.Type == "" {
		return nil
	}
	s := &suggestions{seen: make(map[string]bool)}
	t := string(n.Type)
	s.add(t)

	for _, key := range []string{"name", "value", "kind", "operator"} {
		if attr, ok := scalarAttr(n, key); ok {
			s.add(t + "[" + key + "=" + attr + "]")
		}
	}

	switch n.Type {
	case estree.MemberExpression:
		obj := n.Child("object")
		prop := n.Child("property")
		objName := obj != nil && obj.Type == estree.Identifier
		propName := prop != nil && prop.Type == estree.Identifier && !n.Flag("computed")
		if objName {
			s.add(fmt.Sprintf("MemberExpression[object.name=%s]", quote(obj.Str("name"))))
		}
		if propName {
			s.add(fmt.Sprintf("MemberExpression[property.name=%s]", quote(prop.Str("name"))))
		}
		if objName && propName {
			s.add(fmt.Sprintf("MemberExpression[object.name=%s][property.name=%s]",
				quote(obj.Str("name")), quote(prop.Str("name"))))
		}
	case estree.CallExpression, estree.NewExpression:
		callee := n.Child("callee")
		if callee == nil {
			break
		}
		switch callee.Type {
		case estree.Identifier:
			s.add(fmt.Sprintf("%s[callee.name=%s]", t, quote(callee.Str("name"))))
		case estree.MemberExpression:
			if prop := callee.Child("property"); prop != nil && prop.Type == estree.Identifier {
				s.add(fmt.Sprintf("%s[callee.property.name=%s]", t, quote(prop.Str("name"))))
			}
			if obj := callee.Child("object"); obj != nil && obj.Type == estree.Identifier {
				if prop := callee.Child("property"); prop != nil && prop.Type == estree.Identifier {
					s.add(fmt.Sprintf("%s[callee.object.name=%s][callee.property.name=%s]",
						t, quote(obj.Str("name")), quote(prop.Str("name"))))
				}
			}
		}
	case estree.JSXElement:
		if name := jsxName(n.Child("openingElement").Child("name")); name != "" {
			s.add(fmt.Sprintf("JSXElement[openingElement.name.name=%s]", quote(name)))
		}
	case estree.JSXOpeningElement, estree.JSXClosingElement:
		if name := jsxName(n.Child("name")); name != "" {
			s.add(fmt.Sprintf("%s[name.name=%s]", t, quote(name)))
		}
	case estree.JSXAttribute:
		if name := jsxName(n.Child("name")); name != "" {
			s.add(fmt.Sprintf("JSXAttribute[name.name=%s]", quote(name)))
			if v := n.Child("value"); v != nil && v.Type == estree.Literal {
				if lit, ok := scalarAttr(v, "value"); ok {
					s.add(fmt.Sprintf("JSXAttribute[name.name=%s][value.value=%s]", quote(name), lit))
				}
			}
		}
	case estree.VariableDeclarator:
		if id := n.Child("id"); id != nil && id.Type == estree.Identifier {
			s.add(fmt.Sprintf("VariableDeclarator[id.name=%s]", quote(id.Str("name"))))
			if init := n.Child("init"); init != nil {
				s.add(fmt.Sprintf("VariableDeclarator[id.name=%s]:has(> %s.init)", quote(id.Str("name")), init.Type))
			}
		}
	case estree.FunctionDeclaration, estree.ClassDeclaration, estree.TSInterfaceDeclaration,
		estree.TSTypeAliasDeclaration, estree.TSEnumDeclaration:
		if id := n.Child("id"); id != nil && id.Type == estree.Identifier {
			s.add(fmt.Sprintf("%s[id.name=%s]", t, quote(id.Str("name"))))
		}
	case estree.MethodDefinition, estree.Property, estree.PropertyDefinition:
		if key := n.Child("key"); key != nil && key.Type == estree.Identifier {
			s.add(fmt.Sprintf("%s[key.name=%s]", t, quote(key.Str("name"))))
		}
	case estree.ImportDeclaration:
		if src := n.Child("source"); src != nil {
			if v, ok := scalarAttr(src, "value"); ok {
				s.add("ImportDeclaration[source.value=" + v + "]")
			}
		}
	}
	return s.list
}

type suggestions struct {
	seen map[string]bool
	list []string
}

func (s *suggestions) add(sel string) {
	if s.seen[sel] {
		return
	}
	s.seen[sel] = true
	s.list = append(s.list, sel)
}

// scalarAttr renders a scalar field as a selector value: strings quoted,
// numbers and booleans bare.
func scalarAttr(n *estree.Node, key string) (string, bool) {
	v, ok := n.Scalar(key)
	if !ok {
		return "", false
	}
	switch v.Kind {
	case estree.KindString:
		return quote(v.Str), true
	case estree.KindNumber, estree.KindBool:
		return v.String(), true
	}
	return "", false
}

func quote(s string) string {
	return strconv.Quote(s)
}

func jsxName(n *estree.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case estree.JSXIdentifier:
		return n.Str("name")
	}
	return ""
}

// DidYouMean ranks the known type names closest to name. At most limit
// names within a small edit distance are returned, best first.
func DidYouMean(name string, known []string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	lower := strings.ToLower(name)
	threshold := len(name)/3 + 1
	var candidates []scored
	for _, k := range known {
		d := edlib.LevenshteinDistance(lower, strings.ToLower(k))
		if d > 0 && d <= threshold {
			candidates = append(candidates, scored{k, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}

// KnownTypes returns every node type name the converter can produce.
func KnownTypes() []string {
	out := make([]string, 0, len(estree.VisitorKeys))
	for t := range estree.VisitorKeys {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}
