package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ediezindell/denops-typescript-estree.vim/internal/errors"
	"github.com/ediezindell/denops-typescript-estree.vim/internal/estree"
)

// syntaxError is raised with panic inside the parser and turned into a
// SelectorError by Compile.
type syntaxError struct {
	offset int
	msg    string
}

type selectorParser struct {
	src   string
	pos   int
	types []string
}

// Compile parses a selector.
func Compile(selector string) (sel *Selector, err error) {
	p := &selectorParser{src: selector}
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(syntaxError)
			if !ok {
				se = syntaxError{offset: p.pos, msg: fmt.Sprint(r)}
			}
			sel = nil
			err = errors.NewSelectorError(selector, se.offset, fmt.Errorf("%s", se.msg))
		}
	}()

	p.skipSpace()
	if p.eof() {
		p.fail("empty selector")
	}
	root := p.selectors(false)
	p.skipSpace()
	if !p.eof() {
		p.fail("unexpected %q", p.peek())
	}
	return &Selector{source: selector, root: root, types: p.types}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(selector string) *Selector {
	sel, err := Compile(selector)
	if err != nil {
		panic(err)
	}
	return sel
}

func (p *selectorParser) fail(format string, args ...interface{}) {
	panic(syntaxError{offset: p.pos, msg: fmt.Sprintf(format, args...)})
}

func (p *selectorParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *selectorParser) peek() rune {
	if p.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *selectorParser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.next()
	}
	return p.pos > start
}

func (p *selectorParser) expect(r rune) {
	p.skipSpace()
	if p.peek() != r {
		if p.eof() {
			p.fail("expected %q, found end of selector", r)
		}
		p.fail("expected %q, found %q", r, p.peek())
	}
	p.next()
}

func isIdentRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	return !strings.ContainsRune(`[],():#!=<>~+.*"'/`, r) && r != 0
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentRune(p.peek()) {
		p.next()
	}
	if p.pos == start {
		if p.eof() {
			p.fail("expected name, found end of selector")
		}
		p.fail("expected name, found %q", p.peek())
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) dottedPath() []string {
	path := []string{p.ident()}
	for p.peek() == '.' {
		p.next()
		path = append(path, p.ident())
	}
	return path
}

// selectors parses a comma separated list. Inside :has the selectors may
// start with a combinator relative to the subject.
func (p *selectorParser) selectors(relative bool) matcher {
	alts := []matcher{p.selector(relative)}
	for {
		p.skipSpace()
		if p.peek() != ',' {
			break
		}
		p.next()
		p.skipSpace()
		alts = append(alts, p.selector(relative))
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return anyOf{alts: alts}
}

func (p *selectorParser) combinator() (combinator, bool) {
	switch p.peek() {
	case '>':
		return combChild, true
	case '~':
		return combSibling, true
	case '+':
		return combAdjacent, true
	}
	return combDescendant, false
}

func (p *selectorParser) selector(relative bool) matcher {
	p.skipSpace()
	var left matcher
	if relative {
		if kind, ok := p.combinator(); ok {
			p.next()
			p.skipSpace()
			left = relation{kind: kind, left: hasRoot{}, right: p.sequence()}
		}
	}
	if left == nil {
		left = p.sequence()
	}
	for {
		hadSpace := p.skipSpace()
		if p.eof() || p.peek() == ',' || p.peek() == ')' {
			return left
		}
		kind, ok := p.combinator()
		if ok {
			p.next()
			p.skipSpace()
		} else if !hadSpace {
			p.fail("unexpected %q", p.peek())
		}
		left = relation{kind: kind, left: left, right: p.sequence()}
	}
}

// sequence parses a compound selector such as Identifier[name="x"]:first-child.
func (p *selectorParser) sequence() matcher {
	var parts []matcher
loop:
	for !p.eof() {
		r := p.peek()
		switch {
		case r == '*':
			p.next()
			parts = append(parts, wildcard{})
		case r == '#':
			p.next()
			parts = append(parts, p.typeName())
		case r == '[':
			parts = append(parts, p.attribute())
		case r == '.':
			p.next()
			parts = append(parts, fieldSel{path: p.dottedPath()})
		case r == ':':
			parts = append(parts, p.pseudo())
		case isIdentRune(r):
			parts = append(parts, p.typeName())
		default:
			break loop
		}
	}
	switch len(parts) {
	case 0:
		if p.eof() {
			p.fail("expected selector, found end of selector")
		}
		p.fail("expected selector, found %q", p.peek())
	case 1:
		return parts[0]
	}
	return compound{parts: parts}
}

func (p *selectorParser) typeName() matcher {
	name := p.ident()
	p.types = append(p.types, name)
	return typeSel{name: name}
}

var attrOps = []string{"!=", "<=", ">=", "=", "<", ">"}

func (p *selectorParser) attribute() matcher {
	p.next() // [
	p.skipSpace()
	sel := attrSel{path: p.dottedPath()}
	p.skipSpace()
	if p.peek() == ']' {
		p.next()
		return sel
	}
	for _, op := range attrOps {
		if strings.HasPrefix(p.src[p.pos:], op) {
			sel.op = op
			p.pos += len(op)
			break
		}
	}
	if sel.op == "" {
		if p.eof() {
			p.fail("unterminated attribute selector")
		}
		p.fail("expected attribute operator, found %q", p.peek())
	}
	p.skipSpace()
	sel.value = p.attrValue(sel.op == "=" || sel.op == "!=")
	p.expect(']')
	return sel
}

func (p *selectorParser) attrValue(equality bool) attrValue {
	if p.eof() {
		p.fail("expected attribute value, found end of selector")
	}
	r := p.peek()
	switch {
	case r == '"' || r == '\'':
		return attrValue{kind: valueLiteral, literal: p.quoted()}
	case r == '/' && equality:
		return attrValue{kind: valueRegexp, re: p.regex()}
	case equality && strings.HasPrefix(p.src[p.pos:], "type("):
		p.pos += len("type(")
		p.skipSpace()
		name := p.ident()
		p.expect(')')
		return attrValue{kind: valueType, literal: name}
	}
	if v, ok := p.number(); ok {
		return v
	}
	return attrValue{kind: valueLiteral, literal: strings.Join(p.dottedPath(), ".")}
}

// number reads a numeric literal when one is present and not followed by
// more name characters.
func (p *selectorParser) number() (attrValue, bool) {
	start := p.pos
	end := start
	for end < len(p.src) && (p.src[end] >= '0' && p.src[end] <= '9' || p.src[end] == '.') {
		end++
	}
	if end == start {
		return attrValue{}, false
	}
	if end < len(p.src) {
		if r, _ := utf8.DecodeRuneInString(p.src[end:]); isIdentRune(r) {
			return attrValue{}, false
		}
	}
	f, err := strconv.ParseFloat(p.src[start:end], 64)
	if err != nil {
		return attrValue{}, false
	}
	p.pos = end
	return attrValue{kind: valueLiteral, literal: estree.Number(f).String(), number: f, numeric: true}, true
}

func (p *selectorParser) quoted() string {
	quote := p.next()
	var b strings.Builder
	for {
		if p.eof() {
			p.fail("unterminated string")
		}
		r := p.next()
		if r == quote {
			return b.String()
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if p.eof() {
			p.fail("unterminated string")
		}
		switch esc := p.next(); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteRune(esc)
		}
	}
}

// regex reads /pattern/flags. JavaScript flags i, m, s map onto Go's inline
// flags; g, u and y do not change matching of a single value.
func (p *selectorParser) regex() *regexp.Regexp {
	start := p.pos
	p.next() // /
	var b strings.Builder
	inClass := false
	for {
		if p.eof() {
			p.pos = start
			p.fail("unterminated regular expression")
		}
		r := p.next()
		if r == '\\' && !p.eof() {
			b.WriteRune(r)
			b.WriteRune(p.next())
			continue
		}
		if r == '[' {
			inClass = true
		} else if r == ']' {
			inClass = false
		} else if r == '/' && !inClass {
			break
		}
		b.WriteRune(r)
	}
	var flags string
	for !p.eof() && strings.ContainsRune("gimsuy", p.peek()) {
		flags += string(p.next())
	}
	prefix := ""
	for _, f := range "ims" {
		if strings.ContainsRune(flags, f) {
			prefix += string(f)
		}
	}
	pattern := b.String()
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		p.pos = start
		p.fail("invalid regular expression: %v", err)
	}
	return re
}

func (p *selectorParser) pseudo() matcher {
	p.next() // :
	start := p.pos
	name := strings.ToLower(p.ident())
	switch name {
	case "not", "matches", "is", "has":
		p.expect('(')
		inner := p.selectors(name == "has")
		p.expect(')')
		alts := []matcher{inner}
		if list, ok := inner.(anyOf); ok {
			alts = list.alts
		}
		switch name {
		case "not":
			return not{alts: alts}
		case "has":
			return has{alts: alts}
		}
		return anyOf{alts: alts}
	case "first-child":
		return nthChild{n: 1}
	case "last-child":
		return nthChild{n: 1, fromEnd: true}
	case "nth-child", "nth-last-child":
		p.expect('(')
		p.skipSpace()
		numStart := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.next()
		}
		n, err := strconv.Atoi(p.src[numStart:p.pos])
		if err != nil || n < 1 {
			p.pos = numStart
			p.fail("expected positive integer")
		}
		p.expect(')')
		return nthChild{n: n, fromEnd: name == "nth-last-child"}
	case "statement", "expression", "declaration", "function", "pattern":
		return class{name: name}
	}
	p.pos = start
	p.fail("unknown pseudo-class :%s", name)
	return nil
}
