// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// parse.go holds the tolerant markup tokenizer and tree builder used by the
// transformer. The tree keeps every byte of the source (tags are stored raw)
// so serializing an unmodified tree reproduces the input exactly.
package editable

import (
	"fmt"
	"strings"
)

type nodeKind int

const (
	textNode nodeKind = iota
	rawNode
	elementNode
)

type attr struct {
	key string
	val string // quotes stripped; brace expressions kept as written
}

type node struct {
	kind     nodeKind
	name     string // tag name as written
	raw      string // text, raw content, or the element's opening tag
	closeRaw string // empty when implicit, void or self-closing
	attrs    []attr
	children []*node
	insert   string // attributes spliced in right after the tag name
}

func (n *node) attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if strings.EqualFold(a.key, key) {
			return a.val, true
		}
	}
	return "", false
}

// serialize writes the tree back out, splicing in pending attributes.
func serialize(root *node) string {
	var b strings.Builder
	for _, c := range root.children {
		c.render(&b)
	}
	return b.String()
}

func (n *node) render(b *strings.Builder) {
	if n.kind != elementNode {
		b.WriteString(n.raw)
		return
	}
	if n.insert != "" {
		at := 1 + len(n.name)
		b.WriteString(n.raw[:at])
		b.WriteString(n.insert)
		b.WriteString(n.raw[at:])
	} else {
		b.WriteString(n.raw)
	}
	for _, c := range n.children {
		c.render(b)
	}
	b.WriteString(n.closeRaw)
}

// parseError describes where and why the source could not be parsed.
type parseError struct {
	offset int
	msg    string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.msg, e.offset)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold content that is never tokenized.
var rawTextElements = map[string]bool{
	"script": true, "style": true, "textarea": true, "title": true,
}

// optionalClose lists HTML elements whose end tag may be omitted.
var optionalClose = map[string]bool{
	"p": true, "li": true, "dt": true, "dd": true, "tr": true, "td": true,
	"th": true, "option": true, "optgroup": true, "thead": true, "tbody": true,
	"tfoot": true, "colgroup": true, "rt": true, "rp": true,
	"html": true, "head": true, "body": true,
}

// closedBy maps an optionally closed element to the start tags that end it.
var closedBy = map[string][]string{
	"li":     {"li"},
	"dt":     {"dt", "dd"},
	"dd":     {"dt", "dd"},
	"tr":     {"tr", "tbody", "tfoot"},
	"td":     {"td", "th", "tr", "tbody", "tfoot"},
	"th":     {"td", "th", "tr", "tbody", "tfoot"},
	"option": {"option", "optgroup"},
	"thead":  {"tbody", "tfoot"},
	"tbody":  {"tbody", "tfoot"},
	"p": {
		"p", "div", "ul", "ol", "dl", "table", "section", "article", "aside",
		"header", "footer", "nav", "main", "form", "blockquote", "pre", "figure",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr",
	},
}

type frame struct {
	n    *node
	expr int // depth of open JSX {…} expressions in this element's children
}

type parser struct {
	src       string
	pos       int
	component bool
	stack     []*frame
	textStart int
}

// parse builds a tree from src. component enables JSX handling: brace
// expressions, fragments, case-sensitive tag matching and JS code context
// outside of markup.
func parse(src string, component bool) (*node, error) {
	root := &node{kind: elementNode}
	p := &parser{src: src, component: component, stack: []*frame{{n: root}}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *parser) top() *frame { return p.stack[len(p.stack)-1] }

// codeContext reports whether the scanner is looking at JS code rather than
// markup children.
func (p *parser) codeContext() bool {
	return p.component && (len(p.stack) == 1 || p.top().expr > 0)
}

func (p *parser) flushText() {
	if p.pos > p.textStart {
		t := p.top().n
		t.children = append(t.children, &node{kind: textNode, raw: p.src[p.textStart:p.pos]})
	}
	p.textStart = p.pos
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if p.codeContext() {
			if skipped, err := p.skipCode(); err != nil {
				return err
			} else if skipped {
				continue
			}
		}
		switch {
		case c == '{' && p.component:
			p.top().expr++
			p.pos++
		case c == '}' && p.component:
			if f := p.top(); f.expr > 0 {
				f.expr--
			}
			p.pos++
		case c == '<':
			if err := p.lt(); err != nil {
				return err
			}
		default:
			p.pos++
		}
	}
	p.flushText()
	return p.finish()
}

// skipCode steps over a JS string or comment at the cursor.
func (p *parser) skipCode() (bool, error) {
	s, i := p.src, p.pos
	switch {
	case s[i] == '"' || s[i] == '\'' || s[i] == '`':
		end, err := skipString(s, i)
		if err != nil {
			return false, err
		}
		p.pos = end
		return true, nil
	case strings.HasPrefix(s[i:], "//"):
		if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
			p.pos = i + nl + 1
		} else {
			p.pos = len(s)
		}
		return true, nil
	case strings.HasPrefix(s[i:], "/*"):
		end := strings.Index(s[i+2:], "*/")
		if end < 0 {
			return false, &parseError{i, "unterminated comment"}
		}
		p.pos = i + 2 + end + 2
		return true, nil
	}
	return false, nil
}

// skipString returns the offset just past the quoted string starting at i.
func skipString(s string, i int) (int, error) {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case q:
			return j + 1, nil
		}
	}
	return 0, &parseError{i, "unterminated string"}
}

// skipBraces returns the offset just past the balanced {…} starting at i.
func skipBraces(s string, i int) (int, error) {
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '"', '\'', '`':
			end, err := skipString(s, j)
			if err != nil {
				return 0, err
			}
			j = end - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1, nil
			}
		}
	}
	return 0, &parseError{i, "unbalanced braces"}
}

func (p *parser) lt() error {
	s, i := p.src, p.pos
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			return &parseError{i, "unterminated comment"}
		}
		p.flushText()
		p.pos = i + 4 + end + 3
		p.appendRaw(s[i:p.pos])
	case strings.HasPrefix(rest, "<!") || strings.HasPrefix(rest, "<?"):
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return &parseError{i, "unterminated declaration"}
		}
		p.flushText()
		p.pos = i + end + 1
		p.appendRaw(s[i:p.pos])
	case strings.HasPrefix(rest, "</") && len(rest) > 2 && (isNameStart(rest[2]) || (p.component && rest[2] == '>')):
		return p.closeTag()
	case len(rest) > 1 && (isNameStart(rest[1]) || (p.component && rest[1] == '>')):
		if p.codeContext() && !p.tagAllowed() {
			p.pos++
			return nil
		}
		return p.openTag()
	default:
		p.pos++
	}
	return nil
}

func (p *parser) appendRaw(raw string) {
	t := p.top().n
	t.children = append(t.children, &node{kind: rawNode, raw: raw})
	p.textStart = p.pos
}

// tagAllowed decides whether a '<' in JS code starts JSX. It does when the
// previous significant token can precede an expression.
func (p *parser) tagAllowed() bool {
	j := p.pos - 1
	for j >= 0 && isSpace(p.src[j]) {
		j--
	}
	if j < 0 {
		return true
	}
	if strings.IndexByte("(=,?:{}[&|;>!", p.src[j]) >= 0 {
		return true
	}
	return strings.HasSuffix(p.src[:j+1], "return")
}

func (p *parser) openTag() error {
	s, start := p.src, p.pos
	i := start + 1
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	n := &node{kind: elementNode, name: s[start+1 : i]}
	selfClosing := false

loop:
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return &parseError{start, "unterminated tag <" + n.name}
		}
		switch {
		case strings.HasPrefix(s[i:], "/>"):
			selfClosing = true
			i += 2
			break loop
		case s[i] == '>':
			i++
			break loop
		case s[i] == '{':
			end, err := skipBraces(s, i)
			if err != nil {
				return err
			}
			n.attrs = append(n.attrs, attr{val: s[i:end]})
			i = end
			continue
		}
		k := i
		for i < len(s) && !isSpace(s[i]) && strings.IndexByte("=>/\"'", s[i]) < 0 {
			i++
		}
		if k == i {
			i++ // stray character inside the tag
			continue
		}
		a := attr{key: s[k:i]}
		j := i
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j < len(s) && s[j] == '=' {
			j++
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j >= len(s) {
				return &parseError{start, "unterminated tag <" + n.name}
			}
			switch s[j] {
			case '"', '\'':
				end := strings.IndexByte(s[j+1:], s[j])
				if end < 0 {
					return &parseError{j, "unterminated attribute value"}
				}
				a.val = s[j+1 : j+1+end]
				i = j + 1 + end + 1
			case '{':
				end, err := skipBraces(s, j)
				if err != nil {
					return err
				}
				a.val = s[j:end]
				i = end
			default:
				v := j
				for j < len(s) && !isSpace(s[j]) && s[j] != '>' {
					j++
				}
				a.val = s[v:j]
				i = j
			}
		}
		n.attrs = append(n.attrs, a)
	}

	p.flushText()
	n.raw = s[start:i]
	p.pos = i
	p.textStart = i

	lower := strings.ToLower(n.name)
	if !p.component {
		p.autoClose(lower)
	}
	parent := p.top().n
	parent.children = append(parent.children, n)

	switch {
	case selfClosing || (voidElements[lower] && !p.component):
		return nil
	case rawTextElements[lower]:
		return p.rawText(n)
	}
	p.stack = append(p.stack, &frame{n: n})
	return nil
}

// rawText consumes everything up to the element's end tag.
func (p *parser) rawText(n *node) error {
	s := p.src
	closing := "</" + strings.ToLower(n.name)
	at := strings.Index(strings.ToLower(s[p.pos:]), closing)
	if at < 0 {
		return &parseError{p.pos, "unclosed <" + n.name + ">"}
	}
	if at > 0 {
		n.children = append(n.children, &node{kind: rawNode, raw: s[p.pos : p.pos+at]})
	}
	end := strings.IndexByte(s[p.pos+at:], '>')
	if end < 0 {
		return &parseError{p.pos + at, "unterminated end tag"}
	}
	n.closeRaw = s[p.pos+at : p.pos+at+end+1]
	p.pos += at + end + 1
	p.textStart = p.pos
	return nil
}

// autoClose pops optionally closed elements ended by a new start tag.
func (p *parser) autoClose(lower string) {
	for len(p.stack) > 1 {
		cur := strings.ToLower(p.top().n.name)
		ends := false
		for _, t := range closedBy[cur] {
			if t == lower {
				ends = true
				break
			}
		}
		if !ends {
			return
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *parser) closeTag() error {
	s, start := p.src, p.pos
	i := start + 2
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	name := s[start+2 : i]
	end := strings.IndexByte(s[i:], '>')
	if end < 0 {
		return &parseError{start, "unterminated end tag"}
	}
	p.flushText()
	raw := s[start : i+end+1]
	p.pos = i + end + 1
	p.textStart = p.pos

	match := -1
	for k := len(p.stack) - 1; k > 0; k-- {
		if p.sameName(p.stack[k].n.name, name) {
			match = k
			break
		}
	}
	if match < 0 {
		if !p.component && voidElements[strings.ToLower(name)] {
			p.appendRaw(raw)
			return nil
		}
		return &parseError{start, "unexpected end tag </" + name + ">"}
	}
	for k := len(p.stack) - 1; k > match; k-- {
		open := p.stack[k].n.name
		if p.component || !optionalClose[strings.ToLower(open)] {
			return &parseError{start, fmt.Sprintf("end tag </%s> crosses open <%s>", name, open)}
		}
	}
	p.stack[match].n.closeRaw = raw
	p.stack = p.stack[:match]
	return nil
}

func (p *parser) sameName(a, b string) bool {
	if p.component {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func (p *parser) finish() error {
	for k := len(p.stack) - 1; k > 0; k-- {
		open := p.stack[k].n.name
		if p.component || !optionalClose[strings.ToLower(open)] {
			return &parseError{len(p.src), "unclosed <" + open + ">"}
		}
	}
	return nil
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':' || c == '.'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
