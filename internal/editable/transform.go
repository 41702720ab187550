// Package editable rewrites creator-submitted markup so a visual editor can
// target its text and image elements. Eligible elements are annotated with
// stable data-elyx-* attributes; nothing else in the source changes.
package editable

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Language classifies the shape of a raw template source.
type Language string

const (
	LanguageFragment  Language = "html-fragment"
	LanguageDocument  Language = "full-html-document"
	LanguageComponent Language = "component-source"
)

// Role is the kind of content an editable element carries.
type Role string

const (
	RoleText  Role = "text"
	RoleImage Role = "image"
)

// Marker attributes written onto annotated elements.
const (
	AttrID      = "data-elyx-id"
	AttrRole    = "data-elyx-role"
	AttrScope   = "data-elyx-scope"
	AttrDefault = "data-elyx-default"
)

// Options controls a single transformation.
type Options struct {
	Language Language // empty means DetectLanguage
	Scope    string   // usually the template ID
}

// Element describes one editable element in document order.
type Element struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Tag     string `json:"tag"`
	Default string `json:"default"`
}

// Document is the result of a transformation.
type Document struct {
	Source   string    `json:"source"`
	Elements []Element `json:"elements"`
}

// Warning reports that the source could not be annotated. The Document
// returned alongside it carries the original source unchanged.
type Warning struct {
	Language Language
	Reason   string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("editable markup not applied (%s): %s", w.Language, w.Reason)
}

// DetectLanguage guesses the language of a source when none was given.
// Script and style bodies are ignored, so inline JS in an HTML template
// never makes it look like component source.
func DetectLanguage(src string) Language {
	if lang := MarkupLanguage(src); lang == LanguageDocument {
		return lang
	}
	head := strings.ToLower(rawTextRe.ReplaceAllString(strings.TrimSpace(src), ""))
	switch {
	case strings.HasPrefix(head, "import "),
		strings.Contains(head, "export default"),
		strings.Contains(head, "classname="),
		strings.Contains(head, "return ("):
		return LanguageComponent
	}
	return LanguageFragment
}

// MarkupLanguage classifies stored HTML template markup. It only ever
// returns LanguageDocument or LanguageFragment.
func MarkupLanguage(src string) Language {
	head := strings.ToLower(strings.TrimSpace(src))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return LanguageDocument
	}
	return LanguageFragment
}

// rawTextRe matches script and style elements including their bodies.
var rawTextRe = regexp.MustCompile(`(?is)<(?:script|style)\b[^>]*>.*?</(?:script|style)\s*>`)

// skipSubtree lists elements whose descendants are never editable.
var skipSubtree = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "textarea": true, "title": true,
}

// bgImageRe finds a url(...) inside background declarations, in CSS
// (background-image: url(x)), JSX style objects (backgroundImage: "url(x)")
// and template literals (background: `url(${img})`).
var bgImageRe = regexp.MustCompile(`(?i)background(?:-image|image)?\s*:\s*(?:\$\{[^}]*\}|[^;}])*?url\(\s*['"]?((?:\$\{[^}]*\}|[^'")])+)`)

// Transform annotates src. On malformed input it returns the source
// unchanged together with a *Warning; the Document is never nil.
func Transform(src string, opts Options) (*Document, error) {
	lang := opts.Language
	if lang == "" {
		lang = DetectLanguage(src)
	}
	component := lang == LanguageComponent

	root, err := parse(src, component)
	if err != nil {
		return &Document{Source: src}, &Warning{Language: lang, Reason: err.Error()}
	}

	a := &annotator{
		scope:     opts.Scope,
		component: component,
		used:      map[Role]map[int]bool{RoleText: {}, RoleImage: {}},
		next:      map[Role]int{},
	}
	a.collectUsed(root)
	a.walk(root, false)

	return &Document{Source: serialize(root), Elements: a.elements}, nil
}

type annotator struct {
	scope     string
	component bool
	used      map[Role]map[int]bool
	next      map[Role]int
	elements  []Element
}

// collectUsed records indices taken by existing markers so new IDs never
// collide with them.
func (a *annotator) collectUsed(n *node) {
	for _, c := range n.children {
		if c.kind != elementNode {
			continue
		}
		if id, ok := c.attr(AttrID); ok {
			for _, role := range []Role{RoleText, RoleImage} {
				prefix := string(role) + "-"
				if i, err := strconv.Atoi(strings.TrimPrefix(id, prefix)); err == nil && strings.HasPrefix(id, prefix) {
					a.used[role][i] = true
				}
			}
		}
		a.collectUsed(c)
	}
}

func (a *annotator) nextID(role Role) string {
	i := a.next[role]
	for a.used[role][i] {
		i++
	}
	a.used[role][i] = true
	a.next[role] = i + 1
	return fmt.Sprintf("%s-%d", role, i)
}

func (a *annotator) walk(n *node, skip bool) {
	for _, c := range n.children {
		if c.kind != elementNode {
			continue
		}
		lower := strings.ToLower(c.name)
		childSkip := skip || skipSubtree[lower]
		if !childSkip && c.name != "" {
			a.visit(c, lower)
		}
		a.walk(c, childSkip)
	}
}

func (a *annotator) visit(c *node, lower string) {
	if id, ok := c.attr(AttrID); ok {
		role, _ := c.attr(AttrRole)
		def, _ := c.attr(AttrDefault)
		if Role(role) == RoleText {
			def = a.leafText(c)
		}
		a.elements = append(a.elements, Element{ID: id, Role: Role(role), Tag: c.name, Default: html.UnescapeString(def)})
		return
	}
	if src, ok := imageSource(c, lower); ok {
		src = html.UnescapeString(src)
		id := a.nextID(RoleImage)
		c.insert = a.markers(id, RoleImage) + fmt.Sprintf(` %s="%s"`, AttrDefault, html.EscapeString(src))
		a.elements = append(a.elements, Element{ID: id, Role: RoleImage, Tag: c.name, Default: src})
		return
	}
	if text, ok := a.textLeaf(c); ok {
		id := a.nextID(RoleText)
		c.insert = a.markers(id, RoleText)
		a.elements = append(a.elements, Element{ID: id, Role: RoleText, Tag: c.name, Default: text})
	}
}

func (a *annotator) markers(id string, role Role) string {
	s := fmt.Sprintf(` %s="%s" %s="%s"`, AttrID, id, AttrRole, role)
	if a.scope != "" {
		s += fmt.Sprintf(` %s="%s"`, AttrScope, html.EscapeString(a.scope))
	}
	return s
}

// imageSource reports whether c produces an image and returns its source.
func imageSource(c *node, lower string) (string, bool) {
	if lower == "img" || lower == "image" {
		for _, k := range []string{"src", "href", "xlink:href"} {
			if v, ok := c.attr(k); ok {
				return v, true
			}
		}
		return "", true
	}
	for _, a := range c.attrs {
		if !strings.EqualFold(a.key, "style") {
			continue
		}
		if m := bgImageRe.FindStringSubmatch(a.val); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// textLeaf reports whether c holds only text, and returns that text.
func (a *annotator) textLeaf(c *node) (string, bool) {
	if len(c.children) == 0 {
		return "", false
	}
	for _, ch := range c.children {
		switch {
		case ch.kind == textNode:
		case ch.kind == rawNode && strings.HasPrefix(ch.raw, "<!--"):
		default:
			return "", false
		}
	}
	text := a.leafText(c)
	if text == "" {
		return "", false
	}
	return text, true
}

func (a *annotator) leafText(c *node) string {
	var b strings.Builder
	for _, ch := range c.children {
		if ch.kind == textNode {
			b.WriteString(ch.raw)
		}
	}
	text := b.String()
	if a.component {
		text = stripExpressions(text)
	}
	return strings.TrimSpace(html.UnescapeString(text))
}

// stripExpressions removes JSX {…} expressions from text.
func stripExpressions(s string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '{' {
			end, err := skipBraces(s, i)
			if err != nil {
				return b.String()
			}
			i = end
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
