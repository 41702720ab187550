// Package compose builds the self-contained HTML document served to preview
// iframes and public template pages from separate HTML, CSS and JS parts.
package compose

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Global bindings defined by the bootstrap script.
const (
	TranslationsGlobal = "window.__ELYX_TRANSLATIONS__"
	LanguageGlobal     = "window.__ELYX_LANGUAGE__"
)

// Parts are the inputs of a composition.
type Parts struct {
	Name         string
	HTML         string
	CSS          string
	JS           string
	Translations json.RawMessage // {"en": {"key": "text"}, ...}
	Language     string
}

// Bootstrap is the payload handed to the page's own scripts.
type Bootstrap struct {
	Translations map[string]map[string]string `json:"translations"`
	Language     string                       `json:"language"`
}

// Error reports a composition that could not be produced.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compose: %s: %v", e.Reason, e.Err)
	}
	return "compose: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// NewBootstrap decodes a stored translations payload.
func NewBootstrap(raw json.RawMessage, lang string) (*Bootstrap, error) {
	b := &Bootstrap{Translations: map[string]map[string]string{}, Language: lang}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return b, nil
	}
	if err := json.Unmarshal(raw, &b.Translations); err != nil {
		return nil, &Error{Reason: "translations must map language codes to key/text objects", Err: err}
	}
	if b.Translations == nil {
		b.Translations = map[string]map[string]string{}
	}
	return b, nil
}

// Script renders the bootstrap as JavaScript. json.Marshal escapes <, > and
// &, so the payload cannot terminate the surrounding script element.
func (b *Bootstrap) Script() (string, error) {
	tr, err := json.Marshal(b.Translations)
	if err != nil {
		return "", &Error{Reason: "serialize translations", Err: err}
	}
	lang, err := json.Marshal(b.Language)
	if err != nil {
		return "", &Error{Reason: "serialize language", Err: err}
	}
	return fmt.Sprintf("%s = %s;%s = %s;", TranslationsGlobal, tr, LanguageGlobal, lang), nil
}

// Languages returns the language codes present in the payload, sorted.
func (b *Bootstrap) Languages() []string {
	codes := make([]string, 0, len(b.Translations))
	for code := range b.Translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsFullDocument reports whether s already has document structure.
func IsFullDocument(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// Compose returns one browser-renderable document. The only failure is a
// translations payload of the wrong shape, reported as *Error.
func Compose(p Parts) (string, error) {
	boot, err := NewBootstrap(p.Translations, p.Language)
	if err != nil {
		return "", err
	}
	script, err := boot.Script()
	if err != nil {
		return "", err
	}

	style := "<style>" + p.CSS + "</style>"
	bootTag := "<script>" + script + "</script>"
	jsTag := "<script>" + p.JS + "</script>"

	if !IsFullDocument(p.HTML) {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		b.WriteString("<title>" + html.EscapeString(p.Name) + "</title>")
		b.WriteString(style)
		b.WriteString(bootTag)
		b.WriteString("</head><body>")
		b.WriteString(p.HTML)
		b.WriteString(jsTag)
		b.WriteString("</body></html>")
		return b.String(), nil
	}
	return inject(p.HTML, style, bootTag, jsTag), nil
}

// ComposeOrFallback composes p, or returns a fallback document describing
// the failure together with the error.
func ComposeOrFallback(p Parts) (string, error) {
	doc, err := Compose(p)
	if err != nil {
		return Fallback(p.Name, err), err
	}
	return doc, nil
}

// Fallback is the document shown in place of a preview that failed.
func Fallback(name string, cause error) string {
	msg := "This preview could not be rendered."
	if cause != nil {
		msg += " " + cause.Error()
	}
	return `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>` + html.EscapeString(name) +
		`</title></head><body><div role="alert" style="font-family:sans-serif;padding:2rem;color:#b91c1c">` +
		`<strong>Broken preview</strong><p>` + html.EscapeString(msg) + `</p></div></body></html>`
}

// landmarks are byte offsets of structural tags; -1 when absent.
type landmarks struct {
	doctypeEnd  int
	htmlOpenEnd int
	headOpenEnd int
	headClose   int
	bodyOpenEnd int
	bodyClose   int
	htmlClose   int
}

// locate tokenizes doc and records where its structural tags are. Tags that
// only appear inside comments, scripts or styles are not matched.
func locate(doc string) landmarks {
	l := landmarks{-1, -1, -1, -1, -1, -1, -1}
	z := xhtml.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return l
		}
		size := len(z.Raw())
		switch tt {
		case xhtml.DoctypeToken:
			if l.doctypeEnd < 0 {
				l.doctypeEnd = offset + size
			}
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Html:
				if l.htmlOpenEnd < 0 {
					l.htmlOpenEnd = offset + size
				}
			case atom.Head:
				if l.headOpenEnd < 0 {
					l.headOpenEnd = offset + size
				}
			case atom.Body:
				if l.bodyOpenEnd < 0 {
					l.bodyOpenEnd = offset + size
				}
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Head:
				if l.headClose < 0 {
					l.headClose = offset
				}
			case atom.Body:
				l.bodyClose = offset
			case atom.Html:
				l.htmlClose = offset
			}
		}
		offset += size
	}
}

type edit struct {
	at   int
	text string
}

// inject places the head blocks and the behaviour script into a full
// document in a single pass. Blocks already present verbatim are skipped.
func inject(doc, style, bootTag, jsTag string) string {
	l := locate(doc)

	var headBlock string
	for _, block := range []string{style, bootTag} {
		if !strings.Contains(doc, block) {
			headBlock += block
		}
	}

	var edits []edit
	if headBlock != "" {
		switch {
		case l.headClose >= 0:
			edits = append(edits, edit{l.headClose, headBlock})
		case l.headOpenEnd >= 0:
			edits = append(edits, edit{l.headOpenEnd, headBlock})
		case l.htmlOpenEnd >= 0:
			edits = append(edits, edit{l.htmlOpenEnd, "<head>" + headBlock + "</head>"})
		case l.bodyOpenEnd >= 0:
			edits = append(edits, edit{l.bodyOpenEnd, headBlock})
		case l.doctypeEnd >= 0:
			edits = append(edits, edit{l.doctypeEnd, headBlock})
		default:
			edits = append(edits, edit{0, headBlock})
		}
	}
	if !strings.Contains(doc, jsTag) {
		switch {
		case l.bodyClose >= 0:
			edits = append(edits, edit{l.bodyClose, jsTag})
		case l.htmlClose >= 0:
			edits = append(edits, edit{l.htmlClose, jsTag})
		default:
			edits = append(edits, edit{len(doc), jsTag})
		}
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].at < edits[j].at })

	var b strings.Builder
	b.Grow(len(doc) + len(style) + len(bootTag) + len(jsTag) + len("<head></head>"))
	last := 0
	for _, e := range edits {
		b.WriteString(doc[last:e.at])
		b.WriteString(e.text)
		last = e.at
	}
	b.WriteString(doc[last:])
	return b.String()
}
