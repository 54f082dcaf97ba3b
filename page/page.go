// Package page loads the HTML documents that host kaleidoscope canvases.
//
// Only the element tree and attributes matter: a page is searched for
// elements carrying marker attributes such as tlg-kaleidoscope-canvas, and
// their attributes configure the effect. Layout is reduced to an explicit
// pixel size per container (width/height attributes or inline style).
package page

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is one HTML element with its attributes.
type Element struct {
	Tag      string
	Parent   *Element
	Children []*Element

	attrs []html.Attribute
}

// Attr returns the value of the named attribute. Attribute names are
// matched case-insensitively, as in HTML.
func (e *Element) Attr(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.attrs {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the element carries the named attribute.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// QueryAll returns the descendants of e (excluding e) that carry the named
// attribute, in document order.
func (e *Element) QueryAll(attr string) []*Element {
	var out []*Element
	var walk func(n *Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if c.HasAttr(attr) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// Size returns the element's declared pixel size. The width and height
// attributes win over inline style; missing or unparsable dimensions yield
// the given defaults.
func (e *Element) Size(defW, defH float64) (w, h float64) {
	w, h = defW, defH
	style := parseStyle(e)
	if v, ok := style["width"]; ok {
		if px, ok := parsePixels(v); ok {
			w = px
		}
	}
	if v, ok := style["height"]; ok {
		if px, ok := parsePixels(v); ok {
			h = px
		}
	}
	if v, ok := e.Attr("width"); ok {
		if px, ok := parsePixels(v); ok {
			w = px
		}
	}
	if v, ok := e.Attr("height"); ok {
		if px, ok := parsePixels(v); ok {
			h = px
		}
	}
	return w, h
}

func parseStyle(e *Element) map[string]string {
	raw, ok := e.Attr("style")
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		k, v, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// parsePixels accepts "240", "240px" and "240.5px". Other units are
// rejected.
func parsePixels(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Document is a parsed page.
type Document struct {
	Root  *Element
	Title string
	// BaseDir resolves relative image sources.
	BaseDir string
}

// Parse reads an HTML document. baseDir is used to resolve relative image
// sources.
func Parse(r io.Reader, baseDir string) (*Document, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	doc := &Document{BaseDir: baseDir}
	doc.Root = convert(n, nil, doc)
	return doc, nil
}

// Load reads and parses the HTML file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Parse(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", path, err)
	}
	return doc, nil
}

// convert builds the Element tree from the html node tree. Non-element nodes
// are skipped but their element children are kept.
func convert(n *html.Node, parent *Element, doc *Document) *Element {
	el := parent
	if n.Type == html.ElementNode || n.Type == html.DocumentNode {
		el = &Element{Tag: n.Data, Parent: parent, attrs: n.Attr}
		if n.Type == html.DocumentNode {
			el.Tag = "#document"
		}
		if parent != nil {
			parent.Children = append(parent.Children, el)
		}
		if n.DataAtom == atom.Title && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			doc.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		convert(c, el, doc)
	}
	return el
}

// QueryAll returns every element in the document carrying the attribute.
func (d *Document) QueryAll(attr string) []*Element {
	return d.Root.QueryAll(attr)
}

// Resolve turns an element's src attribute into a file path. Absolute paths
// are returned unchanged; others are joined onto BaseDir. ok is false when
// the element has no usable src.
func (d *Document) Resolve(e *Element) (path string, ok bool) {
	src, ok := e.Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return "", false
	}
	src = strings.TrimPrefix(src, "file://")
	if filepath.IsAbs(src) {
		return src, true
	}
	return filepath.Join(d.BaseDir, filepath.FromSlash(src)), true
}
