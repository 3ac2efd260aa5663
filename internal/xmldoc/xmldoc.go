// Package xmldoc loads XSD files into walkable element trees and
// provides the node-level extraction helpers shared by ingestion and
// field flattening.
package xmldoc

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// XSNamespace is the reserved XML-Schema namespace. Names resolving
// into it are built-in primitives and never resolve against user
// schemas.
const XSNamespace = "http://www.w3.org/2001/XMLSchema"

// FacetNames lists the recognized restriction facets in extraction
// priority order.
var FacetNames = []string{
	"maxLength",
	"minLength",
	"pattern",
	"length",
	"totalDigits",
	"fractionDigits",
	"minInclusive",
	"maxInclusive",
	"minExclusive",
	"maxExclusive",
}

// Document is one parsed XSD file plus its file-scoped prefix map.
type Document struct {
	Path     string
	FileName string
	Root     *etree.Element

	// NSMap maps namespace prefixes to URIs, collected from every
	// xmlns declaration in the file. The default declaration is keyed
	// by the empty prefix; xs and xsd are pre-seeded to XSNamespace.
	NSMap map[string]string
}

// Load parses one XSD file into a Document.
func Load(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fromTree(path, doc)
}

// Parse builds a Document from in-memory schema bytes; path is used
// for identity and relative dependency resolution only.
func Parse(path string, data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fromTree(path, doc)
}

func fromTree(path string, doc *etree.Document) (*Document, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no root element", path)
	}
	return &Document{
		Path:     path,
		FileName: filepath.Base(path),
		Root:     root,
		NSMap:    collectNSMap(root),
	}, nil
}

func collectNSMap(root *etree.Element) map[string]string {
	nsmap := map[string]string{"xs": XSNamespace, "xsd": XSNamespace}
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, attr := range el.Attr {
			switch {
			case attr.Space == "xmlns":
				nsmap[attr.Key] = attr.Value
			case attr.Space == "" && attr.Key == "xmlns":
				nsmap[""] = attr.Value
			}
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return nsmap
}

// ElementNamespace resolves an element's prefix through the file's
// prefix map. An unprefixed element falls under the default
// declaration, if any.
func ElementNamespace(nsmap map[string]string, el *etree.Element) string {
	return nsmap[el.Space]
}

// IsSchemaElem reports whether an element belongs to the XML-Schema
// namespace in this file.
func IsSchemaElem(nsmap map[string]string, el *etree.Element) bool {
	return ElementNamespace(nsmap, el) == XSNamespace
}

// ChildNS returns the first XML-Schema child with the given local name.
func ChildNS(nsmap map[string]string, el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == local && IsSchemaElem(nsmap, child) {
			return child
		}
	}
	return nil
}

// ChildrenNS returns every XML-Schema child with the given local name.
func ChildrenNS(nsmap map[string]string, el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == local && IsSchemaElem(nsmap, child) {
			out = append(out, child)
		}
	}
	return out
}

// FindPath walks ChildNS step by step and returns the final element,
// or nil as soon as a step is missing.
func FindPath(nsmap map[string]string, el *etree.Element, locals ...string) *etree.Element {
	cur := el
	for _, local := range locals {
		cur = ChildNS(nsmap, cur, local)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk visits el and every descendant element in document order.
func Walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		Walk(child, fn)
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses all whitespace runs to single spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func innerText(el *etree.Element) string {
	var chunks []string
	var gather func(el *etree.Element)
	gather = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				chunks = append(chunks, t.Data)
			case *etree.Element:
				gather(t)
			}
		}
	}
	gather(el)
	return strings.Join(chunks, " ")
}

// Documentation returns the cleaned annotation/documentation texts of
// a node, empties dropped.
func Documentation(nsmap map[string]string, el *etree.Element) []string {
	var docs []string
	for _, ann := range ChildrenNS(nsmap, el, "annotation") {
		for _, doc := range ChildrenNS(nsmap, ann, "documentation") {
			if text := CleanText(innerText(doc)); text != "" {
				docs = append(docs, text)
			}
		}
	}
	return docs
}

// Occurrence renders the minOccurs/maxOccurs pair, defaulting both
// bounds to 1.
func Occurrence(el *etree.Element) string {
	minOccurs := el.SelectAttrValue("minOccurs", "1")
	maxOccurs := el.SelectAttrValue("maxOccurs", "1")
	if minOccurs == "1" && maxOccurs == "1" {
		return "1..1"
	}
	return minOccurs + ".." + maxOccurs
}
