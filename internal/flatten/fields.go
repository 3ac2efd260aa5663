package flatten

import (
	"fmt"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"xsdindex/internal/resolver"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// containerTags are the content-model wrappers the walkers descend
// through without extending the structural path.
var containerTags = map[string]bool{
	"sequence":       true,
	"choice":         true,
	"all":            true,
	"group":          true,
	"complexType":    true,
	"complexContent": true,
	"simpleContent":  true,
	"extension":      true,
	"restriction":    true,
}

// fieldDepth derives nesting depth purely from the path string; the
// component root itself is depth 0.
func fieldDepth(path string) int {
	segments := 0
	for _, chunk := range strings.Split(path, "/") {
		if chunk != "" {
			segments++
		}
	}
	if segments <= 1 {
		return 0
	}
	return segments - 1
}

func seedPath(c *schema.Component) string {
	if c.Kind == schema.KindElement || c.Kind == schema.KindComplexType {
		return c.Name
	}
	return ""
}

func joinPath(current, segment string) string {
	if current == "" {
		return segment
	}
	return current + "/" + segment
}

func resolveOptional(raw string, doc *schema.Document, r *resolver.Resolver, expectedKinds []string) *schema.Resolution {
	if raw == "" {
		return nil
	}
	return r.Resolve(raw, doc, expectedKinds)
}

// ElementFields flattens every nested element declaration of the
// component's content model into addressable records, in document
// order, re-sorted by structural path for presentation stability.
// Paths are not unique; fields are identified by their sequential id.
func ElementFields(c *schema.Component, doc *schema.Document, r *resolver.Resolver) []schema.ElementField {
	fields := []schema.ElementField{}
	counter := 0

	var walk func(node *etree.Element, currentPath string)
	walk = func(node *etree.Element, currentPath string) {
		for _, child := range node.ChildElements() {
			tag := child.Tag
			switch {
			case tag == "element":
				counter++
				name := child.SelectAttrValue("name", "")
				if name == "" {
					name = child.SelectAttrValue("ref", "")
				}
				if name == "" {
					name = "(anonymous)"
				}
				path := joinPath(currentPath, name)

				raw := child.SelectAttrValue("ref", "")
				if raw == "" {
					raw = child.SelectAttrValue("type", "")
				}
				if raw == "" {
					raw = xmldoc.InferInlineType(doc.NSMap, child)
				}

				expectedKinds := []string{schema.KindComplexType, schema.KindSimpleType}
				if child.SelectAttrValue("ref", "") != "" {
					expectedKinds = []string{schema.KindElement}
				}

				fields = append(fields, schema.ElementField{
					ID:            fmt.Sprintf("%s:element-field:%d", c.ID, counter),
					Path:          path,
					Depth:         fieldDepth(path),
					Name:          name,
					Occurrence:    xmldoc.Occurrence(child),
					Documentation: strings.Join(xmldoc.Documentation(doc.NSMap, child), "; "),
					RawTypeOrRef:  raw,
					Resolution:    resolveOptional(raw, doc, r, expectedKinds),
					Restrictions:  xmldoc.RestrictionsFromNode(doc.NSMap, child),
				})
				walk(child, path)
			case containerTags[tag]:
				walk(child, currentPath)
			}
		}
	}

	walk(c.Node, seedPath(c))
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}

// AttributeFields flattens nested attribute declarations and
// attributeGroup references. Attribute paths do not nest: children of
// an attribute keep the parent's path.
func AttributeFields(c *schema.Component, doc *schema.Document, r *resolver.Resolver) []schema.AttributeField {
	fields := []schema.AttributeField{}
	counter := 0

	var walk func(node *etree.Element, currentPath string)
	walk = func(node *etree.Element, currentPath string) {
		for _, child := range node.ChildElements() {
			tag := child.Tag
			switch {
			case tag == "attribute":
				counter++
				name := child.SelectAttrValue("name", "")
				if name == "" {
					name = child.SelectAttrValue("ref", "")
				}
				if name == "" {
					name = "(anonymous)"
				}
				path := joinPath(currentPath, "@"+name)

				raw := child.SelectAttrValue("type", "")
				if raw == "" {
					raw = child.SelectAttrValue("ref", "")
				}
				if raw == "" {
					raw = xmldoc.InferInlineType(doc.NSMap, child)
				}

				expectedKinds := []string{schema.KindSimpleType}
				if child.SelectAttrValue("ref", "") != "" {
					expectedKinds = []string{schema.KindAttribute}
				}

				fields = append(fields, schema.AttributeField{
					ID:            fmt.Sprintf("%s:attribute-field:%d", c.ID, counter),
					Path:          path,
					Depth:         fieldDepth(path),
					Name:          name,
					Use:           child.SelectAttrValue("use", "optional"),
					Documentation: strings.Join(xmldoc.Documentation(doc.NSMap, child), "; "),
					RawTypeOrRef:  raw,
					Resolution:    resolveOptional(raw, doc, r, expectedKinds),
					Restrictions:  xmldoc.RestrictionsFromNode(doc.NSMap, child),
				})
				walk(child, currentPath)
			case tag == "attributeGroup":
				counter++
				rawRef := child.SelectAttrValue("ref", "")
				path := joinPath(currentPath, "@group:"+rawRef)
				name := rawRef
				if name == "" {
					name = "(attributeGroup)"
				}

				fields = append(fields, schema.AttributeField{
					ID:           fmt.Sprintf("%s:attribute-field:%d", c.ID, counter),
					Path:         path,
					Depth:        fieldDepth(path),
					Name:         name,
					Use:          "n/a",
					RawTypeOrRef: rawRef,
					Resolution:   resolveOptional(rawRef, doc, r, []string{schema.KindAttributeGroup}),
					Restrictions: schema.EmptyRestrictions(),
				})
				walk(child, currentPath)
			case containerTags[tag]:
				walk(child, currentPath)
			}
		}
	}

	walk(c.Node, seedPath(c))
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return fields
}
