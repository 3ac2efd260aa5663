// Package flatten walks component definition subtrees, producing the
// outgoing reference list, the flattened element/attribute field
// records, and the derivation base. Every qualified name it finds is
// resolved independently with the kind expectation implied by the
// attribute that carried it.
package flatten

import (
	"sort"
	"strings"

	"github.com/beevik/etree"

	"xsdindex/internal/resolver"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// carryingAttrs are the attributes whose values are qualified names.
var carryingAttrs = []string{"type", "base", "ref", "itemType", "memberTypes", "substitutionGroup"}

type refKey struct {
	attr  string
	value string
	ctx   string
}

// References collects every qualified-name reference in the
// component's subtree, deduplicated per (attribute, value, context)
// and sorted for determinism. memberTypes lists resolve one token at
// a time.
func References(c *schema.Component, doc *schema.Document, r *resolver.Resolver) []schema.Reference {
	references := []schema.Reference{}
	seen := map[refKey]bool{}

	xmldoc.Walk(c.Node, func(node *etree.Element) {
		for _, attrName := range carryingAttrs {
			raw := node.SelectAttrValue(attrName, "")
			if raw == "" {
				continue
			}
			values := []string{raw}
			if attrName == "memberTypes" {
				values = strings.Fields(raw)
			}
			for _, value := range values {
				context := buildContext(c, node)
				key := refKey{attr: attrName, value: value, ctx: context}
				if seen[key] {
					continue
				}
				seen[key] = true

				expectedKinds := resolver.ExpectedKinds(attrName, node.Tag)
				references = append(references, schema.Reference{
					AttrName:   attrName,
					RawValue:   value,
					Context:    context,
					Resolution: r.Resolve(value, doc, expectedKinds),
				})
			}
		}
	})

	sort.Slice(references, func(i, j int) bool {
		a, b := references[i], references[j]
		if a.AttrName != b.AttrName {
			return a.AttrName < b.AttrName
		}
		if a.RawValue != b.RawValue {
			return a.RawValue < b.RawValue
		}
		return a.Context < b.Context
	})
	return references
}

// buildContext describes where inside the component tree a reference
// was found.
func buildContext(c *schema.Component, node *etree.Element) string {
	if node == c.Node {
		return c.Kind + ":" + c.Name
	}
	nodeName := node.SelectAttrValue("name", "")
	if nodeName == "" {
		nodeName = node.SelectAttrValue("ref", "")
	}
	if nodeName == "" {
		nodeName = "(anonymous)"
	}
	return c.Kind + ":" + c.Name + " > " + node.Tag + ":" + nodeName
}
