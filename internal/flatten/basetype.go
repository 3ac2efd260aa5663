package flatten

import (
	"xsdindex/internal/resolver"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// baseTypeSelectors are tried in this fixed priority order; only the
// first node carrying a base attribute is used even when several
// selectors match structurally.
var baseTypeSelectors = [][]string{
	{"complexContent", "extension"},
	{"complexContent", "restriction"},
	{"simpleContent", "extension"},
	{"simpleContent", "restriction"},
	{"restriction"},
	{"simpleType", "restriction"},
}

// BaseType extracts and resolves the component's explicit derivation
// base, or nil when the component derives from nothing by name.
func BaseType(c *schema.Component, doc *schema.Document, r *resolver.Resolver) *schema.BaseType {
	raw := ""
	for _, selector := range baseTypeSelectors {
		node := xmldoc.FindPath(doc.NSMap, c.Node, selector...)
		if node != nil && node.SelectAttrValue("base", "") != "" {
			raw = node.SelectAttrValue("base", "")
			break
		}
	}
	if raw == "" {
		return nil
	}

	kinds := []string{schema.KindComplexType, schema.KindSimpleType}
	return &schema.BaseType{
		Raw:        raw,
		Resolution: r.Resolve(raw, doc, kinds),
	}
}
