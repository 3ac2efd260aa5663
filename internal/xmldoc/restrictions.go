package xmldoc

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"xsdindex/internal/schema"
)

// RestrictionsFromNode summarizes the nearest restriction reachable
// from a node: a direct restriction child, else one wrapped in an
// anonymous simpleType.
func RestrictionsFromNode(nsmap map[string]string, el *etree.Element) schema.Restrictions {
	restriction := ChildNS(nsmap, el, "restriction")
	if restriction == nil {
		if simpleType := ChildNS(nsmap, el, "simpleType"); simpleType != nil {
			restriction = ChildNS(nsmap, simpleType, "restriction")
		}
	}
	out := schema.EmptyRestrictions()
	if restriction == nil {
		return out
	}

	out.Base = restriction.SelectAttrValue("base", "")
	for _, enum := range ChildrenNS(nsmap, restriction, "enumeration") {
		if attr := enum.SelectAttr("value"); attr != nil {
			out.Enumerations = append(out.Enumerations, attr.Value)
		}
	}
	for _, facet := range FacetNames {
		node := ChildNS(nsmap, restriction, facet)
		if node == nil {
			continue
		}
		if attr := node.SelectAttr("value"); attr != nil {
			out.Facets[facet] = attr.Value
		}
	}
	return out
}

// inlineTypeSelectors are tried in order; the first base found wins.
var inlineTypeSelectors = [][]string{
	{"complexType", "complexContent", "extension"},
	{"complexType", "complexContent", "restriction"},
	{"complexType", "simpleContent", "extension"},
	{"complexType", "simpleContent", "restriction"},
}

// InferInlineType extracts the base of an inline anonymous type
// definition, when a field carries neither a type nor a ref.
func InferInlineType(nsmap map[string]string, el *etree.Element) string {
	for _, selector := range inlineTypeSelectors {
		candidate := FindPath(nsmap, el, selector...)
		if candidate != nil && candidate.SelectAttrValue("base", "") != "" {
			return candidate.SelectAttrValue("base", "")
		}
	}
	restriction := FindPath(nsmap, el, "simpleType", "restriction")
	if restriction == nil {
		return ""
	}
	return restriction.SelectAttrValue("base", "")
}

// EnumValues collects every descendant enumeration value in document
// order, deduplicated with first occurrence kept.
func EnumValues(nsmap map[string]string, el *etree.Element) []string {
	values := []string{}
	seen := map[string]bool{}
	for _, child := range el.ChildElements() {
		Walk(child, func(node *etree.Element) {
			if node.Tag != "enumeration" || !IsSchemaElem(nsmap, node) {
				return
			}
			attr := node.SelectAttr("value")
			if attr == nil || seen[attr.Value] {
				return
			}
			seen[attr.Value] = true
			values = append(values, attr.Value)
		})
	}
	return values
}

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9._-]+`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// Slugify normalizes a name for use inside stable identifiers.
func Slugify(value string) string {
	lowered := strings.TrimSpace(strings.ToLower(value))
	lowered = slugInvalidRe.ReplaceAllString(lowered, "-")
	lowered = slugCollapseRe.ReplaceAllString(lowered, "-")
	lowered = strings.Trim(lowered, "-")
	if lowered == "" {
		return "item"
	}
	return lowered
}
