package resolver

import "xsdindex/internal/schema"

// ExpectedKinds returns the component kinds a carrying attribute may
// legally point at, given the local name of the element that carries
// it. nil means the attribute places no kind constraint.
func ExpectedKinds(attrName, ownerLocal string) []string {
	switch attrName {
	case "type", "base":
		return []string{schema.KindComplexType, schema.KindSimpleType}
	case "itemType", "memberTypes":
		return []string{schema.KindSimpleType}
	case "substitutionGroup":
		return []string{schema.KindElement}
	case "ref":
		switch ownerLocal {
		case "element":
			return []string{schema.KindElement}
		case "attribute":
			return []string{schema.KindAttribute}
		case "group":
			return []string{schema.KindGroup}
		case "attributeGroup":
			return []string{schema.KindAttributeGroup}
		}
	}
	return nil
}
