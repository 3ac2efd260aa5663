package schema

import "github.com/beevik/etree"

// Kind names of the global declarations tracked by the index.
const (
	KindElement        = "element"
	KindComplexType    = "complexType"
	KindSimpleType     = "simpleType"
	KindAttribute      = "attribute"
	KindGroup          = "group"
	KindAttributeGroup = "attributeGroup"
)

var globalKinds = map[string]bool{
	KindElement:        true,
	KindComplexType:    true,
	KindSimpleType:     true,
	KindAttribute:      true,
	KindGroup:          true,
	KindAttributeGroup: true,
}

// IsGlobalKind reports whether a top-level child tag declares a named
// component the catalog should track.
func IsGlobalKind(kind string) bool {
	return globalKinds[kind]
}

// Warning codes embedded in the output artifact.
const (
	WarnUnresolvedReference = "UNRESOLVED_REFERENCE"
	WarnMissingDependency   = "MISSING_DEPENDENCY"
)

// Dependency is one import/include directive found in a schema file.
type Dependency struct {
	Kind             string `json:"kind"`
	Location         string `json:"location"`
	Namespace        string `json:"namespace"`
	ResolvedFileName string `json:"resolvedFileName"`
	Exists           bool   `json:"exists"`
}

// Resolution is the outcome of resolving one qualified name.
// Immutable once produced.
type Resolution struct {
	Raw              string   `json:"raw"`
	Namespace        string   `json:"namespace"`
	Local            string   `json:"local"`
	IsBuiltin        bool     `json:"isBuiltin"`
	TargetIDs        []string `json:"targetIds"`
	Ambiguous        bool     `json:"ambiguous"`
	UnresolvedReason string   `json:"unresolvedReason,omitempty"`
}

// Reference is a directed outgoing edge carried by a qualified-name
// attribute somewhere inside a component's subtree.
type Reference struct {
	AttrName   string      `json:"attrName"`
	RawValue   string      `json:"rawValue"`
	Context    string      `json:"context"`
	Resolution *Resolution `json:"resolution"`
}

// InboundReference is the inverse edge attached to a resolution target.
type InboundReference struct {
	SourceID string `json:"sourceId"`
	AttrName string `json:"attrName"`
	RawValue string `json:"rawValue"`
	Context  string `json:"context"`
}

// Restrictions summarizes the nearest restriction node of a component
// or field: its base, enumeration values and recognized facets.
type Restrictions struct {
	Base         string            `json:"base"`
	Enumerations []string          `json:"enumerations"`
	Facets       map[string]string `json:"facets"`
}

// EmptyRestrictions returns the zero summary with allocated collections
// so it always encodes as {"base":"","enumerations":[],"facets":{}}.
func EmptyRestrictions() Restrictions {
	return Restrictions{
		Base:         "",
		Enumerations: []string{},
		Facets:       map[string]string{},
	}
}

// BaseType is a component's explicit derivation base, when present.
type BaseType struct {
	Raw        string      `json:"raw"`
	Resolution *Resolution `json:"resolution"`
}

// ElementField is one flattened nested element declaration.
type ElementField struct {
	ID            string       `json:"id"`
	Path          string       `json:"path"`
	Depth         int          `json:"depth"`
	Name          string       `json:"name"`
	Occurrence    string       `json:"occurrence"`
	Documentation string       `json:"documentation"`
	RawTypeOrRef  string       `json:"rawTypeOrRef"`
	Resolution    *Resolution  `json:"resolution"`
	Restrictions  Restrictions `json:"restrictions"`
}

// AttributeField is one flattened nested attribute or attributeGroup
// reference.
type AttributeField struct {
	ID            string       `json:"id"`
	Path          string       `json:"path"`
	Depth         int          `json:"depth"`
	Name          string       `json:"name"`
	Use           string       `json:"use"`
	Documentation string       `json:"documentation"`
	RawTypeOrRef  string       `json:"rawTypeOrRef"`
	Resolution    *Resolution  `json:"resolution"`
	Restrictions  Restrictions `json:"restrictions"`
}

// Component is one named top-level schema declaration. It is created
// as a skeleton during ingestion and enriched during the resolve
// phase; edges carry ids, never pointers, so the reference graph may
// be cyclic without creating ownership cycles here.
type Component struct {
	ID              string             `json:"id"`
	SchemaID        string             `json:"schemaId"`
	SchemaFileName  string             `json:"schemaFileName"`
	Kind            string             `json:"kind"`
	Name            string             `json:"name"`
	Namespace       string             `json:"namespace"`
	Docs            []string           `json:"docs"`
	Restrictions    Restrictions       `json:"restrictions"`
	Enumerations    []string           `json:"enumerations"`
	BaseType        *BaseType          `json:"baseType"`
	ElementFields   []ElementField     `json:"elementFields"`
	AttributeFields []AttributeField   `json:"attributeFields"`
	References      []Reference        `json:"references"`
	UsedBy          []InboundReference `json:"usedBy"`

	// Node is the parsed declaration subtree; resolve-phase input only.
	Node *etree.Element `json:"-"`
}

// Document is one ingested schema file.
type Document struct {
	ID              string       `json:"id"`
	FileName        string       `json:"fileName"`
	DisplayName     string       `json:"displayName"`
	TargetNamespace string       `json:"targetNamespace"`
	RootElementIDs  []string     `json:"rootElementIds"`
	ComponentIDs    []string     `json:"componentIds"`
	Dependencies    []Dependency `json:"dependencies"`

	Path       string            `json:"-"`
	NSMap      map[string]string `json:"-"`
	Components []*Component      `json:"-"`

	// Reachable holds the file names transitively reachable from this
	// document over existing local dependencies, itself included.
	Reachable map[string]bool `json:"-"`
}

// Warning is a non-fatal data-quality finding.
type Warning struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	SchemaID       string `json:"schemaId"`
	SchemaFileName string `json:"schemaFileName"`
	ComponentID    string `json:"componentId,omitempty"`
}

// Summary holds the top-level counts of the artifact.
type Summary struct {
	SchemaCount      int `json:"schemaCount"`
	ComponentCount   int `json:"componentCount"`
	RootElementCount int `json:"rootElementCount"`
	WarningCount     int `json:"warningCount"`
}

// Index is the complete output artifact consumed by the viewer.
type Index struct {
	Version         int          `json:"version"`
	GeneratedAt     string       `json:"generatedAt"`
	SourceDirectory string       `json:"sourceDirectory"`
	Summary         Summary      `json:"summary"`
	Warnings        []Warning    `json:"warnings"`
	Schemas         []*Document  `json:"schemas"`
	Components      []*Component `json:"components"`
}
