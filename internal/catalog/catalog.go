// Package catalog assigns stable component identifiers and indexes
// every component of the input set for qualified-name lookup. The
// catalog is built once after ingestion and read-only afterwards.
package catalog

import (
	"fmt"

	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// Key addresses catalog entries by (namespace, local name).
type Key struct {
	Namespace string
	Local     string
}

// Catalog is the frozen lookup structure over all ingested components.
// Lookups yield lists: distinct files may legally declare the same
// name in the same namespace.
type Catalog struct {
	byQName map[Key][]*schema.Component
	byLocal map[string][]*schema.Component
	byID    map[string]*schema.Component
}

// AssignComponentIDs gives every component a run-unique id derived
// from its schema, kind and name, with a counter suffix for repeats.
// The derivation is deterministic so unchanged input reproduces
// identical ids.
func AssignComponentIDs(docs []*schema.Document) {
	used := map[string]int{}
	for _, doc := range docs {
		for _, c := range doc.Components {
			base := fmt.Sprintf("%s:%s:%s", doc.ID, xmldoc.Slugify(c.Kind), xmldoc.Slugify(c.Name))
			used[base]++
			c.ID = fmt.Sprintf("%s:%d", base, used[base])
		}
	}
}

// New builds the catalog. Component ids must already be assigned.
func New(docs []*schema.Document) *Catalog {
	cat := &Catalog{
		byQName: map[Key][]*schema.Component{},
		byLocal: map[string][]*schema.Component{},
		byID:    map[string]*schema.Component{},
	}
	for _, doc := range docs {
		for _, c := range doc.Components {
			key := Key{Namespace: c.Namespace, Local: c.Name}
			cat.byQName[key] = append(cat.byQName[key], c)
			cat.byLocal[c.Name] = append(cat.byLocal[c.Name], c)
			cat.byID[c.ID] = c
		}
	}
	return cat
}

// Lookup returns the components declared under (namespace, local).
func (c *Catalog) Lookup(namespace, local string) []*schema.Component {
	return c.byQName[Key{Namespace: namespace, Local: local}]
}

// LookupLocal returns every component with the given local name,
// regardless of namespace. Feeds the unprefixed-fallback heuristic.
func (c *Catalog) LookupLocal(local string) []*schema.Component {
	return c.byLocal[local]
}

// ByID returns a component by its assigned id.
func (c *Catalog) ByID(id string) *schema.Component {
	return c.byID[id]
}

// Components returns the id-keyed view of the whole catalog.
func (c *Catalog) Components() map[string]*schema.Component {
	return c.byID
}
