// Package graph derives the inverse used-by edges from resolved
// outgoing references and collects the structural warnings. It must
// run only after every component's references are final: any
// component can be a reference target.
package graph

import (
	"fmt"
	"sort"

	"xsdindex/internal/schema"
)

type inboundKey struct {
	targetID string
	sourceID string
	attrName string
	rawValue string
}

// Link attaches deduplicated inbound edges to every resolution target
// and returns the run's warnings: missing local dependencies first,
// then unresolved non-built-in references, both in schema order so
// repeated runs emit identical output.
//
// The reference graph may contain cycles (recursive types, mutually
// substitutable elements); edges carry ids, so cycles need no special
// handling.
func Link(docs []*schema.Document, byID map[string]*schema.Component) []schema.Warning {
	warnings := []schema.Warning{}

	for _, doc := range docs {
		for _, dep := range doc.Dependencies {
			if dep.Location == "" || dep.Exists {
				continue
			}
			warnings = append(warnings, schema.Warning{
				Code: schema.WarnMissingDependency,
				Message: fmt.Sprintf("%s %s references missing schemaLocation '%s'",
					doc.FileName, dep.Kind, dep.Location),
				SchemaID:       doc.ID,
				SchemaFileName: doc.FileName,
			})
		}
	}

	seen := map[inboundKey]bool{}
	for _, doc := range docs {
		for _, c := range doc.Components {
			for _, ref := range c.References {
				if len(ref.Resolution.TargetIDs) == 0 {
					if !ref.Resolution.IsBuiltin {
						warnings = append(warnings, schema.Warning{
							Code: schema.WarnUnresolvedReference,
							Message: fmt.Sprintf("%s:%s:%s could not resolve '%s'",
								doc.FileName, c.Kind, c.Name, ref.RawValue),
							SchemaID:       doc.ID,
							SchemaFileName: doc.FileName,
							ComponentID:    c.ID,
						})
					}
					continue
				}

				for _, targetID := range ref.Resolution.TargetIDs {
					target, ok := byID[targetID]
					if !ok {
						continue
					}
					key := inboundKey{
						targetID: targetID,
						sourceID: c.ID,
						attrName: ref.AttrName,
						rawValue: ref.RawValue,
					}
					if seen[key] {
						continue
					}
					seen[key] = true
					target.UsedBy = append(target.UsedBy, schema.InboundReference{
						SourceID: c.ID,
						AttrName: ref.AttrName,
						RawValue: ref.RawValue,
						Context:  ref.Context,
					})
				}
			}
		}
	}

	for _, doc := range docs {
		for _, c := range doc.Components {
			sort.Slice(c.UsedBy, func(i, j int) bool {
				a, b := c.UsedBy[i], c.UsedBy[j]
				if a.SourceID != b.SourceID {
					return a.SourceID < b.SourceID
				}
				if a.AttrName != b.AttrName {
					return a.AttrName < b.AttrName
				}
				if a.RawValue != b.RawValue {
					return a.RawValue < b.RawValue
				}
				return a.Context < b.Context
			})
		}
	}

	return warnings
}

// Uses returns the distinct component ids a component points at
// through its resolved references, in first-reference order.
func Uses(c *schema.Component) []string {
	var out []string
	seen := map[string]bool{}
	for _, ref := range c.References {
		for _, id := range ref.Resolution.TargetIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// UsedBy returns the distinct component ids that point at c.
func UsedBy(c *schema.Component) []string {
	var out []string
	seen := map[string]bool{}
	for _, edge := range c.UsedBy {
		if seen[edge.SourceID] {
			continue
		}
		seen[edge.SourceID] = true
		out = append(out, edge.SourceID)
	}
	return out
}
