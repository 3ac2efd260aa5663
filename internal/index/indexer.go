// Package index orchestrates the whole pipeline and assembles the
// output artifact. The pipeline is a strict two-phase batch: every
// file is ingested before any reference resolves (forward references
// need the full catalog), and every reference resolves before inbound
// edges are linked (any component can be a target).
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"xsdindex/internal/catalog"
	"xsdindex/internal/crawler"
	"xsdindex/internal/flatten"
	"xsdindex/internal/graph"
	"xsdindex/internal/ingest"
	"xsdindex/internal/resolver"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// Version is the artifact format version the viewer consumes.
const Version = 1

// Build runs the full pipeline over one directory of XSD files.
// Unchanged input reproduces identical output except for GeneratedAt.
func Build(dir string) (*schema.Index, error) {
	var docs []*schema.Document
	err := crawler.Scan(dir, func(xd *xmldoc.Document) error {
		sd, err := ingest.ParseSchema(xd)
		if err != nil {
			return err
		}
		docs = append(docs, sd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ingest barrier passed: freeze ids, reachability and the catalog.
	catalog.AssignComponentIDs(docs)
	catalog.ComputeReachable(docs)
	cat := catalog.New(docs)
	res := resolver.New(cat)

	for _, doc := range docs {
		for _, c := range doc.Components {
			c.Restrictions = xmldoc.RestrictionsFromNode(doc.NSMap, c.Node)
			c.Enumerations = xmldoc.EnumValues(doc.NSMap, c.Node)
			c.BaseType = flatten.BaseType(c, doc, res)
			c.ElementFields = flatten.ElementFields(c, doc, res)
			c.AttributeFields = flatten.AttributeFields(c, doc, res)
			c.References = flatten.References(c, doc, res)
		}
	}

	// Resolve barrier passed: link inbound edges and collect warnings.
	warnings := graph.Link(docs, cat.Components())

	return assemble(dir, docs, warnings)
}

func assemble(dir string, docs []*schema.Document, warnings []schema.Warning) (*schema.Index, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}

	schemas := make([]*schema.Document, len(docs))
	copy(schemas, docs)
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].FileName < schemas[j].FileName })

	components := []*schema.Component{}
	rootElementCount := 0
	for _, doc := range schemas {
		doc.RootElementIDs = []string{}
		doc.ComponentIDs = []string{}
		for _, c := range doc.Components {
			doc.ComponentIDs = append(doc.ComponentIDs, c.ID)
			if c.Kind == schema.KindElement {
				doc.RootElementIDs = append(doc.RootElementIDs, c.ID)
				rootElementCount++
			}
			if c.UsedBy == nil {
				c.UsedBy = []schema.InboundReference{}
			}
			components = append(components, c)
		}
	}

	sort.Slice(components, func(i, j int) bool {
		a, b := components[i], components[j]
		if a.SchemaFileName != b.SchemaFileName {
			return a.SchemaFileName < b.SchemaFileName
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	return &schema.Index{
		Version:         Version,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		SourceDirectory: absDir,
		Summary: schema.Summary{
			SchemaCount:      len(schemas),
			ComponentCount:   len(components),
			RootElementCount: rootElementCount,
			WarningCount:     len(warnings),
		},
		Warnings:   warnings,
		Schemas:    schemas,
		Components: components,
	}, nil
}

// Save writes the index as JSON, creating parent directories.
func Save(idx *schema.Index, path string, pretty bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(idx); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// Load reads a previously written index.
func Load(path string) (*schema.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var idx schema.Index
	if err := json.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &idx, nil
}
