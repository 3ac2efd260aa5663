// Package ingest turns parsed XSD trees into schema documents with
// dependency records and component skeletons. It runs to completion
// over every input file before any reference is resolved.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// ParseSchema ingests one parsed document. A root element that is not
// a schema root is a hard error: the whole run aborts rather than
// producing a partial index.
func ParseSchema(doc *xmldoc.Document) (*schema.Document, error) {
	root := doc.Root
	if root.Tag != "schema" {
		return nil, fmt.Errorf("%s is not an XSD schema", doc.Path)
	}

	stem := strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
	sd := &schema.Document{
		ID:              "schema-" + xmldoc.Slugify(stem),
		FileName:        doc.FileName,
		DisplayName:     stem,
		TargetNamespace: root.SelectAttrValue("targetNamespace", ""),
		Dependencies:    []schema.Dependency{},
		Path:            doc.Path,
		NSMap:           doc.NSMap,
	}

	for _, child := range root.ChildElements() {
		kind := child.Tag

		if kind == "include" || kind == "import" {
			sd.Dependencies = append(sd.Dependencies, parseDependency(doc.Path, kind, child))
			continue
		}

		if !schema.IsGlobalKind(kind) {
			continue
		}
		name := strings.TrimSpace(child.SelectAttrValue("name", ""))
		if name == "" {
			// Anonymous top-level declarations carry no catalog entry.
			continue
		}

		docs := xmldoc.Documentation(doc.NSMap, child)
		if docs == nil {
			docs = []string{}
		}
		sd.Components = append(sd.Components, &schema.Component{
			SchemaID:       sd.ID,
			SchemaFileName: sd.FileName,
			Kind:           kind,
			Name:           name,
			Namespace:      sd.TargetNamespace,
			Docs:           docs,
			Node:           child,
		})
	}

	return sd, nil
}

func parseDependency(path, kind string, child *etree.Element) schema.Dependency {
	location := strings.TrimSpace(child.SelectAttrValue("schemaLocation", ""))
	namespace := strings.TrimSpace(child.SelectAttrValue("namespace", ""))

	dep := schema.Dependency{
		Kind:      kind,
		Location:  location,
		Namespace: namespace,
	}
	// Network locations are recorded but never marked resolvable.
	if location != "" && !strings.Contains(location, "://") {
		resolved := filepath.Join(filepath.Dir(path), location)
		dep.ResolvedFileName = filepath.Base(resolved)
		if _, err := os.Stat(resolved); err == nil {
			dep.Exists = true
		}
	}
	return dep
}
