// Package crawler lists and streams the XSD files of one input
// directory. The input contract is flat: subdirectories are not
// descended into.
package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xsdindex/internal/xmldoc"
)

// List returns the .xsd files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xsd") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Scan parses every listed file in order and streams the documents
// through the callback. A parse failure aborts the scan; the run has
// no partial-output mode.
func Scan(dir string, onDoc func(*xmldoc.Document) error) error {
	files, err := List(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		doc, err := xmldoc.Load(path)
		if err != nil {
			return err
		}
		if err := onDoc(doc); err != nil {
			return err
		}
	}
	return nil
}
