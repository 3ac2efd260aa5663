package catalog

import "xsdindex/internal/schema"

// ComputeReachable fills each document's reachable-set: the file names
// visited by a depth-first traversal over dependencies whose resolved
// file exists in the input set. The start file is always included.
// Reachability is a disambiguation signal only, never a correctness
// gate.
func ComputeReachable(docs []*schema.Document) {
	byFileName := map[string]*schema.Document{}
	for _, doc := range docs {
		byFileName[doc.FileName] = doc
	}

	for _, doc := range docs {
		visited := map[string]bool{}
		stack := []string{doc.FileName}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[current] {
				continue
			}
			visited[current] = true

			schemaDoc, ok := byFileName[current]
			if !ok {
				continue
			}
			for _, dep := range schemaDoc.Dependencies {
				if dep.Exists {
					if _, known := byFileName[dep.ResolvedFileName]; known {
						stack = append(stack, dep.ResolvedFileName)
					}
				}
			}
		}
		doc.Reachable = visited
	}
}
