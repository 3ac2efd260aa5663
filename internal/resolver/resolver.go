// Package resolver maps qualified names found inside component
// definitions onto catalog entries. Resolution applies namespace
// semantics, expected-kind filtering, and an ordered cascade of
// narrowing heuristics; each heuristic has an exact trigger condition
// and is applied only while more than one candidate survives.
package resolver

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"xsdindex/internal/catalog"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

const cacheSize = 4096

// Resolver resolves qualified names against a frozen catalog.
// Resolutions are memoized: identical (schema, raw, kinds) triples
// always produce identical results.
type Resolver struct {
	catalog *catalog.Catalog
	cache   *lru.Cache[string, *schema.Resolution]
}

// New creates a resolver over a built catalog.
func New(cat *catalog.Catalog) *Resolver {
	cache, _ := lru.New[string, *schema.Resolution](cacheSize)
	return &Resolver{catalog: cat, cache: cache}
}

// ParseQName splits a raw qualified name into prefix and local parts.
func ParseQName(raw string) (prefix, local string, hasPrefix bool) {
	if idx := strings.Index(raw, ":"); idx >= 0 {
		return raw[:idx], raw[idx+1:], true
	}
	return "", raw, false
}

// Resolve resolves one qualified name in the context of the schema
// document that declared the referencing component. expectedKinds nil
// means any kind is acceptable.
func (r *Resolver) Resolve(raw string, doc *schema.Document, expectedKinds []string) *schema.Resolution {
	key := cacheKey(doc.ID, raw, expectedKinds)
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}

	prefix, local, hasPrefix := ParseQName(raw)

	namespace := doc.TargetNamespace
	if hasPrefix {
		namespace = doc.NSMap[prefix]
	}

	// The conventional xs/xsd prefixes count as built-in even when the
	// document never declares them.
	isBuiltin := namespace == xmldoc.XSNamespace ||
		((prefix == "xs" || prefix == "xsd") && (namespace == "" || namespace == xmldoc.XSNamespace))

	matches := filterKinds(r.catalog.Lookup(namespace, local), expectedKinds)
	if len(matches) == 0 && !hasPrefix {
		matches = r.fallbackByLocalName(local, expectedKinds)
	}
	matches = narrowByReachability(matches, doc)
	matches = narrowBySameFile(matches, doc)

	unresolvedReason := ""
	if !isBuiltin && len(matches) == 0 {
		unresolvedReason = "No matching component found"
		if hasPrefix && namespace == "" {
			unresolvedReason = fmt.Sprintf("Unknown namespace prefix '%s'", prefix)
		}
	}

	targetIDs := make([]string, 0, len(matches))
	for _, match := range matches {
		targetIDs = append(targetIDs, match.ID)
	}

	res := &schema.Resolution{
		Raw:              raw,
		Namespace:        namespace,
		Local:            local,
		IsBuiltin:        isBuiltin,
		TargetIDs:        targetIDs,
		Ambiguous:        len(matches) > 1,
		UnresolvedReason: unresolvedReason,
	}
	r.cache.Add(key, res)
	return res
}

// fallbackByLocalName compensates for documents with inconsistent or
// missing namespace declarations: an unprefixed name that matched
// nothing is accepted iff exactly one component anywhere in the input
// set carries that local name, regardless of namespace.
func (r *Resolver) fallbackByLocalName(local string, expectedKinds []string) []*schema.Component {
	candidates := filterKinds(r.catalog.LookupLocal(local), expectedKinds)
	if len(candidates) == 1 {
		return candidates
	}
	return nil
}

// narrowByReachability keeps candidates declared in files reachable
// from the referencing schema, when that narrowing leaves at least one.
func narrowByReachability(matches []*schema.Component, doc *schema.Document) []*schema.Component {
	if len(matches) <= 1 || len(doc.Reachable) == 0 {
		return matches
	}
	var reachable []*schema.Component
	for _, match := range matches {
		if doc.Reachable[match.SchemaFileName] {
			reachable = append(reachable, match)
		}
	}
	if len(reachable) > 0 {
		return reachable
	}
	return matches
}

// narrowBySameFile prefers candidates declared in the referencing file
// itself, when any exist.
func narrowBySameFile(matches []*schema.Component, doc *schema.Document) []*schema.Component {
	if len(matches) <= 1 {
		return matches
	}
	var sameFile []*schema.Component
	for _, match := range matches {
		if match.SchemaFileName == doc.FileName {
			sameFile = append(sameFile, match)
		}
	}
	if len(sameFile) > 0 {
		return sameFile
	}
	return matches
}

func filterKinds(matches []*schema.Component, expectedKinds []string) []*schema.Component {
	if expectedKinds == nil {
		return matches
	}
	allowed := map[string]bool{}
	for _, kind := range expectedKinds {
		allowed[kind] = true
	}
	var kept []*schema.Component
	for _, match := range matches {
		if allowed[match.Kind] {
			kept = append(kept, match)
		}
	}
	return kept
}

func cacheKey(schemaID, raw string, expectedKinds []string) string {
	return schemaID + "\x00" + raw + "\x00" + strings.Join(expectedKinds, ",")
}
