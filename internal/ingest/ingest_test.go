package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

func writeFile(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestParseSchema_RejectsNonSchemaRoot(t *testing.T) {
	doc, err := xmldoc.Parse("not-a-schema.xsd", []byte(`<wsdl><something/></wsdl>`))
	require.NoError(t, err)

	_, err = ParseSchema(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an XSD schema")
}

func TestParseSchema_Components(t *testing.T) {
	doc, err := xmldoc.Parse("common-types.xsd", []byte(`<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           targetNamespace="urn:example:common">
  <xs:element name="Order">
    <xs:annotation>
      <xs:documentation>The order root.</xs:documentation>
    </xs:annotation>
  </xs:element>
  <xs:complexType name="OrderType"/>
  <xs:simpleType name="CurrencyCode"/>
  <xs:attribute name="version"/>
  <xs:group name="HeaderGroup"/>
  <xs:attributeGroup name="CommonAttrs"/>
  <xs:complexType/>
  <xs:element name="   "/>
  <xs:annotation/>
</xs:schema>`))
	require.NoError(t, err)

	sd, err := ParseSchema(doc)
	require.NoError(t, err)

	assert.Equal(t, "schema-common-types", sd.ID)
	assert.Equal(t, "common-types.xsd", sd.FileName)
	assert.Equal(t, "common-types", sd.DisplayName)
	assert.Equal(t, "urn:example:common", sd.TargetNamespace)

	require.Len(t, sd.Components, 6, "anonymous and unnamed declarations are skipped")

	kinds := make([]string, 0, len(sd.Components))
	for _, c := range sd.Components {
		kinds = append(kinds, c.Kind)
		assert.Equal(t, "urn:example:common", c.Namespace)
		assert.Equal(t, sd.ID, c.SchemaID)
		assert.NotNil(t, c.Node)
	}
	assert.Equal(t, []string{
		schema.KindElement, schema.KindComplexType, schema.KindSimpleType,
		schema.KindAttribute, schema.KindGroup, schema.KindAttributeGroup,
	}, kinds)

	assert.Equal(t, []string{"The order root."}, sd.Components[0].Docs)
	assert.Equal(t, []string{}, sd.Components[1].Docs)
}

func TestParseSchema_Dependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common.xsd", `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`)
	path := writeFile(t, dir, "main.xsd", `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:include schemaLocation="common.xsd"/>
  <xs:import namespace="urn:example:missing" schemaLocation="missing.xsd"/>
  <xs:import namespace="urn:example:remote" schemaLocation="http://example.com/remote.xsd"/>
  <xs:import namespace="urn:example:bare"/>
</xs:schema>`)

	doc, err := xmldoc.Load(path)
	require.NoError(t, err)
	sd, err := ParseSchema(doc)
	require.NoError(t, err)

	require.Len(t, sd.Dependencies, 4)

	t.Run("Existing local include", func(t *testing.T) {
		dep := sd.Dependencies[0]
		assert.Equal(t, "include", dep.Kind)
		assert.Equal(t, "common.xsd", dep.Location)
		assert.Equal(t, "common.xsd", dep.ResolvedFileName)
		assert.True(t, dep.Exists)
	})

	t.Run("Missing local import", func(t *testing.T) {
		dep := sd.Dependencies[1]
		assert.Equal(t, "import", dep.Kind)
		assert.Equal(t, "urn:example:missing", dep.Namespace)
		assert.Equal(t, "missing.xsd", dep.ResolvedFileName)
		assert.False(t, dep.Exists)
	})

	t.Run("Network location never resolvable", func(t *testing.T) {
		dep := sd.Dependencies[2]
		assert.Equal(t, "http://example.com/remote.xsd", dep.Location)
		assert.Equal(t, "", dep.ResolvedFileName)
		assert.False(t, dep.Exists)
	})

	t.Run("Import without location", func(t *testing.T) {
		dep := sd.Dependencies[3]
		assert.Equal(t, "", dep.Location)
		assert.False(t, dep.Exists)
	})
}

func TestParseSchema_RelativeLocation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, dir, "shared.xsd", `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`)
	path := writeFile(t, filepath.Join(dir, "sub"), "child.xsd",
		`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:include schemaLocation="../shared.xsd"/>
</xs:schema>`)

	doc, err := xmldoc.Load(path)
	require.NoError(t, err)
	sd, err := ParseSchema(doc)
	require.NoError(t, err)

	require.Len(t, sd.Dependencies, 1)
	assert.Equal(t, "shared.xsd", sd.Dependencies[0].ResolvedFileName)
	assert.True(t, sd.Dependencies[0].Exists)
}
