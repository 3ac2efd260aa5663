package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xsdindex/internal/catalog"
	"xsdindex/internal/ingest"
	"xsdindex/internal/resolver"
	"xsdindex/internal/schema"
	"xsdindex/internal/xmldoc"
)

// buildFixture ingests in-memory schema sources and returns the
// documents plus a resolver over their catalog.
func buildFixture(t *testing.T, sources map[string]string) (map[string]*schema.Document, *resolver.Resolver) {
	t.Helper()

	var docs []*schema.Document
	byName := map[string]*schema.Document{}
	for _, name := range sortedKeys(sources) {
		xd, err := xmldoc.Parse(name, []byte(sources[name]))
		require.NoError(t, err)
		sd, err := ingest.ParseSchema(xd)
		require.NoError(t, err)
		docs = append(docs, sd)
		byName[name] = sd
	}
	catalog.AssignComponentIDs(docs)
	catalog.ComputeReachable(docs)
	return byName, resolver.New(catalog.New(docs))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

const orderSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Order">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="Customer">
          <xs:annotation>
            <xs:documentation>Buyer details.</xs:documentation>
          </xs:annotation>
          <xs:complexType>
            <xs:sequence>
              <xs:element name="Name" type="xs:string"/>
            </xs:sequence>
          </xs:complexType>
        </xs:element>
        <xs:element name="Line" type="LineType" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
      <xs:attribute name="id" type="xs:string" use="required"/>
    </xs:complexType>
  </xs:element>
  <xs:complexType name="LineType">
    <xs:sequence>
      <xs:element name="Qty" type="xs:positiveInteger"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`

func TestElementFields_Order(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"order.xsd": orderSchema})
	doc := docs["order.xsd"]
	order := doc.Components[0]

	fields := ElementFields(order, doc, r)
	require.Len(t, fields, 3, "Qty belongs to LineType, not to Order")

	paths := make([]string, 0, len(fields))
	for _, f := range fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"Order/Customer", "Order/Customer/Name", "Order/Line"}, paths)

	t.Run("Depth derives from path", func(t *testing.T) {
		assert.Equal(t, 1, fields[0].Depth)
		assert.Equal(t, 2, fields[1].Depth)
	})

	t.Run("Documentation and occurrence", func(t *testing.T) {
		assert.Equal(t, "Buyer details.", fields[0].Documentation)
		assert.Equal(t, "1..1", fields[0].Occurrence)
		assert.Equal(t, "0..unbounded", fields[2].Occurrence)
	})

	t.Run("Type references resolve", func(t *testing.T) {
		name := fields[1]
		assert.Equal(t, "xs:string", name.RawTypeOrRef)
		require.NotNil(t, name.Resolution)
		assert.True(t, name.Resolution.IsBuiltin)

		line := fields[2]
		assert.Equal(t, "LineType", line.RawTypeOrRef)
		require.NotNil(t, line.Resolution)
		require.Len(t, line.Resolution.TargetIDs, 1)
	})

	t.Run("Sequential ids survive the path re-sort", func(t *testing.T) {
		assert.Equal(t, order.ID+":element-field:1", fields[0].ID)
	})
}

func TestAttributeFields_Order(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"order.xsd": orderSchema})
	doc := docs["order.xsd"]
	order := doc.Components[0]

	fields := AttributeFields(order, doc, r)
	require.Len(t, fields, 1)

	id := fields[0]
	assert.Equal(t, "Order/@id", id.Path)
	assert.Equal(t, 1, id.Depth)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "required", id.Use)
	assert.Equal(t, "xs:string", id.RawTypeOrRef)
	require.NotNil(t, id.Resolution)
	assert.True(t, id.Resolution.IsBuiltin)
	assert.Empty(t, id.Resolution.TargetIDs)
}

func TestAttributeFields_GroupRef(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"attrs.xsd": `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:attributeGroup name="CommonAttrs">
    <xs:attribute name="lang" type="xs:language"/>
  </xs:attributeGroup>
  <xs:complexType name="Payload">
    <xs:attributeGroup ref="CommonAttrs"/>
  </xs:complexType>
</xs:schema>`})
	doc := docs["attrs.xsd"]
	payload := doc.Components[1]

	fields := AttributeFields(payload, doc, r)
	require.Len(t, fields, 1, "the group's own attributes belong to the group component")

	group := fields[0]
	assert.Equal(t, "Payload/@group:CommonAttrs", group.Path)
	assert.Equal(t, "CommonAttrs", group.Name)
	assert.Equal(t, "n/a", group.Use)
	require.NotNil(t, group.Resolution)
	require.Len(t, group.Resolution.TargetIDs, 1)
	assert.Equal(t, doc.Components[0].ID, group.Resolution.TargetIDs[0])

	t.Run("Group definition owns its attributes", func(t *testing.T) {
		common := doc.Components[0]
		defFields := AttributeFields(common, doc, r)
		require.Len(t, defFields, 1)
		assert.Equal(t, "@lang", defFields[0].Path, "non-type components seed an empty path")
		assert.Equal(t, 0, defFields[0].Depth)
	})
}

func TestElementFields_RefAndInline(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"refs.xsd": `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Target" type="xs:string"/>
  <xs:complexType name="Wrapper">
    <xs:sequence>
      <xs:element ref="Target"/>
      <xs:element name="Inline">
        <xs:simpleType>
          <xs:restriction base="xs:token"/>
        </xs:simpleType>
      </xs:element>
      <xs:element name="Bare"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`})
	doc := docs["refs.xsd"]
	wrapper := doc.Components[1]

	fields := ElementFields(wrapper, doc, r)
	require.Len(t, fields, 3)

	byName := map[string]schema.ElementField{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	t.Run("Ref resolves to the element", func(t *testing.T) {
		f := byName["Target"]
		assert.Equal(t, "Target", f.RawTypeOrRef)
		require.NotNil(t, f.Resolution)
		require.Len(t, f.Resolution.TargetIDs, 1)
		assert.Equal(t, doc.Components[0].ID, f.Resolution.TargetIDs[0])
	})

	t.Run("Inline simple type is inferred", func(t *testing.T) {
		f := byName["Inline"]
		assert.Equal(t, "xs:token", f.RawTypeOrRef)
		require.NotNil(t, f.Resolution)
		assert.True(t, f.Resolution.IsBuiltin)
	})

	t.Run("No type information stays empty", func(t *testing.T) {
		f := byName["Bare"]
		assert.Equal(t, "", f.RawTypeOrRef)
		assert.Nil(t, f.Resolution)
	})
}

func TestReferences(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"union.xsd": `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="A">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
  <xs:simpleType name="B">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
  <xs:simpleType name="AB">
    <xs:union memberTypes="A B"/>
  </xs:simpleType>
  <xs:element name="Head" type="xs:string"/>
  <xs:element name="Sub" substitutionGroup="Head" type="xs:string"/>
</xs:schema>`})
	doc := docs["union.xsd"]

	t.Run("memberTypes tokens resolve independently", func(t *testing.T) {
		ab := doc.Components[2]
		refs := References(ab, doc, r)
		require.Len(t, refs, 2)
		assert.Equal(t, "memberTypes", refs[0].AttrName)
		assert.Equal(t, "A", refs[0].RawValue)
		assert.Equal(t, "B", refs[1].RawValue)
		require.Len(t, refs[0].Resolution.TargetIDs, 1)
		assert.Equal(t, "simpleType:AB > union:(anonymous)", refs[0].Context)
	})

	t.Run("Root-level attributes use the bare context", func(t *testing.T) {
		sub := doc.Components[4]
		refs := References(sub, doc, r)
		require.Len(t, refs, 2)
		// Sorted by attribute name: substitutionGroup before type.
		assert.Equal(t, "substitutionGroup", refs[0].AttrName)
		assert.Equal(t, "element:Sub", refs[0].Context)
		require.Len(t, refs[0].Resolution.TargetIDs, 1)
		assert.Equal(t, doc.Components[3].ID, refs[0].Resolution.TargetIDs[0])
		assert.Equal(t, "type", refs[1].AttrName)
		assert.True(t, refs[1].Resolution.IsBuiltin)
	})

	t.Run("Identical declarations are deduplicated", func(t *testing.T) {
		docs2, r2 := buildFixture(t, map[string]string{"dup.xsd": `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="Pair">
    <xs:sequence>
      <xs:element name="V" type="xs:string"/>
      <xs:element name="V" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`})
		dup := docs2["dup.xsd"]
		refs := References(dup.Components[0], dup, r2)
		assert.Len(t, refs, 1, "same (attr, value, context) triple resolves once")
	})
}

func TestBaseType(t *testing.T) {
	docs, r := buildFixture(t, map[string]string{"derive.xsd": `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="BaseThing"/>
  <xs:complexType name="Extended">
    <xs:complexContent>
      <xs:extension base="BaseThing"/>
    </xs:complexContent>
  </xs:complexType>
  <xs:simpleType name="Narrow">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
  <xs:complexType name="Underived"/>
</xs:schema>`})
	doc := docs["derive.xsd"]

	t.Run("Complex content extension", func(t *testing.T) {
		bt := BaseType(doc.Components[1], doc, r)
		require.NotNil(t, bt)
		assert.Equal(t, "BaseThing", bt.Raw)
		require.Len(t, bt.Resolution.TargetIDs, 1)
		assert.Equal(t, doc.Components[0].ID, bt.Resolution.TargetIDs[0])
	})

	t.Run("Direct restriction", func(t *testing.T) {
		bt := BaseType(doc.Components[2], doc, r)
		require.NotNil(t, bt)
		assert.Equal(t, "xs:string", bt.Raw)
		assert.True(t, bt.Resolution.IsBuiltin)
	})

	t.Run("No derivation", func(t *testing.T) {
		assert.Nil(t, BaseType(doc.Components[3], doc, r))
	})
}
