package writepath

import (
	"testing"

	"github.com/DGEXSolutions/chartos/schema"
	"github.com/stretchr/testify/require"
)

func field(t *testing.T, name, typeExpr string) schema.Field {
	t.Helper()
	f, err := schema.ParseField(schema.SerializedField{Name: name, Type: typeExpr})
	require.NoError(t, err)
	return f
}

func TestEncodeScalarPassesThrough(t *testing.T) {
	f := field(t, "n", "bigint")
	enc, err := encodeValue(f, []byte(`42`))
	require.NoError(t, err)
	require.Equal(t, float64(42), enc.sqlValue)
}

func TestEncodeArrayBuildsPostgresLiteral(t *testing.T) {
	f := field(t, "tags", "array(of=string)")
	enc, err := encodeValue(f, []byte(`["a","b"]`))
	require.NoError(t, err)
	require.Equal(t, `{"a","b"}`, enc.sqlValue)
}

func TestEncodeJSONPassesThroughAsText(t *testing.T) {
	f := field(t, "meta", "json")
	enc, err := encodeValue(f, []byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, enc.sqlValue)
}

func TestEncodeGeomAddsDefaultCRS(t *testing.T) {
	f := field(t, "geom_geo", "geom")
	enc, err := encodeValue(f, []byte(`{"type":"Point","coordinates":[1.0,2.0]}`))
	require.NoError(t, err)
	require.True(t, enc.isGeom)
	sqlValue, ok := enc.sqlValue.(string)
	require.True(t, ok)
	require.Contains(t, sqlValue, "SRID=3857;")
	require.NotNil(t, enc.geom)
}

func TestEncodeGeomAcceptsExplicit3857CRS(t *testing.T) {
	f := field(t, "geom_geo", "geom")
	enc, err := encodeValue(f, []byte(`{"type":"Point","coordinates":[1.0,2.0],"crs":{"type":"name","properties":{"name":"EPSG:3857"}}}`))
	require.NoError(t, err)
	require.True(t, enc.isGeom)
}

func TestEncodeGeomRejectsNon3857CRS(t *testing.T) {
	f := field(t, "geom_geo", "geom")
	_, err := encodeValue(f, []byte(`{"type":"Point","coordinates":[2.3,48.8],"crs":{"type":"name","properties":{"name":"EPSG:4326"}}}`))
	require.Error(t, err)
}

func TestEncodeGeomRejectsNonObject(t *testing.T) {
	f := field(t, "geom_geo", "geom")
	_, err := encodeValue(f, []byte(`"not-an-object"`))
	require.Error(t, err)
}

func TestEncodeArrayRejectsNonArray(t *testing.T) {
	f := field(t, "tags", "array(of=string)")
	_, err := encodeValue(f, []byte(`"not-an-array"`))
	require.Error(t, err)
}
