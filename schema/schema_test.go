package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validLayerYAML() []byte {
	return []byte(`
name: test_config
description: a test config
layers:
  - name: osrd_track_section
    id_field_name: entity_id
    description: track sections
    fields:
      - name: entity_id
        description: id
        type: bigint
      - name: geom_geo
        description: geometry
        type: geom
      - name: extra
        description: extra field
        type: text
    views:
      - name: geo
        on_field: geom_geo
      - name: sch
        on_field: geom_geo
        exclude_fields: [extra]
        cache_duration: 60
`)
}

func TestParseValidConfig(t *testing.T) {
	cfg, err := ParseYAML(validLayerYAML())
	require.NoError(t, err)
	require.Equal(t, "test_config", cfg.Name)
	layer, ok := cfg.Layer("osrd_track_section")
	require.True(t, ok)
	require.Equal(t, "entity_id", layer.IDField.Name)

	geoView, ok := layer.View("geo")
	require.True(t, ok)
	require.Len(t, geoView.Fields, 3)
	require.Equal(t, 3600, geoView.CacheDurationSeconds)

	schView, ok := layer.View("sch")
	require.True(t, ok)
	require.Len(t, schView.Fields, 2) // extra excluded
	require.Equal(t, 60, schView.CacheDurationSeconds)

	schema := layer.PgSchema()
	require.Equal(t, `"version"`, schema[0].PgName)
	require.Nil(t, schema[0].Field)
}

func TestParseMissingIDField(t *testing.T) {
	raw := SerializedConfig{
		Name: "c",
		Layers: []SerializedLayer{{
			Name:        "l",
			IDFieldName: "does_not_exist",
			Fields: []SerializedField{
				{Name: "g", Description: "", Type: "geom"},
			},
		}},
	}
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParseNoGeomField(t *testing.T) {
	raw := SerializedConfig{
		Name: "c",
		Layers: []SerializedLayer{{
			Name:        "l",
			IDFieldName: "id",
			Fields: []SerializedField{
				{Name: "id", Description: "", Type: "int"},
			},
		}},
	}
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParseViewOnFieldNotGeom(t *testing.T) {
	raw := SerializedConfig{
		Name: "c",
		Layers: []SerializedLayer{{
			Name:        "l",
			IDFieldName: "id",
			Fields: []SerializedField{
				{Name: "id", Description: "", Type: "int"},
				{Name: "g", Description: "", Type: "geom"},
			},
			Views: []SerializedView{
				{Name: "v", OnField: "id"},
			},
		}},
	}
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestParseDuplicateLayerName(t *testing.T) {
	layer := SerializedLayer{
		Name:        "l",
		IDFieldName: "id",
		Fields: []SerializedField{
			{Name: "id", Description: "", Type: "int"},
			{Name: "g", Description: "", Type: "geom"},
		},
	}
	raw := SerializedConfig{Name: "c", Layers: []SerializedLayer{layer, layer}}
	_, err := Parse(raw)
	require.Error(t, err)
}

func TestFieldEqualityIsStructural(t *testing.T) {
	a, err := ParseField(SerializedField{Name: "f", Description: "d", Type: "array(of=char(max_len=8))"})
	require.NoError(t, err)
	b, err := ParseField(SerializedField{Name: "f", Description: "d", Type: "array(of=char(max_len=8))"})
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, err := ParseField(SerializedField{Name: "f", Description: "d", Type: "array(of=char(max_len=9))"})
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}
