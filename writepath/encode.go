package writepath

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/typedsl"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	"github.com/go-spatial/geom/encoding/wkt"
)

// defaultCRS is spliced into a geom field's GeoJSON payload when it arrives
// without one, per spec.md §4.8 ("if it has no CRS, annotate it with
// EPSG:3857").
var defaultCRS = map[string]interface{}{
	"type":       "name",
	"properties": map[string]interface{}{"name": "EPSG:3857"},
}

// encoded is one field's value, ready to bind as a SQL argument, plus the
// decoded geometry when the field is a geom field (needed by the caller to
// compute affected tiles).
type encoded struct {
	sqlValue interface{}
	geom     geom.Geometry
	isGeom   bool
}

// encodeValue applies spec.md §4.8's "Value encoding" rules for one field.
func encodeValue(field schema.Field, raw json.RawMessage) (encoded, error) {
	if field.IsGeom() {
		return encodeGeom(field, raw)
	}

	switch field.Type.Kind {
	case typedsl.KindArray:
		return encodeArray(field, raw)
	case typedsl.KindJSON:
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return encoded{}, &chartoserr.ValidationError{
				Details: fmt.Sprintf("field %q: invalid json: %v", field.Name, err),
			}
		}
		return encoded{sqlValue: string(raw)}, nil
	default:
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return encoded{}, &chartoserr.ValidationError{
				Details: fmt.Sprintf("field %q: invalid value: %v", field.Name, err),
			}
		}
		return encoded{sqlValue: v}, nil
	}
}

func encodeGeom(field schema.Field, raw json.RawMessage) (encoded, error) {
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return encoded{}, &chartoserr.ValidationError{
			Details: fmt.Sprintf("field %q: not a GeoJSON object: %v", field.Name, err),
		}
	}
	if crs, ok := generic["crs"]; !ok {
		generic["crs"] = defaultCRS
		patched, err := json.Marshal(generic)
		if err != nil {
			return encoded{}, err
		}
		raw = patched
	} else if name := crsName(crs); name != "EPSG:3857" {
		return encoded{}, &chartoserr.ValidationError{
			Details: fmt.Sprintf("field %q: geom CRS must be EPSG:3857, got %q", field.Name, name),
		}
	}

	var gj geojson.Geometry
	if err := json.Unmarshal(raw, &gj); err != nil {
		return encoded{}, &chartoserr.ValidationError{
			Details: fmt.Sprintf("field %q: invalid GeoJSON geometry: %v", field.Name, err),
		}
	}

	wktStr, err := wkt.EncodeString(gj.Geometry)
	if err != nil {
		return encoded{}, &chartoserr.ValidationError{
			Details: fmt.Sprintf("field %q: cannot encode geometry: %v", field.Name, err),
		}
	}

	return encoded{
		sqlValue: "SRID=3857;" + wktStr,
		geom:     gj.Geometry,
		isGeom:   true,
	}, nil
}

// crsName extracts the "properties.name" string out of a GeoJSON named-CRS
// object, per spec.md §4.8's CRS-annotation format. Any other shape reports
// as an empty name, which encodeGeom then rejects.
func crsName(crs interface{}) string {
	obj, ok := crs.(map[string]interface{})
	if !ok {
		return ""
	}
	props, ok := obj["properties"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := props["name"].(string)
	return name
}

func encodeArray(field schema.Field, raw json.RawMessage) (encoded, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return encoded{}, &chartoserr.ValidationError{
			Details: fmt.Sprintf("field %q: not an array: %v", field.Name, err),
		}
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = string(e)
	}
	return encoded{sqlValue: "{" + strings.Join(parts, ",") + "}"}, nil
}
