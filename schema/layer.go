package schema

import (
	"fmt"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
)

// versionColumnName is the name of the implicit text column every layer's table carries, per
// spec.md §3: "Every layer carries an implicit text column `version`...
// always present as the first column in the generated table".
const versionColumnName = "version"

// Layer = {name, id_field, fields, views, description?, attribution?}, per
// spec.md §3. Fields and Views preserve the insertion order of the
// serialized document.
type Layer struct {
	Name        string
	IDField     Field
	Fields      []Field
	Views       []View
	Description string
	Attribution string

	fieldsByName map[string]Field
	viewsByName  map[string]View
}

// Field looks up a field by name.
func (l Layer) Field(name string) (Field, bool) {
	f, ok := l.fieldsByName[name]
	return f, ok
}

// View looks up a view by name.
func (l Layer) View(name string) (View, bool) {
	v, ok := l.viewsByName[name]
	return v, ok
}

// ViewNames returns view names in insertion order.
func (l Layer) ViewNames() []string {
	names := make([]string, len(l.Views))
	for i, v := range l.Views {
		names[i] = v.Name
	}
	return names
}

// PgTableName is the SQL table name for the layer.
func (l Layer) PgTableName() string {
	return l.Name
}

// pgColumn is one column of the layer's generated table.
type pgColumn struct {
	Field   *Field // nil for the implicit version column
	PgName  string
	PgType  string
}

// PgSchema yields, in order, (nil, "version", "varchar") then
// (field, quoted_name, pg_type) for each field in Fields order, per
// spec.md §4.2.
func (l Layer) PgSchema() []pgColumn {
	cols := make([]pgColumn, 0, len(l.Fields)+1)
	cols = append(cols, pgColumn{PgName: fmt.Sprintf("%q", versionColumnName), PgType: "varchar"})
	for i := range l.Fields {
		f := l.Fields[i]
		cols = append(cols, pgColumn{Field: &f, PgName: f.PgName(), PgType: f.PgType()})
	}
	return cols
}

// PgFieldNames is the projection of PgSchema onto quoted column names.
func (l Layer) PgFieldNames() []string {
	schema := l.PgSchema()
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.PgName
	}
	return names
}

// GeomFieldsInViews returns the distinct geom fields referenced by any view
// of the layer, used by the Migrator to decide which SPGIST indexes to
// create (spec.md §4.3 step 3).
func (l Layer) GeomFieldsInViews() []Field {
	seen := map[string]bool{}
	var out []Field
	for _, v := range l.Views {
		if seen[v.OnField.Name] {
			continue
		}
		seen[v.OnField.Name] = true
		out = append(out, v.OnField)
	}
	return out
}

func parseLayer(raw SerializedLayer) (Layer, error) {
	fields := make([]Field, 0, len(raw.Fields))
	fieldsByName := make(map[string]Field, len(raw.Fields))
	for _, rf := range raw.Fields {
		f, err := ParseField(rf)
		if err != nil {
			return Layer{}, &chartoserr.SchemaError{Reason: fmt.Sprintf("layer %q: %v", raw.Name, err)}
		}
		if _, dup := fieldsByName[f.Name]; dup {
			return Layer{}, &chartoserr.SchemaError{Reason: fmt.Sprintf("layer %q: duplicate field %q", raw.Name, f.Name)}
		}
		fields = append(fields, f)
		fieldsByName[f.Name] = f
	}

	idField, ok := fieldsByName[raw.IDFieldName]
	if !ok {
		return Layer{}, &chartoserr.SchemaError{
			Reason: fmt.Sprintf("layer %q: missing id_field %q", raw.Name, raw.IDFieldName),
		}
	}

	hasGeom := false
	for _, f := range fields {
		if f.IsGeom() {
			hasGeom = true
			break
		}
	}
	if !hasGeom {
		return Layer{}, &chartoserr.SchemaError{
			Reason: fmt.Sprintf("layer %q: must have at least one geom field", raw.Name),
		}
	}

	views := make([]View, 0, len(raw.Views))
	viewsByName := make(map[string]View, len(raw.Views))
	for _, rv := range raw.Views {
		v, err := parseView(fields, fieldsByName, rv)
		if err != nil {
			return Layer{}, err
		}
		if _, dup := viewsByName[v.Name]; dup {
			return Layer{}, &chartoserr.SchemaError{Reason: fmt.Sprintf("layer %q: duplicate view %q", raw.Name, v.Name)}
		}
		views = append(views, v)
		viewsByName[v.Name] = v
	}

	return Layer{
		Name:         raw.Name,
		IDField:      idField,
		Fields:       fields,
		Views:        views,
		Description:  raw.Description,
		Attribution:  raw.Attribution,
		fieldsByName: fieldsByName,
		viewsByName:  viewsByName,
	}, nil
}
