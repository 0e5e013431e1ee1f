// Package schema builds the in-memory Config/Layer/View/Field model from a
// serialized layer document, per spec.md §3–§4.2.
package schema

import (
	"fmt"

	"github.com/DGEXSolutions/chartos/typedsl"
)

// Field is {name, description, type}. Equality is structural, per spec.md §3.
type Field struct {
	Name        string
	Description string
	Type        typedsl.FieldType
}

// Equal reports structural equality, including nested Array/geom types.
// typedsl.FieldType carries pointer fields (MaxLen, Of) so plain `==` would
// compare pointer identity instead of value equality.
func (f Field) Equal(other Field) bool {
	if f.Name != other.Name || f.Description != other.Description {
		return false
	}
	return fieldTypeEqual(f.Type, other.Type)
}

func fieldTypeEqual(a, b typedsl.FieldType) bool {
	if a.Kind != b.Kind {
		return false
	}
	if (a.MaxLen == nil) != (b.MaxLen == nil) {
		return false
	}
	if a.MaxLen != nil && *a.MaxLen != *b.MaxLen {
		return false
	}
	if (a.Of == nil) != (b.Of == nil) {
		return false
	}
	if a.Of != nil && !fieldTypeEqual(*a.Of, *b.Of) {
		return false
	}
	return true
}

// PgName is the double-quoted SQL identifier for this field.
func (f Field) PgName() string {
	return fmt.Sprintf("%q", f.Name)
}

// PgType returns the SQL column type for the field.
func (f Field) PgType() string {
	return f.Type.PgType()
}

// IsGeom reports whether the field participates in tile affect computation.
func (f Field) IsGeom() bool {
	return f.Type.IsGeom()
}

// ParseField builds a Field from its serialized form, parsing the type DSL
// expression.
func ParseField(raw SerializedField) (Field, error) {
	ft, err := typedsl.Parse(raw.Type)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", raw.Name, err)
	}
	return Field{
		Name:        raw.Name,
		Description: raw.Description,
		Type:        ft,
	}, nil
}
