// Package typedsl lexes and parses field-type expressions such as
// `array(of=char(max_len=8))` into a FieldType value, per spec.md §4.1.
package typedsl

import "fmt"

// Kind tags the FieldType sum type. Runtime dispatch is on Kind rather than
// on a virtual-method hierarchy, per design note §9.
type Kind int

const (
	KindText Kind = iota
	KindString
	KindChar
	KindInt
	KindBigInt
	KindBool
	KindDouble
	KindJSON
	KindArray
	KindGeom
	KindTimestamp
)

// FieldType is the parsed result of a type expression. Only the fields
// relevant to its Kind are populated.
type FieldType struct {
	Kind   Kind
	MaxLen *int       // string(max_len=?), char(max_len=)
	Of     *FieldType // array(of=)
}

// PgType returns the SQL column type for this FieldType, per spec.md §3.
func (f FieldType) PgType() string {
	switch f.Kind {
	case KindText:
		return "varchar"
	case KindString:
		if f.MaxLen == nil {
			return "varchar"
		}
		return fmt.Sprintf("varchar(%d)", *f.MaxLen)
	case KindChar:
		return fmt.Sprintf("char(%d)", *f.MaxLen)
	case KindInt:
		return "integer"
	case KindBigInt:
		return "bigint"
	case KindBool:
		return "boolean"
	case KindDouble:
		return "double precision"
	case KindJSON:
		return "jsonb"
	case KindArray:
		return f.Of.PgType() + "[]"
	case KindGeom:
		return "geometry(Geometry, 3857)"
	case KindTimestamp:
		return "timestamp with time zone"
	default:
		panic(fmt.Sprintf("typedsl: unknown kind %d", f.Kind))
	}
}

// IsGeom reports whether the field participates in tile affect computation.
func (f FieldType) IsGeom() bool { return f.Kind == KindGeom }

// constructor builds a FieldType from its named DSL arguments. Construction
// only validates the arguments a constructor uses; arguments it does not use
// are ignored, and the parser does not reject them either.
type constructor func(args map[string]argValue) (FieldType, error)

// argValue is either an integer literal or a nested parsed FieldType —
// the two shapes `value := INT | type` allows in the grammar (§4.1).
type argValue struct {
	isInt bool
	num   int
	typ   FieldType
}

// registry maps DSL names to constructors, mirroring the FIELD_TYPES dict in
// chartos/config.py and, in shape, tegola's own provider.Register map.
var registry = map[string]constructor{
	"text": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindText}, nil
	},
	"string": func(args map[string]argValue) (FieldType, error) {
		ft := FieldType{Kind: KindString}
		if v, ok := args["max_len"]; ok {
			if !v.isInt {
				return FieldType{}, fmt.Errorf("string: max_len must be an integer")
			}
			n := v.num
			ft.MaxLen = &n
		}
		return ft, nil
	},
	"char": func(args map[string]argValue) (FieldType, error) {
		v, ok := args["max_len"]
		if !ok {
			return FieldType{}, fmt.Errorf("char: missing max_len")
		}
		if !v.isInt {
			return FieldType{}, fmt.Errorf("char: max_len must be an integer")
		}
		n := v.num
		return FieldType{Kind: KindChar, MaxLen: &n}, nil
	},
	"int": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindInt}, nil
	},
	"bigint": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindBigInt}, nil
	},
	"bool": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindBool}, nil
	},
	"double": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindDouble}, nil
	},
	"json": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindJSON}, nil
	},
	"array": func(args map[string]argValue) (FieldType, error) {
		v, ok := args["of"]
		if !ok {
			return FieldType{}, fmt.Errorf("array: missing of")
		}
		if v.isInt {
			return FieldType{}, fmt.Errorf("array: of must be a type, not an integer")
		}
		of := v.typ
		return FieldType{Kind: KindArray, Of: &of}, nil
	},
	"geom": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindGeom}, nil
	},
	"timestamp": func(args map[string]argValue) (FieldType, error) {
		return FieldType{Kind: KindTimestamp}, nil
	},
}
