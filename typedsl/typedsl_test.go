package typedsl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleTypes(t *testing.T) {
	cases := map[string]Kind{
		"text":      KindText,
		"int":       KindInt,
		"bigint":    KindBigInt,
		"bool":      KindBool,
		"double":    KindDouble,
		"json":      KindJSON,
		"geom":      KindGeom,
		"timestamp": KindTimestamp,
	}
	for expr, kind := range cases {
		ft, err := Parse(expr)
		require.NoError(t, err, expr)
		require.Equal(t, kind, ft.Kind, expr)
	}
}

func TestParseStringNoMaxLen(t *testing.T) {
	ft, err := Parse("string")
	require.NoError(t, err)
	require.Equal(t, KindString, ft.Kind)
	require.Nil(t, ft.MaxLen)
	require.Equal(t, "varchar", ft.PgType())
}

func TestParseStringWithMaxLen(t *testing.T) {
	ft, err := Parse("string(max_len=16)")
	require.NoError(t, err)
	require.NotNil(t, ft.MaxLen)
	require.Equal(t, 16, *ft.MaxLen)
	require.Equal(t, "varchar(16)", ft.PgType())
}

func TestParseCharRequiresMaxLen(t *testing.T) {
	_, err := Parse("char")
	require.Error(t, err)
}

func TestParseArrayOfChar(t *testing.T) {
	ft, err := Parse("array(of=char(max_len=8))")
	require.NoError(t, err)
	require.Equal(t, KindArray, ft.Kind)
	require.NotNil(t, ft.Of)
	require.Equal(t, KindChar, ft.Of.Kind)
	require.Equal(t, 8, *ft.Of.MaxLen)
	require.Equal(t, "char(8)[]", ft.PgType())
}

func TestParseArrayOfCharMissingMaxLenFails(t *testing.T) {
	_, err := Parse("array(of=char)")
	require.Error(t, err)
}

func TestParseArrayMissingOfFails(t *testing.T) {
	_, err := Parse("array")
	require.Error(t, err)
}

func TestParseUnknownType(t *testing.T) {
	_, err := Parse("banana")
	require.Error(t, err)
}

func TestParseUnterminatedCall(t *testing.T) {
	_, err := Parse("char(max_len=8")
	require.Error(t, err)
}

func TestParseTrailingGarbage(t *testing.T) {
	_, err := Parse("int)")
	require.Error(t, err)
}

func TestParseInvalidChar(t *testing.T) {
	_, err := Parse("int$")
	require.Error(t, err)
}

func TestParseEmptyArgSlot(t *testing.T) {
	_, err := Parse("char(max_len=)")
	require.Error(t, err)
}

func TestGeomPgType(t *testing.T) {
	ft, err := Parse("geom")
	require.NoError(t, err)
	require.Equal(t, "geometry(Geometry, 3857)", ft.PgType())
	require.True(t, ft.IsGeom())
}
