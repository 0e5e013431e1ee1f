package writepath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/DGEXSolutions/chartos/schema"
	"github.com/go-spatial/geom"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// writeOp is one row's INSERT/UPDATE/DELETE, parameterized so pgx binds
// every value rather than splicing it into the SQL text (SPEC_FULL's
// "row mogrify / literal escaping discipline": only identifiers, always
// drawn from the parsed Config, are interpolated).
type writeOp struct {
	sql  string
	args []interface{}
}

// fetchFragment is one row's old-geometry SELECT, numbered from $1 so many
// fragments can be renumbered and UNIONed into a single parameterized
// statement per view.
type fetchFragment struct {
	sql  string
	args []interface{}
}

// plan is the TRANSLATE phase's output: the write statements to execute as
// one pgx.Batch, the per-view old-geometry fetch fragments needed before
// applying update/delete, and, per view, the geometries carried in the
// payload itself (insert/update) whose affected tiles Apply computes.
type plan struct {
	writeOps       []writeOp
	fetchQueries   map[string][]fetchFragment // view name -> fragments, UNIONed
	submittedGeoms map[string][]geom.Geometry
}

func newPlan() *plan {
	return &plan{
		fetchQueries:   map[string][]fetchFragment{},
		submittedGeoms: map[string][]geom.Geometry{},
	}
}

// translate runs the TRANSLATE phase over every row of req.
func translate(req Request) (*plan, error) {
	p := newPlan()
	for _, row := range req.Rows {
		var err error
		switch req.ChangeType {
		case Insert:
			err = translateInsert(p, req.Layer, req.Version, row)
		case Update:
			err = translateUpdate(p, req.Layer, req.Version, row)
		case Delete:
			err = translateDelete(p, req.Layer, req.Version, row)
		default:
			err = fmt.Errorf("writepath: unknown change type %q", req.ChangeType)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func placeholder(n int, pgType string) string {
	return fmt.Sprintf("$%d::%s", n, pgType)
}

func viewsOnField(layer schema.Layer, fieldName string) []schema.View {
	var out []schema.View
	for _, v := range layer.Views {
		if v.OnField.Name == fieldName {
			out = append(out, v)
		}
	}
	return out
}

func translateInsert(p *plan, layer schema.Layer, version string, row Row) error {
	var columns, placeholders []string
	var args []interface{}
	n := 0

	if version != "" {
		n++
		columns = append(columns, `"version"`)
		placeholders = append(placeholders, placeholder(n, "varchar"))
		args = append(args, version)
	}

	for _, field := range layer.Fields {
		raw, ok := row[field.Name]
		if !ok {
			continue
		}
		enc, err := encodeValue(field, raw)
		if err != nil {
			return err
		}
		n++
		columns = append(columns, field.PgName())
		if enc.isGeom {
			placeholders = append(placeholders, fmt.Sprintf("ST_GeomFromEWKT($%d)", n))
		} else {
			placeholders = append(placeholders, placeholder(n, field.PgType()))
		}
		args = append(args, enc.sqlValue)
		if enc.isGeom {
			for _, v := range viewsOnField(layer, field.Name) {
				p.submittedGeoms[v.Name] = append(p.submittedGeoms[v.Name], enc.geom)
			}
		}
	}

	sql := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		layer.PgTableName(), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	p.writeOps = append(p.writeOps, writeOp{sql: sql, args: args})
	return nil
}

func translateUpdate(p *plan, layer schema.Layer, version string, row Row) error {
	var sets []string
	var args []interface{}
	n := 0

	for _, field := range layer.Fields {
		if field.Name == layer.IDField.Name {
			continue
		}
		raw, ok := row[field.Name]
		if !ok {
			continue
		}
		enc, err := encodeValue(field, raw)
		if err != nil {
			return err
		}
		n++
		if enc.isGeom {
			sets = append(sets, fmt.Sprintf("%s = ST_GeomFromEWKT($%d)", field.PgName(), n))
		} else {
			sets = append(sets, fmt.Sprintf("%s = %s", field.PgName(), placeholder(n, field.PgType())))
		}
		args = append(args, enc.sqlValue)
		if enc.isGeom {
			for _, v := range viewsOnField(layer, field.Name) {
				p.submittedGeoms[v.Name] = append(p.submittedGeoms[v.Name], enc.geom)
			}
		}
	}

	idEnc, err := encodeValue(layer.IDField, row[layer.IDField.Name])
	if err != nil {
		return err
	}
	n++
	where := fmt.Sprintf("%s = %s", layer.IDField.PgName(), placeholder(n, layer.IDField.PgType()))
	args = append(args, idEnc.sqlValue)
	if version != "" {
		n++
		where += fmt.Sprintf(` AND "version" = %s`, placeholder(n, "varchar"))
		args = append(args, version)
	}

	sql := fmt.Sprintf(`UPDATE %q SET %s WHERE %s`, layer.PgTableName(), strings.Join(sets, ", "), where)
	p.writeOps = append(p.writeOps, writeOp{sql: sql, args: args})

	addOldGeomFetch(p, layer, version, idEnc.sqlValue)
	return nil
}

func translateDelete(p *plan, layer schema.Layer, version string, row Row) error {
	idEnc, err := encodeValue(layer.IDField, row[layer.IDField.Name])
	if err != nil {
		return err
	}

	where := fmt.Sprintf("%s = %s", layer.IDField.PgName(), placeholder(1, layer.IDField.PgType()))
	args := []interface{}{idEnc.sqlValue}
	if version != "" {
		where += fmt.Sprintf(` AND "version" = %s`, placeholder(2, "varchar"))
		args = append(args, version)
	}

	sql := fmt.Sprintf(`DELETE FROM %q WHERE %s`, layer.PgTableName(), where)
	p.writeOps = append(p.writeOps, writeOp{sql: sql, args: args})

	addOldGeomFetch(p, layer, version, idEnc.sqlValue)
	return nil
}

// addOldGeomFetch appends the per-view "what did this feature's geometry
// look like before this write" SELECT, reprojected to EPSG:4326 so the
// result can feed tilemath.FindAffectedTiles directly. These per-row
// fragments are UNIONed per view before EXECUTE, per spec.md §4.8.
func addOldGeomFetch(p *plan, layer schema.Layer, version string, idValue interface{}) {
	for _, view := range layer.Views {
		sql := fmt.Sprintf(
			`SELECT ST_AsGeoJSON(ST_Transform(%s, 4326)) FROM %q WHERE %s = $1`,
			view.OnField.PgName(), layer.PgTableName(), layer.IDField.PgName(),
		)
		args := []interface{}{idValue}
		if version != "" {
			sql += ` AND "version" = $2`
			args = append(args, version)
		}
		p.fetchQueries[view.Name] = append(p.fetchQueries[view.Name], fetchFragment{sql: sql, args: args})
	}
}

// combineUnion renumbers each fragment's placeholders sequentially and joins
// them with UNION into a single parameterized statement.
func combineUnion(frags []fetchFragment) (string, []interface{}) {
	var parts []string
	var args []interface{}
	base := 0
	for _, f := range frags {
		offset := base
		sql := placeholderRe.ReplaceAllStringFunc(f.sql, func(m string) string {
			idx, _ := strconv.Atoi(m[1:])
			return "$" + strconv.Itoa(offset+idx)
		})
		parts = append(parts, sql)
		args = append(args, f.args...)
		base += len(f.args)
	}
	return strings.Join(parts, " UNION "), args
}
