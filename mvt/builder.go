// Package mvt composes and executes the single SQL statement that returns
// one MVT blob for (layer, view, z, x, y), per spec.md §4.7.
package mvt

import (
	"context"
	"fmt"
	"strings"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/jackc/pgx/v5"
)

// Querier is the narrow slice of pgxpool.Pool/pgx.Conn the builder needs,
// grounded on tegola's provider/postgis/postgis.go use of a single
// QueryRow call to produce the MVT bytea (MVTForLayers).
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// BuildTile runs the MVT query for (layer, view, z, x, y) and returns the
// MVT binary payload. version, when non-empty, scopes the query to that
// version's cohort (spec.md §4.7: "the tile query MUST include
// `AND "version" = $4` when version is a non-empty string").
func BuildTile(ctx context.Context, q Querier, layer schema.Layer, view schema.View, z, x, y uint, version string) ([]byte, error) {
	fieldNames := make([]string, len(view.Fields))
	for i, f := range view.Fields {
		fieldNames[i] = f.PgName()
	}
	onField := view.OnField.PgName()

	versionClause := ""
	if version != "" {
		versionClause = fmt.Sprintf(` AND "version" = $4`)
	}

	query := fmt.Sprintf(
		`WITH bbox AS (SELECT TileBBox($1, $2, $3, 3857) AS geom), `+
			`tile_content AS (`+
			`SELECT %s, ST_AsMVTGeom(%s, bbox.geom, 4096, 64, true) AS MVTGeom `+
			`FROM %s, bbox `+
			`WHERE %s && bbox.geom AND ST_GeometryType(%s) != 'ST_GeometryCollection'%s`+
			`) `+
			`SELECT ST_AsMVT(tile_content, '%s') FROM tile_content`,
		strings.Join(fieldNames, ", "),
		onField,
		layer.PgTableName(),
		onField, onField,
		versionClause,
		layer.Name,
	)

	args := []interface{}{z, x, y}
	if version != "" {
		args = append(args, version)
	}

	var data []byte
	if err := q.QueryRow(ctx, query, args...).Scan(&data); err != nil {
		return nil, &chartoserr.StorageError{Op: "build tile", Err: err}
	}
	return data, nil
}
