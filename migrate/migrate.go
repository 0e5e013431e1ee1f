// Package migrate is the Migrator of spec.md §4.3: it brings a Postgres
// database's schema up to date with a parsed Config, idempotently. Grounded
// on chartos/dbinit.py's init_layer/DBInit.on_startup and on tegola's
// provider/postgis/postgis.go for driving DDL through a pgx connection pool.
package migrate

import (
	"context"
	"fmt"

	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
)

// tileBBoxFunc is the TileBBox(z, x, y, srid) PL/pgSQL helper every mvt
// query relies on (spec.md §4.3 step 5), a direct port of dbinit.py's
// tilebbox_func.
const tileBBoxFunc = `
create or replace function TileBBox(z int, x int, y int, srid int default 3857)
    returns geometry
    language plpgsql immutable as
$func$
declare
    max numeric := 20037508.34;
    res numeric := (max*2)/(2^z);
    bbox geometry;
begin
    bbox := ST_MakeEnvelope(
        -max + (x * res),
        max - (y * res),
        -max + (x * res) + res,
        max - (y * res) - res,
        3857
    );
    if srid = 3857 then
        return bbox;
    else
        return ST_Transform(bbox, srid);
    end if;
end;
$func$
`

// Migrator applies the DDL derived from a Config to a database.
type Migrator struct {
	Exec func(ctx context.Context, sql string, args ...interface{}) error
}

// New builds a Migrator around any pgx-shaped Exec function. Accepting a
// func instead of an interface lets *pgxpool.Pool's actual
// Exec(ctx, sql, args...) (pgconn.CommandTag, error) signature be adapted
// with a one-line closure at the call site, without pulling pgconn into
// this package's API.
func New(exec func(ctx context.Context, sql string, args ...interface{}) error) *Migrator {
	return &Migrator{Exec: exec}
}

// Run brings every layer table in cfg up to date, per spec.md §4.3:
//  1. CREATE TABLE IF NOT EXISTS with every field as a column
//  2. ALTER TABLE ... ADD COLUMN IF NOT EXISTS for the version column and
//     every field (covers the case where the table pre-existed with a
//     narrower column set)
//  3. one SPGIST index per distinct geom field referenced by a view
//  4. a btree index on the version column
//  5. the shared TileBBox function (reissued per run; CREATE OR REPLACE is
//     idempotent)
func (m *Migrator) Run(ctx context.Context, cfg *schema.Config) error {
	for _, layer := range cfg.Layers {
		if err := m.migrateLayer(ctx, layer); err != nil {
			return err
		}
	}
	if err := m.Exec(ctx, tileBBoxFunc); err != nil {
		return &chartoserr.StorageError{Op: "create TileBBox function", Err: err}
	}
	return nil
}

func (m *Migrator) migrateLayer(ctx context.Context, layer schema.Layer) error {
	table := fmt.Sprintf("%q", layer.PgTableName())
	pgSchema := layer.PgSchema()

	createCols := make([]string, len(pgSchema))
	alterClauses := make([]string, len(pgSchema))
	for i, c := range pgSchema {
		createCols[i] = fmt.Sprintf("%s %s", c.PgName, c.PgType)
		alterClauses[i] = fmt.Sprintf("ADD COLUMN IF NOT EXISTS %s %s", c.PgName, c.PgType)
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, joinComma(createCols))
	if err := m.Exec(ctx, createSQL); err != nil {
		return &chartoserr.StorageError{Op: fmt.Sprintf("create table %s", layer.PgTableName()), Err: err}
	}

	alterSQL := fmt.Sprintf("ALTER TABLE %s %s", table, joinComma(alterClauses))
	if err := m.Exec(ctx, alterSQL); err != nil {
		return &chartoserr.StorageError{Op: fmt.Sprintf("alter table %s", layer.PgTableName()), Err: err}
	}

	for _, geomField := range layer.GeomFieldsInViews() {
		indexName := fmt.Sprintf("%s_%s_spgist", layer.PgTableName(), geomField.Name)
		indexSQL := fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %q ON %s USING SPGIST (%s)",
			indexName, table, geomField.PgName(),
		)
		if err := m.Exec(ctx, indexSQL); err != nil {
			return &chartoserr.StorageError{Op: fmt.Sprintf("create spgist index %s", indexName), Err: err}
		}
	}

	versionIndex := fmt.Sprintf("%s_version", layer.PgTableName())
	versionIndexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %s ("version")`, versionIndex, table)
	if err := m.Exec(ctx, versionIndexSQL); err != nil {
		return &chartoserr.StorageError{Op: fmt.Sprintf("create version index %s", versionIndex), Err: err}
	}

	return nil
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
