package writepath

import (
	"context"
	"encoding/json"

	"github.com/DGEXSolutions/chartos/cachekey"
	"github.com/DGEXSolutions/chartos/internal/chartoserr"
	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/tilemath"
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	"github.com/jackc/pgx/v5"
)

// Cache is the slice of tilecache.Cache the write path needs to invalidate
// affected tiles.
type Cache interface {
	Delete(ctx context.Context, keys ...string) error
	PurgePrefix(ctx context.Context, pattern string) error
}

// WritePath drives the VALIDATE -> TRANSLATE -> FETCH_OLD_GEOM -> EXECUTE ->
// INVALIDATE -> REPORT state machine of spec.md §4.8.
type WritePath struct {
	DB      Executor
	Cache   Cache
	MaxZoom uint
}

// New builds a WritePath over the given SQL executor and tile cache.
func New(db Executor, cache Cache, maxZoom uint) *WritePath {
	return &WritePath{DB: db, Cache: cache, MaxZoom: maxZoom}
}

type tileSet map[tilemath.Tile]bool

func (wp *WritePath) addTiles(affected map[string]tileSet, viewName string, g geom.Geometry) error {
	tiles, err := tilemath.FindAffectedTiles(wp.MaxZoom, g)
	if err != nil {
		return err
	}
	set := affected[viewName]
	if set == nil {
		set = tileSet{}
		affected[viewName] = set
	}
	for _, t := range tiles {
		set[t] = true
	}
	return nil
}

func decodeGeoJSONText(text string) (geom.Geometry, error) {
	var gj geojson.Geometry
	if err := json.Unmarshal([]byte(text), &gj); err != nil {
		return nil, &chartoserr.StorageError{Op: "decode old geometry", Err: err}
	}
	return gj.Geometry, nil
}

// Apply runs insert, update or delete for req and reports every view's
// impacted tiles.
func (wp *WritePath) Apply(ctx context.Context, req Request) (Result, error) {
	// VALIDATE
	if err := Validate(req.Layer, req.ChangeType, req.Rows); err != nil {
		return Result{}, err
	}

	// TRANSLATE
	p, err := translate(req)
	if err != nil {
		return Result{}, err
	}

	affected := map[string]tileSet{}

	for viewName, geoms := range p.submittedGeoms {
		for _, g := range geoms {
			g4326, err := tilemath.Reproject3857To4326(g)
			if err != nil {
				return Result{}, err
			}
			if err := wp.addTiles(affected, viewName, g4326); err != nil {
				return Result{}, err
			}
		}
	}

	// FETCH_OLD_GEOM
	for viewName, fragments := range p.fetchQueries {
		union, args := combineUnion(fragments)
		rows, err := wp.DB.Query(ctx, union, args...)
		if err != nil {
			return Result{}, &chartoserr.StorageError{Op: "fetch old geometry", Err: err}
		}
		scanErr := func() error {
			defer rows.Close()
			for rows.Next() {
				var geojsonText *string
				if err := rows.Scan(&geojsonText); err != nil {
					return &chartoserr.StorageError{Op: "fetch old geometry", Err: err}
				}
				if geojsonText == nil {
					continue
				}
				g, err := decodeGeoJSONText(*geojsonText)
				if err != nil {
					return err
				}
				if err := wp.addTiles(affected, viewName, g); err != nil {
					return err
				}
			}
			return rows.Err()
		}()
		if scanErr != nil {
			return Result{}, scanErr
		}
	}

	// EXECUTE — every row's write statement is pipelined as one pgx.Batch,
	// the parameterized analog of spec.md §4.8's "single semicolon-joined
	// batch": one network round trip, values bound rather than spliced.
	if len(p.writeOps) > 0 {
		batch := &pgx.Batch{}
		for _, op := range p.writeOps {
			batch.Queue(op.sql, op.args...)
		}
		br := wp.DB.SendBatch(ctx, batch)
		var execErr error
		for range p.writeOps {
			if _, err := br.Exec(); err != nil {
				execErr = err
				break
			}
		}
		if closeErr := br.Close(); execErr == nil {
			execErr = closeErr
		}
		if execErr != nil {
			return Result{}, &chartoserr.StorageError{Op: "execute write batch", Err: execErr}
		}
	}

	// INVALIDATE
	for viewName, tiles := range affected {
		view, ok := req.Layer.View(viewName)
		if !ok {
			continue
		}
		keys := make([]string, 0, len(tiles))
		for t := range tiles {
			keys = append(keys, cachekey.Key(req.Layer, view, req.Version, t))
		}
		if err := wp.Cache.Delete(ctx, keys...); err != nil {
			return Result{}, &chartoserr.CacheError{Op: "invalidate", Err: err}
		}
	}

	// REPORT
	result := Result{ImpactedTiles: map[string]interface{}{}}
	for viewName, tiles := range affected {
		coords := make([]TileCoord, 0, len(tiles))
		for t := range tiles {
			coords = append(coords, TileCoord{Z: t.Z, X: t.X, Y: t.Y})
		}
		result.ImpactedTiles[viewName] = coords
	}
	return result, nil
}

// Truncate deletes every row of layer's version cohort (or every row, when
// version is empty) and purges the layer's cache wildcard, per spec.md §4.8.
func (wp *WritePath) Truncate(ctx context.Context, layer schema.Layer, version string) (Result, error) {
	var sql string
	var versionArg *string
	if version != "" {
		sql = `DELETE FROM ` + quoteIdent(layer.PgTableName()) + ` WHERE "version" = $1`
		versionArg = &version
	} else {
		sql = `DELETE FROM ` + quoteIdent(layer.PgTableName())
	}

	var err error
	if versionArg != nil {
		_, err = wp.DB.Exec(ctx, sql, *versionArg)
	} else {
		_, err = wp.DB.Exec(ctx, sql)
	}
	if err != nil {
		return Result{}, &chartoserr.StorageError{Op: "truncate", Err: err}
	}

	if err := wp.Cache.PurgePrefix(ctx, cachekey.LayerWildcard(layer, versionArg)); err != nil {
		return Result{}, &chartoserr.CacheError{Op: "truncate invalidate", Err: err}
	}

	result := Result{ImpactedTiles: map[string]interface{}{}}
	for _, name := range layer.ViewNames() {
		result.ImpactedTiles[name] = []string{"*"}
	}
	return result, nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
