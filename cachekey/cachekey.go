// Package cachekey derives tile cache keys and purge prefixes deterministically
// from (Layer, View, version, AffectedTile), per spec.md §3 and §4.5.
package cachekey

import (
	"fmt"

	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/tilemath"
)

// ViewCachePrefix returns the key without the tile suffix:
// "chartos.layer.<layer>.<view>.version_<version>".
func ViewCachePrefix(layer schema.Layer, version string, view schema.View) string {
	return fmt.Sprintf("chartos.layer.%s.%s.version_%s", layer.Name, view.Name, version)
}

// TileKey appends the tile suffix to a view cache prefix:
// "<prefix>.tile/<z>/<x>/<y>".
func TileKey(prefix string, tile tilemath.Tile) string {
	return fmt.Sprintf("%s.tile/%d/%d/%d", prefix, tile.Z, tile.X, tile.Y)
}

// Key is a convenience wrapper combining ViewCachePrefix and TileKey.
func Key(layer schema.Layer, view schema.View, version string, tile tilemath.Tile) string {
	return TileKey(ViewCachePrefix(layer, version, view), tile)
}

// ViewPurgePattern is the glob used for bulk purge of one view at one
// version: "chartos.layer.<layer>.<view>.version_<version>.tile/*".
func ViewPurgePattern(layer schema.Layer, version string, view schema.View) string {
	return ViewCachePrefix(layer, version, view) + ".tile/*"
}

// LayerWildcard is the glob used for bulk purge on truncate. With a version
// it scopes the purge to that version's cohort; without one it purges the
// whole layer across every view and version.
func LayerWildcard(layer schema.Layer, version *string) string {
	if version == nil {
		return fmt.Sprintf("chartos.layer.%s.*", layer.Name)
	}
	return fmt.Sprintf("chartos.layer.%s.*.version_%s.tile/*", layer.Name, *version)
}
