package tilemath

import (
	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/planar"
)

// FindAffectedTiles returns every tile at z = 0..zmax whose bounding box
// intersects g (already reprojected to EPSG:4326 by the caller), per
// spec.md §4.4. The recursion descends a quadtree from (0,0,0), pruning any
// branch whose bbox doesn't intersect g; total work is bounded by the
// number of tiles g touches, not by 4^zmax.
//
// "Prepare the geometry for repeated intersects queries" (spec.md §4.4) is
// realized here simply by decoding g once and reusing the same
// geom.Geometry value across every recursive call — Go has no GEOS-style
// prepared-geometry handle in this stack, and geom.planar's Intersects is
// already cheap enough per call that no separate index is built.
func FindAffectedTiles(zmax uint, g geom.Geometry) ([]Tile, error) {
	var tiles []Tile
	if err := findAffectedTilesRec(zmax, g, 0, 0, 0, &tiles); err != nil {
		return nil, err
	}
	return tiles, nil
}

func findAffectedTilesRec(zmax uint, g geom.Geometry, z, x, y uint, tiles *[]Tile) error {
	latMax, lonMin := NWCorner(z, x, y)
	latMin, lonMax := NWCorner(z, x+1, y+1)
	bbox := geom.Extent{lonMin, latMin, lonMax, latMax}

	hit, err := planar.Intersects(bbox.AsPolygon(), g)
	if err != nil {
		return err
	}
	if !hit {
		return nil
	}

	*tiles = append(*tiles, Tile{Z: z, X: x, Y: y})

	if z >= zmax {
		return nil
	}
	for subX := x * 2; subX < x*2+2; subX++ {
		for subY := y * 2; subY < y*2+2; subY++ {
			if err := findAffectedTilesRec(zmax, g, z+1, subX, subY, tiles); err != nil {
				return err
			}
		}
	}
	return nil
}
