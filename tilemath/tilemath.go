// Package tilemath implements Web-Mercator tile <-> lon/lat conversions and
// the quadtree affect-enumeration algorithm of spec.md §4.4.
package tilemath

import "math"

// DefaultMaxZoom is Zmax when not configured, per spec.md §3.
const DefaultMaxZoom = 18

// Tile is an (x, y, z) Web-Mercator tile coordinate, z <= Zmax.
type Tile struct {
	Z, X, Y uint
}

// TileOf computes the tile containing (lat, lon) at zoom z, per spec.md
// §4.4: floor((lon+180)/360 * 2^z), floor((1 - asinh(tan(lat*pi/180))/pi)/2 * 2^z).
func TileOf(lat, lon float64, z uint) (x, y uint) {
	n := math.Exp2(float64(z))
	fx := math.Floor((lon + 180.0) / 360.0 * n)
	fy := math.Floor((1.0 - math.Asinh(math.Tan(lat*math.Pi/180.0))/math.Pi) / 2.0 * n)
	return uint(fx), uint(fy)
}

// NWCorner returns the lat/lon of tile (z, x, y)'s northwest corner, the
// inverse of TileOf.
func NWCorner(z, x, y uint) (lat, lon float64) {
	n := math.Exp2(float64(z))
	lon = float64(x)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(y)/n)))
	lat = latRad * 180.0 / math.Pi
	return lat, lon
}
