package tilemath

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
)

// webMercatorOriginShift is half the circumference of the Web Mercator
// projection's equator in meters, used by the inverse projection formula.
const webMercatorOriginShift = 20037508.342789244

func webMercatorToLonLat(x, y float64) (lon, lat float64) {
	lon = x / webMercatorOriginShift * 180.0
	lat = 180.0 / math.Pi * (2*math.Atan(math.Exp((y/webMercatorOriginShift)*math.Pi)) - math.Pi/2)
	return lon, lat
}

func reprojectCoord(c [2]float64) [2]float64 {
	lon, lat := webMercatorToLonLat(c[0], c[1])
	return [2]float64{lon, lat}
}

// Reproject3857To4326 converts a geometry whose coordinates are in
// EPSG:3857 (Web Mercator meters, the SRID every layer table stores) into
// EPSG:4326 (lon/lat degrees), the projection FindAffectedTiles requires
// ("reprojected to EPSG:4326 once", spec.md §4.4). go-spatial/geom ships no
// generic CRS-transform helper in this pack, so the fixed Web Mercator
// inverse formula is applied directly to every coordinate pair.
func Reproject3857To4326(g geom.Geometry) (geom.Geometry, error) {
	switch v := g.(type) {
	case geom.Point:
		return geom.Point(reprojectCoord([2]float64(v))), nil
	case *geom.Point:
		p := geom.Point(reprojectCoord([2]float64(*v)))
		return &p, nil
	case geom.MultiPoint:
		out := make(geom.MultiPoint, len(v))
		for i, p := range v {
			out[i] = reprojectCoord(p)
		}
		return out, nil
	case geom.LineString:
		out := make(geom.LineString, len(v))
		for i, p := range v {
			out[i] = reprojectCoord(p)
		}
		return out, nil
	case geom.MultiLineString:
		out := make(geom.MultiLineString, len(v))
		for i, ls := range v {
			out[i] = make(geom.LineString, len(ls))
			for j, p := range ls {
				out[i][j] = reprojectCoord(p)
			}
		}
		return out, nil
	case geom.Polygon:
		out := make(geom.Polygon, len(v))
		for i, ring := range v {
			out[i] = make([][2]float64, len(ring))
			for j, p := range ring {
				out[i][j] = reprojectCoord(p)
			}
		}
		return out, nil
	case geom.MultiPolygon:
		out := make(geom.MultiPolygon, len(v))
		for i, poly := range v {
			out[i] = make([][][2]float64, len(poly))
			for j, ring := range poly {
				out[i][j] = make([][2]float64, len(ring))
				for k, p := range ring {
					out[i][j][k] = reprojectCoord(p)
				}
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tilemath: unsupported geometry type %T for reprojection", g)
	}
}
