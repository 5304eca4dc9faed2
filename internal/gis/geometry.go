package gis

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// LatLng is a coordinate pair in display order.
type LatLng [2]float64

// OuterRing returns the outer ring of the first polygon of a Polygon or
// MultiPolygon geometry, converted from (lng, lat) to (lat, lng).
// Rings that go-geom rejects, such as rings mixing 2D and 3D positions, are
// read position by position. Anything else yields nil.
func OuterRing(raw json.RawMessage) []LatLng {
	if isNull(raw) {
		return nil
	}

	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return looseOuterRing(raw)
	}

	var poly *geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		poly = t
	case *geom.MultiPolygon:
		if t.NumPolygons() > 0 {
			poly = t.Polygon(0)
		}
	}
	if poly == nil || poly.NumLinearRings() == 0 {
		return nil
	}

	coords := poly.LinearRing(0).Coords()
	ring := make([]LatLng, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		ring = append(ring, LatLng{c[1], c[0]})
	}
	return ring
}

// looseOuterRing reads the first outer ring straight from the coordinate
// arrays, keeping only the first two values of each position.
func looseOuterRing(raw json.RawMessage) []LatLng {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil
	}

	var rings [][][]float64
	switch g.Type {
	case "Polygon":
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil
		}
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil || len(polys) == 0 {
			return nil
		}
		rings = polys[0]
	default:
		return nil
	}
	if len(rings) == 0 {
		return nil
	}

	ring := make([]LatLng, 0, len(rings[0]))
	for _, c := range rings[0] {
		if len(c) < 2 {
			continue
		}
		ring = append(ring, LatLng{c[1], c[0]})
	}
	return ring
}
