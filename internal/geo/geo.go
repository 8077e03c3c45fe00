// Package geo answers "nearest candidates within radius" over WGS84 points.
package geo

import (
	"context"
	"math"
	"sort"
)

const earthRadiusMeters = 6371000.0

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// IsZero reports the (0,0) point, which reports use for "no coordinates".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

type Entry struct {
	ID    string
	Point Point
}

type Candidate struct {
	ID             string  `json:"id"`
	Point          Point   `json:"coordinates"`
	DistanceMeters float64 `json:"distance_meters"`
}

// Filter decides whether an entry id may be returned. A nil Filter admits everything.
type Filter func(id string) bool

type Index interface {
	NearestWithinRadius(ctx context.Context, origin Point, radiusMeters float64, filter Filter, limit int) ([]Candidate, error)
}

// Haversine returns the great-circle distance in meters.
func Haversine(a, b Point) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Nearest ranks entries by distance from origin, drops the ones beyond
// radiusMeters or rejected by filter, and keeps at most limit results
// (limit <= 0 keeps all). Equal distances are ordered by id.
func Nearest(entries []Entry, origin Point, radiusMeters float64, filter Filter, limit int) []Candidate {
	out := make([]Candidate, 0)
	if radiusMeters < 0 {
		return out
	}
	for _, en := range entries {
		if filter != nil && !filter(en.ID) {
			continue
		}
		d := Haversine(origin, en.Point)
		if d > radiusMeters {
			continue
		}
		out = append(out, Candidate{ID: en.ID, Point: en.Point, DistanceMeters: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func KM(km float64) float64 {
	return km * 1000
}
