package redis

import (
	"context"

	"rescueDispatch/internal/geo"
	"rescueDispatch/pkg/e"

	"github.com/redis/go-redis/v9"
)

// Redis measures with a slightly larger earth radius than geo.Haversine, so the
// server-side search is widened and the final cut is made by geo.Nearest.
const searchSlack = 1.002

// DriverLocations is a geo.Index over a Redis GEO set keyed by driver id.
type DriverLocations struct {
	client *redis.Client
	key    string
}

func NewDriverLocations(client *redis.Client, key string) *DriverLocations {
	return &DriverLocations{client: client, key: key}
}

func (d *DriverLocations) Upsert(ctx context.Context, driverID string, p geo.Point) error {
	const op = "redis.DriverLocations.Upsert"

	if !p.Valid() {
		return e.Invalid(op, "coordinates out of range")
	}
	err := d.client.GeoAdd(ctx, d.key, &redis.GeoLocation{
		Name:      driverID,
		Longitude: p.Lng,
		Latitude:  p.Lat,
	}).Err()
	if err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (d *DriverLocations) Remove(ctx context.Context, driverID string) error {
	if err := d.client.ZRem(ctx, d.key, driverID).Err(); err != nil {
		return e.WrapError(ctx, "redis.DriverLocations.Remove", err)
	}
	return nil
}

func (d *DriverLocations) NearestWithinRadius(ctx context.Context, origin geo.Point, radiusMeters float64, filter geo.Filter, limit int) ([]geo.Candidate, error) {
	const op = "redis.DriverLocations.NearestWithinRadius"

	if radiusMeters <= 0 {
		return []geo.Candidate{}, nil
	}

	locs, err := d.client.GeoSearchLocation(ctx, d.key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  origin.Lng,
			Latitude:   origin.Lat,
			Radius:     radiusMeters * searchSlack,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	entries := make([]geo.Entry, 0, len(locs))
	for _, l := range locs {
		entries = append(entries, geo.Entry{ID: l.Name, Point: geo.Point{Lat: l.Latitude, Lng: l.Longitude}})
	}
	return geo.Nearest(entries, origin, radiusMeters, filter, limit), nil
}
