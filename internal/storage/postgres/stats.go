package postgres

import (
	"context"
	"log/slog"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
)

// ListByDriver returns incidents the driver holds or appears in the timeline of,
// updated at or after since.
func (p *IncidentStore) ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListByDriver"

	const query = `
		SELECT doc, version
		FROM incidents
		WHERE updated_at >= $2
		  AND (assigned_driver_id = $1
			OR doc -> 'timeline' @> jsonb_build_array(jsonb_build_object('driver_id', $1::text)))
		ORDER BY created_at DESC
	`
	return p.query(ctx, op, query, driverID, sinceOrZero(since))
}

// BusyDrivers maps every driver holding an active assignment to that incident.
func (p *IncidentStore) BusyDrivers(ctx context.Context) (map[string]uuid.UUID, error) {
	const op = "postgres.Incident.BusyDrivers"

	const query = `
		SELECT assigned_driver_id, id
		FROM incidents
		WHERE assigned_driver_id IS NOT NULL
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	busy := make(map[string]uuid.UUID)
	for rows.Next() {
		var (
			driverID string
			id       uuid.UUID
		)
		if err := rows.Scan(&driverID, &id); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		busy[driverID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return busy, nil
}
