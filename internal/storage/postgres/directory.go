package postgres

import (
	"context"
	"log/slog"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FacilityDirectory and DriverDirectory read tables owned by other systems.
type FacilityDirectory struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewFacilityDirectory(pool *pgxpool.Pool, logger *slog.Logger) *FacilityDirectory {
	return &FacilityDirectory{pool: pool, logger: logger}
}

const facilityColumns = `
	id, name, address, contact,
	ST_Y(geo_point::geometry) AS lat,
	ST_X(geo_point::geometry) AS lng,
	accepts_emergencies, capacity
`

func scanFacility(row pgx.Row) (domain.Facility, error) {
	var f domain.Facility
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Address,
		&f.Contact,
		&f.Coordinates.Lat,
		&f.Coordinates.Lng,
		&f.AcceptsEmergencies,
		&f.Capacity,
	)
	return f, err
}

func (d *FacilityDirectory) Get(ctx context.Context, id string) (*domain.Facility, error) {
	const op = "postgres.Facility.Get"

	f, err := scanFacility(d.pool.QueryRow(ctx, "SELECT "+facilityColumns+" FROM facilities WHERE id = $1", id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return &f, nil
}

func (d *FacilityDirectory) List(ctx context.Context) ([]domain.Facility, error) {
	const op = "postgres.Facility.List"

	rows, err := d.pool.Query(ctx, "SELECT "+facilityColumns+" FROM facilities ORDER BY id")
	if err != nil {
		d.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]domain.Facility, 0, 16)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			d.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}

type DriverDirectory struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDriverDirectory(pool *pgxpool.Pool, logger *slog.Logger) *DriverDirectory {
	return &DriverDirectory{pool: pool, logger: logger}
}

const driverColumns = `
	id, name, phone,
	ST_Y(geo_point::geometry) AS lat,
	ST_X(geo_point::geometry) AS lng,
	available, active_incident_id
`

func scanDriver(row pgx.Row) (domain.Driver, error) {
	var drv domain.Driver
	err := row.Scan(
		&drv.ID,
		&drv.Name,
		&drv.Phone,
		&drv.Coordinates.Lat,
		&drv.Coordinates.Lng,
		&drv.Available,
		&drv.ActiveIncidentID,
	)
	return drv, err
}

func (d *DriverDirectory) Get(ctx context.Context, id string) (*domain.Driver, error) {
	const op = "postgres.Driver.Get"

	drv, err := scanDriver(d.pool.QueryRow(ctx, "SELECT "+driverColumns+" FROM drivers WHERE id = $1", id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return &drv, nil
}

func (d *DriverDirectory) ListAvailable(ctx context.Context) ([]domain.Driver, error) {
	return d.list(ctx, "postgres.Driver.ListAvailable", "WHERE available")
}

// List returns every driver; used to seed the location index at startup.
func (d *DriverDirectory) List(ctx context.Context) ([]domain.Driver, error) {
	return d.list(ctx, "postgres.Driver.List", "")
}

func (d *DriverDirectory) list(ctx context.Context, op, where string) ([]domain.Driver, error) {
	rows, err := d.pool.Query(ctx, "SELECT "+driverColumns+" FROM drivers "+where+" ORDER BY id")
	if err != nil {
		d.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	out := make([]domain.Driver, 0, 16)
	for rows.Next() {
		drv, err := scanDriver(rows)
		if err != nil {
			d.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		out = append(out, drv)
	}
	if err := rows.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return out, nil
}
