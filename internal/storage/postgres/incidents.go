package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ST_DWithin measures on the spheroid; callers re-rank with haversine.
const radiusSlack = 1.002

var terminalStatuses = []string{
	string(domain.StatusRescued),
	string(domain.StatusTreatmentComplete),
	string(domain.StatusCancelled),
}

// IncidentStore keeps the whole incident in doc and projects the columns
// used for filtering and geo lookups.
type IncidentStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIncidentStore(pool *pgxpool.Pool, logger *slog.Logger) *IncidentStore {
	return &IncidentStore{pool: pool, logger: logger}
}

func (p *IncidentStore) Create(ctx context.Context, incident *domain.Incident) error {
	const op = "postgres.Incident.Create"

	if incident == nil || incident.ID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if incident.Version == 0 {
		incident.Version = 1
	}
	if incident.UpdatedAt.IsZero() {
		incident.UpdatedAt = incident.CreatedAt
	}
	if err := incident.CheckInvariants(); err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}

	doc, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}

	const query = `
		INSERT INTO incidents (id, request_id, status, priority, is_emergency, geo_point,
			assigned_driver_id, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography,
			$8, $9, $10, $11, $12)
	`

	_, err = p.pool.Exec(ctx, query,
		incident.ID,
		incident.RequestID,
		string(incident.Status),
		string(incident.Priority),
		incident.IsEmergency,
		incident.Location.Coordinates.Lng,
		incident.Location.Coordinates.Lat,
		assignedDriver(incident),
		incident.Version,
		doc,
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed",
			slog.String("op", op),
			slog.Any("error", err),
			slog.String("request_id", incident.RequestID),
		)
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *IncidentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "postgres.Incident.Get"

	const query = `SELECT doc, version FROM incidents WHERE id = $1`

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

func (p *IncidentStore) GetByRequestID(ctx context.Context, requestID string) (*domain.Incident, error) {
	const op = "postgres.Incident.GetByRequestID"

	const query = `SELECT doc, version FROM incidents WHERE request_id = $1`

	inc, err := scanIncident(p.pool.QueryRow(ctx, query, requestID))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	return inc, nil
}

// List returns newest first.
func (p *IncidentStore) List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, int64, error) {
	const op = "postgres.Incident.List"

	filter = filter.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.Emergency != nil {
		args = append(args, *filter.Emergency)
		where = append(where, fmt.Sprintf("is_emergency = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM incidents "+clause, args...).Scan(&total); err != nil {
		p.logger.Error("db count failed", slog.String("op", op), slog.Any("error", err))
		return nil, 0, e.WrapError(ctx, op, err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT doc, version
		FROM incidents
		%s
		ORDER BY created_at DESC, request_id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	incidents, err := p.query(ctx, op, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

func (p *IncidentStore) ListOpenWithin(ctx context.Context, origin geo.Point, radiusMeters float64) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListOpenWithin"

	if !origin.Valid() || radiusMeters <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}

	const query = `
		SELECT doc, version
		FROM incidents
		WHERE status <> ALL($4)
		  AND ST_DWithin(
			geo_point,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		  )
	`
	return p.query(ctx, op, query, origin.Lng, origin.Lat, radiusMeters*radiusSlack, terminalStatuses)
}

// ListPending returns the oldest pending incidents first.
func (p *IncidentStore) ListPending(ctx context.Context, limit int) ([]*domain.Incident, error) {
	const op = "postgres.Incident.ListPending"

	query := `
		SELECT doc, version
		FROM incidents
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{string(domain.StatusPendingAssignment)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	return p.query(ctx, op, query, args...)
}

// Update locks the row, applies fn to the decoded incident and writes it back
// guarded by the version it read. fn errors roll the transaction back untouched.
func (p *IncidentStore) Update(ctx context.Context, id uuid.UUID, fn func(incident *domain.Incident) error) (*domain.Incident, error) {
	const op = "postgres.Incident.Update"

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		p.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanIncident(tx.QueryRow(ctx, `SELECT doc, version FROM incidents WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}
	next.ID = current.ID
	next.RequestID = current.RequestID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1

	doc, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}

	const query = `
		UPDATE incidents
		SET status = $2,
			priority = $3,
			is_emergency = $4,
			geo_point = ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
			assigned_driver_id = $7,
			version = $8,
			doc = $9,
			updated_at = $10
		WHERE id = $1 AND version = $11
	`
	tag, err := tx.Exec(ctx, query,
		next.ID,
		string(next.Status),
		string(next.Priority),
		next.IsEmergency,
		next.Location.Coordinates.Lng,
		next.Location.Coordinates.Lat,
		assignedDriver(next),
		next.Version,
		doc,
		next.UpdatedAt,
		current.Version,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: version %d is stale: %w", op, current.Version, e.ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return next, nil
}

func (p *IncidentStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Incident, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	incidents := make([]*domain.Incident, 0, 8)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		doc     []byte
		version int64
	)
	if err := row.Scan(&doc, &version); err != nil {
		return nil, err
	}
	var inc domain.Incident
	if err := json.Unmarshal(doc, &inc); err != nil {
		return nil, fmt.Errorf("decode incident doc: %w", err)
	}
	inc.Version = version
	return &inc, nil
}

func assignedDriver(inc *domain.Incident) *string {
	if inc.Assignment == nil {
		return nil
	}
	id := inc.Assignment.DriverID
	return &id
}

func sinceOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return time.Unix(0, 0).UTC()
	}
	return t
}
