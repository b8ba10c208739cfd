package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
	"github.com/joseph-ayodele/incidents-tracker/internal/entity"
)

// InsertResult reports how a batch landed in the store.
type InsertResult struct {
	Inserted int
	Ignored  int
}

type IncidentRepository interface {
	EnsureSchema(ctx context.Context) error
	InsertIncidents(ctx context.Context, incidents []entity.Incident) (InsertResult, error)
	NatureCounts(ctx context.Context) ([]entity.NatureCount, error)
	ListIncidents(ctx context.Context) ([]entity.Incident, error)
	CountIncidents(ctx context.Context) (int, error)
}

type incidentRepo struct {
	drv    *entsql.Driver
	logger *slog.Logger
}

func NewIncidentRepository(drv *entsql.Driver, logger *slog.Logger) IncidentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &incidentRepo{
		drv:    drv,
		logger: logger,
	}
}

func (r *incidentRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

// InsertIncidents writes the batch in one transaction. A row whose
// incident_number is already stored, either from an earlier run or earlier
// in the same batch, is skipped and counted as ignored.
func (r *incidentRepo) InsertIncidents(ctx context.Context, incidents []entity.Incident) (InsertResult, error) {
	var res InsertResult
	if len(incidents) == 0 {
		r.logger.Info("no incidents to insert")
		return res, nil
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: begin: %w", common.ErrDatabase, err)
	}

	for _, inc := range incidents {
		query, args := r.builder().
			Insert(incidentsTable).
			Columns("incident_time", "incident_number", "incident_location", "nature", "incident_ori").
			Values(inc.Time, inc.Number, inc.Location, inc.Nature, inc.ORI).
			OnConflict(
				entsql.ConflictColumns("incident_number"),
				entsql.DoNothing(),
			).
			Query()

		var out sql.Result
		if err := tx.Exec(ctx, query, args, &out); err != nil {
			_ = tx.Rollback()
			r.logger.Error("failed to insert incident", "incident_number", inc.Number, "error", err)
			return InsertResult{}, fmt.Errorf("%w: insert %s: %w", common.ErrDatabase, inc.Number, err)
		}
		n, err := out.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return InsertResult{}, fmt.Errorf("%w: rows affected: %w", common.ErrDatabase, err)
		}
		if n > 0 {
			res.Inserted++
		} else {
			res.Ignored++
			r.logger.Debug("incident already stored", "incident_number", inc.Number)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit incidents", "error", err)
		return InsertResult{}, fmt.Errorf("%w: commit: %w", common.ErrDatabase, err)
	}
	r.logger.Info("inserted incidents", "inserted", res.Inserted, "ignored", res.Ignored)
	return res, nil
}

// NatureCounts groups every stored incident by nature, ordered by nature.
func (r *incidentRepo) NatureCounts(ctx context.Context) ([]entity.NatureCount, error) {
	query, args := r.builder().
		Select("nature", entsql.As(entsql.Count("*"), "count")).
		From(entsql.Table(incidentsTable)).
		GroupBy("nature").
		OrderBy("nature").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to query nature counts", "error", err)
		return nil, fmt.Errorf("%w: nature counts: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.NatureCount, 0)
	for rows.Next() {
		var nc entity.NatureCount
		if err := rows.Scan(&nc.Nature, &nc.Count); err != nil {
			return nil, fmt.Errorf("%w: scan nature count: %w", common.ErrDatabase, err)
		}
		out = append(out, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: nature counts: %w", common.ErrDatabase, err)
	}
	return out, nil
}

// ListIncidents returns every stored incident in insertion order.
func (r *incidentRepo) ListIncidents(ctx context.Context) ([]entity.Incident, error) {
	query, args := r.builder().
		Select("incident_time", "incident_number", "incident_location", "nature", "incident_ori").
		From(entsql.Table(incidentsTable)).
		OrderBy("id").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		r.logger.Error("failed to list incidents", "error", err)
		return nil, fmt.Errorf("%w: list incidents: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.Incident, 0)
	for rows.Next() {
		var inc entity.Incident
		if err := rows.Scan(&inc.Time, &inc.Number, &inc.Location, &inc.Nature, &inc.ORI); err != nil {
			return nil, fmt.Errorf("%w: scan incident: %w", common.ErrDatabase, err)
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list incidents: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *incidentRepo) CountIncidents(ctx context.Context) (int, error) {
	query, args := r.builder().
		Select(entsql.Count("*")).
		From(entsql.Table(incidentsTable)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("%w: count incidents: %w", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("%w: count incidents: %w", common.ErrDatabase, err)
		}
	}
	return n, rows.Err()
}
