package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/joseph-ayodele/incidents-tracker/internal/common"
)

const incidentsTable = "incidents"

var (
	// IncidentsColumns holds the columns of the "incidents" table.
	IncidentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "incident_time", Type: field.TypeString},
		{Name: "incident_number", Type: field.TypeString, Unique: true},
		{Name: "incident_location", Type: field.TypeString},
		{Name: "nature", Type: field.TypeString},
		{Name: "incident_ori", Type: field.TypeString},
	}
	// IncidentsTable holds the schema information for the "incidents" table.
	IncidentsTable = &schema.Table{
		Name:       incidentsTable,
		Columns:    IncidentsColumns,
		PrimaryKey: []*schema.Column{IncidentsColumns[0]},
	}
)

// EnsureSchema creates the incidents table if it does not exist yet. Existing
// rows are never touched.
func (r *incidentRepo) EnsureSchema(ctx context.Context) error {
	m, err := schema.NewMigrate(r.drv)
	if err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, IncidentsTable); err != nil {
		r.logger.Error("failed to create incidents table", "error", err)
		return fmt.Errorf("%w: create schema: %w", common.ErrDatabase, err)
	}
	r.logger.Debug("incidents table ready")
	return nil
}
