package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-units-api/internal/models"
)

const homologationColumns = `id, school_unit_id, action, reason, performed_by, created_at`

// HomologationRepository persists the append-only approval history.
type HomologationRepository struct {
	db *sqlx.DB
}

// NewHomologationRepository constructs a HomologationRepository.
func NewHomologationRepository(db *sqlx.DB) *HomologationRepository {
	return &HomologationRepository{db: db}
}

// ListByUnit returns a unit's events newest first. A limit of zero returns all of them.
func (r *HomologationRepository) ListByUnit(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error) {
	query := `SELECT ` + homologationColumns + ` FROM homologations WHERE school_unit_id = $1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{unitID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	events := make([]models.HomologationEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list homologations: %w", err)
	}
	return events, nil
}

// Latest returns the newest event of a unit or sql.ErrNoRows when it has none.
func (r *HomologationRepository) Latest(ctx context.Context, unitID int64) (*models.HomologationEvent, error) {
	const query = `SELECT ` + homologationColumns + ` FROM homologations WHERE school_unit_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	var event models.HomologationEvent
	if err := r.db.GetContext(ctx, &event, query, unitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("latest homologation: %w", err)
	}
	return &event, nil
}

// Create appends an event and fills its id and timestamp.
func (r *HomologationRepository) Create(ctx context.Context, event *models.HomologationEvent) error {
	const query = `INSERT INTO homologations (school_unit_id, action, reason, performed_by)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, event.SchoolUnitID, event.Action, event.Reason, event.PerformedBy).
		Scan(&event.ID, &event.CreatedAt); err != nil {
		return fmt.Errorf("create homologation: %w", err)
	}
	return nil
}
