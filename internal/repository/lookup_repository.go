package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-units-api/internal/models"
)

// LookupRepository reads the reference tables backing form selects.
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository constructs a LookupRepository.
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

// ListNTEs returns every NTE ordered by name.
func (r *LookupRepository) ListNTEs(ctx context.Context) ([]models.NTE, error) {
	const query = `SELECT id, name FROM ntes ORDER BY name ASC, id ASC`
	ntes := make([]models.NTE, 0)
	if err := r.db.SelectContext(ctx, &ntes, query); err != nil {
		return nil, fmt.Errorf("list ntes: %w", err)
	}
	return ntes, nil
}

// ListMunicipalities returns the municipalities of one NTE ordered by name.
func (r *LookupRepository) ListMunicipalities(ctx context.Context, nteID int64) ([]models.Municipality, error) {
	const query = `SELECT id, name, nte_id FROM municipalities WHERE nte_id = $1 ORDER BY name ASC, id ASC`
	municipalities := make([]models.Municipality, 0)
	if err := r.db.SelectContext(ctx, &municipalities, query, nteID); err != nil {
		return nil, fmt.Errorf("list municipalities: %w", err)
	}
	return municipalities, nil
}

// ListTypologies returns every typology ordered by name.
func (r *LookupRepository) ListTypologies(ctx context.Context) ([]models.Typology, error) {
	const query = `SELECT id, name FROM typologies ORDER BY name ASC, id ASC`
	typologies := make([]models.Typology, 0)
	if err := r.db.SelectContext(ctx, &typologies, query); err != nil {
		return nil, fmt.Errorf("list typologies: %w", err)
	}
	return typologies, nil
}

// FindTypologyByName returns the first typology whose name matches exactly.
func (r *LookupRepository) FindTypologyByName(ctx context.Context, name string) (*models.Typology, error) {
	const query = `SELECT id, name FROM typologies WHERE name = $1 ORDER BY id ASC LIMIT 1`
	var typology models.Typology
	if err := r.db.GetContext(ctx, &typology, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find typology: %w", err)
	}
	return &typology, nil
}
