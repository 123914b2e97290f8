package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-units-api/internal/models"
)

var schoolUnitColumns = []string{
	"su.id", "su.name", "su.sec_code", "su.uo_code", "su.status", "su.municipality_id", "su.typology_id",
	"su.created_at", "su.updated_at",
	"COALESCE(t.name, '') AS typology_name",
	"COALESCE(m.name, '') AS municipality_name",
	"COALESCE(m.nte_id, 0) AS nte_id",
	"COALESCE(n.name, '') AS nte_name",
}

// SchoolUnitRepository manages persistence for school unit records.
type SchoolUnitRepository struct {
	db *sqlx.DB
}

// NewSchoolUnitRepository constructs a SchoolUnitRepository.
func NewSchoolUnitRepository(db *sqlx.DB) *SchoolUnitRepository {
	return &SchoolUnitRepository{db: db}
}

func selectSchoolUnits() sq.SelectBuilder {
	return psql.Select(schoolUnitColumns...).
		From("school_units su").
		LeftJoin("municipalities m ON m.id = su.municipality_id").
		LeftJoin("ntes n ON n.id = m.nte_id").
		LeftJoin("typologies t ON t.id = su.typology_id")
}

// List returns up to limit rows strictly after the filter cursor in id order.
func (r *SchoolUnitRepository) List(ctx context.Context, filter models.SchoolUnitFilter, limit int) ([]models.SchoolUnitRow, error) {
	builder := selectSchoolUnits()

	if filter.Cursor != nil {
		if filter.Order == models.SortDesc {
			builder = builder.Where(sq.Lt{"su.id": *filter.Cursor})
		} else {
			builder = builder.Where(sq.Gt{"su.id": *filter.Cursor})
		}
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"su.status": filter.Status})
	}
	if filter.NTEID != nil {
		builder = builder.Where(sq.Eq{"m.nte_id": *filter.NTEID})
	}
	if filter.MunicipalityID != nil {
		builder = builder.Where(sq.Eq{"su.municipality_id": *filter.MunicipalityID})
	}
	if filter.TypologyID != nil {
		builder = builder.Where(sq.Eq{"su.typology_id": *filter.TypologyID})
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		builder = builder.Where(sq.Or{sq.ILike{"su.name": pattern}, sq.ILike{"su.sec_code": pattern}})
	}

	if filter.Order == models.SortDesc {
		builder = builder.OrderBy("su.id DESC")
	} else {
		builder = builder.OrderBy("su.id ASC")
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build school unit list: %w", err)
	}

	rows := make([]models.SchoolUnitRow, 0, limit)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list school units: %w", err)
	}
	return rows, nil
}

// FindByID fetches a joined school unit row. It returns sql.ErrNoRows when absent.
func (r *SchoolUnitRepository) FindByID(ctx context.Context, id int64) (*models.SchoolUnitRow, error) {
	query, args, err := selectSchoolUnits().Where(sq.Eq{"su.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build school unit lookup: %w", err)
	}
	var row models.SchoolUnitRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find school unit: %w", err)
	}
	return &row, nil
}

// Exists reports whether a school unit with the given id exists.
func (r *SchoolUnitRepository) Exists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM school_units WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check school unit: %w", err)
	}
	return exists, nil
}

// Create inserts a new school unit and fills the store-assigned fields.
func (r *SchoolUnitRepository) Create(ctx context.Context, unit *models.SchoolUnit) error {
	query, args, err := psql.Insert("school_units").
		Columns("name", "sec_code", "uo_code", "status", "municipality_id", "typology_id").
		Values(unit.Name, unit.SecCode, unit.UOCode, unit.Status, unit.MunicipalityID, unit.TypologyID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build school unit insert: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
		return fmt.Errorf("create school unit: %w", mapConstraintError(err))
	}
	return nil
}

// Update applies the non-nil changes. It returns sql.ErrNoRows when the id is unknown.
func (r *SchoolUnitRepository) Update(ctx context.Context, id int64, changes models.SchoolUnitChanges) error {
	builder := psql.Update("school_units").Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id})
	if changes.Name != nil {
		builder = builder.Set("name", *changes.Name)
	}
	if changes.SecCode != nil {
		builder = builder.Set("sec_code", *changes.SecCode)
	}
	if changes.UOCode != nil {
		builder = builder.Set("uo_code", *changes.UOCode)
	}
	if changes.Status != nil {
		builder = builder.Set("status", *changes.Status)
	}
	if changes.MunicipalityID != nil {
		builder = builder.Set("municipality_id", *changes.MunicipalityID)
	}
	if changes.TypologyID != nil {
		builder = builder.Set("typology_id", *changes.TypologyID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build school unit update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update school unit: %w", mapConstraintError(err))
	}
	return requireAffected(res)
}

// Delete physically removes a school unit. It returns sql.ErrNoRows when the id is unknown.
func (r *SchoolUnitRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM school_units WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete school unit: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// likeEscaper makes user input match literally inside a LIKE pattern. Backslash is
// the default LIKE escape character in PostgreSQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
