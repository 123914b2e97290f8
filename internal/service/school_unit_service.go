package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/internal/repository"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

// Listing page size bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type schoolUnitRepository interface {
	List(ctx context.Context, filter models.SchoolUnitFilter, limit int) ([]models.SchoolUnitRow, error)
	FindByID(ctx context.Context, id int64) (*models.SchoolUnitRow, error)
	Create(ctx context.Context, unit *models.SchoolUnit) error
	Update(ctx context.Context, id int64, changes models.SchoolUnitChanges) error
	Delete(ctx context.Context, id int64) error
}

type typologyFinder interface {
	FindTypologyByName(ctx context.Context, name string) (*models.Typology, error)
}

type latestHomologationReader interface {
	Latest(ctx context.Context, unitID int64) (*models.HomologationEvent, error)
}

// SchoolUnitPage is one page of a keyset listing.
type SchoolUnitPage struct {
	Items      []models.SchoolUnitSummary
	NextCursor *string
	HasNext    bool
}

// SchoolUnitService implements listing and mutation of school units.
type SchoolUnitService struct {
	repo          schoolUnitRepository
	typologies    typologyFinder
	homologations latestHomologationReader
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewSchoolUnitService constructs a SchoolUnitService.
func NewSchoolUnitService(repo schoolUnitRepository, typologies typologyFinder, homologations latestHomologationReader, validate *validator.Validate, logger *zap.Logger) *SchoolUnitService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolUnitService{repo: repo, typologies: typologies, homologations: homologations, validator: validate, logger: logger}
}

// ParseListQuery resolves raw listing parameters into a filter.
func ParseListQuery(q dto.SchoolUnitListQuery) (models.SchoolUnitFilter, error) {
	filter := models.SchoolUnitFilter{
		PageSize: clampPageSize(q.PageSize),
		Order:    models.SortAsc,
		Status:   strings.TrimSpace(q.Status),
		Search:   strings.TrimSpace(q.Search),
	}
	if strings.EqualFold(strings.TrimSpace(q.Order), string(models.SortDesc)) {
		filter.Order = models.SortDesc
	}

	var err error
	if filter.Cursor, err = optionalID(q.Cursor, "cursor"); err != nil {
		return filter, err
	}
	if filter.NTEID, err = optionalID(q.NTEID, "nteId"); err != nil {
		return filter, err
	}
	if filter.MunicipalityID, err = optionalID(q.MunicipalityID, "municipalityId"); err != nil {
		return filter, err
	}
	if filter.TypologyID, err = optionalID(q.TypologyID, "typologyId"); err != nil {
		return filter, err
	}
	return filter, nil
}

func clampPageSize(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPageSize
	}
	return normalizePageSize(size)
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ParseID parses a positive numeric identifier.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func optionalID(raw, field string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, ok := ParseID(raw)
	if !ok {
		return nil, appErrors.Validation(field + " must be a positive integer")
	}
	return &id, nil
}

// List returns one page of school units.
func (s *SchoolUnitService) List(ctx context.Context, q dto.SchoolUnitListQuery) (*SchoolUnitPage, error) {
	filter, err := ParseListQuery(q)
	if err != nil {
		return nil, err
	}
	return s.Page(ctx, filter)
}

// Page fetches the page described by an already resolved filter.
func (s *SchoolUnitService) Page(ctx context.Context, filter models.SchoolUnitFilter) (*SchoolUnitPage, error) {
	filter.PageSize = normalizePageSize(filter.PageSize)

	rows, err := s.repo.List(ctx, filter, filter.PageSize+1)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list school units")
	}

	page := &SchoolUnitPage{}
	if len(rows) > filter.PageSize {
		rows = rows[:filter.PageSize]
		page.HasNext = true
		next := strconv.FormatInt(rows[len(rows)-1].ID, 10)
		page.NextCursor = &next
	}

	page.Items = make([]models.SchoolUnitSummary, 0, len(rows))
	for _, row := range rows {
		page.Items = append(page.Items, row.Summary())
	}
	return page, nil
}

// Get returns a unit with its relation ids and approval state.
func (s *SchoolUnitService) Get(ctx context.Context, id int64) (*models.SchoolUnitDetail, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	state := models.HomologationUnhomologated
	latest, err := s.homologations.Latest(ctx, id)
	switch {
	case err == nil:
		state = latest.Action
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to load homologation state")
	}

	detail := row.Detail(state)
	return &detail, nil
}

// Create validates and inserts a new school unit.
func (s *SchoolUnitService) Create(ctx context.Context, req dto.CreateSchoolUnitRequest) (*models.SchoolUnitSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "schoolUnit and municipality are required")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Validation("schoolUnit is required")
	}
	municipalityID, ok := ParseID(req.Municipality.String())
	if !ok {
		return nil, appErrors.Validation("municipality must be a numeric id")
	}
	status, err := resolveStatus(req.Status)
	if err != nil {
		return nil, err
	}
	typologyID, err := s.resolveTypology(ctx, req.Typology.String())
	if err != nil {
		return nil, err
	}

	unit := &models.SchoolUnit{
		Name:           name,
		SecCode:        strings.TrimSpace(req.SecCode),
		Status:         status,
		MunicipalityID: municipalityID,
	}
	if typologyID != nil {
		unit.TypologyID = sql.NullInt64{Int64: *typologyID, Valid: true}
	}
	if req.UOCode != nil {
		if uo := strings.TrimSpace(*req.UOCode); uo != "" {
			unit.UOCode = sql.NullString{String: uo, Valid: true}
		}
	}

	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, s.translateWriteError(err, "failed to create school unit")
	}
	s.logger.Info("school unit created", zap.Int64("id", unit.ID), zap.Int64("municipality_id", municipalityID))

	row, err := s.find(ctx, unit.ID)
	if err != nil {
		return nil, err
	}
	summary := row.Summary()
	return &summary, nil
}

// Update applies a partial update. An empty request returns the current record.
func (s *SchoolUnitService) Update(ctx context.Context, id int64, req dto.UpdateSchoolUnitRequest) (*models.SchoolUnitSummary, error) {
	changes, err := s.buildChanges(ctx, req)
	if err != nil {
		return nil, err
	}

	if !changes.Empty() {
		if err := s.repo.Update(ctx, id, changes); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.NotFound("school unit not found")
			}
			return nil, s.translateWriteError(err, "failed to update school unit")
		}
		s.logger.Info("school unit updated", zap.Int64("id", id))
	}

	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := row.Summary()
	return &summary, nil
}

// Delete physically removes a school unit.
func (s *SchoolUnitService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFound("school unit not found")
		}
		return appErrors.Internal(err, "failed to delete school unit")
	}
	s.logger.Info("school unit deleted", zap.Int64("id", id))
	return nil
}

func (s *SchoolUnitService) buildChanges(ctx context.Context, req dto.UpdateSchoolUnitRequest) (models.SchoolUnitChanges, error) {
	var changes models.SchoolUnitChanges

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return changes, appErrors.Validation("schoolUnit must not be blank")
		}
		changes.Name = &name
	}
	if req.SecCode != nil {
		secCode := strings.TrimSpace(*req.SecCode)
		changes.SecCode = &secCode
	}
	if req.UOCode != nil {
		uoCode := strings.TrimSpace(*req.UOCode)
		changes.UOCode = &uoCode
	}
	if req.Status != nil {
		// Only create defaults a blank status; an update must name the new one.
		if strings.TrimSpace(*req.Status) == "" {
			return changes, appErrors.Validation("status must be \"1\" or \"0\"")
		}
		status, err := resolveStatus(req.Status)
		if err != nil {
			return changes, err
		}
		changes.Status = &status
	}
	if req.Municipality != nil {
		municipalityID, ok := ParseID(req.Municipality.String())
		if !ok {
			return changes, appErrors.Validation("municipality must be a numeric id")
		}
		changes.MunicipalityID = &municipalityID
	}
	if req.Typology != nil {
		typologyID, err := s.resolveTypology(ctx, req.Typology.String())
		if err != nil {
			return changes, err
		}
		changes.TypologyID = typologyID
	}
	return changes, nil
}

// resolveTypology maps a typology reference to an id. Numeric values are ids;
// anything else is matched by exact name. An unknown name resolves to nil.
func (s *SchoolUnitService) resolveTypology(ctx context.Context, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if id <= 0 {
			return nil, appErrors.Validation("typology must be a positive id or a name")
		}
		return &id, nil
	}

	typology, err := s.typologies.FindTypologyByName(ctx, raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("typology name not found; leaving unit without typology", zap.String("typology", raw))
			return nil, nil
		}
		return nil, appErrors.Internal(err, "failed to resolve typology")
	}
	return &typology.ID, nil
}

func resolveStatus(raw *string) (string, error) {
	if raw == nil {
		return models.SchoolUnitStatusActive, nil
	}
	status := strings.TrimSpace(*raw)
	switch status {
	case "":
		return models.SchoolUnitStatusActive, nil
	case models.SchoolUnitStatusActive, models.SchoolUnitStatusInactive:
		return status, nil
	default:
		return "", appErrors.Validation("status must be \"1\" or \"0\"")
	}
}

func (s *SchoolUnitService) find(ctx context.Context, id int64) (*models.SchoolUnitRow, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("school unit not found")
		}
		return nil, appErrors.Internal(err, "failed to load school unit")
	}
	return row, nil
}

func (s *SchoolUnitService) translateWriteError(err error, message string) error {
	var fkErr *repository.ForeignKeyError
	if errors.As(err, &fkErr) {
		if strings.Contains(fkErr.Constraint, "typology") {
			return appErrors.Validation("typology does not exist")
		}
		return appErrors.Validation("municipality does not exist")
	}
	return appErrors.Internal(err, message)
}
