package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/models"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

type homologationRepository interface {
	ListByUnit(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error)
	Latest(ctx context.Context, unitID int64) (*models.HomologationEvent, error)
	Create(ctx context.Context, event *models.HomologationEvent) error
}

type schoolUnitChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// HomologationConfig tunes the approval workflow.
type HomologationConfig struct {
	// StrictSequence rejects an action equal to the unit's current state.
	StrictSequence bool
}

// HomologationService maintains the append-only approval history of school units.
type HomologationService struct {
	repo      homologationRepository
	units     schoolUnitChecker
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       HomologationConfig
}

// NewHomologationService constructs a HomologationService.
func NewHomologationService(repo homologationRepository, units schoolUnitChecker, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg HomologationConfig) *HomologationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomologationService{repo: repo, units: units, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// ListHistory returns a unit's events newest first. A non-positive limit returns all.
func (s *HomologationService) ListHistory(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error) {
	if err := s.ensureUnit(ctx, unitID); err != nil {
		return nil, err
	}
	events, err := s.repo.ListByUnit(ctx, unitID, limit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list homologations")
	}
	return events, nil
}

// Append records a new homologation event. actor is recorded as performed_by
// when the request does not name one.
func (s *HomologationService) Append(ctx context.Context, unitID int64, req dto.CreateHomologationRequest, actor string) (*models.HomologationEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "action is required")
	}

	action := models.HomologationAction(strings.TrimSpace(string(req.Action)))
	if !action.Valid() {
		return nil, appErrors.Validation(fmt.Sprintf("action must be %s or %s", models.HomologationHomologated, models.HomologationUnhomologated))
	}
	reason := trimmedOrNil(req.Reason)
	if action == models.HomologationUnhomologated && reason == nil {
		return nil, appErrors.Validation("reason is required when unhomologating")
	}

	if err := s.ensureUnit(ctx, unitID); err != nil {
		return nil, err
	}

	if s.cfg.StrictSequence {
		state, err := s.currentState(ctx, unitID)
		if err != nil {
			return nil, err
		}
		if state == action {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("school unit is already %s; expected %s", state, models.NextHomologationAction(state)))
		}
	}

	performedBy := trimmedOrNil(req.PerformedBy)
	if performedBy == nil && strings.TrimSpace(actor) != "" {
		who := strings.TrimSpace(actor)
		performedBy = &who
	}

	event := &models.HomologationEvent{
		SchoolUnitID: unitID,
		Action:       action,
		Reason:       reason,
		PerformedBy:  performedBy,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to record homologation")
	}

	s.metrics.RecordHomologation(action)
	s.logger.Info("homologation recorded",
		zap.Int64("school_unit_id", unitID),
		zap.Int64("event_id", event.ID),
		zap.String("action", string(action)),
	)
	return event, nil
}

// State reports the current approval state of a unit and the action expected next.
func (s *HomologationService) State(ctx context.Context, unitID int64) (*models.HomologationStatus, error) {
	if err := s.ensureUnit(ctx, unitID); err != nil {
		return nil, err
	}
	status := &models.HomologationStatus{SchoolUnitID: unitID, State: models.HomologationUnhomologated}
	latest, err := s.repo.Latest(ctx, unitID)
	switch {
	case err == nil:
		status.State = latest.Action
		status.LastEvent = latest
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Internal(err, "failed to load homologation state")
	}
	status.NextAction = models.NextHomologationAction(status.State)
	return status, nil
}

func (s *HomologationService) currentState(ctx context.Context, unitID int64) (models.HomologationAction, error) {
	latest, err := s.repo.Latest(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HomologationUnhomologated, nil
		}
		return "", appErrors.Internal(err, "failed to load homologation state")
	}
	return latest.Action, nil
}

func (s *HomologationService) ensureUnit(ctx context.Context, unitID int64) error {
	exists, err := s.units.Exists(ctx, unitID)
	if err != nil {
		return appErrors.Internal(err, "failed to load school unit")
	}
	if !exists {
		return appErrors.NotFound("school unit not found")
	}
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
