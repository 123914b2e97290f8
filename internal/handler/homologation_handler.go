package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/middleware"
	"github.com/noah-isme/school-units-api/internal/models"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
	"github.com/noah-isme/school-units-api/pkg/response"
)

type homologationService interface {
	ListHistory(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error)
	Append(ctx context.Context, unitID int64, req dto.CreateHomologationRequest, actor string) (*models.HomologationEvent, error)
	State(ctx context.Context, unitID int64) (*models.HomologationStatus, error)
}

// HomologationHandler exposes a unit's approval history.
type HomologationHandler struct {
	service homologationService
}

// NewHomologationHandler constructs a HomologationHandler.
func NewHomologationHandler(svc homologationService) *HomologationHandler {
	return &HomologationHandler{service: svc}
}

// List godoc
// @Summary List homologation history
// @Description Events newest first
// @Tags Homologations
// @Produce json
// @Param id path int true "School unit ID"
// @Param limit query int false "Return only the newest N events"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id}/homologations [get]
func (h *HomologationHandler) List(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			response.Error(c, appErrors.Validation("limit must be a non-negative integer"))
			return
		}
	}
	events, err := h.service.ListHistory(c.Request.Context(), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Create godoc
// @Summary Append homologation event
// @Description UNHOMOLOGATED requires a reason
// @Tags Homologations
// @Accept json
// @Produce json
// @Param id path int true "School unit ID"
// @Param payload body dto.CreateHomologationRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /school_units/{id}/homologations [post]
func (h *HomologationHandler) Create(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateHomologationRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Append(c.Request.Context(), id, req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.AuditResourceIDKey, strconv.FormatInt(id, 10))
	response.Created(c, event)
}

// State godoc
// @Summary Current homologation state
// @Tags Homologations
// @Produce json
// @Param id path int true "School unit ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id}/homologations/state [get]
func (h *HomologationHandler) State(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.service.State(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}
