package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/middleware"
	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/pkg/response"
)

type schoolUnitService interface {
	List(ctx context.Context, q dto.SchoolUnitListQuery) (*service.SchoolUnitPage, error)
	Get(ctx context.Context, id int64) (*models.SchoolUnitDetail, error)
	Create(ctx context.Context, req dto.CreateSchoolUnitRequest) (*models.SchoolUnitSummary, error)
	Update(ctx context.Context, id int64, req dto.UpdateSchoolUnitRequest) (*models.SchoolUnitSummary, error)
	Delete(ctx context.Context, id int64) error
}

// SchoolUnitHandler exposes the school unit collection.
type SchoolUnitHandler struct {
	service schoolUnitService
}

// NewSchoolUnitHandler constructs a SchoolUnitHandler.
func NewSchoolUnitHandler(svc schoolUnitService) *SchoolUnitHandler {
	return &SchoolUnitHandler{service: svc}
}

func listQuery(c *gin.Context) dto.SchoolUnitListQuery {
	return dto.SchoolUnitListQuery{
		PageSize:       c.Query("pageSize"),
		Cursor:         c.Query("cursor"),
		Order:          c.Query("order"),
		Status:         c.Query("status"),
		NTEID:          c.Query("nteId"),
		MunicipalityID: c.Query("municipalityId"),
		TypologyID:     c.Query("typologyId"),
		Search:         c.Query("search"),
	}
}

// List godoc
// @Summary List school units
// @Description Keyset-paginated listing ordered by id
// @Tags SchoolUnits
// @Produce json
// @Param pageSize query int false "Page size (default 50, max 100)"
// @Param cursor query string false "Id of the last row of the previous page"
// @Param order query string false "asc or desc"
// @Param status query string false "Status filter"
// @Param nteId query int false "NTE filter"
// @Param municipalityId query int false "Municipality filter"
// @Param typologyId query int false "Typology filter"
// @Param search query string false "Name or SEC code search"
// @Success 200 {object} response.CursorEnvelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /school_units [get]
func (h *SchoolUnitHandler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Cursor(c, page.Items, page.NextCursor, page.HasNext)
}

// Get godoc
// @Summary Get school unit
// @Tags SchoolUnits
// @Produce json
// @Param id path int true "School unit ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id} [get]
func (h *SchoolUnitHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Create school unit
// @Tags SchoolUnits
// @Accept json
// @Produce json
// @Param payload body dto.CreateSchoolUnitRequest true "School unit payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /school_units [post]
func (h *SchoolUnitHandler) Create(c *gin.Context) {
	var req dto.CreateSchoolUnitRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.AuditResourceIDKey, strconv.FormatInt(summary.ID, 10))
	response.Created(c, summary)
}

// Update godoc
// @Summary Update school unit
// @Description Partial update; omitted fields are left unchanged
// @Tags SchoolUnits
// @Accept json
// @Produce json
// @Param id path int true "School unit ID"
// @Param payload body dto.UpdateSchoolUnitRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id} [put]
func (h *SchoolUnitHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateSchoolUnitRequest
	if err := bindStrictJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Delete godoc
// @Summary Delete school unit
// @Tags SchoolUnits
// @Produce json
// @Param id path int true "School unit ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id} [delete]
func (h *SchoolUnitHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{OK: true})
}
