package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/pkg/response"
)

type exportService interface {
	ExportSchoolUnits(ctx context.Context, format string, q dto.SchoolUnitListQuery) (*service.ExportFile, error)
	ExportHistory(ctx context.Context, unitID int64, format string) (*service.ExportFile, error)
}

// ExportHandler streams generated spreadsheets and reports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// SchoolUnits godoc
// @Summary Export school units
// @Description Exports every unit matching the listing filters
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf"
// @Param order query string false "asc or desc"
// @Param status query string false "Status filter"
// @Param nteId query int false "NTE filter"
// @Param municipalityId query int false "Municipality filter"
// @Param typologyId query int false "Typology filter"
// @Param search query string false "Name or SEC code search"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /school_units/export [get]
func (h *ExportHandler) SchoolUnits(c *gin.Context) {
	file, err := h.service.ExportSchoolUnits(c.Request.Context(), c.Query("format"), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// History godoc
// @Summary Export homologation history
// @Tags Exports
// @Produce octet-stream
// @Param id path int true "School unit ID"
// @Param format query string false "csv, xlsx or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /school_units/{id}/homologations/export [get]
func (h *ExportHandler) History(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ExportHistory(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
