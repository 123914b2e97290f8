package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/pkg/response"
)

type lookupService interface {
	ListNTEs(ctx context.Context) ([]models.LookupOption, error)
	ListMunicipalities(ctx context.Context, nteID string) ([]models.LookupOption, error)
	ListTypologies(ctx context.Context) ([]models.LookupOption, error)
}

// LookupHandler serves select options as bare JSON arrays.
type LookupHandler struct {
	service lookupService
}

// NewLookupHandler constructs a LookupHandler.
func NewLookupHandler(svc lookupService) *LookupHandler {
	return &LookupHandler{service: svc}
}

// NTEs godoc
// @Summary List NTEs
// @Tags Lookups
// @Produce json
// @Success 200 {array} models.LookupOption
// @Router /ntes [get]
func (h *LookupHandler) NTEs(c *gin.Context) {
	options, err := h.service.ListNTEs(c.Request.Context())
	h.respond(c, options, err)
}

// Municipalities godoc
// @Summary List municipalities of an NTE
// @Description Without nteId the list is empty
// @Tags Lookups
// @Produce json
// @Param nteId query int false "NTE ID"
// @Success 200 {array} models.LookupOption
// @Failure 400 {object} response.Envelope
// @Router /municipalities [get]
func (h *LookupHandler) Municipalities(c *gin.Context) {
	options, err := h.service.ListMunicipalities(c.Request.Context(), c.Query("nteId"))
	h.respond(c, options, err)
}

// Typologies godoc
// @Summary List typologies
// @Tags Lookups
// @Produce json
// @Success 200 {array} models.LookupOption
// @Router /typologies [get]
func (h *LookupHandler) Typologies(c *gin.Context) {
	options, err := h.service.ListTypologies(c.Request.Context())
	h.respond(c, options, err)
}

func (h *LookupHandler) respond(c *gin.Context, options []models.LookupOption, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if options == nil {
		options = []models.LookupOption{}
	}
	c.JSON(http.StatusOK, options)
}
