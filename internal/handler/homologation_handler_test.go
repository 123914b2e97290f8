package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/models"
	appErrors "github.com/noah-isme/school-units-api/pkg/errors"
)

type homologationServiceMock struct {
	events    []models.HomologationEvent
	event     *models.HomologationEvent
	status    *models.HomologationStatus
	err       error
	lastLimit int
	lastReq   dto.CreateHomologationRequest
	lastActor string
	calls     int
}

func (m *homologationServiceMock) ListHistory(ctx context.Context, unitID int64, limit int) ([]models.HomologationEvent, error) {
	m.calls++
	m.lastLimit = limit
	return m.events, m.err
}

func (m *homologationServiceMock) Append(ctx context.Context, unitID int64, req dto.CreateHomologationRequest, actor string) (*models.HomologationEvent, error) {
	m.calls++
	m.lastReq = req
	m.lastActor = actor
	return m.event, m.err
}

func (m *homologationServiceMock) State(ctx context.Context, unitID int64) (*models.HomologationStatus, error) {
	m.calls++
	return m.status, m.err
}

func TestHomologationHandlerListEmpty(t *testing.T) {
	mockSvc := &homologationServiceMock{events: []models.HomologationEvent{}}
	h := NewHomologationHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/school_units/1/homologations?limit=20", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	assert.Equal(t, 20, mockSvc.lastLimit)
}

func TestHomologationHandlerListBadLimit(t *testing.T) {
	mockSvc := &homologationServiceMock{}
	h := NewHomologationHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/school_units/1/homologations?limit=x", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.calls)
}

func TestHomologationHandlerCreatePassesActor(t *testing.T) {
	mockSvc := &homologationServiceMock{event: &models.HomologationEvent{ID: 1, Action: models.HomologationHomologated}}
	h := NewHomologationHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/school_units/1/homologations", `{"action":"HOMOLOGATED"}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Admin", mockSvc.lastActor)
	assert.Equal(t, models.HomologationHomologated, mockSvc.lastReq.Action)
	assert.Contains(t, w.Body.String(), `"action":"HOMOLOGATED"`)
}

func TestHomologationHandlerCreateErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{appErrors.Validation("reason is required when unhomologating"), http.StatusBadRequest},
		{appErrors.NotFound("school unit not found"), http.StatusNotFound},
		{appErrors.Clone(appErrors.ErrConflict, "already HOMOLOGATED"), http.StatusConflict},
	}
	for _, tc := range cases {
		h := NewHomologationHandler(&homologationServiceMock{err: tc.err})
		c, w := newTestContext(http.MethodPost, "/school_units/1/homologations", `{"action":"UNHOMOLOGATED"}`)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		h.Create(c)
		assert.Equal(t, tc.status, w.Code)
	}
}

func TestHomologationHandlerCreateRejectsUnknownField(t *testing.T) {
	mockSvc := &homologationServiceMock{}
	h := NewHomologationHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/school_units/1/homologations", `{"action":"HOMOLOGATED","by":"x"}`)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.calls)
}

func TestHomologationHandlerState(t *testing.T) {
	mockSvc := &homologationServiceMock{status: &models.HomologationStatus{
		SchoolUnitID: 1,
		State:        models.HomologationUnhomologated,
		NextAction:   models.HomologationHomologated,
	}}
	h := NewHomologationHandler(mockSvc)

	c, w := newTestContext(http.MethodGet, "/school_units/1/homologations/state", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.State(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next_action":"HOMOLOGATED"`)
}
