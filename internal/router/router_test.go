package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-units-api/internal/dto"
	"github.com/noah-isme/school-units-api/internal/handler"
	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/pkg/config"
)

const validToken = "good-token"

type tokenStub struct{}

func (tokenStub) ValidateToken(token string) (*models.SessionClaims, error) {
	if token != validToken {
		return nil, errors.New("invalid token")
	}
	return &models.SessionClaims{UserID: "u-1", Name: "Admin"}, nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type lookupStub struct{}

func (lookupStub) ListNTEs(ctx context.Context) ([]models.LookupOption, error) {
	return []models.LookupOption{{ID: "1", Name: "NTE 01"}}, nil
}

func (lookupStub) ListMunicipalities(ctx context.Context, nteID string) ([]models.LookupOption, error) {
	return []models.LookupOption{}, nil
}

func (lookupStub) ListTypologies(ctx context.Context) ([]models.LookupOption, error) {
	return []models.LookupOption{}, nil
}

type unitStub struct {
	deleted []int64
}

func (u *unitStub) List(ctx context.Context, q dto.SchoolUnitListQuery) (*service.SchoolUnitPage, error) {
	return &service.SchoolUnitPage{Items: []models.SchoolUnitSummary{}}, nil
}

func (u *unitStub) Get(ctx context.Context, id int64) (*models.SchoolUnitDetail, error) {
	return &models.SchoolUnitDetail{}, nil
}

func (u *unitStub) Create(ctx context.Context, req dto.CreateSchoolUnitRequest) (*models.SchoolUnitSummary, error) {
	return &models.SchoolUnitSummary{}, nil
}

func (u *unitStub) Update(ctx context.Context, id int64, req dto.UpdateSchoolUnitRequest) (*models.SchoolUnitSummary, error) {
	return &models.SchoolUnitSummary{}, nil
}

func (u *unitStub) Delete(ctx context.Context, id int64) error {
	u.deleted = append(u.deleted, id)
	return nil
}

type exportStub struct{}

func (exportStub) ExportSchoolUnits(ctx context.Context, format string, q dto.SchoolUnitListQuery) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "school_units.csv", ContentType: "text/csv", Payload: []byte("ID\n")}, nil
}

func (exportStub) ExportHistory(ctx context.Context, unitID int64, format string) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "history.csv", ContentType: "text/csv", Payload: []byte("ID\n")}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *auditStub, *unitStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		APIPrefix: "/api",
		Session:   config.SessionConfig{CookieName: "session_token", LoginPath: "/login"},
	}
	audit := &auditStub{}
	units := &unitStub{}

	r := New(Dependencies{
		Config:   cfg,
		Metrics:  service.NewMetricsService(),
		Sessions: tokenStub{},
		Audit:    audit,
		Handlers: Handlers{
			SchoolUnits:   handler.NewSchoolUnitHandler(units),
			Homologations: handler.NewHomologationHandler(nil),
			Lookups:       handler.NewLookupHandler(lookupStub{}),
			Exports:       handler.NewExportHandler(exportStub{}),
			Auth:          handler.NewAuthHandler(nil, handler.CookieConfig{Name: "session_token"}),
			Health:        handler.NewHealthHandler(nil, nil),
		},
	})
	return r, audit, units
}

func authed(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "session_token", Value: validToken})
	return req
}

func TestRouterRedirectsAnonymousRequestsKeepingQuery(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ntes?from=menu&x=1", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?from=menu&x=1", w.Header().Get("Location"))
}

func TestRouterPublicPaths(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterServesLookupsWithSession(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/api/ntes", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"1","name":"NTE 01"}]`, w.Body.String())
}

func TestRouterExportRouteTakesPrecedenceOverID(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodGet, "/api/school_units/export?format=csv", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "school_units.csv")
}

func TestRouterAuditsDeletes(t *testing.T) {
	r, audit, units := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authed(httptest.NewRequest(http.MethodDelete, "/api/school_units/7", nil)))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{7}, units.deleted)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSchoolUnitDelete, audit.logs[0].Action)
	require.NotNil(t, audit.logs[0].ResourceID)
	assert.Equal(t, "7", *audit.logs[0].ResourceID)
	require.NotNil(t, audit.logs[0].UserID)
	assert.Equal(t, "u-1", *audit.logs[0].UserID)
	assert.Contains(t, string(audit.logs[0].NewValues), `"request":"`)
}
