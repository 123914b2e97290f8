package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-units-api/internal/handler"
	"github.com/noah-isme/school-units-api/internal/middleware"
	"github.com/noah-isme/school-units-api/internal/models"
	"github.com/noah-isme/school-units-api/internal/service"
	"github.com/noah-isme/school-units-api/pkg/config"
	"github.com/noah-isme/school-units-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-units-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-units-api/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	SchoolUnits   *handler.SchoolUnitHandler
	Homologations *handler.HomologationHandler
	Lookups       *handler.LookupHandler
	Exports       *handler.ExportHandler
	Auth          *handler.AuthHandler
	Health        *handler.HealthHandler
}

// Dependencies carries everything New needs to build the engine.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Sessions middleware.TokenValidator
	Audit    middleware.AuditRecorder
	Handlers Handlers
}

// New builds the gin engine with the global middleware chain and all routes.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	h := deps.Handlers

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.Session(deps.Sessions, middleware.SessionConfig{
		CookieName:  cfg.Session.CookieName,
		LoginPath:   cfg.Session.LoginPath,
		PublicPaths: PublicPaths(cfg),
	}))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/session", h.Auth.Session)

	audit := func(action string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, logr, action, "school_unit")
	}

	units := api.Group("/school_units")
	units.GET("", h.SchoolUnits.List)
	units.POST("", audit(models.AuditActionSchoolUnitCreate), h.SchoolUnits.Create)
	units.GET("/export", h.Exports.SchoolUnits)
	units.GET("/:id", h.SchoolUnits.Get)
	units.PUT("/:id", audit(models.AuditActionSchoolUnitUpdate), h.SchoolUnits.Update)
	units.DELETE("/:id", audit(models.AuditActionSchoolUnitDelete), h.SchoolUnits.Delete)

	units.GET("/:id/homologations", h.Homologations.List)
	units.POST("/:id/homologations", audit(models.AuditActionHomologation), h.Homologations.Create)
	units.GET("/:id/homologations/state", h.Homologations.State)
	units.GET("/:id/homologations/export", h.Exports.History)

	api.GET("/ntes", h.Lookups.NTEs)
	api.GET("/municipalities", h.Lookups.Municipalities)
	api.GET("/typologies", h.Lookups.Typologies)

	return r
}

// PublicPaths lists the prefixes reachable without a session.
func PublicPaths(cfg *config.Config) []string {
	paths := []string{"/health", "/ready", "/metrics", cfg.APIPrefix + "/auth"}
	if cfg.Docs.Enabled {
		paths = append(paths, "/docs")
	}
	return paths
}
