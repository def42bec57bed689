package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/mhizterkeyz/resultify-api/internal/handler"
	"github.com/mhizterkeyz/resultify-api/internal/middleware"
	"github.com/mhizterkeyz/resultify-api/internal/models"
	"github.com/mhizterkeyz/resultify-api/internal/repository"
	"github.com/mhizterkeyz/resultify-api/internal/service"
	"github.com/mhizterkeyz/resultify-api/pkg/config"
	"github.com/mhizterkeyz/resultify-api/pkg/logger"
	corsmiddleware "github.com/mhizterkeyz/resultify-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mhizterkeyz/resultify-api/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens       *service.TokenService
	groups       *repository.GroupRepository
	metrics      *service.MetricsService
	reports      *service.ReportService
	lifecycle    *service.ResultLifecycleService
	exports      *service.ExportService
	groupOptions *service.GroupOptionsService
	probes       []handler.HealthProbe
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics, "/metrics"))

	metricsHandler := handler.NewMetricsHandler(deps.metrics, deps.probes...)
	resultHandler := handler.NewResultHandler(deps.reports, deps.lifecycle, deps.exports)
	optionsHandler := handler.NewGroupOptionsHandler(deps.groupOptions)
	groupHandler := handler.NewGroupHandler(deps.groups)

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(deps.tokens), middleware.WithResponseMeta())
	api.GET("/grade-systems", optionsHandler.GradeSystems)

	officer := api.Group("/officer", middleware.RequireRoles(models.RoleGroupAdministrator))
	officer.GET("/groups", groupHandler.Assigned)
	officerGroup := officer.Group("/groups/:groupId", middleware.GroupAccess(deps.groups, "groupId"))
	officerGroup.GET("/results", resultHandler.OfficerReport)
	officerGroup.GET("/results/broadsheet", resultHandler.OfficerBroadsheet)
	officerGroup.POST("/results/submit", middleware.Audit(logr, "results.submit"), resultHandler.Submit)
	officerGroup.POST("/results/reject", middleware.Audit(logr, "results.officer_reject"), resultHandler.OfficerReject)
	officerGroup.GET("/options/:set", optionsHandler.Get)
	officerGroup.PUT("/options/:set", middleware.Audit(logr, "options.update"), optionsHandler.Update)

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdministrator))
	admin.GET("/metrics", metricsHandler.Snapshot)
	adminGroup := admin.Group("/groups/:groupId", middleware.GroupAccess(deps.groups, "groupId"))
	adminGroup.GET("/results", resultHandler.AdminReport)
	adminGroup.GET("/results/broadsheet", resultHandler.AdminBroadsheet)
	adminGroup.POST("/results/approve", middleware.Audit(logr, "results.approve"), resultHandler.Approve)
	adminGroup.POST("/results/reject", middleware.Audit(logr, "results.admin_reject"), resultHandler.AdminReject)

	return r
}
