package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ubc/tlef-engeai-sub001/internal/http/handlers"
	httpMW "github.com/ubc/tlef-engeai-sub001/internal/http/middleware"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	CourseHandler   *httpH.CourseHandler
	FlagHandler     *httpH.FlagHandler
	LedgerHandler   *httpH.LedgerHandler
	DocumentHandler *httpH.DocumentHandler
	AdminHandler    *httpH.AdminHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("engeai"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.CourseHandler != nil {
		api.POST("/courses", cfg.CourseHandler.CreateCourse)
		api.GET("/courses", cfg.CourseHandler.ListCourses)
		api.GET("/courses/:course", cfg.CourseHandler.GetCourse)
	}

	if cfg.FlagHandler != nil {
		api.POST("/courses/:course/flags", cfg.FlagHandler.SubmitFlag)
		api.GET("/courses/:course/flags", cfg.FlagHandler.ListFlags)
		api.GET("/courses/:course/flags/statistics", cfg.FlagHandler.FlagStatistics)
		api.GET("/flags/:id", cfg.FlagHandler.GetFlag)
		api.PATCH("/flags/:id/status", cfg.FlagHandler.UpdateFlagStatus)
	}

	if cfg.LedgerHandler != nil {
		api.GET("/courses/:course/ledger/:userId", cfg.LedgerHandler.GetTopics)
		api.POST("/courses/:course/ledger/:userId/analyze", cfg.LedgerHandler.AnalyzeConversation)
		api.POST("/courses/:course/ledger/:userId/topics", cfg.LedgerHandler.MergeTopics)
		api.DELETE("/courses/:course/ledger/:userId/topics/:topic", cfg.LedgerHandler.RemoveTopic)
	}

	if cfg.DocumentHandler != nil {
		api.POST("/courses/:course/documents", cfg.DocumentHandler.UploadDocument)
		api.GET("/courses/:course/documents", cfg.DocumentHandler.ListDocuments)
		api.DELETE("/courses/:course/documents", cfg.DocumentHandler.WipeCourseDocuments)
		api.GET("/documents/:id", cfg.DocumentHandler.GetDocument)
		api.DELETE("/documents/:id", cfg.DocumentHandler.DeleteDocument)
		api.POST("/admin/nuclear-reset", cfg.DocumentHandler.NuclearReset)
	}

	if cfg.AdminHandler != nil {
		api.POST("/admin/flag-indexes", cfg.AdminHandler.EnsureFlagIndexes)
	}

	return r
}
