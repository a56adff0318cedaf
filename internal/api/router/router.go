// Package router sets up the API routes for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/heliograph/heliograph/consts"
	"github.com/heliograph/heliograph/internal/api/handler"
	"github.com/heliograph/heliograph/internal/api/middleware"
	"github.com/heliograph/heliograph/internal/config"
	"github.com/heliograph/heliograph/internal/database"
	"github.com/heliograph/heliograph/internal/report"
	"github.com/heliograph/heliograph/internal/snapshot"
	"github.com/heliograph/heliograph/internal/store"
)

// Setup configures all API routes
func Setup(r *gin.Engine, engine *report.Engine, provider snapshot.Provider, cfg *config.Config, s store.Store) {
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	r.Use(otelgin.Middleware(consts.ServiceName))

	// Health check endpoint (public)
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := database.HealthCheck(); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}
		c.JSON(status, gin.H{
			"status":   dbStatus,
			"service":  consts.ServiceName,
			"version":  consts.Version,
			"database": dbStatus,
		})
	})

	v1 := r.Group("/api/v1")

	reportHandler := handler.NewReportHandler(engine, s)
	reports := v1.Group("/reports")
	{
		reports.POST("", reportHandler.CreateReport)
		reports.GET("", reportHandler.ListReports)
		reports.GET("/:id", reportHandler.GetReport)
		reports.POST("/:id/upgrade", reportHandler.UpgradeReport)
		reports.GET("/:id/download", reportHandler.DownloadReport)
	}

	snapshotHandler := handler.NewSnapshotHandler(provider)
	v1.GET("/snapshot", snapshotHandler.GetSnapshot)
}
