package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"what-to-watch/internal/infrastructure/database"
	"what-to-watch/internal/shared/middleware"
	"what-to-watch/internal/shared/response"
	"what-to-watch/internal/web"
	"what-to-watch/pkg/container"
)

// Pinger is satisfied by *database.PostgresDB.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

func SetupRouter(c *container.Container) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	// Global middlewares
	router.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
	)

	router.StaticFS("/static", http.FS(web.Static()))

	// Ops
	router.GET("/health", healthCheckHandler(pingerFor(c.DB), c.Config.App.Version))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupWebRoutes(router, c)
	setupAPIRoutes(router, c)

	router.NoRoute(func(ctx *gin.Context) {
		if middleware.IsAPIPath(ctx.Request.URL.Path) {
			response.NotFound(ctx, "Not found")
			return
		}
		c.WebHandler.NotFound(ctx)
	})

	return router, nil
}

// ========================================
// WEB ROUTES
// ========================================
func setupWebRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/", c.WebHandler.Home)
	router.GET("/add", c.WebHandler.AddForm)
	router.POST("/add", c.WebHandler.AddSubmit)
	router.GET("/opinions/:id", c.WebHandler.Detail)
}

// ========================================
// API ROUTES
// ========================================
func setupAPIRoutes(router *gin.Engine, c *container.Container) {
	api := router.Group("/api")
	{
		api.GET("/opinions", c.APIHandler.ListOpinions)
		api.POST("/opinions", c.APIHandler.CreateOpinion)
		api.POST("/opinions/import", c.APIHandler.ImportOpinions)
		api.GET("/opinions/:id", c.APIHandler.GetOpinion)
		api.PATCH("/opinions/:id", c.APIHandler.UpdateOpinion)
		api.DELETE("/opinions/:id", c.APIHandler.DeleteOpinion)
		api.GET("/get-random-opinion", c.APIHandler.GetRandomOpinion)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
// pingerFor keeps a nil *PostgresDB from becoming a non-nil Pinger.
func pingerFor(db *database.PostgresDB) Pinger {
	if db == nil {
		return nil
	}
	return db
}

func healthCheckHandler(db Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "disconnected"})
			return
		}
		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"database": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
