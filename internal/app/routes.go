package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snipvault/core/internal/middleware"
	"github.com/snipvault/core/internal/modules/classifier"
	"github.com/snipvault/core/internal/modules/enrichment"
	"github.com/snipvault/core/internal/modules/snippet"
	"github.com/snipvault/core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.Auth()
	optionalAuthMW := middleware.OptionalAuth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "snipvault-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/snipvault/core",
	}

	api := r.Group(apiPrefix)

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := a.uptime()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": up.Milliseconds(),
			"humanize":  humanizeDuration(up),
		})
	})

	classifier.NewHandler().RegisterRoutes(api)

	snippetSvc := snippet.NewService(a.db)
	snippet.NewHandler(snippetSvc, a.enricher, a.logger.Named("snippet")).
		RegisterRoutes(api, authMW, optionalAuthMW)

	enrichment.NewHandler(a.enricher).RegisterRoutes(api, authMW)
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
