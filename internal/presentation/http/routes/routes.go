// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/application/container"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/handlers"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	settings := container.Settings

	r := gin.New()
	r.Use(
		middleware.Recovery(container.Logger),
		middleware.RequestID(),
		middleware.ClientIP(settings.TrustProxyHeaders),
		middleware.RequestLogger(container.Logger),
	)

	// Initialize handlers
	csrfHandlers := handlers.NewCSRFHandlers(container.SubmissionService, container.Logger, container.PerfTracker)
	submissionHandlers := handlers.NewSubmissionHandlers(container.SubmissionService, settings.SiteURL, container.Logger, container.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(container.HealthService, container.Logger)

	api := r.Group("/api")
	api.Use(middleware.APIHeaders())
	{
		api.GET("/csrf", middleware.NoStore(), csrfHandlers.GetToken)
		api.GET("/health", middleware.NoStore(), healthHandlers.GetHealth)
		api.GET("/forms/:form/schema", handlers.GetFormSchema)

		// Lead forms
		submit := api.Group("")
		submit.Use(middleware.CORSMiddleware(settings.SiteURL), middleware.BodyLimit(settings.MaxBodyBytes))
		{
			submit.POST("/submit-brief", submissionHandlers.PostBrief)
			submit.OPTIONS("/submit-brief", submissionHandlers.Preflight)
			submit.POST("/submit-consultation", submissionHandlers.PostConsultation)
			submit.OPTIONS("/submit-consultation", submissionHandlers.Preflight)
		}
	}

	if settings.WebRoot != "" {
		r.NoRoute(staticSite(settings.WebRoot))
	} else {
		r.NoRoute(notFound)
	}

	return r
}

// staticSite serves the built site from webRoot with the page security
// headers. Unknown API paths still get a JSON 404.
func staticSite(webRoot string) gin.HandlerFunc {
	files := http.FileServer(http.Dir(webRoot))

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
			return
		}
		middleware.SetPageHeaders(c)
		files.ServeHTTP(c.Writer, c.Request)
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}
