// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/identity"
)

const (
	preflightMethods = "POST, OPTIONS"
	preflightHeaders = "Content-Type, Authorization"
	preflightMaxAge  = 24 * time.Hour
)

// CORSMiddleware annotates actual requests from the site origin with CORS
// headers. Requests from any other origin pass through untouched so the
// submission pipeline can reject them with its own error body. Preflights
// always fall through to the route's OPTIONS handler, which answers them
// with WritePreflight.
func CORSMiddleware(siteURL string) gin.HandlerFunc {
	siteOrigin := identity.NormalizeOrigin(siteURL)
	if siteOrigin == "" {
		return func(c *gin.Context) { c.Next() }
	}

	handler := cors.New(cors.Config{
		AllowOrigins: []string{siteOrigin},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	})

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions ||
			identity.NormalizeOrigin(c.GetHeader("Origin")) != siteOrigin {
			c.Next()
			return
		}
		handler(c)
	}
}

// WritePreflight answers an OPTIONS request on a submission endpoint.
func WritePreflight(c *gin.Context, siteURL string) {
	origin := identity.NormalizeOrigin(siteURL)
	if origin == "" {
		origin = siteURL
	}
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Methods", preflightMethods)
	c.Header("Access-Control-Allow-Headers", preflightHeaders)
	c.Header("Access-Control-Max-Age", strconv.Itoa(int(preflightMaxAge.Seconds())))
	c.Status(http.StatusOK)
}
