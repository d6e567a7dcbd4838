package handlers

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures the CORS middleware
type CORSConfig struct {
	// AllowedOrigins lists the accepted origins; "*" accepts any
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	MaxAge           int
	AllowCredentials bool
}

// DefaultCORSConfig allows the given origins with preflight responses cached
// for a day
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		MaxAge:           86400,
		AllowCredentials: true,
	}
}

// CORS adds Cross-Origin Resource Sharing headers and answers preflight
// requests with 204
func CORS(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()

		switch {
		case origin != "" && slices.Contains(cfg.AllowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		}

		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}

		if len(cfg.AllowedMethods) > 0 {
			h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
		}
		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
			h.Set("Access-Control-Allow-Headers", requested)
		} else if len(cfg.AllowedHeaders) > 0 {
			h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
		}
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}
