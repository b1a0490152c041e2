package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"kaizen-server/internal/config"
)

const apiKeyHeader = "x-api-key"

// RequireAPIKey guards machine-to-machine routes. An unset API_KEY is a
// deployment fault and reported as such instead of a client error.
func RequireAPIKey(cfg *config.Config, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APIKey == "" {
			log.Error().
				Str("path", c.Request.URL.Path).
				Msg("API_KEY is not configured; rejecting machine request")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server API key is not configured",
			})
			return
		}
		if !apiKeyMatches(c, cfg.APIKey) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

// RequireAuth admits either a valid API key or a platform-authenticated
// user. Browser traffic carries the identity header; scripts present the
// key instead.
func RequireAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APIKey != "" && apiKeyMatches(c, cfg.APIKey) {
			c.Next()
			return
		}
		if principal := PrincipalFromContext(c); !principal.Anonymous() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

func apiKeyMatches(c *gin.Context, want string) bool {
	got := c.GetHeader(apiKeyHeader)
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
