package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery renders the 500 page, or {"message"} for API paths.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("error", err).
					Msg("Panic recovered")

				if IsAPIPath(c.Request.URL.Path) {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"message": "Internal server error",
					})
					return
				}
				c.HTML(http.StatusInternalServerError, "500.html", nil)
				c.Abort()
			}
		}()

		c.Next()
	}
}

// IsAPIPath reports whether path belongs to the JSON API.
func IsAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
