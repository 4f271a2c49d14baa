package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
)

// Recovery turns a panic into the opaque 500 envelope and logs it.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zerolog.Ctx(c.Request.Context()).Error().
			Str("panic", fmt.Sprint(recovered)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		response.Fail(c, http.StatusInternalServerError, "Internal server error", fmt.Errorf("panic: %v", recovered))
	})
}
