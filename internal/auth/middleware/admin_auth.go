package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
	"github.com/koji-portfolio/portfolio-backend/internal/auth"
	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

// Authorizer is satisfied by *auth.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, header string) (*domain.Principal, error)
}

// RequireAdmin rejects requests the gate does not accept and stores the
// verified principal, when there is one, under auth.CtxPrincipal.
func RequireAdmin(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		principal, err := gate.Authorize(ctx, c.GetHeader("Authorization"))
		if err != nil {
			status := auth.StatusFor(err)
			zerolog.Ctx(ctx).Warn().
				Err(err).
				Int("status", status).
				Str("path", c.Request.URL.Path).
				Msg("admin request rejected")
			response.Fail(c, status, auth.MessageFor(status), err)
			return
		}

		if principal != nil {
			c.Set(auth.CtxPrincipal, principal)
			logger := zerolog.Ctx(ctx).With().
				Str("admin_uid", principal.UID).
				Str("auth_provider", principal.Provider).
				Logger()
			c.Request = c.Request.WithContext(logger.WithContext(ctx))
		}

		c.Next()
	}
}
