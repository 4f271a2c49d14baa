package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/koji-portfolio/portfolio-backend/internal/auth/domain"
)

const (
	CtxPrincipal = "auth_principal"
)

// PrincipalFrom returns the principal stored by the admin middleware, or
// nil in shared-secret mode.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Principal)
	return p
}
