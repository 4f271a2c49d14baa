package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only project route.
func (h *Handler) RegisterPublic(rg gin.IRouter) {
	rg.GET("/projects", h.list)
}

// RegisterAdmin attaches the mutating routes. The caller is responsible for
// putting the authorization gate in front of rg.
func (h *Handler) RegisterAdmin(rg gin.IRouter) {
	rg.PUT("/projects", h.replace)
	rg.POST("/project", h.create)
	rg.PUT("/project/:id", h.update)
	rg.DELETE("/project/:id", h.delete)
}
