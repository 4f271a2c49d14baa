package http

import "github.com/gin-gonic/gin"

// Register attaches the public auth routes. None of them require a token.
func (h *Handler) Register(rg gin.IRouter) {
	rg.POST("/login", h.Login)
	rg.GET("/admin/status", h.Status)
}
