package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
	"github.com/koji-portfolio/portfolio-backend/internal/auth"
)

// Login exchanges the admin username and password for the shared token.
func (h *Handler) Login(c *gin.Context) {
	if h.gate.Mode() != auth.ModeSharedSecret || h.login == nil || !h.login.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, "Password login is not enabled", auth.ErrLoginDisabled)
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		response.Fail(c, http.StatusBadRequest, "Username and password are required", err)
		return
	}

	token, err := h.login.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status := auth.StatusFor(err)
		msg := auth.MessageFor(status)
		if status == http.StatusUnauthorized {
			msg = "Invalid credentials"
		}
		response.Fail(c, status, msg, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Success: true, Token: token})
}

// Status tells the admin UI which sign-in flow to use.
func (h *Handler) Status(c *gin.Context) {
	resp := statusResponse{
		Success:      true,
		Mode:         h.gate.Mode(),
		Provider:     h.gate.ProviderName(),
		LoginEnabled: h.gate.Mode() == auth.ModeSharedSecret && h.login != nil && h.login.Enabled(),
	}
	if h.gate.Mode() == auth.ModeProvider {
		resp.Supabase = h.supabase
	}
	c.JSON(http.StatusOK, resp)
}
