package http

import (
	"github.com/koji-portfolio/portfolio-backend/internal/auth"
	"github.com/koji-portfolio/portfolio-backend/internal/auth/service"
)

// SupabaseClientInfo is handed to the admin UI so it can sign in with the
// Supabase JS client. Only public values belong here.
type SupabaseClientInfo struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

type Handler struct {
	gate     *auth.Gate
	login    *service.LoginService
	supabase *SupabaseClientInfo
}

// New builds the auth handlers. supabase is nil unless the Supabase provider
// is active.
func New(gate *auth.Gate, login *service.LoginService, supabase *SupabaseClientInfo) *Handler {
	return &Handler{
		gate:     gate,
		login:    login,
		supabase: supabase,
	}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type statusResponse struct {
	Success      bool                `json:"success"`
	Mode         auth.Mode           `json:"mode"`
	Provider     string              `json:"provider,omitempty"`
	LoginEnabled bool                `json:"loginEnabled"`
	Supabase     *SupabaseClientInfo `json:"supabase,omitempty"`
}
