package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/config"
	httpapi "github.com/koji-portfolio/portfolio-backend/internal/api/http"
	"github.com/koji-portfolio/portfolio-backend/internal/api/http/middleware"
	"github.com/koji-portfolio/portfolio-backend/internal/api/http/response"
	authhttp "github.com/koji-portfolio/portfolio-backend/internal/auth/http"
	authmw "github.com/koji-portfolio/portfolio-backend/internal/auth/middleware"
	authservice "github.com/koji-portfolio/portfolio-backend/internal/auth/service"
	projectshttp "github.com/koji-portfolio/portfolio-backend/internal/projects/http"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/service"
)

type RouterDeps struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  repository.Store
	Auth   *AuthSetup
	Login  *authservice.LoginService
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config

	r := gin.New()

	r.Use(
		middleware.RequestID(dep.Logger),
		middleware.AccessLog(),
		middleware.Recovery(),
	)
	if cfg.App.IsDevelopment() {
		r.Use(response.DetailedErrors())
	}
	r.Use(middleware.SecurityHeaders(cfg.App.IsProduction()))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	}
	r.Use(
		middleware.NewRateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window).Middleware(),
		middleware.BodyLimit(middleware.DefaultMaxBodyBytes),
	)

	projectService := service.NewProjectService(dep.Store)
	projectHandler := projectshttp.New(projectService)
	authHandler := authhttp.New(dep.Auth.Gate, dep.Login, dep.Auth.Supabase)
	healthHandler := httpapi.NewHealthHandler(cfg.App.Name, cfg.App.Version, projectService)

	api := r.Group("/api")
	healthHandler.RegisterRoutes(api)
	projectHandler.RegisterPublic(api)
	authHandler.Register(api)

	admin := api.Group("/admin")
	admin.Use(authmw.RequireAdmin(dep.Auth.Gate))
	projectHandler.RegisterAdmin(admin)

	if cfg.Server.StaticDir != "" {
		static, err := httpapi.StaticFallback(cfg.Server.StaticDir, cfg.App.IsProduction())
		if err != nil {
			return nil, err
		}
		r.NoRoute(static)
	} else {
		r.NoRoute(httpapi.NotFound)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
